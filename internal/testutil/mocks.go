package testutil

import (
	"coinbot/internal/providers"
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (e LogEntry) Message() string {
	return fmt.Sprintf(e.Format, e.Args...)
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// Count returns how many records of level contain substr.
func (m *MockLogger) Count(level, substr string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.Logs {
		if e.Level == level && strings.Contains(e.Message(), substr) {
			n++
		}
	}
	return n
}

// MockCache implements providers.CacheProviderInterface.
type MockCache struct {
	mu   sync.Mutex
	Data map[string][]byte
}

func NewMockCache() *MockCache {
	return &MockCache{Data: make(map[string][]byte)}
}

func (m *MockCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.Data[key]
	return val, ok
}

func (m *MockCache) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[key] = value
}

// MockCompressor implements interfaces.CompressorInterface with injectable
// behaviour. The default is the identity.
type MockCompressor struct {
	CompressFn   func([]byte) ([]byte, error)
	DecompressFn func([]byte) ([]byte, error)
}

func (m *MockCompressor) Compress(val []byte) ([]byte, error) {
	if m.CompressFn != nil {
		return m.CompressFn(val)
	}
	return append([]byte(nil), val...), nil
}

func (m *MockCompressor) Decompress(val []byte) ([]byte, error) {
	if m.DecompressFn != nil {
		return m.DecompressFn(val)
	}
	return append([]byte(nil), val...), nil
}

func (m *MockCompressor) Close() {}

// MockMetrics implements providers.MetricsProviderInterface.
type MockMetrics struct {
	mu           sync.Mutex
	Commands     map[string]int
	Broadcasts   map[string]int
	Persistences int
	CacheHits    map[string]int
	CacheMisses  map[string]int
}

func NewMockMetrics() *MockMetrics {
	return &MockMetrics{
		Commands:    map[string]int{},
		Broadcasts:  map[string]int{},
		CacheHits:   map[string]int{},
		CacheMisses: map[string]int{},
	}
}

func (m *MockMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}

func (m *MockMetrics) IncCacheHits(namespace string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheHits[namespace]++
}

func (m *MockMetrics) IncCacheMisses(namespace string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheMisses[namespace]++
}

func (m *MockMetrics) ObservePersistenceDuration(_ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Persistences++
}

func (m *MockMetrics) IncCommandsTotal(command, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Commands == nil {
		m.Commands = map[string]int{}
	}
	m.Commands[command+":"+outcome]++
}

func (m *MockMetrics) IncBroadcasts(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Broadcasts == nil {
		m.Broadcasts = map[string]int{}
	}
	m.Broadcasts[kind]++
}

// FakeClock is a settable providers.Clock.
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewFakeClock(now time.Time) *FakeClock {
	return &FakeClock{now: now}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *FakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func (c *FakeClock) Add(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type manualTimer struct {
	owner   *ManualTimers
	at      time.Time
	seq     int
	fn      func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	t.owner.mu.Lock()
	defer t.owner.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// ManualTimers implements providers.TimerScheduler on top of a FakeClock.
// Callbacks only run inside Advance, synchronously and in due order.
type ManualTimers struct {
	mu     sync.Mutex
	clock  *FakeClock
	timers []*manualTimer
	seq    int
}

func NewManualTimers(clock *FakeClock) *ManualTimers {
	return &ManualTimers{clock: clock}
}

func (m *ManualTimers) AfterFunc(d time.Duration, fn func()) providers.TimerHandle {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	t := &manualTimer{owner: m, at: m.clock.Now().Add(d), seq: m.seq, fn: fn}
	m.timers = append(m.timers, t)
	return t
}

// Pending lists the due times of timers that have neither fired nor been stopped.
func (m *ManualTimers) Pending() []time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []time.Time
	for _, t := range m.timers {
		if !t.stopped && !t.fired {
			out = append(out, t.at)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// Advance moves the clock forward by d, firing every timer that becomes due,
// including timers armed by callbacks along the way.
func (m *ManualTimers) Advance(d time.Duration) {
	target := m.clock.Now().Add(d)
	for {
		next := m.nextDue(target)
		if next == nil {
			break
		}
		if next.at.After(m.clock.Now()) {
			m.clock.Set(next.at)
		}
		next.fn()
	}
	m.clock.Set(target)
}

func (m *ManualTimers) nextDue(limit time.Time) *manualTimer {
	m.mu.Lock()
	defer m.mu.Unlock()
	var best *manualTimer
	for _, t := range m.timers {
		if t.stopped || t.fired || t.at.After(limit) {
			continue
		}
		if best == nil || t.at.Before(best.at) || (t.at.Equal(best.at) && t.seq < best.seq) {
			best = t
		}
	}
	if best != nil {
		best.fired = true
	}
	return best
}

// ScriptedRandom implements providers.Random. Flips are consumed in order and
// default to true; Between returns queued delays or min.
type ScriptedRandom struct {
	mu     sync.Mutex
	Flips  []bool
	Delays []time.Duration
}

func (r *ScriptedRandom) Flip() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Flips) == 0 {
		return true
	}
	v := r.Flips[0]
	r.Flips = r.Flips[1:]
	return v
}

func (r *ScriptedRandom) Between(min, _ time.Duration) time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Delays) == 0 {
		return min
	}
	v := r.Delays[0]
	r.Delays = r.Delays[1:]
	return v
}

type SentMessage struct {
	Channel string
	Text    string
}

// RecordingSender implements chat.Sender.
type RecordingSender struct {
	mu      sync.Mutex
	Actions []SentMessage
	Joined  []string
	Parted  []string
	Err     error
}

func (s *RecordingSender) Action(channel, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.Actions = append(s.Actions, SentMessage{Channel: channel, Text: text})
	return nil
}

func (s *RecordingSender) Join(channel string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.Joined = append(s.Joined, channel)
	return nil
}

func (s *RecordingSender) Part(channel string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.Parted = append(s.Parted, channel)
	return nil
}

func (s *RecordingSender) Texts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.Actions))
	for _, a := range s.Actions {
		out = append(out, a.Text)
	}
	return out
}

// RecordingBroadcaster implements services.Broadcaster.
type RecordingBroadcaster struct {
	mu       sync.Mutex
	Messages []string
}

func (b *RecordingBroadcaster) Broadcast(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Messages = append(b.Messages, text)
}

func (b *RecordingBroadcaster) Sent() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.Messages...)
}

// CountingPersister implements services.Persister.
type CountingPersister struct {
	mu    sync.Mutex
	Calls int
	Err   error
}

func (p *CountingPersister) Persist() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Calls++
	return p.Err
}

func (p *CountingPersister) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Calls
}

// MemoryBackend implements interfaces.BackendInterface in memory.
type MemoryBackend struct {
	mu       sync.Mutex
	Data     []byte
	ReadErr  error
	WriteErr error
	Writes   int
}

func (b *MemoryBackend) Name() string { return "memory" }

func (b *MemoryBackend) Read(_ context.Context) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ReadErr != nil {
		return nil, b.ReadErr
	}
	if b.Data == nil {
		return nil, nil
	}
	return append([]byte(nil), b.Data...), nil
}

func (b *MemoryBackend) Write(_ context.Context, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.WriteErr != nil {
		return b.WriteErr
	}
	b.Data = append([]byte(nil), data...)
	b.Writes++
	return nil
}

func (b *MemoryBackend) WriteCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.Writes
}

func (b *MemoryBackend) Close() error { return nil }
