package providers

import (
	"coinbot/internal/models"
	"coinbot/internal/structures"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func swapRegistry(t *testing.T) *prometheus.Registry {
	t.Helper()
	reg := prometheus.NewRegistry()
	prevReg, prevGather := prometheus.DefaultRegisterer, prometheus.DefaultGatherer
	prometheus.DefaultRegisterer = reg
	prometheus.DefaultGatherer = reg
	t.Cleanup(func() {
		prometheus.DefaultRegisterer = prevReg
		prometheus.DefaultGatherer = prevGather
	})
	return reg
}

func TestNoopMetrics_WhenDisabled(t *testing.T) {
	conf := &structures.Config{Metrics: structures.MetricsConfig{Enabled: false}}
	m := NewMetricsProvider(conf, models.NewStore())
	_, ok := m.(*noopMetrics)
	assert.True(t, ok)

	m.IncRequestsTotal("/health", 200)
	m.ObserveRequestDuration("/health", time.Millisecond)
	m.IncCacheHits("song")
	m.IncCacheMisses("api")
	m.ObservePersistenceDuration(time.Millisecond)
	m.IncCommandsTotal("claim", "ok")
	m.IncBroadcasts("bonus_open")
}

func TestMetricsProvider_CommandCounter(t *testing.T) {
	swapRegistry(t)

	conf := &structures.Config{Metrics: structures.MetricsConfig{Enabled: true}}
	m := NewMetricsProvider(conf, models.NewStore())
	mp, ok := m.(*MetricsProvider)
	require.True(t, ok)

	m.IncCommandsTotal("claim", "ok")
	m.IncCommandsTotal("claim", "ok")
	m.IncCommandsTotal("claim", "rejected")

	assert.Equal(t, 2.0, testutil.ToFloat64(mp.commandsTotal.WithLabelValues("claim", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(mp.commandsTotal.WithLabelValues("claim", "rejected")))
}

func TestMetricsProvider_StateGauges(t *testing.T) {
	reg := swapRegistry(t)

	store := models.NewStore()
	store.Update(func(st *models.State) {
		st.Account("alice").Balance = 300
		st.Account("bob").Balance = 200
	})

	conf := &structures.Config{Metrics: structures.MetricsConfig{Enabled: true}}
	NewMetricsProvider(conf, store)

	families, err := reg.Gather()
	require.NoError(t, err)

	values := map[string]float64{}
	for _, f := range families {
		if len(f.GetMetric()) == 1 && f.GetMetric()[0].GetGauge() != nil {
			values[f.GetName()] = f.GetMetric()[0].GetGauge().GetValue()
		}
	}
	assert.Equal(t, 2.0, values["coinbot_accounts_total"])
	assert.Equal(t, 500.0, values["coinbot_coins_total"])
	assert.Equal(t, 0.0, values["coinbot_reminders_pending"])
}

func TestHttpStatusBucket(t *testing.T) {
	tests := []struct {
		code     int
		expected string
	}{
		{101, "1xx"},
		{200, "2xx"},
		{302, "3xx"},
		{400, "4xx"},
		{500, "5xx"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, httpStatusBucket(tt.code))
	}
}
