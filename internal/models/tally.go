package models

import "sort"

type TallyEntry struct {
	Key   string
	Count int64
}

// Tally is a counter map that remembers the order in which keys were first
// seen, so that ties resolve to the earliest key.
type Tally struct {
	Order  []string         `json:"order"`
	Counts map[string]int64 `json:"counts"`
}

func NewTally() *Tally {
	return &Tally{
		Order:  make([]string, 0),
		Counts: make(map[string]int64),
	}
}

func (t *Tally) normalize() {
	if t.Counts == nil {
		t.Counts = make(map[string]int64)
	}
	seen := make(map[string]struct{}, len(t.Order))
	order := make([]string, 0, len(t.Counts))
	for _, k := range t.Order {
		if _, ok := t.Counts[k]; !ok {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		order = append(order, k)
	}
	// keys without an order entry go last, sorted for stability
	missing := make([]string, 0)
	for k := range t.Counts {
		if _, ok := seen[k]; !ok {
			missing = append(missing, k)
		}
	}
	sort.Strings(missing)
	t.Order = append(order, missing...)
}

func (t *Tally) Add(key string, n int64) int64 {
	if _, ok := t.Counts[key]; !ok {
		t.Order = append(t.Order, key)
	}
	t.Counts[key] += n
	return t.Counts[key]
}

func (t *Tally) Get(key string) int64 {
	return t.Counts[key]
}

func (t *Tally) Len() int {
	return len(t.Order)
}

// Top returns the key with the highest positive count.
func (t *Tally) Top() (TallyEntry, bool) {
	var best TallyEntry
	found := false
	for _, k := range t.Order {
		if c := t.Counts[k]; c > best.Count {
			best = TallyEntry{Key: k, Count: c}
			found = true
		}
	}
	return best, found
}

// Ranked returns up to limit entries by descending count, first-seen first on ties.
func (t *Tally) Ranked(limit int) []TallyEntry {
	entries := make([]TallyEntry, 0, len(t.Order))
	for _, k := range t.Order {
		entries = append(entries, TallyEntry{Key: k, Count: t.Counts[k]})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count > entries[j].Count
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}
