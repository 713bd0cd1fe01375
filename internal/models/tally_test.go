package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTally_TopBreaksTiesByFirstSeen(t *testing.T) {
	tl := NewTally()
	tl.Add("bob", 3)
	tl.Add("alice", 3)
	tl.Add("carol", 1)

	top, ok := tl.Top()
	assert.True(t, ok)
	assert.Equal(t, "bob", top.Key)
	assert.Equal(t, int64(3), top.Count)
}

func TestTally_TopEmpty(t *testing.T) {
	_, ok := NewTally().Top()
	assert.False(t, ok)
}

func TestTally_RankedStableAndLimited(t *testing.T) {
	tl := NewTally()
	tl.Add("a", 1)
	tl.Add("b", 5)
	tl.Add("c", 5)
	tl.Add("d", 2)

	ranked := tl.Ranked(3)
	assert.Equal(t, []TallyEntry{{"b", 5}, {"c", 5}, {"d", 2}}, ranked)
}

func TestTally_NormalizeRepairsOrder(t *testing.T) {
	tl := &Tally{
		Order:  []string{"x", "ghost", "x"},
		Counts: map[string]int64{"x": 1, "z": 2, "y": 2},
	}
	tl.normalize()
	assert.Equal(t, []string{"x", "y", "z"}, tl.Order)
}
