package roll_test

import (
	"testing"

	"github.com/spoutn1k/brand/internal/roll"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryRecordPop(t *testing.T) {
	var history roll.History[int]

	assert.False(t, history.Undoable())
	_, ok := history.Pop()
	assert.False(t, ok)

	history.Record(1)
	history.Record(2)
	require.True(t, history.Undoable())

	value, ok := history.Pop()
	require.True(t, ok)
	assert.Equal(t, 2, value)

	value, ok = history.Pop()
	require.True(t, ok)
	assert.Equal(t, 1, value)

	assert.False(t, history.Undoable())
}

func TestHistoryDropsOldestPastCapacity(t *testing.T) {
	var history roll.History[int]

	for i := 1; i <= 15; i++ {
		history.Record(i)
	}

	// Only the last 10 revisions survive.
	var popped []int
	for {
		value, ok := history.Pop()
		if !ok {
			break
		}
		popped = append(popped, value)
	}

	assert.Equal(t, []int{15, 14, 13, 12, 11, 10, 9, 8, 7, 6}, popped)
	assert.False(t, history.Undoable())
}
