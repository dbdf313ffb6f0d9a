package roll_test

import (
	"testing"

	"github.com/spoutn1k/brand/internal/roll"
	"github.com/stretchr/testify/assert"
)

func TestSelectionFoldsConsecutiveIndexes(t *testing.T) {
	sel := roll.NewSelection(1, 2, 3, 7, 9, 10)

	assert.Equal(t, []uint32{1, 2, 3, 7, 9, 10}, sel.Items())
	assert.Equal(t, "1 - 3, 7, 9 - 10", sel.String())
}

func TestSelectionSetOneAndContains(t *testing.T) {
	var sel roll.Selection

	sel.SetOne(5)
	assert.True(t, sel.Contains(5))
	assert.False(t, sel.Contains(4))
	assert.Equal(t, []uint32{5}, sel.Items())
}

func TestSelectionToggle(t *testing.T) {
	sel := roll.NewSelection(1, 2, 3, 5, 6)

	// Bridging the gap merges the two spans.
	sel.Toggle(4)
	assert.Equal(t, []uint32{1, 2, 3, 4, 5, 6}, sel.Items())

	// Removing from the middle splits a span.
	sel.Toggle(4)
	assert.Equal(t, []uint32{1, 2, 3, 5, 6}, sel.Items())

	sel.Toggle(10)
	assert.True(t, sel.Contains(10))
}

func TestSelectionGroupSelect(t *testing.T) {
	var sel roll.Selection

	// No anchor set: no-op.
	sel.GroupSelect(8)
	assert.True(t, sel.IsEmpty())

	sel.SetOne(3)
	sel.GroupSelect(7)
	assert.Equal(t, []uint32{3, 4, 5, 6, 7}, sel.Items())

	// Anchors work in either direction.
	sel.SetOne(5)
	sel.GroupSelect(2)
	assert.Equal(t, []uint32{2, 3, 4, 5}, sel.Items())
}

func TestSelectionClearAllInvert(t *testing.T) {
	sel := roll.NewSelection(1, 2)

	sel.Clear()
	assert.True(t, sel.IsEmpty())

	sel.All()
	assert.True(t, sel.Contains(0))
	assert.True(t, sel.Contains(255))

	sel.Invert()
	assert.True(t, sel.IsEmpty())

	sel = roll.NewSelection(0, 1)
	sel.Invert()
	assert.False(t, sel.Contains(0))
	assert.True(t, sel.Contains(2))
	assert.Len(t, sel.Items(), 254)
}
