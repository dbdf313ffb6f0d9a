package roll

import (
	"fmt"
	"sort"
	"strings"
)

// selectionLimit bounds "select all" and "invert" so the range arithmetic
// never needs to know the real exposure count.
const selectionLimit = 256

// span is a half-open [Start, End) index range.
type span struct {
	Start uint32 `json:"start"`
	End   uint32 `json:"end"`
}

// Selection is the set of exposure indexes the editor currently operates on,
// stored as sorted non-adjacent half-open ranges. The anchor remembers the
// last single selection for shift-click group selects.
type Selection struct {
	Anchor *uint32 `json:"last,omitempty"`
	Spans  []span  `json:"items"`
}

// NewSelection builds a Selection from an arbitrary list of indexes.
func NewSelection(indexes ...uint32) Selection {
	return Selection{Spans: fold(indexes)}
}

// fold collapses a list of indexes into sorted non-adjacent spans.
func fold(indexes []uint32) []span {
	if len(indexes) == 0 {
		return nil
	}

	sorted := make([]uint32, len(indexes))
	copy(sorted, indexes)
	sort.Slice(sorted, func(a, b int) bool { return sorted[a] < sorted[b] })

	var spans []span
	current := span{Start: sorted[0], End: sorted[0] + 1}
	for _, index := range sorted[1:] {
		switch {
		case index < current.End:
			// duplicate
		case index == current.End:
			current.End = index + 1
		default:
			spans = append(spans, current)
			current = span{Start: index, End: index + 1}
		}
	}
	return append(spans, current)
}

// Contains reports whether index is selected.
func (s Selection) Contains(index uint32) bool {
	for _, r := range s.Spans {
		if index >= r.Start && index < r.End {
			return true
		}
	}
	return false
}

// Items returns every selected index in ascending order.
func (s Selection) Items() []uint32 {
	var items []uint32
	for _, r := range s.Spans {
		for i := r.Start; i < r.End; i++ {
			items = append(items, i)
		}
	}
	return items
}

// IsEmpty reports whether nothing is selected.
func (s Selection) IsEmpty() bool {
	return len(s.Spans) == 0
}

// SetOne replaces the selection with a single index and anchors on it.
func (s *Selection) SetOne(index uint32) {
	anchor := index
	s.Anchor = &anchor
	s.Spans = []span{{Start: index, End: index + 1}}
}

// Toggle adds index to the selection, or removes it when already present.
func (s *Selection) Toggle(index uint32) {
	if s.Contains(index) {
		s.remove(index)
		return
	}
	s.Spans = fold(append(s.Items(), index))
}

func (s *Selection) remove(index uint32) {
	var kept []uint32
	for _, i := range s.Items() {
		if i != index {
			kept = append(kept, i)
		}
	}
	s.Spans = fold(kept)
}

// GroupSelect extends the selection with the full range between the anchor
// and index. Without an anchor this is a no-op.
func (s *Selection) GroupSelect(index uint32) {
	if s.Anchor == nil {
		return
	}

	lo, hi := *s.Anchor, index
	if lo > hi {
		lo, hi = hi, lo
	}

	items := s.Items()
	for i := lo; i <= hi; i++ {
		items = append(items, i)
	}
	s.Spans = fold(items)
}

// Clear empties the selection.
func (s *Selection) Clear() {
	s.Spans = nil
}

// All selects every index up to the selection limit.
func (s *Selection) All() {
	s.Spans = []span{{Start: 0, End: selectionLimit}}
}

// Invert selects exactly the indexes currently unselected, up to the limit.
func (s *Selection) Invert() {
	var items []uint32
	for i := uint32(0); i < selectionLimit; i++ {
		if !s.Contains(i) {
			items = append(items, i)
		}
	}
	s.Spans = fold(items)
}

// String renders the selection for display, e.g. "1 - 4, 7, 9 - 10".
func (s Selection) String() string {
	parts := make([]string, 0, len(s.Spans))
	for _, r := range s.Spans {
		if r.End == r.Start+1 {
			parts = append(parts, fmt.Sprintf("%d", r.Start))
			continue
		}
		parts = append(parts, fmt.Sprintf("%d - %d", r.Start, r.End-1))
	}
	return strings.Join(parts, ", ")
}
