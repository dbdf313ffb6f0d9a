package roll

// historySize bounds how many undo steps are kept.
const historySize = 10

// History is a fixed-size undo ring. Recording past capacity silently drops
// the oldest revision.
type History[T any] struct {
	ring      [historySize]T
	revision  int
	lastValid int
}

// Record pushes a snapshot onto the history.
func (h *History[T]) Record(element T) {
	h.revision++
	if low := h.revision - historySize; low > h.lastValid {
		h.lastValid = low
	}
	h.ring[h.revision%historySize] = element
}

// Pop removes and returns the most recent snapshot, or false when the
// history is exhausted.
func (h *History[T]) Pop() (T, bool) {
	var zero T
	if h.revision <= h.lastValid {
		return zero, false
	}

	element := h.ring[h.revision%historySize]
	h.ring[h.revision%historySize] = zero
	h.revision--
	return element, true
}

// Undoable reports whether a snapshot is available to pop.
func (h *History[T]) Undoable() bool {
	return h.revision > h.lastValid
}
