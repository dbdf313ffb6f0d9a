//go:build js && wasm

// Package dom wraps the handful of browser APIs the page logic needs:
// element lookup, hidden-class toggling, input values, and session storage.
package dom

import (
	"fmt"
	"syscall/js"
)

// HiddenClass is the CSS class toggling element visibility.
const HiddenClass = "hidden"

// ByID looks up an element in the current document.
func ByID(id string) (js.Value, error) {
	element := js.Global().Get("document").Call("getElementById", id)
	if element.IsNull() || element.IsUndefined() {
		return js.Value{}, fmt.Errorf("no element with id %q", id)
	}
	return element, nil
}

// Show removes the hidden class from the element.
func Show(element js.Value) {
	element.Get("classList").Call("remove", HiddenClass)
}

// Hide adds the hidden class to the element.
func Hide(element js.Value) {
	element.Get("classList").Call("add", HiddenClass)
}

// IsHidden reports whether the element carries the hidden class.
func IsHidden(element js.Value) bool {
	return element.Get("classList").Call("contains", HiddenClass).Bool()
}

// Value reads an input element's current value.
func Value(element js.Value) string {
	return element.Get("value").String()
}

// SetValue writes an input element's value.
func SetValue(element js.Value, value string) {
	element.Set("value", value)
}

// ClearValue empties an input element. File inputs keep stale selections
// across reloads in some browsers, so the page clears them on load.
func ClearValue(element js.Value) {
	element.Set("value", "")
}

// Region is a Container over a DOM element toggled with the hidden class.
type Region struct {
	element js.Value
}

// NewRegion returns a Region over the element with the given id.
func NewRegion(id string) (*Region, error) {
	element, err := ByID(id)
	if err != nil {
		return nil, err
	}
	return &Region{element: element}, nil
}

func (r *Region) Show()         { Show(r.element) }
func (r *Region) Hide()         { Hide(r.element) }
func (r *Region) Visible() bool { return !IsHidden(r.element) }
