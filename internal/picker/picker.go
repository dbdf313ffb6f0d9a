// Package picker implements the map coordinate picker: a hidden map widget
// the page reveals for a single click, which is rounded, forwarded to the
// exposure being edited, and hidden again.
//
// The map library sits behind the MapWidget interface; any widget able to
// report clicks, place one marker, and recompute its layout on demand is a
// valid substitute. The Leaflet adapter lives in the js/wasm build.
package picker

import (
	"log/slog"
	"time"

	"github.com/spoutn1k/brand/internal/gps"
)

// Initial view: Paris, zoomed out.
const (
	HomeLat  = 48.8566
	HomeLng  = 2.3522
	HomeZoom = 4
)

// settleDelay gives the container time to become visible before the widget
// recomputes its render size; sizing a hidden map yields a blank layer.
const settleDelay = 400 * time.Millisecond

// MapWidget is the capability set the picker needs from a map library.
type MapWidget interface {
	// OnClick installs a click handler and returns its cancel function.
	// The handler stays installed until cancelled.
	OnClick(handler func(lat, lng float64)) (cancel func())
	// PlaceMarker puts a marker at the coordinate, replacing any previous one.
	PlaceMarker(lat, lng float64)
	// RemoveMarker removes the marker, if any.
	RemoveMarker()
	// SetView recenters the map.
	SetView(lat, lng float64, zoom int)
	// InvalidateSize recomputes the widget layout after a visibility change.
	InvalidateSize()
}

// Container toggles the visibility of the DOM region hosting the map.
type Container interface {
	Show()
	Hide()
	Visible() bool
}

// CoordSink receives a picked coordinate for one exposure index. Latitude
// and longitude are forwarded as strings with exactly 8 fractional digits.
type CoordSink func(index uint32, lat, lng string) error

// Picker owns the map widget, its container, and the single active click
// subscription. All methods must be called from the UI thread.
type Picker struct {
	widget    MapWidget
	container Container
	sink      CoordSink
	logger    *slog.Logger

	// after schedules a function after a delay; replaced in tests.
	after func(time.Duration, func())

	cancelClick func()
}

// New returns a Picker over the given widget and container, recentered on
// the home view.
func New(widget MapWidget, container Container, sink CoordSink, logger *slog.Logger) *Picker {
	return NewWithScheduler(widget, container, sink, logger, func(d time.Duration, f func()) {
		time.AfterFunc(d, f)
	})
}

// NewWithScheduler is New with the settle-delay scheduler injected, so tests
// can run the delayed arming step synchronously.
func NewWithScheduler(widget MapWidget, container Container, sink CoordSink,
	logger *slog.Logger, after func(time.Duration, func())) *Picker {
	p := &Picker{
		widget:    widget,
		container: container,
		sink:      sink,
		logger:    logger,
		after:     after,
	}
	p.Reset()
	return p
}

// Reset recenters the map on the home view.
func (p *Picker) Reset() {
	p.widget.SetView(HomeLat, HomeLng, HomeZoom)
}

// PromptCoords reveals the map and arms a one-shot click subscription for
// the given exposure index. A prompt issued while another is pending
// replaces it: the earlier subscription is cancelled so clicks are never
// delivered twice.
func (p *Picker) PromptCoords(index uint32) {
	p.disarm()
	p.container.Show()

	p.after(settleDelay, func() {
		p.widget.InvalidateSize()
		p.arm(index)
	})
}

func (p *Picker) arm(index uint32) {
	p.disarm()
	p.cancelClick = p.widget.OnClick(func(lat, lng float64) {
		p.disarm()

		err := p.sink(index, gps.Round8(lat), gps.Round8(lng))

		p.widget.RemoveMarker()
		p.container.Hide()

		if err != nil {
			p.logger.Error("failed to forward picked coordinates",
				"index", index, "lat", lat, "lng", lng, "error", err)
		}
	})
}

func (p *Picker) disarm() {
	if p.cancelClick != nil {
		p.cancelClick()
		p.cancelClick = nil
	}
}

// Listening reports whether a click subscription is armed.
func (p *Picker) Listening() bool {
	return p.cancelClick != nil
}

// SetMarker places the marker at a coordinate. At most one marker exists at
// any time; placing removes the previous one first.
func (p *Picker) SetMarker(lat, lng float64) {
	p.widget.RemoveMarker()
	p.widget.PlaceMarker(lat, lng)
}
