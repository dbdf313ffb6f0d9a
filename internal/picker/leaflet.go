//go:build js && wasm

package picker

import (
	"fmt"
	"syscall/js"
)

// OpenStreetMap tile layer settings.
const (
	tileURL         = "https://tile.openstreetmap.org/{z}/{x}/{y}.png"
	tileAttribution = `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors`
	tileMaxZoom     = 19
)

// Leaflet is the MapWidget implementation over the Leaflet library loaded
// on the page as the global L.
type Leaflet struct {
	api    js.Value
	widget js.Value
	marker js.Value
}

// NewLeaflet builds a Leaflet map inside the element with the given id and
// attaches the OpenStreetMap tile layer.
func NewLeaflet(elementID string) (*Leaflet, error) {
	api := js.Global().Get("L")
	if api.IsUndefined() {
		return nil, fmt.Errorf("leaflet is not loaded")
	}

	widget := api.Call("map", elementID)
	api.Call("tileLayer", tileURL, map[string]any{
		"maxZoom":     tileMaxZoom,
		"attribution": tileAttribution,
	}).Call("addTo", widget)

	return &Leaflet{api: api, widget: widget, marker: js.Null()}, nil
}

// OnClick implements MapWidget. The returned cancel releases both the
// Leaflet listener and the underlying Go callback.
func (l *Leaflet) OnClick(handler func(lat, lng float64)) (cancel func()) {
	callback := js.FuncOf(func(_ js.Value, args []js.Value) any {
		latlng := args[0].Get("latlng")
		handler(latlng.Get("lat").Float(), latlng.Get("lng").Float())
		return nil
	})

	l.widget.Call("on", "click", callback)
	return func() {
		l.widget.Call("off", "click", callback)
		callback.Release()
	}
}

// PlaceMarker implements MapWidget.
func (l *Leaflet) PlaceMarker(lat, lng float64) {
	l.RemoveMarker()
	l.marker = l.api.Call("marker", []any{lat, lng}).Call("addTo", l.widget)
}

// RemoveMarker implements MapWidget.
func (l *Leaflet) RemoveMarker() {
	if !l.marker.IsNull() {
		l.widget.Call("removeLayer", l.marker)
		l.marker = js.Null()
	}
}

// SetView implements MapWidget.
func (l *Leaflet) SetView(lat, lng float64, zoom int) {
	l.widget.Call("setView", []any{lat, lng}, zoom)
}

// InvalidateSize implements MapWidget.
func (l *Leaflet) InvalidateSize() {
	l.widget.Call("invalidateSize")
}
