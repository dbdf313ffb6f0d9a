package picker_test

import (
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/spoutn1k/brand/internal/picker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeWidget records widget calls and lets tests fire clicks.
type fakeWidget struct {
	handlers    map[int]func(lat, lng float64)
	nextID      int
	markers     int
	invalidated int
	viewSets    int
}

func newFakeWidget() *fakeWidget {
	return &fakeWidget{handlers: map[int]func(lat, lng float64){}}
}

func (w *fakeWidget) OnClick(handler func(lat, lng float64)) func() {
	id := w.nextID
	w.nextID++
	w.handlers[id] = handler
	return func() { delete(w.handlers, id) }
}

func (w *fakeWidget) click(lat, lng float64) {
	for _, handler := range w.handlers {
		handler(lat, lng)
	}
}

func (w *fakeWidget) PlaceMarker(float64, float64) { w.markers++ }
func (w *fakeWidget) RemoveMarker()                { w.markers = 0 }
func (w *fakeWidget) SetView(float64, float64, int) {
	w.viewSets++
}
func (w *fakeWidget) InvalidateSize() { w.invalidated++ }

// fakeContainer tracks visibility.
type fakeContainer struct {
	visible bool
}

func (c *fakeContainer) Show()         { c.visible = true }
func (c *fakeContainer) Hide()         { c.visible = false }
func (c *fakeContainer) Visible() bool { return c.visible }

// forwarded is one coordinate delivery seen by the sink.
type forwarded struct {
	index    uint32
	lat, lng string
}

type harness struct {
	widget     *fakeWidget
	container  *fakeContainer
	picker     *picker.Picker
	deliveries []forwarded
	sinkErr    error
	pending    []func()
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{widget: newFakeWidget(), container: &fakeContainer{}}

	sink := func(index uint32, lat, lng string) error {
		h.deliveries = append(h.deliveries, forwarded{index: index, lat: lat, lng: lng})
		return h.sinkErr
	}

	h.picker = picker.NewWithScheduler(h.widget, h.container, sink, slog.Default(),
		func(_ time.Duration, f func()) { h.pending = append(h.pending, f) })
	return h
}

// settle runs the queued settle-delay callbacks.
func (h *harness) settle() {
	pending := h.pending
	h.pending = nil
	for _, f := range pending {
		f()
	}
}

func TestPromptCoordsFullRoundTrip(t *testing.T) {
	h := newHarness(t)

	require.False(t, h.container.Visible())
	h.picker.PromptCoords(3)
	assert.True(t, h.container.Visible())
	assert.False(t, h.picker.Listening(), "listener arms after the settle delay")

	h.settle()
	assert.Equal(t, 1, h.widget.invalidated, "layout recomputed after the container became visible")
	require.True(t, h.picker.Listening())

	h.widget.click(48.856614159, 2.352221234)

	require.Len(t, h.deliveries, 1)
	assert.Equal(t, forwarded{index: 3, lat: "48.85661416", lng: "2.35222123"}, h.deliveries[0])

	// The round trip is visibility-neutral and the listener is gone.
	assert.False(t, h.container.Visible())
	assert.False(t, h.picker.Listening())
	assert.Equal(t, 0, h.widget.markers)
}

func TestClickAfterRoundTripIsNoOp(t *testing.T) {
	h := newHarness(t)

	h.picker.PromptCoords(1)
	h.settle()
	h.widget.click(1, 2)
	h.widget.click(3, 4)

	assert.Len(t, h.deliveries, 1, "subsequent clicks are no-ops until the next prompt")
}

func TestSecondPromptReplacesFirstSubscription(t *testing.T) {
	h := newHarness(t)

	h.picker.PromptCoords(1)
	h.settle()
	h.picker.PromptCoords(2)
	h.settle()

	h.widget.click(10, 20)

	// The click is delivered exactly once, to the latest prompt.
	require.Len(t, h.deliveries, 1)
	assert.Equal(t, uint32(2), h.deliveries[0].index)
}

func TestSinkErrorStillRestoresUIState(t *testing.T) {
	h := newHarness(t)
	h.sinkErr = fmt.Errorf("module rejected the update")

	h.picker.PromptCoords(1)
	h.settle()
	h.widget.click(1, 2)

	assert.False(t, h.container.Visible())
	assert.False(t, h.picker.Listening())
}

func TestSetMarkerKeepsExactlyOne(t *testing.T) {
	h := newHarness(t)

	for i := 0; i < 5; i++ {
		h.picker.SetMarker(float64(i), float64(i))
	}
	assert.Equal(t, 1, h.widget.markers)
}

func TestNewResetsToHomeView(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, 1, h.widget.viewSets)
}
