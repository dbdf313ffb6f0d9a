//go:build js && wasm

// Command wasm drives the editing page in the browser. After loading, it
// registers the global JavaScript functions the page calls:
//
//	setup()                         -> null | {error}
//	prompt_coords(index)            -> null | {error}
//	set_marker(lat, lng)            -> null | {error}
//	update_coords(index, lat, lng)  -> null | {error}
//	update_gps_text(value)          -> null | {error}
//	reorder_files(old, new)         -> null | {error}
//	export_roll()                   -> null | {error}
//	register_handle(handle)         -> id
//	get_raw_handles()               -> object
//	set_raw_handles(object)         -> null
//
// setup also binds the file input's change event, which imports the
// selection and requests thumbnails from the worker pool.
//
// Coordinates travel as strings with exactly 8 fractional digits, the form
// the picker emits.
package main

import (
	"log/slog"
	"strconv"
	"syscall/js"

	"github.com/spoutn1k/brand/internal/bridge"
	"github.com/spoutn1k/brand/internal/dom"
	"github.com/spoutn1k/brand/internal/editor"
	"github.com/spoutn1k/brand/internal/picker"
)

// Page element ids and the worker pool script.
const (
	mapElementID = "map"
	fileInputID  = "photoselect"
	galleryID    = "thumbnails"
	workerScript = "worker.js"
)

type page struct {
	logger      *slog.Logger
	editor      *editor.Editor
	picker      *picker.Picker
	handles     *picker.Registry
	spawn       bridge.SpawnFunc
	concurrency int
}

func main() {
	p := &page{
		logger:      dom.Logger(slog.LevelInfo),
		handles:     picker.NewRegistry(),
		spawn:       bridge.NewWorkerSpawn(workerScript),
		concurrency: concurrency(),
	}

	js.Global().Set("setup", js.FuncOf(p.setup))
	js.Global().Set("prompt_coords", js.FuncOf(p.promptCoords))
	js.Global().Set("set_marker", js.FuncOf(p.setMarker))
	js.Global().Set("update_coords", js.FuncOf(p.updateCoords))
	js.Global().Set("update_gps_text", js.FuncOf(p.updateGPSText))
	js.Global().Set("reorder_files", js.FuncOf(p.reorderFiles))
	js.Global().Set("export_roll", js.FuncOf(p.exportRoll))
	js.Global().Set("register_handle", js.FuncOf(p.registerHandle))
	js.Global().Set("get_raw_handles", js.FuncOf(p.getRawHandles))
	js.Global().Set("set_raw_handles", js.FuncOf(p.setRawHandles))

	select {} // keep the WASM module alive until the page is closed
}

// setup wires the editor and the map picker to the page. Called once the
// DOM is ready.
func (p *page) setup(_ js.Value, _ []js.Value) any {
	store, err := dom.NewSessionStore()
	if err != nil {
		return errorValue(err)
	}
	p.editor = editor.New(store, p.logger)

	widget, err := picker.NewLeaflet(mapElementID)
	if err != nil {
		return errorValue(err)
	}
	region, err := dom.NewRegion(mapElementID)
	if err != nil {
		return errorValue(err)
	}
	p.picker = picker.New(widget, region, p.editor.UpdateCoords, p.logger)

	// Browsers may restore a stale file selection on reload; the handles
	// backing it are gone, so drop it.
	input, err := dom.ByID(fileInputID)
	if err != nil {
		return errorValue(err)
	}
	dom.ClearValue(input)
	input.Call("addEventListener", "change", js.FuncOf(func(_ js.Value, args []js.Value) any {
		files := args[0].Get("target").Get("files")
		if err := p.importFiles(files); err != nil {
			p.logger.Error("importing selection", "error", err)
		}
		return nil
	}))

	return nil
}

// promptCoords reveals the map and waits for one click on behalf of the
// given exposure index.
func (p *page) promptCoords(_ js.Value, args []js.Value) any {
	if p.picker == nil {
		return errorString("setup has not run")
	}
	if len(args) < 1 {
		return errorString("missing exposure index")
	}

	p.picker.PromptCoords(uint32(args[0].Int()))
	return nil
}

// setMarker places the map marker at a coordinate, replacing any previous
// one.
func (p *page) setMarker(_ js.Value, args []js.Value) any {
	if p.picker == nil {
		return errorString("setup has not run")
	}
	if len(args) < 2 {
		return errorString("expected latitude, longitude")
	}

	p.picker.SetMarker(args[0].Float(), args[1].Float())
	return nil
}

// updateCoords records a picked coordinate on one exposure. The picker
// calls this through its sink; the page may also call it directly when a
// coordinate field is edited by hand.
func (p *page) updateCoords(_ js.Value, args []js.Value) any {
	if p.editor == nil {
		return errorString("setup has not run")
	}
	if len(args) < 3 {
		return errorString("expected index, latitude, longitude")
	}

	index, err := indexArg(args[0])
	if err != nil {
		return errorValue(err)
	}

	if err := p.editor.UpdateCoords(index, args[1].String(), args[2].String()); err != nil {
		return errorValue(err)
	}
	return nil
}

// updateGPSText applies a hand-typed "lat, lng" value to the selection.
func (p *page) updateGPSText(_ js.Value, args []js.Value) any {
	if p.editor == nil {
		return errorString("setup has not run")
	}
	if len(args) < 1 {
		return errorString("missing coordinate text")
	}

	if err := p.editor.UpdateGPSText(args[0].String()); err != nil {
		return errorValue(err)
	}
	return nil
}

// reorderFiles moves the file at one frame index to another, shifting the
// files in between.
func (p *page) reorderFiles(_ js.Value, args []js.Value) any {
	if p.editor == nil {
		return errorString("setup has not run")
	}
	if len(args) < 2 {
		return errorString("expected old and new index")
	}

	old, err := indexArg(args[0])
	if err != nil {
		return errorValue(err)
	}
	next, err := indexArg(args[1])
	if err != nil {
		return errorValue(err)
	}

	if err := p.editor.ReorderFiles(old, next); err != nil {
		return errorValue(err)
	}
	return nil
}

// registerHandle stores an opaque file handle and returns its identifier.
func (p *page) registerHandle(_ js.Value, args []js.Value) any {
	if len(args) < 1 {
		return errorString("missing handle")
	}
	return p.handles.Register(args[0])
}

// getRawHandles exposes the whole registry to the page.
func (p *page) getRawHandles(_ js.Value, _ []js.Value) any {
	return p.handles.Raw()
}

// setRawHandles replaces the whole registry with the given object, without
// validating its contents.
func (p *page) setRawHandles(_ js.Value, args []js.Value) any {
	if len(args) < 1 {
		return errorString("missing handles object")
	}

	raw := map[string]any{}
	keys := js.Global().Get("Object").Call("keys", args[0])
	for i := 0; i < keys.Length(); i++ {
		key := keys.Index(i).String()
		raw[key] = args[0].Get(key)
	}
	p.handles.SetRaw(raw)
	return nil
}

// indexArg accepts an exposure index as either a number or a numeric string.
func indexArg(arg js.Value) (uint32, error) {
	if arg.Type() == js.TypeNumber {
		return uint32(arg.Int()), nil
	}
	parsed, err := strconv.ParseUint(arg.String(), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint32(parsed), nil
}

func errorValue(err error) any {
	return errorString(err.Error())
}

func errorString(message string) any {
	return map[string]any{"error": message}
}
