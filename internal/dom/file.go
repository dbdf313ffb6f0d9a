//go:build js && wasm

package dom

import (
	"fmt"
	"syscall/js"
)

// FileBytes reads a File or Blob handle and delivers its bytes to done once
// the browser finishes the read. done runs on the event loop; it is invoked
// exactly once.
func FileBytes(file js.Value, done func(data []byte, err error)) {
	var then, catch js.Func
	release := func() {
		then.Release()
		catch.Release()
	}

	then = js.FuncOf(func(_ js.Value, args []js.Value) any {
		release()
		buf := js.Global().Get("Uint8Array").New(args[0])
		data := make([]byte, buf.Get("length").Int())
		js.CopyBytesToGo(data, buf)
		done(data, nil)
		return nil
	})
	catch = js.FuncOf(func(_ js.Value, args []js.Value) any {
		release()
		done(nil, fmt.Errorf("reading file: %s", args[0].Call("toString").String()))
		return nil
	})

	file.Call("arrayBuffer").Call("then", then).Call("catch", catch)
}

// Download hands data to the user as a file download, through a Blob and a
// transient object URL on a synthetic anchor click.
func Download(name string, data []byte) {
	buf := js.Global().Get("Uint8Array").New(len(data))
	js.CopyBytesToJS(buf, data)

	parts := js.Global().Get("Array").New(buf)
	blob := js.Global().Get("Blob").New(parts, map[string]any{"type": "application/octet-stream"})
	url := js.Global().Get("URL").Call("createObjectURL", blob)

	anchor := js.Global().Get("document").Call("createElement", "a")
	anchor.Set("href", url)
	anchor.Set("download", name)
	anchor.Call("click")

	js.Global().Get("URL").Call("revokeObjectURL", url)
}
