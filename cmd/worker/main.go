//go:build js && wasm

// Command worker is the Web Worker shell around the processing module.
// After loading, it registers a global JavaScript function:
//
//	handle_message(jsonString) -> jsonString
//
// and binds the worker's onmessage event to relay inbound payloads through
// it, posting each answer back. The processing module itself is instantiated
// lazily on the first message; a failed instantiation is reported and
// retried on the next one.
package main

import (
	"context"
	"syscall/js"

	"github.com/spoutn1k/brand/internal/bridge"
	"github.com/spoutn1k/brand/internal/vfs"
)

func main() {
	b := bridge.New(func(_ context.Context) (bridge.Module, error) {
		return bridge.NewProcessor(vfs.NewMemFS()), nil
	})

	handle := js.FuncOf(func(_ js.Value, args []js.Value) any {
		if len(args) < 1 {
			return map[string]any{"error": "no message provided"}
		}

		answer, err := b.HandleJSON(context.Background(), args[0].String())
		if err != nil {
			return map[string]any{"error": err.Error()}
		}
		return answer
	})

	js.Global().Set("handle_message", handle)
	js.Global().Set("onmessage", js.FuncOf(func(_ js.Value, args []js.Value) any {
		payload := args[0].Get("data").String()
		js.Global().Call("postMessage", handle.Invoke(payload))
		return nil
	}))

	select {} // keep the WASM module alive for the worker's lifetime
}
