//go:build js && wasm

package bridge

import (
	"encoding/json"
	"fmt"
	"syscall/js"
)

// NewWorkerSpawn returns a SpawnFunc running each task on its own Web Worker
// loaded from script. The worker is terminated as soon as it answers; tasks
// travel as the HandleJSON wire format.
func NewWorkerSpawn(script string) SpawnFunc {
	return func(task Message, done func(answer any, err error)) error {
		encoded, err := json.Marshal(task)
		if err != nil {
			return fmt.Errorf("encoding task: %w", err)
		}

		worker := js.Global().Get("Worker").New(script)

		var onMessage js.Func
		onMessage = js.FuncOf(func(_ js.Value, args []js.Value) any {
			worker.Call("terminate")
			onMessage.Release()
			done(decodeAnswer(task.Kind, args[0].Get("data")))
			return nil
		})
		worker.Set("onmessage", onMessage)
		worker.Call("postMessage", string(encoded))
		return nil
	}
}

// decodeAnswer turns a worker reply back into the answer type for the task's
// kind. The shell posts a JSON string on success and an {error} object on
// failure.
func decodeAnswer(kind Kind, data js.Value) (any, error) {
	if data.Type() == js.TypeObject {
		return nil, fmt.Errorf("worker: %s", data.Get("error").String())
	}

	payload := []byte(data.String())
	switch kind {
	case KindProcess:
		var answer ProcessAnswer
		if err := json.Unmarshal(payload, &answer); err != nil {
			return nil, fmt.Errorf("decoding process answer: %w", err)
		}
		return answer, nil
	case KindThumbnail:
		var answer ThumbnailAnswer
		if err := json.Unmarshal(payload, &answer); err != nil {
			return nil, fmt.Errorf("decoding thumbnail answer: %w", err)
		}
		return answer, nil
	default:
		return data.String(), nil
	}
}
