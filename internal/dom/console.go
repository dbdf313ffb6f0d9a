//go:build js && wasm

package dom

import (
	"log/slog"
	"os"
)

// Logger returns a structured logger writing to the browser console at the
// given level. The Go runtime routes stderr to the console line by line.
func Logger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
