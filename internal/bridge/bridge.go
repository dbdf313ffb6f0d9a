// Package bridge isolates the processing module behind an asynchronous
// message boundary. The hosting context (a Web Worker in the browser, a
// plain goroutine in the CLI) forwards each inbound message through a Bridge,
// which lazily instantiates the module and relays the answer.
//
// Two deliberate contract choices, fixed here once instead of varying by
// call site:
//
//   - every message goes through the same wrapper; the handler is never
//     rebound to the module's own entry point after the first message;
//   - the module is instantiated once and cached after the first successful
//     load. A failed load is not cached, so the next message retries it.
package bridge

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spoutn1k/brand/internal/roll"
)

// Kind discriminates the two message types the module understands.
type Kind string

const (
	// KindProcess renders one frame to its final EXIF-tagged output.
	KindProcess Kind = "process"
	// KindThumbnail generates the preview thumbnail for one frame.
	KindThumbnail Kind = "thumbnail"
)

// Message is the single inbound payload type of the bridge. Photo carries
// the original's bytes inline for hosting contexts whose scratch filesystem
// the sender cannot reach (each Web Worker owns its own); when empty, the
// original is read from the filesystem at Meta.LocalPath instead.
type Message struct {
	Kind   Kind               `json:"kind"`
	Meta   roll.FileMetadata  `json:"meta"`
	Data   *roll.ExposureData `json:"data,omitempty"`
	Photo  []byte             `json:"photo,omitempty"`
	Inline bool               `json:"inline,omitempty"`
}

// ProcessAnswer reports the outcome of a KindProcess message: the written
// paths, or the rendered frame itself when the message asked for it inline.
type ProcessAnswer struct {
	Paths []string `json:"paths,omitempty"`
	Frame []byte   `json:"frame,omitempty"`
}

// ThumbnailAnswer carries one generated preview.
type ThumbnailAnswer struct {
	Index  uint32 `json:"index"`
	Base64 string `json:"base64"`
}

// Module is the computation boundary behind the bridge. Implementations
// receive one message and return the JSON-encodable answer for it.
type Module interface {
	HandleMessage(ctx context.Context, msg Message) (any, error)
}

// Loader instantiates a Module. Loading may be expensive (fetching and
// compiling a binary); the Bridge calls it at most once per successful load.
type Loader func(ctx context.Context) (Module, error)

// Bridge forwards messages to a lazily instantiated Module.
type Bridge struct {
	load   Loader
	module Module
}

// New returns a Bridge that instantiates its module with load on first use.
func New(load Loader) *Bridge {
	return &Bridge{load: load}
}

// Handle forwards one message. The module is loaded on the first call and
// cached; a load failure is returned to the caller and retried on the next
// message. Messages are expected to arrive sequentially, in delivery order.
func (b *Bridge) Handle(ctx context.Context, msg Message) (any, error) {
	if b.module == nil {
		module, err := b.load(ctx)
		if err != nil {
			return nil, fmt.Errorf("instantiating module: %w", err)
		}
		b.module = module
	}

	answer, err := b.module.HandleMessage(ctx, msg)
	if err != nil {
		return nil, fmt.Errorf("handling %s message: %w", msg.Kind, err)
	}
	return answer, nil
}

// HandleJSON is the wire-format entry point used by the worker shell: it
// decodes the inbound payload, forwards it, and encodes the answer.
func (b *Bridge) HandleJSON(ctx context.Context, payload string) (string, error) {
	var msg Message
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		return "", fmt.Errorf("invalid message JSON: %w", err)
	}

	answer, err := b.Handle(ctx, msg)
	if err != nil {
		return "", err
	}

	encoded, err := json.Marshal(answer)
	if err != nil {
		return "", fmt.Errorf("marshaling answer: %w", err)
	}
	return string(encoded), nil
}
