package bridge

import (
	"context"
	"fmt"
	"path"

	"github.com/spoutn1k/brand/internal/imaging"
	"github.com/spoutn1k/brand/internal/vfs"
)

// OutputDir is where rendered frames land in the scratch filesystem.
const OutputDir = "out"

// Processor is the Module implementation doing the actual image work:
// reading originals from the scratch filesystem, rendering EXIF-tagged
// output, and generating thumbnails.
type Processor struct {
	fs vfs.FS
}

// NewProcessor returns a Processor working on the given scratch filesystem.
func NewProcessor(fs vfs.FS) *Processor {
	return &Processor{fs: fs}
}

// HandleMessage implements Module.
func (p *Processor) HandleMessage(_ context.Context, msg Message) (any, error) {
	switch msg.Kind {
	case KindProcess:
		return p.process(msg)
	case KindThumbnail:
		return p.thumbnail(msg)
	default:
		return nil, fmt.Errorf("unknown message kind %q", msg.Kind)
	}
}

func (p *Processor) process(msg Message) (ProcessAnswer, error) {
	if msg.Data == nil {
		return ProcessAnswer{}, fmt.Errorf("process message for %q carries no exposure data", msg.Meta.Name)
	}

	photo, err := p.original(msg)
	if err != nil {
		return ProcessAnswer{}, err
	}

	rendered, err := imaging.RenderJPEG(photo, msg.Meta.Orientation, *msg.Data)
	if err != nil {
		return ProcessAnswer{}, fmt.Errorf("rendering frame %d: %w", msg.Meta.Index, err)
	}

	if msg.Inline {
		return ProcessAnswer{Frame: rendered}, nil
	}

	name := path.Join(OutputDir, fmt.Sprintf("%02d.jpeg", msg.Meta.Index))
	if err := p.fs.Write(name, rendered); err != nil {
		return ProcessAnswer{}, fmt.Errorf("writing %s: %w", name, err)
	}

	return ProcessAnswer{Paths: []string{name}}, nil
}

func (p *Processor) thumbnail(msg Message) (ThumbnailAnswer, error) {
	photo, err := p.original(msg)
	if err != nil {
		return ThumbnailAnswer{}, err
	}

	preview, err := imaging.ThumbnailBase64(photo, msg.Meta.Orientation)
	if err != nil {
		return ThumbnailAnswer{}, fmt.Errorf("thumbnailing frame %d: %w", msg.Meta.Index, err)
	}

	return ThumbnailAnswer{Index: msg.Meta.Index, Base64: preview}, nil
}

func (p *Processor) original(msg Message) ([]byte, error) {
	if len(msg.Photo) > 0 {
		return msg.Photo, nil
	}
	if msg.Meta.LocalPath == "" {
		return nil, fmt.Errorf("no local file for frame %d", msg.Meta.Index)
	}

	photo, err := p.fs.Read(msg.Meta.LocalPath)
	if err != nil {
		return nil, fmt.Errorf("reading original for frame %d: %w", msg.Meta.Index, err)
	}
	return photo, nil
}
