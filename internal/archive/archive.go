// Package archive packs rendered frames into tar archives for download.
// Archives are split so no single download exceeds the size limit; each part
// is handed to a sink as it completes (a blob download in the browser, a
// file on disk for the CLI).
package archive

import (
	"archive/tar"
	"bytes"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/spoutn1k/brand/internal/roll"
	"github.com/spoutn1k/brand/internal/vfs"
)

// DefaultSizeLimit caps one archive part just under 2 GiB.
const DefaultSizeLimit = 2*1024*1024*1024 - 1

// Sink receives one finished archive part.
type Sink func(name string, data []byte) error

// Builder accumulates files into sequentially numbered tar parts.
type Builder struct {
	folder string
	sink   Sink
	limit  int

	buf   bytes.Buffer
	tw    *tar.Writer
	count int
	part  int
	now   func() time.Time
}

// NewBuilder returns a Builder writing parts named "<folder>-<n>.tar" whose
// entries live under <folder>/ inside the archive.
func NewBuilder(folder string, sink Sink) *Builder {
	b := &Builder{folder: folder, sink: sink, limit: DefaultSizeLimit, part: 1, now: time.Now}
	b.tw = tar.NewWriter(&b.buf)
	return b
}

// WithLimit overrides the per-part size limit. Intended for tests and the
// CLI's --limit flag.
func (b *Builder) WithLimit(limit int) *Builder {
	b.limit = limit
	return b
}

// Add appends one file to the current part, rolling over to a new part first
// when the file would push the accumulated payload past the limit.
func (b *Builder) Add(name string, data []byte) error {
	if b.count > 0 && b.count+len(data) > b.limit {
		if err := b.flush(); err != nil {
			return err
		}
	}
	b.count += len(data)

	header := &tar.Header{
		Name:    path.Join(b.folder, name),
		Mode:    0o644,
		Size:    int64(len(data)),
		ModTime: b.now(),
	}
	if err := b.tw.WriteHeader(header); err != nil {
		return fmt.Errorf("writing tar header for %s: %w", name, err)
	}
	if _, err := b.tw.Write(data); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

// Close flushes the final part. The Builder must not be reused afterwards.
func (b *Builder) Close() error {
	return b.flush()
}

func (b *Builder) flush() error {
	if err := b.tw.Close(); err != nil {
		return fmt.Errorf("closing tar part %d: %w", b.part, err)
	}

	name := fmt.Sprintf("%s-%d.tar", b.folder, b.part)
	if err := b.sink(name, bytes.Clone(b.buf.Bytes())); err != nil {
		return fmt.Errorf("delivering %s: %w", name, err)
	}

	b.part++
	b.count = 0
	b.buf.Reset()
	b.tw = tar.NewWriter(&b.buf)
	return nil
}

// Export archives a finished roll: the TSE render first as index.tse, then
// every rendered file found under dir in the scratch filesystem. Parts roll
// over at limit bytes.
func Export(fs vfs.FS, dir, folder string, data roll.Data, limit int, sink Sink) error {
	builder := NewBuilder(folder, sink).WithLimit(limit)

	var tse strings.Builder
	if err := roll.WriteTSE(&tse, data); err != nil {
		return fmt.Errorf("rendering TSE index: %w", err)
	}
	if err := builder.Add("index.tse", []byte(tse.String())); err != nil {
		return err
	}

	names, err := fs.List(dir)
	if err != nil {
		return fmt.Errorf("listing %s: %w", dir, err)
	}
	for _, name := range names {
		file, err := fs.Read(path.Join(dir, name))
		if err != nil {
			return fmt.Errorf("reading %s: %w", name, err)
		}
		if err := builder.Add(name, file); err != nil {
			return err
		}
	}

	return builder.Close()
}
