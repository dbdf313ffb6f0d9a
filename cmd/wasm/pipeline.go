//go:build js && wasm

package main

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"syscall/js"

	"github.com/spoutn1k/brand/internal/archive"
	"github.com/spoutn1k/brand/internal/bridge"
	"github.com/spoutn1k/brand/internal/dom"
	"github.com/spoutn1k/brand/internal/editor"
	"github.com/spoutn1k/brand/internal/roll"
	"github.com/spoutn1k/brand/internal/vfs"
)

// importFiles ingests a file selection: image files are registered in the
// handle registry and recorded as metadata, everything else is skipped.
// A fresh roll is seeded when none is loaded yet, then thumbnails are
// requested for the whole selection.
func (p *page) importFiles(files js.Value) error {
	var entries []roll.FileMetadata
	for i := 0; i < files.Length(); i++ {
		file := files.Index(i)
		name := file.Get("name").String()

		kind := roll.KindOf(name)
		if !kind.IsImage() {
			p.logger.Warn("skipping non-image file", "name", name)
			continue
		}

		entries = append(entries, roll.FileMetadata{
			Name:      name,
			LocalPath: p.handles.Register(file),
			Index:     roll.IndexFromFilename(name),
			Kind:      kind,
		})
	}

	if err := roll.Validate(entries); err != nil {
		return err
	}
	if err := p.editor.SetMetadata(entries); err != nil {
		return err
	}

	if _, err := p.editor.Data(); errors.Is(err, editor.ErrNoData) {
		if err := p.editor.SetData(roll.NewData(uint32(len(entries)))); err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	p.requestThumbnails(entries)
	return nil
}

// withPhotos reads every entry's registered handle, builds one task per
// readable photo, and hands the batch to run once the last read lands.
// Reads resolve on the event loop, so run is always called asynchronously.
func (p *page) withPhotos(entries []roll.FileMetadata, build func(meta roll.FileMetadata, photo []byte) bridge.Message, run func(tasks []bridge.Message)) {
	var tasks []bridge.Message
	var pending, completed int

	for _, entry := range entries {
		handle, ok := p.handles.Get(entry.LocalPath)
		if !ok {
			p.logger.Error("no handle registered for file", "name", entry.Name)
			continue
		}

		pending++
		entry := entry
		dom.FileBytes(handle.(js.Value), func(photo []byte, err error) {
			if err != nil {
				p.logger.Error("reading photo", "name", entry.Name, "error", err)
			} else {
				tasks = append(tasks, build(entry, photo))
			}

			completed++
			if completed == pending {
				run(tasks)
			}
		})
	}

	if pending == 0 {
		run(nil)
	}
}

// requestThumbnails fans the entries out to the worker pool and appends
// each preview to the gallery as it arrives.
func (p *page) requestThumbnails(entries []roll.FileMetadata) {
	p.withPhotos(entries,
		func(meta roll.FileMetadata, photo []byte) bridge.Message {
			return bridge.Message{Kind: bridge.KindThumbnail, Meta: meta, Photo: photo}
		},
		func(tasks []bridge.Message) {
			pool := bridge.NewPool(tasks, p.concurrency, p.spawn, p.showThumbnail)
			go func() {
				if err := pool.Join(context.Background()); err != nil {
					p.logger.Error("generating thumbnails", "error", err)
				}
			}()
		})
}

// showThumbnail appends one settled preview to the gallery.
func (p *page) showThumbnail(result bridge.Result) {
	if result.Err != nil {
		p.logger.Error("thumbnail failed", "name", result.Task.Meta.Name, "error", result.Err)
		return
	}
	answer, ok := result.Answer.(bridge.ThumbnailAnswer)
	if !ok {
		p.logger.Error("unexpected thumbnail answer", "name", result.Task.Meta.Name)
		return
	}

	gallery, err := dom.ByID(galleryID)
	if err != nil {
		p.logger.Error("no gallery element", "error", err)
		return
	}
	img := js.Global().Get("document").Call("createElement", "img")
	img.Set("src", "data:image/jpeg;base64,"+answer.Base64)
	img.Set("title", result.Task.Meta.Name)
	gallery.Call("appendChild", img)
}

// exportRoll renders every frame on the worker pool and delivers the
// archive parts as downloads. The page gets an immediate null; failures
// surface on the console.
func (p *page) exportRoll(_ js.Value, _ []js.Value) any {
	if p.editor == nil {
		return errorString("setup has not run")
	}

	entries, merged, err := p.editor.Tasks()
	if err != nil {
		return errorValue(err)
	}
	data, err := p.editor.Data()
	if err != nil {
		return errorValue(err)
	}

	dataFor := make(map[uint32]*roll.ExposureData, len(entries))
	for i := range entries {
		exposure := merged[i]
		dataFor[entries[i].Index] = &exposure
	}

	p.withPhotos(entries,
		func(meta roll.FileMetadata, photo []byte) bridge.Message {
			return bridge.Message{
				Kind:   bridge.KindProcess,
				Meta:   meta,
				Data:   dataFor[meta.Index],
				Photo:  photo,
				Inline: true,
			}
		},
		func(tasks []bridge.Message) {
			frames := map[uint32][]byte{}
			pool := bridge.NewPool(tasks, p.concurrency, p.spawn, func(result bridge.Result) {
				if result.Err != nil {
					return
				}
				if answer, ok := result.Answer.(bridge.ProcessAnswer); ok {
					frames[result.Task.Meta.Index] = answer.Frame
				}
			})
			go func() {
				if err := pool.Join(context.Background()); err != nil {
					p.logger.Error("rendering roll", "error", err)
					return
				}
				if err := p.deliverArchive(data, frames); err != nil {
					p.logger.Error("archiving roll", "error", err)
				}
			}()
		})
	return nil
}

// deliverArchive stages the rendered frames in a scratch filesystem and
// exports them, downloading each archive part as it completes.
func (p *page) deliverArchive(data roll.Data, frames map[uint32][]byte) error {
	fs := vfs.NewMemFS()
	for index, frame := range frames {
		name := path.Join(bridge.OutputDir, fmt.Sprintf("%02d.jpeg", index))
		if err := fs.Write(name, frame); err != nil {
			return fmt.Errorf("staging %s: %w", name, err)
		}
	}

	sink := func(name string, part []byte) error {
		dom.Download(name, part)
		return nil
	}
	return archive.Export(fs, bridge.OutputDir, folderName(data), data, archive.DefaultSizeLimit, sink)
}

// folderName derives the archive folder from the roll description.
func folderName(data roll.Data) string {
	name := strings.TrimSpace(data.Roll.Description)
	if name == "" {
		return "roll"
	}
	return strings.ReplaceAll(name, " ", "_")
}

// concurrency reports how many workers to run at once, following the
// machine's advertised parallelism.
func concurrency() int {
	value := js.Global().Get("navigator").Get("hardwareConcurrency")
	if value.Type() != js.TypeNumber || value.Int() < 1 {
		return 1
	}
	return value.Int()
}
