package roll

import (
	"errors"
	"path"
	"strings"
)

// FileKind classifies a dropped file by extension.
type FileKind string

const (
	KindJPEG    FileKind = "image/jpeg"
	KindPNG     FileKind = "image/png"
	KindTIFF    FileKind = "image/tiff"
	KindTse     FileKind = "tse"
	KindUnknown FileKind = "unknown"
)

// KindOf maps a filename to its FileKind.
func KindOf(name string) FileKind {
	switch strings.ToLower(strings.TrimPrefix(path.Ext(name), ".")) {
	case "jpg", "jpeg":
		return KindJPEG
	case "png":
		return KindPNG
	case "tif", "tiff":
		return KindTIFF
	case "tse":
		return KindTse
	default:
		return KindUnknown
	}
}

// IsImage reports whether the kind is a decodable image format.
func (k FileKind) IsImage() bool {
	switch k {
	case KindJPEG, KindPNG, KindTIFF:
		return true
	default:
		return false
	}
}

// FileMetadata describes one imported image file.
type FileMetadata struct {
	Name        string      `json:"name"`
	LocalPath   string      `json:"local_fs_path,omitempty"`
	Index       uint32      `json:"index"`
	Orientation Orientation `json:"orientation"`
	Kind        FileKind    `json:"file_type"`
}

// IndexFromFilename extracts the frame index from a scanned filename: the
// first run of decimal digits, modulo 100. Returns 0 when the name carries
// no digits.
func IndexFromFilename(name string) uint32 {
	var value uint32
	var seen bool

	for _, r := range name {
		if r < '0' || r > '9' {
			if seen {
				break
			}
			continue
		}
		seen = true
		value = value*10 + uint32(r-'0')
		// Only the low two digits matter; keep the accumulator small.
		value %= 100_000
	}

	return value % 100
}

// ErrInvalidMetadata is returned when imported files collide on name or index.
var ErrInvalidMetadata = errors.New("metadata entries must have unique names and indexes")

// Validate checks that every entry has a distinct name and a distinct index.
func Validate(entries []FileMetadata) error {
	names := make(map[string]struct{}, len(entries))
	indexes := make(map[uint32]struct{}, len(entries))

	for _, entry := range entries {
		names[entry.Name] = struct{}{}
		indexes[entry.Index] = struct{}{}
	}

	if len(names) != len(entries) || len(indexes) != len(entries) {
		return ErrInvalidMetadata
	}
	return nil
}

// Reorder moves the entry at index old to index new, shifting every entry in
// between by one to keep the sequence dense. Entries outside [old, new] are
// untouched. The input slice is modified in place and returned.
func Reorder(entries []FileMetadata, old, new uint32) []FileMetadata {
	for i := range entries {
		switch entry := &entries[i]; {
		case entry.Index == old:
			entry.Index = new
		case new > old && entry.Index > old && entry.Index <= new:
			entry.Index--
		case new < old && entry.Index >= new && entry.Index < old:
			entry.Index++
		}
	}
	return entries
}
