// Package imaging decodes scanned frames, applies their stored orientation,
// scales them, and encodes EXIF-tagged JPEG output.
package imaging

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"image"
	"image/jpeg"

	// Frame scans arrive as JPEG, PNG, or TIFF.
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"

	"github.com/spoutn1k/brand/internal/exif"
	"github.com/spoutn1k/brand/internal/roll"
)

const (
	// OutputMaxSide bounds the longest side of an exported frame.
	OutputMaxSide = 2000
	// ThumbnailMaxSide bounds the longest side of a preview thumbnail.
	ThumbnailMaxSide = 512
	// OutputQuality is the JPEG quality of exported frames.
	OutputQuality = 90
)

// Decode reads a frame scan in any supported format.
func Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	return img, nil
}

// Rotate returns img turned by the given quarter-turn orientation.
// Rotations are clockwise, matching the editor's rotate-right control.
func Rotate(img image.Image, orientation roll.Orientation) image.Image {
	if orientation == roll.Normal {
		return img
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	var out *image.NRGBA
	switch orientation {
	case roll.Rotated180:
		out = image.NewNRGBA(image.Rect(0, 0, w, h))
	default:
		out = image.NewNRGBA(image.Rect(0, 0, h, w))
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := img.At(bounds.Min.X+x, bounds.Min.Y+y)
			switch orientation {
			case roll.Rotated90:
				out.Set(h-1-y, x, c)
			case roll.Rotated180:
				out.Set(w-1-x, h-1-y, c)
			case roll.Rotated270:
				out.Set(y, w-1-x, c)
			}
		}
	}
	return out
}

// FitWithin scales img down so neither side exceeds maxSide, preserving the
// aspect ratio. Images already within bounds are returned unscaled.
func FitWithin(img image.Image, maxSide int, scaler draw.Scaler) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxSide && h <= maxSide {
		return img
	}

	outW, outH := maxSide, maxSide
	if w > h {
		outH = h * maxSide / w
	} else {
		outW = w * maxSide / h
	}

	out := image.NewNRGBA(image.Rect(0, 0, outW, outH))
	scaler.Scale(out, out.Bounds(), img, bounds, draw.Over, nil)
	return out
}

// RenderJPEG runs the full export pipeline for one frame: decode, orient,
// fit within OutputMaxSide, and encode a quality-90 JPEG carrying the EXIF
// payload for the merged exposure metadata.
func RenderJPEG(photo []byte, orientation roll.Orientation, data roll.ExposureData) ([]byte, error) {
	img, err := Decode(photo)
	if err != nil {
		return nil, err
	}

	img = FitWithin(Rotate(img, orientation), OutputMaxSide, draw.CatmullRom)

	app1, err := exif.Build(data)
	if err != nil {
		return nil, fmt.Errorf("building EXIF payload: %w", err)
	}

	var out bytes.Buffer
	if err := encodeJPEG(&out, img, app1, OutputQuality); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// ThumbnailBase64 produces the base64-encoded JPEG preview for one frame.
// Thumbnails trade quality for speed: nearest-neighbour scaling, default
// JPEG quality, no metadata.
func ThumbnailBase64(photo []byte, orientation roll.Orientation) (string, error) {
	img, err := Decode(photo)
	if err != nil {
		return "", err
	}

	img = FitWithin(Rotate(img, orientation), ThumbnailMaxSide, draw.NearestNeighbor)

	var out bytes.Buffer
	if err := jpeg.Encode(&out, img, nil); err != nil {
		return "", fmt.Errorf("encoding thumbnail: %w", err)
	}
	return base64.StdEncoding.EncodeToString(out.Bytes()), nil
}

// encodeJPEG writes img as a JPEG with the APP1 segment spliced in directly
// after the SOI marker, where EXIF readers expect it.
func encodeJPEG(w *bytes.Buffer, img image.Image, app1 []byte, quality int) error {
	var plain bytes.Buffer
	if err := jpeg.Encode(&plain, img, &jpeg.Options{Quality: quality}); err != nil {
		return fmt.Errorf("encoding JPEG: %w", err)
	}

	encoded := plain.Bytes()
	if len(encoded) < 2 || encoded[0] != 0xFF || encoded[1] != 0xD8 {
		return fmt.Errorf("encoder produced no SOI marker")
	}

	if len(app1)+2 > 0xFFFF {
		return fmt.Errorf("EXIF payload too large for an APP1 segment: %d bytes", len(app1))
	}

	w.Write(encoded[:2])
	w.Write([]byte{0xFF, 0xE1})
	binary.Write(w, binary.BigEndian, uint16(len(app1)+2))
	w.Write(app1)
	w.Write(encoded[2:])
	return nil
}
