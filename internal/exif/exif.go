// Package exif builds the APP1 EXIF payload embedded in exported images.
//
// The payload is a little-endian TIFF structure with three directories:
// IFD0 carries the artist, camera, and description fields, the Exif sub-IFD
// carries ISO, shutter speed and the original date, and the GPS IFD carries
// the coordinates as degree/minute/second rationals. Only fields present on
// the merged exposure are written; an exposure with no set field still
// produces a valid (empty) IFD0.
package exif

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sort"
	"strconv"

	"github.com/spoutn1k/brand/internal/gps"
	"github.com/spoutn1k/brand/internal/roll"
)

// ExifTimestampFormat is the EXIF 2.3 ASCII date layout.
const ExifTimestampFormat = "2006:01:02 15:04:05"

// IFD0 and sub-IFD tags.
const (
	tagImageDescription = 0x010E
	tagMake             = 0x010F
	tagModel            = 0x0110
	tagDateTime         = 0x0132
	tagArtist           = 0x013B
	tagExifIFD          = 0x8769
	tagGPSIFD           = 0x8825

	tagISO              = 0x8827
	tagDateTimeOriginal = 0x9003
	tagShutterSpeed     = 0x9201

	tagGPSLatitudeRef  = 0x0001
	tagGPSLatitude     = 0x0002
	tagGPSLongitudeRef = 0x0003
	tagGPSLongitude    = 0x0004
)

// TIFF field types.
const (
	typeASCII    = 2
	typeShort    = 3
	typeLong     = 4
	typeRational = 5
)

const (
	tiffHeaderSize = 8
	entrySize      = 12
)

// Build renders the full APP1 payload ("Exif\x00\x00" + TIFF structure) for
// one merged exposure.
func Build(data roll.ExposureData) ([]byte, error) {
	ifd0 := newIFD()

	if data.Author != "" {
		ifd0.putASCII(tagArtist, data.Author)
	}
	if data.Make != "" {
		ifd0.putASCII(tagMake, data.Make)
	}
	if data.Model != "" {
		ifd0.putASCII(tagModel, data.Model)
	}
	if description := describe(data); description != "" {
		ifd0.putASCII(tagImageDescription, description)
	}
	if data.Date != nil {
		ifd0.putASCII(tagDateTime, data.Date.Format(ExifTimestampFormat))
	}

	sub := exifIFD(data)
	ifd0.putLong(tagExifIFD, 0) // offset patched below

	gpsDir := gpsIFD(data)
	if gpsDir != nil {
		ifd0.putLong(tagGPSIFD, 0)
	}

	// Lay the directories out back to back after the TIFF header, then patch
	// the two pointer entries with the resulting absolute offsets.
	exifOffset := uint32(tiffHeaderSize) + ifd0.size()
	ifd0.setLong(tagExifIFD, exifOffset)

	if gpsDir != nil {
		ifd0.setLong(tagGPSIFD, exifOffset+sub.size())
	}

	var tiff bytes.Buffer
	tiff.Write([]byte{'I', 'I', 42, 0})
	binary.Write(&tiff, binary.LittleEndian, uint32(tiffHeaderSize))

	if err := ifd0.write(&tiff, tiffHeaderSize); err != nil {
		return nil, fmt.Errorf("writing IFD0: %w", err)
	}
	if err := sub.write(&tiff, exifOffset); err != nil {
		return nil, fmt.Errorf("writing Exif IFD: %w", err)
	}
	if gpsDir != nil {
		if err := gpsDir.write(&tiff, exifOffset+sub.size()); err != nil {
			return nil, fmt.Errorf("writing GPS IFD: %w", err)
		}
	}

	payload := append([]byte("Exif\x00\x00"), tiff.Bytes()...)
	return payload, nil
}

func describe(data roll.ExposureData) string {
	switch {
	case data.Description != "" && data.Comment != "":
		return fmt.Sprintf("%s - %s", data.Description, data.Comment)
	case data.Description != "":
		return data.Description
	default:
		return data.Comment
	}
}

func exifIFD(data roll.ExposureData) *ifd {
	dir := newIFD()

	if iso, err := strconv.ParseUint(data.ISO, 10, 16); err == nil {
		dir.putShort(tagISO, uint16(iso))
	}
	if sspeed, err := strconv.ParseUint(data.ShutterSpeed, 10, 16); err == nil {
		dir.putShort(tagShutterSpeed, uint16(sspeed))
	}
	if data.Date != nil {
		dir.putASCII(tagDateTimeOriginal, data.Date.Format(ExifTimestampFormat))
	}

	return dir
}

func gpsIFD(data roll.ExposureData) *ifd {
	if data.GPS == nil {
		return nil
	}

	dir := newIFD()
	dir.putASCII(tagGPSLatitudeRef, gps.LatRef(data.GPS.Lat))
	dir.putRationals(tagGPSLatitude, gps.DMS(data.GPS.Lat))
	dir.putASCII(tagGPSLongitudeRef, gps.LngRef(data.GPS.Lng))
	dir.putRationals(tagGPSLongitude, gps.DMS(data.GPS.Lng))
	return dir
}

// entry is one 12-byte directory record plus its overflow payload.
type entry struct {
	tag     uint16
	typ     uint16
	count   uint32
	payload []byte // raw field value; spilled after the IFD when > 4 bytes
}

type ifd struct {
	entries []entry
}

func newIFD() *ifd { return &ifd{} }

func (f *ifd) putASCII(tag uint16, value string) {
	payload := append([]byte(value), 0)
	f.entries = append(f.entries, entry{tag: tag, typ: typeASCII, count: uint32(len(payload)), payload: payload})
}

func (f *ifd) putShort(tag uint16, value uint16) {
	payload := make([]byte, 2)
	binary.LittleEndian.PutUint16(payload, value)
	f.entries = append(f.entries, entry{tag: tag, typ: typeShort, count: 1, payload: payload})
}

func (f *ifd) putLong(tag uint16, value uint32) {
	payload := make([]byte, 4)
	binary.LittleEndian.PutUint32(payload, value)
	f.entries = append(f.entries, entry{tag: tag, typ: typeLong, count: 1, payload: payload})
}

func (f *ifd) setLong(tag uint16, value uint32) {
	for i := range f.entries {
		if f.entries[i].tag == tag {
			binary.LittleEndian.PutUint32(f.entries[i].payload, value)
			return
		}
	}
}

func (f *ifd) putRationals(tag uint16, values [3]gps.Rational) {
	payload := make([]byte, 0, len(values)*8)
	for _, v := range values {
		payload = binary.LittleEndian.AppendUint32(payload, v.Num)
		payload = binary.LittleEndian.AppendUint32(payload, v.Den)
	}
	f.entries = append(f.entries, entry{tag: tag, typ: typeRational, count: uint32(len(values)), payload: payload})
}

// size returns the encoded length of the directory: entry table, the zero
// next-IFD pointer, and spilled payloads.
func (f *ifd) size() uint32 {
	size := uint32(2 + len(f.entries)*entrySize + 4)
	for _, e := range f.entries {
		if len(e.payload) > 4 {
			size += uint32(len(e.payload))
		}
	}
	return size
}

// write serializes the directory assuming it starts at the given absolute
// offset within the TIFF structure. Entries are emitted in ascending tag
// order as the EXIF standard requires.
func (f *ifd) write(buf *bytes.Buffer, offset uint32) error {
	sort.Slice(f.entries, func(a, b int) bool { return f.entries[a].tag < f.entries[b].tag })

	spillOffset := offset + uint32(2+len(f.entries)*entrySize+4)
	var spill bytes.Buffer

	if err := binary.Write(buf, binary.LittleEndian, uint16(len(f.entries))); err != nil {
		return err
	}

	for _, e := range f.entries {
		binary.Write(buf, binary.LittleEndian, e.tag)
		binary.Write(buf, binary.LittleEndian, e.typ)
		binary.Write(buf, binary.LittleEndian, e.count)

		value := make([]byte, 4)
		if len(e.payload) > 4 {
			binary.LittleEndian.PutUint32(value, spillOffset+uint32(spill.Len()))
			spill.Write(e.payload)
		} else {
			copy(value, e.payload)
		}
		buf.Write(value)
	}

	// No chained IFD.
	binary.Write(buf, binary.LittleEndian, uint32(0))
	buf.Write(spill.Bytes())
	return nil
}
