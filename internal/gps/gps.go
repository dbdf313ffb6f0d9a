// Package gps holds the coordinate type shared by the map picker, the TSE
// codec, and the EXIF encoder, along with the conversions between its three
// representations: decimal degrees, the "lat, lng" text field format, and the
// degrees/minutes/seconds rationals the EXIF GPS directory expects.
package gps

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Coordinate is a WGS84 latitude/longitude pair in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Round8 formats a decimal-degree value with exactly 8 fractional digits,
// the precision the picker forwards across the module boundary.
func Round8(v float64) string {
	return strconv.FormatFloat(v, 'f', 8, 64)
}

// String renders the coordinate in the "lat, lng" form used by the GPS text
// input and the TSE file format.
func (c Coordinate) String() string {
	return fmt.Sprintf("%s, %s", trimZeros(c.Lat), trimZeros(c.Lng))
}

func trimZeros(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ParsePair reads a "lat, lng" pair, tolerating any amount of whitespace
// around the comma. This is the inverse of Coordinate.String.
func ParsePair(s string) (Coordinate, error) {
	lhs, rhs, found := strings.Cut(s, ",")
	if !found {
		return Coordinate{}, fmt.Errorf("bad GPS element format: %q", s)
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(lhs), 64)
	if err != nil {
		return Coordinate{}, fmt.Errorf("bad GPS latitude %q: %w", lhs, err)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(rhs), 64)
	if err != nil {
		return Coordinate{}, fmt.Errorf("bad GPS longitude %q: %w", rhs, err)
	}

	return Coordinate{Lat: lat, Lng: lng}, nil
}

// Rational is an unsigned fraction, the EXIF RATIONAL wire type.
type Rational struct {
	Num uint32
	Den uint32
}

// DMS converts an absolute decimal-degree value to the degree/minute/second
// rational triple the EXIF standard stores. Degrees and minutes are whole;
// seconds keep fractional precision through the denominator.
func DMS(deg float64) [3]Rational {
	deg = math.Abs(deg)

	d := Rational{Num: uint32(deg), Den: 1}
	m := Rational{Num: uint32(frac(deg) * 60), Den: 1}

	secRaw := frac(deg*60) * 60
	s := approximate(secRaw)

	return [3]Rational{d, m, s}
}

func frac(v float64) float64 {
	return v - math.Trunc(v)
}

// approximate finds a rational representation of v with up to 1e-7 absolute
// error, falling back to truncation when no denominator fits in 32 bits.
func approximate(v float64) Rational {
	const tolerance = 1e-7

	// Scaled-integer approach: seconds never exceed 60, so a fixed 1e7
	// denominator keeps the numerator well inside uint32 range.
	const scale = 1e7
	if v*scale < math.MaxUint32 {
		r := Rational{Num: uint32(math.Round(v * scale)), Den: scale}
		if math.Abs(float64(r.Num)/float64(r.Den)-v) <= tolerance {
			return r
		}
	}
	return Rational{Num: uint32(v), Den: 1}
}

// LatRef returns the EXIF hemisphere reference for a latitude.
func LatRef(lat float64) string {
	if lat < 0 {
		return "S"
	}
	return "N"
}

// LngRef returns the EXIF hemisphere reference for a longitude.
func LngRef(lng float64) string {
	if lng < 0 {
		return "W"
	}
	return "E"
}
