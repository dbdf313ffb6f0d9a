// Package roll defines the film roll data model: roll-wide metadata,
// per-exposure fields, the selection and undo types the editor works on, and
// the TSE interchange codec.
//
// A field left empty means "not set"; merging and updating treat empty as
// absent, so a roll-level value fills any exposure that does not override it.
package roll

import (
	"fmt"
	"sort"
	"time"

	"github.com/spoutn1k/brand/internal/gps"
)

// MaxExposures caps the number of exposures a roll may hold.
const MaxExposures = 80

// TimestampFormat is the on-disk exposure date layout, shared by the TSE
// format and the JSON encoding of Data.
const TimestampFormat = "2006 01 02 15 04 05"

// htmlInputFormats are the layouts produced by a datetime-local input,
// with and without seconds.
var htmlInputFormats = []string{"2006-01-02T15:04:05", "2006-01-02T15:04"}

// Timestamp is a wall-clock exposure date, JSON-encoded with TimestampFormat.
type Timestamp struct {
	time.Time
}

// MarshalJSON implements json.Marshaler using TimestampFormat.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", t.Format(TimestampFormat))), nil
}

// UnmarshalJSON implements json.Unmarshaler using TimestampFormat.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("timestamp is not a JSON string: %s", data)
	}
	parsed, err := time.Parse(TimestampFormat, string(data[1:len(data)-1]))
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// ParseInputTimestamp reads a datetime-local input value, accepting both the
// with-seconds and without-seconds layouts the browser emits.
func ParseInputTimestamp(s string) (Timestamp, error) {
	var lastErr error
	for _, layout := range htmlInputFormats {
		parsed, err := time.Parse(layout, s)
		if err == nil {
			return Timestamp{Time: parsed}, nil
		}
		lastErr = err
	}
	return Timestamp{}, fmt.Errorf("parsing input timestamp %q: %w", s, lastErr)
}

// RollData holds the fields shared by every exposure on the roll.
type RollData struct {
	Author      string `json:"author,omitempty"`
	Make        string `json:"make,omitempty"`
	Model       string `json:"model,omitempty"`
	ISO         string `json:"iso,omitempty"`
	Description string `json:"description,omitempty"`
}

// Update overlays the non-empty fields of change onto r.
func (r *RollData) Update(change RollData) {
	r.Author = or(change.Author, r.Author)
	r.Make = or(change.Make, r.Make)
	r.Model = or(change.Model, r.Model)
	r.ISO = or(change.ISO, r.ISO)
	r.Description = or(change.Description, r.Description)
}

// Exposure holds the fields specific to a single frame.
type Exposure struct {
	ShutterSpeed string          `json:"sspeed,omitempty"`
	Aperture     string          `json:"aperture,omitempty"`
	Lens         string          `json:"lens,omitempty"`
	Comment      string          `json:"comment,omitempty"`
	Date         *Timestamp      `json:"date,omitempty"`
	GPS          *gps.Coordinate `json:"gps,omitempty"`
}

// Update overlays the set fields of change onto e.
func (e *Exposure) Update(change Exposure) {
	e.ShutterSpeed = or(change.ShutterSpeed, e.ShutterSpeed)
	e.Aperture = or(change.Aperture, e.Aperture)
	e.Lens = or(change.Lens, e.Lens)
	e.Comment = or(change.Comment, e.Comment)
	if change.Date != nil {
		e.Date = change.Date
	}
	if change.GPS != nil {
		e.GPS = change.GPS
	}
}

// ExposureData is the fully merged view of one frame: roll-level fields
// filled in wherever the exposure has no override. This is what the EXIF
// encoder consumes.
type ExposureData struct {
	Author       string          `json:"author,omitempty"`
	Make         string          `json:"make,omitempty"`
	Model        string          `json:"model,omitempty"`
	ShutterSpeed string          `json:"sspeed,omitempty"`
	Aperture     string          `json:"aperture,omitempty"`
	ISO          string          `json:"iso,omitempty"`
	Lens         string          `json:"lens,omitempty"`
	Description  string          `json:"description,omitempty"`
	Comment      string          `json:"comment,omitempty"`
	Date         *Timestamp      `json:"date,omitempty"`
	GPS          *gps.Coordinate `json:"gps,omitempty"`
}

// Complete fills every unset field of d from other and returns the result.
func (d ExposureData) Complete(other ExposureData) ExposureData {
	d.Author = or(d.Author, other.Author)
	d.Make = or(d.Make, other.Make)
	d.Model = or(d.Model, other.Model)
	d.ShutterSpeed = or(d.ShutterSpeed, other.ShutterSpeed)
	d.Aperture = or(d.Aperture, other.Aperture)
	d.ISO = or(d.ISO, other.ISO)
	d.Lens = or(d.Lens, other.Lens)
	d.Description = or(d.Description, other.Description)
	d.Comment = or(d.Comment, other.Comment)
	if d.Date == nil {
		d.Date = other.Date
	}
	if d.GPS == nil {
		d.GPS = other.GPS
	}
	return d
}

// Data is the complete state of one roll being edited: roll-wide fields plus
// the exposures keyed by frame index (starting at 1).
type Data struct {
	Roll      RollData            `json:"roll"`
	Exposures map[uint32]Exposure `json:"exposures"`
}

// NewData returns a Data with count empty exposures indexed 1..count.
func NewData(count uint32) Data {
	exposures := make(map[uint32]Exposure, count)
	for i := uint32(1); i <= count; i++ {
		exposures[i] = Exposure{}
	}
	return Data{Exposures: exposures}
}

// Generate returns the merged metadata for the given frame index. An index
// with no exposure entry yields the roll-level fields alone.
func (d Data) Generate(index uint32) ExposureData {
	exposure := d.Exposures[index]

	return ExposureData{
		Author:       d.Roll.Author,
		Make:         d.Roll.Make,
		Model:        d.Roll.Model,
		ISO:          d.Roll.ISO,
		Description:  d.Roll.Description,
		ShutterSpeed: exposure.ShutterSpeed,
		Aperture:     exposure.Aperture,
		Lens:         exposure.Lens,
		Comment:      exposure.Comment,
		Date:         exposure.Date,
		GPS:          exposure.GPS,
	}
}

// Indexes returns the exposure indexes in ascending order.
func (d Data) Indexes() []uint32 {
	indexes := make([]uint32, 0, len(d.Exposures))
	for i := range d.Exposures {
		indexes = append(indexes, i)
	}
	sort.Slice(indexes, func(a, b int) bool { return indexes[a] < indexes[b] })
	return indexes
}

// SpreadShots offsets runs of identical consecutive timestamps by one second
// each, so frames shot in the same recorded minute sort deterministically.
func (d Data) SpreadShots() Data {
	var last time.Time
	var offset int

	for _, index := range d.Indexes() {
		exposure := d.Exposures[index]
		if exposure.Date == nil {
			continue
		}

		switch stamp := exposure.Date.Time; {
		case !last.IsZero() && stamp.Equal(last):
			exposure.Date = &Timestamp{Time: stamp.Add(time.Duration(offset) * time.Second)}
			offset++
			d.Exposures[index] = exposure
		default:
			last = stamp
			offset = 1
		}
	}

	return d
}

// or returns a when it is set, b otherwise.
func or(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
