package roll_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/spoutn1k/brand/internal/gps"
	"github.com/spoutn1k/brand/internal/roll"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stamp(t *testing.T, value string) *roll.Timestamp {
	t.Helper()
	parsed, err := time.Parse(roll.TimestampFormat, value)
	require.NoError(t, err)
	return &roll.Timestamp{Time: parsed}
}

func TestNewData(t *testing.T) {
	data := roll.NewData(3)

	assert.Len(t, data.Exposures, 3)
	assert.Equal(t, []uint32{1, 2, 3}, data.Indexes())
	assert.Equal(t, roll.RollData{}, data.Roll)
}

func TestGenerateMergesRollFields(t *testing.T) {
	data := roll.Data{
		Roll: roll.RollData{Author: "someone", Make: "Nikon", Model: "F3", ISO: "160", Description: "Portra"},
		Exposures: map[uint32]roll.Exposure{
			1: {ShutterSpeed: "500", Aperture: "2.8", GPS: &gps.Coordinate{Lat: 48.8566, Lng: 2.3522}},
		},
	}

	merged := data.Generate(1)
	assert.Equal(t, "someone", merged.Author)
	assert.Equal(t, "Nikon", merged.Make)
	assert.Equal(t, "500", merged.ShutterSpeed)
	assert.Equal(t, "2.8", merged.Aperture)
	require.NotNil(t, merged.GPS)

	// Unknown index still yields the roll-level fields.
	fallback := data.Generate(42)
	assert.Equal(t, "Portra", fallback.Description)
	assert.Empty(t, fallback.ShutterSpeed)
	assert.Nil(t, fallback.GPS)
}

func TestExposureDataComplete(t *testing.T) {
	partial := roll.ExposureData{ShutterSpeed: "500", Comment: "mine"}
	defaults := roll.ExposureData{
		Author:       "someone",
		ShutterSpeed: "125",
		Comment:      "theirs",
		Date:         stamp(t, "2025 04 10 14 00 00"),
	}

	merged := partial.Complete(defaults)
	assert.Equal(t, "500", merged.ShutterSpeed)
	assert.Equal(t, "mine", merged.Comment)
	assert.Equal(t, "someone", merged.Author)
	require.NotNil(t, merged.Date)
}

func TestUpdateOverlaysSetFieldsOnly(t *testing.T) {
	exposure := roll.Exposure{ShutterSpeed: "500", Lens: "50mm"}
	exposure.Update(roll.Exposure{Lens: "85mm", Comment: "new"})

	assert.Equal(t, "500", exposure.ShutterSpeed)
	assert.Equal(t, "85mm", exposure.Lens)
	assert.Equal(t, "new", exposure.Comment)

	rollData := roll.RollData{Make: "Nikon"}
	rollData.Update(roll.RollData{Model: "F3"})
	assert.Equal(t, roll.RollData{Make: "Nikon", Model: "F3"}, rollData)
}

func TestSpreadShots(t *testing.T) {
	same := "2025 04 10 14 00 00"
	data := roll.Data{Exposures: map[uint32]roll.Exposure{
		1: {Date: stamp(t, same)},
		2: {Date: stamp(t, same)},
		3: {Date: stamp(t, same)},
		4: {Date: stamp(t, "2025 04 15 16 00 00")},
	}}

	spread := data.SpreadShots()

	assert.Equal(t, "2025 04 10 14 00 00", spread.Exposures[1].Date.Format(roll.TimestampFormat))
	assert.Equal(t, "2025 04 10 14 00 01", spread.Exposures[2].Date.Format(roll.TimestampFormat))
	assert.Equal(t, "2025 04 10 14 00 02", spread.Exposures[3].Date.Format(roll.TimestampFormat))
	assert.Equal(t, "2025 04 15 16 00 00", spread.Exposures[4].Date.Format(roll.TimestampFormat))
}

func TestDataJSONRoundTrip(t *testing.T) {
	data := roll.Data{
		Roll: roll.RollData{Make: "Nikon", ISO: "160"},
		Exposures: map[uint32]roll.Exposure{
			1: {Aperture: "1.8", Date: stamp(t, "2025 04 10 14 00 00"), GPS: &gps.Coordinate{Lat: 48.8566, Lng: 2.3522}},
		},
	}

	encoded, err := json.Marshal(data)
	require.NoError(t, err)

	var decoded roll.Data
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	assert.Equal(t, data, decoded)
}

func TestOrientationRotate(t *testing.T) {
	tests := []struct {
		base, angle, want roll.Orientation
	}{
		{roll.Normal, roll.Rotated90, roll.Rotated90},
		{roll.Rotated90, roll.Rotated270, roll.Normal},
		{roll.Rotated180, roll.Rotated180, roll.Normal},
		{roll.Rotated270, roll.Rotated90, roll.Normal},
		{roll.Rotated180, roll.Normal, roll.Rotated180},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.base.Rotate(tt.angle))
	}
}

func TestOrientationJSON(t *testing.T) {
	encoded, err := json.Marshal(roll.Rotated90)
	require.NoError(t, err)
	assert.Equal(t, `"Rotated90"`, string(encoded))

	var decoded roll.Orientation
	require.NoError(t, json.Unmarshal([]byte(`"Rotated270"`), &decoded))
	assert.Equal(t, roll.Rotated270, decoded)

	assert.Error(t, json.Unmarshal([]byte(`"Sideways"`), &decoded))
}
