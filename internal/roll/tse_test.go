package roll_test

import (
	"strings"
	"testing"

	"github.com/spoutn1k/brand/internal/gps"
	"github.com/spoutn1k/brand/internal/roll"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTSE = "\t2.8\t50mm\tBalade dans Paris\t2025 04 10 14 00 00\t48.86467241, 2.32135534\n" +
	"\tf1.8\t50mm\tBalade dans Paris\t2025 04 10 14 00 00\t48.86467241, 2.32135534\n" +
	"\t\t85mm\tTourisme\t2025 04 15 16 00 00\t48.86167979, 2.29603529\n" +
	"500\t\t\tScenes\t\t\n" +
	"#Description Kodak Portra\n" +
	"#ImageDescription Kodak Portra\n" +
	"#Artist Jean-Baptiste Skutnik\n" +
	"#Author Jean-Baptiste Skutnik\n" +
	"#ISO 160\n" +
	"#Make Nikon\n" +
	"#Model F3\n" +
	"; vim: set list number noexpandtab:\n"

func TestReadTSE(t *testing.T) {
	data, err := roll.ReadTSE(strings.NewReader(sampleTSE))
	require.NoError(t, err)

	assert.Equal(t, roll.RollData{
		Author:      "Jean-Baptiste Skutnik",
		Make:        "Nikon",
		Model:       "F3",
		ISO:         "160",
		Description: "Kodak Portra",
	}, data.Roll)

	require.Len(t, data.Exposures, 4)

	first := data.Exposures[1]
	assert.Empty(t, first.ShutterSpeed)
	assert.Equal(t, "2.8", first.Aperture)
	assert.Equal(t, "50mm", first.Lens)
	assert.Equal(t, "Balade dans Paris", first.Comment)
	require.NotNil(t, first.Date)
	assert.Equal(t, "2025 04 10 14 00 00", first.Date.Format(roll.TimestampFormat))
	require.NotNil(t, first.GPS)
	assert.Equal(t, gps.Coordinate{Lat: 48.86467241, Lng: 2.32135534}, *first.GPS)

	// "f" aperture prefixes are normalized away.
	assert.Equal(t, "1.8", data.Exposures[2].Aperture)

	last := data.Exposures[4]
	assert.Equal(t, "500", last.ShutterSpeed)
	assert.Nil(t, last.Date)
	assert.Nil(t, last.GPS)
}

func TestReadTSESkipsBlankAndCommentLines(t *testing.T) {
	input := "\n; a comment\n500\t\t\tfirst\t\t\n\n500\t\t\tsecond\t\t\n"

	data, err := roll.ReadTSE(strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, data.Exposures, 2)
	assert.Equal(t, "first", data.Exposures[1].Comment)
	assert.Equal(t, "second", data.Exposures[2].Comment)
}

func TestReadTSEHeadersCaseInsensitive(t *testing.T) {
	input := "#MAKE Canon\n#model AE-1\n"

	data, err := roll.ReadTSE(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, "Canon", data.Roll.Make)
	assert.Equal(t, "AE-1", data.Roll.Model)
}

func TestReadTSERejectsMalformedLine(t *testing.T) {
	_, err := roll.ReadTSE(strings.NewReader("only two\tfields\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 1")
}

func TestWriteTSERoundTrip(t *testing.T) {
	data, err := roll.ReadTSE(strings.NewReader(sampleTSE))
	require.NoError(t, err)

	var out strings.Builder
	require.NoError(t, roll.WriteTSE(&out, data))

	reread, err := roll.ReadTSE(strings.NewReader(out.String()))
	require.NoError(t, err)

	assert.Equal(t, data.Roll, reread.Roll)
	assert.Equal(t, data.Exposures, reread.Exposures)
}

func TestWriteTSEHeaderBlock(t *testing.T) {
	var out strings.Builder
	require.NoError(t, roll.WriteTSE(&out, roll.Data{
		Roll: roll.RollData{Author: "someone", Make: "Nikon", Model: "F3", ISO: "160", Description: "Portra"},
	}))

	rendered := out.String()
	assert.Contains(t, rendered, "#Artist someone\n")
	assert.Contains(t, rendered, "#Author someone\n")
	assert.Contains(t, rendered, "#ImageDescription Portra\n")
	assert.True(t, strings.HasSuffix(rendered, "; vim: set list number noexpandtab:\n"))
}
