package archive_test

import (
	"archive/tar"
	"bytes"
	"io"
	"path"
	"testing"

	"github.com/spoutn1k/brand/internal/archive"
	"github.com/spoutn1k/brand/internal/roll"
	"github.com/spoutn1k/brand/internal/vfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collect returns a Sink accumulating parts into the given map.
func collect(parts map[string][]byte) archive.Sink {
	return func(name string, data []byte) error {
		parts[name] = data
		return nil
	}
}

// entries lists name -> content for every file in a tar payload.
func entries(t *testing.T, data []byte) map[string][]byte {
	t.Helper()

	out := map[string][]byte{}
	tr := tar.NewReader(bytes.NewReader(data))
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		content, err := io.ReadAll(tr)
		require.NoError(t, err)
		out[header.Name] = content
	}
	return out
}

func TestBuilderSinglePart(t *testing.T) {
	parts := map[string][]byte{}
	builder := archive.NewBuilder("roll", collect(parts))

	require.NoError(t, builder.Add("01.jpeg", []byte("first")))
	require.NoError(t, builder.Add("02.jpeg", []byte("second")))
	require.NoError(t, builder.Close())

	require.Len(t, parts, 1)
	files := entries(t, parts["roll-1.tar"])
	assert.Equal(t, []byte("first"), files["roll/01.jpeg"])
	assert.Equal(t, []byte("second"), files["roll/02.jpeg"])
}

func TestBuilderSplitsAtLimit(t *testing.T) {
	parts := map[string][]byte{}
	builder := archive.NewBuilder("roll", collect(parts)).WithLimit(10)

	require.NoError(t, builder.Add("a", bytes.Repeat([]byte("x"), 8)))
	require.NoError(t, builder.Add("b", bytes.Repeat([]byte("y"), 8)))
	require.NoError(t, builder.Add("c", []byte("z")))
	require.NoError(t, builder.Close())

	require.Len(t, parts, 2)
	first := entries(t, parts["roll-1.tar"])
	second := entries(t, parts["roll-2.tar"])

	assert.Len(t, first, 1)
	assert.Contains(t, first, "roll/a")
	assert.Len(t, second, 2)
	assert.Contains(t, second, "roll/b")
	assert.Contains(t, second, "roll/c")
}

func TestBuilderOversizedFileStillShips(t *testing.T) {
	parts := map[string][]byte{}
	builder := archive.NewBuilder("roll", collect(parts)).WithLimit(4)

	// A single file past the limit gets its own part rather than failing.
	require.NoError(t, builder.Add("big", bytes.Repeat([]byte("x"), 32)))
	require.NoError(t, builder.Close())

	require.Len(t, parts, 1)
	assert.Contains(t, entries(t, parts["roll-1.tar"]), "roll/big")
}

func TestExport(t *testing.T) {
	fs := vfs.NewMemFS()
	require.NoError(t, fs.Write(path.Join("out", "01.jpeg"), []byte("frame one")))
	require.NoError(t, fs.Write(path.Join("out", "02.jpeg"), []byte("frame two")))

	data := roll.Data{
		Roll:      roll.RollData{Make: "Nikon", Model: "F3"},
		Exposures: map[uint32]roll.Exposure{1: {Comment: "test"}},
	}

	parts := map[string][]byte{}
	require.NoError(t, archive.Export(fs, "out", "2025-roll", data, archive.DefaultSizeLimit, collect(parts)))

	require.Len(t, parts, 1)
	files := entries(t, parts["2025-roll-1.tar"])

	require.Contains(t, files, "2025-roll/index.tse")
	assert.Contains(t, string(files["2025-roll/index.tse"]), "#Make Nikon")
	assert.Equal(t, []byte("frame one"), files["2025-roll/01.jpeg"])
	assert.Equal(t, []byte("frame two"), files["2025-roll/02.jpeg"])
}

func TestExportSplitsAtLimit(t *testing.T) {
	fs := vfs.NewMemFS()
	require.NoError(t, fs.Write("out/01.jpeg", bytes.Repeat([]byte("x"), 64)))
	require.NoError(t, fs.Write("out/02.jpeg", bytes.Repeat([]byte("y"), 64)))

	parts := map[string][]byte{}
	require.NoError(t, archive.Export(fs, "out", "roll", roll.Data{}, 200, collect(parts)))

	require.Len(t, parts, 2)
	assert.Contains(t, entries(t, parts["roll-1.tar"]), "roll/index.tse")
	assert.Contains(t, entries(t, parts["roll-1.tar"]), "roll/01.jpeg")
	assert.Contains(t, entries(t, parts["roll-2.tar"]), "roll/02.jpeg")
}
