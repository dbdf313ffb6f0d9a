package roll

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spoutn1k/brand/internal/gps"
)

// The TSE format is a tab-separated file with one line per exposure:
//
//	sspeed <TAB> aperture <TAB> lens <TAB> comment <TAB> date <TAB> lat, lng
//
// Any field may be empty. Lines starting with '#' carry roll-wide headers
// ("#Make Nikon"), lines starting with ';' and blank lines are ignored.

const tseFieldCount = 6

// ReadTSE parses a TSE document into a Data. Exposure indexes are assigned
// in file order starting at 1; header lines may appear anywhere.
func ReadTSE(r io.Reader) (Data, error) {
	data := Data{Exposures: map[uint32]Exposure{}}

	scanner := bufio.NewScanner(r)
	index := uint32(1)
	for scanner.Scan() {
		line := scanner.Text()

		if stripped, found := strings.CutPrefix(line, "#"); found {
			readHeader(&data.Roll, stripped)
			continue
		}

		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}

		exposure, err := parseExposureLine(line)
		if err != nil {
			return Data{}, fmt.Errorf("parsing TSE line %d: %w", index, err)
		}
		data.Exposures[index] = exposure
		index++
	}
	if err := scanner.Err(); err != nil {
		return Data{}, fmt.Errorf("reading TSE: %w", err)
	}

	return data, nil
}

func readHeader(roll *RollData, line string) {
	marker, value, found := strings.Cut(line, " ")
	if !found {
		return
	}
	value = strings.TrimSpace(value)

	switch strings.ToLower(marker) {
	case "make":
		roll.Make = value
	case "model":
		roll.Model = value
	case "description":
		roll.Description = value
	case "author":
		roll.Author = value
	case "iso":
		roll.ISO = value
	}
}

func parseExposureLine(line string) (Exposure, error) {
	fields := strings.Split(line, "\t")
	if len(fields) != tseFieldCount {
		return Exposure{}, fmt.Errorf("expected %d tab-separated fields, got %d", tseFieldCount, len(fields))
	}

	exposure := Exposure{
		ShutterSpeed: fields[0],
		Aperture:     normalizeAperture(fields[1]),
		Lens:         fields[2],
		Comment:      fields[3],
	}

	if fields[4] != "" {
		stamp, err := time.Parse(TimestampFormat, fields[4])
		if err != nil {
			return Exposure{}, fmt.Errorf("parsing date %q: %w", fields[4], err)
		}
		exposure.Date = &Timestamp{Time: stamp}
	}

	if fields[5] != "" {
		coord, err := gps.ParsePair(fields[5])
		if err != nil {
			return Exposure{}, err
		}
		exposure.GPS = &coord
	}

	return exposure, nil
}

// normalizeAperture strips an optional "f" prefix and re-renders the value,
// so "f1.8" and "1.8" read back identically.
func normalizeAperture(field string) string {
	if field == "" {
		return ""
	}

	raw := strings.TrimPrefix(field, "f")
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return field
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// WriteTSE renders data back to the TSE format: one line per index from 1 to
// the highest populated frame, then the roll header block.
func WriteTSE(w io.Writer, data Data) error {
	var max uint32
	for index := range data.Exposures {
		if index > max {
			max = index
		}
	}

	var b strings.Builder
	for index := uint32(1); index <= max; index++ {
		if exposure, ok := data.Exposures[index]; ok {
			writeExposureLine(&b, exposure)
		}
		b.WriteByte('\n')
	}
	writeRollHeader(&b, data.Roll)

	_, err := io.WriteString(w, b.String())
	return err
}

func writeExposureLine(b *strings.Builder, exposure Exposure) {
	date := ""
	if exposure.Date != nil {
		date = exposure.Date.Format(TimestampFormat)
	}
	coords := ""
	if exposure.GPS != nil {
		coords = exposure.GPS.String()
	}

	fields := []string{
		exposure.ShutterSpeed,
		exposure.Aperture,
		exposure.Lens,
		exposure.Comment,
		date,
		coords,
	}
	b.WriteString(strings.Join(fields, "\t"))
}

func writeRollHeader(b *strings.Builder, roll RollData) {
	fmt.Fprintf(b, "#Description %s\n", roll.Description)
	fmt.Fprintf(b, "#ImageDescription %s\n", roll.Description)
	fmt.Fprintf(b, "#Artist %s\n", roll.Author)
	fmt.Fprintf(b, "#Author %s\n", roll.Author)
	fmt.Fprintf(b, "#ISO %s\n", roll.ISO)
	fmt.Fprintf(b, "#Make %s\n", roll.Make)
	fmt.Fprintf(b, "#Model %s\n", roll.Model)
	b.WriteString("; vim: set list number noexpandtab:\n")
}
