// Package ingest reads Statcast-style pitch exports into pitch records.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/banshee-data/pitch.report/internal/monitoring"
	"github.com/banshee-data/pitch.report/internal/pitch"
	"github.com/banshee-data/pitch.report/internal/units"
)

// Column names of a Statcast search export.
const (
	ColPitchType        = "pitch_type"
	ColReleaseSpeed     = "release_speed"
	ColMoveHoriz        = "pfx_x"
	ColMoveVert         = "pfx_z"
	ColReleaseLateral   = "release_pos_x"
	ColReleaseVertical  = "release_pos_z"
	ColReleaseExtension = "release_extension"
	ColPlateLateral     = "plate_x"
	ColPlateVertical    = "plate_z"

	// Optional; carried through but not used by the flight model.
	ColReleaseDepth = "release_pos_y"
)

// RequiredColumns must all be present in the header.
var RequiredColumns = []string{
	ColPitchType,
	ColReleaseSpeed,
	ColMoveHoriz,
	ColMoveVert,
	ColReleaseLateral,
	ColReleaseVertical,
	ColReleaseExtension,
	ColPlateLateral,
	ColPlateVertical,
}

// ErrMissingColumn is returned when the header lacks a required column.
var ErrMissingColumn = errors.New("missing required column")

// Stats describes what a read produced.
type Stats struct {
	Rows        int
	MissingVals int // blank, NA or unparsable numeric cells
}

// ReadFile reads a CSV export from disk.
func ReadFile(path string) ([]pitch.PitchRecord, Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Stats{}, err
	}
	defer f.Close()
	return Read(f)
}

// Read parses a CSV export. Columns are located by header name, so extra
// columns and any column order are accepted. Numeric cells that are blank,
// NA or unparsable become NaN; pfx_x and pfx_z are converted from feet
// to inches.
func Read(r io.Reader) ([]pitch.PitchRecord, Stats, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, Stats{}, fmt.Errorf("empty input: %w", ErrMissingColumn)
	}
	if err != nil {
		return nil, Stats{}, fmt.Errorf("failed to read header: %w", err)
	}
	cols, err := indexHeader(header)
	if err != nil {
		return nil, Stats{}, err
	}

	var (
		stats Stats
		out   = []pitch.PitchRecord{}
	)
	num := func(row []string, name string) float64 {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			if ok {
				stats.MissingVals++
			}
			return math.NaN()
		}
		v, ok := parseNumber(row[i])
		if !ok {
			stats.MissingVals++
		}
		return v
	}

	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, stats, fmt.Errorf("failed to read row %d: %w", stats.Rows+2, err)
		}
		if isBlankRow(row) {
			continue
		}
		stats.Rows++

		category := ""
		if i := cols[ColPitchType]; i < len(row) {
			category = strings.TrimSpace(row[i])
		}
		out = append(out, pitch.PitchRecord{
			Category:  category,
			Speed:     num(row, ColReleaseSpeed),
			MoveHoriz: num(row, ColMoveHoriz) * units.InchesPerFoot,
			MoveVert:  num(row, ColMoveVert) * units.InchesPerFoot,
			ReleasePos: pitch.Point3{
				Lateral:  num(row, ColReleaseLateral),
				Vertical: num(row, ColReleaseVertical),
				Depth:    num(row, ColReleaseDepth),
			},
			ReleaseExtension: num(row, ColReleaseExtension),
			PlatePos: pitch.Point2{
				Lateral:  num(row, ColPlateLateral),
				Vertical: num(row, ColPlateVertical),
			},
		})
	}

	if stats.MissingVals > 0 {
		monitoring.Logf("ingest: %d rows, %d missing or unparsable values", stats.Rows, stats.MissingVals)
	}
	return out, stats, nil
}

func indexHeader(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimPrefix(h, "\ufeff")
		h = strings.ToLower(strings.Trim(strings.TrimSpace(h), `"`))
		if _, dup := cols[h]; !dup {
			cols[h] = i
		}
	}
	var missing []string
	for _, c := range RequiredColumns {
		if _, ok := cols[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return cols, nil
}

// parseNumber returns NaN and false for absent or malformed cells.
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "na", "nan", "null", "none":
		return math.NaN(), false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return math.NaN(), false
	}
	return v, true
}

func isBlankRow(row []string) bool {
	for _, f := range row {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
