package testutil

import (
	"fmt"
	"math"
	"strings"

	"github.com/banshee-data/pitch.report/internal/pitch"
)

// Pitch returns a fully populated record of the given category.
func Pitch(category string, speed, plateX, plateZ float64) pitch.PitchRecord {
	return pitch.PitchRecord{
		Category:         category,
		Speed:            speed,
		MoveHoriz:        -6,
		MoveVert:         12,
		ReleasePos:       pitch.Point3{Lateral: -1.8, Vertical: 5.9, Depth: math.NaN()},
		ReleaseExtension: 6.4,
		PlatePos:         pitch.Point2{Lateral: plateX, Vertical: plateZ},
	}
}

// Outing is a small mixed sample: four fastballs, two sliders, one
// changeup and one record with every field missing.
func Outing() []pitch.PitchRecord {
	return []pitch.PitchRecord{
		Pitch("FF", 95.2, 0.1, 2.6),
		Pitch("FF", 94.8, 0.05, 2.55),
		Pitch("FF", 96.1, -0.6, 3.2),
		Pitch("FF", 95.4, 0.12, 2.62),
		Pitch("SL", 86.3, 0.9, 1.7),
		Pitch("SL", 85.7, 1.0, 1.5),
		Pitch("CH", 87.9, -0.3, 1.9),
		pitch.Absent(""),
	}
}

// OutingCSV renders recs in the Statcast column layout accepted by the
// ingest package. Missing values are written as NA.
func OutingCSV(recs []pitch.PitchRecord) string {
	var b strings.Builder
	b.WriteString("pitch_type,release_speed,pfx_x,pfx_z,release_pos_x,release_pos_z,release_extension,plate_x,plate_z\n")
	for _, r := range recs {
		fields := []string{
			r.Category,
			num(r.Speed),
			num(r.MoveHoriz / 12),
			num(r.MoveVert / 12),
			num(r.ReleasePos.Lateral),
			num(r.ReleasePos.Vertical),
			num(r.ReleaseExtension),
			num(r.PlatePos.Lateral),
			num(r.PlatePos.Vertical),
		}
		b.WriteString(strings.Join(fields, ","))
		b.WriteByte('\n')
	}
	return b.String()
}

func num(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "NA"
	}
	return fmt.Sprintf("%g", v)
}
