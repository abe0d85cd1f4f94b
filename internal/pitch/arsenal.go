package pitch

import (
	"encoding/json"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ArsenalEntry summarises one pitch category. Means are taken over finite
// values only and are NaN when no record of the category has the field.
type ArsenalEntry struct {
	Category      string
	Count         int
	Usage         float64 // fraction of all records
	SpeedSamples  int
	MeanSpeed     float64
	SpeedStdDev   float64
	MaxSpeed      float64
	MeanMoveHoriz float64
	MeanMoveVert  float64
	MeanRelease   Point2
	MeanExtension float64
	MeanPlate     Point2
}

// Representative returns a record built from the category means. Absent
// means stay absent, so the Flight Model applies its usual defaults.
func (e ArsenalEntry) Representative() PitchRecord {
	r := Absent(e.Category)
	r.Speed = e.MeanSpeed
	r.MoveHoriz = e.MeanMoveHoriz
	r.MoveVert = e.MeanMoveVert
	r.ReleasePos.Lateral = e.MeanRelease.Lateral
	r.ReleasePos.Vertical = e.MeanRelease.Vertical
	r.ReleaseExtension = e.MeanExtension
	r.PlatePos = e.MeanPlate
	return r
}

// MarshalJSON encodes NaN statistics as null.
func (e ArsenalEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Category      string      `json:"category"`
		Count         int         `json:"count"`
		Usage         float64     `json:"usage"`
		SpeedSamples  int         `json:"speedSamples"`
		MeanSpeed     *float64    `json:"meanSpeed"`
		SpeedStdDev   *float64    `json:"speedStdDev"`
		MaxSpeed      *float64    `json:"maxSpeed"`
		MeanMoveHoriz *float64    `json:"meanMoveHoriz"`
		MeanMoveVert  *float64    `json:"meanMoveVert"`
		MeanRelease   *point2JSON `json:"meanRelease"`
		MeanExtension *float64    `json:"meanExtension"`
		MeanPlate     *point2JSON `json:"meanPlate"`
	}{
		Category:      e.Category,
		Count:         e.Count,
		Usage:         e.Usage,
		SpeedSamples:  e.SpeedSamples,
		MeanSpeed:     toPtr(e.MeanSpeed),
		SpeedStdDev:   toPtr(e.SpeedStdDev),
		MaxSpeed:      toPtr(e.MaxSpeed),
		MeanMoveHoriz: toPtr(e.MeanMoveHoriz),
		MeanMoveVert:  toPtr(e.MeanMoveVert),
		MeanRelease:   &point2JSON{Lateral: toPtr(e.MeanRelease.Lateral), Vertical: toPtr(e.MeanRelease.Vertical)},
		MeanExtension: toPtr(e.MeanExtension),
		MeanPlate:     &point2JSON{Lateral: toPtr(e.MeanPlate.Lateral), Vertical: toPtr(e.MeanPlate.Vertical)},
	})
}

type arsenalAccumulator struct {
	count int

	speed, moveH, moveV  []float64
	relLat, relVert, ext []float64
	plateLat, plateVert  []float64
}

func appendFinite(dst []float64, v float64) []float64 {
	if isFinite(v) {
		return append(dst, v)
	}
	return dst
}

func meanOrNaN(x []float64) float64 {
	if len(x) == 0 {
		return math.NaN()
	}
	return stat.Mean(x, nil)
}

// BuildArsenal groups recs by category, most used first.
func BuildArsenal(recs []PitchRecord) []ArsenalEntry {
	acc := make(map[string]*arsenalAccumulator)
	for _, r := range recs {
		c := r.CategoryOrUnknown()
		a, ok := acc[c]
		if !ok {
			a = &arsenalAccumulator{}
			acc[c] = a
		}
		a.count++
		a.speed = appendFinite(a.speed, r.Speed)
		a.moveH = appendFinite(a.moveH, r.MoveHoriz)
		a.moveV = appendFinite(a.moveV, r.MoveVert)
		a.relLat = appendFinite(a.relLat, r.ReleasePos.Lateral)
		a.relVert = appendFinite(a.relVert, r.ReleasePos.Vertical)
		a.ext = appendFinite(a.ext, r.ReleaseExtension)
		a.plateLat = appendFinite(a.plateLat, r.PlatePos.Lateral)
		a.plateVert = appendFinite(a.plateVert, r.PlatePos.Vertical)
	}

	out := make([]ArsenalEntry, 0, len(acc))
	for c, a := range acc {
		e := ArsenalEntry{
			Category:      c,
			Count:         a.count,
			Usage:         float64(a.count) / float64(len(recs)),
			SpeedSamples:  len(a.speed),
			MeanSpeed:     math.NaN(),
			SpeedStdDev:   math.NaN(),
			MaxSpeed:      math.NaN(),
			MeanMoveHoriz: meanOrNaN(a.moveH),
			MeanMoveVert:  meanOrNaN(a.moveV),
			MeanRelease:   Point2{Lateral: meanOrNaN(a.relLat), Vertical: meanOrNaN(a.relVert)},
			MeanExtension: meanOrNaN(a.ext),
			MeanPlate:     Point2{Lateral: meanOrNaN(a.plateLat), Vertical: meanOrNaN(a.plateVert)},
		}
		if len(a.speed) > 0 {
			e.MeanSpeed = stat.Mean(a.speed, nil)
			e.MaxSpeed = floats.Max(a.speed)
			e.SpeedStdDev = 0
			if len(a.speed) > 1 {
				e.SpeedStdDev = stat.StdDev(a.speed, nil)
			}
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Category < out[j].Category
	})
	return out
}
