// Package pitch reconstructs pitch flight paths and aggregates pitch
// collections into location heatmaps and velocity histograms.
//
// Every function in this package is pure: inputs are never mutated, no
// state is kept between calls and nothing here performs I/O. Callers may
// invoke any of them concurrently without synchronisation.
package pitch

import (
	"encoding/json"
	"errors"
	"math"
)

// ErrInvalidArgument is returned when a caller asks for something that
// cannot be computed, such as a trajectory with no intervals.
var ErrInvalidArgument = errors.New("invalid argument")

// UnknownCategory is used for records that arrive without a pitch type.
const UnknownCategory = "UN"

// Flight Model defaults substituted for absent or non-finite fields.
const (
	DefaultSpeedMPH         = 90.0
	DefaultReleaseLateral   = -1.5
	DefaultReleaseVertical  = 6.0
	DefaultReleaseExtension = 6.0
	DefaultPlateLateral     = 0.0
	DefaultPlateVertical    = 2.5
)

// Point2 is a (lateral, vertical) position in feet.
type Point2 struct {
	Lateral  float64 `json:"lateral"`
	Vertical float64 `json:"vertical"`
}

// Point3 is a (lateral, vertical, depth) position in feet. Depth is
// measured from the front of home plate towards the rubber.
type Point3 struct {
	Lateral  float64 `json:"lateral"`
	Vertical float64 `json:"vertical"`
	Depth    float64 `json:"depth"`
}

// PitchRecord is one measured pitch. Absent numeric fields are NaN; use
// Absent() to build one and Resolve() to obtain render-ready values.
type PitchRecord struct {
	Category         string
	Speed            float64 // mph
	MoveHoriz        float64 // inches
	MoveVert         float64 // inches
	ReleasePos       Point3  // feet; Depth is derived from ReleaseExtension
	ReleaseExtension float64 // feet
	PlatePos         Point2  // feet
}

// Absent returns a record with every numeric field marked absent.
func Absent(category string) PitchRecord {
	nan := math.NaN()
	return PitchRecord{
		Category:         category,
		Speed:            nan,
		MoveHoriz:        nan,
		MoveVert:         nan,
		ReleasePos:       Point3{Lateral: nan, Vertical: nan, Depth: nan},
		ReleaseExtension: nan,
		PlatePos:         Point2{Lateral: nan, Vertical: nan},
	}
}

// CategoryOrUnknown returns the record's category, or UnknownCategory when
// it is empty.
func (r PitchRecord) CategoryOrUnknown() string {
	if r.Category == "" {
		return UnknownCategory
	}
	return r.Category
}

// HasPlate reports whether both plate coordinates are finite.
func (r PitchRecord) HasPlate() bool {
	return isFinite(r.PlatePos.Lateral) && isFinite(r.PlatePos.Vertical)
}

// HasSpeed reports whether the measured speed is finite.
func (r PitchRecord) HasSpeed() bool {
	return isFinite(r.Speed)
}

// ResolvedPitch is a PitchRecord after default substitution. All fields
// are finite and Speed is strictly positive.
type ResolvedPitch struct {
	Category         string  `json:"category"`
	Speed            float64 `json:"speed"`
	MoveHoriz        float64 `json:"moveHoriz"`
	MoveVert         float64 `json:"moveVert"`
	ReleasePos       Point3  `json:"releasePos"`
	ReleaseExtension float64 `json:"releaseExtension"`
	PlatePos         Point2  `json:"platePos"`
}

// Resolve applies the Flight Model defaulting rules. Release depth is
// always recomputed from the (possibly defaulted) extension.
func (r PitchRecord) Resolve() ResolvedPitch {
	speed := orDefault(r.Speed, DefaultSpeedMPH)
	if speed <= 0 {
		speed = DefaultSpeedMPH
	}
	ext := orDefault(r.ReleaseExtension, DefaultReleaseExtension)
	return ResolvedPitch{
		Category:  r.CategoryOrUnknown(),
		Speed:     speed,
		MoveHoriz: orDefault(r.MoveHoriz, 0),
		MoveVert:  orDefault(r.MoveVert, 0),
		ReleasePos: Point3{
			Lateral:  orDefault(r.ReleasePos.Lateral, DefaultReleaseLateral),
			Vertical: orDefault(r.ReleasePos.Vertical, DefaultReleaseVertical),
			Depth:    startDepth(ext),
		},
		ReleaseExtension: ext,
		PlatePos: Point2{
			Lateral:  orDefault(r.PlatePos.Lateral, DefaultPlateLateral),
			Vertical: orDefault(r.PlatePos.Vertical, DefaultPlateVertical),
		},
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func orDefault(v, def float64) float64 {
	if isFinite(v) {
		return v
	}
	return def
}

// recordJSON is the interchange shape. Pointers distinguish absent from zero.
type recordJSON struct {
	Category         string      `json:"category"`
	Speed            *float64    `json:"speed"`
	MoveHoriz        *float64    `json:"moveHoriz"`
	MoveVert         *float64    `json:"moveVert"`
	ReleasePos       *point3JSON `json:"releasePos"`
	ReleaseExtension *float64    `json:"releaseExtension"`
	PlatePos         *point2JSON `json:"platePos"`
}

type point3JSON struct {
	Lateral  *float64 `json:"lateral"`
	Vertical *float64 `json:"vertical"`
	Depth    *float64 `json:"depth"`
}

type point2JSON struct {
	Lateral  *float64 `json:"lateral"`
	Vertical *float64 `json:"vertical"`
}

func toPtr(v float64) *float64 {
	if !isFinite(v) {
		return nil
	}
	return &v
}

func fromPtr(p *float64) float64 {
	if p == nil {
		return math.NaN()
	}
	return *p
}

// MarshalJSON encodes absent fields as null.
func (r PitchRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(recordJSON{
		Category:  r.Category,
		Speed:     toPtr(r.Speed),
		MoveHoriz: toPtr(r.MoveHoriz),
		MoveVert:  toPtr(r.MoveVert),
		ReleasePos: &point3JSON{
			Lateral:  toPtr(r.ReleasePos.Lateral),
			Vertical: toPtr(r.ReleasePos.Vertical),
			Depth:    toPtr(r.ReleasePos.Depth),
		},
		ReleaseExtension: toPtr(r.ReleaseExtension),
		PlatePos: &point2JSON{
			Lateral:  toPtr(r.PlatePos.Lateral),
			Vertical: toPtr(r.PlatePos.Vertical),
		},
	})
}

// UnmarshalJSON decodes missing or null fields as absent (NaN).
func (r *PitchRecord) UnmarshalJSON(data []byte) error {
	var w recordJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	out := Absent(w.Category)
	out.Speed = fromPtr(w.Speed)
	out.MoveHoriz = fromPtr(w.MoveHoriz)
	out.MoveVert = fromPtr(w.MoveVert)
	out.ReleaseExtension = fromPtr(w.ReleaseExtension)
	if w.ReleasePos != nil {
		out.ReleasePos = Point3{
			Lateral:  fromPtr(w.ReleasePos.Lateral),
			Vertical: fromPtr(w.ReleasePos.Vertical),
			Depth:    fromPtr(w.ReleasePos.Depth),
		}
	}
	if w.PlatePos != nil {
		out.PlatePos = Point2{
			Lateral:  fromPtr(w.PlatePos.Lateral),
			Vertical: fromPtr(w.PlatePos.Vertical),
		}
	}
	*r = out
	return nil
}
