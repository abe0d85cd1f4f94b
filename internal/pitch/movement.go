package pitch

import "math"

// MovementPoint is one pitch on the movement chart, in inches, seen from
// the pitcher's side (horizontal movement mirrored).
type MovementPoint struct {
	Category   string  `json:"category"`
	Horizontal float64 `json:"horizontal"`
	Vertical   float64 `json:"vertical"`
	Speed      float64 `json:"speed,omitempty"` // mph, zero when unmeasured
}

// BuildMovementScatter converts records to movement chart points rounded
// to a tenth of an inch. Records missing either movement component are
// dropped.
func BuildMovementScatter(recs []PitchRecord) []MovementPoint {
	out := make([]MovementPoint, 0, len(recs))
	for _, r := range recs {
		if !isFinite(r.MoveHoriz) || !isFinite(r.MoveVert) {
			continue
		}
		p := MovementPoint{
			Category:   r.CategoryOrUnknown(),
			Horizontal: roundTenth(-r.MoveHoriz),
			Vertical:   roundTenth(r.MoveVert),
		}
		if r.HasSpeed() {
			p.Speed = r.Speed
		}
		out = append(out, p)
	}
	return out
}

// roundTenth rounds v to one decimal place. Negative zero is folded to zero.
func roundTenth(v float64) float64 {
	r := math.Round(v*10) / 10
	if r == 0 {
		return 0
	}
	return r
}
