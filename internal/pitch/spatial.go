package pitch

import (
	"encoding/json"
	"math"
	"sort"
)

// Grid defaults, in feet.
const (
	DefaultCellSize      = 0.25
	DefaultLateralShift  = 1.75
	DefaultVerticalShift = 1.0

	maxIndex = 1 << 30
)

// GridSpec fixes the quantisation of plate locations. A plate location
// (x, z) lands in cell (floor((x+LateralShift)/CellSize),
// floor((z-VerticalShift)/CellSize)).
type GridSpec struct {
	CellSize      float64 `json:"cellSize"`
	LateralShift  float64 `json:"lateralShift"`
	VerticalShift float64 `json:"verticalShift"`
}

// DefaultGridSpec returns the 0.25 ft grid anchored at the strike zone.
func DefaultGridSpec() GridSpec {
	return GridSpec{
		CellSize:      DefaultCellSize,
		LateralShift:  DefaultLateralShift,
		VerticalShift: DefaultVerticalShift,
	}
}

// normalized replaces a non-positive or non-finite cell size and any
// non-finite shift with the defaults.
func (g GridSpec) normalized() GridSpec {
	if !isFinite(g.CellSize) || g.CellSize <= 0 {
		g.CellSize = DefaultCellSize
	}
	if !isFinite(g.LateralShift) {
		g.LateralShift = DefaultLateralShift
	}
	if !isFinite(g.VerticalShift) {
		g.VerticalShift = DefaultVerticalShift
	}
	return g
}

// CellKey identifies one grid cell.
type CellKey struct {
	X int `json:"x"` // lateral index
	Z int `json:"z"` // vertical index
}

// SpatialGrid is an occupancy count per cell plus the largest count.
type SpatialGrid struct {
	Spec     GridSpec
	Counts   map[CellKey]int
	MaxCount int
}

// GridCell is a populated cell ready for rendering.
type GridCell struct {
	CellKey
	Count     int     `json:"count"`
	Intensity float64 `json:"intensity"` // Count / MaxCount, in (0, 1]
	CenterX   float64 `json:"centerX"`   // feet, record orientation
	CenterZ   float64 `json:"centerZ"`   // feet
}

// BuildSpatialGrid counts the plate locations of records whose category
// is in active, using the default shifts and the given cell size.
func BuildSpatialGrid(recs []PitchRecord, active CategorySet, cellSize float64) SpatialGrid {
	spec := DefaultGridSpec()
	spec.CellSize = cellSize
	return BuildSpatialGridSpec(recs, active, spec)
}

// BuildSpatialGridSpec is BuildSpatialGrid with explicit shifts. Records
// without a finite plate location are skipped rather than defaulted.
func BuildSpatialGridSpec(recs []PitchRecord, active CategorySet, spec GridSpec) SpatialGrid {
	spec = spec.normalized()
	grid := SpatialGrid{Spec: spec, Counts: make(map[CellKey]int)}
	for _, r := range recs {
		if !active.Contains(r.CategoryOrUnknown()) || !r.HasPlate() {
			continue
		}
		key := spec.cellFor(r.PlatePos)
		n := grid.Counts[key] + 1
		grid.Counts[key] = n
		if n > grid.MaxCount {
			grid.MaxCount = n
		}
	}
	return grid
}

func (g GridSpec) cellFor(p Point2) CellKey {
	return CellKey{
		X: floorIndex((p.Lateral + g.LateralShift) / g.CellSize),
		Z: floorIndex((p.Vertical - g.VerticalShift) / g.CellSize),
	}
}

func floorIndex(v float64) int {
	f := math.Floor(v)
	if f > maxIndex {
		return maxIndex
	}
	if f < -maxIndex {
		return -maxIndex
	}
	return int(f)
}

// MarshalJSON encodes the populated cells as a sorted list.
func (g SpatialGrid) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Spec     GridSpec   `json:"spec"`
		MaxCount int        `json:"maxCount"`
		Total    int        `json:"total"`
		Cells    []GridCell `json:"cells"`
	}{g.Spec, g.MaxCount, g.Total(), g.Cells()})
}

// Empty reports whether there is nothing to render.
func (g SpatialGrid) Empty() bool { return g.MaxCount == 0 }

// Total is the number of records counted into the grid.
func (g SpatialGrid) Total() int {
	total := 0
	for _, n := range g.Counts {
		total += n
	}
	return total
}

// Center returns the world position of the middle of cell k.
func (g SpatialGrid) Center(k CellKey) Point2 {
	cs := g.Spec.CellSize
	return Point2{
		Lateral:  float64(k.X)*cs - g.Spec.LateralShift + cs/2,
		Vertical: float64(k.Z)*cs + g.Spec.VerticalShift + cs/2,
	}
}

// Cells returns populated cells ordered by lateral then vertical index.
func (g SpatialGrid) Cells() []GridCell {
	out := make([]GridCell, 0, len(g.Counts))
	for k, n := range g.Counts {
		c := g.Center(k)
		out = append(out, GridCell{
			CellKey:   k,
			Count:     n,
			Intensity: float64(n) / float64(g.MaxCount),
			CenterX:   c.Lateral,
			CenterZ:   c.Vertical,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].X != out[j].X {
			return out[i].X < out[j].X
		}
		return out[i].Z < out[j].Z
	})
	return out
}

// Bounds returns the inclusive index range of populated cells. ok is
// false for an empty grid.
func (g SpatialGrid) Bounds() (min, max CellKey, ok bool) {
	for k := range g.Counts {
		if !ok {
			min, max, ok = k, k, true
			continue
		}
		if k.X < min.X {
			min.X = k.X
		}
		if k.Z < min.Z {
			min.Z = k.Z
		}
		if k.X > max.X {
			max.X = k.X
		}
		if k.Z > max.Z {
			max.Z = k.Z
		}
	}
	return min, max, ok
}
