package chart

import (
	"bytes"
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/pitch.report/internal/pitch"
)

// Strike zone outline drawn over location plots, in feet.
const (
	zoneHalfWidth = 17.0 / 2 / 12
	zoneBottom    = 1.5
	zoneTop       = 3.5
)

// View selects which projection of a trajectory to draw.
type View string

const (
	SideView View = "side" // depth against height
	TopView  View = "top"  // depth against lateral
)

// ParseView maps a query value to a View, defaulting to SideView.
func ParseView(s string) (View, error) {
	switch View(s) {
	case "", SideView:
		return SideView, nil
	case TopView:
		return TopView, nil
	}
	return "", fmt.Errorf("unknown view %q", s)
}

// gridXYZ adapts a SpatialGrid to plotter.GridXYZ. It spans the populated
// cells plus a one-cell margin so that every column and row has a
// neighbour to size against.
type gridXYZ struct {
	g      pitch.SpatialGrid
	lo, hi pitch.CellKey
}

func newGridXYZ(g pitch.SpatialGrid) gridXYZ {
	lo, hi, _ := g.Bounds()
	lo.X, lo.Z = lo.X-1, lo.Z-1
	hi.X, hi.Z = hi.X+1, hi.Z+1
	return gridXYZ{g: g, lo: lo, hi: hi}
}

func (a gridXYZ) Dims() (c, r int) { return a.hi.X - a.lo.X + 1, a.hi.Z - a.lo.Z + 1 }

func (a gridXYZ) Z(c, r int) float64 {
	n := a.g.Counts[pitch.CellKey{X: a.lo.X + c, Z: a.lo.Z + r}]
	if n == 0 {
		return math.NaN()
	}
	return float64(n) / float64(a.g.MaxCount)
}

func (a gridXYZ) X(c int) float64 { return a.g.Center(pitch.CellKey{X: a.lo.X + c}).Lateral }
func (a gridXYZ) Y(r int) float64 { return a.g.Center(pitch.CellKey{Z: a.lo.Z + r}).Vertical }

// Intensities are already normalised to (0, 1].
func (a gridXYZ) Min() float64 { return 0 }
func (a gridXYZ) Max() float64 { return 1 }

// HeatmapPNG renders the grid as a PNG with the strike zone outlined.
func HeatmapPNG(g pitch.SpatialGrid, title string) ([]byte, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Lateral (ft)"
	p.Y.Label.Text = "Height (ft)"

	if !g.Empty() {
		hm := plotter.NewHeatMap(newGridXYZ(g), palette.Heat(12, 1))
		hm.NaN = color.Transparent
		p.Add(hm)
	}

	zone, err := plotter.NewLine(plotter.XYs{
		{X: -zoneHalfWidth, Y: zoneBottom},
		{X: zoneHalfWidth, Y: zoneBottom},
		{X: zoneHalfWidth, Y: zoneTop},
		{X: -zoneHalfWidth, Y: zoneTop},
		{X: -zoneHalfWidth, Y: zoneBottom},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build strike zone: %w", err)
	}
	zone.Width = vg.Points(1.5)
	zone.Color = color.Black
	p.Add(zone)

	return encodePNG(p, 6*vg.Inch, 7*vg.Inch)
}

// TrajectoryPNG draws one line per trajectory in the chosen projection,
// viewed from behind the catcher.
func TrajectoryPNG(trs []pitch.Trajectory, view View, title string) ([]byte, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Distance from plate (ft)"
	p.Y.Label.Text = "Height (ft)"
	if view == TopView {
		p.Y.Label.Text = "Lateral (ft)"
	}
	p.Legend.Top = true
	p.Legend.Left = false

	for i, tr := range trs {
		pts := tr.ViewerPoints()
		xys := make(plotter.XYs, len(pts))
		for j, v := range pts {
			xys[j].X = v.Z
			xys[j].Y = v.Y
			if view == TopView {
				xys[j].Y = v.X
			}
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return nil, fmt.Errorf("failed to plot %s trajectory: %w", tr.Category, err)
		}
		line.Width = vg.Points(1)
		line.Color = plotutil.Color(i)
		p.Add(line)
		p.Legend.Add(tr.Category, line)
	}

	return encodePNG(p, 10*vg.Inch, 4*vg.Inch)
}

func encodePNG(p *plot.Plot, w, h vg.Length) ([]byte, error) {
	wt, err := p.WriterTo(w, h, "png")
	if err != nil {
		return nil, fmt.Errorf("failed to create png writer: %w", err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}
