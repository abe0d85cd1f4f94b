// Package chart renders pitch aggregates as interactive go-echarts pages
// and static gonum/plot images.
package chart

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/pitch.report/internal/pitch"
)

// MaxContiguousBins bounds the velocity axis. Wider spans (usually a
// single mistyped speed) fall back to an axis of populated bins only.
const MaxContiguousBins = 200

// heatColors runs from cool to hot.
var heatColors = []string{"#313695", "#4575b4", "#74add1", "#abd9e9", "#fee090", "#fdae61", "#f46d43", "#d73027", "#a50026"}

// VelocityChart draws the histogram as one stacked bar per rounded speed.
func VelocityChart(h pitch.VelocityHistogram, subtitle string) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Velocity", Width: "100%", Height: "560px"}),
		charts.WithTitleOpts(opts.Title{Title: "Velocity Distribution", Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Speed (mph)", NameLocation: "middle", NameGap: 28}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Pitches", MinInterval: 1}),
	)

	speeds := velocityAxis(h)
	labels := make([]string, len(speeds))
	for i, s := range speeds {
		labels[i] = strconv.Itoa(s)
	}
	bar.SetXAxis(labels)

	for _, cat := range h.Categories() {
		data := make([]opts.BarData, len(speeds))
		for i, s := range speeds {
			n := 0
			if b, ok := h.Bin(s); ok {
				n = b.Count(cat)
			}
			data[i] = opts.BarData{Value: n}
		}
		bar.AddSeries(cat, data, charts.WithBarChartOpts(opts.BarChart{Stack: "pitches"}))
	}
	return bar
}

// velocityAxis lists every speed between the lowest and highest bin, or
// only the populated speeds when that span is too wide to draw.
func velocityAxis(h pitch.VelocityHistogram) []int {
	lo, hi, ok := h.Range()
	if !ok {
		return nil
	}
	if hi-lo >= MaxContiguousBins {
		out := make([]int, len(h.Bins))
		for i, b := range h.Bins {
			out[i] = b.Speed
		}
		return out
	}
	out := make([]int, 0, hi-lo+1)
	for s := lo; s <= hi; s++ {
		out = append(out, s)
	}
	return out
}

// HeatmapChart draws occupancy over the bounding box of populated cells.
// Axis labels are cell centres in feet, in record orientation.
func HeatmapChart(g pitch.SpatialGrid, subtitle string) *charts.HeatMap {
	var xLabels, yLabels []string
	data := []opts.HeatMapData{}
	if lo, hi, ok := g.Bounds(); ok {
		for x := lo.X; x <= hi.X; x++ {
			xLabels = append(xLabels, feet(g.Center(pitch.CellKey{X: x, Z: lo.Z}).Lateral))
		}
		for z := lo.Z; z <= hi.Z; z++ {
			yLabels = append(yLabels, feet(g.Center(pitch.CellKey{X: lo.X, Z: z}).Vertical))
		}
		for _, c := range g.Cells() {
			data = append(data, opts.HeatMapData{Value: [3]interface{}{c.X - lo.X, c.Z - lo.Z, c.Count}})
		}
	}

	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Location", Width: "720px", Height: "720px"}),
		charts.WithTitleOpts(opts.Title{Title: "Pitch Location", Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Name: "Lateral (ft)", NameLocation: "middle", NameGap: 28, SplitArea: &opts.SplitArea{Show: opts.Bool(true)}}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Data: yLabels, Name: "Height (ft)", SplitArea: &opts.SplitArea{Show: opts.Bool(true)}}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        float32(max(g.MaxCount, 1)),
			InRange:    &opts.VisualMapInRange{Color: heatColors},
		}),
	)
	hm.SetXAxis(xLabels)
	hm.AddSeries("pitches", data)
	return hm
}

// MovementChart plots horizontal against vertical break, one series per
// pitch category.
func MovementChart(points []pitch.MovementPoint, subtitle string) *charts.Scatter {
	sc := charts.NewScatter()
	sc.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Movement", Width: "720px", Height: "720px"}),
		charts.WithTitleOpts(opts.Title{Title: "Pitch Movement", Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "Horizontal break (in)", NameLocation: "middle", NameGap: 28}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: "Induced vertical break (in)"}),
	)

	byCat := make(map[string][]opts.ScatterData)
	var order []string
	for _, p := range points {
		if _, ok := byCat[p.Category]; !ok {
			order = append(order, p.Category)
		}
		byCat[p.Category] = append(byCat[p.Category], opts.ScatterData{Value: []interface{}{p.Horizontal, p.Vertical}})
	}
	sort.Strings(order)
	for _, cat := range order {
		sc.AddSeries(cat, byCat[cat], charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 7}))
	}
	return sc
}

// RenderPage renders charts into a single HTML document.
func RenderPage(title string, cs ...components.Charter) ([]byte, error) {
	page := components.NewPage()
	page.SetPageTitle(title)
	page.AddCharts(cs...)

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return nil, fmt.Errorf("render error: %w", err)
	}
	return buf.Bytes(), nil
}

func feet(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
