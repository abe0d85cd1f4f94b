package chart

import (
	"bytes"
	"context"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/pitch.report/internal/pitch"
	"github.com/banshee-data/pitch.report/internal/testutil"
)

func timed(category string, speed float64) pitch.PitchRecord {
	r := pitch.Absent(category)
	r.Speed = speed
	return r
}

func TestVelocityAxis(t *testing.T) {
	tests := []struct {
		name   string
		speeds []float64
		want   []int
	}{
		{"empty", nil, nil},
		{"contiguous with gaps", []float64{84, 86.4, 87}, []int{84, 85, 86, 87}},
		{"outlier falls back to populated bins", []float64{0.2, 95, 950}, []int{0, 95, 950}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs := make([]pitch.PitchRecord, len(tt.speeds))
			for i, s := range tt.speeds {
				recs[i] = timed("FF", s)
			}
			assert.Equal(t, tt.want, velocityAxis(pitch.BuildVelocityHistogram(recs)))
		})
	}
}

func TestRenderPage_Charts(t *testing.T) {
	recs := testutil.Outing()
	h := pitch.BuildVelocityHistogram(recs)
	g := pitch.BuildSpatialGrid(recs, pitch.NewCategorySet("FF", "SL"), pitch.DefaultCellSize)
	mv := pitch.BuildMovementScatter(recs)

	page, err := RenderPage("Skenes vs Judge",
		VelocityChart(h, "8 pitches"),
		HeatmapChart(g, "FF, SL"),
		MovementChart(mv, ""),
	)
	require.NoError(t, err)

	html := string(page)
	assert.Contains(t, html, "Velocity Distribution")
	assert.Contains(t, html, "Pitch Location")
	assert.Contains(t, html, "Pitch Movement")
	assert.Contains(t, html, "stack")
	assert.Contains(t, html, "SL")
}

func TestHeatmapChart_Empty(t *testing.T) {
	g := pitch.BuildSpatialGrid(nil, pitch.NewCategorySet(), pitch.DefaultCellSize)
	page, err := RenderPage("empty", HeatmapChart(g, ""))
	require.NoError(t, err)
	assert.Contains(t, string(page), "Pitch Location")
}

func assertPNG(t *testing.T, b []byte) {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(b))
	require.NoError(t, err)
	assert.Greater(t, img.Bounds().Dx(), 0)
}

func TestHeatmapPNG(t *testing.T) {
	recs := testutil.Outing()

	t.Run("populated", func(t *testing.T) {
		g := pitch.BuildSpatialGrid(recs, pitch.NewCategorySet("FF", "SL", "CH"), pitch.DefaultCellSize)
		b, err := HeatmapPNG(g, "All pitches")
		require.NoError(t, err)
		assertPNG(t, b)
	})

	t.Run("single cell", func(t *testing.T) {
		g := pitch.BuildSpatialGrid(recs, pitch.NewCategorySet("CH"), pitch.DefaultCellSize)
		b, err := HeatmapPNG(g, "Changeups")
		require.NoError(t, err)
		assertPNG(t, b)
	})

	t.Run("empty", func(t *testing.T) {
		g := pitch.BuildSpatialGrid(recs, pitch.NewCategorySet(), pitch.DefaultCellSize)
		b, err := HeatmapPNG(g, "Nothing selected")
		require.NoError(t, err)
		assertPNG(t, b)
	})
}

func TestTrajectoryPNG(t *testing.T) {
	reps := make([]pitch.PitchRecord, 0)
	for _, e := range pitch.BuildArsenal(testutil.Outing()) {
		reps = append(reps, e.Representative())
	}
	trs, err := pitch.ComputeTrajectories(context.Background(), reps, pitch.DefaultIntervals)
	require.NoError(t, err)

	for _, v := range []View{SideView, TopView} {
		b, err := TrajectoryPNG(trs, v, "Arsenal")
		require.NoError(t, err)
		assertPNG(t, b)
	}

	b, err := TrajectoryPNG(nil, SideView, "none")
	require.NoError(t, err)
	assertPNG(t, b)
}

func TestParseView(t *testing.T) {
	v, err := ParseView("")
	require.NoError(t, err)
	assert.Equal(t, SideView, v)

	v, err = ParseView("top")
	require.NoError(t, err)
	assert.Equal(t, TopView, v)

	_, err = ParseView("front")
	assert.Error(t, err)
}
