package pitch

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

const boundaryTol = 1e-6

func scenarioA() PitchRecord {
	r := Absent("FF")
	r.Speed = 95
	r.MoveHoriz = -5
	r.MoveVert = 8
	r.ReleasePos = Point3{Lateral: -1.5, Vertical: 6.0, Depth: math.NaN()}
	r.ReleaseExtension = 6.5
	r.PlatePos = Point2{Lateral: 0.3, Vertical: 2.8}
	return r
}

func assertFinitePath(t *testing.T, tr Trajectory) {
	t.Helper()
	for i, p := range tr.Points {
		if !isFinite(p.X) || !isFinite(p.Y) || !isFinite(p.Z) {
			t.Fatalf("point %d is not finite: %+v", i, p)
		}
	}
}

func TestComputeTrajectory_ScenarioA(t *testing.T) {
	t.Parallel()

	tr, err := ComputeTrajectory(scenarioA(), DefaultIntervals)
	require.NoError(t, err)
	require.Len(t, tr.Points, 41)

	first := tr.Release()
	assert.InDelta(t, -1.5, first.X, boundaryTol)
	assert.InDelta(t, 6.0, first.Y, boundaryTol)
	assert.InDelta(t, 54.0, first.Z, boundaryTol)

	last := tr.PlateCrossing()
	assert.InDelta(t, 0.3, last.X, boundaryTol)
	assert.InDelta(t, 2.8, last.Y, boundaryTol)
	assert.InDelta(t, 0.0, last.Z, boundaryTol)

	wantFlight := 54.0 / (95 * 1.467 * 0.96)
	assert.InDelta(t, wantFlight, tr.FlightTime, 1e-12)
	assert.Equal(t, "FF", tr.Category)
	assert.InDelta(t, tr.FlightTime, tr.TimeAt(40), 1e-12)
	assert.Zero(t, tr.TimeAt(0))
}

func TestComputeTrajectory_MonotonicDepth(t *testing.T) {
	t.Parallel()

	for _, n := range []int{1, 2, 10, 40, 400} {
		tr, err := ComputeTrajectory(scenarioA(), n)
		require.NoError(t, err)
		require.Len(t, tr.Points, n+1)
		for i := 1; i < len(tr.Points); i++ {
			if tr.Points[i].Z >= tr.Points[i-1].Z {
				t.Fatalf("n=%d: depth not strictly decreasing at %d: %f -> %f", n, i, tr.Points[i-1].Z, tr.Points[i].Z)
			}
		}
		assert.Equal(t, 0.0, tr.PlateCrossing().Z)
	}
}

func TestComputeTrajectory_BoundaryFidelity(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name                       string
		speed, moveH, moveV, ext   float64
		relX, relZ, plateX, plateZ float64
	}{
		{"fastball", 97, -8, 16, 6.8, -2.1, 5.9, -0.4, 3.1},
		{"curveball", 78, 9, -14, 5.9, -1.8, 6.2, 0.6, 1.4},
		{"lefty slider", 85, 4, 1, 6.1, 2.3, 5.5, -0.9, 1.9},
		{"slow eephus", 48, 0, -30, 5.0, -1.0, 6.5, 0.0, 2.6},
		{"outlier location", 92, 3, 5, 6.4, -1.6, 5.8, 3.5, -0.7},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := PitchRecord{
				Category:         "XX",
				Speed:            tc.speed,
				MoveHoriz:        tc.moveH,
				MoveVert:         tc.moveV,
				ReleasePos:       Point3{Lateral: tc.relX, Vertical: tc.relZ},
				ReleaseExtension: tc.ext,
				PlatePos:         Point2{Lateral: tc.plateX, Vertical: tc.plateZ},
			}
			tr, err := ComputeTrajectory(r, DefaultIntervals)
			require.NoError(t, err)
			assertFinitePath(t, tr)

			assert.InDelta(t, tc.relX, tr.Release().X, boundaryTol)
			assert.InDelta(t, tc.relZ, tr.Release().Y, boundaryTol)
			assert.InDelta(t, MoundDistance-tc.ext, tr.Release().Z, boundaryTol)
			assert.InDelta(t, tc.plateX, tr.PlateCrossing().X, boundaryTol)
			assert.InDelta(t, tc.plateZ, tr.PlateCrossing().Y, boundaryTol)
		})
	}
}

func TestComputeTrajectory_Defaults(t *testing.T) {
	t.Parallel()

	t.Run("all fields absent", func(t *testing.T) {
		t.Parallel()
		tr, err := ComputeTrajectory(Absent(""), DefaultIntervals)
		require.NoError(t, err)
		assertFinitePath(t, tr)
		assert.Equal(t, UnknownCategory, tr.Category)
		assert.InDelta(t, DefaultReleaseLateral, tr.Release().X, boundaryTol)
		assert.InDelta(t, DefaultReleaseVertical, tr.Release().Y, boundaryTol)
		assert.InDelta(t, MoundDistance-DefaultReleaseExtension, tr.Release().Z, boundaryTol)
		assert.InDelta(t, DefaultPlateLateral, tr.PlateCrossing().X, boundaryTol)
		assert.InDelta(t, DefaultPlateVertical, tr.PlateCrossing().Y, boundaryTol)
		assert.InDelta(t, 54.5/(90*1.467*0.96), tr.FlightTime, 1e-12)
	})

	t.Run("non-finite inputs use defaults", func(t *testing.T) {
		t.Parallel()
		r := scenarioA()
		r.Speed = math.Inf(1)
		r.MoveHoriz = math.NaN()
		r.MoveVert = math.Inf(-1)
		tr, err := ComputeTrajectory(r, DefaultIntervals)
		require.NoError(t, err)
		assertFinitePath(t, tr)
		assert.InDelta(t, 54.0/(90*1.467*0.96), tr.FlightTime, 1e-12)
	})

	t.Run("non-positive speed uses default", func(t *testing.T) {
		t.Parallel()
		for _, s := range []float64{0, -12} {
			r := scenarioA()
			r.Speed = s
			tr, err := ComputeTrajectory(r, DefaultIntervals)
			require.NoError(t, err)
			assert.InDelta(t, 54.0/(90*1.467*0.96), tr.FlightTime, 1e-12)
		}
	})

	t.Run("tiny positive speed stays finite", func(t *testing.T) {
		t.Parallel()
		for _, speed := range []float64{1e-4, 1e-100, 1e-200} {
			r := scenarioA()
			r.Speed = speed
			tr, err := ComputeTrajectory(r, DefaultIntervals)
			require.NoError(t, err)
			assertFinitePath(t, tr)
			assert.Equal(t, MaxFlightTime, tr.FlightTime, "speed %g", speed)
			assert.InDelta(t, -1.5, tr.Release().X, boundaryTol, "speed %g", speed)
			assert.InDelta(t, 6.0, tr.Release().Y, boundaryTol, "speed %g", speed)
			assert.InDelta(t, 0.3, tr.PlateCrossing().X, boundaryTol, "speed %g", speed)
			assert.InDelta(t, 2.8, tr.PlateCrossing().Y, boundaryTol, "speed %g", speed)
		}
	})

	t.Run("extension beyond the mound clamps depth", func(t *testing.T) {
		t.Parallel()
		for _, ext := range []float64{60.5, 75} {
			r := scenarioA()
			r.ReleaseExtension = ext
			tr, err := ComputeTrajectory(r, DefaultIntervals)
			require.NoError(t, err)
			assertFinitePath(t, tr)
			assert.Greater(t, tr.StartDepth, 0.0)
			assert.Greater(t, tr.FlightTime, 0.0)
			assert.InDelta(t, 0.3, tr.PlateCrossing().X, boundaryTol)
		}
	})
}

func TestComputeTrajectory_InvalidIntervals(t *testing.T) {
	t.Parallel()

	for _, n := range []int{0, -1, -40} {
		tr, err := ComputeTrajectory(scenarioA(), n)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidArgument), "got %v", err)

		// The zero trajectory returned with the error is safe to inspect.
		assert.Equal(t, r3.Vec{}, tr.Release())
		assert.Equal(t, r3.Vec{}, tr.PlateCrossing())
		assert.Zero(t, tr.TimeAt(3))
	}
}

func TestComputeTrajectory_Deterministic(t *testing.T) {
	t.Parallel()

	a, err := ComputeTrajectory(scenarioA(), DefaultIntervals)
	require.NoError(t, err)
	b, err := ComputeTrajectory(scenarioA(), DefaultIntervals)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestComputeTrajectory_MovementDirection(t *testing.T) {
	t.Parallel()

	// Two pitches with identical endpoints; more vertical movement means
	// less drop relative to the straight line, so the path sits lower at
	// mid flight (it has to rise into the same plate location).
	flat := scenarioA()
	flat.MoveVert = 0
	rising := scenarioA()
	rising.MoveVert = 18

	a, err := ComputeTrajectory(flat, DefaultIntervals)
	require.NoError(t, err)
	b, err := ComputeTrajectory(rising, DefaultIntervals)
	require.NoError(t, err)

	mid := DefaultIntervals / 2
	assert.Less(t, b.Points[mid].Y, a.Points[mid].Y)
}

func TestTrajectory_ViewerPoints(t *testing.T) {
	t.Parallel()

	tr, err := ComputeTrajectory(scenarioA(), 4)
	require.NoError(t, err)
	mirrored := tr.ViewerPoints()
	require.Len(t, mirrored, len(tr.Points))
	for i := range mirrored {
		assert.Equal(t, r3.Vec{X: -tr.Points[i].X, Y: tr.Points[i].Y, Z: tr.Points[i].Z}, mirrored[i])
	}
	// The original is untouched.
	assert.InDelta(t, -1.5, tr.Points[0].X, boundaryTol)
}

func TestComputeTrajectories(t *testing.T) {
	t.Parallel()

	recs := []PitchRecord{scenarioA(), Absent("SL"), scenarioA()}
	recs[2].Category = "CH"

	out, err := ComputeTrajectories(context.Background(), recs, DefaultIntervals)
	require.NoError(t, err)
	require.Len(t, out, 3)
	for i, r := range recs {
		want, err := ComputeTrajectory(r, DefaultIntervals)
		require.NoError(t, err)
		assert.Equal(t, want, out[i])
	}

	_, err = ComputeTrajectories(context.Background(), recs, 0)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	empty, err := ComputeTrajectories(context.Background(), nil, DefaultIntervals)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestComputeTrajectories_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ComputeTrajectories(ctx, []PitchRecord{scenarioA()}, DefaultIntervals)
	assert.ErrorIs(t, err, context.Canceled)
}
