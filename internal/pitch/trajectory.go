package pitch

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/pitch.report/internal/units"
)

// Field constants. These are empirical and deliberately fixed.
const (
	// MoundDistance is the distance in feet from the rubber to home plate.
	MoundDistance = 60.5
	// Gravity is the vertical acceleration in ft/s².
	Gravity = -32.174
	// VelocityLossFactor approximates the average speed lost to drag over
	// the flight as a fraction of release speed.
	VelocityLossFactor = 0.96
	// DefaultIntervals yields 41 sample points per trajectory.
	DefaultIntervals = 40

	// MaxFlightTime caps the flight in seconds. Slower than this is not a
	// pitch, and the cap keeps Gravity·T² finite.
	MaxFlightTime = 60.0

	minStartDepth = 1e-3
)

// Trajectory is the sampled flight path of one pitch from release to
// plate crossing. Points use X for lateral, Y for vertical and Z for
// depth (distance in front of the plate), all in feet, in the same
// lateral orientation as the input record.
type Trajectory struct {
	Category   string   `json:"category"`
	Points     []r3.Vec `json:"points"`
	FlightTime float64  `json:"flightTime"` // seconds
	StartDepth float64  `json:"startDepth"` // feet
}

// Release returns the first sample, or the zero vector for an empty
// trajectory.
func (t Trajectory) Release() r3.Vec {
	if len(t.Points) == 0 {
		return r3.Vec{}
	}
	return t.Points[0]
}

// PlateCrossing returns the last sample, or the zero vector for an empty
// trajectory.
func (t Trajectory) PlateCrossing() r3.Vec {
	if len(t.Points) == 0 {
		return r3.Vec{}
	}
	return t.Points[len(t.Points)-1]
}

// TimeAt returns the flight time in seconds at sample i.
func (t Trajectory) TimeAt(i int) float64 {
	n := len(t.Points) - 1
	if n <= 0 {
		return 0
	}
	return float64(i) / float64(n) * t.FlightTime
}

// ViewerPoints returns a copy of the path with the lateral axis mirrored,
// as seen by a viewer standing behind the plate looking at the pitcher.
func (t Trajectory) ViewerPoints() []r3.Vec {
	out := make([]r3.Vec, len(t.Points))
	for i, p := range t.Points {
		out[i] = r3.Vec{X: -p.X, Y: p.Y, Z: p.Z}
	}
	return out
}

// ComputeTrajectory reconstructs the flight path of rec under constant
// lateral and vertical acceleration, sampled at intervals+1 evenly spaced
// instants. Absent fields take the Resolve defaults. The only error is a
// non-positive interval count, which wraps ErrInvalidArgument.
func ComputeTrajectory(rec PitchRecord, intervals int) (Trajectory, error) {
	if intervals <= 0 {
		return Trajectory{}, fmt.Errorf("%w: sample intervals must be positive, got %d", ErrInvalidArgument, intervals)
	}
	return rec.Resolve().trajectory(intervals), nil
}

// ComputeTrajectories runs ComputeTrajectory over recs concurrently and
// returns the paths in input order.
func ComputeTrajectories(ctx context.Context, recs []PitchRecord, intervals int) ([]Trajectory, error) {
	if intervals <= 0 {
		return nil, fmt.Errorf("%w: sample intervals must be positive, got %d", ErrInvalidArgument, intervals)
	}
	out := make([]Trajectory, len(recs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range recs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out[i] = recs[i].Resolve().trajectory(intervals)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// startDepth is the release-to-plate distance, kept strictly positive.
func startDepth(extension float64) float64 {
	d := MoundDistance - extension
	if !(d > minStartDepth) {
		return minStartDepth
	}
	return d
}

// axisPath samples x(f) = start + (end-start)·f + ½·k·(f²-f) over the
// flight fraction f in [0, 1], where k = acc·T². Both endpoints are hit
// exactly whatever k is, as long as k is finite.
type axisPath struct {
	start, end, k float64
}

func (a axisPath) at(f float64) float64 {
	return a.start + (a.end-a.start)*f + 0.5*a.k*(f*f-f)
}

// breakTerm is acc·T² for a constant acceleration that displaces a pitch
// by moveInches over the flight. It does not depend on T.
func breakTerm(moveInches float64) float64 {
	return 2 * units.InchesToFeet(moveInches)
}

func (p ResolvedPitch) flightTime() float64 {
	ft := p.ReleasePos.Depth / (p.Speed * units.MPHToFPS * VelocityLossFactor)
	if !isFinite(ft) || ft <= 0 {
		ft = p.ReleasePos.Depth / (DefaultSpeedMPH * units.MPHToFPS * VelocityLossFactor)
	}
	return math.Min(ft, MaxFlightTime)
}

func (p ResolvedPitch) trajectory(intervals int) Trajectory {
	flight := p.flightTime()
	depth := p.ReleasePos.Depth

	// The lateral solve runs in the mirrored frame the movement sign is
	// quoted in; samples are mirrored back before they are returned.
	lateral := axisPath{
		start: -p.ReleasePos.Lateral,
		end:   -p.PlatePos.Lateral,
		k:     breakTerm(-p.MoveHoriz),
	}
	vertical := axisPath{
		start: p.ReleasePos.Vertical,
		end:   p.PlatePos.Vertical,
		k:     breakTerm(p.MoveVert) + Gravity*flight*flight,
	}

	pts := make([]r3.Vec, intervals+1)
	for i := range pts {
		frac := float64(i) / float64(intervals)
		pts[i] = r3.Vec{
			X: -lateral.at(frac),
			Y: vertical.at(frac),
			Z: depth * (1 - frac),
		}
	}
	return Trajectory{
		Category:   p.Category,
		Points:     pts,
		FlightTime: flight,
		StartDepth: depth,
	}
}
