package tunnel

import (
	"math"

	"github.com/taigrr/tunnelrun/pkg/math3d"
)

// ArcDegrees is the progress angle covered by one segment.
const ArcDegrees = 90.0

// Rand is the subset of *rand.Rand used to pick spins, atlas tiles and
// obstacle kinds.
type Rand interface {
	Intn(n int) int
	Float64() float64
}

// Params shapes a segment.
type Params struct {
	BigR         float64 // centerline radius
	TubeRadius   float64 // cross-section radius
	EllipseRatio float64 // stretch of the centerline along Axis; 1 is circular
}

// DefaultParams returns the standard tunnel shape.
func DefaultParams() Params {
	return Params{
		BigR:         50,
		TubeRadius:   5,
		EllipseRatio: 1,
	}
}

// Segment is one quarter-torus arc of tunnel. It is immutable once built.
type Segment struct {
	Origin math3d.Vec3
	Frame  Frame
	Params Params
}

// NewSegment builds a segment starting at origin and heading along dir, with
// its cosmetic spin set to spin radians.
func NewSegment(origin, dir math3d.Vec3, spin float64, p Params) *Segment {
	return &Segment{
		Origin: origin,
		Frame:  NewFrame(dir, spin),
		Params: p,
	}
}

// RandomSpin picks one of steps evenly spaced spins.
func RandomSpin(rng Rand, steps int) float64 {
	if steps <= 0 {
		return 0
	}
	return SpinAngle(rng.Intn(steps), steps)
}

// PositionAt returns the centerline point at progress angle deg.
func (s *Segment) PositionAt(deg float64) math3d.Vec3 {
	theta := deg * math.Pi / 180
	along := s.Params.BigR * s.Params.EllipseRatio * math.Sin(theta)
	across := s.Params.BigR * (1 - math.Cos(theta))
	return s.Origin.
		Add(s.Frame.Axis.Scale(along)).
		Add(s.Frame.Perp.Scale(across))
}

// ForwardAt returns the unit travel direction at progress angle deg.
func (s *Segment) ForwardAt(deg float64) math3d.Vec3 {
	return s.Frame.Axis.RotateAround(s.Frame.Normal, deg*math.Pi/180)
}

// UpAt returns the unit direction from the centerline toward the camera at
// progress angle deg with steering angle radial. The radial turn is applied in
// the start cross-section and then carried along the arc, so steering stays
// meaningful at every progress angle.
func (s *Segment) UpAt(deg, radial float64) math3d.Vec3 {
	return s.Frame.Perp.
		RotateAround(s.Frame.Axis, radial).
		RotateAround(s.Frame.Normal, deg*math.Pi/180)
}

// End returns the centerline point where the next segment starts.
func (s *Segment) End() math3d.Vec3 {
	return s.PositionAt(ArcDegrees)
}

// Next returns the segment that continues this one: it starts at the 90°
// position and heads along the 90° forward direction, which is Perp.
func (s *Segment) Next(spin float64) *Segment {
	return NewSegment(s.End(), s.Frame.Perp, spin, s.Params)
}
