// Package tunnel builds the quarter-torus segments the player flies through
// and answers where the centerline is, and which way is forward and up, at any
// progress angle along a segment.
package tunnel

import (
	"math"

	"github.com/taigrr/tunnelrun/pkg/math3d"
)

// Canonical space: geometry is authored travelling along -Z and curving
// toward +Y. Frame orientation maps these onto the real axis and perp.
var (
	canonicalForward = math3d.V3(0, 0, -1)
	canonicalPerp    = math3d.V3(0, 1, 0)

	azimuthAxis   = math3d.V3(0, -1, 0)
	elevationAxis = math3d.V3(-1, 0, 0)
)

// verticalEpsilon is the |x|+|z| below which a direction is treated as
// vertical and the azimuth is forced to zero.
const verticalEpsilon = 0.01

// Frame is the orthonormal basis derived from a travel direction. Tunnel
// segments and obstacles share it so that an obstacle anchored at a segment
// start lines up with the tunnel cross-section.
type Frame struct {
	Axis   math3d.Vec3 // unit travel direction
	Perp   math3d.Vec3 // unit radial zero, the direction the arc bends toward
	Normal math3d.Vec3 // Axis × Perp, the arc's sweep axis

	Align1 float64 // azimuth rotation about (0,-1,0)
	Align2 float64 // elevation rotation about (-1,0,0)
	Spin   float64 // cosmetic rotation about Axis
}

// NewFrame derives the frame for travel direction dir, spun by spin radians
// about it. dir need not be normalized; a near-zero dir falls back to -Z.
func NewFrame(dir math3d.Vec3, spin float64) Frame {
	if dir.LenSq() < 1e-18 {
		dir = canonicalForward
	}
	axis := dir.Normalize()

	f := Frame{
		Axis:   axis,
		Align1: math.Atan2(axis.Z, axis.X) + math.Pi/2,
		Align2: math.Acos(math3d.Clamp(axis.Y, -1, 1)) - math.Pi/2,
		Spin:   spin,
	}
	if math.Abs(axis.X)+math.Abs(axis.Z) < verticalEpsilon {
		f.Align1 = 0
	}

	// Inside the vertical band the forced azimuth leaves perp slightly off
	// square with the axis.
	perp := f.Orientation().MulVec3Dir(canonicalPerp)
	f.Perp = perp.Sub(axis.Scale(perp.Dot(axis))).Normalize()
	f.Normal = axis.Cross(f.Perp).Normalize()
	return f
}

// Alignment returns the rotation taking canonical space onto the frame,
// without the cosmetic spin.
func (f Frame) Alignment() math3d.Mat4 {
	return math3d.Rotate(azimuthAxis, f.Align1).
		Mul(math3d.Rotate(elevationAxis, f.Align2))
}

// Orientation returns the full rotation taking canonical space onto the
// frame: spin about Axis, after alignment.
func (f Frame) Orientation() math3d.Mat4 {
	return f.SpunBy(f.Spin)
}

// SpunBy returns the alignment followed by a rotation of angle radians about
// Axis. Obstacles use it with their live rotation in place of Spin.
func (f Frame) SpunBy(angle float64) math3d.Mat4 {
	return math3d.Rotate(f.Axis, angle).Mul(f.Alignment())
}

// SpinAngle returns spin step k of steps evenly spaced orientations.
func SpinAngle(k, steps int) float64 {
	if steps <= 0 {
		return 0
	}
	return float64(k%steps) * 2 * math.Pi / float64(steps)
}
