// Package obstacle places box obstacles in the tunnel and tests the camera
// against them.
package obstacle

import (
	"math"

	"github.com/taigrr/tunnelrun/pkg/math3d"
	"github.com/taigrr/tunnelrun/pkg/tunnel"
)

// Kind selects an obstacle shape and behavior from the kinds table.
type Kind int

// Obstacle kinds, in order of difficulty.
const (
	KindBar Kind = iota
	KindSpinningBar
	KindSlab
	KindSpinningSlab

	NumKinds = 4
)

// Spec is one row of the kinds table.
type Spec struct {
	Scale           math3d.Vec3
	AngularSpeed    float64 // rad/s
	MaxDisplacement float64 // displacement is drawn from [-Max, Max]
}

var kinds = [NumKinds]Spec{
	KindBar:          {Scale: math3d.V3(7, 1, 1)},
	KindSpinningBar:  {Scale: math3d.V3(7, 1, 1), AngularSpeed: math.Pi / 4},
	KindSlab:         {Scale: math3d.V3(7, 4, 1), MaxDisplacement: 2},
	KindSpinningSlab: {Scale: math3d.V3(7, 4, 1), AngularSpeed: math.Pi / 4, MaxDisplacement: 2},
}

// SpecFor returns the table row for k. Out of range kinds are clamped.
func SpecFor(k Kind) Spec {
	return kinds[clampKind(k)]
}

func clampKind(k Kind) Kind {
	if k < 0 {
		return 0
	}
	if k >= NumKinds {
		return NumKinds - 1
	}
	return k
}

func (k Kind) String() string {
	switch clampKind(k) {
	case KindBar:
		return "bar"
	case KindSpinningBar:
		return "spinning-bar"
	case KindSlab:
		return "slab"
	default:
		return "spinning-slab"
	}
}

// Cube is a scaled unit box anchored at a point in the tunnel. Its frame is
// derived from the travel direction the same way a segment's is, with the
// live Rotation in place of the segment spin.
type Cube struct {
	Kind         Kind
	Position     math3d.Vec3
	Scale        math3d.Vec3
	Rotation     float64 // current spin about Frame.Axis
	AngularSpeed float64
	Displacement float64 // offset along local up, applied after scale
	Frame        tunnel.Frame
}

// New spawns a cube of the given kind at pos facing dir, drawing its initial
// rotation and displacement from rng.
func New(kind Kind, pos, dir math3d.Vec3, rng tunnel.Rand) *Cube {
	kind = clampKind(kind)
	spec := kinds[kind]
	rotation := rng.Float64() * 2 * math.Pi
	displacement := (rng.Float64()*2 - 1) * spec.MaxDisplacement

	c := FromSpec(spec, pos, dir, rotation, displacement)
	c.Kind = kind
	return c
}

// FromSpec builds a cube with explicit rotation and displacement.
func FromSpec(spec Spec, pos, dir math3d.Vec3, rotation, displacement float64) *Cube {
	return &Cube{
		Position:     pos,
		Scale:        spec.Scale,
		Rotation:     rotation,
		AngularSpeed: spec.AngularSpeed,
		Displacement: displacement,
		Frame:        tunnel.NewFrame(dir, 0),
	}
}

// Update advances the spin by dt seconds.
func (c *Cube) Update(dt float64) {
	if c.AngularSpeed == 0 {
		return
	}
	c.Rotation = math.Mod(c.Rotation+c.AngularSpeed*dt, 2*math.Pi)
	if c.Rotation < 0 {
		c.Rotation += 2 * math.Pi
	}
}

// Placement returns the model matrix for the unit cube mesh.
func (c *Cube) Placement() math3d.Mat4 {
	return c.pose().Mul(c.local())
}

// pose places the cube's own frame in the world: its position and the spun
// alignment, without scale.
func (c *Cube) pose() math3d.Mat4 {
	return math3d.Translate(c.Position).Mul(c.Frame.SpunBy(c.Rotation))
}

// local scales the unit cube and slides it along its own up.
func (c *Cube) local() math3d.Mat4 {
	return math3d.Scale(c.Scale).
		Mul(math3d.Translate(math3d.V3(0, c.Displacement, 0)))
}

// Bounds returns the world box of the unspun cube: the corners (-1,-1,-1)
// and (1,1,1) pushed through the placement without rotation, then sorted per
// axis. It encloses the cube only when the frame is aligned with the world
// axes; Collides works in the cube's frame instead.
func (c *Cube) Bounds() (lo, hi math3d.Vec3) {
	m := math3d.Translate(c.Position).
		Mul(c.Frame.Alignment()).
		Mul(c.local())
	a := m.MulVec3(math3d.V3(-1, -1, -1))
	b := m.MulVec3(math3d.V3(1, 1, 1))
	return a.Min(b), a.Max(b)
}

// LocalBounds returns the box in the cube's own frame, where scale and
// displacement are the only transforms left.
func (c *Cube) LocalBounds() (lo, hi math3d.Vec3) {
	m := c.local()
	a := m.MulVec3(math3d.V3(-1, -1, -1))
	b := m.MulVec3(math3d.V3(1, 1, 1))
	return a.Min(b), a.Max(b)
}

// Thickness is the cube's extent along its travel axis.
func (c *Cube) Thickness() float64 {
	return 2 * math.Abs(c.Scale.Z)
}

// MinThickness is the thinnest obstacle in the kinds table.
func MinThickness() float64 {
	thin := math.Inf(1)
	for _, k := range kinds {
		thin = math.Min(thin, 2*math.Abs(k.Scale.Z))
	}
	return thin
}

// Collides reports whether world point p is inside the cube. p is carried
// into the cube's frame by the inverse pose and tested against LocalBounds,
// which holds for any travel direction.
func (c *Cube) Collides(p math3d.Vec3) bool {
	local := c.pose().Inverse().MulVec3(p)
	lo, hi := c.LocalBounds()
	return local.X >= lo.X && local.X <= hi.X &&
		local.Y >= lo.Y && local.Y <= hi.Y &&
		local.Z >= lo.Z && local.Z <= hi.Z
}

// IsColliding tests the camera position against c. The centerline point and
// forward direction at the camera are accepted for callers that track them;
// the box test only needs the camera position.
func IsColliding(camera, _, _ math3d.Vec3, c *Cube) bool {
	if c == nil {
		return false
	}
	return c.Collides(camera)
}
