package game

import (
	"github.com/taigrr/tunnelrun/pkg/math3d"
	"github.com/taigrr/tunnelrun/pkg/models"
)

// Key is a logical input the game reads each frame.
type Key int

const (
	KeyLeft Key = iota
	KeyRight
	KeyDash
	KeyEffect // held for the inverted special-effect view
)

func (k Key) String() string {
	switch k {
	case KeyLeft:
		return "left"
	case KeyRight:
		return "right"
	case KeyDash:
		return "dash"
	case KeyEffect:
		return "effect"
	default:
		return "unknown"
	}
}

// Input reports which keys are held.
type Input interface {
	IsHeld(k Key) bool
}

// NoInput is an Input with nothing held.
type NoInput struct{}

func (NoInput) IsHeld(Key) bool { return false }

// Material tells the renderer how to shade a drawable.
type Material int

const (
	MaterialTunnel Material = iota
	MaterialObstacle
)

// Uniforms are the per-frame values shared by every drawable.
type Uniforms struct {
	ViewProj math3d.Mat4
	Eye      math3d.Vec3
	Forward  math3d.Vec3
	Special  bool
	Flash    float64
}

// Drawable is one mesh and its placement.
type Drawable struct {
	Transform math3d.Mat4
	Mesh      *models.Mesh
	Material  Material
}

// Renderer draws one frame.
type Renderer interface {
	Render(u Uniforms, drawables []Drawable) error
}

// Display shows the score readout.
type Display interface {
	ShowScore(score, level int)
}
