package game

import (
	"math"
	"time"

	"github.com/taigrr/tunnelrun/pkg/tunnel"
)

// Tuning constants of the run. Radius and steering values are per frame.
const (
	MaxRadius    = 3.8
	DashImpulse  = -0.3
	RadiusSpring = 0.02
	SteerRate    = 0.02 // rad

	SpawnAngle  = 2.0 // deg into a segment before the next obstacle appears
	LevelStride = 5
	MaxLevel    = 4

	FlashStart = 60.0
	FlashEnd   = 80.0
)

// Phase is the run state.
type Phase int

const (
	PhaseRunning Phase = iota
	PhaseCrashed
)

func (p Phase) String() string {
	if p == PhaseCrashed {
		return "crashed"
	}
	return "running"
}

// Config holds the gameplay settings.
type Config struct {
	Speed         float64       // progress in degrees per second
	SpinSteps     int           // evenly spaced segment spins, 4 or 8
	MaxFrameDelta time.Duration // longer frames are simulated as this long
	Obstacles     bool
	Segment       tunnel.Params
}

// DefaultConfig returns the standard game settings.
func DefaultConfig() Config {
	return Config{
		Speed:         30,
		SpinSteps:     4,
		MaxFrameDelta: time.Second / 30,
		Obstacles:     true,
		Segment:       tunnel.DefaultParams(),
	}
}

// FrameTravel bounds the distance in world units the camera covers in one
// frame at full speed with the longest allowed frame delta. The centerline
// moves at most BigR·max(EllipseRatio, 1) per radian of progress and the
// camera's offset from it adds MaxRadius.
func (c Config) FrameTravel() float64 {
	rad := c.Speed * c.MaxFrameDelta.Seconds() * math.Pi / 180
	reach := c.Segment.BigR*math.Max(c.Segment.EllipseRatio, 1) + MaxRadius
	return math.Abs(rad) * reach
}

// State is the per-frame mutable part of a run.
type State struct {
	ProgressAngle float64 // deg within the current segment, [0, 90)
	RadialAngle   float64 // rad, steering around the tunnel axis
	Radius        float64
	RadiusVel     float64
	Speed         float64
	Score         int
	Level         int
	Phase         Phase
}

func initialState(speed float64) State {
	return State{
		Radius: MaxRadius,
		Speed:  speed,
		Level:  1,
		Phase:  PhaseRunning,
	}
}

// Events reports what happened during one Step.
type Events struct {
	Spliced int // segments completed
	LevelUp bool
	Crashed bool
	Spawned bool
}
