// Package game runs the tunnel: it moves the camera along the current
// segment, splices in new segments, spawns obstacles, and keeps score.
package game

import (
	"math"

	"github.com/rs/zerolog"

	"github.com/taigrr/tunnelrun/pkg/math3d"
	"github.com/taigrr/tunnelrun/pkg/models"
	"github.com/taigrr/tunnelrun/pkg/obstacle"
	"github.com/taigrr/tunnelrun/pkg/tunnel"
)

// Game owns a run: the live segments, the obstacle and the camera.
// It is not safe for concurrent use.
type Game struct {
	cfg     Config
	rng     tunnel.Rand
	log     zerolog.Logger
	display Display

	state   State
	special bool

	current, next         *tunnel.Segment
	currentMesh, nextMesh *models.Mesh

	obstacle     *obstacle.Cube
	obstacleMesh *models.Mesh
	placed       bool // an obstacle was spawned for the current segment

	camera *CameraRig
}

// New starts a run.
func New(cfg Config, rng tunnel.Rand, log zerolog.Logger) *Game {
	g := &Game{
		cfg:          cfg,
		rng:          rng,
		log:          log,
		obstacleMesh: obstacle.Mesh(),
		camera:       NewCameraRig(),
	}
	g.reset()
	return g
}

// Restart throws the run away and starts over from the initial state.
func (g *Game) Restart() {
	g.reset()
	g.log.Debug().Msg("restart")
	g.showScore()
}

func (g *Game) reset() {
	g.state = initialState(g.cfg.Speed)
	g.special = false
	g.current = tunnel.NewSegment(math3d.Zero3(), math3d.V3(0, 0, -1), 0, g.cfg.Segment)
	g.next = g.current.Next(tunnel.RandomSpin(g.rng, g.cfg.SpinSteps))
	g.currentMesh = g.current.Mesh(g.rng)
	g.nextMesh = g.next.Mesh(g.rng)
	g.obstacle = nil
	g.placed = false
	g.camera.Follow(g.current, 0, 0, MaxRadius)
}

// SetDisplay attaches the score readout and shows the current score on it.
func (g *Game) SetDisplay(d Display) {
	g.display = d
	g.showScore()
}

func (g *Game) showScore() {
	if g.display != nil {
		g.display.ShowScore(g.state.Score, g.state.Level)
	}
}

// State returns a copy of the run state.
func (g *Game) State() State { return g.state }

// Camera returns the camera rig. Callers may change its projection.
func (g *Game) Camera() *CameraRig { return g.camera }

// Segments returns the current and lookahead segments.
func (g *Game) Segments() (current, next *tunnel.Segment) { return g.current, g.next }

// Obstacle returns the live obstacle, or nil before the first spawn.
func (g *Game) Obstacle() *obstacle.Cube { return g.obstacle }

// Step advances the run by dt seconds of wall time.
func (g *Game) Step(dt float64, in Input) Events {
	var ev Events
	dt = g.clampDelta(dt)
	s := &g.state

	g.camera.Follow(g.current, s.ProgressAngle, s.RadialAngle, s.Radius)

	if s.Phase == PhaseRunning && obstacle.IsColliding(g.camera.Eye, g.camera.Centre, g.camera.Forward, g.obstacle) {
		s.Speed = 0
		s.Phase = PhaseCrashed
		ev.Crashed = true
		g.log.Debug().
			Int("score", s.Score).
			Float64("progress", s.ProgressAngle).
			Stringer("kind", g.obstacle.Kind).
			Msg("crash")
	}

	s.ProgressAngle += s.Speed * dt
	for s.ProgressAngle >= tunnel.ArcDegrees {
		s.ProgressAngle -= tunnel.ArcDegrees
		if g.splice() {
			ev.LevelUp = true
		}
		ev.Spliced++
	}

	if g.cfg.Obstacles && !g.placed && s.ProgressAngle >= SpawnAngle {
		g.spawn()
		ev.Spawned = true
	}
	if g.obstacle != nil {
		g.obstacle.Update(dt)
	}

	g.updateRadius(in.IsHeld(KeyDash))

	if s.Phase == PhaseRunning {
		if in.IsHeld(KeyLeft) {
			s.RadialAngle -= SteerRate
		}
		if in.IsHeld(KeyRight) {
			s.RadialAngle += SteerRate
		}
	}

	g.special = in.IsHeld(KeyEffect)
	return ev
}

func (g *Game) clampDelta(dt float64) float64 {
	if dt < 0 || math.IsNaN(dt) {
		return 0
	}
	if limit := g.cfg.MaxFrameDelta.Seconds(); limit > 0 && dt > limit {
		return limit
	}
	return dt
}

// splice retires the current segment and builds a new lookahead. It reports
// whether the level went up.
func (g *Game) splice() bool {
	s := &g.state
	prev := g.current

	g.current, g.currentMesh = g.next, g.nextMesh
	g.next = g.current.Next(tunnel.RandomSpin(g.rng, g.cfg.SpinSteps))
	g.nextMesh = g.next.Mesh(g.rng)
	g.placed = false

	s.RadialAngle = ReconcileRadial(prev, g.current, s.RadialAngle)
	s.Score++

	levelUp := s.Score == LevelStride*s.Level && s.Level < MaxLevel
	if levelUp {
		s.Level++
	}

	g.log.Debug().
		Int("score", s.Score).
		Int("level", s.Level).
		Float64("radial", s.RadialAngle).
		Msg("splice")
	g.showScore()
	return levelUp
}

func (g *Game) spawn() {
	kind := obstacle.Kind(g.rng.Intn(g.state.Level))
	g.obstacle = obstacle.New(kind, g.next.Origin, g.next.Frame.Axis, g.rng)
	g.placed = true
	g.log.Debug().
		Stringer("kind", kind).
		Float64("rotation", g.obstacle.Rotation).
		Float64("displacement", g.obstacle.Displacement).
		Msg("spawn")
}

func (g *Game) updateRadius(dash bool) {
	s := &g.state
	if dash && s.Radius == MaxRadius && s.RadiusVel == 0 {
		s.RadiusVel = DashImpulse
	}
	s.Radius += s.RadiusVel
	s.RadiusVel += RadiusSpring
	if s.Radius >= MaxRadius {
		s.Radius = MaxRadius
		s.RadiusVel = 0
	}
}

// tieAngle is how close two reconciliation candidates must land to count as
// a tie. acos loses precision near 0 and π, so exact comparison is noise.
const tieAngle = 1e-6

// ReconcileRadial returns the steering angle on next that keeps the camera's
// up direction where it was at the end of prev. Of the two rotations of
// next's perp that reach the old direction, the one landing closer wins, and
// on a tie the negative one.
func ReconcileRadial(prev, next *tunnel.Segment, radial float64) float64 {
	target := prev.UpAt(tunnel.ArcDegrees, radial)
	alpha := next.Frame.Perp.AngleBetween(target)

	neg, pos := -alpha, alpha
	dNeg := next.UpAt(0, neg).AngleBetween(target)
	dPos := next.UpAt(0, pos).AngleBetween(target)
	if dPos < dNeg-tieAngle {
		return pos
	}
	return neg
}

// Flash returns the flash intensity for the current progress.
func (g *Game) Flash() float64 {
	return FlashAt(g.state.ProgressAngle)
}

// FlashAt is 2 - |deg-60|/20 inside the [60, 80] flash window and 1
// outside it.
func FlashAt(deg float64) float64 {
	if deg < FlashStart || deg > FlashEnd {
		return 1
	}
	return 2 - math.Abs(deg-FlashStart)/(FlashEnd-FlashStart)
}

// Draw hands the frame to r.
func (g *Game) Draw(r Renderer) error {
	u := Uniforms{
		ViewProj: g.camera.ViewProjectionMatrix(),
		Eye:      g.camera.Eye,
		Forward:  g.camera.Forward,
		Special:  g.special,
		Flash:    g.Flash(),
	}
	return r.Render(u, g.Drawables())
}

// Drawables lists what is in view: both live segments, and the obstacle once
// one has spawned.
func (g *Game) Drawables() []Drawable {
	d := []Drawable{
		{Transform: math3d.Identity(), Mesh: g.currentMesh, Material: MaterialTunnel},
		{Transform: math3d.Identity(), Mesh: g.nextMesh, Material: MaterialTunnel},
	}
	if g.obstacle != nil {
		d = append(d, Drawable{
			Transform: g.obstacle.Placement(),
			Mesh:      g.obstacleMesh,
			Material:  MaterialObstacle,
		})
	}
	return d
}
