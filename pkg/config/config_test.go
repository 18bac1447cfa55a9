package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taigrr/tunnelrun/pkg/game"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tunnelrun.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, game.DefaultConfig(), cfg.GameConfig())
	assert.Equal(t, zerolog.InfoLevel, cfg.LogLevel())
	assert.Equal(t, 60, cfg.Display.FPS)
}

func TestLoadOverlay(t *testing.T) {
	path := writeConfig(t, `
game:
  speed: 45
  spin_steps: 8
  obstacles: false
display:
  fov: 60
input:
  hold_timeout: 250ms
log:
  level: debug
seed: tunnel
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 45.0, cfg.Game.Speed)
	assert.Equal(t, 8, cfg.Game.SpinSteps)
	assert.False(t, cfg.Game.Obstacles)
	assert.Equal(t, 60.0, cfg.Display.FOV)
	assert.Equal(t, 250*time.Millisecond, cfg.Input.HoldTimeout)
	assert.Equal(t, zerolog.DebugLevel, cfg.LogLevel())
	assert.Equal(t, "tunnel", cfg.Seed)

	// Untouched keys keep their defaults.
	def := Default()
	assert.Equal(t, def.Game.MaxFrameDelta, cfg.Game.MaxFrameDelta)
	assert.Equal(t, def.Game.BigRadius, cfg.Game.BigRadius)
	assert.Equal(t, def.Display.FPS, cfg.Display.FPS)

	g := cfg.GameConfig()
	assert.Equal(t, 45.0, g.Speed)
	assert.Equal(t, 8, g.SpinSteps)
	assert.Equal(t, def.Game.TubeRadius, g.Segment.TubeRadius)
}

func TestLoadEmptyFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "read config")

	_, err = Load(writeConfig(t, "game:\n  sped: 10\n"))
	assert.ErrorContains(t, err, "parse config")

	_, err = Load(writeConfig(t, "game: [1, 2]\n"))
	assert.ErrorContains(t, err, "parse config")

	_, err = Load(writeConfig(t, "game:\n  speed: -1\n"))
	assert.ErrorContains(t, err, "game.speed")
}

func TestValidateReportsEveryField(t *testing.T) {
	cfg := Default()
	cfg.Game.SpinSteps = 0
	cfg.Game.MaxFrameDelta = 0
	cfg.Game.BigRadius = 4
	cfg.Display.FPS = 0
	cfg.Display.FOV = 180
	cfg.Input.HoldTimeout = -time.Second
	cfg.Log.Level = "loud"

	err := cfg.Validate()
	require.Error(t, err)
	for _, field := range []string{
		"game.spin_steps",
		"game.max_frame_delta",
		"game.big_radius",
		"display.fps",
		"display.fov",
		"input.hold_timeout",
		"log.level",
	} {
		assert.ErrorContains(t, err, field)
	}
	assert.NotContains(t, err.Error(), "game.speed")
	assert.Equal(t, zerolog.InfoLevel, cfg.LogLevel())
}

func TestValidateSpinSteps(t *testing.T) {
	for _, steps := range []int{4, 8} {
		cfg := Default()
		cfg.Game.SpinSteps = steps
		assert.NoError(t, cfg.Validate(), "steps %d", steps)
	}
	for _, steps := range []int{1, 3, 5, 16} {
		cfg := Default()
		cfg.Game.SpinSteps = steps
		assert.ErrorContains(t, cfg.Validate(), "game.spin_steps", "steps %d", steps)
	}
}

func TestValidateFrameTravel(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	// 60°/s at 1/30 s is 2° a frame, just inside a 2-unit obstacle.
	cfg.Game.Speed = 60
	require.NoError(t, cfg.Validate())

	cfg.Game.Speed = 90
	assert.ErrorContains(t, cfg.Validate(), "game.speed")

	// A shorter frame limit makes the same speed safe again.
	cfg.Game.MaxFrameDelta = time.Second / 60
	assert.NoError(t, cfg.Validate())

	// So does a tighter bend.
	cfg = Default()
	cfg.Game.Speed = 90
	cfg.Game.BigRadius = 20
	assert.NoError(t, cfg.Validate())
}

func TestRandSeed(t *testing.T) {
	a := Default()
	a.Seed = "tunnel"
	b := Default()
	b.Seed = "tunnel"
	c := Default()
	c.Seed = "tunnels"

	assert.Equal(t, a.RandSeed(), b.RandSeed())
	assert.NotEqual(t, a.RandSeed(), c.RandSeed())
}
