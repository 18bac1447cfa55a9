// Package config loads tunnelrun settings from YAML on top of built-in
// defaults.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/taigrr/tunnelrun/pkg/game"
	"github.com/taigrr/tunnelrun/pkg/obstacle"
	"github.com/taigrr/tunnelrun/pkg/tunnel"
)

// Config is the full settings file.
type Config struct {
	Game    Game    `yaml:"game"`
	Display Display `yaml:"display"`
	Input   Input   `yaml:"input"`
	Log     Log     `yaml:"log"`

	// Seed picks the tunnel. The same phrase always builds the same run; an
	// empty phrase seeds from the clock.
	Seed string `yaml:"seed"`
}

// Game holds the gameplay settings.
type Game struct {
	Speed         float64       `yaml:"speed"` // deg/s
	SpinSteps     int           `yaml:"spin_steps"`
	MaxFrameDelta time.Duration `yaml:"max_frame_delta"`
	Obstacles     bool          `yaml:"obstacles"`
	BigRadius     float64       `yaml:"big_radius"`
	TubeRadius    float64       `yaml:"tube_radius"`
	EllipseRatio  float64       `yaml:"ellipse_ratio"`
}

// Display holds the terminal output settings.
type Display struct {
	FPS int     `yaml:"fps"`
	FOV float64 `yaml:"fov"` // vertical, degrees

	// Optional image files replacing the built-in wall atlas and obstacle
	// texture.
	AtlasTexture string `yaml:"atlas_texture"`
	CrateTexture string `yaml:"crate_texture"`
}

// Input holds the keyboard settings.
type Input struct {
	// HoldTimeout is how long a key counts as held after its last press or
	// repeat when the terminal does not report releases.
	HoldTimeout time.Duration `yaml:"hold_timeout"`
}

// Log holds the logging settings.
type Log struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"` // empty disables logging
}

// Default returns the built-in settings.
func Default() Config {
	g := game.DefaultConfig()
	return Config{
		Game: Game{
			Speed:         g.Speed,
			SpinSteps:     g.SpinSteps,
			MaxFrameDelta: g.MaxFrameDelta,
			Obstacles:     g.Obstacles,
			BigRadius:     g.Segment.BigR,
			TubeRadius:    g.Segment.TubeRadius,
			EllipseRatio:  g.Segment.EllipseRatio,
		},
		Display: Display{
			FPS: 60,
			FOV: 45,
		},
		Input: Input{
			HoldTimeout: 150 * time.Millisecond,
		},
		Log: Log{
			Level: "info",
		},
	}
}

// Load reads the YAML file at path over the defaults and validates the
// result. Keys missing from the file keep their default values; unknown keys
// are an error.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports every out-of-range setting.
func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	g := c.Game
	check(g.Speed > 0, "game.speed must be positive, got %v", g.Speed)
	check(g.SpinSteps == 4 || g.SpinSteps == 8, "game.spin_steps must be 4 or 8, got %d", g.SpinSteps)
	check(g.MaxFrameDelta > 0, "game.max_frame_delta must be positive, got %v", g.MaxFrameDelta)
	check(g.TubeRadius > 0, "game.tube_radius must be positive, got %v", g.TubeRadius)
	check(g.BigRadius > g.TubeRadius, "game.big_radius must exceed tube_radius, got %v", g.BigRadius)
	check(g.EllipseRatio > 0, "game.ellipse_ratio must be positive, got %v", g.EllipseRatio)
	if travel, thick := c.GameConfig().FrameTravel(), obstacle.MinThickness(); travel >= thick {
		errs = append(errs, fmt.Errorf(
			"game.speed %v with game.max_frame_delta %v moves %.2f units per frame, obstacles are %.2f thick",
			g.Speed, g.MaxFrameDelta, travel, thick))
	}

	check(c.Display.FPS >= 1 && c.Display.FPS <= 240, "display.fps must be in [1, 240], got %d", c.Display.FPS)
	check(c.Display.FOV > 0 && c.Display.FOV < 180, "display.fov must be in (0, 180), got %v", c.Display.FOV)

	check(c.Input.HoldTimeout > 0, "input.hold_timeout must be positive, got %v", c.Input.HoldTimeout)

	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}

	return errors.Join(errs...)
}

// GameConfig converts the gameplay section for game.New.
func (c Config) GameConfig() game.Config {
	return game.Config{
		Speed:         c.Game.Speed,
		SpinSteps:     c.Game.SpinSteps,
		MaxFrameDelta: c.Game.MaxFrameDelta,
		Obstacles:     c.Game.Obstacles,
		Segment: tunnel.Params{
			BigR:         c.Game.BigRadius,
			TubeRadius:   c.Game.TubeRadius,
			EllipseRatio: c.Game.EllipseRatio,
		},
	}
}

// LogLevel returns the parsed log level, or info when it does not parse.
func (c Config) LogLevel() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.Log.Level)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}

// RandSeed returns the seed for the run's random source.
func (c Config) RandSeed() int64 {
	if c.Seed == "" {
		return time.Now().UnixNano()
	}
	return int64(xxhash.Sum64String(c.Seed))
}
