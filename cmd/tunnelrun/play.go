package main

import (
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/taigrr/tunnelrun/pkg/config"
	"github.com/taigrr/tunnelrun/pkg/game"
	"github.com/taigrr/tunnelrun/pkg/render"
	"github.com/taigrr/tunnelrun/pkg/tui"
)

func newPlayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play in the terminal",
		Args:  cobra.NoArgs,
		RunE:  runPlay,
	}
	f := cmd.Flags()
	f.Float64("speed", 0, "progress speed in degrees per second")
	f.Int("spin-steps", 0, "number of evenly spaced segment turns")
	f.Bool("no-obstacles", false, "fly an empty tunnel")
	f.Int("fps", 0, "target frames per second")
	f.String("log-file", "", "write logs to this file")
	f.String("log-level", "", "log level (debug, info, warn, error)")
	return cmd
}

func runPlay(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log, closer, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	opts, err := tuiOptions(cfg)
	if err != nil {
		return err
	}
	opts.Log = log

	seed := cfg.RandSeed()
	log.Info().
		Int64("seed", seed).
		Float64("speed", cfg.Game.Speed).
		Int("spin_steps", cfg.Game.SpinSteps).
		Msg("start")

	g := game.New(cfg.GameConfig(), rand.New(rand.NewSource(seed)), log)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := tui.Run(ctx, g, opts); err != nil {
		log.Error().Err(err).Msg("play")
		return err
	}
	log.Info().Int("score", g.State().Score).Msg("quit")
	return nil
}

// tuiOptions builds the terminal settings, loading any texture overrides.
func tuiOptions(cfg config.Config) (tui.Options, error) {
	opts := tui.Options{
		FPS:         cfg.Display.FPS,
		FOV:         cfg.Display.FOV,
		HoldTimeout: cfg.Input.HoldTimeout,
	}

	var err error
	if p := cfg.Display.AtlasTexture; p != "" {
		if opts.Atlas, err = render.LoadTexture(p); err != nil {
			return opts, fmt.Errorf("atlas texture: %w", err)
		}
	}
	if p := cfg.Display.CrateTexture; p != "" {
		if opts.Crate, err = render.LoadTexture(p); err != nil {
			return opts, fmt.Errorf("crate texture: %w", err)
		}
	}
	return opts, nil
}
