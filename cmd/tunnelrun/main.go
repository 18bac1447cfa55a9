// tunnelrun - fly down a procedural tunnel in your terminal.
//
// Controls:
//
//	Left/A, Right/D  - Steer around the tunnel
//	Space/W/Up       - Dash toward the center
//	E/X              - Inverted view
//	R                - Restart
//	Esc/Q            - Quit
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/fang"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/taigrr/tunnelrun/pkg/config"
)

var version = "dev"

func main() {
	if err := fang.Execute(context.Background(), newRootCmd()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "tunnelrun",
		Short:        "Fly down a procedural tunnel in your terminal",
		Version:      version,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringP("config", "c", "", "YAML config file")
	root.PersistentFlags().String("seed", "", "seed phrase; the same phrase builds the same tunnel")

	root.AddCommand(newPlayCmd(), newExportCmd(), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tunnelrun %s\n", version)
		},
	}
}

// loadConfig reads --config over the defaults and applies the flags that
// were set on the command line.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()

	flags := cmd.Flags()
	if path, _ := flags.GetString("config"); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return cfg, err
		}
	}

	if flags.Changed("seed") {
		cfg.Seed, _ = flags.GetString("seed")
	}
	if f := flags.Lookup("speed"); f != nil && f.Changed {
		cfg.Game.Speed, _ = flags.GetFloat64("speed")
	}
	if f := flags.Lookup("spin-steps"); f != nil && f.Changed {
		cfg.Game.SpinSteps, _ = flags.GetInt("spin-steps")
	}
	if f := flags.Lookup("no-obstacles"); f != nil && f.Changed {
		off, _ := flags.GetBool("no-obstacles")
		cfg.Game.Obstacles = !off
	}
	if f := flags.Lookup("fps"); f != nil && f.Changed {
		cfg.Display.FPS, _ = flags.GetInt("fps")
	}
	if f := flags.Lookup("log-file"); f != nil && f.Changed {
		cfg.Log.File, _ = flags.GetString("log-file")
	}
	if f := flags.Lookup("log-level"); f != nil && f.Changed {
		cfg.Log.Level, _ = flags.GetString("log-level")
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid settings: %w", err)
	}
	return cfg, nil
}

// newLogger opens the log file named in cfg. The terminal belongs to the
// game while it runs, so without a file nothing is logged.
func newLogger(cfg config.Config) (zerolog.Logger, io.Closer, error) {
	if cfg.Log.File == "" {
		return zerolog.Nop(), io.NopCloser(nil), nil
	}

	f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("open log file: %w", err)
	}

	log := zerolog.New(zerolog.ConsoleWriter{Out: f, NoColor: true, TimeFormat: time.RFC3339}).
		Level(cfg.LogLevel()).
		With().
		Timestamp().
		Str("run", uuid.NewString()).
		Logger()
	return log, f, nil
}
