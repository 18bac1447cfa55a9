// Package tui plays the game in a terminal: it pumps key events into an input
// tracker, steps and renders the game at a fixed frame rate, and draws the
// frame as half-block cells with the HUD on top.
package tui

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/taigrr/tunnelrun/pkg/game"
	"github.com/taigrr/tunnelrun/pkg/render"
)

// Options configures a terminal session.
type Options struct {
	FPS         int
	FOV         float64 // vertical, degrees
	HoldTimeout time.Duration

	// Optional replacements for the built-in textures.
	Atlas *render.Texture
	Crate *render.Texture

	Log zerolog.Logger
}

// session is the state shared by the event pump and the render loop.
type session struct {
	input   *InputTracker
	restart chan struct{}

	mu            sync.Mutex
	width, height int
	resized       bool
}

func (s *session) setSize(w, h int) {
	s.mu.Lock()
	s.width, s.height, s.resized = w, h, true
	s.mu.Unlock()
}

// takeSize returns the terminal size and whether it changed since the last
// call.
func (s *session) takeSize() (w, h int, changed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed, s.resized = s.resized, false
	return s.width, s.height, changed
}

func (s *session) requestRestart() {
	select {
	case s.restart <- struct{}{}:
	default:
	}
}

// Run plays g in the terminal until ctx is done or the player quits.
func Run(ctx context.Context, g *game.Game, opts Options) error {
	term := uv.DefaultTerminal()

	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}
	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}
	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	defer func() {
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}()

	s := &session{
		input:   NewInputTracker(opts.HoldTimeout),
		restart: make(chan struct{}, 1),
	}
	s.setSize(width, height)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		pumpEvents(ctx, cancel, term.Events(), s)
		return nil
	})
	eg.Go(func() error {
		return renderLoop(ctx, term, g, s, opts)
	})

	return eg.Wait()
}

// pumpEvents feeds terminal events into the session until ctx is done or a
// quit key is pressed.
func pumpEvents(ctx context.Context, quit context.CancelFunc, events <-chan uv.Event, s *session) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				quit()
				return
			}
			switch ev := ev.(type) {
			case uv.WindowSizeEvent:
				s.setSize(ev.Width, ev.Height)
			case uv.KeyPressEvent:
				switch {
				case ev.MatchString("esc"), ev.MatchString("escape"), ev.MatchString("q"), ev.MatchString("ctrl+c"):
					quit()
					return
				case ev.MatchString("r"):
					s.requestRestart()
				default:
					s.input.Handle(ev)
				}
			default:
				s.input.Handle(ev)
			}
		}
	}
}

func renderLoop(ctx context.Context, term *uv.Terminal, g *game.Game, s *session, opts Options) error {
	fb := render.NewFramebuffer(1, 1)
	pipe := render.NewPipeline(fb)
	if opts.Atlas != nil {
		pipe.Atlas = opts.Atlas
	}
	if opts.Crate != nil {
		pipe.Crate = opts.Crate
	}

	hud := NewHUD(opts.FPS)
	g.SetDisplay(hud)
	g.Camera().SetFOV(opts.FOV * math.Pi / 180)

	var area uv.Rectangle
	ticker := time.NewTicker(time.Second / time.Duration(opts.FPS))
	defer ticker.Stop()
	last := time.Now()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.restart:
			g.Restart()
			s.input.Reset()
			hud.SetCrashed(false)
			continue
		case now := <-ticker.C:
			if w, h, changed := s.takeSize(); changed {
				term.Erase()
				term.Resize(w, h)
				area.Min.X, area.Min.Y = 0, 0
				area.Max.X, area.Max.Y = w, h
				// Two pixels per cell vertically keeps them roughly square.
				fb.Resize(w, 2*h)
				pipe.Resize()
				g.Camera().SetAspectRatio(float64(w) / float64(2*h))
			}

			dt := now.Sub(last).Seconds()
			last = now

			ev := g.Step(dt, s.input)
			if ev.Crashed {
				hud.SetCrashed(true)
				opts.Log.Info().Int("score", g.State().Score).Msg("crashed")
			}
			if ev.LevelUp {
				opts.Log.Info().Int("level", g.State().Level).Msg("level up")
			}
			hud.Update()

			if err := g.Draw(pipe); err != nil {
				return fmt.Errorf("draw frame: %w", err)
			}
			fb.Draw(term, area)
			hud.Draw(term, area)
			if err := term.Display(); err != nil {
				return fmt.Errorf("display: %w", err)
			}
		}
	}
}
