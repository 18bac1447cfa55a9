package tui

import (
	"fmt"
	"image/color"
	"math"
	"time"

	"github.com/charmbracelet/harmonica"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/lucasb-eyer/go-colorful"
)

var (
	hudFg    = color.RGBA{255, 255, 255, 255}
	hudBg    = color.RGBA{0, 0, 0, 255}
	fpsFg    = color.RGBA{120, 255, 120, 255}
	crashLo  = colorful.Color{R: 0.9, G: 0.1, B: 0.1}
	crashHi  = colorful.Color{R: 1, G: 0.85, B: 0.2}
	bannerBg = color.RGBA{20, 0, 0, 255}
)

const crashBanner = " CRASHED  r: restart  esc: quit "

// HUD is the score readout drawn over the frame. It implements game.Display.
// The shown score rolls toward the real one on a spring.
type HUD struct {
	score, level int

	shown    float64
	shownVel float64
	spring   harmonica.Spring

	crashed bool
	frames  int // since the crash, for the banner pulse

	fps       float64
	fpsFrames int
	fpsTime   time.Time
	now       func() time.Time
}

// NewHUD creates a HUD updated fps times per second.
func NewHUD(fps int) *HUD {
	return &HUD{
		level: 1,
		// Critically damped so the count never runs past the score.
		spring:  harmonica.NewSpring(harmonica.FPS(fps), 6.0, 1.0),
		fpsTime: time.Now(),
		now:     time.Now,
	}
}

// ShowScore implements game.Display.
func (h *HUD) ShowScore(score, level int) {
	if score < h.score {
		// A restart snaps back instead of counting down.
		h.shown, h.shownVel = float64(score), 0
	}
	h.score, h.level = score, level
}

// SetCrashed shows or hides the crash banner.
func (h *HUD) SetCrashed(crashed bool) {
	if crashed && !h.crashed {
		h.frames = 0
	}
	h.crashed = crashed
}

// Update advances the score spring and the FPS counter by one frame.
func (h *HUD) Update() {
	h.shown, h.shownVel = h.spring.Update(h.shown, h.shownVel, float64(h.score))
	h.frames++

	h.fpsFrames++
	now := h.now()
	if elapsed := now.Sub(h.fpsTime); elapsed >= time.Second {
		h.fps = float64(h.fpsFrames) / elapsed.Seconds()
		h.fpsFrames = 0
		h.fpsTime = now
	}
}

// ShownScore is the score currently on screen.
func (h *HUD) ShownScore() int {
	return int(math.Round(h.shown))
}

// FPS is the measured frame rate over the last second.
func (h *HUD) FPS() float64 { return h.fps }

// Status is the top-left readout.
func (h *HUD) Status() string {
	return fmt.Sprintf(" SCORE %d  LEVEL %d ", h.ShownScore(), h.level)
}

// Draw paints the HUD over area: the status at the top left, the frame rate
// at the top right, and the crash banner in the middle.
func (h *HUD) Draw(scr uv.Screen, area uv.Rectangle) {
	width, height := area.Max.X-area.Min.X, area.Max.Y-area.Min.Y
	if width <= 0 || height <= 0 {
		return
	}
	drawText(scr, area, area.Min.X, area.Min.Y, h.Status(), hudFg, hudBg)

	fps := fmt.Sprintf(" %.0f FPS ", h.fps)
	drawText(scr, area, area.Max.X-len(fps), area.Min.Y, fps, fpsFg, hudBg)

	if h.crashed {
		t := (math.Sin(float64(h.frames)*0.15) + 1) / 2
		r, g, b := crashLo.BlendLab(crashHi, t).Clamped().RGB255()
		x := area.Min.X + (width-len(crashBanner))/2
		drawText(scr, area, x, area.Min.Y+height/2, crashBanner, color.RGBA{r, g, b, 255}, bannerBg)
	}
}

// drawText writes an ASCII string one cell per byte, clipped to area.
func drawText(scr uv.Screen, area uv.Rectangle, x, y int, s string, fg, bg color.Color) {
	if y < area.Min.Y || y >= area.Max.Y {
		return
	}
	for i := 0; i < len(s); i++ {
		col := x + i
		if col < area.Min.X || col >= area.Max.X {
			continue
		}
		scr.SetCell(col, y, &uv.Cell{
			Content: string(s[i]),
			Width:   1,
			Style:   uv.Style{Fg: fg, Bg: bg},
		})
	}
}
