package tui

import (
	"image/color"
	"strings"
	"sync"
	"testing"
	"time"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taigrr/tunnelrun/pkg/game"
)

// fakeClock is a settable time source.
type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestTracker(timeout time.Duration) (*InputTracker, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	tr := NewInputTracker(timeout)
	tr.now = clock.now
	return tr, clock
}

// cellScreen records the cells written to it.
type cellScreen struct {
	uv.Screen
	cells map[[2]int]*uv.Cell
}

func newCellScreen() *cellScreen {
	return &cellScreen{cells: map[[2]int]*uv.Cell{}}
}

func (s *cellScreen) SetCell(x, y int, c *uv.Cell) {
	s.cells[[2]int{x, y}] = c
}

func (s *cellScreen) row(y, width int) string {
	var b strings.Builder
	for x := range width {
		if c, ok := s.cells[[2]int{x, y}]; ok {
			b.WriteString(c.Content)
		} else {
			b.WriteByte('.')
		}
	}
	return b.String()
}

func TestInputTrackerHoldTimeout(t *testing.T) {
	tr, clock := newTestTracker(100 * time.Millisecond)
	var in game.Input = tr

	assert.False(t, in.IsHeld(game.KeyLeft))

	tr.Press(game.KeyLeft)
	assert.True(t, in.IsHeld(game.KeyLeft))
	assert.False(t, in.IsHeld(game.KeyRight))

	clock.advance(80 * time.Millisecond)
	assert.True(t, in.IsHeld(game.KeyLeft))

	// Auto-repeat keeps the key alive.
	tr.Press(game.KeyLeft)
	clock.advance(80 * time.Millisecond)
	assert.True(t, in.IsHeld(game.KeyLeft))

	clock.advance(30 * time.Millisecond)
	assert.False(t, in.IsHeld(game.KeyLeft), "expired without a repeat")
}

func TestInputTrackerRelease(t *testing.T) {
	tr, _ := newTestTracker(time.Hour)

	tr.Press(game.KeyDash)
	tr.Press(game.KeyEffect)
	tr.Release(game.KeyDash)
	assert.False(t, tr.IsHeld(game.KeyDash))
	assert.True(t, tr.IsHeld(game.KeyEffect))

	tr.Reset()
	assert.False(t, tr.IsHeld(game.KeyEffect))
}

func TestInputTrackerConcurrent(t *testing.T) {
	tr := NewInputTracker(time.Second)

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func(k game.Key) {
			defer wg.Done()
			for range 200 {
				tr.Press(k)
				tr.IsHeld(k)
				tr.Release(k)
			}
		}(game.Key(i % 4))
	}
	wg.Wait()
}

func TestGameKeyBindings(t *testing.T) {
	tests := []struct {
		name string
		want game.Key
	}{
		{"left", game.KeyLeft},
		{"a", game.KeyLeft},
		{"d", game.KeyRight},
		{"space", game.KeyDash},
		{"w", game.KeyDash},
		{"x", game.KeyEffect},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			k, ok := gameKey(func(name string) bool { return name == tc.name })
			require.True(t, ok)
			assert.Equal(t, tc.want, k)
		})
	}

	_, ok := gameKey(func(name string) bool { return name == "z" })
	assert.False(t, ok)
}

func TestHUDScoreSpring(t *testing.T) {
	h := NewHUD(60)
	assert.Equal(t, " SCORE 0  LEVEL 1 ", h.Status())

	h.ShowScore(5, 2)
	h.Update()
	assert.Less(t, h.ShownScore(), 5, "the count rolls up instead of jumping")

	prev := h.shown
	for range 180 {
		h.Update()
		assert.GreaterOrEqual(t, h.shown, prev-1e-9, "critically damped, never counts down")
		prev = h.shown
	}
	assert.Equal(t, 5, h.ShownScore())
	assert.Equal(t, " SCORE 5  LEVEL 2 ", h.Status())

	// A restart snaps back.
	h.ShowScore(0, 1)
	assert.Equal(t, 0, h.ShownScore())
}

func TestHUDFPS(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	h := NewHUD(60)
	h.now = clock.now
	h.fpsTime = clock.t

	// The rate is measured once a full second has passed.
	for range 31 {
		clock.advance(time.Second / 30)
		h.Update()
	}
	assert.InDelta(t, 30, h.FPS(), 1e-3)
}

func TestHUDDraw(t *testing.T) {
	h := NewHUD(60)
	h.ShowScore(3, 1)
	for range 200 {
		h.Update()
	}

	scr := newCellScreen()
	area := uv.Rectangle{}
	area.Max.X, area.Max.Y = 40, 5
	h.Draw(scr, area)

	assert.True(t, strings.HasPrefix(scr.row(0, 40), " SCORE 3  LEVEL 1 "))
	assert.True(t, strings.HasSuffix(scr.row(0, 40), " FPS "))
	assert.NotContains(t, scr.row(2, 40), "CRASHED")

	h.SetCrashed(true)
	h.Update()
	h.Draw(scr, area)
	assert.Contains(t, scr.row(2, 40), "CRASHED")

	c := scr.cells[[2]int{(40-len(crashBanner))/2 + 1, 2}]
	require.NotNil(t, c)
	assert.Equal(t, color.Color(bannerBg), c.Style.Bg)
}

func TestHUDDrawClipsToArea(t *testing.T) {
	h := NewHUD(60)
	h.SetCrashed(true)

	scr := newCellScreen()
	area := uv.Rectangle{}
	area.Max.X, area.Max.Y = 10, 2
	h.Draw(scr, area)

	for pos := range scr.cells {
		assert.Less(t, pos[0], 10)
		assert.GreaterOrEqual(t, pos[0], 0)
		assert.Less(t, pos[1], 2)
	}

	empty := newCellScreen()
	h.Draw(empty, uv.Rectangle{})
	assert.Empty(t, empty.cells)
}

func TestSessionSizeAndRestart(t *testing.T) {
	s := &session{restart: make(chan struct{}, 1)}

	s.setSize(80, 24)
	w, h, changed := s.takeSize()
	assert.Equal(t, []int{80, 24}, []int{w, h})
	assert.True(t, changed)

	_, _, changed = s.takeSize()
	assert.False(t, changed)

	// Restart requests coalesce.
	s.requestRestart()
	s.requestRestart()
	assert.Len(t, s.restart, 1)
}
