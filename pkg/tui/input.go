package tui

import (
	"sync"
	"time"

	uv "github.com/charmbracelet/ultraviolet"

	"github.com/taigrr/tunnelrun/pkg/game"
)

// InputTracker turns key press and release events into held-key state for
// game.Input. Many terminals never send releases, so a press only counts as
// held for the hold timeout after the last press or auto-repeat.
//
// It is safe for concurrent use: the event pump writes while the render loop
// reads.
type InputTracker struct {
	mu      sync.Mutex
	timeout time.Duration
	pressed map[game.Key]time.Time
	now     func() time.Time
}

// NewInputTracker creates a tracker with the given hold timeout.
func NewInputTracker(timeout time.Duration) *InputTracker {
	return &InputTracker{
		timeout: timeout,
		pressed: make(map[game.Key]time.Time),
		now:     time.Now,
	}
}

// Press marks k as held from now.
func (t *InputTracker) Press(k game.Key) {
	t.mu.Lock()
	t.pressed[k] = t.now()
	t.mu.Unlock()
}

// Release marks k as no longer held.
func (t *InputTracker) Release(k game.Key) {
	t.mu.Lock()
	delete(t.pressed, k)
	t.mu.Unlock()
}

// Reset releases every key.
func (t *InputTracker) Reset() {
	t.mu.Lock()
	clear(t.pressed)
	t.mu.Unlock()
}

// IsHeld implements game.Input.
func (t *InputTracker) IsHeld(k game.Key) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	at, ok := t.pressed[k]
	if !ok {
		return false
	}
	if t.now().Sub(at) > t.timeout {
		delete(t.pressed, k)
		return false
	}
	return true
}

// Key bindings.
var bindings = []struct {
	key   game.Key
	names []string
}{
	{game.KeyLeft, []string{"left", "a"}},
	{game.KeyRight, []string{"right", "d"}},
	{game.KeyDash, []string{"space", "up", "w"}},
	{game.KeyEffect, []string{"e", "x"}},
}

// gameKey maps a key, matched by name, to the game key it is bound to.
func gameKey(match func(name string) bool) (game.Key, bool) {
	for _, b := range bindings {
		for _, name := range b.names {
			if match(name) {
				return b.key, true
			}
		}
	}
	return 0, false
}

// Handle applies a key press or release event and reports whether it was a
// game key.
func (t *InputTracker) Handle(ev uv.Event) bool {
	switch ev := ev.(type) {
	case uv.KeyPressEvent:
		if k, ok := gameKey(func(name string) bool { return ev.MatchString(name) }); ok {
			t.Press(k)
			return true
		}
	case uv.KeyReleaseEvent:
		if k, ok := gameKey(func(name string) bool { return ev.MatchString(name) }); ok {
			t.Release(k)
			return true
		}
	}
	return false
}
