package game

import (
	"context"
	"sync"
	"time"
)

// Timer is the per-turn countdown. It is owned independently of the
// orchestrator state so pausing playback can pause the countdown without
// touching game state. Ticks are wall-clock driven; the reveal signal fires
// exactly once per turn when the countdown reaches zero.
type Timer struct {
	mu        sync.Mutex
	remaining int
	running   bool
	revealed  bool
	onReveal  func()
}

func NewTimer(seconds int, onReveal func()) *Timer {
	return &Timer{
		remaining: seconds,
		onReveal:  onReveal,
	}
}

// Start resumes the countdown. Invalid once reveal has fired for this turn.
func (t *Timer) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.revealed {
		return errValidation("the answer is already revealed")
	}
	if t.remaining <= 0 {
		return errValidation("no time left this turn")
	}
	t.running = true
	return nil
}

// Stop pauses the countdown without resetting it; Start resumes from the
// same remaining time.
func (t *Timer) Stop() {
	t.mu.Lock()
	t.running = false
	t.mu.Unlock()
}

// Tick consumes one elapsed second. At zero the countdown stops and the
// reveal signal fires, once.
func (t *Timer) Tick() {
	t.mu.Lock()
	if !t.running || t.remaining <= 0 {
		t.mu.Unlock()
		return
	}
	t.remaining--
	fire := false
	if t.remaining == 0 {
		t.running = false
		if !t.revealed {
			t.revealed = true
			fire = true
		}
	}
	onReveal := t.onReveal
	t.mu.Unlock()

	if fire && onReveal != nil {
		onReveal()
	}
}

// MarkRevealed records a reveal that happened outside the countdown (the
// host skipping ahead). Returns false if reveal already fired this turn.
func (t *Timer) MarkRevealed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.revealed {
		return false
	}
	t.revealed = true
	t.running = false
	return true
}

// ResetForNextTurn rearms the countdown. Called only by the orchestrator's
// turn-advance effect.
func (t *Timer) ResetForNextTurn(seconds int) {
	t.mu.Lock()
	t.remaining = seconds
	t.running = false
	t.revealed = false
	t.mu.Unlock()
}

func (t *Timer) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remaining
}

func (t *Timer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

func (t *Timer) Revealed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.revealed
}

// Run drives the countdown from wall-clock seconds until the context ends.
func (t *Timer) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	go func() {
		for {
			select {
			case <-ctx.Done():
				ticker.Stop()
				return
			case <-ticker.C:
				t.Tick()
			}
		}
	}()
}
