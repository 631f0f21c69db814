package game

import (
	"context"
	"log"
	"sync"

	"github.com/scholle211/tunetrivia/internal/catalog"
)

// PlaybackControl is the slice of the playback device client a session
// drives. Commands are best effort; a failing device never blocks the game.
type PlaybackControl interface {
	Play(ctx context.Context, trackURI string) error
	Pause(ctx context.Context) error
}

// Publisher pushes a game event out to connected views.
type Publisher func(event string, payload any)

// Session is one running game: the canonical state, the per-turn score
// sheets, the turn countdown, and the track queue drawn for the game. All
// writes go through the session mutex; there is a single writer per game.
type Session struct {
	mu     sync.Mutex
	id     string
	state  State
	sheets map[string]ScoreSheet
	queue  []catalog.Track
	epoch  uint64

	timer   *Timer
	control PlaybackControl
	publish Publisher
}

func NewSession(id string, control PlaybackControl, publish Publisher) *Session {
	if publish == nil {
		publish = func(string, any) {}
	}
	s := &Session{
		id:      id,
		state:   NewState(),
		sheets:  map[string]ScoreSheet{},
		control: control,
		publish: publish,
	}
	s.timer = NewTimer(s.state.Config.TimePerGuess, s.onCountdownZero)
	return s
}

// Run starts the wall-clock tick loop for the session's countdown.
func (s *Session) Run(ctx context.Context) {
	s.timer.Run(ctx)
}

func (s *Session) ID() string {
	return s.id
}

// TimerState is the countdown as views see it.
type TimerState struct {
	Remaining int  `json:"remaining"`
	Running   bool `json:"running"`
	Revealed  bool `json:"revealed"`
}

// Snapshot is what views re-render from.
type Snapshot struct {
	State
	Timer  TimerState            `json:"timer"`
	Sheets map[string]ScoreSheet `json:"sheets"`
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	sheets := make(map[string]ScoreSheet, len(s.sheets))
	for k, v := range s.sheets {
		sheets[k] = v
	}
	return Snapshot{
		State: s.state,
		Timer: TimerState{
			Remaining: s.timer.Remaining(),
			Running:   s.timer.Running(),
			Revealed:  s.timer.Revealed(),
		},
		Sheets: sheets,
	}
}

// Epoch identifies the current round/turn generation. Async work captures the
// epoch before it starts; results are discarded if the epoch moved on.
func (s *Session) Epoch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch
}

// Dispatch applies a single transition and notifies views.
func (s *Session) Dispatch(a Action) error {
	s.mu.Lock()
	next, err := Apply(s.state, a)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.state = next
	s.mu.Unlock()

	s.publish("game.state_changed", s.Snapshot())
	return nil
}

// StartWithTracks starts the game with the queue drawn for it. The epoch
// guards against a track fetch finishing after the session was reset.
func (s *Session) StartWithTracks(epoch uint64, tracks []catalog.Track) error {
	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		return ErrStaleEpoch
	}
	if len(tracks) == 0 {
		s.mu.Unlock()
		return catalog.ErrNoPlayableTracks
	}

	next, err := Apply(s.state, StartGame{})
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.state = next
	s.queue = tracks
	s.epoch++
	s.setTurnTrackLocked()
	s.mu.Unlock()

	s.publish("game.started", s.Snapshot())
	return nil
}

// setTurnTrackLocked points the state at the queue entry for the current
// turn. Queues shorter than the game wrap around.
func (s *Session) setTurnTrackLocked() {
	if len(s.queue) == 0 || s.state.Status != StatusPlaying {
		return
	}
	track := s.queue[s.state.turnNumber()%len(s.queue)]
	if next, err := Apply(s.state, SetActiveTrack{Track: &track}); err == nil {
		s.state = next
	}
	s.timer.ResetForNextTurn(s.state.Config.TimePerGuess)
	s.sheets = map[string]ScoreSheet{}
}

// Play requests device playback of the current track, then starts the
// countdown. On device failure the countdown is left stopped and the error is
// surfaced as a non-fatal warning.
func (s *Session) Play(ctx context.Context) error {
	s.mu.Lock()
	if s.state.Status != StatusPlaying {
		s.mu.Unlock()
		return errValidation("no guessing turn in progress")
	}
	if s.state.CurrentTrack == nil {
		s.mu.Unlock()
		return errValidation("no track loaded for this turn")
	}
	if s.timer.Revealed() {
		s.mu.Unlock()
		return errValidation("the answer is already revealed")
	}
	epoch := s.epoch
	uri := s.state.CurrentTrack.URI
	control := s.control
	s.mu.Unlock()

	if control != nil {
		if err := control.Play(ctx, uri); err != nil {
			log.Printf("tunetrivia: play command: %v", err)
			return err
		}
	}

	s.mu.Lock()
	if s.epoch != epoch {
		// The round advanced while the command was in flight; do not let a
		// stale confirmation flip state for the new turn.
		s.mu.Unlock()
		return ErrStaleEpoch
	}
	if err := s.timer.Start(); err != nil {
		s.mu.Unlock()
		return err
	}
	if next, err := Apply(s.state, SetPlaybackActive{Playing: true}); err == nil {
		s.state = next
	}
	s.mu.Unlock()

	s.publish("game.state_changed", s.Snapshot())
	return nil
}

// Pause stops the countdown and requests a playback pause. The countdown is
// paused regardless of whether the device obeys; a device error comes back as
// a warning.
func (s *Session) Pause(ctx context.Context) error {
	s.mu.Lock()
	s.timer.Stop()
	if next, err := Apply(s.state, SetPlaybackActive{Playing: false}); err == nil {
		s.state = next
	}
	control := s.control
	s.mu.Unlock()

	s.publish("game.state_changed", s.Snapshot())

	if control != nil {
		if err := control.Pause(ctx); err != nil {
			log.Printf("tunetrivia: pause command: %v", err)
			return err
		}
	}
	return nil
}

// onCountdownZero is the timer's reveal signal: flip the turn to scoring and
// ask the device to stop, best effort.
func (s *Session) onCountdownZero() {
	s.applyReveal(context.Background())
}

// RevealNow flips the turn to scoring before the countdown has run out (the
// host skipping ahead).
func (s *Session) RevealNow(ctx context.Context) error {
	s.mu.Lock()
	if s.state.Status != StatusPlaying {
		s.mu.Unlock()
		return errValidation("no guessing turn to reveal")
	}
	if !s.timer.MarkRevealed() {
		s.mu.Unlock()
		return errValidation("the answer is already revealed")
	}
	s.mu.Unlock()

	s.applyReveal(ctx)
	return nil
}

func (s *Session) applyReveal(ctx context.Context) {
	s.mu.Lock()
	if next, err := Apply(s.state, Reveal{}); err == nil {
		s.state = next
	}
	control := s.control
	s.mu.Unlock()

	s.publish("turn.reveal", s.Snapshot())

	if control != nil {
		if err := control.Pause(ctx); err != nil {
			// Non-fatal: the scoring flow continues without playback.
			log.Printf("tunetrivia: pause on reveal: %v", err)
		}
	}
}

// SubmitScores records the turn's sheets: per player, points per correct
// category plus the sweep bonus.
func (s *Session) SubmitScores(sheets map[string]ScoreSheet) error {
	s.mu.Lock()
	if s.state.Status != StatusScoring {
		s.mu.Unlock()
		return errValidation("the turn is not in scoring yet")
	}
	state := s.state
	for playerID, sheet := range sheets {
		next, err := Apply(state, RecordScore{PlayerID: playerID, Points: sheet.Points()})
		if err != nil {
			s.mu.Unlock()
			return err
		}
		state = next
	}
	s.state = state
	for playerID, sheet := range sheets {
		s.sheets[playerID] = sheet
	}
	s.mu.Unlock()

	s.publish("turn.scored", s.Snapshot())
	return nil
}

// Advance moves to the next turn, or finishes the game after the last round.
// Sheets are wiped, the countdown is rearmed, and the epoch moves so stale
// async results from the previous turn are discarded.
func (s *Session) Advance() error {
	s.mu.Lock()
	next, err := Apply(s.state, AdvanceTurn{})
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.state = next
	s.epoch++
	s.sheets = map[string]ScoreSheet{}
	finished := s.state.Status == StatusFinished
	if finished {
		s.timer.ResetForNextTurn(s.state.Config.TimePerGuess)
	} else {
		s.setTurnTrackLocked()
	}
	s.mu.Unlock()

	if finished {
		s.publish("game.finished", s.Snapshot())
	} else {
		s.publish("turn.advanced", s.Snapshot())
	}
	return nil
}

// ResetGame returns to setup with scores zeroed and the roster intact.
func (s *Session) ResetGame() error {
	s.mu.Lock()
	next, err := Apply(s.state, Reset{})
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.state = next
	s.epoch++
	s.queue = nil
	s.sheets = map[string]ScoreSheet{}
	s.timer.ResetForNextTurn(s.state.Config.TimePerGuess)
	s.mu.Unlock()

	s.publish("game.reset", s.Snapshot())
	return nil
}

// Leave handles back-navigation out of gameplay: stop the countdown and ask
// the device to pause.
func (s *Session) Leave(ctx context.Context) {
	s.mu.Lock()
	s.timer.Stop()
	if next, err := Apply(s.state, SetPlaybackActive{Playing: false}); err == nil {
		s.state = next
	}
	control := s.control
	s.mu.Unlock()

	if control != nil {
		if err := control.Pause(ctx); err != nil {
			log.Printf("tunetrivia: pause on leave: %v", err)
		}
	}
}
