package game

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/scholle211/tunetrivia/internal/catalog"
)

// Action is the closed set of orchestrator transitions. Every state mutation
// goes through Apply; views only ever dispatch one of these.
type Action interface {
	isAction()
}

type SetConfiguration struct {
	Config Configuration
}

type AddPlayer struct {
	Name string
}

type RemovePlayer struct {
	ID string
}

type StartGame struct{}

type SetActiveTrack struct {
	Track *catalog.Track
}

type SetPlaybackActive struct {
	Playing bool
}

// Reveal flips the active turn from guessing to scoring. It is emitted by the
// countdown reaching zero, or by the host skipping ahead.
type Reveal struct{}

type RecordScore struct {
	PlayerID string
	Points   int
}

type AdvanceTurn struct{}

type Reset struct{}

func (SetConfiguration) isAction()  {}
func (AddPlayer) isAction()         {}
func (RemovePlayer) isAction()      {}
func (StartGame) isAction()         {}
func (SetActiveTrack) isAction()    {}
func (SetPlaybackActive) isAction() {}
func (Reveal) isAction()            {}
func (RecordScore) isAction()       {}
func (AdvanceTurn) isAction()       {}
func (Reset) isAction()             {}

// Apply is the pure transition function. It returns the next state, or the
// input state unchanged together with a ValidationError when a precondition
// fails.
func Apply(s State, action Action) (State, error) {
	switch a := action.(type) {
	case SetConfiguration:
		if s.Status != StatusSetup {
			return s, errValidation("configuration is locked once the game starts")
		}
		cfg := a.Config
		if cfg.Rounds < 1 {
			return s, errValidation("round count must be positive")
		}
		if cfg.TimePerGuess < 1 {
			return s, errValidation("time per guess must be positive")
		}
		if cfg.PlaylistID == "" {
			return s, errValidation("a playlist must be selected")
		}
		if cfg.Mode == "" {
			cfg.Mode = ModeShared
		}
		if cfg.Mode != ModeShared && cfg.Mode != ModePerPlayer {
			return s, errValidation("unknown game mode %q", cfg.Mode)
		}
		s.Config = cfg
		return s, nil

	case AddPlayer:
		if s.Status != StatusSetup {
			return s, errValidation("players can only join during setup")
		}
		name := strings.TrimSpace(a.Name)
		if name == "" {
			return s, errValidation("player name must not be empty")
		}
		for _, p := range s.Players {
			if strings.EqualFold(p.Name, name) {
				return s, errValidation("a player named %q already exists", p.Name)
			}
		}
		players := make([]Player, len(s.Players), len(s.Players)+1)
		copy(players, s.Players)
		s.Players = append(players, Player{
			ID:     uuid.NewString(),
			Name:   name,
			Avatar: avatarPalette[len(players)%len(avatarPalette)],
		})
		return s, nil

	case RemovePlayer:
		if s.Status != StatusSetup {
			return s, errValidation("the roster is locked once the game starts")
		}
		players := make([]Player, 0, len(s.Players))
		for _, p := range s.Players {
			if p.ID != a.ID {
				players = append(players, p)
			}
		}
		s.Players = players
		return s, nil

	case StartGame:
		if s.Status != StatusSetup {
			return s, errValidation("game already started")
		}
		if len(s.Players) < 2 {
			return s, errValidation("at least 2 players are needed to start")
		}
		s.CurrentRound = 1
		s.TurnIndex = 0
		s.Status = StatusPlaying
		s.IsPlaying = false
		return s, nil

	case SetActiveTrack:
		if s.Status != StatusPlaying {
			return s, errValidation("no active turn to set a track for")
		}
		if a.Track == nil {
			return s, errValidation("track must not be empty")
		}
		s.CurrentTrack = a.Track
		return s, nil

	case SetPlaybackActive:
		// Mirrors external device state; valid in any phase.
		s.IsPlaying = a.Playing
		return s, nil

	case Reveal:
		if s.Status != StatusPlaying {
			return s, errValidation("no guessing turn to reveal")
		}
		s.Status = StatusScoring
		s.IsPlaying = false
		return s, nil

	case RecordScore:
		if s.Status != StatusScoring && s.Status != StatusPlaying {
			return s, errValidation("scores can only be recorded during a turn")
		}
		if a.Points < 0 {
			return s, errValidation("points must not be negative")
		}
		idx := -1
		for i, p := range s.Players {
			if p.ID == a.PlayerID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return s, errValidation("unknown player %q", a.PlayerID)
		}
		players := make([]Player, len(s.Players))
		copy(players, s.Players)
		players[idx].Score += a.Points
		s.Players = players
		return s, nil

	case AdvanceTurn:
		if s.Status != StatusScoring {
			return s, errValidation("the current turn has not been scored yet")
		}
		if s.Config.Mode == ModePerPlayer && s.TurnIndex+1 < len(s.Players) {
			s.TurnIndex++
			s.Status = StatusPlaying
			s.CurrentTrack = nil
			s.IsPlaying = false
			return s, nil
		}
		s.TurnIndex = 0
		if s.CurrentRound >= s.Config.Rounds {
			s.Status = StatusFinished
			s.CurrentTrack = nil
			s.IsPlaying = false
			return s, nil
		}
		s.CurrentRound++
		s.Status = StatusPlaying
		s.CurrentTrack = nil
		s.IsPlaying = false
		return s, nil

	case Reset:
		players := make([]Player, len(s.Players))
		copy(players, s.Players)
		for i := range players {
			players[i].Score = 0
		}
		s.Players = players
		s.CurrentRound = 0
		s.TurnIndex = 0
		s.Status = StatusSetup
		s.CurrentTrack = nil
		s.IsPlaying = false
		return s, nil

	default:
		return s, fmt.Errorf("game: unhandled action %T", a)
	}
}

// turnNumber is the zero-based index of the current turn across the whole
// game, used to pick the turn's track from the drawn queue.
func (s State) turnNumber() int {
	if s.CurrentRound == 0 {
		return 0
	}
	if s.Config.Mode == ModePerPlayer {
		return (s.CurrentRound-1)*len(s.Players) + s.TurnIndex
	}
	return s.CurrentRound - 1
}

// TotalTurns is how many scored turns one full game has.
func (s State) TotalTurns() int {
	if s.Config.Mode == ModePerPlayer {
		return s.Config.Rounds * len(s.Players)
	}
	return s.Config.Rounds
}
