package game

import (
	"github.com/scholle211/tunetrivia/internal/catalog"
)

// Status is the orchestrator phase. setup -> playing -> scoring -> playing
// (loop) -> finished; finished -> setup only via Reset.
type Status string

const (
	StatusSetup    Status = "setup"
	StatusPlaying  Status = "playing"
	StatusScoring  Status = "scoring"
	StatusFinished Status = "finished"
)

// Mode decides how turns map to rounds: shared plays one song per round for
// all players; perPlayer gives each player their own song within a round.
type Mode string

const (
	ModeShared    Mode = "shared"
	ModePerPlayer Mode = "perPlayer"
)

// Configuration is immutable once a game starts.
type Configuration struct {
	Rounds       int    `json:"rounds"`
	TimePerGuess int    `json:"timePerGuess"` // seconds
	PlaylistID   string `json:"playlistId"`
	PlaylistName string `json:"playlistName"`
	Mode         Mode   `json:"mode"`
}

// Player is one local participant. Ids are stable for the life of one game;
// the roster is mutable only during setup.
type Player struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
	Score  int    `json:"score"`
}

// Cosmetic avatar tags, cycled by roster position.
var avatarPalette = []string{
	"purple", "blue", "green", "yellow", "red", "pink", "indigo", "teal",
}

// ScoreSheet holds the three guess flags for one player in one turn. Sheets
// live only for the turn they belong to.
type ScoreSheet struct {
	Artist bool `json:"artist"`
	Title  bool `json:"title"`
	Year   bool `json:"year"`
}

// State is the canonical game state, owned exclusively by the orchestrator.
type State struct {
	Config       Configuration  `json:"config"`
	Players      []Player       `json:"players"`
	CurrentRound int            `json:"currentRound"`
	TurnIndex    int            `json:"turnIndex"` // perPlayer mode: whose turn within the round
	CurrentTrack *catalog.Track `json:"currentTrack,omitempty"`
	Status       Status         `json:"status"`
	IsPlaying    bool           `json:"isPlaying"`
}

// NewState returns the initial setup state with the default configuration.
func NewState() State {
	return State{
		Config: Configuration{
			Rounds:       5,
			TimePerGuess: 30,
			Mode:         ModeShared,
		},
		Players: []Player{},
		Status:  StatusSetup,
	}
}
