package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scholle211/tunetrivia/internal/catalog"
)

func mustApply(t *testing.T, s State, a Action) State {
	t.Helper()
	next, err := Apply(s, a)
	require.NoError(t, err)
	return next
}

func setupState(t *testing.T, names ...string) State {
	t.Helper()
	s := NewState()
	s = mustApply(t, s, SetConfiguration{Config: Configuration{
		Rounds:       3,
		TimePerGuess: 30,
		PlaylistID:   "pl1",
		PlaylistName: "Party",
	}})
	for _, name := range names {
		s = mustApply(t, s, AddPlayer{Name: name})
	}
	return s
}

func TestSetConfiguration(t *testing.T) {
	s := NewState()

	t.Run("defaults mode to shared", func(t *testing.T) {
		next := mustApply(t, s, SetConfiguration{Config: Configuration{
			Rounds: 5, TimePerGuess: 30, PlaylistID: "pl1",
		}})
		assert.Equal(t, ModeShared, next.Config.Mode)
	})

	t.Run("rejects bad input", func(t *testing.T) {
		for _, cfg := range []Configuration{
			{Rounds: 0, TimePerGuess: 30, PlaylistID: "pl1"},
			{Rounds: 3, TimePerGuess: 0, PlaylistID: "pl1"},
			{Rounds: 3, TimePerGuess: 30, PlaylistID: ""},
			{Rounds: 3, TimePerGuess: 30, PlaylistID: "pl1", Mode: "nonsense"},
		} {
			_, err := Apply(s, SetConfiguration{Config: cfg})
			var ve *ValidationError
			assert.ErrorAs(t, err, &ve)
		}
	})

	t.Run("locked after start", func(t *testing.T) {
		started := setupState(t, "Al", "Bo")
		started = mustApply(t, started, StartGame{})
		_, err := Apply(started, SetConfiguration{Config: Configuration{
			Rounds: 1, TimePerGuess: 10, PlaylistID: "pl2",
		}})
		assert.Error(t, err)
	})
}

func TestAddPlayer(t *testing.T) {
	s := setupState(t, "Alice")

	t.Run("assigns id and avatar, zero score", func(t *testing.T) {
		require.Len(t, s.Players, 1)
		p := s.Players[0]
		assert.NotEmpty(t, p.ID)
		assert.Equal(t, "Alice", p.Name)
		assert.Equal(t, avatarPalette[0], p.Avatar)
		assert.Zero(t, p.Score)
	})

	t.Run("trims whitespace", func(t *testing.T) {
		next := mustApply(t, s, AddPlayer{Name: "  Bob  "})
		assert.Equal(t, "Bob", next.Players[1].Name)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := Apply(s, AddPlayer{Name: "   "})
		assert.Error(t, err)
	})

	t.Run("rejects case-insensitive duplicate and leaves roster unchanged", func(t *testing.T) {
		next, err := Apply(s, AddPlayer{Name: "ALICE"})
		assert.Error(t, err)
		assert.Equal(t, s.Players, next.Players)
	})

	t.Run("roster locked after start", func(t *testing.T) {
		started := mustApply(t, s, AddPlayer{Name: "Bob"})
		started = mustApply(t, started, StartGame{})
		_, err := Apply(started, AddPlayer{Name: "Carol"})
		assert.Error(t, err)
		_, err = Apply(started, RemovePlayer{ID: started.Players[0].ID})
		assert.Error(t, err)
	})
}

func TestRemovePlayer(t *testing.T) {
	s := setupState(t, "Al", "Bo")

	next := mustApply(t, s, RemovePlayer{ID: s.Players[0].ID})
	require.Len(t, next.Players, 1)
	assert.Equal(t, "Bo", next.Players[0].Name)

	// Unknown id is a no-op.
	next = mustApply(t, s, RemovePlayer{ID: "nope"})
	assert.Len(t, next.Players, 2)
}

func TestStartGame(t *testing.T) {
	t.Run("needs at least 2 players", func(t *testing.T) {
		s := setupState(t, "Solo")
		next, err := Apply(s, StartGame{})
		var ve *ValidationError
		assert.ErrorAs(t, err, &ve)
		assert.Equal(t, StatusSetup, next.Status)
		assert.Zero(t, next.CurrentRound)
	})

	t.Run("starts round 1", func(t *testing.T) {
		s := setupState(t, "Al", "Bo")
		next := mustApply(t, s, StartGame{})
		assert.Equal(t, StatusPlaying, next.Status)
		assert.Equal(t, 1, next.CurrentRound)
		assert.False(t, next.IsPlaying)
	})
}

func TestSetActiveTrack(t *testing.T) {
	s := setupState(t, "Al", "Bo")

	_, err := Apply(s, SetActiveTrack{Track: &catalog.Track{Title: "X", URI: "u"}})
	assert.Error(t, err, "no track outside an active turn")

	s = mustApply(t, s, StartGame{})
	next := mustApply(t, s, SetActiveTrack{Track: &catalog.Track{Title: "X", URI: "u"}})
	require.NotNil(t, next.CurrentTrack)
	assert.Equal(t, "X", next.CurrentTrack.Title)

	_, err = Apply(s, SetActiveTrack{Track: nil})
	assert.Error(t, err)
}

func TestRevealAndRecordScore(t *testing.T) {
	s := setupState(t, "Al", "Bo")
	s = mustApply(t, s, StartGame{})
	s = mustApply(t, s, SetActiveTrack{Track: &catalog.Track{Title: "X", URI: "u"}})

	s = mustApply(t, s, Reveal{})
	assert.Equal(t, StatusScoring, s.Status)
	assert.False(t, s.IsPlaying)

	_, err := Apply(s, Reveal{})
	assert.Error(t, err, "no double reveal")

	al := s.Players[0].ID
	s = mustApply(t, s, RecordScore{PlayerID: al, Points: 4})
	assert.Equal(t, 4, s.Players[0].Score)
	assert.Zero(t, s.Players[1].Score)

	_, err = Apply(s, RecordScore{PlayerID: al, Points: -1})
	assert.Error(t, err, "scores never decrease")

	_, err = Apply(s, RecordScore{PlayerID: "ghost", Points: 1})
	assert.Error(t, err)
}

func TestAdvanceTurnShared(t *testing.T) {
	s := setupState(t, "Al", "Bo")
	s = mustApply(t, s, StartGame{})

	track := &catalog.Track{Title: "X", URI: "u"}
	for round := 1; round <= 3; round++ {
		assert.Equal(t, round, s.CurrentRound)
		s = mustApply(t, s, SetActiveTrack{Track: track})
		s = mustApply(t, s, Reveal{})
		s = mustApply(t, s, AdvanceTurn{})
	}

	assert.Equal(t, StatusFinished, s.Status)
	assert.Equal(t, 3, s.CurrentRound, "round does not increment past the last")
	assert.Nil(t, s.CurrentTrack)

	_, err := Apply(s, AdvanceTurn{})
	assert.Error(t, err, "no advancing a finished game")
}

func TestAdvanceTurnRequiresScoring(t *testing.T) {
	s := setupState(t, "Al", "Bo")
	s = mustApply(t, s, StartGame{})

	_, err := Apply(s, AdvanceTurn{})
	assert.Error(t, err)
}

func TestAdvanceTurnPerPlayer(t *testing.T) {
	s := NewState()
	s = mustApply(t, s, SetConfiguration{Config: Configuration{
		Rounds: 2, TimePerGuess: 30, PlaylistID: "pl1", Mode: ModePerPlayer,
	}})
	s = mustApply(t, s, AddPlayer{Name: "Al"})
	s = mustApply(t, s, AddPlayer{Name: "Bo"})
	s = mustApply(t, s, StartGame{})

	assert.Equal(t, 4, s.TotalTurns())

	track := &catalog.Track{Title: "X", URI: "u"}
	wantTurns := []struct {
		round, turn int
	}{
		{1, 0}, {1, 1}, {2, 0}, {2, 1},
	}
	for i, want := range wantTurns {
		assert.Equal(t, want.round, s.CurrentRound, "turn %d", i)
		assert.Equal(t, want.turn, s.TurnIndex, "turn %d", i)
		assert.Equal(t, i, s.turnNumber())
		s = mustApply(t, s, SetActiveTrack{Track: track})
		s = mustApply(t, s, Reveal{})
		s = mustApply(t, s, AdvanceTurn{})
	}
	assert.Equal(t, StatusFinished, s.Status)
}

func TestReset(t *testing.T) {
	s := setupState(t, "Al", "Bo")
	ids := []string{s.Players[0].ID, s.Players[1].ID}
	s = mustApply(t, s, StartGame{})
	s = mustApply(t, s, SetActiveTrack{Track: &catalog.Track{Title: "X", URI: "u"}})
	s = mustApply(t, s, Reveal{})
	s = mustApply(t, s, RecordScore{PlayerID: ids[0], Points: 4})

	s = mustApply(t, s, Reset{})

	assert.Equal(t, StatusSetup, s.Status)
	assert.Zero(t, s.CurrentRound)
	assert.Nil(t, s.CurrentTrack)
	assert.False(t, s.IsPlaying)
	// Roster membership survives, scores do not.
	require.Len(t, s.Players, 2)
	assert.Equal(t, ids[0], s.Players[0].ID)
	assert.Equal(t, ids[1], s.Players[1].ID)
	assert.Zero(t, s.Players[0].Score)
	assert.Zero(t, s.Players[1].Score)
}
