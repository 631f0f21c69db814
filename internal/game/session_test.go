package game

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scholle211/tunetrivia/internal/catalog"
	"github.com/scholle211/tunetrivia/internal/player"
)

// fakeControl records play/pause commands and can be told to fail.
type fakeControl struct {
	plays   []string
	pauses  int
	playErr error
}

func (f *fakeControl) Play(_ context.Context, trackURI string) error {
	if f.playErr != nil {
		return f.playErr
	}
	f.plays = append(f.plays, trackURI)
	return nil
}

func (f *fakeControl) Pause(_ context.Context) error {
	f.pauses++
	return nil
}

func testTracks(n int) []catalog.Track {
	tracks := make([]catalog.Track, n)
	for i := range tracks {
		tracks[i] = catalog.Track{
			Title: "Track " + string(rune('A'+i)),
			URI:   "spotify:track:" + string(rune('a'+i)),
		}
	}
	return tracks
}

func newStartedSession(t *testing.T, control PlaybackControl, names ...string) *Session {
	t.Helper()
	sess := NewSession("sess-1", control, nil)
	require.NoError(t, sess.Dispatch(SetConfiguration{Config: Configuration{
		Rounds: 3, TimePerGuess: 30, PlaylistID: "pl1", PlaylistName: "Party",
	}}))
	for _, name := range names {
		require.NoError(t, sess.Dispatch(AddPlayer{Name: name}))
	}
	require.NoError(t, sess.StartWithTracks(sess.Epoch(), testTracks(3)))
	return sess
}

func TestSessionStartLoadsFirstTrack(t *testing.T) {
	sess := newStartedSession(t, nil, "Al", "Bo")

	snap := sess.Snapshot()
	assert.Equal(t, StatusPlaying, snap.Status)
	assert.Equal(t, 1, snap.CurrentRound)
	require.NotNil(t, snap.CurrentTrack)
	assert.Equal(t, "Track A", snap.CurrentTrack.Title)
	assert.Equal(t, 30, snap.Timer.Remaining)
	assert.False(t, snap.Timer.Running)
}

func TestSessionStartWithStaleEpoch(t *testing.T) {
	sess := NewSession("sess-1", nil, nil)
	require.NoError(t, sess.Dispatch(SetConfiguration{Config: Configuration{
		Rounds: 3, TimePerGuess: 30, PlaylistID: "pl1",
	}}))
	require.NoError(t, sess.Dispatch(AddPlayer{Name: "Al"}))
	require.NoError(t, sess.Dispatch(AddPlayer{Name: "Bo"}))

	// A fetch started before the reset must not start the new game.
	stale := sess.Epoch()
	require.NoError(t, sess.ResetGame())

	err := sess.StartWithTracks(stale, testTracks(3))
	assert.ErrorIs(t, err, ErrStaleEpoch)
	assert.Equal(t, StatusSetup, sess.Snapshot().Status)
}

func TestSessionPlayStartsCountdownAndPlayback(t *testing.T) {
	control := &fakeControl{}
	sess := newStartedSession(t, control, "Al", "Bo")

	require.NoError(t, sess.Play(context.Background()))

	snap := sess.Snapshot()
	assert.True(t, snap.IsPlaying)
	assert.True(t, snap.Timer.Running)
	require.Len(t, control.plays, 1)
	assert.Equal(t, "spotify:track:a", control.plays[0])
}

func TestSessionPlayDeviceFailure(t *testing.T) {
	control := &fakeControl{playErr: &player.UnavailableError{Reason: "no device"}}
	sess := newStartedSession(t, control, "Al", "Bo")

	err := sess.Play(context.Background())
	var ue *player.UnavailableError
	require.ErrorAs(t, err, &ue)

	// Non-fatal: countdown stays stopped, game state untouched.
	snap := sess.Snapshot()
	assert.False(t, snap.Timer.Running)
	assert.False(t, snap.IsPlaying)
	assert.Equal(t, StatusPlaying, snap.Status)
}

func TestSessionPauseKeepsRemaining(t *testing.T) {
	control := &fakeControl{}
	sess := newStartedSession(t, control, "Al", "Bo")

	require.NoError(t, sess.Play(context.Background()))
	sess.timer.Tick()
	sess.timer.Tick()
	require.NoError(t, sess.Pause(context.Background()))

	snap := sess.Snapshot()
	assert.False(t, snap.Timer.Running)
	assert.Equal(t, 28, snap.Timer.Remaining)
	assert.False(t, snap.IsPlaying)
	assert.Equal(t, 1, control.pauses)

	// Resume continues the same countdown.
	require.NoError(t, sess.Play(context.Background()))
	assert.Equal(t, 28, sess.Snapshot().Timer.Remaining)
}

func TestSessionCountdownZeroReveals(t *testing.T) {
	control := &fakeControl{}
	sess := newStartedSession(t, control, "Al", "Bo")

	require.NoError(t, sess.Play(context.Background()))
	for i := 0; i < 30; i++ {
		sess.timer.Tick()
	}

	snap := sess.Snapshot()
	assert.Equal(t, StatusScoring, snap.Status)
	assert.True(t, snap.Timer.Revealed)
	assert.False(t, snap.IsPlaying)
	assert.Equal(t, 1, control.pauses, "reveal requests a playback pause")
}

func TestSessionRevealNow(t *testing.T) {
	control := &fakeControl{}
	sess := newStartedSession(t, control, "Al", "Bo")

	require.NoError(t, sess.RevealNow(context.Background()))
	assert.Equal(t, StatusScoring, sess.Snapshot().Status)

	err := sess.RevealNow(context.Background())
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve, "reveal is one-shot per turn")
}

func TestSessionSubmitScoresRequiresScoring(t *testing.T) {
	sess := newStartedSession(t, nil, "Al", "Bo")

	err := sess.SubmitScores(map[string]ScoreSheet{"x": {}})
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestSessionAdvanceResetsSheetsAndTimer(t *testing.T) {
	sess := newStartedSession(t, nil, "Al", "Bo")
	al := sess.Snapshot().Players[0].ID

	require.NoError(t, sess.RevealNow(context.Background()))
	require.NoError(t, sess.SubmitScores(map[string]ScoreSheet{
		al: {Artist: true, Title: true},
	}))
	require.Len(t, sess.Snapshot().Sheets, 1)

	before := sess.Epoch()
	require.NoError(t, sess.Advance())

	snap := sess.Snapshot()
	assert.Equal(t, 2, snap.CurrentRound)
	assert.Equal(t, StatusPlaying, snap.Status)
	require.NotNil(t, snap.CurrentTrack)
	assert.Equal(t, "Track B", snap.CurrentTrack.Title)
	assert.Empty(t, snap.Sheets)
	assert.Equal(t, 30, snap.Timer.Remaining)
	assert.False(t, snap.Timer.Revealed)
	assert.NotEqual(t, before, sess.Epoch(), "advancing moves the epoch")
}

// Full play-through per the scripted scenario: three rounds, Al sweeps every
// turn, Bo only ever names the artist.
func TestSessionEndToEnd(t *testing.T) {
	sess := newStartedSession(t, nil, "Al", "Bo")
	snap := sess.Snapshot()
	al, bo := snap.Players[0].ID, snap.Players[1].ID

	for turn := 0; turn < 3; turn++ {
		require.NoError(t, sess.RevealNow(context.Background()))
		require.NoError(t, sess.SubmitScores(map[string]ScoreSheet{
			al: {Artist: true, Title: true, Year: true},
			bo: {Artist: true},
		}))
		require.NoError(t, sess.Advance())
	}

	snap = sess.Snapshot()
	require.Equal(t, StatusFinished, snap.Status)
	assert.Equal(t, 12, snap.Players[0].Score)
	assert.Equal(t, 3, snap.Players[1].Score)

	winners := Winners(snap.Players)
	require.Len(t, winners, 1)
	assert.Equal(t, "Al", winners[0].Name)

	// Reset keeps the roster, zeroes the scores.
	require.NoError(t, sess.ResetGame())
	snap = sess.Snapshot()
	assert.Equal(t, StatusSetup, snap.Status)
	require.Len(t, snap.Players, 2)
	assert.Equal(t, al, snap.Players[0].ID)
	assert.Zero(t, snap.Players[0].Score)
}

func TestSessionShortQueueWrapsAround(t *testing.T) {
	sess := NewSession("sess-1", nil, nil)
	require.NoError(t, sess.Dispatch(SetConfiguration{Config: Configuration{
		Rounds: 3, TimePerGuess: 30, PlaylistID: "pl1",
	}}))
	require.NoError(t, sess.Dispatch(AddPlayer{Name: "Al"}))
	require.NoError(t, sess.Dispatch(AddPlayer{Name: "Bo"}))
	require.NoError(t, sess.StartWithTracks(sess.Epoch(), testTracks(2)))

	require.NoError(t, sess.RevealNow(context.Background()))
	require.NoError(t, sess.Advance())
	require.NoError(t, sess.RevealNow(context.Background()))
	require.NoError(t, sess.Advance())

	// Round 3 wraps back to the first track.
	snap := sess.Snapshot()
	require.NotNil(t, snap.CurrentTrack)
	assert.Equal(t, "Track A", snap.CurrentTrack.Title)
}

func TestSessionLeaveStopsCountdown(t *testing.T) {
	control := &fakeControl{}
	sess := newStartedSession(t, control, "Al", "Bo")
	require.NoError(t, sess.Play(context.Background()))

	sess.Leave(context.Background())

	snap := sess.Snapshot()
	assert.False(t, snap.Timer.Running)
	assert.False(t, snap.IsPlaying)
	assert.Equal(t, 1, control.pauses)
}

func TestSessionStartRejectsEmptyQueue(t *testing.T) {
	sess := NewSession("sess-1", nil, nil)
	require.NoError(t, sess.Dispatch(SetConfiguration{Config: Configuration{
		Rounds: 3, TimePerGuess: 30, PlaylistID: "pl1",
	}}))
	require.NoError(t, sess.Dispatch(AddPlayer{Name: "Al"}))
	require.NoError(t, sess.Dispatch(AddPlayer{Name: "Bo"}))

	err := sess.StartWithTracks(sess.Epoch(), nil)
	assert.True(t, errors.Is(err, catalog.ErrNoPlayableTracks))
}
