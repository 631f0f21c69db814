package game

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/scholle211/tunetrivia/internal/auth"
	"github.com/scholle211/tunetrivia/internal/catalog"
)

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

// handleListPlaylists lists playlists the host may configure. Elevated
// accounts see their personal playlists and may search; standard accounts get
// the featured listing.
func (s *Server) handleListPlaylists(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := auth.SessionID(w, r)

	token, err := s.auth.Token(ctx, sessionID)
	if err != nil {
		writeGameError(w, catalog.ErrSessionExpired)
		return
	}

	authSession, err := s.auth.RestoreSession(ctx, sessionID)
	if err != nil {
		log.Printf("tunetrivia: restore session for playlists: %v", err)
		writeGameError(w, err)
		return
	}
	if !authSession.Authenticated {
		writeGameError(w, catalog.ErrSessionExpired)
		return
	}
	elevated := authSession.Tier == auth.TierElevated

	query := strings.TrimSpace(r.URL.Query().Get("query"))

	var playlists []catalog.Playlist
	if query != "" {
		if !elevated {
			writeGameError(w, errValidation("playlist search needs a premium account"))
			return
		}
		playlists, err = s.catalog.SearchPlaylists(ctx, token, query)
	} else {
		playlists, err = s.catalog.FetchPlaylists(ctx, token, elevated)
	}
	if err != nil {
		log.Printf("tunetrivia: list playlists: %v", err)
		writeGameError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"playlists": playlists,
		"tier":      authSession.Tier,
	})
}

func (s *Server) handleSetConfig(w http.ResponseWriter, r *http.Request) {
	var cfg Configuration
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	sess := s.session(w, r)
	if err := sess.Dispatch(SetConfiguration{Config: cfg}); err != nil {
		writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handleAddPlayer(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	sess := s.session(w, r)
	if err := sess.Dispatch(AddPlayer{Name: body.Name}); err != nil {
		writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handleRemovePlayer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing player id")
		return
	}

	sess := s.session(w, r)
	if err := sess.Dispatch(RemovePlayer{ID: id}); err != nil {
		writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

// handleStart draws the game's track queue and starts round 1. The fetch is
// epoch-tagged: if the session is reset while the catalog call is in flight,
// its result is discarded instead of overwriting the new game.
func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := auth.SessionID(w, r)
	sess := s.session(w, r)

	snap := sess.Snapshot()
	if snap.Status != StatusSetup {
		writeGameError(w, errValidation("game already started"))
		return
	}
	if len(snap.Players) < 2 {
		writeGameError(w, errValidation("at least 2 players are needed to start"))
		return
	}
	if snap.Config.PlaylistID == "" {
		writeGameError(w, errValidation("a playlist must be selected"))
		return
	}

	token, err := s.auth.Token(ctx, sessionID)
	if err != nil {
		writeGameError(w, catalog.ErrSessionExpired)
		return
	}

	epoch := sess.Epoch()
	tracks, err := s.catalog.RandomTracks(ctx, token, snap.Config.PlaylistID, snap.TotalTurns())
	if err != nil {
		log.Printf("tunetrivia: draw tracks: %v", err)
		writeGameError(w, err)
		return
	}

	if err := sess.StartWithTracks(epoch, tracks); err != nil {
		writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}
