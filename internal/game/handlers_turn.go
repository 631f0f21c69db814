package game

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/scholle211/tunetrivia/internal/player"
)

// turnResponse is a snapshot plus an optional non-fatal playback warning.
func turnResponse(w http.ResponseWriter, sess *Session, err error) {
	var ue *player.UnavailableError
	if err != nil && errors.As(err, &ue) {
		// Device trouble never blocks the game; the countdown and scoring
		// flow carry on without playback.
		writeJSON(w, http.StatusOK, map[string]any{
			"state":   sess.Snapshot(),
			"warning": ue.Error(),
		})
		return
	}
	if err != nil {
		writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"state": sess.Snapshot()})
}

func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	turnResponse(w, sess, sess.Play(r.Context()))
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	turnResponse(w, sess, sess.Pause(r.Context()))
}

func (s *Server) handleReveal(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	turnResponse(w, sess, sess.RevealNow(r.Context()))
}

func (s *Server) handleScores(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Sheets map[string]ScoreSheet `json:"sheets"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(body.Sheets) == 0 {
		writeError(w, http.StatusBadRequest, "sheets are required")
		return
	}

	sess := s.session(w, r)
	if err := sess.SubmitScores(body.Sheets); err != nil {
		writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if err := sess.Advance(); err != nil {
		writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if err := sess.ResetGame(); err != nil {
		writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handleLeave(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	sess.Leave(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	snap := sess.Snapshot()
	if snap.Status != StatusFinished {
		writeGameError(w, errValidation("the game is not finished yet"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"standings": Standings(snap.Players),
		"winners":   Winners(snap.Players),
	})
}

// handleDeviceReady is the browser SDK's ready event: it delivers the
// negotiated device id, resolving the session's one-shot handshake.
func (s *Server) handleDeviceReady(w http.ResponseWriter, r *http.Request) {
	var body struct {
		DeviceID string `json:"deviceId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.DeviceID == "" {
		writeError(w, http.StatusBadRequest, "deviceId is required")
		return
	}

	sessionID := s.session(w, r).ID()
	if err := s.auth.SetDeviceID(r.Context(), sessionID, body.DeviceID); err != nil {
		log.Printf("tunetrivia: store device id: %v", err)
		writeError(w, http.StatusInternalServerError, "could not store device")
		return
	}
	s.devices.For(sessionID).Ready(body.DeviceID)

	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// handleDeviceError is the SDK's error event for a connection attempt.
func (s *Server) handleDeviceError(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.Message == "" {
		body.Message = "playback device error"
	}

	sessionID := s.session(w, r).ID()
	log.Printf("tunetrivia: device error for session %s: %s", sessionID, body.Message)
	s.devices.For(sessionID).Fail(body.Message)

	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
