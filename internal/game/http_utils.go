package game

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/scholle211/tunetrivia/internal/catalog"
)

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": msg,
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeGameError maps the error taxonomy onto HTTP responses. Raw transport
// errors never reach a view; everything resolves to a recoverable state.
func writeGameError(w http.ResponseWriter, err error) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		writeError(w, http.StatusBadRequest, ve.Msg)
		return
	}
	if errors.Is(err, catalog.ErrSessionExpired) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"session expired, please log in again","login":"/auth/login"}`))
		return
	}
	if errors.Is(err, catalog.ErrNoPlayableTracks) {
		writeError(w, http.StatusUnprocessableEntity, "no playable tracks in this playlist, pick a different one")
		return
	}
	writeError(w, http.StatusBadGateway, "could not reach the music provider")
}
