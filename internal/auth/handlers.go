package auth

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const sessionCookie = "tt_session"

// SessionID returns the browser session id, minting a cookie on first
// contact. Sessions identify a browser, not an account; credentials attach to
// them after login.
func SessionID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

// HTTPServer exposes the authorization lifecycle over HTTP.
type HTTPServer struct {
	svc    *Service
	appURL string
}

func NewHTTPServer(svc *Service, appURL string) *HTTPServer {
	return &HTTPServer{svc: svc, appURL: appURL}
}

func (h *HTTPServer) Router(middlewares ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	for _, mw := range middlewares {
		r.Use(mw)
	}

	r.Get("/login", h.handleLogin)
	r.Get("/callback", h.handleCallback)
	r.Get("/session", h.handleSession)
	r.Post("/logout", h.handleLogout)

	return r
}

func (h *HTTPServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	sessionID := SessionID(w, r)

	authURL, err := h.svc.BeginLogin(r.Context(), sessionID)
	if err != nil {
		log.Printf("tunetrivia: begin login: %v", err)
		writeError(w, http.StatusInternalServerError, "could not start login")
		return
	}

	http.Redirect(w, r, authURL, http.StatusFound)
}

func (h *HTTPServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if errStr := q.Get("error"); errStr != "" {
		writeError(w, http.StatusBadRequest, "provider error: "+errStr)
		return
	}

	code := q.Get("code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "code is required")
		return
	}

	sessionID, err := h.svc.VerifyState(q.Get("state"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid state")
		return
	}

	if err := h.svc.CompleteLogin(r.Context(), sessionID, code); err != nil {
		var xe *ExchangeError
		if errors.As(err, &xe) {
			log.Printf("tunetrivia: token exchange: %v", xe)
			writeError(w, http.StatusBadGateway, "login failed, please try again")
			return
		}
		log.Printf("tunetrivia: complete login: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	http.Redirect(w, r, h.appURL, http.StatusFound)
}

func (h *HTTPServer) handleSession(w http.ResponseWriter, r *http.Request) {
	sessionID := SessionID(w, r)

	session, err := h.svc.RestoreSession(r.Context(), sessionID)
	if err != nil {
		log.Printf("tunetrivia: restore session: %v", err)
		writeError(w, http.StatusBadGateway, "could not reach provider")
		return
	}

	writeJSON(w, http.StatusOK, session)
}

func (h *HTTPServer) handleLogout(w http.ResponseWriter, r *http.Request) {
	sessionID := SessionID(w, r)

	if err := h.svc.Logout(r.Context(), sessionID); err != nil {
		log.Printf("tunetrivia: logout: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// RequireAuth gates game routes: unauthenticated sessions get a 401 with a
// hint at the login route instead of reaching gameplay.
func (h *HTTPServer) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := SessionID(w, r)
		if _, err := h.svc.Token(r.Context(), sessionID); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"login required","login":"/auth/login"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}
