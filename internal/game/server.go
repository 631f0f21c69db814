package game

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/scholle211/tunetrivia/internal/auth"
	"github.com/scholle211/tunetrivia/internal/catalog"
	"github.com/scholle211/tunetrivia/internal/player"
)

// Server owns the game sessions and wires them to the catalog, the playback
// device client, and the realtime broadcast channel.
type Server struct {
	ctx     context.Context
	auth    *auth.Service
	catalog *catalog.Client
	player  *player.Client
	devices *player.Registry
	rdb     *redis.Client

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewServer(ctx context.Context, authSvc *auth.Service, cat *catalog.Client, plr *player.Client, devices *player.Registry, rdb *redis.Client) *Server {
	return &Server{
		ctx:      ctx,
		auth:     authSvc,
		catalog:  cat,
		player:   plr,
		devices:  devices,
		rdb:      rdb,
		sessions: make(map[string]*Session),
	}
}

func (s *Server) Router(middlewares ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	for _, mw := range middlewares {
		r.Use(mw)
	}

	r.Get("/state", s.handleState)
	r.Get("/playlists", s.handleListPlaylists)
	r.Post("/config", s.handleSetConfig)
	r.Post("/players", s.handleAddPlayer)
	r.Delete("/players/{id}", s.handleRemovePlayer)
	r.Post("/start", s.handleStart)

	r.Post("/play", s.handlePlay)
	r.Post("/pause", s.handlePause)
	r.Post("/reveal", s.handleReveal)
	r.Post("/scores", s.handleScores)
	r.Post("/advance", s.handleAdvance)
	r.Post("/reset", s.handleReset)
	r.Post("/leave", s.handleLeave)
	r.Get("/results", s.handleResults)

	r.Post("/device", s.handleDeviceReady)
	r.Post("/device/error", s.handleDeviceError)

	return r
}

// session returns the browser's game session, creating it on first use.
func (s *Server) session(w http.ResponseWriter, r *http.Request) *Session {
	sessionID := auth.SessionID(w, r)

	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		sess = NewSession(sessionID, &deviceControl{srv: s, sessionID: sessionID}, func(event string, payload any) {
			s.publishEvent(event, sessionID, payload)
		})
		sess.Run(s.ctx)
		s.sessions[sessionID] = sess
	}
	return sess
}

// publishEvent pushes a game event onto the broadcast channel consumed by the
// realtime hub.
func (s *Server) publishEvent(event, sessionID string, payload any) {
	if s.rdb == nil {
		return
	}
	data, err := json.Marshal(map[string]any{
		"type":      event,
		"sessionId": sessionID,
		"payload":   payload,
	})
	if err != nil {
		log.Printf("tunetrivia: marshal event: %v", err)
		return
	}
	if err := s.rdb.Publish(s.ctx, "broadcast", string(data)).Err(); err != nil {
		log.Printf("tunetrivia: publish event: %v", err)
	}
}

// deviceControl binds play/pause commands to one session's credential and
// negotiated device.
type deviceControl struct {
	srv       *Server
	sessionID string
}

const deviceAwaitTimeout = 5 * time.Second

func (c *deviceControl) Play(ctx context.Context, trackURI string) error {
	token, err := c.srv.auth.Token(ctx, c.sessionID)
	if err != nil {
		return &player.UnavailableError{Reason: "missing credential"}
	}

	deviceID, err := c.srv.auth.DeviceID(ctx, c.sessionID)
	if err != nil {
		// No stored device yet: wait for the SDK handshake, but only now, at
		// the point playback is first requested.
		awaitCtx, cancel := context.WithTimeout(ctx, deviceAwaitTimeout)
		defer cancel()
		deviceID, err = c.srv.devices.For(c.sessionID).Await(awaitCtx)
		if err != nil {
			return &player.UnavailableError{Reason: "playback device not ready"}
		}
		_ = c.srv.auth.SetDeviceID(ctx, c.sessionID, deviceID)
	}

	return c.srv.player.Play(ctx, token, deviceID, trackURI)
}

func (c *deviceControl) Pause(ctx context.Context) error {
	token, err := c.srv.auth.Token(ctx, c.sessionID)
	if err != nil {
		return &player.UnavailableError{Reason: "missing credential"}
	}
	return c.srv.player.Pause(ctx, token)
}
