package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/scholle211/tunetrivia/internal/auth"
	"github.com/scholle211/tunetrivia/internal/catalog"
	"github.com/scholle211/tunetrivia/internal/config"
	"github.com/scholle211/tunetrivia/internal/game"
	"github.com/scholle211/tunetrivia/internal/player"
	"github.com/scholle211/tunetrivia/internal/realtime"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("tunetrivia: config: %v", err)
	}

	// Redis holds the credential strings and carries game events to the
	// realtime hub. Without it the service still runs: credentials fall back
	// to process memory and views poll instead of being pushed to.
	var rdb *redis.Client
	var store auth.SessionStore = auth.NewMemoryStore()
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("tunetrivia: invalid REDIS_URL: %v", err)
		}
		rdb = redis.NewClient(opt)
		defer rdb.Close()
		store = auth.NewRedisStore(rdb)
	}

	cat := catalog.NewClient(cfg.APIBaseURL)
	plr := player.NewClient(cfg.APIBaseURL)
	devices := player.NewRegistry()

	authSvc := auth.NewService(auth.Config{
		ClientID:     cfg.SpotifyClientID,
		RedirectURL:  cfg.RedirectURL,
		AuthorizeURL: cfg.AuthorizeURL,
		TokenURL:     cfg.TokenURL,
		StateSecret:  []byte(cfg.StateSecret),
	}, store, cat)
	authSrv := auth.NewHTTPServer(authSvc, cfg.AppURL)

	gameSrv := game.NewServer(ctx, authSvc, cat, plr, devices, rdb)

	hub := realtime.NewHub()
	rtSrv := realtime.NewServer(ctx, hub, rdb)
	go hub.Run()
	go rtSrv.RunRedisSubscriber()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(15 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok","service":"tunetrivia"}`))
	})

	r.Mount("/auth", authSrv.Router())
	r.Mount("/game", gameSrv.Router(authSrv.RequireAuth))
	r.Get("/ws", rtSrv.HandleWS)

	log.Printf("tunetrivia listening on :%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatalf("tunetrivia: %v", err)
	}
}
