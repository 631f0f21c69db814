package realtime

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
)

var upgrader = websocket.Upgrader{
	// The game runs same-origin behind the service itself.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Server upgrades views onto the hub and feeds it from the Redis broadcast
// channel the game server publishes to.
type Server struct {
	hub *Hub
	rdb *redis.Client
	ctx context.Context
}

func NewServer(ctx context.Context, hub *Hub, rdb *redis.Client) *Server {
	return &Server{
		hub: hub,
		rdb: rdb,
		ctx: ctx,
	}
}

// RunRedisSubscriber pumps the "broadcast" channel into the hub.
func (s *Server) RunRedisSubscriber() {
	if s.rdb == nil {
		return
	}
	sub := s.rdb.Subscribe(s.ctx, "broadcast")
	defer sub.Close()

	ch := sub.Channel()
	for msg := range ch {
		s.hub.broadcast <- []byte(msg.Payload)
	}
}

// HandleWS upgrades a view connection and attaches it to the hub.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("tunetrivia: ws upgrade: %v", err)
		return
	}

	client := &Client{
		hub:  s.hub,
		conn: conn,
		send: make(chan []byte, 256),
	}
	s.hub.register <- client

	welcome := map[string]any{
		"type": "welcome",
		"now":  time.Now().UTC().Format(time.RFC3339Nano),
	}
	if b, err := json.Marshal(welcome); err == nil {
		client.send <- b
	}

	go client.writePump()
	go client.readPump()
}
