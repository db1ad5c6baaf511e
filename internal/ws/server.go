// Package ws pushes the live kitchen board to staff displays over
// websockets.
package ws

import (
	"bytes"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"cassa-pos-services/internal/auth"
	"cassa-pos-services/internal/config"
	"cassa-pos-services/internal/kitchen"

	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type Server struct {
	DB     *pgxpool.Pool
	Logger *zap.Logger
	Config config.Config
}

func New(db *pgxpool.Pool, logger *zap.Logger, cfg config.Config) *Server {
	return &Server{DB: db, Logger: logger, Config: cfg}
}

type wsClient struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (c *wsClient) writeJSON(value any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(value)
}

func (c *wsClient) ping() error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
}

// KitchenBoardWS streams the board to one staff display. Auth rides the
// query string because browsers cannot set headers on websocket upgrades.
// The board is re-read on a fixed interval and pushed only when its JSON
// encoding changed since the last push.
func (s *Server) KitchenBoardWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	token := r.URL.Query().Get("token")
	if bearer := auth.ParseBearerToken(token); bearer != "" {
		token = bearer
	}
	claims, err := auth.VerifyAccessToken(token, s.Config.JWTSecret)
	if err != nil || (claims.Role != auth.RoleKitchen && claims.Role != auth.RoleAdmin) {
		_ = conn.WriteJSON(map[string]any{"type": "error", "message": "unauthorized"})
		return
	}

	ctx := r.Context()
	client := &wsClient{conn: conn}

	var lastSent []byte
	push := func() bool {
		board, err := kitchen.ListActive(ctx, s.DB)
		if err != nil {
			s.Logger.Warn("kitchen board read failed", zap.Error(err))
			return true
		}
		encoded, err := json.Marshal(board)
		if err != nil {
			return true
		}
		if bytes.Equal(encoded, lastSent) {
			return true
		}
		if err := client.writeJSON(map[string]any{"type": "board.state", "data": board}); err != nil {
			return false
		}
		lastSent = encoded
		return true
	}

	if !push() {
		return
	}

	clientClosed := make(chan struct{})
	go func() {
		defer close(clientClosed)
		for {
			if _, _, readErr := conn.ReadMessage(); readErr != nil {
				return
			}
		}
	}()

	poll := time.NewTicker(s.Config.WSKitchenPollInterval)
	defer poll.Stop()
	heartbeat := time.NewTicker(s.Config.WSHeartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-clientClosed:
			return
		case <-ctx.Done():
			return
		case <-poll.C:
			if !push() {
				return
			}
		case <-heartbeat.C:
			if err := client.ping(); err != nil {
				return
			}
		}
	}
}
