package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/tickytakatoe/tickytakatoe-backend/internal/entity"
	"github.com/tickytakatoe/tickytakatoe-backend/internal/realtime"
)

const writeWait = 10 * time.Second

type gameStore interface {
	Get(id string) (*entity.Game, bool)
}

// Server upgrades observer connections and wires them into the fan-out hub.
type Server struct {
	logger *slog.Logger

	hub      *realtime.Hub
	store    gameStore
	upgrader websocket.Upgrader
}

func New(logger *slog.Logger, hub *realtime.Hub, store gameStore) *Server {
	return &Server{
		logger: logger,
		hub:    hub,
		store:  store,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(_ *http.Request) bool { return true },
		},
	}
}

// Handler - the endpoint for "GET /ws/games/{id}".
func (that *Server) Handler() http.Handler {
	return http.HandlerFunc(that.handleGame)
}

func (that *Server) handleGame(writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "handleGame")

	gameID := req.PathValue("id")
	if _, ok := that.store.Get(gameID); !ok {
		http.Error(writer, "game not found", http.StatusNotFound)
		return
	}

	conn, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	observer := newObserver(conn)
	that.hub.Connect(observer, gameID)
	log.Info("observer connected", "gameID", gameID, "observers", that.hub.ObserverCount(gameID))

	defer func() {
		that.hub.Disconnect(observer, gameID)

		if err = observer.Close(); err != nil {
			log.Error("failed to close connection", "error", err)
		}

		log.Info("observer disconnected", "gameID", gameID)
	}()

	for {
		var message json.RawMessage
		if err = conn.ReadJSON(&message); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Error("failed to read message", "gameID", gameID, "error", err)
			}
			return
		}

		// Inbound messages are opaque to the server: relay them to every
		// observer of the game without validating them against the rules.
		that.hub.Broadcast(gameID, message)
	}
}

// observer wraps a gorilla connection so hub broadcasts from different
// handlers never interleave writes, and a stalled observer cannot hold a
// broadcast hostage past the write deadline.
type observer struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func newObserver(conn *websocket.Conn) *observer {
	return &observer{conn: conn}
}

func (that *observer) WriteJSON(v any) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if err := that.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return fmt.Errorf("failed to set write deadline: %w", err)
	}

	if err := that.conn.WriteJSON(v); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

func (that *observer) Close() error {
	if err := that.conn.Close(); err != nil {
		return fmt.Errorf("failed to close connection: %w", err)
	}

	return nil
}
