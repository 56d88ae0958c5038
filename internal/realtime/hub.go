// Package realtime keeps every live observer of a game in sync by fanning
// structured events out over their connections.
package realtime

import (
	"log/slog"
	"sync"
)

// Conn is one live observer channel. Implementations must be safe for
// concurrent WriteJSON calls.
type Conn interface {
	WriteJSON(v any) error
	Close() error
}

type Hub struct {
	logger *slog.Logger

	mu    sync.RWMutex
	games map[string]map[Conn]struct{}
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger: logger,
		games:  make(map[string]map[Conn]struct{}),
	}
}

// Connect - registers conn as an observer of the game.
func (that *Hub) Connect(conn Conn, gameID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	conns, ok := that.games[gameID]
	if !ok {
		conns = make(map[Conn]struct{})
		that.games[gameID] = conns
	}

	conns[conn] = struct{}{}
}

// Disconnect - removes conn; the last observer leaving drops the game's
// entry entirely, so idle games hold no fan-out state.
func (that *Hub) Disconnect(conn Conn, gameID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	conns, ok := that.games[gameID]
	if !ok {
		return
	}

	delete(conns, conn)

	if len(conns) == 0 {
		delete(that.games, gameID)
	}
}

// Broadcast - sends message to every observer registered for the game at
// the moment of the call. Delivery is independent per connection: one
// failing observer is logged and skipped, never surfaced to the caller or
// to other observers. No observers is a no-op.
func (that *Hub) Broadcast(gameID string, message any) {
	that.mu.RLock()
	conns := make([]Conn, 0, len(that.games[gameID]))
	for conn := range that.games[gameID] {
		conns = append(conns, conn)
	}
	that.mu.RUnlock()

	for _, conn := range conns {
		if err := conn.WriteJSON(message); err != nil {
			that.logger.Warn("failed to deliver event", "gameID", gameID, "error", err)
		}
	}
}

// ObserverCount - number of live observers for the game.
func (that *Hub) ObserverCount(gameID string) int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.games[gameID])
}
