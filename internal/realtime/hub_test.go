package realtime

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tickytakatoe/tickytakatoe-backend/internal/entity"
)

type stubConn struct {
	messages []any
	failWith error
}

func (that *stubConn) WriteJSON(v any) error {
	if that.failWith != nil {
		return that.failWith
	}

	that.messages = append(that.messages, v)

	return nil
}

func (that *stubConn) Close() error { return nil }

func newTestHub() *Hub {
	return NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestHub_Broadcast(t *testing.T) {
	t.Run("No observers is a no-op", func(t *testing.T) {
		hub := newTestHub()

		// When: broadcasting to a game nobody watches
		hub.Broadcast("game-1", Event{Type: EventGameStarted})

		// Then: nothing happens, nothing fails
		require.Equal(t, 0, hub.ObserverCount("game-1"))
	})

	t.Run("Every observer of the game receives the event", func(t *testing.T) {
		hub := newTestHub()

		first := &stubConn{}
		second := &stubConn{}
		other := &stubConn{}

		hub.Connect(first, "game-1")
		hub.Connect(second, "game-1")
		hub.Connect(other, "game-2")

		// When: an event is broadcast to game-1
		hub.Broadcast("game-1", Event{Type: EventMoveMade})

		// Then: both game-1 observers got it, the game-2 observer did not
		require.Len(t, first.messages, 1)
		require.Len(t, second.messages, 1)
		require.Empty(t, other.messages)
	})

	t.Run("One failing observer does not block the others", func(t *testing.T) {
		hub := newTestHub()

		broken := &stubConn{failWith: errors.New("connection reset")}
		healthy := &stubConn{}

		hub.Connect(broken, "game-1")
		hub.Connect(healthy, "game-1")

		hub.Broadcast("game-1", Event{Type: EventPlayerJoined})

		require.Len(t, healthy.messages, 1)
	})
}

func TestHub_Disconnect(t *testing.T) {
	hub := newTestHub()

	first := &stubConn{}
	second := &stubConn{}

	hub.Connect(first, "game-1")
	hub.Connect(second, "game-1")
	require.Equal(t, 2, hub.ObserverCount("game-1"))

	// When: observers leave one by one
	hub.Disconnect(first, "game-1")
	require.Equal(t, 1, hub.ObserverCount("game-1"))

	hub.Disconnect(second, "game-1")

	// Then: the game's entry is gone entirely, not an empty leftover set
	hub.mu.RLock()
	_, stillThere := hub.games["game-1"]
	hub.mu.RUnlock()
	require.False(t, stillThere)

	// Then: disconnecting from an unknown game is harmless
	hub.Disconnect(first, "game-404")
}

func TestEvents_CarryFullSnapshot(t *testing.T) {
	game := &entity.Game{
		ID:        "g1",
		BoardSize: 3,
		Board: [][]string{
			{entity.MarkerX, "", ""},
			{"", "", ""},
			{"", "", ""},
		},
		Players: []*entity.Player{
			{ID: "p1", Name: "alice", Marker: entity.MarkerX},
			{ID: "p2", Name: "bob", Marker: entity.MarkerO},
		},
		CurrentPlayerIndex: 1,
		Status:             entity.StatusInProgress,
	}

	// When: a move event is built
	event := MoveMade(game, "p1", 0, 0)

	// Then: it carries the full state an observer needs to self-heal
	require.Equal(t, EventMoveMade, event.Type)
	require.Equal(t, "p1", event.PlayerID)
	require.Equal(t, 0, *event.Row)
	require.Equal(t, 0, *event.Col)
	require.Equal(t, entity.StatusInProgress, event.GameStatus)
	require.Equal(t, "p2", event.CurrentPlayer)
	require.Equal(t, game.Board, event.Board)
	require.Equal(t, game.Players, event.Players)

	joined := PlayerJoined(game, game.Players[1])
	require.Equal(t, EventPlayerJoined, joined.Type)
	require.Equal(t, "bob", joined.PlayerName)

	started := GameStarted(game)
	require.Equal(t, EventGameStarted, started.Type)
	require.Equal(t, "p2", started.CurrentPlayer)
}
