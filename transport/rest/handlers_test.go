package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tickytakatoe/tickytakatoe-backend/internal/apperror"
	"github.com/tickytakatoe/tickytakatoe-backend/internal/entity"
	"github.com/tickytakatoe/tickytakatoe-backend/internal/service"
	"github.com/tickytakatoe/tickytakatoe-backend/internal/store"
)

type mapPersister struct {
	games map[string]*entity.Game
}

func (that *mapPersister) CreateOrUpdate(_ context.Context, game *entity.Game) error {
	that.games[game.ID] = game.Clone()
	return nil
}

func (that *mapPersister) LoadAll(_ context.Context) (map[string]*entity.Game, error) {
	return nil, nil
}

type mapSessionRepo struct {
	records map[string]*entity.GameSession
}

func (that *mapSessionRepo) Upsert(_ context.Context, session *entity.GameSession) error {
	that.records[session.SessionID+"|"+session.GameID] = session
	return nil
}

func (that *mapSessionRepo) GetByKey(_ context.Context, sessionID, gameID string) (*entity.GameSession, error) {
	session, ok := that.records[sessionID+"|"+gameID]
	if !ok {
		return nil, apperror.ErrSessionNotFound
	}

	return session, nil
}

// recordingHub captures every broadcast instead of fanning out.
type recordingHub struct {
	mu     sync.Mutex
	events []any
}

func (that *recordingHub) Broadcast(_ string, message any) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.events = append(that.events, message)
}

func (that *recordingHub) count() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return len(that.events)
}

func newTestServer(t *testing.T) (*httptest.Server, *recordingHub) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	games := service.NewGameService(logger, store.New(&mapPersister{games: make(map[string]*entity.Game)}))
	sessions := service.NewSessionService(logger, &mapSessionRepo{records: make(map[string]*entity.GameSession)}, service.NewTokenService("test-secret"))
	hub := &recordingHub{}

	handlers := NewHandlers(logger, games, sessions, hub)

	server := httptest.NewServer(newMux(handlers, nil))
	t.Cleanup(server.Close)

	return server, hub
}

// newClient returns an http client with its own cookie jar, standing in for
// one browser.
func newClient(t *testing.T) *http.Client {
	t.Helper()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &http.Client{Jar: jar}
}

func postJSON(t *testing.T, client *http.Client, url string, body any) *http.Response {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := client.Post(url, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)

	return resp
}

func decodeInto(t *testing.T, resp *http.Response, target any) {
	t.Helper()

	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(target))
}

func createGame(t *testing.T, client *http.Client, serverURL string, name string, boardSize int) playerResponse {
	t.Helper()

	resp := postJSON(t, client, serverURL+"/api/games", createGameRequest{PlayerName: name, BoardSize: boardSize})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created playerResponse
	decodeInto(t, resp, &created)

	return created
}

func joinGame(t *testing.T, client *http.Client, serverURL, gameID, name string) playerResponse {
	t.Helper()

	resp := postJSON(t, client, serverURL+"/api/games/"+gameID+"/join", joinGameRequest{PlayerName: name})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var joined playerResponse
	decodeInto(t, resp, &joined)

	return joined
}

func TestHandlers_CreateGame(t *testing.T) {
	server, _ := newTestServer(t)

	t.Run("Create with default board size", func(t *testing.T) {
		client := newClient(t)

		// When: a game is created without a board size
		created := createGame(t, client, server.URL, "alice", 0)

		// Then: the creator holds X in a waiting 3x3 game and got a token
		require.NotEmpty(t, created.GameID)
		assert.Equal(t, 3, created.BoardSize)
		assert.Equal(t, entity.StatusWaiting, created.Status)
		assert.Equal(t, entity.MarkerX, created.Player.Marker)
		assert.NotEmpty(t, created.Token)

		// Then: the browser carries both identity cookies
		cookies := cookieNames(t, client, server.URL)
		assert.Contains(t, cookies, sessionCookieName)
		assert.Contains(t, cookies, gameTokenCookiePrefix+created.GameID)
	})

	t.Run("Error on invalid board size", func(t *testing.T) {
		client := newClient(t)

		resp := postJSON(t, client, server.URL+"/api/games", createGameRequest{PlayerName: "alice", BoardSize: 9})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var failure errorResponse
		decodeInto(t, resp, &failure)
		assert.NotEmpty(t, failure.Detail)
	})

	t.Run("Error on missing name", func(t *testing.T) {
		client := newClient(t)

		resp := postJSON(t, client, server.URL+"/api/games", createGameRequest{BoardSize: 3})
		defer resp.Body.Close()

		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestHandlers_JoinGame(t *testing.T) {
	server, hub := newTestServer(t)

	creator := newClient(t)
	created := createGame(t, creator, server.URL, "alice", 3)

	t.Run("Second player joins and observers hear about it", func(t *testing.T) {
		joiner := newClient(t)

		joined := joinGame(t, joiner, server.URL, created.GameID, "bob")

		assert.Equal(t, entity.MarkerO, joined.Player.Marker)
		assert.Len(t, joined.Players, 2)
		assert.Equal(t, 1, hub.count())
	})

	t.Run("Error on full game", func(t *testing.T) {
		third := newClient(t)

		resp := postJSON(t, third, server.URL+"/api/games/"+created.GameID+"/join", joinGameRequest{PlayerName: "carol"})
		defer resp.Body.Close()

		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Error on unknown game", func(t *testing.T) {
		client := newClient(t)

		resp := postJSON(t, client, server.URL+"/api/games/nope/join", joinGameRequest{PlayerName: "dave"})
		defer resp.Body.Close()

		require.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestHandlers_GetGameState(t *testing.T) {
	server, _ := newTestServer(t)

	creator := newClient(t)
	created := createGame(t, creator, server.URL, "alice", 3)

	t.Run("Participant reads the state", func(t *testing.T) {
		resp, err := creator.Get(server.URL + "/api/games/" + created.GameID)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var snapshot gameSnapshot
		decodeInto(t, resp, &snapshot)
		assert.Equal(t, created.GameID, snapshot.GameID)
		assert.Equal(t, entity.StatusWaiting, snapshot.Status)
	})

	t.Run("Stranger is rejected", func(t *testing.T) {
		stranger := newClient(t)

		resp, err := stranger.Get(server.URL + "/api/games/" + created.GameID)
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("Bearer token stands in for cookies", func(t *testing.T) {
		// Given: a fresh browser holding only the participant token
		req, err := http.NewRequest(http.MethodGet, server.URL+"/api/games/"+created.GameID, nil)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+created.Token)

		resp, err := newClient(t).Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("Unknown game is 404 even for strangers", func(t *testing.T) {
		stranger := newClient(t)

		resp, err := stranger.Get(server.URL + "/api/games/nope")
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestHandlers_StartGame(t *testing.T) {
	server, hub := newTestServer(t)

	creator := newClient(t)
	created := createGame(t, creator, server.URL, "alice", 3)

	t.Run("Error before the second player joins", func(t *testing.T) {
		resp := postJSON(t, creator, server.URL+"/api/games/"+created.GameID+"/start", struct{}{})
		defer resp.Body.Close()

		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	joiner := newClient(t)
	joinGame(t, joiner, server.URL, created.GameID, "bob")

	t.Run("Error when the joiner tries to start", func(t *testing.T) {
		resp := postJSON(t, joiner, server.URL+"/api/games/"+created.GameID+"/start", struct{}{})
		defer resp.Body.Close()

		require.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("Owner starts and observers hear about it", func(t *testing.T) {
		before := hub.count()

		resp := postJSON(t, creator, server.URL+"/api/games/"+created.GameID+"/start", struct{}{})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var snapshot gameSnapshot
		decodeInto(t, resp, &snapshot)
		assert.Equal(t, entity.StatusInProgress, snapshot.Status)
		assert.Equal(t, created.Player.ID, snapshot.CurrentPlayer)
		assert.Equal(t, before+1, hub.count())
	})
}

func TestHandlers_MakeMove(t *testing.T) {
	server, hub := newTestServer(t)

	creator := newClient(t)
	created := createGame(t, creator, server.URL, "alice", 3)

	joiner := newClient(t)
	joined := joinGame(t, joiner, server.URL, created.GameID, "bob")

	startResp := postJSON(t, creator, server.URL+"/api/games/"+created.GameID+"/start", struct{}{})
	startResp.Body.Close()
	require.Equal(t, http.StatusOK, startResp.StatusCode)

	moveURL := server.URL + "/api/games/" + created.GameID + "/move"

	t.Run("Error on missing coordinates", func(t *testing.T) {
		resp := postJSON(t, creator, moveURL, map[string]int{"row": 0})
		defer resp.Body.Close()

		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Error when moving out of turn", func(t *testing.T) {
		resp := postJSON(t, joiner, moveURL, map[string]int{"row": 0, "col": 0})
		defer resp.Body.Close()

		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Move lands on the board and observers hear about it", func(t *testing.T) {
		before := hub.count()

		resp := postJSON(t, creator, moveURL, map[string]int{"row": 1, "col": 1})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var snapshot gameSnapshot
		decodeInto(t, resp, &snapshot)
		assert.Equal(t, created.Player.Marker, snapshot.Board[1][1])
		assert.Equal(t, joined.Player.ID, snapshot.CurrentPlayer)
		assert.Equal(t, before+1, hub.count())
	})
}

func cookieNames(t *testing.T, client *http.Client, serverURL string) []string {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, serverURL, nil)
	require.NoError(t, err)

	names := make([]string, 0)
	for _, cookie := range client.Jar.Cookies(req.URL) {
		names = append(names, cookie.Name)
	}

	return names
}
