package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tickytakatoe/tickytakatoe-backend/internal/apperror"
	"github.com/tickytakatoe/tickytakatoe-backend/internal/entity"
	"github.com/tickytakatoe/tickytakatoe-backend/internal/realtime"
)

const (
	sessionCookieName     = "ticky_session"
	sessionCookieTTL      = 24 * time.Hour
	gameTokenCookiePrefix = "game_token_"
	gameTokenCookieTTL    = time.Hour

	defaultBoardSize = 3
)

type gameService interface {
	CreateGame(ctx context.Context, playerName string, boardSize int) (*entity.Game, *entity.Player, error)
	JoinGame(ctx context.Context, gameID, playerName string) (*entity.Game, *entity.Player, error)
	StartGame(ctx context.Context, gameID, playerID string) (*entity.Game, error)
	MakeMove(ctx context.Context, gameID, playerID string, row, col int) (*entity.Game, error)
	GetGame(ctx context.Context, gameID string) (*entity.Game, error)
}

type sessionService interface {
	BindPlayer(ctx context.Context, sessionID, gameID, playerID string) (string, error)
	ResolvePlayer(ctx context.Context, sessionID, gameID, tokenString string) (string, error)
}

type broadcaster interface {
	Broadcast(gameID string, message any)
}

// Handlers orchestrate only: resolve identity, call the game service,
// trigger the fan-out, return a snapshot. Rules live in the engine.
type Handlers struct {
	logger *slog.Logger

	games    gameService
	sessions sessionService
	hub      broadcaster
}

func NewHandlers(logger *slog.Logger, games gameService, sessions sessionService, hub broadcaster) *Handlers {
	return &Handlers{
		logger:   logger,
		games:    games,
		sessions: sessions,
		hub:      hub,
	}
}

func (that *Handlers) Ping(writer http.ResponseWriter, _ *http.Request) {
	writer.WriteHeader(http.StatusOK)

	if _, err := writer.Write([]byte("pong")); err != nil {
		that.logger.Error("failed to write pong", "error", err)
	}
}

func (that *Handlers) CreateGame(writer http.ResponseWriter, req *http.Request) {
	var body createGameRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		http.Error(writer, "invalid request body", http.StatusBadRequest)
		return
	}

	if body.BoardSize == 0 {
		body.BoardSize = defaultBoardSize
	}

	sessionID := that.ensureSession(writer, req)

	game, player, err := that.games.CreateGame(req.Context(), body.PlayerName, body.BoardSize)
	if err != nil {
		that.writeError(writer, err)
		return
	}

	token, err := that.sessions.BindPlayer(req.Context(), sessionID, game.ID, player.ID)
	if err != nil {
		that.writeError(writer, err)
		return
	}

	setGameTokenCookie(writer, game.ID, token)

	that.writeJSON(writer, http.StatusCreated, newPlayerResponse(game, player, token))
}

func (that *Handlers) JoinGame(writer http.ResponseWriter, req *http.Request) {
	gameID := req.PathValue("id")

	var body joinGameRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		http.Error(writer, "invalid request body", http.StatusBadRequest)
		return
	}

	sessionID := that.ensureSession(writer, req)

	game, player, err := that.games.JoinGame(req.Context(), gameID, body.PlayerName)
	if err != nil {
		that.writeError(writer, err)
		return
	}

	token, err := that.sessions.BindPlayer(req.Context(), sessionID, game.ID, player.ID)
	if err != nil {
		that.writeError(writer, err)
		return
	}

	setGameTokenCookie(writer, game.ID, token)

	that.hub.Broadcast(game.ID, realtime.PlayerJoined(game, player))

	that.writeJSON(writer, http.StatusOK, newPlayerResponse(game, player, token))
}

func (that *Handlers) GetGameState(writer http.ResponseWriter, req *http.Request) {
	gameID := req.PathValue("id")

	game, err := that.games.GetGame(req.Context(), gameID)
	if err != nil {
		that.writeError(writer, err)
		return
	}

	playerID, err := that.resolvePlayer(writer, req, gameID)
	if err != nil {
		that.writeError(writer, err)
		return
	}

	if !game.HasPlayer(playerID) {
		that.writeError(writer, apperror.ErrUnauthorized)
		return
	}

	that.writeJSON(writer, http.StatusOK, newGameSnapshot(game))
}

func (that *Handlers) MakeMove(writer http.ResponseWriter, req *http.Request) {
	gameID := req.PathValue("id")

	if _, err := that.games.GetGame(req.Context(), gameID); err != nil {
		that.writeError(writer, err)
		return
	}

	playerID, err := that.resolvePlayer(writer, req, gameID)
	if err != nil {
		that.writeError(writer, err)
		return
	}

	var body moveRequest
	if err = json.NewDecoder(req.Body).Decode(&body); err != nil || body.Row == nil || body.Col == nil {
		http.Error(writer, "invalid request body", http.StatusBadRequest)
		return
	}

	game, err := that.games.MakeMove(req.Context(), gameID, playerID, *body.Row, *body.Col)
	if err != nil {
		that.writeError(writer, err)
		return
	}

	that.hub.Broadcast(game.ID, realtime.MoveMade(game, playerID, *body.Row, *body.Col))

	that.writeJSON(writer, http.StatusOK, newGameSnapshot(game))
}

func (that *Handlers) StartGame(writer http.ResponseWriter, req *http.Request) {
	gameID := req.PathValue("id")

	if _, err := that.games.GetGame(req.Context(), gameID); err != nil {
		that.writeError(writer, err)
		return
	}

	playerID, err := that.resolvePlayer(writer, req, gameID)
	if err != nil {
		that.writeError(writer, err)
		return
	}

	game, err := that.games.StartGame(req.Context(), gameID, playerID)
	if err != nil {
		that.writeError(writer, err)
		return
	}

	that.hub.Broadcast(game.ID, realtime.GameStarted(game))

	that.writeJSON(writer, http.StatusOK, newGameSnapshot(game))
}

// ensureSession - returns the browser session ID, minting the cookie on
// first contact.
func (that *Handlers) ensureSession(writer http.ResponseWriter, req *http.Request) string {
	cookie, err := req.Cookie(sessionCookieName)
	if err == nil && cookie.Value != "" {
		return cookie.Value
	}

	sessionID := uuid.NewString()

	http.SetCookie(writer, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sessionID,
		Path:     "/",
		Expires:  time.Now().Add(sessionCookieTTL),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return sessionID
}

func (that *Handlers) resolvePlayer(writer http.ResponseWriter, req *http.Request, gameID string) (string, error) {
	sessionID := that.ensureSession(writer, req)
	token := gameTokenFromRequest(req, gameID)

	return that.sessions.ResolvePlayer(req.Context(), sessionID, gameID, token)
}

// gameTokenFromRequest - reads the participant token from the per-game
// cookie, falling back to an Authorization bearer header.
func gameTokenFromRequest(req *http.Request, gameID string) string {
	if cookie, err := req.Cookie(gameTokenCookiePrefix + gameID); err == nil {
		return cookie.Value
	}

	authorization := req.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(authorization, "Bearer "); ok {
		return token
	}

	return ""
}

func setGameTokenCookie(writer http.ResponseWriter, gameID, token string) {
	http.SetCookie(writer, &http.Cookie{
		Name:     gameTokenCookiePrefix + gameID,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(gameTokenCookieTTL),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (that *Handlers) writeJSON(writer http.ResponseWriter, status int, payload any) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)

	if err := json.NewEncoder(writer).Encode(payload); err != nil {
		that.logger.Error("failed to encode response", "error", err)
	}
}

func (that *Handlers) writeError(writer http.ResponseWriter, err error) {
	status := statusForError(err)

	if status == http.StatusInternalServerError {
		that.logger.Error("request failed", "error", err)
	}

	that.writeJSON(writer, status, errorResponse{Detail: errorDetail(err)})
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, apperror.ErrGameNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperror.ErrUnauthorized),
		errors.Is(err, apperror.ErrNotOwner):
		return http.StatusForbidden
	case errors.Is(err, apperror.ErrInvalidBoardSize),
		errors.Is(err, apperror.ErrNameRequired),
		errors.Is(err, apperror.ErrGameFull),
		errors.Is(err, apperror.ErrAlreadyStarted),
		errors.Is(err, apperror.ErrNotEnoughPlayers),
		errors.Is(err, apperror.ErrGameNotStarted),
		errors.Is(err, apperror.ErrGameFinished),
		errors.Is(err, apperror.ErrNotYourTurn),
		errors.Is(err, apperror.ErrCellOccupied),
		errors.Is(err, apperror.ErrInvalidCell):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// errorDetail strips the wrapping context so clients see the stable,
// caller-facing message rather than internal call chains.
func errorDetail(err error) string {
	for _, appErr := range []error{
		apperror.ErrGameNotFound, apperror.ErrUnauthorized, apperror.ErrNotOwner,
		apperror.ErrInvalidBoardSize, apperror.ErrNameRequired, apperror.ErrGameFull,
		apperror.ErrAlreadyStarted, apperror.ErrNotEnoughPlayers, apperror.ErrGameNotStarted,
		apperror.ErrGameFinished, apperror.ErrNotYourTurn, apperror.ErrCellOccupied,
		apperror.ErrInvalidCell,
	} {
		if errors.Is(err, appErr) {
			return appErr.Error()
		}
	}

	return "internal server error"
}
