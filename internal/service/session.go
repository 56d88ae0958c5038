package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tickytakatoe/tickytakatoe-backend/internal/apperror"
	"github.com/tickytakatoe/tickytakatoe-backend/internal/entity"
)

type sessionRepo interface {
	Upsert(ctx context.Context, session *entity.GameSession) error
	GetByKey(ctx context.Context, sessionID, gameID string) (*entity.GameSession, error)
}

// SessionService resolves a participant's identity for a game from two
// carriers: the durable session record and the signed participant token.
// The session record wins when both exist; a valid token without a record
// recovers the identity and restores the record.
type SessionService interface {
	BindPlayer(ctx context.Context, sessionID, gameID, playerID string) (string, error)
	ResolvePlayer(ctx context.Context, sessionID, gameID, tokenString string) (string, error)
}

type sessionService struct {
	logger *slog.Logger

	sessions sessionRepo
	tokens   TokenService
}

func NewSessionService(logger *slog.Logger, sessions sessionRepo, tokens TokenService) SessionService {
	return &sessionService{
		logger:   logger,
		sessions: sessions,
		tokens:   tokens,
	}
}

// BindPlayer - records that this session acts as playerID in the game, and
// issues the participant token for the second carrier.
func (that *sessionService) BindPlayer(ctx context.Context, sessionID, gameID, playerID string) (string, error) {
	session := &entity.GameSession{
		SessionID: sessionID,
		GameID:    gameID,
		PlayerID:  playerID,
	}

	if err := that.sessions.Upsert(ctx, session); err != nil {
		return "", fmt.Errorf("failed to upsert session: %w", err)
	}

	token, err := that.tokens.Generate(gameID, playerID)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	return token, nil
}

func (that *sessionService) ResolvePlayer(ctx context.Context, sessionID, gameID, tokenString string) (string, error) {
	log := that.logger.With("method", "ResolvePlayer", "gameID", gameID)

	if sessionID != "" {
		session, err := that.sessions.GetByKey(ctx, sessionID, gameID)
		if err == nil {
			return session.PlayerID, nil
		}

		if !errors.Is(err, apperror.ErrSessionNotFound) {
			return "", fmt.Errorf("failed to get session: %w", err)
		}
	}

	if tokenString == "" {
		return "", apperror.ErrUnauthorized
	}

	claims, err := that.tokens.Parse(tokenString)
	if err != nil {
		return "", apperror.ErrUnauthorized
	}

	if claims.GameID != gameID {
		return "", apperror.ErrUnauthorized
	}

	// The token carrier survived but the session record did not: copy the
	// identity back so the next request resolves from the record again.
	if sessionID != "" {
		restored := &entity.GameSession{
			SessionID: sessionID,
			GameID:    gameID,
			PlayerID:  claims.PlayerID,
		}

		if err := that.sessions.Upsert(ctx, restored); err != nil {
			log.Error("failed to restore session record", "error", err)
		}
	}

	return claims.PlayerID, nil
}
