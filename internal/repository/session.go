package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tickytakatoe/tickytakatoe-backend/internal/apperror"
	"github.com/tickytakatoe/tickytakatoe-backend/internal/entity"
)

type SessionRepository interface {
	Upsert(ctx context.Context, session *entity.GameSession) error
	GetByKey(ctx context.Context, sessionID, gameID string) (*entity.GameSession, error)
}

type dbSession struct {
	conn *sql.DB
}

func NewSessionRepository(conn *sql.DB) SessionRepository {
	return &dbSession{
		conn: conn,
	}
}

func (that *dbSession) Upsert(ctx context.Context, session *entity.GameSession) error {
	query := `INSERT INTO game_sessions (session_id, game_id, player_id)
		VALUES (?, ?, ?)
		ON CONFLICT(session_id, game_id) DO UPDATE SET player_id = excluded.player_id`

	_, err := that.conn.ExecContext(ctx, query, session.SessionID, session.GameID, session.PlayerID)
	if err != nil {
		return fmt.Errorf("failed to upsert session: %w", err)
	}

	return nil
}

func (that *dbSession) GetByKey(ctx context.Context, sessionID, gameID string) (*entity.GameSession, error) {
	query := `SELECT player_id FROM game_sessions WHERE session_id = ? AND game_id = ?`

	session := entity.GameSession{
		SessionID: sessionID,
		GameID:    gameID,
	}

	err := that.conn.QueryRowContext(ctx, query, sessionID, gameID).Scan(&session.PlayerID)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.ErrSessionNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return &session, nil
}
