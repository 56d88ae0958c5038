// Package store owns the in-memory registry of active games. While the
// process runs it is the single source of truth; the persister keeps a
// durable copy so games survive restarts.
package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/tickytakatoe/tickytakatoe-backend/internal/entity"
)

type persister interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	LoadAll(ctx context.Context) (map[string]*entity.Game, error)
}

type GameStore struct {
	mu    sync.RWMutex
	games map[string]*entity.Game

	persister persister
}

func New(persister persister) *GameStore {
	return &GameStore{
		games:     make(map[string]*entity.Game),
		persister: persister,
	}
}

// Load - replaces the registry with the persisted mapping. Called once at
// startup, before the store is shared.
func (that *GameStore) Load(ctx context.Context) error {
	games, err := that.persister.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load games: %w", err)
	}

	if games == nil {
		games = make(map[string]*entity.Game)
	}

	that.mu.Lock()
	that.games = games
	that.mu.Unlock()

	return nil
}

// Get - returns a deep copy of the game, so callers can never mutate stored
// state without writing it back through Put.
func (that *GameStore) Get(id string) (*entity.Game, bool) {
	that.mu.RLock()
	game, ok := that.games[id]
	that.mu.RUnlock()

	if !ok {
		return nil, false
	}

	return game.Clone(), true
}

// Put - persists the game and only then publishes it in the registry; a
// failed persist leaves the previous state visible.
func (that *GameStore) Put(ctx context.Context, game *entity.Game) error {
	snapshot := game.Clone()

	if err := that.persister.CreateOrUpdate(ctx, snapshot); err != nil {
		return fmt.Errorf("failed to persist game: %w", err)
	}

	that.mu.Lock()
	that.games[snapshot.ID] = snapshot
	that.mu.Unlock()

	return nil
}
