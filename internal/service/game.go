package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/tickytakatoe/tickytakatoe-backend/internal/apperror"
	"github.com/tickytakatoe/tickytakatoe-backend/internal/engine"
	"github.com/tickytakatoe/tickytakatoe-backend/internal/entity"
)

type gameStore interface {
	Get(id string) (*entity.Game, bool)
	Put(ctx context.Context, game *entity.Game) error
}

type GameService interface {
	CreateGame(ctx context.Context, playerName string, boardSize int) (*entity.Game, *entity.Player, error)
	JoinGame(ctx context.Context, gameID, playerName string) (*entity.Game, *entity.Player, error)
	StartGame(ctx context.Context, gameID, playerID string) (*entity.Game, error)
	MakeMove(ctx context.Context, gameID, playerID string, row, col int) (*entity.Game, error)
	GetGame(ctx context.Context, gameID string) (*entity.Game, error)
}

// gameService serializes every mutation of one game behind a per-game
// mutex, so the fetch→validate→mutate→persist sequence is atomic with
// respect to other mutations of the same game. Different games never
// contend.
type gameService struct {
	logger *slog.Logger
	store  gameStore

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewGameService(logger *slog.Logger, store gameStore) GameService {
	return &gameService{
		logger: logger,
		store:  store,
		locks:  make(map[string]*sync.Mutex),
	}
}

func (that *gameService) gameLock(gameID string) *sync.Mutex {
	that.mu.Lock()
	defer that.mu.Unlock()

	lock, ok := that.locks[gameID]
	if !ok {
		lock = &sync.Mutex{}
		that.locks[gameID] = lock
	}

	return lock
}

func (that *gameService) CreateGame(ctx context.Context, playerName string, boardSize int) (*entity.Game, *entity.Player, error) {
	game, err := engine.NewGame(boardSize)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create game: %w", err)
	}

	player, err := engine.AddPlayer(game, playerName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to add player: %w", err)
	}

	if err = that.store.Put(ctx, game); err != nil {
		return nil, nil, fmt.Errorf("failed to store game: %w", err)
	}

	that.logger.Info("game created", "gameID", game.ID, "boardSize", boardSize)

	return game, player, nil
}

func (that *gameService) JoinGame(ctx context.Context, gameID, playerName string) (*entity.Game, *entity.Player, error) {
	lock := that.gameLock(gameID)
	lock.Lock()
	defer lock.Unlock()

	game, ok := that.store.Get(gameID)
	if !ok {
		return nil, nil, apperror.ErrGameNotFound
	}

	player, err := engine.AddPlayer(game, playerName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to add player: %w", err)
	}

	if err = that.store.Put(ctx, game); err != nil {
		return nil, nil, fmt.Errorf("failed to store game: %w", err)
	}

	that.logger.Info("player joined", "gameID", game.ID, "playerID", player.ID)

	return game, player, nil
}

func (that *gameService) StartGame(ctx context.Context, gameID, playerID string) (*entity.Game, error) {
	lock := that.gameLock(gameID)
	lock.Lock()
	defer lock.Unlock()

	game, ok := that.store.Get(gameID)
	if !ok {
		return nil, apperror.ErrGameNotFound
	}

	if err := engine.Start(game, playerID); err != nil {
		return nil, fmt.Errorf("failed to start game: %w", err)
	}

	if err := that.store.Put(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to store game: %w", err)
	}

	that.logger.Info("game started", "gameID", game.ID)

	return game, nil
}

func (that *gameService) MakeMove(ctx context.Context, gameID, playerID string, row, col int) (*entity.Game, error) {
	lock := that.gameLock(gameID)
	lock.Lock()
	defer lock.Unlock()

	game, ok := that.store.Get(gameID)
	if !ok {
		return nil, apperror.ErrGameNotFound
	}

	if err := engine.ApplyMove(game, playerID, row, col); err != nil {
		return nil, fmt.Errorf("failed to make turn: %w", err)
	}

	if err := that.store.Put(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to store game: %w", err)
	}

	return game, nil
}

func (that *gameService) GetGame(_ context.Context, gameID string) (*entity.Game, error) {
	game, ok := that.store.Get(gameID)
	if !ok {
		return nil, apperror.ErrGameNotFound
	}

	return game, nil
}
