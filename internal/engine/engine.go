// Package engine holds the pure game rules: no I/O, no locking, no
// persistence. Every function either mutates the given game in place after
// all preconditions pass, or returns a rejection and leaves it untouched.
package engine

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/tickytakatoe/tickytakatoe-backend/internal/apperror"
	"github.com/tickytakatoe/tickytakatoe-backend/internal/entity"
)

// NewGame - creates a fresh waiting game with an all-empty boardSize×boardSize board.
func NewGame(boardSize int) (*entity.Game, error) {
	if boardSize < entity.MinBoardSize || boardSize > entity.MaxBoardSize {
		return nil, fmt.Errorf("%w: got %d", apperror.ErrInvalidBoardSize, boardSize)
	}

	board := make([][]string, boardSize)
	for i := range board {
		board[i] = make([]string, boardSize)
	}

	return &entity.Game{
		ID:        uuid.NewString(),
		BoardSize: boardSize,
		Board:     board,
		Players:   []*entity.Player{},
		Status:    entity.StatusWaiting,
	}, nil
}

// AddPlayer - appends a player to the game. Join order is turn order: the
// first player gets X and owns the game, the second gets O.
func AddPlayer(game *entity.Game, name string) (*entity.Player, error) {
	if name == "" {
		return nil, apperror.ErrNameRequired
	}

	if len(game.Players) >= entity.MaxPlayers {
		return nil, apperror.ErrGameFull
	}

	if !game.IsWaiting() {
		return nil, apperror.ErrAlreadyStarted
	}

	marker := entity.MarkerX
	if len(game.Players) == 1 {
		marker = entity.MarkerO
	}

	player := &entity.Player{
		ID:     uuid.NewString(),
		Name:   name,
		Marker: marker,
	}

	game.Players = append(game.Players, player)

	return player, nil
}

// Start - transitions the game to in_progress. Only the owner may start it,
// and only once both players have joined. The first joiner moves first.
func Start(game *entity.Game, playerID string) error {
	if len(game.Players) < entity.MaxPlayers {
		return apperror.ErrNotEnoughPlayers
	}

	if !game.IsWaiting() {
		return apperror.ErrAlreadyStarted
	}

	if owner := game.Owner(); owner == nil || owner.ID != playerID {
		return apperror.ErrNotOwner
	}

	game.Status = entity.StatusInProgress

	return nil
}

// ApplyMove - places the mover's marker at (row, col) and settles the game
// state: win, draw, or turn passes to the next player.
func ApplyMove(game *entity.Game, playerID string, row, col int) error {
	switch {
	case game.IsWaiting():
		return apperror.ErrGameNotStarted
	case game.IsFinished():
		return apperror.ErrGameFinished
	}

	current := game.CurrentPlayer()
	if current == nil || current.ID != playerID {
		return apperror.ErrNotYourTurn
	}

	if row < 0 || row >= game.BoardSize || col < 0 || col >= game.BoardSize {
		return fmt.Errorf("%w: (%d, %d)", apperror.ErrInvalidCell, row, col)
	}

	if game.Board[row][col] != entity.EmptyCell {
		return apperror.ErrCellOccupied
	}

	game.Board[row][col] = current.Marker

	switch {
	case isWinningMove(game, row, col, current.Marker):
		game.Status = entity.StatusFinished
		game.Winner = current.ID
	case isBoardFull(game):
		// Draw: Winner stays empty, Status is the discriminant.
		game.Status = entity.StatusFinished
	default:
		game.CurrentPlayerIndex = (game.CurrentPlayerIndex + 1) % len(game.Players)
	}

	return nil
}

// isWinningMove checks only the four lines that pass through the last move:
// its row, its column, and the diagonals when the move lies on them. Keeps
// win detection O(boardSize) per move instead of rescanning the board.
func isWinningMove(game *entity.Game, row, col int, marker string) bool {
	size := game.BoardSize

	wonRow := true
	for c := 0; c < size; c++ {
		if game.Board[row][c] != marker {
			wonRow = false
			break
		}
	}
	if wonRow {
		return true
	}

	wonCol := true
	for r := 0; r < size; r++ {
		if game.Board[r][col] != marker {
			wonCol = false
			break
		}
	}
	if wonCol {
		return true
	}

	if row == col {
		wonDiag := true
		for i := 0; i < size; i++ {
			if game.Board[i][i] != marker {
				wonDiag = false
				break
			}
		}
		if wonDiag {
			return true
		}
	}

	if row+col == size-1 {
		wonAnti := true
		for i := 0; i < size; i++ {
			if game.Board[i][size-1-i] != marker {
				wonAnti = false
				break
			}
		}
		if wonAnti {
			return true
		}
	}

	return false
}

func isBoardFull(game *entity.Game) bool {
	for _, row := range game.Board {
		for _, cell := range row {
			if cell == entity.EmptyCell {
				return false
			}
		}
	}

	return true
}
