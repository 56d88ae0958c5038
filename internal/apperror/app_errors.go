package apperror

import "errors"

// Every error here is an expected, caller-facing outcome. Transports map
// them onto status codes; nothing in this list is process-fatal.
var (
	ErrInvalidBoardSize = errors.New("board size must be between 3 and 5")
	ErrNameRequired     = errors.New("player name is required")

	ErrGameNotFound     = errors.New("game not found")
	ErrGameFull         = errors.New("game is full")
	ErrAlreadyStarted   = errors.New("game has already started")
	ErrNotEnoughPlayers = errors.New("waiting for second player")
	ErrNotOwner         = errors.New("only the game creator can start the game")

	ErrGameNotStarted = errors.New("game is not started")
	ErrGameFinished   = errors.New("game is already finished")
	ErrNotYourTurn    = errors.New("it's not your turn")
	ErrCellOccupied   = errors.New("cell is already occupied")
	ErrInvalidCell    = errors.New("invalid cell coordinates")

	ErrUnauthorized    = errors.New("invalid session")
	ErrSessionNotFound = errors.New("session not found")
)
