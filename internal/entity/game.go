package entity

const (
	StatusWaiting    = "waiting"
	StatusInProgress = "in_progress"
	StatusFinished   = "finished"

	MarkerX = "X"
	MarkerO = "O"

	EmptyCell = ""

	MinBoardSize = 3
	MaxBoardSize = 5

	MaxPlayers = 2
)

// Game is the full persisted record of one session. Winner holds the
// winning player's ID; it stays empty for a draw, so Status is the only
// reliable discriminant between "ongoing" and "finished without a winner".
type Game struct {
	ID                 string     `json:"id"`
	BoardSize          int        `json:"board_size"`
	Board              [][]string `json:"board"`
	Players            []*Player  `json:"players"`
	CurrentPlayerIndex int        `json:"current_player_index"`
	Status             string     `json:"status"`
	Winner             string     `json:"winner,omitempty"`
}

func (that *Game) IsWaiting() bool {
	return that.Status == StatusWaiting
}

func (that *Game) IsInProgress() bool {
	return that.Status == StatusInProgress
}

func (that *Game) IsFinished() bool {
	return that.Status == StatusFinished
}

// Owner - the first player to join; the only one allowed to start the game.
func (that *Game) Owner() *Player {
	if len(that.Players) == 0 {
		return nil
	}

	return that.Players[0]
}

// CurrentPlayer - the player whose turn it is, or nil before anyone joined.
func (that *Game) CurrentPlayer() *Player {
	if len(that.Players) == 0 {
		return nil
	}

	return that.Players[that.CurrentPlayerIndex]
}

func (that *Game) HasPlayer(id string) bool {
	for _, player := range that.Players {
		if player.ID == id {
			return true
		}
	}

	return false
}

// Clone returns a deep copy so callers can never alias state held by the
// store.
func (that *Game) Clone() *Game {
	cloned := *that

	cloned.Board = make([][]string, len(that.Board))
	for i, row := range that.Board {
		cloned.Board[i] = make([]string, len(row))
		copy(cloned.Board[i], row)
	}

	cloned.Players = make([]*Player, len(that.Players))
	for i, player := range that.Players {
		copied := *player
		cloned.Players[i] = &copied
	}

	return &cloned
}
