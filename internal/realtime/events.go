package realtime

import (
	"github.com/tickytakatoe/tickytakatoe-backend/internal/entity"
)

const (
	EventPlayerJoined = "player_joined"
	EventMoveMade     = "move_made"
	EventGameStarted  = "game_started"
)

// Event carries a full, consistent snapshot of the game alongside what
// happened, so a dropped or reordered event self-heals on the next one.
type Event struct {
	Type          string           `json:"type"`
	PlayerID      string           `json:"player_id,omitempty"`
	PlayerName    string           `json:"player_name,omitempty"`
	Row           *int             `json:"row,omitempty"`
	Col           *int             `json:"col,omitempty"`
	GameStatus    string           `json:"game_status"`
	CurrentPlayer string           `json:"current_player,omitempty"`
	Board         [][]string       `json:"board,omitempty"`
	Winner        string           `json:"winner,omitempty"`
	Players       []*entity.Player `json:"players"`
}

func PlayerJoined(game *entity.Game, player *entity.Player) Event {
	return Event{
		Type:       EventPlayerJoined,
		PlayerID:   player.ID,
		PlayerName: player.Name,
		GameStatus: game.Status,
		Players:    game.Players,
	}
}

func MoveMade(game *entity.Game, playerID string, row, col int) Event {
	return Event{
		Type:          EventMoveMade,
		PlayerID:      playerID,
		Row:           &row,
		Col:           &col,
		GameStatus:    game.Status,
		CurrentPlayer: currentPlayerID(game),
		Board:         game.Board,
		Winner:        game.Winner,
		Players:       game.Players,
	}
}

func GameStarted(game *entity.Game) Event {
	return Event{
		Type:          EventGameStarted,
		GameStatus:    game.Status,
		CurrentPlayer: currentPlayerID(game),
		Board:         game.Board,
		Players:       game.Players,
	}
}

func currentPlayerID(game *entity.Game) string {
	current := game.CurrentPlayer()
	if current == nil {
		return ""
	}

	return current.ID
}
