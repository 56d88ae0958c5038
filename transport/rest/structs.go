package rest

import (
	"github.com/tickytakatoe/tickytakatoe-backend/internal/entity"
)

type createGameRequest struct {
	PlayerName string `json:"player_name"`
	BoardSize  int    `json:"board_size"`
}

type joinGameRequest struct {
	PlayerName string `json:"player_name"`
}

// moveRequest uses pointers so a missing coordinate is distinguishable from
// a move at 0.
type moveRequest struct {
	Row *int `json:"row"`
	Col *int `json:"col"`
}

type gameSnapshot struct {
	GameID        string           `json:"game_id"`
	BoardSize     int              `json:"board_size"`
	Board         [][]string       `json:"board"`
	Status        string           `json:"status"`
	CurrentPlayer string           `json:"current_player,omitempty"`
	Winner        string           `json:"winner,omitempty"`
	Players       []*entity.Player `json:"players"`
}

type playerResponse struct {
	gameSnapshot

	Player *entity.Player `json:"player"`
	Token  string         `json:"token"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func newGameSnapshot(game *entity.Game) gameSnapshot {
	snapshot := gameSnapshot{
		GameID:    game.ID,
		BoardSize: game.BoardSize,
		Board:     game.Board,
		Status:    game.Status,
		Winner:    game.Winner,
		Players:   game.Players,
	}

	if current := game.CurrentPlayer(); current != nil {
		snapshot.CurrentPlayer = current.ID
	}

	return snapshot
}

func newPlayerResponse(game *entity.Game, player *entity.Player, token string) playerResponse {
	return playerResponse{
		gameSnapshot: newGameSnapshot(game),
		Player:       player,
		Token:        token,
	}
}
