package entity

// GameSession binds a browser session to the player it acts as within one
// game. Records are keyed by the (SessionID, GameID) pair.
type GameSession struct {
	SessionID string
	GameID    string
	PlayerID  string
}
