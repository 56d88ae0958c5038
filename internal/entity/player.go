package entity

// Player is immutable after creation: the ID is generated at join time and
// the marker is assigned by join order.
type Player struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Marker string `json:"marker"`
}
