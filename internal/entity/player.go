package entity

import "time"

// Player is a participant in a game session. PassesTo names the player
// who receives this player's next-authored sentence; it stays empty
// until the session starts and is never reassigned afterwards.
type Player struct {
	Name      string    `json:"name"`
	Ready     bool      `json:"readyState"`
	InSession bool      `json:"inSession"`
	PassesTo  string    `json:"passesTo,omitempty"`
	JoinedAt  time.Time `json:"joinedAt"`
}
