package entity

import (
	"fmt"
	"math/rand"
)

const (
	DefaultName   = "New Player"
	DefaultRadius = 20
)

// Appearance is the small cosmetic record attached to every player.
type Appearance struct {
	Color  string `json:"color"`
	Radius int    `json:"radius"`
}

// Player is the ephemeral per-connection record. It lives exactly as long as
// the connection that owns it.
type Player struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	AccountID  string     `json:"account_id,omitempty"`
	X          float64    `json:"x"`
	Y          float64    `json:"y"`
	Appearance Appearance `json:"appearance"`
	RoomID     string     `json:"room_id,omitempty"`
}

func NewPlayer(id string) *Player {
	return &Player{
		ID:   id,
		Name: DefaultName,
		Appearance: Appearance{
			Color:  randomColor(),
			Radius: DefaultRadius,
		},
	}
}

func randomColor() string {
	return fmt.Sprintf("#%06x", rand.Intn(0x1000000)) //nolint:gosec // cosmetic only
}
