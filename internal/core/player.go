package core

import (
	"maps"

	"github.com/vovakirdan/arena-server/internal/spawn"
)

// Direction is the way a player is facing.
type Direction string

const (
	DirectionLeft  Direction = "left"
	DirectionRight Direction = "right"
)

// ParseDirection validates a wire direction. An empty string means "unchanged".
func ParseDirection(s string) (Direction, bool) {
	switch Direction(s) {
	case "", DirectionLeft, DirectionRight:
		return Direction(s), true
	default:
		return "", false
	}
}

// PlayerState is the latest known state of a player.
type PlayerState struct {
	ID   string
	Name string

	X          float64
	Y          float64
	Positioned bool // false until the player reports a position
	Direction  Direction
	ActiveKeys map[string]bool

	Lives  int
	Kills  int
	Active bool // false while dead

	// RoomID is written only by the room manager.
	RoomID string
	// Connected is false while the player is inside its reconnection window.
	Connected bool
}

// Position returns the player's world coordinate.
func (p PlayerState) Position() spawn.Point {
	return spawn.Point{X: p.X, Y: p.Y}
}

func (p *PlayerState) clone() PlayerState {
	out := *p
	out.ActiveKeys = maps.Clone(p.ActiveKeys)
	return out
}

// PlayerPatch is a partial update of a PlayerState. Nil fields are left untouched.
type PlayerPatch struct {
	Name       *string
	X          *float64
	Y          *float64
	Direction  Direction
	ActiveKeys map[string]bool
	Lives      *int
}

func (p PlayerPatch) apply(st *PlayerState) {
	if p.Name != nil && *p.Name != "" {
		st.Name = *p.Name
	}
	if p.X != nil && p.Y != nil {
		st.X, st.Y = *p.X, *p.Y
		st.Positioned = true
	}
	if p.Direction != "" {
		st.Direction = p.Direction
	}
	if p.ActiveKeys != nil {
		st.ActiveKeys = maps.Clone(p.ActiveKeys)
	}
	if p.Lives != nil && *p.Lives >= 0 {
		st.Lives = *p.Lives
	}
}
