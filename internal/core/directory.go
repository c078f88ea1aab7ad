package core

import (
	"sort"

	"github.com/vovakirdan/arena-server/internal/spawn"
)

// Directory maps player identities to their latest state.
// It is owned by the hub goroutine and is not safe for concurrent use.
type Directory struct {
	players map[string]*PlayerState
}

// NewDirectory creates an empty directory.
func NewDirectory() *Directory {
	return &Directory{players: make(map[string]*PlayerState)}
}

// Get returns a copy of the player's state.
func (d *Directory) Get(id string) (PlayerState, bool) {
	p, ok := d.players[id]
	if !ok {
		return PlayerState{}, false
	}
	return p.clone(), true
}

// Update merges patch into the player's entry, creating it on first write.
// New entries start active and connected.
func (d *Directory) Update(id string, patch PlayerPatch) PlayerState {
	p, ok := d.players[id]
	if !ok {
		p = &PlayerState{ID: id, Name: id, Direction: DirectionRight, Active: true, Connected: true}
		d.players[id] = p
	}
	patch.apply(p)
	return p.clone()
}

// Deactivate marks the player dead without removing the entry.
// Lives are decremented, never below zero.
func (d *Directory) Deactivate(id string) (PlayerState, bool) {
	p, ok := d.players[id]
	if !ok {
		return PlayerState{}, false
	}
	p.Active = false
	if p.Lives > 0 {
		p.Lives--
	}
	return p.clone(), true
}

// Activate marks the player alive again, e.g. after a respawn.
func (d *Directory) Activate(id string) (PlayerState, bool) {
	p, ok := d.players[id]
	if !ok {
		return PlayerState{}, false
	}
	p.Active = true
	return p.clone(), true
}

// AddKill increments the player's kill count.
func (d *Directory) AddKill(id string) (PlayerState, bool) {
	p, ok := d.players[id]
	if !ok {
		return PlayerState{}, false
	}
	p.Kills++
	return p.clone(), true
}

// Remove deletes the entry. It returns false for unknown ids.
func (d *Directory) Remove(id string) bool {
	if _, ok := d.players[id]; !ok {
		return false
	}
	delete(d.players, id)
	return true
}

// Len returns the number of known players.
func (d *Directory) Len() int {
	return len(d.players)
}

// Snapshot returns copies of the given players in id order, skipping unknown ids.
func (d *Directory) Snapshot(ids []string) []PlayerState {
	out := make([]PlayerState, 0, len(ids))
	for _, id := range ids {
		if p, ok := d.players[id]; ok {
			out = append(out, p.clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Positions returns the positions of the given players that have reported one.
// A nil ids slice selects every player in the directory.
func (d *Directory) Positions(ids []string) []spawn.Point {
	var out []spawn.Point
	if ids == nil {
		for _, p := range d.players {
			if p.Positioned {
				out = append(out, p.Position())
			}
		}
		return out
	}
	for _, id := range ids {
		if p, ok := d.players[id]; ok && p.Positioned {
			out = append(out, p.Position())
		}
	}
	return out
}

func (d *Directory) setRoom(id, roomID string) {
	if p, ok := d.players[id]; ok {
		p.RoomID = roomID
	}
}

func (d *Directory) setConnected(id string, connected bool) {
	if p, ok := d.players[id]; ok {
		p.Connected = connected
	}
}

// resetMatch prepares a player for a new room: alive, no kills, fresh lives.
func (d *Directory) resetMatch(id string, lives int) {
	if p, ok := d.players[id]; ok {
		p.Active = true
		p.Kills = 0
		p.Lives = lives
	}
}
