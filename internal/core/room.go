package core

import (
	"sort"
	"time"
)

// DefaultRoomCapacity is the maximum number of members of a room.
const DefaultRoomCapacity = 10

// JoinResult is the outcome of an admission attempt.
type JoinResult int

const (
	// JoinAccepted means the player is a member of the room.
	JoinAccepted JoinResult = iota
	// JoinRejectedCapacity means the room is full.
	JoinRejectedCapacity
	// JoinRejectedStarted means the room already started its match.
	JoinRejectedStarted
)

func (r JoinResult) String() string {
	switch r {
	case JoinAccepted:
		return "joined"
	case JoinRejectedCapacity:
		return "rejected-capacity"
	case JoinRejectedStarted:
		return "rejected-already-started"
	default:
		return "unknown"
	}
}

// Room groups the players sharing one play session.
type Room struct {
	ID        string
	CreatedAt time.Time

	capacity int
	members  map[string]struct{}
	ready    map[string]struct{}
	started  bool

	// generation distinguishes this room from an earlier room with the same id.
	generation uint64
	readyTimer *time.Timer
}

// NewRoom constructs an empty room in the waiting state.
func NewRoom(id string, capacity int) *Room {
	if capacity <= 0 {
		capacity = DefaultRoomCapacity
	}
	return &Room{
		ID:        id,
		CreatedAt: time.Now(),
		capacity:  capacity,
		members:   make(map[string]struct{}),
		ready:     make(map[string]struct{}),
	}
}

// CanAdmit reports whether playerID could join without mutating the room.
// Current members are always admitted.
func (r *Room) CanAdmit(playerID string) JoinResult {
	if _, ok := r.members[playerID]; ok {
		return JoinAccepted
	}
	if r.started {
		return JoinRejectedStarted
	}
	if len(r.members) >= r.capacity {
		return JoinRejectedCapacity
	}
	return JoinAccepted
}

// Admit checks capacity and started state and inserts the member in one step.
func (r *Room) Admit(playerID string) JoinResult {
	res := r.CanAdmit(playerID)
	if res == JoinAccepted {
		r.members[playerID] = struct{}{}
	}
	return res
}

// Remove deletes a member and its ready signal. Returns true if removed.
func (r *Room) Remove(playerID string) bool {
	if _, ok := r.members[playerID]; !ok {
		return false
	}
	delete(r.members, playerID)
	delete(r.ready, playerID)
	return true
}

// Has reports membership.
func (r *Room) Has(playerID string) bool {
	_, ok := r.members[playerID]
	return ok
}

// Members returns member ids in sorted order.
func (r *Room) Members() []string {
	ids := make([]string, 0, len(r.members))
	for id := range r.members {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the member count.
func (r *Room) Len() int { return len(r.members) }

// Empty returns true if no players are in the room.
func (r *Room) Empty() bool { return len(r.members) == 0 }

// Capacity returns the member limit.
func (r *Room) Capacity() int { return r.capacity }

// Started reports whether the match has started. Once true it never reverts.
func (r *Room) Started() bool { return r.started }

// ReadyCount returns how many current members signalled ready.
func (r *Room) ReadyCount() int { return len(r.ready) }

func (r *Room) stopTimer() {
	if r.readyTimer != nil {
		r.readyTimer.Stop()
		r.readyTimer = nil
	}
}
