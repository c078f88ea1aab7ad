package core

import "sort"

// JoinOutcome describes what CreateOrJoin did.
type JoinOutcome struct {
	Result  JoinResult
	Room    *Room
	Created bool // the room did not exist before this join
	Already bool // the player was already a member
	// Left is the departure from the player's previous room, if any.
	Left LeaveOutcome
}

// LeaveOutcome describes what Leave did.
type LeaveOutcome struct {
	Room    *Room
	Removed bool
	Deleted bool // the room became empty and was dropped
	Started bool // the departure satisfied the readiness barrier
	// WasStarted is true when the player left a room whose match was running.
	WasStarted bool
}

// RoomManager maps room ids to rooms and keeps every player in at most one room.
// It is owned by the hub goroutine; each method is one atomic step.
type RoomManager struct {
	capacity   int
	rooms      map[string]*Room
	players    map[string]string // player id -> room id
	dir        *Directory
	generation uint64
}

// NewRoomManager creates a manager whose rooms hold at most capacity members.
// Room membership is mirrored into dir.
func NewRoomManager(capacity int, dir *Directory) *RoomManager {
	if capacity <= 0 {
		capacity = DefaultRoomCapacity
	}
	if dir == nil {
		dir = NewDirectory()
	}
	return &RoomManager{
		capacity: capacity,
		rooms:    make(map[string]*Room),
		players:  make(map[string]string),
		dir:      dir,
	}
}

// CreateOrJoin admits playerID into roomID, creating the room on first join.
// Capacity and started checks happen before any mutation; a rejected player keeps
// its current room. An accepted player leaves its previous room first.
func (m *RoomManager) CreateOrJoin(roomID, playerID string) JoinOutcome {
	if cur, ok := m.players[playerID]; ok && cur == roomID {
		return JoinOutcome{Result: JoinAccepted, Room: m.rooms[roomID], Already: true}
	}

	room, exists := m.rooms[roomID]
	if exists {
		if res := room.CanAdmit(playerID); res != JoinAccepted {
			return JoinOutcome{Result: res, Room: room}
		}
	}

	var out JoinOutcome
	if cur, ok := m.players[playerID]; ok {
		out.Left = m.Leave(cur, playerID)
	}

	if !exists {
		room = NewRoom(roomID, m.capacity)
		m.generation++
		room.generation = m.generation
		m.rooms[roomID] = room
		out.Created = true
	}

	out.Result = room.Admit(playerID)
	out.Room = room
	m.players[playerID] = roomID
	m.dir.setRoom(playerID, roomID)
	return out
}

// Leave removes playerID from roomID. Unknown rooms or non-members are a no-op.
// Empty rooms are deleted; otherwise the readiness barrier is re-evaluated.
func (m *RoomManager) Leave(roomID, playerID string) LeaveOutcome {
	room, ok := m.rooms[roomID]
	if !ok {
		return LeaveOutcome{}
	}
	wasStarted := room.Started()
	if !room.Remove(playerID) {
		return LeaveOutcome{}
	}
	delete(m.players, playerID)
	m.dir.setRoom(playerID, "")

	out := LeaveOutcome{Room: room, Removed: true, WasStarted: wasStarted}
	if room.Empty() {
		room.stopTimer()
		delete(m.rooms, roomID)
		out.Deleted = true
		return out
	}
	out.Started = room.TryStart()
	return out
}

// Get returns the room or nil.
func (m *RoomManager) Get(roomID string) *Room {
	return m.rooms[roomID]
}

// RoomOf returns the id of the room the player is in.
func (m *RoomManager) RoomOf(playerID string) (string, bool) {
	id, ok := m.players[playerID]
	return id, ok
}

// Len returns the number of live rooms.
func (m *RoomManager) Len() int {
	return len(m.rooms)
}

// List returns rooms sorted by id.
func (m *RoomManager) List() []*Room {
	out := make([]*Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
