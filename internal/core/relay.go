package core

import (
	"context"
	"time"
)

// deliver queues ev for c without blocking. A full queue drops the event.
func (h *Hub) deliver(c *Client, ev *Event) bool {
	select {
	case c.Events <- ev:
		return true
	default:
		h.metrics.dropped.Add(1)
		h.log.Warn().Str("client_id", c.ID).Str("player_id", c.playerID).Int("kind", int(ev.Kind)).Msg("event dropped: slow client")
		return false
	}
}

func (h *Hub) sendTo(pid string, ev *Event) bool {
	c, ok := h.sessions[pid]
	if !ok {
		return false
	}
	return h.deliver(c, ev)
}

// relay sends ev to every member of room except senderID.
func (h *Hub) relay(room *Room, senderID string, ev *Event) {
	for id := range room.members {
		if id == senderID {
			continue
		}
		if h.sendTo(id, ev) {
			h.metrics.relayed.Add(1)
		}
	}
}

// broadcast sends ev to every member of room.
func (h *Hub) broadcast(room *Room, ev *Event) {
	h.relay(room, "", ev)
}

func (h *Hub) reject(c *Client, room string, err *CoreError) {
	h.metrics.commandsDenied.Add(1)
	h.deliver(c, &Event{Kind: EventError, Room: room, PlayerID: c.playerID, Error: err})
}

// RoomInfo is a read-only view of a room.
type RoomInfo struct {
	ID         string
	Capacity   int
	Started    bool
	ReadyCount int
	CreatedAt  time.Time
	Members    []PlayerState
}

// Stats summarises the hub.
type Stats struct {
	Rooms       int             `json:"rooms"`
	Players     int             `json:"players"`
	Connections int             `json:"connections"`
	Metrics     MetricsSnapshot `json:"metrics"`
}

// inspect runs fn on the hub goroutine and waits for it to finish.
// Once the hub has accepted fn it always runs to completion.
func (h *Hub) inspect(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	task := func() {
		fn()
		close(finished)
	}
	select {
	case h.queries <- task:
	case <-ctx.Done():
		return ctx.Err()
	case <-h.done:
		return ErrHubStopped
	}
	<-finished
	return nil
}

func (h *Hub) roomInfo(room *Room) RoomInfo {
	return RoomInfo{
		ID:         room.ID,
		Capacity:   room.Capacity(),
		Started:    room.Started(),
		ReadyCount: room.ReadyCount(),
		CreatedAt:  room.CreatedAt,
		Members:    h.dir.Snapshot(room.Members()),
	}
}

// Rooms lists live rooms in id order.
func (h *Hub) Rooms(ctx context.Context) ([]RoomInfo, error) {
	var out []RoomInfo
	err := h.inspect(ctx, func() {
		rooms := h.rooms.List()
		out = make([]RoomInfo, 0, len(rooms))
		for _, r := range rooms {
			out = append(out, h.roomInfo(r))
		}
	})
	return out, err
}

// Room returns one room's view.
func (h *Hub) Room(ctx context.Context, id string) (RoomInfo, bool, error) {
	var (
		out   RoomInfo
		found bool
	)
	err := h.inspect(ctx, func() {
		if r := h.rooms.Get(id); r != nil {
			out, found = h.roomInfo(r), true
		}
	})
	return out, found, err
}

// Player returns a directory entry.
func (h *Hub) Player(ctx context.Context, id string) (PlayerState, bool, error) {
	var (
		out   PlayerState
		found bool
	)
	err := h.inspect(ctx, func() {
		out, found = h.dir.Get(id)
	})
	return out, found, err
}

// Stats returns room, player and connection counts along with the metrics.
func (h *Hub) Stats(ctx context.Context) (Stats, error) {
	var out Stats
	err := h.inspect(ctx, func() {
		out = Stats{
			Rooms:       h.rooms.Len(),
			Players:     h.dir.Len(),
			Connections: len(h.clients),
		}
	})
	out.Metrics = h.metrics.Snapshot()
	return out, err
}
