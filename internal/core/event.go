package core

import (
	"github.com/vovakirdan/arena-server/internal/spawn"
	"github.com/vovakirdan/arena-server/internal/voice"
)

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventWelcome confirms the identity bound to the connection.
	EventWelcome EventKind = iota
	// EventRoomJoined acknowledges admission to the joining player.
	EventRoomJoined
	// EventNewPlayer tells room peers about a new member.
	EventNewPlayer
	// EventPositionUpdate relays a peer's state update.
	EventPositionUpdate
	// EventShooting relays a peer's shot.
	EventShooting
	// EventDeathStatus relays a peer's death.
	EventDeathStatus
	// EventPlayerRespawn relays a peer's respawn.
	EventPlayerRespawn
	// EventRoomStarted tells every member that the match started.
	EventRoomStarted
	// EventSpawnPositions answers a map-data request.
	EventSpawnPositions
	// EventPlayerLeft tells room peers that a member left.
	EventPlayerLeft
	// EventCapacityRejected tells the requester that the room is full.
	EventCapacityRejected
	// EventAlreadyStartedRejected tells the requester that the room already started.
	EventAlreadyStartedRejected
	// EventVoiceCredentials delivers voice channel credentials.
	EventVoiceCredentials
	// EventError notifies a client about a rejected command.
	EventError
)

// Start reasons.
const (
	StartReasonReady   = "ready"
	StartReasonTimeout = "timeout"
)

// Leave reasons.
const (
	LeaveReasonLeft       = "left"
	LeaveReasonSwitched   = "switched"
	LeaveReasonDisconnect = "disconnect"
)

// Event is sent to clients to describe what happened in the system.
// Events are shared between recipients and must not be modified once sent.
type Event struct {
	Kind     EventKind
	Room     string
	PlayerID string

	Player   *PlayerState  // EventNewPlayer, EventDeathStatus, EventPlayerRespawn
	State    StateUpdate   // EventPositionUpdate, EventShooting
	Members  []PlayerState // EventRoomJoined
	Capacity int           // EventRoomJoined, EventCapacityRejected
	Started  bool          // EventRoomJoined

	Token   string // EventWelcome
	Resumed bool   // EventWelcome

	Reason      string // EventRoomStarted, EventPlayerLeft
	KillerID    string // EventDeathStatus
	KillerKills int    // EventDeathStatus

	Spawns []spawn.Point   // EventSpawnPositions
	Voice  *voice.JoinInfo // EventVoiceCredentials
	Error  *CoreError      // EventError
}
