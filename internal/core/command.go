package core

import "github.com/vovakirdan/arena-server/internal/spawn"

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandHello announces the client and requests (or resumes) an identity.
	CommandHello CommandKind = iota
	// CommandJoinRoom asks for admission into a room.
	CommandJoinRoom
	// CommandLeaveRoom leaves a room.
	CommandLeaveRoom
	// CommandStateUpdate reports position, direction and pressed keys.
	CommandStateUpdate
	// CommandShoot reports a shot; it is relayed without touching the directory.
	CommandShoot
	// CommandPlayerDied reports the sender's death.
	CommandPlayerDied
	// CommandPlayerRespawned reports the sender coming back to life.
	CommandPlayerRespawned
	// CommandPlayerReady signals readiness to start.
	CommandPlayerReady
	// CommandMapData asks for spawn positions on a map.
	CommandMapData
	// CommandVoiceJoin asks for voice channel credentials for a room.
	CommandVoiceJoin
)

var commandNames = map[CommandKind]string{
	CommandHello:           "hello",
	CommandJoinRoom:        "join-room",
	CommandLeaveRoom:       "leave-room",
	CommandStateUpdate:     "state-update",
	CommandShoot:           "shoot",
	CommandPlayerDied:      "player-died",
	CommandPlayerRespawned: "player-respawned",
	CommandPlayerReady:     "player-ready",
	CommandMapData:         "map-data",
	CommandVoiceJoin:       "voice-join",
}

func (k CommandKind) String() string {
	if name, ok := commandNames[k]; ok {
		return name
	}
	return "unknown"
}

// Command represents an action requested by a client.
type Command struct {
	Kind CommandKind
	Room string
	// PlayerID is the identity claimed by the payload. When set it must match
	// the identity bound to the connection.
	PlayerID string

	Hello    HelloRequest // CommandHello
	Player   PlayerRecord // CommandJoinRoom
	State    StateUpdate  // CommandStateUpdate, CommandShoot, CommandPlayerRespawned
	KillerID string       // CommandPlayerDied
	Map      spawn.Map    // CommandMapData
}

// HelloRequest carries the client's display name and an optional resume token.
type HelloRequest struct {
	Name  string
	Token string
}

// PlayerRecord is the player description sent with a join.
type PlayerRecord struct {
	Name      string
	X         *float64
	Y         *float64
	Direction Direction
	Lives     *int
}

// StateUpdate is a position report.
type StateUpdate struct {
	X          float64
	Y          float64
	Direction  Direction
	ActiveKeys map[string]bool
}
