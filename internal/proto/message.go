package proto

import "encoding/json"

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	ProtocolVersion = 1

	InboundTypeHello           = "hello"
	InboundTypeJoinRoom        = "join-room"
	InboundTypeLeaveRoom       = "leave-room"
	InboundTypeStateUpdate     = "state-update"
	InboundTypeShoot           = "shoot"
	InboundTypePlayerDied      = "player-died"
	InboundTypePlayerRespawned = "player-respawned"
	InboundTypePlayerReady     = "player-ready"
	InboundTypeMapData         = "map-data"
	InboundTypeVoiceJoin       = "voice-join"

	OutboundTypeEvent = "event"
	OutboundTypeError = "error"
)

// Outbound event names.
const (
	EventWelcome                = "welcome"
	EventRoomJoined             = "room-joined"
	EventNewPlayer              = "new-player"
	EventPositionUpdate         = "position-update"
	EventShooting               = "shooting-event"
	EventDeathStatus            = "death-status"
	EventPlayerRespawn          = "player-respawn"
	EventRoomStarted            = "room-started"
	EventValidSpawnPositions    = "valid-spawn-positions"
	EventPlayerLeft             = "player-left"
	EventCapacityRejected       = "capacity-rejected"
	EventAlreadyStartedRejected = "already-started-rejected"
	EventVoiceCredentials       = "voice-credentials"
)

// Protocol error codes. Domain codes from the core are passed through as-is.
const (
	ErrCodeInvalidMessage     = "invalid_message"
	ErrCodeUnsupportedVersion = "unsupported_version"
	ErrCodeBadRequest         = "bad_request"
	ErrCodeRateLimited        = "rate_limited"
)

// HelloData is sent by the client to introduce itself.
type HelloData struct {
	Name     string `json:"name"`
	Token    string `json:"token,omitempty"`
	Protocol int    `json:"protocol,omitempty"`
}

// PlayerData is the player record attached to a join.
type PlayerData struct {
	ID        string   `json:"id,omitempty"`
	Name      string   `json:"name,omitempty"`
	X         *float64 `json:"x,omitempty"`
	Y         *float64 `json:"y,omitempty"`
	Direction string   `json:"direction,omitempty"`
	Lives     *int     `json:"lives,omitempty"`
}

// JoinRoomData requests admission into a room.
type JoinRoomData struct {
	RoomID string     `json:"roomId"`
	Player PlayerData `json:"player"`
}

// RoomData addresses a room: leave-room, player-ready, voice-join.
type RoomData struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId,omitempty"`
}

// StateUpdateData reports the sender's position and input.
type StateUpdateData struct {
	RoomID     string          `json:"roomId"`
	PlayerID   string          `json:"playerId,omitempty"`
	X          *float64        `json:"x"`
	Y          *float64        `json:"y"`
	Direction  string          `json:"direction,omitempty"`
	ActiveKeys map[string]bool `json:"activeKeys,omitempty"`
}

// ShootData reports a shot fired by the sender.
type ShootData struct {
	RoomID    string   `json:"roomId"`
	PlayerID  string   `json:"playerId,omitempty"`
	X         *float64 `json:"x"`
	Y         *float64 `json:"y"`
	Direction string   `json:"direction,omitempty"`
}

// PlayerDiedData reports the sender's death.
type PlayerDiedData struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId,omitempty"`
	KillerID string `json:"killerId,omitempty"`
}

// RespawnData reports where the sender came back to life.
type RespawnData struct {
	RoomID    string   `json:"roomId"`
	PlayerID  string   `json:"playerId,omitempty"`
	X         *float64 `json:"x"`
	Y         *float64 `json:"y"`
	Direction string   `json:"direction,omitempty"`
}

// Size is a width/height pair.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Scale is a horizontal/vertical scale factor.
type Scale struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// MapData asks for spawn positions. Either Grid (true = obstructed) or
// TileIndices (-1 = free) must be provided, row-major, mapSize.width*mapSize.height long.
type MapData struct {
	Grid        []bool `json:"grid,omitempty"`
	TileIndices []int  `json:"tileIndices,omitempty"`
	TileSize    Size   `json:"tileSize"`
	MapSize     Size   `json:"mapSize"`
	Scale       *Scale `json:"scale,omitempty"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// Player is the wire view of a player's state.
type Player struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	X          float64         `json:"x"`
	Y          float64         `json:"y"`
	Direction  string          `json:"direction"`
	ActiveKeys map[string]bool `json:"activeKeys,omitempty"`
	Lives      int             `json:"lives"`
	Kills      int             `json:"kills"`
	Active     bool            `json:"active"`
	RoomID     string          `json:"roomId,omitempty"`
}

// WelcomeEvent confirms the identity bound to the connection.
type WelcomeEvent struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Token    string `json:"token,omitempty"`
	Resumed  bool   `json:"resumed"`
	RoomID   string `json:"roomId,omitempty"`
	Protocol int    `json:"protocol"`
}

// RoomJoinedEvent acknowledges admission.
type RoomJoinedEvent struct {
	RoomID   string   `json:"roomId"`
	PlayerID string   `json:"playerId"`
	Capacity int      `json:"capacity"`
	Started  bool     `json:"started"`
	Members  []Player `json:"members"`
}

// PlayerEvent carries a player snapshot: new-player, player-respawn.
type PlayerEvent struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
	Player   Player `json:"player"`
}

// PositionEvent relays a peer's state update or shot.
type PositionEvent struct {
	RoomID     string          `json:"roomId"`
	PlayerID   string          `json:"playerId"`
	X          float64         `json:"x"`
	Y          float64         `json:"y"`
	Direction  string          `json:"direction"`
	ActiveKeys map[string]bool `json:"activeKeys,omitempty"`
}

// DeathEvent relays a peer's death.
type DeathEvent struct {
	RoomID      string `json:"roomId"`
	PlayerID    string `json:"playerId"`
	Active      bool   `json:"active"`
	Lives       int    `json:"lives"`
	KillerID    string `json:"killerId,omitempty"`
	KillerKills int    `json:"killerKills,omitempty"`
}

// RoomStartedEvent tells every member the match started.
type RoomStartedEvent struct {
	RoomID  string   `json:"roomId"`
	Reason  string   `json:"reason"`
	Members []Player `json:"members"`
}

// SpawnPositionsEvent answers map-data.
type SpawnPositionsEvent struct {
	Positions []Point `json:"positions"`
}

// Point is a world coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PlayerLeftEvent tells peers a member left.
type PlayerLeftEvent struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
	Reason   string `json:"reason"`
}

// RejectedEvent answers a join that was not admitted.
type RejectedEvent struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
	Capacity int    `json:"capacity,omitempty"`
}

// VoiceCredentialsEvent carries voice channel credentials for a room.
type VoiceCredentialsEvent struct {
	RoomID    string `json:"roomId"`
	URL       string `json:"url"`
	Token     string `json:"token"`
	VoiceRoom string `json:"voiceRoom"`
	Identity  string `json:"identity"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
