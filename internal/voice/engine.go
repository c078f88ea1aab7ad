// Package voice abstracts the media backend that hosts per-room voice channels.
package voice

import "context"

// JoinInfo contains what a client needs to join a room's voice channel.
type JoinInfo struct {
	URL      string `json:"url"`       // media server WebSocket URL
	Token    string `json:"token"`     // access token for the media server
	RoomName string `json:"room_name"` // media room name
	Identity string `json:"identity"`  // participant identity in the media room
}

// Engine issues voice channel credentials for game rooms.
type Engine interface {
	// JoinInfo creates join credentials for a player in a game room.
	JoinInfo(ctx context.Context, roomID, playerID, name string) (*JoinInfo, error)
}
