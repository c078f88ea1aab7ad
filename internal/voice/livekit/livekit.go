package livekit

import (
	"context"
	"fmt"
	"time"

	"github.com/livekit/protocol/auth"

	"github.com/vovakirdan/arena-server/internal/voice"
)

// Engine implements voice.Engine using LiveKit as the media backend.
// LiveKit creates rooms on demand when the first participant connects,
// so issuing a token is all that is needed.
type Engine struct {
	apiKey    string
	apiSecret string
	wsURL     string
	validFor  time.Duration
}

// New creates a new LiveKit engine.
func New(apiKey, apiSecret, wsURL string) *Engine {
	return &Engine{
		apiKey:    apiKey,
		apiSecret: apiSecret,
		wsURL:     wsURL,
		validFor:  time.Hour,
	}
}

// RoomName maps a game room to its LiveKit room.
func RoomName(roomID string) string {
	return "arena-" + roomID
}

// JoinInfo creates credentials for a player to join the voice room of a game room.
func (e *Engine) JoinInfo(_ context.Context, roomID, playerID, name string) (*voice.JoinInfo, error) {
	roomName := RoomName(roomID)

	at := auth.NewAccessToken(e.apiKey, e.apiSecret)
	grant := &auth.VideoGrant{
		RoomJoin: true,
		Room:     roomName,
	}
	at.AddGrant(grant).
		SetIdentity(playerID).
		SetName(name).
		SetValidFor(e.validFor)

	token, err := at.ToJWT()
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	return &voice.JoinInfo{
		URL:      e.wsURL,
		Token:    token,
		RoomName: roomName,
		Identity: playerID,
	}, nil
}

var _ voice.Engine = (*Engine)(nil)
