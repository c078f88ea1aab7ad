package livekit

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinInfo(t *testing.T) {
	e := New("devkey", "secret-secret-secret-secret-secret", "ws://localhost:7880")

	info, err := e.JoinInfo(context.Background(), "r1", "p-1", "alice")
	require.NoError(t, err)

	assert.Equal(t, "ws://localhost:7880", info.URL)
	assert.Equal(t, "arena-r1", info.RoomName)
	assert.Equal(t, "p-1", info.Identity)
	assert.Equal(t, 3, len(strings.Split(info.Token, ".")), "expected a compact JWT")
}
