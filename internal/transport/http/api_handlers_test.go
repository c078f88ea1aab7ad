package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/arena-server/internal/core"
	"github.com/vovakirdan/arena-server/internal/proto"
	"github.com/vovakirdan/arena-server/internal/store"
	"github.com/vovakirdan/arena-server/internal/store/sqlite"
)

func getJSON(t *testing.T, env *testEnv, path string, v any) int {
	t.Helper()
	resp, err := env.ts.Client().Get(env.ts.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	if v != nil && resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp.StatusCode
}

func TestHealthEndpoint(t *testing.T) {
	env := startTestServer(t, core.Options{}, nil)
	assert.Equal(t, http.StatusOK, getJSON(t, env, "/health", nil))
}

func TestRoomsEndpoints(t *testing.T) {
	env := startTestServer(t, core.Options{}, nil)
	ctx := testCtx(t)

	aliceID := helloAndJoin(t, ctx, dial(t, ctx, env), "alice", "arena")

	var rooms []RoomResponse
	require.Equal(t, http.StatusOK, getJSON(t, env, "/api/rooms", &rooms))
	require.Len(t, rooms, 1)
	assert.Equal(t, "arena", rooms[0].ID)
	assert.Equal(t, 1, rooms[0].MemberCount)
	assert.Empty(t, rooms[0].Members)

	var room RoomResponse
	require.Equal(t, http.StatusOK, getJSON(t, env, "/api/rooms/arena", &room))
	require.Len(t, room.Members, 1)
	assert.Equal(t, aliceID, room.Members[0].ID)
	assert.False(t, room.Started)

	assert.Equal(t, http.StatusNotFound, getJSON(t, env, "/api/rooms/missing", nil))

	var player proto.Player
	require.Equal(t, http.StatusOK, getJSON(t, env, "/api/players/"+aliceID, &player))
	assert.Equal(t, "alice", player.Name)
	assert.Equal(t, "arena", player.RoomID)
	assert.Equal(t, http.StatusNotFound, getJSON(t, env, "/api/players/nobody", nil))

	var stats core.Stats
	require.Equal(t, http.StatusOK, getJSON(t, env, "/api/stats", &stats))
	assert.Equal(t, 1, stats.Rooms)
	assert.Equal(t, 1, stats.Players)
	assert.EqualValues(t, 1, stats.Metrics.JoinsAccepted)
}

func TestMatchesDisabled(t *testing.T) {
	env := startTestServer(t, core.Options{}, nil)
	assert.Equal(t, http.StatusServiceUnavailable, getJSON(t, env, "/api/matches", nil))
	assert.Equal(t, http.StatusServiceUnavailable, getJSON(t, env, "/api/matches/1", nil))
}

func TestMatchesEndpoints(t *testing.T) {
	st, err := sqlite.NewWithSetup(":memory:", sqlite.Migrate)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	start := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	id, err := st.CreateMatch(context.Background(), "arena", start, []store.MatchPlayer{{PlayerID: "p1", Name: "alice", Lives: 1}})
	require.NoError(t, err)

	env := startTestServer(t, core.Options{}, st)

	var list []MatchResponse
	require.Equal(t, http.StatusOK, getJSON(t, env, "/api/matches?limit=5", &list))
	require.Len(t, list, 1)
	assert.Equal(t, "arena", list[0].RoomID)
	assert.Equal(t, "2026-05-01T12:00:00Z", list[0].StartedAt)
	assert.Nil(t, list[0].EndedAt)

	var match MatchResponse
	require.Equal(t, http.StatusOK, getJSON(t, env, "/api/matches/"+strconv.FormatInt(id, 10), &match))
	require.Len(t, match.Players, 1)
	assert.Equal(t, "alice", match.Players[0].Name)

	assert.Equal(t, http.StatusBadRequest, getJSON(t, env, "/api/matches?limit=zero", nil))
	assert.Equal(t, http.StatusBadRequest, getJSON(t, env, "/api/matches/abc", nil))
	assert.Equal(t, http.StatusNotFound, getJSON(t, env, "/api/matches/999", nil))
}
