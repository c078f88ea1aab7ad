package matches

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/arena-server/internal/core"
	"github.com/vovakirdan/arena-server/internal/store"
	"github.com/vovakirdan/arena-server/internal/store/sqlite"
)

func newStore(t *testing.T) store.MatchStore {
	t.Helper()
	st, err := sqlite.NewWithSetup(":memory:", sqlite.Migrate)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestRecorderWritesMatchLifecycle(t *testing.T) {
	st := newStore(t)
	rec := NewRecorder(st, 0, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go rec.Run(ctx)

	now := time.Now()
	rec.MatchStarted("arena", []core.PlayerState{
		{ID: "a", Name: "alice", Lives: 3},
		{ID: "b", Name: "bob", Lives: 3},
	}, now)
	rec.PlayerLeft("arena", core.PlayerState{ID: "a", Name: "alice", Kills: 2, Lives: 1}, now.Add(time.Second))
	rec.PlayerLeft("arena", core.PlayerState{ID: "b", Name: "bob", Lives: 0}, now.Add(2*time.Second))
	rec.MatchEnded("arena", now.Add(2*time.Second))

	var match *store.Match
	require.Eventually(t, func() bool {
		list, err := st.ListMatches(context.Background(), 10)
		if err != nil || len(list) != 1 || list[0].EndedAt == nil {
			return false
		}
		match, err = st.GetMatch(context.Background(), list[0].ID)
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, "arena", match.RoomID)
	require.Len(t, match.Players, 2)
	assert.Equal(t, "a", match.Players[0].PlayerID)
	assert.Equal(t, 2, match.Players[0].Kills)
	assert.NotNil(t, match.Players[0].LeftAt)
	assert.Zero(t, rec.Dropped())
}

func TestRecorderIgnoresUnknownRooms(t *testing.T) {
	st := newStore(t)
	rec := NewRecorder(st, 0, nil)

	ctx, cancel := context.WithCancel(context.Background())
	rec.PlayerLeft("ghost", core.PlayerState{ID: "a"}, time.Now())
	rec.MatchEnded("ghost", time.Now())
	cancel()
	rec.Run(ctx)

	list, err := st.ListMatches(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestRecorderDropsWhenFull(t *testing.T) {
	rec := NewRecorder(newStore(t), 1, nil)

	rec.MatchEnded("a", time.Now())
	rec.MatchEnded("b", time.Now())
	assert.EqualValues(t, 1, rec.Dropped())
}

func TestRecorderFlushesOnShutdown(t *testing.T) {
	st := newStore(t)
	rec := NewRecorder(st, 0, nil)

	rec.MatchStarted("r", []core.PlayerState{{ID: "a", Name: "alice"}}, time.Now())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec.Run(ctx)

	list, err := st.ListMatches(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
