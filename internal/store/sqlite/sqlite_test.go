package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/arena-server/internal/store"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	s, err := NewWithSetup(":memory:", Migrate)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestMatchLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	start := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)

	id, err := s.CreateMatch(ctx, "arena", start, []store.MatchPlayer{
		{PlayerID: "a", Name: "alice", Lives: 3},
		{PlayerID: "b", Name: "bob", Lives: 3},
	})
	require.NoError(t, err)
	require.NotZero(t, id)

	left := start.Add(time.Minute)
	require.NoError(t, s.RecordPlayerResult(ctx, id, store.MatchPlayer{
		PlayerID: "b", Name: "bob", Kills: 4, Lives: 1, LeftAt: &left,
	}))

	m, err := s.GetMatch(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "arena", m.RoomID)
	assert.True(t, start.Equal(m.StartedAt))
	assert.Nil(t, m.EndedAt)
	require.Len(t, m.Players, 2)
	assert.Equal(t, "b", m.Players[0].PlayerID, "players are ordered by kills")
	assert.Equal(t, 4, m.Players[0].Kills)
	require.NotNil(t, m.Players[0].LeftAt)
	assert.True(t, left.Equal(*m.Players[0].LeftAt))
	assert.Nil(t, m.Players[1].LeftAt)

	end := start.Add(2 * time.Minute)
	require.NoError(t, s.FinishMatch(ctx, id, end))
	m, err = s.GetMatch(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, m.EndedAt)
	assert.True(t, end.Equal(*m.EndedAt))
}

func TestRecordPlayerResultInsertsLateJoiner(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.CreateMatch(ctx, "r", time.Now(), nil)
	require.NoError(t, err)
	require.NoError(t, s.RecordPlayerResult(ctx, id, store.MatchPlayer{PlayerID: "x", Name: "x", Kills: 1}))

	m, err := s.GetMatch(ctx, id)
	require.NoError(t, err)
	require.Len(t, m.Players, 1)
	assert.Equal(t, 1, m.Players[0].Kills)
}

func TestMissingMatch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GetMatch(ctx, 42)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, s.FinishMatch(ctx, 42, time.Now()), store.ErrNotFound)
}

func TestListMatchesNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	for i, room := range []string{"first", "second", "third"} {
		_, err := s.CreateMatch(ctx, room, base.Add(time.Duration(i)*time.Hour), nil)
		require.NoError(t, err)
	}

	matches, err := s.ListMatches(ctx, 2)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "third", matches[0].RoomID)
	assert.Equal(t, "second", matches[1].RoomID)
}

func TestNewCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arena.db")
	s, err := New(path)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.CreateMatch(context.Background(), "r", time.Now(), nil)
	require.NoError(t, err)
}
