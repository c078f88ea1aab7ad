package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/arena-server/internal/config"
	"github.com/vovakirdan/arena-server/internal/store/sqlite"
)

func TestRunListenFailureStopsWorkers(t *testing.T) {
	cfg := config.Default()
	cfg.Addr = "not-an-address"
	cfg.ShutdownTimeout = 5 * time.Second
	cfg.DatabasePath = filepath.Join(t.TempDir(), "arena.db")

	logger := zerolog.Nop()
	a, err := New(&cfg, &logger)
	require.NoError(t, err)

	start := time.Now()
	err = a.Run(context.Background())
	require.Error(t, err)
	assert.Less(t, time.Since(start), cfg.ShutdownTimeout)

	require.Eventually(t, func() bool {
		_, err := a.hub.Stats(context.Background())
		return err != nil
	}, time.Second, 10*time.Millisecond, "hub loop still running")

	st, err := sqlite.New(cfg.DatabasePath)
	require.NoError(t, err)
	defer st.Close()
	matches, err := st.ListMatches(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestRunStopsOnCancel(t *testing.T) {
	cfg := config.Default()
	cfg.Addr = "127.0.0.1:0"
	cfg.ShutdownTimeout = 2 * time.Second

	logger := zerolog.Nop()
	a, err := New(&cfg, &logger)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(cfg.ShutdownTimeout):
		t.Fatal("Run did not return after cancel")
	}
}
