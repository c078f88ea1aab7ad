package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Match is one started game in a room, from start until the room is destroyed.
type Match struct {
	ID        int64
	RoomID    string
	StartedAt time.Time
	EndedAt   *time.Time // nil while the room is alive
	Players   []MatchPlayer
}

// MatchPlayer is a participant of a match with its latest known score.
type MatchPlayer struct {
	PlayerID string
	Name     string
	Kills    int
	Lives    int
	LeftAt   *time.Time // nil while the player is still in the room
}

// MatchStore persists match history.
type MatchStore interface {
	CreateMatch(ctx context.Context, roomID string, startedAt time.Time, players []MatchPlayer) (int64, error)
	RecordPlayerResult(ctx context.Context, matchID int64, player MatchPlayer) error
	FinishMatch(ctx context.Context, matchID int64, endedAt time.Time) error
	GetMatch(ctx context.Context, id int64) (*Match, error)
	ListMatches(ctx context.Context, limit int) ([]*Match, error)
	Close() error
}
