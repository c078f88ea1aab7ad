package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/vovakirdan/arena-server/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS matches (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	room_id    TEXT NOT NULL,
	started_at DATETIME NOT NULL,
	ended_at   DATETIME
);

CREATE TABLE IF NOT EXISTS match_players (
	match_id  INTEGER NOT NULL,
	player_id TEXT NOT NULL,
	name      TEXT NOT NULL,
	kills     INTEGER NOT NULL DEFAULT 0,
	lives     INTEGER NOT NULL DEFAULT 0,
	left_at   DATETIME,
	PRIMARY KEY (match_id, player_id),
	FOREIGN KEY (match_id) REFERENCES matches(id)
);

CREATE INDEX IF NOT EXISTS idx_matches_started ON matches(started_at DESC);
`

// SQLiteStore implements store.MatchStore for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New opens (or creates) the database at dbPath and applies the schema.
func New(dbPath string) (*SQLiteStore, error) {
	return NewWithSetup(dbPath, Migrate)
}

// NewWithSetup creates a new SQLite store and runs a setup function.
// Useful for tests to apply schema without touching disk.
func NewWithSetup(dbPath string, setup func(*sql.DB) error) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection; it also keeps ":memory:" databases alive.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if setup != nil {
		if err := setup(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("setup: %w", err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Migrate creates the match history tables if they do not exist.
func Migrate(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateMatch stores a new match together with its starting roster.
func (s *SQLiteStore) CreateMatch(ctx context.Context, roomID string, startedAt time.Time, players []store.MatchPlayer) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx,
		`INSERT INTO matches (room_id, started_at) VALUES (?, ?)`,
		roomID, startedAt.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert match: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get last insert id: %w", err)
	}

	for _, p := range players {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO match_players (match_id, player_id, name, kills, lives)
			VALUES (?, ?, ?, ?, ?)
		`, id, p.PlayerID, p.Name, p.Kills, p.Lives); err != nil {
			return 0, fmt.Errorf("insert match player: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

// RecordPlayerResult upserts a participant's final score.
func (s *SQLiteStore) RecordPlayerResult(ctx context.Context, matchID int64, p store.MatchPlayer) error {
	var leftAt any
	if p.LeftAt != nil {
		leftAt = p.LeftAt.UTC()
	}
	query := `
		INSERT INTO match_players (match_id, player_id, name, kills, lives, left_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (match_id, player_id) DO UPDATE SET
			name = excluded.name,
			kills = excluded.kills,
			lives = excluded.lives,
			left_at = excluded.left_at
	`
	if _, err := s.db.ExecContext(ctx, query, matchID, p.PlayerID, p.Name, p.Kills, p.Lives, leftAt); err != nil {
		return fmt.Errorf("record player result: %w", err)
	}
	return nil
}

// FinishMatch sets the end time of a match.
func (s *SQLiteStore) FinishMatch(ctx context.Context, matchID int64, endedAt time.Time) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE matches SET ended_at = ? WHERE id = ?`,
		endedAt.UTC(), matchID,
	)
	if err != nil {
		return fmt.Errorf("finish match: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("match %d: %w", matchID, store.ErrNotFound)
	}
	return nil
}

// GetMatch retrieves a match with its players.
func (s *SQLiteStore) GetMatch(ctx context.Context, id int64) (*store.Match, error) {
	var (
		m       store.Match
		endedAt sql.NullTime
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, room_id, started_at, ended_at FROM matches WHERE id = ?`, id,
	).Scan(&m.ID, &m.RoomID, &m.StartedAt, &endedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("match %d: %w", id, store.ErrNotFound)
		}
		return nil, fmt.Errorf("query match: %w", err)
	}
	if endedAt.Valid {
		m.EndedAt = &endedAt.Time
	}

	players, err := s.listPlayers(ctx, id)
	if err != nil {
		return nil, err
	}
	m.Players = players
	return &m, nil
}

// ListMatches returns the most recent matches first, without players.
func (s *SQLiteStore) ListMatches(ctx context.Context, limit int) ([]*store.Match, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, room_id, started_at, ended_at
		FROM matches
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query matches: %w", err)
	}
	defer rows.Close()

	var matches []*store.Match
	for rows.Next() {
		var (
			m       store.Match
			endedAt sql.NullTime
		)
		if err := rows.Scan(&m.ID, &m.RoomID, &m.StartedAt, &endedAt); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		if endedAt.Valid {
			m.EndedAt = &endedAt.Time
		}
		matches = append(matches, &m)
	}
	return matches, rows.Err()
}

func (s *SQLiteStore) listPlayers(ctx context.Context, matchID int64) ([]store.MatchPlayer, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT player_id, name, kills, lives, left_at
		FROM match_players
		WHERE match_id = ?
		ORDER BY kills DESC, player_id
	`, matchID)
	if err != nil {
		return nil, fmt.Errorf("query match players: %w", err)
	}
	defer rows.Close()

	var players []store.MatchPlayer
	for rows.Next() {
		var (
			p      store.MatchPlayer
			leftAt sql.NullTime
		)
		if err := rows.Scan(&p.PlayerID, &p.Name, &p.Kills, &p.Lives, &leftAt); err != nil {
			return nil, fmt.Errorf("scan match player: %w", err)
		}
		if leftAt.Valid {
			p.LeftAt = &leftAt.Time
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

var _ store.MatchStore = (*SQLiteStore)(nil)
