// Package matches records match history off the hub goroutine.
package matches

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/arena-server/internal/core"
	"github.com/vovakirdan/arena-server/internal/store"
)

// DefaultBuffer is the number of pending notifications the recorder accepts.
const DefaultBuffer = 256

type opKind int

const (
	opStarted opKind = iota
	opLeft
	opEnded
)

type op struct {
	kind    opKind
	room    string
	players []core.PlayerState
	player  core.PlayerState
	at      time.Time
}

// Recorder implements core.MatchRecorder. Notifications are queued without
// blocking and written to the store by Run. A full queue drops the notification.
type Recorder struct {
	store store.MatchStore
	log   *zerolog.Logger
	ops   chan op

	// active maps a room to its running match; owned by Run.
	active  map[string]int64
	dropped atomic.Int64
}

// NewRecorder creates a recorder writing to st.
func NewRecorder(st store.MatchStore, buffer int, logger *zerolog.Logger) *Recorder {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Recorder{
		store:  st,
		log:    logger,
		ops:    make(chan op, buffer),
		active: make(map[string]int64),
	}
}

// MatchStarted queues the creation of a match with its starting roster.
func (r *Recorder) MatchStarted(roomID string, players []core.PlayerState, at time.Time) {
	r.enqueue(op{kind: opStarted, room: roomID, players: players, at: at})
}

// PlayerLeft queues a participant's final score.
func (r *Recorder) PlayerLeft(roomID string, player core.PlayerState, at time.Time) {
	r.enqueue(op{kind: opLeft, room: roomID, player: player, at: at})
}

// MatchEnded queues the end of the room's match.
func (r *Recorder) MatchEnded(roomID string, at time.Time) {
	r.enqueue(op{kind: opEnded, room: roomID, at: at})
}

// Dropped returns how many notifications were discarded because the queue was full.
func (r *Recorder) Dropped() int64 {
	return r.dropped.Load()
}

func (r *Recorder) enqueue(o op) {
	select {
	case r.ops <- o:
	default:
		r.dropped.Add(1)
		r.log.Warn().Str("room", o.room).Msg("match recorder queue full, dropping")
	}
}

// Run writes queued notifications until ctx is done, then flushes what is left.
func (r *Recorder) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			r.flush(ctx)
			return
		default:
		}

		select {
		case o := <-r.ops:
			r.apply(ctx, o)
		case <-ctx.Done():
			r.flush(ctx)
			return
		}
	}
}

func (r *Recorder) flush(ctx context.Context) {
	flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	for {
		select {
		case o := <-r.ops:
			r.apply(flushCtx, o)
		default:
			return
		}
	}
}

func (r *Recorder) apply(ctx context.Context, o op) {
	switch o.kind {
	case opStarted:
		roster := make([]store.MatchPlayer, 0, len(o.players))
		for _, p := range o.players {
			roster = append(roster, store.MatchPlayer{PlayerID: p.ID, Name: p.Name, Kills: p.Kills, Lives: p.Lives})
		}
		id, err := r.store.CreateMatch(ctx, o.room, o.at, roster)
		if err != nil {
			r.log.Error().Err(err).Str("room", o.room).Msg("create match")
			return
		}
		r.active[o.room] = id
		r.log.Info().Str("room", o.room).Int64("match_id", id).Int("players", len(roster)).Msg("match recorded")

	case opLeft:
		id, ok := r.active[o.room]
		if !ok {
			return
		}
		at := o.at
		result := store.MatchPlayer{
			PlayerID: o.player.ID,
			Name:     o.player.Name,
			Kills:    o.player.Kills,
			Lives:    o.player.Lives,
			LeftAt:   &at,
		}
		if err := r.store.RecordPlayerResult(ctx, id, result); err != nil {
			r.log.Error().Err(err).Str("room", o.room).Str("player_id", o.player.ID).Msg("record player result")
		}

	case opEnded:
		id, ok := r.active[o.room]
		if !ok {
			return
		}
		delete(r.active, o.room)
		if err := r.store.FinishMatch(ctx, id, o.at); err != nil {
			r.log.Error().Err(err).Str("room", o.room).Int64("match_id", id).Msg("finish match")
		}
	}
}

var _ core.MatchRecorder = (*Recorder)(nil)
