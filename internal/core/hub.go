package core

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/arena-server/internal/voice"
)

// TokenIssuer signs and verifies resume tokens for player identities.
type TokenIssuer interface {
	Issue(playerID string) (string, error)
	Validate(token string) (string, error)
}

// MatchRecorder receives match lifecycle notifications.
// Implementations must not block: they are called from the hub goroutine.
type MatchRecorder interface {
	MatchStarted(roomID string, players []PlayerState, at time.Time)
	PlayerLeft(roomID string, player PlayerState, at time.Time)
	MatchEnded(roomID string, at time.Time)
}

// Options tune hub behaviour. Zero values select defaults.
type Options struct {
	// Capacity is the member limit of every room.
	Capacity int
	// ReadyTimeout force-starts a waiting room this long after creation. Zero disables it.
	ReadyTimeout time.Duration
	// ReconnectGrace keeps a disconnected player's identity and membership for
	// this long so it can resume with its token. Zero removes the player at once.
	ReconnectGrace time.Duration
	// DefaultLives is assigned on join when the player record carries none.
	DefaultLives int
	// MaxMapTiles bounds map-data requests. Zero disables the limit.
	MaxMapTiles int
}

// Deps are the optional collaborators of the hub.
type Deps struct {
	Tokens   TokenIssuer
	Voice    voice.Engine
	Recorder MatchRecorder
	Logger   *zerolog.Logger
}

type envelope struct {
	client *Client
	cmd    *Command // nil means the connection is gone
}

type timerKind int

const (
	timerReady timerKind = iota
	timerReconnect
)

type timerFired struct {
	kind       timerKind
	key        string
	generation uint64
}

// Hub owns every room and player. All state is mutated by the Run goroutine,
// one command at a time, so each handler is atomic with respect to the others.
type Hub struct {
	opts Options

	register chan *Client
	inbox    chan envelope
	timers   chan timerFired
	queries  chan func()
	done     chan struct{}

	clients  map[*Client]struct{}
	sessions map[string]*Client // player id -> bound connection
	detached map[string]uint64  // player id -> reconnect generation
	dir      *Directory
	rooms    *RoomManager
	seq      uint64
	ctx      context.Context

	tokens   TokenIssuer
	voice    voice.Engine
	recorder MatchRecorder
	metrics  Metrics
	log      *zerolog.Logger
}

// NewHub creates a hub. Call Run to start processing.
func NewHub(opts Options, deps Deps) *Hub {
	if opts.Capacity <= 0 {
		opts.Capacity = DefaultRoomCapacity
	}
	if opts.DefaultLives <= 0 {
		opts.DefaultLives = 1
	}
	logger := deps.Logger
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	dir := NewDirectory()
	return &Hub{
		opts:     opts,
		register: make(chan *Client),
		inbox:    make(chan envelope, 256),
		timers:   make(chan timerFired, 16),
		queries:  make(chan func()),
		done:     make(chan struct{}),
		clients:  make(map[*Client]struct{}),
		sessions: make(map[string]*Client),
		detached: make(map[string]uint64),
		dir:      dir,
		rooms:    NewRoomManager(opts.Capacity, dir),
		ctx:      context.Background(),
		tokens:   deps.Tokens,
		voice:    deps.Voice,
		recorder: deps.Recorder,
		log:      logger,
	}
}

// Run processes registrations, commands, timers and queries until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	h.ctx = ctx

	for {
		select {
		case <-ctx.Done():
			for _, room := range h.rooms.List() {
				room.stopTimer()
			}
			return
		case c := <-h.register:
			h.clients[c] = struct{}{}
			go h.pump(c)
		case env := <-h.inbox:
			if env.cmd == nil {
				h.handleDisconnect(env.client)
			} else {
				h.handleCommand(env.client, env.cmd)
			}
		case t := <-h.timers:
			h.handleTimer(t)
		case fn := <-h.queries:
			fn()
		}
	}
}

// RegisterClient attaches a connection. Its commands are processed in send order.
// It returns ErrHubStopped once Run has returned.
func (h *Hub) RegisterClient(c *Client) error {
	select {
	case h.register <- c:
		return nil
	case <-h.done:
		return ErrHubStopped
	}
}

// UnregisterClient signals that the connection is gone. The caller must have
// stopped writing to c.Commands; commands already queued are processed first.
func (h *Hub) UnregisterClient(c *Client) {
	close(c.Commands)
}

// Metrics returns the current counters.
func (h *Hub) Metrics() MetricsSnapshot {
	return h.metrics.Snapshot()
}

func (h *Hub) pump(c *Client) {
	for cmd := range c.Commands {
		if cmd == nil {
			continue
		}
		select {
		case h.inbox <- envelope{client: c, cmd: cmd}:
		case <-h.done:
			return
		}
	}
	select {
	case h.inbox <- envelope{client: c}:
	case <-h.done:
	}
}

// after posts t back into the hub loop once d elapses.
func (h *Hub) after(d time.Duration, t timerFired) *time.Timer {
	return time.AfterFunc(d, func() {
		select {
		case h.timers <- t:
		case <-h.done:
		}
	})
}

func (h *Hub) handleTimer(t timerFired) {
	switch t.kind {
	case timerReady:
		room := h.rooms.Get(t.key)
		if room == nil || room.generation != t.generation {
			return
		}
		room.readyTimer = nil
		if room.ForceStart() {
			h.announceStart(room, StartReasonTimeout)
		}
	case timerReconnect:
		if gen, ok := h.detached[t.key]; !ok || gen != t.generation {
			return
		}
		h.log.Info().Str("player_id", t.key).Msg("reconnect window expired")
		h.dropPlayer(t.key, LeaveReasonDisconnect)
	}
}

func (h *Hub) armReadyTimer(room *Room) {
	if h.opts.ReadyTimeout <= 0 {
		return
	}
	room.readyTimer = h.after(h.opts.ReadyTimeout, timerFired{
		kind:       timerReady,
		key:        room.ID,
		generation: room.generation,
	})
}
