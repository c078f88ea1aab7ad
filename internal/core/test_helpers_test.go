package core

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/vovakirdan/arena-server/internal/voice"
)

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()
	return mustEventOf(t, ch, kind)
}

// mustEventOf waits for the first event whose kind is one of kinds, skipping others.
func mustEventOf(t *testing.T, ch <-chan *Event, kinds ...EventKind) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil {
				continue
			}
			for _, k := range kinds {
				if ev.Kind == k {
					return ev
				}
			}
		default:
			time.Sleep(5 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kinds)
	return nil
}

// noEvent fails if an event of kind arrives within d.
func noEvent(t *testing.T, ch <-chan *Event, kind EventKind, d time.Duration) {
	t.Helper()

	deadline := time.After(d)
	for {
		select {
		case ev := <-ch:
			if ev != nil && ev.Kind == kind {
				t.Fatalf("unexpected event kind %v: %+v", kind, ev)
			}
		case <-deadline:
			return
		}
	}
}

func startHub(t *testing.T, opts Options, deps Deps) *Hub {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	hub := NewHub(opts, deps)
	go hub.Run(ctx)
	return hub
}

func connect(hub *Hub, id string) *Client {
	c := NewClient(id, 0)
	if err := hub.RegisterClient(c); err != nil {
		panic(err)
	}
	return c
}

func hello(t *testing.T, c *Client, name string) *Event {
	t.Helper()
	c.Commands <- &Command{Kind: CommandHello, Hello: HelloRequest{Name: name}}
	return mustEvent(t, c.Events, EventWelcome)
}

func joinRoom(t *testing.T, c *Client, room string) *Event {
	t.Helper()
	c.Commands <- &Command{Kind: CommandJoinRoom, Room: room}
	return mustEvent(t, c.Events, EventRoomJoined)
}

// player connects, says hello and joins room, returning the client and its id.
func player(t *testing.T, hub *Hub, name, room string) (*Client, string) {
	t.Helper()
	c := connect(hub, name)
	id := hello(t, c, name).PlayerID
	if room != "" {
		joinRoom(t, c, room)
	}
	return c, id
}

func ctxTimeout(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctx
}

type fakeTokens struct{}

func (fakeTokens) Issue(playerID string) (string, error) {
	return "tok:" + playerID, nil
}

func (fakeTokens) Validate(token string) (string, error) {
	id, ok := strings.CutPrefix(token, "tok:")
	if !ok || id == "" {
		return "", errors.New("bad token")
	}
	return id, nil
}

type fakeVoice struct{}

func (fakeVoice) JoinInfo(_ context.Context, roomID, playerID, name string) (*voice.JoinInfo, error) {
	return &voice.JoinInfo{URL: "ws://voice", Token: "v-" + playerID, RoomName: "arena-" + roomID, Identity: playerID}, nil
}

type recorderCall struct {
	kind    string
	room    string
	player  string
	players int
}

type fakeRecorder struct {
	mu    sync.Mutex
	calls []recorderCall
}

func (r *fakeRecorder) MatchStarted(roomID string, players []PlayerState, _ time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, recorderCall{kind: "started", room: roomID, players: len(players)})
}

func (r *fakeRecorder) PlayerLeft(roomID string, p PlayerState, _ time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, recorderCall{kind: "left", room: roomID, player: p.ID})
}

func (r *fakeRecorder) MatchEnded(roomID string, _ time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, recorderCall{kind: "ended", room: roomID})
}

func (r *fakeRecorder) snapshot() []recorderCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]recorderCall(nil), r.calls...)
}
