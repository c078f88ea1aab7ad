package http

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/arena-server/internal/config"
	"github.com/vovakirdan/arena-server/internal/core"
	"github.com/vovakirdan/arena-server/internal/proto"
	"github.com/vovakirdan/arena-server/internal/store"
)

type testEnv struct {
	ts    *httptest.Server
	hub   *core.Hub
	wsURL string
	// stopHub cancels the hub loop while the HTTP server keeps serving.
	stopHub context.CancelFunc
}

func startTestServer(t *testing.T, opts core.Options, matches store.MatchStore) *testEnv {
	t.Helper()

	logger := zerolog.Nop()
	hub := core.NewHub(opts, core.Deps{Logger: &logger})
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	cfg := config.Default()
	cfg.Addr = ":0"
	server := NewServer(hub, matches, cfg, &logger)

	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return &testEnv{
		ts:      ts,
		hub:     hub,
		wsURL:   strings.Replace(ts.URL, "http", "ws", 1) + "/ws",
		stopHub: cancel,
	}
}

func testCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func dial(t *testing.T, ctx context.Context, env *testEnv) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.Dial(ctx, env.wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close(websocket.StatusNormalClosure, "done") })
	return conn
}

func send(t *testing.T, ctx context.Context, conn *websocket.Conn, typ string, data any) {
	t.Helper()
	payload, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, wsjson.Write(ctx, conn, proto.Inbound{Type: typ, Data: payload}))
}

type frame struct {
	Type  string          `json:"type"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
	Error *proto.Error    `json:"error"`
}

// readEvent reads frames until the named event arrives and decodes its data into v.
func readEvent(t *testing.T, ctx context.Context, conn *websocket.Conn, name string, v any) {
	t.Helper()
	for {
		var f frame
		require.NoError(t, wsjson.Read(ctx, conn, &f), "waiting for %s", name)
		if f.Type == proto.OutboundTypeEvent && f.Event == name {
			if v != nil {
				require.NoError(t, json.Unmarshal(f.Data, v))
			}
			return
		}
	}
}

// readError reads frames until an error frame arrives.
func readError(t *testing.T, ctx context.Context, conn *websocket.Conn) *proto.Error {
	t.Helper()
	for {
		var f frame
		require.NoError(t, wsjson.Read(ctx, conn, &f), "waiting for error")
		if f.Type == proto.OutboundTypeError {
			require.NotNil(t, f.Error)
			return f.Error
		}
	}
}

// helloAndJoin introduces a connection and joins room, returning the player id.
func helloAndJoin(t *testing.T, ctx context.Context, conn *websocket.Conn, name, room string) string {
	t.Helper()
	send(t, ctx, conn, proto.InboundTypeHello, proto.HelloData{Name: name, Protocol: proto.ProtocolVersion})
	var welcome proto.WelcomeEvent
	readEvent(t, ctx, conn, proto.EventWelcome, &welcome)
	require.NotEmpty(t, welcome.PlayerID)

	if room != "" {
		send(t, ctx, conn, proto.InboundTypeJoinRoom, proto.JoinRoomData{RoomID: room, Player: proto.PlayerData{Name: name}})
		var joined proto.RoomJoinedEvent
		readEvent(t, ctx, conn, proto.EventRoomJoined, &joined)
		require.Equal(t, welcome.PlayerID, joined.PlayerID)
	}
	return welcome.PlayerID
}
