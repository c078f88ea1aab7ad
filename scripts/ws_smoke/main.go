package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vovakirdan/arena-server/internal/proto"
)

// frame mirrors proto.Outbound with a raw payload so it can be decoded per event.
type frame struct {
	Type  string          `json:"type"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
	Error *proto.Error    `json:"error"`
}

func main() {
	if err := run(); err != nil {
		log.Printf("ws_smoke: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:8080/ws", "WebSocket address")
	name := flag.String("name", "tester", "player name to announce with hello")
	room := flag.String("room", "smoke", "room id")
	timeout := flag.Duration("timeout", 5*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	send := func(typ string, data any) error {
		payload, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", typ, err)
		}
		if err := wsjson.Write(ctx, conn, proto.Inbound{Type: typ, Data: payload}); err != nil {
			return fmt.Errorf("send %s: %w", typ, err)
		}
		return nil
	}

	if err := send(proto.InboundTypeHello, proto.HelloData{Name: *name, Protocol: proto.ProtocolVersion}); err != nil {
		return err
	}
	if err := send(proto.InboundTypeJoinRoom, proto.JoinRoomData{RoomID: *room, Player: proto.PlayerData{Name: *name}}); err != nil {
		return err
	}
	if err := send(proto.InboundTypePlayerReady, proto.RoomData{RoomID: *room}); err != nil {
		return err
	}

	for {
		var f frame
		if err := wsjson.Read(ctx, conn, &f); err != nil {
			return fmt.Errorf("read: %w", err)
		}

		if f.Type == proto.OutboundTypeError && f.Error != nil {
			return fmt.Errorf("server error %s: %s", f.Error.Code, f.Error.Msg)
		}
		fmt.Printf("event=%s data=%s\n", f.Event, string(f.Data))

		switch f.Event {
		case proto.EventWelcome:
			var evt proto.WelcomeEvent
			if err := json.Unmarshal(f.Data, &evt); err == nil {
				fmt.Printf("Welcome: player=%s\n", evt.PlayerID)
			}
		case proto.EventCapacityRejected, proto.EventAlreadyStartedRejected:
			return fmt.Errorf("join rejected: %s", f.Event)
		case proto.EventRoomStarted:
			var evt proto.RoomStartedEvent
			if err := json.Unmarshal(f.Data, &evt); err != nil {
				return fmt.Errorf("unmarshal room-started: %w", err)
			}
			fmt.Printf("Started: room=%s reason=%s members=%d\n", evt.RoomID, evt.Reason, len(evt.Members))
			return nil
		}
	}
}
