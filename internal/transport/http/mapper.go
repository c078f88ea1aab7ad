package http

import (
	"encoding/json"
	"math"

	"github.com/vovakirdan/arena-server/internal/core"
	"github.com/vovakirdan/arena-server/internal/proto"
	"github.com/vovakirdan/arena-server/internal/spawn"
)

// maxMapSide bounds a single map dimension before the tile count is computed.
const maxMapSide = 1 << 16

func badRequest(msg string) *proto.Error {
	return &proto.Error{Code: proto.ErrCodeBadRequest, Msg: msg}
}

// decode unmarshals a payload. An absent payload decodes as an empty object.
func decode(data json.RawMessage, v any) *proto.Error {
	if len(data) == 0 || string(data) == "null" {
		data = json.RawMessage("{}")
	}
	if err := json.Unmarshal(data, v); err != nil {
		return badRequest("invalid payload: " + err.Error())
	}
	return nil
}

func direction(s string) (core.Direction, *proto.Error) {
	d, ok := core.ParseDirection(s)
	if !ok {
		return "", badRequest("direction must be left or right")
	}
	return d, nil
}

// inboundToCommand validates an inbound frame. Invalid frames yield a protocol
// error for the sender and no command.
func inboundToCommand(inbound proto.Inbound) (*core.Command, *proto.Error) {
	switch inbound.Type {
	case proto.InboundTypeHello:
		var hello proto.HelloData
		if perr := decode(inbound.Data, &hello); perr != nil {
			return nil, perr
		}
		if hello.Protocol != 0 && hello.Protocol != proto.ProtocolVersion {
			return nil, &proto.Error{Code: proto.ErrCodeUnsupportedVersion, Msg: "unsupported protocol version"}
		}
		return &core.Command{
			Kind:  core.CommandHello,
			Hello: core.HelloRequest{Name: hello.Name, Token: hello.Token},
		}, nil

	case proto.InboundTypeJoinRoom:
		var join proto.JoinRoomData
		if perr := decode(inbound.Data, &join); perr != nil {
			return nil, perr
		}
		if join.RoomID == "" {
			return nil, badRequest("roomId is required")
		}
		dir, perr := direction(join.Player.Direction)
		if perr != nil {
			return nil, perr
		}
		if join.Player.Lives != nil && *join.Player.Lives < 0 {
			return nil, badRequest("lives must not be negative")
		}
		return &core.Command{
			Kind:     core.CommandJoinRoom,
			Room:     join.RoomID,
			PlayerID: join.Player.ID,
			Player: core.PlayerRecord{
				Name:      join.Player.Name,
				X:         join.Player.X,
				Y:         join.Player.Y,
				Direction: dir,
				Lives:     join.Player.Lives,
			},
		}, nil

	case proto.InboundTypeLeaveRoom, proto.InboundTypePlayerReady, proto.InboundTypeVoiceJoin:
		var room proto.RoomData
		if perr := decode(inbound.Data, &room); perr != nil {
			return nil, perr
		}
		if room.RoomID == "" {
			return nil, badRequest("roomId is required")
		}
		kind := core.CommandLeaveRoom
		switch inbound.Type {
		case proto.InboundTypePlayerReady:
			kind = core.CommandPlayerReady
		case proto.InboundTypeVoiceJoin:
			kind = core.CommandVoiceJoin
		}
		return &core.Command{Kind: kind, Room: room.RoomID, PlayerID: room.PlayerID}, nil

	case proto.InboundTypeStateUpdate:
		var upd proto.StateUpdateData
		if perr := decode(inbound.Data, &upd); perr != nil {
			return nil, perr
		}
		if upd.RoomID == "" {
			return nil, badRequest("roomId is required")
		}
		if upd.X == nil || upd.Y == nil {
			return nil, badRequest("x and y are required")
		}
		dir, perr := direction(upd.Direction)
		if perr != nil {
			return nil, perr
		}
		return &core.Command{
			Kind:     core.CommandStateUpdate,
			Room:     upd.RoomID,
			PlayerID: upd.PlayerID,
			State: core.StateUpdate{
				X:          *upd.X,
				Y:          *upd.Y,
				Direction:  dir,
				ActiveKeys: upd.ActiveKeys,
			},
		}, nil

	case proto.InboundTypeShoot:
		var shot proto.ShootData
		if perr := decode(inbound.Data, &shot); perr != nil {
			return nil, perr
		}
		if shot.RoomID == "" {
			return nil, badRequest("roomId is required")
		}
		if shot.X == nil || shot.Y == nil {
			return nil, badRequest("x and y are required")
		}
		dir, perr := direction(shot.Direction)
		if perr != nil {
			return nil, perr
		}
		return &core.Command{
			Kind:     core.CommandShoot,
			Room:     shot.RoomID,
			PlayerID: shot.PlayerID,
			State:    core.StateUpdate{X: *shot.X, Y: *shot.Y, Direction: dir},
		}, nil

	case proto.InboundTypePlayerDied:
		var died proto.PlayerDiedData
		if perr := decode(inbound.Data, &died); perr != nil {
			return nil, perr
		}
		if died.RoomID == "" {
			return nil, badRequest("roomId is required")
		}
		return &core.Command{
			Kind:     core.CommandPlayerDied,
			Room:     died.RoomID,
			PlayerID: died.PlayerID,
			KillerID: died.KillerID,
		}, nil

	case proto.InboundTypePlayerRespawned:
		var re proto.RespawnData
		if perr := decode(inbound.Data, &re); perr != nil {
			return nil, perr
		}
		if re.RoomID == "" {
			return nil, badRequest("roomId is required")
		}
		if re.X == nil || re.Y == nil {
			return nil, badRequest("x and y are required")
		}
		dir, perr := direction(re.Direction)
		if perr != nil {
			return nil, perr
		}
		return &core.Command{
			Kind:     core.CommandPlayerRespawned,
			Room:     re.RoomID,
			PlayerID: re.PlayerID,
			State:    core.StateUpdate{X: *re.X, Y: *re.Y, Direction: dir},
		}, nil

	case proto.InboundTypeMapData:
		var md proto.MapData
		if perr := decode(inbound.Data, &md); perr != nil {
			return nil, perr
		}
		m, perr := mapFromProto(md)
		if perr != nil {
			return nil, perr
		}
		return &core.Command{Kind: core.CommandMapData, Map: m}, nil

	default:
		return nil, &proto.Error{Code: proto.ErrCodeInvalidMessage, Msg: "unknown message type"}
	}
}

func mapFromProto(md proto.MapData) (spawn.Map, *proto.Error) {
	width, okW := wholeDimension(md.MapSize.Width)
	height, okH := wholeDimension(md.MapSize.Height)
	if !okW || !okH {
		return spawn.Map{}, badRequest("mapSize must be positive whole numbers")
	}

	var grid []bool
	switch {
	case md.Grid != nil:
		grid = md.Grid
	case md.TileIndices != nil:
		grid = spawn.FromTileIndices(md.TileIndices)
	default:
		return spawn.Map{}, badRequest("grid or tileIndices is required")
	}

	scale := proto.Scale{X: 1, Y: 1}
	if md.Scale != nil {
		scale = *md.Scale
	}

	return spawn.Map{
		Obstructed: grid,
		Width:      width,
		Height:     height,
		TileWidth:  md.TileSize.Width,
		TileHeight: md.TileSize.Height,
		ScaleX:     scale.X,
		ScaleY:     scale.Y,
	}, nil
}

func wholeDimension(v float64) (int, bool) {
	if v <= 0 || v > maxMapSide || v != math.Trunc(v) {
		return 0, false
	}
	return int(v), true
}

func playerToProto(p core.PlayerState) proto.Player {
	return proto.Player{
		ID:         p.ID,
		Name:       p.Name,
		X:          p.X,
		Y:          p.Y,
		Direction:  string(p.Direction),
		ActiveKeys: p.ActiveKeys,
		Lives:      p.Lives,
		Kills:      p.Kills,
		Active:     p.Active,
		RoomID:     p.RoomID,
	}
}

func playersToProto(ps []core.PlayerState) []proto.Player {
	out := make([]proto.Player, 0, len(ps))
	for _, p := range ps {
		out = append(out, playerToProto(p))
	}
	return out
}

func event(name string, data any) proto.Outbound {
	return proto.Outbound{Type: proto.OutboundTypeEvent, Event: name, Data: data}
}

func outboundFromEvent(ev *core.Event) proto.Outbound {
	switch ev.Kind {
	case core.EventWelcome:
		w := proto.WelcomeEvent{
			PlayerID: ev.PlayerID,
			Token:    ev.Token,
			Resumed:  ev.Resumed,
			RoomID:   ev.Room,
			Protocol: proto.ProtocolVersion,
		}
		if ev.Player != nil {
			w.Name = ev.Player.Name
		}
		return event(proto.EventWelcome, w)
	case core.EventRoomJoined:
		return event(proto.EventRoomJoined, proto.RoomJoinedEvent{
			RoomID:   ev.Room,
			PlayerID: ev.PlayerID,
			Capacity: ev.Capacity,
			Started:  ev.Started,
			Members:  playersToProto(ev.Members),
		})
	case core.EventNewPlayer, core.EventPlayerRespawn:
		name := proto.EventNewPlayer
		if ev.Kind == core.EventPlayerRespawn {
			name = proto.EventPlayerRespawn
		}
		var p proto.Player
		if ev.Player != nil {
			p = playerToProto(*ev.Player)
		}
		return event(name, proto.PlayerEvent{RoomID: ev.Room, PlayerID: ev.PlayerID, Player: p})
	case core.EventPositionUpdate, core.EventShooting:
		name := proto.EventPositionUpdate
		if ev.Kind == core.EventShooting {
			name = proto.EventShooting
		}
		return event(name, proto.PositionEvent{
			RoomID:     ev.Room,
			PlayerID:   ev.PlayerID,
			X:          ev.State.X,
			Y:          ev.State.Y,
			Direction:  string(ev.State.Direction),
			ActiveKeys: ev.State.ActiveKeys,
		})
	case core.EventDeathStatus:
		d := proto.DeathEvent{
			RoomID:      ev.Room,
			PlayerID:    ev.PlayerID,
			KillerID:    ev.KillerID,
			KillerKills: ev.KillerKills,
		}
		if ev.Player != nil {
			d.Active = ev.Player.Active
			d.Lives = ev.Player.Lives
		}
		return event(proto.EventDeathStatus, d)
	case core.EventRoomStarted:
		return event(proto.EventRoomStarted, proto.RoomStartedEvent{
			RoomID:  ev.Room,
			Reason:  ev.Reason,
			Members: playersToProto(ev.Members),
		})
	case core.EventSpawnPositions:
		positions := make([]proto.Point, 0, len(ev.Spawns))
		for _, p := range ev.Spawns {
			positions = append(positions, proto.Point{X: p.X, Y: p.Y})
		}
		return event(proto.EventValidSpawnPositions, proto.SpawnPositionsEvent{Positions: positions})
	case core.EventPlayerLeft:
		return event(proto.EventPlayerLeft, proto.PlayerLeftEvent{RoomID: ev.Room, PlayerID: ev.PlayerID, Reason: ev.Reason})
	case core.EventCapacityRejected:
		return event(proto.EventCapacityRejected, proto.RejectedEvent{RoomID: ev.Room, PlayerID: ev.PlayerID, Capacity: ev.Capacity})
	case core.EventAlreadyStartedRejected:
		return event(proto.EventAlreadyStartedRejected, proto.RejectedEvent{RoomID: ev.Room, PlayerID: ev.PlayerID})
	case core.EventVoiceCredentials:
		v := proto.VoiceCredentialsEvent{RoomID: ev.Room}
		if ev.Voice != nil {
			v.URL = ev.Voice.URL
			v.Token = ev.Voice.Token
			v.VoiceRoom = ev.Voice.RoomName
			v.Identity = ev.Voice.Identity
		}
		return event(proto.EventVoiceCredentials, v)
	case core.EventError:
		if ev.Error == nil {
			return proto.Outbound{Type: proto.OutboundTypeError, Error: &proto.Error{Code: "unknown", Msg: "unknown error"}}
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeError,
			Error: &proto.Error{Code: ev.Error.Code, Msg: ev.Error.Message},
		}
	default:
		return proto.Outbound{Type: proto.OutboundTypeEvent}
	}
}
