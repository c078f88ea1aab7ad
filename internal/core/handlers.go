package core

import (
	"time"

	"github.com/google/uuid"

	"github.com/vovakirdan/arena-server/internal/spawn"
)

func (h *Hub) handleCommand(c *Client, cmd *Command) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	switch cmd.Kind {
	case CommandHello:
		h.handleHello(c, cmd)
	case CommandJoinRoom:
		h.handleJoin(c, cmd)
	case CommandLeaveRoom:
		h.handleLeave(c, cmd)
	case CommandStateUpdate:
		h.handleStateUpdate(c, cmd)
	case CommandShoot:
		h.handleShoot(c, cmd)
	case CommandPlayerDied:
		h.handleDeath(c, cmd)
	case CommandPlayerRespawned:
		h.handleRespawn(c, cmd)
	case CommandPlayerReady:
		h.handleReady(c, cmd)
	case CommandMapData:
		h.handleMapData(c, cmd)
	case CommandVoiceJoin:
		h.handleVoiceJoin(c, cmd)
	default:
		h.reject(c, cmd.Room, coreError(ErrCodeBadRequest, "unknown command"))
	}
}

func (h *Hub) handleHello(c *Client, cmd *Command) {
	name := cmd.Hello.Name
	if c.playerID != "" {
		if name != "" {
			h.dir.Update(c.playerID, PlayerPatch{Name: &name})
		}
		h.welcome(c, false)
		return
	}

	if cmd.Hello.Token != "" && h.tokens != nil {
		pid, err := h.tokens.Validate(cmd.Hello.Token)
		if err != nil {
			h.log.Debug().Err(err).Str("client_id", c.ID).Msg("resume token rejected")
		} else if _, bound := h.sessions[pid]; bound {
			h.reject(c, "", coreError(ErrCodeSessionInUse, "player is connected elsewhere"))
			return
		} else if _, known := h.dir.Get(pid); known {
			h.bind(c, pid)
			delete(h.detached, pid)
			h.dir.setConnected(pid, true)
			if name != "" {
				h.dir.Update(pid, PlayerPatch{Name: &name})
			}
			h.log.Info().Str("client_id", c.ID).Str("player_id", pid).Msg("session resumed")
			h.welcome(c, true)
			return
		}
	}

	h.identify(c, name)
	h.welcome(c, false)
}

// identify issues a fresh identity for the connection.
func (h *Hub) identify(c *Client, name string) string {
	pid := uuid.NewString()
	h.dir.Update(pid, PlayerPatch{Name: &name})
	h.bind(c, pid)
	h.log.Debug().Str("client_id", c.ID).Str("player_id", pid).Msg("identity issued")
	return pid
}

func (h *Hub) bind(c *Client, pid string) {
	c.playerID = pid
	h.sessions[pid] = c
}

func (h *Hub) welcome(c *Client, resumed bool) {
	var token string
	if h.tokens != nil {
		var err error
		token, err = h.tokens.Issue(c.playerID)
		if err != nil {
			h.log.Warn().Err(err).Str("player_id", c.playerID).Msg("issue resume token")
		}
	}
	st, _ := h.dir.Get(c.playerID)
	h.deliver(c, &Event{
		Kind:     EventWelcome,
		Room:     st.RoomID,
		PlayerID: c.playerID,
		Player:   &st,
		Token:    token,
		Resumed:  resumed,
	})
}

func (h *Hub) handleJoin(c *Client, cmd *Command) {
	if cmd.Room == "" {
		h.reject(c, "", coreError(ErrCodeBadRequest, "roomId is required"))
		return
	}
	if cmd.PlayerID != "" && cmd.PlayerID != c.playerID {
		h.reject(c, cmd.Room, coreError(ErrCodeBadRequest, "playerId does not match this connection"))
		return
	}

	pid := c.playerID
	if pid == "" {
		pid = h.identify(c, cmd.Player.Name)
		h.welcome(c, false)
	}

	out := h.rooms.CreateOrJoin(cmd.Room, pid)
	switch out.Result {
	case JoinRejectedCapacity:
		h.metrics.joinsRejected.Add(1)
		h.log.Info().Str("room", cmd.Room).Str("player_id", pid).Msg("join rejected: room full")
		h.deliver(c, &Event{Kind: EventCapacityRejected, Room: cmd.Room, PlayerID: pid, Capacity: out.Room.Capacity()})
		return
	case JoinRejectedStarted:
		h.metrics.joinsRejected.Add(1)
		h.log.Info().Str("room", cmd.Room).Str("player_id", pid).Msg("join rejected: match running")
		h.deliver(c, &Event{Kind: EventAlreadyStartedRejected, Room: cmd.Room, PlayerID: pid})
		return
	}

	room := out.Room
	if out.Already {
		h.deliver(c, h.joinedEvent(room, pid))
		return
	}

	h.metrics.joinsAccepted.Add(1)
	if out.Left.Removed {
		h.afterLeave(out.Left, pid, LeaveReasonSwitched)
	}
	if out.Created {
		h.armReadyTimer(room)
		h.log.Info().Str("room", room.ID).Msg("room created")
	}

	h.dir.resetMatch(pid, h.opts.DefaultLives)
	rec := cmd.Player
	st := h.dir.Update(pid, PlayerPatch{
		Name:      &rec.Name,
		X:         rec.X,
		Y:         rec.Y,
		Direction: rec.Direction,
		Lives:     rec.Lives,
	})

	h.log.Info().Str("room", room.ID).Str("player_id", pid).Int("members", room.Len()).Msg("player joined")
	h.deliver(c, h.joinedEvent(room, pid))
	h.relay(room, pid, &Event{Kind: EventNewPlayer, Room: room.ID, PlayerID: pid, Player: &st})
}

func (h *Hub) joinedEvent(room *Room, pid string) *Event {
	return &Event{
		Kind:     EventRoomJoined,
		Room:     room.ID,
		PlayerID: pid,
		Members:  h.dir.Snapshot(room.Members()),
		Capacity: room.Capacity(),
		Started:  room.Started(),
	}
}

func (h *Hub) handleLeave(c *Client, cmd *Command) {
	pid := c.playerID
	if pid == "" {
		return
	}
	if cmd.PlayerID != "" && cmd.PlayerID != pid {
		h.reject(c, cmd.Room, coreError(ErrCodeBadRequest, "playerId does not match this connection"))
		return
	}
	out := h.rooms.Leave(cmd.Room, pid)
	if !out.Removed {
		h.log.Debug().Str("room", cmd.Room).Str("player_id", pid).Msg("leave ignored: not a member")
		return
	}
	h.log.Info().Str("room", cmd.Room).Str("player_id", pid).Msg("player left")
	h.afterLeave(out, pid, LeaveReasonLeft)
}

// afterLeave announces a completed departure and reports it to the recorder.
func (h *Hub) afterLeave(out LeaveOutcome, pid, reason string) {
	room := out.Room
	now := time.Now()
	if out.WasStarted && h.recorder != nil {
		st, _ := h.dir.Get(pid)
		h.recorder.PlayerLeft(room.ID, st, now)
	}
	if out.Deleted {
		if out.WasStarted && h.recorder != nil {
			h.recorder.MatchEnded(room.ID, now)
		}
		h.log.Info().Str("room", room.ID).Msg("room closed")
		return
	}
	h.broadcast(room, &Event{Kind: EventPlayerLeft, Room: room.ID, PlayerID: pid, Reason: reason})
	if out.Started {
		h.announceStart(room, StartReasonReady)
	}
}

// member resolves the sender's identity and checks that it belongs to cmd.Room.
// A mismatched playerId is always answered with an error; a non-member is
// answered only when reply is set, otherwise the command is silently dropped.
func (h *Hub) member(c *Client, cmd *Command, reply bool) (string, *Room, bool) {
	pid := c.playerID
	if pid != "" && cmd.PlayerID != "" && cmd.PlayerID != pid {
		h.reject(c, cmd.Room, coreError(ErrCodeBadRequest, "playerId does not match this connection"))
		return "", nil, false
	}
	var room *Room
	if pid != "" {
		room = h.rooms.Get(cmd.Room)
	}
	if room == nil || !room.Has(pid) {
		if reply {
			h.reject(c, cmd.Room, coreError(ErrCodeNotInRoom, "not a member of this room"))
		} else {
			h.metrics.commandsDenied.Add(1)
			h.log.Debug().Str("room", cmd.Room).Str("client_id", c.ID).Str("command", cmd.Kind.String()).Msg("dropped: not a member")
		}
		return "", nil, false
	}
	return pid, room, true
}

func (h *Hub) handleStateUpdate(c *Client, cmd *Command) {
	pid, room, ok := h.member(c, cmd, false)
	if !ok {
		return
	}
	x, y := cmd.State.X, cmd.State.Y
	st := h.dir.Update(pid, PlayerPatch{
		X:          &x,
		Y:          &y,
		Direction:  cmd.State.Direction,
		ActiveKeys: cmd.State.ActiveKeys,
	})
	h.relay(room, pid, &Event{
		Kind:     EventPositionUpdate,
		Room:     room.ID,
		PlayerID: pid,
		State: StateUpdate{
			X:          st.X,
			Y:          st.Y,
			Direction:  st.Direction,
			ActiveKeys: st.ActiveKeys,
		},
	})
}

func (h *Hub) handleShoot(c *Client, cmd *Command) {
	pid, room, ok := h.member(c, cmd, false)
	if !ok {
		return
	}
	shot := cmd.State
	if shot.Direction == "" {
		st, _ := h.dir.Get(pid)
		shot.Direction = st.Direction
	}
	h.relay(room, pid, &Event{Kind: EventShooting, Room: room.ID, PlayerID: pid, State: shot})
}

func (h *Hub) handleDeath(c *Client, cmd *Command) {
	pid, room, ok := h.member(c, cmd, false)
	if !ok {
		return
	}
	victim, _ := h.dir.Deactivate(pid)
	ev := &Event{Kind: EventDeathStatus, Room: room.ID, PlayerID: pid, Player: &victim}
	if k := cmd.KillerID; k != "" && k != pid && room.Has(k) {
		killer, _ := h.dir.AddKill(k)
		ev.KillerID = k
		ev.KillerKills = killer.Kills
	}
	h.log.Debug().Str("room", room.ID).Str("player_id", pid).Str("killer_id", ev.KillerID).Int("lives", victim.Lives).Msg("player died")
	h.relay(room, pid, ev)
}

func (h *Hub) handleRespawn(c *Client, cmd *Command) {
	pid, room, ok := h.member(c, cmd, false)
	if !ok {
		return
	}
	x, y := cmd.State.X, cmd.State.Y
	h.dir.Update(pid, PlayerPatch{X: &x, Y: &y, Direction: cmd.State.Direction})
	st, _ := h.dir.Activate(pid)
	h.relay(room, pid, &Event{Kind: EventPlayerRespawn, Room: room.ID, PlayerID: pid, Player: &st})
}

func (h *Hub) handleReady(c *Client, cmd *Command) {
	pid, room, ok := h.member(c, cmd, false)
	if !ok {
		return
	}
	if room.Started() {
		return
	}
	room.MarkReady(pid)
	h.log.Debug().Str("room", room.ID).Str("player_id", pid).Int("ready", room.ReadyCount()).Int("members", room.Len()).Msg("player ready")
	if room.TryStart() {
		h.announceStart(room, StartReasonReady)
	}
}

// announceStart tells every member that the match started. Callers guarantee
// it runs once per room, on the waiting-to-started transition.
func (h *Hub) announceStart(room *Room, reason string) {
	room.stopTimer()
	h.metrics.roomsStarted.Add(1)
	members := h.dir.Snapshot(room.Members())
	h.log.Info().Str("room", room.ID).Str("reason", reason).Int("members", len(members)).Msg("room started")
	h.broadcast(room, &Event{Kind: EventRoomStarted, Room: room.ID, Reason: reason, Members: members})
	if h.recorder != nil {
		h.recorder.MatchStarted(room.ID, members, time.Now())
	}
}

func (h *Hub) handleMapData(c *Client, cmd *Command) {
	if err := cmd.Map.Validate(h.opts.MaxMapTiles); err != nil {
		h.reject(c, "", coreError(ErrCodeBadRequest, err.Error()))
		return
	}
	// Without a room the whole directory counts as occupied.
	var ids []string
	if pid := c.playerID; pid != "" {
		if roomID, ok := h.rooms.RoomOf(pid); ok {
			ids = h.rooms.Get(roomID).Members()
		}
	}
	spawns := spawn.Resolve(cmd.Map, h.dir.Positions(ids))
	h.deliver(c, &Event{Kind: EventSpawnPositions, PlayerID: c.playerID, Spawns: spawns})
}

func (h *Hub) handleVoiceJoin(c *Client, cmd *Command) {
	pid, room, ok := h.member(c, cmd, true)
	if !ok {
		return
	}
	if h.voice == nil {
		h.reject(c, room.ID, coreError(ErrCodeVoiceDisabled, "voice is not configured"))
		return
	}
	st, _ := h.dir.Get(pid)
	info, err := h.voice.JoinInfo(h.ctx, room.ID, pid, st.Name)
	if err != nil {
		h.log.Error().Err(err).Str("room", room.ID).Str("player_id", pid).Msg("voice credentials")
		h.reject(c, room.ID, coreError(ErrCodeVoiceError, "voice credentials unavailable"))
		return
	}
	h.deliver(c, &Event{Kind: EventVoiceCredentials, Room: room.ID, PlayerID: pid, Voice: info})
}

func (h *Hub) handleDisconnect(c *Client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.Events)

	pid := c.playerID
	if pid == "" {
		return
	}
	if h.sessions[pid] == c {
		delete(h.sessions, pid)
	}

	if h.opts.ReconnectGrace > 0 && h.tokens != nil {
		h.seq++
		h.detached[pid] = h.seq
		h.dir.setConnected(pid, false)
		h.after(h.opts.ReconnectGrace, timerFired{kind: timerReconnect, key: pid, generation: h.seq})
		h.log.Info().Str("player_id", pid).Dur("grace", h.opts.ReconnectGrace).Msg("player detached")
		return
	}
	h.dropPlayer(pid, LeaveReasonDisconnect)
}

// dropPlayer removes a player from its room and from the directory.
func (h *Hub) dropPlayer(pid, reason string) {
	if roomID, ok := h.rooms.RoomOf(pid); ok {
		out := h.rooms.Leave(roomID, pid)
		h.afterLeave(out, pid, reason)
	}
	delete(h.detached, pid)
	h.dir.Remove(pid)
	h.log.Info().Str("player_id", pid).Str("reason", reason).Msg("player removed")
}
