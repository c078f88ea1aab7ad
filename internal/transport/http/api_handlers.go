package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/arena-server/internal/core"
	"github.com/vovakirdan/arena-server/internal/proto"
	"github.com/vovakirdan/arena-server/internal/store"
)

const (
	defaultMatchLimit = 50
	maxMatchLimit     = 200
)

// APIHandlers provides read-only HTTP handlers for rooms, stats and match history.
type APIHandlers struct {
	hub     *core.Hub
	matches store.MatchStore // nil when match history is disabled
	log     *zerolog.Logger
}

// NewAPIHandlers creates a new API handlers instance.
func NewAPIHandlers(hub *core.Hub, matches store.MatchStore, logger *zerolog.Logger) *APIHandlers {
	return &APIHandlers{
		hub:     hub,
		matches: matches,
		log:     logger,
	}
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// RoomResponse represents a live room in API responses.
type RoomResponse struct {
	ID          string         `json:"id"`
	Capacity    int            `json:"capacity"`
	MemberCount int            `json:"member_count"`
	ReadyCount  int            `json:"ready_count"`
	Started     bool           `json:"started"`
	CreatedAt   string         `json:"created_at"`
	Members     []proto.Player `json:"members,omitempty"`
}

// MatchPlayerResponse is a participant of a recorded match.
type MatchPlayerResponse struct {
	PlayerID string  `json:"player_id"`
	Name     string  `json:"name"`
	Kills    int     `json:"kills"`
	Lives    int     `json:"lives"`
	LeftAt   *string `json:"left_at,omitempty"`
}

// MatchResponse represents a recorded match.
type MatchResponse struct {
	ID        int64                 `json:"id"`
	RoomID    string                `json:"room_id"`
	StartedAt string                `json:"started_at"`
	EndedAt   *string               `json:"ended_at,omitempty"`
	Players   []MatchPlayerResponse `json:"players,omitempty"`
}

// Health reports liveness.
// GET /health
func (h *APIHandlers) Health(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// ListRooms lists live rooms.
// GET /api/rooms
func (h *APIHandlers) ListRooms(c *gin.Context) {
	rooms, err := h.hub.Rooms(c.Request.Context())
	if err != nil {
		h.hubUnavailable(c, err)
		return
	}
	resp := make([]RoomResponse, 0, len(rooms))
	for _, r := range rooms {
		resp = append(resp, roomResponse(r, false))
	}
	c.JSON(http.StatusOK, resp)
}

// GetRoom returns one live room with its members.
// GET /api/rooms/:id
func (h *APIHandlers) GetRoom(c *gin.Context) {
	room, ok, err := h.hub.Room(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.hubUnavailable(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "room not found"})
		return
	}
	c.JSON(http.StatusOK, roomResponse(room, true))
}

// GetPlayer returns a player's directory entry.
// GET /api/players/:id
func (h *APIHandlers) GetPlayer(c *gin.Context) {
	player, ok, err := h.hub.Player(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.hubUnavailable(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "player not found"})
		return
	}
	c.JSON(http.StatusOK, playerToProto(player))
}

// Stats returns hub counters.
// GET /api/stats
func (h *APIHandlers) Stats(c *gin.Context) {
	stats, err := h.hub.Stats(c.Request.Context())
	if err != nil {
		h.hubUnavailable(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ListMatches lists recorded matches, newest first.
// GET /api/matches?limit=n
func (h *APIHandlers) ListMatches(c *gin.Context) {
	if h.matches == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "match history is disabled"})
		return
	}

	limit := defaultMatchLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "limit must be a positive integer"})
			return
		}
		limit = min(n, maxMatchLimit)
	}

	matches, err := h.matches.ListMatches(c.Request.Context(), limit)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list matches")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	resp := make([]MatchResponse, 0, len(matches))
	for _, m := range matches {
		resp = append(resp, matchResponse(m))
	}
	c.JSON(http.StatusOK, resp)
}

// GetMatch returns one recorded match with its players.
// GET /api/matches/:id
func (h *APIHandlers) GetMatch(c *gin.Context) {
	if h.matches == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "match history is disabled"})
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid match id"})
		return
	}

	m, err := h.matches.GetMatch(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "match not found"})
			return
		}
		h.log.Error().Err(err).Int64("match_id", id).Msg("failed to get match")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	c.JSON(http.StatusOK, matchResponse(m))
}

func (h *APIHandlers) hubUnavailable(c *gin.Context, err error) {
	h.log.Warn().Err(err).Str("path", c.Request.URL.Path).Msg("hub query failed")
	c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "hub unavailable"})
}

func roomResponse(r core.RoomInfo, withMembers bool) RoomResponse {
	resp := RoomResponse{
		ID:          r.ID,
		Capacity:    r.Capacity,
		MemberCount: len(r.Members),
		ReadyCount:  r.ReadyCount,
		Started:     r.Started,
		CreatedAt:   r.CreatedAt.UTC().Format(time.RFC3339),
	}
	if withMembers {
		resp.Members = playersToProto(r.Members)
	}
	return resp
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

func matchResponse(m *store.Match) MatchResponse {
	resp := MatchResponse{
		ID:        m.ID,
		RoomID:    m.RoomID,
		StartedAt: m.StartedAt.UTC().Format(time.RFC3339),
		EndedAt:   formatTime(m.EndedAt),
	}
	for _, p := range m.Players {
		resp.Players = append(resp.Players, MatchPlayerResponse{
			PlayerID: p.PlayerID,
			Name:     p.Name,
			Kills:    p.Kills,
			Lives:    p.Lives,
			LeftAt:   formatTime(p.LeftAt),
		})
	}
	return resp
}
