package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/polychat-server/internal/store"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

// RoomHandlers provides HTTP handlers for room management endpoints.
type RoomHandlers struct {
	rooms    store.RoomStore
	messages store.MessageStore
	log      *zerolog.Logger
}

// NewRoomHandlers creates a new room handlers instance.
func NewRoomHandlers(st store.Store, logger *zerolog.Logger) *RoomHandlers {
	return &RoomHandlers{
		rooms:    st,
		messages: st,
		log:      logger,
	}
}

// CreateRoomRequest represents the create room request body.
type CreateRoomRequest struct {
	Name string `json:"name" binding:"required,min=1,max=64"`
}

// RoomResponse represents a room in API responses.
type RoomResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"createdAt"`
}

// MessageResponse is a persisted original in the history endpoint.
type MessageResponse struct {
	ID               string `json:"id"`
	RoomID           string `json:"roomId"`
	SenderID         string `json:"senderId"`
	SenderName       string `json:"senderName"`
	OriginalLanguage string `json:"originalLanguage"`
	OriginalText     string `json:"originalText"`
	CreatedAt        string `json:"createdAt"`
}

// CreateRoom handles room creation.
// POST /api/rooms
func (h *RoomHandlers) CreateRoom(c *gin.Context) {
	var req CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid create room request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "name is required"})
		return
	}

	room, err := h.rooms.CreateRoom(c.Request.Context(), name)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			c.JSON(http.StatusConflict, ErrorResponse{Error: "room with this name already exists"})
			return
		}
		h.log.Error().Err(err).Str("room_name", name).Msg("failed to create room")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	h.log.Info().Str("room_name", room.Name).Str("room_id", room.ID).Msg("room created successfully")
	c.JSON(http.StatusCreated, RoomResponse{
		ID:        room.ID,
		Name:      room.Name,
		CreatedAt: room.CreatedAt.Format(time.RFC3339),
	})
}

// ListRooms handles listing rooms.
// GET /api/rooms
func (h *RoomHandlers) ListRooms(c *gin.Context) {
	rooms, err := h.rooms.ListRooms(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list rooms")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	response := make([]RoomResponse, 0, len(rooms))
	for _, room := range rooms {
		response = append(response, RoomResponse{
			ID:        room.ID,
			Name:      room.Name,
			CreatedAt: room.CreatedAt.Format(time.RFC3339),
		})
	}

	h.log.Debug().Int("room_count", len(rooms)).Msg("rooms listed successfully")
	c.JSON(http.StatusOK, response)
}

// ListMessages returns the latest persisted originals of a room, oldest first.
// GET /api/rooms/:id/messages?limit=N
func (h *RoomHandlers) ListMessages(c *gin.Context) {
	limit := defaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "limit must be a positive integer"})
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	roomID := c.Param("id")
	messages, err := h.messages.ListMessages(c.Request.Context(), roomID, limit)
	if err != nil {
		h.log.Error().Err(err).Str("room_id", roomID).Msg("failed to list messages")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	response := make([]MessageResponse, 0, len(messages))
	for _, m := range messages {
		response = append(response, MessageResponse{
			ID:               m.ID,
			RoomID:           m.RoomID,
			SenderID:         m.SenderID,
			SenderName:       m.SenderName,
			OriginalLanguage: m.OriginalLanguage,
			OriginalText:     m.OriginalText,
			CreatedAt:        m.CreatedAt.Format(time.RFC3339Nano),
		})
	}
	c.JSON(http.StatusOK, response)
}
