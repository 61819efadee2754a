package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/polychat-server/internal/lang"
	"github.com/vovakirdan/polychat-server/internal/store"
)

// UserHandlers provides HTTP handlers for user operations.
type UserHandlers struct {
	store store.UserStore
	log   *zerolog.Logger
}

// NewUserHandlers creates a new user handlers instance.
func NewUserHandlers(st store.UserStore, logger *zerolog.Logger) *UserHandlers {
	return &UserHandlers{
		store: st,
		log:   logger,
	}
}

// CreateUserRequest represents the create user request body.
type CreateUserRequest struct {
	Username  string `json:"username" binding:"required,max=64"`
	Language  string `json:"language" binding:"required"`
	AvatarURL string `json:"avatarUrl" binding:"omitempty,url"`
}

// UserResponse represents a user in API responses.
type UserResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Language  string `json:"language"`
	AvatarURL string `json:"avatarUrl"`
	CreatedAt string `json:"createdAt"`
}

func userResponse(u *store.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Language:  u.Language,
		AvatarURL: u.AvatarURL,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
}

// CreateUser registers a participant and their reading language.
// POST /api/users
func (h *UserHandlers) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid create user request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	username := strings.TrimSpace(req.Username)
	if username == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "username is required"})
		return
	}
	if !lang.Valid(req.Language) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "language must be a BCP 47 tag"})
		return
	}

	user, err := h.store.CreateUser(c.Request.Context(), username, lang.Normalize(req.Language), req.AvatarURL)
	if err != nil {
		h.log.Error().Err(err).Str("username", username).Msg("failed to create user")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	h.log.Info().Str("user_id", user.ID).Str("language", user.Language).Msg("user created")
	c.JSON(http.StatusCreated, userResponse(user))
}

// GetUser returns a single user.
// GET /api/users/:id
func (h *UserHandlers) GetUser(c *gin.Context) {
	user, err := h.store.GetUser(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "user not found"})
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("user_id", c.Param("id")).Msg("failed to get user")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	c.JSON(http.StatusOK, userResponse(user))
}
