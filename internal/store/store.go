package store

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a unique constraint is violated.
	ErrConflict = errors.New("already exists")
)

// User is a chat participant with a preferred reading language.
type User struct {
	ID        string
	Username  string
	Language  string
	AvatarURL string
	CreatedAt time.Time
}

// Room is a named grouping of connections.
type Room struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// Message is the immutable original of a chat message.
type Message struct {
	ID               string
	RoomID           string
	SenderID         string
	SenderName       string
	OriginalLanguage string
	OriginalText     string
	CreatedAt        time.Time
}

// NewMessage carries the fields supplied by the sender; the store assigns ID and CreatedAt.
type NewMessage struct {
	RoomID           string
	SenderID         string
	SenderName       string
	OriginalLanguage string
	OriginalText     string
}

// UserStore manages user profiles.
type UserStore interface {
	// CreateUser stores a new user and returns it with ID and CreatedAt set.
	CreateUser(ctx context.Context, username, language, avatarURL string) (*User, error)

	// GetUser returns ErrNotFound when id is unknown.
	GetUser(ctx context.Context, id string) (*User, error)
}

// RoomStore manages rooms.
type RoomStore interface {
	// CreateRoom returns ErrConflict when the name is taken.
	CreateRoom(ctx context.Context, name string) (*Room, error)

	// GetRoom returns ErrNotFound when id is unknown.
	GetRoom(ctx context.Context, id string) (*Room, error)

	// ListRooms returns all rooms ordered by creation time.
	ListRooms(ctx context.Context) ([]Room, error)
}

// MessageStore is append-only storage of original messages.
type MessageStore interface {
	CreateMessage(ctx context.Context, msg NewMessage) (*Message, error)

	// ListMessages returns up to limit latest messages of a room, oldest first.
	ListMessages(ctx context.Context, roomID string, limit int) ([]Message, error)
}

// Store combines all persistence interfaces.
type Store interface {
	UserStore
	RoomStore
	MessageStore

	Close() error
}
