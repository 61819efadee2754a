package proto

import (
	"encoding/json"
	"time"
)

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

const (
	EventJoin       = "join"
	EventMessage    = "message"
	EventUserJoined = "user-joined"
	// EventUserLeft is reserved. The server does not send it yet.
	EventUserLeft = "user-left"
)

// JoinData places the connection in a room under a user identity.
type JoinData struct {
	RoomID string `json:"roomId"`
	UserID string `json:"userId"`
}

// MessageData is a chat message from the client.
type MessageData struct {
	RoomID string `json:"roomId"`
	Text   string `json:"text"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// UserJoined notifies room members that someone joined.
type UserJoined struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

// UserLeft notifies room members that someone left.
type UserLeft struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

// ChatMessage is a message translated for one recipient.
type ChatMessage struct {
	ID               string    `json:"id"`
	RoomID           string    `json:"roomId"`
	SenderID         string    `json:"senderId"`
	SenderName       string    `json:"senderName"`
	Avatar           string    `json:"avatar"`
	OriginalLanguage string    `json:"originalLanguage"`
	Text             string    `json:"text"`
	OriginalText     string    `json:"originalText"`
	CreatedAt        time.Time `json:"createdAt"`
	TargetLanguage   string    `json:"targetLanguage"`
}
