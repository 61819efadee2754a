package core

import "time"

// Message is a chat message rendered for one recipient.
type Message struct {
	ID               string
	RoomID           string
	SenderID         string
	SenderName       string
	Avatar           string
	OriginalLanguage string
	OriginalText     string
	// Text is OriginalText translated into TargetLanguage.
	Text           string
	TargetLanguage string
	CreatedAt      time.Time
}
