package core

// EventKind is a notification the relay delivers to clients.
type EventKind int

const (
	// EventMessage carries a message translated for its recipient.
	EventMessage EventKind = iota
	// EventUserJoined tells room members that someone joined.
	EventUserJoined
	// EventUserLeft is part of the protocol but not emitted yet.
	EventUserLeft
)

func (k EventKind) String() string {
	switch k {
	case EventMessage:
		return "message"
	case EventUserJoined:
		return "user-joined"
	case EventUserLeft:
		return "user-left"
	default:
		return "unknown"
	}
}

// Participant identifies a user in join/leave notifications.
type Participant struct {
	UserID   string
	Username string
	Avatar   string
}

// Event is sent to clients to describe what happened in a room.
type Event struct {
	Kind    EventKind
	RoomID  string
	User    Participant // EventUserJoined, EventUserLeft
	Message Message     // EventMessage
}
