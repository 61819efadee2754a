package core

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandJoin places the connection in a room under a user identity.
	CommandJoin CommandKind = iota
	// CommandMessage sends text to every member of a room.
	CommandMessage
)

// Command represents an action requested by a client.
type Command struct {
	Kind   CommandKind
	RoomID string
	UserID string
	Text   string
}
