package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/vovakirdan/polychat-server/internal/store"
	"github.com/vovakirdan/polychat-server/internal/utils"
)

// SQLiteStore implements store.Store for SQLite.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// New opens the database at dbPath and applies the schema.
func New(dbPath string) (*SQLiteStore, error) {
	return NewWithSetup(dbPath, Migrate)
}

// NewWithSetup opens the database and runs setup before first use.
// Tests pass Migrate (or a custom schema) together with ":memory:".
func NewWithSetup(dbPath string, setup func(*sql.DB) error) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection; it also keeps ":memory:" shared.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	if setup != nil {
		if err := setup(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("setup: %w", err)
		}
	}

	return &SQLiteStore{db: db, now: time.Now}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}

// ==== UserStore implementation ====

// CreateUser stores a new user.
func (s *SQLiteStore) CreateUser(ctx context.Context, username, language, avatarURL string) (*store.User, error) {
	user := &store.User{
		ID:        utils.NewID(),
		Username:  username,
		Language:  language,
		AvatarURL: avatarURL,
		CreatedAt: s.now().UTC(),
	}

	query := `
		INSERT INTO users (id, username, language, avatar_url, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	if _, err := s.db.ExecContext(ctx, query, user.ID, user.Username, user.Language, user.AvatarURL, user.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("insert user: %w", store.ErrConflict)
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	return user, nil
}

// GetUser retrieves a user by ID.
func (s *SQLiteStore) GetUser(ctx context.Context, id string) (*store.User, error) {
	query := `
		SELECT id, username, language, avatar_url, created_at
		FROM users
		WHERE id = ?
	`
	var user store.User
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Username,
		&user.Language,
		&user.AvatarURL,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", id, store.ErrNotFound)
		}
		return nil, fmt.Errorf("query user: %w", err)
	}

	return &user, nil
}

// ==== RoomStore implementation ====

// CreateRoom creates a new room with a unique name.
func (s *SQLiteStore) CreateRoom(ctx context.Context, name string) (*store.Room, error) {
	room := &store.Room{
		ID:        utils.NewID(),
		Name:      name,
		CreatedAt: s.now().UTC(),
	}

	query := `
		INSERT INTO rooms (id, name, created_at)
		VALUES (?, ?, ?)
	`
	if _, err := s.db.ExecContext(ctx, query, room.ID, room.Name, room.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("insert room %q: %w", name, store.ErrConflict)
		}
		return nil, fmt.Errorf("insert room: %w", err)
	}

	return room, nil
}

// GetRoom retrieves a room by ID.
func (s *SQLiteStore) GetRoom(ctx context.Context, id string) (*store.Room, error) {
	query := `
		SELECT id, name, created_at
		FROM rooms
		WHERE id = ?
	`
	var room store.Room
	err := s.db.QueryRowContext(ctx, query, id).Scan(&room.ID, &room.Name, &room.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("room %s: %w", id, store.ErrNotFound)
		}
		return nil, fmt.Errorf("query room: %w", err)
	}

	return &room, nil
}

// ListRooms lists every room, oldest first.
func (s *SQLiteStore) ListRooms(ctx context.Context) ([]store.Room, error) {
	query := `
		SELECT id, name, created_at
		FROM rooms
		ORDER BY created_at ASC, rowid ASC
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query rooms: %w", err)
	}
	defer rows.Close()

	rooms := make([]store.Room, 0)
	for rows.Next() {
		var room store.Room
		if err := rows.Scan(&room.ID, &room.Name, &room.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan room: %w", err)
		}
		rooms = append(rooms, room)
	}

	return rooms, rows.Err()
}

// ==== MessageStore implementation ====

// CreateMessage persists an original message and assigns its ID and timestamp.
func (s *SQLiteStore) CreateMessage(ctx context.Context, in store.NewMessage) (*store.Message, error) {
	msg := &store.Message{
		ID:               utils.NewID(),
		RoomID:           in.RoomID,
		SenderID:         in.SenderID,
		SenderName:       in.SenderName,
		OriginalLanguage: in.OriginalLanguage,
		OriginalText:     in.OriginalText,
		CreatedAt:        s.now().UTC(),
	}

	query := `
		INSERT INTO messages (id, room_id, sender_id, sender_name, original_language, original_text, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		msg.ID, msg.RoomID, msg.SenderID, msg.SenderName, msg.OriginalLanguage, msg.OriginalText, msg.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}

	return msg, nil
}

// ListMessages returns the latest limit messages of a room in chronological order.
func (s *SQLiteStore) ListMessages(ctx context.Context, roomID string, limit int) ([]store.Message, error) {
	if limit <= 0 {
		return []store.Message{}, nil
	}

	query := `
		SELECT id, room_id, sender_id, sender_name, original_language, original_text, created_at
		FROM messages
		WHERE room_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, query, roomID, limit)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	messages := make([]store.Message, 0, limit)
	for rows.Next() {
		var msg store.Message
		if err := rows.Scan(
			&msg.ID,
			&msg.RoomID,
			&msg.SenderID,
			&msg.SenderName,
			&msg.OriginalLanguage,
			&msg.OriginalText,
			&msg.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}

	// Reverse to chronological order.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

var _ store.Store = (*SQLiteStore)(nil)
