package core

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"github.com/vovakirdan/polychat-server/internal/lang"
	"github.com/vovakirdan/polychat-server/internal/store"
)

// DefaultFanoutLimit bounds concurrent translations per room.
const DefaultFanoutLimit = 8

// UserLookup resolves user profiles. It returns store.ErrNotFound for unknown ids.
type UserLookup interface {
	GetUser(ctx context.Context, id string) (*store.User, error)
}

// MessageWriter persists original messages.
type MessageWriter interface {
	CreateMessage(ctx context.Context, msg store.NewMessage) (*store.Message, error)
}

// Translator translates text and always returns a usable string.
type Translator interface {
	Translate(ctx context.Context, text, source, target string) string
}

// RelayConfig tunes the relay.
type RelayConfig struct {
	BaseLanguage string
	FanoutLimit  int
}

// Relay handles join, message and disconnect events and fans messages out to
// room members, translated per recipient.
type Relay struct {
	registry    *Registry
	users       UserLookup
	messages    MessageWriter
	translator  Translator
	base        string
	fanoutLimit int64
	log         *zerolog.Logger

	limitersMu sync.Mutex
	limiters   map[string]*roomLimiter

	// mu is held shared by Join and Message and exclusively by Close.
	mu       sync.RWMutex
	closed   bool
	inflight sync.WaitGroup
}

// roomLimiter bounds a room's concurrent translations. refs counts goroutines
// holding it so it outlives a room that empties while they run.
type roomLimiter struct {
	sem  *semaphore.Weighted
	refs int
}

// NewRelay wires the relay to its collaborators.
func NewRelay(registry *Registry, users UserLookup, messages MessageWriter, translator Translator, cfg RelayConfig, logger *zerolog.Logger) *Relay {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	limit := cfg.FanoutLimit
	if limit <= 0 {
		limit = DefaultFanoutLimit
	}
	return &Relay{
		registry:    registry,
		users:       users,
		messages:    messages,
		translator:  translator,
		base:        lang.Resolve(cfg.BaseLanguage, lang.Default),
		fanoutLimit: int64(limit),
		log:         logger,
		limiters:    make(map[string]*roomLimiter),
	}
}

// Handle dispatches a decoded client command.
func (r *Relay) Handle(ctx context.Context, client *Client, cmd *Command) error {
	switch cmd.Kind {
	case CommandJoin:
		return r.Join(ctx, client, cmd.RoomID, cmd.UserID)
	case CommandMessage:
		return r.Message(ctx, client, cmd.RoomID, cmd.Text)
	default:
		return coreError(ErrCodeUnknownEvent, "unknown command")
	}
}

// Join registers client in roomID as userID and announces it to the other members.
// A failed or empty user lookup degrades to the base language.
func (r *Relay) Join(ctx context.Context, client *Client, roomID, userID string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return coreError(ErrCodeShuttingDown, "relay is shutting down")
	}

	roomID = strings.TrimSpace(roomID)
	userID = strings.TrimSpace(userID)
	if roomID == "" || userID == "" {
		return coreError(ErrCodeBadRequest, "join requires roomId and userId")
	}

	who := Participant{UserID: userID}
	language := r.base
	user, err := r.users.GetUser(ctx, userID)
	switch {
	case err == nil:
		who.Username = user.Username
		who.Avatar = user.AvatarURL
		language = lang.Resolve(user.Language, r.base)
	case errors.Is(err, store.ErrNotFound):
		r.log.Warn().Str("user_id", userID).Str("conn_id", client.ID).Msg("unknown user on join, using base language")
	default:
		r.log.Error().Err(err).Str("user_id", userID).Msg("user lookup failed on join, using base language")
	}

	if previous := r.registry.Join(client, roomID, userID, language); previous != "" && previous != roomID {
		r.releaseLimiterIfEmpty(previous)
	}

	r.log.Info().
		Str("conn_id", client.ID).
		Str("room_id", roomID).
		Str("user_id", userID).
		Str("username", who.Username).
		Str("language", language).
		Msg("joined room")

	announcement := &Event{Kind: EventUserJoined, RoomID: roomID, User: who}
	for _, m := range r.registry.MembersOf(roomID) {
		if m.ConnID == client.ID {
			continue
		}
		if !m.Client.enqueue(readyDelivery(announcement)) {
			r.evict(m)
		}
	}
	return nil
}

// Message persists text and delivers it to every member of roomID, translated
// into each member's language. Delivery slots are reserved before this call
// returns, so each recipient sees one sender's messages in send order.
func (r *Relay) Message(ctx context.Context, client *Client, roomID, text string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return coreError(ErrCodeShuttingDown, "relay is shutting down")
	}

	sender, joined := r.registry.Lookup(client.ID)
	if !joined || sender.UserID == "" {
		return coreError(ErrCodeNotJoined, "message from connection without identity")
	}
	roomID = strings.TrimSpace(roomID)
	if roomID == "" || text == "" {
		return coreError(ErrCodeBadRequest, "message requires roomId and text")
	}

	from := r.resolveSender(ctx, sender)

	saved, err := r.messages.CreateMessage(ctx, store.NewMessage{
		RoomID:           roomID,
		SenderID:         sender.UserID,
		SenderName:       from.name,
		OriginalLanguage: from.language,
		OriginalText:     text,
	})
	if err != nil {
		return &CoreError{Code: ErrCodePersistFailed, Message: "persist message", Err: err}
	}

	r.log.Info().
		Str("message_id", saved.ID).
		Str("room_id", roomID).
		Str("sender_id", sender.UserID).
		Str("language", from.language).
		Msg("message saved")

	original := Message{
		ID:               saved.ID,
		RoomID:           roomID,
		SenderID:         sender.UserID,
		SenderName:       from.name,
		Avatar:           from.avatar,
		OriginalLanguage: from.language,
		OriginalText:     text,
		CreatedAt:        saved.CreatedAt,
	}

	// Translations outlive the sender's connection.
	fanCtx := context.WithoutCancel(ctx)
	for _, m := range r.registry.MembersOf(roomID) {
		r.deliver(fanCtx, m, original)
	}
	return nil
}

// Disconnect forgets client and stops its delivery. It is safe to call more than once.
func (r *Relay) Disconnect(client *Client) {
	if m, ok := r.registry.Leave(client.ID); ok {
		r.releaseLimiterIfEmpty(m.RoomID)
		r.log.Info().Str("conn_id", client.ID).Str("room_id", m.RoomID).Str("user_id", m.UserID).Msg("left room")
	}
	client.Close()
}

// Wait blocks until in-flight translations have been delivered.
func (r *Relay) Wait() {
	r.inflight.Wait()
}

// Close rejects further joins and messages, waits for calls already running,
// then waits for their translations to be delivered.
func (r *Relay) Close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()

	r.inflight.Wait()
}

// evict disconnects a member whose outbound queue is full. A recipient is
// never left joined with a gap in its stream.
func (r *Relay) evict(m Member) {
	select {
	case <-m.Client.Done():
		// Already disconnected after the member snapshot was taken.
		return
	default:
	}
	r.log.Warn().
		Str("conn_id", m.ConnID).
		Str("room_id", m.RoomID).
		Str("user_id", m.UserID).
		Msg("outbound queue full, disconnecting slow client")
	r.Disconnect(m.Client)
}

type senderProfile struct {
	name     string
	avatar   string
	language string
}

func (r *Relay) resolveSender(ctx context.Context, sender Member) senderProfile {
	user, err := r.users.GetUser(ctx, sender.UserID)
	if err != nil {
		r.log.Warn().Err(err).Str("user_id", sender.UserID).Msg("sender lookup failed, using joined profile")
		return senderProfile{name: sender.UserID, language: sender.Language}
	}
	return senderProfile{
		name:     user.Username,
		avatar:   user.AvatarURL,
		language: lang.Resolve(user.Language, r.base),
	}
}

func (r *Relay) deliver(ctx context.Context, member Member, original Message) {
	d := newDelivery()
	if !member.Client.enqueue(d) {
		r.evict(member)
		return
	}

	target := member.Language
	if target == original.OriginalLanguage {
		d.resolve(messageEvent(original, original.OriginalText, target))
		return
	}

	limiter := r.acquireLimiter(original.RoomID)
	r.inflight.Add(1)
	go func() {
		defer r.inflight.Done()
		defer r.releaseLimiter(original.RoomID, limiter)

		text := original.OriginalText
		if err := limiter.sem.Acquire(ctx, 1); err == nil {
			text = r.translator.Translate(ctx, original.OriginalText, original.OriginalLanguage, target)
			limiter.sem.Release(1)
		}

		r.log.Debug().
			Str("conn_id", member.ConnID).
			Str("message_id", original.ID).
			Str("target", target).
			Msg("delivering translated message")
		d.resolve(messageEvent(original, text, target))
	}()
}

func messageEvent(original Message, text, target string) *Event {
	msg := original
	msg.Text = text
	msg.TargetLanguage = target
	return &Event{Kind: EventMessage, RoomID: original.RoomID, Message: msg}
}

func (r *Relay) acquireLimiter(roomID string) *roomLimiter {
	r.limitersMu.Lock()
	defer r.limitersMu.Unlock()

	l, ok := r.limiters[roomID]
	if !ok {
		l = &roomLimiter{sem: semaphore.NewWeighted(r.fanoutLimit)}
		r.limiters[roomID] = l
	}
	l.refs++
	return l
}

func (r *Relay) releaseLimiter(roomID string, l *roomLimiter) {
	r.limitersMu.Lock()
	defer r.limitersMu.Unlock()

	l.refs--
	r.dropLimiterLocked(roomID)
}

// releaseLimiterIfEmpty forgets the room's limiter once the room is empty and
// no translation holds it.
func (r *Relay) releaseLimiterIfEmpty(roomID string) {
	r.limitersMu.Lock()
	defer r.limitersMu.Unlock()

	r.dropLimiterLocked(roomID)
}

func (r *Relay) dropLimiterLocked(roomID string) {
	l, ok := r.limiters[roomID]
	if !ok || l.refs > 0 || r.registry.RoomSize(roomID) > 0 {
		return
	}
	delete(r.limiters, roomID)
}
