package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	stdhttp "net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/polychat-server/internal/core"
	"github.com/vovakirdan/polychat-server/internal/proto"
	"github.com/vovakirdan/polychat-server/internal/utils"
)

// WSOptions tunes per-connection limits.
type WSOptions struct {
	MaxMessageBytes   int64
	OutboundBuffer    int
	MessagesPerMinute int
}

// WSHandler upgrades HTTP connections and bridges them to the relay.
type WSHandler struct {
	relay *core.Relay
	opts  WSOptions
	log   *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(relay *core.Relay, opts WSOptions, logger *zerolog.Logger) stdhttp.Handler {
	return &WSHandler{relay: relay, opts: opts, log: logger}
}

func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	ctx := r.Context()

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")

	if h.opts.MaxMessageBytes > 0 {
		conn.SetReadLimit(h.opts.MaxMessageBytes)
	}

	client := core.NewClient(utils.NewID(), h.opts.OutboundBuffer)
	defer h.relay.Disconnect(client)
	h.log.Debug().Str("conn_id", client.ID).Msg("ws connected")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	limiter := newRateLimiter(h.opts.MessagesPerMinute)
	limiter.startReset(ctx.Done())

	errCh := make(chan error, 2)
	go func() {
		errCh <- h.readLoop(ctx, conn, client, limiter)
	}()
	go func() {
		errCh <- h.writeLoop(ctx, conn, client)
	}()

	err = <-errCh
	cancel() // stop the other goroutine
	<-errCh

	status := websocket.StatusNormalClosure
	reason := "closing"
	if errors.Is(err, core.ErrClientClosed) {
		// The relay evicted this client because its outbound queue overflowed.
		conn.Close(websocket.StatusTryAgainLater, "outbound queue full")
		return
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		if errors.Is(err, io.EOF) {
			err = nil
		}
		if s := websocket.CloseStatus(err); s != -1 {
			status = s
		}
		if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
			err = nil
		}
		if err != nil {
			if status == websocket.StatusNormalClosure {
				status = websocket.StatusInternalError
			}
			reason = err.Error()
			h.log.Warn().Err(err).Str("conn_id", client.ID).Msg("ws connection closed with error")
		}
	}

	conn.Close(status, reason)
}

// readLoop decodes client events and hands them to the relay. Events that fail
// to decode or are rejected are logged and dropped; the connection stays open.
func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, client *core.Client, limiter *rateLimiter) error {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return err
		}

		var inbound proto.Inbound
		if err := json.Unmarshal(data, &inbound); err != nil {
			h.log.Warn().Err(err).Str("conn_id", client.ID).Msg("dropping malformed ws payload")
			continue
		}

		cmd, err := inboundToCommand(inbound)
		if err != nil {
			h.log.Warn().Err(err).Str("conn_id", client.ID).Str("event", inbound.Event).Msg("dropping ws event")
			continue
		}

		if cmd.Kind == core.CommandMessage && !limiter.allow() {
			h.log.Warn().Str("conn_id", client.ID).Str("code", core.ErrCodeRateLimited).Msg("dropping message over rate limit")
			continue
		}

		if err := h.relay.Handle(ctx, client, cmd); err != nil {
			h.logRejected(client, inbound.Event, err)
		}
	}
}

func (h *WSHandler) logRejected(client *core.Client, event string, err error) {
	entry := h.log.Warn()
	if core.ErrorCode(err) == core.ErrCodePersistFailed {
		entry = h.log.Error()
	}
	entry.Err(err).
		Str("conn_id", client.ID).
		Str("event", event).
		Str("code", core.ErrorCode(err)).
		Msg("ws event rejected")
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, client *core.Client) error {
	for {
		event, err := client.Next(ctx)
		if err != nil {
			return err
		}
		if err := wsjson.Write(ctx, conn, outboundFromEvent(event)); err != nil {
			h.log.Error().Err(err).Str("conn_id", client.ID).Msg("write ws event")
			return err
		}
	}
}
