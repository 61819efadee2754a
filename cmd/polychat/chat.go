package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/polychat-server/internal/proto"
)

func newChatCmd() *cobra.Command {
	var addr, userID, room string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Interactive terminal client",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if userID == "" {
				return errors.New("--user is required")
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return chat(ctx, addr, userID, room, os.Stdin, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "ws://localhost:8080/ws", "WebSocket address")
	cmd.Flags().StringVar(&userID, "user", "", "user id (create one with POST /api/users)")
	cmd.Flags().StringVar(&room, "room", "general", "room to join")
	return cmd
}

func chat(parent context.Context, addr, userID, room string, in io.Reader, out io.Writer) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	if err := sendEvent(ctx, conn, proto.EventJoin, proto.JoinData{RoomID: room, UserID: userID}); err != nil {
		return fmt.Errorf("join: %w", err)
	}

	fmt.Fprintf(out, "Connected to %s as %s in room %s\n", addr, userID, room)
	fmt.Fprintln(out, "Type messages and press Enter to send. Ctrl+C to exit.")

	go func() {
		defer cancel()
		readLoop(ctx, conn, out)
	}()

	writeLoop(ctx, conn, room, in)
	return nil
}

func sendEvent(ctx context.Context, conn *websocket.Conn, event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", event, err)
	}
	return wsjson.Write(ctx, conn, proto.Inbound{Event: event, Data: payload})
}

func readLoop(ctx context.Context, conn *websocket.Conn, out io.Writer) {
	for {
		var frame proto.Inbound
		if err := wsjson.Read(ctx, conn, &frame); err != nil {
			// Treat expected shutdowns quietly.
			if errors.Is(err, context.Canceled) {
				return
			}
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return
			}
			log.Printf("read error: %v", err)
			return
		}
		if line := formatFrame(frame); line != "" {
			fmt.Fprintln(out, line)
		}
	}
}

func formatFrame(frame proto.Inbound) string {
	switch frame.Event {
	case proto.EventMessage:
		var evt proto.ChatMessage
		if err := json.Unmarshal(frame.Data, &evt); err != nil {
			return fmt.Sprintf("unmarshal message: %v", err)
		}
		if evt.Text != evt.OriginalText {
			return fmt.Sprintf("[%s] %s: %s  (%s: %s)", evt.RoomID, evt.SenderName, evt.Text, evt.OriginalLanguage, evt.OriginalText)
		}
		return fmt.Sprintf("[%s] %s: %s", evt.RoomID, evt.SenderName, evt.Text)
	case proto.EventUserJoined:
		var evt proto.UserJoined
		if err := json.Unmarshal(frame.Data, &evt); err != nil {
			return fmt.Sprintf("unmarshal user-joined: %v", err)
		}
		name := evt.Username
		if name == "" {
			name = evt.UserID
		}
		return fmt.Sprintf("* %s joined", name)
	case proto.EventUserLeft:
		var evt proto.UserLeft
		if err := json.Unmarshal(frame.Data, &evt); err != nil {
			return fmt.Sprintf("unmarshal user-left: %v", err)
		}
		return fmt.Sprintf("* %s left", evt.Username)
	default:
		return fmt.Sprintf("event=%s data=%s", frame.Event, frame.Data)
	}
}

func writeLoop(ctx context.Context, conn *websocket.Conn, room string, in io.Reader) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			text := strings.TrimSpace(line)
			if text == "" {
				continue
			}
			if err := sendEvent(ctx, conn, proto.EventMessage, proto.MessageData{RoomID: room, Text: text}); err != nil {
				log.Printf("send error: %v", err)
				return
			}
		}
	}
}
