package http

import (
	"encoding/json"
	"fmt"

	"github.com/vovakirdan/polychat-server/internal/core"
	"github.com/vovakirdan/polychat-server/internal/proto"
)

func inboundToCommand(inbound proto.Inbound) (*core.Command, error) {
	switch inbound.Event {
	case proto.EventJoin:
		var join proto.JoinData
		if err := json.Unmarshal(inbound.Data, &join); err != nil {
			return nil, &core.CoreError{Code: core.ErrCodeBadRequest, Message: "decode join", Err: err}
		}
		return &core.Command{
			Kind:   core.CommandJoin,
			RoomID: join.RoomID,
			UserID: join.UserID,
		}, nil
	case proto.EventMessage:
		var msg proto.MessageData
		if err := json.Unmarshal(inbound.Data, &msg); err != nil {
			return nil, &core.CoreError{Code: core.ErrCodeBadRequest, Message: "decode message", Err: err}
		}
		return &core.Command{
			Kind:   core.CommandMessage,
			RoomID: msg.RoomID,
			Text:   msg.Text,
		}, nil
	default:
		return nil, &core.CoreError{Code: core.ErrCodeUnknownEvent, Message: fmt.Sprintf("unknown event %q", inbound.Event)}
	}
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventMessage:
		m := event.Message
		return proto.Outbound{
			Event: proto.EventMessage,
			Data: proto.ChatMessage{
				ID:               m.ID,
				RoomID:           m.RoomID,
				SenderID:         m.SenderID,
				SenderName:       m.SenderName,
				Avatar:           m.Avatar,
				OriginalLanguage: m.OriginalLanguage,
				Text:             m.Text,
				OriginalText:     m.OriginalText,
				CreatedAt:        m.CreatedAt,
				TargetLanguage:   m.TargetLanguage,
			},
		}
	case core.EventUserJoined:
		return proto.Outbound{
			Event: proto.EventUserJoined,
			Data: proto.UserJoined{
				UserID:   event.User.UserID,
				Username: event.User.Username,
				Avatar:   event.User.Avatar,
			},
		}
	case core.EventUserLeft:
		return proto.Outbound{
			Event: proto.EventUserLeft,
			Data: proto.UserLeft{
				UserID:   event.User.UserID,
				Username: event.User.Username,
			},
		}
	default:
		return proto.Outbound{Event: event.Kind.String()}
	}
}
