package adapter

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"chatsync/internal/infrastructure/transport/port"
	"chatsync/internal/infrastructure/wire"
	"chatsync/internal/pkg/sync/application/domain"
)

// envelope is the outer frame of every push event. The backend is not
// consistent about where it puts things: the discriminator is type or event,
// and the body sits under data, payload, or inline in the frame itself.
type envelope struct {
	Type    string          `json:"type"`
	Event   string          `json:"event"`
	Data    json.RawMessage `json:"data"`
	Payload json.RawMessage `json:"payload"`
}

// decodeEvent normalizes one raw frame into exactly one canonical event.
// Unknown frame types are an error; the caller decides whether to drop or
// log them.
func decodeEvent(raw []byte) (port.Event, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("transport: decode frame: %w", err)
	}

	kind := env.Type
	if kind == "" {
		kind = env.Event
	}
	body := env.Data
	if len(body) == 0 {
		body = env.Payload
	}
	if len(body) == 0 {
		body = raw
	}

	switch canonicalKind(kind) {
	case "new_message", "message_created", "message":
		msg, err := decodeMessageBody(body)
		if err != nil {
			return nil, err
		}
		return port.NewMessage{Message: msg}, nil

	case "message_updated", "message_edited":
		msg, err := decodeMessageBody(body)
		if err != nil {
			return nil, err
		}
		return port.MessageUpdated{Message: msg}, nil

	case "message_deleted":
		var f deleteFrame
		if err := json.Unmarshal(body, &f); err != nil {
			return nil, fmt.Errorf("transport: decode delete frame: %w", err)
		}
		id := coalesceID(f.MessageID, f.MessageId, f.ID)
		if id == 0 {
			return nil, fmt.Errorf("transport: delete frame without message id")
		}
		return port.MessageDeleted{
			ConversationID: coalesceID(f.ConversationID, f.ConversationId),
			MessageID:      id,
		}, nil

	case "like_toggled", "message_liked", "like":
		var f likeFrame
		if err := json.Unmarshal(body, &f); err != nil {
			return nil, fmt.Errorf("transport: decode like frame: %w", err)
		}
		id := coalesceID(f.MessageID, f.MessageId, f.ID)
		if id == 0 {
			return nil, fmt.Errorf("transport: like frame without message id")
		}
		return port.LikeToggled{
			MessageID: id,
			User:      f.User.Normalize(),
			Liked:     f.Liked || f.IsLiked,
		}, nil

	case "pin_toggled", "message_pinned", "pin":
		var f pinFrame
		if err := json.Unmarshal(body, &f); err != nil {
			return nil, fmt.Errorf("transport: decode pin frame: %w", err)
		}
		id := coalesceID(f.MessageID, f.MessageId, f.ID)
		if id == 0 {
			return nil, fmt.Errorf("transport: pin frame without message id")
		}
		return port.PinToggled{
			MessageID: id,
			Pinned:    f.Pinned || f.IsPinned,
		}, nil

	case "conversation_upserted", "conversation_created", "conversation_updated", "conversation":
		var f struct {
			Conversation *wire.Conversation `json:"conversation"`
		}
		if err := json.Unmarshal(body, &f); err == nil && f.Conversation != nil {
			return port.ConversationUpserted{Conversation: f.Conversation.Normalize()}, nil
		}
		var dto wire.Conversation
		if err := json.Unmarshal(body, &dto); err != nil {
			return nil, fmt.Errorf("transport: decode conversation frame: %w", err)
		}
		return port.ConversationUpserted{Conversation: dto.Normalize()}, nil

	case "read_receipt", "conversation_read", "read":
		var f readFrame
		if err := json.Unmarshal(body, &f); err != nil {
			return nil, fmt.Errorf("transport: decode read frame: %w", err)
		}
		readAt := time.Time{}
		if f.ReadAt != nil {
			readAt = f.ReadAt.Time
		} else if f.ReadAtAlt != nil {
			readAt = f.ReadAtAlt.Time
		}
		if readAt.IsZero() && (f.Read || f.IsRead) {
			readAt = time.Now().UTC()
		}
		return port.ReadReceipt{
			ConversationID: coalesceID(f.ConversationID, f.ConversationId),
			UserID:         coalesceID(f.UserID, f.UserId),
			ReadAt:         readAt,
		}, nil

	case "presence_changed", "presence":
		var f presenceFrame
		if err := json.Unmarshal(body, &f); err != nil {
			return nil, fmt.Errorf("transport: decode presence frame: %w", err)
		}
		return port.PresenceChanged{
			UserID: coalesceID(f.UserID, f.UserId),
			Online: f.Online || f.IsOnline,
		}, nil

	case "typing_started", "typing_start", "typing":
		f, err := decodeTypingFrame(body)
		if err != nil {
			return nil, err
		}
		return port.TypingStarted(f), nil

	case "typing_stopped", "typing_stop", "stop_typing":
		f, err := decodeTypingFrame(body)
		if err != nil {
			return nil, err
		}
		return port.TypingStopped(f), nil
	}

	return nil, fmt.Errorf("transport: unknown frame type %q", kind)
}

// canonicalKind folds the separators different backend versions use into
// snake_case.
func canonicalKind(kind string) string {
	kind = strings.ToLower(strings.TrimSpace(kind))
	kind = strings.ReplaceAll(kind, ":", "_")
	kind = strings.ReplaceAll(kind, ".", "_")
	kind = strings.ReplaceAll(kind, "-", "_")
	return kind
}

func decodeMessageBody(body []byte) (domain.Message, error) {
	var nested struct {
		Message *wire.Message `json:"message"`
	}
	if err := json.Unmarshal(body, &nested); err == nil && nested.Message != nil {
		return requireMessageID(nested.Message.Normalize())
	}
	var dto wire.Message
	if err := json.Unmarshal(body, &dto); err != nil {
		return domain.Message{}, fmt.Errorf("transport: decode message frame: %w", err)
	}
	return requireMessageID(dto.Normalize())
}

// requireMessageID rejects message frames without a server id: only the
// local optimistic path may produce id-less messages.
func requireMessageID(m domain.Message) (domain.Message, error) {
	if m.ID == 0 {
		return domain.Message{}, fmt.Errorf("transport: message frame without id")
	}
	return m, nil
}

type deleteFrame struct {
	ConversationID int64 `json:"conversation_id"`
	ConversationId int64 `json:"conversationId"`
	MessageID      int64 `json:"message_id"`
	MessageId      int64 `json:"messageId"`
	ID             int64 `json:"id"`
}

type likeFrame struct {
	MessageID int64     `json:"message_id"`
	MessageId int64     `json:"messageId"`
	ID        int64     `json:"id"`
	User      wire.User `json:"user"`
	Liked     bool      `json:"liked"`
	IsLiked   bool      `json:"is_liked"`
}

type pinFrame struct {
	MessageID int64 `json:"message_id"`
	MessageId int64 `json:"messageId"`
	ID        int64 `json:"id"`
	Pinned    bool  `json:"pinned"`
	IsPinned  bool  `json:"is_pinned"`
}

type readFrame struct {
	ConversationID int64      `json:"conversation_id"`
	ConversationId int64      `json:"conversationId"`
	UserID         int64      `json:"user_id"`
	UserId         int64      `json:"userId"`
	ReadAt         *wire.Time `json:"read_at"`
	ReadAtAlt      *wire.Time `json:"readAt"`
	Read           bool       `json:"read"`
	IsRead         bool       `json:"is_read"`
}

type presenceFrame struct {
	UserID   int64 `json:"user_id"`
	UserId   int64 `json:"userId"`
	Online   bool  `json:"online"`
	IsOnline bool  `json:"is_online"`
}

type typingBody struct {
	ConversationID int64
	UserID         int64
}

func decodeTypingFrame(body []byte) (typingBody, error) {
	var f struct {
		ConversationID int64 `json:"conversation_id"`
		ConversationId int64 `json:"conversationId"`
		UserID         int64 `json:"user_id"`
		UserId         int64 `json:"userId"`
	}
	if err := json.Unmarshal(body, &f); err != nil {
		return typingBody{}, fmt.Errorf("transport: decode typing frame: %w", err)
	}
	return typingBody{
		ConversationID: coalesceID(f.ConversationID, f.ConversationId),
		UserID:         coalesceID(f.UserID, f.UserId),
	}, nil
}

func coalesceID(values ...int64) int64 {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}
