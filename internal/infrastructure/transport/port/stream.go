package port

import (
	"context"
	"time"

	"chatsync/internal/pkg/sync/application/domain"
)

// Event is one canonical inbound real-time event. Adapters normalize
// whatever wire shape the push layer uses into exactly one of the concrete
// types below before it reaches the engine.
type Event interface {
	event()
}

// NewMessage announces a message appended to a conversation.
type NewMessage struct{ Message domain.Message }

// MessageUpdated carries the authoritative state of an edited message.
type MessageUpdated struct{ Message domain.Message }

// MessageDeleted announces a tombstoned message.
type MessageDeleted struct {
	ConversationID int64
	MessageID      int64
}

// LikeToggled reports a like set change on a message. The event contract
// does not carry a conversation id; reconciliation falls back to an id scan.
type LikeToggled struct {
	MessageID int64
	User      domain.User
	Liked     bool
}

// PinToggled reports a pin state change on a message.
type PinToggled struct {
	MessageID int64
	Pinned    bool
}

// ConversationUpserted carries a created or updated conversation summary.
type ConversationUpserted struct{ Conversation domain.Conversation }

// ReadReceipt advances a participant's read watermark.
type ReadReceipt struct {
	ConversationID int64
	UserID         int64
	ReadAt         time.Time
}

// PresenceChanged reports a user going online or offline.
type PresenceChanged struct {
	UserID int64
	Online bool
}

// TypingStarted reports a participant typing in a conversation.
type TypingStarted struct {
	ConversationID int64
	UserID         int64
}

// TypingStopped reports a participant no longer typing.
type TypingStopped struct {
	ConversationID int64
	UserID         int64
}

func (NewMessage) event()           {}
func (MessageUpdated) event()       {}
func (MessageDeleted) event()       {}
func (LikeToggled) event()          {}
func (PinToggled) event()           {}
func (ConversationUpserted) event() {}
func (ReadReceipt) event()          {}
func (PresenceChanged) event()      {}
func (TypingStarted) event()        {}
func (TypingStopped) event()        {}

// Stream delivers normalized events from the push layer. Run blocks until
// the context is canceled or the stream fails terminally; the adapter owns
// reconnects in between. Events() stays open for the lifetime of the stream.
type Stream interface {
	Events() <-chan Event
	Run(ctx context.Context) error
	Close() error
}
