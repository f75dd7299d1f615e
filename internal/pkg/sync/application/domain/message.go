package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

// DeliveryState tracks a locally originated message on its way to the server.
// Server-owned messages carry DeliverySent.
type DeliveryState string

const (
	DeliveryPending DeliveryState = "pending"
	DeliverySent    DeliveryState = "sent"
	DeliveryFailed  DeliveryState = "failed"
)

const snippetLen = 80

// MessageRef is a compact reference to another message, used for reply
// previews and conversation summaries.
type MessageRef struct {
	ID        int64     `json:"id"`
	Snippet   string    `json:"snippet"`
	Sender    User      `json:"sender"`
	CreatedAt time.Time `json:"created_at"`
}

// Message is one entry in a conversation's history.
//
// Identity: ID is the server identity and is zero until the server has
// acknowledged the message. TempID is the client-generated identity carried
// by locally originated messages while they are pending or failed; it is
// dropped once the server message replaces the optimistic one.
//
// A deleted message is tombstoned in place: Content becomes nil and
// IsDeleted is set, but the record keeps its position in the history.
type Message struct {
	ID             int64         `json:"id,omitempty"`
	TempID         string        `json:"temp_id,omitempty"`
	ConversationID int64         `json:"conversation_id"`
	Sender         User          `json:"sender"`
	Content        *string       `json:"content"`
	CreatedAt      time.Time     `json:"created_at"`
	IsEdited       bool          `json:"is_edited"`
	IsPinned       bool          `json:"is_pinned"`
	IsDeleted      bool          `json:"is_deleted"`
	Likes          []User        `json:"likes,omitempty"`
	LikedByMe      bool          `json:"liked_by_me"`
	ReplyTo        *MessageRef   `json:"reply_to,omitempty"`
	DeliveryState  DeliveryState `json:"delivery_state,omitempty"`
}

// Ref builds a MessageRef pointing at m.
func (m *Message) Ref() MessageRef {
	return MessageRef{
		ID:        m.ID,
		Snippet:   Snippet(m.Content),
		Sender:    m.Sender,
		CreatedAt: m.CreatedAt,
	}
}

// LikedBy reports whether userID is in the message's like set.
func (m *Message) LikedBy(userID int64) bool {
	for _, u := range m.Likes {
		if u.ID == userID {
			return true
		}
	}
	return false
}

// Body returns the message content, or the empty string for tombstones.
func (m *Message) Body() string {
	if m.Content == nil {
		return ""
	}
	return *m.Content
}

// Snippet shortens content for summaries. Nil content (tombstones) yields "".
func Snippet(content *string) string {
	if content == nil {
		return ""
	}
	s := strings.TrimSpace(*content)
	if len(s) <= snippetLen {
		return s
	}
	// Cut on a rune boundary so multi-byte content cannot yield invalid
	// UTF-8.
	cut := snippetLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
