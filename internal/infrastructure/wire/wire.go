// Package wire decodes the chat backend's JSON shapes into canonical domain
// records. The upstream contract is not consistent about field names (the
// same concept arrives as created_at or createAt, read or is_read depending
// on the code path that produced it), so every known alias is mapped here,
// at the boundary, and nothing loosely typed leaks past this package.
package wire

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"chatsync/internal/pkg/sync/application/domain"
)

// Time accepts an RFC3339 string, a unix-seconds number or a unix-millis
// number.
type Time struct {
	time.Time
}

func (t *Time) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	if data[0] == '"' {
		s, err := strconv.Unquote(string(data))
		if err != nil {
			return fmt.Errorf("wire: unquote timestamp: %w", err)
		}
		parsed, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return fmt.Errorf("wire: parse timestamp %q: %w", s, err)
		}
		t.Time = parsed
		return nil
	}

	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("wire: parse numeric timestamp: %w", err)
	}
	// Millisecond timestamps are 13 digits for any plausible date.
	if n > 1e12 {
		t.Time = time.UnixMilli(n).UTC()
	} else {
		t.Time = time.Unix(n, 0).UTC()
	}
	return nil
}

// User is the wire shape of a participant reference.
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
	Avatar    string `json:"avatar"`
}

// Normalize maps the wire user to the domain record.
func (u User) Normalize() domain.User {
	out := domain.User{ID: u.ID, Username: u.Username, AvatarURL: u.AvatarURL}
	if out.Username == "" {
		out.Username = u.Name
	}
	if out.AvatarURL == "" {
		out.AvatarURL = u.Avatar
	}
	return out
}

// MessageRef is the wire shape of a reply preview.
type MessageRef struct {
	ID        int64   `json:"id"`
	Snippet   string  `json:"snippet"`
	Content   *string `json:"content"`
	Sender    *User   `json:"sender"`
	CreatedAt *Time   `json:"created_at"`
	CreateAt  *Time   `json:"createAt"`
}

// Normalize maps the wire reference to the domain record.
func (r MessageRef) Normalize() domain.MessageRef {
	out := domain.MessageRef{ID: r.ID, Snippet: r.Snippet}
	if out.Snippet == "" && r.Content != nil {
		out.Snippet = domain.Snippet(r.Content)
	}
	if r.Sender != nil {
		out.Sender = r.Sender.Normalize()
	}
	out.CreatedAt = coalesceTime(r.CreatedAt, r.CreateAt)
	return out
}

// Message is the wire shape of a message.
type Message struct {
	ID             int64       `json:"id"`
	ConversationID int64       `json:"conversation_id"`
	ConversationId int64       `json:"conversationId"`
	Sender         *User       `json:"sender"`
	SenderAlt      *User       `json:"user"`
	Content        *string     `json:"content"`
	Body           *string     `json:"body"`
	CreatedAt      *Time       `json:"created_at"`
	CreateAt       *Time       `json:"createAt"`
	IsEdited       bool        `json:"is_edited"`
	Edited         bool        `json:"edited"`
	IsPinned       bool        `json:"is_pinned"`
	Pinned         bool        `json:"pinned"`
	IsDeleted      bool        `json:"is_deleted"`
	Deleted        bool        `json:"deleted"`
	Likes          []User      `json:"likes"`
	ReplyTo        *MessageRef `json:"reply_to"`
	ReplyToAlt     *MessageRef `json:"replyTo"`
}

// Normalize maps the wire message to the canonical domain record. Missing
// fields get explicit defaults; a deleted message always carries nil
// content.
func (m Message) Normalize() domain.Message {
	out := domain.Message{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		Content:        m.Content,
		IsEdited:       m.IsEdited || m.Edited,
		IsPinned:       m.IsPinned || m.Pinned,
		IsDeleted:      m.IsDeleted || m.Deleted,
		CreatedAt:      coalesceTime(m.CreatedAt, m.CreateAt),
	}
	if out.ConversationID == 0 {
		out.ConversationID = m.ConversationId
	}
	if out.Content == nil {
		out.Content = m.Body
	}
	if m.Sender != nil {
		out.Sender = m.Sender.Normalize()
	} else if m.SenderAlt != nil {
		out.Sender = m.SenderAlt.Normalize()
	}
	if len(m.Likes) > 0 {
		out.Likes = make([]domain.User, 0, len(m.Likes))
		for _, u := range m.Likes {
			out.Likes = append(out.Likes, u.Normalize())
		}
	}
	ref := m.ReplyTo
	if ref == nil {
		ref = m.ReplyToAlt
	}
	if ref != nil {
		normalized := ref.Normalize()
		out.ReplyTo = &normalized
	}
	if out.IsDeleted {
		out.Content = nil
	}
	return out
}

// Conversation is the wire shape of a conversation summary.
type Conversation struct {
	ID             int64       `json:"id"`
	Name           string      `json:"name"`
	Title          string      `json:"title"`
	IsDirect       bool        `json:"is_direct"`
	Direct         bool        `json:"direct"`
	Participants   []User      `json:"participants"`
	Members        []User      `json:"members"`
	LastMessage    *MessageRef `json:"last_message"`
	LastMessageAlt *MessageRef `json:"lastMessage"`
	UnreadCount    int         `json:"unread_count"`
	Unread         int         `json:"unread"`
	CreatedAt      *Time       `json:"created_at"`
	CreateAt       *Time       `json:"createAt"`
	LastActivityAt *Time       `json:"last_activity_at"`
	UpdatedAt      *Time       `json:"updated_at"`
}

// Normalize maps the wire conversation to the canonical domain record.
func (c Conversation) Normalize() domain.Conversation {
	out := domain.Conversation{
		ID:             c.ID,
		Name:           c.Name,
		IsDirect:       c.IsDirect || c.Direct,
		UnreadCount:    c.UnreadCount,
		CreatedAt:      coalesceTime(c.CreatedAt, c.CreateAt),
		LastActivityAt: coalesceTime(c.LastActivityAt, c.UpdatedAt),
	}
	if out.Name == "" {
		out.Name = c.Title
	}
	if out.UnreadCount == 0 {
		out.UnreadCount = c.Unread
	}
	participants := c.Participants
	if len(participants) == 0 {
		participants = c.Members
	}
	if len(participants) > 0 {
		out.Participants = make([]domain.User, 0, len(participants))
		for _, u := range participants {
			out.Participants = append(out.Participants, u.Normalize())
		}
	}
	ref := c.LastMessage
	if ref == nil {
		ref = c.LastMessageAlt
	}
	if ref != nil {
		normalized := ref.Normalize()
		out.LastMessage = &normalized
	}
	return out
}

func coalesceTime(values ...*Time) time.Time {
	for _, v := range values {
		if v != nil && !v.IsZero() {
			return v.Time
		}
	}
	return time.Time{}
}
