package domain

import "time"

// Conversation is the client-local summary of one thread: who is in it, what
// was said last, and how much of it the current user has not seen yet.
type Conversation struct {
	ID             int64               `json:"id"`
	Name           string              `json:"name,omitempty"`
	IsDirect       bool                `json:"is_direct"`
	Participants   []User              `json:"participants"`
	LastMessage    *MessageRef         `json:"last_message,omitempty"`
	UnreadCount    int                 `json:"unread_count"`
	CreatedAt      time.Time           `json:"created_at"`
	LastActivityAt time.Time           `json:"last_activity_at"`
	ReadReceipts   map[int64]time.Time `json:"read_receipts,omitempty"` // userID -> last read-at watermark
}

// Participant returns the participant with the given id, if present.
func (c *Conversation) Participant(userID int64) (User, bool) {
	for _, u := range c.Participants {
		if u.ID == userID {
			return u, true
		}
	}
	return User{}, false
}

// Peer returns the other participant of a direct conversation relative to
// selfID. For group conversations it returns false.
func (c *Conversation) Peer(selfID int64) (User, bool) {
	if !c.IsDirect {
		return User{}, false
	}
	for _, u := range c.Participants {
		if u.ID != selfID {
			return u, true
		}
	}
	return User{}, false
}

// ActivityAt is the timestamp used for recency ordering: last activity when
// known, creation time otherwise.
func (c *Conversation) ActivityAt() time.Time {
	if !c.LastActivityAt.IsZero() {
		return c.LastActivityAt
	}
	return c.CreatedAt
}
