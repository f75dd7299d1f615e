package state

import (
	"container/list"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"chatsync/internal/pkg/sync/application/domain"
)

// ConversationFilter narrows the registry's derived view. Query matches
// case-insensitively against participant names, the last message snippet and
// the conversation name; UnreadOnly keeps conversations with unread > 0.
type ConversationFilter struct {
	Query      string
	UnreadOnly bool
}

// ConversationRegistry owns the set of loaded conversations, their
// summaries, unread counters and the recency order used for display. A
// conversation moves to the front of the order whenever it receives its
// newest message; that is a relative reorder on a linked list, not a resort.
type ConversationRegistry struct {
	mu       sync.RWMutex
	byID     map[int64]*domain.Conversation
	elements map[int64]*list.Element
	recency  *list.List // front = most recent, holds conversation ids
	activeID int64
	selfID   int64
	log      zerolog.Logger
}

// NewConversationRegistry constructs an empty registry for the given user.
func NewConversationRegistry(selfID int64, log zerolog.Logger) *ConversationRegistry {
	return &ConversationRegistry{
		byID:     make(map[int64]*domain.Conversation),
		elements: make(map[int64]*list.Element),
		recency:  list.New(),
		selfID:   selfID,
		log:      log.With().Str("component", "conversation_registry").Logger(),
	}
}

// Upsert merges a server conversation record into the registry. An unknown
// id creates the conversation (inbound events may reference conversations
// the client has not listed yet); a known id takes the server fields but
// keeps a higher local unread count, since the local counter may already
// include messages the server response predates.
func (r *ConversationRegistry) Upsert(c domain.Conversation) domain.Conversation {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.byID[c.ID]
	if !ok {
		cp := c
		r.byID[c.ID] = &cp
		r.elements[c.ID] = r.recency.PushBack(c.ID)
		r.resortLocked()
		return cp
	}

	unread := existing.UnreadCount
	if c.UnreadCount > unread {
		unread = c.UnreadCount
	}
	if r.activeID == c.ID {
		unread = 0
	}

	// Listings never carry read receipts, so a refresh must not wipe the
	// watermarks accumulated from receipt events.
	receipts := existing.ReadReceipts
	for userID, readAt := range c.ReadReceipts {
		if receipts == nil {
			receipts = make(map[int64]time.Time)
		}
		if readAt.After(receipts[userID]) {
			receipts[userID] = readAt
		}
	}

	*existing = c
	existing.UnreadCount = unread
	existing.ReadReceipts = receipts
	r.resortLocked()
	return *existing
}

// Get returns a copy of the conversation, if loaded.
func (r *ConversationRegistry) Get(id int64) (domain.Conversation, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if c, ok := r.byID[id]; ok {
		return *c, true
	}
	return domain.Conversation{}, false
}

// UpdateLastMessage records m as the conversation's latest message, bumps
// the activity timestamp and moves the conversation to the front of the
// recency order. The unread counter only grows for inbound messages from
// someone else while the conversation is not the active one.
func (r *ConversationRegistry) UpdateLastMessage(m domain.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.byID[m.ConversationID]
	if !ok {
		r.log.Warn().
			Int64("conversation_id", m.ConversationID).
			Msg("last-message update for unloaded conversation dropped")
		return
	}

	ref := m.Ref()
	c.LastMessage = &ref
	c.LastActivityAt = m.CreatedAt
	if m.Sender.ID != r.selfID && r.activeID != c.ID {
		c.UnreadCount++
	}

	if el, ok := r.elements[c.ID]; ok {
		r.recency.MoveToFront(el)
	}
}

// MarkRead zeroes the unread counter. Safe to call when already zero.
func (r *ConversationRegistry) MarkRead(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.byID[id]; ok {
		c.UnreadCount = 0
	}
}

// SetActive records which conversation the user is looking at; zero clears
// it. Entering a conversation zeroes its unread counter. The returned flag
// tells the caller whether the conversation had unread messages, so it can
// propagate the read marker to the server.
func (r *ConversationRegistry) SetActive(id int64) (hadUnread bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.activeID = id
	if id == 0 {
		return false
	}
	if c, ok := r.byID[id]; ok {
		hadUnread = c.UnreadCount > 0
		c.UnreadCount = 0
	}
	return hadUnread
}

// ActiveID returns the active conversation id, zero when none.
func (r *ConversationRegistry) ActiveID() int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.activeID
}

// ApplyReadReceipt advances a participant's read watermark. Receipts never
// move backwards.
func (r *ConversationRegistry) ApplyReadReceipt(conversationID, userID int64, readAt time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.byID[conversationID]
	if !ok {
		return
	}
	if c.ReadReceipts == nil {
		c.ReadReceipts = make(map[int64]time.Time)
	}
	if prev, ok := c.ReadReceipts[userID]; !ok || readAt.After(prev) {
		c.ReadReceipts[userID] = readAt
	}
}

// UnreadTotal sums unread counters across all loaded conversations.
func (r *ConversationRegistry) UnreadTotal() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	total := 0
	for _, c := range r.byID {
		total += c.UnreadCount
	}
	return total
}

// Filtered returns conversations matching the filter, most recent first.
func (r *ConversationRegistry) Filtered(f ConversationFilter) []domain.Conversation {
	r.mu.RLock()
	defer r.mu.RUnlock()

	query := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]domain.Conversation, 0, len(r.byID))
	for el := r.recency.Front(); el != nil; el = el.Next() {
		c := r.byID[el.Value.(int64)]
		if f.UnreadOnly && c.UnreadCount == 0 {
			continue
		}
		if query != "" && !matchesQuery(c, query) {
			continue
		}
		out = append(out, *c)
	}
	return out
}

// List returns every loaded conversation, most recent first.
func (r *ConversationRegistry) List() []domain.Conversation {
	return r.Filtered(ConversationFilter{})
}

func matchesQuery(c *domain.Conversation, query string) bool {
	if strings.Contains(strings.ToLower(c.Name), query) {
		return true
	}
	for _, u := range c.Participants {
		if strings.Contains(strings.ToLower(u.Username), query) {
			return true
		}
	}
	if c.LastMessage != nil && strings.Contains(strings.ToLower(c.LastMessage.Snippet), query) {
		return true
	}
	return false
}

// resortLocked rebuilds the recency list by activity timestamp. Only needed
// after bulk upserts (initial listing); single-message updates use
// MoveToFront.
func (r *ConversationRegistry) resortLocked() {
	ids := make([]int64, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return r.byID[ids[i]].ActivityAt().After(r.byID[ids[j]].ActivityAt())
	})

	r.recency.Init()
	for _, id := range ids {
		r.elements[id] = r.recency.PushBack(id)
	}
}
