package state

import (
	"sync"
	"time"
)

// DefaultTypingTTL is the quiescence window after which a typing entry
// expires without a refresh.
const DefaultTypingTTL = 3 * time.Second

// TypingTracker holds the ephemeral "who is typing where" sets. Every
// (conversation, user) pair owns one cancellable timer: a repeated typing
// event reschedules it instead of stacking a second entry, and an explicit
// stop cancels it early.
type TypingTracker struct {
	mu       sync.Mutex
	ttl      time.Duration
	entries  map[int64]map[int64]*time.Timer // conversationID -> userID -> expiry timer
	onChange func(conversationID int64)
	closed   bool
}

// NewTypingTracker constructs a tracker. A non-positive ttl falls back to
// DefaultTypingTTL. onChange, when non-nil, fires after any membership
// change, including timer expiry.
func NewTypingTracker(ttl time.Duration, onChange func(conversationID int64)) *TypingTracker {
	if ttl <= 0 {
		ttl = DefaultTypingTTL
	}
	return &TypingTracker{
		ttl:      ttl,
		entries:  make(map[int64]map[int64]*time.Timer),
		onChange: onChange,
	}
}

// Start marks the user as typing in the conversation and (re)starts the
// expiry timer. Refreshing an existing entry does not duplicate it.
func (t *TypingTracker) Start(conversationID, userID int64) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}

	users := t.entries[conversationID]
	if users == nil {
		users = make(map[int64]*time.Timer)
		t.entries[conversationID] = users
	}

	added := false
	if timer, ok := users[userID]; ok {
		timer.Reset(t.ttl)
	} else {
		users[userID] = time.AfterFunc(t.ttl, func() {
			t.expire(conversationID, userID)
		})
		added = true
	}
	t.mu.Unlock()

	if added && t.onChange != nil {
		t.onChange(conversationID)
	}
}

// Stop removes the entry immediately, cancelling its timer.
func (t *TypingTracker) Stop(conversationID, userID int64) {
	t.mu.Lock()
	removed := t.removeLocked(conversationID, userID)
	t.mu.Unlock()

	if removed && t.onChange != nil {
		t.onChange(conversationID)
	}
}

// IsTyping reports whether anyone is typing in the conversation.
func (t *TypingTracker) IsTyping(conversationID int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries[conversationID]) > 0
}

// TypingUserIDs lists the users currently typing in the conversation.
func (t *TypingTracker) TypingUserIDs(conversationID int64) []int64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	users := t.entries[conversationID]
	out := make([]int64, 0, len(users))
	for id := range users {
		out = append(out, id)
	}
	return out
}

// Close cancels every pending timer. The tracker ignores events afterwards.
func (t *TypingTracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.closed = true
	for _, users := range t.entries {
		for _, timer := range users {
			timer.Stop()
		}
	}
	t.entries = make(map[int64]map[int64]*time.Timer)
}

func (t *TypingTracker) expire(conversationID, userID int64) {
	t.mu.Lock()
	removed := t.removeLocked(conversationID, userID)
	t.mu.Unlock()

	if removed && t.onChange != nil {
		t.onChange(conversationID)
	}
}

func (t *TypingTracker) removeLocked(conversationID, userID int64) bool {
	users := t.entries[conversationID]
	timer, ok := users[userID]
	if !ok {
		return false
	}
	timer.Stop()
	delete(users, userID)
	if len(users) == 0 {
		delete(t.entries, conversationID)
	}
	return true
}
