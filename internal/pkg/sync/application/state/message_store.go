package state

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"chatsync/internal/pkg/sync/application/domain"
)

// MessagePatch is a partial, authoritative update to an existing message.
// Nil fields are left untouched. Likes, when non-nil, replaces the like set
// wholesale and recomputes LikedByMe for the current user.
type MessagePatch struct {
	ID            *int64
	Content       *string
	CreatedAt     *time.Time
	IsEdited      *bool
	IsPinned      *bool
	IsDeleted     *bool
	Likes         []domain.User
	ReplyTo       *domain.MessageRef
	DeliveryState *domain.DeliveryState
}

// MessageStore holds the in-memory history of every loaded conversation,
// keyed by conversation id and sorted ascending by CreatedAt. It is the only
// writer of message records; every mutation goes through its primitives so
// concurrent optimistic writes and transport events observe one set of
// invariants.
type MessageStore struct {
	mu             sync.RWMutex
	byConversation map[int64][]*domain.Message
	selfID         int64
	log            zerolog.Logger
}

// NewMessageStore constructs an empty store. selfID identifies the current
// user for LikedByMe bookkeeping.
func NewMessageStore(selfID int64, log zerolog.Logger) *MessageStore {
	return &MessageStore{
		byConversation: make(map[int64][]*domain.Message),
		selfID:         selfID,
		log:            log.With().Str("component", "message_store").Logger(),
	}
}

// Insert adds a message to its conversation's history. Inserting an id that
// is already present is a no-op, so replayed events and re-fetched pages
// never duplicate an entry. The sequence is re-sorted by CreatedAt because a
// server-confirmed message can arrive later than messages it precedes.
//
// It returns whether the message was stored and whether it is now the newest
// entry of its conversation; callers use the latter to refresh the
// conversation summary.
func (s *MessageStore) Insert(m domain.Message) (inserted, newest bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seq := s.byConversation[m.ConversationID]
	if m.ID != 0 {
		for _, existing := range seq {
			if existing.ID == m.ID {
				return false, false
			}
		}
	}

	cp := m
	cp.LikedByMe = cp.LikedBy(s.selfID)
	seq = append(seq, &cp)
	sortByCreatedAt(seq)
	s.byConversation[m.ConversationID] = seq

	return true, seq[len(seq)-1] == &cp
}

// MergePage folds a fetched page into the conversation's history with
// id-based dedup and returns how many entries were actually added.
func (s *MessageStore) MergePage(conversationID int64, page []domain.Message) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	seq := s.byConversation[conversationID]
	known := make(map[int64]struct{}, len(seq))
	for _, m := range seq {
		if m.ID != 0 {
			known[m.ID] = struct{}{}
		}
	}

	added := 0
	for _, m := range page {
		if m.ID != 0 {
			if _, ok := known[m.ID]; ok {
				continue
			}
			known[m.ID] = struct{}{}
		}
		cp := m
		cp.LikedByMe = cp.LikedBy(s.selfID)
		seq = append(seq, &cp)
		added++
	}
	if added > 0 {
		sortByCreatedAt(seq)
		s.byConversation[conversationID] = seq
	}
	return added
}

// ReconcileByID merges an authoritative patch into the message with the
// given server id. conversationID may be zero when the event that triggered
// the reconcile did not carry one; the store then falls back to scanning
// every loaded conversation. The scan is a documented degraded path for an
// inconsistent upstream event contract, not a design feature.
func (s *MessageStore) ReconcileByID(conversationID, id int64, patch MessagePatch) (domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.locateByID(conversationID, id)
	if m == nil {
		return domain.Message{}, fmt.Errorf("%w: message %d", domain.ErrNotFound, id)
	}
	s.applyPatch(m, patch)
	return *m, nil
}

// ReconcileByTempID merges a patch into a locally originated message that
// has no server id yet.
func (s *MessageStore) ReconcileByTempID(tempID string, patch MessagePatch) (domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.locateByTempID(tempID)
	if m == nil {
		return domain.Message{}, fmt.Errorf("%w: temp message %s", domain.ErrNotFound, tempID)
	}
	s.applyPatch(m, patch)
	return *m, nil
}

// Tombstone marks the message deleted in place: content goes nil, IsDeleted
// is set, and the record keeps its position so pagination cursors stay valid.
func (s *MessageStore) Tombstone(conversationID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.locateByID(conversationID, id)
	if m == nil {
		return fmt.Errorf("%w: message %d", domain.ErrNotFound, id)
	}
	m.IsDeleted = true
	m.Content = nil
	return nil
}

// UpsertLike sets or clears one user's like on a message. Applying the same
// state twice is a no-op, so replayed like events converge.
func (s *MessageStore) UpsertLike(id int64, user domain.User, liked bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.locateByID(0, id)
	if m == nil {
		return fmt.Errorf("%w: message %d", domain.ErrNotFound, id)
	}

	has := m.LikedBy(user.ID)
	switch {
	case liked && !has:
		m.Likes = append(m.Likes, user)
	case !liked && has:
		likes := m.Likes[:0]
		for _, u := range m.Likes {
			if u.ID != user.ID {
				likes = append(likes, u)
			}
		}
		m.Likes = likes
	}
	m.LikedByMe = m.LikedBy(s.selfID)
	return nil
}

// UpsertPin sets the pinned flag without touching any other field.
func (s *MessageStore) UpsertPin(id int64, pinned bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.locateByID(0, id)
	if m == nil {
		return fmt.Errorf("%w: message %d", domain.ErrNotFound, id)
	}
	m.IsPinned = pinned
	return nil
}

// SetDeliveryState flips the delivery state of a temp message.
func (s *MessageStore) SetDeliveryState(tempID string, state domain.DeliveryState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.locateByTempID(tempID)
	if m == nil {
		return fmt.Errorf("%w: temp message %s", domain.ErrNotFound, tempID)
	}
	m.DeliveryState = state
	return nil
}

// ReplaceTemp swaps a temp message for its server-acknowledged counterpart.
// The temp entry is removed entirely and the final message inserted with the
// usual id dedup, so a racing transport event for the same server id cannot
// produce a duplicate.
func (s *MessageStore) ReplaceTemp(tempID string, final domain.Message) (newest bool, err error) {
	s.mu.Lock()

	m := s.locateByTempID(tempID)
	if m == nil {
		s.mu.Unlock()
		return false, fmt.Errorf("%w: temp message %s", domain.ErrNotFound, tempID)
	}

	seq := s.byConversation[m.ConversationID]
	kept := seq[:0]
	for _, cur := range seq {
		if cur != m {
			kept = append(kept, cur)
		}
	}
	s.byConversation[m.ConversationID] = kept
	s.mu.Unlock()

	final.TempID = ""
	if final.DeliveryState == "" {
		final.DeliveryState = domain.DeliverySent
	}
	_, newest = s.Insert(final)
	return newest, nil
}

// FindByID returns a copy of a message by server id. A zero conversationID
// scans all loaded conversations.
func (s *MessageStore) FindByID(conversationID, id int64) (domain.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if m := s.locateByID(conversationID, id); m != nil {
		return *m, true
	}
	return domain.Message{}, false
}

// FindByTempID returns a copy of the temp message, if present.
func (s *MessageStore) FindByTempID(tempID string) (domain.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if m := s.locateByTempID(tempID); m != nil {
		return *m, true
	}
	return domain.Message{}, false
}

// Messages returns a copy of the conversation's history in CreatedAt order.
func (s *MessageStore) Messages(conversationID int64) []domain.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seq := s.byConversation[conversationID]
	out := make([]domain.Message, 0, len(seq))
	for _, m := range seq {
		out = append(out, *m)
	}
	return out
}

// Pinned returns the conversation's pinned, non-deleted messages in
// CreatedAt order.
func (s *MessageStore) Pinned(conversationID int64) []domain.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Message
	for _, m := range s.byConversation[conversationID] {
		if m.IsPinned && !m.IsDeleted {
			out = append(out, *m)
		}
	}
	return out
}

// Len reports the number of loaded messages for the conversation.
func (s *MessageStore) Len(conversationID int64) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byConversation[conversationID])
}

// ConversationIDs lists every conversation with loaded history.
func (s *MessageStore) ConversationIDs() []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]int64, 0, len(s.byConversation))
	for id := range s.byConversation {
		ids = append(ids, id)
	}
	return ids
}

// locateByID finds a message by server id. With a zero conversationID, or
// when the hinted conversation does not hold the id, it scans all loaded
// conversations. A zero id never matches: pending optimistic messages carry
// ID 0 until acknowledged and are addressable only by temp id. Callers must
// hold the lock.
func (s *MessageStore) locateByID(conversationID, id int64) *domain.Message {
	if id == 0 {
		return nil
	}
	if conversationID != 0 {
		for _, m := range s.byConversation[conversationID] {
			if m.ID == id {
				return m
			}
		}
		s.log.Warn().
			Int64("conversation_id", conversationID).
			Int64("message_id", id).
			Msg("message not in hinted conversation, falling back to full scan")
	}
	for cid, seq := range s.byConversation {
		if cid == conversationID {
			continue
		}
		for _, m := range seq {
			if m.ID == id {
				return m
			}
		}
	}
	return nil
}

func (s *MessageStore) locateByTempID(tempID string) *domain.Message {
	if tempID == "" {
		return nil
	}
	for _, seq := range s.byConversation {
		for _, m := range seq {
			if m.TempID == tempID {
				return m
			}
		}
	}
	return nil
}

// applyPatch merges authoritative fields into m. IsEdited is preserved as
// the OR of old and new so an edit can never be un-flagged by a later
// partial update. Callers must hold the lock.
func (s *MessageStore) applyPatch(m *domain.Message, p MessagePatch) {
	if p.ID != nil {
		m.ID = *p.ID
	}
	if p.Content != nil {
		m.Content = p.Content
	}
	if p.CreatedAt != nil {
		m.CreatedAt = *p.CreatedAt
		sortByCreatedAt(s.byConversation[m.ConversationID])
	}
	if p.IsEdited != nil {
		m.IsEdited = m.IsEdited || *p.IsEdited
	}
	if p.IsPinned != nil {
		m.IsPinned = *p.IsPinned
	}
	if p.IsDeleted != nil && *p.IsDeleted {
		m.IsDeleted = true
		m.Content = nil
	}
	if p.Likes != nil {
		m.Likes = append([]domain.User(nil), p.Likes...)
		m.LikedByMe = m.LikedBy(s.selfID)
	}
	if p.ReplyTo != nil {
		m.ReplyTo = p.ReplyTo
	}
	if p.DeliveryState != nil {
		m.DeliveryState = *p.DeliveryState
	}
}

// sortByCreatedAt keeps arrival order for equal timestamps.
func sortByCreatedAt(seq []*domain.Message) {
	sort.SliceStable(seq, func(i, j int) bool {
		return seq[i].CreatedAt.Before(seq[j].CreatedAt)
	})
}
