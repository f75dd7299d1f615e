package state

import (
	"sort"
	"strings"

	"chatsync/internal/pkg/sync/application/domain"
)

// SearchIndex is a stateless linear search over messages the store already
// holds; it never reaches the server. Matching is a case-insensitive
// substring test over non-deleted content.
type SearchIndex struct {
	store *MessageStore
}

// NewSearchIndex constructs an index over the given store.
func NewSearchIndex(store *MessageStore) *SearchIndex {
	return &SearchIndex{store: store}
}

// Search returns matches for query, newest first. A non-zero conversationID
// scopes the search to that conversation; zero searches every loaded one.
// A blank query matches nothing.
func (s *SearchIndex) Search(query string, conversationID int64) []domain.Message {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return nil
	}

	ids := []int64{conversationID}
	if conversationID == 0 {
		ids = s.store.ConversationIDs()
	}

	var out []domain.Message
	for _, id := range ids {
		for _, m := range s.store.Messages(id) {
			if m.IsDeleted || m.Content == nil {
				continue
			}
			if strings.Contains(strings.ToLower(*m.Content), needle) {
				out = append(out, m)
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
