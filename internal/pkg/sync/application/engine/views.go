package engine

import (
	"chatsync/internal/pkg/sync/application/domain"
	"chatsync/internal/pkg/sync/application/state"
)

// Conversations returns the filtered conversation list, most recent first.
func (e *Engine) Conversations(f state.ConversationFilter) []domain.Conversation {
	return e.registry.Filtered(f)
}

// Conversation returns one conversation summary, if loaded.
func (e *Engine) Conversation(id int64) (domain.Conversation, bool) {
	return e.registry.Get(id)
}

// MessagesFor returns the loaded history of a conversation in CreatedAt
// order.
func (e *Engine) MessagesFor(conversationID int64) []domain.Message {
	return e.store.Messages(conversationID)
}

// PinnedMessages returns the conversation's pinned, non-deleted messages.
func (e *Engine) PinnedMessages(conversationID int64) []domain.Message {
	return e.store.Pinned(conversationID)
}

// UnreadTotal sums unread counters across all conversations.
func (e *Engine) UnreadTotal() int {
	return e.registry.UnreadTotal()
}

// IsTyping reports whether anyone is typing in the conversation.
func (e *Engine) IsTyping(conversationID int64) bool {
	return e.typing.IsTyping(conversationID)
}

// TypingUserNames resolves the typing users' display names through the
// conversation's participant list. Ids the participant list cannot resolve
// map to a placeholder.
func (e *Engine) TypingUserNames(conversationID int64) []string {
	ids := e.typing.TypingUserIDs(conversationID)
	if len(ids) == 0 {
		return nil
	}

	conv, ok := e.registry.Get(conversationID)
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if ok {
			if u, found := conv.Participant(id); found {
				names = append(names, u.DisplayName())
				continue
			}
		}
		names = append(names, domain.User{}.DisplayName())
	}
	return names
}

// IsOnline reports the last known presence of a user.
func (e *Engine) IsOnline(userID int64) bool {
	return e.presence.IsOnline(userID)
}

// Search runs a case-insensitive substring search over loaded, non-deleted
// messages. A zero conversationID searches every loaded conversation.
func (e *Engine) Search(query string, conversationID int64) []domain.Message {
	return e.search.Search(query, conversationID)
}
