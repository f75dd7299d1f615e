package engine

import (
	"context"

	"chatsync/internal/pkg/sync/application/domain"
	"chatsync/internal/pkg/sync/application/usecase"
)

// Send sends a new message. See usecase.SendMessageUseCase for semantics.
func (e *Engine) Send(ctx context.Context, in usecase.SendMessageInput) (domain.Message, error) {
	if err := e.guard(); err != nil {
		return domain.Message{}, err
	}
	return e.sendUC.Execute(ctx, in)
}

// Edit replaces a message's content after server confirmation.
func (e *Engine) Edit(ctx context.Context, messageID int64, content string) (domain.Message, error) {
	if err := e.guard(); err != nil {
		return domain.Message{}, err
	}
	return e.editUC.Execute(ctx, messageID, content)
}

// Delete tombstones a message in place.
func (e *Engine) Delete(ctx context.Context, messageID int64) (domain.Message, error) {
	if err := e.guard(); err != nil {
		return domain.Message{}, err
	}
	return e.deleteUC.Execute(ctx, messageID)
}

// ToggleLike flips the current user's like and returns the authoritative
// resulting state.
func (e *Engine) ToggleLike(ctx context.Context, messageID int64) (bool, error) {
	if err := e.guard(); err != nil {
		return false, err
	}
	return e.likeUC.Execute(ctx, messageID)
}

// TogglePin pins or unpins a message and returns the authoritative state.
func (e *Engine) TogglePin(ctx context.Context, messageID int64, pinned bool) (bool, error) {
	if err := e.guard(); err != nil {
		return false, err
	}
	return e.pinUC.Execute(ctx, messageID, pinned)
}

// MarkAsRead zeroes the conversation's unread counter; server failure is
// logged, not propagated.
func (e *Engine) MarkAsRead(ctx context.Context, conversationID int64) error {
	if err := e.guard(); err != nil {
		return err
	}
	e.markReadUC.Execute(ctx, conversationID)
	return nil
}

// Retry re-sends a failed message by its temp id.
func (e *Engine) Retry(ctx context.Context, tempID string) (domain.Message, error) {
	if err := e.guard(); err != nil {
		return domain.Message{}, err
	}
	return e.retryUC.Execute(ctx, tempID)
}

// FetchMessages loads one history page into the store.
func (e *Engine) FetchMessages(ctx context.Context, in usecase.FetchMessagesInput) (usecase.FetchMessagesOutput, error) {
	if err := e.guard(); err != nil {
		return usecase.FetchMessagesOutput{}, err
	}
	return e.fetchUC.Execute(ctx, in)
}

// RefreshConversations re-syncs the conversation listing from the server.
func (e *Engine) RefreshConversations(ctx context.Context) ([]domain.Conversation, error) {
	if err := e.guard(); err != nil {
		return nil, err
	}
	return e.listUC.Execute(ctx)
}

// OpenDirectConversation resolves the 1:1 conversation with another user.
func (e *Engine) OpenDirectConversation(ctx context.Context, userID int64) (domain.Conversation, error) {
	if err := e.guard(); err != nil {
		return domain.Conversation{}, err
	}
	return e.directUC.Execute(ctx, userID)
}

// SetActiveConversation records which conversation the user is viewing.
// Entering a conversation with unread messages propagates the read marker to
// the server, and an empty history triggers an initial page fetch. A zero id
// clears the active conversation.
func (e *Engine) SetActiveConversation(ctx context.Context, conversationID int64) error {
	if err := e.guard(); err != nil {
		return err
	}

	hadUnread := e.registry.SetActive(conversationID)
	if conversationID == 0 {
		return nil
	}

	if hadUnread {
		e.markReadUC.Execute(ctx, conversationID)
	}
	if e.store.Len(conversationID) == 0 {
		if _, err := e.fetchUC.Execute(ctx, usecase.FetchMessagesInput{ConversationID: conversationID}); err != nil {
			return err
		}
	}
	return nil
}
