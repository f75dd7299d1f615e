package usecase

import (
	"context"
	"fmt"

	apiport "chatsync/internal/infrastructure/apiclient/port"
	"chatsync/internal/pkg/sync/application/domain"
	"chatsync/internal/pkg/sync/application/state"
)

// OpenDirectConversationUseCase looks up (or creates) the 1:1 conversation
// with another user and registers it locally.
type OpenDirectConversationUseCase struct {
	API      apiport.ChatAPI
	Registry *state.ConversationRegistry
	Notifier *state.Notifier
}

func NewOpenDirectConversationUseCase(api apiport.ChatAPI, reg *state.ConversationRegistry, notifier *state.Notifier) *OpenDirectConversationUseCase {
	return &OpenDirectConversationUseCase{API: api, Registry: reg, Notifier: notifier}
}

// Execute resolves the direct conversation with userID.
func (uc *OpenDirectConversationUseCase) Execute(ctx context.Context, userID int64) (domain.Conversation, error) {
	if userID == 0 {
		return domain.Conversation{}, fmt.Errorf("%w: recipient user id is required", domain.ErrInvalidRequest)
	}

	conv, err := uc.API.GetOrCreateDirectConversation(ctx, userID)
	if err != nil {
		return domain.Conversation{}, fmt.Errorf("%w: open direct conversation with user %d: %v", domain.ErrTransport, userID, err)
	}

	merged := uc.Registry.Upsert(conv)
	uc.Notifier.Publish(state.Change{Kind: state.ChangeConversations, ConversationID: merged.ID})
	return merged, nil
}
