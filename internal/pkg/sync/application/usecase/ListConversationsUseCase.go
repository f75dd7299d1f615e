package usecase

import (
	"context"
	"fmt"

	apiport "chatsync/internal/infrastructure/apiclient/port"
	"chatsync/internal/pkg/sync/application/domain"
	"chatsync/internal/pkg/sync/application/state"
)

// ListConversationsUseCase refreshes the registry from the server's
// conversation listing and returns the merged view in recency order.
type ListConversationsUseCase struct {
	API      apiport.ChatAPI
	Registry *state.ConversationRegistry
	Notifier *state.Notifier
}

func NewListConversationsUseCase(api apiport.ChatAPI, reg *state.ConversationRegistry, notifier *state.Notifier) *ListConversationsUseCase {
	return &ListConversationsUseCase{API: api, Registry: reg, Notifier: notifier}
}

// Execute lists conversations from the server and merges them locally.
func (uc *ListConversationsUseCase) Execute(ctx context.Context) ([]domain.Conversation, error) {
	list, err := uc.API.ListConversations(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list conversations: %v", domain.ErrTransport, err)
	}

	for _, c := range list {
		uc.Registry.Upsert(c)
	}
	uc.Notifier.Publish(state.Change{Kind: state.ChangeConversations})
	return uc.Registry.List(), nil
}
