package usecase

import (
	"context"
	"fmt"

	apiport "chatsync/internal/infrastructure/apiclient/port"
	"chatsync/internal/pkg/sync/application/domain"
	"chatsync/internal/pkg/sync/application/state"
)

// DefaultPageSize is requested when the caller does not pick a limit.
const DefaultPageSize = 50

// FetchMessagesInput requests one history page. BeforeID of zero fetches
// the newest page.
type FetchMessagesInput struct {
	ConversationID int64
	BeforeID       int64
	Limit          int
}

// FetchMessagesOutput is the merged view after the page landed. HasMore is
// derived from the page size: a short page means the history is exhausted.
type FetchMessagesOutput struct {
	Messages []domain.Message
	HasMore  bool
}

// FetchMessagesUseCase loads a page of history and folds it into the store
// with id-based dedup, so re-fetching an overlapping window never duplicates
// a message.
type FetchMessagesUseCase struct {
	API      apiport.ChatAPI
	Store    *state.MessageStore
	Notifier *state.Notifier
}

func NewFetchMessagesUseCase(api apiport.ChatAPI, store *state.MessageStore, notifier *state.Notifier) *FetchMessagesUseCase {
	return &FetchMessagesUseCase{API: api, Store: store, Notifier: notifier}
}

// Execute fetches the page and returns the conversation's merged history.
func (uc *FetchMessagesUseCase) Execute(ctx context.Context, in FetchMessagesInput) (FetchMessagesOutput, error) {
	if in.ConversationID == 0 {
		return FetchMessagesOutput{}, fmt.Errorf("%w: conversation id is required", domain.ErrInvalidRequest)
	}
	limit := in.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}

	page, err := uc.API.ListMessages(ctx, in.ConversationID, apiport.MessageQuery{BeforeID: in.BeforeID, Limit: limit})
	if err != nil {
		return FetchMessagesOutput{}, fmt.Errorf("%w: list messages for conversation %d: %v", domain.ErrTransport, in.ConversationID, err)
	}

	if added := uc.Store.MergePage(in.ConversationID, page); added > 0 {
		uc.Notifier.Publish(state.Change{Kind: state.ChangeMessages, ConversationID: in.ConversationID})
	}

	return FetchMessagesOutput{
		Messages: uc.Store.Messages(in.ConversationID),
		HasMore:  len(page) == limit,
	}, nil
}
