package usecase

import (
	"context"
	"fmt"

	apiport "chatsync/internal/infrastructure/apiclient/port"
	"chatsync/internal/pkg/sync/application/domain"
	"chatsync/internal/pkg/sync/application/state"
)

// RetryMessageUseCase re-sends a failed message identified by its client
// temp id. On success the optimistic entry is replaced wholesale by the
// server record, so exactly one message remains and the temp id disappears.
// On failure the entry reverts to failed and the error is rethrown.
type RetryMessageUseCase struct {
	API      apiport.ChatAPI
	Store    *state.MessageStore
	Registry *state.ConversationRegistry
	Retry    *state.RetryQueue
	Notifier *state.Notifier
}

func NewRetryMessageUseCase(api apiport.ChatAPI, store *state.MessageStore, reg *state.ConversationRegistry, retry *state.RetryQueue, notifier *state.Notifier) *RetryMessageUseCase {
	return &RetryMessageUseCase{API: api, Store: store, Registry: reg, Retry: retry, Notifier: notifier}
}

// Execute retries the send and returns the acknowledged message.
func (uc *RetryMessageUseCase) Execute(ctx context.Context, tempID string) (domain.Message, error) {
	pending, ok := uc.Retry.Take(tempID)
	if !ok {
		// Queue entry may be gone (e.g. after a prior half-finished retry);
		// rebuild the payload from the failed message still in the store.
		m, found := uc.Store.FindByTempID(tempID)
		if !found || m.DeliveryState != domain.DeliveryFailed {
			return domain.Message{}, fmt.Errorf("%w: no failed message with temp id %s", domain.ErrNotFound, tempID)
		}
		pending = state.PendingSend{
			TempID:         tempID,
			ConversationID: m.ConversationID,
			Content:        m.Body(),
		}
		if m.ReplyTo != nil {
			pending.ReplyToID = m.ReplyTo.ID
		}
	}

	if err := uc.Store.SetDeliveryState(tempID, domain.DeliveryPending); err != nil {
		return domain.Message{}, err
	}
	uc.Notifier.Publish(state.Change{Kind: state.ChangeMessages, ConversationID: pending.ConversationID})

	msg, err := uc.API.SendMessage(ctx, apiport.SendRequest{
		ConversationID: pending.ConversationID,
		Content:        pending.Content,
		ReplyToID:      pending.ReplyToID,
	})
	if err != nil {
		_ = uc.Store.SetDeliveryState(tempID, domain.DeliveryFailed)
		uc.Retry.Add(pending)
		uc.Notifier.Publish(state.Change{Kind: state.ChangeMessages, ConversationID: pending.ConversationID})
		return domain.Message{}, fmt.Errorf("%w: retry send: %v", domain.ErrTransport, err)
	}

	isNewest, replaceErr := uc.Store.ReplaceTemp(tempID, msg)
	if replaceErr != nil {
		uc.Store.Insert(msg)
	}
	if isNewest {
		uc.Registry.UpdateLastMessage(msg)
		uc.Notifier.Publish(state.Change{Kind: state.ChangeConversations})
	}
	uc.Notifier.Publish(state.Change{Kind: state.ChangeMessages, ConversationID: msg.ConversationID})
	return msg, nil
}
