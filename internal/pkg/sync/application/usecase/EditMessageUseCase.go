package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	apiport "chatsync/internal/infrastructure/apiclient/port"
	"chatsync/internal/pkg/sync/application/domain"
	"chatsync/internal/pkg/sync/application/state"
)

// EditMessageUseCase replaces a message's content. Nothing is applied
// locally until the server confirms; the authoritative response is then
// reconciled into the store with the edited flag set.
type EditMessageUseCase struct {
	API      apiport.ChatAPI
	Store    *state.MessageStore
	Notifier *state.Notifier
}

func NewEditMessageUseCase(api apiport.ChatAPI, store *state.MessageStore, notifier *state.Notifier) *EditMessageUseCase {
	return &EditMessageUseCase{API: api, Store: store, Notifier: notifier}
}

// Execute edits the message and returns its reconciled state.
func (uc *EditMessageUseCase) Execute(ctx context.Context, messageID int64, content string) (domain.Message, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return domain.Message{}, fmt.Errorf("%w: edited content is empty", domain.ErrValidation)
	}

	msg, err := uc.API.EditMessage(ctx, messageID, trimmed)
	if err != nil {
		return domain.Message{}, fmt.Errorf("%w: edit message %d: %v", domain.ErrTransport, messageID, err)
	}

	edited := true
	updated, err := uc.Store.ReconcileByID(msg.ConversationID, messageID, state.MessagePatch{
		Content:  msg.Content,
		IsEdited: &edited,
		Likes:    msg.Likes,
		ReplyTo:  msg.ReplyTo,
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Message not loaded locally; the server state stands on its own.
			return msg, nil
		}
		return domain.Message{}, err
	}

	uc.Notifier.Publish(state.Change{Kind: state.ChangeMessages, ConversationID: updated.ConversationID})
	return updated, nil
}
