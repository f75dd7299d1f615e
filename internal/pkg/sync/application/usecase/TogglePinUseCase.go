package usecase

import (
	"context"
	"errors"
	"fmt"

	apiport "chatsync/internal/infrastructure/apiclient/port"
	"chatsync/internal/pkg/sync/application/domain"
	"chatsync/internal/pkg/sync/application/state"
)

// TogglePinUseCase pins or unpins a message. The pin flag applied locally is
// the one the server reports back, not the one that was requested.
type TogglePinUseCase struct {
	API      apiport.ChatAPI
	Store    *state.MessageStore
	Notifier *state.Notifier
}

func NewTogglePinUseCase(api apiport.ChatAPI, store *state.MessageStore, notifier *state.Notifier) *TogglePinUseCase {
	return &TogglePinUseCase{API: api, Store: store, Notifier: notifier}
}

// Execute toggles the pin and returns the authoritative pinned state.
func (uc *TogglePinUseCase) Execute(ctx context.Context, messageID int64, pinned bool) (bool, error) {
	msg, err := uc.API.TogglePin(ctx, messageID, pinned)
	if err != nil {
		return false, fmt.Errorf("%w: toggle pin on message %d: %v", domain.ErrTransport, messageID, err)
	}

	if err := uc.Store.UpsertPin(messageID, msg.IsPinned); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return msg.IsPinned, nil
		}
		return false, err
	}

	uc.Notifier.Publish(state.Change{Kind: state.ChangeMessages, ConversationID: msg.ConversationID})
	return msg.IsPinned, nil
}
