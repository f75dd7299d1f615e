package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	apiport "chatsync/internal/infrastructure/apiclient/port"
	"chatsync/internal/pkg/sync/application/domain"
	"chatsync/internal/pkg/sync/application/state"
)

// DeleteMessageUseCase asks the server to delete a message and tombstones
// the local record in place. The entry is never removed from the history so
// pagination cursors and message positions stay stable.
type DeleteMessageUseCase struct {
	API      apiport.ChatAPI
	Store    *state.MessageStore
	Notifier *state.Notifier
	Log      zerolog.Logger
}

func NewDeleteMessageUseCase(api apiport.ChatAPI, store *state.MessageStore, notifier *state.Notifier, log zerolog.Logger) *DeleteMessageUseCase {
	return &DeleteMessageUseCase{API: api, Store: store, Notifier: notifier, Log: log}
}

// Execute deletes the message and returns the tombstoned record as the
// server reported it.
func (uc *DeleteMessageUseCase) Execute(ctx context.Context, messageID int64) (domain.Message, error) {
	msg, err := uc.API.DeleteMessage(ctx, messageID)
	if err != nil {
		return domain.Message{}, fmt.Errorf("%w: delete message %d: %v", domain.ErrTransport, messageID, err)
	}

	if err := uc.Store.Tombstone(msg.ConversationID, messageID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			uc.Log.Warn().Int64("message_id", messageID).Msg("delete target not loaded locally")
			return msg, nil
		}
		return domain.Message{}, err
	}

	// Pick up any other server-populated fields alongside the tombstone.
	deleted := true
	if _, err := uc.Store.ReconcileByID(msg.ConversationID, messageID, state.MessagePatch{
		IsDeleted: &deleted,
		IsPinned:  &msg.IsPinned,
		Likes:     msg.Likes,
	}); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return domain.Message{}, err
	}

	uc.Notifier.Publish(state.Change{Kind: state.ChangeMessages, ConversationID: msg.ConversationID})
	return msg, nil
}
