package usecase

import (
	"context"
	"errors"
	"fmt"

	apiport "chatsync/internal/infrastructure/apiclient/port"
	"chatsync/internal/pkg/sync/application/domain"
	"chatsync/internal/pkg/sync/application/state"
)

// ToggleLikeUseCase flips the current user's like on a message. The server
// response decides whether the like is now active; the local state is never
// assumed from the request direction.
type ToggleLikeUseCase struct {
	API      apiport.ChatAPI
	Store    *state.MessageStore
	Notifier *state.Notifier
	Self     domain.User
}

func NewToggleLikeUseCase(api apiport.ChatAPI, store *state.MessageStore, notifier *state.Notifier, self domain.User) *ToggleLikeUseCase {
	return &ToggleLikeUseCase{API: api, Store: store, Notifier: notifier, Self: self}
}

// Execute toggles the like and returns whether it is now active.
func (uc *ToggleLikeUseCase) Execute(ctx context.Context, messageID int64) (bool, error) {
	msg, err := uc.API.ToggleLike(ctx, messageID)
	if err != nil {
		return false, fmt.Errorf("%w: toggle like on message %d: %v", domain.ErrTransport, messageID, err)
	}

	liked := msg.LikedBy(uc.Self.ID)
	if err := uc.Store.UpsertLike(messageID, uc.Self, liked); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return liked, nil
		}
		return false, err
	}

	uc.Notifier.Publish(state.Change{Kind: state.ChangeMessages, ConversationID: msg.ConversationID})
	return liked, nil
}
