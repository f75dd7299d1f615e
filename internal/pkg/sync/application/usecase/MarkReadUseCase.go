package usecase

import (
	"context"

	"github.com/rs/zerolog"

	apiport "chatsync/internal/infrastructure/apiclient/port"
	"chatsync/internal/pkg/sync/application/state"
)

// MarkReadUseCase zeroes a conversation's unread counter and tells the
// server. The counter is cleared optimistically; a network failure is
// logged, not reverted — the user has seen the messages either way, and the
// next listing reconciles the server's view.
type MarkReadUseCase struct {
	API      apiport.ChatAPI
	Registry *state.ConversationRegistry
	Notifier *state.Notifier
	Log      zerolog.Logger
}

func NewMarkReadUseCase(api apiport.ChatAPI, reg *state.ConversationRegistry, notifier *state.Notifier, log zerolog.Logger) *MarkReadUseCase {
	return &MarkReadUseCase{API: api, Registry: reg, Notifier: notifier, Log: log}
}

// Execute marks the conversation read.
func (uc *MarkReadUseCase) Execute(ctx context.Context, conversationID int64) {
	uc.Registry.MarkRead(conversationID)
	uc.Notifier.Publish(state.Change{Kind: state.ChangeConversations, ConversationID: conversationID})

	if err := uc.API.MarkConversationRead(ctx, conversationID); err != nil {
		uc.Log.Warn().
			Err(err).
			Int64("conversation_id", conversationID).
			Msg("mark-read not acknowledged by server")
	}
}
