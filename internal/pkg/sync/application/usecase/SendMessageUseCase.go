package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	apiport "chatsync/internal/infrastructure/apiclient/port"
	"chatsync/internal/pkg/sync/application/domain"
	"chatsync/internal/pkg/sync/application/state"
)

// SendMessageInput carries the data needed to send a new message. Exactly
// one of ConversationID or RecipientID must be set; a bare recipient asks
// the server for the direct conversation first.
type SendMessageInput struct {
	ConversationID int64
	RecipientID    int64
	Content        string
	ReplyToID      int64
}

// SendMessageUseCase writes the optimistic message locally, calls the
// backend, and reconciles the acknowledged message back into the store. On
// transport failure the optimistic entry stays in place marked failed and
// its payload is queued for retry; the error is surfaced to the caller.
type SendMessageUseCase struct {
	API      apiport.ChatAPI
	Store    *state.MessageStore
	Registry *state.ConversationRegistry
	Retry    *state.RetryQueue
	Notifier *state.Notifier
	Self     domain.User
}

func NewSendMessageUseCase(api apiport.ChatAPI, store *state.MessageStore, reg *state.ConversationRegistry, retry *state.RetryQueue, notifier *state.Notifier, self domain.User) *SendMessageUseCase {
	return &SendMessageUseCase{API: api, Store: store, Registry: reg, Retry: retry, Notifier: notifier, Self: self}
}

// Execute sends a message and returns the server-acknowledged record.
func (uc *SendMessageUseCase) Execute(ctx context.Context, in SendMessageInput) (domain.Message, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return domain.Message{}, fmt.Errorf("%w: message content is empty", domain.ErrValidation)
	}
	if in.ConversationID == 0 && in.RecipientID == 0 {
		return domain.Message{}, fmt.Errorf("%w: neither conversation nor recipient given", domain.ErrInvalidRequest)
	}

	conversationID := in.ConversationID
	if conversationID == 0 {
		conv, err := uc.API.GetOrCreateDirectConversation(ctx, in.RecipientID)
		if err != nil {
			return domain.Message{}, fmt.Errorf("%w: resolve direct conversation: %v", domain.ErrTransport, err)
		}
		uc.Registry.Upsert(conv)
		uc.Notifier.Publish(state.Change{Kind: state.ChangeConversations})
		conversationID = conv.ID
	}

	tempID := uuid.NewString()
	optimistic := domain.Message{
		TempID:         tempID,
		ConversationID: conversationID,
		Sender:         uc.Self,
		Content:        &content,
		CreatedAt:      time.Now().UTC(),
		DeliveryState:  domain.DeliveryPending,
	}
	if in.ReplyToID != 0 {
		if target, ok := uc.Store.FindByID(conversationID, in.ReplyToID); ok {
			ref := target.Ref()
			optimistic.ReplyTo = &ref
		}
	}

	if _, isNewest := uc.Store.Insert(optimistic); isNewest {
		uc.Registry.UpdateLastMessage(optimistic)
		uc.Notifier.Publish(state.Change{Kind: state.ChangeConversations})
	}
	uc.Notifier.Publish(state.Change{Kind: state.ChangeMessages, ConversationID: conversationID})

	req := apiport.SendRequest{ConversationID: conversationID, Content: content, ReplyToID: in.ReplyToID}
	msg, err := uc.API.SendMessage(ctx, req)
	if err != nil {
		_ = uc.Store.SetDeliveryState(tempID, domain.DeliveryFailed)
		uc.Retry.Add(state.PendingSend{
			TempID:         tempID,
			ConversationID: conversationID,
			Content:        content,
			ReplyToID:      in.ReplyToID,
		})
		uc.Notifier.Publish(state.Change{Kind: state.ChangeMessages, ConversationID: conversationID})
		return domain.Message{}, fmt.Errorf("%w: send message: %v", domain.ErrTransport, err)
	}

	isNewest, replaceErr := uc.Store.ReplaceTemp(tempID, msg)
	if replaceErr != nil {
		// The optimistic entry is gone (e.g. superseded by the same server
		// message arriving over the transport first); the insert path has
		// already deduplicated, nothing left to do.
		uc.Store.Insert(msg)
	}
	if isNewest {
		uc.Registry.UpdateLastMessage(msg)
		uc.Notifier.Publish(state.Change{Kind: state.ChangeConversations})
	}
	uc.Notifier.Publish(state.Change{Kind: state.ChangeMessages, ConversationID: conversationID})
	return msg, nil
}
