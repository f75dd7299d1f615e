package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apiport "chatsync/internal/infrastructure/apiclient/port"
	"chatsync/internal/pkg/sync/application/domain"
)

func TestSendRejectsBlankContent(t *testing.T) {
	f := newFixture(t)
	uc := NewSendMessageUseCase(f.api, f.store, f.registry, f.retry, f.notifier, self)

	_, err := uc.Execute(context.Background(), SendMessageInput{ConversationID: 7, Content: "   "})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, f.store.Messages(7), "nothing may be written before validation passes")
}

func TestSendRejectsWithoutTarget(t *testing.T) {
	f := newFixture(t)
	uc := NewSendMessageUseCase(f.api, f.store, f.registry, f.retry, f.notifier, self)

	_, err := uc.Execute(context.Background(), SendMessageInput{Content: "hi"})
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestSendReconcilesServerMessage(t *testing.T) {
	f := newFixture(t)
	f.api.sendMessage = func(_ context.Context, req apiport.SendRequest) (domain.Message, error) {
		return serverMessage(42, req.Content), nil
	}
	uc := NewSendMessageUseCase(f.api, f.store, f.registry, f.retry, f.notifier, self)

	msg, err := uc.Execute(context.Background(), SendMessageInput{ConversationID: 7, Content: "hello"})
	require.NoError(t, err)
	assert.Equal(t, int64(42), msg.ID)

	got := f.store.Messages(7)
	require.Len(t, got, 1, "optimistic entry must be replaced, not duplicated")
	assert.Equal(t, int64(42), got[0].ID)
	assert.Empty(t, got[0].TempID)

	c, _ := f.registry.Get(7)
	require.NotNil(t, c.LastMessage)
	assert.Equal(t, int64(42), c.LastMessage.ID)
}

func TestSendFailureLeavesFailedEntry(t *testing.T) {
	f := newFixture(t)
	f.api.sendMessage = func(context.Context, apiport.SendRequest) (domain.Message, error) {
		return domain.Message{}, errBoom
	}
	uc := NewSendMessageUseCase(f.api, f.store, f.registry, f.retry, f.notifier, self)

	_, err := uc.Execute(context.Background(), SendMessageInput{ConversationID: 7, Content: "hello"})
	assert.ErrorIs(t, err, domain.ErrTransport)

	got := f.store.Messages(7)
	require.Len(t, got, 1, "failed message stays visible inline")
	assert.Equal(t, domain.DeliveryFailed, got[0].DeliveryState)
	assert.NotEmpty(t, got[0].TempID)
	assert.Equal(t, 1, f.retry.Len())
}

func TestSendResolvesDirectConversationFromRecipient(t *testing.T) {
	f := newFixture(t)
	f.api.getOrCreateDirect = func(_ context.Context, userID int64) (domain.Conversation, error) {
		return domain.Conversation{ID: 9, IsDirect: true, Participants: []domain.User{self, {ID: userID}}}, nil
	}
	f.api.sendMessage = func(_ context.Context, req apiport.SendRequest) (domain.Message, error) {
		msg := serverMessage(50, req.Content)
		msg.ConversationID = req.ConversationID
		return msg, nil
	}
	uc := NewSendMessageUseCase(f.api, f.store, f.registry, f.retry, f.notifier, self)

	msg, err := uc.Execute(context.Background(), SendMessageInput{RecipientID: 2, Content: "hi"})
	require.NoError(t, err)
	assert.Equal(t, int64(9), msg.ConversationID)

	_, ok := f.registry.Get(9)
	assert.True(t, ok, "resolved conversation must be registered")
}

func TestSendResolvesReplyPreview(t *testing.T) {
	f := newFixture(t)
	f.store.Insert(serverMessage(10, "original"))
	var sent apiport.SendRequest
	f.api.sendMessage = func(_ context.Context, req apiport.SendRequest) (domain.Message, error) {
		sent = req
		return serverMessage(11, req.Content), nil
	}
	uc := NewSendMessageUseCase(f.api, f.store, f.registry, f.retry, f.notifier, self)

	_, err := uc.Execute(context.Background(), SendMessageInput{ConversationID: 7, Content: "re", ReplyToID: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(10), sent.ReplyToID)
}
