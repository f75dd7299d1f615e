package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apiport "chatsync/internal/infrastructure/apiclient/port"
	"chatsync/internal/pkg/sync/application/domain"
)

func historyPage(base time.Time, ids ...int64) []domain.Message {
	page := make([]domain.Message, 0, len(ids))
	for _, id := range ids {
		m := serverMessage(id, "msg")
		m.CreatedAt = base.Add(time.Duration(id) * time.Second)
		page = append(page, m)
	}
	return page
}

func TestFetchMergesPageWithoutDuplicates(t *testing.T) {
	f := newFixture(t)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	f.store.Insert(historyPage(base, 3)[0])

	f.api.listMessages = func(_ context.Context, _ int64, q apiport.MessageQuery) ([]domain.Message, error) {
		assert.Equal(t, 3, q.Limit)
		return historyPage(base, 1, 2, 3), nil
	}
	uc := NewFetchMessagesUseCase(f.api, f.store, f.notifier)

	out, err := uc.Execute(context.Background(), FetchMessagesInput{ConversationID: 7, Limit: 3})
	require.NoError(t, err)
	require.Len(t, out.Messages, 3, "overlapping page must not duplicate ids")
	assert.True(t, out.HasMore, "full page implies more history")
	// Chronological order regardless of arrival order.
	assert.Equal(t, int64(1), out.Messages[0].ID)
	assert.Equal(t, int64(3), out.Messages[2].ID)
}

func TestFetchShortPageExhaustsHistory(t *testing.T) {
	f := newFixture(t)
	f.api.listMessages = func(_ context.Context, _ int64, q apiport.MessageQuery) ([]domain.Message, error) {
		assert.Equal(t, DefaultPageSize, q.Limit)
		return historyPage(time.Now().UTC(), 1, 2), nil
	}
	uc := NewFetchMessagesUseCase(f.api, f.store, f.notifier)

	out, err := uc.Execute(context.Background(), FetchMessagesInput{ConversationID: 7})
	require.NoError(t, err)
	assert.False(t, out.HasMore)
}

func TestFetchRequiresConversation(t *testing.T) {
	f := newFixture(t)
	uc := NewFetchMessagesUseCase(f.api, f.store, f.notifier)

	_, err := uc.Execute(context.Background(), FetchMessagesInput{})
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestFetchPassesCursor(t *testing.T) {
	f := newFixture(t)
	var got apiport.MessageQuery
	f.api.listMessages = func(_ context.Context, _ int64, q apiport.MessageQuery) ([]domain.Message, error) {
		got = q
		return nil, nil
	}
	uc := NewFetchMessagesUseCase(f.api, f.store, f.notifier)

	_, err := uc.Execute(context.Background(), FetchMessagesInput{ConversationID: 7, BeforeID: 33, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(33), got.BeforeID)
	assert.Equal(t, 10, got.Limit)
}

func TestListConversationsMergesServerView(t *testing.T) {
	f := newFixture(t)
	f.api.listConversations = func(context.Context) ([]domain.Conversation, error) {
		return []domain.Conversation{
			{ID: 7, Name: "renamed", UnreadCount: 2, LastActivityAt: time.Now().UTC()},
			{ID: 8, Name: "fresh"},
		}, nil
	}
	uc := NewListConversationsUseCase(f.api, f.registry, f.notifier)

	list, err := uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 2)

	c, ok := f.registry.Get(7)
	require.True(t, ok)
	assert.Equal(t, "renamed", c.Name)
}

func TestListConversationsTransportError(t *testing.T) {
	f := newFixture(t)
	f.api.listConversations = func(context.Context) ([]domain.Conversation, error) {
		return nil, errBoom
	}
	uc := NewListConversationsUseCase(f.api, f.registry, f.notifier)

	_, err := uc.Execute(context.Background())
	assert.ErrorIs(t, err, domain.ErrTransport)
}

func TestOpenDirectRegistersConversation(t *testing.T) {
	f := newFixture(t)
	f.api.getOrCreateDirect = func(_ context.Context, userID int64) (domain.Conversation, error) {
		return domain.Conversation{ID: 12, IsDirect: true, Participants: []domain.User{self, {ID: userID, Username: "bo"}}}, nil
	}
	uc := NewOpenDirectConversationUseCase(f.api, f.registry, f.notifier)

	conv, err := uc.Execute(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, int64(12), conv.ID)

	_, ok := f.registry.Get(12)
	assert.True(t, ok)
}

func TestOpenDirectRequiresUser(t *testing.T) {
	f := newFixture(t)
	uc := NewOpenDirectConversationUseCase(f.api, f.registry, f.notifier)

	_, err := uc.Execute(context.Background(), 0)
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}
