package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatsync/internal/pkg/sync/application/domain"
)

func TestEditRejectsBlankContent(t *testing.T) {
	f := newFixture(t)
	uc := NewEditMessageUseCase(f.api, f.store, f.notifier)

	_, err := uc.Execute(context.Background(), 10, "  ")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestEditAppliesServerContent(t *testing.T) {
	f := newFixture(t)
	f.store.Insert(serverMessage(10, "before"))
	f.api.editMessage = func(_ context.Context, id int64, content string) (domain.Message, error) {
		m := serverMessage(id, content)
		return m, nil
	}
	uc := NewEditMessageUseCase(f.api, f.store, f.notifier)

	got, err := uc.Execute(context.Background(), 10, " after ")
	require.NoError(t, err)
	assert.Equal(t, "after", got.Body())
	assert.True(t, got.IsEdited)

	stored, ok := f.store.FindByID(7, 10)
	require.True(t, ok)
	assert.Equal(t, "after", stored.Body())
	assert.True(t, stored.IsEdited)
}

func TestEditToleratesUnloadedMessage(t *testing.T) {
	f := newFixture(t)
	f.api.editMessage = func(_ context.Context, id int64, content string) (domain.Message, error) {
		return serverMessage(id, content), nil
	}
	uc := NewEditMessageUseCase(f.api, f.store, f.notifier)

	got, err := uc.Execute(context.Background(), 999, "new")
	require.NoError(t, err)
	assert.Equal(t, "new", got.Body())
}

func TestDeleteTombstonesInPlace(t *testing.T) {
	f := newFixture(t)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i, body := range []string{"one", "two", "three"} {
		m := serverMessage(int64(i+1), body)
		m.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		f.store.Insert(m)
	}
	f.api.deleteMessage = func(_ context.Context, id int64) (domain.Message, error) {
		m := serverMessage(id, "")
		m.Content = nil
		m.IsDeleted = true
		return m, nil
	}
	uc := NewDeleteMessageUseCase(f.api, f.store, f.notifier, zerolog.Nop())

	_, err := uc.Execute(context.Background(), 2)
	require.NoError(t, err)

	got := f.store.Messages(7)
	require.Len(t, got, 3, "tombstoning must not remove the entry")
	assert.Equal(t, int64(2), got[1].ID, "position must be preserved")
	assert.True(t, got[1].IsDeleted)
	assert.Nil(t, got[1].Content)
}

func TestDeleteToleratesUnloadedMessage(t *testing.T) {
	f := newFixture(t)
	f.api.deleteMessage = func(_ context.Context, id int64) (domain.Message, error) {
		m := serverMessage(id, "")
		m.IsDeleted = true
		return m, nil
	}
	uc := NewDeleteMessageUseCase(f.api, f.store, f.notifier, zerolog.Nop())

	_, err := uc.Execute(context.Background(), 999)
	assert.NoError(t, err)
}

func TestToggleLikeFollowsServerResponse(t *testing.T) {
	f := newFixture(t)
	f.store.Insert(serverMessage(10, "hello"))

	// Server reports the like as active regardless of local guesswork.
	f.api.toggleLike = func(_ context.Context, id int64) (domain.Message, error) {
		m := serverMessage(id, "hello")
		m.Likes = []domain.User{self}
		return m, nil
	}
	uc := NewToggleLikeUseCase(f.api, f.store, f.notifier, self)

	liked, err := uc.Execute(context.Background(), 10)
	require.NoError(t, err)
	assert.True(t, liked)

	stored, _ := f.store.FindByID(7, 10)
	assert.True(t, stored.LikedByMe)
	require.Len(t, stored.Likes, 1)

	// Second toggle comes back without the like.
	f.api.toggleLike = func(_ context.Context, id int64) (domain.Message, error) {
		return serverMessage(id, "hello"), nil
	}
	liked, err = uc.Execute(context.Background(), 10)
	require.NoError(t, err)
	assert.False(t, liked)

	stored, _ = f.store.FindByID(7, 10)
	assert.False(t, stored.LikedByMe)
	assert.Empty(t, stored.Likes)
}

func TestTogglePinUsesAuthoritativeFlag(t *testing.T) {
	f := newFixture(t)
	f.store.Insert(serverMessage(10, "hello"))

	// Requested pinned=true, but the server says it ended up unpinned.
	f.api.togglePin = func(_ context.Context, id int64, _ bool) (domain.Message, error) {
		m := serverMessage(id, "hello")
		m.IsPinned = false
		return m, nil
	}
	uc := NewTogglePinUseCase(f.api, f.store, f.notifier)

	pinned, err := uc.Execute(context.Background(), 10, true)
	require.NoError(t, err)
	assert.False(t, pinned)

	stored, _ := f.store.FindByID(7, 10)
	assert.False(t, stored.IsPinned)
}

func TestMarkReadSwallowsTransportError(t *testing.T) {
	f := newFixture(t)
	f.registry.UpdateLastMessage(domain.Message{
		ID:             5,
		ConversationID: 7,
		Sender:         domain.User{ID: 2},
		Content:        strptr("unread"),
		CreatedAt:      time.Now().UTC(),
	})
	c, _ := f.registry.Get(7)
	require.Equal(t, 1, c.UnreadCount)

	f.api.markRead = func(context.Context, int64) error { return errBoom }
	uc := NewMarkReadUseCase(f.api, f.registry, f.notifier, zerolog.Nop())

	uc.Execute(context.Background(), 7)

	c, _ = f.registry.Get(7)
	assert.Zero(t, c.UnreadCount, "counter stays cleared even when the server call fails")
}
