package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	apiport "chatsync/internal/infrastructure/apiclient/port"
	"chatsync/internal/pkg/sync/application/domain"
	"chatsync/internal/pkg/sync/application/state"
)

// stubAPI implements port.ChatAPI with overridable function fields, the
// minimal double the use case tests need.
type stubAPI struct {
	listConversations func(ctx context.Context) ([]domain.Conversation, error)
	getOrCreateDirect func(ctx context.Context, userID int64) (domain.Conversation, error)
	listMessages      func(ctx context.Context, conversationID int64, q apiport.MessageQuery) ([]domain.Message, error)
	sendMessage       func(ctx context.Context, req apiport.SendRequest) (domain.Message, error)
	editMessage       func(ctx context.Context, id int64, content string) (domain.Message, error)
	deleteMessage     func(ctx context.Context, id int64) (domain.Message, error)
	togglePin         func(ctx context.Context, id int64, pinned bool) (domain.Message, error)
	toggleLike        func(ctx context.Context, id int64) (domain.Message, error)
	markRead          func(ctx context.Context, conversationID int64) error
}

func (s *stubAPI) ListConversations(ctx context.Context) ([]domain.Conversation, error) {
	return s.listConversations(ctx)
}

func (s *stubAPI) GetOrCreateDirectConversation(ctx context.Context, userID int64) (domain.Conversation, error) {
	return s.getOrCreateDirect(ctx, userID)
}

func (s *stubAPI) ListMessages(ctx context.Context, conversationID int64, q apiport.MessageQuery) ([]domain.Message, error) {
	return s.listMessages(ctx, conversationID, q)
}

func (s *stubAPI) SendMessage(ctx context.Context, req apiport.SendRequest) (domain.Message, error) {
	return s.sendMessage(ctx, req)
}

func (s *stubAPI) EditMessage(ctx context.Context, id int64, content string) (domain.Message, error) {
	return s.editMessage(ctx, id, content)
}

func (s *stubAPI) DeleteMessage(ctx context.Context, id int64) (domain.Message, error) {
	return s.deleteMessage(ctx, id)
}

func (s *stubAPI) TogglePin(ctx context.Context, id int64, pinned bool) (domain.Message, error) {
	return s.togglePin(ctx, id, pinned)
}

func (s *stubAPI) ToggleLike(ctx context.Context, id int64) (domain.Message, error) {
	return s.toggleLike(ctx, id)
}

func (s *stubAPI) MarkConversationRead(ctx context.Context, conversationID int64) error {
	return s.markRead(ctx, conversationID)
}

var errBoom = errors.New("boom")

var self = domain.User{ID: 1, Username: "me"}

type fixture struct {
	api      *stubAPI
	store    *state.MessageStore
	registry *state.ConversationRegistry
	retry    *state.RetryQueue
	notifier *state.Notifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		api:      &stubAPI{},
		store:    state.NewMessageStore(self.ID, zerolog.Nop()),
		registry: state.NewConversationRegistry(self.ID, zerolog.Nop()),
		retry:    state.NewRetryQueue(),
		notifier: state.NewNotifier(),
	}
	f.registry.Upsert(domain.Conversation{
		ID:           7,
		Participants: []domain.User{self, {ID: 2, Username: "ana"}},
		CreatedAt:    time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
	})
	return f
}

func strptr(s string) *string { return &s }

func serverMessage(id int64, content string) domain.Message {
	return domain.Message{
		ID:             id,
		ConversationID: 7,
		Sender:         self,
		Content:        strptr(content),
		CreatedAt:      time.Now().UTC(),
	}
}
