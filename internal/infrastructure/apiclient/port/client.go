package port

import (
	"context"

	"chatsync/internal/pkg/sync/application/domain"
)

// MessageQuery shapes a history page request. BeforeID of zero means "the
// newest page"; a non-positive Limit lets the adapter pick its default.
type MessageQuery struct {
	BeforeID int64
	Limit    int
}

// SendRequest carries an outbound message. Exactly one of ConversationID or
// RecipientID must be set; a recipient without a conversation asks the
// server for the direct conversation first.
type SendRequest struct {
	ConversationID int64
	RecipientID    int64
	Content        string
	ReplyToID      int64
}

// ChatAPI is the request/response contract against the marketplace chat
// backend. Adapters own transport mechanics (base URL, auth token, JSON
// shapes); the engine only sees canonical domain records. All methods are
// context-aware; failures are reported wrapped in domain.ErrTransport.
type ChatAPI interface {
	ListConversations(ctx context.Context) ([]domain.Conversation, error)
	GetOrCreateDirectConversation(ctx context.Context, userID int64) (domain.Conversation, error)
	ListMessages(ctx context.Context, conversationID int64, q MessageQuery) ([]domain.Message, error)
	SendMessage(ctx context.Context, req SendRequest) (domain.Message, error)
	EditMessage(ctx context.Context, id int64, content string) (domain.Message, error)
	DeleteMessage(ctx context.Context, id int64) (domain.Message, error)
	TogglePin(ctx context.Context, id int64, pinned bool) (domain.Message, error)
	ToggleLike(ctx context.Context, id int64) (domain.Message, error)
	MarkConversationRead(ctx context.Context, conversationID int64) error
}
