package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"chatsync/internal/infrastructure/apiclient/port"
	"chatsync/internal/infrastructure/wire"
	"chatsync/internal/pkg/sync/application/domain"
)

const defaultRequestTimeout = 10 * time.Second

// RESTClient implements port.ChatAPI against the marketplace chat HTTP API.
// Responses are decoded through the wire package so every field-name variant
// the backend emits lands in one canonical shape.
type RESTClient struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewRESTClient constructs a client for the given base URL. An empty token
// sends unauthenticated requests.
func NewRESTClient(baseURL, token string) (*RESTClient, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("apiclient: base URL is required")
	}
	return &RESTClient{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: defaultRequestTimeout},
	}, nil
}

// NewRESTClientFromEnv constructs a client from CHAT_API_URL and
// CHAT_AUTH_TOKEN.
func NewRESTClientFromEnv() (*RESTClient, error) {
	url := os.Getenv("CHAT_API_URL")
	if url == "" {
		return nil, errors.New("apiclient: CHAT_API_URL environment variable is not set")
	}
	return NewRESTClient(url, os.Getenv("CHAT_AUTH_TOKEN"))
}

// Ensure interface compliance at compile time
var _ port.ChatAPI = (*RESTClient)(nil)

func (c *RESTClient) ListConversations(ctx context.Context) ([]domain.Conversation, error) {
	var out []wire.Conversation
	if err := c.do(ctx, http.MethodGet, "/chat/conversations", nil, &out); err != nil {
		return nil, err
	}
	list := make([]domain.Conversation, 0, len(out))
	for _, dto := range out {
		list = append(list, dto.Normalize())
	}
	return list, nil
}

func (c *RESTClient) GetOrCreateDirectConversation(ctx context.Context, userID int64) (domain.Conversation, error) {
	body := map[string]any{"user_id": userID}
	var out wire.Conversation
	if err := c.do(ctx, http.MethodPost, "/chat/conversations/direct", body, &out); err != nil {
		return domain.Conversation{}, err
	}
	return out.Normalize(), nil
}

func (c *RESTClient) ListMessages(ctx context.Context, conversationID int64, q port.MessageQuery) ([]domain.Message, error) {
	path := fmt.Sprintf("/chat/conversations/%d/messages", conversationID)
	params := make([]string, 0, 2)
	if q.BeforeID > 0 {
		params = append(params, "before="+strconv.FormatInt(q.BeforeID, 10))
	}
	if q.Limit > 0 {
		params = append(params, "limit="+strconv.Itoa(q.Limit))
	}
	if len(params) > 0 {
		path += "?" + strings.Join(params, "&")
	}

	var out []wire.Message
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	msgs := make([]domain.Message, 0, len(out))
	for _, dto := range out {
		msgs = append(msgs, dto.Normalize())
	}
	return msgs, nil
}

func (c *RESTClient) SendMessage(ctx context.Context, req port.SendRequest) (domain.Message, error) {
	body := map[string]any{
		"conversation_id": req.ConversationID,
		"content":         req.Content,
	}
	if req.RecipientID != 0 {
		body["recipient_id"] = req.RecipientID
	}
	if req.ReplyToID != 0 {
		body["reply_to_id"] = req.ReplyToID
	}

	var out wire.Message
	if err := c.do(ctx, http.MethodPost, "/chat/messages", body, &out); err != nil {
		return domain.Message{}, err
	}
	return out.Normalize(), nil
}

func (c *RESTClient) EditMessage(ctx context.Context, id int64, content string) (domain.Message, error) {
	var out wire.Message
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/chat/messages/%d", id), map[string]any{"content": content}, &out); err != nil {
		return domain.Message{}, err
	}
	return out.Normalize(), nil
}

func (c *RESTClient) DeleteMessage(ctx context.Context, id int64) (domain.Message, error) {
	var out wire.Message
	if err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/chat/messages/%d", id), nil, &out); err != nil {
		return domain.Message{}, err
	}
	return out.Normalize(), nil
}

func (c *RESTClient) TogglePin(ctx context.Context, id int64, pinned bool) (domain.Message, error) {
	var out wire.Message
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/chat/messages/%d/pin", id), map[string]any{"pinned": pinned}, &out); err != nil {
		return domain.Message{}, err
	}
	return out.Normalize(), nil
}

func (c *RESTClient) ToggleLike(ctx context.Context, id int64) (domain.Message, error) {
	var out wire.Message
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/chat/messages/%d/like", id), nil, &out); err != nil {
		return domain.Message{}, err
	}
	return out.Normalize(), nil
}

func (c *RESTClient) MarkConversationRead(ctx context.Context, conversationID int64) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/chat/conversations/%d/read", conversationID), nil, nil)
}

// do issues one JSON request and decodes the response into out, when out is
// non-nil. Non-2xx statuses become errors carrying the status and a bounded
// slice of the body.
func (c *RESTClient) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("apiclient: encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("apiclient: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("apiclient: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("apiclient: %s %s: status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("apiclient: decode response for %s %s: %w", method, path, err)
	}
	return nil
}
