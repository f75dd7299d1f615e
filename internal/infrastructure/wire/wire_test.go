package wire

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeAcceptsKnownFormats(t *testing.T) {
	want := time.Date(2026, 8, 1, 12, 30, 0, 0, time.UTC)
	cases := map[string]string{
		"rfc3339":      `"2026-08-01T12:30:00Z"`,
		"unix seconds": "1785587400",
		"unix millis":  "1785587400000",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			var ts Time
			require.NoError(t, json.Unmarshal([]byte(raw), &ts))
			assert.True(t, ts.Equal(want), "got %v, want %v", ts.Time, want)
		})
	}

	t.Run("null stays zero", func(t *testing.T) {
		var ts Time
		require.NoError(t, json.Unmarshal([]byte("null"), &ts))
		assert.True(t, ts.IsZero())
	})

	t.Run("garbage rejected", func(t *testing.T) {
		var ts Time
		assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &ts))
	})
}

func TestMessageNormalizeSnakeCase(t *testing.T) {
	raw := `{
		"id": 10,
		"conversation_id": 7,
		"sender": {"id": 2, "username": "ana"},
		"content": "hello",
		"created_at": "2026-08-01T12:30:00Z",
		"is_edited": true,
		"likes": [{"id": 3, "name": "bo"}]
	}`
	var m Message
	require.NoError(t, json.Unmarshal([]byte(raw), &m))

	got := m.Normalize()
	assert.Equal(t, int64(10), got.ID)
	assert.Equal(t, int64(7), got.ConversationID)
	assert.Equal(t, "ana", got.Sender.Username)
	require.NotNil(t, got.Content)
	assert.Equal(t, "hello", *got.Content)
	assert.True(t, got.IsEdited)
	require.Len(t, got.Likes, 1)
	assert.Equal(t, "bo", got.Likes[0].Username, "name falls back to username")
}

func TestMessageNormalizeCamelCaseAliases(t *testing.T) {
	raw := `{
		"id": 10,
		"conversationId": 7,
		"user": {"id": 2, "username": "ana"},
		"body": "hello",
		"createAt": 1785587400000,
		"edited": true,
		"pinned": true,
		"replyTo": {"id": 4, "content": "earlier"}
	}`
	var m Message
	require.NoError(t, json.Unmarshal([]byte(raw), &m))

	got := m.Normalize()
	assert.Equal(t, int64(7), got.ConversationID)
	assert.Equal(t, "ana", got.Sender.Username)
	require.NotNil(t, got.Content)
	assert.Equal(t, "hello", *got.Content)
	assert.Equal(t, time.Date(2026, 8, 1, 12, 30, 0, 0, time.UTC), got.CreatedAt)
	assert.True(t, got.IsEdited)
	assert.True(t, got.IsPinned)
	require.NotNil(t, got.ReplyTo)
	assert.Equal(t, int64(4), got.ReplyTo.ID)
	assert.Equal(t, "earlier", got.ReplyTo.Snippet)
}

func TestMessageNormalizeDeletedDropsContent(t *testing.T) {
	raw := `{"id": 10, "conversation_id": 7, "content": "secret", "deleted": true}`
	var m Message
	require.NoError(t, json.Unmarshal([]byte(raw), &m))

	got := m.Normalize()
	assert.True(t, got.IsDeleted)
	assert.Nil(t, got.Content, "deleted messages never carry content")
}

func TestConversationNormalizeAliases(t *testing.T) {
	raw := `{
		"id": 7,
		"title": "room",
		"direct": true,
		"members": [{"id": 1, "username": "me"}, {"id": 2, "username": "ana", "avatar": "a.png"}],
		"lastMessage": {"id": 9, "snippet": "latest"},
		"unread": 3,
		"updated_at": "2026-08-01T12:30:00Z"
	}`
	var c Conversation
	require.NoError(t, json.Unmarshal([]byte(raw), &c))

	got := c.Normalize()
	assert.Equal(t, "room", got.Name)
	assert.True(t, got.IsDirect)
	assert.Equal(t, 3, got.UnreadCount)
	require.Len(t, got.Participants, 2)
	assert.Equal(t, "a.png", got.Participants[1].AvatarURL)
	require.NotNil(t, got.LastMessage)
	assert.Equal(t, "latest", got.LastMessage.Snippet)
	assert.Equal(t, time.Date(2026, 8, 1, 12, 30, 0, 0, time.UTC), got.LastActivityAt)
}

func TestMessageRefSnippetFromContent(t *testing.T) {
	long := make([]byte, 120)
	for i := range long {
		long[i] = 'x'
	}
	content := string(long)
	ref := MessageRef{ID: 4, Content: &content}

	got := ref.Normalize()
	assert.Len(t, got.Snippet, 80, "snippet is capped")
}
