package state

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatsync/internal/pkg/sync/application/domain"
)

func newRegistry(t *testing.T) *ConversationRegistry {
	t.Helper()
	return NewConversationRegistry(selfID, zerolog.Nop())
}

func conv(id int64, name string, at time.Time) domain.Conversation {
	return domain.Conversation{
		ID:             id,
		Name:           name,
		Participants:   []domain.User{{ID: selfID, Username: "me"}, {ID: id + 100, Username: "peer" + name}},
		CreatedAt:      at,
		LastActivityAt: at,
	}
}

func inbound(convID int64, at time.Time, content string) domain.Message {
	return domain.Message{
		ID:             convID*1000 + 1,
		ConversationID: convID,
		Sender:         domain.User{ID: 99, Username: "other"},
		Content:        strptr(content),
		CreatedAt:      at,
	}
}

func TestUpdateLastMessageUnreadAccounting(t *testing.T) {
	r := newRegistry(t)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	r.Upsert(conv(7, "a", base))

	// Inactive conversation, foreign sender: +1.
	r.UpdateLastMessage(inbound(7, base.Add(time.Minute), "hey"))
	c, _ := r.Get(7)
	assert.Equal(t, 1, c.UnreadCount)

	// Own message: unchanged.
	own := inbound(7, base.Add(2*time.Minute), "mine")
	own.Sender = domain.User{ID: selfID}
	r.UpdateLastMessage(own)
	c, _ = r.Get(7)
	assert.Equal(t, 1, c.UnreadCount)

	// Active conversation: unchanged.
	r.SetActive(7)
	r.UpdateLastMessage(inbound(7, base.Add(3*time.Minute), "more"))
	c, _ = r.Get(7)
	assert.Equal(t, 0, c.UnreadCount, "entering the conversation zeroes and keeps it zero")
}

func TestUpdateLastMessageBumpsRecency(t *testing.T) {
	r := newRegistry(t)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	r.Upsert(conv(1, "old", base))
	r.Upsert(conv(2, "new", base.Add(time.Hour)))

	list := r.List()
	require.Len(t, list, 2)
	assert.Equal(t, int64(2), list[0].ID)

	r.UpdateLastMessage(inbound(1, base.Add(2*time.Hour), "bump"))
	list = r.List()
	assert.Equal(t, int64(1), list[0].ID, "conversation with the newest message moves to the front")
	require.NotNil(t, list[0].LastMessage)
	assert.Equal(t, "bump", list[0].LastMessage.Snippet)
}

func TestSetActiveMarksRead(t *testing.T) {
	r := newRegistry(t)
	r.Upsert(conv(7, "a", time.Now().UTC()))
	r.UpdateLastMessage(inbound(7, time.Now().UTC(), "x"))

	hadUnread := r.SetActive(7)
	assert.True(t, hadUnread)
	c, _ := r.Get(7)
	assert.Equal(t, 0, c.UnreadCount)

	// Re-entering with nothing unread.
	assert.False(t, r.SetActive(7))
}

func TestMarkReadIsIdempotent(t *testing.T) {
	r := newRegistry(t)
	r.Upsert(conv(7, "a", time.Now().UTC()))

	r.MarkRead(7)
	r.MarkRead(7)
	c, _ := r.Get(7)
	assert.Equal(t, 0, c.UnreadCount)
}

func TestUpsertKeepsHigherLocalUnread(t *testing.T) {
	r := newRegistry(t)
	base := time.Now().UTC()
	r.Upsert(conv(7, "a", base))
	r.UpdateLastMessage(inbound(7, base.Add(time.Second), "one"))
	r.UpdateLastMessage(domain.Message{
		ID: 7002, ConversationID: 7, Sender: domain.User{ID: 99},
		Content: strptr("two"), CreatedAt: base.Add(2 * time.Second),
	})

	// Server listing lags behind the local counter.
	stale := conv(7, "a", base)
	stale.UnreadCount = 1
	r.Upsert(stale)

	c, _ := r.Get(7)
	assert.Equal(t, 2, c.UnreadCount)
}

func TestFilteredByQueryAndUnread(t *testing.T) {
	r := newRegistry(t)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	r.Upsert(conv(1, "Deals", base))
	r.Upsert(conv(2, "Support", base.Add(time.Minute)))
	r.UpdateLastMessage(inbound(2, base.Add(time.Hour), "invoice attached"))

	byName := r.Filtered(ConversationFilter{Query: "deals"})
	require.Len(t, byName, 1)
	assert.Equal(t, int64(1), byName[0].ID)

	bySnippet := r.Filtered(ConversationFilter{Query: "INVOICE"})
	require.Len(t, bySnippet, 1)
	assert.Equal(t, int64(2), bySnippet[0].ID)

	byParticipant := r.Filtered(ConversationFilter{Query: "peerdeals"})
	require.Len(t, byParticipant, 1)

	unread := r.Filtered(ConversationFilter{UnreadOnly: true})
	require.Len(t, unread, 1)
	assert.Equal(t, int64(2), unread[0].ID)
}

func TestUnreadTotal(t *testing.T) {
	r := newRegistry(t)
	base := time.Now().UTC()
	r.Upsert(conv(1, "a", base))
	r.Upsert(conv(2, "b", base))
	r.UpdateLastMessage(inbound(1, base.Add(time.Second), "x"))
	r.UpdateLastMessage(inbound(2, base.Add(time.Second), "y"))

	assert.Equal(t, 2, r.UnreadTotal())
	r.MarkRead(1)
	assert.Equal(t, 1, r.UnreadTotal())
}

func TestApplyReadReceiptNeverMovesBackwards(t *testing.T) {
	r := newRegistry(t)
	r.Upsert(conv(7, "a", time.Now().UTC()))
	later := time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC)
	earlier := later.Add(-time.Hour)

	r.ApplyReadReceipt(7, 107, later)
	r.ApplyReadReceipt(7, 107, earlier)

	c, _ := r.Get(7)
	assert.Equal(t, later, c.ReadReceipts[107])
}

func TestUpdateLastMessageUnknownConversationIsDropped(t *testing.T) {
	r := newRegistry(t)
	r.UpdateLastMessage(inbound(404, time.Now().UTC(), "ghost"))
	assert.Empty(t, r.List())
}

func TestUpsertPreservesReadReceipts(t *testing.T) {
	r := newRegistry(t)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	r.Upsert(conv(7, "a", base))

	readAt := base.Add(time.Minute)
	r.ApplyReadReceipt(7, 2, readAt)

	// A listing refresh carries no receipts; the watermark must survive it.
	r.Upsert(conv(7, "a", base))
	c, _ := r.Get(7)
	require.NotNil(t, c.ReadReceipts)
	assert.Equal(t, readAt, c.ReadReceipts[2])

	// A record that does carry receipts merges forward, never backwards.
	incoming := conv(7, "a", base)
	incoming.ReadReceipts = map[int64]time.Time{
		2: readAt.Add(-time.Hour),
		3: readAt.Add(time.Minute),
	}
	r.Upsert(incoming)
	c, _ = r.Get(7)
	assert.Equal(t, readAt, c.ReadReceipts[2], "older receipt must not rewind the watermark")
	assert.Equal(t, readAt.Add(time.Minute), c.ReadReceipts[3])
}
