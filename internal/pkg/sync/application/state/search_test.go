package state

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchMatchesCaseInsensitiveAndSkipsDeleted(t *testing.T) {
	s := newStore(t)
	idx := NewSearchIndex(s)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	s.Insert(msgAt(1, 7, "Food today", base))
	s.Insert(msgAt(2, 7, "bar", base.Add(time.Minute)))
	s.Insert(msgAt(3, 7, "more foo here", base.Add(2*time.Minute)))
	require.NoError(t, s.Tombstone(7, 2))

	got := idx.Search("foo", 7)
	require.Len(t, got, 2)
	// Newest first.
	assert.Equal(t, int64(3), got[0].ID)
	assert.Equal(t, int64(1), got[1].ID)
}

func TestSearchAcrossConversations(t *testing.T) {
	s := newStore(t)
	idx := NewSearchIndex(s)
	base := time.Now().UTC()

	s.Insert(msgAt(1, 7, "alpha", base))
	s.Insert(msgAt(2, 8, "ALPHA beta", base.Add(time.Minute)))

	all := idx.Search("alpha", 0)
	assert.Len(t, all, 2)

	scoped := idx.Search("alpha", 8)
	require.Len(t, scoped, 1)
	assert.Equal(t, int64(2), scoped[0].ID)
}

func TestSearchBlankQuery(t *testing.T) {
	s := newStore(t)
	idx := NewSearchIndex(s)
	s.Insert(msgAt(1, 7, "anything", time.Now().UTC()))

	assert.Empty(t, idx.Search("   ", 7))
}
