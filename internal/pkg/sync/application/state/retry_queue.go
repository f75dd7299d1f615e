package state

import "sync"

// PendingSend is the payload needed to resend a failed message.
type PendingSend struct {
	TempID         string
	ConversationID int64
	Content        string
	ReplyToID      int64
}

// RetryQueue indexes failed outbound sends by their client temp id so a
// retry can re-issue the exact original payload. The failed message itself
// stays in the MessageStore at its temporal position; this queue only keeps
// the resend input.
type RetryQueue struct {
	mu       sync.Mutex
	byTempID map[string]PendingSend
}

// NewRetryQueue constructs an empty queue.
func NewRetryQueue() *RetryQueue {
	return &RetryQueue{byTempID: make(map[string]PendingSend)}
}

// Add records a failed send, replacing any previous entry for the temp id.
func (q *RetryQueue) Add(p PendingSend) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.byTempID[p.TempID] = p
}

// Take removes and returns the entry for tempID.
func (q *RetryQueue) Take(tempID string) (PendingSend, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	p, ok := q.byTempID[tempID]
	if ok {
		delete(q.byTempID, tempID)
	}
	return p, ok
}

// Len reports the number of queued sends.
func (q *RetryQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.byTempID)
}
