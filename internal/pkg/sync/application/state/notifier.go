package state

import "sync"

// ChangeKind names what part of the mirror moved.
type ChangeKind string

const (
	ChangeConversations ChangeKind = "conversations"
	ChangeMessages      ChangeKind = "messages"
	ChangeTyping        ChangeKind = "typing"
	ChangePresence      ChangeKind = "presence"
)

// Change is one notification to a subscriber. ConversationID is zero for
// changes that are not scoped to one conversation.
type Change struct {
	Kind           ChangeKind
	ConversationID int64
}

// Notifier fans mutation signals out to subscribers so consumers recompute
// derived views without polling. Delivery is best-effort: a subscriber that
// stops draining its channel loses signals rather than blocking mutations,
// the same backpressure rule a slow socket gets.
type Notifier struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan Change
}

// NewNotifier constructs a notifier with no subscribers.
func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[int]chan Change)}
}

// Subscribe registers a subscriber. The returned cancel function must be
// called to release it.
func (n *Notifier) Subscribe() (<-chan Change, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	ch := make(chan Change, 64)
	n.subs[id] = ch

	cancel := func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		if existing, ok := n.subs[id]; ok {
			delete(n.subs, id)
			close(existing)
		}
	}
	return ch, cancel
}

// Publish delivers the change to every subscriber, dropping it for any
// subscriber whose buffer is full.
func (n *Notifier) Publish(c Change) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for _, ch := range n.subs {
		select {
		case ch <- c:
		default:
		}
	}
}

// Close releases every subscriber.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()

	for id, ch := range n.subs {
		delete(n.subs, id)
		close(ch)
	}
}
