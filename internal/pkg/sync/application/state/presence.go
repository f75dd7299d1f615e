package state

import "sync"

// PresenceTracker mirrors which users the server currently reports online.
// Purely ephemeral; the set is rebuilt from presence events after a
// reconnect.
type PresenceTracker struct {
	mu     sync.RWMutex
	online map[int64]struct{}
}

// NewPresenceTracker constructs an empty tracker.
func NewPresenceTracker() *PresenceTracker {
	return &PresenceTracker{online: make(map[int64]struct{})}
}

// Set records the user's online state.
func (p *PresenceTracker) Set(userID int64, online bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if online {
		p.online[userID] = struct{}{}
	} else {
		delete(p.online, userID)
	}
}

// IsOnline reports whether the user was last seen online.
func (p *PresenceTracker) IsOnline(userID int64) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.online[userID]
	return ok
}

// Reset clears the set, used when the transport reconnects.
func (p *PresenceTracker) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.online = make(map[int64]struct{})
}
