// Package notifier fans document-change pings out to the SSE streams.
// A ping carries no payload: on receipt a listener re-queries the
// session for the current document and version state, so coalesced or
// dropped pings are harmless as long as a later one arrives.
package notifier

import "sync"

// Notifier is the broadcast hub connecting the session, the auto-saver,
// and the version-directory watcher to subscribed SSE handlers.
type Notifier struct {
	mu        sync.RWMutex
	listeners map[chan struct{}]struct{}
}

// New creates an empty Notifier.
func New() *Notifier {
	return &Notifier{
		listeners: make(map[chan struct{}]struct{}),
	}
}

// Subscribe registers a listener and returns its ping channel. Callers
// must Unsubscribe when done or the channel leaks.
func (n *Notifier) Subscribe() chan struct{} {
	ch := make(chan struct{}, 1)
	n.mu.Lock()
	n.listeners[ch] = struct{}{}
	n.mu.Unlock()
	return ch
}

// Unsubscribe removes a listener and closes its channel.
func (n *Notifier) Unsubscribe(ch chan struct{}) {
	n.mu.Lock()
	delete(n.listeners, ch)
	n.mu.Unlock()
	close(ch)
}

// Broadcast pings every listener without blocking. A listener whose
// buffer is full already has a pending ping, which covers this change
// too.
func (n *Notifier) Broadcast() {
	n.mu.RLock()
	defer n.mu.RUnlock()

	for ch := range n.listeners {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
