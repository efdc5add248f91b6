package notifier

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSubscribeReceivesBroadcast(t *testing.T) {
	n := New()
	ch := n.Subscribe()
	defer n.Unsubscribe(ch)

	n.Broadcast()

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("expected a ping after Broadcast")
	}
}

func TestBroadcastReachesAllListeners(t *testing.T) {
	n := New()
	a := n.Subscribe()
	b := n.Subscribe()
	defer n.Unsubscribe(a)
	defer n.Unsubscribe(b)

	n.Broadcast()

	for _, ch := range []chan struct{}{a, b} {
		select {
		case <-ch:
		case <-time.After(time.Second):
			t.Fatal("listener missed broadcast")
		}
	}
}

func TestBroadcastDoesNotBlockOnFullChannel(t *testing.T) {
	n := New()
	ch := n.Subscribe()
	defer n.Unsubscribe(ch)

	// Buffer size is one; extra broadcasts must be dropped, not block.
	n.Broadcast()
	n.Broadcast()
	n.Broadcast()

	<-ch
	select {
	case <-ch:
		t.Fatal("coalesced broadcasts should yield a single ping")
	default:
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	n := New()
	ch := n.Subscribe()
	n.Unsubscribe(ch)

	_, open := <-ch
	assert.False(t, open)

	// Broadcasting after unsubscribe must not panic.
	n.Broadcast()
}
