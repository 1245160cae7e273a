package gateway

import (
	"tessera-ai/relay/pkg/history"
	"tessera-ai/relay/pkg/registry"
)

// Snapshot is the single state-change notification shape. Subscribers
// re-render from the whole snapshot instead of applying incremental diffs,
// so a dropped notification is harmless: the next one carries the full
// state again.
type Snapshot struct {
	// Providers is the full provider list in insertion order.
	Providers []registry.ProviderRecord

	// ActiveProviderID is the active pointer, or "" if none.
	ActiveProviderID string

	// History is the bounded recent request view in dispatch order.
	History []history.RequestRecord
}

// Subscribe registers a notification channel and returns it with an
// unsubscribe function. The channel is buffered; a subscriber that falls
// behind misses intermediate snapshots rather than blocking the gateway.
func (g *Gateway) Subscribe() (<-chan Snapshot, func()) {
	g.subsMu.Lock()
	defer g.subsMu.Unlock()

	id := g.nextSub
	g.nextSub++

	ch := make(chan Snapshot, 8)
	g.subs[id] = ch

	unsubscribe := func() {
		g.subsMu.Lock()
		defer g.subsMu.Unlock()
		if ch, ok := g.subs[id]; ok {
			close(ch)
			delete(g.subs, id)
		}
	}
	return ch, unsubscribe
}

// notify emits one snapshot to every subscriber, dropping for any that
// cannot keep up.
func (g *Gateway) notify() {
	snap := Snapshot{
		Providers:        g.reg.List(),
		ActiveProviderID: g.reg.ActiveID(),
		History:          g.hist.Recent(),
	}

	g.subsMu.Lock()
	defer g.subsMu.Unlock()

	for _, ch := range g.subs {
		select {
		case ch <- snap:
		default:
		}
	}
}
