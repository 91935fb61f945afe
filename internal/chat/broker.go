package chat

import (
	"sync"
)

// Subscriber receives events published to a group it has joined.
// Deliver must not block: sessions buffer their outbound queue and drop
// the connection when it overflows.
type Subscriber interface {
	Deliver(evt Event)
}

// Broker fans events out to groups of subscribers. Groups are rental
// rooms ("chat_<rental_id>") and per-user channels ("user_<user_id>");
// a group springs into existence on first Join and vanishes when its
// last subscriber leaves.
type Broker interface {
	Join(group string, sub Subscriber)
	Leave(group string, sub Subscriber)
	Publish(group string, evt Event)
	Close() error
}

type memoryBroker struct {
	mu     sync.RWMutex
	groups map[string]map[Subscriber]struct{}
}

// NewMemoryBroker is the single-process fan-out used when no broker URL
// is configured, and the local delivery layer of the AMQP broker.
func NewMemoryBroker() Broker {
	return &memoryBroker{groups: make(map[string]map[Subscriber]struct{})}
}

func (b *memoryBroker) Join(group string, sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs, ok := b.groups[group]
	if !ok {
		subs = make(map[Subscriber]struct{})
		b.groups[group] = subs
	}
	subs[sub] = struct{}{}
}

func (b *memoryBroker) Leave(group string, sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs, ok := b.groups[group]
	if !ok {
		return
	}
	delete(subs, sub)
	if len(subs) == 0 {
		delete(b.groups, group)
	}
}

func (b *memoryBroker) Publish(group string, evt Event) {
	b.mu.RLock()
	subs := make([]Subscriber, 0, len(b.groups[group]))
	for sub := range b.groups[group] {
		subs = append(subs, sub)
	}
	b.mu.RUnlock()

	for _, sub := range subs {
		sub.Deliver(evt)
	}
}

func (b *memoryBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.groups = make(map[string]map[Subscriber]struct{})
	return nil
}
