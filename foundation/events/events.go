// Package events fans ledger event messages out to registered receivers.
package events

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
)

// messageBuffer is the number of messages a receiver can fall behind
// before messages to it are dropped.
const messageBuffer = 100

// receiver is a registered channel and the topics it wants.
type receiver struct {
	ch     chan string
	topics map[string]bool
}

// wants reports whether the message belongs to one of the receiver's
// topics. A receiver with no topics wants everything.
func (r receiver) wants(topic string) bool {
	if len(r.topics) == 0 {
		return true
	}
	return r.topics[topic]
}

// Events maintains the set of receivers keyed by a unique id.
type Events struct {
	mu      sync.RWMutex
	m       map[string]receiver
	dropped atomic.Uint64
}

// New constructs an Events value ready for receivers.
func New() *Events {
	return &Events{
		m: make(map[string]receiver),
	}
}

// Topic returns the topic of a message, which is the text before the first
// colon. Messages are written as "state: ...", "worker: ...", and so on.
func Topic(msg string) string {
	topic, _, found := strings.Cut(msg, ":")
	if !found {
		return ""
	}
	return strings.TrimSpace(topic)
}

// Acquire registers a receiver under the id and returns the channel it
// reads from. Only messages for the given topics are delivered; no topics
// means every message. Acquiring an id twice is an error.
func (evt *Events) Acquire(id string, topics ...string) (<-chan string, error) {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	if _, exists := evt.m[id]; exists {
		return nil, fmt.Errorf("id %q already acquired", id)
	}

	r := receiver{
		ch:     make(chan string, messageBuffer),
		topics: make(map[string]bool, len(topics)),
	}
	for _, topic := range topics {
		if topic = strings.TrimSpace(topic); topic != "" {
			r.topics[topic] = true
		}
	}

	evt.m[id] = r
	return r.ch, nil
}

// Release closes and removes the receiver registered under the id.
func (evt *Events) Release(id string) error {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	r, exists := evt.m[id]
	if !exists {
		return fmt.Errorf("id %q does not exist", id)
	}

	delete(evt.m, id)
	close(r.ch)
	return nil
}

// Shutdown closes and removes every receiver.
func (evt *Events) Shutdown() {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	for id, r := range evt.m {
		delete(evt.m, id)
		close(r.ch)
	}
}

// Count returns the number of registered receivers.
func (evt *Events) Count() int {
	evt.mu.RLock()
	defer evt.mu.RUnlock()

	return len(evt.m)
}

// Dropped returns the number of messages that could not be delivered
// because a receiver's buffer was full.
func (evt *Events) Dropped() uint64 {
	return evt.dropped.Load()
}

// Send delivers the message to every receiver that wants its topic and
// returns how many received it. Send never blocks on a slow receiver.
func (evt *Events) Send(msg string) int {
	evt.mu.RLock()
	defer evt.mu.RUnlock()

	topic := Topic(msg)

	var sent int
	for _, r := range evt.m {
		if !r.wants(topic) {
			continue
		}

		select {
		case r.ch <- msg:
			sent++
		default:
			evt.dropped.Add(1)
		}
	}

	return sent
}
