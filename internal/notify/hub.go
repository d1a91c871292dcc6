// Package notify provides the in-process change hub that backs the
// application's real-time semantics. Services publish a topic after every
// committed mutation; the SSE stream and the winner decider subscribe so
// clients observe store changes within a tick instead of polling.
//
// The hub is deliberately process-local: the shared sqlite file is the only
// store, so there is no cross-process fan-out to coordinate. Subscriptions
// are releasable and never fire after release.
package notify

import "sync"

// Change topics published by the service layer.
const (
	TopicWeek    = "week"    // current-week singleton changed
	TopicWindow  = "window"  // voting-window singleton changed
	TopicOptions = "options" // a weekly options row changed (choices or winner)
	TopicVotes   = "votes"   // a vote was inserted or votes were reset
	TopicMenu    = "menu"    // menu pool changed
)

// Event describes one store change. Week is empty for singleton topics.
type Event struct {
	Topic string
	Week  string
}

// Hub is a topic fan-out with releasable subscriptions. Publishing never
// blocks: a subscriber that has fallen behind coalesces to the latest event
// for its channel, which is all the decider and the SSE stream need, since
// both re-read current state on wake rather than replaying a log.
//
// Safe for concurrent use.
type Hub struct {
	mu   sync.Mutex
	next int
	subs map[int]*subscriber
}

type subscriber struct {
	ch     chan Event
	topics map[string]struct{} // nil means all topics
}

// NewHub constructs an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[int]*subscriber)}
}

// Subscribe registers interest in the given topics (no topics means all) and
// returns the delivery channel plus a cancel function. Cancel is idempotent;
// after it returns the channel is closed and will never receive again.
func (h *Hub) Subscribe(topics ...string) (<-chan Event, func()) {
	s := &subscriber{ch: make(chan Event, 16)}
	if len(topics) > 0 {
		s.topics = make(map[string]struct{}, len(topics))
		for _, t := range topics {
			s.topics[t] = struct{}{}
		}
	}

	h.mu.Lock()
	id := h.next
	h.next++
	h.subs[id] = s
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
			close(s.ch)
		})
	}
	return s.ch, cancel
}

// Publish delivers ev to every interested subscriber. When a subscriber's
// buffer is full the oldest pending event is dropped in favor of ev.
func (h *Hub) Publish(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, s := range h.subs {
		if s.topics != nil {
			if _, ok := s.topics[ev.Topic]; !ok {
				continue
			}
		}
		select {
		case s.ch <- ev:
		default:
			select {
			case <-s.ch:
			default:
			}
			select {
			case s.ch <- ev:
			default:
			}
		}
	}
}

// Publisher is the narrow interface the service layer depends on, so tests
// can drop in a recorder and packages that only publish do not see Subscribe.
type Publisher interface {
	Publish(ev Event)
}

// NopPublisher discards events. Handy default for tests and tools.
type NopPublisher struct{}

// Publish implements Publisher.
func (NopPublisher) Publish(Event) {}
