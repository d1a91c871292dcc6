package notify

import (
	"sync"
	"testing"
	"time"
)

func recv(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev, ok := <-ch:
		if !ok {
			t.Fatal("channel closed unexpectedly")
		}
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
	return Event{}
}

func TestHub_DeliversToMatchingTopic(t *testing.T) {
	h := NewHub()
	ch, cancel := h.Subscribe(TopicVotes)
	defer cancel()

	h.Publish(Event{Topic: TopicVotes, Week: "2025-W10"})
	ev := recv(t, ch)
	if ev.Topic != TopicVotes || ev.Week != "2025-W10" {
		t.Fatalf("unexpected event: %+v", ev)
	}
}

func TestHub_FiltersOtherTopics(t *testing.T) {
	h := NewHub()
	ch, cancel := h.Subscribe(TopicWeek)
	defer cancel()

	h.Publish(Event{Topic: TopicVotes})
	select {
	case ev := <-ch:
		t.Fatalf("expected no delivery, got %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_NoTopicsMeansAll(t *testing.T) {
	h := NewHub()
	ch, cancel := h.Subscribe()
	defer cancel()

	h.Publish(Event{Topic: TopicMenu})
	if ev := recv(t, ch); ev.Topic != TopicMenu {
		t.Fatalf("unexpected event: %+v", ev)
	}
}

func TestHub_CancelStopsDeliveryAndCloses(t *testing.T) {
	h := NewHub()
	ch, cancel := h.Subscribe(TopicVotes)
	cancel()
	cancel() // idempotent

	h.Publish(Event{Topic: TopicVotes})
	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("received event after cancel")
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("channel should be closed after cancel")
	}
}

func TestHub_FullBufferCoalescesToLatest(t *testing.T) {
	h := NewHub()
	ch, cancel := h.Subscribe(TopicOptions)
	defer cancel()

	for i := 0; i < 100; i++ {
		h.Publish(Event{Topic: TopicOptions, Week: "2025-W01"})
	}
	h.Publish(Event{Topic: TopicOptions, Week: "latest"})

	var last Event
	for {
		select {
		case ev := <-ch:
			last = ev
			continue
		case <-time.After(50 * time.Millisecond):
		}
		break
	}
	if last.Week != "latest" {
		t.Fatalf("expected latest event to survive, got %+v", last)
	}
}

func TestHub_ConcurrentPublishAndSubscribe(t *testing.T) {
	h := NewHub()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ch, cancel := h.Subscribe(TopicVotes)
			for j := 0; j < 50; j++ {
				h.Publish(Event{Topic: TopicVotes})
			}
			select {
			case <-ch:
			case <-time.After(time.Second):
			}
			cancel()
		}()
	}
	wg.Wait()
}
