package interview

import (
	"sync"
	"testing"
)

func TestTranscriptEventBusDeliversToAllSubscribers(t *testing.T) {
	b := NewTranscriptEventBus(nil)

	var mu sync.Mutex
	var received []string
	for i := 0; i < 3; i++ {
		b.Subscribe(TopicTranscriptCreated, func(ev TranscriptEvent) {
			mu.Lock()
			received = append(received, ev.Message)
			mu.Unlock()
		})
	}

	b.Publish(TopicTranscriptCreated, TranscriptEvent{Message: "hello"})

	if len(received) != 3 {
		t.Fatalf("expected 3 subscribers to receive the event, got %d", len(received))
	}
	for _, msg := range received {
		if msg != "hello" {
			t.Errorf("expected message hello, got %q", msg)
		}
	}
}

func TestTranscriptEventBusIsolatesPanickingSubscriber(t *testing.T) {
	b := NewTranscriptEventBus(nil)

	var delivered bool
	b.Subscribe(TopicTranscriptCreated, func(ev TranscriptEvent) {
		panic("subscriber exploded")
	})
	b.Subscribe(TopicTranscriptCreated, func(ev TranscriptEvent) {
		delivered = true
	})

	b.Publish(TopicTranscriptCreated, TranscriptEvent{Message: "hello"})

	if !delivered {
		t.Fatal("expected the non-panicking subscriber to still be delivered the event")
	}
}

func TestTranscriptEventBusOnlyDeliversToMatchingTopic(t *testing.T) {
	b := NewTranscriptEventBus(nil)

	var createdCount, endedCount int
	b.Subscribe(TopicTranscriptCreated, func(ev TranscriptEvent) { createdCount++ })
	b.Subscribe(TopicSessionEnded, func(ev TranscriptEvent) { endedCount++ })

	b.Publish(TopicTranscriptCreated, TranscriptEvent{Message: "hello"})

	if createdCount != 1 {
		t.Errorf("expected 1 delivery to the created topic, got %d", createdCount)
	}
	if endedCount != 0 {
		t.Errorf("expected 0 deliveries to the ended topic, got %d", endedCount)
	}
}
