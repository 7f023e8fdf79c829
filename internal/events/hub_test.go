package events

import (
	"testing"
	"time"
)

func TestHubFanOut(t *testing.T) {
	hub := NewHub()

	a := hub.Subscribe("ROOM01")
	b := hub.Subscribe("ROOM01")
	other := hub.Subscribe("ROOM02")

	hub.Publish(Event{Collection: CollectionRooms, Type: EventUpdate, RoomCode: "ROOM01"})

	for name, ch := range map[string]chan Event{"a": a, "b": b} {
		select {
		case ev := <-ch:
			if ev.Collection != CollectionRooms || ev.Type != EventUpdate {
				t.Errorf("subscriber %s got %+v", name, ev)
			}
		case <-time.After(time.Second):
			t.Fatalf("subscriber %s received nothing", name)
		}
	}

	select {
	case ev := <-other:
		t.Errorf("subscriber of another room got %+v", ev)
	default:
	}
}

func TestHubUnsubscribe(t *testing.T) {
	hub := NewHub()

	ch := hub.Subscribe("ROOM01")
	if got := hub.SubscriberCount("ROOM01"); got != 1 {
		t.Fatalf("SubscriberCount = %d, want 1", got)
	}

	hub.Unsubscribe("ROOM01", ch)
	if got := hub.SubscriberCount("ROOM01"); got != 0 {
		t.Errorf("SubscriberCount = %d, want 0", got)
	}

	// Channel is closed on unsubscribe.
	if _, ok := <-ch; ok {
		t.Error("channel still open after Unsubscribe")
	}

	// Double unsubscribe must not panic.
	hub.Unsubscribe("ROOM01", ch)

	hub.Publish(Event{Collection: CollectionRooms, Type: EventUpdate, RoomCode: "ROOM01"})
}

func TestHubDropsForSlowSubscriber(t *testing.T) {
	hub := NewHub()
	ch := hub.Subscribe("ROOM01")

	// Fill the buffer and keep publishing; the overflow must not block.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < subscriberBuffer*2; i++ {
			hub.Publish(Event{Collection: CollectionVotes, Type: EventInsert, RoomCode: "ROOM01"})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a slow subscriber")
	}

	if got := len(ch); got != subscriberBuffer {
		t.Errorf("buffered events = %d, want %d", got, subscriberBuffer)
	}
}
