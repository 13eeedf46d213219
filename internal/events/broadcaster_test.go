package events

import (
	"context"
	"testing"
	"time"
)

func TestBroadcasterDeliversToSubscribers(t *testing.T) {
	b := NewBroadcaster[string](2)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first, _ := b.Subscribe(ctx)
	second, _ := b.Subscribe(ctx)

	b.Publish("content.updated")

	for i, ch := range []<-chan string{first, second} {
		select {
		case got := <-ch:
			if got != "content.updated" {
				t.Fatalf("subscriber %d got %q", i, got)
			}
		case <-time.After(time.Second):
			t.Fatalf("subscriber %d timed out", i)
		}
	}
}

func TestBroadcasterDropsWhenBufferFull(t *testing.T) {
	b := NewBroadcaster[int](1)
	ch, _ := b.Subscribe(context.Background())

	b.Publish(1)
	b.Publish(2)

	if got := <-ch; got != 1 {
		t.Fatalf("expected first event, got %d", got)
	}
	select {
	case got := <-ch:
		t.Fatalf("expected dropped event, got %d", got)
	default:
	}
}

func TestBroadcasterClosesOnCancel(t *testing.T) {
	b := NewBroadcaster[int](1)
	ctx, cancel := context.WithCancel(context.Background())
	ch, _ := b.Subscribe(ctx)
	cancel()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected closed channel")
		}
	case <-time.After(time.Second):
		t.Fatal("channel not closed after cancel")
	}
	if n := b.Subscribers(); n != 0 {
		t.Fatalf("expected no subscribers, got %d", n)
	}
}

func TestSubscribeWithCancelledContextReturnsClosedChannel(t *testing.T) {
	b := NewBroadcaster[int](1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ch, err := b.Subscribe(ctx)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if _, ok := <-ch; ok {
		t.Fatal("expected closed channel")
	}
}
