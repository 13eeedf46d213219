package translation

import (
	"context"
	"time"

	"github.com/goliatone/go-sitecms/internal/events"
	"github.com/goliatone/go-sitecms/internal/locale"
)

// EventKind labels translation bus messages.
type EventKind string

const (
	// EventRequested asks listening editors to auto-translate a segment.
	EventRequested EventKind = "translation.requested"
	// EventDrafted announces a finished draft.
	EventDrafted EventKind = "translation.drafted"
)

// Event addresses one segment in one language.
type Event struct {
	Kind       EventKind
	PageSlug   string
	SegmentID  string
	Language   locale.Language
	Translated int
	At         time.Time
}

// Bus delivers translation events to subscribers without blocking the
// publisher.
type Bus struct {
	broadcaster *events.Broadcaster[Event]
	now         func() time.Time
}

func NewBus() *Bus {
	return &Bus{broadcaster: events.NewBroadcaster[Event](8), now: time.Now}
}

func (b *Bus) Subscribe(ctx context.Context) (<-chan Event, error) {
	return b.broadcaster.Subscribe(ctx)
}

func (b *Bus) Publish(evt Event) {
	if evt.At.IsZero() {
		evt.At = b.now().UTC()
	}
	b.broadcaster.Publish(evt)
}
