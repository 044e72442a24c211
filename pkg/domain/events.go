package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventTagStart   EventType = "tag_start"
	EventTagEnd     EventType = "tag_end"
	EventUnresolved EventType = "tag_unresolved"
)

// TagEvent describes one tag execution.
type TagEvent struct {
	Timestamp time.Time     `json:"timestamp"`
	Type      EventType     `json:"type"`
	Tag       QName         `json:"tag"`
	Location  Location      `json:"location"`
	Depth     int           `json:"depth"`
	Duration  time.Duration `json:"duration,omitempty"`
	Err       error         `json:"-"`
}

// LifecycleHooks defines callbacks for engine observability.
// Hooks run synchronously on the executing goroutine and must be safe for concurrent use.
type LifecycleHooks struct {
	OnTagStart   func(context.Context, *TagEvent)
	OnTagEnd     func(context.Context, *TagEvent)
	OnUnresolved func(context.Context, *TagEvent)
}

// Merge returns hooks that invoke h and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnTagStart:   chain(h.OnTagStart, other.OnTagStart),
		OnTagEnd:     chain(h.OnTagEnd, other.OnTagEnd),
		OnUnresolved: chain(h.OnUnresolved, other.OnUnresolved),
	}
}

func chain(a, b func(context.Context, *TagEvent)) func(context.Context, *TagEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *TagEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}
