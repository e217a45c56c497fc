package events

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/yanqian/solar-dashboard/internal/domain/dashboard"
)

// Fanout publishes each event to every sink concurrently.
type Fanout struct {
	sinks []dashboard.EventPublisher
}

// NewFanout drops nil sinks.
func NewFanout(sinks ...dashboard.EventPublisher) *Fanout {
	kept := make([]dashboard.EventPublisher, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			kept = append(kept, s)
		}
	}
	return &Fanout{sinks: kept}
}

// Len reports how many sinks are attached.
func (f *Fanout) Len() int {
	return len(f.sinks)
}

// Publish returns the first sink error; all sinks are still attempted.
func (f *Fanout) Publish(ctx context.Context, event dashboard.Event) error {
	var g errgroup.Group
	for _, sink := range f.sinks {
		sink := sink
		g.Go(func() error {
			return sink.Publish(ctx, event)
		})
	}
	return g.Wait()
}

// Nop discards events.
type Nop struct{}

// Publish implements dashboard.EventPublisher.
func (Nop) Publish(context.Context, dashboard.Event) error { return nil }

var (
	_ dashboard.EventPublisher = (*Fanout)(nil)
	_ dashboard.EventPublisher = Nop{}
)
