package dashboard

import (
	"context"

	"github.com/yanqian/solar-dashboard/internal/domain/metrics"
)

// Predictor returns the steady-state outputs for a collector description.
type Predictor interface {
	Predict(ctx context.Context, input PredictionInput) (metrics.Snapshot, error)
}

// HistoryRepository keeps every applied snapshot.
type HistoryRepository interface {
	Append(ctx context.Context, entry HistoryEntry) error
	Recent(ctx context.Context, limit int) ([]HistoryEntry, error)
}

// StateStore persists the snapshot pair across restarts.
type StateStore interface {
	Load(ctx context.Context) (StoredState, bool, error)
	Save(ctx context.Context, state StoredState) error
}

// EventPublisher announces applied snapshots to other systems.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

// ReportArchive stores rendered dashboards as objects.
type ReportArchive interface {
	Put(ctx context.Context, key string, data []byte) error
}

// Observer receives service level counters.
type Observer interface {
	SnapshotApplied(source string)
	PredictionFailed(reason string)
}

type nopObserver struct{}

func (nopObserver) SnapshotApplied(string)  {}
func (nopObserver) PredictionFailed(string) {}
