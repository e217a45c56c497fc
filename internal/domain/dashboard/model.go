package dashboard

import (
	"time"

	"github.com/yanqian/solar-dashboard/internal/domain/metrics"
)

// Source tells where a snapshot came from.
type Source string

const (
	SourcePredictor Source = "predictor"
	SourceManual    Source = "manual"
)

// Series names.
const (
	SeriesHeatOutput = "heat_output"
	SeriesHeatLoss   = "heat_loss"
	SeriesNetUseful  = "net_useful"
)

// PredictionInput is the collector description sent to the predictor.
type PredictionInput struct {
	Shape          string  `json:"shape"`
	SolarRadiation float64 `json:"solarRadiation"`
	CollectorArea  float64 `json:"collectorArea"`
	MassFlowRate   float64 `json:"massFlowRate"`
	Velocity       float64 `json:"velocity"`
	InletTemp      float64 `json:"inletTemp"`
	OutletTemp     float64 `json:"outletTemp"`
	AmbientTemp    float64 `json:"ambientTemp"`
	Nusselt        float64 `json:"nusselt"`
	Distance       float64 `json:"distance"`
}

// Series is one chart curve. Values[0] is the earliest step.
type Series struct {
	Name   string    `json:"name"`
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

// Dashboard is everything the UI renders for the current snapshot pair.
type Dashboard struct {
	ID            string           `json:"id,omitempty"`
	HasPrediction bool             `json:"hasPrediction"`
	Current       metrics.Snapshot `json:"current"`
	Previous      metrics.Snapshot `json:"previous"`
	NetUseful     float64          `json:"netUseful"`
	Trends        []metrics.Trend  `json:"trends"`
	HeatOutput    Series           `json:"heatOutput"`
	HeatLoss      Series           `json:"heatLoss"`
	NetUsefulHeat Series           `json:"netUsefulHeat"`
	UpdatedAt     string           `json:"updatedAt,omitempty"`
}

// HistoryEntry is one recorded snapshot.
type HistoryEntry struct {
	ID         string           `json:"id"`
	Source     Source           `json:"source"`
	Snapshot   metrics.Snapshot `json:"snapshot"`
	RecordedAt time.Time        `json:"recordedAt"`
}

// Event is published whenever a new snapshot is applied.
type Event struct {
	ID         string           `json:"id"`
	Source     Source           `json:"source"`
	Current    metrics.Snapshot `json:"current"`
	Previous   metrics.Snapshot `json:"previous"`
	Trends     []metrics.Trend  `json:"trends"`
	RecordedAt time.Time        `json:"recordedAt"`
}

// StoredState is the persisted form of the snapshot pair.
type StoredState struct {
	ID        string           `json:"id"`
	Previous  metrics.Snapshot `json:"previous"`
	Current   metrics.Snapshot `json:"current"`
	Updates   int              `json:"updates"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// Config wires runtime knobs for the dashboard domain.
type Config struct {
	Shaping        metrics.Shaping
	HistoryLimit   int
	MaxHistory     int
	LabelStep      time.Duration
	ArchiveReports bool
}
