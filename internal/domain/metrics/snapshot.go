// Package metrics holds the prediction snapshot model together with the
// trend and curve synthesis applied to it.
//
// All inputs are assumed to be finite numbers. NaN and infinite values are
// not rejected here; the predictor adapter is responsible for filtering them.
package metrics

// Metric names one of the three predicted quantities.
type Metric string

const (
	MetricQout       Metric = "qout"
	MetricQloss      Metric = "qloss"
	MetricEfficiency Metric = "efficiency"
)

// Metrics returns the metrics in display order.
func Metrics() []Metric {
	return []Metric{MetricQout, MetricQloss, MetricEfficiency}
}

// Snapshot is one set of predicted outputs. It is a value type: a new
// prediction always produces a new Snapshot.
type Snapshot struct {
	Qout       float64 `json:"qout"`
	Qloss      float64 `json:"qloss"`
	Efficiency float64 `json:"efficiency"`
}

// Value returns the field for m, or 0 for an unknown metric.
func (s Snapshot) Value(m Metric) float64 {
	switch m {
	case MetricQout:
		return s.Qout
	case MetricQloss:
		return s.Qloss
	case MetricEfficiency:
		return s.Efficiency
	default:
		return 0
	}
}

// IsZero reports whether every field is zero, the "no prediction yet" shape.
func (s Snapshot) IsZero() bool {
	return s.Qout == 0 && s.Qloss == 0 && s.Efficiency == 0
}
