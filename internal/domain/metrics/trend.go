package metrics

import (
	"encoding/json"
	"fmt"
)

// Direction is the badge arrow shown next to a metric.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
	DirectionFlat Direction = "flat"
	DirectionNone Direction = "none"
)

// TrendState separates "nothing predicted yet" from "no movement" and from a
// real percentage.
type TrendState string

const (
	TrendNoData  TrendState = "no-data"
	TrendFlat    TrendState = "flat"
	TrendPercent TrendState = "percent"
)

// Trend is the change of one metric between two consecutive snapshots.
// Percent is only meaningful when State is TrendPercent.
type Trend struct {
	Metric    Metric
	State     TrendState
	Percent   float64
	Direction Direction
}

// TrendResult holds one Trend per metric.
type TrendResult struct {
	Qout       Trend `json:"qout"`
	Qloss      Trend `json:"qloss"`
	Efficiency Trend `json:"efficiency"`
}

// Get returns the trend for m.
func (r TrendResult) Get(m Metric) Trend {
	switch m {
	case MetricQout:
		return r.Qout
	case MetricQloss:
		return r.Qloss
	case MetricEfficiency:
		return r.Efficiency
	default:
		return Trend{Metric: m, State: TrendNoData, Direction: DirectionNone}
	}
}

// All returns the trends in display order.
func (r TrendResult) All() []Trend {
	return []Trend{r.Qout, r.Qloss, r.Efficiency}
}

// ComputeTrends derives the per-metric change from previous to current.
//
// When every field of current is zero nothing has been predicted yet and all
// metrics report TrendNoData. A zero baseline reports a flat trend instead of
// dividing by zero, so the first real reading never shows an infinite jump.
func ComputeTrends(previous, current Snapshot) TrendResult {
	if current.IsZero() {
		return TrendResult{
			Qout:       noData(MetricQout),
			Qloss:      noData(MetricQloss),
			Efficiency: noData(MetricEfficiency),
		}
	}
	return TrendResult{
		Qout:       computeTrend(MetricQout, previous.Qout, current.Qout),
		Qloss:      computeTrend(MetricQloss, previous.Qloss, current.Qloss),
		Efficiency: computeTrend(MetricEfficiency, previous.Efficiency, current.Efficiency),
	}
}

// PercentChange returns ((current-previous)/previous)*100, or 0 when the
// baseline is zero.
func PercentChange(previous, current float64) float64 {
	if previous == 0 {
		return 0
	}
	return ((current - previous) / previous) * 100
}

func computeTrend(m Metric, previous, current float64) Trend {
	pct := PercentChange(previous, current)
	if pct == 0 {
		return Trend{Metric: m, State: TrendFlat, Direction: DirectionFlat}
	}
	return Trend{Metric: m, State: TrendPercent, Percent: pct, Direction: classifyDirection(pct)}
}

func classifyDirection(pct float64) Direction {
	switch {
	case pct > 0:
		return DirectionUp
	case pct < 0:
		return DirectionDown
	default:
		return DirectionFlat
	}
}

func noData(m Metric) Trend {
	return Trend{Metric: m, State: TrendNoData, Direction: DirectionNone}
}

type trendWire struct {
	Metric    Metric          `json:"metric"`
	Percent   json.RawMessage `json:"percent"`
	Direction Direction       `json:"direction"`
}

// MarshalJSON encodes percent as a number, "no-data" or "flat".
func (t Trend) MarshalJSON() ([]byte, error) {
	var (
		percent []byte
		err     error
	)
	switch t.State {
	case TrendNoData, TrendFlat:
		percent, err = json.Marshal(string(t.State))
	default:
		percent, err = json.Marshal(t.Percent)
	}
	if err != nil {
		return nil, err
	}
	return json.Marshal(trendWire{Metric: t.Metric, Percent: percent, Direction: t.Direction})
}

// UnmarshalJSON accepts the encoding produced by MarshalJSON.
func (t *Trend) UnmarshalJSON(data []byte) error {
	var wire trendWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	out := Trend{Metric: wire.Metric, Direction: wire.Direction}
	if len(wire.Percent) == 0 || string(wire.Percent) == "null" {
		out.State = TrendNoData
		*t = out
		return nil
	}
	switch wire.Percent[0] {
	case '"':
		var label string
		if err := json.Unmarshal(wire.Percent, &label); err != nil {
			return err
		}
		switch TrendState(label) {
		case TrendNoData, TrendFlat:
			out.State = TrendState(label)
		default:
			return fmt.Errorf("unknown trend state %q", label)
		}
	default:
		if err := json.Unmarshal(wire.Percent, &out.Percent); err != nil {
			return err
		}
		out.State = TrendPercent
	}
	*t = out
	return nil
}
