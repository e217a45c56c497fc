package metrics

import "math"

const (
	// HeatOutputSteps is the length of the heat output curve.
	HeatOutputSteps = 12
	// LossSteps is the length of the heat loss and net useful curves.
	LossSteps = 8

	DefaultTimeConstant = 4.0
	DefaultLossBase     = 0.85
	DefaultLossStep     = 0.02
	DefaultNetBase      = 0.90
	DefaultNetStep      = 0.015
)

// Shaping holds the presentation constants used to turn one steady-state
// value into a curve.
type Shaping struct {
	// TimeConstant is the number of steps for the heat output curve to reach
	// 1-1/e of its steady value.
	TimeConstant float64 `yaml:"timeConstant"`
	LossBase     float64 `yaml:"lossBase"`
	LossStep     float64 `yaml:"lossStep"`
	NetBase      float64 `yaml:"netBase"`
	NetStep      float64 `yaml:"netStep"`
}

// DefaultShaping returns the constants used by the dashboard charts.
func DefaultShaping() Shaping {
	return Shaping{
		TimeConstant: DefaultTimeConstant,
		LossBase:     DefaultLossBase,
		LossStep:     DefaultLossStep,
		NetBase:      DefaultNetBase,
		NetStep:      DefaultNetStep,
	}
}

// Synthesizer builds chart curves from scalar predictions. The zero value is
// not usable; use NewSynthesizer.
type Synthesizer struct {
	shaping Shaping
}

// NewSynthesizer builds a synthesizer. A non-positive time constant falls
// back to the default.
func NewSynthesizer(shaping Shaping) Synthesizer {
	if shaping.TimeConstant <= 0 {
		shaping.TimeConstant = DefaultTimeConstant
	}
	return Synthesizer{shaping: shaping}
}

// Shaping returns the constants in use.
func (s Synthesizer) Shaping() Shaping {
	return s.shaping
}

// HeatOutputCurve returns qout*(1-e^(-i/tau)) for i in [0, HeatOutputSteps).
func (s Synthesizer) HeatOutputCurve(qout float64) []float64 {
	curve := make([]float64, HeatOutputSteps)
	for i := range curve {
		curve[i] = round2(qout * (1 - math.Exp(-float64(i)/s.shaping.TimeConstant)))
	}
	return curve
}

// LossCurves returns the heat loss ramp and the net useful heat ramp, both
// LossSteps long. Net useful heat is clamped at zero.
func (s Synthesizer) LossCurves(qloss, qout float64) (loss, net []float64) {
	netUseful := NetUseful(qout, qloss)
	loss = make([]float64, LossSteps)
	net = make([]float64, LossSteps)
	for i := 0; i < LossSteps; i++ {
		step := float64(i)
		loss[i] = round2(qloss * (s.shaping.LossBase + s.shaping.LossStep*step))
		net[i] = round2(netUseful * (s.shaping.NetBase + s.shaping.NetStep*step))
	}
	return loss, net
}

var defaultSynthesizer = NewSynthesizer(DefaultShaping())

// SynthesizeHeatOutputCurve uses the default shaping.
func SynthesizeHeatOutputCurve(qout float64) []float64 {
	return defaultSynthesizer.HeatOutputCurve(qout)
}

// SynthesizeLossCurves uses the default shaping.
func SynthesizeLossCurves(qloss, qout float64) (loss, net []float64) {
	return defaultSynthesizer.LossCurves(qloss, qout)
}

// NetUseful is qout-qloss, never below zero.
func NetUseful(qout, qloss float64) float64 {
	return math.Max(qout-qloss, 0)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
