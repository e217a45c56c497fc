package dashboard

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/yanqian/solar-dashboard/internal/domain/metrics"
)

// Shapes lists the collector shapes the predictor was trained on.
var Shapes = []string{"Hexagonal", "Circular", "Triangular", "Flat", "Concentric"}

// DefaultInput is a typical collector used to prefill the form.
func DefaultInput() PredictionInput {
	return PredictionInput{
		Shape:          "Hexagonal",
		SolarRadiation: 711,
		CollectorArea:  1.1,
		MassFlowRate:   0.02,
		Velocity:       0.5,
		InletTemp:      27,
		OutletTemp:     67,
		AmbientTemp:    28,
		Nusselt:        10,
		Distance:       0.16,
	}
}

// normalizeShape matches case-insensitively and returns the canonical name.
func normalizeShape(shape string) (string, bool) {
	trimmed := strings.TrimSpace(shape)
	for _, candidate := range Shapes {
		if strings.EqualFold(candidate, trimmed) {
			return candidate, true
		}
	}
	return "", false
}

func validateInput(input PredictionInput) (PredictionInput, error) {
	shape, ok := normalizeShape(input.Shape)
	if !ok {
		return PredictionInput{}, fmt.Errorf("invalid shape %q, choose from %s", input.Shape, strings.Join(Shapes, ", "))
	}
	input.Shape = shape
	fields := []struct {
		name  string
		value float64
	}{
		{"solarRadiation", input.SolarRadiation},
		{"collectorArea", input.CollectorArea},
		{"massFlowRate", input.MassFlowRate},
		{"velocity", input.Velocity},
		{"inletTemp", input.InletTemp},
		{"outletTemp", input.OutletTemp},
		{"ambientTemp", input.AmbientTemp},
		{"nusselt", input.Nusselt},
		{"distance", input.Distance},
	}
	for _, f := range fields {
		if !isFinite(f.value) {
			return PredictionInput{}, fmt.Errorf("%s must be a finite number", f.name)
		}
	}
	return input, nil
}

func validateSnapshot(s metrics.Snapshot) error {
	if !isFinite(s.Qout) || !isFinite(s.Qloss) || !isFinite(s.Efficiency) {
		return errors.New("snapshot values must be finite numbers")
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
