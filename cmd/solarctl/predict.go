package main

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/yanqian/solar-dashboard/internal/domain/dashboard"
	"github.com/yanqian/solar-dashboard/internal/domain/metrics"
	"github.com/yanqian/solar-dashboard/internal/infra/predictor/solarapi"
)

var (
	predictURL     string
	predictTimeout time.Duration
	predictInput   = dashboard.DefaultInput()
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Call the prediction service and preview the resulting curves",
	Args:  cobra.NoArgs,
	RunE:  runPredict,
}

func init() {
	f := predictCmd.Flags()
	f.StringVar(&predictURL, "url", "http://127.0.0.1:5000", "prediction service base URL")
	f.DurationVar(&predictTimeout, "timeout", 10*time.Second, "request timeout")
	f.StringVar(&predictInput.Shape, "shape", predictInput.Shape, "collector shape")
	f.Float64Var(&predictInput.SolarRadiation, "solar-radiation", predictInput.SolarRadiation, "solar radiation (W/m2)")
	f.Float64Var(&predictInput.CollectorArea, "collector-area", predictInput.CollectorArea, "collector area (m2)")
	f.Float64Var(&predictInput.MassFlowRate, "mass-flow-rate", predictInput.MassFlowRate, "mass flow rate (kg/s)")
	f.Float64Var(&predictInput.Velocity, "velocity", predictInput.Velocity, "fluid velocity (m/s)")
	f.Float64Var(&predictInput.InletTemp, "inlet-temp", predictInput.InletTemp, "inlet temperature (C)")
	f.Float64Var(&predictInput.OutletTemp, "outlet-temp", predictInput.OutletTemp, "outlet temperature (C)")
	f.Float64Var(&predictInput.AmbientTemp, "ambient-temp", predictInput.AmbientTemp, "ambient temperature (C)")
	f.Float64Var(&predictInput.Nusselt, "nusselt", predictInput.Nusselt, "Nusselt number")
	f.Float64Var(&predictInput.Distance, "distance", predictInput.Distance, "distance (m)")
}

func runPredict(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), predictTimeout)
	defer cancel()

	client := solarapi.NewClient(predictURL, predictTimeout)
	snapshot, err := client.Predict(ctx, predictInput)
	if err != nil {
		return fmt.Errorf("predict: %w", err)
	}

	w := cmd.OutOrStdout()
	bold := color.New(color.Bold)
	_, _ = fmt.Fprintf(w, "%s %s\n", bold.Sprint("Qout:"), formatValue(snapshot.Qout))
	_, _ = fmt.Fprintf(w, "%s %s\n", bold.Sprint("Qloss:"), formatValue(snapshot.Qloss))
	_, _ = fmt.Fprintf(w, "%s %s\n", bold.Sprint("Efficiency (%):"), formatValue(snapshot.Efficiency))
	_, _ = fmt.Fprintf(w, "%s %s\n\n", bold.Sprint("Net useful:"), formatValue(metrics.NetUseful(snapshot.Qout, snapshot.Qloss)))
	return writeCurveTable(w, buildCurves(snapshot.Qout, snapshot.Qloss, metrics.DefaultTimeConstant))
}
