package main

import (
	"encoding/json"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/yanqian/solar-dashboard/internal/domain/dashboard"
	"github.com/yanqian/solar-dashboard/internal/domain/metrics"
)

var (
	curvesQout         float64
	curvesQloss        float64
	curvesTimeConstant float64
	curvesJSON         bool
)

var curvesCmd = &cobra.Command{
	Use:   "curves",
	Short: "Print the synthesized heat output, loss and net curves",
	Args:  cobra.NoArgs,
	RunE:  runCurves,
}

func init() {
	curvesCmd.Flags().Float64Var(&curvesQout, "qout", 0, "predicted heat output")
	curvesCmd.Flags().Float64Var(&curvesQloss, "qloss", 0, "predicted heat loss")
	curvesCmd.Flags().Float64Var(&curvesTimeConstant, "tau", metrics.DefaultTimeConstant, "time constant of the heat output curve")
	curvesCmd.Flags().BoolVar(&curvesJSON, "json", false, "emit JSON instead of a table")
}

type curveSet struct {
	HeatOutput dashboard.Series `json:"heatOutput"`
	HeatLoss   dashboard.Series `json:"heatLoss"`
	NetUseful  dashboard.Series `json:"netUsefulHeat"`
}

func buildCurves(qout, qloss, tau float64) curveSet {
	shaping := metrics.DefaultShaping()
	shaping.TimeConstant = tau
	synth := metrics.NewSynthesizer(shaping)
	loss, net := synth.LossCurves(qloss, qout)
	step := 10 * time.Second
	return curveSet{
		HeatOutput: dashboard.Series{Name: dashboard.SeriesHeatOutput, Labels: dashboard.StepLabels(metrics.HeatOutputSteps, step), Values: synth.HeatOutputCurve(qout)},
		HeatLoss:   dashboard.Series{Name: dashboard.SeriesHeatLoss, Labels: dashboard.StepLabels(metrics.LossSteps, step), Values: loss},
		NetUseful:  dashboard.Series{Name: dashboard.SeriesNetUseful, Labels: dashboard.StepLabels(metrics.LossSteps, step), Values: net},
	}
}

func runCurves(cmd *cobra.Command, _ []string) error {
	set := buildCurves(curvesQout, curvesQloss, curvesTimeConstant)
	if curvesJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(set)
	}
	return writeCurveTable(cmd.OutOrStdout(), set)
}

func writeCurveTable(w io.Writer, set curveSet) error {
	rows := [][]cell{headerRow("T", "HEAT_OUTPUT", "HEAT_LOSS", "NET_USEFUL")}
	for i, label := range set.HeatOutput.Labels {
		loss, net := "-", "-"
		if i < len(set.HeatLoss.Values) {
			loss = formatValue(set.HeatLoss.Values[i])
			net = formatValue(set.NetUseful.Values[i])
		}
		rows = append(rows, []cell{plain(label), plain(formatValue(set.HeatOutput.Values[i])), plain(loss), plain(net)})
	}
	return writeTable(w, rows)
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
