package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/yanqian/solar-dashboard/internal/domain/metrics"
)

var (
	trendPrev metrics.Snapshot
	trendCur  metrics.Snapshot
)

var trendCmd = &cobra.Command{
	Use:   "trend",
	Short: "Compare two snapshots the way the dashboard cards do",
	Args:  cobra.NoArgs,
	RunE:  runTrend,
}

func init() {
	f := trendCmd.Flags()
	f.Float64Var(&trendPrev.Qout, "prev-qout", 0, "previous heat output")
	f.Float64Var(&trendPrev.Qloss, "prev-qloss", 0, "previous heat loss")
	f.Float64Var(&trendPrev.Efficiency, "prev-efficiency", 0, "previous efficiency (%)")
	f.Float64Var(&trendCur.Qout, "qout", 0, "current heat output")
	f.Float64Var(&trendCur.Qloss, "qloss", 0, "current heat loss")
	f.Float64Var(&trendCur.Efficiency, "efficiency", 0, "current efficiency (%)")
}

func runTrend(cmd *cobra.Command, _ []string) error {
	result := metrics.ComputeTrends(trendPrev, trendCur)

	rows := [][]cell{headerRow("METRIC", "PREVIOUS", "CURRENT", "TREND")}
	for _, tr := range result.All() {
		rows = append(rows, []cell{
			plain(string(tr.Metric)),
			plain(formatValue(trendPrev.Value(tr.Metric))),
			plain(formatValue(trendCur.Value(tr.Metric))),
			describeTrend(tr),
		})
	}
	return writeTable(cmd.OutOrStdout(), rows)
}

func describeTrend(tr metrics.Trend) cell {
	switch tr.State {
	case metrics.TrendNoData:
		return styled(color.New(color.Faint), "no data")
	case metrics.TrendFlat:
		return styled(color.New(color.FgYellow), "0% (flat)")
	}
	text := fmt.Sprintf("%+.2f%%", tr.Percent)
	if tr.Direction == metrics.DirectionUp {
		return styled(color.New(color.FgGreen), text+" up")
	}
	return styled(color.New(color.FgRed), text+" down")
}
