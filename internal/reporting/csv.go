package reporting

import (
	"fmt"
	"strconv"
	"strings"

	"wager-lab/internal/orchestrator"
)

// RenderCSV renders terminal stakes as CSV, one row per trial in trial order.
func RenderCSV(stakes []float64) string {
	var sb strings.Builder

	// Header
	sb.WriteString("trial,final_stake,bankrupt\n")

	// Rows
	for i, s := range stakes {
		sb.WriteString(strconv.Itoa(i))
		sb.WriteByte(',')
		sb.WriteString(strconv.FormatFloat(s, 'f', -1, 64))
		sb.WriteByte(',')
		sb.WriteString(strconv.FormatBool(s == 0))
		sb.WriteByte('\n')
	}

	return sb.String()
}

// RenderSweepCSV renders sweep rows as CSV.
func RenderSweepCSV(rows []orchestrator.SweepRow) string {
	var sb strings.Builder

	sb.WriteString("switch_point,run_id,simulations,mean,median,bankruptcy_count,bankruptcy_rate,p10,p90,stddev\n")
	for _, r := range rows {
		s := r.Summary
		sb.WriteString(fmt.Sprintf("%d,%s,%d,%.6f,%.6f,%d,%.4f,%.6f,%.6f,%.6f\n",
			r.SwitchPoint,
			r.RunID,
			s.Simulations,
			s.Mean,
			s.Median,
			s.BankruptcyCount,
			s.BankruptcyRate,
			s.P10,
			s.P90,
			s.Stddev,
		))
	}

	return sb.String()
}
