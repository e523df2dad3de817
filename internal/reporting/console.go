package reporting

import (
	"fmt"
	"strings"

	"wager-lab/internal/domain"
)

// RenderConsole renders the strategy results block printed after a run.
func RenderConsole(cfg domain.GameConfig, s domain.Summary) string {
	var sb strings.Builder
	rule := strings.Repeat("=", 50)

	sb.WriteString("\n" + rule + "\n")
	sb.WriteString("STRATEGY RESULTS\n")
	sb.WriteString(rule + "\n")
	sb.WriteString(fmt.Sprintf("%-28s%s\n", "Initial Stake:", FormatMoney(cfg.InitialStake)))
	sb.WriteString(fmt.Sprintf("%-28s%d\n", "Games per Simulation:", cfg.TotalGames))
	sb.WriteString(fmt.Sprintf("%-28s%s%%\n", "Win Chance:", FormatPercent(cfg.WinChance)))
	sb.WriteString(fmt.Sprintf("%-28s%s%%\n", "Conservative Bet Percent:", FormatPercent(cfg.BetPercent)))
	sb.WriteString(fmt.Sprintf("%-28s%s:1\n", "Payout Ratio:", FormatNumber(cfg.PayoutRatio)))
	sb.WriteString(fmt.Sprintf("%-28s%d games\n", "Strategy Switch Point:", cfg.StrategySwitchPoint))
	sb.WriteString(strings.Repeat("-", 50) + "\n")
	sb.WriteString(fmt.Sprintf("%-28s%s\n", "Average Final Stake:", FormatMoney(s.Mean)))
	sb.WriteString(fmt.Sprintf("%-28s%s\n", "Median Final Stake:", FormatMoney(s.Median)))
	sb.WriteString(fmt.Sprintf("%-28s%.2f%%\n", "Bankruptcy Rate:", s.BankruptcyRate))
	sb.WriteString(rule + "\n")

	return sb.String()
}
