package notifier

import (
	"fmt"
	"html"
	"math"
	"strings"

	"BacktestForge/internal/model"
)

// maxListedTrades caps the per-trade lines in one message.
const maxListedTrades = 20

// FormatBacktestReport formats a run's trade table into a Telegram HTML message.
func FormatBacktestReport(symbol, strategy string, fee float64, table *model.TradeTable, openAtEnd bool) string {
	var b strings.Builder
	n := table.Len()

	b.WriteString(fmt.Sprintf("📊 <b>Backtest</b> | %s | %s\n", html.EscapeString(symbol), html.EscapeString(strategy)))
	b.WriteString(fmt.Sprintf("Fee: %.2f%% | Trades: %d\n\n", fee*100, n))

	if n == 0 {
		b.WriteString("No closed trades.\n")
	} else {
		b.WriteString("📈 <b>Trades:</b>\n")
		for i, tr := range table.Trades {
			if i == maxListedTrades {
				b.WriteString(fmt.Sprintf("  … %d more\n", n-maxListedTrades))
				break
			}
			b.WriteString(fmt.Sprintf("  %s %.2f → %s %.2f  %s\n",
				tr.Entry.Time.Format("2006-01-02"), tr.Entry.Close,
				tr.Exit.Time.Format("2006-01-02"), tr.Exit.Close,
				formatPct(tr.Profit)))
		}
	}

	if openAtEnd {
		b.WriteString("\n⚠️ Position still open at the last bar (not counted).\n")
	}
	return b.String()
}

// FormatError formats a failed scheduled run.
func FormatError(symbol, strategy string, err error) string {
	return fmt.Sprintf("❌ <b>Backtest failed</b> | %s | %s\n%s",
		html.EscapeString(symbol), html.EscapeString(strategy), html.EscapeString(err.Error()))
}

func formatPct(p float64) string {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return "n/a"
	}
	return fmt.Sprintf("%+.2f%%", p*100)
}
