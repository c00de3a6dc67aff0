// Package reporting renders persisted sweep output as CSV for the analysis
// layer.
package reporting

import (
	"fmt"
	"strings"

	"portfolio-note-lab/internal/domain"
	"portfolio-note-lab/internal/storage"
)

// RenderSummaryCSV renders joined scenario/result rows as a CSV string.
// Ruined and failed runs render an empty cagr column.
func RenderSummaryCSV(rows []*storage.ResultRow) string {
	var sb strings.Builder

	// Header
	sb.WriteString("scenario_id,start_year,horizon_years,allocation_name,equity_weight,note_weight,bond_weight,")
	sb.WriteString("protection_level,note_type,withdrawal_method,withdrawal_rate,rebalance_frequency,")
	sb.WriteString("terminal_value,cagr,volatility,max_drawdown,sharpe_ratio,survival_rate,completed,terminal_reason,failure_reason\n")

	// Rows
	for _, row := range rows {
		s, r := row.Scenario, row.Result

		cagr := ""
		if r.CAGR != nil {
			cagr = fmt.Sprintf("%.6f", *r.CAGR)
		}
		failure := ""
		if r.FailureReason != nil {
			failure = csvEscape(*r.FailureReason)
		}

		sb.WriteString(fmt.Sprintf("%s,%d,%d,%s,%.4f,%.4f,%.4f,%.4f,%s,%s,%.4f,%s,%.2f,%s,%.6f,%.6f,%.6f,%.6f,%t,%s,%s\n",
			s.ScenarioID,
			s.StartYear,
			s.HorizonYears,
			s.AllocationName,
			s.Allocation.Equity,
			s.Allocation.Notes,
			s.Allocation.Bonds,
			s.ProtectionLevel,
			s.NoteType,
			s.Withdrawal.Method,
			s.Withdrawal.Rate,
			s.RebalanceFrequency,
			r.TerminalValue,
			cagr,
			r.Volatility,
			r.MaxDrawdown,
			r.SharpeRatio,
			r.SurvivalRate,
			r.Completed,
			r.Reason,
			failure,
		))
	}

	return sb.String()
}

// RenderTrajectoryCSV renders one scenario's yearly states as a CSV string.
func RenderTrajectoryCSV(states []*domain.YearlyState) string {
	var sb strings.Builder

	sb.WriteString("year_index,calendar_year,equity_value,note_value,bond_value,total_value,")
	sb.WriteString("withdrawal_amount,contribution_amount,equity_return,note_return,bond_return,portfolio_return,is_ruined\n")

	for _, st := range states {
		sb.WriteString(fmt.Sprintf("%d,%d,%.2f,%.2f,%.2f,%.2f,%.2f,%.2f,%.6f,%.6f,%.6f,%.6f,%t\n",
			st.YearIndex,
			st.CalendarYear,
			st.EquityValue,
			st.NoteValue,
			st.BondValue,
			st.TotalValue,
			st.WithdrawalAmount,
			st.ContributionAmount,
			st.EquityReturn,
			st.NoteReturn,
			st.BondReturn,
			st.PortfolioReturn,
			st.IsRuined,
		))
	}

	return sb.String()
}

// csvEscape quotes a free-text field when it contains CSV metacharacters.
func csvEscape(s string) string {
	if !strings.ContainsAny(s, ",\"\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
