// Package report turns episode histories into files and summary metrics.
package report

import (
	"math"

	"github.com/quantlab/tradesim/internal/sim"
)

// Summary is the headline result of one episode or baseline run.
type Summary struct {
	Strategy         string  `json:"strategy"`
	InitialBalance   float64 `json:"initial_balance"`
	FinalNetWorth    float64 `json:"final_net_worth"`
	Profit           float64 `json:"profit"`
	MaxDrawdown      float64 `json:"max_drawdown"`
	AnnualizedReturn float64 `json:"annualized_return"`
	Transactions     int     `json:"transactions"`
}

// MaxDrawdown returns the deepest fractional decline from the running peak
// of the series; zero or negative, with -0.25 meaning a 25% drawdown.
func MaxDrawdown(netWorth []float64) float64 {
	worst := 0.0
	peak := math.Inf(-1)
	for _, v := range netWorth {
		if v > peak {
			peak = v
		}
		if peak > 0 {
			dd := (v - peak) / peak
			if dd < worst {
				worst = dd
			}
		}
	}
	return worst
}

// AnnualizedReturn is the CAGR of the series assuming periodsPerYear
// samples per year.
func AnnualizedReturn(netWorth []float64, periodsPerYear int) float64 {
	n := len(netWorth)
	if n == 0 || netWorth[0] <= 0 {
		return 0
	}
	return math.Pow(netWorth[n-1]/netWorth[0], float64(periodsPerYear)/float64(n)) - 1
}

// Summarize reduces an episode history to its headline metrics.
func Summarize(strategy string, initialBalance float64, history []sim.StepRecord, periodsPerYear, transactions int) Summary {
	s := Summary{
		Strategy:       strategy,
		InitialBalance: initialBalance,
		FinalNetWorth:  initialBalance,
		Transactions:   transactions,
	}
	if len(history) == 0 {
		return s
	}
	series := make([]float64, len(history))
	for i, rec := range history {
		series[i] = rec.NetWorth
	}
	s.FinalNetWorth = series[len(series)-1]
	s.Profit = s.FinalNetWorth - initialBalance
	s.MaxDrawdown = MaxDrawdown(series)
	s.AnnualizedReturn = AnnualizedReturn(series, periodsPerYear)
	return s
}
