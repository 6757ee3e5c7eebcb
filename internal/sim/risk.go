package sim

import (
	"math"

	"github.com/quantlab/tradesim/internal/observ"
)

// Drawdown thresholds. Penalty accrual starts past 5%, amplifies past 10%,
// partial forced liquidation fires past 15% and full liquidation past 20%.
const (
	drawdownPenaltyLevel = 0.05
	drawdownAmplifyLevel = 0.10
	partialLiqLevel      = 0.15
	fullLiqLevel         = 0.20
)

// riskOutcome captures the involuntary part of a step: the drawdown
// measured before liquidation, the accrued penalty, and any forced sale.
type riskOutcome struct {
	drawdown         float64
	penalty          float64
	liquidatedShares int
	liquidationCost  float64
	partial          bool
	full             bool
}

// applyRiskControl runs after the primary trade on the post-trade net
// worth. Both liquidation branches are evaluated in order, so a severe
// one-step drop can trigger the partial sale and then flatten the rest.
// Liquidations are unconditional and layered on top of whatever the agent
// chose to do this step.
func (e *Env) applyRiskControl(price, netWorth float64) riskOutcome {
	e.ledger.UpdatePeak(netWorth)
	dd := e.ledger.Drawdown(netWorth)
	out := riskOutcome{drawdown: dd}

	if dd > drawdownPenaltyLevel {
		out.penalty -= 2.0 + e.cfg.InitialBalance*e.cfg.DrawdownFactor
	}
	if dd > drawdownAmplifyLevel {
		out.penalty = -math.Abs(out.penalty) * 1.25
	}

	if dd > partialLiqLevel && e.ledger.Position > 0 {
		shares := e.ledger.Position / 2
		if shares > 0 {
			if cost, err := e.ledger.Sell(shares, price, e.cfg.TransactionCost); err == nil {
				out.liquidatedShares = shares
				out.liquidationCost += cost
				out.partial = true
				rebased := e.ledger.NetWorth(price)
				e.ledger.SetPeak(rebased)
				e.prevNetWorth = rebased
				e.consecutiveDrawdownSteps = 0
				observ.IncCounter("sim_forced_liquidations_total", map[string]string{"kind": "partial"})
				observ.Log("forced_liquidation", map[string]any{
					"kind": "partial", "step": e.step, "drawdown": dd,
					"shares": shares, "price": price,
				})
			}
		}
	}
	if dd > fullLiqLevel && e.ledger.Position > 0 {
		shares := e.ledger.Position
		if cost, err := e.ledger.Sell(shares, price, e.cfg.TransactionCost); err == nil {
			out.liquidatedShares = shares
			out.liquidationCost += cost
			out.full = true
			e.ledger.SetPeak(e.ledger.Balance)
			e.prevNetWorth = e.ledger.Balance
			e.consecutiveDrawdownSteps = 0
			observ.IncCounter("sim_forced_liquidations_total", map[string]string{"kind": "full"})
			observ.Log("forced_liquidation", map[string]any{
				"kind": "full", "step": e.step, "drawdown": dd,
				"shares": shares, "price": price,
			})
		}
	}

	// The negate-and-scale is applied once more unconditionally here, so
	// the effective penalty compounds for drawdowns past 10%. Candidate
	// review item; the tuned reward surface depends on it.
	out.penalty = -math.Abs(out.penalty) * 1.25

	return out
}
