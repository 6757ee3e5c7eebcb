package sim

import (
	"math"

	"github.com/quantlab/tradesim/internal/observ"
)

// invalidActionPenalty is the recoverable penalty for a buy or sell that
// could not execute. The episode continues with no state change.
const invalidActionPenalty = -0.01

// tradeResult reports the step's primary (agent-chosen) trade.
type tradeResult struct {
	shares         int
	cost           float64 // cost basis: shares * price * cost rate
	invalidPenalty float64
}

// executeTrade maps the continuous action onto a buy, sell or hold against
// the ledger. Positive actions invest balance*action*maxPositionSize,
// negative actions sell |action|*maxPositionSize of the position, zero
// holds. Sizing that floors to zero is bumped to a single share when one is
// affordable (buy) or held (sell), so the agent is never permanently unable
// to act near the threshold.
func (e *Env) executeTrade(action, price float64) tradeResult {
	switch {
	case action > 0:
		if price <= 0 {
			return e.rejectTrade("buy")
		}
		amount := e.ledger.Balance * action * e.cfg.MaxPositionSize
		shares := int(math.Floor(amount / price))
		if shares == 0 && price*(1+e.cfg.TransactionCost) <= e.ledger.Balance {
			shares = 1
		}
		if shares <= 0 {
			return e.rejectTrade("buy")
		}
		cost, err := e.ledger.Buy(shares, price, e.cfg.TransactionCost)
		if err != nil {
			return e.rejectTrade("buy")
		}
		observ.IncCounter("sim_trades_total", map[string]string{"side": "buy"})
		return tradeResult{shares: shares, cost: cost}

	case action < 0:
		proportion := math.Abs(action) * e.cfg.MaxPositionSize
		shares := int(math.Floor(float64(e.ledger.Position) * proportion))
		if shares == 0 && e.ledger.Position > 0 {
			shares = 1
		}
		if shares <= 0 || shares > e.ledger.Position {
			return e.rejectTrade("sell")
		}
		cost, err := e.ledger.Sell(shares, price, e.cfg.TransactionCost)
		if err != nil {
			return e.rejectTrade("sell")
		}
		observ.IncCounter("sim_trades_total", map[string]string{"side": "sell"})
		return tradeResult{shares: shares, cost: cost}
	}
	// hold: no state change, no penalty
	return tradeResult{}
}

func (e *Env) rejectTrade(side string) tradeResult {
	observ.IncCounter("sim_rejected_trades_total", map[string]string{"side": side})
	return tradeResult{invalidPenalty: invalidActionPenalty}
}
