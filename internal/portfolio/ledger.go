package portfolio

import "fmt"

// Ledger is the single-asset account book for one simulation episode: cash
// balance, share position, running peak net worth and a transaction counter.
// It is created at reset, mutated only by trade execution and risk control,
// and discarded at episode end. No short selling: Position never goes
// negative.
type Ledger struct {
	InitialBalance   float64
	Balance          float64
	Position         int
	Peak             float64
	TransactionCount int
}

// NewLedger opens a ledger funded with the initial balance.
func NewLedger(initialBalance float64) *Ledger {
	return &Ledger{
		InitialBalance: initialBalance,
		Balance:        initialBalance,
		Peak:           initialBalance,
	}
}

// NetWorth is the cash balance plus the position valued at price.
func (l *Ledger) NetWorth(price float64) float64 {
	return l.Balance + float64(l.Position)*price
}

// Buy debits shares*price*(1+costRate) and adds the shares. The returned
// value is the cost basis of the trade, shares*price*costRate, for reward
// accounting.
func (l *Ledger) Buy(shares int, price, costRate float64) (float64, error) {
	if shares <= 0 {
		return 0, fmt.Errorf("buy of %d shares", shares)
	}
	total := float64(shares) * price * (1 + costRate)
	if total > l.Balance {
		return 0, fmt.Errorf("buy of %d shares costs %.2f, balance %.2f", shares, total, l.Balance)
	}
	l.Balance -= total
	l.Position += shares
	l.TransactionCount++
	return float64(shares) * price * costRate, nil
}

// Sell credits shares*price*(1-costRate) and removes the shares. The
// returned value is the cost basis of the trade.
func (l *Ledger) Sell(shares int, price, costRate float64) (float64, error) {
	if shares <= 0 || shares > l.Position {
		return 0, fmt.Errorf("sell of %d shares with position %d", shares, l.Position)
	}
	l.Balance += float64(shares) * price * (1 - costRate)
	l.Position -= shares
	l.TransactionCount++
	return float64(shares) * price * costRate, nil
}

// UpdatePeak ratchets the running peak net worth. Peak only moves up here;
// forced liquidation re-bases it explicitly via SetPeak.
func (l *Ledger) UpdatePeak(netWorth float64) {
	if netWorth > l.Peak {
		l.Peak = netWorth
	}
}

// SetPeak re-bases the peak after a forced liquidation.
func (l *Ledger) SetPeak(v float64) { l.Peak = v }

// Drawdown is the fractional decline of netWorth from the running peak,
// zero when the peak is not positive.
func (l *Ledger) Drawdown(netWorth float64) float64 {
	if l.Peak <= 0 {
		return 0
	}
	return (l.Peak - netWorth) / l.Peak
}
