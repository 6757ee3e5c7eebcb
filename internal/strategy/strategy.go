// Package strategy implements simple rule baselines evaluated against the
// same price series as the simulator. They share the simulator's portfolio
// bookkeeping laws (cost-adjusted buys and sells, no shorting) but none of
// its reward machinery.
package strategy

import (
	"math"
	"time"

	"github.com/quantlab/tradesim/internal/dataset"
	"github.com/quantlab/tradesim/internal/observ"
)

// Params configures a baseline run.
type Params struct {
	InitialBalance  float64
	TransactionCost float64
	MaxPositionSize float64
}

// DefaultParams mirrors the conventional baseline setup.
func DefaultParams() Params {
	return Params{
		InitialBalance:  100000,
		TransactionCost: 0.001,
		MaxPositionSize: 0.5,
	}
}

// Trade is one executed baseline decision.
type Trade struct {
	Date     time.Time
	Price    float64
	Action   string // "Buy", "Sell" or "Hold"
	Shares   int
	NetWorth float64
	Balance  float64
	Position int
	Reward   float64 // realized profit of a sell, as a fraction of initial balance
}

// Result summarizes a completed baseline run.
type Result struct {
	Name           string
	InitialBalance float64
	FinalNetWorth  float64
	Profit         float64
	Transactions   int
	Trades         []Trade
}

// book is the shared bookkeeping core of every baseline.
type book struct {
	p        Params
	balance  float64
	holdings int
	buyPrice float64
	trades   []Trade
	count    int
}

func newBook(p Params) *book {
	return &book{p: p, balance: p.InitialBalance}
}

// buy invests balance*maxPositionSize at price, flooring to whole shares.
// Unaffordable or zero-share signals are skipped silently, as a rule firing
// into an empty account is not an error.
func (b *book) buy(date time.Time, price float64) {
	if price <= 0 {
		return
	}
	shares := int(math.Floor(b.balance * b.p.MaxPositionSize / price))
	if shares <= 0 {
		return
	}
	total := float64(shares) * price * (1 + b.p.TransactionCost)
	if total > b.balance {
		return
	}
	b.balance -= total
	b.holdings += shares
	b.buyPrice = price
	b.count++
	b.trades = append(b.trades, Trade{
		Date: date, Price: price, Action: "Buy", Shares: shares,
		NetWorth: b.balance + float64(b.holdings)*price,
		Balance:  b.balance, Position: b.holdings,
	})
}

// sellAll liquidates the whole holding at price.
func (b *book) sellAll(date time.Time, price float64) {
	if b.holdings <= 0 {
		return
	}
	shares := b.holdings
	b.balance += float64(shares) * price * (1 - b.p.TransactionCost)
	b.holdings = 0
	b.count++
	profit := (price - b.buyPrice) * float64(shares)
	b.trades = append(b.trades, Trade{
		Date: date, Price: price, Action: "Sell", Shares: shares,
		NetWorth: b.balance, Balance: b.balance, Position: 0,
		Reward: profit / b.p.InitialBalance,
	})
}

func (b *book) hold(date time.Time, price float64) {
	b.trades = append(b.trades, Trade{
		Date: date, Price: price, Action: "Hold",
		NetWorth: b.balance + float64(b.holdings)*price,
		Balance:  b.balance, Position: b.holdings,
	})
}

// finish closes any residual holding at the final row and summarizes.
func (b *book) finish(name string, f *dataset.Frame) Result {
	last := f.Len() - 1
	if b.holdings > 0 {
		b.sellAll(f.Date(last), f.Price(last))
	}
	res := Result{
		Name:           name,
		InitialBalance: b.p.InitialBalance,
		FinalNetWorth:  b.balance,
		Profit:         b.balance - b.p.InitialBalance,
		Transactions:   b.count,
		Trades:         b.trades,
	}
	observ.Log("baseline_complete", map[string]any{
		"strategy":     res.Name,
		"net_worth":    res.FinalNetWorth,
		"profit":       res.Profit,
		"transactions": res.Transactions,
	})
	return res
}
