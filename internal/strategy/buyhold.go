package strategy

import (
	"math"

	"github.com/quantlab/tradesim/internal/dataset"
)

// BuyAndHold invests the entire starting balance at the first row and
// values the holding at the last. It ignores MaxPositionSize: the point of
// the baseline is full exposure for the whole period.
func BuyAndHold(f *dataset.Frame, p Params) Result {
	b := newBook(p)

	price := f.Price(0)
	if price > 0 {
		shares := int(math.Floor(p.InitialBalance / price))
		total := float64(shares) * price * (1 + p.TransactionCost)
		for shares > 0 && total > b.balance {
			// shave shares until the cost-adjusted total fits
			shares--
			total = float64(shares) * price * (1 + p.TransactionCost)
		}
		if shares > 0 {
			b.balance -= total
			b.holdings = shares
			b.buyPrice = price
			b.count++
			b.trades = append(b.trades, Trade{
				Date: f.Date(0), Price: price, Action: "Buy", Shares: shares,
				NetWorth: b.balance + float64(shares)*price,
				Balance:  b.balance, Position: shares,
			})
		}
	}

	return b.finish("Buy and Hold", f)
}
