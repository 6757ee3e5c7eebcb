package strategy

import "github.com/quantlab/tradesim/internal/dataset"

// BollingerBreakout buys when the close crosses below the lower band and
// sells everything when it crosses above the upper band.
func BollingerBreakout(f *dataset.Frame, p Params) Result {
	b := newBook(p)

	for i := 1; i < f.Len(); i++ {
		prevLower, ok1 := f.Unscaled(i-1, "BB_Lower")
		prevUpper, ok2 := f.Unscaled(i-1, "BB_Upper")
		lower, ok3 := f.Unscaled(i, "BB_Lower")
		upper, ok4 := f.Unscaled(i, "BB_Upper")
		if !ok1 || !ok2 || !ok3 || !ok4 {
			continue
		}
		prevClose := f.Price(i - 1)
		close := f.Price(i)
		switch {
		case prevClose >= prevLower && close < lower:
			b.buy(f.Date(i), close)
		case prevClose <= prevUpper && close > upper:
			b.sellAll(f.Date(i), close)
		}
	}

	return b.finish("Bollinger Bands", f)
}
