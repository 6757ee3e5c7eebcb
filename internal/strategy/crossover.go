package strategy

import "github.com/quantlab/tradesim/internal/dataset"

// SMACrossover buys when the 10-day average crosses above the 50-day and
// sells everything when it crosses back below.
func SMACrossover(f *dataset.Frame, p Params) Result {
	b := newBook(p)

	for i := 1; i < f.Len(); i++ {
		prevFast, ok1 := f.Unscaled(i-1, "SMA10")
		prevSlow, ok2 := f.Unscaled(i-1, "SMA50")
		fast, ok3 := f.Unscaled(i, "SMA10")
		slow, ok4 := f.Unscaled(i, "SMA50")
		if !ok1 || !ok2 || !ok3 || !ok4 {
			continue
		}
		switch {
		case prevFast < prevSlow && fast > slow:
			b.buy(f.Date(i), f.Price(i))
		case prevFast > prevSlow && fast < slow:
			b.sellAll(f.Date(i), f.Price(i))
		}
	}

	return b.finish("SMA Crossover", f)
}

// MACDCrossover buys when the MACD line crosses above zero and sells
// everything when it crosses below.
func MACDCrossover(f *dataset.Frame, p Params) Result {
	b := newBook(p)

	for i := 1; i < f.Len(); i++ {
		prev, ok1 := f.Unscaled(i-1, "MACD")
		cur, ok2 := f.Unscaled(i, "MACD")
		if !ok1 || !ok2 {
			continue
		}
		switch {
		case prev < 0 && cur > 0:
			b.buy(f.Date(i), f.Price(i))
		case prev > 0 && cur < 0:
			b.sellAll(f.Date(i), f.Price(i))
		}
	}

	return b.finish("MACD Crossover", f)
}
