package strategy

import (
	"math/rand"

	"github.com/quantlab/tradesim/internal/dataset"
)

// Random picks buy, sell or hold uniformly at each row. The PRNG is owned
// by the caller so comparison runs stay reproducible.
func Random(f *dataset.Frame, p Params, rng *rand.Rand) Result {
	b := newBook(p)

	for i := 1; i < f.Len(); i++ {
		switch rng.Intn(3) {
		case 0:
			b.buy(f.Date(i), f.Price(i))
		case 1:
			b.sellAll(f.Date(i), f.Price(i))
		default:
			b.hold(f.Date(i), f.Price(i))
		}
	}

	return b.finish("Random", f)
}
