package dataset

import "time"

// FeatureNames is the fixed, ordered set of per-row features exposed to the
// simulator. The scaled values feed the observation vector; the matching
// unscaled values drive price and indicator logic.
var FeatureNames = []string{
	"Close", "SMA10", "SMA50", "RSI", "MACD", "ADX",
	"BB_Upper", "BB_Lower", "Bollinger_Width",
	"EMA20", "VWAP", "Lagged_Return", "Volatility",
}

// Row is one time-indexed observation of the underlying price series.
// Scaled and Unscaled are index-aligned with Frame.Features.
type Row struct {
	Date     time.Time
	Open     float64
	High     float64
	Low      float64
	Close    float64
	AdjClose float64
	Volume   float64
	Scaled   []float64
	Unscaled []float64
}

// Frame is an ordered table of feature rows. Rows are strictly
// time-ascending and complete; that is established at load time, consumers
// do not repair gaps.
type Frame struct {
	Features []string
	Rows     []Row
	index    map[string]int
}

// NewFrame wraps rows with the canonical feature ordering.
func NewFrame(rows []Row) *Frame {
	idx := make(map[string]int, len(FeatureNames))
	for i, name := range FeatureNames {
		idx[name] = i
	}
	features := make([]string, len(FeatureNames))
	copy(features, FeatureNames)
	return &Frame{Features: features, Rows: rows, index: idx}
}

func (f *Frame) Len() int { return len(f.Rows) }

// Unscaled returns the raw value of a named feature at row i. The boolean is
// false when the feature is unknown or the row carries no unscaled values.
func (f *Frame) Unscaled(i int, name string) (float64, bool) {
	if i < 0 || i >= len(f.Rows) {
		return 0, false
	}
	j, ok := f.index[name]
	if !ok || j >= len(f.Rows[i].Unscaled) {
		return 0, false
	}
	return f.Rows[i].Unscaled[j], true
}

// ScaledVector returns the scaled feature values for row i in declared order.
func (f *Frame) ScaledVector(i int) []float64 {
	return f.Rows[i].Scaled
}

// Price returns the raw (unscaled) close price at row i.
func (f *Frame) Price(i int) float64 { return f.Rows[i].Close }

// Date returns the timestamp of row i.
func (f *Frame) Date(i int) time.Time { return f.Rows[i].Date }
