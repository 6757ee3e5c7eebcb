package dataset

import "time"

// SyntheticFrame builds a fully populated frame from a bare price series,
// for tests and demos that do not want to run the CSV/indicator pipeline.
// Every feature's unscaled value defaults to the close price except the
// oscillator-style columns, which get fixed neutral readings; scaled
// vectors are zeroed, which is the z-score of a constant column.
func SyntheticFrame(prices []float64) *Frame {
	rows := make([]Row, len(prices))
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	for i, p := range prices {
		row := Row{
			Date:   start.AddDate(0, 0, i),
			Open:   p,
			High:   p,
			Low:    p,
			Close:  p,
			Volume: 1000,
		}
		row.Unscaled = make([]float64, len(FeatureNames))
		row.Scaled = make([]float64, len(FeatureNames))
		for j, name := range FeatureNames {
			switch name {
			case "RSI":
				row.Unscaled[j] = 50
			case "ADX":
				row.Unscaled[j] = 20
			case "Volatility":
				row.Unscaled[j] = 2
			case "Lagged_Return":
				row.Unscaled[j] = 0
			default:
				row.Unscaled[j] = p
			}
		}
		rows[i] = row
	}
	return NewFrame(rows)
}

// SetUnscaled overrides one unscaled feature value on a single row,
// letting tests steer phase classification and reward factors.
func (f *Frame) SetUnscaled(i int, name string, v float64) {
	if j, ok := f.index[name]; ok && i >= 0 && i < len(f.Rows) {
		f.Rows[i].Unscaled[j] = v
	}
}
