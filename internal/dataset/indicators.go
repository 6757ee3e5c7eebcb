package dataset

import (
	"fmt"
	"math"
)

// ComputeIndicators derives the full feature set from the raw OHLCV columns
// and stores it as each row's unscaled vector. Leading warm-up gaps are
// forward-filled and any remaining gap becomes zero, so every row ends up
// complete.
func ComputeIndicators(f *Frame) error {
	n := f.Len()
	closes := make([]float64, n)
	highs := make([]float64, n)
	lows := make([]float64, n)
	volumes := make([]float64, n)
	for i, row := range f.Rows {
		closes[i] = row.Close
		highs[i] = row.High
		lows[i] = row.Low
		volumes[i] = row.Volume
	}

	bbUpper, bbLower, bbWidth := bollinger(closes, 20, 2)

	columns := map[string][]float64{
		"Close":           closes,
		"SMA10":           sma(closes, 10),
		"SMA50":           sma(closes, 50),
		"RSI":             rsi(closes, 14),
		"MACD":            macdLine(closes, 12, 26),
		"ADX":             adx(highs, lows, closes, 14),
		"BB_Upper":        bbUpper,
		"BB_Lower":        bbLower,
		"Bollinger_Width": bbWidth,
		"EMA20":           ema(closes, 20),
		"VWAP":            vwap(highs, lows, closes, volumes, 14),
		"Lagged_Return":   laggedReturn(closes),
		"Volatility":      atr(highs, lows, closes, 14),
	}

	for name, col := range columns {
		if allNaN(col) {
			return fmt.Errorf("indicator %s could not be computed", name)
		}
		fillGaps(col)
		columns[name] = col
	}

	for i := range f.Rows {
		vec := make([]float64, len(f.Features))
		for j, name := range f.Features {
			vec[j] = columns[name][i]
		}
		f.Rows[i].Unscaled = vec
	}
	return nil
}

// fillGaps forward-fills NaN entries, then zeroes whatever is left at the head.
func fillGaps(col []float64) {
	last := math.NaN()
	for i, v := range col {
		if math.IsNaN(v) {
			if math.IsNaN(last) {
				col[i] = 0
			} else {
				col[i] = last
			}
			continue
		}
		last = v
	}
}

func allNaN(col []float64) bool {
	for _, v := range col {
		if !math.IsNaN(v) {
			return false
		}
	}
	return true
}

// sma is a simple moving average; entries before one full window are NaN.
func sma(values []float64, window int) []float64 {
	out := nanSlice(len(values))
	var sum float64
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		if i >= window-1 {
			out[i] = sum / float64(window)
		}
	}
	return out
}

// ema is an exponential moving average seeded with the SMA of the first
// window, alpha = 2/(window+1).
func ema(values []float64, window int) []float64 {
	out := nanSlice(len(values))
	if len(values) < window {
		return out
	}
	alpha := 2.0 / float64(window+1)
	var seed float64
	for _, v := range values[:window] {
		seed += v
	}
	prev := seed / float64(window)
	out[window-1] = prev
	for i := window; i < len(values); i++ {
		prev = alpha*values[i] + (1-alpha)*prev
		out[i] = prev
	}
	return out
}

// rsi is the Wilder relative strength index.
func rsi(values []float64, window int) []float64 {
	out := nanSlice(len(values))
	if len(values) <= window {
		return out
	}
	var gain, loss float64
	for i := 1; i <= window; i++ {
		d := values[i] - values[i-1]
		if d > 0 {
			gain += d
		} else {
			loss -= d
		}
	}
	avgGain := gain / float64(window)
	avgLoss := loss / float64(window)
	out[window] = rsiValue(avgGain, avgLoss)
	for i := window + 1; i < len(values); i++ {
		d := values[i] - values[i-1]
		g, l := 0.0, 0.0
		if d > 0 {
			g = d
		} else {
			l = -d
		}
		avgGain = (avgGain*float64(window-1) + g) / float64(window)
		avgLoss = (avgLoss*float64(window-1) + l) / float64(window)
		out[i] = rsiValue(avgGain, avgLoss)
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// macdLine is the fast EMA minus the slow EMA of the closes.
func macdLine(values []float64, fast, slow int) []float64 {
	emaFast := ema(values, fast)
	emaSlow := ema(values, slow)
	out := nanSlice(len(values))
	for i := range values {
		if !math.IsNaN(emaFast[i]) && !math.IsNaN(emaSlow[i]) {
			out[i] = emaFast[i] - emaSlow[i]
		}
	}
	return out
}

// bollinger returns the upper band, lower band and band width (as a percent
// of the middle band) for an SMA(window) +/- dev standard deviations.
func bollinger(values []float64, window int, dev float64) (upper, lower, width []float64) {
	upper = nanSlice(len(values))
	lower = nanSlice(len(values))
	width = nanSlice(len(values))
	mid := sma(values, window)
	for i := window - 1; i < len(values); i++ {
		var ss float64
		for j := i - window + 1; j <= i; j++ {
			d := values[j] - mid[i]
			ss += d * d
		}
		sd := math.Sqrt(ss / float64(window))
		upper[i] = mid[i] + dev*sd
		lower[i] = mid[i] - dev*sd
		if mid[i] != 0 {
			width[i] = (upper[i] - lower[i]) / mid[i] * 100
		} else {
			width[i] = 0
		}
	}
	return upper, lower, width
}

// vwap is the rolling volume-weighted average of the typical price.
func vwap(highs, lows, closes, volumes []float64, window int) []float64 {
	n := len(closes)
	out := nanSlice(n)
	tpv := make([]float64, n)
	for i := 0; i < n; i++ {
		tpv[i] = (highs[i] + lows[i] + closes[i]) / 3 * volumes[i]
	}
	var sumTPV, sumVol float64
	for i := 0; i < n; i++ {
		sumTPV += tpv[i]
		sumVol += volumes[i]
		if i >= window {
			sumTPV -= tpv[i-window]
			sumVol -= volumes[i-window]
		}
		if i >= window-1 {
			if sumVol != 0 {
				out[i] = sumTPV / sumVol
			} else {
				out[i] = closes[i]
			}
		}
	}
	return out
}

// laggedReturn is the one-step percent change of the closes, zero at the head.
func laggedReturn(values []float64) []float64 {
	out := make([]float64, len(values))
	for i := 1; i < len(values); i++ {
		if values[i-1] != 0 {
			out[i] = (values[i] - values[i-1]) / values[i-1]
		}
	}
	return out
}

// atr is the Wilder average true range, used as the volatility feature.
func atr(highs, lows, closes []float64, window int) []float64 {
	n := len(closes)
	out := nanSlice(n)
	if n <= window {
		return out
	}
	tr := make([]float64, n)
	tr[0] = highs[0] - lows[0]
	for i := 1; i < n; i++ {
		hl := highs[i] - lows[i]
		hc := math.Abs(highs[i] - closes[i-1])
		lc := math.Abs(lows[i] - closes[i-1])
		tr[i] = math.Max(hl, math.Max(hc, lc))
	}
	var seed float64
	for i := 0; i < window; i++ {
		seed += tr[i]
	}
	prev := seed / float64(window)
	out[window-1] = prev
	for i := window; i < n; i++ {
		prev = (prev*float64(window-1) + tr[i]) / float64(window)
		out[i] = prev
	}
	return out
}

// adx is the Wilder average directional index, the trend-strength input to
// market-phase classification.
func adx(highs, lows, closes []float64, window int) []float64 {
	n := len(closes)
	out := nanSlice(n)
	if n <= 2*window {
		return out
	}

	plusDM := make([]float64, n)
	minusDM := make([]float64, n)
	tr := make([]float64, n)
	for i := 1; i < n; i++ {
		up := highs[i] - highs[i-1]
		down := lows[i-1] - lows[i]
		if up > down && up > 0 {
			plusDM[i] = up
		}
		if down > up && down > 0 {
			minusDM[i] = down
		}
		hl := highs[i] - lows[i]
		hc := math.Abs(highs[i] - closes[i-1])
		lc := math.Abs(lows[i] - closes[i-1])
		tr[i] = math.Max(hl, math.Max(hc, lc))
	}

	// Wilder-smoothed sums over the first window, then recursive updates.
	var smTR, smPlus, smMinus float64
	for i := 1; i <= window; i++ {
		smTR += tr[i]
		smPlus += plusDM[i]
		smMinus += minusDM[i]
	}

	dx := nanSlice(n)
	dx[window] = dxValue(smPlus, smMinus, smTR)
	for i := window + 1; i < n; i++ {
		smTR = smTR - smTR/float64(window) + tr[i]
		smPlus = smPlus - smPlus/float64(window) + plusDM[i]
		smMinus = smMinus - smMinus/float64(window) + minusDM[i]
		dx[i] = dxValue(smPlus, smMinus, smTR)
	}

	var seed float64
	for i := window; i < 2*window; i++ {
		seed += dx[i]
	}
	prev := seed / float64(window)
	out[2*window-1] = prev
	for i := 2 * window; i < n; i++ {
		prev = (prev*float64(window-1) + dx[i]) / float64(window)
		out[i] = prev
	}
	return out
}

func dxValue(plus, minus, tr float64) float64 {
	if tr == 0 {
		return 0
	}
	pdi := 100 * plus / tr
	mdi := 100 * minus / tr
	if pdi+mdi == 0 {
		return 0
	}
	return 100 * math.Abs(pdi-mdi) / (pdi + mdi)
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
