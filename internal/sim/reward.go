package sim

import "math"

const (
	// Informational penalties: crossing the stop-loss or take-profit line
	// while holding is penalized but does not force an exit.
	forcedStopPenalty       = -3.0
	forcedTakeProfitPenalty = -1.0

	returnsWindowSize = 30
	sharpeMinSamples  = 10
)

// pushReturn appends one per-step fractional return to the bounded FIFO
// window backing the Sharpe bonus.
func (e *Env) pushReturn(r float64) {
	e.returnsWindow = append(e.returnsWindow, r)
	if len(e.returnsWindow) > returnsWindowSize {
		e.returnsWindow = e.returnsWindow[1:]
	}
}

// sharpeBonus is mean/std of the returns window scaled by the bonus weight,
// zero until enough samples have accumulated.
func (e *Env) sharpeBonus() float64 {
	if len(e.returnsWindow) < sharpeMinSamples {
		return 0
	}
	var sum float64
	for _, r := range e.returnsWindow {
		sum += r
	}
	mean := sum / float64(len(e.returnsWindow))
	var ss float64
	for _, r := range e.returnsWindow {
		d := r - mean
		ss += d * d
	}
	std := math.Sqrt(ss/float64(len(e.returnsWindow))) + 1e-9
	return mean / std * e.cfg.Weights.SharpeBonusWeight
}

// holdingBonus rewards sitting still when the action is near zero,
// volatility is low and momentum (RSI) sits inside the favorable band. The
// second return is the combined favorable-hold factor for the audit record.
func (e *Env) holdingBonus(action, netWorth float64) (float64, float64) {
	w := e.cfg.Weights

	holdFactor := math.Max(0, 1-math.Abs(action)/0.1)

	vol, ok := e.frame.Unscaled(e.step, "Volatility")
	if !ok {
		e.missingField("Volatility")
		vol = 0
	}
	volatilityFactor := 1 - clip(vol/w.VolatilityThreshold, 0, 1)

	rsiFactor := 0.0
	if w.MomentumThresholdMax > w.MomentumThresholdMin {
		rsi, ok := e.frame.Unscaled(e.step, "RSI")
		if !ok {
			e.missingField("RSI")
			rsi = 0
		}
		rsiFactor = clip((rsi-w.MomentumThresholdMin)/(w.MomentumThresholdMax-w.MomentumThresholdMin), 0, 1)
	}

	favorable := holdFactor * volatilityFactor * rsiFactor
	return favorable * w.HoldingBonusWeight * netWorth, favorable
}

func clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
