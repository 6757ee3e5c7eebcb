package sim

import (
	"fmt"
	"math"

	"github.com/quantlab/tradesim/internal/observ"
)

// marketPhases is the one-hot ordering of the coarse trend classification.
var marketPhases = []string{"Bull", "Bear", "Sideways"}

// adxTrendLevel is the trend-strength reading above which the market is
// classified directional rather than sideways.
const adxTrendLevel = 25.0

// ObservationSize is the fixed length of the state vector: the scaled
// features, three scaled account metrics, the one-hot market phase, the
// drawdown fraction and the drawdown buffer.
func (e *Env) ObservationSize() int {
	return len(e.frame.Features) + 3 + len(marketPhases) + 2
}

// observation assembles the externally visible state vector for the current
// step. Any NaN or Inf is replaced with zero so the caller's contract is
// never violated, whichever path produced the vector.
func (e *Env) observation() []float64 {
	i := e.step
	if i >= e.frame.Len() {
		i = e.frame.Len() - 1
	}

	obs := make([]float64, 0, e.ObservationSize())
	obs = append(obs, e.frame.ScaledVector(i)...)

	obs = append(obs,
		e.ledger.Balance/e.cfg.InitialBalance,
		e.netWorth/e.cfg.InitialBalance,
		float64(e.ledger.Position)/e.cfg.InitialBalance,
	)

	phase := e.marketPhase(i)
	for _, p := range marketPhases {
		if phase == p {
			obs = append(obs, 1)
		} else {
			obs = append(obs, 0)
		}
	}

	dd := e.ledger.Drawdown(e.netWorth)
	obs = append(obs, dd)

	buffer := e.cfg.MaxDrawdown - dd
	if buffer < 0 {
		buffer = 0
	}
	obs = append(obs, buffer)

	for j, v := range obs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			obs[j] = 0
		}
	}

	if len(obs) != e.ObservationSize() {
		panic(fmt.Sprintf("observation length %d, want %d", len(obs), e.ObservationSize()))
	}
	return obs
}

// marketPhase classifies the row as Bull, Bear or Sideways: directional
// only when trend strength exceeds adxTrendLevel, then by the fast moving
// average against the slow one. Missing inputs degrade to Sideways.
func (e *Env) marketPhase(i int) string {
	adx, ok := e.frame.Unscaled(i, "ADX")
	if !ok {
		e.missingField("ADX")
		adx = 0
	}
	if adx <= adxTrendLevel {
		return "Sideways"
	}
	sma10, ok10 := e.frame.Unscaled(i, "SMA10")
	sma50, ok50 := e.frame.Unscaled(i, "SMA50")
	if !ok10 || !ok50 {
		e.missingField("SMA10/SMA50")
		return "Sideways"
	}
	if sma10 > sma50 {
		return "Bull"
	}
	return "Bear"
}

// missingField surfaces an absent data column to external observers without
// touching the RL-visible state.
func (e *Env) missingField(name string) {
	observ.IncCounter("sim_missing_fields_total", map[string]string{"field": name})
	observ.Log("missing_field", map[string]any{"field": name, "step": e.step})
}
