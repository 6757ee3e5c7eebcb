package sim

import (
	"math"
	"testing"
)

func TestSharpeBonusNeedsMinimumSamples(t *testing.T) {
	env := newTestEnv(t, constantPrices(50, 100), nil)
	for i := 0; i < sharpeMinSamples-1; i++ {
		env.pushReturn(0.01)
	}
	if got := env.sharpeBonus(); got != 0 {
		t.Errorf("bonus with %d samples = %v, want 0", sharpeMinSamples-1, got)
	}
	env.pushReturn(0.01)
	if got := env.sharpeBonus(); got <= 0 {
		t.Errorf("bonus with %d samples = %v, want positive", sharpeMinSamples, got)
	}
}

func TestSharpeBonusSign(t *testing.T) {
	env := newTestEnv(t, constantPrices(50, 100), nil)
	for i := 0; i < 12; i++ {
		r := 0.01
		if i%2 == 0 {
			r = -0.02
		}
		env.pushReturn(r)
	}
	if got := env.sharpeBonus(); got >= 0 {
		t.Errorf("bonus on losing stream = %v, want negative", got)
	}
}

func TestReturnsWindowBounded(t *testing.T) {
	env := newTestEnv(t, constantPrices(50, 100), nil)
	for i := 0; i < returnsWindowSize+20; i++ {
		env.pushReturn(float64(i))
	}
	if len(env.returnsWindow) != returnsWindowSize {
		t.Errorf("window length = %d, want %d", len(env.returnsWindow), returnsWindowSize)
	}
	// oldest entries have been evicted
	if env.returnsWindow[0] != 20 {
		t.Errorf("window head = %v, want 20", env.returnsWindow[0])
	}
}

func TestHoldingBonusFavorableConditions(t *testing.T) {
	env := newTestEnv(t, constantPrices(50, 100), nil)
	// low volatility, RSI inside the favorable band, action at rest
	env.frame.SetUnscaled(0, "Volatility", 0.2)
	env.frame.SetUnscaled(0, "RSI", 50)

	bonus, favorable := env.holdingBonus(0, 100000)
	// hold 1.0 * vol (1-0.2)=0.8 * rsi (50-30)/40=0.5
	if math.Abs(favorable-0.4) > 1e-12 {
		t.Errorf("favorable = %v, want 0.4", favorable)
	}
	want := 0.4 * 0.001 * 100000
	if math.Abs(bonus-want) > 1e-9 {
		t.Errorf("bonus = %v, want %v", bonus, want)
	}
}

func TestHoldingBonusZeroCases(t *testing.T) {
	cases := []struct {
		name   string
		action float64
		vol    float64
		rsi    float64
	}{
		{"large_action", 0.5, 0.2, 50},
		{"high_volatility", 0, 5.0, 50},
		{"oversold_rsi", 0, 0.2, 20},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t, constantPrices(50, 100), nil)
			env.frame.SetUnscaled(0, "Volatility", tc.vol)
			env.frame.SetUnscaled(0, "RSI", tc.rsi)
			bonus, _ := env.holdingBonus(tc.action, 100000)
			if bonus != 0 {
				t.Errorf("bonus = %v, want 0", bonus)
			}
		})
	}
}

func TestHoldingBonusActionRamp(t *testing.T) {
	env := newTestEnv(t, constantPrices(50, 100), nil)
	env.frame.SetUnscaled(0, "Volatility", 0)
	env.frame.SetUnscaled(0, "RSI", 70)

	at0, _ := env.holdingBonus(0, 100000)
	at005, _ := env.holdingBonus(0.05, 100000)
	at01, _ := env.holdingBonus(0.1, 100000)
	if !(at0 > at005 && at005 > at01) {
		t.Errorf("bonus should decay with |action|: %v, %v, %v", at0, at005, at01)
	}
	if at01 != 0 {
		t.Errorf("bonus at the hold boundary = %v, want 0", at01)
	}
}

func TestStopAndTakeProfitPenaltiesRequirePosition(t *testing.T) {
	// flat book below the stop line: no penalty because nothing is held
	env := newTestEnv(t, constantPrices(50, 100), nil)
	env.ledger.Balance = 80000 // net worth 0.8x initial, position 0
	env.Step(0)
	rec := env.History()[0]
	if rec.ForcedStopPenalty != 0 {
		t.Errorf("stop penalty = %v, want 0 with no position", rec.ForcedStopPenalty)
	}

	// held position under the stop line
	env = newTestEnv(t, constantPrices(50, 100), nil)
	env.ledger.Balance = 0
	env.ledger.Position = 800 // net worth 80000 at price 100
	env.Step(0)
	rec = env.History()[0]
	if rec.ForcedStopPenalty != forcedStopPenalty {
		t.Errorf("stop penalty = %v, want %v", rec.ForcedStopPenalty, forcedStopPenalty)
	}

	// held position above the take-profit line
	env = newTestEnv(t, constantPrices(50, 100), nil)
	env.ledger.Balance = 100000
	env.ledger.Position = 200 // net worth 120000 at price 100
	env.Step(0)
	rec = env.History()[0]
	if rec.ForcedTPPenalty != forcedTakeProfitPenalty {
		t.Errorf("take-profit penalty = %v, want %v", rec.ForcedTPPenalty, forcedTakeProfitPenalty)
	}
}
