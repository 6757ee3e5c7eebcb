package sim

import (
	"math"
	"testing"

	"github.com/quantlab/tradesim/internal/dataset"
)

func newTestEnv(t *testing.T, prices []float64, mutate func(*Config)) *Env {
	t.Helper()
	cfg := DefaultConfig()
	cfg.TransactionCost = 0.001
	if mutate != nil {
		mutate(&cfg)
	}
	env, err := New(dataset.SyntheticFrame(prices), cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return env
}

func constantPrices(n int, p float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = p
	}
	return out
}

func TestStepFullBuy(t *testing.T) {
	env := newTestEnv(t, constantPrices(50, 100), nil)

	out := env.Step(1.0)
	if out.Terminated {
		t.Fatal("buy step should not terminate")
	}
	if env.ledger.Position != 500 {
		t.Errorf("position = %d, want 500", env.ledger.Position)
	}
	// 500 * 100 * 1.001 = 50050 debited from 100000
	if got := env.ledger.Balance; math.Abs(got-49950) > 1e-9 {
		t.Errorf("balance = %v, want 49950", got)
	}
	if env.ledger.TransactionCount != 1 {
		t.Errorf("transaction count = %d, want 1", env.ledger.TransactionCount)
	}
	rec := env.History()[0]
	if rec.SharesTraded != 500 {
		t.Errorf("recorded shares = %d, want 500", rec.SharesTraded)
	}
	if math.IsNaN(rec.BuySignalPrice) || !math.IsNaN(rec.SellSignalPrice) {
		t.Error("buy step should mark only the buy signal price")
	}
}

func TestStepFullSellAfterBuy(t *testing.T) {
	env := newTestEnv(t, constantPrices(50, 100), nil)

	env.Step(1.0)
	out := env.Step(-1.0)
	if out.Terminated {
		t.Fatal("sell step should not terminate")
	}
	// floor(500 * 0.5) = 250 shares, proceeds 250*100*0.999 = 24975
	if env.ledger.Position != 250 {
		t.Errorf("position = %d, want 250", env.ledger.Position)
	}
	if got := env.ledger.Balance; math.Abs(got-(49950+24975)) > 1e-9 {
		t.Errorf("balance = %v, want 74925", got)
	}
}

func TestStepOutOfBoundsAction(t *testing.T) {
	for _, action := range []float64{2.0, -1.5, math.NaN()} {
		env := newTestEnv(t, constantPrices(50, 100), nil)
		out := env.Step(action)
		if !out.Terminated {
			t.Errorf("action %v: want termination", action)
		}
		if out.Reward != -1000 {
			t.Errorf("action %v: reward = %v, want -1000", action, out.Reward)
		}
		if env.ledger.Balance != 100000 || env.ledger.Position != 0 {
			t.Errorf("action %v: portfolio mutated", action)
		}
		if len(env.History()) != 0 {
			t.Errorf("action %v: history written", action)
		}
	}
}

func TestStepBoundaryActionsAccepted(t *testing.T) {
	for _, action := range []float64{1.0, -1.0, 0.1, -0.1, 0.0} {
		env := newTestEnv(t, constantPrices(50, 100), nil)
		out := env.Step(action)
		if out.Terminated {
			t.Errorf("action %v rejected, want accepted", action)
		}
	}
}

func TestStepUnexecutableBuyIsRecoverable(t *testing.T) {
	env := newTestEnv(t, constantPrices(50, 100), nil)
	env.ledger.Balance = 1 // cannot afford a single share

	out := env.Step(1.0)
	if out.Terminated {
		t.Fatal("unexecutable trade must not terminate")
	}
	if env.ledger.Position != 0 || env.ledger.Balance != 1 {
		t.Error("unexecutable trade must not mutate the ledger")
	}
	rec := env.History()[0]
	if rec.InvalidActionPenalty != -0.01 {
		t.Errorf("invalid action penalty = %v, want -0.01", rec.InvalidActionPenalty)
	}
}

func TestStepSingleShareBump(t *testing.T) {
	// Sizing floors to zero but one share is affordable: buy exactly one.
	env := newTestEnv(t, constantPrices(50, 100), nil)
	env.ledger.Balance = 150

	env.Step(0.01) // 150*0.01*0.5 = 0.75 invested, floors to 0 shares
	if env.ledger.Position != 1 {
		t.Fatalf("position = %d, want single-share bump to 1", env.ledger.Position)
	}
}

func TestHoldChangesNothing(t *testing.T) {
	env := newTestEnv(t, constantPrices(50, 100), nil)
	env.Step(0)
	if env.ledger.Position != 0 || env.ledger.Balance != 100000 || env.ledger.TransactionCount != 0 {
		t.Error("hold must not touch the ledger")
	}
	if env.History()[0].InvalidActionPenalty != 0 {
		t.Error("hold must not be penalized")
	}
}

func TestPartialLiquidation(t *testing.T) {
	env := newTestEnv(t, constantPrices(50, 100), nil)
	// drawdown of exactly 0.16 with 1000 shares held
	env.ledger.Balance = 0
	env.ledger.Position = 1000
	env.ledger.SetPeak(100000 / 0.84)

	out := env.applyRiskControl(100, 100000)
	if !out.partial || out.full {
		t.Fatalf("partial=%v full=%v, want partial only", out.partial, out.full)
	}
	if env.ledger.Position != 500 {
		t.Errorf("position = %d, want 500", env.ledger.Position)
	}
	if out.liquidatedShares != 500 {
		t.Errorf("liquidated shares = %d, want 500", out.liquidatedShares)
	}
	// peak re-based on the post-sale book: 500*100*0.999 + 500*100
	wantPeak := 49950.0 + 50000.0
	if math.Abs(env.ledger.Peak-wantPeak) > 1e-6 {
		t.Errorf("peak = %v, want %v", env.ledger.Peak, wantPeak)
	}
}

func TestFullLiquidation(t *testing.T) {
	env := newTestEnv(t, constantPrices(50, 100), nil)
	// drawdown of 0.21 with 500 shares held
	env.ledger.Balance = 0
	env.ledger.Position = 500
	env.ledger.SetPeak(50000 / 0.79)

	out := env.applyRiskControl(100, 50000)
	if !out.full {
		t.Fatal("want full liquidation")
	}
	if env.ledger.Position != 0 {
		t.Errorf("position = %d, want 0", env.ledger.Position)
	}
	if math.Abs(env.ledger.Peak-env.ledger.Balance) > 1e-9 {
		t.Errorf("peak = %v, want balance %v", env.ledger.Peak, env.ledger.Balance)
	}
}

func TestDrawdownPenaltyLevels(t *testing.T) {
	cases := []struct {
		name     string
		drawdown float64
		zero     bool
	}{
		{"no_drawdown", 0.0, true},
		{"below_threshold", 0.04, true},
		{"base_penalty", 0.07, false},
		{"amplified", 0.12, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t, constantPrices(50, 100), nil)
			nw := 100000 * (1 - tc.drawdown)
			env.ledger.SetPeak(100000)
			out := env.applyRiskControl(100, nw)
			if tc.zero && out.penalty != 0 {
				t.Errorf("penalty = %v, want 0", out.penalty)
			}
			if !tc.zero && out.penalty >= 0 {
				t.Errorf("penalty = %v, want negative", out.penalty)
			}
		})
	}
}

func TestDrawdownPenaltyCompounds(t *testing.T) {
	base := newTestEnv(t, constantPrices(50, 100), nil)
	base.ledger.SetPeak(100000)
	mild := base.applyRiskControl(100, 100000*(1-0.07))

	amp := newTestEnv(t, constantPrices(50, 100), nil)
	amp.ledger.SetPeak(100000)
	deep := amp.applyRiskControl(100, 100000*(1-0.12))

	if !(deep.penalty < mild.penalty) {
		t.Errorf("deep drawdown penalty %v should exceed mild %v in magnitude", deep.penalty, mild.penalty)
	}
	// base accrual is -(2 + 100000*0.01) = -1002, times 1.25 once for the
	// mild case and twice past 10%
	if math.Abs(mild.penalty-(-1002*1.25)) > 1e-6 {
		t.Errorf("mild penalty = %v, want %v", mild.penalty, -1002*1.25)
	}
	if math.Abs(deep.penalty-(-1002*1.25*1.25)) > 1e-6 {
		t.Errorf("deep penalty = %v, want %v", deep.penalty, -1002*1.25*1.25)
	}
}

func TestResetIdempotent(t *testing.T) {
	env := newTestEnv(t, constantPrices(50, 100), nil)
	a := env.Reset()
	b := env.Reset()
	if len(a) != len(b) {
		t.Fatalf("observation lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("obs[%d] differs: %v vs %v", i, a[i], b[i])
		}
	}
	if len(env.History()) != 0 {
		t.Error("reset must clear history")
	}
}

func TestResetAfterEpisodeRestoresInitialState(t *testing.T) {
	env := newTestEnv(t, constantPrices(50, 100), nil)
	initial := env.Reset()
	env.Step(1.0)
	env.Step(-0.5)
	again := env.Reset()
	for i := range initial {
		if initial[i] != again[i] {
			t.Fatalf("obs[%d] differs after reset: %v vs %v", i, initial[i], again[i])
		}
	}
	if env.ledger.Balance != 100000 || env.ledger.Position != 0 {
		t.Error("reset must restore the ledger")
	}
}

func TestNaturalEndTermination(t *testing.T) {
	env := newTestEnv(t, constantPrices(15, 100), nil)
	steps := 0
	for {
		out := env.Step(0)
		steps++
		if out.Terminated {
			break
		}
		if steps > 100 {
			t.Fatal("episode never terminated")
		}
	}
	if steps != 15 {
		t.Errorf("terminated after %d steps, want 15", steps)
	}
}

func TestBankruptcyTermination(t *testing.T) {
	env := newTestEnv(t, constantPrices(50, 100), nil)
	for i := 0; i < 12; i++ {
		env.Step(0)
	}
	env.ledger.Balance = -10 // force insolvency past the minimum step count

	out := env.Step(0)
	if !out.Terminated {
		t.Fatal("insolvent account must terminate")
	}
	if out.Reward > -9 {
		t.Errorf("reward = %v, want bankruptcy penalty applied", out.Reward)
	}
}

func TestOverrunGuard(t *testing.T) {
	env := newTestEnv(t, constantPrices(15, 100), nil)
	env.step = env.frame.Len() // past the last row

	out := env.Step(0)
	if !out.Terminated || out.Reward != -1000 {
		t.Fatalf("overrun: terminated=%v reward=%v, want true/-1000", out.Terminated, out.Reward)
	}
	rec := env.History()[len(env.History())-1]
	if !math.IsNaN(rec.Action) {
		t.Error("overrun record should carry a NaN action")
	}
	if rec.Balance != 100000 || rec.Position != 0 {
		t.Error("overrun must log the last-known state unchanged")
	}
}

func TestPeakMonotonicWithoutLiquidation(t *testing.T) {
	// gently rising then dipping under the liquidation thresholds
	prices := []float64{100, 101, 102, 103, 104, 105, 104, 103, 102, 101, 100, 101, 102, 103, 104}
	env := newTestEnv(t, prices, nil)
	prevPeak := env.ledger.Peak
	for i := 0; i < len(prices)-1; i++ {
		env.Step(0.5)
		if env.ledger.Peak < prevPeak {
			t.Fatalf("peak decreased from %v to %v at step %d", prevPeak, env.ledger.Peak, i)
		}
		prevPeak = env.ledger.Peak
	}
}

func TestInvariantsNonNegative(t *testing.T) {
	prices := []float64{100, 95, 90, 85, 95, 105, 100, 90, 80, 85, 90, 95, 100, 105, 110, 100, 90, 85, 80, 90}
	env := newTestEnv(t, prices, nil)
	actions := []float64{1, -0.3, 0.8, -1, 0.2, 0, -0.7, 1, -0.1, 0.4, -1, 0.9, 0, -0.5, 1, -1, 0.6, -0.2, 0.3}
	for _, a := range actions {
		out := env.Step(a)
		if env.ledger.Position < 0 {
			t.Fatalf("position went negative: %d", env.ledger.Position)
		}
		if env.ledger.Balance < 0 {
			t.Fatalf("balance went negative: %v", env.ledger.Balance)
		}
		if out.Terminated {
			break
		}
	}
}

func TestHistoryGrowsOncePerStep(t *testing.T) {
	env := newTestEnv(t, constantPrices(50, 100), nil)
	for i := 1; i <= 5; i++ {
		env.Step(0)
		if len(env.History()) != i {
			t.Fatalf("history length = %d after %d steps", len(env.History()), i)
		}
	}
}
