// Package sim implements a deterministic, step-indexed trading simulator
// over a historical price series: continuous actions are executed against a
// single-asset ledger, drawdown-triggered risk control forces liquidations,
// and a heavily shaped, EMA-normalized scalar reward is produced per step.
package sim

import (
	"fmt"
	"math"

	"github.com/quantlab/tradesim/internal/dataset"
	"github.com/quantlab/tradesim/internal/observ"
	"github.com/quantlab/tradesim/internal/portfolio"
)

const (
	actionLow  = -1.0
	actionHigh = 1.0

	// rewardFatal is returned when the episode dies on a contract
	// violation: an out-of-bounds action or a step past the last row.
	rewardFatal = -1000.0

	// bankruptcyPenalty is subtracted from the step reward when net worth
	// reaches zero.
	bankruptcyPenalty = 10.0

	// minEpisodeSteps must elapse before bankruptcy or natural end can
	// terminate the episode.
	minEpisodeSteps = 10
)

// StepResult is the outcome of one state transition.
type StepResult struct {
	Observation []float64
	Reward      float64
	Terminated  bool
	Truncated   bool
	Info        map[string]any
}

// Env is one simulator instance. It owns all of its mutable state, so
// multiple instances may run concurrently with no synchronization; a single
// instance is not safe for concurrent use. After a terminal step the
// instance must be Reset before further use.
type Env struct {
	frame *dataset.Frame
	cfg   Config

	ledger       *portfolio.Ledger
	step         int
	netWorth     float64
	prevNetWorth float64

	returnsWindow            []float64
	norm                     rewardNormalizer
	consecutiveDrawdownSteps int

	history []StepRecord
}

// New validates the configuration and frame and returns a reset environment.
func New(frame *dataset.Frame, cfg Config) (*Env, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid episode config: %w", err)
	}
	if frame == nil || frame.Len() == 0 {
		return nil, fmt.Errorf("empty frame")
	}
	if len(frame.Rows[0].Scaled) != len(frame.Features) {
		return nil, fmt.Errorf("frame is not scaled; fit a dataset.Scaler first")
	}
	e := &Env{frame: frame, cfg: cfg}
	e.Reset()
	return e, nil
}

// Reset reinitializes the ledger, statistics and history and returns the
// initial observation. Two consecutive resets yield identical observations.
func (e *Env) Reset() []float64 {
	e.ledger = portfolio.NewLedger(e.cfg.InitialBalance)
	e.step = 0
	e.netWorth = e.cfg.InitialBalance
	e.prevNetWorth = e.cfg.InitialBalance
	e.returnsWindow = nil
	e.norm = newRewardNormalizer(e.cfg.Weights)
	e.consecutiveDrawdownSteps = 0
	e.history = nil
	return e.observation()
}

// History returns the append-only step trace of the current episode.
func (e *Env) History() []StepRecord { return e.history }

// TransactionCount reports executed trades, forced liquidations included.
func (e *Env) TransactionCount() int { return e.ledger.TransactionCount }

// NetWorth is the current net worth of the episode.
func (e *Env) NetWorth() float64 { return e.netWorth }

// Step executes one state transition: trade execution, risk control, reward
// composition, normalization, audit record, termination check. The action
// must lie in [-1, 1] inclusive; anything else terminates the episode with
// a fatal penalty and no state mutation.
func (e *Env) Step(action float64) StepResult {
	if math.IsNaN(action) || action < actionLow || action > actionHigh {
		observ.IncCounter("sim_action_violations_total", nil)
		observ.Log("action_out_of_bounds", map[string]any{"action": action, "step": e.step})
		return StepResult{
			Observation: e.observation(),
			Reward:      rewardFatal,
			Terminated:  true,
			Info:        map[string]any{},
		}
	}

	// Overrun guard: the caller stepped past the last row. Log the
	// last-known state unchanged and terminate.
	if e.step >= e.frame.Len() {
		last := e.frame.Len() - 1
		e.history = append(e.history, StepRecord{
			Date:            e.frame.Date(last),
			Price:           e.frame.Price(last),
			Action:          math.NaN(),
			BuySignalPrice:  math.NaN(),
			SellSignalPrice: math.NaN(),
			NetWorth:        e.netWorth,
			Balance:         e.ledger.Balance,
			Position:        e.ledger.Position,
			Reward:          rewardFatal,
		})
		observ.IncCounter("sim_overruns_total", nil)
		return StepResult{
			Observation: e.observation(),
			Reward:      rewardFatal,
			Terminated:  true,
			Info:        map[string]any{},
		}
	}

	price := e.frame.Price(e.step)
	date := e.frame.Date(e.step)

	trade := e.executeTrade(action, price)
	sharesTraded := trade.shares
	tradeCost := trade.cost

	netWorth := e.ledger.NetWorth(price)
	change := netWorth - e.prevNetWorth

	forcedStop := 0.0
	if netWorth <= e.cfg.InitialBalance*e.cfg.StopLoss && e.ledger.Position > 0 {
		forcedStop = forcedStopPenalty
	}
	forcedTP := 0.0
	if netWorth >= e.cfg.InitialBalance*e.cfg.TakeProfit && e.ledger.Position > 0 {
		forcedTP = forcedTakeProfitPenalty
	}

	profitReward := change / e.cfg.InitialBalance * e.cfg.Weights.ProfitWeight

	e.pushReturn(change / e.cfg.InitialBalance)
	sharpe := e.sharpeBonus()

	risk := e.applyRiskControl(price, netWorth)
	if risk.liquidatedShares > 0 {
		// an involuntary sale overwrites the step's reported trade size
		sharesTraded = risk.liquidatedShares
		tradeCost += risk.liquidationCost
	}

	netWorth = e.ledger.NetWorth(price)
	e.netWorth = netWorth

	holdingBonus, favorable := e.holdingBonus(action, netWorth)

	transactionPenalty := -(tradeCost / e.cfg.InitialBalance) * e.cfg.Weights.TransactionPenaltyScale

	raw := profitReward + sharpe + forcedStop + forcedTP +
		risk.penalty + transactionPenalty + holdingBonus + trade.invalidPenalty

	reward := e.norm.normalize(raw)

	buySignal, sellSignal := math.NaN(), math.NaN()
	if action > 0 {
		buySignal = price
	} else if action < 0 {
		sellSignal = price
	}
	e.history = append(e.history, StepRecord{
		Date:                 date,
		Price:                price,
		Action:               action,
		BuySignalPrice:       buySignal,
		SellSignalPrice:      sellSignal,
		SharesTraded:         sharesTraded,
		NetWorth:             netWorth,
		Balance:              e.ledger.Balance,
		Position:             e.ledger.Position,
		Reward:               reward,
		RawReward:            raw,
		TradeCost:            tradeCost,
		ProfitReward:         profitReward,
		SharpeBonus:          sharpe,
		ForcedStopPenalty:    forcedStop,
		ForcedTPPenalty:      forcedTP,
		DrawdownPenalty:      risk.penalty,
		TransactionPenalty:   transactionPenalty,
		HoldingBonus:         holdingBonus,
		FavorableHoldFactor:  favorable,
		InvalidActionPenalty: trade.invalidPenalty,
		RewardScale:          e.cfg.Weights.RewardScale,
		RewardNormFactor:     e.cfg.Weights.RewardNormFactor,
		EMAAlpha:             e.cfg.Weights.EMAAlpha,
	})

	terminated := false
	if e.step >= minEpisodeSteps {
		if netWorth <= 0 {
			terminated = true
			reward -= bankruptcyPenalty
			observ.IncCounter("sim_bankruptcies_total", nil)
			observ.Log("bankruptcy", map[string]any{"step": e.step, "net_worth": netWorth})
		} else if e.step >= e.frame.Len()-1 {
			terminated = true
		}
	}

	if !terminated {
		e.prevNetWorth = netWorth
		e.step++
	}
	if e.step > e.frame.Len()-1 {
		e.step = e.frame.Len() - 1
	}

	observ.SetGauge("sim_net_worth", netWorth, nil)
	observ.SetGauge("sim_drawdown", risk.drawdown, nil)

	return StepResult{
		Observation: e.observation(),
		Reward:      reward,
		Terminated:  terminated,
		Truncated:   false,
		Info:        map[string]any{},
	}
}
