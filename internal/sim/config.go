package sim

import "fmt"

// RewardWeights are the named, independently tunable coefficients of the
// shaped reward. Zero-valued fields are replaced with defaults at
// construction, so a partially specified mapping is always usable.
type RewardWeights struct {
	ProfitWeight            float64 `yaml:"profit_weight"`
	SharpeBonusWeight       float64 `yaml:"sharpe_bonus_weight"`
	HoldingBonusWeight      float64 `yaml:"holding_bonus_weight"`
	TransactionPenaltyScale float64 `yaml:"transaction_penalty_scale"`
	VolatilityThreshold     float64 `yaml:"volatility_threshold"`
	MomentumThresholdMin    float64 `yaml:"momentum_threshold_min"`
	MomentumThresholdMax    float64 `yaml:"momentum_threshold_max"`
	EMAAlpha                float64 `yaml:"ema_alpha"`
	RewardNormFactor        float64 `yaml:"reward_norm_factor"`
	RewardScale             float64 `yaml:"reward_scale"`
}

// Config is the immutable episode configuration supplied at construction.
// StopLoss and TakeProfit are fractions of the initial balance that trigger
// informational penalties; they do not force an exit.
type Config struct {
	InitialBalance    float64 `yaml:"initial_balance"`
	StopLoss          float64 `yaml:"stop_loss"`
	TakeProfit        float64 `yaml:"take_profit"`
	MaxPositionSize   float64 `yaml:"max_position_size"`
	MaxDrawdown       float64 `yaml:"max_drawdown"`
	AnnualTradingDays int     `yaml:"annual_trading_days"`
	TransactionCost   float64 `yaml:"transaction_cost"`
	HoldThreshold     float64 `yaml:"hold_threshold"`
	DrawdownFactor    float64 `yaml:"drawdown_factor"`

	// Trailing-stop knobs are accepted and validated but dormant: step
	// logic does not read them yet.
	TrailingDrawdownTrigger  float64 `yaml:"trailing_drawdown_trigger"`
	TrailingDrawdownGrace    int     `yaml:"trailing_drawdown_grace"`
	ForcedLiquidationPenalty float64 `yaml:"forced_liquidation_penalty"`

	Weights RewardWeights `yaml:"reward_weights"`
}

// DefaultConfig returns the standard episode configuration.
func DefaultConfig() Config {
	var c Config
	c.ApplyDefaults()
	return c
}

// ApplyDefaults fills zero-valued fields with their defaults.
func (c *Config) ApplyDefaults() {
	if c.InitialBalance == 0 {
		c.InitialBalance = 100000
	}
	if c.StopLoss == 0 {
		c.StopLoss = 0.90
	}
	if c.TakeProfit == 0 {
		c.TakeProfit = 1.10
	}
	if c.MaxPositionSize == 0 {
		c.MaxPositionSize = 0.5
	}
	if c.MaxDrawdown == 0 {
		c.MaxDrawdown = 0.20
	}
	if c.AnnualTradingDays == 0 {
		c.AnnualTradingDays = 252
	}
	if c.TransactionCost == 0 {
		c.TransactionCost = 0.0001
	}
	if c.HoldThreshold == 0 {
		c.HoldThreshold = 0.1
	}
	if c.DrawdownFactor == 0 {
		c.DrawdownFactor = 0.01
	}
	if c.TrailingDrawdownTrigger == 0 {
		c.TrailingDrawdownTrigger = 0.20
	}
	if c.TrailingDrawdownGrace == 0 {
		c.TrailingDrawdownGrace = 3
	}
	if c.ForcedLiquidationPenalty == 0 {
		c.ForcedLiquidationPenalty = -5.0
	}

	w := &c.Weights
	if w.ProfitWeight == 0 {
		w.ProfitWeight = 1.5
	}
	if w.SharpeBonusWeight == 0 {
		w.SharpeBonusWeight = 0.05
	}
	if w.HoldingBonusWeight == 0 {
		w.HoldingBonusWeight = 0.001
	}
	if w.TransactionPenaltyScale == 0 {
		w.TransactionPenaltyScale = 1.0
	}
	if w.VolatilityThreshold == 0 {
		w.VolatilityThreshold = 1.0
	}
	if w.MomentumThresholdMin == 0 {
		w.MomentumThresholdMin = 30
	}
	if w.MomentumThresholdMax == 0 {
		w.MomentumThresholdMax = 70
	}
	if w.EMAAlpha == 0 {
		w.EMAAlpha = 0.01
	}
	if w.RewardNormFactor == 0 {
		w.RewardNormFactor = 1.0
	}
	if w.RewardScale == 0 {
		w.RewardScale = 1.0
	}
}

// Validate checks the configuration once at construction instead of
// defaulting ad hoc at each lookup.
func (c Config) Validate() error {
	if c.InitialBalance <= 0 {
		return fmt.Errorf("initial_balance must be positive, got %v", c.InitialBalance)
	}
	if c.StopLoss <= 0 || c.StopLoss > 1 {
		return fmt.Errorf("stop_loss must be in (0, 1], got %v", c.StopLoss)
	}
	if c.TakeProfit < 1 {
		return fmt.Errorf("take_profit must be >= 1, got %v", c.TakeProfit)
	}
	if c.MaxPositionSize <= 0 || c.MaxPositionSize > 1 {
		return fmt.Errorf("max_position_size must be in (0, 1], got %v", c.MaxPositionSize)
	}
	if c.MaxDrawdown <= 0 || c.MaxDrawdown >= 1 {
		return fmt.Errorf("max_drawdown must be in (0, 1), got %v", c.MaxDrawdown)
	}
	if c.TransactionCost < 0 || c.TransactionCost >= 1 {
		return fmt.Errorf("transaction_cost must be in [0, 1), got %v", c.TransactionCost)
	}
	w := c.Weights
	if w.EMAAlpha <= 0 || w.EMAAlpha > 1 {
		return fmt.Errorf("ema_alpha must be in (0, 1], got %v", w.EMAAlpha)
	}
	if w.RewardNormFactor <= 0 {
		return fmt.Errorf("reward_norm_factor must be positive, got %v", w.RewardNormFactor)
	}
	if w.MomentumThresholdMax < w.MomentumThresholdMin {
		return fmt.Errorf("momentum_threshold_max %v below momentum_threshold_min %v",
			w.MomentumThresholdMax, w.MomentumThresholdMin)
	}
	return nil
}
