package sim

import "time"

// StepRecord is the immutable audit entry appended to the episode history
// each step. Signal prices are NaN on the side that did not trade, and
// Action is NaN for the overrun guard record. The recorded Reward is the
// normalized step reward before any terminal bankruptcy adjustment.
type StepRecord struct {
	Date            time.Time
	Price           float64
	Action          float64
	BuySignalPrice  float64
	SellSignalPrice float64
	SharesTraded    int

	NetWorth float64
	Balance  float64
	Position int

	Reward    float64
	RawReward float64
	TradeCost float64

	ProfitReward         float64
	SharpeBonus          float64
	ForcedStopPenalty    float64
	ForcedTPPenalty      float64
	DrawdownPenalty      float64
	TransactionPenalty   float64
	HoldingBonus         float64
	FavorableHoldFactor  float64
	InvalidActionPenalty float64

	RewardScale      float64
	RewardNormFactor float64
	EMAAlpha         float64
}
