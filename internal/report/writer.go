package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/quantlab/tradesim/internal/sim"
	"github.com/quantlab/tradesim/internal/strategy"
)

// WriteHistoryJSONL appends one JSON object per step record. NaN markers
// (absent signal prices, the overrun record's action) serialize as null.
func WriteHistoryJSONL(path string, history []sim.StepRecord) error {
	f, err := create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	for _, rec := range history {
		row := map[string]any{
			"date":                   rec.Date.Format("2006-01-02"),
			"price":                  rec.Price,
			"action":                 nanToNull(rec.Action),
			"buy_signal_price":       nanToNull(rec.BuySignalPrice),
			"sell_signal_price":      nanToNull(rec.SellSignalPrice),
			"shares_traded":          rec.SharesTraded,
			"net_worth":              rec.NetWorth,
			"balance":                rec.Balance,
			"position":               rec.Position,
			"reward":                 rec.Reward,
			"raw_reward":             rec.RawReward,
			"trade_cost":             rec.TradeCost,
			"profit_reward":          rec.ProfitReward,
			"sharpe_bonus":           rec.SharpeBonus,
			"forced_stop_penalty":    rec.ForcedStopPenalty,
			"forced_tp_penalty":      rec.ForcedTPPenalty,
			"drawdown_penalty":       rec.DrawdownPenalty,
			"transaction_penalty":    rec.TransactionPenalty,
			"holding_bonus":          rec.HoldingBonus,
			"favorable_hold_factor":  rec.FavorableHoldFactor,
			"invalid_action_penalty": rec.InvalidActionPenalty,
			"reward_scale":           rec.RewardScale,
			"reward_norm_factor":     rec.RewardNormFactor,
			"ema_alpha":              rec.EMAAlpha,
		}
		if err := enc.Encode(row); err != nil {
			return fmt.Errorf("write history jsonl: %w", err)
		}
	}
	return nil
}

// WriteHistoryCSV writes the step trace as a flat table; NaN markers become
// empty cells.
func WriteHistoryCSV(path string, history []sim.StepRecord) error {
	f, err := create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{
		"date", "price", "action", "buy_signal_price", "sell_signal_price",
		"shares_traded", "net_worth", "balance", "position",
		"reward", "raw_reward", "trade_cost",
		"profit_reward", "sharpe_bonus", "forced_stop_penalty", "forced_tp_penalty",
		"drawdown_penalty", "transaction_penalty", "holding_bonus",
		"favorable_hold_factor", "invalid_action_penalty",
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write history csv: %w", err)
	}
	for _, rec := range history {
		row := []string{
			rec.Date.Format("2006-01-02"),
			num(rec.Price),
			num(rec.Action),
			num(rec.BuySignalPrice),
			num(rec.SellSignalPrice),
			strconv.Itoa(rec.SharesTraded),
			num(rec.NetWorth),
			num(rec.Balance),
			strconv.Itoa(rec.Position),
			num(rec.Reward),
			num(rec.RawReward),
			num(rec.TradeCost),
			num(rec.ProfitReward),
			num(rec.SharpeBonus),
			num(rec.ForcedStopPenalty),
			num(rec.ForcedTPPenalty),
			num(rec.DrawdownPenalty),
			num(rec.TransactionPenalty),
			num(rec.HoldingBonus),
			num(rec.FavorableHoldFactor),
			num(rec.InvalidActionPenalty),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write history csv: %w", err)
		}
	}
	return nil
}

// WriteTradesCSV writes a baseline strategy's trade log.
func WriteTradesCSV(path string, trades []strategy.Trade) error {
	f, err := create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"date", "price", "action", "shares", "net_worth", "balance", "position", "reward"}); err != nil {
		return fmt.Errorf("write trades csv: %w", err)
	}
	for _, t := range trades {
		row := []string{
			t.Date.Format("2006-01-02"),
			num(t.Price),
			t.Action,
			strconv.Itoa(t.Shares),
			num(t.NetWorth),
			num(t.Balance),
			strconv.Itoa(t.Position),
			num(t.Reward),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write trades csv: %w", err)
		}
	}
	return nil
}

// WriteSummaryJSON writes one or more run summaries as a JSON array.
func WriteSummaryJSON(path string, summaries []Summary) error {
	f, err := create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summaries); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}

func create(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create output dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	return f, nil
}

func nanToNull(v float64) any {
	if math.IsNaN(v) {
		return nil
	}
	return v
}

func num(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
