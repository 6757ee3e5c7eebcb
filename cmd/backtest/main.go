// Command backtest evaluates the baseline rule strategies over a
// historical price CSV and writes their trade logs and a comparison table.
package main

import (
	"flag"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/quantlab/tradesim/internal/dataset"
	"github.com/quantlab/tradesim/internal/observ"
	"github.com/quantlab/tradesim/internal/report"
	"github.com/quantlab/tradesim/internal/strategy"
)

func main() {
	_ = godotenv.Load()

	var (
		dataPath = flag.String("data", envOr("TRADESIM_DATA", "data/prices.csv"), "OHLCV csv path")
		outDir   = flag.String("out", envOr("TRADESIM_OUT", "results"), "output directory")
		seed     = flag.Int64("seed", 42, "seed for the random baseline")
	)
	flag.Parse()

	frame, err := dataset.Load(*dataPath)
	if err != nil {
		log.Fatalf("dataset: %v", err)
	}
	if err := dataset.ComputeIndicators(frame); err != nil {
		log.Fatalf("indicators: %v", err)
	}

	params := strategy.DefaultParams()
	results := []strategy.Result{
		strategy.BuyAndHold(frame, params),
		strategy.SMACrossover(frame, params),
		strategy.MACDCrossover(frame, params),
		strategy.BollingerBreakout(frame, params),
		strategy.Random(frame, params, rand.New(rand.NewSource(*seed))),
	}

	summaries := make([]report.Summary, 0, len(results))
	for _, res := range results {
		slug := strings.ReplaceAll(strings.ToLower(res.Name), " ", "_")
		if err := report.WriteTradesCSV(filepath.Join(*outDir, slug+"_trades.csv"), res.Trades); err != nil {
			log.Fatalf("trades csv: %v", err)
		}

		series := make([]float64, 0, len(res.Trades))
		for _, t := range res.Trades {
			series = append(series, t.NetWorth)
		}
		summaries = append(summaries, report.Summary{
			Strategy:         res.Name,
			InitialBalance:   res.InitialBalance,
			FinalNetWorth:    res.FinalNetWorth,
			Profit:           res.Profit,
			MaxDrawdown:      report.MaxDrawdown(series),
			AnnualizedReturn: report.AnnualizedReturn(series, 252),
			Transactions:     res.Transactions,
		})
	}

	if err := report.WriteSummaryJSON(filepath.Join(*outDir, "baseline_summary.json"), summaries); err != nil {
		log.Fatalf("summary: %v", err)
	}

	for _, s := range summaries {
		observ.Log("baseline_summary", map[string]any{
			"strategy":          s.Strategy,
			"final_net_worth":   s.FinalNetWorth,
			"profit":            s.Profit,
			"max_drawdown":      s.MaxDrawdown,
			"annualized_return": s.AnnualizedReturn,
			"transactions":      s.Transactions,
		})
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
