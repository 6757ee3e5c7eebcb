// Command simulate runs the trading simulator over a historical price CSV
// with a chosen policy and writes the step history and summary to disk.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/quantlab/tradesim/internal/config"
	"github.com/quantlab/tradesim/internal/dataset"
	"github.com/quantlab/tradesim/internal/observ"
	"github.com/quantlab/tradesim/internal/report"
	"github.com/quantlab/tradesim/internal/runner"
	"github.com/quantlab/tradesim/internal/sim"
)

func main() {
	_ = godotenv.Load() // .env is optional

	var (
		configPath = flag.String("config", os.Getenv("TRADESIM_CONFIG"), "yaml config path (optional)")
		dataPath   = flag.String("data", "", "OHLCV csv path (overrides config)")
		outDir     = flag.String("out", "", "output directory (overrides config)")
		seed       = flag.Int64("seed", 0, "policy PRNG seed (overrides config)")
		policyName = flag.String("policy", "random", "policy: random|hold")
		episodes   = flag.Int("episodes", 1, "number of episodes to run")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *dataPath != "" {
		cfg.Data.Path = *dataPath
	}
	if *outDir != "" {
		cfg.Output.Dir = *outDir
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}

	frame, err := dataset.Load(cfg.Data.Path)
	if err != nil {
		log.Fatalf("dataset: %v", err)
	}
	if err := dataset.ComputeIndicators(frame); err != nil {
		log.Fatalf("indicators: %v", err)
	}
	var scaler dataset.Scaler
	if err := scaler.FitTransform(frame); err != nil {
		log.Fatalf("scaler: %v", err)
	}

	env, err := sim.New(frame, cfg.Episode)
	if err != nil {
		log.Fatalf("simulator: %v", err)
	}

	summaries := make([]report.Summary, 0, *episodes)
	for ep := 0; ep < *episodes; ep++ {
		policy, err := makePolicy(*policyName, cfg.Seed+int64(ep))
		if err != nil {
			log.Fatal(err)
		}

		r := runner.New(env, policy)
		res := r.RunEpisode()

		base := filepath.Join(cfg.Output.Dir, fmt.Sprintf("episode_%03d", ep))
		if err := report.WriteHistoryCSV(base+".csv", r.History()); err != nil {
			log.Fatalf("history csv: %v", err)
		}
		if err := report.WriteHistoryJSONL(base+".jsonl", r.History()); err != nil {
			log.Fatalf("history jsonl: %v", err)
		}

		s := report.Summarize(*policyName, cfg.Episode.InitialBalance, r.History(),
			cfg.Episode.AnnualTradingDays, res.Transactions)
		summaries = append(summaries, s)

		observ.Log("episode_complete", map[string]any{
			"episode":           ep,
			"steps":             res.Steps,
			"total_reward":      res.TotalReward,
			"final_net_worth":   res.FinalNetWorth,
			"transactions":      res.Transactions,
			"max_drawdown":      s.MaxDrawdown,
			"annualized_return": s.AnnualizedReturn,
		})
	}

	if err := report.WriteSummaryJSON(filepath.Join(cfg.Output.Dir, "summary.json"), summaries); err != nil {
		log.Fatalf("summary: %v", err)
	}

	snap := observ.Snap()
	observ.Log("run_metrics", map[string]any{"counters": snap.Counters, "gauges": snap.Gauges})
}

func makePolicy(name string, seed int64) (runner.Policy, error) {
	switch name {
	case "random":
		return runner.NewRandomPolicy(seed), nil
	case "hold":
		return runner.HoldPolicy{}, nil
	default:
		return nil, fmt.Errorf("unknown policy %q", name)
	}
}
