// Package runner drives a simulator episode with a policy, throttling
// progress logging off the hot path.
package runner

import (
	"math/rand"
	"time"

	"golang.org/x/time/rate"

	"github.com/quantlab/tradesim/internal/observ"
	"github.com/quantlab/tradesim/internal/sim"
)

// Policy proposes a continuous action in [-1, 1] for an observation.
type Policy interface {
	Act(obs []float64) float64
}

// RandomPolicy samples uniformly from the action range. Each policy owns
// its PRNG, so parallel episodes stay reproducible and independent instead
// of sharing process-wide seed state.
type RandomPolicy struct {
	rng *rand.Rand
}

func NewRandomPolicy(seed int64) *RandomPolicy {
	return &RandomPolicy{rng: rand.New(rand.NewSource(seed))}
}

func (p *RandomPolicy) Act(_ []float64) float64 {
	return p.rng.Float64()*2 - 1
}

// HoldPolicy never trades; a do-nothing control baseline.
type HoldPolicy struct{}

func (HoldPolicy) Act(_ []float64) float64 { return 0 }

// Result summarizes one completed episode.
type Result struct {
	Steps         int
	TotalReward   float64
	FinalNetWorth float64
	Transactions  int
}

// Runner owns one environment/policy pair for sequential episodes.
type Runner struct {
	env      *sim.Env
	policy   Policy
	progress *rate.Limiter
}

func New(env *sim.Env, policy Policy) *Runner {
	return &Runner{
		env:    env,
		policy: policy,
		// progress events at most once a second, whatever the step rate
		progress: rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

// RunEpisode resets the environment and steps it to termination.
func (r *Runner) RunEpisode() Result {
	obs := r.env.Reset()
	var res Result
	for {
		out := r.env.Step(r.policy.Act(obs))
		res.Steps++
		res.TotalReward += out.Reward
		obs = out.Observation

		if r.progress.Allow() {
			observ.Log("episode_progress", map[string]any{
				"steps":     res.Steps,
				"reward":    out.Reward,
				"net_worth": r.env.NetWorth(),
			})
		}
		if out.Terminated || out.Truncated {
			break
		}
	}
	res.FinalNetWorth = r.env.NetWorth()
	res.Transactions = r.env.TransactionCount()
	return res
}

// History exposes the environment's step trace for reporting.
func (r *Runner) History() []sim.StepRecord { return r.env.History() }
