package sim

import "math"

// rewardWarmupSteps is the number of steps that bypass normalization while
// the EMA estimates settle.
const rewardWarmupSteps = 10

// rewardNormalizer keeps an EMA of the raw reward's mean and variance and
// squashes the normalized value through tanh. Three regimes:
//
//  1. cold start: the EMA mean is seeded with the first raw reward (not
//     zero) and the step's reward passes through unmodified;
//  2. warm-up (fewer than rewardWarmupSteps observed): reward passes
//     through unmodified while the EMAs update;
//  3. steady state: the reward is centered and scaled by the previous EMA
//     values, divided by the norm factor, squashed with tanh and scaled.
type rewardNormalizer struct {
	alpha      float64
	normFactor float64
	scale      float64

	initialized bool
	warmupCount int
	mean        float64
	variance    float64
}

func newRewardNormalizer(w RewardWeights) rewardNormalizer {
	return rewardNormalizer{
		alpha:      w.EMAAlpha,
		normFactor: w.RewardNormFactor,
		scale:      w.RewardScale,
	}
}

func (n *rewardNormalizer) reset() {
	n.initialized = false
	n.warmupCount = 0
	n.mean = 0
	n.variance = 0
}

func (n *rewardNormalizer) normalize(raw float64) float64 {
	if !n.initialized {
		n.initialized = true
		n.mean = raw
		n.variance = 1e-6
		n.warmupCount++
		return raw
	}
	if n.warmupCount < rewardWarmupSteps {
		n.update(raw)
		n.warmupCount++
		return raw
	}
	normalized := (raw - n.mean) / (math.Sqrt(n.variance) + 1e-8)
	n.update(raw)
	return math.Tanh(normalized/n.normFactor) * n.scale
}

// update folds the raw reward into the EMA mean and variance against the
// previous estimates.
func (n *rewardNormalizer) update(raw float64) {
	prevMean := n.mean
	n.mean = n.alpha*raw + (1-n.alpha)*prevMean
	d := raw - prevMean
	n.variance = n.alpha*d*d + (1-n.alpha)*n.variance
}
