package agent

import (
	"math"

	"ismcts/experiments/metrics"
	"ismcts/game"
	"ismcts/searcher"

	"golang.org/x/exp/rand"
)

type trainingAgent[A comparable, P comparable] struct {
	mcts        *searcher.MCTS[A, P]
	iterations  int
	temperature float64
	rng         *rand.Rand
}

// NewTrainingAgent returns a new agent for self-play during training. Actions
// are sampled from the root visit distribution sharpened by 1/temperature.
func NewTrainingAgent[A comparable, P comparable](mcts *searcher.MCTS[A, P], iterations int, temperature float64, rng *rand.Rand) Agent[A, P] {
	if iterations < 1 {
		panic("training agent requires at least one iteration per search")
	}
	if temperature <= 0 {
		panic("training agent requires a positive temperature")
	}
	return trainingAgent[A, P]{mcts: mcts, iterations: iterations, temperature: temperature, rng: rng}
}

func (a trainingAgent[A, P]) FindAction(state game.State[A, P]) (A, metrics.SearchMetric) {
	visits, _ := a.mcts.Policy(state, a.iterations)

	// Legal action order keeps sampling reproducible
	actions := make([]A, 0, len(visits))
	for _, action := range state.LegalActions() {
		if _, ok := visits[action]; ok {
			actions = append(actions, action)
		}
	}
	probs := adjustTemperature(actions, visits, a.temperature)
	return sample(actions, probs, a.rng), a.mcts.LastMetric()
}

func adjustTemperature[A comparable](actions []A, visits map[A]float64, temperature float64) []float64 {
	// Compute temperature-adjusted action probabilities
	exponent := 1.0 / temperature
	sum := 0.0
	adjusted := make([]float64, len(actions))
	for i, action := range actions {
		adjusted[i] = math.Pow(visits[action], exponent)
		sum += adjusted[i]
	}
	// Normalize
	for i := range adjusted {
		adjusted[i] /= sum
	}
	return adjusted
}

func sample[A comparable](actions []A, probs []float64, rng *rand.Rand) A {
	if len(actions) == 0 {
		panic("cannot sample from an empty policy")
	}
	sampled := rng.Float64()
	cumulative := 0.0
	for i, prob := range probs {
		cumulative += prob
		if sampled < cumulative {
			return actions[i]
		}
	}
	return actions[len(actions)-1] // Fallback in case of rounding errors
}
