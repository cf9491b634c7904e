package agent

import (
	"ismcts/experiments/metrics"
	"ismcts/game"

	"golang.org/x/exp/rand"
)

type randomAgent[A comparable, P comparable] struct {
	rng *rand.Rand
}

// NewRandomAgent returns a baseline agent playing uniformly random legal actions
func NewRandomAgent[A comparable, P comparable](rng *rand.Rand) Agent[A, P] {
	return randomAgent[A, P]{rng: rng}
}

func (a randomAgent[A, P]) FindAction(state game.State[A, P]) (A, metrics.SearchMetric) {
	actions := state.LegalActions()
	if len(actions) == 0 {
		panic("random agent has no legal action to play")
	}
	return actions[a.rng.Intn(len(actions))], metrics.SearchMetric{Policy: "random"}
}
