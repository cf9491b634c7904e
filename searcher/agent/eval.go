package agent

import (
	"ismcts/experiments/metrics"
	"ismcts/game"
	"ismcts/searcher"
)

type evaluationAgent[A comparable, P comparable] struct {
	mcts       *searcher.MCTS[A, P]
	iterations int
}

// NewEvaluationAgent returns a new agent for actual game play during evaluation,
// it always plays the most visited action
func NewEvaluationAgent[A comparable, P comparable](mcts *searcher.MCTS[A, P], iterations int) Agent[A, P] {
	if iterations < 1 {
		panic("evaluation agent requires at least one iteration per search")
	}
	return evaluationAgent[A, P]{mcts: mcts, iterations: iterations}
}

func (a evaluationAgent[A, P]) FindAction(state game.State[A, P]) (A, metrics.SearchMetric) {
	action, _ := a.mcts.Search(state, a.iterations)
	return action, a.mcts.LastMetric()
}
