package searcher

import (
	"math"
)

// Hyperparameters for MCTS

// Exploration constant of the UCB formulas
const DefaultExploration = 0.4

// First play value of unvisited children, they are always tried before any visited sibling
var DefaultFirstPlay = math.Inf(1)

// ucb computes the upper confidence bound q/n + c*sqrt(ln(N)/n) of a child with
// rewards q and visits n, N being the number of times the child could have been picked
func ucb(rewards, visits, total, c float64) float64 {
	if visits == 0 { // Prevent division by zero
		panic("cannot compute UCB: 0 visits")
	}
	if total < 1 {
		panic("cannot compute UCB: child was never available")
	}

	return rewards/visits + c*math.Sqrt(math.Log(total)/visits)
}
