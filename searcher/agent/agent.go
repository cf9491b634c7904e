package agent

import (
	"ismcts/experiments/metrics"
	"ismcts/game"
)

type Agent[A comparable, P comparable] interface {
	// FindAction returns the action to play and performance metrics (if collected) from the search
	FindAction(state game.State[A, P]) (A, metrics.SearchMetric)
}
