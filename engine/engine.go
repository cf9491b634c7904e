package engine

import (
	"ismcts/experiments/metrics"
	"ismcts/game"
)

const MaxMoves = 10000

type Engine[A comparable, P comparable] interface {
	// Run plays a game till it terminates or a max number of moves is reached,
	// the outcome is nil in the latter case
	Run() (outcome game.Outcome[P], gameMetric metrics.GameMetric, moveMetrics []metrics.MoveMetric)
}
