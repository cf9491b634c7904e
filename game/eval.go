package game

// Evaluate scores a state from a player's perspective, typically in [0, 1].
// Used to bias selection with domain knowledge.
type Evaluate[A comparable, P comparable] func(state State[A, P], player P) float64
