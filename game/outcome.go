package game

// Use rewards to estimate the chance of winning
const (
	Win  = 1.0
	Loss = 1 - Win
	Tie  = 0.5
)

// Winner is the outcome of a game won by a single player
type Winner[P comparable] struct {
	Player P
}

func (w Winner[P]) RewardFor(player P) float64 {
	if player == w.Player {
		return Win
	}
	return Loss
}

// Draw rewards every player with Tie
type Draw[P comparable] struct{}

func (Draw[P]) RewardFor(P) float64 {
	return Tie
}

// Rewards is an outcome with an explicit reward per player, absent players get Loss
type Rewards[P comparable] map[P]float64

func (r Rewards[P]) RewardFor(player P) float64 {
	return r[player]
}
