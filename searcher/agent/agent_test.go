package agent

import (
	"testing"

	"ismcts/experiments/metrics"
	"ismcts/game"
	"ismcts/searcher"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

// pickState is a single decision game, "best" wins and every other action loses
type pickState struct {
	moves  []string
	picked string
}

func newPickState() *pickState {
	return &pickState{moves: []string{"worst", "bad", "best"}}
}

func (s *pickState) LegalActions() []string { return s.moves }
func (s *pickState) Apply(action string)    { s.picked = action }
func (s *pickState) Clone() game.State[string, string] {
	c := *s
	return &c
}

func (s *pickState) Status() game.Status[string] {
	if s.picked == "" {
		return game.AwaitingAction("me")
	}
	if s.picked == "best" {
		return game.Terminated[string](game.Winner[string]{Player: "me"})
	}
	return game.Terminated[string](game.Winner[string]{Player: "opponent"})
}

func TestEvaluationAgent(t *testing.T) {
	t.Run("playing the most visited action", func(t *testing.T) {
		mcts := searcher.NewMCTS(
			searcher.WithSeed[string, string](1),
			searcher.WithMetrics[string, string](metrics.NewCollector()),
		)
		a := NewEvaluationAgent(mcts, 50)

		action, metric := a.FindAction(newPickState())

		require.Equal(t, "best", action)
		require.Equal(t, 50, metric.Episodes, "Should report the search metrics")
	})

	t.Run("panics without iterations", func(t *testing.T) {
		require.Panics(t, func() {
			NewEvaluationAgent(searcher.NewMCTS[string, string](), 0)
		})
	})
}

func TestTrainingAgent(t *testing.T) {
	t.Run("sampling from the visit distribution", func(t *testing.T) {
		mcts := searcher.NewMCTS(searcher.WithSeed[string, string](1))
		a := NewTrainingAgent(mcts, 60, 0.1, rand.New(rand.NewSource(1)))

		counts := map[string]int{}
		for i := 0; i < 20; i++ {
			action, _ := a.FindAction(newPickState())
			counts[action]++
		}

		require.Greater(t, counts["best"], 15, "Low temperature should almost always pick the most visited action")
	})

	t.Run("panics on a non positive temperature", func(t *testing.T) {
		require.Panics(t, func() {
			NewTrainingAgent(searcher.NewMCTS[string, string](), 10, 0, rand.New(rand.NewSource(1)))
		})
	})
}

func TestAdjustTemperature(t *testing.T) {
	actions := []string{"a", "b"}
	visits := map[string]float64{"a": 1, "b": 3}

	t.Run("unit temperature keeps visit shares", func(t *testing.T) {
		probs := adjustTemperature(actions, visits, 1)

		require.InDeltaSlice(t, []float64{0.25, 0.75}, probs, 1e-9)
	})

	t.Run("low temperature sharpens the distribution", func(t *testing.T) {
		probs := adjustTemperature(actions, visits, 0.5)

		require.InDeltaSlice(t, []float64{0.1, 0.9}, probs, 1e-9)
	})
}

func TestSample(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	t.Run("certain action is always sampled", func(t *testing.T) {
		for i := 0; i < 10; i++ {
			require.Equal(t, "b", sample([]string{"a", "b"}, []float64{0, 1}, rng))
		}
	})

	t.Run("panics on an empty policy", func(t *testing.T) {
		require.Panics(t, func() {
			sample([]string{}, nil, rng)
		})
	})
}

func TestRandomAgent(t *testing.T) {
	a := NewRandomAgent[string, string](rand.New(rand.NewSource(1)))
	seen := map[string]bool{}

	for i := 0; i < 50; i++ {
		action, metric := a.FindAction(newPickState())
		seen[action] = true
		require.Equal(t, "random", metric.Policy)
	}

	require.Len(t, seen, 3, "Every legal action should eventually be played")
}
