package game

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

type counter struct {
	value int
	limit int
}

func (c *counter) LegalActions() []int {
	return []int{1, 2, 3}
}

func (c *counter) Apply(action int) {
	c.value += action
}

func (c *counter) Status() Status[string] {
	if c.value >= c.limit {
		return Terminated[string](Winner[string]{Player: "counter"})
	}
	return AwaitingAction("counter")
}

func (c *counter) Clone() State[int, string] {
	clone := *c
	return &clone
}

// loaded overrides every optional capability
type loaded struct {
	counter
}

func (l *loaded) IsActionAvailable(action int) bool { return action != 2 }
func (l *loaded) RolloutAction(*rand.Rand) int      { return 3 }

func (l *loaded) Determinize(string) State[int, string] {
	return &loaded{counter{value: l.value + 10, limit: l.limit}}
}

func (l *loaded) EarlyTerminate() (Outcome[string], bool) {
	return Draw[string]{}, true
}

func (l *loaded) RewardForOutcome(player string, outcome Outcome[string]) float64 {
	return 2 * outcome.RewardFor(player)
}

func TestStatus(t *testing.T) {
	t.Run("awaiting an action", func(t *testing.T) {
		status := AwaitingAction("alice")

		player, ok := status.Player()
		require.True(t, ok)
		require.Equal(t, "alice", player)
		require.Equal(t, "alice", status.MustPlayer())
		require.False(t, status.IsTerminated())
		_, ok = status.Outcome()
		require.False(t, ok, "Ongoing game should have no outcome")
	})

	t.Run("terminated", func(t *testing.T) {
		status := Terminated[string](Winner[string]{Player: "bob"})

		outcome, ok := status.Outcome()
		require.True(t, ok)
		require.Equal(t, Win, outcome.RewardFor("bob"))
		require.Equal(t, Loss, outcome.RewardFor("alice"))
		require.True(t, status.IsTerminated())
		_, ok = status.Player()
		require.False(t, ok, "Terminated game should have no player to act")
		require.Panics(t, func() { status.MustPlayer() })
	})

	t.Run("panics without outcome", func(t *testing.T) {
		require.Panics(t, func() { Terminated[string](nil) })
	})
}

func TestOutcomes(t *testing.T) {
	require.Equal(t, Tie, Draw[string]{}.RewardFor("anyone"))

	rewards := Rewards[string]{"alice": 0.75, "bob": 0.25}
	require.Equal(t, 0.75, rewards.RewardFor("alice"))
	require.Equal(t, 0.25, rewards.RewardFor("bob"))
	require.Equal(t, Loss, rewards.RewardFor("carol"), "Absent player should lose")
}

func TestDefaultCapabilities(t *testing.T) {
	state := &counter{limit: 5}

	t.Run("every action is available", func(t *testing.T) {
		require.True(t, IsActionAvailable[int, string](state, 42))
	})

	t.Run("determinization clones the state", func(t *testing.T) {
		determinized := Determinize[int, string](state, "counter")
		determinized.Apply(3)

		require.Equal(t, 3, determinized.(*counter).value)
		require.Zero(t, state.value, "Determinization should be independent")
	})

	t.Run("rollout draws a legal action", func(t *testing.T) {
		rng := rand.New(rand.NewSource(1))
		for i := 0; i < 20; i++ {
			require.Contains(t, []int{1, 2, 3}, RolloutAction[int, string](state, rng))
		}
	})

	t.Run("no early termination", func(t *testing.T) {
		outcome, ok := EarlyTerminate[int, string](state)
		require.False(t, ok)
		require.Nil(t, outcome)
	})

	t.Run("reward comes from the outcome", func(t *testing.T) {
		require.Equal(t, Win, RewardFor[int, string](state, "counter", Winner[string]{Player: "counter"}))
	})
}

func TestOverriddenCapabilities(t *testing.T) {
	state := &loaded{counter{limit: 50}}

	require.False(t, IsActionAvailable[int, string](state, 2))
	require.True(t, IsActionAvailable[int, string](state, 1))
	require.Equal(t, 3, RolloutAction[int, string](state, rand.New(rand.NewSource(1))))
	require.Equal(t, 10, Determinize[int, string](state, "counter").(*loaded).value)
	outcome, ok := EarlyTerminate[int, string](state)
	require.True(t, ok)
	require.Equal(t, Tie, outcome.RewardFor("counter"))
	require.Equal(t, 2*Win, RewardFor[int, string](state, "counter", Winner[string]{Player: "counter"}))
}
