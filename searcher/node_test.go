package searcher

import (
	"testing"

	"ismcts/game"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

// mockState awaits an action of player from a fixed action set, any applied
// action terminates it with the outcome registered for that action
type mockState struct {
	player   string
	moves    []string
	outcomes map[string]game.Outcome[string]
	played   []string
	hidden   map[string]bool // Actions unavailable in this determinization
}

func (m *mockState) LegalActions() []string {
	legal := []string{}
	for _, move := range m.moves {
		if !m.hidden[move] {
			legal = append(legal, move)
		}
	}
	return legal
}

func (m *mockState) Apply(action string) {
	m.played = append(m.played, action)
}

func (m *mockState) Status() game.Status[string] {
	if len(m.played) == 0 {
		return game.AwaitingAction(m.player)
	}
	return game.Terminated[string](m.outcomes[m.played[0]])
}

func (m *mockState) Clone() game.State[string, string] {
	c := *m
	c.played = append([]string{}, m.played...)
	return &c
}

func (m *mockState) IsActionAvailable(action string) bool {
	return !m.hidden[action]
}

func newMockState(moves ...string) *mockState {
	outcomes := map[string]game.Outcome[string]{}
	for _, move := range moves {
		outcomes[move] = game.Draw[string]{}
	}
	return &mockState{player: "player1", moves: moves, outcomes: outcomes}
}

func testRand() *rand.Rand {
	return rand.New(rand.NewSource(42))
}

func TestNodeExpand(t *testing.T) {
	t.Run("expanding root adds a child for every legal action", func(t *testing.T) {
		root := newRoot[string, string]("player1")
		state := newMockState("a", "b", "c")

		actions := root.expand(state, testRand())

		require.ElementsMatch(t, []string{"a", "b", "c"}, actions, "Should return every legal action")
		require.Len(t, root.Children(), 3, "Root should be fully expanded")
		for _, child := range root.Children() {
			require.Equal(t, "player1", child.Player(), "Child should belong to the player choosing its action")
			require.Zero(t, child.Visits(), "Child should start without statistics")
			require.Zero(t, child.Rewards(), "Child should start without statistics")
			action, ok := child.Action()
			require.True(t, ok, "Child should have an incoming action")
			require.True(t, root.Has(action))
		}
	})

	t.Run("expanding an expanded root is a no-op", func(t *testing.T) {
		root := newRoot[string, string]("player1")
		root.expand(newMockState("a", "b"), testRand())
		child, _ := root.Child("a")
		child.Record(1, 1)

		actions := root.expand(newMockState("a", "b", "c"), testRand())

		require.Nil(t, actions, "Already expanded root should not enumerate actions")
		require.Len(t, root.Children(), 2, "Root children should never change")
		require.False(t, root.Has("c"))
		require.Equal(t, 1.0, child.Visits(), "Root children should keep their statistics")
		require.Equal(t, 0, root.Availability("a"), "Availability should not change")
	})

	t.Run("expanding a non-root node adds at most one child per visit", func(t *testing.T) {
		node := newNode[string, string]("player2", "x")
		state := newMockState("a", "b", "c")
		state.player = "player1"

		for visit := 1; visit <= 3; visit++ {
			actions := node.expand(state, testRand())
			require.Len(t, actions, 3, "Should return every legal action")
			require.Len(t, node.Children(), visit, "Node should gain exactly one child")
		}

		node.expand(state, testRand())
		require.Len(t, node.Children(), 3, "Fully expanded node should not grow")
		for _, child := range node.Children() {
			require.Equal(t, "player1", child.Player())
		}
	})

	t.Run("first sighting of an action does not count as available", func(t *testing.T) {
		node := newNode[string, string]("player2", "x")
		state := newMockState("a", "b")

		node.expand(state, testRand())
		require.Equal(t, 0, node.Availability("a"))
		require.Equal(t, 0, node.Availability("b"))

		state.hidden = map[string]bool{"b": true}
		node.expand(state, testRand())
		node.expand(state, testRand())
		require.Equal(t, 2, node.Availability("a"))
		require.Equal(t, 0, node.Availability("b"), "Hidden action should not be counted")
	})

	t.Run("legal action set is not modified", func(t *testing.T) {
		node := newNode[string, string]("player2", "x")
		state := newMockState("a", "b", "c", "d", "e")

		node.expand(state, testRand())

		require.Equal(t, []string{"a", "b", "c", "d", "e"}, state.moves, "Shuffling should work on a copy")
	})

	t.Run("panics without legal actions while awaiting an action", func(t *testing.T) {
		node := newNode[string, string]("player2", "x")

		require.Panics(t, func() {
			node.expand(newMockState(), testRand())
		}, "Should panic on an empty legal action set")
	})

	t.Run("panics on a terminated state", func(t *testing.T) {
		node := newNode[string, string]("player2", "x")
		state := newMockState("a")
		state.Apply("a")

		require.Panics(t, func() {
			node.expand(state, testRand())
		}, "Should panic when no player is to act")
	})
}

func TestNodeProgressiveWidening(t *testing.T) {
	// Legal actions change on every visit, the node should still cover all of them
	node := newNode[int, string]("player2", 0)
	all := []int{1, 2, 3, 4, 5}
	rng := testRand()

	for visit := 0; visit < 2*len(all); visit++ {
		state := &intState{moves: all[:1+visit%len(all)]}
		node.expand(state, rng)
	}

	for _, action := range all {
		require.True(t, node.Has(action), "Every action should eventually be a child")
	}
}

func TestNodeMostVisited(t *testing.T) {
	t.Run("selecting the child with most visits", func(t *testing.T) {
		root := newRoot[string, string]("player1")
		root.expand(newMockState("a", "b", "c"), testRand())
		for action, stats := range map[string][2]float64{"a": {3, 3}, "b": {4, 1}, "c": {1, 1}} {
			child, _ := root.Child(action)
			child.Record(stats[0], stats[1])
		}

		got := root.mostVisited()

		action, _ := got.Action()
		require.Equal(t, "b", action, "Visits should outweigh win rate")
	})

	t.Run("breaking visit ties by win rate", func(t *testing.T) {
		root := newRoot[string, string]("player1")
		root.expand(newMockState("a", "b"), testRand())
		a, _ := root.Child("a")
		b, _ := root.Child("b")
		a.Record(0, 2)
		b.Record(2, 2)

		got := root.mostVisited()

		require.Equal(t, b, got)
	})

	t.Run("panics without children", func(t *testing.T) {
		require.Panics(t, func() {
			newRoot[string, string]("player1").mostVisited()
		})
	})
}

type intState struct {
	moves []int
}

func (s *intState) LegalActions() []int            { return s.moves }
func (s *intState) Apply(int)                      {}
func (s *intState) Status() game.Status[string]    { return game.AwaitingAction("player1") }
func (s *intState) Clone() game.State[int, string] { return &intState{moves: s.moves} }

