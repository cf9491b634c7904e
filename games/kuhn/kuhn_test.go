package kuhn

import (
	"testing"

	"ismcts/game"
	"ismcts/searcher"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func play(s *State, actions ...Action) *State {
	for _, a := range actions {
		s.Apply(a)
	}
	return s
}

func testRand() *rand.Rand {
	return rand.New(rand.NewSource(7))
}

func TestPayoffs(t *testing.T) {
	cases := []struct {
		name    string
		actions []Action
		first   float64
	}{
		{"check down to showdown", []Action{Pass, Pass}, 0.75},
		{"called bet", []Action{Bet, Bet}, game.Win},
		{"called bet after check", []Action{Pass, Bet, Bet}, 1},
		{"folding to a bet", []Action{Bet, Pass}, 0.75},
		{"folding after check", []Action{Pass, Bet, Pass}, 0.25},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s := play(NewState(King, Queen, testRand()), c.actions...)

			outcome, ok := s.Status().Outcome()
			require.True(t, ok)
			require.Equal(t, c.first, outcome.RewardFor(First))
			require.Equal(t, 1-c.first, outcome.RewardFor(Second), "Kuhn poker is zero sum")
			require.Empty(t, s.LegalActions())
		})
	}

	t.Run("lower card loses the showdown", func(t *testing.T) {
		s := play(NewState(Jack, King, testRand()), Bet, Bet)

		outcome, _ := s.Status().Outcome()
		require.Equal(t, game.Loss, outcome.RewardFor(First))
	})
}

func TestState(t *testing.T) {
	t.Run("players alternate", func(t *testing.T) {
		s := NewState(Jack, Queen, testRand())
		require.Equal(t, First, s.Status().MustPlayer())

		s.Apply(Pass)
		require.Equal(t, Second, s.Status().MustPlayer())

		s.Apply(Bet)
		require.Equal(t, First, s.Status().MustPlayer(), "First player should answer the bet")
	})

	t.Run("panics on an action after the hand ends", func(t *testing.T) {
		s := play(NewState(Jack, Queen, testRand()), Pass, Pass)

		require.Panics(t, func() { s.Apply(Bet) })
		require.False(t, s.IsActionAvailable(Bet))
	})

	t.Run("panics on identical cards", func(t *testing.T) {
		require.Panics(t, func() { NewState(King, King, testRand()) })
	})

	t.Run("dealing distinct cards", func(t *testing.T) {
		rng := testRand()
		for i := 0; i < 20; i++ {
			s := Deal(rng)
			require.NotEqual(t, s.Card(First), s.Card(Second))
		}
	})

	t.Run("clone is independent", func(t *testing.T) {
		s := NewState(Jack, Queen, testRand())
		c := s.Clone()
		c.Apply(Bet)

		require.Empty(t, s.History())
	})
}

func TestDeterminize(t *testing.T) {
	s := play(NewState(Queen, King, testRand()), Pass)
	seen := map[Card]bool{}

	for i := 0; i < 50; i++ {
		d := s.Determinize(Second).(*State)

		require.Equal(t, King, d.Card(Second), "Own card should be kept")
		require.NotEqual(t, King, d.Card(First), "Opponent cannot hold the same card")
		require.Equal(t, []Action{Pass}, d.History(), "Public history should be kept")
		seen[d.Card(First)] = true
	}

	require.Len(t, seen, 2, "Both remaining cards should be sampled")
	require.Equal(t, Queen, s.Card(First), "Determinizing should not change the hand")
}

func TestSearch(t *testing.T) {
	t.Run("calling with the best card", func(t *testing.T) {
		s := play(NewState(King, Jack, testRand()), Pass, Bet)
		mcts := searcher.NewMCTS(searcher.WithSeed[Action, Player](1))

		action, _ := mcts.Search(s, 200)

		require.Equal(t, Bet, action)
	})

	t.Run("folding with the worst card", func(t *testing.T) {
		s := play(NewState(Jack, Queen, testRand()), Pass, Bet)
		mcts := searcher.NewMCTS(searcher.WithSeed[Action, Player](1))

		action, _ := mcts.Search(s, 200)

		require.Equal(t, Pass, action)
	})

	t.Run("search does not peek at the hidden card", func(t *testing.T) {
		// With a queen the call wins half of the determinizations
		s := play(NewState(Queen, King, testRand()), Pass, Bet)
		mcts := searcher.NewMCTS(searcher.WithSeed[Action, Player](1))

		visits, _ := mcts.Policy(s, 400)

		require.Greater(t, visits[Bet], 20.0, "Calling should keep being explored")
	})

	t.Run("searching a fresh deal", func(t *testing.T) {
		s := Deal(testRand())
		mcts := searcher.NewMCTS(searcher.WithSeed[Action, Player](1))

		action, summary := mcts.Search(s, 300)

		require.Contains(t, []Action{Pass, Bet}, action)
		require.Equal(t, 300.0, summary.Visits)
		require.Empty(t, s.History())
	})
}
