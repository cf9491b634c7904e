// Package kuhn implements Kuhn poker, a hidden information game: each player
// antes one chip and holds one card of a three card deck
package kuhn

import (
	"fmt"
	"slices"
	"strings"

	"ismcts/game"

	"golang.org/x/exp/rand"
)

type Card int

const (
	Jack Card = iota
	Queen
	King
)

var deck = []Card{Jack, Queen, King}

func (c Card) String() string {
	return [...]string{"J", "Q", "K"}[c]
}

type Player int

const (
	First Player = iota
	Second
)

func (p Player) String() string {
	return fmt.Sprintf("P%d", int(p)+1)
}

type Action string

const (
	Pass Action = "pass" // Check, or fold when facing a bet
	Bet  Action = "bet"  // Bet, or call when facing a bet
)

// State is a hand of Kuhn poker. Each player only observes their own card,
// Determinize resamples the cards hidden from the perspective.
type State struct {
	cards   [2]Card
	history []Action
	rng     *rand.Rand
}

// Deal returns a new hand with cards drawn from rng
func Deal(rng *rand.Rand) *State {
	cards := slices.Clone(deck)
	rng.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
	return &State{cards: [2]Card{cards[0], cards[1]}, rng: rng}
}

// NewState returns a hand with known cards, rng drives determinizations
func NewState(first, second Card, rng *rand.Rand) *State {
	if first == second {
		panic(fmt.Sprintf("both players cannot hold %v", first))
	}
	return &State{cards: [2]Card{first, second}, rng: rng}
}

func (s *State) Card(p Player) Card {
	return s.cards[p]
}

func (s *State) History() []Action {
	return slices.Clone(s.history)
}

func (s *State) toAct() Player {
	return Player(len(s.history) % 2)
}

func (s *State) terminated() bool {
	h := s.history
	switch len(h) {
	case 2:
		return h[0] == h[1] || h[0] == Bet // pass pass, bet bet, bet pass
	case 3:
		return true
	}
	return false
}

func (s *State) LegalActions() []Action {
	if s.terminated() {
		return nil
	}
	return []Action{Pass, Bet}
}

func (s *State) IsActionAvailable(action Action) bool {
	return !s.terminated() && (action == Pass || action == Bet)
}

func (s *State) Apply(action Action) {
	if !s.IsActionAvailable(action) {
		panic(fmt.Sprintf("illegal action %q after %v", action, s.history))
	}
	s.history = append(s.history, action)
}

// payoff is the number of chips won by the first player
func (s *State) payoff() int {
	showdown := func(stake int) int {
		if s.cards[First] > s.cards[Second] {
			return stake
		}
		return -stake
	}

	switch strings.Join(s.actions(), " ") {
	case "pass pass":
		return showdown(1)
	case "bet bet", "pass bet bet":
		return showdown(2)
	case "bet pass":
		return 1
	case "pass bet pass":
		return -1
	}
	panic(fmt.Sprintf("hand is not over after %v", s.history))
}

func (s *State) actions() []string {
	actions := make([]string, len(s.history))
	for i, a := range s.history {
		actions[i] = string(a)
	}
	return actions
}

func (s *State) Status() game.Status[Player] {
	if !s.terminated() {
		return game.AwaitingAction(s.toAct())
	}
	// Two chips at most change hands, scale to [0, 1]
	payoff := float64(s.payoff())
	return game.Terminated[Player](game.Rewards[Player]{
		First:  0.5 + payoff/4,
		Second: 0.5 - payoff/4,
	})
}

func (s *State) Clone() game.State[Action, Player] {
	c := *s
	c.history = slices.Clone(s.history)
	return &c
}

// Determinize keeps the card of perspective and deals the opponent one of the
// two remaining cards
func (s *State) Determinize(perspective Player) game.State[Action, Player] {
	c := s.Clone().(*State)
	opponent := 1 - perspective
	remaining := slices.DeleteFunc(slices.Clone(deck), func(card Card) bool {
		return card == s.cards[perspective]
	})
	c.cards[opponent] = remaining[s.rng.Intn(len(remaining))]
	return c
}

// String renders both cards and the betting history
func (s *State) String() string {
	return fmt.Sprintf("%v:%v %v:%v %v", First, s.cards[First], Second, s.cards[Second], s.history)
}
