package searcher

import (
	"fmt"
	"time"

	"ismcts/experiments/metrics"
	"ismcts/game"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

type Option[A comparable, P comparable] func(m *MCTS[A, P])

// Recorder backpropagates an outcome into a node
type Recorder[A comparable, P comparable] func(node *Node[A, P], state game.State[A, P], outcome game.Outcome[P])

// MCTS is an information set Monte Carlo tree searcher. Every iteration runs on
// a fresh determinization of the searched state while sharing a single tree.
// Not safe for concurrent use.
type MCTS[A comparable, P comparable] struct {
	policy           Policy[A, P]
	rng              *rand.Rand
	metrics          metrics.Collector
	last             metrics.SearchMetric
	expansions       int // Children added during the current search
	record           Recorder[A, P]
	afterSelection   func(state game.State[A, P], selected *Node[A, P])
	interceptRollout func(node *Node[A, P], state game.State[A, P], action A) A
	afterIteration   func(state game.State[A, P], outcome game.Outcome[P])
}

// WithPolicy replaces the default UCB1 selection policy
func WithPolicy[A comparable, P comparable](policy Policy[A, P]) Option[A, P] {
	return func(m *MCTS[A, P]) {
		if policy != nil {
			m.policy = policy
		}
	}
}

// WithSeed makes searches reproducible
func WithSeed[A comparable, P comparable](seed uint64) Option[A, P] {
	return func(m *MCTS[A, P]) {
		m.rng = rand.New(rand.NewSource(seed))
	}
}

// WithRand shares a random source, e.g. between the agents of a reproducible game
func WithRand[A comparable, P comparable](rng *rand.Rand) Option[A, P] {
	return func(m *MCTS[A, P]) {
		if rng != nil {
			m.rng = rng
		}
	}
}

func WithMetrics[A comparable, P comparable](collector metrics.Collector) Option[A, P] {
	return func(m *MCTS[A, P]) {
		if collector != nil {
			m.metrics = collector
		}
	}
}

// WithRecorder replaces the default backpropagation of RecordOutcome
func WithRecorder[A comparable, P comparable](record Recorder[A, P]) Option[A, P] {
	return func(m *MCTS[A, P]) {
		if record != nil {
			m.record = record
		}
	}
}

// WithAfterSelection is notified with every selected child, after its action
// was applied to the state
func WithAfterSelection[A comparable, P comparable](hook func(state game.State[A, P], selected *Node[A, P])) Option[A, P] {
	return func(m *MCTS[A, P]) {
		m.afterSelection = hook
	}
}

// WithRolloutInterceptor can replace every rollout action before it is applied
func WithRolloutInterceptor[A comparable, P comparable](intercept func(node *Node[A, P], state game.State[A, P], action A) A) Option[A, P] {
	return func(m *MCTS[A, P]) {
		m.interceptRollout = intercept
	}
}

// WithAfterIteration is notified with the final state and outcome of every iteration
func WithAfterIteration[A comparable, P comparable](hook func(state game.State[A, P], outcome game.Outcome[P])) Option[A, P] {
	return func(m *MCTS[A, P]) {
		m.afterIteration = hook
	}
}

func NewMCTS[A comparable, P comparable](options ...Option[A, P]) *MCTS[A, P] {
	m := &MCTS[A, P]{ // Default values
		policy:  NewUCB1[A, P](),
		rng:     rand.New(rand.NewSource(uint64(time.Now().UnixNano()))),
		metrics: metrics.NewDummyCollector(),
		record:  RecordOutcome[A, P],
	}
	for _, option := range options {
		option(m)
	}
	return m
}

// RecordOutcome credits the node with the reward of the player it belongs to
func RecordOutcome[A comparable, P comparable](node *Node[A, P], state game.State[A, P], outcome game.Outcome[P]) {
	node.Record(game.RewardFor(state, node.player, outcome), 1)
}

// Search runs iterations simulations from state and returns the most visited
// action of the root along with the root statistics. state is left untouched.
func (m *MCTS[A, P]) Search(state game.State[A, P], iterations int) (A, Summary) {
	root := m.searchTree(state, iterations)
	best := root.mostVisited()

	if e := log.Debug(); e.Enabled() {
		e.Stringer("child_win_rates", childWinRates(root)).
			Float64("visits", best.visits).
			Float64("rewards", best.rewards).
			Float64("win_rate", best.WinRate()).
			Msgf("selected action %v", best.action)
	}

	return best.action, Summary{Visits: root.visits, Rewards: root.rewards}
}

// Policy runs a search like Search and returns the visit count of every root action
func (m *MCTS[A, P]) Policy(state game.State[A, P], iterations int) (map[A]float64, Summary) {
	root := m.searchTree(state, iterations)

	policy := make(map[A]float64, len(root.children))
	for action, child := range root.children {
		policy[action] = child.visits
	}
	return policy, Summary{Visits: root.visits, Rewards: root.rewards}
}

// LastMetric returns the metrics of the last completed search, empty unless
// a collector was installed with WithMetrics
func (m *MCTS[A, P]) LastMetric() metrics.SearchMetric {
	return m.last
}

func (m *MCTS[A, P]) searchTree(state game.State[A, P], iterations int) *Node[A, P] {
	if iterations < 1 {
		panic(fmt.Sprintf("search requires at least one iteration, got %d", iterations))
	}
	player, ok := state.Status().Player()
	if !ok {
		panic("cannot search a terminated state")
	}

	root := newRoot[A, P](player)
	m.expansions = 0
	m.metrics.Start(policyName(m.policy), iterations)
	for i := 0; i < iterations; i++ {
		determinization := game.Determinize(state, player)
		outcome := m.iterate(root, determinization)
		if m.afterIteration != nil {
			m.afterIteration(determinization, outcome)
		}
		m.metrics.AddEpisode()
	}
	m.last = m.metrics.Complete(root.visits, root.rewards)

	log.Debug().
		Int("iterations", iterations).
		Float64("root_visits", root.visits).
		Float64("root_rewards", root.rewards).
		Int("expansions", m.expansions).
		Msg("search completed")

	return root
}

// iterate descends from node by applying the selected actions to state in
// place, simulates once and backpropagates the outcome on the way back up
func (m *MCTS[A, P]) iterate(node *Node[A, P], state game.State[A, P]) game.Outcome[P] {
	// Terminal node
	if outcome, ok := state.Status().Outcome(); ok {
		m.record(node, state, outcome)
		return outcome
	}

	before := len(node.order)
	actions := node.expand(state, m.rng)
	for i := before; i < len(node.order); i++ {
		m.expansions++
		m.metrics.AddExpansion()
	}

	child := pickChild(m.policy, node, state, actions)
	state.Apply(child.action)
	if m.afterSelection != nil {
		m.afterSelection(state, child)
	}

	var outcome game.Outcome[P]
	if child.visits == 0 {
		outcome = m.rollout(child, state)
		m.record(child, state, outcome)
	} else {
		outcome = m.iterate(child, state)
	}

	m.record(node, state, outcome)
	return outcome
}

// rollout plays from state until it terminates or a heuristic ends it early
func (m *MCTS[A, P]) rollout(node *Node[A, P], state game.State[A, P]) game.Outcome[P] {
	for {
		if outcome, ok := state.Status().Outcome(); ok {
			m.metrics.AddFullPlayout()
			return outcome
		}

		action := game.RolloutAction(state, m.rng)
		if m.interceptRollout != nil {
			action = m.interceptRollout(node, state, action)
		}
		state.Apply(action)
		if state.Status().IsTerminated() {
			continue
		}

		if outcome, ok := game.EarlyTerminate(state); ok {
			m.metrics.AddEarlyTermination()
			return outcome
		}
	}
}

func policyName(policy any) string {
	return fmt.Sprintf("%T", policy)
}
