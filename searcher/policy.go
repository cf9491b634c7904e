package searcher

import (
	"fmt"
	"math"

	"ismcts/game"
)

// Policy scores children during selection. Score is only called for children
// that have been visited at least once, FirstPlayValue covers the others.
type Policy[A comparable, P comparable] interface {
	// FirstPlayValue scores an unvisited child. actions holds the legal actions
	// enumerated by this visit's expansion (nil for an already expanded root).
	// +Inf selects the child immediately.
	FirstPlayValue(state game.State[A, P], parent, child *Node[A, P], actions []A) float64
	Score(state game.State[A, P], parent, child *Node[A, P]) float64
}

// pickChild returns the highest scoring child among those available in state,
// the earliest inserted child wins ties
func pickChild[A comparable, P comparable](policy Policy[A, P], node *Node[A, P], state game.State[A, P], actions []A) *Node[A, P] {
	var best *Node[A, P]
	maxScore := math.Inf(-1)
	for _, action := range node.order {
		if !game.IsActionAvailable(state, action) {
			continue
		}

		child := node.children[action]
		var score float64
		if child.visits == 0 {
			score = policy.FirstPlayValue(state, node, child, actions)
			if math.IsInf(score, 1) {
				return child
			}
		} else {
			score = policy.Score(state, node, child)
		}

		if best == nil || score > maxScore {
			maxScore = score
			best = child
		}
	}

	if best == nil {
		panic(fmt.Sprintf("no available child to select among %d children", len(node.order)))
	}
	return best
}

// UCB1 is the default policy: win rate plus C*sqrt(ln(N)/n), where N is the
// number of times the child's action was available at the parent
type UCB1[A comparable, P comparable] struct {
	C         float64
	FirstPlay float64
}

func NewUCB1[A comparable, P comparable]() UCB1[A, P] {
	return UCB1[A, P]{C: DefaultExploration, FirstPlay: DefaultFirstPlay}
}

func (u UCB1[A, P]) FirstPlayValue(game.State[A, P], *Node[A, P], *Node[A, P], []A) float64 {
	return u.FirstPlay
}

func (u UCB1[A, P]) Score(_ game.State[A, P], parent, child *Node[A, P]) float64 {
	return ucb(child.rewards, child.visits, parent.total(child), u.C)
}

// ProgressiveBias adds a heuristic evaluation of the state reached by the
// child's action to UCB1, decayed by 1/(n+1) so that it fades as real
// simulation results accumulate
type ProgressiveBias[A comparable, P comparable] struct {
	UCB1[A, P]
	Heuristic game.Evaluate[A, P]
}

func NewProgressiveBias[A comparable, P comparable](heuristic game.Evaluate[A, P]) ProgressiveBias[A, P] {
	if heuristic == nil {
		panic("progressive bias requires a heuristic")
	}
	return ProgressiveBias[A, P]{UCB1: NewUCB1[A, P](), Heuristic: heuristic}
}

func (b ProgressiveBias[A, P]) Score(state game.State[A, P], parent, child *Node[A, P]) float64 {
	next := state.Clone()
	next.Apply(child.action)

	bias := b.Heuristic(next, child.player) / (child.visits + 1)
	return b.UCB1.Score(state, parent, child) + bias
}

// UCB1Tuned bounds the exploration term by an estimate of the reward variance,
// assuming Bernoulli distributed rewards
type UCB1Tuned[A comparable, P comparable] struct {
	FirstPlay float64
}

func NewUCB1Tuned[A comparable, P comparable]() UCB1Tuned[A, P] {
	return UCB1Tuned[A, P]{FirstPlay: DefaultFirstPlay}
}

func (u UCB1Tuned[A, P]) FirstPlayValue(game.State[A, P], *Node[A, P], *Node[A, P], []A) float64 {
	return u.FirstPlay
}

func (u UCB1Tuned[A, P]) Score(_ game.State[A, P], parent, child *Node[A, P]) float64 {
	const maxVariance = 0.25 // Of a Bernoulli random variable

	total := parent.total(child)
	if total < 1 {
		panic("cannot compute UCB1-Tuned: child was never available")
	}
	n := child.visits
	mean := child.WinRate()
	variance := mean*(1-mean) + math.Sqrt(2*math.Log(total)/n)

	return mean + math.Sqrt(math.Log(total)/n*math.Min(maxVariance, variance))
}

// SufficiencyThreshold stops exploring around children whose win rate is
// already good enough: at or above Threshold only the win rate counts
type SufficiencyThreshold[A comparable, P comparable] struct {
	UCB1[A, P]
	Threshold float64
}

func NewSufficiencyThreshold[A comparable, P comparable](threshold float64) SufficiencyThreshold[A, P] {
	return SufficiencyThreshold[A, P]{UCB1: NewUCB1[A, P](), Threshold: threshold}
}

func (s SufficiencyThreshold[A, P]) Score(state game.State[A, P], parent, child *Node[A, P]) float64 {
	if rate := child.WinRate(); rate >= s.Threshold {
		return rate
	}
	return s.UCB1.Score(state, parent, child)
}

// UnexploredActionUrgency gives unvisited children a finite first play value
// 0.5 + C*sqrt(ln(N))*u, u being the share of currently legal actions not yet
// explored from the parent. Nodes with many unexplored actions keep trying new
// ones while mostly explored nodes fall back on their best children.
type UnexploredActionUrgency[A comparable, P comparable] struct {
	UCB1[A, P]
}

func NewUnexploredActionUrgency[A comparable, P comparable]() UnexploredActionUrgency[A, P] {
	return UnexploredActionUrgency[A, P]{UCB1: NewUCB1[A, P]()}
}

func (u UnexploredActionUrgency[A, P]) FirstPlayValue(_ game.State[A, P], parent, child *Node[A, P], actions []A) float64 {
	unexplored := 0.0
	candidates := 0.0
	if actions != nil {
		for _, action := range actions {
			if c, ok := parent.children[action]; !ok || c.visits == 0 {
				unexplored++
			}
		}
		candidates = float64(len(actions))
	} else {
		for _, c := range parent.children {
			if c.visits == 0 {
				unexplored++
			}
		}
		candidates = float64(len(parent.children))
	}

	// A child admitted during this visit has not been counted as available yet
	total := math.Max(parent.total(child), 1)
	return 0.5 + u.C*math.Sqrt(math.Log(total))*unexplored/candidates
}
