package searcher

import (
	"fmt"
	"slices"

	"ismcts/game"

	"golang.org/x/exp/rand"
)

// Node holds the statistics of one action history. A node stands for every
// state indistinguishable to the searcher, so the set of legal actions seen
// through it can change from one determinization to the next.
type Node[A comparable, P comparable] struct {
	player       P // Player whose decision the statistics serve
	action       A
	root         bool
	rewards      float64
	visits       float64
	order        []A // Children in insertion order, for deterministic tie breaks
	children     map[A]*Node[A, P]
	availability map[A]int
}

func newRoot[A comparable, P comparable](player P) *Node[A, P] {
	return &Node[A, P]{
		player:       player,
		root:         true,
		children:     map[A]*Node[A, P]{},
		availability: map[A]int{},
	}
}

func newNode[A comparable, P comparable](player P, action A) *Node[A, P] {
	return &Node[A, P]{
		player:       player,
		action:       action,
		children:     map[A]*Node[A, P]{},
		availability: map[A]int{},
	}
}

// expand records which actions are available in state and grows the node.
// The root receives a child for every action on its first expansion and never
// changes afterwards, any other node gains at most one new child per visit.
// Returns the shuffled legal actions, or nil for an already expanded root.
func (n *Node[A, P]) expand(state game.State[A, P], rng *rand.Rand) []A {
	if n.root && len(n.children) > 0 {
		return nil
	}

	player := state.Status().MustPlayer()
	actions := slices.Clone(state.LegalActions())
	if len(actions) == 0 {
		panic(fmt.Sprintf("player %v is awaiting an action but has no legal actions", player))
	}
	// Shuffle so that a single admitted child is not biased by move generation order
	rng.Shuffle(len(actions), func(i, j int) {
		actions[i], actions[j] = actions[j], actions[i]
	})

	added := false
	for _, action := range actions {
		// The first sighting only registers the action
		if _, seen := n.availability[action]; seen {
			n.availability[action]++
		} else {
			n.availability[action] = 0
		}

		if n.root || (!added && !n.Has(action)) {
			n.addChild(player, action)
			added = true
		}
	}
	return actions
}

func (n *Node[A, P]) addChild(player P, action A) {
	if _, ok := n.children[action]; !ok {
		n.order = append(n.order, action)
	}
	n.children[action] = newNode[A, P](player, action)
}

// Record adds a (weighted) simulation result to the node
func (n *Node[A, P]) Record(reward, weight float64) {
	n.rewards += reward
	n.visits += weight
}

func (n *Node[A, P]) IsRoot() bool {
	return n.root
}

// Action returns the action leading to this node, ok is false for the root
func (n *Node[A, P]) Action() (action A, ok bool) {
	if n.root {
		return action, false
	}
	return n.action, true
}

func (n *Node[A, P]) Player() P {
	return n.player
}

func (n *Node[A, P]) Visits() float64 {
	return n.visits
}

func (n *Node[A, P]) Rewards() float64 {
	return n.rewards
}

// WinRate is the mean reward, only meaningful once the node has been visited
func (n *Node[A, P]) WinRate() float64 {
	if n.visits == 0 {
		panic("cannot compute win rate: 0 visits")
	}
	return n.rewards / n.visits
}

// Availability returns how many times action was seen legal here, not
// counting its first sighting
func (n *Node[A, P]) Availability(action A) int {
	return n.availability[action]
}

func (n *Node[A, P]) Has(action A) bool {
	_, ok := n.children[action]
	return ok
}

func (n *Node[A, P]) Child(action A) (*Node[A, P], bool) {
	child, ok := n.children[action]
	return child, ok
}

// Children returns the children in insertion order
func (n *Node[A, P]) Children() []*Node[A, P] {
	children := make([]*Node[A, P], 0, len(n.order))
	for _, action := range n.order {
		children = append(children, n.children[action])
	}
	return children
}

// total is N in the UCB formulas: the root always offers the same actions so its
// own visit count is used, elsewhere the availability of the child's action
func (n *Node[A, P]) total(child *Node[A, P]) float64 {
	if n.root {
		return n.visits
	}
	return float64(n.availability[child.action])
}

// mostVisited returns the child with the most visits. Equally visited children
// are told apart by win rate, then by insertion order.
func (n *Node[A, P]) mostVisited() *Node[A, P] {
	if len(n.order) == 0 {
		panic("node has no children")
	}

	var best *Node[A, P]
	for _, action := range n.order {
		child := n.children[action]
		switch {
		case best == nil || child.visits > best.visits:
			best = child
		case child.visits == best.visits && child.visits > 0 && child.WinRate() > best.WinRate():
			best = child
		}
	}
	return best
}
