package game

// Any game that aims to be playable by an MCTS agent implements State (the
// searcher package only depends on this package, concrete games import it)

// State is a mutable decision process. Apply mutates the receiver in place, use
// Clone to branch off an independent copy.
type State[A comparable, P comparable] interface {
	// LegalActions returns every action legal from the current state
	LegalActions() []A
	// Apply plays an action in place. Applying an illegal action is a contract
	// violation and implementations may panic
	Apply(action A)
	Status() Status[P]
	Clone() State[A, P]
}

// Outcome of a terminated game
type Outcome[P comparable] interface {
	// RewardFor returns the reward of a player, canonically in [0, 1] with draws as 0.5
	RewardFor(player P) float64
}

// Status is either "awaiting an action from a player" or "terminated with an outcome"
type Status[P comparable] struct {
	player     P
	outcome    Outcome[P]
	terminated bool
}

func AwaitingAction[P comparable](player P) Status[P] {
	return Status[P]{player: player}
}

func Terminated[P comparable](outcome Outcome[P]) Status[P] {
	if outcome == nil {
		panic("terminated status requires an outcome")
	}
	return Status[P]{outcome: outcome, terminated: true}
}

// Player returns the player to act, ok is false once the game has terminated
func (s Status[P]) Player() (player P, ok bool) {
	if s.terminated {
		return player, false
	}
	return s.player, true
}

// Outcome returns the final outcome, ok is false while the game is ongoing
func (s Status[P]) Outcome() (Outcome[P], bool) {
	if !s.terminated {
		return nil, false
	}
	return s.outcome, true
}

func (s Status[P]) IsTerminated() bool {
	return s.terminated
}

// MustPlayer returns the player to act and panics if the game has terminated
func (s Status[P]) MustPlayer() P {
	if s.terminated {
		panic("no player to act: game has terminated")
	}
	return s.player
}
