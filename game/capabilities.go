package game

import "golang.org/x/exp/rand"

// Optional capabilities. A State implements any of these to change the default
// behaviour used by the searcher, the package-level helpers apply the defaults.

// AvailabilityChecker reports whether a previously enumerated action is still
// available in a (freshly determinized) state. Needed whenever the legal action
// set of an information set varies between determinizations.
type AvailabilityChecker[A comparable] interface {
	IsActionAvailable(action A) bool
}

// Determinizer samples a fully observable instance of the state as seen by
// perspective. Used once per simulation.
type Determinizer[A comparable, P comparable] interface {
	Determinize(perspective P) State[A, P]
}

// RolloutChooser picks rollout actions with a non uniform policy
type RolloutChooser[A comparable] interface {
	RolloutAction(rng *rand.Rand) A
}

// EarlyTerminator ends a rollout early with a heuristic outcome
type EarlyTerminator[P comparable] interface {
	EarlyTerminate() (Outcome[P], bool)
}

// Rewarder overrides how an outcome is converted into a reward for a player
type Rewarder[P comparable] interface {
	RewardForOutcome(player P, outcome Outcome[P]) float64
}

func IsActionAvailable[A comparable, P comparable](s State[A, P], action A) bool {
	if c, ok := s.(AvailabilityChecker[A]); ok {
		return c.IsActionAvailable(action)
	}
	return true
}

// Determinize returns a determinized copy of s, the identity clone by default
func Determinize[A comparable, P comparable](s State[A, P], perspective P) State[A, P] {
	if d, ok := s.(Determinizer[A, P]); ok {
		return d.Determinize(perspective)
	}
	return s.Clone()
}

// RolloutAction draws a uniformly random legal action unless s chooses its own
func RolloutAction[A comparable, P comparable](s State[A, P], rng *rand.Rand) A {
	if c, ok := s.(RolloutChooser[A]); ok {
		return c.RolloutAction(rng)
	}
	actions := s.LegalActions()
	if len(actions) == 0 {
		panic("cannot draw a rollout action: no legal actions")
	}
	return actions[rng.Intn(len(actions))]
}

func EarlyTerminate[A comparable, P comparable](s State[A, P]) (Outcome[P], bool) {
	if t, ok := s.(EarlyTerminator[P]); ok {
		return t.EarlyTerminate()
	}
	return nil, false
}

func RewardFor[A comparable, P comparable](s State[A, P], player P, outcome Outcome[P]) float64 {
	if r, ok := s.(Rewarder[P]); ok {
		return r.RewardForOutcome(player, outcome)
	}
	return outcome.RewardFor(player)
}
