package engine

import (
	"fmt"
	"time"

	"ismcts/experiments/metrics"
	"ismcts/game"
	"ismcts/searcher/agent"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Observer is notified after every move with the state reached
type Observer[A comparable, P comparable] func(step int, player P, action A, state game.State[A, P])

type Option[A comparable, P comparable] func(l *Local[A, P])

// Local plays a game between in-process agents, one per player
type Local[A comparable, P comparable] struct {
	State    game.State[A, P]
	Agents   map[P]agent.Agent[A, P]
	maxMoves int
	observe  Observer[A, P]
}

func WithMaxMoves[A comparable, P comparable](maxMoves int) Option[A, P] {
	return func(l *Local[A, P]) {
		l.maxMoves = maxMoves
	}
}

func WithObserver[A comparable, P comparable](observe Observer[A, P]) Option[A, P] {
	return func(l *Local[A, P]) {
		l.observe = observe
	}
}

func NewLocal[A comparable, P comparable](state game.State[A, P], agents map[P]agent.Agent[A, P], options ...Option[A, P]) *Local[A, P] {
	if len(agents) == 0 {
		panic("need at least one agent")
	}
	l := &Local[A, P]{
		State:    state,
		Agents:   agents,
		maxMoves: MaxMoves,
	}
	for _, option := range options {
		option(l)
	}
	if l.maxMoves < 1 {
		panic(fmt.Sprintf("max moves must be positive, got %d", l.maxMoves))
	}
	return l
}

// Run executes the entire game loop until the game terminates
func (l *Local[A, P]) Run() (game.Outcome[P], metrics.GameMetric, []metrics.MoveMetric) {
	gameMetric := metrics.GameMetric{
		ID:        uuid.NewString(),
		StartTime: time.Now(),
	}
	var moveMetrics []metrics.MoveMetric

	status := l.State.Status()
	if player, ok := status.Player(); ok {
		gameMetric.StartingPlayer = fmt.Sprint(player)
		log.Info().Str("game", gameMetric.ID).Msgf("player %v is starting", player)
	}

	step := 0
	for ; !status.IsTerminated() && step < l.maxMoves; status = l.State.Status() {
		step++
		player := status.MustPlayer()
		a, ok := l.Agents[player]
		if !ok {
			panic(fmt.Sprintf("no agent plays for player %v", player))
		}

		action, searchMetric := a.FindAction(l.State)
		if !game.IsActionAvailable(l.State, action) {
			panic(fmt.Sprintf("agent of player %v chose unavailable action %v", player, action))
		}
		l.State.Apply(action)

		moveMetrics = append(moveMetrics, metrics.MoveMetric{
			Step:         step,
			Player:       fmt.Sprint(player),
			Action:       fmt.Sprint(action),
			SearchMetric: searchMetric,
		})
		log.Debug().Str("game", gameMetric.ID).Int("step", step).Msgf("player %v played %v", player, action)

		if l.observe != nil {
			l.observe(step, player, action, l.State)
		}
	}

	gameMetric.EndTime = time.Now()
	gameMetric.Duration = gameMetric.EndTime.Sub(gameMetric.StartTime)
	gameMetric.TotalMoves = step

	outcome, ok := status.Outcome()
	if !ok {
		gameMetric.Truncated = true
		log.Warn().Str("game", gameMetric.ID).Msgf("stopped after %d moves without an outcome", step)
		return nil, gameMetric, moveMetrics
	}

	gameMetric.Rewards = make(map[string]float64, len(l.Agents))
	for player := range l.Agents {
		gameMetric.Rewards[fmt.Sprint(player)] = game.RewardFor(l.State, player, outcome)
	}
	log.Info().Str("game", gameMetric.ID).Interface("rewards", gameMetric.Rewards).Msgf("game over after %d moves", step)

	return outcome, gameMetric, moveMetrics
}
