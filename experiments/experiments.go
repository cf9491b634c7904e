package experiments

import (
	"fmt"

	"ismcts/engine"
	"ismcts/experiments/metrics"
	"ismcts/game"
	"ismcts/games/kuhn"
	"ismcts/games/tictactoe"
	"ismcts/searcher"
	"ismcts/searcher/agent"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

// Selection policies by config name
const (
	UCB1                    = "ucb1"
	ProgressiveBias         = "progressive_bias"
	UCB1Tuned               = "ucb1_tuned"
	SufficiencyThreshold    = "sufficiency_threshold"
	UnexploredActionUrgency = "unexplored_action_urgency"
)

// MatchUpResult is the mean reward of the first agent of a matchup
type MatchUpResult struct {
	Agent1     int
	Agent2     int
	Games      int
	Truncated  int
	MeanReward float64 // Of Agent1
}

// Results of an experiment, the records are also written as CSV under Dir
type Results struct {
	Dir      string
	MatchUps []MatchUpResult
	Games    []metrics.GameRecord
	Moves    []metrics.MoveRecord
}

// setup describes how to play one game with the experiment runner
type setup[A comparable, P comparable] struct {
	players   [2]P
	newState  func(rng *rand.Rand) game.State[A, P]
	heuristic game.Evaluate[A, P] // Optional, for progressive bias
}

// Run plays every matchup of config and writes the records. A non nil
// registerer exports the search metrics of every agent to Prometheus.
func Run(config *Config, registerer prometheus.Registerer) (*Results, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid experiment config: %w", err)
	}

	var collector metrics.Collector
	if registerer != nil {
		c, err := metrics.NewPrometheusCollector(registerer)
		if err != nil {
			return nil, err
		}
		collector = c
	}

	var results *Results
	var err error
	switch config.Game {
	case TicTacToe:
		results, err = runExperiment(config, collector, setup[tictactoe.Square, tictactoe.Mark]{
			players: [2]tictactoe.Mark{tictactoe.Cross, tictactoe.Circle},
			newState: func(*rand.Rand) game.State[tictactoe.Square, tictactoe.Mark] {
				return tictactoe.NewPosition()
			},
			heuristic: tictactoe.OpenLines,
		})
	case Kuhn:
		results, err = runExperiment(config, collector, setup[kuhn.Action, kuhn.Player]{
			players: [2]kuhn.Player{kuhn.First, kuhn.Second},
			newState: func(rng *rand.Rand) game.State[kuhn.Action, kuhn.Player] {
				return kuhn.Deal(rng)
			},
		})
	default:
		return nil, fmt.Errorf("unknown game %q", config.Game)
	}
	return results, err
}

func runExperiment[A comparable, P comparable](config *Config, collector metrics.Collector, s setup[A, P]) (*Results, error) {
	rng := rand.New(rand.NewSource(config.Seed))
	results := &Results{}

	log.Info().Msgf("starting %s experiment...", config.Name)

	for mi, matchUp := range config.MatchUps {
		config1 := config.agent(matchUp[0])
		config2 := config.agent(matchUp[1])
		agent1, err := newAgent(config1, collector, rng, s.heuristic)
		if err != nil {
			return nil, fmt.Errorf("failed to create agent %d: %w", config1.ID, err)
		}
		agent2, err := newAgent(config2, collector, rng, s.heuristic)
		if err != nil {
			return nil, fmt.Errorf("failed to create agent %d: %w", config2.ID, err)
		}

		log.Info().Msgf("starting matchup %d of %d between agent1=%+v and agent2=%+v...", mi+1, len(config.MatchUps), config1, config2)

		result := MatchUpResult{Agent1: config1.ID, Agent2: config2.ID, Games: config.Games}
		total := 0.0
		for i := 0; i < config.Games; i++ {
			// Alternate the starting agent
			first, second := s.players[0], s.players[1]
			if i%2 == 1 {
				first, second = second, first
			}
			agents := map[P]agent.Agent[A, P]{first: agent1, second: agent2}

			state := s.newState(rng)
			var e engine.Engine[A, P] = engine.NewLocal(state, agents, engine.WithMaxMoves[A, P](config.MaxMoves))
			outcome, gameMetric, moveMetrics := e.Run()

			reward := game.Tie // Truncated games count as draws
			if outcome != nil {
				reward = game.RewardFor(state, first, outcome)
			} else {
				result.Truncated++
			}
			total += reward

			record := metrics.GameRecord{
				Number:       len(results.Games) + 1,
				Agent1:       config1.ID,
				Agent2:       config2.ID,
				Agent1Player: fmt.Sprint(first),
				Agent1Reward: reward,
				GameMetric:   gameMetric,
			}
			results.Games = append(results.Games, record)
			for _, mm := range moveMetrics {
				results.Moves = append(results.Moves, metrics.MoveRecord{
					Game:       gameMetric.ID,
					MoveMetric: mm,
				})
			}

			log.Debug().Msgf("completed matchup %d of %d game %d with agent1 reward %.2f", mi+1, len(config.MatchUps), i+1, reward)
		}
		result.MeanReward = total / float64(config.Games)
		results.MatchUps = append(results.MatchUps, result)

		log.Info().Msgf("completed matchup %d of %d: agent1 mean reward %.3f", mi+1, len(config.MatchUps), result.MeanReward)
	}

	log.Info().Msgf("completed %s experiment", config.Name)

	dir, err := store(config, results)
	if err != nil {
		return nil, err
	}
	results.Dir = dir
	return results, nil
}

func store(config *Config, results *Results) (string, error) {
	writer, err := metrics.NewWriter(config.Output, config.Name)
	if err != nil {
		return "", fmt.Errorf("failed to create experiment writer: %w", err)
	}

	err = writer.WriteAgentConfigs(config.Agents)
	if err != nil {
		return "", fmt.Errorf("failed to store agent configs: %w", err)
	}
	err = writer.WriteGameRecords(results.Games)
	if err != nil {
		return "", fmt.Errorf("failed to store game records: %w", err)
	}
	err = writer.WriteMoveRecords(results.Moves)
	if err != nil {
		return "", fmt.Errorf("failed to store move records: %w", err)
	}
	log.Info().Str("dir", writer.Dir()).Msg("stored experiment records")

	return writer.Dir(), nil
}

// newAgent builds the agent described by config. MCTS agents get their own
// collector unless a shared one is given.
func newAgent[A comparable, P comparable](config metrics.AgentConfig, collector metrics.Collector, rng *rand.Rand, heuristic game.Evaluate[A, P]) (agent.Agent[A, P], error) {
	if config.Kind == "random" {
		return agent.NewRandomAgent[A, P](rng), nil
	}

	policy, err := NewPolicy(config, heuristic)
	if err != nil {
		return nil, err
	}
	if collector == nil {
		collector = metrics.NewCollector()
	}
	mcts := searcher.NewMCTS(
		searcher.WithPolicy(policy),
		searcher.WithRand[A, P](rng),
		searcher.WithMetrics[A, P](collector),
	)

	if config.Kind == "training" {
		return agent.NewTrainingAgent(mcts, config.Iterations, config.Temperature, rng), nil
	}
	return agent.NewEvaluationAgent(mcts, config.Iterations), nil
}

// NewPolicy builds the selection policy named in config
func NewPolicy[A comparable, P comparable](config metrics.AgentConfig, heuristic game.Evaluate[A, P]) (searcher.Policy[A, P], error) {
	ucb1 := searcher.NewUCB1[A, P]()
	if config.Exploration > 0 {
		ucb1.C = config.Exploration
	}

	switch config.Policy {
	case "", UCB1:
		return ucb1, nil
	case ProgressiveBias:
		if heuristic == nil {
			return nil, fmt.Errorf("no heuristic available for %s", ProgressiveBias)
		}
		return searcher.ProgressiveBias[A, P]{UCB1: ucb1, Heuristic: heuristic}, nil
	case UCB1Tuned:
		return searcher.NewUCB1Tuned[A, P](), nil
	case SufficiencyThreshold:
		return searcher.SufficiencyThreshold[A, P]{UCB1: ucb1, Threshold: config.Threshold}, nil
	case UnexploredActionUrgency:
		return searcher.UnexploredActionUrgency[A, P]{UCB1: ucb1}, nil
	}
	return nil, fmt.Errorf("unknown policy %q", config.Policy)
}
