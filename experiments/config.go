package experiments

import (
	"errors"
	"fmt"
	"os"

	"ismcts/experiments/metrics"

	"gopkg.in/yaml.v3"
)

const (
	TicTacToe = "tictactoe"
	Kuhn      = "kuhn"
)

// Config of an experiment: every matchup plays Games games, alternating the
// agent that moves first
type Config struct {
	Name     string                `yaml:"name"`
	Game     string                `yaml:"game"`
	Games    int                   `yaml:"games"` // Per matchup
	MaxMoves int                   `yaml:"max_moves"`
	Seed     uint64                `yaml:"seed"`
	Output   string                `yaml:"output"`
	Agents   []metrics.AgentConfig `yaml:"agents"`
	MatchUps [][2]int              `yaml:"matchups"` // Pairs of agent IDs
}

// LoadConfig reads and validates a YAML experiment config
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read experiment config: %w", err)
	}
	return ParseConfig(data)
}

func ParseConfig(data []byte) (*Config, error) {
	config := &Config{
		Games:    10,
		MaxMoves: 100,
		Output:   "results",
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse experiment config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid experiment config: %w", err)
	}
	return config, nil
}

func (c *Config) Validate() error {
	if c.Name == "" {
		return errors.New("missing name")
	}
	if c.Game != TicTacToe && c.Game != Kuhn {
		return fmt.Errorf("unknown game %q", c.Game)
	}
	if c.Games < 1 {
		return fmt.Errorf("games must be positive, got %d", c.Games)
	}
	if c.MaxMoves < 1 {
		return fmt.Errorf("max_moves must be positive, got %d", c.MaxMoves)
	}

	ids := map[int]bool{}
	for _, agent := range c.Agents {
		if ids[agent.ID] {
			return fmt.Errorf("duplicate agent id %d", agent.ID)
		}
		ids[agent.ID] = true
		if err := validateAgent(agent); err != nil {
			return fmt.Errorf("agent %d: %w", agent.ID, err)
		}
	}
	if len(c.MatchUps) == 0 {
		return errors.New("missing matchups")
	}
	for _, matchUp := range c.MatchUps {
		for _, id := range matchUp {
			if !ids[id] {
				return fmt.Errorf("matchup %v refers to unknown agent %d", matchUp, id)
			}
		}
	}
	return nil
}

func validateAgent(agent metrics.AgentConfig) error {
	switch agent.Kind {
	case "random":
		return nil
	case "mcts", "training":
	default:
		return fmt.Errorf("unknown kind %q", agent.Kind)
	}

	if agent.Iterations < 1 {
		return fmt.Errorf("iterations must be positive, got %d", agent.Iterations)
	}
	if agent.Kind == "training" && agent.Temperature <= 0 {
		return fmt.Errorf("temperature must be positive, got %v", agent.Temperature)
	}
	switch agent.Policy {
	case "", UCB1, ProgressiveBias, UCB1Tuned, UnexploredActionUrgency:
	case SufficiencyThreshold:
		if agent.Threshold <= 0 || agent.Threshold > 1 {
			return fmt.Errorf("threshold must be in (0, 1], got %v", agent.Threshold)
		}
	default:
		return fmt.Errorf("unknown policy %q", agent.Policy)
	}
	return nil
}

func (c *Config) agent(id int) metrics.AgentConfig {
	for _, agent := range c.Agents {
		if agent.ID == id {
			return agent
		}
	}
	panic(fmt.Sprintf("unknown agent %d", id))
}
