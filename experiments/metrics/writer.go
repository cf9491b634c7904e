package metrics

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"
)

// AgentConfig describes one agent of an experiment
type AgentConfig struct {
	ID          int     `yaml:"id"`
	Kind        string  `yaml:"kind"`   // "mcts", "training" or "random"
	Policy      string  `yaml:"policy"` // Selection policy of MCTS agents
	Iterations  int     `yaml:"iterations"`
	Exploration float64 `yaml:"exploration"`
	Threshold   float64 `yaml:"threshold"`   // Sufficiency threshold policy only
	Temperature float64 `yaml:"temperature"` // Training agents only
}

type GameRecord struct {
	Number int // Sequence number within the experiment
	Agent1 int // AgentConfig.ID
	Agent2 int // AgentConfig.ID

	Agent1Player string  // Player seat of Agent1
	Agent1Reward float64 // Tie for truncated games
	GameMetric
}

type MoveRecord struct {
	Game string // GameMetric.ID
	MoveMetric
}

type Writer struct {
	baseDir string
}

// NewWriter creates a folder for the experiment name under dir, named by the current timestamp
func NewWriter(dir, name string) (*Writer, error) {
	timestamp := time.Now().UTC().Format("20060102T150405Z")
	baseDir := filepath.Join(dir, name, timestamp)
	err := os.MkdirAll(baseDir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	return &Writer{
		baseDir: baseDir,
	}, nil
}

func (w *Writer) Dir() string {
	return w.baseDir
}

func (w *Writer) WriteAgentConfigs(configs []AgentConfig) error {
	header := []string{"id", "kind", "policy", "iterations", "exploration", "threshold", "temperature"}
	rows := make([][]string, 0, len(configs))
	for _, config := range configs {
		rows = append(rows, []string{
			strconv.Itoa(config.ID),
			config.Kind,
			config.Policy,
			strconv.Itoa(config.Iterations),
			formatFloat(config.Exploration),
			formatFloat(config.Threshold),
			formatFloat(config.Temperature),
		})
	}
	return w.write("agent_configs.csv", header, rows)
}

func (w *Writer) WriteGameRecords(records []GameRecord) error {
	header := []string{"number", "id", "agent1", "agent2", "agent1_player", "agent1_reward", "starting_player", "rewards", "total_moves", "truncated", "start_time", "end_time", "duration"}
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			strconv.Itoa(record.Number),
			record.ID,
			strconv.Itoa(record.Agent1),
			strconv.Itoa(record.Agent2),
			record.Agent1Player,
			formatFloat(record.Agent1Reward),
			record.StartingPlayer,
			formatRewards(record.Rewards),
			strconv.Itoa(record.TotalMoves),
			strconv.FormatBool(record.Truncated),
			record.StartTime.Format(time.RFC3339),
			record.EndTime.Format(time.RFC3339),
			record.Duration.String(),
		})
	}
	return w.write("game_records.csv", header, rows)
}

func (w *Writer) WriteMoveRecords(records []MoveRecord) error {
	header := []string{"game", "step", "player", "action", "policy", "iterations", "duration", "episodes", "full_playouts", "early_terminations", "expansions", "root_visits", "root_rewards"}
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			record.Game,
			strconv.Itoa(record.Step),
			record.Player,
			record.Action,
			record.Policy,
			strconv.Itoa(record.Iterations),
			record.Duration.String(),
			strconv.Itoa(record.Episodes),
			strconv.Itoa(record.FullPlayouts),
			strconv.Itoa(record.EarlyTerminations),
			strconv.Itoa(record.Expansions),
			formatFloat(record.RootVisits),
			formatFloat(record.RootRewards),
		})
	}
	return w.write("move_records.csv", header, rows)
}

func (w *Writer) write(name string, header []string, rows [][]string) error {
	path := filepath.Join(w.baseDir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	err = writer.Write(header)
	if err != nil {
		return fmt.Errorf("failed to write %s header: %w", name, err)
	}
	err = writer.WriteAll(rows) // Flushes
	if err != nil {
		return fmt.Errorf("failed to write %s rows: %w", name, err)
	}
	return nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// formatRewards renders rewards as player=reward pairs sorted by player
func formatRewards(rewards map[string]float64) string {
	players := make([]string, 0, len(rewards))
	for player := range rewards {
		players = append(players, player)
	}
	slices.Sort(players)

	pairs := make([]string, 0, len(players))
	for _, player := range players {
		pairs = append(pairs, player+"="+formatFloat(rewards[player]))
	}
	return strings.Join(pairs, ";")
}
