package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"ismcts/engine"
	"ismcts/experiments"
	"ismcts/experiments/metrics"
	"ismcts/game"
	"ismcts/games/kuhn"
	"ismcts/games/tictactoe"
	"ismcts/searcher"
	"ismcts/searcher/agent"

	"github.com/muesli/termenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/exp/rand"
)

var (
	iterations int
	policyName string
	seed       uint64
	human      string
	hands      int

	playCmd = &cobra.Command{
		Use:   "play",
		Short: "Play a game against (or between) searching agents",
	}
	playTicTacToeCmd = &cobra.Command{
		Use:   "tictactoe",
		Short: "Play tic-tac-toe, squares are numbered 1 to 9 row by row",
		Args:  cobra.NoArgs,
		RunE:  playTicTacToe,
	}
	playKuhnCmd = &cobra.Command{
		Use:   "kuhn",
		Short: "Let a searching agent play Kuhn poker hands against a random agent",
		Args:  cobra.NoArgs,
		RunE:  playKuhn,
	}
)

func init() {
	playCmd.PersistentFlags().IntVar(&iterations, "iterations", 1000, "search iterations per move")
	playCmd.PersistentFlags().StringVar(&policyName, "policy", experiments.UCB1, "selection policy")
	playCmd.PersistentFlags().Uint64Var(&seed, "seed", 0, "random seed, 0 for the current time")
	playTicTacToeCmd.Flags().StringVar(&human, "human", "", "mark played from stdin (X or O), empty for two searching agents")
	playKuhnCmd.Flags().IntVar(&hands, "hands", 10, "number of hands")
	playCmd.AddCommand(playTicTacToeCmd, playKuhnCmd)
}

func newRand() *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewSource(seed))
}

func newSearchAgent[A comparable, P comparable](rng *rand.Rand, heuristic game.Evaluate[A, P]) (agent.Agent[A, P], error) {
	config := metrics.AgentConfig{Kind: "mcts", Policy: policyName, Iterations: iterations}
	policy, err := experiments.NewPolicy(config, heuristic)
	if err != nil {
		return nil, err
	}
	mcts := searcher.NewMCTS(searcher.WithPolicy(policy), searcher.WithRand[A, P](rng))
	return agent.NewEvaluationAgent(mcts, iterations), nil
}

// errNoInput aborts a game once the human player closes stdin
var errNoInput = errors.New("no more input")

func playTicTacToe(cmd *cobra.Command, args []string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok && errors.Is(e, errNoInput) {
				log.Warn().Msg("input closed, stopping the game")
				err = fmt.Errorf("game aborted: %w", e)
				return
			}
			panic(r)
		}
	}()

	rng := newRand()
	out := termenv.NewOutput(cmd.OutOrStdout())
	agents := map[tictactoe.Mark]agent.Agent[tictactoe.Square, tictactoe.Mark]{}
	for _, mark := range []tictactoe.Mark{tictactoe.Cross, tictactoe.Circle} {
		if human == mark.String() {
			agents[mark] = &humanAgent{in: bufio.NewScanner(cmd.InOrStdin()), out: cmd.OutOrStdout()}
			continue
		}
		a, err := newSearchAgent[tictactoe.Square, tictactoe.Mark](rng, tictactoe.OpenLines)
		if err != nil {
			return err
		}
		agents[mark] = a
	}

	position := tictactoe.NewPosition()
	fmt.Fprint(cmd.OutOrStdout(), renderBoard(out, position))
	e := engine.NewLocal[tictactoe.Square, tictactoe.Mark](position, agents, engine.WithObserver[tictactoe.Square, tictactoe.Mark](
		func(step int, player tictactoe.Mark, action tictactoe.Square, state game.State[tictactoe.Square, tictactoe.Mark]) {
			fmt.Fprintf(cmd.OutOrStdout(), "\n%d. %v plays %d\n", step, player, action+1)
			fmt.Fprint(cmd.OutOrStdout(), renderBoard(out, state.(*tictactoe.Position)))
		}))

	outcome, _, _ := e.Run()
	switch reward := game.RewardFor[tictactoe.Square, tictactoe.Mark](position, tictactoe.Cross, outcome); reward {
	case game.Win:
		fmt.Fprintln(cmd.OutOrStdout(), out.String("X wins").Bold())
	case game.Loss:
		fmt.Fprintln(cmd.OutOrStdout(), out.String("O wins").Bold())
	default:
		fmt.Fprintln(cmd.OutOrStdout(), out.String("draw").Bold())
	}
	return nil
}

func renderBoard(out *termenv.Output, p *tictactoe.Position) string {
	var sb strings.Builder
	for row := 0; row < 3; row++ {
		if row > 0 {
			sb.WriteString("---+---+---\n")
		}
		for col := 0; col < 3; col++ {
			if col > 0 {
				sb.WriteByte('|')
			}
			sq := tictactoe.Square(row*3 + col)
			switch mark := p.At(sq); mark {
			case tictactoe.Cross:
				sb.WriteString(out.String(" X ").Foreground(out.Color("1")).Bold().String())
			case tictactoe.Circle:
				sb.WriteString(out.String(" O ").Foreground(out.Color("4")).Bold().String())
			default:
				sb.WriteString(out.String(fmt.Sprintf(" %d ", sq+1)).Faint().String())
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// humanAgent reads squares numbered 1 to 9 until a legal one is entered
type humanAgent struct {
	in  *bufio.Scanner
	out io.Writer
}

func (h *humanAgent) FindAction(state game.State[tictactoe.Square, tictactoe.Mark]) (tictactoe.Square, metrics.SearchMetric) {
	legal := state.LegalActions()
	for {
		fmt.Fprintf(h.out, "%v to play: ", state.Status().MustPlayer())
		if !h.in.Scan() {
			panic(errNoInput)
		}
		n, err := strconv.Atoi(strings.TrimSpace(h.in.Text()))
		sq := tictactoe.Square(n - 1)
		if err == nil && slices.Contains(legal, sq) && game.IsActionAvailable(state, sq) {
			return sq, metrics.SearchMetric{Policy: "human"}
		}
		fmt.Fprintln(h.out, "illegal square")
	}
}

func playKuhn(cmd *cobra.Command, args []string) error {
	rng := newRand()
	out := termenv.NewOutput(cmd.OutOrStdout())
	searching, err := newSearchAgent[kuhn.Action, kuhn.Player](rng, nil)
	if err != nil {
		return err
	}
	random := agent.NewRandomAgent[kuhn.Action, kuhn.Player](rng)

	total := 0.0
	for i := 0; i < hands; i++ {
		// The searching agent alternates seats
		seat := kuhn.Player(i % 2)
		agents := map[kuhn.Player]agent.Agent[kuhn.Action, kuhn.Player]{seat: searching, 1 - seat: random}
		hand := kuhn.Deal(rng)

		outcome, _, _ := engine.NewLocal[kuhn.Action, kuhn.Player](hand, agents).Run()
		reward := game.RewardFor[kuhn.Action, kuhn.Player](hand, seat, outcome)
		total += reward

		style := out.String(fmt.Sprintf("%+.2f", (reward-0.5)*4)).Foreground(out.Color("2"))
		if reward < 0.5 {
			style = style.Foreground(out.Color("1"))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "hand %d: search as %v, %v, chips %s\n", i+1, seat, hand, style)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "mean reward of the searching agent: %.3f\n", total/float64(hands))
	return nil
}
