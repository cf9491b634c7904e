// Package tictactoe is a perfect information game for the searcher
package tictactoe

import (
	"fmt"
	"math/bits"
	"strings"

	"ismcts/game"
)

type Mark byte

const (
	Empty  Mark = ' '
	Cross  Mark = 'X'
	Circle Mark = 'O'
)

func (m Mark) String() string {
	return string(m)
}

func (m Mark) Opponent() Mark {
	if m == Cross {
		return Circle
	}
	return Cross
}

// Square indexes the board row by row, 0 is the top left corner
type Square int

// horizontal, vertical and diagonal patterns as bitboards
var winningPatterns = [...]uint16{
	0b111000000, 0b000111000, 0b000000111,
	0b100100100, 0b010010010, 0b001001001,
	0b100010001, 0b001010100,
}

const fullBoard = 0b111111111

func bitboardIdx(m Mark) int {
	if m == Cross {
		return 0
	}
	return 1
}

// Position is a tic-tac-toe board, Cross moves first
type Position struct {
	board     [9]Mark
	bitboards [2]uint16 // Cross, Circle
	turn      Mark
	winner    Mark
}

func NewPosition() *Position {
	p := &Position{turn: Cross, winner: Empty}
	for i := range p.board {
		p.board[i] = Empty
	}
	return p
}

// Parse reads a position from 9 marks row by row ('.' or ' ' for empty
// squares), the player to move is derived from the mark counts
func Parse(marks string) (*Position, error) {
	marks = strings.ReplaceAll(marks, "\n", "")
	if len(marks) != 9 {
		return nil, fmt.Errorf("expected 9 squares, got %d", len(marks))
	}
	p := NewPosition()
	counts := map[Mark]int{}
	for i, c := range marks {
		switch mark := Mark(c); mark {
		case Cross, Circle:
			p.set(Square(i), mark)
			counts[mark]++
		case '.', Empty:
		default:
			return nil, fmt.Errorf("invalid mark %q at square %d", c, i)
		}
	}
	if diff := counts[Cross] - counts[Circle]; diff < 0 || diff > 1 {
		return nil, fmt.Errorf("invalid mark counts: %d crosses, %d circles", counts[Cross], counts[Circle])
	}
	if p.hasLine(Cross) && p.hasLine(Circle) {
		return nil, fmt.Errorf("invalid position: both players have a line")
	}
	if counts[Cross] > counts[Circle] {
		p.turn = Circle
	}
	p.checkWinner()
	return p, nil
}

func (p *Position) set(sq Square, mark Mark) {
	p.board[sq] = mark
	p.bitboards[bitboardIdx(mark)] |= 1 << (8 - sq)
}

func (p *Position) checkWinner() {
	for _, mark := range []Mark{Cross, Circle} {
		if p.hasLine(mark) {
			p.winner = mark
			return
		}
	}
}

func (p *Position) hasLine(mark Mark) bool {
	for _, pattern := range winningPatterns {
		if p.bitboards[bitboardIdx(mark)]&pattern == pattern {
			return true
		}
	}
	return false
}

func (p *Position) occupied() uint16 {
	return p.bitboards[0] | p.bitboards[1]
}

func (p *Position) LegalActions() []Square {
	if p.winner != Empty {
		return nil
	}
	free := uint(fullBoard ^ p.occupied())
	actions := make([]Square, 0, bits.OnesCount(free))
	for sq := Square(0); sq < 9; sq++ {
		if free&(1<<(8-sq)) != 0 {
			actions = append(actions, sq)
		}
	}
	return actions
}

func (p *Position) Apply(sq Square) {
	if sq < 0 || sq > 8 || p.board[sq] != Empty || p.winner != Empty {
		panic(fmt.Sprintf("illegal move %d for %v", sq, p.turn))
	}
	p.set(sq, p.turn)
	p.checkWinner()
	p.turn = p.turn.Opponent()
}

func (p *Position) Status() game.Status[Mark] {
	if p.winner != Empty {
		return game.Terminated[Mark](game.Winner[Mark]{Player: p.winner})
	}
	if p.occupied() == fullBoard {
		return game.Terminated[Mark](game.Draw[Mark]{})
	}
	return game.AwaitingAction(p.turn)
}

func (p *Position) Clone() game.State[Square, Mark] {
	return p.Copy()
}

func (p *Position) Copy() *Position {
	c := *p
	return &c
}

func (p *Position) At(sq Square) Mark {
	return p.board[sq]
}

func (p *Position) Turn() Mark {
	return p.turn
}

func (p *Position) String() string {
	var sb strings.Builder
	for row := 0; row < 3; row++ {
		if row > 0 {
			sb.WriteString("-+-+-\n")
		}
		for col := 0; col < 3; col++ {
			if col > 0 {
				sb.WriteByte('|')
			}
			sb.WriteString(p.board[row*3+col].String())
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// OpenLines is a heuristic for progressive bias: the share of winning lines
// still open to player, in [0, 1]
func OpenLines(state game.State[Square, Mark], player Mark) float64 {
	p := state.(*Position)
	blocked := p.bitboards[bitboardIdx(player.Opponent())]
	open := 0
	for _, pattern := range winningPatterns {
		if blocked&pattern == 0 {
			open++
		}
	}
	return float64(open) / float64(len(winningPatterns))
}
