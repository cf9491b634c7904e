package searcher

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary of the root statistics after a search, meant for logging
type Summary struct {
	Visits  float64 // Total root visits
	Rewards float64 // Total root cumulative reward
}

// WinRates summarizes the win rates of a set of children
type WinRates struct {
	rates []float64
}

func (w *WinRates) Add(rate float64) {
	w.rates = append(w.rates, rate)
}

func (w *WinRates) Count() int {
	return len(w.rates)
}

func (w *WinRates) Mean() float64 {
	if len(w.rates) == 0 {
		return 0
	}
	return stat.Mean(w.rates, nil)
}

// StdDev is the sample standard deviation, 0 with fewer than two rates
func (w *WinRates) StdDev() float64 {
	if len(w.rates) < 2 {
		return 0
	}
	return stat.StdDev(w.rates, nil)
}

func (w *WinRates) Min() float64 {
	if len(w.rates) == 0 {
		return 0
	}
	return floats.Min(w.rates)
}

func (w *WinRates) Max() float64 {
	if len(w.rates) == 0 {
		return 0
	}
	return floats.Max(w.rates)
}

func (w *WinRates) String() string {
	return fmt.Sprintf("(count: %d, mean: %.4f, std_dev: %.4f, min: %.4f, max: %.4f)",
		w.Count(), w.Mean(), w.StdDev(), w.Min(), w.Max())
}

// childWinRates collects the win rates of the visited children of node
func childWinRates[A comparable, P comparable](node *Node[A, P]) *WinRates {
	rates := &WinRates{}
	for _, child := range node.Children() {
		if child.visits > 0 {
			rates.Add(child.WinRate())
		}
	}
	return rates
}
