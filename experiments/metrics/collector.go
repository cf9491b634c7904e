package metrics

import (
	"sync/atomic"
	"time"
)

type SearchMetric struct {
	Policy            string
	Iterations        int
	Duration          time.Duration
	Episodes          int
	FullPlayouts      int // Rollouts that reached a terminal state
	EarlyTerminations int // Rollouts cut short by a heuristic outcome
	Expansions        int // Children added to the tree
	RootVisits        float64
	RootRewards       float64
}

type MoveMetric struct {
	Step   int
	Player string
	Action string
	SearchMetric
}

type GameMetric struct {
	ID             string
	StartingPlayer string
	Rewards        map[string]float64 // Final reward per player
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
	TotalMoves     int
	Truncated      bool // Stopped by the move limit before a terminal state
}

type Collector interface {
	Start(policy string, iterations int)
	AddEpisode()
	AddFullPlayout()
	AddEarlyTermination()
	AddExpansion()
	Complete(rootVisits, rootRewards float64) SearchMetric
}

type collector struct {
	policy            string
	iterations        int
	startTime         time.Time
	episodes          atomic.Int32
	fullPlayouts      atomic.Int32
	earlyTerminations atomic.Int32
	expansions        atomic.Int32
}

func NewCollector() Collector {
	return &collector{}
}

// Start resets the counters for a new search
func (m *collector) Start(policy string, iterations int) {
	m.startTime = time.Now()
	m.policy = policy
	m.iterations = iterations
	m.episodes.Store(0)
	m.fullPlayouts.Store(0)
	m.earlyTerminations.Store(0)
	m.expansions.Store(0)
}

func (m *collector) AddEpisode() {
	m.episodes.Add(1)
}

func (m *collector) AddFullPlayout() {
	m.fullPlayouts.Add(1)
}

func (m *collector) AddEarlyTermination() {
	m.earlyTerminations.Add(1)
}

func (m *collector) AddExpansion() {
	m.expansions.Add(1)
}

func (m *collector) Complete(rootVisits, rootRewards float64) SearchMetric {
	return SearchMetric{
		Policy:            m.policy,
		Iterations:        m.iterations,
		Duration:          time.Since(m.startTime),
		Episodes:          int(m.episodes.Load()),
		FullPlayouts:      int(m.fullPlayouts.Load()),
		EarlyTerminations: int(m.earlyTerminations.Load()),
		Expansions:        int(m.expansions.Load()),
		RootVisits:        rootVisits,
		RootRewards:       rootRewards,
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start(policy string, iterations int) {}
func (m *dummyCollector) AddEpisode()                         {}
func (m *dummyCollector) AddFullPlayout()                     {}
func (m *dummyCollector) AddEarlyTermination()                {}
func (m *dummyCollector) AddExpansion()                       {}
func (m *dummyCollector) Complete(rootVisits, rootRewards float64) SearchMetric {
	return SearchMetric{}
}
