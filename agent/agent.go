// Package agent is a tabular Q-learning agent with an epsilon-greedy policy.
//
// An Agent is not safe for concurrent use; it is driven by one training or
// evaluation loop at a time.
package agent

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/EkenoSamson/MsPacman/features"
)

var (
	ErrInvalidConfig    = errors.New("invalid agent config")
	ErrActionOutOfRange = errors.New("action out of range")
)

type Hyperparameters struct {
	Alpha        float64 // learning rate
	Gamma        float64 // discount factor
	Epsilon      float64 // initial exploration rate
	EpsilonMin   float64
	EpsilonDecay float64 // multiplier applied once per DecayEpsilon call
}

func DefaultHyperparameters() Hyperparameters {
	return Hyperparameters{
		Alpha:        0.1,
		Gamma:        0.99,
		Epsilon:      1.0,
		EpsilonMin:   0.01,
		EpsilonDecay: 0.9999,
	}
}

func inUnit(v float64) bool { return v >= 0 && v <= 1 }

func (h Hyperparameters) Validate() error {
	switch {
	case !inUnit(h.Alpha):
		return fmt.Errorf("%w: alpha %v not in [0,1]", ErrInvalidConfig, h.Alpha)
	case !inUnit(h.Gamma):
		return fmt.Errorf("%w: gamma %v not in [0,1]", ErrInvalidConfig, h.Gamma)
	case !inUnit(h.Epsilon):
		return fmt.Errorf("%w: epsilon %v not in [0,1]", ErrInvalidConfig, h.Epsilon)
	case !inUnit(h.EpsilonMin):
		return fmt.Errorf("%w: epsilon min %v not in [0,1]", ErrInvalidConfig, h.EpsilonMin)
	case !(h.EpsilonDecay > 0 && h.EpsilonDecay <= 1):
		return fmt.Errorf("%w: epsilon decay %v not in (0,1]", ErrInvalidConfig, h.EpsilonDecay)
	}
	return nil
}

type Agent struct {
	numActions int
	params     Hyperparameters
	epsilon    float64
	table      *QTable
	rng        *rand.Rand
	log        logrus.FieldLogger
}

type Option func(*Agent)

func WithRand(rng *rand.Rand) Option {
	return func(a *Agent) { a.rng = rng }
}

func WithSeed(seed int64) Option {
	return WithRand(rand.New(rand.NewSource(seed)))
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(a *Agent) { a.log = log }
}

func New(numActions int, params Hyperparameters, opts ...Option) (*Agent, error) {
	if numActions <= 0 {
		return nil, fmt.Errorf("%w: action space size %d", ErrInvalidConfig, numActions)
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	a := &Agent{
		numActions: numActions,
		params:     params,
		epsilon:    params.Epsilon,
		table:      NewQTable(numActions),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.rng == nil {
		a.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if a.log == nil {
		a.log = logrus.StandardLogger()
	}
	return a, nil
}

func (a *Agent) NumActions() int { return a.numActions }

func (a *Agent) Epsilon() float64 { return a.epsilon }

func (a *Agent) Hyperparameters() Hyperparameters { return a.params }

func (a *Agent) Table() *QTable { return a.table }

// ChooseAction explores with probability epsilon, otherwise acts greedily.
// With epsilon at zero the random source is never consulted.
func (a *Agent) ChooseAction(s features.StateKey) int {
	if a.epsilon > 0 && a.rng.Float64() < a.epsilon {
		return a.rng.Intn(a.numActions)
	}
	return a.Greedy(s)
}

// Greedy returns the best known action for s, the lowest index on ties.
func (a *Agent) Greedy(s features.StateKey) int {
	return argmax(a.table.GetOrInit(s))
}

// Update applies Q(s,a) <- Q(s,a) + alpha * (r + gamma * max Q(s',·) - Q(s,a)).
// The future term is zero when the episode terminated at s'.
func (a *Agent) Update(s features.StateKey, action int, reward float64, next features.StateKey, terminated bool) error {
	if action < 0 || action >= a.numActions {
		return fmt.Errorf("%w: %d not in [0,%d)", ErrActionOutOfRange, action, a.numActions)
	}
	q := a.table.GetOrInit(s)
	current := q[action]

	maxFuture := 0.0
	if !terminated {
		maxFuture = maxValue(a.table.GetOrInit(next))
	}

	target := reward + a.params.Gamma*maxFuture
	q[action] = current + a.params.Alpha*(target-current)
	return nil
}

// DecayEpsilon multiplies epsilon by the decay rate while it is above the
// floor. A step that would cross the floor lands on it.
func (a *Agent) DecayEpsilon() {
	if a.epsilon > a.params.EpsilonMin {
		a.epsilon = math.Max(a.epsilon*a.params.EpsilonDecay, a.params.EpsilonMin)
	}
}

func (a *Agent) Save(path string) error {
	if err := WriteFile(path, a.table); err != nil {
		return err
	}
	a.log.WithFields(logrus.Fields{"path": path, "states": a.table.Len()}).Info("q-table saved")
	return nil
}

// Load replaces the table with the one stored at path. The current table is
// kept if loading fails.
func (a *Agent) Load(path string) error {
	t, err := ReadFile(path, a.numActions)
	if err != nil {
		return err
	}
	a.table = t
	a.log.WithFields(logrus.Fields{"path": path, "states": t.Len()}).Info("q-table loaded")
	return nil
}
