// Package mdp drives an agent through episodes of an environment: the
// encode, act, step, learn loop plus the training and evaluation runs built
// on top of it.
package mdp

import (
	"github.com/EkenoSamson/MsPacman/features"
)

// Environment is a game that exposes its RAM after every step.
type Environment interface {
	Reset(seed int64) (features.RAM, error)
	Step(action int) (StepResult, error)
	NumActions() int
	Close() error
}

type StepResult struct {
	Observation features.RAM
	Reward      float64
	Terminated  bool // the game ended
	Truncated   bool // the step limit was reached
}

type Encoder interface {
	Encode(ram *features.RAM) features.StateKey
}

type Policy interface {
	ChooseAction(s features.StateKey) int
}

// Updater is implemented by policies that learn from each transition.
type Updater interface {
	Update(s features.StateKey, action int, reward float64, next features.StateKey, terminated bool) error
}

// Learner is what Train needs; *agent.Agent satisfies it.
type Learner interface {
	Policy
	Updater
	DecayEpsilon()
	Epsilon() float64
}

type Transition struct {
	State0     features.StateKey
	Action     int
	State1     features.StateKey
	Reward     float64
	Terminated bool
}

// Episode summarises one finished episode.
type Episode struct {
	TotalReward float64
	Steps       int
	Terminated  bool
	Truncated   bool
}

// frozen hides Update so a learning policy can be run without changing it.
type frozen struct {
	Policy
}

// Frozen returns p restricted to action selection.
func Frozen(p Policy) Policy {
	return frozen{p}
}
