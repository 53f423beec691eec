package agent

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EkenoSamson/MsPacman/features"
)

var (
	s0 = features.StateKey{0, 1, 2, 3}
	s1 = features.StateKey{3, 2, 1, 0}
)

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestAgent(t *testing.T, numActions int, hp Hyperparameters) *Agent {
	t.Helper()
	a, err := New(numActions, hp, WithSeed(1), WithLogger(quietLogger()))
	require.NoError(t, err)
	return a
}

func greedyParams() Hyperparameters {
	return Hyperparameters{Alpha: 0.5, Gamma: 0.9, Epsilon: 0, EpsilonMin: 0, EpsilonDecay: 1}
}

func TestNewRejectsBadConfig(t *testing.T) {
	_, err := New(0, DefaultHyperparameters())
	assert.ErrorIs(t, err, ErrInvalidConfig)

	bad := []Hyperparameters{
		{Alpha: 1.5, Gamma: 0.9, Epsilon: 1, EpsilonMin: 0.01, EpsilonDecay: 0.99},
		{Alpha: 0.1, Gamma: -0.1, Epsilon: 1, EpsilonMin: 0.01, EpsilonDecay: 0.99},
		{Alpha: 0.1, Gamma: 0.9, Epsilon: 2, EpsilonMin: 0.01, EpsilonDecay: 0.99},
		{Alpha: 0.1, Gamma: 0.9, Epsilon: 1, EpsilonMin: -1, EpsilonDecay: 0.99},
		{Alpha: 0.1, Gamma: 0.9, Epsilon: 1, EpsilonMin: 0.01, EpsilonDecay: 0},
		{Alpha: 0.1, Gamma: 0.9, Epsilon: 1, EpsilonMin: 0.01, EpsilonDecay: 1.01},
	}
	for _, hp := range bad {
		_, err := New(9, hp)
		assert.ErrorIs(t, err, ErrInvalidConfig, "%+v", hp)
	}
}

func TestLazyInit(t *testing.T) {
	a := newTestAgent(t, 9, greedyParams())

	_, ok := a.Table().Lookup(s0)
	require.False(t, ok)

	assert.Equal(t, 0, a.ChooseAction(s0))
	q, ok := a.Table().Lookup(s0)
	require.True(t, ok, "choosing an action materialises the state")
	assert.Equal(t, make([]float64, 9), q)

	require.NoError(t, a.Update(s1, 4, 1, s0, false))
	q, ok = a.Table().Lookup(s1)
	require.True(t, ok)
	assert.Len(t, q, 9)
	assert.Equal(t, 2, a.Table().Len())
}

func TestGreedyTieBreaksOnFirstIndex(t *testing.T) {
	a := newTestAgent(t, 5, greedyParams())
	q := a.Table().GetOrInit(s0)
	q[1], q[3] = 7, 7
	assert.Equal(t, 1, a.Greedy(s0))

	q[4] = 8
	assert.Equal(t, 4, a.Greedy(s0))

	neg := a.Table().GetOrInit(s1)
	for i := range neg {
		neg[i] = -3
	}
	assert.Equal(t, 0, a.Greedy(s1))
}

func TestBellmanUpdate(t *testing.T) {
	a := newTestAgent(t, 4, greedyParams())
	a.Table().GetOrInit(s0)[2] = 2.0
	a.Table().GetOrInit(s1)[3] = 4.0

	require.NoError(t, a.Update(s0, 2, 1.0, s1, false))

	q, _ := a.Table().Lookup(s0)
	assert.InDelta(t, 3.3, q[2], 1e-12)
	// only the updated entry changes
	assert.Equal(t, []float64{0, 0, q[2], 0}, q)
	next, _ := a.Table().Lookup(s1)
	assert.Equal(t, []float64{0, 0, 0, 4.0}, next)
}

func TestTerminalUpdateIgnoresNextState(t *testing.T) {
	a := newTestAgent(t, 4, greedyParams())
	a.Table().GetOrInit(s0)[2] = 2.0
	a.Table().GetOrInit(s1)[3] = 4.0

	require.NoError(t, a.Update(s0, 2, 1.0, s1, true))

	q, _ := a.Table().Lookup(s0)
	// target = reward = 1.0
	assert.InDelta(t, 2.0+0.5*(1.0-2.0), q[2], 1e-12)
}

func TestTerminalUpdateDoesNotMaterialiseNextState(t *testing.T) {
	a := newTestAgent(t, 4, greedyParams())
	require.NoError(t, a.Update(s0, 0, 1.0, s1, true))
	_, ok := a.Table().Lookup(s1)
	assert.False(t, ok)
}

func TestUpdateRejectsActionOutOfRange(t *testing.T) {
	a := newTestAgent(t, 4, greedyParams())
	assert.ErrorIs(t, a.Update(s0, 4, 1, s1, false), ErrActionOutOfRange)
	assert.ErrorIs(t, a.Update(s0, -1, 1, s1, false), ErrActionOutOfRange)
	assert.Equal(t, 0, a.Table().Len())
}

func TestChooseActionDoesNotChangeValues(t *testing.T) {
	a := newTestAgent(t, 3, Hyperparameters{Alpha: 0.1, Gamma: 0.9, Epsilon: 0.5, EpsilonMin: 0, EpsilonDecay: 1})
	q := a.Table().GetOrInit(s0)
	q[2] = 1.5
	for i := 0; i < 200; i++ {
		act := a.ChooseAction(s0)
		require.True(t, act >= 0 && act < 3)
	}
	got, _ := a.Table().Lookup(s0)
	assert.Equal(t, []float64{0, 0, 1.5}, got)
}

func TestChooseActionExploresWithFullEpsilon(t *testing.T) {
	a := newTestAgent(t, 4, Hyperparameters{Alpha: 0.1, Gamma: 0.9, Epsilon: 1, EpsilonMin: 0, EpsilonDecay: 1})
	a.Table().GetOrInit(s0)[0] = 100

	seen := map[int]bool{}
	for i := 0; i < 500; i++ {
		seen[a.ChooseAction(s0)] = true
	}
	assert.Len(t, seen, 4)
}

func TestGreedyIsPureWithZeroEpsilon(t *testing.T) {
	a := newTestAgent(t, 6, greedyParams())
	a.Table().GetOrInit(s0)[5] = 0.25
	for i := 0; i < 50; i++ {
		require.Equal(t, 5, a.ChooseAction(s0))
	}

	// Two agents with different seeds agree when epsilon is zero.
	b, err := New(6, greedyParams(), WithSeed(99), WithLogger(quietLogger()))
	require.NoError(t, err)
	b.Table().GetOrInit(s0)[5] = 0.25
	assert.Equal(t, a.ChooseAction(s0), b.ChooseAction(s0))
}

func TestDecayEpsilonFloor(t *testing.T) {
	a := newTestAgent(t, 2, Hyperparameters{Alpha: 0.1, Gamma: 0.9, Epsilon: 1, EpsilonMin: 0.1, EpsilonDecay: 0.5})

	a.DecayEpsilon()
	assert.Equal(t, 0.5, a.Epsilon())
	a.DecayEpsilon()
	a.DecayEpsilon()
	assert.Equal(t, 0.125, a.Epsilon())

	// .125 * .5 would cross the floor
	a.DecayEpsilon()
	assert.Equal(t, 0.1, a.Epsilon())

	for i := 0; i < 10; i++ {
		a.DecayEpsilon()
	}
	assert.Equal(t, 0.1, a.Epsilon())
}

func TestDecayEpsilonNeverBelowFloorWhenStartingAtFloor(t *testing.T) {
	a := newTestAgent(t, 2, Hyperparameters{Alpha: 0.1, Gamma: 0.9, Epsilon: 0.01, EpsilonMin: 0.01, EpsilonDecay: 0.9})
	for i := 0; i < 5; i++ {
		a.DecayEpsilon()
	}
	assert.Equal(t, 0.01, a.Epsilon())
}

func TestDecayEpsilonSlowApproach(t *testing.T) {
	hp := DefaultHyperparameters()
	hp.EpsilonDecay = 0.99
	a := newTestAgent(t, 9, hp)

	prev := a.Epsilon()
	for i := 0; i < 2000; i++ {
		a.DecayEpsilon()
		require.LessOrEqual(t, a.Epsilon(), prev)
		require.GreaterOrEqual(t, a.Epsilon(), hp.EpsilonMin)
		prev = a.Epsilon()
	}
	assert.Equal(t, hp.EpsilonMin, a.Epsilon())
}
