package agent

import (
	"math"
	"sort"

	"github.com/EkenoSamson/MsPacman/features"
)

// QTable maps a state to one value estimate per action. Entries are created
// on first access and never removed.
type QTable struct {
	numActions int
	values     map[features.StateKey][]float64
}

func NewQTable(numActions int) *QTable {
	return &QTable{
		numActions: numActions,
		values:     make(map[features.StateKey][]float64),
	}
}

func (t *QTable) NumActions() int { return t.numActions }

func (t *QTable) Len() int { return len(t.values) }

// GetOrInit returns the value vector for s, inserting a zero vector first if
// s has not been seen. The returned slice aliases the table.
func (t *QTable) GetOrInit(s features.StateKey) []float64 {
	q, ok := t.values[s]
	if !ok {
		q = make([]float64, t.numActions)
		t.values[s] = q
	}
	return q
}

// Lookup returns a copy of the vector for s without inserting it.
func (t *QTable) Lookup(s features.StateKey) ([]float64, bool) {
	q, ok := t.values[s]
	if !ok {
		return nil, false
	}
	return append([]float64(nil), q...), true
}

// Keys returns every state in lexicographic order.
func (t *QTable) Keys() []features.StateKey {
	keys := make([]features.StateKey, 0, len(t.values))
	for k := range t.values {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keyLess(keys[i], keys[j]) })
	return keys
}

func keyLess(a, b features.StateKey) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// argmax returns the first index holding the largest value.
func argmax(q []float64) int {
	bestA := 0
	bestV := math.Inf(-1)
	for a, v := range q {
		if v > bestV {
			bestV = v
			bestA = a
		}
	}
	return bestA
}

func maxValue(q []float64) float64 {
	best := q[0]
	for _, v := range q[1:] {
		if v > best {
			best = v
		}
	}
	return best
}
