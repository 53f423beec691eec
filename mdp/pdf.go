package mdp

import (
	"fmt"
	"math"
	"math/rand"
)

type Probability float64

// DiscretePdf is a finite distribution. Outcomes keep the order they were
// added in, so sampling with a seeded source is reproducible.
type DiscretePdf[T comparable] struct {
	outcomes []T
	probs    []Probability
}

// Add puts prob more mass on outcome.
func (p *DiscretePdf[T]) Add(outcome T, prob Probability) {
	for i, o := range p.outcomes {
		if o == outcome {
			p.probs[i] += prob
			return
		}
	}
	p.outcomes = append(p.outcomes, outcome)
	p.probs = append(p.probs, prob)
}

func (p DiscretePdf[T]) Len() int { return len(p.outcomes) }

func (p DiscretePdf[T]) Prob(outcome T) Probability {
	for i, o := range p.outcomes {
		if o == outcome {
			return p.probs[i]
		}
	}
	return 0
}

func (p DiscretePdf[T]) Choose(rng *rand.Rand) T {
	p.Check()
	v := rng.Float64()
	cumulative := 0.0
	for i, prob := range p.probs {
		cumulative += float64(prob)
		if v < cumulative {
			return p.outcomes[i]
		}
	}
	// rounding left v above the total
	for i := len(p.probs) - 1; i >= 0; i-- {
		if p.probs[i] > 0 {
			return p.outcomes[i]
		}
	}
	return p.outcomes[len(p.outcomes)-1]
}

// Check panics unless the probabilities sum to one.
func (p DiscretePdf[T]) Check() {
	sum := 0.0
	for _, prob := range p.probs {
		if prob < 0 {
			panic(fmt.Sprintf("negative probability %v", prob))
		}
		sum += float64(prob)
	}
	if math.Abs(sum-1) > .001 {
		panic(fmt.Sprintf("probabilities sum to %v, not 1", sum))
	}
}
