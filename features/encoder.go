package features

import (
	"errors"
	"fmt"
)

var ErrInvalidConfig = errors.New("invalid encoder config")

type Config struct {
	Layout       Layout
	DistanceBins Bins
	ProgressBins Bins
}

// DefaultConfig is the Ms. Pac-Man layout with the default bins.
func DefaultConfig() Config {
	return Config{
		Layout:       MsPacmanLayout(),
		DistanceBins: append(Bins(nil), DistanceBins...),
		ProgressBins: append(Bins(nil), ProgressBins...),
	}
}

func (c Config) Validate() error {
	addrs := map[string]Addr{
		"player.x":  c.Layout.Player.X,
		"player.y":  c.Layout.Player.Y,
		"direction": c.Layout.Direction,
		"fruit.x":   c.Layout.Fruit.X,
		"fruit.y":   c.Layout.Fruit.Y,
		"progress":  c.Layout.Progress,
	}
	for i, g := range c.Layout.Ghosts {
		addrs[fmt.Sprintf("ghost[%d].x", i)] = g.X
		addrs[fmt.Sprintf("ghost[%d].y", i)] = g.Y
	}
	for name, a := range addrs {
		if a < 0 || a >= RAMSize {
			return fmt.Errorf("%w: %s address %d outside [0,%d)", ErrInvalidConfig, name, a, RAMSize)
		}
	}
	if len(c.Layout.Ghosts) == 0 {
		return fmt.Errorf("%w: no ghosts configured", ErrInvalidConfig)
	}
	if err := c.DistanceBins.validate(); err != nil {
		return fmt.Errorf("%w: distance bins: %v", ErrInvalidConfig, err)
	}
	if err := c.ProgressBins.validate(); err != nil {
		return fmt.Errorf("%w: progress bins: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Encoder is immutable after construction and safe to share.
type Encoder struct {
	layout       Layout
	distanceBins Bins
	progressBins Bins
}

func NewEncoder(cfg Config) (*Encoder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Encoder{
		layout:       cfg.Layout.clone(),
		distanceBins: append(Bins(nil), cfg.DistanceBins...),
		progressBins: append(Bins(nil), cfg.ProgressBins...),
	}, nil
}

func (l Layout) clone() Layout {
	l.Ghosts = append([]Position(nil), l.Ghosts...)
	return l
}

// Observation holds the raw quantities a StateKey is discretised from.
type Observation struct {
	Player        Point
	NearestGhost  int
	GhostDistance int
	FruitDistance int
	Direction     int
	DotsEaten     int
}

func (e *Encoder) Observe(ram *RAM) Observation {
	player := ram.point(e.layout.Player)

	obs := Observation{
		Player:       player,
		NearestGhost: -1,
		Direction:    ram.at(e.layout.Direction),
		DotsEaten:    ram.at(e.layout.Progress),
	}
	for i, g := range e.layout.Ghosts {
		d := Manhattan(player, ram.point(g))
		if obs.NearestGhost < 0 || d < obs.GhostDistance {
			obs.NearestGhost = i
			obs.GhostDistance = d
		}
	}
	obs.FruitDistance = Manhattan(player, ram.point(e.layout.Fruit))
	return obs
}

// Encode returns the StateKey for a snapshot. The direction byte is kept
// verbatim; the distances and the dots counter are bucketed.
func (e *Encoder) Encode(ram *RAM) StateKey {
	return e.Discretize(e.Observe(ram))
}

func (e *Encoder) Discretize(obs Observation) StateKey {
	return StateKey{
		Digitize(obs.GhostDistance, e.distanceBins),
		Digitize(obs.FruitDistance, e.distanceBins),
		obs.Direction,
		Digitize(obs.DotsEaten, e.progressBins),
	}
}
