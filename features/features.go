// Package features turns the 128-byte console RAM into the small discrete
// state the agent learns over.
package features

import (
	"errors"
	"fmt"
	"sort"
)

const RAMSize = 128

// NumFeatures is the arity of a StateKey.
const NumFeatures = 4

// RAM is one snapshot of the console's working memory.
type RAM [RAMSize]byte

// Addr is an offset into RAM.
type Addr int

type Position struct {
	X Addr
	Y Addr
}

// Point is a position read out of a snapshot, widened to int.
type Point struct {
	X int
	Y int
}

// StateKey is (ghost distance bucket, fruit distance bucket, direction, dots bucket).
type StateKey [NumFeatures]int

func (k StateKey) String() string {
	return fmt.Sprintf("(%d, %d, %d, %d)", k[0], k[1], k[2], k[3])
}

// Layout names the RAM addresses of everything the encoder tracks.
type Layout struct {
	Player    Position
	Direction Addr
	Ghosts    []Position
	Fruit     Position
	Progress  Addr
}

// MsPacmanLayout returns the addresses used by Ms. Pac-Man.
func MsPacmanLayout() Layout {
	return Layout{
		Player:    Position{X: 10, Y: 16},
		Direction: 56,
		Ghosts: []Position{
			{X: 9, Y: 15}, // Blinky
			{X: 8, Y: 14}, // Pinky
			{X: 7, Y: 13}, // Inky
			{X: 6, Y: 12}, // Sue
		},
		Fruit:    Position{X: 11, Y: 17},
		Progress: 119,
	}
}

// Bins are ascending bucket boundaries.
type Bins []int

var (
	// DistanceBins buckets Manhattan distances: (0-10), (10-30), (30-80), (80+).
	DistanceBins = Bins{10, 30, 80}
	// ProgressBins buckets the dots-eaten counter by quarters of the ~250 dots.
	ProgressBins = Bins{60, 120, 180}
)

// Digitize returns the number of boundaries <= value, so a value equal to a
// boundary lands in the higher bucket.
func Digitize(value int, bins Bins) int {
	return sort.Search(len(bins), func(i int) bool { return bins[i] > value })
}

func (b Bins) validate() error {
	if len(b) == 0 {
		return errors.New("no boundaries")
	}
	for i := 1; i < len(b); i++ {
		if b[i] <= b[i-1] {
			return fmt.Errorf("boundaries not strictly ascending at index %d (%d <= %d)", i, b[i], b[i-1])
		}
	}
	return nil
}

// Manhattan is |dx| + |dy|.
func Manhattan(a, b Point) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func (r *RAM) at(a Addr) int {
	return int(r[a])
}

func (r *RAM) point(p Position) Point {
	return Point{X: r.at(p.X), Y: r.at(p.Y)}
}
