// Package maze is a small arcade maze game that publishes its state through
// the same RAM addresses as Ms. Pac-Man, so the agent can be trained and
// evaluated without an emulator.
package maze

import (
	"errors"
	"fmt"

	"github.com/EkenoSamson/MsPacman/features"
)

var (
	ErrInvalidLayout = errors.New("invalid maze layout")
	ErrInvalidConfig = errors.New("invalid maze config")
	ErrInvalidAction = errors.New("invalid action")
	ErrGameOver      = errors.New("game over, call Reset")
)

// Layout glyphs.
const (
	Wall   = '#'
	Dot    = '.'
	Empty  = ' '
	Player = 'P'
	Ghost  = 'G'
	Fruit  = 'F'
)

// maxCells keeps pixel coordinates (cell*8+4) inside a byte.
const maxCells = 32

const (
	DotReward   = 10
	FruitReward = 100
)

// DefaultLayout is a 19x17 maze with a ghost house in the middle.
var DefaultLayout = []string{
	"###################",
	"#........#........#",
	"#.##.###.#.###.##.#",
	"#.................#",
	"#.##.#.#####.#.##.#",
	"#....#...#...#....#",
	"####.### # ###.####",
	"#....  GG GG  ....#",
	"####.# ##### #.####",
	"#........#........#",
	"#.##.###.#.###.##.#",
	"#..#.....P.....#..#",
	"#.##.#.#####.#.##.#",
	"#....#...#...#....#",
	"#.#####..#..#####.#",
	"#F................#",
	"###################",
}

type Config struct {
	Layout     []string
	Lives      int
	MaxSteps   int     // 0 means no truncation
	Chase      float64 // probability a ghost takes the step closing in on the player
	FruitAfter int     // dots to eat before the fruit appears
}

func DefaultConfig() Config {
	return Config{
		Layout:     DefaultLayout,
		Lives:      3,
		MaxSteps:   2000,
		Chase:      0.5,
		FruitAfter: 64,
	}
}

type cell struct {
	row, col int
}

func (c cell) add(d Direction) cell {
	dr, dc := d.delta()
	return cell{c.row + dr, c.col + dc}
}

func (c cell) pixel() (x, y byte) {
	return byte(c.col*8 + 4), byte(c.row*8 + 4)
}

func manhattan(a, b cell) int {
	return abs(a.row-b.row) + abs(a.col-b.col)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// board is a parsed layout.
type board struct {
	rows, cols int
	walls      [][]bool
	dots       []cell
	player     cell
	ghosts     []cell
	fruit      cell
	hasFruit   bool
}

func (b *board) open(c cell) bool {
	return c.row >= 0 && c.row < b.rows && c.col >= 0 && c.col < b.cols && !b.walls[c.row][c.col]
}

func parse(layout []string) (*board, error) {
	if len(layout) == 0 || len(layout) > maxCells {
		return nil, fmt.Errorf("%w: %d rows, want 1..%d", ErrInvalidLayout, len(layout), maxCells)
	}
	b := &board{rows: len(layout), cols: len(layout[0])}
	if b.cols == 0 || b.cols > maxCells {
		return nil, fmt.Errorf("%w: %d columns, want 1..%d", ErrInvalidLayout, b.cols, maxCells)
	}

	players := 0
	for r, line := range layout {
		if len(line) != b.cols {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrInvalidLayout, r, len(line), b.cols)
		}
		b.walls = append(b.walls, make([]bool, b.cols))
		for c, ch := range line {
			here := cell{r, c}
			switch ch {
			case Wall:
				b.walls[r][c] = true
			case Dot:
				b.dots = append(b.dots, here)
			case Empty:
			case Player:
				players++
				b.player = here
			case Ghost:
				b.ghosts = append(b.ghosts, here)
			case Fruit:
				if b.hasFruit {
					return nil, fmt.Errorf("%w: more than one fruit", ErrInvalidLayout)
				}
				b.fruit, b.hasFruit = here, true
			default:
				return nil, fmt.Errorf("%w: unknown glyph %q at row %d column %d", ErrInvalidLayout, ch, r, c)
			}
		}
	}

	tracked := len(features.MsPacmanLayout().Ghosts)
	switch {
	case players != 1:
		return nil, fmt.Errorf("%w: %d players, want 1", ErrInvalidLayout, players)
	case len(b.ghosts) == 0 || len(b.ghosts) > tracked:
		return nil, fmt.Errorf("%w: %d ghosts, want 1..%d", ErrInvalidLayout, len(b.ghosts), tracked)
	case len(b.dots) == 0:
		return nil, fmt.Errorf("%w: no dots", ErrInvalidLayout)
	}
	return b, nil
}

func (c Config) Validate() error {
	if _, err := parse(c.Layout); err != nil {
		return err
	}
	switch {
	case c.Lives <= 0:
		return fmt.Errorf("%w: lives %d must be positive", ErrInvalidConfig, c.Lives)
	case c.MaxSteps < 0:
		return fmt.Errorf("%w: max steps %d must not be negative", ErrInvalidConfig, c.MaxSteps)
	case c.Chase < 0 || c.Chase > 1:
		return fmt.Errorf("%w: chase probability %v not in [0,1]", ErrInvalidConfig, c.Chase)
	case c.FruitAfter < 0:
		return fmt.Errorf("%w: fruit threshold %d must not be negative", ErrInvalidConfig, c.FruitAfter)
	}
	return nil
}
