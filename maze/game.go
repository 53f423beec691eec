package maze

import (
	"fmt"
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/EkenoSamson/MsPacman/features"
	"github.com/EkenoSamson/MsPacman/mdp"
)

// Game is one maze. It implements mdp.Environment and is not safe for
// concurrent use.
type Game struct {
	cfg    Config
	board  *board
	layout features.Layout
	log    logrus.FieldLogger

	rng       *rand.Rand
	dots      [][]bool
	dotsLeft  int
	dotsEaten int
	player    cell
	dir       Direction
	ghosts    []cell
	fruitOut  bool
	fruitDone bool
	lives     int
	score     float64
	steps     int
	done      bool
	ram       features.RAM
}

var _ mdp.Environment = (*Game)(nil)

type Option func(*Game)

func WithLogger(log logrus.FieldLogger) Option {
	return func(g *Game) { g.log = log }
}

// New builds a game. It must be Reset before the first Step.
func New(cfg Config, opts ...Option) (*Game, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	b, _ := parse(cfg.Layout)
	g := &Game{
		cfg:    cfg,
		board:  b,
		layout: features.MsPacmanLayout(),
		done:   true,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.log == nil {
		g.log = logrus.StandardLogger()
	}
	return g, nil
}

func (g *Game) NumActions() int { return NumActions }

func (g *Game) Close() error { return nil }

func (g *Game) Lives() int { return g.lives }

func (g *Game) Score() float64 { return g.score }

func (g *Game) Steps() int { return g.steps }

func (g *Game) DotsLeft() int { return g.dotsLeft }

func (g *Game) RAM() features.RAM { return g.ram }

// Reset starts a new game whose ghosts are driven by seed.
func (g *Game) Reset(seed int64) (features.RAM, error) {
	g.rng = rand.New(rand.NewSource(seed))
	g.dots = make([][]bool, g.board.rows)
	for r := range g.dots {
		g.dots[r] = make([]bool, g.board.cols)
	}
	for _, d := range g.board.dots {
		g.dots[d.row][d.col] = true
	}
	g.dotsLeft = len(g.board.dots)
	g.dotsEaten = 0
	g.fruitOut, g.fruitDone = false, !g.board.hasFruit
	g.lives = g.cfg.Lives
	g.score = 0
	g.steps = 0
	g.done = false
	g.respawn()
	g.releaseFruit()
	g.writeRAM()
	return g.ram, nil
}

func (g *Game) respawn() {
	g.player = g.board.player
	g.dir = DirNone
	g.ghosts = append(g.ghosts[:0], g.board.ghosts...)
}

func (g *Game) releaseFruit() {
	if !g.fruitDone && !g.fruitOut && g.dotsEaten >= g.cfg.FruitAfter {
		g.fruitOut = true
	}
}

func (g *Game) Step(action int) (mdp.StepResult, error) {
	if g.done {
		return mdp.StepResult{}, ErrGameOver
	}
	if action < 0 || action >= NumActions {
		return mdp.StepResult{}, fmt.Errorf("%w: %d not in [0,%d)", ErrInvalidAction, action, NumActions)
	}
	g.steps++

	g.movePlayer(Action(action))
	reward := g.eat()

	// a player stepping onto a ghost is caught before the ghosts move, so
	// the two can never pass through each other
	caught := g.collides()
	if !caught {
		g.moveGhosts()
		caught = g.collides()
	}
	if caught {
		g.lives--
		g.log.WithFields(logrus.Fields{"step": g.steps, "lives": g.lives}).Debug("caught by a ghost")
		g.respawn()
	}

	g.score += reward
	res := mdp.StepResult{
		Reward:     reward,
		Terminated: g.lives == 0 || g.dotsLeft == 0,
	}
	res.Truncated = !res.Terminated && g.cfg.MaxSteps > 0 && g.steps >= g.cfg.MaxSteps
	g.done = res.Terminated || res.Truncated

	g.writeRAM()
	res.Observation = g.ram
	return res, nil
}

// movePlayer turns towards the first open direction the action asks for,
// otherwise keeps going the current way.
func (g *Game) movePlayer(a Action) {
	for _, d := range a.wants() {
		if next := g.player.add(d); g.board.open(next) {
			g.player, g.dir = next, d
			return
		}
	}
	if g.dir == DirNone {
		return
	}
	if next := g.player.add(g.dir); g.board.open(next) {
		g.player = next
	}
}

func (g *Game) eat() float64 {
	reward := 0.0
	p := g.player
	if g.dots[p.row][p.col] {
		g.dots[p.row][p.col] = false
		g.dotsLeft--
		g.dotsEaten++
		reward += DotReward
		g.releaseFruit()
	}
	if g.fruitOut && p == g.board.fruit {
		g.fruitOut, g.fruitDone = false, true
		reward += FruitReward
	}
	return reward
}

func (g *Game) collides() bool {
	for _, gh := range g.ghosts {
		if gh == g.player {
			return true
		}
	}
	return false
}

func (g *Game) moveGhosts() {
	for i, gh := range g.ghosts {
		g.ghosts[i] = g.ghostStep(gh)
	}
}

// ghostStep puts Chase extra probability on the open direction that gets
// closest to the player and spreads the rest evenly over all open ones.
func (g *Game) ghostStep(gh cell) cell {
	var open []Direction
	best, bestDist := DirNone, 0
	for _, d := range directions {
		next := gh.add(d)
		if !g.board.open(next) {
			continue
		}
		open = append(open, d)
		if dist := manhattan(next, g.player); best == DirNone || dist < bestDist {
			best, bestDist = d, dist
		}
	}
	if len(open) == 0 {
		return gh
	}

	var pdf mdp.DiscretePdf[Direction]
	share := mdp.Probability((1 - g.cfg.Chase) / float64(len(open)))
	for _, d := range open {
		pdf.Add(d, share)
	}
	pdf.Add(best, mdp.Probability(g.cfg.Chase))
	return gh.add(pdf.Choose(g.rng))
}

func (g *Game) writeRAM() {
	var ram features.RAM
	put := func(p features.Position, c cell) {
		ram[p.X], ram[p.Y] = c.pixel()
	}
	put(g.layout.Player, g.player)
	// unused ghost slots shadow the first ghost so they never read as closer
	for i := range g.layout.Ghosts {
		gh := g.ghosts[0]
		if i < len(g.ghosts) {
			gh = g.ghosts[i]
		}
		put(g.layout.Ghosts[i], gh)
	}
	if g.fruitOut {
		put(g.layout.Fruit, g.board.fruit)
	}
	ram[g.layout.Direction] = byte(g.dir)
	eaten := g.dotsEaten
	if eaten > 255 {
		eaten = 255
	}
	ram[g.layout.Progress] = byte(eaten)
	g.ram = ram
}
