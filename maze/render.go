package maze

import (
	"bufio"
	"fmt"
	"io"

	"github.com/logrusorgru/aurora"
)

// Render glyphs; they differ from the layout ones where the layout uses
// letters.
const (
	playerGlyph = 'C'
	ghostGlyph  = 'M'
	fruitGlyph  = '%'
)

// Render draws the current frame followed by a status line.
func (g *Game) Render(w io.Writer, colored bool) error {
	au := aurora.NewAurora(colored)
	bw := bufio.NewWriter(w)

	ghosts := make(map[cell]bool, len(g.ghosts))
	for _, gh := range g.ghosts {
		ghosts[gh] = true
	}
	for r := 0; r < g.board.rows; r++ {
		for c := 0; c < g.board.cols; c++ {
			here := cell{r, c}
			switch {
			case here == g.player:
				fmt.Fprint(bw, au.Yellow(string(playerGlyph)))
			case ghosts[here]:
				fmt.Fprint(bw, au.Red(string(ghostGlyph)))
			case g.fruitOut && here == g.board.fruit:
				fmt.Fprint(bw, au.Green(string(fruitGlyph)))
			case g.board.walls[r][c]:
				fmt.Fprint(bw, au.Blue(string(Wall)))
			case g.dots != nil && g.dots[r][c]:
				fmt.Fprint(bw, au.White(string(Dot)))
			default:
				bw.WriteByte(' ')
			}
		}
		bw.WriteByte('\n')
	}
	fmt.Fprintf(bw, "score %s | lives %d | step %d | dots left %d\n",
		au.Bold(fmt.Sprintf("%.0f", g.score)), g.lives, g.steps, g.dotsLeft)
	return bw.Flush()
}
