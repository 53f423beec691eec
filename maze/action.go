package maze

// Action is the joystick input, numbered like the arcade's full action set.
type Action int

const (
	NOOP Action = iota
	UP
	RIGHT
	LEFT
	DOWN
	UPRIGHT
	UPLEFT
	DOWNRIGHT
	DOWNLEFT
)

const NumActions = 9

var actionNames = [NumActions]string{
	"NOOP", "UP", "RIGHT", "LEFT", "DOWN", "UPRIGHT", "UPLEFT", "DOWNRIGHT", "DOWNLEFT",
}

func (a Action) String() string {
	if a < 0 || a >= NumActions {
		return "UNKNOWN"
	}
	return actionNames[a]
}

// Direction is the facing value written to RAM.
type Direction byte

const (
	DirNone Direction = iota
	DirUp
	DirRight
	DirLeft
	DirDown
)

var directions = [...]Direction{DirUp, DirRight, DirLeft, DirDown}

func (d Direction) delta() (dr, dc int) {
	switch d {
	case DirUp:
		return -1, 0
	case DirDown:
		return 1, 0
	case DirLeft:
		return 0, -1
	case DirRight:
		return 0, 1
	}
	return 0, 0
}

// wants lists the directions an action asks for, in order of preference.
func (a Action) wants() []Direction {
	switch a {
	case UP:
		return []Direction{DirUp}
	case RIGHT:
		return []Direction{DirRight}
	case LEFT:
		return []Direction{DirLeft}
	case DOWN:
		return []Direction{DirDown}
	case UPRIGHT:
		return []Direction{DirUp, DirRight}
	case UPLEFT:
		return []Direction{DirUp, DirLeft}
	case DOWNRIGHT:
		return []Direction{DirDown, DirRight}
	case DOWNLEFT:
		return []Direction{DirDown, DirLeft}
	}
	return nil
}
