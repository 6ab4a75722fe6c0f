package grid

import "fmt"

type Pos struct {
	X int
	Y int
}

func (p Pos) String() string { return fmt.Sprintf("(%d,%d)", p.X, p.Y) }

type Dir uint8

const (
	Still Dir = iota
	North
	South
	East
	West
)

// Cardinals is the fixed evaluation order for neighbour scans. Ties between
// equally good moves always resolve to the earlier entry.
var Cardinals = [4]Dir{North, South, East, West}

func (d Dir) Delta() (dx, dy int) {
	switch d {
	case North:
		return 0, -1
	case South:
		return 0, 1
	case East:
		return 1, 0
	case West:
		return -1, 0
	default:
		return 0, 0
	}
}

// Letter is the single-character wire form used by the game server.
func (d Dir) Letter() string {
	switch d {
	case North:
		return "n"
	case South:
		return "s"
	case East:
		return "e"
	case West:
		return "w"
	default:
		return "o"
	}
}

func (d Dir) String() string {
	switch d {
	case North:
		return "NORTH"
	case South:
		return "SOUTH"
	case East:
		return "EAST"
	case West:
		return "WEST"
	default:
		return "STILL"
	}
}

func ParseDir(s string) (Dir, error) {
	switch s {
	case "n", "N", "NORTH":
		return North, nil
	case "s", "S", "SOUTH":
		return South, nil
	case "e", "E", "EAST":
		return East, nil
	case "w", "W", "WEST":
		return West, nil
	case "o", "O", "STILL", "":
		return Still, nil
	}
	return Still, fmt.Errorf("unknown direction %q", s)
}

// Topology is the torus the game is played on. Every coordinate computation
// in the bot goes through it.
type Topology struct {
	Width  int
	Height int
}

func New(width, height int) Topology {
	return Topology{Width: width, Height: height}
}

func (t Topology) Area() int { return t.Width * t.Height }

func (t Topology) Wrap(p Pos) Pos {
	return Pos{X: Mod(p.X, t.Width), Y: Mod(p.Y, t.Height)}
}

func (t Topology) Offset(p Pos, d Dir) Pos {
	dx, dy := d.Delta()
	return t.Wrap(Pos{X: p.X + dx, Y: p.Y + dy})
}

// Shift adds an arbitrary offset and wraps the result.
func (t Topology) Shift(p Pos, dx, dy int) Pos {
	return t.Wrap(Pos{X: p.X + dx, Y: p.Y + dy})
}

func (t Topology) axisDist(a, b, size int) int {
	d := AbsInt(Mod(a, size) - Mod(b, size))
	if w := size - d; w < d {
		return w
	}
	return d
}

// Dist is the wrapped Manhattan distance.
func (t Topology) Dist(a, b Pos) int {
	return t.axisDist(a.X, b.X, t.Width) + t.axisDist(a.Y, b.Y, t.Height)
}

func (t Topology) Index(p Pos) int {
	w := t.Wrap(p)
	return w.Y*t.Width + w.X
}

func (t Topology) At(i int) Pos {
	return Pos{X: i % t.Width, Y: i / t.Width}
}

// DirectMoves returns at most two single-axis directions that shorten the
// wrapped distance from src to dst, x axis first. Equal-length wraps go the
// non-wrapping way.
func (t Topology) DirectMoves(src, dst Pos) []Dir {
	s := t.Wrap(src)
	d := t.Wrap(dst)
	out := make([]Dir, 0, 2)

	if s.X != d.X {
		dx := AbsInt(s.X - d.X)
		wrapped := t.Width - dx
		toward, away := East, West
		if s.X > d.X {
			toward, away = West, East
		}
		if dx > wrapped {
			out = append(out, away)
		} else {
			out = append(out, toward)
		}
	}
	if s.Y != d.Y {
		dy := AbsInt(s.Y - d.Y)
		wrapped := t.Height - dy
		toward, away := South, North
		if s.Y > d.Y {
			toward, away = North, South
		}
		if dy > wrapped {
			out = append(out, away)
		} else {
			out = append(out, toward)
		}
	}
	return out
}

// Neighbors returns the four cardinal neighbours in Cardinals order.
func (t Topology) Neighbors(p Pos) [4]Pos {
	var out [4]Pos
	for i, d := range Cardinals {
		out[i] = t.Offset(p, d)
	}
	return out
}
