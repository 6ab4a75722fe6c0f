package field

import "github.com/tchesnutt/halite3/internal/sim/grid"

// GatherMove picks the best one-step gather move from origin. Staying scores
// the origin value when enterable(origin) holds, otherwise blocked. A
// cardinal move scores dest.Value - origin.MoveCost - origin.CollectionAmount
// + bias and must beat the best so far strictly; cardinals are scanned in
// grid.Cardinals order. ok is false when neither staying nor moving is
// possible, in which case Still is returned.
func (f *Field) GatherMove(origin grid.Pos, bias, blocked float64, enterable func(*Cell) bool) (dir grid.Dir, ok bool) {
	o := f.Cell(origin)
	best := blocked
	dir = grid.Still
	if enterable(o) {
		best = o.Value
		ok = true
	}
	for _, d := range grid.Cardinals {
		dest := f.Cell(f.Topo.Offset(origin, d))
		score := dest.Value - o.MoveCost - o.CollectionAmount + bias
		if score > best && enterable(dest) {
			best = score
			dir = d
			ok = true
		}
	}
	return dir, ok
}

// AtPeak reports whether no neighbour beats what p is worth after one more
// collection.
func (f *Field) AtPeak(p grid.Pos) bool {
	o := f.Cell(p)
	base := o.Value - o.CollectionAmount
	for _, n := range f.Topo.Neighbors(p) {
		if f.Cell(n).Value > base {
			return false
		}
	}
	return true
}
