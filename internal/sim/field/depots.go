package field

import "github.com/tchesnutt/halite3/internal/sim/grid"

// DepotIndex caches, for every cell, the nearest friendly depot and the
// wrapped distance to it. It lives across turns and only recomputes when the
// depot list changes.
type DepotIndex struct {
	topo    grid.Topology
	depots  []grid.Pos
	nearest []int32
	dist    []int32

	refreshes int
}

func NewDepotIndex() *DepotIndex {
	return &DepotIndex{}
}

// Refresh recomputes the index if the topology or the ordered depot list
// differs from the cached one. Ties keep the earlier depot, so callers list
// the shipyard first. Reports whether a recompute happened.
func (d *DepotIndex) Refresh(topo grid.Topology, depots []grid.Pos) bool {
	if d.nearest != nil && d.topo == topo && samePositions(d.depots, depots) {
		return false
	}
	d.topo = topo
	d.depots = append(d.depots[:0], depots...)
	n := topo.Area()
	if cap(d.nearest) < n {
		d.nearest = make([]int32, n)
		d.dist = make([]int32, n)
	}
	d.nearest = d.nearest[:n]
	d.dist = d.dist[:n]

	for i := 0; i < n; i++ {
		p := topo.At(i)
		best, bestDist := -1, 0
		for j, dp := range d.depots {
			dd := topo.Dist(p, dp)
			if best < 0 || dd < bestDist {
				best, bestDist = j, dd
			}
		}
		d.nearest[i] = int32(best)
		d.dist[i] = int32(bestDist)
	}
	d.refreshes++
	return true
}

// Nearest returns the nearest depot to p. ok is false when no depot is known.
func (d *DepotIndex) Nearest(p grid.Pos) (depot grid.Pos, dist int, ok bool) {
	if len(d.nearest) == 0 {
		return grid.Pos{}, 0, false
	}
	i := d.topo.Index(p)
	j := d.nearest[i]
	if j < 0 {
		return grid.Pos{}, 0, false
	}
	return d.depots[j], int(d.dist[i]), true
}

func (d *DepotIndex) Depots() []grid.Pos { return d.depots }

// Refreshes counts recomputes since construction.
func (d *DepotIndex) Refreshes() int { return d.refreshes }

func samePositions(a, b []grid.Pos) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
