// Package field builds the per-turn potential field the bot steers by: a
// halite value per cell smoothed by diffusion, annotated with agent pressure,
// occupancy and the nearest friendly depot.
package field

import (
	"github.com/tchesnutt/halite3/internal/sim/game"
	"github.com/tchesnutt/halite3/internal/sim/grid"
	"github.com/tchesnutt/halite3/internal/sim/tuning"
)

type Field struct {
	Topo grid.Topology

	cells      []Cell
	home       grid.Pos
	heap       maxHeap
	candidates []grid.Pos
	remaining  int
}

// Build derives this turn's field from the state. depots must already be
// refreshed with state.MyDepots().
func Build(s *game.State, depots *DepotIndex, cfg tuning.Tuning) *Field {
	f := &Field{
		Topo:  s.Topo,
		cells: make([]Cell, s.Topo.Area()),
		home:  s.Me().Shipyard,
		heap:  make(maxHeap, 0, s.Topo.Area()*max(cfg.Field.DiffusionPasses, 1)),
	}
	f.seed(s, depots)
	f.markEnemies(s)
	f.applyPressure(s, cfg.Field)
	f.diffuse(cfg.Field.DiffusionPasses, cfg.Field.DiffusionRadiusFor(s.Topo.Width))
	if cfg.Field.PredictEnemies {
		f.predictEnemies(s, cfg.Policy)
	}
	f.defend(s, cfg.Field.DefenseSentinel)
	return f
}

func (f *Field) seed(s *game.State, depots *DepotIndex) {
	for i := range f.cells {
		p := f.Topo.At(i)
		h := s.Halite[i]
		c := &f.cells[i]
		c.Pos = p
		c.Halite = h
		if s.Constants.ExtractRatio > 0 {
			c.CollectionAmount = float64(h) / float64(s.Constants.ExtractRatio)
		}
		if s.Constants.MoveCostRatio > 0 {
			c.MoveCost = float64(h) / float64(s.Constants.MoveCostRatio)
		}
		c.Value = c.CollectionAmount
		if d, dist, ok := depots.Nearest(p); ok {
			c.NearestDepot = d
			c.DistanceToDepot = dist
		}
		f.remaining += h
	}
}

func (f *Field) markEnemies(s *game.State) {
	for _, sh := range s.EnemyShips() {
		f.Cell(sh.Pos).occupy(OccupantEnemy)
	}
	f.clearHome()
}

// clearHome keeps our shipyard and its neighbours enterable whatever the
// enemy does around it.
func (f *Field) clearHome() {
	f.Cell(f.home).release()
	for _, n := range f.Topo.Neighbors(f.home) {
		f.Cell(n).release()
	}
}

func (f *Field) isHomeZone(p grid.Pos) bool {
	return f.Topo.Dist(p, f.home) <= 1
}

func (f *Field) applyPressure(s *game.State, cfg tuning.FieldTuning) {
	h := cfg.PressureHalfWindow
	for _, sh := range s.Ships {
		mine := sh.Owner == s.MyID
		for dy := -h; dy < h; dy++ {
			for dx := -h; dx < h; dx++ {
				c := f.Cell(f.Topo.Shift(sh.Pos, dx, dy))
				if mine {
					c.NearbyFriendlies++
				} else {
					c.NearbyEnemies++
				}
			}
		}
	}
	for i := range f.cells {
		c := &f.cells[i]
		if c.NearbyEnemies >= cfg.CongestionMinEnemies {
			c.Value += c.CollectionAmount * cfg.CongestionBonus
		}
	}
}

// diffuse runs Jacobi smoothing passes: every cell reads the values of the
// previous pass only. Each pass feeds the maxima heap.
func (f *Field) diffuse(passes, radius int) {
	offsets := grid.Diamond(radius)
	prev := make([]float64, len(f.cells))
	n := float64(len(offsets) + 1)
	for pass := 0; pass < passes; pass++ {
		for i := range f.cells {
			prev[i] = f.cells[i].Value
		}
		for i := range f.cells {
			c := &f.cells[i]
			sum := prev[i]
			for _, o := range offsets {
				sum += prev[f.Topo.Index(f.Topo.Shift(c.Pos, o.DX, o.DY))]
			}
			c.SurroundingAverage = sum / n
			c.Value += c.SurroundingAverage
			f.pushCandidate(i, c.Value)
		}
	}
}

func (f *Field) defend(s *game.State, sentinel float64) {
	for _, sh := range s.EnemyShips() {
		if sh.Pos == f.home {
			f.Cell(f.home).Value = sentinel
		}
	}
}

func (f *Field) Cell(p grid.Pos) *Cell {
	return &f.cells[f.Topo.Index(p)]
}

// Blocked reports whether any occupancy source holds p.
func (f *Field) Blocked(p grid.Pos) bool {
	return f.Cell(p).Occupied
}

// Claim reserves p for one of our ships this turn.
func (f *Field) Claim(p grid.Pos) {
	f.Cell(p).occupy(OccupantFriendly)
}

// ClaimedByFriend reports whether one of our ships already reserved p.
func (f *Field) ClaimedByFriend(p grid.Pos) bool {
	return f.Cell(p).Occupant == OccupantFriendly
}

func (f *Field) Home() grid.Pos { return f.home }

// HaliteRemaining is the board total at build time.
func (f *Field) HaliteRemaining() int { return f.remaining }
