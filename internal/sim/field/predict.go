package field

import (
	"github.com/tchesnutt/halite3/internal/sim/game"
	"github.com/tchesnutt/halite3/internal/sim/grid"
	"github.com/tchesnutt/halite3/internal/sim/tuning"
)

// predictEnemies moves every non-full enemy one step with the same gather
// evaluation our own ships use and marks the destination. Enemies that
// cannot afford to move stay put.
func (f *Field) predictEnemies(s *game.State, cfg tuning.PolicyTuning) {
	for _, sh := range s.EnemyShips() {
		if sh.Cargo >= s.Constants.MaxCargo {
			continue
		}
		at := sh.Pos
		free := func(c *Cell) bool { return c.Pos == at || !c.Occupied }
		origin := f.Cell(sh.Pos)
		dir := grid.Still
		if float64(sh.Cargo) >= origin.MoveCost {
			dir, _ = f.GatherMove(sh.Pos, cfg.MoveBias, cfg.BlockedBaseline, free)
		}
		dest := f.Topo.Offset(sh.Pos, dir)
		if f.isHomeZone(dest) {
			continue
		}
		cargo := sh.Cargo + int(origin.CollectionAmount)
		if dir != grid.Still {
			cargo = sh.Cargo - int(origin.MoveCost)
		}
		c := f.Cell(dest)
		c.occupy(OccupantPredicted)
		if cargo > c.PredictedEnemyCargo {
			c.PredictedEnemyCargo = cargo
		}
	}
}
