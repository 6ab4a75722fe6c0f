package field

import (
	"math"
	"testing"

	"github.com/tchesnutt/halite3/internal/sim/game"
	"github.com/tchesnutt/halite3/internal/sim/grid"
	"github.com/tchesnutt/halite3/internal/sim/tuning"
	"github.com/tchesnutt/halite3/internal/sim/worldtest"
)

func plainTuning() tuning.Tuning {
	cfg := tuning.Defaults()
	cfg.Field.DiffusionPasses = 0
	cfg.Field.PredictEnemies = false
	return cfg
}

func build(t *testing.T, s *game.State, cfg tuning.Tuning) *Field {
	t.Helper()
	idx := NewDepotIndex()
	idx.Refresh(s.Topo, s.MyDepots())
	return Build(s, idx, cfg)
}

func TestBuild_SeedsCells(t *testing.T) {
	s := worldtest.NewState(8, 8).
		Player(0, 0, grid.Pos{X: 1, Y: 1}).
		Player(1, 0, grid.Pos{X: 6, Y: 6}).
		Halite(grid.Pos{X: 3, Y: 3}, 410).
		Build()
	f := build(t, s, plainTuning())

	c := f.Cell(grid.Pos{X: 3, Y: 3})
	if c.Value != 102.5 || c.CollectionAmount != 102.5 || c.MoveCost != 41 {
		t.Fatalf("cell=%+v", *c)
	}
	if c.NearestDepot != (grid.Pos{X: 1, Y: 1}) || c.DistanceToDepot != 4 {
		t.Fatalf("depot=%v dist=%d", c.NearestDepot, c.DistanceToDepot)
	}
	if d := f.Cell(grid.Pos{X: 1, Y: 1}).DistanceToDepot; d != 0 {
		t.Fatalf("depot cell distance=%d", d)
	}
	if f.HaliteRemaining() != 410 {
		t.Fatalf("remaining=%d", f.HaliteRemaining())
	}
	if f.PendingMaxima() != 0 {
		t.Fatalf("no diffusion pass should leave the heap empty")
	}
}

func TestBuild_EnemyOccupancyAndHomeZone(t *testing.T) {
	home := grid.Pos{X: 4, Y: 4}
	s := worldtest.NewState(10, 10).
		Player(0, 0, home).
		Player(1, 0, grid.Pos{X: 0, Y: 0}).
		Ship(1, 1, grid.Pos{X: 4, Y: 3}, 0).
		Ship(2, 1, grid.Pos{X: 7, Y: 7}, 0).
		Ship(3, 1, home, 0).
		Build()
	f := build(t, s, plainTuning())

	if f.Blocked(grid.Pos{X: 4, Y: 3}) || f.Blocked(home) {
		t.Fatalf("home shipyard and neighbours must stay enterable")
	}
	c := f.Cell(grid.Pos{X: 7, Y: 7})
	if !c.Occupied || c.Occupant != OccupantEnemy {
		t.Fatalf("enemy cell=%+v", *c)
	}
	if v := f.Cell(home).Value; v != tuning.Defaults().Field.DefenseSentinel {
		t.Fatalf("enemy on shipyard should force the sentinel, got %v", v)
	}
}

func TestPressure_WindowWraps(t *testing.T) {
	s := worldtest.NewState(16, 16).
		Player(0, 0, grid.Pos{X: 8, Y: 8}).
		Ship(1, 0, grid.Pos{X: 0, Y: 0}, 0).
		Build()
	f := build(t, s, plainTuning())

	cases := []struct {
		p    grid.Pos
		want int
	}{
		{grid.Pos{X: 0, Y: 0}, 1},
		{grid.Pos{X: 15, Y: 15}, 1},
		{grid.Pos{X: 12, Y: 0}, 1},
		{grid.Pos{X: 3, Y: 3}, 1},
		{grid.Pos{X: 4, Y: 0}, 0},
		{grid.Pos{X: 0, Y: 4}, 0},
		{grid.Pos{X: 11, Y: 0}, 0},
	}
	for _, tc := range cases {
		if got := f.Cell(tc.p).NearbyFriendlies; got != tc.want {
			t.Fatalf("friendlies at %v = %d want %d", tc.p, got, tc.want)
		}
	}
	total := 0
	for i := range f.cells {
		total += f.cells[i].NearbyFriendlies
	}
	if total != 64 {
		t.Fatalf("window should cover 64 cells, got %d", total)
	}
}

func TestPressure_CongestionBonus(t *testing.T) {
	s := worldtest.NewState(16, 16).
		Player(0, 0, grid.Pos{X: 0, Y: 0}).
		Player(1, 0, grid.Pos{X: 12, Y: 12}).
		Fill(100).
		Ship(1, 1, grid.Pos{X: 8, Y: 8}, 0).
		Ship(2, 1, grid.Pos{X: 9, Y: 8}, 0).
		Build()
	f := build(t, s, plainTuning())

	if c := f.Cell(grid.Pos{X: 9, Y: 9}); c.NearbyEnemies != 2 || c.Value != 75 {
		t.Fatalf("congested cell=%+v", *c)
	}
	if c := f.Cell(grid.Pos{X: 4, Y: 8}); c.NearbyEnemies != 1 || c.Value != 25 {
		t.Fatalf("single-enemy cell=%+v", *c)
	}
}

func TestDiffusion_ReadsPreviousPass(t *testing.T) {
	cfg := plainTuning()
	cfg.Field.DiffusionPasses = 1
	cfg.Field.DiffusionRadius = 1
	s := worldtest.NewState(5, 5).
		Player(0, 0, grid.Pos{X: 0, Y: 0}).
		Halite(grid.Pos{X: 2, Y: 2}, 400).
		Build()
	f := build(t, s, cfg)

	if v := f.Cell(grid.Pos{X: 2, Y: 2}).Value; v != 120 {
		t.Fatalf("center=%v", v)
	}
	for _, n := range f.Topo.Neighbors(grid.Pos{X: 2, Y: 2}) {
		if v := f.Cell(n).Value; v != 20 {
			t.Fatalf("neighbour %v=%v (later cells must not see earlier updates)", n, v)
		}
	}
	if v := f.Cell(grid.Pos{X: 1, Y: 1}).Value; v != 0 {
		t.Fatalf("diagonal=%v", v)
	}
	if f.PendingMaxima() != 25 {
		t.Fatalf("one pass should queue every cell, got %d", f.PendingMaxima())
	}
}

func TestDiffusion_ValuesFiniteOnNoiseMap(t *testing.T) {
	topo := grid.New(32, 32)
	yards := worldtest.Shipyards(topo, 2)
	s := worldtest.NewState(32, 32).
		HaliteMap(worldtest.NoiseHalite(topo, 7, 2)).
		Player(0, 5000, yards[0]).
		Player(1, 5000, yards[1]).
		Ship(1, 0, grid.Pos{X: 9, Y: 16}, 0).
		Ship(2, 1, grid.Pos{X: 22, Y: 16}, 300).
		Build()
	f := build(t, s, tuning.Defaults())
	for i := range f.cells {
		if v := f.cells[i].Value; math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("non-finite value at %v", f.cells[i].Pos)
		}
	}
}

func TestPredictEnemies(t *testing.T) {
	cfg := plainTuning()
	cfg.Field.PredictEnemies = true
	s := worldtest.NewState(12, 12).
		Player(0, 0, grid.Pos{X: 0, Y: 0}).
		Player(1, 0, grid.Pos{X: 10, Y: 10}).
		Halite(grid.Pos{X: 5, Y: 4}, 400).
		Ship(1, 1, grid.Pos{X: 5, Y: 5}, 300).
		Ship(2, 1, grid.Pos{X: 8, Y: 2}, 1000).
		Build()
	f := build(t, s, cfg)

	c := f.Cell(grid.Pos{X: 5, Y: 4})
	if c.Occupant != OccupantPredicted || c.PredictedEnemyCargo != 300 {
		t.Fatalf("predicted cell=%+v", *c)
	}
	for _, n := range f.Topo.Neighbors(grid.Pos{X: 8, Y: 2}) {
		if f.Blocked(n) {
			t.Fatalf("full enemy should not be predicted, %v blocked", n)
		}
	}
}

func TestPredictEnemies_NeverNearHome(t *testing.T) {
	cfg := plainTuning()
	cfg.Field.PredictEnemies = true
	home := grid.Pos{X: 5, Y: 5}
	s := worldtest.NewState(12, 12).
		Player(0, 0, home).
		Player(1, 0, grid.Pos{X: 0, Y: 0}).
		Halite(grid.Pos{X: 5, Y: 4}, 900).
		Ship(1, 1, grid.Pos{X: 5, Y: 3}, 0).
		Build()
	f := build(t, s, cfg)
	if f.Blocked(grid.Pos{X: 5, Y: 4}) {
		t.Fatalf("prediction landed next to the shipyard")
	}
}

func TestGatherMove(t *testing.T) {
	s := worldtest.NewState(6, 6).
		Player(0, 0, grid.Pos{X: 0, Y: 0}).
		Halite(grid.Pos{X: 2, Y: 2}, 40).
		Halite(grid.Pos{X: 2, Y: 1}, 200).
		Halite(grid.Pos{X: 2, Y: 3}, 200).
		Build()
	f := build(t, s, plainTuning())
	free := func(c *Cell) bool { return !c.Occupied }

	dir, ok := f.GatherMove(grid.Pos{X: 2, Y: 2}, 0.1, -500, free)
	if !ok || dir != grid.North {
		t.Fatalf("tie should resolve to the first cardinal: %v ok=%v", dir, ok)
	}
	f.Claim(grid.Pos{X: 2, Y: 1})
	if dir, _ = f.GatherMove(grid.Pos{X: 2, Y: 2}, 0.1, -500, free); dir != grid.South {
		t.Fatalf("claimed north should fall to south, got %v", dir)
	}
	f.Claim(grid.Pos{X: 2, Y: 3})
	f.Claim(grid.Pos{X: 2, Y: 2})
	if dir, ok = f.GatherMove(grid.Pos{X: 2, Y: 2}, 0.1, -500, free); !ok || dir != grid.East {
		t.Fatalf("blocked origin should move to any free cell: %v ok=%v", dir, ok)
	}
	if !f.ClaimedByFriend(grid.Pos{X: 2, Y: 2}) {
		t.Fatalf("claim not recorded")
	}
}

func TestAtPeak(t *testing.T) {
	s := worldtest.NewState(6, 6).
		Player(0, 0, grid.Pos{X: 0, Y: 0}).
		Halite(grid.Pos{X: 2, Y: 2}, 400).
		Build()
	f := build(t, s, plainTuning())
	if !f.AtPeak(grid.Pos{X: 2, Y: 2}) {
		t.Fatalf("rich cell among empty neighbours is a peak")
	}
	if f.AtPeak(grid.Pos{X: 3, Y: 2}) {
		t.Fatalf("empty cell next to a rich one is not a peak")
	}
}
