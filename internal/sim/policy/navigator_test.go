package policy

import (
	"testing"

	"github.com/tchesnutt/halite3/internal/sim/field"
	"github.com/tchesnutt/halite3/internal/sim/game"
	"github.com/tchesnutt/halite3/internal/sim/grid"
	"github.com/tchesnutt/halite3/internal/sim/schedule"
	"github.com/tchesnutt/halite3/internal/sim/tuning"
	"github.com/tchesnutt/halite3/internal/sim/worldtest"
)

type harness struct {
	nav    *Navigator
	queues *schedule.Queues
	field  *field.Field
	state  *game.State
}

func newHarness(t *testing.T, s *game.State, cfg tuning.Tuning, store *Store) *harness {
	t.Helper()
	if store == nil {
		store = NewStore()
	}
	idx := field.NewDepotIndex()
	idx.Refresh(s.Topo, s.MyDepots())
	f := field.Build(s, idx, cfg)
	q := schedule.NewQueues()
	nav := NewNavigator(cfg, store, q)
	nav.BeginTurn(f, s)
	return &harness{nav: nav, queues: q, field: f, state: s}
}

func (h *harness) decide(t *testing.T, id game.ShipID) Command {
	t.Helper()
	sh, ok := h.state.Ship(id)
	if !ok {
		t.Fatalf("ship %d missing", id)
	}
	return h.nav.Decide(h.field, h.state, sh)
}

func TestDecide_TwoCellStripMovesToRichCell(t *testing.T) {
	s := worldtest.NewState(2, 1).
		Player(0, 0, grid.Pos{X: 0, Y: 0}).
		Halite(grid.Pos{X: 1, Y: 0}, 400).
		Ship(1, 0, grid.Pos{X: 0, Y: 0}, 0).
		Build()
	h := newHarness(t, s, tuning.Defaults(), nil)

	cmd := h.decide(t, 1)
	if cmd.To != (grid.Pos{X: 1, Y: 0}) || cmd.Dir == grid.Still || cmd.Mode != ModeGathering {
		t.Fatalf("cmd=%+v", cmd)
	}
}

func TestDecide_LaterShipSeesEarlierClaim(t *testing.T) {
	s := worldtest.NewState(10, 10).
		Player(0, 0, grid.Pos{X: 0, Y: 0}).
		Halite(grid.Pos{X: 5, Y: 5}, 800).
		Ship(1, 0, grid.Pos{X: 4, Y: 5}, 0).
		Ship(2, 0, grid.Pos{X: 6, Y: 5}, 0).
		Build()
	h := newHarness(t, s, tuning.Defaults(), nil)

	a := h.decide(t, 1)
	if a.To != (grid.Pos{X: 5, Y: 5}) {
		t.Fatalf("A should take the rich cell: %+v", a)
	}
	if !h.field.ClaimedByFriend(grid.Pos{X: 5, Y: 5}) {
		t.Fatalf("A's destination not claimed")
	}
	b := h.decide(t, 2)
	if b.To == a.To || b.Dir == grid.West {
		t.Fatalf("B walked into A's claim: %+v", b)
	}
}

func TestDecide_HeavyCargoReturnsThroughDoorwayBucket(t *testing.T) {
	store := NewStore()
	s := worldtest.NewState(8, 8).
		Player(0, 0, grid.Pos{X: 0, Y: 0}).
		Ship(1, 0, grid.Pos{X: 2, Y: 0}, 950).
		Turn(10, 400).
		Build()
	h := newHarness(t, s, tuning.Defaults(), store)

	cmd := h.decide(t, 1)
	if cmd.Dir != grid.West || cmd.Mode != ModeReturning {
		t.Fatalf("cmd=%+v", cmd)
	}
	if got := h.queues.ComingHome.Bucket(1); len(got) != 1 || got[0] != 1 {
		t.Fatalf("expected ship in coming-home distance 1, got %v", got)
	}

	next := worldtest.NewState(8, 8).
		Player(0, 0, grid.Pos{X: 0, Y: 0}).
		Ship(1, 0, grid.Pos{X: 1, Y: 0}, 950).
		Turn(11, 400).
		Build()
	order := schedule.Order(h.queues, []game.ShipID{1}, func(game.ShipID) float64 { return 0 })
	if len(order) != 1 || order[0] != 1 {
		t.Fatalf("order=%v", order)
	}
	store.EndTurn()
	h2 := newHarness(t, next, tuning.Defaults(), store)
	if cmd := h2.decide(t, 1); cmd.Dir != grid.West || cmd.To != (grid.Pos{X: 0, Y: 0}) {
		t.Fatalf("second step=%+v", cmd)
	}
	if got := h2.queues.AtDepot; len(got) != 1 || got[0] != 1 {
		t.Fatalf("at-depot queue=%v", got)
	}
}

func TestDecide_EndGameForcedNearMaxTurns(t *testing.T) {
	b := worldtest.NewState(16, 16).
		Player(0, 0, grid.Pos{X: 0, Y: 0}).
		Fill(200).
		Turn(386, 400)
	for i := 1; i <= 5; i++ {
		b.Ship(game.ShipID(i), 0, grid.Pos{X: i, Y: i}, 300)
	}
	s := b.Build()
	store := NewStore()
	h := newHarness(t, s, tuning.Defaults(), store)
	for _, sh := range s.MyShips() {
		if cmd := h.decide(t, sh.ID); cmd.Mode != ModeEndGame {
			t.Fatalf("ship %d mode=%v", sh.ID, cmd.Mode)
		}
		if st, _ := store.Peek(sh.ID); !st.EndGame {
			t.Fatalf("ship %d not in end game", sh.ID)
		}
	}
}

func TestDecide_EndGameIsSticky(t *testing.T) {
	store := NewStore()
	far := worldtest.NewState(32, 32).
		Player(0, 0, grid.Pos{X: 0, Y: 0}).
		Ship(1, 0, grid.Pos{X: 10, Y: 10}, 0).
		Turn(375, 400).
		Build()
	h := newHarness(t, far, tuning.Defaults(), store)
	if cmd := h.decide(t, 1); cmd.Mode != ModeEndGame {
		t.Fatalf("distance 20 with 25 turns left should trigger end game: %+v", cmd)
	}
	store.EndTurn()

	early := worldtest.NewState(32, 32).
		Player(0, 0, grid.Pos{X: 0, Y: 0}).
		Ship(1, 0, grid.Pos{X: 10, Y: 9}, 0).
		Turn(10, 400).
		Build()
	h = newHarness(t, early, tuning.Defaults(), store)
	if cmd := h.decide(t, 1); cmd.Mode != ModeEndGame {
		t.Fatalf("end game must stay set: %+v", cmd)
	}
}

func TestDecide_EndGameStacksOnDepot(t *testing.T) {
	s := worldtest.NewState(8, 8).
		Player(0, 0, grid.Pos{X: 0, Y: 0}).
		Ship(1, 0, grid.Pos{X: 1, Y: 0}, 100).
		Ship(2, 0, grid.Pos{X: 0, Y: 1}, 100).
		Ship(3, 0, grid.Pos{X: 0, Y: 0}, 0).
		Turn(395, 400).
		Build()
	h := newHarness(t, s, tuning.Defaults(), nil)

	home := grid.Pos{X: 0, Y: 0}
	if cmd := h.decide(t, 3); cmd.Dir != grid.Still || cmd.To != home {
		t.Fatalf("end-game ship on depot should stay: %+v", cmd)
	}
	for _, id := range []game.ShipID{1, 2} {
		if cmd := h.decide(t, id); cmd.To != home {
			t.Fatalf("ship %d should stack on the depot: %+v", id, cmd)
		}
	}
}

func TestDecide_StalledShipStays(t *testing.T) {
	s := worldtest.NewState(8, 8).
		Player(0, 0, grid.Pos{X: 0, Y: 0}).
		Halite(grid.Pos{X: 3, Y: 3}, 500).
		Halite(grid.Pos{X: 3, Y: 2}, 900).
		Ship(1, 0, grid.Pos{X: 3, Y: 3}, 10).
		Build()
	h := newHarness(t, s, tuning.Defaults(), nil)
	cmd := h.decide(t, 1)
	if cmd.Dir != grid.Still {
		t.Fatalf("stalled ship moved: %+v", cmd)
	}
	if got := h.queues.Gathering.Bucket(6); len(got) != 1 || got[0] != 1 {
		t.Fatalf("ship that can leave next turn should queue as a gatherer: %v", got)
	}
}

func TestDecide_StayFallbackWhenCellTaken(t *testing.T) {
	s := worldtest.NewState(8, 8).
		Player(0, 0, grid.Pos{X: 0, Y: 0}).
		Halite(grid.Pos{X: 4, Y: 4}, 100).
		Ship(1, 0, grid.Pos{X: 4, Y: 4}, 50).
		Build()
	h := newHarness(t, s, tuning.Defaults(), nil)
	h.field.Claim(grid.Pos{X: 4, Y: 4})

	cmd := h.decide(t, 1)
	if cmd.Dir == grid.Still || cmd.To == (grid.Pos{X: 4, Y: 4}) {
		t.Fatalf("ship should leave a cell a friend claimed: %+v", cmd)
	}
}

func TestDecide_RamsPredictedEnemyOnlyWhenOutnumbering(t *testing.T) {
	build := func(extra int) *game.State {
		b := worldtest.NewState(32, 32).
			Player(0, 0, grid.Pos{X: 0, Y: 0}).
			Player(1, 0, grid.Pos{X: 16, Y: 16}).
			Halite(grid.Pos{X: 10, Y: 4}, 800).
			Ship(1, 0, grid.Pos{X: 11, Y: 4}, 0).
			Ship(100, 1, grid.Pos{X: 10, Y: 5}, 500)
		for i := 0; i < extra; i++ {
			b.Ship(game.ShipID(2+i), 0, grid.Pos{X: i, Y: 24}, 0)
		}
		return b.Build()
	}

	h := newHarness(t, build(0), tuning.Defaults(), nil)
	if c := h.field.Cell(grid.Pos{X: 10, Y: 4}); c.Occupant != field.OccupantPredicted {
		t.Fatalf("enemy move not predicted: %+v", *c)
	}
	if cmd := h.decide(t, 1); cmd.Dir == grid.West {
		t.Fatalf("entered a predicted enemy cell without outnumbering")
	}

	h = newHarness(t, build(20), tuning.Defaults(), nil)
	if cmd := h.decide(t, 1); cmd.Dir != grid.West {
		t.Fatalf("outnumbering ship should ram the loaded enemy: %+v", cmd)
	}
}

func TestDecide_ConvertsOncePerTurn(t *testing.T) {
	b := worldtest.NewState(32, 32).
		Player(0, 4000, grid.Pos{X: 0, Y: 0}).
		Fill(40)
	for i := 0; i < 10; i++ {
		b.Ship(game.ShipID(i+1), 0, grid.Pos{X: 16, Y: 12 + i}, 100)
	}
	s := b.Build()
	h := newHarness(t, s, tuning.Defaults(), nil)
	h.field.Cell(grid.Pos{X: 16, Y: 15}).IsLocalMaximum = true
	h.field.Cell(grid.Pos{X: 16, Y: 16}).IsLocalMaximum = true

	if cmd := h.decide(t, 4); !cmd.Convert || cmd.Mode != ModeConverting {
		t.Fatalf("ship on a local maximum should convert: %+v", cmd)
	}
	if !h.nav.Store().ConvertedThisTurn() {
		t.Fatalf("conversion not recorded")
	}
	if cmd := h.decide(t, 5); cmd.Convert {
		t.Fatalf("second conversion in one turn")
	}
	if cmd := h.decide(t, 1); cmd.Convert {
		t.Fatalf("ship off a local maximum converted")
	}
}

func TestDecide_NoSharedDestinations(t *testing.T) {
	topo := grid.New(32, 32)
	yards := worldtest.Shipyards(topo, 2)
	b := worldtest.NewState(32, 32).
		HaliteMap(worldtest.NoiseHalite(topo, 3, 2)).
		Player(0, 5000, yards[0]).
		Player(1, 5000, yards[1])
	id := game.ShipID(1)
	for y := 10; y < 22; y += 2 {
		for x := 4; x < 24; x += 2 {
			b.Ship(id, 0, grid.Pos{X: x, Y: y}, int(id)*7%900)
			id++
		}
	}
	for i := 0; i < 12; i++ {
		b.Ship(id, 1, grid.Pos{X: 18 + i%6, Y: 12 + i/6*3}, 200)
		id++
	}
	s := b.Build()
	h := newHarness(t, s, tuning.Defaults(), nil)
	for _, sh := range s.MyShips() {
		if s.Stalled(sh) {
			h.field.Claim(sh.Pos)
		}
	}

	seen := map[grid.Pos]game.ShipID{}
	for _, sh := range s.MyShips() {
		cmd := h.decide(t, sh.ID)
		if other, dup := seen[cmd.To]; dup {
			t.Fatalf("ships %d and %d share destination %v", other, sh.ID, cmd.To)
		}
		seen[cmd.To] = sh.ID
	}
}

func TestDecide_BoxedShipLeavesForEnemyCellOverFriendClaim(t *testing.T) {
	s := worldtest.NewState(8, 8).
		Player(0, 0, grid.Pos{X: 0, Y: 0}).
		Player(1, 0, grid.Pos{X: 7, Y: 7}).
		Fill(10).
		Halite(grid.Pos{X: 3, Y: 4}, 0).
		Halite(grid.Pos{X: 4, Y: 4}, 800).
		Ship(1, 0, grid.Pos{X: 3, Y: 4}, 0).
		Ship(2, 0, grid.Pos{X: 4, Y: 4}, 100).
		Ship(10, 1, grid.Pos{X: 4, Y: 3}, 0).
		Ship(11, 1, grid.Pos{X: 5, Y: 4}, 0).
		Ship(12, 1, grid.Pos{X: 4, Y: 5}, 0).
		Build()
	cfg := tuning.Defaults()
	cfg.Field.PredictEnemies = false
	h := newHarness(t, s, cfg, nil)

	a := h.decide(t, 1)
	if a.To != (grid.Pos{X: 4, Y: 4}) {
		t.Fatalf("ship 1 should take the rich cell: %+v", a)
	}
	// Another friend takes the cell ship 1 left.
	h.field.Claim(grid.Pos{X: 3, Y: 4})

	b := h.decide(t, 2)
	if b.Dir == grid.Still || b.To == a.To || b.To == (grid.Pos{X: 3, Y: 4}) {
		t.Fatalf("boxed ship shares a friendly destination: %+v", b)
	}
	if b.Mode != ModeGathering {
		t.Fatalf("mode=%v", b.Mode)
	}
}

func TestDecide_NoConversionOnClaimedCell(t *testing.T) {
	b := worldtest.NewState(32, 32).
		Player(0, 4000, grid.Pos{X: 0, Y: 0}).
		Fill(40)
	for i := 0; i < 10; i++ {
		b.Ship(game.ShipID(i+1), 0, grid.Pos{X: 16, Y: 12 + i}, 100)
	}
	h := newHarness(t, b.Build(), tuning.Defaults(), nil)
	h.field.Cell(grid.Pos{X: 16, Y: 15}).IsLocalMaximum = true
	h.field.Claim(grid.Pos{X: 16, Y: 15})

	cmd := h.decide(t, 4)
	if cmd.Convert || h.nav.Store().ConvertedThisTurn() {
		t.Fatalf("converted on a cell a friend moved into: %+v", cmd)
	}
	if cmd.To == (grid.Pos{X: 16, Y: 15}) {
		t.Fatalf("ship stayed on a claimed cell: %+v", cmd)
	}
}

func TestDecide_MarksMovedUntilEndTurn(t *testing.T) {
	s := worldtest.NewState(8, 8).
		Player(0, 0, grid.Pos{X: 0, Y: 0}).
		Fill(20).
		Ship(1, 0, grid.Pos{X: 3, Y: 3}, 0).
		Build()
	h := newHarness(t, s, tuning.Defaults(), nil)
	h.decide(t, 1)
	st, ok := h.nav.Store().Peek(1)
	if !ok || !st.MovedThisTurn {
		t.Fatalf("decided ship not marked: %+v", st)
	}
	h.nav.Store().EndTurn()
	if st.MovedThisTurn {
		t.Fatalf("marker survived EndTurn")
	}
}
