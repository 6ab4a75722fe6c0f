// Package policy decides one ship's move at a time against the shared field.
// Decisions are strictly sequential: every accepted destination is claimed on
// the field before the next ship is asked.
package policy

import (
	"github.com/tchesnutt/halite3/internal/sim/field"
	"github.com/tchesnutt/halite3/internal/sim/game"
	"github.com/tchesnutt/halite3/internal/sim/grid"
	"github.com/tchesnutt/halite3/internal/sim/schedule"
	"github.com/tchesnutt/halite3/internal/sim/tuning"
)

type Navigator struct {
	cfg    tuning.Tuning
	store  *Store
	queues *schedule.Queues

	// turn facts, set by BeginTurn
	outnumber     bool
	myShips       int
	myDropoffs    int
	bank          int
	haliteDensity float64
	collected     float64
}

func NewNavigator(cfg tuning.Tuning, store *Store, queues *schedule.Queues) *Navigator {
	return &Navigator{cfg: cfg, store: store, queues: queues}
}

func (n *Navigator) Store() *Store { return n.store }

// BeginTurn caches the board-wide facts every decision this turn shares.
func (n *Navigator) BeginTurn(f *field.Field, s *game.State) {
	players := max(len(s.Players), 1)
	n.myShips = len(s.MyShips())
	n.myDropoffs = s.MyDropoffCount()
	n.bank = s.Me().Bank
	n.outnumber = float64(n.myShips) > float64(len(s.Ships))/float64(players)
	n.haliteDensity = float64(f.HaliteRemaining()) / float64(s.Topo.Width) / float64(players) / float64(n.myDropoffs+1)
	n.collected = s.CollectedFraction()
}

// Decide resolves one ship, claims its destination on f and queues the ship
// for next turn's ordering.
func (n *Navigator) Decide(f *field.Field, s *game.State, sh game.Ship) Command {
	st := n.store.Get(sh.ID)
	st.MovedThisTurn = true
	origin := f.Cell(sh.Pos)

	if !st.EndGame && n.endGame(origin.DistanceToDepot, s.TurnsRemaining(), n.cfg.Policy.EndGameMargin) {
		st.EndGame = true
	}
	stalled := s.Stalled(sh)
	n.updateReturning(st, sh, origin, stalled)

	if n.shouldConvert(f, s, sh, origin) {
		f.Claim(sh.Pos)
		n.store.markConverted()
		n.bank -= max(s.Constants.DropoffCost-sh.Cargo, 0)
		n.myDropoffs++
		return Command{Ship: sh.ID, Convert: true, Dir: grid.Still, From: sh.Pos, To: sh.Pos, Mode: ModeConverting}
	}

	if st.EndGame || st.ReturningHome {
		mode := ModeReturning
		if st.EndGame {
			mode = ModeEndGame
		}
		dir := n.routeHome(f, sh, origin, stalled, st.EndGame)
		if dir == grid.Still && !stalled && !(st.EndGame && origin.DistanceToDepot == 0) {
			dir = n.stayFallback(f, sh)
		}
		dest := f.Topo.Offset(sh.Pos, dir)
		f.Claim(dest)
		n.queueHomebound(f, sh.ID, dest)
		return Command{Ship: sh.ID, Dir: dir, From: sh.Pos, To: dest, Mode: mode}
	}

	dir := grid.Still
	if !stalled {
		var ok bool
		dir, ok = f.GatherMove(sh.Pos, n.cfg.Policy.MoveBias, n.cfg.Policy.BlockedBaseline, n.enterable(sh))
		if !ok || dir == grid.Still {
			dir = n.stayFallback(f, sh)
		}
	}
	dest := f.Topo.Offset(sh.Pos, dir)
	f.Claim(dest)
	n.queueGatherer(f, s, sh, dir, dest)
	return Command{Ship: sh.ID, Dir: dir, From: sh.Pos, To: dest, Mode: ModeGathering}
}

func (n *Navigator) endGame(dist, remaining, margin int) bool {
	return remaining < n.cfg.Policy.EndGameFloorTurns || dist+margin > remaining
}

// returnCutoff is the cargo above which a ship dist steps from a depot heads
// home.
func (n *Navigator) returnCutoff(dist int) int {
	return min(n.cfg.Policy.ReturnCargoCap, (dist+n.cfg.Policy.ReturnStepPad)*n.cfg.Policy.ReturnCargoStep)
}

func (n *Navigator) updateReturning(st *AgentState, sh game.Ship, origin *field.Cell, stalled bool) {
	if stalled || origin.DistanceToDepot == 0 {
		st.ReturningHome = false
		return
	}
	if sh.Cargo > n.returnCutoff(origin.DistanceToDepot) {
		st.ReturningHome = true
	}
}

// shouldConvert never fires on a cell a friend already moved into: the
// converted ship would share its destination.
func (n *Navigator) shouldConvert(f *field.Field, s *game.State, sh game.Ship, origin *field.Cell) bool {
	c := n.cfg.Convert
	switch {
	case !c.Enabled, n.store.ConvertedThisTurn():
		return false
	case f.ClaimedByFriend(sh.Pos):
		return false
	case origin.DistanceToDepot == 0 || !origin.IsLocalMaximum:
		return false
	case n.collected >= c.MaxCollectedFraction:
		return false
	case n.haliteDensity <= c.MinHalitePerDepot:
		return false
	case float64(origin.DistanceToDepot)/float64(s.Topo.Width) <= c.MinDistanceRatioFor(s.Topo.Width):
		return false
	case n.bank+sh.Cargo < s.Constants.DropoffCost:
		return false
	case origin.NearbyFriendlies < origin.NearbyEnemies:
		return false
	}
	return n.myDropoffs < n.myShips/c.ShipsPerDepot
}

// enterable is the gather destination test: free cells, plus cells an enemy
// is predicted to enter carrying well over our cargo while we outnumber the
// table.
func (n *Navigator) enterable(sh game.Ship) func(*field.Cell) bool {
	return func(c *field.Cell) bool {
		if !c.Occupied {
			return true
		}
		return n.outnumber && c.Occupant == field.OccupantPredicted &&
			float64(c.PredictedEnemyCargo) > n.cfg.Policy.RamRatio*float64(sh.Cargo)
	}
}

// routeHome steps toward the nearest depot along at most two direct axes.
// In end game the depot itself is always enterable.
func (n *Navigator) routeHome(f *field.Field, sh game.Ship, origin *field.Cell, stalled, endGame bool) grid.Dir {
	if stalled {
		return grid.Still
	}
	depot := origin.NearestDepot
	if endGame && sh.Pos == depot {
		return grid.Still
	}
	for _, d := range f.Topo.DirectMoves(sh.Pos, depot) {
		dest := f.Topo.Offset(sh.Pos, d)
		if endGame {
			if dest == depot || !f.Blocked(dest) {
				return d
			}
			continue
		}
		if !f.Blocked(dest) && float64(sh.Cargo) > origin.MoveCost {
			return d
		}
	}
	return grid.Still
}

// stayFallback keeps a ship still unless a friend already claimed its cell,
// in which case it takes the first free cardinal. With none free it takes
// the first cardinal no friend claimed: an enemy may still move away, a
// friend will not. Callers never pass a stalled ship.
func (n *Navigator) stayFallback(f *field.Field, sh game.Ship) grid.Dir {
	if !f.ClaimedByFriend(sh.Pos) {
		return grid.Still
	}
	for _, d := range grid.Cardinals {
		if !f.Blocked(f.Topo.Offset(sh.Pos, d)) {
			return d
		}
	}
	for _, d := range grid.Cardinals {
		if !f.ClaimedByFriend(f.Topo.Offset(sh.Pos, d)) {
			return d
		}
	}
	return grid.Still
}

func (n *Navigator) queueHomebound(f *field.Field, id game.ShipID, dest grid.Pos) {
	if d := f.Cell(dest).DistanceToDepot; d > 0 {
		n.queues.ComingHome.Add(d, id)
		return
	}
	n.queues.AtDepot = append(n.queues.AtDepot, id)
}

func (n *Navigator) queueGatherer(f *field.Field, s *game.State, sh game.Ship, dir grid.Dir, dest grid.Pos) {
	next := f.Cell(dest)
	remaining := s.TurnsRemaining()
	if n.endGame(next.DistanceToDepot, remaining, n.cfg.Policy.EndGameLookaheadMargin) ||
		sh.Cargo+s.Collect(dest) > n.returnCutoff(next.DistanceToDepot) {
		n.queueHomebound(f, sh.ID, dest)
		return
	}

	cargo := sh.Cargo + s.Collect(sh.Pos)
	if dir != grid.Still {
		cargo = sh.Cargo - s.MoveCost(sh.Pos)
	}
	atPeak := f.AtPeak(dest) && cargo > n.returnCutoff(next.DistanceToDepot)
	if atPeak || cargo < s.MoveCost(dest) {
		n.queues.Stalled = append(n.queues.Stalled, sh.ID)
		return
	}
	n.queues.Gathering.Add(next.DistanceToDepot, sh.ID)
}
