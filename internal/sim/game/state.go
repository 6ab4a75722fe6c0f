// Package game is the bot's read-only view of one turn of world state.
package game

import (
	"sort"

	"github.com/tchesnutt/halite3/internal/sim/grid"
)

type PlayerID int

type ShipID int

type Constants struct {
	ShipCost      int
	DropoffCost   int
	MaxCargo      int
	ExtractRatio  int
	MoveCostRatio int
	// InitialHalite is the total halite on the board at turn 0. Zero means
	// unknown; the bot then latches the first total it sees.
	InitialHalite int
}

func DefaultConstants() Constants {
	return Constants{
		ShipCost:      1000,
		DropoffCost:   4000,
		MaxCargo:      1000,
		ExtractRatio:  4,
		MoveCostRatio: 10,
	}
}

type Player struct {
	ID       PlayerID
	Bank     int
	Shipyard grid.Pos
}

type Ship struct {
	ID    ShipID
	Owner PlayerID
	Pos   grid.Pos
	Cargo int
}

type Dropoff struct {
	ID    int
	Owner PlayerID
	Pos   grid.Pos
}

// State is one turn of world state. Positions are wrap-normalized on
// construction.
type State struct {
	Turn      int
	MaxTurns  int
	MyID      PlayerID
	Topo      grid.Topology
	Halite    []int
	Players   []Player
	Ships     []Ship
	Dropoffs  []Dropoff
	Constants Constants

	shipIdx map[ShipID]int
}

func (s *State) index() {
	s.shipIdx = make(map[ShipID]int, len(s.Ships))
	for i, sh := range s.Ships {
		s.shipIdx[sh.ID] = i
	}
}

// Ship looks a ship up by id. Ships vanish between turns (collisions,
// conversions), so callers must handle ok=false.
func (s *State) Ship(id ShipID) (Ship, bool) {
	if s.shipIdx == nil {
		s.index()
	}
	i, ok := s.shipIdx[id]
	if !ok {
		return Ship{}, false
	}
	return s.Ships[i], true
}

func (s *State) Me() Player {
	for _, p := range s.Players {
		if p.ID == s.MyID {
			return p
		}
	}
	return Player{ID: s.MyID}
}

func (s *State) MyShips() []Ship {
	out := make([]Ship, 0, len(s.Ships))
	for _, sh := range s.Ships {
		if sh.Owner == s.MyID {
			out = append(out, sh)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *State) EnemyShips() []Ship {
	out := make([]Ship, 0, len(s.Ships))
	for _, sh := range s.Ships {
		if sh.Owner != s.MyID {
			out = append(out, sh)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// MyDepots lists the shipyard first, then owned dropoffs by id.
func (s *State) MyDepots() []grid.Pos {
	out := []grid.Pos{s.Me().Shipyard}
	drops := make([]Dropoff, 0, len(s.Dropoffs))
	for _, d := range s.Dropoffs {
		if d.Owner == s.MyID {
			drops = append(drops, d)
		}
	}
	sort.Slice(drops, func(i, j int) bool { return drops[i].ID < drops[j].ID })
	for _, d := range drops {
		out = append(out, d.Pos)
	}
	return out
}

func (s *State) MyDropoffCount() int {
	n := 0
	for _, d := range s.Dropoffs {
		if d.Owner == s.MyID {
			n++
		}
	}
	return n
}

func (s *State) HaliteAt(p grid.Pos) int {
	return s.Halite[s.Topo.Index(p)]
}

func (s *State) TotalHalite() int {
	total := 0
	for _, h := range s.Halite {
		total += h
	}
	return total
}

func (s *State) TurnsRemaining() int {
	r := s.MaxTurns - s.Turn
	if r < 0 {
		return 0
	}
	return r
}

// CollectedFraction is the share of the initial halite no longer on the
// board.
func (s *State) CollectedFraction() float64 {
	if s.Constants.InitialHalite <= 0 {
		return 0
	}
	return 1 - float64(s.TotalHalite())/float64(s.Constants.InitialHalite)
}

// MoveCost is what leaving p costs, in whole halite.
func (s *State) MoveCost(p grid.Pos) int {
	if s.Constants.MoveCostRatio <= 0 {
		return 0
	}
	return s.HaliteAt(p) / s.Constants.MoveCostRatio
}

// Collect is what staying on p yields this turn.
func (s *State) Collect(p grid.Pos) int {
	if s.Constants.ExtractRatio <= 0 {
		return 0
	}
	return s.HaliteAt(p) / s.Constants.ExtractRatio
}

// Stalled reports whether the ship cannot pay to leave its cell.
func (s *State) Stalled(sh Ship) bool {
	return sh.Cargo < s.MoveCost(sh.Pos)
}
