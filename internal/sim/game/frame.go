package game

import (
	"errors"
	"fmt"

	"github.com/tchesnutt/halite3/internal/protocol"
	"github.com/tchesnutt/halite3/internal/sim/grid"
)

var ErrBadFrame = errors.New("bad frame")

// FromFrame converts a wire frame into a State. Zero constants fall back to
// DefaultConstants.
func FromFrame(f protocol.FrameMsg) (*State, error) {
	if f.Width <= 0 || f.Height <= 0 {
		return nil, fmt.Errorf("%w: dimensions %dx%d", ErrBadFrame, f.Width, f.Height)
	}
	if len(f.Halite) != f.Width*f.Height {
		return nil, fmt.Errorf("%w: halite has %d cells, want %d", ErrBadFrame, len(f.Halite), f.Width*f.Height)
	}
	if len(f.Players) == 0 {
		return nil, fmt.Errorf("%w: no players", ErrBadFrame)
	}

	topo := grid.New(f.Width, f.Height)
	s := &State{
		Turn:     f.Turn,
		MaxTurns: f.MaxTurns,
		MyID:     PlayerID(f.MyID),
		Topo:     topo,
		Halite:   append([]int(nil), f.Halite...),
	}

	s.Constants = DefaultConstants()
	if !f.Constants.IsZero() {
		s.Constants = Constants{
			ShipCost:      f.Constants.ShipCost,
			DropoffCost:   f.Constants.DropoffCost,
			MaxCargo:      f.Constants.MaxCargo,
			ExtractRatio:  f.Constants.ExtractRatio,
			MoveCostRatio: f.Constants.MoveCostRatio,
			InitialHalite: f.Constants.InitialHalite,
		}
	}

	mine := false
	for _, p := range f.Players {
		if p.ID == f.MyID {
			mine = true
		}
		s.Players = append(s.Players, Player{
			ID:       PlayerID(p.ID),
			Bank:     p.Bank,
			Shipyard: topo.Wrap(grid.Pos{X: p.Shipyard[0], Y: p.Shipyard[1]}),
		})
	}
	if !mine {
		return nil, fmt.Errorf("%w: my_id %d not among players", ErrBadFrame, f.MyID)
	}

	seen := make(map[int]struct{}, len(f.Ships))
	for _, sh := range f.Ships {
		if _, dup := seen[sh.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate ship id %d", ErrBadFrame, sh.ID)
		}
		seen[sh.ID] = struct{}{}
		s.Ships = append(s.Ships, Ship{
			ID:    ShipID(sh.ID),
			Owner: PlayerID(sh.Owner),
			Pos:   topo.Wrap(grid.Pos{X: sh.Pos[0], Y: sh.Pos[1]}),
			Cargo: sh.Cargo,
		})
	}
	for _, d := range f.Dropoffs {
		s.Dropoffs = append(s.Dropoffs, Dropoff{
			ID:    d.ID,
			Owner: PlayerID(d.Owner),
			Pos:   topo.Wrap(grid.Pos{X: d.Pos[0], Y: d.Pos[1]}),
		})
	}
	s.index()
	return s, nil
}

// ToFrame is the inverse of FromFrame; used by the arena and test fixtures.
func (s *State) ToFrame() protocol.FrameMsg {
	f := protocol.FrameMsg{
		Type:            protocol.TypeFrame,
		ProtocolVersion: protocol.Version,
		Turn:            s.Turn,
		MaxTurns:        s.MaxTurns,
		MyID:            int(s.MyID),
		Width:           s.Topo.Width,
		Height:          s.Topo.Height,
		Halite:          append([]int(nil), s.Halite...),
		Players:         make([]protocol.PlayerObs, 0, len(s.Players)),
		Ships:           make([]protocol.ShipObs, 0, len(s.Ships)),
		Dropoffs:        make([]protocol.DropoffObs, 0, len(s.Dropoffs)),
		Constants: protocol.ConstantsObs{
			ShipCost:      s.Constants.ShipCost,
			DropoffCost:   s.Constants.DropoffCost,
			MaxCargo:      s.Constants.MaxCargo,
			ExtractRatio:  s.Constants.ExtractRatio,
			MoveCostRatio: s.Constants.MoveCostRatio,
			InitialHalite: s.Constants.InitialHalite,
		},
	}
	for _, p := range s.Players {
		f.Players = append(f.Players, protocol.PlayerObs{ID: int(p.ID), Bank: p.Bank, Shipyard: [2]int{p.Shipyard.X, p.Shipyard.Y}})
	}
	for _, sh := range s.Ships {
		f.Ships = append(f.Ships, protocol.ShipObs{ID: int(sh.ID), Owner: int(sh.Owner), Pos: [2]int{sh.Pos.X, sh.Pos.Y}, Cargo: sh.Cargo})
	}
	for _, d := range s.Dropoffs {
		f.Dropoffs = append(f.Dropoffs, protocol.DropoffObs{ID: d.ID, Owner: int(d.Owner), Pos: [2]int{d.Pos.X, d.Pos.Y}})
	}
	return f
}
