// Package worldtest builds game states for tests and local matches.
package worldtest

import (
	"github.com/tchesnutt/halite3/internal/sim/game"
	"github.com/tchesnutt/halite3/internal/sim/grid"
)

// Builder assembles a game.State fluently. Player 0 is "me" unless Me says
// otherwise.
type Builder struct {
	s *game.State
}

func NewState(width, height int) *Builder {
	topo := grid.New(width, height)
	return &Builder{s: &game.State{
		MaxTurns:  400,
		Topo:      topo,
		Halite:    make([]int, topo.Area()),
		Constants: game.DefaultConstants(),
	}}
}

func (b *Builder) Me(id game.PlayerID) *Builder {
	b.s.MyID = id
	return b
}

func (b *Builder) Turn(turn, maxTurns int) *Builder {
	b.s.Turn = turn
	b.s.MaxTurns = maxTurns
	return b
}

func (b *Builder) Constants(c game.Constants) *Builder {
	b.s.Constants = c
	return b
}

func (b *Builder) Player(id game.PlayerID, bank int, shipyard grid.Pos) *Builder {
	b.s.Players = append(b.s.Players, game.Player{ID: id, Bank: bank, Shipyard: b.s.Topo.Wrap(shipyard)})
	return b
}

func (b *Builder) Fill(h int) *Builder {
	for i := range b.s.Halite {
		b.s.Halite[i] = h
	}
	return b
}

func (b *Builder) HaliteMap(h []int) *Builder {
	copy(b.s.Halite, h)
	return b
}

func (b *Builder) Halite(p grid.Pos, h int) *Builder {
	b.s.Halite[b.s.Topo.Index(p)] = h
	return b
}

func (b *Builder) Ship(id game.ShipID, owner game.PlayerID, p grid.Pos, cargo int) *Builder {
	b.s.Ships = append(b.s.Ships, game.Ship{ID: id, Owner: owner, Pos: b.s.Topo.Wrap(p), Cargo: cargo})
	return b
}

func (b *Builder) Dropoff(id int, owner game.PlayerID, p grid.Pos) *Builder {
	b.s.Dropoffs = append(b.s.Dropoffs, game.Dropoff{ID: id, Owner: owner, Pos: b.s.Topo.Wrap(p)})
	return b
}

// Build validates the state through the frame decoder. It panics on an
// inconsistent fixture.
func (b *Builder) Build() *game.State {
	s, err := game.FromFrame(b.s.ToFrame())
	if err != nil {
		panic("worldtest: " + err.Error())
	}
	return s
}
