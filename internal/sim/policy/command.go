package policy

import (
	"github.com/tchesnutt/halite3/internal/sim/game"
	"github.com/tchesnutt/halite3/internal/sim/grid"
)

type Mode uint8

const (
	ModeGathering Mode = iota
	ModeReturning
	ModeEndGame
	ModeConverting
)

func (m Mode) String() string {
	switch m {
	case ModeReturning:
		return "returning"
	case ModeEndGame:
		return "endgame"
	case ModeConverting:
		return "converting"
	default:
		return "gathering"
	}
}

// Command is one ship's directive for the turn. Convert commands keep Dir at
// Still and To equal to From.
type Command struct {
	Ship    game.ShipID
	Convert bool
	Dir     grid.Dir
	From    grid.Pos
	To      grid.Pos
	Mode    Mode
}
