package field

import "github.com/tchesnutt/halite3/internal/sim/grid"

// Occupant records why a cell is unavailable as a friendly destination.
type Occupant uint8

const (
	OccupantNone Occupant = iota
	// OccupantEnemy: an enemy ship sits on the cell this turn.
	OccupantEnemy
	// OccupantPredicted: an enemy ship is expected to move onto the cell.
	OccupantPredicted
	// OccupantFriendly: one of our ships has claimed the cell this turn.
	OccupantFriendly
)

func (o Occupant) String() string {
	switch o {
	case OccupantEnemy:
		return "enemy"
	case OccupantPredicted:
		return "predicted"
	case OccupantFriendly:
		return "friendly"
	default:
		return "none"
	}
}

type Cell struct {
	Pos    grid.Pos
	Halite int

	Value              float64
	CollectionAmount   float64
	MoveCost           float64
	SurroundingAverage float64

	Occupied bool
	Occupant Occupant

	NearbyEnemies    int
	NearbyFriendlies int

	NearestDepot    grid.Pos
	DistanceToDepot int

	// IsLocalMaximum is set by the selector and stays set for the rest of
	// the turn.
	IsLocalMaximum bool

	// PredictedEnemyCargo is the cargo an enemy is expected to carry on this
	// cell after its next move.
	PredictedEnemyCargo int
}

func (c *Cell) occupy(o Occupant) {
	c.Occupied = true
	if o > c.Occupant {
		c.Occupant = o
	}
}

func (c *Cell) release() {
	c.Occupied = false
	c.Occupant = OccupantNone
}
