package schedule

import (
	"sort"

	"github.com/tchesnutt/halite3/internal/sim/game"
)

// Order returns the commit order for this turn:
//
//  1. ships that were stalled,
//  2. ships at a depot,
//  3. ships one step from a depot, richest current cell first,
//  4. other homebound ships, nearest first,
//  5. gatherers, farthest first,
//  6. alive ships no queue mentions, by id.
//
// Ships not in alive are skipped and no ship appears twice. valueOf reports
// the current cell value of a ship.
func Order(q *Queues, alive []game.ShipID, valueOf func(game.ShipID) float64) []game.ShipID {
	live := make(map[game.ShipID]bool, len(alive))
	for _, id := range alive {
		live[id] = true
	}
	out := make([]game.ShipID, 0, len(alive))
	take := func(ids []game.ShipID) {
		for _, id := range ids {
			if live[id] {
				out = append(out, id)
				delete(live, id)
			}
		}
	}

	take(q.Stalled)
	take(q.AtDepot)

	doorway := make([]game.ShipID, 0, len(q.ComingHome.Bucket(1)))
	for _, id := range q.ComingHome.Bucket(1) {
		if live[id] {
			doorway = append(doorway, id)
		}
	}
	values := make(map[game.ShipID]float64, len(doorway))
	for _, id := range doorway {
		values[id] = valueOf(id)
	}
	sort.SliceStable(doorway, func(i, j int) bool { return values[doorway[i]] > values[doorway[j]] })
	take(doorway)

	take(q.ComingHome.Ascending(2))
	take(q.Gathering.Descending())
	take(alive)
	return out
}
