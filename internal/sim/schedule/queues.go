// Package schedule decides the order in which ships commit their moves each
// turn. The order is fixed from the queues filled during the previous turn's
// decisions.
package schedule

import (
	"sort"

	"github.com/tchesnutt/halite3/internal/sim/game"
)

// Buckets maps a distance to the ships queued at that distance, in insertion
// order.
type Buckets struct {
	keys []int
	ids  map[int][]game.ShipID
}

func (b *Buckets) Add(dist int, id game.ShipID) {
	if b.ids == nil {
		b.ids = map[int][]game.ShipID{}
	}
	if _, ok := b.ids[dist]; !ok {
		i := sort.SearchInts(b.keys, dist)
		b.keys = append(b.keys, 0)
		copy(b.keys[i+1:], b.keys[i:])
		b.keys[i] = dist
	}
	b.ids[dist] = append(b.ids[dist], id)
}

// Bucket returns the ships queued at exactly dist.
func (b *Buckets) Bucket(dist int) []game.ShipID {
	return b.ids[dist]
}

// Distances lists the non-empty distances in increasing order.
func (b *Buckets) Distances() []int { return b.keys }

// Ascending flattens buckets with distance >= from, nearest first.
func (b *Buckets) Ascending(from int) []game.ShipID {
	var out []game.ShipID
	for _, k := range b.keys {
		if k >= from {
			out = append(out, b.ids[k]...)
		}
	}
	return out
}

// Descending flattens every bucket, farthest first.
func (b *Buckets) Descending() []game.ShipID {
	var out []game.ShipID
	for i := len(b.keys) - 1; i >= 0; i-- {
		out = append(out, b.ids[b.keys[i]]...)
	}
	return out
}

func (b *Buckets) Len() int {
	n := 0
	for _, ids := range b.ids {
		n += len(ids)
	}
	return n
}

func (b *Buckets) Reset() {
	b.keys = b.keys[:0]
	clear(b.ids)
}

// Queues collects where each ship should be scheduled next turn.
type Queues struct {
	Stalled    []game.ShipID
	AtDepot    []game.ShipID
	ComingHome Buckets
	Gathering  Buckets
}

func NewQueues() *Queues { return &Queues{} }

func (q *Queues) Len() int {
	return len(q.Stalled) + len(q.AtDepot) + q.ComingHome.Len() + q.Gathering.Len()
}

func (q *Queues) Reset() {
	q.Stalled = q.Stalled[:0]
	q.AtDepot = q.AtDepot[:0]
	q.ComingHome.Reset()
	q.Gathering.Reset()
}

// QueueState is a copy of the queues that survives encoding.
type QueueState struct {
	Stalled    []game.ShipID         `json:"stalled,omitempty"`
	AtDepot    []game.ShipID         `json:"at_depot,omitempty"`
	ComingHome map[int][]game.ShipID `json:"coming_home,omitempty"`
	Gathering  map[int][]game.ShipID `json:"gathering,omitempty"`
}

func (b *Buckets) export() map[int][]game.ShipID {
	if len(b.keys) == 0 {
		return nil
	}
	out := make(map[int][]game.ShipID, len(b.keys))
	for _, k := range b.keys {
		out[k] = append([]game.ShipID(nil), b.ids[k]...)
	}
	return out
}

func (b *Buckets) load(m map[int][]game.ShipID) {
	b.Reset()
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	for _, k := range keys {
		for _, id := range m[k] {
			b.Add(k, id)
		}
	}
}

func (q *Queues) State() QueueState {
	return QueueState{
		Stalled:    append([]game.ShipID(nil), q.Stalled...),
		AtDepot:    append([]game.ShipID(nil), q.AtDepot...),
		ComingHome: q.ComingHome.export(),
		Gathering:  q.Gathering.export(),
	}
}

// Restore replaces the queues with st.
func (q *Queues) Restore(st QueueState) {
	q.Reset()
	q.Stalled = append(q.Stalled, st.Stalled...)
	q.AtDepot = append(q.AtDepot, st.AtDepot...)
	q.ComingHome.load(st.ComingHome)
	q.Gathering.load(st.Gathering)
}
