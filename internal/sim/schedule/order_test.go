package schedule

import (
	"reflect"
	"testing"

	"github.com/tchesnutt/halite3/internal/sim/game"
)

func TestBuckets_Contracts(t *testing.T) {
	var b Buckets
	b.Add(3, 30)
	b.Add(1, 10)
	b.Add(3, 31)
	b.Add(2, 20)
	b.Add(0, 1)

	if got := b.Distances(); !reflect.DeepEqual(got, []int{0, 1, 2, 3}) {
		t.Fatalf("distances=%v", got)
	}
	if got := b.Ascending(2); !reflect.DeepEqual(got, []game.ShipID{20, 30, 31}) {
		t.Fatalf("ascending=%v", got)
	}
	if got := b.Descending(); !reflect.DeepEqual(got, []game.ShipID{30, 31, 20, 10, 1}) {
		t.Fatalf("descending=%v", got)
	}
	if b.Len() != 5 {
		t.Fatalf("len=%d", b.Len())
	}
	b.Reset()
	if b.Len() != 0 || len(b.Distances()) != 0 || len(b.Descending()) != 0 {
		t.Fatalf("reset left entries")
	}
	b.Add(4, 40)
	if got := b.Descending(); !reflect.DeepEqual(got, []game.ShipID{40}) {
		t.Fatalf("after reset=%v", got)
	}
}

func TestOrder_FixedConcatenation(t *testing.T) {
	q := NewQueues()
	q.Stalled = []game.ShipID{5}
	q.AtDepot = []game.ShipID{8}
	q.ComingHome.Add(1, 1)
	q.ComingHome.Add(1, 2)
	q.ComingHome.Add(1, 3)
	q.ComingHome.Add(4, 4)
	q.ComingHome.Add(2, 6)
	q.Gathering.Add(0, 9)
	q.Gathering.Add(7, 10)
	q.Gathering.Add(3, 11)

	values := map[game.ShipID]float64{1: 10, 2: 50, 3: 10}
	alive := []game.ShipID{1, 2, 3, 4, 5, 6, 8, 9, 10, 11, 12}
	got := Order(q, alive, func(id game.ShipID) float64 { return values[id] })
	want := []game.ShipID{5, 8, 2, 1, 3, 6, 4, 10, 11, 9, 12}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("order=%v want %v", got, want)
	}
}

func TestOrder_SkipsVanishedAndDuplicates(t *testing.T) {
	q := NewQueues()
	q.Stalled = []game.ShipID{1, 2}
	q.Gathering.Add(3, 1)
	q.ComingHome.Add(1, 7)

	got := Order(q, []game.ShipID{1, 3}, func(game.ShipID) float64 {
		t.Fatalf("valueOf must only be asked about alive ships")
		return 0
	})
	if !reflect.DeepEqual(got, []game.ShipID{1, 3}) {
		t.Fatalf("order=%v", got)
	}
}

func TestQueues_Reset(t *testing.T) {
	q := NewQueues()
	q.Stalled = append(q.Stalled, 1)
	q.AtDepot = append(q.AtDepot, 2)
	q.ComingHome.Add(1, 3)
	q.Gathering.Add(2, 4)
	if q.Len() != 4 {
		t.Fatalf("len=%d", q.Len())
	}
	q.Reset()
	if q.Len() != 0 {
		t.Fatalf("queues not drained")
	}
}
