package field

import (
	"container/heap"

	"github.com/tchesnutt/halite3/internal/sim/grid"
)

type heapEntry struct {
	value float64
	idx   int
}

// maxHeap orders by value, then by lower flat index so equal values pop in a
// stable order.
type maxHeap []heapEntry

func (h maxHeap) Len() int { return len(h) }
func (h maxHeap) Less(i, j int) bool {
	if h[i].value != h[j].value {
		return h[i].value > h[j].value
	}
	return h[i].idx < h[j].idx
}
func (h maxHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *maxHeap) Push(x any)   { *h = append(*h, x.(heapEntry)) }
func (h *maxHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

func (f *Field) pushCandidate(idx int, value float64) {
	heap.Push(&f.heap, heapEntry{value: value, idx: idx})
}

// SelectLocalMaxima pops the heap until max candidates are accepted or the
// heap runs dry. A popped cell is accepted when no accepted maximum already
// covers it and at least one friendly ship is nearby; acceptance marks every
// cell within the suppression radius. The heap is empty on return.
func (f *Field) SelectLocalMaxima(max, suppression int) []grid.Pos {
	f.candidates = f.candidates[:0]
	ring := grid.Diamond(suppression)
	for len(f.candidates) < max && f.heap.Len() > 0 {
		e := heap.Pop(&f.heap).(heapEntry)
		c := &f.cells[e.idx]
		if c.IsLocalMaximum || c.NearbyFriendlies == 0 {
			continue
		}
		c.IsLocalMaximum = true
		for _, o := range ring {
			f.cells[f.Topo.Index(f.Topo.Shift(c.Pos, o.DX, o.DY))].IsLocalMaximum = true
		}
		f.candidates = append(f.candidates, c.Pos)
	}
	f.heap = f.heap[:0]
	return f.candidates
}

// Candidates returns the maxima accepted by the last SelectLocalMaxima call.
func (f *Field) Candidates() []grid.Pos { return f.candidates }

// PendingMaxima is the number of entries still queued for selection.
func (f *Field) PendingMaxima() int { return f.heap.Len() }
