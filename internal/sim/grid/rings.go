package grid

import "sync"

// Offset is a relative displacement applied with Topology.Shift.
type Offset struct {
	DX int
	DY int
}

var (
	ringsMu sync.Mutex
	rings   = map[int][]Offset{}
)

// Ring returns the 4r offsets at exact Manhattan distance r (r > 0), walking
// the diamond clockwise from due south. The slice is cached and shared; do not
// modify it.
func Ring(r int) []Offset {
	if r <= 0 {
		return nil
	}
	ringsMu.Lock()
	defer ringsMu.Unlock()
	if out, ok := rings[r]; ok {
		return out
	}
	out := make([]Offset, 0, 4*r)
	for i := 0; i < r; i++ {
		out = append(out, Offset{DX: -i, DY: r - i})
	}
	for i := 0; i < r; i++ {
		out = append(out, Offset{DX: -r + i, DY: -i})
	}
	for i := 0; i < r; i++ {
		out = append(out, Offset{DX: i, DY: -r + i})
	}
	for i := 0; i < r; i++ {
		out = append(out, Offset{DX: r - i, DY: i})
	}
	rings[r] = out
	return out
}

// Diamond returns every offset with 0 < |dx|+|dy| <= radius, ring by ring.
func Diamond(radius int) []Offset {
	if radius <= 0 {
		return nil
	}
	out := make([]Offset, 0, 2*radius*(radius+1))
	for r := 1; r <= radius; r++ {
		out = append(out, Ring(r)...)
	}
	return out
}
