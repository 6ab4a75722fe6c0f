package grid

import "testing"

func TestWrap_IdempotentAndInBounds(t *testing.T) {
	topo := New(7, 5)
	for x := -20; x <= 20; x++ {
		for y := -20; y <= 20; y++ {
			w := topo.Wrap(Pos{X: x, Y: y})
			if w.X < 0 || w.X >= 7 || w.Y < 0 || w.Y >= 5 {
				t.Fatalf("wrap(%d,%d)=%v out of bounds", x, y, w)
			}
			if again := topo.Wrap(w); again != w {
				t.Fatalf("wrap not idempotent: %v -> %v", w, again)
			}
		}
	}
}

func TestDist_SymmetricAndZero(t *testing.T) {
	topo := New(8, 6)
	for i := 0; i < topo.Area(); i++ {
		a := topo.At(i)
		if d := topo.Dist(a, a); d != 0 {
			t.Fatalf("dist(%v,%v)=%d", a, a, d)
		}
		for j := 0; j < topo.Area(); j++ {
			b := topo.At(j)
			if topo.Dist(a, b) != topo.Dist(b, a) {
				t.Fatalf("dist asymmetric for %v %v", a, b)
			}
		}
	}
}

func TestDist_Wraps(t *testing.T) {
	topo := New(10, 10)
	cases := []struct {
		a, b Pos
		want int
	}{
		{Pos{0, 0}, Pos{9, 0}, 1},
		{Pos{0, 0}, Pos{0, 9}, 1},
		{Pos{0, 0}, Pos{5, 5}, 10},
		{Pos{1, 1}, Pos{8, 2}, 4},
		{Pos{-1, 0}, Pos{9, 0}, 0},
	}
	for _, tc := range cases {
		if got := topo.Dist(tc.a, tc.b); got != tc.want {
			t.Fatalf("dist(%v,%v)=%d want %d", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestOffset_WrapsEdges(t *testing.T) {
	topo := New(4, 4)
	if got := topo.Offset(Pos{0, 0}, North); got != (Pos{0, 3}) {
		t.Fatalf("north of origin: %v", got)
	}
	if got := topo.Offset(Pos{3, 1}, East); got != (Pos{0, 1}) {
		t.Fatalf("east of edge: %v", got)
	}
	if got := topo.Offset(Pos{2, 2}, Still); got != (Pos{2, 2}) {
		t.Fatalf("still moved: %v", got)
	}
}

func TestDirectMoves_ShortensDistance(t *testing.T) {
	topo := New(16, 16)
	for i := 0; i < topo.Area(); i += 3 {
		src := topo.At(i)
		for j := 0; j < topo.Area(); j += 5 {
			dst := topo.At(j)
			moves := topo.DirectMoves(src, dst)
			if src == dst {
				if len(moves) != 0 {
					t.Fatalf("moves for same cell: %v", moves)
				}
				continue
			}
			if len(moves) == 0 || len(moves) > 2 {
				t.Fatalf("moves %v -> %v: %v", src, dst, moves)
			}
			for _, d := range moves {
				if topo.Dist(topo.Offset(src, d), dst) >= topo.Dist(src, dst) {
					t.Fatalf("move %s from %v does not approach %v", d, src, dst)
				}
			}
		}
	}
}

func TestDirectMoves_PrefersWrap(t *testing.T) {
	topo := New(10, 10)
	moves := topo.DirectMoves(Pos{1, 5}, Pos{9, 5})
	if len(moves) != 1 || moves[0] != West {
		t.Fatalf("want [WEST], got %v", moves)
	}
}

func TestRing_SizesAndDistances(t *testing.T) {
	for r := 1; r <= 12; r++ {
		ring := Ring(r)
		if len(ring) != 4*r {
			t.Fatalf("ring %d has %d offsets", r, len(ring))
		}
		seen := map[Offset]bool{}
		for _, o := range ring {
			if AbsInt(o.DX)+AbsInt(o.DY) != r {
				t.Fatalf("ring %d contains %v", r, o)
			}
			if seen[o] {
				t.Fatalf("ring %d repeats %v", r, o)
			}
			seen[o] = true
		}
	}
	if n := len(Diamond(3)); n != 4+8+12 {
		t.Fatalf("diamond(3) has %d offsets", n)
	}
}

func TestParseDir_RoundTripsLetters(t *testing.T) {
	for _, d := range []Dir{Still, North, South, East, West} {
		got, err := ParseDir(d.Letter())
		if err != nil || got != d {
			t.Fatalf("ParseDir(%q)=%v,%v", d.Letter(), got, err)
		}
	}
	if _, err := ParseDir("x"); err == nil {
		t.Fatalf("expected error")
	}
}
