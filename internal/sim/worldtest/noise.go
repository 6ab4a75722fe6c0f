package worldtest

import (
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/tchesnutt/halite3/internal/sim/grid"
)

const maxCellHalite = 1000

// NoiseHalite generates a halite map that is mirror-symmetric for the given
// player count: left/right for two players, both axes for four.
func NoiseHalite(topo grid.Topology, seed int64, players int) []int {
	noise := opensimplex.NewNormalized(seed)
	out := make([]int, topo.Area())
	for y := 0; y < topo.Height; y++ {
		for x := 0; x < topo.Width; x++ {
			sx, sy := x, y
			if mx := topo.Width - 1 - x; mx < sx {
				sx = mx
			}
			if players > 2 {
				if my := topo.Height - 1 - y; my < sy {
					sy = my
				}
			}
			n := octaveNoise(noise, float64(sx), float64(sy), 3, 0.12, 0.5)
			out[y*topo.Width+x] = int(math.Round(maxCellHalite * n * n * n))
		}
	}
	return out
}

// Shipyards places player shipyards at the mirror points NoiseHalite uses.
func Shipyards(topo grid.Topology, players int) []grid.Pos {
	left, right := topo.Width/4, topo.Width-1-topo.Width/4
	if players <= 2 {
		mid := topo.Height / 2
		out := []grid.Pos{{X: left, Y: mid}, {X: right, Y: mid}}
		return out[:max(players, 1)]
	}
	top, bottom := topo.Height/4, topo.Height-1-topo.Height/4
	return []grid.Pos{{X: left, Y: top}, {X: right, Y: top}, {X: left, Y: bottom}, {X: right, Y: bottom}}
}

func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0
	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}
	return total / maxVal
}
