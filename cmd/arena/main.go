package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tchesnutt/halite3/internal/sim/arena"
	"github.com/tchesnutt/halite3/internal/sim/tuning"
)

func main() {
	var (
		width      = flag.Int("width", 32, "map width (height matches)")
		players    = flag.Int("players", 2, "players (2 or 4)")
		turns      = flag.Int("turns", 400, "max turns")
		seed       = flag.Int64("seed", 1, "first seed")
		games      = flag.Int("games", 1, "matches to play, seeds counting up")
		tuningPath = flag.String("tuning", "./configs/tuning.yaml", "path to tuning.yaml")
		verbose    = flag.Bool("v", false, "log every bot turn")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[arena] ", log.LstdFlags|log.Lmicroseconds)
	tune, err := tuning.Load(*tuningPath)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Fatalf("load tuning: %v", err)
		}
		tune = tuning.Defaults()
	}
	botLog := log.New(io.Discard, "", 0)
	if *verbose {
		botLog = log.New(os.Stderr, "[bot] ", log.LstdFlags|log.Lmicroseconds)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	wins := make([]int, *players)
	for g := 0; g < *games; g++ {
		start := time.Now()
		m := arena.New(arena.Config{
			Width:    *width,
			Players:  *players,
			MaxTurns: *turns,
			Seed:     *seed + int64(g),
			Tuning:   tune,
			Logger:   botLog,
		})
		res, err := m.Run(ctx, nil)
		if err != nil {
			logger.Fatalf("seed %d: %v", *seed+int64(g), err)
		}
		best := 0
		for i, b := range res.Banks {
			if b > res.Banks[best] {
				best = i
			}
		}
		if best < len(wins) {
			wins[best]++
		}
		fmt.Printf("seed=%d turns=%d banks=%v collisions=%d friendly=%d spawns=%d conversions=%d took=%s\n",
			*seed+int64(g), res.Turns, res.Banks, res.Stats.Collisions, res.Stats.FriendlyCollisions,
			res.Stats.Spawns, res.Stats.Conversions, time.Since(start).Round(time.Millisecond))
	}
	if *games > 1 {
		fmt.Printf("wins=%v\n", wins)
	}
}
