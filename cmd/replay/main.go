package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/tchesnutt/halite3/internal/persistence/snapshot"
	"github.com/tchesnutt/halite3/internal/runner"
	"github.com/tchesnutt/halite3/internal/sim/tuning"
)

func main() {
	var (
		turnsPath  = flag.String("turns", "", "turn log (turns-<match>.jsonl.zst) to verify")
		snapPath   = flag.String("snapshot", "", "single turn snapshot (.frame.zst) to replay")
		tuningPath = flag.String("tuning", "./configs/tuning.yaml", "tuning the match was played with")
		verbose    = flag.Bool("v", false, "log every mismatching turn")
	)
	flag.Parse()

	if *turnsPath == "" && *snapPath == "" {
		fmt.Fprintln(os.Stderr, "missing -turns or -snapshot")
		os.Exit(2)
	}

	if *snapPath != "" {
		h, err := snapshot.ReadHeader(*snapPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "read snapshot:", err)
			os.Exit(1)
		}
		res, ok, err := runner.ReplaySnapshot(*snapPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "replay snapshot:", err)
			os.Exit(1)
		}
		fmt.Printf("snapshot v%d match=%s turn=%d player=%d commands=%d spawn=%v digest=%s recorded=%s ok=%v\n",
			h.Version, h.MatchID, h.Turn, h.Player, len(res.Commands), res.Spawn, res.Digest, h.Digest, ok)
		if !ok {
			os.Exit(1)
		}
	}

	if *turnsPath == "" {
		return
	}
	tune, err := tuning.Load(*tuningPath)
	if err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintln(os.Stderr, "load tuning:", err)
			os.Exit(1)
		}
		tune = tuning.Defaults()
	}
	var logger *log.Logger
	if *verbose {
		logger = log.New(os.Stderr, "[replay] ", log.LstdFlags)
	}
	rep, err := runner.Replay(*turnsPath, tune, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, "replay:", err)
		os.Exit(1)
	}
	fmt.Printf("match=%s turns=%d mismatches=%d\n", rep.MatchID, rep.Turns, len(rep.Mismatches))
	if !rep.OK() {
		first := rep.Mismatches[0]
		fmt.Printf("first mismatch at turn %d: got %s want %s\n", first.Turn, first.Got, first.Want)
		os.Exit(1)
	}
}
