package runner

import (
	"fmt"
	"io"
	"log"

	persistlog "github.com/tchesnutt/halite3/internal/persistence/log"
	"github.com/tchesnutt/halite3/internal/persistence/snapshot"
	"github.com/tchesnutt/halite3/internal/sim/bot"
	"github.com/tchesnutt/halite3/internal/sim/game"
	"github.com/tchesnutt/halite3/internal/sim/tuning"
)

type Mismatch struct {
	Turn int
	Want string
	Got  string
}

type ReplayReport struct {
	MatchID    string
	Turns      int
	Mismatches []Mismatch
}

func (r ReplayReport) OK() bool { return len(r.Mismatches) == 0 }

// Replay feeds every frame of a turn log through a fresh bot and compares
// the resulting digests with the recorded ones. The tuning must be the one
// the match was played with.
func Replay(path string, cfg tuning.Tuning, logger *log.Logger) (ReplayReport, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	var rep ReplayReport
	b := bot.New(cfg, nil)
	err := persistlog.ReadTurns(path, func(e persistlog.TurnEntry) error {
		if rep.MatchID == "" {
			rep.MatchID = e.MatchID
		}
		s, err := game.FromFrame(e.Frame)
		if err != nil {
			return fmt.Errorf("turn %d: %w", e.Turn, err)
		}
		got := b.PlayTurn(s).Digest
		rep.Turns++
		if got != e.Digest {
			rep.Mismatches = append(rep.Mismatches, Mismatch{Turn: e.Turn, Want: e.Digest, Got: got})
			logger.Printf("turn %d: digest %s, recorded %s", e.Turn, got, e.Digest)
		}
		return nil
	})
	return rep, err
}

// ReplaySnapshot plays the single turn stored in a snapshot and reports
// whether it reproduces the recorded digest.
func ReplaySnapshot(path string) (bot.TurnResult, bool, error) {
	snap, err := snapshot.ReadSnapshot(path)
	if err != nil {
		return bot.TurnResult{}, false, err
	}
	s, err := game.FromFrame(snap.Frame)
	if err != nil {
		return bot.TurnResult{}, false, err
	}
	b := bot.New(snap.Tuning, nil)
	b.Restore(snap.Memory)
	res := b.PlayTurn(s)
	return res, res.Digest == snap.Header.Digest, nil
}
