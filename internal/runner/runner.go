// Package runner drives one bot through a match and records what it did:
// the turn log, periodic snapshots, the sqlite index and the final archive.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"time"

	"github.com/tchesnutt/halite3/internal/persistence/archive"
	"github.com/tchesnutt/halite3/internal/persistence/indexdb"
	persistlog "github.com/tchesnutt/halite3/internal/persistence/log"
	"github.com/tchesnutt/halite3/internal/persistence/snapshot"
	"github.com/tchesnutt/halite3/internal/protocol"
	"github.com/tchesnutt/halite3/internal/sim/bot"
	"github.com/tchesnutt/halite3/internal/sim/game"
	"github.com/tchesnutt/halite3/internal/sim/tuning"
)

type Options struct {
	// DataDir holds turn logs, snapshots, archives and index.db. Empty
	// disables every recorder.
	DataDir   string
	DisableDB bool
	// SnapshotEvery writes a snapshot on turns divisible by it; 0 disables.
	SnapshotEvery int
	Tuning        tuning.Tuning
	Logger        *log.Logger
}

type Runner struct {
	opts Options
	log  *log.Logger
	bot  *bot.Bot

	turns *persistlog.TurnLogger
	idx   *indexdb.SQLiteIndex

	matchID  string
	started  bool
	player   int
	played   int
	lastBank int
	lastSnap string
	slowest  time.Duration
}

func New(opts Options) (*Runner, error) {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}
	if opts.Tuning.Convert.ShipsPerDepot == 0 {
		opts.Tuning = tuning.Defaults()
	}
	r := &Runner{
		opts: opts,
		log:  opts.Logger,
		bot:  bot.New(opts.Tuning, opts.Logger),
	}
	if opts.DataDir == "" {
		return r, nil
	}
	r.turns = persistlog.NewTurnLogger(opts.DataDir)
	if !opts.DisableDB {
		idx, err := indexdb.OpenSQLite(filepath.Join(opts.DataDir, "index.db"))
		if err != nil {
			return nil, fmt.Errorf("open index: %w", err)
		}
		r.idx = idx
	}
	return r, nil
}

// Welcome records the server's greeting. Without one the match is
// identified on the first frame.
func (r *Runner) Welcome(w protocol.WelcomeMsg) {
	r.matchID = w.MatchID
}

func (r *Runner) MatchID() string { return r.matchID }

func (r *Runner) start(s *game.State) {
	if r.matchID == "" {
		r.matchID = indexdb.NewMatchID()
	}
	r.started = true
	r.player = int(s.MyID)
	r.idx.RecordMatch(indexdb.MatchInfo{
		ID:       r.matchID,
		Player:   int(s.MyID),
		Players:  len(s.Players),
		Width:    s.Topo.Width,
		Height:   s.Topo.Height,
		MaxTurns: s.MaxTurns,
		Tuning:   r.opts.Tuning,
	})
	r.log.Printf("match %s: player %d, %dx%d, %d players", r.matchID, s.MyID, s.Topo.Width, s.Topo.Height, len(s.Players))
}

// Handle plays one frame. Recording failures are logged; only a frame the
// bot cannot read is an error.
func (r *Runner) Handle(_ context.Context, frame protocol.FrameMsg) (protocol.CommandsMsg, error) {
	s, err := game.FromFrame(frame)
	if err != nil {
		return protocol.CommandsMsg{}, err
	}
	if !r.started {
		r.start(s)
	}

	snap := r.opts.SnapshotEvery > 0 && r.opts.DataDir != "" && frame.Turn%r.opts.SnapshotEvery == 0
	var mem bot.Memory
	if snap {
		mem = r.bot.Memory()
	}

	res := r.bot.PlayTurn(s)
	msg := res.Message()
	r.played++
	r.lastBank = s.Me().Bank
	if res.Elapsed > r.slowest {
		r.slowest = res.Elapsed
	}

	if r.turns != nil {
		if err := r.turns.WriteTurn(persistlog.TurnEntry{
			MatchID:   r.matchID,
			Turn:      frame.Turn,
			Frame:     frame,
			Commands:  msg,
			Digest:    res.Digest,
			ElapsedUS: res.Elapsed.Microseconds(),
		}); err != nil {
			r.log.Printf("turn log: %v", err)
		}
	}
	r.idx.RecordTurn(r.matchID, s.Me().Bank, res, s.MyDepots())

	if snap {
		path := snapshot.Path(r.opts.DataDir, r.matchID, frame.Turn)
		err := snapshot.WriteSnapshot(path, snapshot.FrameSnapshotV1{
			Header: snapshot.Header{MatchID: r.matchID, Turn: frame.Turn, Player: frame.MyID, Digest: res.Digest},
			Frame:  frame,
			Tuning: r.opts.Tuning,
			Memory: mem,
		})
		if err != nil {
			r.log.Printf("snapshot turn %d: %v", frame.Turn, err)
		} else {
			r.lastSnap = path
		}
	}
	return msg, nil
}

// Close finishes the match record, archives its files and releases every
// recorder.
func (r *Runner) Close() error {
	var errs []error
	if r.started {
		r.idx.FinishMatch(r.matchID, r.played, r.lastBank)
		r.log.Printf("match %s done: turns=%d bank=%d slowest=%s", r.matchID, r.played, r.lastBank, r.slowest)
	}
	if r.turns != nil {
		if err := r.turns.Close(); err != nil {
			errs = append(errs, fmt.Errorf("turn log: %w", err))
		}
		if r.started {
			sources := []string{r.turns.Path(r.matchID)}
			if r.lastSnap != "" {
				sources = append(sources, r.lastSnap)
			}
			dir, err := archive.ArchiveMatch(r.opts.DataDir, archive.MatchArchiveMeta{
				MatchID:   r.matchID,
				Player:    r.player,
				Turns:     r.played,
				FinalBank: r.lastBank,
			}, sources...)
			if err != nil {
				errs = append(errs, err)
			} else {
				r.log.Printf("match %s archived to %s", r.matchID, dir)
			}
		}
	}
	if r.idx != nil {
		if err := r.idx.Close(); err != nil {
			errs = append(errs, fmt.Errorf("index: %w", err))
		}
	}
	return errors.Join(errs...)
}

// TurnLogPath is the turn log of the current match, or "" before the first
// frame or without a data dir.
func (r *Runner) TurnLogPath() string {
	if r.turns == nil || r.matchID == "" {
		return ""
	}
	return r.turns.Path(r.matchID)
}
