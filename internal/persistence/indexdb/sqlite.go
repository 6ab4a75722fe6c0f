package indexdb

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/tchesnutt/halite3/internal/protocol"
	"github.com/tchesnutt/halite3/internal/sim/bot"
	"github.com/tchesnutt/halite3/internal/sim/grid"
	"github.com/tchesnutt/halite3/internal/sim/policy"
	"github.com/tchesnutt/halite3/internal/sim/tuning"
)

// NewMatchID returns a fresh id for a match that did not come with one.
func NewMatchID() string { return uuid.NewString() }

// SQLiteIndex is a secondary, queryable index of played matches. Writes are
// queued to a single goroutine and dropped when it falls behind; the turn
// log stays the source of truth.
type SQLiteIndex struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	// mu guards closed and the close of ch against in-flight sends.
	mu      sync.RWMutex
	closed  bool
	dropped atomic.Int64
}

type reqKind int

const (
	reqMatch reqKind = iota + 1
	reqTurn
	reqFinish
)

type req struct {
	kind reqKind

	match  MatchInfo
	turn   turnRow
	finish finishRow
}

// MatchInfo describes a match as the bot saw it on its first frame.
type MatchInfo struct {
	ID       string
	Player   int
	Players  int
	Width    int
	Height   int
	MaxTurns int
	Tuning   tuning.Tuning
}

type turnRow struct {
	MatchID   string
	Turn      int
	Bank      int
	Digest    string
	Spawn     bool
	Converted bool
	Maxima    int
	Evicted   int
	ElapsedUS int64
	Commands  []policy.Command
	Depots    []grid.Pos
}

type finishRow struct {
	MatchID string
	Turns   int
	Bank    int
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		ch: make(chan req, 4096),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS matches (
			id TEXT PRIMARY KEY,
			player INTEGER NOT NULL,
			players INTEGER NOT NULL,
			width INTEGER NOT NULL,
			height INTEGER NOT NULL,
			max_turns INTEGER NOT NULL,
			tuning_digest TEXT NOT NULL,
			tuning_json TEXT NOT NULL,
			started_at TEXT NOT NULL,
			finished_at TEXT,
			turns INTEGER NOT NULL DEFAULT 0,
			final_bank INTEGER
		);`,
		`CREATE TABLE IF NOT EXISTS turns (
			match_id TEXT NOT NULL,
			turn INTEGER NOT NULL,
			bank INTEGER NOT NULL,
			digest TEXT NOT NULL,
			ships INTEGER NOT NULL,
			moves INTEGER NOT NULL,
			stills INTEGER NOT NULL,
			returning INTEGER NOT NULL,
			end_game INTEGER NOT NULL,
			spawn INTEGER NOT NULL,
			converted INTEGER NOT NULL,
			maxima INTEGER NOT NULL,
			evicted INTEGER NOT NULL,
			elapsed_us INTEGER NOT NULL,
			PRIMARY KEY (match_id, turn)
		);`,
		`CREATE TABLE IF NOT EXISTS commands (
			match_id TEXT NOT NULL,
			turn INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			ship_id INTEGER NOT NULL,
			action TEXT NOT NULL,
			dir TEXT NOT NULL,
			mode TEXT NOT NULL,
			from_x INTEGER NOT NULL,
			from_y INTEGER NOT NULL,
			to_x INTEGER NOT NULL,
			to_y INTEGER NOT NULL,
			PRIMARY KEY (match_id, turn, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_commands_ship_turn ON commands(match_id, ship_id, turn);`,
		`CREATE TABLE IF NOT EXISTS depots (
			match_id TEXT NOT NULL,
			x INTEGER NOT NULL,
			y INTEGER NOT NULL,
			first_turn INTEGER NOT NULL,
			PRIMARY KEY (match_id, x, y)
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	_, err := db.Exec(`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','1')`)
	return err
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		close(s.ch)
		s.mu.Unlock()
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

// Dropped counts writes discarded because the queue was full.
func (s *SQLiteIndex) Dropped() int64 { return s.dropped.Load() }

func (s *SQLiteIndex) enqueue(r req) {
	if s == nil {
		return
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return
	}
	select {
	case s.ch <- r:
	default:
		s.dropped.Add(1)
	}
}

func (s *SQLiteIndex) RecordMatch(m MatchInfo) {
	s.enqueue(req{kind: reqMatch, match: m})
}

// RecordTurn indexes one decided turn. depots are ours, as seen this turn.
func (s *SQLiteIndex) RecordTurn(matchID string, bank int, res bot.TurnResult, depots []grid.Pos) {
	s.enqueue(req{kind: reqTurn, turn: turnRow{
		MatchID:   matchID,
		Turn:      res.Turn,
		Bank:      bank,
		Digest:    res.Digest,
		Spawn:     res.Spawn,
		Converted: res.Converted,
		Maxima:    len(res.Candidates),
		Evicted:   res.Evicted,
		ElapsedUS: res.Elapsed.Microseconds(),
		Commands:  append([]policy.Command(nil), res.Commands...),
		Depots:    append([]grid.Pos(nil), depots...),
	}})
}

func (s *SQLiteIndex) FinishMatch(matchID string, turns, bank int) {
	s.enqueue(req{kind: reqFinish, finish: finishRow{MatchID: matchID, Turns: turns, Bank: bank}})
}

func tuningDigest(t tuning.Tuning) (string, []byte) {
	b, _ := json.Marshal(t)
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), b
}

// timeLayout has fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func now() string { return time.Now().UTC().Format(timeLayout) }

func bit(v bool) int {
	if v {
		return 1
	}
	return 0
}

func (s *SQLiteIndex) loop() {
	ctx := context.Background()

	insertMatch, _ := s.db.Prepare(`INSERT OR REPLACE INTO matches(id,player,players,width,height,max_turns,tuning_digest,tuning_json,started_at) VALUES(?,?,?,?,?,?,?,?,?)`)
	insertTurn, _ := s.db.Prepare(`INSERT OR REPLACE INTO turns(match_id,turn,bank,digest,ships,moves,stills,returning,end_game,spawn,converted,maxima,evicted,elapsed_us) VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	insertCommand, _ := s.db.Prepare(`INSERT OR REPLACE INTO commands(match_id,turn,seq,ship_id,action,dir,mode,from_x,from_y,to_x,to_y) VALUES(?,?,?,?,?,?,?,?,?,?,?)`)
	insertDepot, _ := s.db.Prepare(`INSERT OR IGNORE INTO depots(match_id,x,y,first_turn) VALUES(?,?,?,?)`)
	finishMatch, _ := s.db.Prepare(`UPDATE matches SET finished_at=?, turns=?, final_bank=? WHERE id=?`)
	defer func() {
		for _, st := range []*sql.Stmt{insertMatch, insertTurn, insertCommand, insertDepot, finishMatch} {
			if st != nil {
				_ = st.Close()
			}
		}
	}()

	var (
		tx            *sql.Tx
		opCount       int
		lastCommit    = time.Now()
		commitEvery   = 2000
		commitMaxWait = 2 * time.Second
	)

	begin := func() {
		if tx != nil {
			return
		}
		txx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			time.Sleep(50 * time.Millisecond)
			return
		}
		tx = txx
		opCount = 0
		lastCommit = time.Now()
	}
	commit := func() {
		if tx == nil {
			return
		}
		_ = tx.Commit()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	rollback := func() {
		if tx == nil {
			return
		}
		_ = tx.Rollback()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	exec := func(st *sql.Stmt, args ...any) bool {
		if st == nil {
			return false
		}
		if _, err := tx.Stmt(st).Exec(args...); err != nil {
			rollback()
			return false
		}
		opCount++
		return true
	}

	for r := range s.ch {
		begin()
		if tx == nil {
			continue
		}
		switch r.kind {
		case reqMatch:
			m := r.match
			digest, raw := tuningDigest(m.Tuning)
			exec(insertMatch, m.ID, m.Player, m.Players, m.Width, m.Height, m.MaxTurns,
				digest, string(raw), now())

		case reqTurn:
			t := r.turn
			moves, stills, returning, endGame := 0, 0, 0, 0
			for _, c := range t.Commands {
				switch {
				case c.Convert:
				case c.Dir == grid.Still:
					stills++
				default:
					moves++
				}
				switch c.Mode {
				case policy.ModeReturning:
					returning++
				case policy.ModeEndGame:
					endGame++
				}
			}
			if !exec(insertTurn, t.MatchID, t.Turn, t.Bank, t.Digest, len(t.Commands), moves, stills,
				returning, endGame, bit(t.Spawn), bit(t.Converted), t.Maxima, t.Evicted, t.ElapsedUS) {
				continue
			}
			ok := true
			for i, c := range t.Commands {
				action, dir := protocol.ActionMove, c.Dir.Letter()
				if c.Convert {
					action, dir = protocol.ActionConvert, ""
				}
				if ok = exec(insertCommand, t.MatchID, t.Turn, i, int(c.Ship), action, dir, c.Mode.String(),
					c.From.X, c.From.Y, c.To.X, c.To.Y); !ok {
					break
				}
			}
			for _, d := range t.Depots {
				if !ok {
					break
				}
				ok = exec(insertDepot, t.MatchID, d.X, d.Y, t.Turn)
			}

		case reqFinish:
			f := r.finish
			exec(finishMatch, now(), f.Turns, f.Bank, f.MatchID)
		}
		if tx != nil && (opCount >= commitEvery || time.Since(lastCommit) >= commitMaxWait) {
			commit()
		}
	}

	commit()
}
