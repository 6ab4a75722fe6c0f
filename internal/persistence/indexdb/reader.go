package indexdb

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Reader answers questions about indexed matches. It may be opened while a
// SQLiteIndex is still writing the same file.
type Reader struct {
	db *sqlx.DB
}

func OpenReader(path string) (*Reader, error) {
	db, err := sqlx.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	return &Reader{db: db}, nil
}

func (r *Reader) Close() error { return r.db.Close() }

type MatchSummary struct {
	ID         string         `db:"id" json:"id"`
	Player     int            `db:"player" json:"player"`
	Players    int            `db:"players" json:"players"`
	Width      int            `db:"width" json:"width"`
	Height     int            `db:"height" json:"height"`
	StartedAt  string         `db:"started_at" json:"started_at"`
	FinishedAt sql.NullString `db:"finished_at" json:"-"`
	Turns      int            `db:"turns" json:"turns"`
	FinalBank  sql.NullInt64  `db:"final_bank" json:"-"`
	Spawns     int            `db:"spawns" json:"spawns"`
	Converts   int            `db:"converts" json:"converts"`
	MaxShips   int            `db:"max_ships" json:"max_ships"`
	AvgUS      float64        `db:"avg_us" json:"avg_us"`
}

type TurnStat struct {
	Turn      int    `db:"turn" json:"turn"`
	Bank      int    `db:"bank" json:"bank"`
	Digest    string `db:"digest" json:"digest"`
	Ships     int    `db:"ships" json:"ships"`
	Moves     int    `db:"moves" json:"moves"`
	Stills    int    `db:"stills" json:"stills"`
	Returning int    `db:"returning" json:"returning"`
	EndGame   int    `db:"end_game" json:"end_game"`
	Spawn     bool   `db:"spawn" json:"spawn"`
	Converted bool   `db:"converted" json:"converted"`
	Maxima    int    `db:"maxima" json:"maxima"`
	ElapsedUS int64  `db:"elapsed_us" json:"elapsed_us"`
}

// MatchSummaries lists the most recently started matches first.
func (r *Reader) MatchSummaries(ctx context.Context, limit int) ([]MatchSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	var out []MatchSummary
	err := r.db.SelectContext(ctx, &out, `
		SELECT m.id, m.player, m.players, m.width, m.height, m.started_at, m.finished_at,
			m.turns, m.final_bank,
			COALESCE(SUM(t.spawn), 0) AS spawns,
			COALESCE(SUM(t.converted), 0) AS converts,
			COALESCE(MAX(t.ships), 0) AS max_ships,
			COALESCE(AVG(t.elapsed_us), 0) AS avg_us
		FROM matches m
		LEFT JOIN turns t ON t.match_id = m.id
		GROUP BY m.id
		ORDER BY m.started_at DESC, m.id
		LIMIT ?`, limit)
	return out, err
}

func (r *Reader) MatchSummary(ctx context.Context, id string) (MatchSummary, error) {
	var out MatchSummary
	err := r.db.GetContext(ctx, &out, `
		SELECT m.id, m.player, m.players, m.width, m.height, m.started_at, m.finished_at,
			m.turns, m.final_bank,
			COALESCE(SUM(t.spawn), 0) AS spawns,
			COALESCE(SUM(t.converted), 0) AS converts,
			COALESCE(MAX(t.ships), 0) AS max_ships,
			COALESCE(AVG(t.elapsed_us), 0) AS avg_us
		FROM matches m
		LEFT JOIN turns t ON t.match_id = m.id
		WHERE m.id = ?
		GROUP BY m.id`, id)
	return out, err
}

// TurnStats returns every indexed turn of a match in turn order.
func (r *Reader) TurnStats(ctx context.Context, matchID string) ([]TurnStat, error) {
	var out []TurnStat
	err := r.db.SelectContext(ctx, &out, `
		SELECT turn, bank, digest, ships, moves, stills, returning, end_game,
			spawn, converted, maxima, elapsed_us
		FROM turns WHERE match_id = ? ORDER BY turn`, matchID)
	return out, err
}

// ShipPath returns the cells a ship moved to, one per indexed turn.
func (r *Reader) ShipPath(ctx context.Context, matchID string, ship int) ([][2]int, error) {
	rows, err := r.db.QueryxContext(ctx, `
		SELECT to_x, to_y FROM commands
		WHERE match_id = ? AND ship_id = ? ORDER BY turn`, matchID, ship)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out [][2]int
	for rows.Next() {
		var p [2]int
		if err := rows.Scan(&p[0], &p[1]); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Depots lists the depots first seen in a match, in order of appearance.
func (r *Reader) Depots(ctx context.Context, matchID string) ([][3]int, error) {
	var rows []struct {
		X     int `db:"x"`
		Y     int `db:"y"`
		First int `db:"first_turn"`
	}
	if err := r.db.SelectContext(ctx, &rows, `
		SELECT x, y, first_turn FROM depots WHERE match_id = ? ORDER BY first_turn, x, y`, matchID); err != nil {
		return nil, err
	}
	out := make([][3]int, 0, len(rows))
	for _, d := range rows {
		out = append(out, [3]int{d.X, d.Y, d.First})
	}
	return out, nil
}
