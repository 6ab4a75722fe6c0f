// Package arena is a small deterministic match simulator for self-play and
// tests. Its rules follow the game closely enough to exercise the bot; they
// are not a referee.
package arena

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/tchesnutt/halite3/internal/protocol"
	"github.com/tchesnutt/halite3/internal/sim/bot"
	"github.com/tchesnutt/halite3/internal/sim/game"
	"github.com/tchesnutt/halite3/internal/sim/grid"
	"github.com/tchesnutt/halite3/internal/sim/tuning"
	"github.com/tchesnutt/halite3/internal/sim/worldtest"
)

type Config struct {
	Width     int
	Height    int
	Players   int
	MaxTurns  int
	Seed      int64
	StartBank int
	Constants game.Constants
	Tuning    tuning.Tuning
	Logger    *log.Logger
}

func (c Config) withDefaults() Config {
	if c.Width <= 0 {
		c.Width = 32
	}
	if c.Height <= 0 {
		c.Height = c.Width
	}
	if c.Players != 4 {
		c.Players = 2
	}
	if c.MaxTurns <= 0 {
		c.MaxTurns = 400
	}
	if c.StartBank <= 0 {
		c.StartBank = 5000
	}
	if c.Constants == (game.Constants{}) {
		c.Constants = game.DefaultConstants()
	}
	if c.Tuning.Convert.ShipsPerDepot == 0 {
		c.Tuning = tuning.Defaults()
	}
	return c
}

type ship struct {
	id    game.ShipID
	owner game.PlayerID
	pos   grid.Pos
	cargo int
}

// Seat plays one player from outside the match, typically a remote bot.
type Seat interface {
	Play(ctx context.Context, frame protocol.FrameMsg) (protocol.CommandsMsg, error)
}

type player struct {
	id       game.PlayerID
	bank     int
	shipyard grid.Pos
	bot      *bot.Bot
	seat     Seat
}

// Match holds the full world; every player sees it through FrameFor.
type Match struct {
	cfg     Config
	topo    grid.Topology
	halite  []int
	players []*player
	ships   map[game.ShipID]*ship
	drops   []game.Dropoff
	turn    int

	nextShip game.ShipID
	nextDrop int
	stats    Stats
}

type Stats struct {
	Collisions         int
	FriendlyCollisions int
	Spawns             int
	Conversions        int
}

type Result struct {
	Turns int
	Banks []int
	Stats Stats
}

func New(cfg Config) *Match {
	cfg = cfg.withDefaults()
	topo := grid.New(cfg.Width, cfg.Height)
	m := &Match{
		cfg:    cfg,
		topo:   topo,
		halite: worldtest.NoiseHalite(topo, cfg.Seed, cfg.Players),
		ships:  map[game.ShipID]*ship{},
	}
	total := 0
	for _, h := range m.halite {
		total += h
	}
	m.cfg.Constants.InitialHalite = total
	for i, yard := range worldtest.Shipyards(topo, cfg.Players) {
		m.halite[topo.Index(yard)] = 0
		m.players = append(m.players, &player{
			id:       game.PlayerID(i),
			bank:     cfg.StartBank,
			shipyard: yard,
			bot:      bot.New(cfg.Tuning, cfg.Logger),
		})
	}
	return m
}

// Seat hands player p to an outside seat instead of the built-in bot.
func (m *Match) Seat(p game.PlayerID, seat Seat) error {
	if int(p) < 0 || int(p) >= len(m.players) {
		return fmt.Errorf("arena: no player %d", p)
	}
	m.players[p].seat = seat
	return nil
}

func (m *Match) Players() int { return len(m.players) }

func (m *Match) Turn() int { return m.turn }

func (m *Match) Done() bool { return m.turn >= m.cfg.MaxTurns }

func (m *Match) Topology() grid.Topology { return m.topo }

// FrameFor is the FRAME player p receives this turn.
func (m *Match) FrameFor(p game.PlayerID) protocol.FrameMsg {
	f := protocol.FrameMsg{
		Type:            protocol.TypeFrame,
		ProtocolVersion: protocol.Version,
		Turn:            m.turn,
		MaxTurns:        m.cfg.MaxTurns,
		MyID:            int(p),
		Width:           m.topo.Width,
		Height:          m.topo.Height,
		Halite:          append([]int(nil), m.halite...),
		Players:         make([]protocol.PlayerObs, 0, len(m.players)),
		Ships:           make([]protocol.ShipObs, 0, len(m.ships)),
		Dropoffs:        make([]protocol.DropoffObs, 0, len(m.drops)),
		Constants: protocol.ConstantsObs{
			ShipCost:      m.cfg.Constants.ShipCost,
			DropoffCost:   m.cfg.Constants.DropoffCost,
			MaxCargo:      m.cfg.Constants.MaxCargo,
			ExtractRatio:  m.cfg.Constants.ExtractRatio,
			MoveCostRatio: m.cfg.Constants.MoveCostRatio,
			InitialHalite: m.cfg.Constants.InitialHalite,
		},
	}
	for _, pl := range m.players {
		f.Players = append(f.Players, protocol.PlayerObs{ID: int(pl.id), Bank: pl.bank, Shipyard: [2]int{pl.shipyard.X, pl.shipyard.Y}})
	}
	for _, sh := range m.sortedShips() {
		f.Ships = append(f.Ships, protocol.ShipObs{ID: int(sh.id), Owner: int(sh.owner), Pos: [2]int{sh.pos.X, sh.pos.Y}, Cargo: sh.cargo})
	}
	for _, d := range m.drops {
		f.Dropoffs = append(f.Dropoffs, protocol.DropoffObs{ID: d.ID, Owner: int(d.Owner), Pos: [2]int{d.Pos.X, d.Pos.Y}})
	}
	return f
}

// TurnRecord is what one player saw and answered in one turn. Result is nil
// for players behind a Seat.
type TurnRecord struct {
	Player   game.PlayerID
	Frame    protocol.FrameMsg
	Commands protocol.CommandsMsg
	Result   *bot.TurnResult
}

// Step lets every player decide against the same snapshot, then applies all
// commands.
func (m *Match) Step(ctx context.Context) ([]TurnRecord, error) {
	if m.Done() {
		return nil, fmt.Errorf("arena: match over at turn %d", m.turn)
	}
	records := make([]TurnRecord, 0, len(m.players))
	for _, pl := range m.players {
		frame := m.FrameFor(pl.id)
		rec := TurnRecord{Player: pl.id, Frame: frame}
		if pl.seat != nil {
			msg, err := pl.seat.Play(ctx, frame)
			if err != nil {
				return nil, fmt.Errorf("arena: player %d turn %d: %w", pl.id, m.turn, err)
			}
			rec.Commands = msg
		} else {
			s, err := game.FromFrame(frame)
			if err != nil {
				return nil, fmt.Errorf("arena: frame for player %d: %w", pl.id, err)
			}
			res := pl.bot.PlayTurn(s)
			rec.Result = &res
			rec.Commands = res.Message()
		}
		records = append(records, rec)
	}
	m.apply(records)
	m.turn++
	return records, nil
}

// Run plays until the last turn or ctx is done. onTurn may be nil.
func (m *Match) Run(ctx context.Context, onTurn func([]TurnRecord) error) (Result, error) {
	for !m.Done() {
		if err := ctx.Err(); err != nil {
			return m.Result(), err
		}
		recs, err := m.Step(ctx)
		if err != nil {
			return m.Result(), err
		}
		if onTurn != nil {
			if err := onTurn(recs); err != nil {
				return m.Result(), err
			}
		}
	}
	return m.Result(), nil
}

func (m *Match) Result() Result {
	r := Result{Turns: m.turn, Stats: m.stats}
	for _, pl := range m.players {
		r.Banks = append(r.Banks, pl.bank)
	}
	return r
}

func (m *Match) sortedShips() []*ship {
	out := make([]*ship, 0, len(m.ships))
	for _, sh := range m.ships {
		out = append(out, sh)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

func (m *Match) depotOwner(p grid.Pos) (game.PlayerID, bool) {
	for _, pl := range m.players {
		if pl.shipyard == p {
			return pl.id, true
		}
	}
	for _, d := range m.drops {
		if d.Pos == p {
			return d.Owner, true
		}
	}
	return 0, false
}

// apply runs every wire command. Commands for unknown or foreign ships,
// repeated ships and unreadable directions are ignored.
func (m *Match) apply(records []TurnRecord) {
	moved := map[game.ShipID]bool{}
	acted := map[game.ShipID]bool{}
	for _, rec := range records {
		pl := m.players[rec.Player]
		for _, c := range rec.Commands.Commands {
			id := game.ShipID(c.ShipID)
			sh, ok := m.ships[id]
			if !ok || sh.owner != pl.id || acted[id] {
				continue
			}
			acted[id] = true
			switch c.Action {
			case protocol.ActionConvert:
				m.convert(pl, sh)
			case protocol.ActionMove:
				d, err := grid.ParseDir(c.Dir)
				if err != nil {
					continue
				}
				m.move(sh, d, moved)
			}
		}
	}
	for _, rec := range records {
		pl := m.players[rec.Player]
		if rec.Commands.Spawn && pl.bank >= m.cfg.Constants.ShipCost {
			pl.bank -= m.cfg.Constants.ShipCost
			m.nextShip++
			m.ships[m.nextShip] = &ship{id: m.nextShip, owner: pl.id, pos: pl.shipyard}
			m.stats.Spawns++
		}
	}
	m.resolveCollisions()
	for _, sh := range m.sortedShips() {
		if owner, ok := m.depotOwner(sh.pos); ok {
			if owner == sh.owner {
				m.players[owner].bank += sh.cargo
				sh.cargo = 0
			}
			continue
		}
		if moved[sh.id] {
			continue
		}
		i := m.topo.Index(sh.pos)
		take := min(m.halite[i]/max(m.cfg.Constants.ExtractRatio, 1), m.cfg.Constants.MaxCargo-sh.cargo)
		if take > 0 {
			sh.cargo += take
			m.halite[i] -= take
		}
	}
}

func (m *Match) convert(pl *player, sh *ship) {
	if _, taken := m.depotOwner(sh.pos); taken {
		return
	}
	i := m.topo.Index(sh.pos)
	cost := max(m.cfg.Constants.DropoffCost-sh.cargo-m.halite[i], 0)
	if pl.bank < cost {
		return
	}
	pl.bank -= cost
	pl.bank += max(sh.cargo+m.halite[i]-m.cfg.Constants.DropoffCost, 0)
	m.halite[i] = 0
	m.nextDrop++
	m.drops = append(m.drops, game.Dropoff{ID: m.nextDrop, Owner: pl.id, Pos: sh.pos})
	delete(m.ships, sh.id)
	m.stats.Conversions++
}

func (m *Match) move(sh *ship, d grid.Dir, moved map[game.ShipID]bool) {
	if d == grid.Still {
		return
	}
	cost := m.halite[m.topo.Index(sh.pos)] / max(m.cfg.Constants.MoveCostRatio, 1)
	if sh.cargo < cost {
		return
	}
	sh.cargo -= cost
	sh.pos = m.topo.Offset(sh.pos, d)
	moved[sh.id] = true
}

// resolveCollisions destroys every ship sharing a cell, dropping the cargo
// onto it. Ships of one owner stacked on that owner's depot in the final
// turns are exempt.
func (m *Match) resolveCollisions() {
	byPos := map[grid.Pos][]*ship{}
	for _, sh := range m.sortedShips() {
		byPos[sh.pos] = append(byPos[sh.pos], sh)
	}
	remaining := m.cfg.MaxTurns - m.turn
	for pos, group := range byPos {
		if len(group) < 2 {
			continue
		}
		owner, isDepot := m.depotOwner(pos)
		sameOwner := true
		for _, sh := range group[1:] {
			if sh.owner != group[0].owner {
				sameOwner = false
			}
		}
		if sameOwner && isDepot && owner == group[0].owner && remaining < m.endGameWindow() {
			continue
		}
		if sameOwner {
			m.stats.FriendlyCollisions++
		}
		m.stats.Collisions++
		i := m.topo.Index(pos)
		for _, sh := range group {
			m.halite[i] += sh.cargo
			delete(m.ships, sh.id)
		}
	}
}

// endGameWindow bounds the turns in which a ship anywhere on the board may
// already be in end game.
func (m *Match) endGameWindow() int {
	p := m.cfg.Tuning.Policy
	return max(p.EndGameFloorTurns, m.topo.Width+m.topo.Height+p.EndGameMargin) + 1
}
