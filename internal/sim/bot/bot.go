// Package bot runs one full decision pass per turn: field build, maxima
// selection, scheduling, per-ship decisions and the spawn call.
package bot

import (
	"io"
	"log"
	"time"

	"github.com/tchesnutt/halite3/internal/sim/field"
	"github.com/tchesnutt/halite3/internal/sim/game"
	"github.com/tchesnutt/halite3/internal/sim/grid"
	"github.com/tchesnutt/halite3/internal/sim/policy"
	"github.com/tchesnutt/halite3/internal/sim/schedule"
	"github.com/tchesnutt/halite3/internal/sim/tuning"
)

// Bot keeps the cross-turn state of one player. It is not safe for
// concurrent use; turns are played one at a time.
type Bot struct {
	cfg    tuning.Tuning
	logger *log.Logger

	depots *field.DepotIndex
	store  *policy.Store
	queues *schedule.Queues
	nav    *policy.Navigator

	initialHalite int
	last          *field.Field
}

type TurnResult struct {
	Turn       int
	Commands   []policy.Command
	Spawn      bool
	Converted  bool
	Digest     string
	Candidates []grid.Pos
	Evicted    int
	Elapsed    time.Duration
}

// New builds a bot. A nil logger discards output.
func New(cfg tuning.Tuning, logger *log.Logger) *Bot {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	store := policy.NewStore()
	queues := schedule.NewQueues()
	return &Bot{
		cfg:    cfg,
		logger: logger,
		depots: field.NewDepotIndex(),
		store:  store,
		queues: queues,
		nav:    policy.NewNavigator(cfg, store, queues),
	}
}

// PlayTurn decides every ship of ours for the turn in s. When the frame
// carries no initial halite total, the first total seen is latched and
// written back into s.Constants.
func (b *Bot) PlayTurn(s *game.State) TurnResult {
	start := time.Now()
	if s.Constants.InitialHalite <= 0 {
		if b.initialHalite == 0 {
			b.initialHalite = s.TotalHalite()
		}
		s.Constants.InitialHalite = b.initialHalite
	}

	if b.depots.Refresh(s.Topo, s.MyDepots()) {
		b.logger.Printf("turn %d: depot index rebuilt for %d depots", s.Turn, len(b.depots.Depots()))
	}
	f := field.Build(s, b.depots, b.cfg)
	candidates := f.SelectLocalMaxima(
		b.cfg.Field.MaxLocalMaximaFor(s.Topo.Height),
		b.cfg.Field.SuppressionRadiusFor(s.Topo.Width),
	)

	mine := s.MyShips()
	alive := make([]game.ShipID, 0, len(mine))
	for _, sh := range mine {
		alive = append(alive, sh.ID)
	}
	evicted := b.store.Forget(alive)

	order := schedule.Order(b.queues, alive, func(id game.ShipID) float64 {
		sh, _ := s.Ship(id)
		return f.Cell(sh.Pos).Value
	})
	b.queues.Reset()
	b.nav.BeginTurn(f, s)

	for _, sh := range mine {
		if s.Stalled(sh) {
			f.Claim(sh.Pos)
		}
	}

	res := TurnResult{
		Turn:       s.Turn,
		Commands:   make([]policy.Command, 0, len(order)),
		Candidates: append([]grid.Pos(nil), candidates...),
		Evicted:    evicted,
	}
	for _, id := range order {
		sh, ok := s.Ship(id)
		if !ok {
			continue
		}
		cmd := b.nav.Decide(f, s, sh)
		if cmd.Convert {
			res.Converted = true
		}
		res.Commands = append(res.Commands, cmd)
	}

	res.Spawn = b.shouldSpawn(f, s, res.Converted)
	res.Digest = commandDigest(s.Turn, res.Commands, res.Spawn)
	b.store.EndTurn()
	b.last = f

	res.Elapsed = time.Since(start)
	b.logger.Printf("turn %d: ships=%d queued=%d maxima=%d spawn=%v convert=%v took=%s",
		s.Turn, len(res.Commands), b.queues.Len(), len(candidates), res.Spawn, res.Converted, res.Elapsed)
	return res
}

func (b *Bot) shouldSpawn(f *field.Field, s *game.State, converted bool) bool {
	reserve := 0
	if converted {
		reserve = s.Constants.DropoffCost
	}
	if s.Me().Bank < s.Constants.ShipCost+reserve {
		return false
	}
	if f.Blocked(s.Me().Shipyard) {
		return false
	}
	if len(s.Players) == 2 {
		return s.Turn < b.cfg.Spawn.TwoPlayerTurnCutoff
	}
	return s.CollectedFraction() < b.cfg.Spawn.MultiPlayerMaxCollected
}

// LastField is the field built by the most recent PlayTurn, for inspection.
func (b *Bot) LastField() *field.Field { return b.last }

func (b *Bot) Store() *policy.Store { return b.store }
