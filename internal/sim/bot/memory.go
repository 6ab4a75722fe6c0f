package bot

import (
	"github.com/tchesnutt/halite3/internal/sim/game"
	"github.com/tchesnutt/halite3/internal/sim/policy"
	"github.com/tchesnutt/halite3/internal/sim/schedule"
)

// Memory is everything a bot carries from one turn into the next. Restoring
// it into a fresh bot and playing the same frame reproduces the same
// commands and digest.
type Memory struct {
	InitialHalite int                               `json:"initial_halite"`
	Agents        map[game.ShipID]policy.AgentState `json:"agents,omitempty"`
	Queues        schedule.QueueState               `json:"queues"`
}

// Memory copies the state the next PlayTurn will start from.
func (b *Bot) Memory() Memory {
	return Memory{
		InitialHalite: b.initialHalite,
		Agents:        b.store.States(),
		Queues:        b.queues.State(),
	}
}

// Restore replaces the bot's cross-turn state with m. The depot index is
// rebuilt on the next turn.
func (b *Bot) Restore(m Memory) {
	b.initialHalite = m.InitialHalite
	b.store.Restore(m.Agents)
	b.queues.Restore(m.Queues)
	b.last = nil
}
