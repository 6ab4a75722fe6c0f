package policy

import "github.com/tchesnutt/halite3/internal/sim/game"

// AgentState is the per-ship memory carried across turns.
type AgentState struct {
	ReturningHome bool `json:"returning_home,omitempty"`
	// EndGame never clears once set.
	EndGame       bool `json:"end_game,omitempty"`
	// MovedThisTurn is set when the ship is decided and cleared by EndTurn.
	// Ordering does not read it; it is kept for inspection and snapshots.
	MovedThisTurn bool `json:"moved_this_turn,omitempty"`
}

type Store struct {
	agents    map[game.ShipID]*AgentState
	converted bool
}

func NewStore() *Store {
	return &Store{agents: map[game.ShipID]*AgentState{}}
}

// Get returns the state for id, creating it on first sight.
func (s *Store) Get(id game.ShipID) *AgentState {
	st, ok := s.agents[id]
	if !ok {
		st = &AgentState{}
		s.agents[id] = st
	}
	return st
}

func (s *Store) Peek(id game.ShipID) (*AgentState, bool) {
	st, ok := s.agents[id]
	return st, ok
}

// Forget drops every ship not listed in alive and returns how many were
// dropped.
func (s *Store) Forget(alive []game.ShipID) int {
	keep := make(map[game.ShipID]struct{}, len(alive))
	for _, id := range alive {
		keep[id] = struct{}{}
	}
	n := 0
	for id := range s.agents {
		if _, ok := keep[id]; !ok {
			delete(s.agents, id)
			n++
		}
	}
	return n
}

func (s *Store) Len() int { return len(s.agents) }

// ConvertedThisTurn reports whether a ship already became a dropoff this
// turn.
func (s *Store) ConvertedThisTurn() bool { return s.converted }

func (s *Store) markConverted() { s.converted = true }

// EndTurn clears the per-turn markers.
func (s *Store) EndTurn() {
	for _, st := range s.agents {
		st.MovedThisTurn = false
	}
	s.converted = false
}

// States copies every tracked ship's state.
func (s *Store) States() map[game.ShipID]AgentState {
	out := make(map[game.ShipID]AgentState, len(s.agents))
	for id, st := range s.agents {
		out[id] = *st
	}
	return out
}

// Restore replaces the store contents with states.
func (s *Store) Restore(states map[game.ShipID]AgentState) {
	clear(s.agents)
	for id, st := range states {
		st := st
		s.agents[id] = &st
	}
	s.converted = false
}
