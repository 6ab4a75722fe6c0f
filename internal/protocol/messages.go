package protocol

// HELLO (bot -> server)
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	BotName         string `json:"bot_name"`
}

// WELCOME (server -> bot)
type WelcomeMsg struct {
	Type            string       `json:"type"`
	ProtocolVersion string       `json:"protocol_version"`
	MatchID         string       `json:"match_id,omitempty"`
	PlayerID        int          `json:"player_id"`
	Players         int          `json:"players"`
	Width           int          `json:"width"`
	Height          int          `json:"height"`
	MaxTurns        int          `json:"max_turns"`
	Seed            int64        `json:"seed,omitempty"`
	Constants       ConstantsObs `json:"constants"`
}

type ConstantsObs struct {
	ShipCost      int `json:"ship_cost"`
	DropoffCost   int `json:"dropoff_cost"`
	MaxCargo      int `json:"max_cargo"`
	ExtractRatio  int `json:"extract_ratio"`
	MoveCostRatio int `json:"move_cost_ratio"`
	InitialHalite int `json:"initial_halite,omitempty"`
}

// IsZero reports whether no constants were sent.
func (c ConstantsObs) IsZero() bool { return c == ConstantsObs{} }

// ERROR (server -> bot)
type ErrorMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Code            string `json:"code"`
	Message         string `json:"message"`
}
