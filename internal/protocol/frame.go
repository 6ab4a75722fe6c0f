package protocol

// FRAME (server -> bot): the full world state for one turn.
type FrameMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Turn            int    `json:"turn"`
	MaxTurns        int    `json:"max_turns"`
	MyID            int    `json:"my_id"`
	Width           int    `json:"width"`
	Height          int    `json:"height"`

	// Halite is row-major: index y*Width+x.
	Halite []int `json:"halite"`

	Players  []PlayerObs  `json:"players"`
	Ships    []ShipObs    `json:"ships"`
	Dropoffs []DropoffObs `json:"dropoffs"`

	Constants ConstantsObs `json:"constants"`
}

type PlayerObs struct {
	ID       int    `json:"id"`
	Bank     int    `json:"bank"`
	Shipyard [2]int `json:"shipyard"`
}

type ShipObs struct {
	ID    int    `json:"id"`
	Owner int    `json:"owner"`
	Pos   [2]int `json:"pos"`
	Cargo int    `json:"cargo"`
}

type DropoffObs struct {
	ID    int    `json:"id"`
	Owner int    `json:"owner"`
	Pos   [2]int `json:"pos"`
}

// COMMANDS (bot -> server)
type CommandsMsg struct {
	Type            string       `json:"type"`
	ProtocolVersion string       `json:"protocol_version"`
	Turn            int          `json:"turn"`
	Commands        []CommandReq `json:"commands"`
	Spawn           bool         `json:"spawn,omitempty"`
	Digest          string       `json:"digest,omitempty"`
}

type CommandReq struct {
	ShipID int    `json:"ship_id"`
	Action string `json:"action"`
	Dir    string `json:"dir,omitempty"`
}
