package bot

import (
	"github.com/tchesnutt/halite3/internal/protocol"
)

// Message renders the result as the COMMANDS wire message, preserving the
// decision order.
func (r TurnResult) Message() protocol.CommandsMsg {
	msg := protocol.CommandsMsg{
		Type:            protocol.TypeCommands,
		ProtocolVersion: protocol.Version,
		Turn:            r.Turn,
		Commands:        make([]protocol.CommandReq, 0, len(r.Commands)),
		Spawn:           r.Spawn,
		Digest:          r.Digest,
	}
	for _, c := range r.Commands {
		req := protocol.CommandReq{ShipID: int(c.Ship), Action: protocol.ActionMove, Dir: c.Dir.Letter()}
		if c.Convert {
			req.Action = protocol.ActionConvert
			req.Dir = ""
		}
		msg.Commands = append(msg.Commands, req)
	}
	return msg
}
