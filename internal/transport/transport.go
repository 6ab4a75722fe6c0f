// Package transport holds what the websocket and stdio sessions share: the
// turn handler signature and server message routing.
package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tchesnutt/halite3/internal/protocol"
)

// Handler answers one FRAME with the COMMANDS for the same turn.
type Handler func(ctx context.Context, frame protocol.FrameMsg) (protocol.CommandsMsg, error)

// ErrMatchOver is returned by DecodeServerMessage when the server ended the
// match. Sessions treat it as a clean end.
var ErrMatchOver = errors.New("transport: match over")

// ServerError is an ERROR message other than the end of the match.
type ServerError struct {
	Code    string
	Message string
}

func (e *ServerError) Error() string { return fmt.Sprintf("server error %s: %s", e.Code, e.Message) }

// Fatal reports whether the session cannot continue after e.
func (e *ServerError) Fatal() bool {
	switch e.Code {
	case protocol.ErrProtoVersion, protocol.ErrMatchNotFound, protocol.ErrMatchFull, protocol.ErrInternal:
		return true
	}
	return false
}

func Hello(name string) protocol.HelloMsg {
	if name == "" {
		name = "halite3"
	}
	return protocol.HelloMsg{Type: protocol.TypeHello, ProtocolVersion: protocol.Version, BotName: name}
}

// DecodeWelcome expects the reply to HELLO.
func DecodeWelcome(raw []byte) (protocol.WelcomeMsg, error) {
	var w protocol.WelcomeMsg
	base, err := protocol.DecodeBase(raw)
	if err != nil {
		return w, fmt.Errorf("welcome: %w", err)
	}
	switch base.Type {
	case protocol.TypeWelcome:
	case protocol.TypeError:
		_, _, err := DecodeServerMessage(raw, false)
		return w, err
	default:
		return w, fmt.Errorf("welcome: unexpected %s", base.Type)
	}
	if base.ProtocolVersion != protocol.Version {
		return w, fmt.Errorf("welcome: protocol_version %q, want %q", base.ProtocolVersion, protocol.Version)
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return w, fmt.Errorf("welcome: %w", err)
	}
	return w, nil
}

// DecodeServerMessage routes one message from the server. ok is true only
// for a FRAME; other message types the bot does not act on come back with
// ok false and no error. In strict mode a FRAME must pass the schema.
func DecodeServerMessage(raw []byte, strict bool) (frame protocol.FrameMsg, ok bool, err error) {
	base, err := protocol.DecodeBase(raw)
	if err != nil {
		return frame, false, fmt.Errorf("decode: %w", err)
	}
	switch base.Type {
	case protocol.TypeFrame:
		if base.ProtocolVersion != "" && base.ProtocolVersion != protocol.Version {
			return frame, false, fmt.Errorf("frame: protocol_version %q, want %q", base.ProtocolVersion, protocol.Version)
		}
		if strict {
			if err := protocol.ValidateFrame(raw); err != nil {
				return frame, false, fmt.Errorf("frame: %w", err)
			}
		}
		if err := json.Unmarshal(raw, &frame); err != nil {
			return frame, false, fmt.Errorf("frame: %w", err)
		}
		return frame, true, nil
	case protocol.TypeError:
		var e protocol.ErrorMsg
		if err := json.Unmarshal(raw, &e); err != nil {
			return frame, false, fmt.Errorf("error message: %w", err)
		}
		if e.Code == protocol.ErrMatchOver {
			return frame, false, ErrMatchOver
		}
		return frame, false, &ServerError{Code: e.Code, Message: e.Message}
	}
	return frame, false, nil
}
