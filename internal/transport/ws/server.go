package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/tchesnutt/halite3/internal/protocol"
	"github.com/tchesnutt/halite3/internal/sim/arena"
)

// Server hosts practice matches: every connection plays player 0 of a
// fresh arena match against built-in bots.
type Server struct {
	cfg arena.Config
	log *log.Logger

	upgrader websocket.Upgrader
	matches  atomic.Int64

	// TurnTimeout bounds the wait for each COMMANDS reply.
	TurnTimeout time.Duration
	// OnFinish, when set, sees every finished or aborted match.
	OnFinish func(id string, res arena.Result, err error)
}

func NewServer(cfg arena.Config, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Server{
		cfg: cfg,
		log: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
		TurnTimeout: 10 * time.Second,
	}
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		hello, ok := s.handshake(conn)
		if !ok {
			return
		}

		cfg := s.cfg
		cfg.Seed += s.matches.Add(1) - 1
		m := arena.New(cfg)
		id := uuid.NewString()
		topo := m.Topology()
		first := m.FrameFor(0)
		welcome := protocol.WelcomeMsg{
			Type:            protocol.TypeWelcome,
			ProtocolVersion: protocol.Version,
			MatchID:         id,
			PlayerID:        0,
			Players:         m.Players(),
			Width:           topo.Width,
			Height:          topo.Height,
			MaxTurns:        first.MaxTurns,
			Seed:            cfg.Seed,
			Constants:       first.Constants,
		}
		if err := writeJSON(conn, welcome); err != nil {
			return
		}
		s.log.Printf("match %s: %q joined", id, hello.BotName)

		_ = m.Seat(0, &seat{conn: conn, timeout: s.TurnTimeout, log: s.log})
		res, runErr := m.Run(r.Context(), nil)
		if s.OnFinish != nil {
			s.OnFinish(id, res, runErr)
		}
		if runErr != nil {
			s.log.Printf("match %s aborted at turn %d: %v", id, res.Turns, runErr)
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "match aborted"), time.Now().Add(time.Second))
			return
		}
		s.log.Printf("match %s over: banks=%v stats=%+v", id, res.Banks, res.Stats)
		_ = writeJSON(conn, protocol.ErrorMsg{
			Type:            protocol.TypeError,
			ProtocolVersion: protocol.Version,
			Code:            protocol.ErrMatchOver,
			Message:         fmt.Sprintf("final banks %v", res.Banks),
		})
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	}
}

func (s *Server) handshake(conn *websocket.Conn) (protocol.HelloMsg, bool) {
	var hello protocol.HelloMsg
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return hello, false
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected HELLO"), time.Now().Add(time.Second))
		return hello, false
	}
	if err := json.Unmarshal(msg, &hello); err != nil {
		return hello, false
	}
	if hello.ProtocolVersion != protocol.Version {
		_ = writeJSON(conn, protocol.ErrorMsg{
			Type:            protocol.TypeError,
			ProtocolVersion: protocol.Version,
			Code:            protocol.ErrProtoVersion,
			Message:         "bad protocol_version",
		})
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "bad protocol_version"), time.Now().Add(time.Second))
		return hello, false
	}
	if hello.BotName == "" {
		hello.BotName = "bot"
	}
	return hello, true
}

// seat relays one player's turns over a connection.
type seat struct {
	conn    *websocket.Conn
	timeout time.Duration
	log     *log.Logger
}

func (p *seat) Play(ctx context.Context, frame protocol.FrameMsg) (protocol.CommandsMsg, error) {
	if err := writeJSON(p.conn, frame); err != nil {
		return protocol.CommandsMsg{}, err
	}
	deadline := time.Now().Add(p.timeout)
	for {
		if err := ctx.Err(); err != nil {
			return protocol.CommandsMsg{}, err
		}
		_ = p.conn.SetReadDeadline(deadline)
		_, msg, err := p.conn.ReadMessage()
		if err != nil {
			return protocol.CommandsMsg{}, err
		}
		base, err := protocol.DecodeBase(msg)
		if err != nil || base.Type != protocol.TypeCommands {
			continue
		}
		if err := protocol.ValidateCommands(msg); err != nil {
			p.reject(protocol.ErrBadCommand, err.Error())
			return protocol.CommandsMsg{Turn: frame.Turn}, nil
		}
		var cmds protocol.CommandsMsg
		if err := json.Unmarshal(msg, &cmds); err != nil {
			p.reject(protocol.ErrBadCommand, err.Error())
			return protocol.CommandsMsg{Turn: frame.Turn}, nil
		}
		if cmds.Turn != frame.Turn {
			p.reject(protocol.ErrStale, fmt.Sprintf("commands for turn %d during turn %d", cmds.Turn, frame.Turn))
			continue
		}
		return cmds, nil
	}
}

func (p *seat) reject(code, msg string) {
	p.log.Printf("reject %s: %s", code, msg)
	_ = writeJSON(p.conn, protocol.ErrorMsg{
		Type:            protocol.TypeError,
		ProtocolVersion: protocol.Version,
		Code:            code,
		Message:         msg,
	})
}
