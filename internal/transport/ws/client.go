package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tchesnutt/halite3/internal/protocol"
	"github.com/tchesnutt/halite3/internal/transport"
)

// Session is one bot connection to a game server.
type Session struct {
	conn    *websocket.Conn
	log     *log.Logger
	Welcome protocol.WelcomeMsg

	// Strict validates every FRAME against the protocol schema.
	Strict bool
	// ReadTimeout bounds the wait for the next frame.
	ReadTimeout time.Duration
}

// Dial connects, sends HELLO and waits for WELCOME.
func Dial(ctx context.Context, url, name string, logger *log.Logger) (*Session, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	d := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
		ReadBufferSize:   64 * 1024,
		WriteBufferSize:  64 * 1024,
	}
	conn, _, err := d.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	if err := writeJSON(conn, transport.Hello(name)); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("hello: %w", err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("welcome: %w", err)
	}
	welcome, err := transport.DecodeWelcome(msg)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	logger.Printf("joined match=%s as player %d of %d (%dx%d, %d turns)",
		welcome.MatchID, welcome.PlayerID, welcome.Players, welcome.Width, welcome.Height, welcome.MaxTurns)
	return &Session{conn: conn, log: logger, Welcome: welcome, ReadTimeout: 60 * time.Second}, nil
}

// Run answers frames until the server ends the match, the connection
// closes or ctx is done. A clean end returns nil.
func (s *Session) Run(ctx context.Context, h transport.Handler) error {
	stop := context.AfterFunc(ctx, func() {
		_ = s.conn.SetReadDeadline(time.Now())
	})
	defer stop()

	for {
		if s.ReadTimeout > 0 {
			_ = s.conn.SetReadDeadline(time.Now().Add(s.ReadTimeout))
		}
		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}

		frame, ok, err := transport.DecodeServerMessage(msg, s.Strict)
		if errors.Is(err, transport.ErrMatchOver) {
			return nil
		}
		var se *transport.ServerError
		if errors.As(err, &se) && !se.Fatal() {
			s.log.Printf("server: %v", se)
			continue
		}
		if err != nil {
			return err
		}
		if !ok {
			continue
		}

		cmds, err := h(ctx, frame)
		if err != nil {
			return fmt.Errorf("turn %d: %w", frame.Turn, err)
		}
		if err := writeJSON(s.conn, cmds); err != nil {
			return fmt.Errorf("turn %d: write: %w", frame.Turn, err)
		}
	}
}

func (s *Session) Close() error {
	_ = s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	return s.conn.Close()
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}
