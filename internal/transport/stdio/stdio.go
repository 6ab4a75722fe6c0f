// Package stdio runs the bot against an engine that speaks newline-delimited
// JSON over the process's stdin and stdout.
package stdio

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/tchesnutt/halite3/internal/protocol"
	"github.com/tchesnutt/halite3/internal/transport"
)

// Session owns both pipes. Nothing else may write to w.
type Session struct {
	r       *bufio.Reader
	w       *bufio.Writer
	log     *log.Logger
	Welcome protocol.WelcomeMsg

	// Strict validates every FRAME against the protocol schema.
	Strict bool
}

// Open sends HELLO and reads WELCOME.
func Open(r io.Reader, w io.Writer, name string, logger *log.Logger) (*Session, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	s := &Session{
		r:   bufio.NewReaderSize(r, 256*1024),
		w:   bufio.NewWriterSize(w, 64*1024),
		log: logger,
	}
	if err := s.write(transport.Hello(name)); err != nil {
		return nil, fmt.Errorf("hello: %w", err)
	}
	line, err := s.readLine()
	if err != nil {
		return nil, fmt.Errorf("welcome: %w", err)
	}
	if s.Welcome, err = transport.DecodeWelcome(line); err != nil {
		return nil, err
	}
	logger.Printf("joined match=%s as player %d of %d (%dx%d, %d turns)",
		s.Welcome.MatchID, s.Welcome.PlayerID, s.Welcome.Players, s.Welcome.Width, s.Welcome.Height, s.Welcome.MaxTurns)
	return s, nil
}

// Run answers frames until the engine ends the match or closes stdin. ctx
// is checked between lines; a blocked read is not interrupted.
func (s *Session) Run(ctx context.Context, h transport.Handler) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		line, err := s.readLine()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}

		frame, ok, err := transport.DecodeServerMessage(line, s.Strict)
		if errors.Is(err, transport.ErrMatchOver) {
			return nil
		}
		var se *transport.ServerError
		if errors.As(err, &se) && !se.Fatal() {
			s.log.Printf("engine: %v", se)
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
		if err := s.write(cmds); err != nil {
			return fmt.Errorf("turn %d: write: %w", frame.Turn, err)
		}
	}
}

// readLine returns the next non-blank line without its terminator. A final
// line without a newline is still returned.
func (s *Session) readLine() ([]byte, error) {
	for {
		line, err := s.r.ReadBytes('\n')
		if len(line) > 0 && line[len(line)-1] == '\n' {
			line = line[:len(line)-1]
		}
		if len(line) > 0 && line[len(line)-1] == '\r' {
			line = line[:len(line)-1]
		}
		if len(line) > 0 {
			return line, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

func (s *Session) write(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := s.w.Write(b); err != nil {
		return err
	}
	if err := s.w.WriteByte('\n'); err != nil {
		return err
	}
	return s.w.Flush()
}
