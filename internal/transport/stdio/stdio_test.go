package stdio

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/tchesnutt/halite3/internal/protocol"
)

const welcome = `{"type":"WELCOME","protocol_version":"1.0","match_id":"m","player_id":1,"players":2,"width":2,"height":1,"max_turns":3,"constants":{}}`

func frameLine(turn int) string {
	return `{"type":"FRAME","protocol_version":"1.0","turn":` + strconv.Itoa(turn) +
		`,"max_turns":3,"my_id":1,"width":2,"height":1,"halite":[1,2],` +
		`"players":[{"id":0,"bank":0,"shipyard":[0,0]},{"id":1,"bank":0,"shipyard":[1,0]}],"ships":[],"dropoffs":[]}`
}

func echo(_ context.Context, f protocol.FrameMsg) (protocol.CommandsMsg, error) {
	return protocol.CommandsMsg{Type: protocol.TypeCommands, ProtocolVersion: protocol.Version, Turn: f.Turn, Commands: []protocol.CommandReq{}}, nil
}

func TestSession_AnswersEveryFrame(t *testing.T) {
	in := strings.Join([]string{
		welcome,
		frameLine(0),
		"",
		`{"type":"ERROR","code":"E_STALE","message":"late"}`,
		frameLine(1),
		frameLine(2),
		`{"type":"ERROR","code":"E_MATCH_OVER"}`,
		frameLine(3),
	}, "\r\n")
	var out bytes.Buffer
	s, err := Open(strings.NewReader(in), &out, "tester", nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	s.Strict = true
	if s.Welcome.PlayerID != 1 {
		t.Fatalf("welcome=%+v", s.Welcome)
	}
	if err := s.Run(context.Background(), echo); err != nil {
		t.Fatalf("Run: %v", err)
	}

	sc := bufio.NewScanner(&out)
	var lines []string
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if len(lines) != 4 {
		t.Fatalf("lines=%d: %v", len(lines), lines)
	}
	var hello protocol.HelloMsg
	if err := json.Unmarshal([]byte(lines[0]), &hello); err != nil || hello.Type != protocol.TypeHello || hello.BotName != "tester" {
		t.Fatalf("hello=%s", lines[0])
	}
	for i, l := range lines[1:] {
		var c protocol.CommandsMsg
		if err := json.Unmarshal([]byte(l), &c); err != nil || c.Turn != i {
			t.Fatalf("line %d=%s", i+1, l)
		}
		if err := protocol.ValidateCommands([]byte(l)); err != nil {
			t.Fatalf("line %d invalid: %v", i+1, err)
		}
	}
}

func TestSession_EOFEndsCleanly(t *testing.T) {
	var out bytes.Buffer
	s, err := Open(strings.NewReader(welcome+"\n"+frameLine(0)), &out, "", nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	turns := 0
	err = s.Run(context.Background(), func(ctx context.Context, f protocol.FrameMsg) (protocol.CommandsMsg, error) {
		turns++
		return echo(ctx, f)
	})
	if err != nil || turns != 1 {
		t.Fatalf("err=%v turns=%d", err, turns)
	}
}

func TestSession_HandlerErrorStops(t *testing.T) {
	var out bytes.Buffer
	s, err := Open(strings.NewReader(welcome+"\n"+frameLine(0)+"\n"+frameLine(1)+"\n"), &out, "", nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	boom := errors.New("boom")
	err = s.Run(context.Background(), func(context.Context, protocol.FrameMsg) (protocol.CommandsMsg, error) {
		return protocol.CommandsMsg{}, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err=%v", err)
	}
}

func TestOpen_RejectsNonWelcome(t *testing.T) {
	if _, err := Open(strings.NewReader(frameLine(0)+"\n"), &bytes.Buffer{}, "", nil); err == nil {
		t.Fatalf("frame accepted as welcome")
	}
	if _, err := Open(strings.NewReader(""), &bytes.Buffer{}, "", nil); err == nil {
		t.Fatalf("empty input accepted")
	}
}
