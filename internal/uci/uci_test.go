package uci

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/ajurian/AlphaChess/internal/board"
	"github.com/ajurian/AlphaChess/internal/engine"
	"github.com/ajurian/AlphaChess/internal/storage"
)

// syncBuffer is an output buffer safe to poll while the handler writes.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type memStore struct {
	saved []storage.Settings
}

func (m *memStore) SaveSettings(s storage.Settings) error {
	m.saved = append(m.saved, s)
	return nil
}

type session struct {
	t     *testing.T
	in    *io.PipeWriter
	out   *syncBuffer
	errc  chan error
	store *memStore
}

func start(t *testing.T, book engine.Book) *session {
	t.Helper()
	r, w := io.Pipe()
	s := &session{t: t, in: w, out: &syncBuffer{}, errc: make(chan error, 1), store: &memStore{}}
	u := New(engine.NewEngine(4), book, s.store, r, s.out)
	go func() {
		s.errc <- u.Run(context.Background())
		r.Close()
	}()
	return s
}

func (s *session) send(lines ...string) {
	s.t.Helper()
	for _, line := range lines {
		if _, err := io.WriteString(s.in, line+"\n"); err != nil {
			s.t.Fatalf("write %q: %v", line, err)
		}
	}
}

// waitFor polls the output until it contains substr.
func (s *session) waitFor(substr string) string {
	s.t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		if out := s.out.String(); strings.Contains(out, substr) {
			return out
		}
		time.Sleep(5 * time.Millisecond)
	}
	s.t.Fatalf("output never contained %q:\n%s", substr, s.out.String())
	return ""
}

// quit ends the session and returns everything written.
func (s *session) quit() string {
	s.t.Helper()
	s.send("quit")
	if err := <-s.errc; err != nil {
		s.t.Errorf("Run: %v", err)
	}
	s.in.Close()
	return s.out.String()
}

func bestMove(t *testing.T, out string) string {
	t.Helper()
	for _, line := range strings.Split(out, "\n") {
		if f := strings.Fields(line); len(f) >= 2 && f[0] == "bestmove" {
			return f[1]
		}
	}
	t.Fatalf("no bestmove in output:\n%s", out)
	return ""
}

func TestHandshake(t *testing.T) {
	s := start(t, nil)
	s.send("uci", "isready")
	out := s.quit()

	want := []string{
		"id name AlphaChess",
		"id author Adolf Urian",
		"option name Hash type spin default 16 min 1 max 4096",
		"option name Clear Hash type button",
		"option name Book Depth type spin default 8 min 0 max 20",
		"uciok",
		"readyok",
	}
	if diff := cmp.Diff(want, strings.Split(strings.TrimSpace(out), "\n")); diff != "" {
		t.Errorf("handshake (-want +got):\n%s", diff)
	}
}

func TestPosition(t *testing.T) {
	tests := []struct {
		name     string
		commands []string
		want     string
		errors   bool
	}{
		{
			name:     "startpos with moves",
			commands: []string{"position startpos moves g1f3 g8f6"},
			want:     "rnbqkb1r/pppppppp/5n2/8/8/5N2/PPPPPPPP/RNBQKB1R w KQkq - 2 2",
		},
		{
			name:     "fen with moves",
			commands: []string{"position fen 4k3/8/8/8/8/8/8/R3K3 w Q - 0 1 moves e1c1"},
			want:     "4k3/8/8/8/8/8/8/2KR4 b - - 1 1",
		},
		{
			name:     "illegal move keeps the previous position",
			commands: []string{"position startpos moves g1f3", "position startpos moves e2e5"},
			want:     "rnbqkbnr/pppppppp/8/8/8/5N2/PPPPPPPP/RNBQKB1R b KQkq - 1 1",
			errors:   true,
		},
		{
			name:     "invalid fen keeps the previous position",
			commands: []string{"position startpos moves g1f3", "position fen not a fen"},
			want:     "rnbqkbnr/pppppppp/8/8/8/5N2/PPPPPPPP/RNBQKB1R b KQkq - 1 1",
			errors:   true,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := start(t, nil)
			s.send(tc.commands...)
			s.send("d")
			out := s.quit()
			if !strings.Contains(out, tc.want) {
				t.Errorf("board after %v does not show %s:\n%s", tc.commands, tc.want, out)
			}
			if got := strings.Contains(out, "info string error"); got != tc.errors {
				t.Errorf("error reported = %v, want %v", got, tc.errors)
			}
		})
	}
}

func TestGoFindsMate(t *testing.T) {
	s := start(t, nil)
	s.send("position fen 6k1/5ppp/8/8/8/8/5PPP/R5K1 w - - 0 1", "go depth 4")
	out := s.waitFor("bestmove")
	s.quit()

	if got := bestMove(t, out); got != "a1a8" {
		t.Errorf("bestmove %s, want a1a8", got)
	}
	if !strings.Contains(out, "score mate 1") {
		t.Errorf("no mate score reported:\n%s", out)
	}
}

func TestGoWithoutLegalMoves(t *testing.T) {
	s := start(t, nil)
	s.send("position fen 7k/5Q2/6K1/8/8/8/8/8 b - - 0 1", "go depth 2")
	s.waitFor("bestmove (none)")
	s.quit()
}

type fixedBook string

func (b fixedBook) FindMove(pos *board.Position) board.Move {
	m, err := pos.ParseMove(string(b))
	if err != nil {
		return board.NoMove
	}
	return m
}

func TestGoUsesBook(t *testing.T) {
	s := start(t, fixedBook("b1c3"))
	s.send("position startpos", "go depth 3")
	out := s.waitFor("bestmove")
	s.quit()
	if got := bestMove(t, out); got != "b1c3" {
		t.Errorf("bestmove %s, want the book move b1c3", got)
	}
	if strings.Contains(out, "info depth") {
		t.Error("searched although the book had a move")
	}
}

func TestStopInfiniteSearch(t *testing.T) {
	s := start(t, fixedBook("b1c3"))
	s.send("position startpos moves e2e4", "go infinite")
	time.Sleep(100 * time.Millisecond)
	if strings.Contains(s.out.String(), "bestmove") {
		t.Fatal("infinite search returned before stop")
	}
	s.send("stop")
	out := s.waitFor("bestmove")
	s.quit()

	pos, err := parsePosition(strings.Fields("startpos moves e2e4"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := pos.ParseMove(bestMove(t, out)); err != nil {
		t.Errorf("bestmove: %v", err)
	}
}

func TestSetOption(t *testing.T) {
	s := start(t, nil)
	s.send(
		"setoption name Hash value 32",
		"setoption name book depth value 3",
		"setoption name Clear Hash",
		"setoption name Hash value 0",
		"setoption name Threads value 4",
		"uci",
	)
	out := s.quit()

	want := []storage.Settings{
		{HashMB: 32, BookDepth: 8},
		{HashMB: 32, BookDepth: 3},
		{HashMB: 32, BookDepth: 3},
	}
	if diff := cmp.Diff(want, s.store.saved); diff != "" {
		t.Errorf("saved settings (-want +got):\n%s", diff)
	}
	if n := strings.Count(out, "info string error"); n != 2 {
		t.Errorf("%d errors reported, want 2:\n%s", n, out)
	}
	if !strings.Contains(out, "option name Hash type spin default 32") {
		t.Errorf("uci does not list the new hash size:\n%s", out)
	}
}

func TestPerft(t *testing.T) {
	s := start(t, nil)
	s.send("position startpos", "perft 2")
	out := s.quit()
	if !strings.Contains(out, "e2e4: 20\n") {
		t.Errorf("missing divide line for e2e4:\n%s", out)
	}
	if !strings.Contains(out, "Nodes searched: 400") {
		t.Errorf("wrong perft total:\n%s", out)
	}
}

func TestParseGo(t *testing.T) {
	tests := []struct {
		args    string
		want    engine.Limits
		wantErr bool
	}{
		{
			args: "wtime 60000 btime 50000 winc 1000 binc 500 movestogo 20",
			want: engine.Limits{
				Time:      [2]time.Duration{time.Minute, 50 * time.Second},
				Inc:       [2]time.Duration{time.Second, 500 * time.Millisecond},
				MovesToGo: 20,
			},
		},
		{args: "depth 7 nodes 100000", want: engine.Limits{Depth: 7, Nodes: 100000}},
		{args: "movetime 250", want: engine.Limits{MoveTime: 250 * time.Millisecond}},
		{args: "infinite", want: engine.Limits{Infinite: true}},
		{args: "depth", wantErr: true},
		{args: "depth seven", wantErr: true},
		{args: "mate 3", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.args, func(t *testing.T) {
			got, err := parseGo(strings.Fields(tc.args))
			if (err != nil) != tc.wantErr {
				t.Fatalf("parseGo error = %v, wantErr %v", err, tc.wantErr)
			}
			if tc.wantErr {
				return
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("limits (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFormatInfo(t *testing.T) {
	e2e4 := board.NewMove(board.E2, board.E4, board.WhitePawn, board.NoPiece, false, true, false, false)
	e7e5 := board.NewMove(board.E7, board.E5, board.BlackPawn, board.NoPiece, false, true, false, false)

	tests := []struct {
		name string
		info engine.Info
		want string
	}{
		{
			name: "exact",
			info: engine.Info{Depth: 5, SelDepth: 9, Score: 208, Bound: engine.BoundExact, Nodes: 3000, Time: 1500 * time.Millisecond, HashFull: 12, PV: []board.Move{e2e4, e7e5}},
			want: "info depth 5 seldepth 9 score cp 100 nodes 3000 nps 2000 time 1500 hashfull 12 pv e2e4 e7e5",
		},
		{
			name: "fail high",
			info: engine.Info{Depth: 6, SelDepth: 8, Score: engine.MateValue - 3, Bound: engine.BoundLower, Nodes: 10},
			want: "info depth 6 seldepth 8 score mate 2 lowerbound nodes 10 nps 0 time 0 hashfull 0",
		},
		{
			name: "current move",
			info: engine.Info{Depth: 12, CurrMove: e2e4, CurrMoveNumber: 3},
			want: "info depth 12 currmove e2e4 currmovenumber 3",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := formatInfo(tc.info); got != tc.want {
				t.Errorf("formatInfo() = %q\nwant %q", got, tc.want)
			}
		})
	}
}

func TestSendBestMove(t *testing.T) {
	e2e4 := board.NewMove(board.E2, board.E4, board.WhitePawn, board.NoPiece, false, true, false, false)
	e7e5 := board.NewMove(board.E7, board.E5, board.BlackPawn, board.NoPiece, false, true, false, false)

	tests := []struct {
		name         string
		best, ponder board.Move
		want         string
	}{
		{"with reply", e2e4, e7e5, "bestmove e2e4 ponder e7e5\n"},
		{"without reply", e2e4, board.NoMove, "bestmove e2e4 ponder (none)\n"},
		{"no legal move", board.NoMove, board.NoMove, "bestmove (none)\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			u := New(engine.NewEngine(1), nil, &memStore{}, strings.NewReader(""), &out)
			u.sendBestMove(tc.best, tc.ponder)
			if got := out.String(); got != tc.want {
				t.Errorf("sendBestMove() wrote %q, want %q", got, tc.want)
			}
		})
	}
}
