// Package uci implements the Universal Chess Interface protocol on top of the
// engine.
package uci

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ajurian/AlphaChess/internal/board"
	"github.com/ajurian/AlphaChess/internal/engine"
	"github.com/ajurian/AlphaChess/internal/storage"
)

const (
	engineName   = "AlphaChess"
	engineAuthor = "Adolf Urian"
)

// Store persists settings changed through setoption.
type Store interface {
	SaveSettings(storage.Settings) error
}

// UCI implements the Universal Chess Interface protocol.
type UCI struct {
	engine   *engine.Engine
	store    Store
	in       io.Reader
	settings storage.Settings
	position *board.Position

	// Search state
	cancel     context.CancelFunc
	searchDone chan struct{}

	mu  sync.Mutex
	out io.Writer
}

// New creates a protocol handler reading commands from in and writing
// responses to out. book and store may be nil.
func New(eng *engine.Engine, book engine.Book, store Store, in io.Reader, out io.Writer) *UCI {
	u := &UCI{
		engine:   eng,
		store:    store,
		in:       in,
		out:      out,
		settings: storage.DefaultSettings(),
		position: board.NewPosition(),
	}
	if book != nil {
		eng.SetBook(book)
	}
	eng.OnInfo = u.sendInfo
	return u
}

// SetSettings applies settings loaded at startup without persisting them.
func (u *UCI) SetSettings(s storage.Settings) {
	if s.HashMB != u.settings.HashMB {
		u.engine.ResizeHash(s.HashMB)
	}
	u.settings = s
}

// Run reads commands until quit, end of input or a read error. A running
// search is stopped before Run returns.
func (u *UCI) Run(ctx context.Context) error {
	defer u.stopSearch()

	scanner := bufio.NewScanner(u.in)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		cmd, args := parts[0], parts[1:]
		log.Debug().Str("cmd", line).Msg("uci input")

		switch cmd {
		case "uci":
			u.handleUCI()
		case "isready":
			u.send("readyok")
		case "ucinewgame":
			u.stopSearch()
			u.engine.Clear()
			u.position = board.NewPosition()
		case "position":
			u.handlePosition(args)
		case "go":
			u.handleGo(ctx, args)
		case "stop":
			u.stopSearch()
		case "setoption":
			u.stopSearch()
			u.handleSetOption(args)
		case "quit":
			return nil
		// Debug commands
		case "d":
			u.send(u.position.String())
		case "eval":
			u.send("info string static eval " + engine.ScoreToString(u.engine.Evaluate(u.position)))
		case "perft":
			u.stopSearch()
			u.handlePerft(args)
		default:
			u.reportError(fmt.Errorf("unknown command %q", cmd))
		}
	}
	return scanner.Err()
}

func (u *UCI) send(format string, args ...any) {
	u.mu.Lock()
	defer u.mu.Unlock()
	fmt.Fprintf(u.out, format+"\n", args...)
}

// reportError logs err and tells the GUI about it.
func (u *UCI) reportError(err error) {
	log.Warn().Err(err).Msg("uci")
	u.send("info string error: %v", err)
}

// handleUCI responds to the "uci" command.
func (u *UCI) handleUCI() {
	u.send("id name %s", engineName)
	u.send("id author %s", engineAuthor)
	for _, o := range options {
		u.send("%s", o.describe(u.settings))
	}
	u.send("uciok")
}

// handlePosition parses and sets up a position.
// Formats:
//   - position startpos
//   - position startpos moves e2e4 e7e5
//   - position fen <fen>
//   - position fen <fen> moves e2e4
//
// The previous position is kept when any part is invalid.
func (u *UCI) handlePosition(args []string) {
	pos, err := parsePosition(args)
	if err != nil {
		u.reportError(err)
		return
	}
	u.position = pos
}

func parsePosition(args []string) (*board.Position, error) {
	setup, moves := args, []string(nil)
	if i := slices.Index(args, "moves"); i >= 0 {
		setup, moves = args[:i], args[i+1:]
	}

	var pos *board.Position
	switch {
	case len(setup) == 1 && setup[0] == "startpos":
		pos = board.NewPosition()
	case len(setup) > 1 && setup[0] == "fen":
		var err error
		pos, err = board.ParseFEN(strings.Join(setup[1:], " "))
		if err != nil {
			return nil, fmt.Errorf("position: %w", err)
		}
	default:
		return nil, fmt.Errorf("position: want startpos or fen, got %q", strings.Join(setup, " "))
	}

	for _, s := range moves {
		m, err := pos.ParseMove(s)
		if err != nil {
			return nil, fmt.Errorf("position: %w", err)
		}
		pos.DoMove(m)
	}
	return pos, nil
}

// handleGo starts a search with the given parameters.
func (u *UCI) handleGo(ctx context.Context, args []string) {
	u.stopSearch()

	limits, err := parseGo(args)
	if err != nil {
		u.reportError(err)
		return
	}
	if !limits.Infinite {
		limits.BookDepth = u.settings.BookDepth
	}

	searchCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	u.cancel, u.searchDone = cancel, done

	pos := u.position.Copy()
	go func() {
		defer close(done)
		best, ponder := u.engine.Search(searchCtx, pos, limits)
		u.sendBestMove(best, ponder)
	}()
}

// parseGo parses "go" command arguments.
func parseGo(args []string) (engine.Limits, error) {
	var limits engine.Limits
	for i := 0; i < len(args); i++ {
		key := args[i]
		if key == "infinite" {
			limits.Infinite = true
			continue
		}
		if i+1 >= len(args) {
			return limits, fmt.Errorf("go: %s needs a value", key)
		}
		i++
		n, err := strconv.ParseInt(args[i], 10, 64)
		if err != nil {
			return limits, fmt.Errorf("go: %s: %w", key, err)
		}
		ms := time.Duration(max(n, 0)) * time.Millisecond

		switch key {
		case "depth":
			limits.Depth = int(n)
		case "nodes":
			limits.Nodes = uint64(max(n, 0))
		case "movetime":
			limits.MoveTime = ms
		case "wtime":
			limits.Time[board.White] = ms
		case "btime":
			limits.Time[board.Black] = ms
		case "winc":
			limits.Inc[board.White] = ms
		case "binc":
			limits.Inc[board.Black] = ms
		case "movestogo":
			limits.MovesToGo = int(n)
		default:
			return limits, fmt.Errorf("go: unknown parameter %q", key)
		}
	}
	return limits, nil
}

// stopSearch cancels a running search and waits for its bestmove.
func (u *UCI) stopSearch() {
	if u.cancel == nil {
		return
	}
	u.cancel()
	<-u.searchDone
	u.cancel, u.searchDone = nil, nil
}

// handleSetOption processes "setoption name <name> [value <value>]".
func (u *UCI) handleSetOption(args []string) {
	var name, value []string
	target := &name
	for _, arg := range args {
		switch arg {
		case "name":
			target = &name
		case "value":
			target = &value
		default:
			*target = append(*target, arg)
		}
	}

	if err := u.setOption(strings.Join(name, " "), strings.Join(value, " ")); err != nil {
		u.reportError(err)
		return
	}
	if u.store == nil {
		return
	}
	if err := u.store.SaveSettings(u.settings); err != nil {
		log.Error().Err(err).Msg("saving settings")
	}
}

// handlePerft prints the node count below each root move, then the total.
func (u *UCI) handlePerft(args []string) {
	depth := 5
	if len(args) > 0 {
		d, err := strconv.Atoi(args[0])
		if err != nil || d < 1 {
			u.reportError(fmt.Errorf("perft: invalid depth %q", args[0]))
			return
		}
		depth = d
	}

	start := time.Now()
	divide := u.position.Divide(depth)
	moves := make([]board.Move, 0, len(divide))
	for m := range divide {
		moves = append(moves, m)
	}
	slices.SortFunc(moves, func(a, b board.Move) int {
		return strings.Compare(a.String(), b.String())
	})

	var total uint64
	for _, m := range moves {
		u.send("%s: %d", m, divide[m])
		total += divide[m]
	}
	u.send("")
	u.send("Nodes searched: %d", total)
	log.Debug().Int("depth", depth).Uint64("nodes", total).Dur("elapsed", time.Since(start)).Msg("perft")
}
