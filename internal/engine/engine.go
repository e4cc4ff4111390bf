// Package engine implements the evaluation, move ordering and principal
// variation search of the chess engine.
package engine

import (
	"context"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/ajurian/AlphaChess/internal/board"
)

// Info reports search progress. A non-zero CurrMove marks a root move
// notification; otherwise it summarizes an iteration.
type Info struct {
	Depth    int
	SelDepth int
	Score    int
	Bound    Bound
	Nodes    uint64
	Time     time.Duration
	HashFull int
	PV       []board.Move

	CurrMove       board.Move
	CurrMoveNumber int
}

// NPS returns the search speed in nodes per second.
func (i Info) NPS() uint64 {
	ms := i.Time.Milliseconds()
	if ms <= 0 {
		return 0
	}
	return i.Nodes * 1000 / uint64(ms)
}

// Book supplies opening moves.
type Book interface {
	FindMove(pos *board.Position) board.Move
}

// Engine is the chess engine: a transposition table, the history tables that
// persist between searches, and an optional opening book.
type Engine struct {
	tt   *TranspositionTable
	s    *searcher
	book Book

	// OnInfo receives progress reports from the search goroutine.
	OnInfo func(Info)
}

// NewEngine creates an engine with a hashMB megabyte transposition table.
func NewEngine(hashMB int) *Engine {
	tt := NewTranspositionTable(hashMB)
	return &Engine{
		tt: tt,
		s:  newSearcher(tt),
	}
}

// SetBook sets the opening book, nil for none.
func (e *Engine) SetBook(b Book) {
	e.book = b
}

// ResizeHash reallocates the transposition table.
func (e *Engine) ResizeHash(mb int) {
	e.tt.Resize(mb)
}

// Clear forgets everything learned, as for a new game.
func (e *Engine) Clear() {
	e.tt.Clear()
	e.s.clearHistory()
}

// Stop asks a running search to return.
func (e *Engine) Stop() {
	e.s.tm.Stop()
}

// Nodes returns the node count of the last search.
func (e *Engine) Nodes() uint64 {
	return e.s.nodes
}

// Search returns the best move for pos within limits, and the expected
// reply. The search owns pos until it returns; pos is restored afterwards.
// Cancelling ctx stops the search, which still returns the best move of the
// last completed iteration. NoMove is returned only when pos has no legal
// move.
func (e *Engine) Search(ctx context.Context, pos *board.Position, limits Limits) (best, ponder board.Move) {
	if m := e.bookMove(pos, limits); m != board.NoMove {
		return m, board.NoMove
	}

	s := e.s
	s.onInfo = e.OnInfo
	s.prepare(pos, limits)
	log.Debug().
		Str("fen", pos.FEN()).
		Dur("budget", s.tm.Deadline()).
		Int("depth", limits.Depth).
		Uint64("nodes", limits.Nodes).
		Msg("search started")

	done := make(chan struct{})
	var g errgroup.Group
	g.Go(func() error {
		return s.tm.watch(ctx, done)
	})
	g.Go(func() error {
		defer close(done)
		best, ponder = s.iterate()
		return nil
	})
	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("search failed")
	}

	log.Debug().
		Stringer("best", best).
		Stringer("ponder", ponder).
		Uint64("nodes", s.nodes).
		Dur("elapsed", s.tm.Elapsed()).
		Msg("search finished")
	return best, ponder
}

// bookMove returns a legal book move while the game is young enough.
func (e *Engine) bookMove(pos *board.Position, limits Limits) board.Move {
	if e.book == nil || pos.GamePly() >= limits.BookDepth {
		return board.NoMove
	}
	m := e.book.FindMove(pos)
	if m == board.NoMove {
		return board.NoMove
	}
	for _, legal := range pos.LegalMoves() {
		if legal == m {
			log.Debug().Stringer("move", m).Msg("book move")
			return m
		}
	}
	log.Warn().Stringer("move", m).Str("fen", pos.FEN()).Msg("book move is not legal here")
	return board.NoMove
}

// Evaluate returns the static evaluation of pos for the side to move.
func (e *Engine) Evaluate(pos *board.Position) int {
	return Evaluate(pos)
}

// ScoreToString formats a search score the way the UCI protocol expects:
// "cp N" in centipawns or "mate N" in moves, negative when being mated.
func ScoreToString(score int) string {
	switch {
	case score >= winValueInMaxPly:
		return "mate " + strconv.Itoa((MateValue-score+1)/2)
	case score <= lossValueInMaxPly:
		return "mate " + strconv.Itoa((-MateValue-score)/2)
	}
	return "cp " + strconv.Itoa(score*100/board.PieceScore[board.Pawn].Eg())
}
