// Package book implements an opening book made of move lines played from the
// standard start position.
package book

import (
	"bufio"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/notnil/chess"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/ajurian/AlphaChess/internal/board"
)

// ErrNoBook is returned when a source holds no usable line.
var ErrNoBook = errors.New("book: no lines")

//go:embed lines.txt
var defaultLines string

var startKey = board.NewPosition().Hash()

// Book is a list of opening lines.
type Book struct {
	lines [][]board.Move
}

// Default returns the built-in book.
func Default() *Book {
	b, err := Parse(strings.NewReader(defaultLines))
	if err != nil {
		panic(fmt.Sprintf("book: built-in lines: %v", err))
	}
	return b
}

// Parse reads one line per row, moves in UCI notation separated by spaces.
// Blank rows and rows starting with '#' are skipped.
func Parse(r io.Reader) (*Book, error) {
	b := &Book{}
	sc := bufio.NewScanner(r)
	for n := 1; sc.Scan(); n++ {
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		line, err := parseLine(strings.Fields(text))
		if err != nil {
			return nil, fmt.Errorf("book: line %d: %w", n, err)
		}
		b.lines = append(b.lines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("book: %w", err)
	}
	if len(b.lines) == 0 {
		return nil, ErrNoBook
	}
	return b, nil
}

// ImportPGN reads games in PGN and keeps up to maxPlies moves of each game
// played from the standard start position.
func ImportPGN(r io.Reader, maxPlies int) (*Book, error) {
	b := &Book{}
	sc := chess.NewScanner(r)
	for n := 1; sc.Scan(); n++ {
		game := sc.Next()
		positions := game.Positions()
		if len(positions) == 0 || positions[0].String() != board.StartFEN {
			log.Warn().Int("game", n).Msg("skipping game not played from the start position")
			continue
		}

		moves := game.Moves()
		text := make([]string, 0, min(maxPlies, len(moves)))
		for i := 0; i < len(moves) && i < maxPlies; i++ {
			text = append(text, chess.UCINotation{}.Encode(positions[i], moves[i]))
		}
		if len(text) == 0 {
			continue
		}

		line, err := parseLine(text)
		if err != nil {
			log.Warn().Err(err).Int("game", n).Msg("skipping game")
			continue
		}
		b.lines = append(b.lines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("book: pgn: %w", err)
	}
	if len(b.lines) == 0 {
		return nil, ErrNoBook
	}
	return b, nil
}

// parseLine resolves each move against the position reached so far.
func parseLine(text []string) ([]board.Move, error) {
	pos := board.NewPosition()
	line := make([]board.Move, 0, len(text))
	for i, s := range text {
		m, err := pos.ParseMove(s)
		if err != nil {
			return nil, fmt.Errorf("ply %d: %w", i+1, err)
		}
		pos.DoMove(m)
		line = append(line, m)
	}
	return line, nil
}

// FindMove returns the next move of a random line continuing the game that
// led to pos, or NoMove when no line does.
func (b *Book) FindMove(pos *board.Position) board.Move {
	if b == nil || pos.RootHash() != startKey {
		return board.NoMove
	}
	played := pos.Moves()
	matched := lo.Filter(b.lines, func(line []board.Move, _ int) bool {
		return len(line) > len(played) && slices.Equal(line[:len(played)], played)
	})
	if len(matched) == 0 {
		return board.NoMove
	}
	return matched[rand.IntN(len(matched))][len(played)]
}

// Len returns the number of lines.
func (b *Book) Len() int {
	if b == nil {
		return 0
	}
	return len(b.lines)
}

// Lines returns the lines in UCI notation, in the format Parse reads.
func (b *Book) Lines() []string {
	if b == nil {
		return nil
	}
	return lo.Map(b.lines, func(line []board.Move, _ int) string {
		return strings.Join(lo.Map(line, func(m board.Move, _ int) string {
			return m.String()
		}), " ")
	})
}
