package engine

import (
	"github.com/ajurian/AlphaChess/internal/board"
)

// PawnEntry caches the pawn structure terms of one pawn configuration.
type PawnEntry struct {
	White, Black board.Bitboard
	Score        board.Score
	Passed       [2]board.Bitboard
}

// PawnTable caches pawn structure evaluations. Entries are keyed by both
// pawn bitboards, so a hit is never a collision.
type PawnTable struct {
	entries []PawnEntry
	mask    uint64
}

// NewPawnTable creates a pawn table of roughly sizeMB megabytes.
func NewPawnTable(sizeMB int) *PawnTable {
	const entrySize = 48
	n := roundDownToPowerOf2(uint64(max(sizeMB, 1)) << 20 / entrySize)
	return &PawnTable{
		entries: make([]PawnEntry, n),
		mask:    n - 1,
	}
}

func pawnIndex(white, black board.Bitboard) uint64 {
	h := uint64(white)*0x9E3779B97F4A7C15 ^ uint64(black)*0xC2B2AE3D27D4EB4F
	return h ^ h>>29
}

// Probe returns the cached entry for the pawn configuration. An empty slot
// matches the pawnless configuration, whose terms are all zero.
func (pt *PawnTable) Probe(white, black board.Bitboard) (PawnEntry, bool) {
	e := pt.entries[pawnIndex(white, black)&pt.mask]
	return e, e.White == white && e.Black == black
}

// Store saves the pawn terms of a configuration.
func (pt *PawnTable) Store(white, black board.Bitboard, score board.Score, passed [2]board.Bitboard) {
	pt.entries[pawnIndex(white, black)&pt.mask] = PawnEntry{
		White:  white,
		Black:  black,
		Score:  score,
		Passed: passed,
	}
}

// Clear empties the table.
func (pt *PawnTable) Clear() {
	clear(pt.entries)
}
