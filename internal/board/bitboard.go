package board

import (
	"math/bits"
	"strings"
)

// Bitboard represents a 64-bit board where each bit corresponds to a square.
// Bit 0 = A1, Bit 7 = H1, Bit 56 = A8, Bit 63 = H8 (Little-Endian Rank-File Mapping).
type Bitboard uint64

// File masks
const (
	FileA Bitboard = 0x0101010101010101
	FileB Bitboard = FileA << 1
	FileC Bitboard = FileA << 2
	FileD Bitboard = FileA << 3
	FileE Bitboard = FileA << 4
	FileF Bitboard = FileA << 5
	FileG Bitboard = FileA << 6
	FileH Bitboard = FileA << 7
)

// Rank masks
const (
	Rank1 Bitboard = 0xFF
	Rank2 Bitboard = Rank1 << 8
	Rank3 Bitboard = Rank1 << 16
	Rank4 Bitboard = Rank1 << 24
	Rank5 Bitboard = Rank1 << 32
	Rank6 Bitboard = Rank1 << 40
	Rank7 Bitboard = Rank1 << 48
	Rank8 Bitboard = Rank1 << 56
)

const (
	Empty    Bitboard = 0
	Universe Bitboard = 0xFFFFFFFFFFFFFFFF

	NotFileA Bitboard = ^FileA
	NotFileH Bitboard = ^FileH

	LightSquares Bitboard = 0x55AA55AA55AA55AA
	DarkSquares  Bitboard = 0xAA55AA55AA55AA55

	QueenSide Bitboard = FileA | FileB | FileC | FileD
	KingSide  Bitboard = FileE | FileF | FileG | FileH
)

// FileMask returns the file mask for a given file (0-7).
var FileMask = [8]Bitboard{FileA, FileB, FileC, FileD, FileE, FileF, FileG, FileH}

// RankMask returns the rank mask for a given rank (0-7).
var RankMask = [8]Bitboard{Rank1, Rank2, Rank3, Rank4, Rank5, Rank6, Rank7, Rank8}

// SquareBB returns a bitboard with only the given square set.
func SquareBB(sq Square) Bitboard {
	return 1 << sq
}

// FileBB returns the mask of the file the square is on.
func FileBB(sq Square) Bitboard {
	return FileMask[sq.File()]
}

// RankBB returns the mask of the rank the square is on.
func RankBB(sq Square) Bitboard {
	return RankMask[sq.Rank()]
}

// IsSet returns true if the bit at the given square is set.
func (b Bitboard) IsSet(sq Square) bool {
	return b&(1<<sq) != 0
}

// PopCount returns the number of set bits.
func (b Bitboard) PopCount() int {
	return bits.OnesCount64(uint64(b))
}

// LSB returns the lowest set square, NoSquare when empty.
func (b Bitboard) LSB() Square {
	if b == 0 {
		return NoSquare
	}
	return Square(bits.TrailingZeros64(uint64(b)))
}

// MSB returns the highest set square, NoSquare when empty.
func (b Bitboard) MSB() Square {
	if b == 0 {
		return NoSquare
	}
	return Square(63 - bits.LeadingZeros64(uint64(b)))
}

// PopLSB removes and returns the least significant bit.
func (b *Bitboard) PopLSB() Square {
	sq := b.LSB()
	*b &= *b - 1
	return sq
}

// MoreThanOne reports whether at least two bits are set.
func (b Bitboard) MoreThanOne() bool {
	return b&(b-1) != 0
}

// North shifts the bitboard one rank up (toward rank 8).
func (b Bitboard) North() Bitboard {
	return b << 8
}

// South shifts the bitboard one rank down (toward rank 1).
func (b Bitboard) South() Bitboard {
	return b >> 8
}

// East shifts the bitboard one file right (toward file h).
func (b Bitboard) East() Bitboard {
	return (b << 1) & NotFileA
}

// West shifts the bitboard one file left (toward file a).
func (b Bitboard) West() Bitboard {
	return (b >> 1) & NotFileH
}

// Up shifts one rank toward the opponent of c.
func (b Bitboard) Up(c Color) Bitboard {
	if c == White {
		return b << 8
	}
	return b >> 8
}

// Down shifts one rank toward c's own back rank.
func (b Bitboard) Down(c Color) Bitboard {
	if c == White {
		return b >> 8
	}
	return b << 8
}

// PawnAttacksBB returns the squares attacked by all pawns of color c in b.
func (b Bitboard) PawnAttacksBB(c Color) Bitboard {
	if c == White {
		return (b<<7)&NotFileH | (b<<9)&NotFileA
	}
	return (b>>7)&NotFileA | (b>>9)&NotFileH
}

// ForwardFileBB returns the squares in front of sq on its file, from c's view.
func ForwardFileBB(c Color, sq Square) Bitboard {
	return forwardRanks[c][sq.Rank()] & FileBB(sq)
}

// ForwardRanksBB returns every rank strictly ahead of sq from c's view.
func ForwardRanksBB(c Color, sq Square) Bitboard {
	return forwardRanks[c][sq.Rank()]
}

// PassedMaskBB returns the squares that must be free of enemy pawns for a
// pawn of color c on sq to be passed.
func PassedMaskBB(c Color, sq Square) Bitboard {
	return forwardRanks[c][sq.Rank()] & (FileBB(sq) | AdjacentFilesBB(sq))
}

// AdjacentFilesBB returns the files next to the square's file.
func AdjacentFilesBB(sq Square) Bitboard {
	f := FileBB(sq)
	return f.East() | f.West()
}

// forwardRanks[c][r] holds every rank strictly ahead of r from c's side.
var forwardRanks [2][8]Bitboard

func init() {
	for r := 0; r < 8; r++ {
		for ahead := r + 1; ahead < 8; ahead++ {
			forwardRanks[White][r] |= RankMask[ahead]
		}
		for ahead := r - 1; ahead >= 0; ahead-- {
			forwardRanks[Black][r] |= RankMask[ahead]
		}
	}
}

// String returns a visual representation of the bitboard.
func (b Bitboard) String() string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		sb.WriteByte(byte('1' + rank))
		sb.WriteByte(' ')
		for file := 0; file < 8; file++ {
			if b.IsSet(NewSquare(file, rank)) {
				sb.WriteString("1 ")
			} else {
				sb.WriteString(". ")
			}
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("  a b c d e f g h\n")
	return sb.String()
}
