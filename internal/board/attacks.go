package board

// Pre-computed attack tables. They are filled once by init and only read
// afterwards.
var (
	knightAttacks [64]Bitboard
	kingAttacks   [64]Bitboard
	pawnAttacks   [2][64]Bitboard // [Color][Square]

	// Full lines through a square, the square itself excluded.
	diagonalMask     [64]Bitboard // a1-h8 direction
	antiDiagonalMask [64]Bitboard // h1-a8 direction
	fileMask         [64]Bitboard
	rankMask         [64]Bitboard

	spanBB    [64][64]Bitboard // bits i..j inclusive, for i <= j
	betweenBB [64][64]Bitboard // squares strictly between two aligned squares
	lineBB    [64][64]Bitboard // full line through two aligned squares
)

func init() {
	initLeaperAttacks()
	initLineMasks()
	initSpans()
	initBetweenAndLine()
}

func initLeaperAttacks() {
	knightSteps := [8][2]int{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
	kingSteps := [8][2]int{{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1}}

	for sq := A1; sq <= H8; sq++ {
		for _, s := range knightSteps {
			knightAttacks[sq] |= stepBB(sq, s[0], s[1])
		}
		for _, s := range kingSteps {
			kingAttacks[sq] |= stepBB(sq, s[0], s[1])
		}
		pawnAttacks[White][sq] = stepBB(sq, -1, 1) | stepBB(sq, 1, 1)
		pawnAttacks[Black][sq] = stepBB(sq, -1, -1) | stepBB(sq, 1, -1)
	}
}

// stepBB returns the square reached by (df, dr) from sq, or Empty when it
// falls off the board.
func stepBB(sq Square, df, dr int) Bitboard {
	f, r := sq.File()+df, sq.Rank()+dr
	if f < 0 || f > 7 || r < 0 || r > 7 {
		return Empty
	}
	return SquareBB(NewSquare(f, r))
}

// rayBB walks from sq in direction (df, dr) until the edge of the board.
func rayBB(sq Square, df, dr int) Bitboard {
	var bb Bitboard
	f, r := sq.File()+df, sq.Rank()+dr
	for f >= 0 && f <= 7 && r >= 0 && r <= 7 {
		bb |= SquareBB(NewSquare(f, r))
		f += df
		r += dr
	}
	return bb
}

func initLineMasks() {
	for sq := A1; sq <= H8; sq++ {
		diagonalMask[sq] = rayBB(sq, 1, 1) | rayBB(sq, -1, -1)
		antiDiagonalMask[sq] = rayBB(sq, -1, 1) | rayBB(sq, 1, -1)
		fileMask[sq] = FileBB(sq) &^ SquareBB(sq)
		rankMask[sq] = RankBB(sq) &^ SquareBB(sq)
	}
}

func initSpans() {
	for i := 0; i < 64; i++ {
		for j := i; j < 64; j++ {
			// (1<<j) - (1<<i) covers bits i..j-1; add bit j.
			spanBB[i][j] = Bitboard(1)<<j | (Bitboard(1)<<j - Bitboard(1)<<i)
		}
	}
}

func initBetweenAndLine() {
	for a := A1; a <= H8; a++ {
		for _, line := range [4]Bitboard{diagonalMask[a], antiDiagonalMask[a], fileMask[a], rankMask[a]} {
			for rest := line; rest != 0; {
				b := rest.PopLSB()
				lineBB[a][b] = line | SquareBB(a)
				lo, hi := min(a, b), max(a, b)
				betweenBB[a][b] = line & spanBB[lo][hi] &^ SquareBB(b)
			}
		}
	}
}

// sliderAttacks resolves attacks along one line through sq. Blockers below
// the source square clip the line from beneath at the highest of them, those
// above clip it from above at the lowest; the span between the two nearest
// blockers (or the board edges) is the attack set.
func sliderAttacks(sq Square, line, occupied Bitboard) Bitboard {
	blockers := line & occupied
	if blockers == 0 {
		return line
	}
	below := SquareBB(sq) - 1
	lower, upper := Square(0), Square(63)
	if lo := blockers & below; lo != 0 {
		lower = lo.MSB()
	}
	if hi := blockers &^ below; hi != 0 {
		upper = hi.LSB()
	}
	return line & spanBB[lower][upper]
}

// KnightAttacks returns the knight attack bitboard for a square.
func KnightAttacks(sq Square) Bitboard {
	return knightAttacks[sq]
}

// KingAttacks returns the king attack bitboard for a square.
func KingAttacks(sq Square) Bitboard {
	return kingAttacks[sq]
}

// PawnAttacks returns the squares a pawn of color c on sq attacks.
func PawnAttacks(sq Square, c Color) Bitboard {
	return pawnAttacks[c][sq]
}

// BishopAttacks returns bishop attacks from sq for the given occupancy.
func BishopAttacks(sq Square, occupied Bitboard) Bitboard {
	return sliderAttacks(sq, diagonalMask[sq], occupied) |
		sliderAttacks(sq, antiDiagonalMask[sq], occupied)
}

// RookAttacks returns rook attacks from sq for the given occupancy.
func RookAttacks(sq Square, occupied Bitboard) Bitboard {
	return sliderAttacks(sq, fileMask[sq], occupied) |
		sliderAttacks(sq, rankMask[sq], occupied)
}

// QueenAttacks returns queen attacks from sq for the given occupancy.
func QueenAttacks(sq Square, occupied Bitboard) Bitboard {
	return BishopAttacks(sq, occupied) | RookAttacks(sq, occupied)
}

// Attacks returns the attack set of a piece of type pt and color c on sq.
func Attacks(pt PieceType, c Color, sq Square, occupied Bitboard) Bitboard {
	switch pt {
	case Pawn:
		return pawnAttacks[c][sq]
	case Knight:
		return knightAttacks[sq]
	case Bishop:
		return BishopAttacks(sq, occupied)
	case Rook:
		return RookAttacks(sq, occupied)
	case Queen:
		return QueenAttacks(sq, occupied)
	case King:
		return kingAttacks[sq]
	}
	return Empty
}

// Between returns the squares strictly between two aligned squares, Empty
// when they do not share a line.
func Between(a, b Square) Bitboard {
	return betweenBB[a][b]
}

// Line returns the full line through two aligned squares, Empty otherwise.
func Line(a, b Square) Bitboard {
	return lineBB[a][b]
}

// Aligned reports whether three squares lie on one line.
func Aligned(a, b, c Square) bool {
	return lineBB[a][b].IsSet(c)
}
