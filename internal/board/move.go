package board

// Move packs a move and its metadata into 26 bits:
//
//	bits 0-6:   from square
//	bits 7-13:  to square
//	bits 14-17: moving piece
//	bits 18-21: promotion piece (NoPiece when none)
//	bit 22:     capture
//	bit 23:     double pawn push
//	bit 24:     en passant
//	bit 25:     castling
//
// The zero value is NoMove.
type Move uint32

// NoMove is the sentinel "no move" value.
const NoMove Move = 0

const (
	flagCapture   Move = 1 << 22
	flagPush      Move = 1 << 23
	flagEnPassant Move = 1 << 24
	flagCastling  Move = 1 << 25
)

// MaxMoves bounds the pseudo-legal moves of any position.
const MaxMoves = 256

// NewMove encodes a move. promo is NoPiece for non-promotions.
func NewMove(from, to Square, piece, promo Piece, capture, push, enPassant, castling bool) Move {
	m := Move(from) | Move(to)<<7 | Move(piece)<<14 | Move(promo)<<18
	if capture {
		m |= flagCapture
	}
	if push {
		m |= flagPush
	}
	if enPassant {
		m |= flagEnPassant
	}
	if castling {
		m |= flagCastling
	}
	return m
}

// From returns the origin square.
func (m Move) From() Square {
	return Square(m & 0x7F)
}

// To returns the destination square.
func (m Move) To() Square {
	return Square(m >> 7 & 0x7F)
}

// Piece returns the moving piece.
func (m Move) Piece() Piece {
	return Piece(m >> 14 & 0xF)
}

// Promotion returns the promoted piece, NoPiece for a normal move.
func (m Move) Promotion() Piece {
	return Piece(m >> 18 & 0xF)
}

func (m Move) IsCapture() bool   { return m&flagCapture != 0 }
func (m Move) IsPush() bool      { return m&flagPush != 0 }
func (m Move) IsEnPassant() bool { return m&flagEnPassant != 0 }
func (m Move) IsCastling() bool  { return m&flagCastling != 0 }

// IsPromotion reports whether the move promotes a pawn.
func (m Move) IsPromotion() bool {
	return m != NoMove && m.Promotion() != NoPiece
}

// IsTactical reports captures and promotions.
func (m Move) IsTactical() bool {
	return m.IsCapture() || m.IsPromotion()
}

// String returns the UCI form of the move (e.g. "e2e4", "e7e8q").
func (m Move) String() string {
	if m == NoMove {
		return "0000"
	}
	s := m.From().String() + m.To().String()
	if m.IsPromotion() {
		s += string(m.Promotion().Type().Char())
	}
	return s
}

// MoveList is a fixed-size move buffer that never allocates.
type MoveList struct {
	moves [MaxMoves]Move
	count int
}

// Add appends a move.
func (ml *MoveList) Add(m Move) {
	ml.moves[ml.count] = m
	ml.count++
}

// Len returns the number of moves.
func (ml *MoveList) Len() int {
	return ml.count
}

// Get returns the move at index i.
func (ml *MoveList) Get(i int) Move {
	return ml.moves[i]
}

// Clear empties the list.
func (ml *MoveList) Clear() {
	ml.count = 0
}

// Contains reports whether m is in the list.
func (ml *MoveList) Contains(m Move) bool {
	for i := 0; i < ml.count; i++ {
		if ml.moves[i] == m {
			return true
		}
	}
	return false
}

// Slice returns the moves as a slice backed by the list.
func (ml *MoveList) Slice() []Move {
	return ml.moves[:ml.count]
}
