package board

import (
	"fmt"
	"strings"
)

// CastlingRights represents the available castling options.
type CastlingRights uint8

const (
	WhiteKingSideCastle  CastlingRights = 1 << iota // K
	WhiteQueenSideCastle                            // Q
	BlackKingSideCastle                             // k
	BlackQueenSideCastle                            // q
	NoCastling           CastlingRights = 0
	AllCastling          CastlingRights = WhiteKingSideCastle | WhiteQueenSideCastle | BlackKingSideCastle | BlackQueenSideCastle
)

// String returns the FEN castling field.
func (cr CastlingRights) String() string {
	if cr == NoCastling {
		return "-"
	}
	var sb strings.Builder
	for i, c := range "KQkq" {
		if cr&(1<<i) != 0 {
			sb.WriteRune(c)
		}
	}
	return sb.String()
}

// castlingMask[sq] keeps the rights that survive a move touching sq.
var castlingMask = func() (m [64]CastlingRights) {
	for sq := range m {
		m[sq] = AllCastling
	}
	m[A1] &^= WhiteQueenSideCastle
	m[E1] &^= WhiteKingSideCastle | WhiteQueenSideCastle
	m[H1] &^= WhiteKingSideCastle
	m[A8] &^= BlackQueenSideCastle
	m[E8] &^= BlackKingSideCastle | BlackQueenSideCastle
	m[H8] &^= BlackKingSideCastle
	return m
}()

// MaxGamePly bounds the number of plies (game plus search) a position can
// record in its undo stack and repetition history.
const MaxGamePly = 4096

// undo holds what a move destroys and cannot be recomputed.
type undo struct {
	move       Move
	captured   Piece
	capturedSq Square
	side       Color
	castling   CastlingRights
	epSquare   Square
	epTarget   Square
	fifty      int
	fullMove   int
	gamePly    int
	hash       uint64
}

// Position is a mutable chess position. Its board views (square map, piece,
// type and color bitboards) and derived caches (king squares, non-pawn
// material, psq score, piece counts) are only changed together through
// placePiece and removePiece.
type Position struct {
	board   [64]Piece
	pieceBB [12]Bitboard
	typeBB  [6]Bitboard
	colorBB [2]Bitboard

	side     Color
	castling CastlingRights
	epSquare Square // square a pawn may capture onto
	epTarget Square // square of the pawn that just double pushed
	fifty    int
	fullMove int
	gamePly  int
	hash     uint64

	kingSq     [2]Square
	nonPawn    [2]int
	psqScore   [2]Score
	pieceCount [12]int

	keys     [MaxGamePly]uint64
	keyCount int

	undos     [MaxGamePly]undo
	undoCount int
}

// NewPosition returns the standard starting position.
func NewPosition() *Position {
	p, err := ParseFEN(StartFEN)
	if err != nil {
		panic(err)
	}
	return p
}

// Copy returns an independent copy, history included.
func (p *Position) Copy() *Position {
	c := *p
	return &c
}

func (p *Position) reset() {
	*p = Position{
		side:     White,
		epSquare: NoSquare,
		epTarget: NoSquare,
		fullMove: 1,
	}
	for sq := range p.board {
		p.board[sq] = NoPiece
	}
	p.kingSq = [2]Square{NoSquare, NoSquare}
}

// placePiece puts pc on an empty square.
func (p *Position) placePiece(pc Piece, sq Square) {
	bb := SquareBB(sq)
	c, pt := pc.Color(), pc.Type()

	p.board[sq] = pc
	p.pieceBB[pc] |= bb
	p.typeBB[pt] |= bb
	p.colorBB[c] |= bb
	p.pieceCount[pc]++
	p.psqScore[c] += psq[pc][sq]
	p.hash ^= zobristPiece[pc][sq]

	switch pt {
	case King:
		p.kingSq[c] = sq
	case Pawn:
	default:
		p.nonPawn[c] += SEEValue[pt]
	}
}

// removePiece clears the square holding pc.
func (p *Position) removePiece(pc Piece, sq Square) {
	bb := SquareBB(sq)
	c, pt := pc.Color(), pc.Type()

	p.board[sq] = NoPiece
	p.pieceBB[pc] &^= bb
	p.typeBB[pt] &^= bb
	p.colorBB[c] &^= bb
	p.pieceCount[pc]--
	p.psqScore[c] -= psq[pc][sq]
	p.hash ^= zobristPiece[pc][sq]

	switch pt {
	case King:
		p.kingSq[c] = NoSquare
	case Pawn:
	default:
		p.nonPawn[c] -= SEEValue[pt]
	}
}

// PieceAt returns the piece on sq, NoPiece if empty.
func (p *Position) PieceAt(sq Square) Piece { return p.board[sq] }

// Pieces returns the bitboard of one piece.
func (p *Position) Pieces(pc Piece) Bitboard { return p.pieceBB[pc] }

// PiecesOf returns the bitboard of a piece type and color.
func (p *Position) PiecesOf(c Color, pt PieceType) Bitboard { return p.pieceBB[NewPiece(pt, c)] }

// Type returns the bitboard of a piece type, both colors.
func (p *Position) Type(pt PieceType) Bitboard { return p.typeBB[pt] }

// Occupied returns all pieces of one color.
func (p *Position) Occupied(c Color) Bitboard { return p.colorBB[c] }

// All returns every occupied square.
func (p *Position) All() Bitboard { return p.colorBB[White] | p.colorBB[Black] }

// SideToMove returns the color to move.
func (p *Position) SideToMove() Color { return p.side }

// Castling returns the castling rights.
func (p *Position) Castling() CastlingRights { return p.castling }

// EnPassant returns the en-passant target square, NoSquare if none.
func (p *Position) EnPassant() Square { return p.epSquare }

// EnPassantTarget returns the square of the pawn capturable en passant.
func (p *Position) EnPassantTarget() Square { return p.epTarget }

// FiftyMove returns the half-move clock.
func (p *Position) FiftyMove() int { return p.fifty }

// FullMove returns the fullmove counter.
func (p *Position) FullMove() int { return p.fullMove }

// GamePly returns the number of plies played since the position was loaded.
func (p *Position) GamePly() int { return p.gamePly }

// Hash returns the zobrist key.
func (p *Position) Hash() uint64 { return p.hash }

// KingSquare returns the square of c's king.
func (p *Position) KingSquare(c Color) Square { return p.kingSq[c] }

// NonPawnMaterial returns c's knight, bishop, rook and queen material.
func (p *Position) NonPawnMaterial(c Color) int { return p.nonPawn[c] }

// TotalNonPawnMaterial returns both sides' non-pawn material.
func (p *Position) TotalNonPawnMaterial() int { return p.nonPawn[White] + p.nonPawn[Black] }

// PSQScore returns the incremental material and square score, White's view.
func (p *Position) PSQScore() Score { return p.psqScore[White] + p.psqScore[Black] }

// PieceCount returns how many of pc are on the board.
func (p *Position) PieceCount(pc Piece) int { return p.pieceCount[pc] }

// Depth returns the number of moves currently applied (undo stack depth).
func (p *Position) Depth() int { return p.undoCount }

// LastMove returns the most recently applied move, NoMove for none or a null
// move.
func (p *Position) LastMove() Move {
	if p.undoCount == 0 {
		return NoMove
	}
	return p.undos[p.undoCount-1].move
}

// LastCaptured returns the piece taken by the most recent move.
func (p *Position) LastCaptured() Piece {
	if p.undoCount == 0 {
		return NoPiece
	}
	return p.undos[p.undoCount-1].captured
}

// Moves returns the moves applied since the position was loaded, oldest
// first.
func (p *Position) Moves() []Move {
	moves := make([]Move, p.undoCount)
	for i := range moves {
		moves[i] = p.undos[i].move
	}
	return moves
}

// RootHash returns the key of the position as it was loaded.
func (p *Position) RootHash() uint64 {
	return p.keys[0]
}

// String returns a board diagram followed by the FEN and key.
func (p *Position) String() string {
	var sb strings.Builder
	sb.WriteString("\n +---+---+---+---+---+---+---+---+\n")
	for rank := 7; rank >= 0; rank-- {
		for file := 0; file < 8; file++ {
			pc := p.board[NewSquare(file, rank)]
			if pc == NoPiece {
				sb.WriteString(" |  ")
			} else {
				sb.WriteString(" | " + pc.String())
			}
		}
		fmt.Fprintf(&sb, " | %d\n +---+---+---+---+---+---+---+---+\n", rank+1)
	}
	sb.WriteString("   a   b   c   d   e   f   g   h\n\n")
	fmt.Fprintf(&sb, "Fen: %s\nKey: %016X\n", p.FEN(), p.hash)
	return sb.String()
}
