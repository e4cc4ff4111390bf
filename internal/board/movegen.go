package board

import (
	"errors"
	"fmt"
)

// ErrIllegalMove is returned when a move string does not name a legal move.
var ErrIllegalMove = errors.New("illegal move")

// GenerateMoves appends every pseudo-legal move of the side to move to ml.
// Moves may leave the king in check; DoMove rejects those.
func (p *Position) GenerateMoves(ml *MoveList) {
	p.generatePawnCaptures(ml)
	p.generatePawnPushes(ml)
	p.generatePieceMoves(ml, Knight)
	p.generatePieceMoves(ml, Bishop)
	p.generatePieceMoves(ml, Rook)
	p.generatePieceMoves(ml, Queen)
	p.generatePieceMoves(ml, King)
	p.generateCastling(ml)
}

// LegalMoves returns the legal moves of the side to move.
func (p *Position) LegalMoves() []Move {
	var ml MoveList
	p.GenerateMoves(&ml)
	legal := make([]Move, 0, ml.Len())
	for _, m := range ml.Slice() {
		if p.DoMove(m) {
			p.UndoMove()
			legal = append(legal, m)
		}
	}
	return legal
}

// ParseMove resolves a UCI move string ("e2e4", "e7e8q") against the legal
// moves of the position.
func (p *Position) ParseMove(s string) (Move, error) {
	for _, m := range p.LegalMoves() {
		if m.String() == s {
			return m, nil
		}
	}
	return NoMove, fmt.Errorf("%w: %q", ErrIllegalMove, s)
}

func (p *Position) addPromotions(ml *MoveList, from, to Square, pawn Piece, capture bool) {
	us := pawn.Color()
	for _, pt := range [...]PieceType{Queen, Rook, Bishop, Knight} {
		ml.Add(NewMove(from, to, pawn, NewPiece(pt, us), capture, false, false, false))
	}
}

func (p *Position) generatePawnPushes(ml *MoveList) {
	us := p.side
	pawn := NewPiece(Pawn, us)
	empty := ^p.All()
	push := 8
	if us == Black {
		push = -8
	}

	single := p.pieceBB[pawn].Up(us) & empty
	double := (single & RankMask[RelativeRank3(us)]).Up(us) & empty
	promo := RankMask[RelativeRank8(us)]

	for b := single & promo; b != 0; {
		to := b.PopLSB()
		p.addPromotions(ml, Square(int(to)-push), to, pawn, false)
	}
	for b := single &^ promo; b != 0; {
		to := b.PopLSB()
		ml.Add(NewMove(Square(int(to)-push), to, pawn, NoPiece, false, false, false, false))
	}
	for b := double; b != 0; {
		to := b.PopLSB()
		ml.Add(NewMove(Square(int(to)-2*push), to, pawn, NoPiece, false, true, false, false))
	}
}

func (p *Position) generatePawnCaptures(ml *MoveList) {
	us := p.side
	pawn := NewPiece(Pawn, us)
	enemies := p.colorBB[us.Other()]
	promoFrom := RankMask[RelativeRank8(us)].Down(us)

	for pawns := p.pieceBB[pawn]; pawns != 0; {
		from := pawns.PopLSB()
		attacks := pawnAttacks[us][from]
		if p.epSquare != NoSquare && attacks.IsSet(p.epSquare) {
			ml.Add(NewMove(from, p.epSquare, pawn, NoPiece, true, false, true, false))
		}
		for b := attacks & enemies; b != 0; {
			to := b.PopLSB()
			if promoFrom.IsSet(from) {
				p.addPromotions(ml, from, to, pawn, true)
			} else {
				ml.Add(NewMove(from, to, pawn, NoPiece, true, false, false, false))
			}
		}
	}
}

func (p *Position) generatePieceMoves(ml *MoveList, pt PieceType) {
	us := p.side
	piece := NewPiece(pt, us)
	occupied := p.All()
	enemies := p.colorBB[us.Other()]

	for pieces := p.pieceBB[piece]; pieces != 0; {
		from := pieces.PopLSB()
		for b := Attacks(pt, us, from, occupied) &^ p.colorBB[us]; b != 0; {
			to := b.PopLSB()
			ml.Add(NewMove(from, to, piece, NoPiece, enemies.IsSet(to), false, false, false))
		}
	}
}

// generateCastling requires the squares between king and rook to be empty
// and the king's origin and transit squares to be safe. The destination is
// left to DoMove's legality test.
func (p *Position) generateCastling(ml *MoveList) {
	us := p.side
	them := us.Other()
	king := NewPiece(King, us)
	occupied := p.All()
	e1 := RelativeSquare(us, E1)

	kingSide, queenSide := WhiteKingSideCastle, WhiteQueenSideCastle
	if us == Black {
		kingSide, queenSide = BlackKingSideCastle, BlackQueenSideCastle
	}

	if p.castling&kingSide != 0 {
		f1, g1 := RelativeSquare(us, F1), RelativeSquare(us, G1)
		if occupied&(SquareBB(f1)|SquareBB(g1)) == 0 &&
			!p.IsSquareAttacked(e1, them) && !p.IsSquareAttacked(f1, them) {
			ml.Add(NewMove(e1, g1, king, NoPiece, false, false, false, true))
		}
	}
	if p.castling&queenSide != 0 {
		d1, c1, b1 := RelativeSquare(us, D1), RelativeSquare(us, C1), RelativeSquare(us, B1)
		if occupied&(SquareBB(d1)|SquareBB(c1)|SquareBB(b1)) == 0 &&
			!p.IsSquareAttacked(e1, them) && !p.IsSquareAttacked(d1, them) {
			ml.Add(NewMove(e1, c1, king, NoPiece, false, false, false, true))
		}
	}
}

// RelativeRank3 returns the rank index a pawn of c reaches with one push
// from its home rank.
func RelativeRank3(c Color) int {
	if c == White {
		return 2
	}
	return 5
}

// RelativeRank8 returns c's promotion rank index.
func RelativeRank8(c Color) int {
	if c == White {
		return 7
	}
	return 0
}

// Perft counts the leaf nodes of the legal move tree to the given depth.
func (p *Position) Perft(depth int) uint64 {
	if depth == 0 {
		return 1
	}
	var ml MoveList
	p.GenerateMoves(&ml)

	var nodes uint64
	for _, m := range ml.Slice() {
		if !p.DoMove(m) {
			continue
		}
		if depth == 1 {
			nodes++
		} else {
			nodes += p.Perft(depth - 1)
		}
		p.UndoMove()
	}
	return nodes
}

// Divide returns the perft count below each legal root move.
func (p *Position) Divide(depth int) map[Move]uint64 {
	result := make(map[Move]uint64)
	if depth < 1 {
		return result
	}
	for _, m := range p.LegalMoves() {
		p.DoMove(m)
		result[m] = p.Perft(depth - 1)
		p.UndoMove()
	}
	return result
}
