package board

// DoMove applies a pseudo-legal move. The move is applied first and its
// legality checked afterwards: if it leaves the mover's king attacked it is
// taken back and DoMove returns false, leaving the position exactly as it
// was.
func (p *Position) DoMove(m Move) bool {
	us := p.side
	from, to := m.From(), m.To()
	piece := m.Piece()

	p.pushUndo(m)

	p.removePiece(piece, from)

	if m.IsCapture() && !m.IsEnPassant() {
		captured := p.board[to]
		p.removePiece(captured, to)
		p.undos[p.undoCount-1].captured = captured
		p.undos[p.undoCount-1].capturedSq = to
	}

	if promo := m.Promotion(); promo != NoPiece {
		p.placePiece(promo, to)
	} else {
		p.placePiece(piece, to)
	}

	if m.IsEnPassant() {
		captured := p.board[p.epTarget]
		p.removePiece(captured, p.epTarget)
		p.undos[p.undoCount-1].captured = captured
		p.undos[p.undoCount-1].capturedSq = p.epTarget
	}

	if m.IsCapture() || piece.Type() == Pawn {
		p.fifty = 0
	} else {
		p.fifty++
	}

	if p.epSquare != NoSquare {
		p.hash ^= zobristEnPassant[p.epSquare.File()]
		p.epSquare, p.epTarget = NoSquare, NoSquare
	}
	if m.IsPush() {
		p.epTarget = to
		if us == White {
			p.epSquare = to - 8
		} else {
			p.epSquare = to + 8
		}
		p.hash ^= zobristEnPassant[p.epSquare.File()]
	}

	if m.IsCastling() {
		rook := NewPiece(Rook, us)
		rookFrom, rookTo := castlingRookSquares(us, to)
		p.removePiece(rook, rookFrom)
		p.placePiece(rook, rookTo)
	}

	if cr := p.castling & castlingMask[from] & castlingMask[to]; cr != p.castling {
		p.hash ^= zobristCastling[p.castling] ^ zobristCastling[cr]
		p.castling = cr
	}

	if us == Black {
		p.fullMove++
	}
	p.side = us.Other()
	p.hash ^= zobristSideToMove
	p.pushKey()
	p.gamePly++

	if p.IsSideInCheck(us) {
		p.UndoMove()
		return false
	}
	return true
}

// DoNullMove passes the turn. It is undone with UndoMove like a real move.
func (p *Position) DoNullMove() {
	p.pushUndo(NoMove)

	if p.epSquare != NoSquare {
		p.hash ^= zobristEnPassant[p.epSquare.File()]
		p.epSquare, p.epTarget = NoSquare, NoSquare
	}
	p.fifty++
	p.side = p.side.Other()
	p.hash ^= zobristSideToMove
	p.pushKey()
	p.gamePly++
}

// UndoMove takes back the most recent DoMove or DoNullMove and returns the
// move undone (NoMove for a null move). Calling it with nothing to undo is a
// programming error and panics.
func (p *Position) UndoMove() Move {
	if p.undoCount == 0 {
		panic("board: UndoMove with empty undo stack")
	}
	p.undoCount--
	p.keyCount--
	u := &p.undos[p.undoCount]
	m := u.move

	if m != NoMove {
		us := u.side
		from, to := m.From(), m.To()

		if m.IsCastling() {
			rook := NewPiece(Rook, us)
			rookFrom, rookTo := castlingRookSquares(us, to)
			p.removePiece(rook, rookTo)
			p.placePiece(rook, rookFrom)
		}

		p.removePiece(p.board[to], to)
		p.placePiece(m.Piece(), from)

		if u.captured != NoPiece {
			p.placePiece(u.captured, u.capturedSq)
		}
	}

	p.side = u.side
	p.castling = u.castling
	p.epSquare = u.epSquare
	p.epTarget = u.epTarget
	p.fifty = u.fifty
	p.fullMove = u.fullMove
	p.gamePly = u.gamePly
	p.hash = u.hash

	return m
}

func (p *Position) pushUndo(m Move) {
	if p.undoCount == MaxGamePly {
		panic("board: undo stack overflow")
	}
	p.undos[p.undoCount] = undo{
		move:       m,
		captured:   NoPiece,
		capturedSq: NoSquare,
		side:       p.side,
		castling:   p.castling,
		epSquare:   p.epSquare,
		epTarget:   p.epTarget,
		fifty:      p.fifty,
		fullMove:   p.fullMove,
		gamePly:    p.gamePly,
		hash:       p.hash,
	}
	p.undoCount++
}

func (p *Position) pushKey() {
	if p.keyCount == MaxGamePly {
		panic("board: repetition history overflow")
	}
	p.keys[p.keyCount] = p.hash
	p.keyCount++
}

// castlingRookSquares returns the rook's origin and destination for a king
// castling onto kingTo.
func castlingRookSquares(c Color, kingTo Square) (Square, Square) {
	if kingTo.File() == 6 {
		return RelativeSquare(c, H1), RelativeSquare(c, F1)
	}
	return RelativeSquare(c, A1), RelativeSquare(c, D1)
}

// IsSideInCheck reports whether c's king is attacked.
func (p *Position) IsSideInCheck(c Color) bool {
	return p.IsSquareAttacked(p.kingSq[c], c.Other())
}

// IsKingAttacked reports whether the side to move is in check.
func (p *Position) IsKingAttacked() bool {
	return p.IsSideInCheck(p.side)
}

// IsSquareAttacked reports whether any piece of color by attacks sq.
func (p *Position) IsSquareAttacked(sq Square, by Color) bool {
	return p.AttackersByColor(sq, by, p.All()) != 0
}

// AttackersTo returns every piece of either color attacking sq, with sliders
// resolved against occupied.
func (p *Position) AttackersTo(sq Square, occupied Bitboard) Bitboard {
	bishops := p.typeBB[Bishop] | p.typeBB[Queen]
	rooks := p.typeBB[Rook] | p.typeBB[Queen]
	return pawnAttacks[Black][sq]&p.pieceBB[WhitePawn] |
		pawnAttacks[White][sq]&p.pieceBB[BlackPawn] |
		knightAttacks[sq]&p.typeBB[Knight] |
		kingAttacks[sq]&p.typeBB[King] |
		BishopAttacks(sq, occupied)&bishops |
		RookAttacks(sq, occupied)&rooks
}

// AttackersByColor returns pieces of color c attacking sq.
func (p *Position) AttackersByColor(sq Square, c Color, occupied Bitboard) Bitboard {
	return (pawnAttacks[c.Other()][sq]&p.PiecesOf(c, Pawn) |
		knightAttacks[sq]&p.PiecesOf(c, Knight) |
		kingAttacks[sq]&p.PiecesOf(c, King) |
		BishopAttacks(sq, occupied)&(p.PiecesOf(c, Bishop)|p.PiecesOf(c, Queen)) |
		RookAttacks(sq, occupied)&(p.PiecesOf(c, Rook)|p.PiecesOf(c, Queen)))
}
