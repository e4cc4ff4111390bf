package board

// IsRepetition reports whether the current position has occurred count times
// (itself included) among the positions with the same side to move.
func (p *Position) IsRepetition(count int) bool {
	if p.keyCount < 3 {
		return false
	}
	n := 0
	for i := p.keyCount - 1; i >= 0; i -= 4 {
		if p.keys[i] == p.hash {
			n++
			if n >= count {
				return true
			}
		}
	}
	return false
}

// IsInsufficientMaterial reports material configurations that are scored
// as dead draws: bare minor pieces without pawns, and a lone rook against
// one or two minors.
func (p *Position) IsInsufficientMaterial() bool {
	if p.typeBB[Pawn] != 0 {
		return false
	}

	wn, bn := p.pieceCount[WhiteKnight], p.pieceCount[BlackKnight]
	wb, bb := p.pieceCount[WhiteBishop], p.pieceCount[BlackBishop]
	wr, br := p.pieceCount[WhiteRook], p.pieceCount[BlackRook]

	if p.typeBB[Queen] != 0 {
		return false
	}

	if wr+br == 0 {
		switch {
		case wb+bb == 0:
			return wn < 3 && bn < 3
		case wn+bn == 0:
			return abs(wb-bb) < 2
		case (wn < 3 && wb == 0) || (wb == 1 && wn == 0):
			return (bn < 3 && bb == 0) || (bb == 1 && bn == 0)
		}
		return false
	}

	switch {
	case wr == 1 && br == 0:
		minors := bn + bb
		return wn+wb == 0 && (minors == 1 || minors == 2)
	case wr == 0 && br == 1:
		minors := wn + wb
		return bn+bb == 0 && (minors == 1 || minors == 2)
	}
	return false
}

// HasLegalMove reports whether the side to move has at least one legal move.
func (p *Position) HasLegalMove() bool {
	var ml MoveList
	p.GenerateMoves(&ml)
	for _, m := range ml.Slice() {
		if p.DoMove(m) {
			p.UndoMove()
			return true
		}
	}
	return false
}

// IsMated reports checkmate of the side to move.
func (p *Position) IsMated() bool {
	return p.IsKingAttacked() && !p.HasLegalMove()
}

// IsStalemate reports stalemate of the side to move.
func (p *Position) IsStalemate() bool {
	return !p.IsKingAttacked() && !p.HasLegalMove()
}

// IsDraw reports the fifty-move rule, threefold repetition and insufficient
// material. Stalemate is only tested when includeStalemate is set since it
// needs move generation.
func (p *Position) IsDraw(includeStalemate bool) bool {
	if p.fifty >= 100 || p.IsRepetition(3) || p.IsInsufficientMaterial() {
		return true
	}
	return includeStalemate && p.IsStalemate()
}

// IsGameOver reports a drawn or checkmated position.
func (p *Position) IsGameOver() bool {
	return p.IsDraw(true) || p.IsMated()
}
