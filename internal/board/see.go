package board

// SEE returns the static exchange value of m for the side to move: the
// material balance of the best capture sequence on m's destination, each
// side always recapturing with its least valuable attacker and free to stop.
func (p *Position) SEE(m Move) int {
	var gain [32]int

	to := m.To()
	from := SquareBB(m.From())
	occupied := p.All()
	attackers := p.AttackersTo(to, occupied)
	bishops := p.typeBB[Bishop] | p.typeBB[Queen]
	rooks := p.typeBB[Rook] | p.typeBB[Queen]

	moving := m.Piece().Type()
	captured := p.board[to]
	if m.IsEnPassant() {
		captured = p.board[p.epTarget]
		occupied &^= SquareBB(p.epTarget)
	}
	if captured != NoPiece {
		gain[0] = SEEValue[captured.Type()]
	}

	side := p.side
	d := 0
	for {
		d++
		side = side.Other()
		gain[d] = SEEValue[moving] - gain[d-1]

		occupied &^= from
		attackers &^= from
		if moving != King {
			attackers |= (BishopAttacks(to, occupied)&bishops | RookAttacks(to, occupied)&rooks) & occupied
		}

		var next Bitboard
		for pt := Pawn; pt <= King; pt++ {
			if next = attackers & p.PiecesOf(side, pt); next != 0 {
				moving = pt
				break
			}
		}
		if next == 0 || d == len(gain)-1 {
			break
		}
		from = SquareBB(next.LSB())
	}

	for d--; d > 0; d-- {
		gain[d-1] = -max(-gain[d-1], gain[d])
	}
	return gain[0]
}

// SliderBlockers returns the pieces (of either color) that are the only
// piece between sq and a slider from sliders aligned with it. With sq a
// king square and sliders the enemy pieces, these are the pinned pieces and
// the discovered-check candidates.
func (p *Position) SliderBlockers(sq Square, sliders Bitboard) Bitboard {
	snipers := (rookAttacks(sq)&(p.typeBB[Rook]|p.typeBB[Queen]) |
		bishopAttacks(sq)&(p.typeBB[Bishop]|p.typeBB[Queen])) & sliders
	occupied := p.All() &^ snipers &^ SquareBB(sq)

	var blockers Bitboard
	for snipers != 0 {
		sniper := snipers.PopLSB()
		b := betweenBB[sq][sniper] & occupied
		if b != 0 && !b.MoreThanOne() {
			blockers |= b
		}
	}
	return blockers
}

// IsPinned reports whether the piece on sq is pinned to the king of the side
// other than them by one of them's sliders.
func (p *Position) IsPinned(them Color, sq Square) bool {
	return p.SliderBlockers(p.kingSq[them.Other()], p.colorBB[them]).IsSet(sq)
}

// GivesCheck reports whether m, legal in this position, checks the
// opponent. The move is made and taken back.
func (p *Position) GivesCheck(m Move) bool {
	if !p.DoMove(m) {
		return false
	}
	check := p.IsKingAttacked()
	p.UndoMove()
	return check
}

func rookAttacks(sq Square) Bitboard   { return fileMask[sq] | rankMask[sq] }
func bishopAttacks(sq Square) Bitboard { return diagonalMask[sq] | antiDiagonalMask[sq] }
