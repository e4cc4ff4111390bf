package engine

import (
	"github.com/ajurian/AlphaChess/internal/board"
)

// statBonus is the history reward for a cutoff at depth.
func statBonus(depth int) int {
	if depth > 14 {
		return 73
	}
	return 6*depth*depth + 229*depth - 215
}

// updateEntry moves a history entry toward the bonus, saturating at divisor.
func updateEntry(entry *int, bonus, divisor int) {
	*entry += bonus - *entry*abs(bonus)/divisor
}

func continuationIndex(m board.Move) int {
	return int(m.Piece())*64 + int(m.To())
}

// capturedType returns the type of the piece m takes, NoPieceType for none.
// It must be called before m is made.
func (s *searcher) capturedType(m board.Move) board.PieceType {
	if !m.IsCapture() {
		return board.NoPieceType
	}
	if m.IsEnPassant() {
		return board.Pawn
	}
	return s.pos.PieceAt(m.To()).Type()
}

// counterMove returns the stored refutation of the move that led to the
// current position.
func (s *searcher) counterMove() board.Move {
	prev := s.pos.LastMove()
	if prev == board.NoMove {
		return board.NoMove
	}
	return s.counterMoves[continuationIndex(prev)]
}

// updateContinuation credits quiet move m, played at ply, in the per-ply
// history of its ancestors.
func (s *searcher) updateContinuation(ply int, m board.Move, bonus int) {
	idx := continuationIndex(m)
	for _, off := range continuationPlies {
		if off > 2 && s.node(ply).inCheck {
			break
		}
		if prev := s.node(ply - off); prev.currentMove != board.NoMove {
			updateEntry(&prev.quietHistory[idx], bonus, continuationDivisor)
		}
	}
}

func (s *searcher) updateQuietStats(ply int, m board.Move, bonus int) {
	n := s.node(ply)
	if n.killers[0] != m {
		n.killers[1] = n.killers[0]
		n.killers[0] = m
	}

	us := s.pos.SideToMove()
	updateEntry(&s.butterfly[us][m.From()][m.To()], bonus, butterflyDivisor)
	s.updateContinuation(ply, m, bonus)

	// Moving back is rarely the same idea.
	if m.Piece().Type() != board.Pawn {
		updateEntry(&s.butterfly[us][m.To()][m.From()], -bonus, butterflyDivisor)
	}

	if prev := s.pos.LastMove(); ply > 0 && prev != board.NoMove {
		s.counterMoves[continuationIndex(prev)] = m
	}
}

func (s *searcher) updateCaptureHistory(m board.Move, bonus int) {
	entry := &s.captureHistory[m.Piece()][m.To()][s.capturedType(m)]
	updateEntry(entry, bonus, captureDivisor)
}

// updateAllStats rewards the move that failed high and punishes the
// siblings tried before it.
func (s *searcher) updateAllStats(ply int, best board.Move, bestValue, beta, depth int) {
	n := s.node(ply)
	us := s.pos.SideToMove()

	captureBonus := statBonus(depth + 1)
	quietBonus := captureBonus
	if bestValue <= beta+board.SEEValue[board.Pawn] {
		quietBonus = min(captureBonus, statBonus(depth))
	}

	if !best.IsTactical() {
		s.updateQuietStats(ply, best, quietBonus)
		for _, m := range n.triedQuiets[:n.quietCount] {
			updateEntry(&s.butterfly[us][m.From()][m.To()], -quietBonus, butterflyDivisor)
			s.updateContinuation(ply, m, -quietBonus)
		}
	} else if best.IsCapture() {
		s.updateCaptureHistory(best, captureBonus)
	}

	for _, m := range n.triedCaptures[:n.captureCount] {
		s.updateCaptureHistory(m, -captureBonus)
	}
}

// quietScore orders quiet moves by butterfly and continuation history.
func (s *searcher) quietScore(ply int, m board.Move) int {
	idx := continuationIndex(m)
	score := s.butterfly[m.Piece().Color()][m.From()][m.To()]
	score += 2 * s.node(ply-1).quietHistory[idx]
	for _, off := range continuationPlies[1:] {
		score += s.node(ply - off).quietHistory[idx]
	}
	return score
}

// tacticalScore orders captures by victim, attacker and capture history,
// and promotions by the promoted piece.
func (s *searcher) tacticalScore(m board.Move) int {
	score := 0
	if victim := s.capturedType(m); victim != board.NoPieceType {
		score = board.SEEValue[victim] - board.SEEValue[m.Piece().Type()] +
			s.captureHistory[m.Piece()][m.To()][victim]
	}
	if promo := m.Promotion(); promo != board.NoPiece {
		score += board.PieceScore[promo.Type()].Eg()
	}
	return score
}
