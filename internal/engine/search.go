package engine

import (
	"math"
	"time"

	"github.com/ajurian/AlphaChess/internal/board"
)

// Search constants
const (
	MaxPly    = 128
	Infinity  = 31000
	MateValue = 30000
	WinValue  = 10000

	winValueInMaxPly  = MateValue - 2*MaxPly
	lossValueInMaxPly = -winValueInMaxPly
)

const (
	// treeOffset keeps node(ply-k) addressable for every history offset.
	treeOffset = 8

	pawnTableMB = 2

	maxTriedCaptures = 32
	maxTriedQuiets   = 64

	butterflyDivisor    = 13365
	continuationDivisor = 29952
	captureDivisor      = 10692

	aspirationDelta   = 17
	qsFutilityMargin  = 155
	infoDelay         = 3 * time.Second
	evalSwingBonusCap = 1940
)

// reductions[i] scales the late move reduction by depth and move number.
var reductions [board.MaxMoves]int

func init() {
	for i := 1; i < len(reductions); i++ {
		reductions[i] = int(21.9 * math.Log(float64(i)))
	}
}

// lateMoveReduction returns the base reduction of the movesIterated-th move
// at depth, one ply more when the position is not improving and the raw
// reduction is large.
func lateMoveReduction(depth, movesIterated int, improving bool) int {
	scaled := reductions[depth] * reductions[movesIterated]
	return (scaled+534)/1024 + b2i(!improving && scaled > 904)
}

// continuationPlies are the ancestor distances whose per-ply history is
// consulted and updated for a quiet move.
var continuationPlies = [...]int{1, 2, 4, 6}

// node is the per-ply scratch state of the search.
type node struct {
	staticEval  int
	inCheck     bool
	currentMove board.Move
	killers     [2]board.Move

	// quietHistory is indexed by piece*64+to of moves played below this ply.
	quietHistory [12 * 64]int

	triedCaptures [maxTriedCaptures]board.Move
	triedQuiets   [maxTriedQuiets]board.Move
	captureCount  int
	quietCount    int

	iter moveIterator
}

// searcher owns the position being searched and every table that survives
// between iterations.
type searcher struct {
	pos    *board.Position
	tt     *TranspositionTable
	pawns  *PawnTable
	tm     TimeManager
	limits Limits
	onInfo func(Info)

	nodes    uint64
	selDepth int

	tree           [MaxPly + treeOffset + 1]node
	butterfly      [2][64][64]int
	captureHistory [12][64][6]int
	counterMoves   [12 * 64]board.Move

	pv          [MaxPly + 1][MaxPly + 1]board.Move
	pvLength    [MaxPly + 1]int
	rootPV      [MaxPly + 1]board.Move
	rootPVCount int
}

func newSearcher(tt *TranspositionTable) *searcher {
	return &searcher{tt: tt, pawns: NewPawnTable(pawnTableMB)}
}

func (s *searcher) evaluate() int {
	return evaluate(s.pos, s.pawns)
}

func (s *searcher) node(ply int) *node {
	return &s.tree[ply+treeOffset]
}

// prepare resets the per-search state.
func (s *searcher) prepare(pos *board.Position, limits Limits) {
	s.pos = pos
	s.limits = limits
	s.nodes = 0
	s.selDepth = 0
	s.rootPVCount = 0
	for i := range s.tree {
		n := &s.tree[i]
		n.staticEval = 0
		n.inCheck = false
		n.currentMove = board.NoMove
		n.killers = [2]board.Move{}
	}
	s.tm.Init(limits, pos.SideToMove(), pos.GamePly())
}

// clearHistory forgets everything learned in earlier searches.
func (s *searcher) clearHistory() {
	for i := range s.tree {
		clear(s.tree[i].quietHistory[:])
		s.tree[i].killers = [2]board.Move{}
	}
	s.butterfly = [2][64][64]int{}
	s.captureHistory = [12][64][6]int{}
	s.counterMoves = [12 * 64]board.Move{}
}

// stopped polls the stop flag and the node limit.
func (s *searcher) stopped() bool {
	if s.tm.Stopped() {
		return true
	}
	if s.limits.Nodes > 0 && s.nodes >= s.limits.Nodes {
		s.tm.Stop()
		return true
	}
	return false
}

// iterate runs iterative deepening and returns the best and ponder moves of
// the last completed iteration.
func (s *searcher) iterate() (best, ponder board.Move) {
	if legal := s.pos.LegalMoves(); len(legal) > 0 {
		best = legal[0]
	} else {
		return board.NoMove, board.NoMove
	}

	maxDepth := MaxPly - 1
	if s.limits.Depth > 0 {
		maxDepth = min(s.limits.Depth, maxDepth)
	}

	prevValue := 0
	for depth := 1; depth <= maxDepth; depth++ {
		s.selDepth = 0
		alpha, beta := -Infinity, Infinity
		delta := aspirationDelta
		if depth >= 4 {
			alpha = max(prevValue-delta, -Infinity)
			beta = min(prevValue+delta, Infinity)
		}

		var value int
		for {
			value = s.search(alpha, beta, depth, 0)
			if s.tm.Stopped() {
				break
			}
			if value <= alpha {
				s.report(depth, value, BoundUpper, true)
				beta = (alpha + beta) / 2
				alpha = max(value-delta, -Infinity)
			} else if value >= beta {
				s.report(depth, value, BoundLower, true)
				beta = min(value+delta, Infinity)
			} else {
				break
			}
			delta += delta/4 + 5
		}
		if s.tm.Stopped() {
			break
		}

		s.rootPVCount = copy(s.rootPV[:], s.pv[0][:s.pvLength[0]])
		if s.rootPVCount > 0 {
			best = s.rootPV[0]
			ponder = board.NoMove
			if s.rootPVCount > 1 {
				ponder = s.rootPV[1]
			}
		}
		prevValue = value
		s.report(depth, value, BoundExact, false)

		if !s.limits.Infinite && abs(value) >= winValueInMaxPly && MateValue-abs(value) <= depth {
			break
		}
	}
	return best, ponder
}

func (s *searcher) search(alpha, beta, depth, ply int) int {
	if s.stopped() {
		return 0
	}
	if depth <= 0 {
		return s.qsearch(alpha, beta, ply)
	}
	s.nodes++

	pos := s.pos
	n := s.node(ply)
	us := pos.SideToMove()
	s.pvLength[ply] = ply
	n.inCheck = pos.IsKingAttacked()
	n.captureCount, n.quietCount = 0, 0
	pvNode := beta-alpha > 1
	priorCapture := pos.LastCaptured() != board.NoPiece
	s.selDepth = max(s.selDepth, ply)

	if ply > 0 {
		if pos.IsDraw(false) {
			return 2*int(s.nodes&1) - 1
		}
		if ply >= MaxPly-1 {
			return s.evaluate()
		}
		alpha = max(alpha, -MateValue+ply)
		beta = min(beta, MateValue-ply-1)
		if alpha >= beta {
			return alpha
		}
	}
	oldAlpha := alpha

	ttMove := board.NoMove
	tte, ttHit := s.tt.Probe(pos.Hash())
	if ttHit {
		ttMove = tte.Move
		ttValue := valueFromTT(int(tte.Value), ply, pos.FiftyMove())
		bound := BoundUpper
		if ttValue >= beta {
			bound = BoundLower
		}
		if !pvNode && ply > 0 && int(tte.Depth) >= depth && tte.Bound&bound != 0 {
			if ttMove != board.NoMove && !ttMove.IsTactical() {
				if ttValue >= beta {
					s.updateQuietStats(ply, ttMove, statBonus(depth))
				} else {
					penalty := -statBonus(depth)
					updateEntry(&s.butterfly[us][ttMove.From()][ttMove.To()], penalty, butterflyDivisor)
					s.updateContinuation(ply, ttMove, penalty)
				}
			}
			if pos.FiftyMove() < 90 {
				return ttValue
			}
		}
	}

	n.staticEval = s.evaluate()
	eval := n.staticEval
	improving := false

	if !n.inCheck {
		if ply >= 2 {
			if grand := s.node(ply - 2); grand.inCheck {
				great := s.node(ply - 4)
				improving = ply >= 4 && (eval > great.staticEval || great.inCheck)
			} else {
				improving = eval > grand.staticEval
			}
		}

		// Reward or punish the opponent's last quiet move by the eval swing.
		if parent := s.node(ply - 1); ply > 0 && parent.currentMove != board.NoMove && !parent.inCheck && !priorCapture {
			bonus := -depth * 4 * (parent.staticEval + eval)
			bonus = min(max(bonus, -evalSwingBonusCap), evalSwingBonusCap)
			m := parent.currentMove
			updateEntry(&s.butterfly[us.Other()][m.From()][m.To()], bonus, butterflyDivisor)
		}

		// Reverse futility pruning
		if !pvNode && depth < 9 && eval < WinValue && eval-214*(depth-b2i(improving)) >= beta {
			return eval
		}

		// Null move pruning
		r := (1090+81*depth)/256 + min((eval-beta)/205, 3)
		if !pvNode && depth >= r && abs(beta) < MateValue && eval >= beta &&
			eval >= beta-20*depth-22*b2i(improving)+168*b2i(ttHit)+159 &&
			(ply == 0 || s.node(ply-1).currentMove != board.NoMove) &&
			pos.NonPawnMaterial(us) != 0 {

			pos.DoNullMove()
			n.currentMove = board.NoMove
			value := -s.search(-beta, -beta+1, depth-r, ply+1)
			pos.UndoMove()

			if s.tm.Stopped() {
				return 0
			}
			if value >= beta {
				// Do not return unproven mates.
				if value >= winValueInMaxPly {
					value = beta
				}
				if abs(beta) < WinValue && depth < 14 {
					return value
				}
				if s.search(beta-1, beta, depth-r, ply) >= beta {
					return value
				}
			}
		}
	}

	pvMove := board.NoMove
	if ply < s.rootPVCount {
		pvMove = s.rootPV[ply]
	}
	it := &n.iter
	it.init(s, ply, ttMove, pvMove)

	bestValue := -Infinity
	bestMove := board.NoMove
	movesIterated := 0

	for m := it.next(); m != board.NoMove; m = it.next() {
		if !pos.DoMove(m) {
			continue
		}
		movesIterated++
		if ply == 0 && s.onInfo != nil && s.tm.Elapsed() > infoDelay {
			s.onInfo(Info{Depth: depth, CurrMove: m, CurrMoveNumber: movesIterated})
		}

		givesCheck := pos.IsKingAttacked()
		newDepth := depth - 1
		if depth > 6 && givesCheck && abs(eval) > 100 {
			newDepth++
		}
		n.currentMove = m

		var value int
		if movesIterated == 1 {
			value = -s.search(-beta, -alpha, newDepth, ply+1)
		} else {
			didLMR := false
			if movesIterated >= 4 && depth >= 3 && !n.inCheck && !givesCheck && !m.IsTactical() {
				r := lateMoveReduction(depth, movesIterated, improving)

				statScore := s.butterfly[us][m.From()][m.To()]
				idx := continuationIndex(m)
				for _, off := range continuationPlies[:3] {
					statScore += s.node(ply - off).quietHistory[idx]
				}
				r -= (statScore - 4923) / 14721

				d := min(max(newDepth-r, 1), newDepth)
				value = -s.search(-(alpha + 1), -alpha, d, ply+1)
				didLMR = true
			} else {
				value = alpha + 1
			}

			if value > alpha {
				value = -s.search(-(alpha + 1), -alpha, newDepth, ply+1)
				if didLMR {
					bonus := statBonus(newDepth)
					if value <= alpha {
						bonus = -bonus
					}
					s.updateContinuation(ply, m, bonus)
				}
				if value > alpha && value < beta {
					value = -s.search(-beta, -alpha, newDepth, ply+1)
				}
			}
		}
		pos.UndoMove()

		if s.tm.Stopped() {
			return 0
		}

		if movesIterated == 1 || value > alpha {
			s.updatePV(ply, m)
		}
		if value > bestValue {
			bestValue = value
			if value > alpha {
				alpha = value
				bestMove = m
				if value >= beta {
					break
				}
			}
		}

		if bestMove != m {
			if m.IsCapture() && n.captureCount < maxTriedCaptures {
				n.triedCaptures[n.captureCount] = m
				n.captureCount++
			} else if !m.IsTactical() && n.quietCount < maxTriedQuiets {
				n.triedQuiets[n.quietCount] = m
				n.quietCount++
			}
		}
	}

	switch {
	case movesIterated == 0:
		if n.inCheck {
			bestValue = -MateValue + ply
		} else {
			bestValue = 0
		}
	case bestValue >= beta:
		s.updateAllStats(ply, bestMove, bestValue, beta, depth)
	case (depth >= 3 || pvNode) && !priorCapture && ply > 0:
		if prev := s.node(ply - 1).currentMove; prev != board.NoMove {
			s.updateContinuation(ply-1, prev, statBonus(depth))
		}
	}

	if ply > 0 {
		bound := BoundExact
		if bestValue >= beta {
			bound = BoundLower
		} else if bestValue <= oldAlpha {
			bound = BoundUpper
		}
		s.tt.Store(ply, bestValue, depth, bound, bestMove, n.staticEval, pos.Hash())
	}
	return bestValue
}

// qsearch resolves captures and promotions until the position is quiet.
// In check every evasion is searched.
func (s *searcher) qsearch(alpha, beta, ply int) int {
	if s.stopped() {
		return 0
	}
	s.nodes++

	pos := s.pos
	n := s.node(ply)
	s.pvLength[ply] = ply
	n.inCheck = pos.IsKingAttacked()
	s.selDepth = max(s.selDepth, ply)

	if ply >= MaxPly-1 {
		return s.evaluate()
	}
	alpha = max(alpha, -MateValue+ply)
	beta = min(beta, MateValue-ply-1)
	if alpha >= beta {
		return alpha
	}

	n.staticEval = s.evaluate()
	bestValue := -Infinity
	futilityBase := -Infinity
	if !n.inCheck {
		bestValue = n.staticEval
		if bestValue >= beta {
			return bestValue
		}
		alpha = max(alpha, bestValue)
		futilityBase = n.staticEval + qsFutilityMargin
	}

	it := &n.iter
	it.init(s, ply, board.NoMove, board.NoMove)
	movesIterated := 0

	for m := it.next(); m != board.NoMove; m = it.next() {
		captured := s.capturedType(m)
		if !pos.DoMove(m) {
			continue
		}
		movesIterated++

		if !n.inCheck {
			if !m.IsTactical() {
				pos.UndoMove()
				continue
			}
			if !m.IsPromotion() && !pos.IsKingAttacked() {
				futilityValue := futilityBase
				if captured != board.NoPieceType {
					futilityValue += board.PieceScore[captured].Eg()
				}
				if futilityValue <= alpha {
					bestValue = max(bestValue, futilityValue)
					pos.UndoMove()
					continue
				}
				if futilityBase <= alpha && it.lastSEE <= 0 {
					bestValue = max(bestValue, futilityBase)
					pos.UndoMove()
					continue
				}
			}
		}

		n.currentMove = m
		value := -s.qsearch(-beta, -alpha, ply+1)
		pos.UndoMove()

		if s.tm.Stopped() {
			return 0
		}
		if value > bestValue {
			bestValue = value
			if value > alpha {
				alpha = value
				s.updatePV(ply, m)
				if value >= beta {
					break
				}
			}
		}
	}

	if movesIterated == 0 {
		if n.inCheck {
			return -MateValue + ply
		}
		return 0
	}
	return bestValue
}

// updatePV makes m followed by the child's line the PV of ply.
func (s *searcher) updatePV(ply int, m board.Move) {
	s.pv[ply][ply] = m
	child := ply + 1
	end := max(s.pvLength[child], child)
	copy(s.pv[ply][child:end], s.pv[child][child:end])
	s.pvLength[ply] = end
}

// report sends an iteration summary to the info callback. Window failures are
// only reported once the search has run for a while.
func (s *searcher) report(depth, value int, bound Bound, windowFail bool) {
	elapsed := s.tm.Elapsed()
	if s.onInfo == nil || (windowFail && elapsed < infoDelay) {
		return
	}
	pv := make([]board.Move, s.pvLength[0])
	copy(pv, s.pv[0][:s.pvLength[0]])
	s.onInfo(Info{
		Depth:    depth,
		SelDepth: s.selDepth,
		Score:    value,
		Bound:    bound,
		Nodes:    s.nodes,
		Time:     elapsed,
		HashFull: s.tt.HashFull(),
		PV:       pv,
	})
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
