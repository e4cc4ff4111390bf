package engine

import (
	"github.com/ajurian/AlphaChess/internal/board"
)

// Iterator stages, served in this order.
const (
	stageTT = iota
	stagePV
	stageGoodTactical
	stageEqualCaptures
	stageKiller1
	stageKiller2
	stageKiller3
	stageKiller4
	stageCounterMove
	stageQuiets
	stageBadCaptures
	stageDone
)

// Special move slots. A generated move matching one of them is held back
// and served by the slot's stage instead of from a list.
const (
	slotTT = iota
	slotPV
	slotKiller1
	slotKiller2
	slotKiller3
	slotKiller4
	slotCounter
	slotCount
)

// Buckets of the scored move lists.
const (
	bucketNone = iota
	bucketGood
	bucketEqual
	bucketQuiet
	bucketBad
)

type scoredMove struct {
	move   board.Move
	score  int
	see    int
	bucket uint8
}

// moveIterator hands out the pseudo-legal moves of one node, best guesses
// first. Every generated move is served exactly once.
type moveIterator struct {
	s       *searcher
	pos     *board.Position
	ply     int
	stage   int
	lastSEE int

	special [slotCount]board.Move
	found   [slotCount]bool

	moves [board.MaxMoves]scoredMove
	count int
}

// init generates and classifies the moves of the current position.
func (it *moveIterator) init(s *searcher, ply int, ttMove, pvMove board.Move) {
	pos := s.pos
	it.s, it.pos, it.ply = s, pos, ply
	it.stage = stageTT
	it.lastSEE = 0
	it.count = 0
	it.found = [slotCount]bool{}

	n := s.node(ply)
	grand := s.node(ply - 2)
	it.special = [slotCount]board.Move{
		slotTT:      ttMove,
		slotPV:      pvMove,
		slotKiller1: n.killers[0],
		slotKiller2: n.killers[1],
		slotKiller3: grand.killers[0],
		slotKiller4: grand.killers[1],
		slotCounter: s.counterMove(),
	}

	var ml board.MoveList
	pos.GenerateMoves(&ml)
	for i := 0; i < ml.Len(); i++ {
		it.add(ml.Get(i))
	}
}

func (it *moveIterator) add(m board.Move) {
	last := slotPV
	if !m.IsTactical() {
		last = slotCounter
	}
	for slot := slotTT; slot <= last; slot++ {
		if it.special[slot] == m && !it.found[slot] {
			it.found[slot] = true
			return
		}
	}

	sm := &it.moves[it.count]
	it.count++
	*sm = scoredMove{move: m}

	if !m.IsTactical() {
		sm.bucket = bucketQuiet
		sm.score = it.s.quietScore(it.ply, m)
		return
	}

	sm.see = it.pos.SEE(m)
	sm.score = it.s.tacticalScore(m)
	switch {
	case sm.see > 0 || m.IsPromotion():
		sm.bucket = bucketGood
	case sm.see == 0:
		sm.bucket = bucketEqual
	default:
		sm.bucket = bucketBad
	}
}

// next returns the next move, or NoMove when every move was served.
func (it *moveIterator) next() board.Move {
	for {
		switch it.stage {
		case stageTT, stagePV, stageKiller1, stageKiller2, stageKiller3, stageKiller4, stageCounterMove:
			slot := stageSlot(it.stage)
			it.stage++
			if it.found[slot] {
				m := it.special[slot]
				it.lastSEE = it.pos.SEE(m)
				return m
			}
		case stageGoodTactical:
			if m := it.pick(bucketGood); m != board.NoMove {
				return m
			}
			it.stage++
		case stageEqualCaptures:
			if m := it.pick(bucketEqual); m != board.NoMove {
				return m
			}
			it.stage++
		case stageQuiets:
			if m := it.pick(bucketQuiet); m != board.NoMove {
				return m
			}
			it.stage++
		case stageBadCaptures:
			if m := it.pick(bucketBad); m != board.NoMove {
				return m
			}
			it.stage++
		default:
			return board.NoMove
		}
	}
}

// pick serves the highest scored move left in bucket.
func (it *moveIterator) pick(bucket uint8) board.Move {
	best, bestScore := -1, -Infinity
	for i := 0; i < it.count; i++ {
		if sm := &it.moves[i]; sm.bucket == bucket && (best < 0 || sm.score > bestScore) {
			best, bestScore = i, sm.score
		}
	}
	if best < 0 {
		return board.NoMove
	}
	sm := &it.moves[best]
	sm.bucket = bucketNone
	it.lastSEE = sm.see
	return sm.move
}

func stageSlot(stage int) int {
	switch stage {
	case stageTT:
		return slotTT
	case stagePV:
		return slotPV
	case stageCounterMove:
		return slotCounter
	}
	return slotKiller1 + stage - stageKiller1
}
