package engine

import (
	"github.com/ajurian/AlphaChess/internal/board"
)

const (
	tempo          = 28
	midgameLimit   = 15258
	endgameLimit   = 3915
	scaleNormal    = 64
	allPieces      = 6
	evalGrain      = 16
	fiftyMoveLimit = 100
)

// S packs a middlegame and endgame value.
func S(mg, eg int) board.Score {
	return board.MakeScore(mg, eg)
}

// Pawn structure
var (
	doubledPawn   = S(13, 51)
	isolatedPawn  = S(3, 15)
	backwardPawn  = S(9, 22)
	weakUnopposed = S(13, 24)
	weakLever     = S(4, 58)
	blockedPawn   = [2]board.Score{S(-17, -6), S(-9, 2)}
	connectedRank = [7]int{0, 5, 7, 11, 23, 48, 87}
)

// Passed pawns, indexed by relative rank.
var (
	passedRank = [7]board.Score{S(0, 0), S(7, 27), S(16, 32), S(17, 40), S(64, 71), S(170, 174), S(278, 262)}
	passedFile = S(11, 8)
)

// Pieces
var (
	bishopPair      = S(40, 80)
	minorBehindPawn = S(18, 3)
	openFileRook    = [2]board.Score{S(19, 6), S(47, 26)} // semi-open, open
)

// mobilityBonus[pt-1][n] for knights through queens attacking n safe squares.
var mobilityBonus = [4][]board.Score{
	{S(-62, -79), S(-53, -57), S(-12, -31), S(-3, -17), S(3, 7), S(12, 13), S(21, 16), S(28, 21), S(37, 26)},
	{S(-47, -59), S(-20, -25), S(14, -8), S(29, 12), S(39, 21), S(53, 40), S(53, 56), S(60, 58), S(62, 65),
		S(69, 72), S(78, 78), S(83, 87), S(91, 88), S(96, 98)},
	{S(-60, -82), S(-24, -15), S(0, 17), S(3, 43), S(4, 72), S(14, 100), S(20, 102), S(30, 122), S(41, 133),
		S(41, 139), S(41, 153), S(45, 160), S(57, 165), S(58, 170), S(67, 175)},
	{S(-29, -49), S(-16, -29), S(-8, -8), S(-8, 17), S(18, 39), S(25, 54), S(23, 59), S(37, 73), S(41, 76),
		S(54, 95), S(65, 95), S(68, 101), S(69, 124), S(70, 128), S(70, 132), S(70, 133), S(71, 136), S(72, 140),
		S(74, 147), S(76, 149), S(90, 153), S(104, 169), S(105, 171), S(106, 171), S(112, 178), S(114, 185),
		S(114, 187), S(119, 221)},
}

// King shelter, indexed by distance of the file from the edge and relative
// rank of the pawn (0 when the file has none).
var (
	shelterStrength = [4][7]int{
		{-5, 82, 92, 54, 36, 22, 28},
		{-44, 63, 33, -50, -30, -12, -62},
		{-11, 77, 22, -6, 31, 8, -45},
		{-39, -12, -29, -50, -43, -68, -164},
	}
	unblockedStorm = [4][7]int{
		{87, -288, -168, 96, 47, 44, 46},
		{42, -25, 120, 45, 34, -9, 24},
		{-8, 51, 167, 35, -4, -16, -12},
		{-17, -13, 100, 4, 9, -16, -31},
	}
	blockedStorm = [7]board.Score{0, 0, S(75, 78), S(-8, 16), S(-6, 10), S(-6, 6), S(0, 2)}
	kingOnFile   = [2][2]board.Score{{S(-21, 10), S(-7, 1)}, {S(0, -3), S(9, -4)}}
)

// evaluation holds the attack maps shared by the terms of one Evaluate call.
type evaluation struct {
	pos          *board.Position
	pawns        [2]board.Bitboard
	passed       [2]board.Bitboard
	blockers     [2]board.Bitboard
	mobilityArea [2]board.Bitboard
	attackedBy   [2][allPieces + 1]board.Bitboard
	mobility     [2]board.Score
}

// Evaluate returns the static score of pos from the side to move's point of
// view, in internal units where a middlegame pawn is 126.
func Evaluate(pos *board.Position) int {
	return evaluate(pos, nil)
}

// evaluate is Evaluate with the pawn terms cached in pawns when not nil.
func evaluate(pos *board.Position, pawns *PawnTable) int {
	e := evaluation{pos: pos}
	white := pos.PiecesOf(board.White, board.Pawn)
	black := pos.PiecesOf(board.Black, board.Pawn)
	e.pawns = [2]board.Bitboard{white, black}

	score := pos.PSQScore()
	if entry, ok := pawnProbe(pawns, white, black); ok {
		score += entry.Score
		e.passed = entry.Passed
	} else {
		ps := e.pawnStructure(board.White) - e.pawnStructure(board.Black)
		if pawns != nil {
			pawns.Store(white, black, ps, e.passed)
		}
		score += ps
	}

	e.initAttacks(board.White)
	e.initAttacks(board.Black)
	for pt := board.Knight; pt <= board.Queen; pt++ {
		score += e.pieces(board.White, pt) - e.pieces(board.Black, pt)
	}
	score += e.mobility[board.White] - e.mobility[board.Black]
	score += e.kingSafety(board.White) - e.kingSafety(board.Black)
	score += e.passedPawns(board.White) - e.passedPawns(board.Black)

	v := e.taper(score)
	v = v / evalGrain * evalGrain
	if pos.SideToMove() == board.Black {
		v = -v
	}
	v += tempo
	fifty := min(pos.FiftyMove(), fiftyMoveLimit)
	return v * (fiftyMoveLimit - fifty) / fiftyMoveLimit
}

func pawnProbe(pawns *PawnTable, white, black board.Bitboard) (PawnEntry, bool) {
	if pawns == nil {
		return PawnEntry{}, false
	}
	return pawns.Probe(white, black)
}

func (e *evaluation) pawnStructure(us board.Color) board.Score {
	them := us.Other()
	ours, theirs := e.pawns[us], e.pawns[them]
	var score board.Score

	for bb := ours; bb != 0; {
		sq := bb.PopLSB()
		push := pushSquare(us, sq)
		rank := sq.RelativeRank(us)

		opposed := theirs & board.ForwardFileBB(us, sq)
		blocked := theirs & board.SquareBB(push)
		stoppers := theirs & board.PassedMaskBB(us, sq)
		lever := theirs & board.PawnAttacks(sq, us)
		leverPush := theirs & board.PawnAttacks(push, us)
		doubled := ours & board.SquareBB(sq).Down(us)
		neighbors := ours & board.AdjacentFilesBB(sq)
		phalanx := neighbors & board.RankBB(sq)
		support := neighbors & board.RankBB(sq).Down(us)

		passed := stoppers == lever ||
			(stoppers == leverPush && phalanx.PopCount() >= leverPush.PopCount())
		if passed && board.ForwardFileBB(us, sq)&ours == 0 {
			e.passed[us] |= board.SquareBB(sq)
		}

		backward := neighbors&board.ForwardRanksBB(them, push) == 0 && leverPush|blocked != 0

		switch {
		case support|phalanx != 0:
			v := connectedRank[rank]*(2+b2i(phalanx != 0)-b2i(opposed != 0)) + 22*support.PopCount()
			score += S(v, v*(rank-2)/4)
		case neighbors == 0:
			if opposed != 0 && ours&board.ForwardFileBB(them, sq) != 0 && theirs&board.AdjacentFilesBB(sq) == 0 {
				score -= doubledPawn
			} else {
				score -= isolatedPawn + weakUnopposed*board.Score(b2i(opposed == 0))
			}
		case backward:
			score -= backwardPawn
			if opposed == 0 && sq.File() != 0 && sq.File() != 7 {
				score -= weakUnopposed
			}
		}

		if support == 0 {
			score -= doubledPawn*board.Score(b2i(doubled != 0)) + weakLever*board.Score(b2i(lever.MoreThanOne()))
		}
		if blocked != 0 && rank >= 4 {
			score += blockedPawn[rank-4]
		}
	}
	return score
}

// initAttacks seeds the pawn and king attack maps and the mobility area of us.
func (e *evaluation) initAttacks(us board.Color) {
	them := us.Other()
	pos := e.pos
	ksq := pos.KingSquare(us)

	lowRanks := board.Rank2 | board.Rank3
	if us == board.Black {
		lowRanks = board.Rank7 | board.Rank6
	}
	immobile := e.pawns[us] & (pos.All().Down(us) | lowRanks)

	e.blockers[us] = pos.SliderBlockers(ksq, pos.Occupied(them))
	e.mobilityArea[us] = ^(immobile | pos.PiecesOf(us, board.King) | pos.PiecesOf(us, board.Queen) |
		e.blockers[us] | e.pawns[them].PawnAttacksBB(them))

	e.attackedBy[us][board.Pawn] = e.pawns[us].PawnAttacksBB(us)
	e.attackedBy[us][board.King] = board.KingAttacks(ksq)
	e.attackedBy[us][allPieces] = e.attackedBy[us][board.Pawn] | e.attackedBy[us][board.King]
}

func (e *evaluation) pieces(us board.Color, pt board.PieceType) board.Score {
	them := us.Other()
	pos := e.pos
	ksq := pos.KingSquare(us)
	all := pos.All()
	queens := pos.Type(board.Queen)
	var score board.Score

	bb := pos.PiecesOf(us, pt)
	if pt == board.Bishop && bb.MoreThanOne() {
		score += bishopPair
	}
	for bb != 0 {
		sq := bb.PopLSB()

		var attacks board.Bitboard
		switch pt {
		case board.Knight:
			attacks = board.KnightAttacks(sq)
		case board.Bishop:
			attacks = board.BishopAttacks(sq, all^queens)
		case board.Rook:
			attacks = board.RookAttacks(sq, all^pos.PiecesOf(us, board.Rook)^queens)
		case board.Queen:
			attacks = board.QueenAttacks(sq, all)
		}
		// A pinned piece only moves along the pin.
		if e.blockers[us].IsSet(sq) {
			attacks &= board.Line(ksq, sq)
		}
		e.attackedBy[us][pt] |= attacks
		e.attackedBy[us][allPieces] |= attacks

		n := (attacks & e.mobilityArea[us]).PopCount()
		e.mobility[us] += mobilityBonus[pt-board.Knight][n]

		switch pt {
		case board.Knight, board.Bishop:
			if (e.pawns[board.White] | e.pawns[board.Black]).Down(us).IsSet(sq) {
				score += minorBehindPawn
			}
		case board.Rook:
			file := board.FileBB(sq)
			if e.pawns[us]&file == 0 {
				score += openFileRook[b2i(e.pawns[them]&file == 0)]
			}
		}
	}
	return score
}

func (e *evaluation) kingSafety(us board.Color) board.Score {
	pos := e.pos
	ksq := pos.KingSquare(us)

	shelter := e.kingShelter(us, ksq)
	kingSide, queenSide := board.WhiteKingSideCastle, board.WhiteQueenSideCastle
	if us == board.Black {
		kingSide, queenSide = board.BlackKingSideCastle, board.BlackQueenSideCastle
	}
	if pos.Castling()&kingSide != 0 {
		if s := e.kingShelter(us, board.RelativeSquare(us, board.G1)); s.Mg() > shelter.Mg() {
			shelter = s
		}
	}
	if pos.Castling()&queenSide != 0 {
		if s := e.kingShelter(us, board.RelativeSquare(us, board.C1)); s.Mg() > shelter.Mg() {
			shelter = s
		}
	}

	minPawnDistance := 6
	if e.pawns[us]&board.KingAttacks(ksq) != 0 {
		minPawnDistance = 1
	} else {
		for bb := e.pawns[us]; bb != 0; {
			minPawnDistance = min(minPawnDistance, board.Distance(ksq, bb.PopLSB()))
		}
	}
	return shelter - S(0, 16*minPawnDistance)
}

func (e *evaluation) kingShelter(us board.Color, ksq board.Square) board.Score {
	them := us.Other()
	bb := (e.pawns[board.White] | e.pawns[board.Black]) &^ board.ForwardRanksBB(them, ksq)
	ours := bb & e.pawns[us] &^ e.pawns[them].PawnAttacksBB(them)
	theirs := bb & e.pawns[them]

	bonus := S(5, 5)
	center := min(max(ksq.File(), 1), 6)
	for f := center - 1; f <= center+1; f++ {
		ourRank, theirRank := 0, 0
		if b := ours & board.FileMask[f]; b != 0 {
			ourRank = frontMost(them, b).RelativeRank(us)
		}
		if b := theirs & board.FileMask[f]; b != 0 {
			theirRank = frontMost(them, b).RelativeRank(us)
		}

		d := edgeDistance(f)
		bonus += S(shelterStrength[d][ourRank], 0)
		if ourRank != 0 && ourRank == theirRank-1 {
			bonus -= blockedStorm[theirRank]
		} else {
			bonus -= S(unblockedStorm[d][theirRank], 0)
		}
	}

	file := board.FileBB(ksq)
	bonus -= kingOnFile[b2i(e.pawns[us]&file == 0)][b2i(e.pawns[them]&file == 0)]
	return bonus
}

func (e *evaluation) passedPawns(us board.Color) board.Score {
	them := us.Other()
	pos := e.pos
	heavy := pos.Type(board.Rook) | pos.Type(board.Queen)
	var score board.Score

	for bb := e.passed[us]; bb != 0; {
		sq := bb.PopLSB()
		rank := sq.RelativeRank(us)
		bonus := passedRank[rank]

		if rank > 2 {
			w := 5*rank - 13
			block := pushSquare(us, sq)
			bonus += S(0, (e.kingProximity(them, block)*19/4-e.kingProximity(us, block)*2)*w)
			if rank != 6 {
				bonus -= S(0, e.kingProximity(us, pushSquare(us, block))*w)
			}

			if pos.PieceAt(block) == board.NoPiece {
				squaresToQueen := board.ForwardFileBB(us, sq)
				unsafe := board.PassedMaskBB(us, sq)
				behind := board.ForwardFileBB(them, sq) & heavy
				if pos.Occupied(them)&behind == 0 {
					unsafe &= e.attackedBy[them][allPieces] | pos.Occupied(them)
				}

				k := 0
				switch {
				case unsafe == 0:
					k = 36
				case unsafe&^e.attackedBy[us][board.Pawn] == 0:
					k = 30
				case unsafe&squaresToQueen == 0:
					k = 17
				case !unsafe.IsSet(block):
					k = 7
				}
				if pos.Occupied(us)&behind != 0 || e.attackedBy[us][allPieces].IsSet(block) {
					k += 5
				}
				bonus += S(k*w, k*w)
			}
		}
		score += bonus - passedFile*board.Score(edgeDistance(sq.File()))
	}
	return score
}

func (e *evaluation) kingProximity(c board.Color, sq board.Square) int {
	return min(board.Distance(e.pos.KingSquare(c), sq), 5)
}

// taper blends the middlegame and endgame halves by remaining material, with
// the endgame half scaled down in drawish material configurations.
func (e *evaluation) taper(score board.Score) int {
	pos := e.pos
	mg, eg := score.Mg(), score.Eg()

	npm := min(max(pos.TotalNonPawnMaterial(), endgameLimit), midgameLimit)
	phase := (npm - endgameLimit) * 128 / (midgameLimit - endgameLimit)

	sf := e.scaleFactor(eg)
	return (mg*phase + eg*(128-phase)*sf/scaleNormal) / 128
}

// scaleFactor is zero, low or normal depending on whether the side ahead
// has the material to win without pawns.
func (e *evaluation) scaleFactor(eg int) int {
	strong := board.White
	if eg < 0 {
		strong = board.Black
	}
	weak := strong.Other()
	npmStrong := e.pos.NonPawnMaterial(strong)
	npmWeak := e.pos.NonPawnMaterial(weak)

	bishop := board.PieceScore[board.Bishop].Mg()
	if e.pawns[strong] != 0 || npmStrong-npmWeak > bishop {
		return scaleNormal
	}
	switch {
	case npmStrong < board.PieceScore[board.Rook].Mg():
		return 0
	case npmWeak <= bishop:
		return 4
	}
	return 14
}

// frontMost returns the square of b furthest advanced from c's point of view.
func frontMost(c board.Color, b board.Bitboard) board.Square {
	if c == board.White {
		return b.MSB()
	}
	return b.LSB()
}

func pushSquare(c board.Color, sq board.Square) board.Square {
	if c == board.White {
		return sq + 8
	}
	return sq - 8
}

func edgeDistance(file int) int {
	return min(file, 7-file)
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}
