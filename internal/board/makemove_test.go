package board

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// snapshot captures every observable part of a position except the undo
// stack contents above its top.
type snapshot struct {
	FEN        string
	Hash       uint64
	Board      [64]Piece
	PieceBB    [12]Bitboard
	TypeBB     [6]Bitboard
	ColorBB    [2]Bitboard
	EpTarget   Square
	GamePly    int
	KingSq     [2]Square
	NonPawn    [2]int
	PSQ        Score
	PieceCount [12]int
	Keys       []uint64
	Depth      int
}

func takeSnapshot(p *Position) snapshot {
	return snapshot{
		FEN:        p.FEN(),
		Hash:       p.hash,
		Board:      p.board,
		PieceBB:    p.pieceBB,
		TypeBB:     p.typeBB,
		ColorBB:    p.colorBB,
		EpTarget:   p.epTarget,
		GamePly:    p.gamePly,
		KingSq:     p.kingSq,
		NonPawn:    p.nonPawn,
		PSQ:        p.PSQScore(),
		PieceCount: p.pieceCount,
		Keys:       append([]uint64(nil), p.keys[:p.keyCount]...),
		Depth:      p.undoCount,
	}
}

func TestDoUndoRestoresPosition(t *testing.T) {
	fens := []string{
		StartFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1",
		"rnbqkbnr/ppp1p1pp/8/3pPp2/8/8/PPPP1PPP/RNBQKBNR w KQkq f6 0 3",
	}

	for _, fen := range fens {
		t.Run(fen, func(t *testing.T) {
			pos, err := ParseFEN(fen)
			if err != nil {
				t.Fatalf("ParseFEN: %v", err)
			}
			before := takeSnapshot(pos)

			var ml MoveList
			pos.GenerateMoves(&ml)
			for _, m := range ml.Slice() {
				if pos.DoMove(m) {
					if got, want := pos.Hash(), pos.computeHash(); got != want {
						t.Errorf("%v: incremental hash %016x, recomputed %016x", m, got, want)
					}
					if undone := pos.UndoMove(); undone != m {
						t.Errorf("UndoMove returned %v, want %v", undone, m)
					}
				}
				if diff := cmp.Diff(before, takeSnapshot(pos)); diff != "" {
					t.Fatalf("%v: position not restored (-want +got):\n%s", m, diff)
				}
			}
		})
	}
}

func TestNullMoveRoundTrip(t *testing.T) {
	pos, err := ParseFEN("rnbqkbnr/ppp1p1pp/8/3pPp2/8/8/PPPP1PPP/RNBQKBNR w KQkq f6 0 3")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	before := takeSnapshot(pos)

	pos.DoNullMove()
	if pos.SideToMove() != Black {
		t.Errorf("side to move = %v after null move", pos.SideToMove())
	}
	if pos.EnPassant() != NoSquare {
		t.Errorf("en passant = %v after null move, want none", pos.EnPassant())
	}
	if got, want := pos.Hash(), pos.computeHash(); got != want {
		t.Errorf("null move hash %016x, recomputed %016x", got, want)
	}
	if m := pos.UndoMove(); m != NoMove {
		t.Errorf("UndoMove after null move returned %v", m)
	}
	if diff := cmp.Diff(before, takeSnapshot(pos)); diff != "" {
		t.Errorf("null move not undone (-want +got):\n%s", diff)
	}
}

func TestIllegalMoveRejected(t *testing.T) {
	// The bishop on e2 is pinned by the rook on e7.
	pos, err := ParseFEN("4k3/4r3/8/8/8/8/4B3/4K3 w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	before := takeSnapshot(pos)

	m := NewMove(E2, D3, WhiteBishop, NoPiece, false, false, false, false)
	if pos.DoMove(m) {
		t.Fatal("DoMove accepted a move exposing the king")
	}
	if diff := cmp.Diff(before, takeSnapshot(pos)); diff != "" {
		t.Errorf("rejected move changed the position (-want +got):\n%s", diff)
	}
}

func TestTranspositionsShareHash(t *testing.T) {
	play := func(moves ...string) *Position {
		pos := NewPosition()
		for _, s := range moves {
			m, err := pos.ParseMove(s)
			if err != nil {
				t.Fatalf("ParseMove(%q): %v", s, err)
			}
			pos.DoMove(m)
		}
		return pos
	}

	tests := []struct {
		name string
		a, b []string
	}{
		{"knights", []string{"g1f3", "b8c6", "b1c3"}, []string{"b1c3", "b8c6", "g1f3"}},
		{"pawns", []string{"e2e3", "e7e6", "d2d3"}, []string{"d2d3", "e7e6", "e2e3"}},
		{"castling", []string{"e2e4", "e7e5", "g1f3", "g8f6", "f1c4", "f8c5", "e1g1"}, []string{"g1f3", "g8f6", "e2e4", "e7e5", "f1c4", "f8c5", "e1g1"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a, b := play(tc.a...), play(tc.b...)
			if a.Hash() != b.Hash() {
				t.Errorf("hash %016x != %016x for %s", a.Hash(), b.Hash(), a.FEN())
			}
		})
	}

	// Same board and side to move, but only the first has an en-passant square.
	a := play("e2e4")
	b := play("e2e4", "g8f6", "g1f3", "f6g8", "f3g1")
	if a.Hash() == b.Hash() {
		t.Error("positions differing only in en passant share a hash")
	}
}

func TestSpecialMoves(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		move string
		want string
	}{
		{
			name: "white castles king side",
			fen:  "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1",
			move: "e1g1",
			want: "r3k2r/8/8/8/8/8/8/R4RK1 b kq - 1 1",
		},
		{
			name: "black castles queen side",
			fen:  "r3k2r/8/8/8/8/8/8/R3K2R b KQkq - 0 1",
			move: "e8c8",
			want: "2kr3r/8/8/8/8/8/8/R3K2R w KQ - 1 2",
		},
		{
			name: "en passant",
			fen:  "4k3/8/8/3pP3/8/8/8/4K3 w - d6 0 1",
			move: "e5d6",
			want: "4k3/8/3P4/8/8/8/8/4K3 b - - 0 1",
		},
		{
			name: "promotion with capture",
			fen:  "1r2k3/P7/8/8/8/8/8/4K3 w - - 0 1",
			move: "a7b8n",
			want: "1N2k3/8/8/8/8/8/8/4K3 b - - 0 1",
		},
		{
			name: "double push sets en passant",
			fen:  StartFEN,
			move: "e2e4",
			want: "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1",
		},
		{
			name: "rook capture removes castling right",
			fen:  "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1",
			move: "a1a8",
			want: "R3k2r/8/8/8/8/8/8/4K2R b Kk - 0 1",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pos, err := ParseFEN(tc.fen)
			if err != nil {
				t.Fatalf("ParseFEN: %v", err)
			}
			m, err := pos.ParseMove(tc.move)
			if err != nil {
				t.Fatalf("ParseMove: %v", err)
			}
			if !pos.DoMove(m) {
				t.Fatalf("DoMove(%v) rejected", m)
			}
			if got := pos.FEN(); got != tc.want {
				t.Errorf("FEN = %q, want %q", got, tc.want)
			}
			if got, want := pos.Hash(), pos.computeHash(); got != want {
				t.Errorf("incremental hash %016x, recomputed %016x", got, want)
			}
			pos.UndoMove()
			if got := pos.FEN(); got != tc.fen {
				t.Errorf("after undo FEN = %q, want %q", got, tc.fen)
			}
		})
	}
}

func TestParseMoveRejectsIllegal(t *testing.T) {
	pos := NewPosition()
	for _, s := range []string{"e2e5", "e1g1", "a1a2", "zz", ""} {
		if _, err := pos.ParseMove(s); err == nil {
			t.Errorf("ParseMove(%q) succeeded", s)
		}
	}
}
