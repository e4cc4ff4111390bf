package board

import (
	"slices"
	"testing"

	"github.com/dylhunn/dragontoothmg"
	"github.com/google/go-cmp/cmp"
)

// Legal move sets are compared with an independent generator at every node
// of a shallow tree.
func TestLegalMovesMatchReferenceGenerator(t *testing.T) {
	fens := []string{
		StartFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1",
		"rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8",
	}

	for _, fen := range fens {
		t.Run(fen, func(t *testing.T) {
			pos, err := ParseFEN(fen)
			if err != nil {
				t.Fatalf("ParseFEN: %v", err)
			}
			crossCheck(t, pos, 2)
		})
	}
}

func crossCheck(t *testing.T, pos *Position, depth int) {
	t.Helper()

	ref := dragontoothmg.ParseFen(pos.FEN())
	want := []string{}
	for _, m := range ref.GenerateLegalMoves() {
		want = append(want, m.String())
	}

	legal := pos.LegalMoves()
	got := make([]string, 0, len(legal))
	for _, m := range legal {
		got = append(got, m.String())
	}

	slices.Sort(want)
	slices.Sort(got)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("legal moves mismatch at %s (-reference +ours):\n%s", pos.FEN(), diff)
	}

	if depth <= 1 {
		return
	}
	for _, m := range legal {
		pos.DoMove(m)
		crossCheck(t, pos, depth-1)
		pos.UndoMove()
	}
}
