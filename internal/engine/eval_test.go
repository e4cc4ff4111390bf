package engine

import (
	"slices"
	"strings"
	"testing"

	"github.com/ajurian/AlphaChess/internal/board"
)

// mirrorFEN flips the board vertically and swaps the colors.
func mirrorFEN(fen string) string {
	f := strings.Fields(fen)
	swapCase := func(s string) string {
		return strings.Map(func(r rune) rune {
			switch {
			case r >= 'a' && r <= 'z':
				return r - 'a' + 'A'
			case r >= 'A' && r <= 'Z':
				return r - 'A' + 'a'
			}
			return r
		}, s)
	}

	ranks := strings.Split(f[0], "/")
	slices.Reverse(ranks)
	placement := swapCase(strings.Join(ranks, "/"))

	side := "w"
	if f[1] == "w" {
		side = "b"
	}

	castling := "-"
	if f[2] != "-" {
		var sb strings.Builder
		swapped := swapCase(f[2])
		for _, r := range "KQkq" {
			if strings.ContainsRune(swapped, r) {
				sb.WriteRune(r)
			}
		}
		castling = sb.String()
	}

	ep := f[3]
	if ep != "-" {
		rank := byte('6')
		if ep[1] == '6' {
			rank = '3'
		}
		ep = string([]byte{ep[0], rank})
	}
	return strings.Join([]string{placement, side, castling, ep, f[4], f[5]}, " ")
}

var evalFENs = []string{
	board.StartFEN,
	kiwipete,
	"r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1",
	"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
	"rnbqkbnr/ppp1p1pp/8/3pPp2/8/8/PPPP1PPP/RNBQKBNR w KQkq f6 0 3",
	"r1bq1rk1/pp2bppp/2n1pn2/3p4/2PP4/2N1PN2/PP3PPP/R2QKB1R w KQ - 2 9",
	"4r3/3r2k1/1bp2p2/2Np1bp1/3P3p/P1R4P/1P1R1PPB/6K1 w - - 12 34",
	"8/5k2/8/8/8/8/2B5/4K2R b K - 0 60",
	"8/8/4k3/8/3P4/8/5K2/8 w - - 0 50",
	"6k1/1P6/8/8/8/8/5Kp1/8 b - - 0 70",
}

func TestEvaluateColorSymmetry(t *testing.T) {
	for _, fen := range evalFENs {
		t.Run(fen, func(t *testing.T) {
			pos, err := board.ParseFEN(fen)
			if err != nil {
				t.Fatalf("ParseFEN(%q): %v", fen, err)
			}
			mirrored, err := board.ParseFEN(mirrorFEN(fen))
			if err != nil {
				t.Fatalf("ParseFEN(%q): %v", mirrorFEN(fen), err)
			}
			if a, b := Evaluate(pos), Evaluate(mirrored); a != b {
				t.Errorf("Evaluate = %d, mirrored %d (%s)", a, b, mirrorFEN(fen))
			}
		})
	}
}

func TestEvaluateStartPosition(t *testing.T) {
	if got := Evaluate(board.NewPosition()); got != tempo {
		t.Errorf("Evaluate(start) = %d, want the tempo bonus %d", got, tempo)
	}
}

func TestEvaluateMaterial(t *testing.T) {
	tests := []struct {
		fen      string
		positive bool
	}{
		{"4k3/8/8/8/8/8/8/3QK3 w - - 0 1", true},
		{"4k3/8/8/8/8/8/8/3QK3 b - - 0 1", false},
		{"3qk3/pppppppp/8/8/8/8/PPPPPPPP/4K3 w - - 0 1", false},
	}
	for _, tc := range tests {
		pos, err := board.ParseFEN(tc.fen)
		if err != nil {
			t.Fatalf("ParseFEN: %v", err)
		}
		if v := Evaluate(pos); (v > 0) != tc.positive {
			t.Errorf("Evaluate(%q) = %d", tc.fen, v)
		}
	}
}

func TestEvaluateFiftyMoveDamping(t *testing.T) {
	fresh, err := board.ParseFEN("4k3/8/8/8/8/8/4P3/R3K3 w - - 0 40")
	if err != nil {
		t.Fatal(err)
	}
	base := Evaluate(fresh)

	tests := []struct {
		halfmoves string
		want      int
	}{
		{"50", base / 2},
		{"100", 0},
		{"150", 0},
	}
	for _, tc := range tests {
		t.Run(tc.halfmoves, func(t *testing.T) {
			pos, err := board.ParseFEN("4k3/8/8/8/8/8/4P3/R3K3 w - - " + tc.halfmoves + " 40")
			if err != nil {
				t.Fatal(err)
			}
			if got := Evaluate(pos); got != tc.want {
				t.Errorf("Evaluate after %s quiet plies = %d, want %d", tc.halfmoves, got, tc.want)
			}
		})
	}
}

func TestEvaluateInsufficientScale(t *testing.T) {
	// A lone bishop cannot win, so the endgame half is scaled to zero.
	pos, err := board.ParseFEN("8/8/4k3/8/8/8/2B5/4K3 w - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	if v := Evaluate(pos); v > 2*tempo {
		t.Errorf("Evaluate(KB vs K) = %d, want close to zero", v)
	}
}

func TestPawnTableMatchesDirectEvaluation(t *testing.T) {
	pawns := NewPawnTable(1)
	for _, fen := range evalFENs {
		pos, err := board.ParseFEN(fen)
		if err != nil {
			t.Fatalf("ParseFEN: %v", err)
		}
		want := Evaluate(pos)
		for i := 0; i < 2; i++ {
			if got := evaluate(pos, pawns); got != want {
				t.Errorf("%s: cached evaluation %d (pass %d), want %d", fen, got, i, want)
			}
		}
		if _, ok := pawns.Probe(pos.PiecesOf(board.White, board.Pawn), pos.PiecesOf(board.Black, board.Pawn)); !ok {
			t.Errorf("%s: pawn structure not cached", fen)
		}
	}
}
