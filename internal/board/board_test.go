package board

import "testing"

func TestMoveEncoding(t *testing.T) {
	tests := []struct {
		name                               string
		from, to                           Square
		piece, promo                       Piece
		capture, push, enPassant, castling bool
		uci                                string
	}{
		{"quiet", G1, F3, WhiteKnight, NoPiece, false, false, false, false, "g1f3"},
		{"double push", E7, E5, BlackPawn, NoPiece, false, true, false, false, "e7e5"},
		{"capture promotion", A7, B8, WhitePawn, WhiteQueen, true, false, false, false, "a7b8q"},
		{"under promotion", H2, H1, BlackPawn, BlackKnight, false, false, false, false, "h2h1n"},
		{"en passant", E5, D6, WhitePawn, NoPiece, true, false, true, false, "e5d6"},
		{"castling", E8, C8, BlackKing, NoPiece, false, false, false, true, "e8c8"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := NewMove(tc.from, tc.to, tc.piece, tc.promo, tc.capture, tc.push, tc.enPassant, tc.castling)
			if m == NoMove {
				t.Fatal("encoded move is NoMove")
			}
			if m>>26 != 0 {
				t.Errorf("move %032b uses bits above 25", uint32(m))
			}
			if m.From() != tc.from || m.To() != tc.to {
				t.Errorf("squares = %v%v, want %v%v", m.From(), m.To(), tc.from, tc.to)
			}
			if m.Piece() != tc.piece || m.Promotion() != tc.promo {
				t.Errorf("pieces = %v/%v, want %v/%v", m.Piece(), m.Promotion(), tc.piece, tc.promo)
			}
			if m.IsCapture() != tc.capture || m.IsPush() != tc.push ||
				m.IsEnPassant() != tc.enPassant || m.IsCastling() != tc.castling {
				t.Errorf("flags wrong for %v", m)
			}
			if m.IsTactical() != (tc.capture || tc.promo != NoPiece) {
				t.Errorf("IsTactical() = %v", m.IsTactical())
			}
			if m.String() != tc.uci {
				t.Errorf("String() = %q, want %q", m.String(), tc.uci)
			}
		})
	}

	if NoMove.String() != "0000" {
		t.Errorf("NoMove.String() = %q", NoMove.String())
	}
}

func TestScorePacking(t *testing.T) {
	for _, mg := range []int{0, 1, -1, 126, -2538, 32000, -32000} {
		for _, eg := range []int{0, 1, -1, 208, -2682, 32000, -32000} {
			s := MakeScore(mg, eg)
			if s.Mg() != mg || s.Eg() != eg {
				t.Errorf("MakeScore(%d, %d) unpacks to (%d, %d)", mg, eg, s.Mg(), s.Eg())
			}
		}
	}

	sum := S(10, -20) + S(-30, 5)
	if sum.Mg() != -20 || sum.Eg() != -15 {
		t.Errorf("packed addition = (%d, %d), want (-20, -15)", sum.Mg(), sum.Eg())
	}
}

func TestPSQSymmetry(t *testing.T) {
	pos := NewPosition()
	if pos.PSQScore() != 0 {
		t.Errorf("start position psq = (%d, %d), want 0", pos.PSQScore().Mg(), pos.PSQScore().Eg())
	}
	for pt := Pawn; pt <= King; pt++ {
		for sq := A1; sq <= H8; sq++ {
			w, b := PSQ(NewPiece(pt, White), sq), PSQ(NewPiece(pt, Black), sq^56)
			if w != -b {
				t.Fatalf("%c on %v: white %d, mirrored black %d", pt.Char(), sq, w, b)
			}
		}
	}
}

func TestSliderAttacks(t *testing.T) {
	occupied := SquareBB(D6) | SquareBB(B4) | SquareBB(F2) | SquareBB(G7) | SquareBB(D1)

	rook := RookAttacks(D4, occupied)
	wantRook := SquareBB(D5) | SquareBB(D6) | SquareBB(D3) | SquareBB(D2) | SquareBB(D1) |
		SquareBB(C4) | SquareBB(B4) | SquareBB(E4) | SquareBB(F4) | SquareBB(G4) | SquareBB(H4)
	if rook != wantRook {
		t.Errorf("RookAttacks(d4) =\n%v\nwant\n%v", rook, wantRook)
	}

	bishop := BishopAttacks(D4, occupied)
	wantBishop := SquareBB(E5) | SquareBB(F6) | SquareBB(G7) |
		SquareBB(C3) | SquareBB(B2) | SquareBB(A1) |
		SquareBB(C5) | SquareBB(B6) | SquareBB(A7) |
		SquareBB(E3) | SquareBB(F2)
	if bishop != wantBishop {
		t.Errorf("BishopAttacks(d4) =\n%v\nwant\n%v", bishop, wantBishop)
	}

	if got := RookAttacks(A1, 0).PopCount(); got != 14 {
		t.Errorf("empty-board rook on a1 attacks %d squares, want 14", got)
	}
	if got := QueenAttacks(D4, 0).PopCount(); got != 27 {
		t.Errorf("empty-board queen on d4 attacks %d squares, want 27", got)
	}
}

func TestBetweenAndLine(t *testing.T) {
	tests := []struct {
		a, b    Square
		between Bitboard
	}{
		{A1, H8, SquareBB(B2) | SquareBB(C3) | SquareBB(D4) | SquareBB(E5) | SquareBB(F6) | SquareBB(G7)},
		{E1, E4, SquareBB(E2) | SquareBB(E3)},
		{H3, E3, SquareBB(G3) | SquareBB(F3)},
		{A1, B3, Empty},
		{C4, D5, Empty},
	}
	for _, tc := range tests {
		if got := Between(tc.a, tc.b); got != tc.between {
			t.Errorf("Between(%v, %v) =\n%v", tc.a, tc.b, got)
		}
		if Between(tc.a, tc.b) != Between(tc.b, tc.a) {
			t.Errorf("Between(%v, %v) is not symmetric", tc.a, tc.b)
		}
	}

	if !Aligned(A1, D4, H8) || Aligned(A1, D4, H7) {
		t.Error("Aligned misreports the long diagonal")
	}
	if Line(A1, B3) != Empty {
		t.Error("Line of unaligned squares is not empty")
	}
}
