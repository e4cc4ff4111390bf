package board

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// StartFEN is the FEN string for the starting position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ErrInvalidFEN is wrapped by every FEN parse failure.
var ErrInvalidFEN = errors.New("invalid FEN")

// ParseFEN parses a FEN string into a new Position.
func ParseFEN(fen string) (*Position, error) {
	p := new(Position)
	if err := p.SetFEN(fen); err != nil {
		return nil, err
	}
	return p, nil
}

// SetFEN loads a FEN string. The halfmove and fullmove fields are optional.
// On error the receiver is left untouched.
func (p *Position) SetFEN(fen string) error {
	parts := strings.Fields(fen)
	if len(parts) < 4 {
		return fmt.Errorf("%w: need at least 4 fields, got %d", ErrInvalidFEN, len(parts))
	}

	var next Position
	next.reset()

	if err := next.parsePlacement(parts[0]); err != nil {
		return err
	}

	switch parts[1] {
	case "w":
		next.side = White
	case "b":
		next.side = Black
	default:
		return fmt.Errorf("%w: side to move %q", ErrInvalidFEN, parts[1])
	}

	if parts[2] != "-" {
		for _, c := range parts[2] {
			i := strings.IndexRune("KQkq", c)
			if i < 0 {
				return fmt.Errorf("%w: castling rights %q", ErrInvalidFEN, parts[2])
			}
			next.castling |= 1 << i
		}
		next.castling &= next.castlingOnHomeSquares()
	}

	if parts[3] != "-" {
		sq, err := ParseSquare(parts[3])
		if err != nil || (sq.Rank() != 2 && sq.Rank() != 5) {
			return fmt.Errorf("%w: en passant square %q", ErrInvalidFEN, parts[3])
		}
		target := sq + 8
		if next.side == White {
			target = sq - 8
		}
		// A stale en-passant field with no pawn to capture is dropped.
		if next.board[target] == NewPiece(Pawn, next.side.Other()) {
			next.epSquare, next.epTarget = sq, target
		}
	}

	if len(parts) > 4 {
		n, err := strconv.Atoi(parts[4])
		if err != nil || n < 0 {
			return fmt.Errorf("%w: halfmove clock %q", ErrInvalidFEN, parts[4])
		}
		next.fifty = n
	}
	if len(parts) > 5 {
		n, err := strconv.Atoi(parts[5])
		if err != nil || n < 1 {
			return fmt.Errorf("%w: fullmove number %q", ErrInvalidFEN, parts[5])
		}
		next.fullMove = n
	}

	if next.pieceCount[WhiteKing] != 1 || next.pieceCount[BlackKing] != 1 {
		return fmt.Errorf("%w: each side needs exactly one king", ErrInvalidFEN)
	}
	if next.typeBB[Pawn]&(Rank1|Rank8) != 0 {
		return fmt.Errorf("%w: pawn on first or last rank", ErrInvalidFEN)
	}
	if next.IsSideInCheck(next.side.Other()) {
		return fmt.Errorf("%w: side not to move is in check", ErrInvalidFEN)
	}

	next.hash = next.computeHash()
	next.keys[0] = next.hash
	next.keyCount = 1

	*p = next
	return nil
}

// castlingOnHomeSquares returns the rights whose king and rook stand on
// their starting squares.
func (p *Position) castlingOnHomeSquares() CastlingRights {
	homes := [...]struct {
		right      CastlingRights
		king, rook Square
		color      Color
	}{
		{WhiteKingSideCastle, E1, H1, White},
		{WhiteQueenSideCastle, E1, A1, White},
		{BlackKingSideCastle, E8, H8, Black},
		{BlackQueenSideCastle, E8, A8, Black},
	}
	rights := NoCastling
	for _, h := range homes {
		if p.board[h.king] == NewPiece(King, h.color) && p.board[h.rook] == NewPiece(Rook, h.color) {
			rights |= h.right
		}
	}
	return rights
}

func (p *Position) parsePlacement(placement string) error {
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return fmt.Errorf("%w: need 8 ranks, got %d", ErrInvalidFEN, len(ranks))
	}

	for i, row := range ranks {
		rank := 7 - i
		file := 0
		for j := 0; j < len(row); j++ {
			c := row[j]
			if c >= '1' && c <= '8' {
				file += int(c - '0')
				continue
			}
			pc := PieceFromChar(c)
			if pc == NoPiece {
				return fmt.Errorf("%w: piece %q", ErrInvalidFEN, c)
			}
			if file > 7 {
				return fmt.Errorf("%w: rank %d overflows", ErrInvalidFEN, rank+1)
			}
			p.placePiece(pc, NewSquare(file, rank))
			file++
		}
		if file != 8 {
			return fmt.Errorf("%w: rank %d has %d squares", ErrInvalidFEN, rank+1, file)
		}
	}
	return nil
}

// FEN serializes the position.
func (p *Position) FEN() string {
	var sb strings.Builder

	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			pc := p.board[NewSquare(file, rank)]
			if pc == NoPiece {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteString(pc.String())
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}

	if p.side == White {
		sb.WriteString(" w ")
	} else {
		sb.WriteString(" b ")
	}
	sb.WriteString(p.castling.String())
	sb.WriteByte(' ')
	sb.WriteString(p.epSquare.String())
	fmt.Fprintf(&sb, " %d %d", p.fifty, p.fullMove)

	return sb.String()
}
