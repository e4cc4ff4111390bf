package uci

import (
	"fmt"
	"strings"

	"github.com/ajurian/AlphaChess/internal/board"
	"github.com/ajurian/AlphaChess/internal/engine"
)

// sendInfo outputs search info in UCI format.
func (u *UCI) sendInfo(info engine.Info) {
	u.send("%s", formatInfo(info))
}

func formatInfo(info engine.Info) string {
	if info.CurrMove != board.NoMove {
		return fmt.Sprintf("info depth %d currmove %s currmovenumber %d", info.Depth, info.CurrMove, info.CurrMoveNumber)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "info depth %d seldepth %d score %s", info.Depth, info.SelDepth, engine.ScoreToString(info.Score))
	switch info.Bound {
	case engine.BoundLower:
		sb.WriteString(" lowerbound")
	case engine.BoundUpper:
		sb.WriteString(" upperbound")
	}
	fmt.Fprintf(&sb, " nodes %d nps %d time %d hashfull %d", info.Nodes, info.NPS(), info.Time.Milliseconds(), info.HashFull)
	if len(info.PV) > 0 {
		sb.WriteString(" pv")
		for _, m := range info.PV {
			sb.WriteString(" ")
			sb.WriteString(m.String())
		}
	}
	return sb.String()
}

// sendBestMove reports the search result. A missing move prints as (none).
func (u *UCI) sendBestMove(best, ponder board.Move) {
	if best == board.NoMove {
		u.send("bestmove (none)")
		return
	}
	u.send("bestmove %s ponder %s", best, moveOrNone(ponder))
}

func moveOrNone(m board.Move) string {
	if m == board.NoMove {
		return "(none)"
	}
	return m.String()
}
