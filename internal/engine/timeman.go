package engine

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/ajurian/AlphaChess/internal/board"
)

const (
	defaultMovesToGo = 30
	moveOverhead     = 10 * time.Millisecond
)

// Limits bounds one search. Zero values mean "no limit" for Depth, Nodes and
// MoveTime.
type Limits struct {
	Time      [2]time.Duration // wtime, btime
	Inc       [2]time.Duration // winc, binc
	MovesToGo int              // moves until the next time control, 0 for sudden death
	MoveTime  time.Duration    // fixed time per move, overrides the clock
	Depth     int              // maximum iteration depth
	Nodes     uint64           // maximum nodes
	Infinite  bool             // search until stopped
	BookDepth int              // consult the book while gamePly < BookDepth
}

// TimeManager tracks the deadline and the stop flag of a search.
type TimeManager struct {
	start    time.Time
	moveTime time.Duration // zero when the search has no deadline
	stop     atomic.Bool
}

// Init starts the clock for a search from a position with the given side to
// move and game ply.
func (tm *TimeManager) Init(limits Limits, us board.Color, gamePly int) {
	tm.start = time.Now()
	tm.stop.Store(false)
	tm.moveTime = moveBudget(limits, us, gamePly)
}

// moveBudget returns how long the search may run, zero for unbounded.
func moveBudget(limits Limits, us board.Color, gamePly int) time.Duration {
	if limits.Infinite {
		return 0
	}
	if limits.MoveTime > 0 {
		return limits.MoveTime
	}
	if limits.Time[us] <= 0 {
		return 0
	}

	mtg := limits.MovesToGo
	if mtg <= 0 {
		mtg = defaultMovesToGo
	}
	timeLeft := limits.Time[us] + limits.Inc[us]*time.Duration(mtg-1) - moveOverhead*time.Duration(2+mtg)
	if timeLeft < time.Millisecond {
		timeLeft = time.Millisecond
	}

	// Scale from 2x in the opening down to 1x from move ten on.
	scale := 20 - min(gamePly, 10)
	budget := timeLeft * time.Duration(scale) / time.Duration(10*mtg)

	// Never plan past the clock itself.
	return min(budget, max(limits.Time[us]-moveOverhead, time.Millisecond))
}

// Deadline returns the move budget, zero when there is none.
func (tm *TimeManager) Deadline() time.Duration {
	return tm.moveTime
}

// Elapsed returns the time since Init.
func (tm *TimeManager) Elapsed() time.Duration {
	return time.Since(tm.start)
}

// Stop raises the stop flag.
func (tm *TimeManager) Stop() {
	tm.stop.Store(true)
}

// Stopped reports whether the search should unwind.
func (tm *TimeManager) Stopped() bool {
	return tm.stop.Load()
}

// watch raises the stop flag when the budget runs out or ctx is cancelled,
// and returns once done is closed.
func (tm *TimeManager) watch(ctx context.Context, done <-chan struct{}) error {
	var expired <-chan time.Time
	if tm.moveTime > 0 {
		remaining := tm.moveTime - tm.Elapsed()
		if remaining < 0 {
			remaining = 0
		}
		timer := time.NewTimer(remaining)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case <-expired:
		tm.Stop()
	case <-ctx.Done():
		tm.Stop()
	case <-done:
		return nil
	}
	<-done
	return nil
}
