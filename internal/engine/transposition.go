package engine

import (
	"fmt"
	"unsafe"

	"github.com/rs/zerolog/log"

	"github.com/ajurian/AlphaChess/internal/board"
)

// Bound tells how a stored value relates to the true score.
type Bound uint8

const (
	BoundNone  Bound = 0
	BoundUpper Bound = 1                       // failed low
	BoundLower Bound = 2                       // failed high
	BoundExact Bound = BoundUpper | BoundLower // PV node
)

// TTEntry is one slot of the transposition table.
type TTEntry struct {
	Key   uint64
	Move  board.Move
	Value int16
	Eval  int16
	Depth int8
	Bound Bound
}

const entrySize = uint64(unsafe.Sizeof(TTEntry{}))

// MaxHashMB bounds the requested table size.
const MaxHashMB = 1 << 20

// TranspositionTable caches search results by position key. Every store
// overwrites its slot.
type TranspositionTable struct {
	entries []TTEntry
	mask    uint64

	// alloc returns n zeroed entries or an error when they do not fit.
	alloc func(n uint64) ([]TTEntry, error)
}

// NewTranspositionTable creates a table of roughly sizeMB megabytes, or less
// when that much memory is not available.
func NewTranspositionTable(sizeMB int) *TranspositionTable {
	return newTranspositionTable(sizeMB, allocate)
}

func newTranspositionTable(sizeMB int, alloc func(uint64) ([]TTEntry, error)) *TranspositionTable {
	tt := &TranspositionTable{alloc: alloc}
	tt.Resize(sizeMB)
	return tt
}

// Resize reallocates the table, dropping its contents. Each failed
// allocation is retried with half the entries.
func (tt *TranspositionTable) Resize(sizeMB int) {
	sizeMB = min(max(sizeMB, 1), MaxHashMB)
	n := roundDownToPowerOf2(uint64(sizeMB) << 20 / entrySize)
	tt.entries = nil
	for n > 0 {
		entries, err := tt.alloc(n)
		if err == nil {
			tt.entries = entries
			break
		}
		log.Warn().Err(err).Uint64("entries", n).Msg("hash allocation failed, halving")
		n >>= 1
	}
	if tt.entries == nil {
		tt.entries = make([]TTEntry, 1)
	}
	tt.mask = uint64(len(tt.entries)) - 1
	log.Debug().
		Int("entries", len(tt.entries)).
		Uint64("mb", uint64(len(tt.entries))*entrySize>>20).
		Msg("hash table allocated")
}

// allocate refuses requests larger than the available memory, since the
// runtime aborts instead of panicking when the heap is exhausted, and turns
// the remaining allocation panics into errors.
func allocate(n uint64) (entries []TTEntry, err error) {
	if avail := availableMemory(); avail > 0 && n*entrySize > avail {
		return nil, fmt.Errorf("allocate %d entries: %d MB requested, %d MB available",
			n, n*entrySize>>20, avail>>20)
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("allocate %d entries: %v", n, r)
		}
	}()
	return make([]TTEntry, n), nil
}

// roundDownToPowerOf2 rounds n down to the nearest power of 2.
func roundDownToPowerOf2(n uint64) uint64 {
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return (n + 1) >> 1
}

// Len returns the number of slots.
func (tt *TranspositionTable) Len() int {
	return len(tt.entries)
}

// Probe returns the entry stored for key, if any.
func (tt *TranspositionTable) Probe(key uint64) (TTEntry, bool) {
	e := tt.entries[key&tt.mask]
	if e.Key != key || e.Bound == BoundNone {
		return TTEntry{}, false
	}
	return e, true
}

// Store writes a search result. Mate scores are made relative to the stored
// node by shifting them by ply, and shifted back by the caller on probe.
func (tt *TranspositionTable) Store(ply, value, depth int, bound Bound, move board.Move, eval int, key uint64) {
	if value >= winValueInMaxPly {
		value += ply
	} else if value <= lossValueInMaxPly {
		value -= ply
	}
	tt.entries[key&tt.mask] = TTEntry{
		Key:   key,
		Move:  move,
		Value: int16(value),
		Eval:  int16(eval),
		Depth: int8(depth),
		Bound: bound,
	}
}

// Clear empties every slot.
func (tt *TranspositionTable) Clear() {
	clear(tt.entries)
}

// HashFull returns the permille of used slots among the first thousand.
func (tt *TranspositionTable) HashFull() int {
	sample := min(1000, len(tt.entries))
	used := 0
	for i := 0; i < sample; i++ {
		if tt.entries[i].Bound != BoundNone {
			used++
		}
	}
	return used * 1000 / sample
}

// valueFromTT undoes the ply shift of a stored mate score. Mates that the
// fifty-move rule could still cancel are capped below a proven mate.
func valueFromTT(v, ply, fifty int) int {
	switch {
	case v >= winValueInMaxPly:
		if v >= MateValue-MaxPly && MateValue-v > 99-fifty {
			return MateValue - MaxPly - 1
		}
		return v - ply
	case v <= lossValueInMaxPly:
		if v <= -MateValue+MaxPly && MateValue+v > 99-fifty {
			return -MateValue + MaxPly + 1
		}
		return v + ply
	}
	return v
}
