package resource

import (
	"fmt"

	"github.com/coregx/packetizer/internal/conv"
)

// StateID identifies a resource reservation state of the DFA.
// This is a 32-bit unsigned integer for compact representation.
type StateID uint32

// Special state constants
const (
	// InvalidState represents a missing transition
	InvalidState StateID = 0xFFFFFFFF

	// StartState is always state ID 0: every resource is free
	StartState StateID = 0
)

// Transition is one (input, next state) pair of a table row.
type Transition struct {
	Input Input
	Next  StateID
}

// String returns a human-readable representation of the transition
func (t Transition) String() string {
	return fmt.Sprintf("%#x->%d", uint64(t.Input), t.Next)
}

// Table is an immutable DFA transition table: one row of exact
// (input, next state) pairs per state.
//
// A Table is produced offline for a target and loaded once; it is safe to
// share between goroutines and automata.
type Table struct {
	rows [][]Transition
}

// NewTable validates rows and returns a table owning a copy of them.
//
// Row i holds the transitions of state i. Every Next must name an existing
// state and a row may not contain the same input twice. A row may be empty
// (a state with every resource taken).
func NewTable(rows [][]Transition) (*Table, error) {
	if len(rows) == 0 {
		return nil, tableError("table has no states")
	}
	n := conv.IntToUint32(len(rows))
	owned := make([][]Transition, len(rows))
	for s, row := range rows {
		seen := make(map[Input]struct{}, len(row))
		for _, tr := range row {
			if uint32(tr.Next) >= n {
				return nil, tableError("state %d: transition on %#x to state %d, table has %d states",
					s, uint64(tr.Input), tr.Next, n)
			}
			if _, dup := seen[tr.Input]; dup {
				return nil, tableError("state %d: duplicate input %#x", s, uint64(tr.Input))
			}
			seen[tr.Input] = struct{}{}
		}
		owned[s] = append([]Transition(nil), row...)
	}
	return &Table{rows: owned}, nil
}

// ParseFlat converts the offline flat table format into a Table.
//
// pairs is the concatenation of every state's (input, next) pairs; a state
// with no transitions contributes a single {-1, -1} sentinel, and the table
// ends with one more sentinel. entries[i] is the offset of state i's first
// pair, and the final element of entries is the offset of the closing
// sentinel, so state i occupies pairs[entries[i]:entries[i+1]]. Offsets
// must start at zero and never decrease.
func ParseFlat(pairs [][2]int64, entries []uint32) (*Table, error) {
	if len(entries) < 2 {
		return nil, tableError("entry table needs at least one state and the closing offset, got %d entries", len(entries))
	}
	last := entries[len(entries)-1]
	if uint64(last) >= uint64(len(pairs)) {
		return nil, tableError("closing offset %d outside %d pairs", last, len(pairs))
	}
	if !isSentinel(pairs[last]) {
		return nil, tableError("missing closing sentinel at offset %d", last)
	}

	if entries[0] != 0 {
		return nil, tableError("first entry offset is %d, want 0", entries[0])
	}
	for s := 1; s < len(entries); s++ {
		if entries[s] < entries[s-1] {
			return nil, tableError("state %d: entry offset %d after next state's %d", s-1, entries[s-1], entries[s])
		}
	}

	rows := make([][]Transition, len(entries)-1)
	for s := range rows {
		start, end := entries[s], entries[s+1]
		if end-start == 1 && isSentinel(pairs[start]) {
			continue
		}
		row := make([]Transition, 0, end-start)
		for _, p := range pairs[start:end] {
			if isSentinel(p) {
				return nil, tableError("state %d: sentinel inside a non-empty row", s)
			}
			next, ok := conv.Int64ToUint32(p[1])
			if !ok {
				return nil, tableError("state %d: invalid pair {%d, %d}", s, p[0], p[1])
			}
			// Inputs are stored as signed words; a full 64-bit encoding wraps.
			row = append(row, Transition{Input: Input(p[0]), Next: StateID(next)})
		}
		if len(row) == 0 {
			return nil, tableError("state %d: empty row must hold exactly one sentinel", s)
		}
		rows[s] = row
	}
	return NewTable(rows)
}

// isSentinel reports whether p is the {-1, -1} row terminator.
func isSentinel(p [2]int64) bool {
	return p[0] == -1 && p[1] == -1
}

// NumStates returns the number of DFA states.
func (t *Table) NumStates() int {
	return len(t.rows)
}

// Row returns the transitions of state s, or nil if s is not a state.
// The returned slice must not be modified.
func (t *Table) Row(s StateID) []Transition {
	if uint64(s) >= uint64(len(t.rows)) {
		return nil
	}
	return t.rows[s]
}

// NumTransitions returns the total number of transitions in the table.
func (t *Table) NumTransitions() int {
	n := 0
	for _, row := range t.rows {
		n += len(row)
	}
	return n
}

// Flat renders the table in the offline flat format accepted by ParseFlat.
func (t *Table) Flat() (pairs [][2]int64, entries []uint32) {
	entries = make([]uint32, 0, len(t.rows)+1)
	for _, row := range t.rows {
		entries = append(entries, conv.IntToUint32(len(pairs)))
		if len(row) == 0 {
			pairs = append(pairs, [2]int64{-1, -1})
			continue
		}
		for _, tr := range row {
			pairs = append(pairs, [2]int64{int64(tr.Input), int64(tr.Next)})
		}
	}
	entries = append(entries, conv.IntToUint32(len(pairs)))
	pairs = append(pairs, [2]int64{-1, -1})
	return pairs, entries
}
