// Package resource implements the DFA-based resource tracker used to decide
// whether an instruction fits into the packet being formed on a VLIW target.
//
// The automaton has three parts: states, inputs, and transitions. Inputs are
// instruction classes encoded from the target's itineraries. A state models
// every combination of functional unit consumption possible for the
// instructions already in the packet. A transition models adding one more
// instruction: if a transition exists from the current state for an
// instruction's input, the instruction fits; a missing transition means the
// packet has no functional unit left for it.
//
// The transition table is generated offline and only consumed here. Lookups
// go through a per-automaton cache that loads whole table rows on demand.
//
// Example usage:
//
//	itins, _ := resource.NewItineraries(classes)
//	table, _ := resource.ParseFlat(pairs, entries)
//	a, err := resource.New(itins, table, resource.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//
//	if a.CanReserve(class) {
//	    a.Reserve(class)
//	}
//	a.Clear() // next packet
package resource

import "fmt"

// Automaton tracks the resources reserved by the open packet.
//
// The Automaton maintains:
//   - Shared, immutable itineraries and transition table
//   - The current state (union of reserved resources)
//   - A private transition cache
//
// Thread safety: Not thread-safe. Each goroutine should use its own
// Automaton. Itineraries and Table can be shared (they're immutable).
type Automaton struct {
	itins  *Itineraries
	table  *Table
	cache  *Cache
	config Config
	state  StateID

	// scans counts table row scans, with or without the cache
	scans uint64
}

// New creates an automaton in StartState.
//
// Returns ErrMalformedTable if table is nil or empty, ErrInvalidConfig if
// config fails validation.
func New(itins *Itineraries, table *Table, config Config) (*Automaton, error) {
	if table == nil || table.NumStates() == 0 {
		return nil, tableError("no transition table")
	}
	if itins == nil {
		return nil, &Error{Kind: MalformedTable, Message: "no itineraries"}
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	a := &Automaton{
		itins:  itins,
		table:  table,
		config: config,
		state:  StartState,
	}
	if !config.DisableCache {
		a.cache = NewCache(table.NumStates(), config.MaxCacheEntries)
	}
	return a, nil
}

// Clear makes all resources available again.
func (a *Automaton) Clear() {
	a.state = StartState
}

// State returns the current state.
func (a *Automaton) State() StateID {
	return a.state
}

// Itineraries returns the itineraries the automaton encodes classes with.
func (a *Automaton) Itineraries() *Itineraries {
	return a.itins
}

// Table returns the transition table.
func (a *Automaton) Table() *Table {
	return a.table
}

// Config returns the automaton configuration.
func (a *Automaton) Config() Config {
	return a.config
}

// Encode returns the DFA input of scheduling class class.
// The result depends only on the itineraries, never on the current state.
func (a *Automaton) Encode(class int) Input {
	in, _ := a.itins.Input(class)
	return in
}

// CanReserve reports whether an instruction of the given class fits into
// the current state. It does not change the state.
//
// Classes that reserve nothing always fit and never touch the table.
func (a *Automaton) CanReserve(class int) bool {
	in, empty := a.itins.Input(class)
	if empty {
		return true
	}
	return a.CanReserveInput(in)
}

// CanReserveInput is CanReserve for an already encoded input.
func (a *Automaton) CanReserveInput(in Input) bool {
	_, ok := a.Lookup(a.state, in)
	return ok
}

// CanReserveSeq reports whether inputs can be reserved one after another
// starting from the current state, without changing the state.
func (a *Automaton) CanReserveSeq(inputs ...Input) bool {
	s := a.state
	for _, in := range inputs {
		next, ok := a.Lookup(s, in)
		if !ok {
			return false
		}
		s = next
	}
	return true
}

// Reserve moves the automaton to the state reached by reserving class.
//
// Callers must check CanReserve first. A failed lookup leaves the state
// unchanged.
func (a *Automaton) Reserve(class int) {
	in, empty := a.itins.Input(class)
	if empty {
		return
	}
	a.ReserveInput(in)
}

// ReserveInput is Reserve for an already encoded input.
func (a *Automaton) ReserveInput(in Input) {
	if next, ok := a.Lookup(a.state, in); ok {
		a.state = next
	}
}

// Lookup resolves the transition from s on in.
// Returns (InvalidState, false) if no transition exists.
//
// The lookup algorithm:
//  1. Check the cache for (s, in); a loaded row answers both hits and misses
//  2. Otherwise scan the row of s, inserting every pair into the cache
//  3. Return the pair matching in, if the row had one
//
// With the cache disabled every call scans the row. Results are identical
// either way.
func (a *Automaton) Lookup(s StateID, in Input) (StateID, bool) {
	if uint64(s) >= uint64(a.table.NumStates()) {
		return InvalidState, false
	}
	if a.cache != nil {
		if next, ok, loaded := a.cache.Get(s, in); loaded {
			return next, ok
		}
	}

	row := a.table.Row(s)
	a.scans++
	if a.cache != nil {
		a.cache.LoadRow(s, row)
	}
	for _, tr := range row {
		if tr.Input == in {
			return tr.Next, true
		}
	}
	return InvalidState, false
}

// Stats reports lookup statistics.
// hits and misses are zero when the cache is disabled.
type Stats struct {
	Hits     uint64
	Misses   uint64
	RowScans uint64
}

// Stats returns the current lookup statistics.
func (a *Automaton) Stats() Stats {
	st := Stats{RowScans: a.scans}
	if a.cache != nil {
		st.Hits, st.Misses, _ = a.cache.Stats()
	}
	return st
}

// Cache returns the transition cache, or nil if caching is disabled.
func (a *Automaton) Cache() *Cache {
	return a.cache
}

// String returns a human-readable representation of the automaton
func (a *Automaton) String() string {
	return fmt.Sprintf("Automaton(state=%d, states=%d, classes=%d, cache=%v)",
		a.state, a.table.NumStates(), a.itins.Len(), a.cache != nil)
}
