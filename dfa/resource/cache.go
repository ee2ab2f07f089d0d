package resource

import (
	"github.com/coregx/packetizer/internal/conv"
	"github.com/coregx/packetizer/internal/sparse"
)

// cacheKey is a (from state, input) pair.
type cacheKey struct {
	state StateID
	input Input
}

// Cache memoizes transition table lookups with bounded memory.
//
// The cache maps (StateID, Input) → StateID. Rows are loaded whole: when a
// state's row is scanned, every pair in it is inserted and the state is
// marked loaded, so a later miss on a loaded state is answered in O(1)
// without rescanning.
//
// Thread safety: Not thread-safe. Each Automaton owns its cache; automata
// for independent blocks never share one.
//
// Memory management:
//   - Entries are never evicted individually (no LRU overhead)
//   - When a row does not fit, the cache is cleared entirely and the row is
//     loaded into the empty cache
//   - Clearing keeps allocated memory to avoid re-allocation
type Cache struct {
	// transitions maps (state, input) → next state
	transitions map[cacheKey]StateID

	// loaded holds the states whose complete rows are in transitions
	loaded *sparse.Set

	// maxEntries is the capacity limit
	maxEntries uint32

	// clearCount tracks how many times the cache was cleared to make room
	clearCount int

	// Statistics for cache performance tuning
	hits   uint64 // Lookups answered from the cache
	misses uint64 // Lookups that required a row scan
}

// NewCache creates a cache for a table with numStates states and the given
// maximum number of entries.
func NewCache(numStates int, maxEntries uint32) *Cache {
	return &Cache{
		transitions: make(map[cacheKey]StateID, min(maxEntries, 256)),
		loaded:      sparse.New(conv.IntToUint32(numStates)),
		maxEntries:  maxEntries,
	}
}

// Get retrieves the transition for (s, in).
//
// Returns (next, true, true) on a hit, (InvalidState, false, true) if the
// row of s is loaded but has no such input, and (InvalidState, false, false)
// if the row has not been loaded yet.
func (c *Cache) Get(s StateID, in Input) (next StateID, ok, rowLoaded bool) {
	if !c.loaded.Contains(uint32(s)) {
		return InvalidState, false, false
	}
	c.hits++
	next, ok = c.transitions[cacheKey{state: s, input: in}]
	if !ok {
		return InvalidState, false, true
	}
	return next, true, true
}

// LoadRow inserts every transition of state s and marks s loaded.
//
// If the row would push the cache past its capacity the cache is cleared
// first. A row is always inserted whole, even when it alone exceeds the
// capacity, because negative answers rely on complete rows.
func (c *Cache) LoadRow(s StateID, row []Transition) {
	c.misses++
	if uint64(len(c.transitions))+uint64(len(row)) > uint64(c.maxEntries) && len(c.transitions) > 0 {
		c.ClearKeepMemory()
	}
	for _, tr := range row {
		c.transitions[cacheKey{state: s, input: tr.Input}] = tr.Next
	}
	c.loaded.Insert(uint32(s))
}

// Size returns the current number of cached transitions
func (c *Cache) Size() int {
	return len(c.transitions)
}

// LoadedRows returns the number of states whose rows are cached
func (c *Cache) LoadedRows() int {
	return c.loaded.Len()
}

// Stats returns cache hit/miss statistics.
// Returns (hits, misses, hitRate).
//
// Hit rate = hits / (hits + misses)
// Within a basic block the hit rate is usually well above 90%: a packet only
// visits a handful of states.
func (c *Cache) Stats() (hits, misses uint64, hitRate float64) {
	hits = c.hits
	misses = c.misses
	total := hits + misses
	if total > 0 {
		hitRate = float64(hits) / float64(total)
	}
	return hits, misses, hitRate
}

// ResetStats resets hit/miss counters (useful for benchmarking)
func (c *Cache) ResetStats() {
	c.hits = 0
	c.misses = 0
}

// Clear removes all transitions and resets statistics. Primarily for testing.
func (c *Cache) Clear() {
	c.transitions = make(map[cacheKey]StateID, min(c.maxEntries, 256))
	c.loaded.Clear()
	c.clearCount = 0
	c.hits = 0
	c.misses = 0
}

// ClearKeepMemory removes all transitions but keeps the map memory for reuse
// and increments the clear counter. Hit/miss statistics accumulate across
// clears.
func (c *Cache) ClearKeepMemory() {
	clear(c.transitions)
	c.loaded.Clear()
	c.clearCount++
}

// ClearCount returns how many times the cache has been cleared for space.
func (c *Cache) ClearCount() int {
	return c.clearCount
}
