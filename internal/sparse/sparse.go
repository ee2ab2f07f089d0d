// Package sparse provides a sparse set for small, dense integer universes.
//
// The packetizer uses it in two places where the universe is known up front:
// the set of DFA states whose transition rows were already scanned into the
// transition cache, and the successor set of a dependency node (indexed by
// region position). Both need O(1) insert, O(1) membership and O(1) clear.
package sparse

// Set is a set of uint32 values below a fixed capacity.
//
// It keeps a sparse array (value → position in dense) for membership and a
// dense array for iteration in insertion order. Clear does not touch the
// sparse array; stale entries are rejected by the dense cross-check.
type Set struct {
	sparse []uint32
	dense  []uint32
}

// New creates an empty set that can hold values in [0, capacity).
func New(capacity uint32) *Set {
	return &Set{
		sparse: make([]uint32, capacity),
		dense:  make([]uint32, 0, capacity),
	}
}

// Capacity returns the exclusive upper bound on storable values.
func (s *Set) Capacity() int {
	return len(s.sparse)
}

// Insert adds value to the set and reports whether it was newly added.
// Panics if value >= capacity.
func (s *Set) Insert(value uint32) bool {
	if s.Contains(value) {
		return false
	}
	s.sparse[value] = uint32(len(s.dense)) //nolint:gosec // len(dense) <= capacity, which fits uint32
	s.dense = append(s.dense, value)
	return true
}

// Contains reports whether value is in the set.
// Values outside the capacity are never members.
func (s *Set) Contains(value uint32) bool {
	if uint64(value) >= uint64(len(s.sparse)) {
		return false
	}
	idx := s.sparse[value]
	return int(idx) < len(s.dense) && s.dense[idx] == value
}

// Clear removes all elements in O(1).
func (s *Set) Clear() {
	s.dense = s.dense[:0]
}

// Len returns the number of elements.
func (s *Set) Len() int {
	return len(s.dense)
}

// IsEmpty reports whether the set has no elements.
func (s *Set) IsEmpty() bool {
	return len(s.dense) == 0
}

// Values returns the elements in insertion order.
// The returned slice is valid until the next mutation.
func (s *Set) Values() []uint32 {
	return s.dense
}
