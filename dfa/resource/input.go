package resource

import (
	"fmt"
	"math/bits"
)

// Encoding limits shared with the offline table generator.
//
// MaxResTerms * MaxResources must fit within the width of Input:
//
//	8 terms x 8  bits = 64 bits
//	5 terms x 12 bits = 60 bits
//	4 terms x 16 bits = 64 bits <--- current
//	2 terms x 32 bits = 64 bits
const (
	// MaxResTerms is the maximum number of AND'ed resource terms (itinerary
	// stages) in one instruction class.
	MaxResTerms = 4

	// MaxResources is the maximum number of resource bits in one term.
	MaxResources = 16
)

// Compile-time check: a negative constant here fails to build.
const _ uint = 64 - MaxResTerms*MaxResources

// termMask selects the low MaxResources bits of a term.
const termMask = 1<<MaxResources - 1

// Input is the DFA input symbol for an instruction class: the class's terms
// packed MaxResources bits apiece, first stage in the most significant used
// position. The automaton treats it as an opaque key.
type Input uint64

// NoClass marks an instruction without a scheduling class. Negative class
// numbers are empty descriptors: they reserve nothing and always fit.
const NoClass = -1

// Stage is one itinerary stage: the set of functional units any one of which
// can serve the instruction in that stage.
type Stage struct {
	Units uint32
}

// String returns the unit mask in hex
func (s Stage) String() string {
	return fmt.Sprintf("Stage(units=%#x)", s.Units)
}

// EncodeTerms packs term masks into an Input.
//
// Returns ErrEncodingOverflow if there are more than MaxResTerms terms or a
// term uses bits at or above MaxResources.
func EncodeTerms(terms []uint32) (Input, error) {
	if len(terms) > MaxResTerms {
		return 0, overflowError("%d terms, limit is %d", len(terms), MaxResTerms)
	}
	var in Input
	for i, units := range terms {
		if units&^termMask != 0 {
			return 0, overflowError("term %d uses unit bit %d, limit is %d",
				i, bits.Len32(units)-1, MaxResources)
		}
		in = in<<MaxResources | Input(units)
	}
	return in, nil
}

// MustEncodeTerms is like EncodeTerms but panics on overflow.
// Intended for tables and descriptors fixed at build time.
func MustEncodeTerms(terms ...uint32) Input {
	in, err := EncodeTerms(terms)
	if err != nil {
		panic(err)
	}
	return in
}

// Class describes one scheduling class: its name (for diagnostics) and the
// stages it occupies.
type Class struct {
	Name   string
	Stages []Stage
}

// IsEmpty returns true if the class reserves no functional unit.
func (c Class) IsEmpty() bool {
	for _, s := range c.Stages {
		if s.Units != 0 {
			return false
		}
	}
	return true
}

// Itineraries maps scheduling class numbers to their encoded DFA inputs.
//
// Inputs are computed and validated once at construction, so Encode is a
// pure slice lookup at packetization time. Itineraries are immutable and can
// be shared by any number of automata.
type Itineraries struct {
	classes []Class
	inputs  []Input
	empty   []bool
}

// NewItineraries validates the classes and precomputes their inputs.
// Returns ErrEncodingOverflow if any class exceeds the encoding limits.
func NewItineraries(classes []Class) (*Itineraries, error) {
	it := &Itineraries{
		classes: make([]Class, len(classes)),
		inputs:  make([]Input, len(classes)),
		empty:   make([]bool, len(classes)),
	}
	terms := make([]uint32, 0, MaxResTerms)
	for i, c := range classes {
		terms = terms[:0]
		for _, s := range c.Stages {
			terms = append(terms, s.Units)
		}
		in, err := EncodeTerms(terms)
		if err != nil {
			e := err.(*Error)
			e.Cause = fmt.Errorf("class %d (%s): %w", i, c.Name, e.Cause)
			return nil, e
		}
		stages := make([]Stage, len(c.Stages))
		copy(stages, c.Stages)
		it.classes[i] = Class{Name: c.Name, Stages: stages}
		it.inputs[i] = in
		it.empty[i] = c.IsEmpty()
	}
	return it, nil
}

// Len returns the number of scheduling classes.
func (it *Itineraries) Len() int {
	return len(it.classes)
}

// Class returns the description of class i.
// Returns (Class{}, false) if i is out of range.
func (it *Itineraries) Class(i int) (Class, bool) {
	if i < 0 || i >= len(it.classes) {
		return Class{}, false
	}
	return it.classes[i], true
}

// Input returns the encoded input for class i and whether the class is
// empty. Negative classes are empty. Panics with ErrUnknownClass if i is
// beyond the described classes: instructions are tagged from the same target
// description, so a mismatch is a build bug.
func (it *Itineraries) Input(i int) (in Input, empty bool) {
	if i < 0 {
		return 0, true
	}
	if i >= len(it.inputs) {
		panic(&Error{
			Kind:    UnknownClass,
			Message: ErrUnknownClass.Message,
			Cause:   fmt.Errorf("class %d, itineraries describe %d", i, len(it.inputs)),
		})
	}
	return it.inputs[i], it.empty[i]
}
