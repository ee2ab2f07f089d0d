package resource

import "testing"

// Functional units of the two-unit test machine.
const (
	unitU0 = 1 << 0
	unitU1 = 1 << 1
)

// Scheduling classes of the two-unit test machine.
const (
	classU0 = iota
	classU1
	classAny
	classNone
	classPair
)

func testClasses() []Class {
	return []Class{
		classU0:   {Name: "u0", Stages: []Stage{{Units: unitU0}}},
		classU1:   {Name: "u1", Stages: []Stage{{Units: unitU1}}},
		classAny:  {Name: "any", Stages: []Stage{{Units: unitU0 | unitU1}}},
		classNone: {Name: "none"},
		classPair: {Name: "pair", Stages: []Stage{{Units: unitU0}, {Units: unitU1}}},
	}
}

// testRows is the DFA for units {U0, U1} over inputs u0=1, u1=2, any=3:
//
//	0 {}        --u0--> 1, --u1--> 2, --any--> 3
//	1 {U0}      --u1--> 4, --any--> 4
//	2 {U1}      --u0--> 4, --any--> 4
//	3 {U0|U1}   --u0--> 4, --u1--> 4, --any--> 4
//	4 {U0,U1}   (full)
func testRows() [][]Transition {
	return [][]Transition{
		{{Input: 1, Next: 1}, {Input: 2, Next: 2}, {Input: 3, Next: 3}},
		{{Input: 2, Next: 4}, {Input: 3, Next: 4}},
		{{Input: 1, Next: 4}, {Input: 3, Next: 4}},
		{{Input: 1, Next: 4}, {Input: 2, Next: 4}, {Input: 3, Next: 4}},
		{},
	}
}

func newTestAutomaton(t testing.TB, config Config) *Automaton {
	t.Helper()
	itins, err := NewItineraries(testClasses())
	if err != nil {
		t.Fatalf("NewItineraries: %v", err)
	}
	table, err := NewTable(testRows())
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	a, err := New(itins, table, config)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a
}
