package resource

import (
	"errors"
	"testing"
)

func TestNewTableValidation(t *testing.T) {
	tests := []struct {
		name    string
		rows    [][]Transition
		wantErr bool
	}{
		{name: "valid", rows: testRows(), wantErr: false},
		{name: "single full state", rows: [][]Transition{{}}, wantErr: false},
		{name: "no states", rows: nil, wantErr: true},
		{
			name:    "target out of range",
			rows:    [][]Transition{{{Input: 1, Next: 2}}, {}},
			wantErr: true,
		},
		{
			name:    "duplicate input",
			rows:    [][]Transition{{{Input: 1, Next: 1}, {Input: 1, Next: 0}}, {}},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := NewTable(tt.rows)
			if tt.wantErr {
				if !errors.Is(err, ErrMalformedTable) {
					t.Errorf("NewTable error = %v, want ErrMalformedTable", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewTable: %v", err)
			}
			if table.NumStates() != len(tt.rows) {
				t.Errorf("NumStates() = %d, want %d", table.NumStates(), len(tt.rows))
			}
		})
	}
}

func TestNewTableCopiesRows(t *testing.T) {
	rows := testRows()
	table, err := NewTable(rows)
	if err != nil {
		t.Fatal(err)
	}
	rows[0][0].Next = 3
	if got := table.Row(0)[0].Next; got != 1 {
		t.Errorf("table aliased caller rows: Row(0)[0].Next = %d, want 1", got)
	}
}

func TestParseFlat(t *testing.T) {
	// The flat form of testRows, as written by the offline generator.
	pairs := [][2]int64{
		{1, 1}, {2, 2}, {3, 3},
		{2, 4}, {3, 4},
		{1, 4}, {3, 4},
		{1, 4}, {2, 4}, {3, 4},
		{-1, -1},
		{-1, -1},
	}
	entries := []uint32{0, 3, 5, 7, 10, 11}

	table, err := ParseFlat(pairs, entries)
	if err != nil {
		t.Fatalf("ParseFlat: %v", err)
	}
	if table.NumStates() != 5 {
		t.Fatalf("NumStates() = %d, want 5", table.NumStates())
	}
	if table.NumTransitions() != 10 {
		t.Errorf("NumTransitions() = %d, want 10", table.NumTransitions())
	}
	if row := table.Row(4); len(row) != 0 {
		t.Errorf("Row(4) = %v, want empty", row)
	}
	want := testRows()
	for s := range want {
		got := table.Row(StateID(s))
		if len(got) != len(want[s]) {
			t.Fatalf("Row(%d) = %v, want %v", s, got, want[s])
		}
		for i := range got {
			if got[i] != want[s][i] {
				t.Errorf("Row(%d)[%d] = %v, want %v", s, i, got[i], want[s][i])
			}
		}
	}

	gotPairs, gotEntries := table.Flat()
	if len(gotPairs) != len(pairs) || len(gotEntries) != len(entries) {
		t.Fatalf("Flat() sizes = (%d, %d), want (%d, %d)",
			len(gotPairs), len(gotEntries), len(pairs), len(entries))
	}
	for i := range pairs {
		if gotPairs[i] != pairs[i] {
			t.Errorf("Flat() pair %d = %v, want %v", i, gotPairs[i], pairs[i])
		}
	}
	for i := range entries {
		if gotEntries[i] != entries[i] {
			t.Errorf("Flat() entry %d = %d, want %d", i, gotEntries[i], entries[i])
		}
	}
}

func TestParseFlatWideInput(t *testing.T) {
	// A four-term input with the top bit set is stored as a negative word.
	wide := MustEncodeTerms(0x8000, 0, 0, 1)
	pairs := [][2]int64{{int64(wide), 1}, {-1, -1}, {-1, -1}}
	table, err := ParseFlat(pairs, []uint32{0, 1, 2})
	if err != nil {
		t.Fatalf("ParseFlat: %v", err)
	}
	if got := table.Row(0)[0].Input; got != wide {
		t.Errorf("input = %#x, want %#x", uint64(got), uint64(wide))
	}
}

func TestParseFlatMalformed(t *testing.T) {
	tests := []struct {
		name    string
		pairs   [][2]int64
		entries []uint32
	}{
		{name: "no entries", pairs: [][2]int64{{-1, -1}}, entries: nil},
		{name: "only closing offset", pairs: [][2]int64{{-1, -1}}, entries: []uint32{0}},
		{name: "closing offset out of range", pairs: [][2]int64{{1, 0}}, entries: []uint32{0, 5}},
		{name: "missing closing sentinel", pairs: [][2]int64{{1, 0}, {2, 0}}, entries: []uint32{0, 1}},
		{name: "decreasing offsets", pairs: [][2]int64{{1, 0}, {-1, -1}, {-1, -1}}, entries: []uint32{1, 0, 2}},
		{name: "negative next", pairs: [][2]int64{{1, -5}, {-1, -1}}, entries: []uint32{0, 1}},
		{name: "empty row without sentinel", pairs: [][2]int64{{1, 1}, {-1, -1}}, entries: []uint32{0, 1, 1}},
		{name: "next out of range", pairs: [][2]int64{{1, 3}, {-1, -1}}, entries: []uint32{0, 1}},
		{name: "offset past closing sentinel", pairs: [][2]int64{{1, 0}, {-1, -1}}, entries: []uint32{0, 4, 1}},
		{name: "decreasing inner offsets", pairs: [][2]int64{{1, 0}, {2, 0}, {-1, -1}}, entries: []uint32{0, 2, 1, 2}},
		{name: "first offset not zero", pairs: [][2]int64{{1, 0}, {2, 0}, {-1, -1}}, entries: []uint32{1, 2}},
		{name: "sentinel inside row", pairs: [][2]int64{{1, 0}, {-1, -1}, {2, 0}, {-1, -1}}, entries: []uint32{0, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFlat(tt.pairs, tt.entries)
			if !errors.Is(err, ErrMalformedTable) {
				t.Errorf("ParseFlat error = %v, want ErrMalformedTable", err)
			}
		})
	}
}
