package packetizer

import (
	"testing"

	"github.com/coregx/packetizer/deps"
	"github.com/coregx/packetizer/dfa/resource"
	"github.com/coregx/packetizer/mir"
)

// Scheduling classes of the two-unit test machine.
const (
	classU0   = iota // U0 only
	classU1          // U1 only
	classAny         // U0 or U1
	classNone        // no units
	classU2          // a unit the table never grants
)

func testItineraries(t testing.TB) *resource.Itineraries {
	t.Helper()
	itins, err := resource.NewItineraries([]resource.Class{
		classU0:   {Name: "u0", Stages: []resource.Stage{{Units: 1}}},
		classU1:   {Name: "u1", Stages: []resource.Stage{{Units: 2}}},
		classAny:  {Name: "any", Stages: []resource.Stage{{Units: 3}}},
		classNone: {Name: "none"},
		classU2:   {Name: "u2", Stages: []resource.Stage{{Units: 4}}},
	})
	if err != nil {
		t.Fatalf("NewItineraries: %v", err)
	}
	return itins
}

func testTable(t testing.TB) *resource.Table {
	t.Helper()
	table, err := resource.NewTable([][]resource.Transition{
		{{Input: 1, Next: 1}, {Input: 2, Next: 2}, {Input: 3, Next: 3}},
		{{Input: 2, Next: 4}, {Input: 3, Next: 4}},
		{{Input: 1, Next: 4}, {Input: 3, Next: 4}},
		{{Input: 1, Next: 4}, {Input: 2, Next: 4}, {Input: 3, Next: 4}},
		{},
	})
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	return table
}

func testAutomaton(t testing.TB, config resource.Config) *resource.Automaton {
	t.Helper()
	a, err := resource.New(testItineraries(t), testTable(t), config)
	if err != nil {
		t.Fatalf("resource.New: %v", err)
	}
	return a
}

// testPolicy bundles everything it can; the hooks can be overridden per test.
type testPolicy struct {
	DefaultPolicy

	ignore   func(*mir.Instr) bool
	solo     func(*mir.Instr) bool
	veto     func(*mir.Instr) bool
	together func(j, i *deps.Node) bool
	prune    func(j, i *deps.Node) bool

	inits int
	ends  []int
}

func (p *testPolicy) InitPacketizerState() { p.inits++ }

func (p *testPolicy) IgnorePseudoInstruction(in *mir.Instr, _ *mir.Block) bool {
	return p.ignore != nil && p.ignore(in)
}

func (p *testPolicy) IsSoloInstruction(in *mir.Instr) bool {
	return p.solo != nil && p.solo(in)
}

func (p *testPolicy) ShouldAddToPacket(in *mir.Instr) bool {
	return p.veto == nil || !p.veto(in)
}

func (p *testPolicy) IsLegalToPacketizeTogether(j, i *deps.Node) bool {
	return p.together != nil && p.together(j, i)
}

func (p *testPolicy) IsLegalToPruneDependencies(j, i *deps.Node) bool {
	return p.prune != nil && p.prune(j, i)
}

func (p *testPolicy) EndPacket(pkt *Packet, b *mir.Block, at int) {
	p.ends = append(p.ends, at)
	p.DefaultPolicy.EndPacket(pkt, b, at)
}

// testBackend hands out automata over the shared test tables.
type testBackend struct {
	itins  *resource.Itineraries
	table  *resource.Table
	config resource.Config
	err    error
}

func newTestBackend(t testing.TB) *testBackend {
	return &testBackend{itins: testItineraries(t), table: testTable(t), config: resource.DefaultConfig()}
}

func (be *testBackend) NewAutomaton() (*resource.Automaton, error) {
	if be.err != nil {
		return nil, be.err
	}
	return resource.New(be.itins, be.table, be.config)
}

func (be *testBackend) NewPolicy(*resource.Automaton) Policy {
	return &testPolicy{}
}

func instr(op string, class int, defs, uses []mir.Reg) *mir.Instr {
	return &mir.Instr{Opcode: op, Class: class, Defs: defs, Uses: uses}
}

func r(names ...string) []mir.Reg {
	out := make([]mir.Reg, len(names))
	for i, n := range names {
		out[i] = mir.Reg(n)
	}
	return out
}

// groups renders Block.Packets as opcode lists.
func groups(b *mir.Block) [][]string {
	var out [][]string
	for _, g := range b.Packets() {
		ops := make([]string, len(g))
		for i, in := range g {
			ops[i] = in.Opcode
		}
		out = append(out, ops)
	}
	return out
}

func equalGroups(a, b [][]string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if len(a[i]) != len(b[i]) {
			return false
		}
		for j := range a[i] {
			if a[i][j] != b[i][j] {
				return false
			}
		}
	}
	return true
}
