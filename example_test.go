package packetizer_test

import (
	"fmt"

	"github.com/coregx/packetizer"
	"github.com/coregx/packetizer/dfa/resource"
	"github.com/coregx/packetizer/mir"
)

// bundler lets every instruction share a packet.
type bundler struct {
	packetizer.DefaultPolicy
}

func (bundler) IsSoloInstruction(*mir.Instr) bool { return false }

// twoUnitAutomaton models a machine with functional units U0 and U1.
// Class 0 needs U0, class 1 needs U1.
func twoUnitAutomaton() *resource.Automaton {
	itins, err := resource.NewItineraries([]resource.Class{
		{Name: "alu0", Stages: []resource.Stage{{Units: 1}}},
		{Name: "alu1", Stages: []resource.Stage{{Units: 2}}},
	})
	if err != nil {
		panic(err)
	}
	table, err := resource.ParseFlat(
		[][2]int64{{1, 1}, {2, 2}, {2, 3}, {1, 3}, {-1, -1}, {-1, -1}},
		[]uint32{0, 2, 3, 4, 5},
	)
	if err != nil {
		panic(err)
	}
	a, err := resource.New(itins, table, resource.DefaultConfig())
	if err != nil {
		panic(err)
	}
	return a
}

// ExamplePacketizer_Packetize packs independent instructions on different
// units into one packet and starts a new packet for a dependent one.
func ExamplePacketizer_Packetize() {
	b := mir.NewBlock("entry").Append(
		&mir.Instr{Opcode: "add", Class: 0, Defs: []mir.Reg{"r1"}, Uses: []mir.Reg{"r2", "r3"}},
		&mir.Instr{Opcode: "sub", Class: 1, Defs: []mir.Reg{"r4"}, Uses: []mir.Reg{"r5", "r6"}},
		&mir.Instr{Opcode: "mul", Class: 0, Defs: []mir.Reg{"r7"}, Uses: []mir.Reg{"r1", "r4"}},
		&mir.Instr{Opcode: "shl", Class: 1, Defs: []mir.Reg{"r8"}, Uses: []mir.Reg{"r7"}},
	)
	p := packetizer.New(mir.NewFunction("f", b), twoUnitAutomaton(), bundler{})
	if err := p.Packetize(b, 0, b.Len()); err != nil {
		panic(err)
	}
	for _, pkt := range b.Packets() {
		fmt.Println(pkt)
	}
	// Output:
	// [add r1 = r2, r3 sub r4 = r5, r6]
	// [mul r7 = r1, r4]
	// [shl r8 = r7]
}

// ExampleDefaultPolicy shows the conservative default: nothing is bundled.
func ExampleDefaultPolicy() {
	b := mir.NewBlock("entry").Append(
		&mir.Instr{Opcode: "add", Class: 0, Defs: []mir.Reg{"r1"}},
		&mir.Instr{Opcode: "sub", Class: 1, Defs: []mir.Reg{"r2"}},
	)
	p := packetizer.New(mir.NewFunction("f", b), twoUnitAutomaton(), packetizer.DefaultPolicy{})
	if err := p.Packetize(b, 0, b.Len()); err != nil {
		panic(err)
	}
	fmt.Println(b.NumBundles(), p.Stats().Packets)
	// Output: 0 2
}
