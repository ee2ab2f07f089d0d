package packetizer

import (
	"strings"

	"github.com/coregx/packetizer/dfa/resource"
	"github.com/coregx/packetizer/mir"
)

// Packet is the open packet: the instructions that will issue together in
// one cycle, and the resource automaton tracking what they reserved.
//
// A Packet lives for one Packetize call. The automaton state always equals
// the union of the resources reserved through Add.
type Packet struct {
	instrs  []*mir.Instr
	tracker *resource.Automaton
}

// Add appends in and reserves its resources.
// Callers must have checked that the resources are available.
func (p *Packet) Add(in *mir.Instr) {
	p.tracker.Reserve(in.Class)
	p.instrs = append(p.instrs, in)
}

// Append records in as a member without touching the automaton.
// Policies that reserve resources themselves use it from AddToPacket.
func (p *Packet) Append(in *mir.Instr) {
	p.instrs = append(p.instrs, in)
}

// Instrs returns the members in admission order.
// The returned slice is valid until the packet changes.
func (p *Packet) Instrs() []*mir.Instr {
	return p.instrs
}

// Len returns the number of members.
func (p *Packet) Len() int {
	return len(p.instrs)
}

// Tracker returns the resource automaton of the packet.
func (p *Packet) Tracker() *resource.Automaton {
	return p.tracker
}

// Finalize bundles the members in b (when there are at least two) and
// empties the packet.
func (p *Packet) Finalize(b *mir.Block) {
	b.Bundle(p.instrs)
	p.reset()
}

func (p *Packet) reset() {
	clear(p.instrs)
	p.instrs = p.instrs[:0]
}

// String returns the member opcodes in braces
func (p *Packet) String() string {
	ops := make([]string, len(p.instrs))
	for i, in := range p.instrs {
		ops[i] = in.Opcode
	}
	return "{" + strings.Join(ops, "; ") + "}"
}
