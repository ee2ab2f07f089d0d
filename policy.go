package packetizer

import (
	"github.com/coregx/packetizer/deps"
	"github.com/coregx/packetizer/mir"
)

// Policy is the target hook set consulted by the Packetizer.
//
// Targets embed DefaultPolicy and override the hooks they need. The
// Packetizer calls the hooks in a fixed order for every instruction:
//
//	IgnorePseudoInstruction → IsSoloInstruction → ShouldAddToPacket →
//	(resource check) → IsLegalToPacketizeTogether / IsLegalToPruneDependencies
//	→ AddToPacket
//
// IsLegalToPacketizeTogether and IsLegalToPruneDependencies are only asked
// about pairs the dependency oracle reports as dependent. j is the member of
// the open packet, i the candidate.
//
// A Policy belongs to one Packetizer and is not safe for concurrent use.
type Policy interface {
	// InitPacketizerState runs every time a new packet is opened.
	InitPacketizerState()

	// IgnorePseudoInstruction reports whether in is left out of packets
	// entirely. Ignored instructions do not close the open packet.
	IgnorePseudoInstruction(in *mir.Instr, b *mir.Block) bool

	// IsSoloInstruction reports whether in must issue alone.
	IsSoloInstruction(in *mir.Instr) bool

	// ShouldAddToPacket can veto adding in to the open packet. A veto
	// closes the packet and starts the next one with in.
	ShouldAddToPacket(in *mir.Instr) bool

	// IsLegalToPacketizeTogether reports whether i may join j's packet
	// despite a dependence from j to i.
	IsLegalToPacketizeTogether(j, i *deps.Node) bool

	// IsLegalToPruneDependencies reports whether the dependence from j to i
	// can be dropped because packet order already enforces it.
	IsLegalToPruneDependencies(j, i *deps.Node) bool

	// AddToPacket records in as a member of pkt and reserves its resources.
	AddToPacket(pkt *Packet, in *mir.Instr)

	// EndPacket finalizes pkt in b. at is the position of the instruction
	// that caused the packet to close, or the end of the range.
	EndPacket(pkt *Packet, b *mir.Block, at int)
}

// DefaultPolicy implements every Policy hook with the conservative default:
// each instruction is solo, so nothing is ever bundled.
type DefaultPolicy struct{}

// InitPacketizerState does nothing.
func (DefaultPolicy) InitPacketizerState() {}

// IgnorePseudoInstruction returns false.
func (DefaultPolicy) IgnorePseudoInstruction(*mir.Instr, *mir.Block) bool { return false }

// IsSoloInstruction returns true.
func (DefaultPolicy) IsSoloInstruction(*mir.Instr) bool { return true }

// ShouldAddToPacket returns true.
func (DefaultPolicy) ShouldAddToPacket(*mir.Instr) bool { return true }

// IsLegalToPacketizeTogether returns false.
func (DefaultPolicy) IsLegalToPacketizeTogether(_, _ *deps.Node) bool { return false }

// IsLegalToPruneDependencies returns false.
func (DefaultPolicy) IsLegalToPruneDependencies(_, _ *deps.Node) bool { return false }

// AddToPacket appends in to pkt and reserves its resources.
func (DefaultPolicy) AddToPacket(pkt *Packet, in *mir.Instr) {
	pkt.Add(in)
}

// EndPacket bundles the members of pkt in b and clears the packet.
func (DefaultPolicy) EndPacket(pkt *Packet, b *mir.Block, _ int) {
	pkt.Finalize(b)
}

var _ Policy = DefaultPolicy{}
