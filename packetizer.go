// Package packetizer groups machine instructions into VLIW issue packets.
//
// A Packetizer walks an instruction range in program order and greedily
// grows the open packet. An instruction joins the packet when the target's
// resource automaton still has a functional unit for it and it does not
// depend on any member (or the target policy says the dependence does not
// matter inside one packet). Otherwise the packet is closed, its members are
// bundled in the block, and a new packet starts with the instruction.
//
// Basic usage:
//
//	tracker, err := resource.New(itins, table, resource.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	p := packetizer.New(fn, tracker, myPolicy{})
//	for _, b := range fn.Blocks {
//	    if err := p.PacketizeBlock(b); err != nil {
//	        return err
//	    }
//	}
//
// Packetizing independent blocks concurrently:
//
//	stats, err := packetizer.Run(ctx, fn, backend, packetizer.RunConfig{Workers: 4})
//
// Packetization never fails on ordinary decisions. In the worst case every
// instruction ends up in its own packet, which is unbundled but correct
// code. The only error is an instruction that does not fit even into an
// empty packet, which means the target description is broken.
package packetizer

import (
	"fmt"
	"log/slog"

	"github.com/coregx/packetizer/deps"
	"github.com/coregx/packetizer/dfa/resource"
	"github.com/coregx/packetizer/mir"
)

// DependencyOracle answers dependence queries for one instruction range.
//
// Node maps an instruction of the range to its dependence node, or nil for
// instructions outside the range. HasDependence reports whether i must not
// issue together with or before j.
type DependencyOracle interface {
	Node(in *mir.Instr) *deps.Node
	HasDependence(j, i *deps.Node) bool
}

// OracleBuilder builds the dependency oracle of b[begin:end].
type OracleBuilder func(b *mir.Block, begin, end int, aa deps.AliasAnalysis) DependencyOracle

// BuildDeps is the default OracleBuilder, backed by deps.Build.
func BuildDeps(b *mir.Block, begin, end int, aa deps.AliasAnalysis) DependencyOracle {
	return deps.Build(b, begin, end, aa)
}

// Option configures a Packetizer.
type Option func(*Packetizer)

// WithAliasAnalysis sets the alias analysis passed to the oracle builder.
func WithAliasAnalysis(aa deps.AliasAnalysis) Option {
	return func(p *Packetizer) {
		p.aa = aa
	}
}

// WithOracleBuilder replaces the dependency oracle builder.
func WithOracleBuilder(build OracleBuilder) Option {
	return func(p *Packetizer) {
		if build != nil {
			p.build = build
		}
	}
}

// withStats makes the Packetizer count into s instead of its own Stats.
func withStats(s *Stats) Option {
	return func(p *Packetizer) {
		if s != nil {
			p.stats = s
		}
	}
}

// WithLogger sets the logger for packet decisions (Debug level).
func WithLogger(l *slog.Logger) Option {
	return func(p *Packetizer) {
		if l != nil {
			p.logger = l
		}
	}
}

// Stats counts packetization outcomes.
type Stats struct {
	// Instrs is the number of instructions examined
	Instrs int
	// Packets is the number of closed non-empty packets
	Packets int
	// Bundles is the number of packets with more than one member
	Bundles int
	// Bundled is the number of instructions placed in bundles
	Bundled int
	// Solo is the number of solo instructions
	Solo int
	// Ignored is the number of instructions left out of packets
	Ignored int
	// ResourceStalls counts packets closed for lack of functional units
	ResourceStalls int
	// DependenceStalls counts packets closed by a dependence
	DependenceStalls int
	// PolicyStalls counts packets closed by ShouldAddToPacket
	PolicyStalls int
}

// Add accumulates o into s.
func (s *Stats) Add(o Stats) {
	s.Instrs += o.Instrs
	s.Packets += o.Packets
	s.Bundles += o.Bundles
	s.Bundled += o.Bundled
	s.Solo += o.Solo
	s.Ignored += o.Ignored
	s.ResourceStalls += o.ResourceStalls
	s.DependenceStalls += o.DependenceStalls
	s.PolicyStalls += o.PolicyStalls
}

// Packetizer forms packets for the blocks of one function.
//
// Thread safety: Not thread-safe. The Packetizer owns the resource
// automaton and the policy; use one Packetizer per goroutine (see Run).
type Packetizer struct {
	fn      *mir.Function
	tracker *resource.Automaton
	policy  Policy
	aa      deps.AliasAnalysis
	build   OracleBuilder
	logger  *slog.Logger

	pkt   Packet
	stats *Stats
	own   Stats
}

// New creates a Packetizer for fn.
// Panics if tracker or policy is nil.
func New(fn *mir.Function, tracker *resource.Automaton, policy Policy, opts ...Option) *Packetizer {
	if tracker == nil {
		panic("packetizer: nil resource tracker")
	}
	if policy == nil {
		panic("packetizer: nil policy")
	}
	p := &Packetizer{
		fn:      fn,
		tracker: tracker,
		policy:  policy,
		build:   BuildDeps,
		logger:  slog.New(slog.DiscardHandler),
	}
	p.stats = &p.own
	for _, opt := range opts {
		opt(p)
	}
	p.pkt.tracker = tracker
	return p
}

// Function returns the function being packetized.
func (p *Packetizer) Function() *mir.Function {
	return p.fn
}

// ResourceTracker returns the resource automaton.
func (p *Packetizer) ResourceTracker() *resource.Automaton {
	return p.tracker
}

// Stats returns the accumulated statistics.
func (p *Packetizer) Stats() Stats {
	return *p.stats
}

// ResetStats clears the accumulated statistics.
func (p *Packetizer) ResetStats() {
	*p.stats = Stats{}
}

// PacketizeBlock packetizes every scheduling region of b.
//
// Terminators and labels split the block. They always issue alone, and
// regions with fewer than two instructions are left untouched.
func (p *Packetizer) PacketizeBlock(b *mir.Block) error {
	begin := 0
	for i := 0; i <= b.Len(); i++ {
		if i < b.Len() && !b.At(i).IsSchedulingBoundary() {
			continue
		}
		if i-begin > 1 {
			if err := p.Packetize(b, begin, i); err != nil {
				return err
			}
		}
		begin = i + 1
	}
	return nil
}

// Packetize bundles b[begin:end] in place.
//
// Returns a non-nil *Error only when an instruction does not fit into an
// empty packet. Panics if the range is outside the block.
func (p *Packetizer) Packetize(b *mir.Block, begin, end int) error {
	if begin < 0 || end > b.Len() || begin > end {
		panic(fmt.Sprintf("packetizer: range [%d, %d) outside block %s of %d instructions",
			begin, end, b.Name, b.Len()))
	}
	oracle := p.build(b, begin, end, p.aa)
	p.logger.Debug("packetize region", "block", b.Name, "begin", begin, "end", end)

	p.beginPacket()
	for i := begin; i < end; i++ {
		in := b.At(i)
		p.stats.Instrs++

		if p.policy.IgnorePseudoInstruction(in, b) {
			p.stats.Ignored++
			continue
		}

		if p.policy.IsSoloInstruction(in) {
			p.endPacket(b, i)
			p.pkt.Append(in)
			p.stats.Solo++
			p.endPacket(b, i)
			continue
		}

		if !p.policy.ShouldAddToPacket(in) && p.pkt.Len() > 0 {
			p.stats.PolicyStalls++
			p.logger.Debug("packet vetoed", "block", b.Name, "at", i, "opcode", in.Opcode)
			p.endPacket(b, i)
		}

		if !p.tracker.CanReserve(in.Class) {
			if p.pkt.Len() > 0 {
				p.stats.ResourceStalls++
				p.logger.Debug("resource stall", "block", b.Name, "at", i, "opcode", in.Opcode,
					"state", p.tracker.State())
			}
			p.endPacket(b, i)
			if !p.tracker.CanReserve(in.Class) {
				return p.unreservable(b, i)
			}
		} else if j := p.blocker(oracle, in); j != nil {
			p.stats.DependenceStalls++
			p.logger.Debug("dependence stall", "block", b.Name, "at", i, "opcode", in.Opcode,
				"on", j.Instr.Opcode)
			p.endPacket(b, i)
			if !p.tracker.CanReserve(in.Class) {
				return p.unreservable(b, i)
			}
		}

		p.policy.AddToPacket(&p.pkt, in)
	}
	p.endPacket(b, end)
	return nil
}

// blocker returns the first packet member whose dependence to in neither
// policy override allows, or nil if in may join the packet.
func (p *Packetizer) blocker(oracle DependencyOracle, in *mir.Instr) *deps.Node {
	ni := oracle.Node(in)
	if ni == nil {
		return nil
	}
	for _, m := range p.pkt.Instrs() {
		nj := oracle.Node(m)
		if nj == nil || !oracle.HasDependence(nj, ni) {
			continue
		}
		if p.policy.IsLegalToPacketizeTogether(nj, ni) {
			continue
		}
		if p.policy.IsLegalToPruneDependencies(nj, ni) {
			continue
		}
		return nj
	}
	return nil
}

// beginPacket opens an empty packet with all resources free.
func (p *Packetizer) beginPacket() {
	p.tracker.Clear()
	p.pkt.reset()
	p.policy.InitPacketizerState()
}

// endPacket closes the open packet, if it has members, and opens the next.
func (p *Packetizer) endPacket(b *mir.Block, at int) {
	if n := p.pkt.Len(); n > 0 {
		p.stats.Packets++
		if n > 1 {
			p.stats.Bundles++
			p.stats.Bundled += n
		}
		p.logger.Debug("packet closed", "block", b.Name, "at", at, "packet", p.pkt.String())
		p.policy.EndPacket(&p.pkt, b, at)
	}
	p.beginPacket()
}

func (p *Packetizer) unreservable(b *mir.Block, i int) error {
	in := b.At(i)
	p.pkt.reset()
	p.tracker.Clear()
	return &Error{
		Block:  b.Name,
		Index:  i,
		Opcode: in.Opcode,
		Err: &resource.Error{
			Kind:    resource.Unreservable,
			Message: resource.ErrUnreservable.Message,
			Cause:   fmt.Errorf("class %d, input %#x", in.Class, p.tracker.Encode(in.Class)),
		},
	}
}
