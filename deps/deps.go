// Package deps builds the dependence graph of a scheduling region.
//
// Every instruction of the region becomes a Node. Edges run from an earlier
// instruction to a later one and record why the later one must not issue
// before (or, for VLIW packets, together with) the earlier one:
//   - Data: the later instruction reads a register the earlier one writes
//   - Anti: the later instruction overwrites a register the earlier one reads
//   - Output: both write the same register
//   - Order: memory, call, side-effect and terminator ordering
//
// Order edges that exist only to keep a terminator last are marked
// Artificial. Memory order edges between two memory operations are dropped
// when an AliasAnalysis proves the accesses disjoint.
//
// A Graph is built once per region and is read-only afterwards.
package deps

import (
	"fmt"

	"github.com/coregx/packetizer/internal/sparse"
	"github.com/coregx/packetizer/mir"
)

// Kind classifies a dependence edge
type Kind uint8

const (
	// Data is a true (read-after-write) register dependence
	Data Kind = iota

	// Anti is a write-after-read register dependence
	Anti

	// Output is a write-after-write register dependence
	Output

	// Order is a memory, barrier or control ordering dependence
	Order
)

// String returns a human-readable kind name
func (k Kind) String() string {
	switch k {
	case Data:
		return "data"
	case Anti:
		return "anti"
	case Output:
		return "output"
	case Order:
		return "order"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Edge is one dependence as seen from one of its ends.
// In Node.Succs, Node is the later instruction; in Node.Preds, the earlier.
type Edge struct {
	Node       *Node
	Kind       Kind
	Reg        mir.Reg
	Artificial bool
}

// String returns a human-readable representation of the edge
func (e Edge) String() string {
	s := fmt.Sprintf("%s->%d", e.Kind, e.Node.Num)
	if e.Reg != "" {
		s += "(" + string(e.Reg) + ")"
	}
	if e.Artificial {
		s += "*"
	}
	return s
}

// Node is the dependence graph node of one instruction.
type Node struct {
	Instr *mir.Instr

	// Num is the position of the instruction within the region
	Num int

	Succs []Edge
	Preds []Edge

	succs *sparse.Set
}

// IsSucc reports whether m depends on n (an edge n → m exists).
func (n *Node) IsSucc(m *Node) bool {
	return m != nil && n.succs.Contains(uint32(m.Num)) //nolint:gosec // Num < region length
}

// IsPred reports whether n depends on m (an edge m → n exists).
func (n *Node) IsPred(m *Node) bool {
	return m != nil && m.IsSucc(n)
}

// EdgesTo returns the edges from n to m.
func (n *Node) EdgesTo(m *Node) []Edge {
	if !n.IsSucc(m) {
		return nil
	}
	var edges []Edge
	for _, e := range n.Succs {
		if e.Node == m {
			edges = append(edges, e)
		}
	}
	return edges
}

// String returns a human-readable representation of the node
func (n *Node) String() string {
	return fmt.Sprintf("SU(%d): %s", n.Num, n.Instr)
}

// AliasAnalysis answers whether two memory instructions may access
// overlapping memory. A nil AliasAnalysis means every pair may alias.
type AliasAnalysis interface {
	MayAlias(a, b *mir.Instr) bool
}

// AliasFunc adapts a function to AliasAnalysis
type AliasFunc func(a, b *mir.Instr) bool

// MayAlias calls f(a, b)
func (f AliasFunc) MayAlias(a, b *mir.Instr) bool {
	return f(a, b)
}

// Graph is the dependence graph of a contiguous instruction range.
type Graph struct {
	block *mir.Block
	begin int
	nodes []*Node
	edges int
}

// Node returns the node of in, or nil if in is outside the region.
func (g *Graph) Node(in *mir.Instr) *Node {
	if in == nil || in.Parent() != g.block {
		return nil
	}
	i := in.Index() - g.begin
	if i < 0 || i >= len(g.nodes) {
		return nil
	}
	return g.nodes[i]
}

// HasDependence reports whether i depends on j.
func (g *Graph) HasDependence(j, i *Node) bool {
	return j != nil && j.IsSucc(i)
}

// Nodes returns the nodes in program order.
func (g *Graph) Nodes() []*Node {
	return g.nodes
}

// NumEdges returns the number of dependence edges.
func (g *Graph) NumEdges() int {
	return g.edges
}

// Block returns the block the region belongs to.
func (g *Graph) Block() *mir.Block {
	return g.block
}
