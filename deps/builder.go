package deps

import (
	"fmt"
	"slices"

	"github.com/coregx/packetizer/internal/conv"
	"github.com/coregx/packetizer/internal/sparse"
	"github.com/coregx/packetizer/mir"
)

// barrierFlags mark instructions that order every memory access around them.
const barrierFlags = mir.Call | mir.SideEffects | mir.InlineAsm

// builder holds the per-region bookkeeping while edges are added.
type builder struct {
	g  *Graph
	aa AliasAnalysis

	// lastDef is the most recent writer of each register
	lastDef map[mir.Reg]*Node
	// readers holds the readers of each register since its last write
	readers map[mir.Reg][]*Node

	// barrier is the most recent call or side-effecting instruction
	barrier *Node
	// loads and stores since the last barrier
	loads  []*Node
	stores []*Node
}

// Build constructs the dependence graph of b[begin:end].
// Panics if the range is outside the block.
func Build(b *mir.Block, begin, end int, aa AliasAnalysis) *Graph {
	if begin < 0 || end > b.Len() || begin > end {
		panic(fmt.Sprintf("deps: region [%d, %d) outside block %s of %d instructions",
			begin, end, b.Name, b.Len()))
	}
	n := end - begin
	g := &Graph{
		block: b,
		begin: begin,
		nodes: make([]*Node, n),
	}
	capacity := conv.IntToUint32(n)
	for i := range g.nodes {
		g.nodes[i] = &Node{
			Instr: b.At(begin + i),
			Num:   i,
			succs: sparse.New(capacity),
		}
	}

	bld := &builder{
		g:       g,
		aa:      aa,
		lastDef: make(map[mir.Reg]*Node),
		readers: make(map[mir.Reg][]*Node),
	}
	for _, node := range g.nodes {
		bld.addRegisterDeps(node)
		bld.addMemoryDeps(node)
		bld.addTerminatorDeps(node)
	}
	return g
}

// addEdge records from → to.
func (bld *builder) addEdge(from, to *Node, kind Kind, reg mir.Reg, artificial bool) {
	if from == to {
		return
	}
	from.Succs = append(from.Succs, Edge{Node: to, Kind: kind, Reg: reg, Artificial: artificial})
	to.Preds = append(to.Preds, Edge{Node: from, Kind: kind, Reg: reg, Artificial: artificial})
	from.succs.Insert(uint32(to.Num)) //nolint:gosec // Num < region length
	bld.g.edges++
}

func (bld *builder) addRegisterDeps(node *Node) {
	in := node.Instr
	for _, r := range in.Uses {
		if def, ok := bld.lastDef[r]; ok {
			bld.addEdge(def, node, Data, r, false)
		}
	}
	for _, r := range in.Defs {
		for _, reader := range bld.readers[r] {
			bld.addEdge(reader, node, Anti, r, false)
		}
		if def, ok := bld.lastDef[r]; ok {
			bld.addEdge(def, node, Output, r, false)
		}
	}
	for _, r := range in.Defs {
		bld.lastDef[r] = node
		delete(bld.readers, r)
	}
	for _, r := range in.Uses {
		if !slices.Contains(in.Defs, r) {
			bld.readers[r] = append(bld.readers[r], node)
		}
	}
}

func (bld *builder) addMemoryDeps(node *Node) {
	in := node.Instr
	if in.Flags&barrierFlags == 0 && !in.IsMemory() {
		return
	}
	switch {
	case in.Flags&barrierFlags != 0:
		if bld.barrier != nil {
			bld.addEdge(bld.barrier, node, Order, "", false)
		}
		for _, m := range bld.loads {
			bld.addEdge(m, node, Order, "", false)
		}
		for _, m := range bld.stores {
			bld.addEdge(m, node, Order, "", false)
		}
		bld.barrier = node
		bld.loads = bld.loads[:0]
		bld.stores = bld.stores[:0]

	case in.Is(mir.MayStore):
		bld.orderAfterBarrier(node)
		bld.orderAfter(node, bld.stores)
		bld.orderAfter(node, bld.loads)
		bld.stores = append(bld.stores, node)

	default:
		bld.orderAfterBarrier(node)
		bld.orderAfter(node, bld.stores)
		bld.loads = append(bld.loads, node)
	}
}

func (bld *builder) orderAfterBarrier(node *Node) {
	if bld.barrier != nil {
		bld.addEdge(bld.barrier, node, Order, "", false)
	}
}

// orderAfter adds order edges from each earlier access that may alias node.
func (bld *builder) orderAfter(node *Node, earlier []*Node) {
	for _, m := range earlier {
		if bld.aa == nil || bld.aa.MayAlias(m.Instr, node.Instr) {
			bld.addEdge(m, node, Order, "", false)
		}
	}
}

// addTerminatorDeps keeps terminators after every other instruction of the
// region with artificial order edges where no real dependence exists.
func (bld *builder) addTerminatorDeps(node *Node) {
	if !node.Instr.Is(mir.Terminator) {
		return
	}
	for _, m := range bld.g.nodes[:node.Num] {
		if !m.IsSucc(node) {
			bld.addEdge(m, node, Order, "", true)
		}
	}
}
