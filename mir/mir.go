// Package mir provides the machine IR containers the packetizer works on:
// instructions with their scheduling class, register operands and flags,
// basic blocks that record bundle membership, and functions.
//
// The containers are deliberately small. A block is an ordered, mutable
// instruction sequence; bundling an instruction group stamps its members
// with a shared bundle ID without moving them.
package mir

import (
	"fmt"
	"strings"

	"github.com/coregx/packetizer/dfa/resource"
)

// NoClass marks an instruction without a scheduling class. Such an
// instruction reserves no functional unit.
const NoClass = resource.NoClass

// Reg names a register operand.
type Reg string

// Flag describes a property of an instruction.
type Flag uint32

// Instruction flags
const (
	// Pseudo marks debug values and other instructions that emit no code
	Pseudo Flag = 1 << iota
	// Call marks calls
	Call
	// Return marks returns
	Return
	// Branch marks any branch
	Branch
	// CondBranch marks a conditional branch (set together with Branch)
	CondBranch
	// Terminator marks block terminators
	Terminator
	// Label marks labels (EH labels, block labels)
	Label
	// InlineAsm marks inline assembly
	InlineAsm
	// MayLoad marks instructions that may read memory
	MayLoad
	// MayStore marks instructions that may write memory
	MayStore
	// SideEffects marks instructions with unmodeled side effects
	SideEffects
)

var flagNames = []struct {
	flag Flag
	name string
}{
	{Pseudo, "pseudo"},
	{Call, "call"},
	{Return, "return"},
	{Branch, "branch"},
	{CondBranch, "cond-branch"},
	{Terminator, "terminator"},
	{Label, "label"},
	{InlineAsm, "inline-asm"},
	{MayLoad, "load"},
	{MayStore, "store"},
	{SideEffects, "side-effects"},
}

// ParseFlag returns the flag with the given name.
func ParseFlag(name string) (Flag, bool) {
	for _, fn := range flagNames {
		if fn.name == name {
			return fn.flag, true
		}
	}
	return 0, false
}

// String returns the flag names joined with '|'
func (f Flag) String() string {
	if f == 0 {
		return "none"
	}
	var names []string
	for _, fn := range flagNames {
		if f&fn.flag != 0 {
			names = append(names, fn.name)
		}
	}
	return strings.Join(names, "|")
}

// Instr is a machine instruction.
type Instr struct {
	// Opcode is the target mnemonic
	Opcode string

	// Class is the scheduling class (itinerary index) or NoClass
	Class int

	// Defs and Uses are the registers written and read
	Defs []Reg
	Uses []Reg

	// Imm is the immediate operand when HasImm is set
	Imm    int64
	HasImm bool

	// Flags describe control flow, memory and pseudo properties
	Flags Flag

	parent *Block
	index  int
	bundle int
}

// Is reports whether every flag in f is set.
func (in *Instr) Is(f Flag) bool {
	return in.Flags&f == f
}

// Parent returns the block the instruction belongs to, or nil.
func (in *Instr) Parent() *Block {
	return in.parent
}

// Index returns the instruction's position in its block.
func (in *Instr) Index() int {
	return in.index
}

// Bundle returns the bundle ID of the instruction, or 0 if it is not part
// of a multi-instruction bundle.
func (in *Instr) Bundle() int {
	return in.bundle
}

// IsBundled reports whether the instruction shares a bundle with others.
func (in *Instr) IsBundled() bool {
	return in.bundle != 0
}

// IsSchedulingBoundary reports whether the instruction splits its block
// into separate scheduling regions.
func (in *Instr) IsSchedulingBoundary() bool {
	return in.Flags&(Terminator|Label) != 0
}

// IsMemory reports whether the instruction may touch memory.
func (in *Instr) IsMemory() bool {
	return in.Flags&(MayLoad|MayStore) != 0
}

// String returns a one-line assembly-like rendering
func (in *Instr) String() string {
	var b strings.Builder
	b.WriteString(in.Opcode)
	sep := " "
	for _, r := range in.Defs {
		b.WriteString(sep)
		b.WriteString(string(r))
		sep = ", "
	}
	if len(in.Defs) > 0 && (len(in.Uses) > 0 || in.HasImm) {
		b.WriteString(" =")
		sep = " "
	}
	for _, r := range in.Uses {
		b.WriteString(sep)
		b.WriteString(string(r))
		sep = ", "
	}
	if in.HasImm {
		fmt.Fprintf(&b, "%s%d", sep, in.Imm)
	}
	return b.String()
}

// Block is a basic block: an ordered instruction sequence with bundle marks.
//
// Blocks are not safe for concurrent mutation; distinct blocks of one
// function can be bundled concurrently.
type Block struct {
	Name string

	instrs  []*Instr
	bundles int
}

// NewBlock creates an empty block.
func NewBlock(name string) *Block {
	return &Block{Name: name}
}

// Append adds instructions at the end of the block and returns the block.
// Panics if an instruction already belongs to a block.
func (b *Block) Append(instrs ...*Instr) *Block {
	for _, in := range instrs {
		if in.parent != nil {
			panic(fmt.Sprintf("mir: %s already belongs to block %s", in.Opcode, in.parent.Name))
		}
		in.parent = b
		in.index = len(b.instrs)
		b.instrs = append(b.instrs, in)
	}
	return b
}

// Len returns the number of instructions.
func (b *Block) Len() int {
	return len(b.instrs)
}

// At returns the instruction at position i.
func (b *Block) At(i int) *Instr {
	return b.instrs[i]
}

// Instrs returns the instructions in program order.
// The returned slice must not be modified.
func (b *Block) Instrs() []*Instr {
	return b.instrs
}

// Bundle groups members into one bundle. Groups of fewer than two
// instructions are left unbundled. Panics if a member belongs to another
// block or is already bundled.
func (b *Block) Bundle(members []*Instr) {
	if len(members) < 2 {
		return
	}
	for _, in := range members {
		if in.parent != b {
			panic(fmt.Sprintf("mir: bundling %s outside its block %s", in.Opcode, b.Name))
		}
		if in.bundle != 0 {
			panic(fmt.Sprintf("mir: %s at %d is already in bundle %d", in.Opcode, in.index, in.bundle))
		}
	}
	b.bundles++
	for _, in := range members {
		in.bundle = b.bundles
	}
}

// Unbundle clears every bundle mark in the block.
func (b *Block) Unbundle() {
	for _, in := range b.instrs {
		in.bundle = 0
	}
	b.bundles = 0
}

// NumBundles returns the number of multi-instruction bundles.
func (b *Block) NumBundles() int {
	return b.bundles
}

// Packets returns the issue groups of the block in program order of their
// first instruction. Every instruction appears in exactly one group;
// unbundled instructions form singleton groups.
func (b *Block) Packets() [][]*Instr {
	var (
		groups [][]*Instr
		slot   = make(map[int]int)
	)
	for _, in := range b.instrs {
		if in.bundle == 0 {
			groups = append(groups, []*Instr{in})
			continue
		}
		if g, ok := slot[in.bundle]; ok {
			groups[g] = append(groups[g], in)
			continue
		}
		slot[in.bundle] = len(groups)
		groups = append(groups, []*Instr{in})
	}
	return groups
}

// Function is an ordered list of basic blocks.
type Function struct {
	Name   string
	Blocks []*Block
}

// NewFunction creates a function with the given blocks.
func NewFunction(name string, blocks ...*Block) *Function {
	return &Function{Name: name, Blocks: blocks}
}

// NumInstrs returns the number of instructions across all blocks.
func (f *Function) NumInstrs() int {
	n := 0
	for _, b := range f.Blocks {
		n += b.Len()
	}
	return n
}
