package packetizer

import (
	"fmt"

	"github.com/coregx/packetizer/dfa/resource"
)

// ErrUnreservable is returned (wrapped in *Error) when an instruction does
// not fit even into an empty packet. It is resource.ErrUnreservable, so
// errors.Is works against either name.
var ErrUnreservable = resource.ErrUnreservable

// Error reports a fatal packetization failure at one instruction.
//
// Packetization never fails on ordinary scheduling decisions; an Error
// always points at a target description bug.
type Error struct {
	Block  string
	Index  int
	Opcode string
	Err    error
}

// Error implements the error interface
func (e *Error) Error() string {
	return fmt.Sprintf("packetizer: block %s, instruction %d (%s): %v", e.Block, e.Index, e.Opcode, e.Err)
}

// Unwrap returns the underlying error (for errors.Is/As)
func (e *Error) Unwrap() error {
	return e.Err
}
