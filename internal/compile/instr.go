// Package compile turns a flattened Structure into the register-machine
// instruction stream that either builds a term on the heap (query side)
// or matches one against existing heap cells (program side), per §4.2-§4.4.
package compile

import "github.com/remexre/wam-tutorial-reconstruction/internal/term"

// Op identifies an instruction's operation.
type Op int

const (
	OpPutStructure Op = iota
	OpSetVariable
	OpSetValue
	OpGetStructure
	OpUnifyVariable
	OpUnifyValue
	OpPutVariable
	OpPutValue
	OpGetVariable
	OpGetValue
	OpCall
	OpProceed
	OpAllocate
	OpDeallocate
)

func (op Op) String() string {
	switch op {
	case OpPutStructure:
		return "put_structure"
	case OpSetVariable:
		return "set_variable"
	case OpSetValue:
		return "set_value"
	case OpGetStructure:
		return "get_structure"
	case OpUnifyVariable:
		return "unify_variable"
	case OpUnifyValue:
		return "unify_value"
	case OpPutVariable:
		return "put_variable"
	case OpPutValue:
		return "put_value"
	case OpGetVariable:
		return "get_variable"
	case OpGetValue:
		return "get_value"
	case OpCall:
		return "call"
	case OpProceed:
		return "proceed"
	case OpAllocate:
		return "allocate"
	case OpDeallocate:
		return "deallocate"
	default:
		return "?"
	}
}

// Location is where a temporary or permanent variable's heap address
// lives: a register (temporary, scoped to one goal) or a slot in the
// current local-stack frame (permanent, M2 only).
type Location struct {
	Perm  bool
	Index int
}

// Register builds a temporary register location.
func Register(n int) Location { return Location{Index: n} }

// Local builds a permanent-slot location.
func Local(n int) Location { return Location{Perm: true, Index: n} }

func (l Location) String() string {
	if l.Perm {
		return "Y" + itoa(l.Index)
	}
	return "X" + itoa(l.Index)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := [20]byte{}
	i := len(digits)
	for n > 0 {
		i--
		digits[i] = byte('0' + n%10)
		n /= 10
	}
	return string(digits[i:])
}

// Instruction is one bytecode instruction. Not every field applies to
// every Op; see the Op-specific constructors below.
type Instruction struct {
	Op      Op
	Functor term.Functor // OpPutStructure, OpGetStructure, OpCall
	Dest    Location     // most ops
	ArgReg  int          // OpPut*/OpGet* only: the call's argument-register index
	N       int          // OpAllocate: permanent variable count
}

func PutStructure(f term.Functor, dest Location) Instruction {
	return Instruction{Op: OpPutStructure, Functor: f, Dest: dest}
}

func SetVariable(dest Location) Instruction {
	return Instruction{Op: OpSetVariable, Dest: dest}
}

func SetValue(dest Location) Instruction {
	return Instruction{Op: OpSetValue, Dest: dest}
}

func GetStructure(f term.Functor, dest Location) Instruction {
	return Instruction{Op: OpGetStructure, Functor: f, Dest: dest}
}

func UnifyVariable(dest Location) Instruction {
	return Instruction{Op: OpUnifyVariable, Dest: dest}
}

func UnifyValue(dest Location) Instruction {
	return Instruction{Op: OpUnifyValue, Dest: dest}
}

func PutVariable(dest Location, argReg int) Instruction {
	return Instruction{Op: OpPutVariable, Dest: dest, ArgReg: argReg}
}

func PutValue(dest Location, argReg int) Instruction {
	return Instruction{Op: OpPutValue, Dest: dest, ArgReg: argReg}
}

func GetVariable(dest Location, argReg int) Instruction {
	return Instruction{Op: OpGetVariable, Dest: dest, ArgReg: argReg}
}

func GetValue(dest Location, argReg int) Instruction {
	return Instruction{Op: OpGetValue, Dest: dest, ArgReg: argReg}
}

func Call(f term.Functor) Instruction {
	return Instruction{Op: OpCall, Functor: f}
}

func Proceed() Instruction {
	return Instruction{Op: OpProceed}
}

func Allocate(n int) Instruction {
	return Instruction{Op: OpAllocate, N: n}
}

func Deallocate() Instruction {
	return Instruction{Op: OpDeallocate}
}
