// Package machine implements the register-based interpreter (§4.6) that
// runs compiled instruction streams against a heap: the shared
// execution core behind all three machine variants (M0 pure
// unification, M1 flat fact tables, M2 rules with bodies). The variants
// differ only in which compiler produced their code and which opcodes
// that code can therefore contain, not in how the core steps.
package machine

import (
	"fmt"
	"sort"

	"golang.org/x/exp/maps"

	"github.com/remexre/wam-tutorial-reconstruction/internal/compile"
	"github.com/remexre/wam-tutorial-reconstruction/internal/heap"
	"github.com/remexre/wam-tutorial-reconstruction/internal/term"
	"github.com/remexre/wam-tutorial-reconstruction/internal/wamerr"
)

// mode is the interpreter's read/write flag (§4.6), selecting whether a
// Unify* instruction matches an existing structure's arguments or
// constructs fresh ones.
type mode int

const (
	modeRead mode = iota
	modeWrite
)

// Machine is one runnable instance of the interpreter core: a heap, a
// register file, a local stack, and a compiled instruction stream with
// its predicate label table. It executes exactly one query per Run call
// and is reset before the next.
type Machine struct {
	Heap   *heap.Heap
	regs   registers
	locals localStack
	code   []compile.Instruction
	labels map[term.Functor]int

	pc, cp int
	s      heap.Address
	mode   mode
	fail   bool
}

// New builds a Machine over an assembled instruction stream and label
// table. The caller (the per-variant constructors in the wam package)
// is responsible for compiling code with only the opcodes that variant
// supports.
func New(code []compile.Instruction, labels map[term.Functor]int) *Machine {
	return &Machine{
		Heap:   heap.New(),
		code:   code,
		labels: labels,
	}
}

// Reset clears all per-query state so the Machine can run again: the
// heap is truncated rather than walked (§3's "Heap cells live for one
// query" lifecycle), registers and the local stack are cleared, and the
// interpreter flags return to their initial values.
func (m *Machine) Reset() {
	m.Heap.Reset()
	m.regs.reset()
	m.locals.reset()
	m.pc, m.cp = 0, 0
	m.s = 0
	m.mode = modeRead
	m.fail = false
}

// RegisterCount reports the high-water mark of registers this Machine
// has grown into over its lifetime, for Stats()-style introspection.
func (m *Machine) RegisterCount() int { return m.regs.count() }

// Run executes the instruction stream starting at pc until it falls off
// the end of the code array (success) or the fail flag is set
// (unification failure, §7 kind 4 — not an error). It returns
// ErrNoAnswers on failure and a *wamerr.UndefinedPredicateError if a
// Call targets an undefined functor/arity.
func (m *Machine) Run(startPC int) error {
	m.pc = startPC
	for m.pc < len(m.code) {
		if m.pc < 0 {
			panic(fmt.Sprintf("machine: program counter %d out of range", m.pc))
		}
		instr := m.code[m.pc]
		m.pc++
		if err := m.step(instr); err != nil {
			return err
		}
		if m.fail {
			return wamerr.ErrNoAnswers
		}
	}
	return nil
}

func (m *Machine) readLoc(loc compile.Location) heap.Address {
	if loc.Perm {
		return m.locals.read(loc.Index)
	}
	return m.regs.read(loc.Index)
}

func (m *Machine) writeLoc(loc compile.Location, a heap.Address) {
	if loc.Perm {
		m.locals.write(loc.Index, a)
		return
	}
	m.regs.write(loc.Index, a)
}

func (m *Machine) step(instr compile.Instruction) error {
	switch instr.Op {
	case compile.OpPutStructure:
		k := m.Heap.Len()
		m.Heap.PushStr(k + 1)
		m.Heap.PushFunctor(instr.Functor)
		m.writeLoc(instr.Dest, k)

	case compile.OpSetVariable:
		k := m.Heap.AllocUnboundRef()
		m.writeLoc(instr.Dest, k)

	case compile.OpSetValue:
		m.Heap.Copy(m.readLoc(instr.Dest))

	case compile.OpGetStructure:
		m.execGetStructure(instr)

	case compile.OpUnifyVariable:
		switch m.mode {
		case modeRead:
			m.writeLoc(instr.Dest, m.s)
		case modeWrite:
			k := m.Heap.AllocUnboundRef()
			m.writeLoc(instr.Dest, k)
		}
		m.s++

	case compile.OpUnifyValue:
		switch m.mode {
		case modeRead:
			if !m.Heap.Unify(m.readLoc(instr.Dest), m.s) {
				m.fail = true
			}
		case modeWrite:
			m.Heap.Copy(m.readLoc(instr.Dest))
		}
		m.s++

	case compile.OpPutVariable:
		k := m.Heap.AllocUnboundRef()
		m.writeLoc(instr.Dest, k)
		m.regs.write(instr.ArgReg, k)

	case compile.OpPutValue:
		a := m.readLoc(instr.Dest)
		m.regs.write(instr.ArgReg, a)

	case compile.OpGetVariable:
		a := m.regs.read(instr.ArgReg)
		m.writeLoc(instr.Dest, a)

	case compile.OpGetValue:
		a := m.regs.read(instr.ArgReg)
		if !m.Heap.Unify(m.readLoc(instr.Dest), a) {
			m.fail = true
		}

	case compile.OpCall:
		target, ok := m.labels[instr.Functor]
		if !ok {
			return undefinedPredicate(instr.Functor, m.labels)
		}
		m.cp = m.pc
		m.pc = target

	case compile.OpProceed:
		m.pc = m.cp

	case compile.OpAllocate:
		m.locals.push(instr.N, m.cp)

	case compile.OpDeallocate:
		m.cp = m.locals.pop()
		m.pc = m.cp

	default:
		panic(fmt.Sprintf("machine: unknown opcode %v", instr.Op))
	}
	return nil
}

func (m *Machine) execGetStructure(instr compile.Instruction) {
	a := m.Heap.Deref(m.readLoc(instr.Dest))
	switch {
	case m.Heap.IsUnbound(a):
		k := m.Heap.Len()
		strAddr := m.Heap.PushStr(k + 1)
		m.Heap.PushFunctor(instr.Functor)
		m.Heap.Bind(a, strAddr)
		m.mode = modeWrite
	case m.Heap.IsStr(a):
		functorAddr := m.Heap.StrTarget(a)
		if m.Heap.GetFunctor(functorAddr) != instr.Functor {
			m.fail = true
			return
		}
		m.s = functorAddr + 1
		m.mode = modeRead
	default:
		panic(fmt.Sprintf("machine: GetStructure against non-Ref, non-Str cell at address %d", a))
	}
}

func undefinedPredicate(f term.Functor, labels map[term.Functor]int) error {
	defined := make([]string, 0, len(labels))
	for _, fn := range maps.Keys(labels) {
		defined = append(defined, fn.String())
	}
	sort.Strings(defined)
	return &wamerr.UndefinedPredicateError{Indicator: f.String(), Defined: defined}
}
