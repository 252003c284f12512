// Package heap implements the tagged-cell heap (§4.5) every machine
// variant runs its registers and local stack against: an
// index-addressable array of cells, reset between queries by truncating
// rather than by walking and freeing individual allocations.
package heap

import (
	"fmt"

	"github.com/remexre/wam-tutorial-reconstruction/internal/term"
)

// Address is an index into the heap.
type Address int

type kind int

const (
	kindFunctor kind = iota
	kindRef
	kindStr
)

// Cell is one heap entry. A Functor cell names a structure's functor and
// is always immediately followed by its argument cells; a Ref cell is a
// variable binding, self-referential when unbound; a Str cell is how
// every other cell refers to a structure, by the address of its Functor
// cell rather than holding it inline.
type Cell struct {
	kind    kind
	functor term.Functor
	ref     Address
}

// Heap is the tagged-cell store every machine variant runs against.
// Addresses are never reused across queries within one Reset cycle, and
// cells are never freed individually — Reset truncates the whole heap
// back to empty, which is the only GC this system does (backtracking
// and garbage collection proper are out of scope; see spec Non-goals).
type Heap struct {
	cells []Cell
}

// New returns an empty heap.
func New() *Heap {
	return &Heap{}
}

// Reset truncates the heap to empty, ready for the next query.
func (h *Heap) Reset() {
	h.cells = h.cells[:0]
}

// Len returns the address one past the last allocated cell, i.e. where
// the next Alloc will land.
func (h *Heap) Len() Address {
	return Address(len(h.cells))
}

func (h *Heap) push(c Cell) Address {
	a := Address(len(h.cells))
	h.cells = append(h.cells, c)
	return a
}

// PushFunctor allocates a Functor cell naming f.
func (h *Heap) PushFunctor(f term.Functor) Address {
	return h.push(Cell{kind: kindFunctor, functor: f})
}

// PushStr allocates a Str cell pointing at target.
func (h *Heap) PushStr(target Address) Address {
	return h.push(Cell{kind: kindStr, ref: target})
}

// PushRef allocates a Ref cell pointing at target. Passing the address
// push will return (Len()) makes the new cell self-referential, i.e.
// unbound; AllocUnboundRef does exactly that.
func (h *Heap) PushRef(target Address) Address {
	return h.push(Cell{kind: kindRef, ref: target})
}

// AllocUnboundRef allocates a fresh unbound variable cell: a Ref whose
// target is its own address.
func (h *Heap) AllocUnboundRef() Address {
	a := Address(len(h.cells))
	h.cells = append(h.cells, Cell{kind: kindRef, ref: a})
	return a
}

// Copy duplicates the cell at src onto the top of the heap and returns
// its new address, the operation SetValue/UnifyValue's write-mode case
// uses to place an existing term where a structure argument is expected
// without aliasing the original cell.
func (h *Heap) Copy(src Address) Address {
	return h.push(h.cells[src])
}

// IsRef reports whether the cell at a (not yet dereferenced) is a Ref.
func (h *Heap) IsRef(a Address) bool {
	return h.cells[a].kind == kindRef
}

// IsUnbound reports whether the cell at a is an unbound (self-pointing) Ref.
func (h *Heap) IsUnbound(a Address) bool {
	c := h.cells[a]
	return c.kind == kindRef && c.ref == a
}

// IsStr reports whether the cell at a is a Str.
func (h *Heap) IsStr(a Address) bool {
	return h.cells[a].kind == kindStr
}

// StrTarget returns the Functor-cell address a Str cell points at. It
// panics if a is not a Str cell: callers must check IsStr first, per
// the §4.6 invariant that reading a term's shape through the wrong cell
// kind is an internal error, not a Prolog-level failure.
func (h *Heap) StrTarget(a Address) Address {
	c := h.cells[a]
	if c.kind != kindStr {
		panic(fmt.Sprintf("heap: address %d is not a Str cell", a))
	}
	return c.ref
}

// GetFunctor returns the functor named by the Functor cell at a. It
// panics if a is not a Functor cell (§4.5's get_functor: "aborts if not
// Functor").
func (h *Heap) GetFunctor(a Address) term.Functor {
	c := h.cells[a]
	if c.kind != kindFunctor {
		panic(fmt.Sprintf("heap: address %d is not a Functor cell", a))
	}
	return c.functor
}

// Deref follows a chain of Ref cells to its end: either a self-pointing
// (unbound) Ref or a non-Ref cell. The chain is always finite and
// terminating because bind never creates a cycle among Ref cells
// themselves (§4.5) — the only cycle this system allows is a bound
// variable pointing into a structure that contains it, which Deref
// never walks into since it only follows Ref cells.
func (h *Heap) Deref(a Address) Address {
	for {
		c := h.cells[a]
		if c.kind != kindRef || c.ref == a {
			return a
		}
		a = c.ref
	}
}

// Bind unifies two already-dereferenced addresses by pointing one's Ref
// cell at the other. At least one side must be an unbound Ref; binding
// two non-Ref cells, or two already-bound addresses, is a compiler bug
// and panics. When both sides are unbound the tie-break is deterministic
// (the newer cell, at the higher address, points at the older one) so
// that repeated runs over the same program produce byte-identical
// heaps, which the test suite relies on for exact comparisons.
func (h *Heap) Bind(a, b Address) {
	if a == b {
		return
	}
	aFree := h.IsUnbound(a)
	bFree := h.IsUnbound(b)
	switch {
	case aFree && bFree:
		if a > b {
			h.cells[a] = Cell{kind: kindRef, ref: b}
		} else {
			h.cells[b] = Cell{kind: kindRef, ref: a}
		}
	case aFree:
		h.cells[a] = Cell{kind: kindRef, ref: b}
	case bFree:
		h.cells[b] = Cell{kind: kindRef, ref: a}
	default:
		panic(fmt.Sprintf("heap: bind(%d, %d): neither side is an unbound variable", a, b))
	}
}

type pair struct {
	a, b Address
}

// Unify runs the push-down-list unification algorithm of §4.6 against
// addresses a and b. It performs no occurs check: binding a variable
// into a structure that contains it succeeds and leaves a genuine cycle
// in the heap. Nothing here walks that cycle so Unify itself always
// terminates, but callers must never run answer extraction over a heap
// containing one.
//
// A mismatched functor, or a functor of the right name but wrong arity,
// fails unification (it does not panic) — this is ordinary negative
// output, kind 4 of §7's error taxonomy, not an internal error.
func (h *Heap) Unify(a, b Address) bool {
	stack := []pair{{a, b}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		da, db := h.Deref(p.a), h.Deref(p.b)
		if da == db {
			continue
		}

		ca, cb := h.cells[da], h.cells[db]
		if ca.kind == kindStr && cb.kind == kindStr {
			fa, fb := h.GetFunctor(ca.ref), h.GetFunctor(cb.ref)
			if fa != fb {
				return false
			}
			// Arguments sit at offsets 1..arity from the Functor cell,
			// inclusive on both ends: stopping at arity-1 (the classical
			// off-by-one here) silently drops the last argument pair.
			for i := 1; i <= fa.Arity; i++ {
				stack = append(stack, pair{ca.ref + Address(i), cb.ref + Address(i)})
			}
			continue
		}

		h.Bind(da, db)
	}
	return true
}
