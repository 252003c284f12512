package heap_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/remexre/wam-tutorial-reconstruction/internal/heap"
	"github.com/remexre/wam-tutorial-reconstruction/internal/term"
)

// reconstruct renders the term rooted at a as Prolog source, rendering
// any still-unbound variable as "_" since the symmetry property below
// only cares about shape, not binding identity.
func reconstruct(h *heap.Heap, a heap.Address) string {
	a = h.Deref(a)
	if !h.IsStr(a) {
		return "_"
	}
	fa := h.StrTarget(a)
	f := h.GetFunctor(fa)
	if f.Arity == 0 {
		return f.Name.String()
	}
	parts := make([]string, f.Arity)
	for i := 0; i < f.Arity; i++ {
		parts[i] = reconstruct(h, fa+1+heap.Address(i))
	}
	return f.Name.String() + "(" + strings.Join(parts, ",") + ")"
}

func TestDerefUnboundIsSelf(t *testing.T) {
	h := heap.New()
	a := h.AllocUnboundRef()
	require.Equal(t, a, h.Deref(a))
	require.True(t, h.IsUnbound(a))
}

func TestBindChainDeref(t *testing.T) {
	h := heap.New()
	a := h.AllocUnboundRef()
	b := h.AllocUnboundRef()
	c := h.AllocUnboundRef()

	h.Bind(b, a)
	h.Bind(c, b)

	require.Equal(t, h.Deref(a), h.Deref(c))
}

func TestBindNewerPointsAtOlder(t *testing.T) {
	h := heap.New()
	older := h.AllocUnboundRef()
	newer := h.AllocUnboundRef()

	h.Bind(newer, older)
	require.Equal(t, older, h.Deref(newer))
	require.Equal(t, older, h.Deref(older))
}

func structCell(h *heap.Heap, f term.Functor) heap.Address {
	fn := h.Len()
	h.PushFunctor(f)
	return h.PushStr(fn)
}

func TestUnifyAtomsEqualFunctorSucceeds(t *testing.T) {
	h := heap.New()
	left := structCell(h, term.Functor{Name: term.NewAtom("foo"), Arity: 0})
	right := structCell(h, term.Functor{Name: term.NewAtom("foo"), Arity: 0})
	require.True(t, h.Unify(left, right))
}

func TestUnifyMismatchedFunctorFails(t *testing.T) {
	h := heap.New()
	left := structCell(h, term.Functor{Name: term.NewAtom("foo"), Arity: 0})
	right := structCell(h, term.Functor{Name: term.NewAtom("bar"), Arity: 0})
	require.False(t, h.Unify(left, right))
}

// TestUnifyVariableWithStructureBindsAllArgs builds f(X, Y) against
// f(a, b) and checks that both X and Y end up bound, exercising the
// inclusive 1..=arity argument loop for a two-argument functor.
func TestUnifyVariableWithStructureBindsAllArgs(t *testing.T) {
	h := heap.New()

	// Sub-structures for the right-hand side must exist before the
	// parent functor cell, since its argument slots are Str cells
	// pointing at them, not the sub-structures spliced inline.
	aFunc := h.Len()
	h.PushFunctor(term.Functor{Name: term.NewAtom("a"), Arity: 0})
	bFunc := h.Len()
	h.PushFunctor(term.Functor{Name: term.NewAtom("b"), Arity: 0})

	fFunc := h.Len()
	h.PushFunctor(term.Functor{Name: term.NewAtom("f"), Arity: 2})
	x := h.AllocUnboundRef()
	y := h.AllocUnboundRef()
	left := h.PushStr(fFunc)

	gFunc := h.Len()
	h.PushFunctor(term.Functor{Name: term.NewAtom("f"), Arity: 2})
	argA := h.PushStr(aFunc)
	argB := h.PushStr(bFunc)
	right := h.PushStr(gFunc)

	require.True(t, h.Unify(left, right))
	require.Equal(t, h.Deref(x), h.Deref(argA))
	require.Equal(t, h.Deref(y), h.Deref(argB))
}

// TestUnifyCyclicBindingTerminates confirms that binding a variable into
// a structure containing it succeeds and Unify itself still returns: it
// never walks back into the cycle it just created, since it only follows
// Ref cells and bind writes exactly one.
func TestUnifyCyclicBindingTerminates(t *testing.T) {
	h := heap.New()
	x := h.AllocUnboundRef()

	fFunc := h.Len()
	h.PushFunctor(term.Functor{Name: term.NewAtom("f"), Arity: 1})
	h.Copy(x)
	str := h.PushStr(fFunc)

	require.True(t, h.Unify(x, str))
	require.Equal(t, h.Deref(x), h.Deref(str))
}

// TestUnifySymmetric is the universal-law property test: unify(a, b)
// succeeds iff unify(b, a) does, and produces the same resulting term
// either way. Built with one side holding a variable (f(X) vs f(a)) so
// the property is non-trivial: which side is the variable and which is
// the structure must not change the outcome.
func TestUnifySymmetric(t *testing.T) {
	build := func() (h *heap.Heap, varSide, groundSide heap.Address) {
		h = heap.New()
		aFunc := h.Len()
		h.PushFunctor(term.Functor{Name: term.NewAtom("a"), Arity: 0})

		fFunc := h.Len()
		h.PushFunctor(term.Functor{Name: term.NewAtom("f"), Arity: 1})
		h.AllocUnboundRef()
		varSide = h.PushStr(fFunc)

		gFunc := h.Len()
		h.PushFunctor(term.Functor{Name: term.NewAtom("f"), Arity: 1})
		h.PushStr(aFunc)
		groundSide = h.PushStr(gFunc)
		return
	}

	h1, varSide1, groundSide1 := build()
	ok1 := h1.Unify(varSide1, groundSide1)

	h2, varSide2, groundSide2 := build()
	ok2 := h2.Unify(groundSide2, varSide2)

	require.Equal(t, ok1, ok2)
	require.True(t, ok1)
	require.Equal(t, reconstruct(h1, varSide1), reconstruct(h2, varSide2))
	require.Equal(t, reconstruct(h1, groundSide1), reconstruct(h2, groundSide2))
	require.Equal(t, "f(a)", reconstruct(h1, varSide1))
}

// TestUnifySymmetricMismatchFails checks the failing half of the same
// law: a functor mismatch fails regardless of argument order.
func TestUnifySymmetricMismatchFails(t *testing.T) {
	build := func() (h *heap.Heap, left, right heap.Address) {
		h = heap.New()
		left = structCell(h, term.Functor{Name: term.NewAtom("foo"), Arity: 0})
		right = structCell(h, term.Functor{Name: term.NewAtom("bar"), Arity: 0})
		return
	}

	h1, left1, right1 := build()
	h2, left2, right2 := build()

	require.Equal(t, h1.Unify(left1, right1), h2.Unify(right2, left2))
}

func TestBindSameAddressIsNoop(t *testing.T) {
	h := heap.New()
	a := h.AllocUnboundRef()
	require.NotPanics(t, func() { h.Bind(a, a) })
}

func TestBindBothBoundPanics(t *testing.T) {
	h := heap.New()
	a := structCell(h, term.Functor{Name: term.NewAtom("a"), Arity: 0})
	b := structCell(h, term.Functor{Name: term.NewAtom("b"), Arity: 0})
	require.Panics(t, func() { h.Bind(a, b) })
}
