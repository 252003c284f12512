package machine

import (
	"fmt"

	"github.com/remexre/wam-tutorial-reconstruction/internal/heap"
)

// registers is the sparse, on-demand-grown argument register file (§3).
// Reading a slot that was never written is a compiler bug, not a
// user-visible failure, so it panics rather than returning a zero value.
type registers struct {
	vals []heap.Address
	set  []bool
}

func (r *registers) ensure(n int) {
	if n < len(r.vals) {
		return
	}
	vals := make([]heap.Address, n+1)
	copy(vals, r.vals)
	set := make([]bool, n+1)
	copy(set, r.set)
	r.vals, r.set = vals, set
}

func (r *registers) write(n int, a heap.Address) {
	r.ensure(n)
	r.vals[n] = a
	r.set[n] = true
}

func (r *registers) read(n int) heap.Address {
	if n >= len(r.vals) || !r.set[n] {
		panic(fmt.Sprintf("machine: register X%d read before being written", n))
	}
	return r.vals[n]
}

func (r *registers) reset() {
	for i := range r.set {
		r.set[i] = false
	}
}

// count reports how many register slots have ever been grown into,
// i.e. the high-water mark of the highest-numbered register written so
// far.
func (r *registers) count() int {
	return len(r.vals)
}
