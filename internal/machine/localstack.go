package machine

import (
	"fmt"

	"github.com/remexre/wam-tutorial-reconstruction/internal/heap"
)

// frame is one local-stack activation record (§3): a fixed number of
// permanent-variable slots plus the continuation pointer to restore on
// Deallocate.
type frame struct {
	slots []heap.Address
	set   []bool
	cp    int
}

// localStack is the M2-only local stack. It behaves like an ordinary
// call stack because this system never backtracks: Allocate always
// pushes the newest frame, Deallocate always pops it, and nothing ever
// needs to reach past the top frame.
type localStack struct {
	frames []*frame
}

func (ls *localStack) push(n, cp int) {
	ls.frames = append(ls.frames, &frame{slots: make([]heap.Address, n), set: make([]bool, n), cp: cp})
}

// pop removes the top frame and returns its saved continuation pointer.
func (ls *localStack) pop() int {
	n := len(ls.frames)
	f := ls.frames[n-1]
	ls.frames = ls.frames[:n-1]
	return f.cp
}

func (ls *localStack) top() *frame {
	return ls.frames[len(ls.frames)-1]
}

func (ls *localStack) write(slot int, a heap.Address) {
	f := ls.top()
	f.slots[slot] = a
	f.set[slot] = true
}

func (ls *localStack) read(slot int) heap.Address {
	f := ls.top()
	if !f.set[slot] {
		panic(fmt.Sprintf("machine: local slot Y%d read before being written", slot))
	}
	return f.slots[slot]
}

// bottomSlots returns the slot values of the outermost (first-pushed)
// frame, the query's own — per §9's resolved open question, that frame
// is never torn down by a Deallocate instruction, so its slots are read
// directly by answer extraction instead.
func (ls *localStack) bottomSlots() []heap.Address {
	if len(ls.frames) == 0 {
		return nil
	}
	return ls.frames[0].slots
}

func (ls *localStack) reset() {
	ls.frames = ls.frames[:0]
}
