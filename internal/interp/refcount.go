package interp

import "github.com/irvm/brilgo/internal/ir"

// ReferenceCounter tracks, per pointer base, how many named Identifiers
// currently bind to it (spec §4.3). It only applies when the `-gc`
// option is enabled and it is intentionally naive: it counts
// assignments observed through onAssign, not true liveness, so a
// pointer value copied into a heap cell (store) rather than bound to an
// identifier is invisible to it (spec §9).
//
// Shape grounded on the teacher's RefCountManager
// (internal/interp/runtime/refcount.go): an interface-free struct with
// Increment/Decrement-style methods and a bulk sweep, adapted here from
// per-object destructor callbacks to per-base heap frees.
type ReferenceCounter struct {
	counts map[int]int
	heap   *Heap
}

// NewReferenceCounter returns a counter that frees through heap when a
// count reaches zero.
func NewReferenceCounter(heap *Heap) *ReferenceCounter {
	return &ReferenceCounter{counts: make(map[int]int), heap: heap}
}

// OnAssign implements spec §4.3's onAssign(dst, newPtr, env): if dst
// currently binds a Pointer, its base's count is decremented (freeing
// the allocation and dropping the entry at zero); newPtr's base count is
// then incremented, initializing it to 1 if unseen.
func (rc *ReferenceCounter) OnAssign(env *Environment, dst ir.Identifier, newPtr ir.Pointer) {
	if old, ok := env.Get(dst); ok {
		if oldPtr, ok := old.(ir.Pointer); ok {
			rc.release(oldPtr.Loc.Base)
		}
	}
	rc.counts[newPtr.Loc.Base]++
}

// release decrements base's count, freeing the allocation and dropping
// the entry when it reaches zero. Errors from a free of an
// already-missing allocation are swallowed: a count can legitimately
// outlive an explicit free of the same base (OnFree already dropped the
// entry), so release must not re-free it.
func (rc *ReferenceCounter) release(base int) {
	n, ok := rc.counts[base]
	if !ok {
		return
	}
	n--
	if n <= 0 {
		delete(rc.counts, base)
		_ = rc.heap.Free(ir.Key{Base: base, Offset: 0})
		return
	}
	rc.counts[base] = n
}

// OnFree implements spec §4.3's onFree(k): the user explicitly freed k,
// so its tracked count is dropped entirely regardless of its value.
func (rc *ReferenceCounter) OnFree(base int) {
	delete(rc.counts, base)
}

// Sweep implements spec §4.3's sweep(): every allocation still tracked
// is freed and the map is cleared. Called by the driver at program end
// when `-gc` is enabled (spec §4.8).
func (rc *ReferenceCounter) Sweep() {
	for base := range rc.counts {
		_ = rc.heap.Free(ir.Key{Base: base, Offset: 0})
	}
	rc.counts = make(map[int]int)
}
