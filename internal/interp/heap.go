package interp

import "github.com/irvm/brilgo/internal/ir"

// allocation is an ordered, fixed-length sequence of value slots. A nil
// slot is the "uninitialized" sentinel (spec §3) — Heap.Read hands it
// back as-is; it is the load instruction's job to notice a nil read and
// fail (spec §4.5 `load`), not the Heap's.
type allocation []ir.Value

// Heap maps a monotonically issued base identifier to its allocation
// (spec §4.2). Bases are never reused, even after a free, so a stale
// Key can never alias a later, unrelated allocation.
type Heap struct {
	allocs   map[int]allocation
	nextBase int
}

// NewHeap returns an empty heap.
func NewHeap() *Heap {
	return &Heap{allocs: make(map[int]allocation)}
}

// Alloc mints a fresh base and registers an allocation of n
// uninitialized slots, returning Key(base, 0). n must be positive
// (spec §4.2).
func (h *Heap) Alloc(n int64) (ir.Key, error) {
	if n <= 0 {
		return ir.Key{}, NewMemoryError("cannot allocate %d entries", n)
	}
	base := h.nextBase
	h.nextBase++
	h.allocs[base] = make(allocation, n)
	return ir.Key{Base: base, Offset: 0}, nil
}

// Free removes the allocation at k.Base. k.Offset must be 0 and k.Base
// must name a live allocation (spec §4.2); freeing any other Key is a
// MemoryError.
func (h *Heap) Free(k ir.Key) error {
	if k.Offset != 0 {
		return NewMemoryError("Tried to free illegal memory location: %s", k)
	}
	if _, ok := h.allocs[k.Base]; !ok {
		return NewMemoryError("Tried to free illegal memory location: %s", k)
	}
	delete(h.allocs, k.Base)
	return nil
}

// Write stores v in the slot at (k.Base, k.Offset). The allocation must
// exist and the offset must be in range (spec §4.2).
func (h *Heap) Write(k ir.Key, v ir.Value) error {
	a, ok := h.allocs[k.Base]
	if !ok || k.Offset < 0 || k.Offset >= int64(len(a)) {
		return NewMemoryError("memory access out of bounds: %s", k)
	}
	a[k.Offset] = v
	return nil
}

// Read returns the slot at (k.Base, k.Offset), which may be the
// uninitialized (nil) sentinel. The allocation must exist and the
// offset must be in range (spec §4.2).
func (h *Heap) Read(k ir.Key) (ir.Value, error) {
	a, ok := h.allocs[k.Base]
	if !ok || k.Offset < 0 || k.Offset >= int64(len(a)) {
		return nil, NewMemoryError("memory access out of bounds: %s", k)
	}
	return a[k.Offset], nil
}

// Len reports the length of the allocation at base, or (0, false) if
// base does not name a live allocation.
func (h *Heap) Len(base int) (int, bool) {
	a, ok := h.allocs[base]
	return len(a), ok
}

// IsEmpty reports whether no allocation is still live (spec §3: "A
// Heap is 'empty' at normal program termination; otherwise the driver
// reports a leak").
func (h *Heap) IsEmpty() bool {
	return len(h.allocs) == 0
}

// LiveBases returns the bases of every still-live allocation, for the
// driver's leak diagnostic.
func (h *Heap) LiveBases() []int {
	bases := make([]int, 0, len(h.allocs))
	for b := range h.allocs {
		bases = append(bases, b)
	}
	return bases
}
