package interp

import (
	"testing"

	"github.com/irvm/brilgo/internal/ir"
)

func TestReferenceCounterFreesAtZero(t *testing.T) {
	heap := NewHeap()
	rc := NewReferenceCounter(heap)
	env := NewEnvironment()

	k, _ := heap.Alloc(1)
	p := ir.Pointer{Loc: k, Elem: ir.Int}

	rc.OnAssign(env, "x", p)
	env.Set("x", p)

	if heap.IsEmpty() {
		t.Fatalf("allocation freed prematurely after a single binding")
	}

	rc.OnAssign(env, "x", ir.Pointer{Loc: ir.Key{Base: -1}, Elem: ir.Int})
	if !heap.IsEmpty() {
		t.Fatalf("allocation not freed after its only binding was replaced")
	}
}

func TestReferenceCounterSharedBinding(t *testing.T) {
	heap := NewHeap()
	rc := NewReferenceCounter(heap)
	env := NewEnvironment()

	k, _ := heap.Alloc(1)
	p := ir.Pointer{Loc: k, Elem: ir.Int}

	rc.OnAssign(env, "x", p)
	env.Set("x", p)
	rc.OnAssign(env, "y", p)
	env.Set("y", p)

	rc.OnAssign(env, "x", ir.Pointer{Loc: ir.Key{Base: -1}, Elem: ir.Int})
	if heap.IsEmpty() {
		t.Fatalf("allocation freed while a second binding (y) still references it")
	}
}

func TestReferenceCounterOnFreeDropsTracking(t *testing.T) {
	heap := NewHeap()
	rc := NewReferenceCounter(heap)
	env := NewEnvironment()

	k, _ := heap.Alloc(1)
	p := ir.Pointer{Loc: k, Elem: ir.Int}
	rc.OnAssign(env, "x", p)
	env.Set("x", p)

	_ = heap.Free(k)
	rc.OnFree(k.Base)

	// Rebinding x away must not attempt to re-free the already-freed base.
	rc.OnAssign(env, "x", ir.Pointer{Loc: ir.Key{Base: -1}, Elem: ir.Int})
}

func TestReferenceCounterSweep(t *testing.T) {
	heap := NewHeap()
	rc := NewReferenceCounter(heap)
	env := NewEnvironment()

	k1, _ := heap.Alloc(1)
	k2, _ := heap.Alloc(1)
	rc.OnAssign(env, "a", ir.Pointer{Loc: k1, Elem: ir.Int})
	rc.OnAssign(env, "b", ir.Pointer{Loc: k2, Elem: ir.Int})

	rc.Sweep()
	if !heap.IsEmpty() {
		t.Fatalf("heap not empty after Sweep")
	}
}
