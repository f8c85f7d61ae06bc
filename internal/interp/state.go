package interp

import (
	"io"

	"github.com/irvm/brilgo/internal/ir"
)

// Snapshot is the frame-local state captured by Speculate (spec §4.7,
// §9 "Design Notes — Snapshot for speculation"). Only fields that are
// genuinely per-frame are captured here; Heap, ReferenceCounter, and
// Tracer are shared across every State and are never snapshotted — only
// their *effects* (spec §5) escape a speculative region, which is
// exactly the leak the spec documents and the evaluator only guards
// against for call/ret.
type Snapshot struct {
	Env       *Environment
	LastLabel *string
	CurLabel  *string
	Parent    *Snapshot
}

// State holds everything one function-evaluator frame needs (spec §3).
// Heap, RefCounter, Tracer, Funcs, and Options are shared by reference
// across every State created by calls and speculation; Env, labels, and
// SpecParent are frame-local.
type State struct {
	Env *Environment

	Heap       *Heap
	RefCounter *ReferenceCounter // nil when Options.GC() is false
	Tracer     *Tracer           // nil when Options.Trace() is false
	Funcs      *ir.Program
	Options    Options
	Stdout     io.Writer

	ICount int64

	LastLabel *string
	CurLabel  *string

	SpecParent *Snapshot
}

// NewRootState builds the initial State for a top-level call: a fresh
// Environment, shared Heap/RefCounter/Tracer/Funcs/Options, no labels,
// no speculation parent.
func NewRootState(prog *ir.Program, heap *Heap, rc *ReferenceCounter, tracer *Tracer, opts Options, stdout io.Writer) *State {
	return &State{
		Env:     NewEnvironment(),
		Heap:    heap,
		RefCounter: rc,
		Tracer:  tracer,
		Funcs:   prog,
		Options: opts,
		Stdout:  stdout,
	}
}

// ChildState builds the State for a called function (spec §4.6): fresh
// Environment, shared Heap/RefCounter/Tracer/Funcs/Options, null labels,
// null SpecParent. The caller's instruction count is not inherited —
// it is propagated back from the child after the call returns.
func (s *State) ChildState(env *Environment) *State {
	return &State{
		Env:        env,
		Heap:       s.Heap,
		RefCounter: s.RefCounter,
		Tracer:     s.Tracer,
		Funcs:      s.Funcs,
		Options:    s.Options,
		Stdout:     s.Stdout,
	}
}

// InSpeculation reports whether this frame is currently inside a
// Speculate/Commit-or-Abort region (spec §3 invariant).
func (s *State) InSpeculation() bool {
	return s.SpecParent != nil
}
