package interp

import "github.com/irvm/brilgo/internal/ir"

// Tracer records the instructions executed by a function once its call
// count reaches a hotness threshold (spec §4.4). It never alters
// execution — every method here is pure bookkeeping.
//
// No teacher analogue exists for this (DWScript has no hotness-based
// trace recorder); its shape follows spec §4.4 directly, using the same
// "small struct, a couple of maps, a handful of methods" idiom the rest
// of internal/interp uses.
type Tracer struct {
	threshold int
	calls     map[string]int
	fullyTraced map[string]bool
	logs      map[string][]string

	active     bool
	activeFunc string
}

// NewTracer returns a tracer that activates a function's trace once its
// call count reaches threshold. With a non-positive threshold every
// count already reaches it, so the first call to a function is hot.
func NewTracer(threshold int) *Tracer {
	return &Tracer{
		threshold:   threshold,
		calls:       make(map[string]int),
		fullyTraced: make(map[string]bool),
		logs:        make(map[string][]string),
	}
}

// BeforeCall implements spec §4.4's "before a call to function F not yet
// fully traced": F's count is incremented, and if it reaches the
// threshold and no trace is currently active, tracing activates for F
// with an empty log. Per spec §9's Open Question, activation is a
// single global switch: a call made from inside an already-traced
// function cannot start its own nested trace, even if that callee
// itself crosses the threshold during the traced region.
func (t *Tracer) BeforeCall(name string) {
	if t.fullyTraced[name] {
		return
	}
	t.calls[name]++
	if t.calls[name] >= t.threshold && !t.active {
		t.active = true
		t.activeFunc = name
		t.logs[name] = nil
	}
}

// Active reports whether a trace is currently being recorded.
func (t *Tracer) Active() bool {
	return t.active
}

// Record appends instr's rendering to the active trace's log. A no-op
// when no trace is active.
func (t *Tracer) Record(instr ir.Instruction) {
	if !t.active {
		return
	}
	t.logs[t.activeFunc] = append(t.logs[t.activeFunc], instr.Op())
}

// AfterCall implements spec §4.4's "on return from the traced function's
// top-level call": if the returning function is the one being traced,
// tracing deactivates and the function is marked fully traced so it is
// never re-armed. The match is on the function name alone, so for a
// recursive hot function the first return to arrive here (the innermost
// recursive call's) ends the trace, not the return of the call that
// activated it.
func (t *Tracer) AfterCall(name string) {
	if t.active && t.activeFunc == name {
		t.active = false
		t.fullyTraced[name] = true
		t.activeFunc = ""
	}
}

// Logs returns the recorded per-function instruction logs, keyed by
// function name. Used by the `-tr` trace dump (spec §4.8).
func (t *Tracer) Logs() map[string][]string {
	return t.logs
}
