package interp

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/irvm/brilgo/internal/ir"
)

// Result is what Run reports back to its caller (the CLI) once a
// program finishes successfully (spec §4.8): the dynamic instruction
// count (for `-p`) and any recorded traces (for `-tr`).
type Result struct {
	ICount int64
	Traces map[string][]string
}

// Run is the Program Driver (spec §4.8): it locates the `main`
// function, parses args into entry-function parameters by their
// declared type, builds the initial State, executes main, and — after
// return — sweeps the reference counter (if enabled) and verifies the
// heap is empty before reporting success.
func Run(prog *ir.Program, args []string, opts Options, stdout io.Writer) (*Result, error) {
	fn, ok := prog.Lookup("main")
	if !ok {
		return nil, NewNameError("undefined function: main")
	}
	if len(args) != len(fn.Params) {
		return nil, NewInputError("main expects %d argument(s), got %d", len(fn.Params), len(args))
	}

	env := NewEnvironment()
	for i, raw := range args {
		v, err := parseEntryArg(raw, fn.Params[i].Type)
		if err != nil {
			return nil, err
		}
		env.Set(fn.Params[i].Name, v)
	}

	heap := NewHeap()
	var rc *ReferenceCounter
	if opts.GC() {
		rc = NewReferenceCounter(heap)
	}
	var tracer *Tracer
	if opts.Trace() {
		tracer = NewTracer(opts.HotThreshold())
	}

	state := NewRootState(prog, heap, rc, tracer, opts, stdout)
	state.Env = env

	if _, err := evalFunction(fn, state); err != nil {
		return nil, err
	}

	if opts.GC() {
		rc.Sweep()
	}
	if !heap.IsEmpty() {
		return nil, NewMemoryError("Some memory locations have not been freed: bases %v", heap.LiveBases())
	}

	result := &Result{ICount: state.ICount}
	if tracer != nil {
		result.Traces = tracer.Logs()
	}
	return result, nil
}

// parseEntryArg implements spec §4.8's per-type entry-argument parsing:
// int via decimal parseInt to a 64-bit value, float via parseFloat
// (a NaN result fails), bool accepting only the literal strings "true"
// or "false". Pointer-typed entry parameters have no textual form and
// are always an input error.
func parseEntryArg(raw string, t ir.Type) (ir.Value, error) {
	switch t.Kind {
	case ir.KindInt:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, NewInputError("cannot parse %q as int: %v", raw, err)
		}
		return ir.Int64(n), nil
	case ir.KindFloat:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(f) {
			return nil, NewInputError("cannot parse %q as float", raw)
		}
		return ir.Float64(f), nil
	case ir.KindBool:
		switch raw {
		case "true":
			return ir.Bool64(true), nil
		case "false":
			return ir.Bool64(false), nil
		default:
			return nil, NewInputError("cannot parse %q as bool: expected true or false", raw)
		}
	default:
		return nil, NewInputError("entry parameter type not supported: %s", t)
	}
}

// ProfileLine renders the `-p` diagnostic spec §4.8 requires verbatim:
// "total_dyn_inst: <N>".
func ProfileLine(n int64) string {
	return fmt.Sprintf("total_dyn_inst: %d", n)
}
