package interp

import (
	"bytes"
	"testing"

	"github.com/irvm/brilgo/internal/ir"
)

// buildState is a shared helper for constructing a root State with a
// given Program, used by the evalFunction tests.
func buildState(prog *ir.Program) *State {
	return NewRootState(prog, NewHeap(), nil, nil, ExecOptions{}, &bytes.Buffer{})
}

func TestEvalFunctionSimpleReturn(t *testing.T) {
	fn := &ir.Function{
		Name:    "main",
		RetType: &ir.Int,
		Code: []ir.Code{
			&ir.ConstantInstr{Dest: "x", DeclType: &ir.Int, Literal: int64(7)},
			&ir.EffectInstr{OpName: "ret", Args: []string{"x"}},
		},
	}
	s := buildState(&ir.Program{Functions: []ir.Function{*fn}})
	v, err := evalFunction(fn, s)
	if err != nil {
		t.Fatalf("evalFunction: %v", err)
	}
	if v != ir.Int64(7) {
		t.Fatalf("returned %v, want 7", v)
	}
}

func TestEvalFunctionJumpToLabel(t *testing.T) {
	fn := &ir.Function{
		Name:    "main",
		RetType: &ir.Int,
		Code: []ir.Code{
			&ir.EffectInstr{OpName: "jmp", Labels: []string{"skip"}},
			&ir.ConstantInstr{Dest: "x", DeclType: &ir.Int, Literal: int64(1)},
			&ir.Label{Name: "skip"},
			&ir.ConstantInstr{Dest: "x", DeclType: &ir.Int, Literal: int64(2)},
			&ir.EffectInstr{OpName: "ret", Args: []string{"x"}},
		},
	}
	s := buildState(&ir.Program{Functions: []ir.Function{*fn}})
	v, err := evalFunction(fn, s)
	if err != nil {
		t.Fatalf("evalFunction: %v", err)
	}
	if v != ir.Int64(2) {
		t.Fatalf("jmp did not skip the first const: returned %v, want 2", v)
	}
}

// TestEvalFunctionSpeculateCommit drives speculate -> guard(true) ->
// commit -> ret, asserting the speculative mutation survives a commit.
func TestEvalFunctionSpeculateCommit(t *testing.T) {
	fn := &ir.Function{
		Name:    "main",
		RetType: &ir.Int,
		Code: []ir.Code{
			&ir.ConstantInstr{Dest: "ok", DeclType: &ir.Bool, Literal: true},
			&ir.ConstantInstr{Dest: "x", DeclType: &ir.Int, Literal: int64(1)},
			&ir.EffectInstr{OpName: "speculate"},
			&ir.ConstantInstr{Dest: "x", DeclType: &ir.Int, Literal: int64(2)},
			&ir.EffectInstr{OpName: "guard", Args: []string{"ok"}, Labels: []string{"recover"}},
			&ir.EffectInstr{OpName: "commit"},
			&ir.EffectInstr{OpName: "ret", Args: []string{"x"}},
			&ir.Label{Name: "recover"},
			&ir.EffectInstr{OpName: "ret", Args: []string{"x"}},
		},
	}
	s := buildState(&ir.Program{Functions: []ir.Function{*fn}})
	v, err := evalFunction(fn, s)
	if err != nil {
		t.Fatalf("evalFunction: %v", err)
	}
	if v != ir.Int64(2) {
		t.Fatalf("committed speculative write lost: returned %v, want 2", v)
	}
}

// TestEvalFunctionSpeculateAbortRestores drives speculate -> guard(false)
// -> abort to recover, asserting the speculative mutation is rolled back.
func TestEvalFunctionSpeculateAbortRestores(t *testing.T) {
	fn := &ir.Function{
		Name:    "main",
		RetType: &ir.Int,
		Code: []ir.Code{
			&ir.ConstantInstr{Dest: "bad", DeclType: &ir.Bool, Literal: false},
			&ir.ConstantInstr{Dest: "x", DeclType: &ir.Int, Literal: int64(1)},
			&ir.EffectInstr{OpName: "speculate"},
			&ir.ConstantInstr{Dest: "x", DeclType: &ir.Int, Literal: int64(2)},
			&ir.EffectInstr{OpName: "guard", Args: []string{"bad"}, Labels: []string{"recover"}},
			&ir.EffectInstr{OpName: "commit"},
			&ir.EffectInstr{OpName: "ret", Args: []string{"x"}},
			&ir.Label{Name: "recover"},
			&ir.EffectInstr{OpName: "ret", Args: []string{"x"}},
		},
	}
	s := buildState(&ir.Program{Functions: []ir.Function{*fn}})
	v, err := evalFunction(fn, s)
	if err != nil {
		t.Fatalf("evalFunction: %v", err)
	}
	if v != ir.Int64(1) {
		t.Fatalf("aborted speculative write was not rolled back: returned %v, want 1", v)
	}
}

func TestEvalFunctionImplicitReturnInsideSpeculationIsControlError(t *testing.T) {
	fn := &ir.Function{
		Name: "main",
		Code: []ir.Code{
			&ir.EffectInstr{OpName: "speculate"},
		},
	}
	s := buildState(&ir.Program{Functions: []ir.Function{*fn}})
	_, err := evalFunction(fn, s)
	ierr, ok := err.(*Error)
	if !ok || ierr.Kind != ControlErrorKind {
		t.Fatalf("falling off the end while speculating = %v, want a ControlError", err)
	}
}

func TestEvalFunctionUnresolvedLabelIsNameError(t *testing.T) {
	fn := &ir.Function{
		Name: "main",
		Code: []ir.Code{
			&ir.EffectInstr{OpName: "jmp", Labels: []string{"nowhere"}},
		},
	}
	s := buildState(&ir.Program{Functions: []ir.Function{*fn}})
	_, err := evalFunction(fn, s)
	ierr, ok := err.(*Error)
	if !ok || ierr.Kind != NameErrorKind {
		t.Fatalf("jmp to an unresolved label = %v, want a NameError", err)
	}
}
