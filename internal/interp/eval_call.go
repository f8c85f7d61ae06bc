package interp

import "github.com/irvm/brilgo/internal/ir"

// evalCall implements the call protocol of spec §4.6. instr may be
// either an EffectInstr (statement-position call, no result bound) or a
// ValueInstr (expression-position call, result bound to a destination).
func evalCall(instr ir.Instruction, s *State) (ir.Action, error) {
	args, funcs, _ := instrShape(instr)
	if len(funcs) != 1 {
		return ir.Action{}, NewMalformedError("call expects exactly 1 function reference, got %d", len(funcs))
	}
	fn, ok := s.Funcs.Lookup(funcs[0])
	if !ok {
		return ir.Action{}, NewNameError("undefined function: %s", funcs[0])
	}
	if len(args) != len(fn.Params) {
		return ir.Action{}, NewTypeError("call to %s expects %d argument(s), got %d", fn.Name, len(fn.Params), len(args))
	}

	childEnv := NewEnvironment()
	for i, argName := range args {
		v, err := lookupVar(s, argName)
		if err != nil {
			return ir.Action{}, err
		}
		if !ir.CheckType(v, fn.Params[i].Type) {
			return ir.Action{}, NewTypeError("call to %s: argument %d does not match parameter type %s", fn.Name, i, fn.Params[i].Type)
		}
		childEnv.Set(fn.Params[i].Name, v)
	}

	child := s.ChildState(childEnv)

	hot := false
	if s.Tracer != nil {
		s.Tracer.BeforeCall(fn.Name)
		hot = s.Tracer.Active()
	}

	result, err := evalFunction(fn, child)
	s.ICount += child.ICount
	if err != nil {
		return ir.Action{}, err
	}

	if s.Tracer != nil && hot {
		s.Tracer.AfterCall(fn.Name)
	}

	switch v := instr.(type) {
	case *ir.EffectInstr:
		if result != nil {
			return ir.Action{}, NewTypeError("call to %s used as a statement must not return a value", fn.Name)
		}
		if fn.RetType != nil {
			return ir.Action{}, NewTypeError("call to %s used as a statement but it declares a return type", fn.Name)
		}
		return ir.Next(), nil
	case *ir.ValueInstr:
		if fn.RetType == nil {
			return ir.Action{}, NewTypeError("call to %s used as an expression but it declares no return type", fn.Name)
		}
		if result == nil || !ir.CheckType(result, v.DeclType) {
			return ir.Action{}, NewTypeError("call to %s: return value does not match declared call type %s", fn.Name, v.DeclType)
		}
		if !ir.SameType(v.DeclType, *fn.RetType) {
			return ir.Action{}, NewTypeError("call to %s: declared call type %s does not match function's return type %s", fn.Name, v.DeclType, *fn.RetType)
		}
		bind(s, v.Dest, result)
		return ir.Next(), nil
	default:
		return ir.Action{}, NewMalformedError("call: unsupported instruction shape")
	}
}
