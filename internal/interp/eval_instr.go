package interp

import (
	"math"

	"github.com/irvm/brilgo/internal/ir"
)

// instrShape extracts the fields every non-Constant instruction shape
// carries, so evalInstr can dispatch without a type switch at every call
// site.
func instrShape(instr ir.Instruction) (args, funcs, labels []ir.Identifier) {
	switch v := instr.(type) {
	case *ir.ValueInstr:
		return v.Args, v.Funcs, v.Labels
	case *ir.EffectInstr:
		return v.Args, v.Funcs, v.Labels
	default:
		return nil, nil, nil
	}
}

func dest(instr ir.Instruction) (ir.Identifier, bool) {
	switch v := instr.(type) {
	case *ir.ConstantInstr:
		return v.Dest, true
	case *ir.ValueInstr:
		return v.Dest, true
	default:
		return "", false
	}
}

// evalInstr is the instruction evaluator's contract: evalInstr(instr,
// state) -> Action (spec §4.5). Side effects are confined to
// state.Env, state.Heap, state.RefCounter, state.Tracer, and
// state.ICount.
func evalInstr(instr ir.Instruction, s *State) (ir.Action, error) {
	s.ICount++
	if s.Tracer != nil && s.Tracer.Active() {
		s.Tracer.Record(instr)
	}

	op := instr.Op()
	if op != "const" {
		if n, ok := lookupArity(op); !ok {
			return ir.Action{}, NewMalformedError("unknown opcode: %s", op)
		} else if n >= 0 {
			args, _, _ := instrShape(instr)
			if len(args) != n {
				return ir.Action{}, NewMalformedError("%s expects %d argument(s), got %d", op, n, len(args))
			}
		}
	}

	if s.InSpeculation() && (op == "call" || op == "ret") {
		return ir.Action{}, NewControlError("%s not allowed during speculation", op)
	}

	switch op {
	case "const":
		return evalConst(instr.(*ir.ConstantInstr), s)
	case "id":
		return evalID(instr, s)
	case "add", "mul", "sub", "div":
		return evalIntBinOp(op, instr, s)
	case "lt", "le", "gt", "ge", "eq":
		return evalIntCmp(op, instr, s)
	case "not":
		return evalNot(instr, s)
	case "and", "or":
		return evalBoolOp(op, instr, s)
	case "fadd", "fsub", "fmul", "fdiv":
		return evalFloatBinOp(op, instr, s)
	case "flt", "fle", "fgt", "fge", "feq":
		return evalFloatCmp(op, instr, s)
	case "print":
		return evalPrint(instr, s)
	case "jmp":
		_, _, labels := instrShape(instr)
		if len(labels) != 1 {
			return ir.Action{}, NewMalformedError("jmp expects 1 label, got %d", len(labels))
		}
		return ir.JumpTo(labels[0]), nil
	case "br":
		return evalBr(instr, s)
	case "ret":
		return evalRet(instr, s)
	case "nop":
		return ir.Next(), nil
	case "call":
		return evalCall(instr, s)
	case "alloc":
		return evalAlloc(instr, s)
	case "free":
		return evalFree(instr, s)
	case "store":
		return evalStore(instr, s)
	case "load":
		return evalLoad(instr, s)
	case "ptradd":
		return evalPtrAdd(instr, s)
	case "phi":
		return evalPhi(instr, s)
	case "speculate":
		return ir.Speculate(), nil
	case "guard":
		return evalGuard(instr, s)
	case "commit":
		return ir.Commit(), nil
	default:
		return ir.Action{}, NewMalformedError("unknown opcode: %s", op)
	}
}

func lookupVar(s *State, name ir.Identifier) (ir.Value, error) {
	v, ok := s.Env.Get(name)
	if !ok {
		return nil, NewNameError("undefined variable: %s", name)
	}
	return v, nil
}

func bind(s *State, name ir.Identifier, v ir.Value) {
	if s.RefCounter != nil {
		if p, ok := v.(ir.Pointer); ok {
			s.RefCounter.OnAssign(s.Env, name, p)
		}
	}
	s.Env.Set(name, v)
}

func evalConst(c *ir.ConstantInstr, s *State) (ir.Action, error) {
	var v ir.Value
	switch lit := c.Literal.(type) {
	case int64:
		if c.DeclType != nil && c.DeclType.Kind == ir.KindFloat {
			v = ir.Float64(float64(lit))
		} else {
			v = ir.Int64(lit)
		}
	case float64:
		if c.DeclType != nil && c.DeclType.Kind == ir.KindFloat {
			v = ir.Float64(lit)
		} else {
			v = ir.Int64(int64(math.Floor(lit)))
		}
	case bool:
		v = ir.Bool64(lit)
	default:
		return ir.Action{}, NewMalformedError("const: unsupported literal %T", c.Literal)
	}
	s.Env.Set(c.Dest, v)
	return ir.Next(), nil
}

func evalID(instr ir.Instruction, s *State) (ir.Action, error) {
	args, _, _ := instrShape(instr)
	v, err := lookupVar(s, args[0])
	if err != nil {
		return ir.Action{}, err
	}
	d, _ := dest(instr)
	bind(s, d, v)
	return ir.Next(), nil
}

func asInt(v ir.Value) (int64, bool) {
	i, ok := v.(ir.Int64)
	return int64(i), ok
}

func asFloat(v ir.Value) (float64, bool) {
	f, ok := v.(ir.Float64)
	return float64(f), ok
}

func asBool(v ir.Value) (bool, bool) {
	b, ok := v.(ir.Bool64)
	return bool(b), ok
}

func evalIntBinOp(op string, instr ir.Instruction, s *State) (ir.Action, error) {
	args, _, _ := instrShape(instr)
	lv, err := lookupVar(s, args[0])
	if err != nil {
		return ir.Action{}, err
	}
	rv, err := lookupVar(s, args[1])
	if err != nil {
		return ir.Action{}, err
	}
	l, ok1 := asInt(lv)
	r, ok2 := asInt(rv)
	if !ok1 || !ok2 {
		return ir.Action{}, NewTypeError("%s requires int operands", op)
	}
	var res int64
	switch op {
	case "add":
		res = l + r
	case "mul":
		res = l * r
	case "sub":
		res = l - r
	case "div":
		if r == 0 {
			return ir.Action{}, NewMemoryError("division by zero")
		}
		res = l / r
	}
	d, _ := dest(instr)
	bind(s, d, ir.Int64(res))
	return ir.Next(), nil
}

func evalIntCmp(op string, instr ir.Instruction, s *State) (ir.Action, error) {
	args, _, _ := instrShape(instr)
	lv, err := lookupVar(s, args[0])
	if err != nil {
		return ir.Action{}, err
	}
	rv, err := lookupVar(s, args[1])
	if err != nil {
		return ir.Action{}, err
	}
	l, ok1 := asInt(lv)
	r, ok2 := asInt(rv)
	if !ok1 || !ok2 {
		return ir.Action{}, NewTypeError("%s requires int operands", op)
	}
	var res bool
	switch op {
	case "lt":
		res = l < r
	case "le":
		res = l <= r
	case "gt":
		res = l > r
	case "ge":
		res = l >= r
	case "eq":
		res = l == r
	}
	d, _ := dest(instr)
	bind(s, d, ir.Bool64(res))
	return ir.Next(), nil
}

func evalNot(instr ir.Instruction, s *State) (ir.Action, error) {
	args, _, _ := instrShape(instr)
	v, err := lookupVar(s, args[0])
	if err != nil {
		return ir.Action{}, err
	}
	b, ok := asBool(v)
	if !ok {
		return ir.Action{}, NewTypeError("not requires a bool operand")
	}
	d, _ := dest(instr)
	bind(s, d, ir.Bool64(!b))
	return ir.Next(), nil
}

func evalBoolOp(op string, instr ir.Instruction, s *State) (ir.Action, error) {
	args, _, _ := instrShape(instr)
	lv, err := lookupVar(s, args[0])
	if err != nil {
		return ir.Action{}, err
	}
	rv, err := lookupVar(s, args[1])
	if err != nil {
		return ir.Action{}, err
	}
	l, ok1 := asBool(lv)
	r, ok2 := asBool(rv)
	if !ok1 || !ok2 {
		return ir.Action{}, NewTypeError("%s requires bool operands", op)
	}
	var res bool
	if op == "and" {
		res = l && r
	} else {
		res = l || r
	}
	d, _ := dest(instr)
	bind(s, d, ir.Bool64(res))
	return ir.Next(), nil
}

func evalFloatBinOp(op string, instr ir.Instruction, s *State) (ir.Action, error) {
	args, _, _ := instrShape(instr)
	lv, err := lookupVar(s, args[0])
	if err != nil {
		return ir.Action{}, err
	}
	rv, err := lookupVar(s, args[1])
	if err != nil {
		return ir.Action{}, err
	}
	l, ok1 := asFloat(lv)
	r, ok2 := asFloat(rv)
	if !ok1 || !ok2 {
		return ir.Action{}, NewTypeError("%s requires float operands", op)
	}
	var res float64
	switch op {
	case "fadd":
		res = l + r
	case "fsub":
		res = l - r
	case "fmul":
		res = l * r
	case "fdiv":
		res = l / r
	}
	d, _ := dest(instr)
	bind(s, d, ir.Float64(res))
	return ir.Next(), nil
}

func evalFloatCmp(op string, instr ir.Instruction, s *State) (ir.Action, error) {
	args, _, _ := instrShape(instr)
	lv, err := lookupVar(s, args[0])
	if err != nil {
		return ir.Action{}, err
	}
	rv, err := lookupVar(s, args[1])
	if err != nil {
		return ir.Action{}, err
	}
	l, ok1 := asFloat(lv)
	r, ok2 := asFloat(rv)
	if !ok1 || !ok2 {
		return ir.Action{}, NewTypeError("%s requires float operands", op)
	}
	var res bool
	switch op {
	case "flt":
		res = l < r
	case "fle":
		res = l <= r
	case "fgt":
		res = l > r
	case "fge":
		res = l >= r
	case "feq":
		res = l == r
	}
	d, _ := dest(instr)
	bind(s, d, ir.Bool64(res))
	return ir.Next(), nil
}

func evalPrint(instr ir.Instruction, s *State) (ir.Action, error) {
	args, _, _ := instrShape(instr)
	parts := make([]string, len(args))
	for i, a := range args {
		v, err := lookupVar(s, a)
		if err != nil {
			return ir.Action{}, err
		}
		parts[i] = v.String()
	}
	line := ""
	for i, p := range parts {
		if i > 0 {
			line += " "
		}
		line += p
	}
	_, _ = s.Stdout.Write([]byte(line + "\n"))
	return ir.Next(), nil
}

func evalBr(instr ir.Instruction, s *State) (ir.Action, error) {
	args, _, labels := instrShape(instr)
	if len(labels) != 2 {
		return ir.Action{}, NewMalformedError("br expects 2 labels, got %d", len(labels))
	}
	v, err := lookupVar(s, args[0])
	if err != nil {
		return ir.Action{}, err
	}
	b, ok := asBool(v)
	if !ok {
		return ir.Action{}, NewTypeError("br requires a bool condition")
	}
	if b {
		return ir.JumpTo(labels[0]), nil
	}
	return ir.JumpTo(labels[1]), nil
}

func evalRet(instr ir.Instruction, s *State) (ir.Action, error) {
	args, _, _ := instrShape(instr)
	switch len(args) {
	case 0:
		return ir.EndWith(nil), nil
	case 1:
		v, err := lookupVar(s, args[0])
		if err != nil {
			return ir.Action{}, err
		}
		return ir.EndWith(v), nil
	default:
		return ir.Action{}, NewMalformedError("ret expects 0 or 1 arguments, got %d", len(args))
	}
}

func evalAlloc(instr ir.Instruction, s *State) (ir.Action, error) {
	vi, ok := instr.(*ir.ValueInstr)
	if !ok || vi.DeclType.Kind != ir.KindPtr {
		return ir.Action{}, NewTypeError("alloc destination must declare a pointer type")
	}
	args, _, _ := instrShape(instr)
	cv, err := lookupVar(s, args[0])
	if err != nil {
		return ir.Action{}, err
	}
	n, ok := asInt(cv)
	if !ok {
		return ir.Action{}, NewTypeError("alloc count must be an int")
	}
	key, err := s.Heap.Alloc(n)
	if err != nil {
		return ir.Action{}, err
	}
	p := ir.Pointer{Loc: key, Elem: *vi.DeclType.Elem}
	bind(s, vi.Dest, p)
	return ir.Next(), nil
}

func evalFree(instr ir.Instruction, s *State) (ir.Action, error) {
	if s.Options.DisableFree() {
		return ir.Next(), nil
	}
	args, _, _ := instrShape(instr)
	v, err := lookupVar(s, args[0])
	if err != nil {
		return ir.Action{}, err
	}
	p, ok := v.(ir.Pointer)
	if !ok {
		return ir.Action{}, NewTypeError("free requires a pointer operand")
	}
	if err := s.Heap.Free(p.Loc); err != nil {
		return ir.Action{}, err
	}
	if s.RefCounter != nil {
		s.RefCounter.OnFree(p.Loc.Base)
	}
	return ir.Next(), nil
}

func evalStore(instr ir.Instruction, s *State) (ir.Action, error) {
	args, _, _ := instrShape(instr)
	pv, err := lookupVar(s, args[0])
	if err != nil {
		return ir.Action{}, err
	}
	p, ok := pv.(ir.Pointer)
	if !ok {
		return ir.Action{}, NewTypeError("store requires a pointer operand")
	}
	val, err := lookupVar(s, args[1])
	if err != nil {
		return ir.Action{}, err
	}
	if !ir.CheckType(val, p.Elem) {
		return ir.Action{}, NewTypeError("store: value does not match pointee type %s", p.Elem)
	}
	if err := s.Heap.Write(p.Loc, val); err != nil {
		return ir.Action{}, err
	}
	return ir.Next(), nil
}

func evalLoad(instr ir.Instruction, s *State) (ir.Action, error) {
	args, _, _ := instrShape(instr)
	pv, err := lookupVar(s, args[0])
	if err != nil {
		return ir.Action{}, err
	}
	p, ok := pv.(ir.Pointer)
	if !ok {
		return ir.Action{}, NewTypeError("load requires a pointer operand")
	}
	val, err := s.Heap.Read(p.Loc)
	if err != nil {
		return ir.Action{}, err
	}
	if val == nil {
		return ir.Action{}, NewMemoryError("uninitialized data at %s", p.Loc)
	}
	d, _ := dest(instr)
	bind(s, d, val)
	return ir.Next(), nil
}

func evalPtrAdd(instr ir.Instruction, s *State) (ir.Action, error) {
	args, _, _ := instrShape(instr)
	pv, err := lookupVar(s, args[0])
	if err != nil {
		return ir.Action{}, err
	}
	p, ok := pv.(ir.Pointer)
	if !ok {
		return ir.Action{}, NewTypeError("ptradd requires a pointer first operand")
	}
	ov, err := lookupVar(s, args[1])
	if err != nil {
		return ir.Action{}, err
	}
	n, ok := asInt(ov)
	if !ok {
		return ir.Action{}, NewTypeError("ptradd requires an int second operand")
	}
	d, _ := dest(instr)
	bind(s, d, p.WithOffset(n))
	return ir.Next(), nil
}

// evalPhi implements spec §4.5's phi rule: the labels and args lists
// must have equal length. When lastlabel is absent from the label
// list, the destination becomes unbound; otherwise the source at the
// matching index is looked up, and an unbound source unbinds the
// destination rather than erroring.
func evalPhi(instr ir.Instruction, s *State) (ir.Action, error) {
	args, _, labels := instrShape(instr)
	if len(labels) != len(args) {
		return ir.Action{}, NewMalformedError("phi: labels and args must have equal length")
	}
	d, _ := dest(instr)
	if s.LastLabel == nil {
		s.Env.Delete(d)
		return ir.Next(), nil
	}
	idx := -1
	for i, l := range labels {
		if l == *s.LastLabel {
			idx = i
			break
		}
	}
	if idx == -1 {
		s.Env.Delete(d)
		return ir.Next(), nil
	}
	v, ok := s.Env.Get(args[idx])
	if !ok {
		s.Env.Delete(d)
		return ir.Next(), nil
	}
	bind(s, d, v)
	return ir.Next(), nil
}

func evalGuard(instr ir.Instruction, s *State) (ir.Action, error) {
	args, _, labels := instrShape(instr)
	if len(labels) != 1 {
		return ir.Action{}, NewMalformedError("guard expects 1 label, got %d", len(labels))
	}
	v, err := lookupVar(s, args[0])
	if err != nil {
		return ir.Action{}, err
	}
	b, ok := asBool(v)
	if !ok {
		return ir.Action{}, NewTypeError("guard requires a bool condition")
	}
	if b {
		return ir.Next(), nil
	}
	return ir.AbortTo(labels[0]), nil
}
