package interp

import "github.com/irvm/brilgo/internal/ir"

// evalFunction is the function evaluator (spec §4.7): it walks fn.Code
// by index, updating lastlabel/curlabel as the cursor crosses a Label
// and otherwise dispatching to evalInstr and driving its Action.
func evalFunction(fn *ir.Function, s *State) (ir.Value, error) {
	i := 0
	for i < len(fn.Code) {
		switch item := fn.Code[i].(type) {
		case *ir.Label:
			s.LastLabel = s.CurLabel
			name := item.Name
			s.CurLabel = &name
			i++
			continue
		case ir.Instruction:
			action, err := evalInstr(item, s)
			if err != nil {
				return nil, err
			}
			switch action.Kind {
			case ir.ActionNext:
				i++
			case ir.ActionEnd:
				return action.Value, nil
			case ir.ActionSpeculate:
				s.SpecParent = &Snapshot{
					Env:       s.Env,
					LastLabel: s.LastLabel,
					CurLabel:  s.CurLabel,
					Parent:    s.SpecParent,
				}
				s.Env = s.Env.Clone()
				i++
			case ir.ActionCommit:
				if s.SpecParent == nil {
					return nil, NewControlError("commit without an active speculation")
				}
				s.SpecParent = s.SpecParent.Parent
				i++
			case ir.ActionAbort:
				if s.SpecParent == nil {
					return nil, NewControlError("abort without an active speculation")
				}
				snap := s.SpecParent
				s.Env = snap.Env
				s.LastLabel = snap.LastLabel
				s.CurLabel = snap.CurLabel
				s.SpecParent = snap.Parent
				next, err := jumpTarget(fn, action.Label)
				if err != nil {
					return nil, err
				}
				i = next
			case ir.ActionJump:
				next, err := jumpTarget(fn, action.Label)
				if err != nil {
					return nil, err
				}
				i = next
			default:
				return nil, NewMalformedError("unknown action kind")
			}
		default:
			return nil, NewMalformedError("unrecognized code item")
		}
	}
	if s.SpecParent != nil {
		return nil, NewControlError("implicit return in speculative state")
	}
	return nil, nil
}

// jumpTarget scans fn's code for the Label named label and returns its
// index, so the main loop's next iteration visits the Label item itself
// and updates curlabel/lastlabel before falling through to whatever
// follows it (spec §4.7).
func jumpTarget(fn *ir.Function, label string) (int, error) {
	for i, item := range fn.Code {
		if l, ok := item.(*ir.Label); ok && l.Name == label {
			return i, nil
		}
	}
	return 0, NewNameError("unresolved label: %s", label)
}
