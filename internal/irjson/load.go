// Package irjson decodes the JSON encoding of an ir.Program. Parsing
// the surface textual IR is out of this repository's scope (spec.md
// §1); this package plays the "provider of a fully-parsed Program
// value" role spec.md leaves to an external collaborator, for the one
// concrete surface format this repo's CLI accepts.
package irjson

import (
	"fmt"
	"io"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/irvm/brilgo/internal/ir"
)

// Load decodes a JSON-encoded Program from r. The outer shape
// (functions, params, the code array) is uniform enough to walk with
// plain field access, but each code item's shape depends on whether a
// "label" key is present, whether its op is "const", and whether a
// "dest" key is present — three different
// Instruction shapes sharing one JSON object shape. gjson's
// path-addressed Get, rather than three competing json.Unmarshaler
// implementations tried in sequence, is the natural fit for reading
// "does this key exist" without committing to a struct shape up front.
func Load(r io.Reader) (*ir.Program, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading program: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("empty program input")
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid JSON program")
	}
	root := gjson.ParseBytes(data)

	var prog ir.Program
	seen := make(map[string]bool)
	for _, fnJSON := range root.Get("functions").Array() {
		fn, err := parseFunction(fnJSON)
		if err != nil {
			return nil, err
		}
		if seen[fn.Name] {
			return nil, fmt.Errorf("duplicate function: %s", fn.Name)
		}
		seen[fn.Name] = true
		prog.Functions = append(prog.Functions, fn)
	}
	return &prog, nil
}

func parseFunction(fnJSON gjson.Result) (ir.Function, error) {
	name := fnJSON.Get("name").String()
	if name == "" {
		return ir.Function{}, fmt.Errorf("function missing name")
	}

	var params []ir.Param
	for _, p := range fnJSON.Get("params").Array() {
		t, err := ParseType(p.Get("type").String())
		if err != nil {
			return ir.Function{}, fmt.Errorf("function %s: param %s: %w", name, p.Get("name").String(), err)
		}
		params = append(params, ir.Param{Name: p.Get("name").String(), Type: t})
	}

	var retType *ir.Type
	if rt := fnJSON.Get("ret_type"); rt.Exists() && rt.String() != "" {
		t, err := ParseType(rt.String())
		if err != nil {
			return ir.Function{}, fmt.Errorf("function %s: return type: %w", name, err)
		}
		retType = &t
	}

	var code []ir.Code
	for _, item := range fnJSON.Get("code").Array() {
		c, err := parseCode(item)
		if err != nil {
			return ir.Function{}, fmt.Errorf("function %s: %w", name, err)
		}
		code = append(code, c)
	}

	return ir.Function{Name: name, Params: params, RetType: retType, Code: code}, nil
}

func parseCode(item gjson.Result) (ir.Code, error) {
	if lbl := item.Get("label"); lbl.Exists() {
		return &ir.Label{Name: lbl.String()}, nil
	}

	op := item.Get("op").String()
	if op == "" {
		return nil, fmt.Errorf("code item has neither label nor op")
	}
	args := stringArray(item.Get("args"))
	funcs := stringArray(item.Get("funcs"))
	labels := stringArray(item.Get("labels"))

	if op == "const" {
		var declType *ir.Type
		if t := item.Get("type"); t.Exists() {
			pt, err := ParseType(t.String())
			if err != nil {
				return nil, err
			}
			declType = &pt
		}
		lit, err := parseLiteral(item.Get("value"))
		if err != nil {
			return nil, fmt.Errorf("const %s: %w", item.Get("dest").String(), err)
		}
		return &ir.ConstantInstr{Dest: item.Get("dest").String(), DeclType: declType, Literal: lit}, nil
	}

	if d := item.Get("dest"); d.Exists() {
		t, err := ParseType(item.Get("type").String())
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", op, d.String(), err)
		}
		return &ir.ValueInstr{OpName: op, Dest: d.String(), DeclType: t, Args: args, Funcs: funcs, Labels: labels}, nil
	}

	return &ir.EffectInstr{OpName: op, Args: args, Funcs: funcs, Labels: labels}, nil
}

// parseLiteral decodes a `const` instruction's value field. JSON draws
// no distinction between integer and floating numbers, so — per
// spec.md §6's requirement that "literal kinds are discriminable" —
// this inspects the literal's raw source text for a decimal point or
// exponent the way a JSON-number-is-ambiguous loader has to.
func parseLiteral(v gjson.Result) (any, error) {
	switch v.Type {
	case gjson.True, gjson.False:
		return v.Bool(), nil
	case gjson.Number:
		if strings.ContainsAny(v.Raw, ".eE") {
			return v.Float(), nil
		}
		return v.Int(), nil
	default:
		return nil, fmt.Errorf("unsupported literal kind")
	}
}

func stringArray(v gjson.Result) []string {
	if !v.Exists() {
		return nil
	}
	arr := v.Array()
	out := make([]string, len(arr))
	for i, e := range arr {
		out[i] = e.String()
	}
	return out
}

// ParseType parses the IR's type spelling — "int", "bool", "float", or
// a recursively nested "ptr<...>" — into an ir.Type. Any other spelling
// is spec.md §4.1's "unknown type" failure.
func ParseType(s string) (ir.Type, error) {
	switch s {
	case "int":
		return ir.Int, nil
	case "bool":
		return ir.Bool, nil
	case "float":
		return ir.Float, nil
	}
	if strings.HasPrefix(s, "ptr<") && strings.HasSuffix(s, ">") {
		elem, err := ParseType(s[len("ptr<") : len(s)-1])
		if err != nil {
			return ir.Type{}, err
		}
		return ir.Ptr(elem), nil
	}
	return ir.Type{}, fmt.Errorf("unknown type: %q", s)
}
