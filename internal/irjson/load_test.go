package irjson

import (
	"strings"
	"testing"

	"github.com/irvm/brilgo/internal/ir"
)

func TestParseType(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"int", "int"},
		{"bool", "bool"},
		{"float", "float"},
		{"ptr<int>", "ptr<int>"},
		{"ptr<ptr<float>>", "ptr<ptr<float>>"},
	}
	for _, c := range cases {
		got, err := ParseType(c.in)
		if err != nil {
			t.Fatalf("ParseType(%q): %v", c.in, err)
		}
		if got.String() != c.want {
			t.Fatalf("ParseType(%q).String() = %q, want %q", c.in, got.String(), c.want)
		}
	}
}

func TestParseTypeUnknown(t *testing.T) {
	if _, err := ParseType("string"); err == nil {
		t.Fatalf("ParseType(string) succeeded, want an error")
	}
	if _, err := ParseType("ptr<string>"); err == nil {
		t.Fatalf("ParseType(ptr<string>) succeeded, want an error")
	}
}

func TestLoadSimpleProgram(t *testing.T) {
	src := `{
		"functions": [
			{
				"name": "main",
				"params": [{"name": "n", "type": "int"}],
				"code": [
					{"op": "const", "dest": "one", "type": "int", "value": 1},
					{"op": "add", "dest": "r", "type": "int", "args": ["n", "one"]},
					{"label": "done"},
					{"op": "print", "args": ["r"]},
					{"op": "ret"}
				]
			}
		]
	}`

	prog, err := Load(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	fn, ok := prog.Lookup("main")
	if !ok {
		t.Fatalf("main not found")
	}
	if len(fn.Params) != 1 || fn.Params[0].Name != "n" || fn.Params[0].Type.Kind != ir.KindInt {
		t.Fatalf("params = %+v", fn.Params)
	}
	if len(fn.Code) != 5 {
		t.Fatalf("code length = %d, want 5", len(fn.Code))
	}
	if _, ok := fn.Code[2].(*ir.Label); !ok {
		t.Fatalf("code[2] = %T, want *ir.Label", fn.Code[2])
	}
	constInstr, ok := fn.Code[0].(*ir.ConstantInstr)
	if !ok {
		t.Fatalf("code[0] = %T, want *ir.ConstantInstr", fn.Code[0])
	}
	if constInstr.Literal != int64(1) {
		t.Fatalf("const literal = %v (%T), want int64(1)", constInstr.Literal, constInstr.Literal)
	}
}

func TestLoadDiscriminatesFloatLiterals(t *testing.T) {
	src := `{"functions":[{"name":"main","code":[
		{"op":"const","dest":"x","type":"float","value":3.5}
	]}]}`
	prog, err := Load(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	fn, _ := prog.Lookup("main")
	c := fn.Code[0].(*ir.ConstantInstr)
	if _, ok := c.Literal.(float64); !ok {
		t.Fatalf("literal = %T, want float64", c.Literal)
	}
}

func TestLoadRejectsInvalidJSON(t *testing.T) {
	if _, err := Load(strings.NewReader("not json")); err == nil {
		t.Fatalf("Load of invalid JSON succeeded")
	}
}

func TestLoadRejectsDuplicateFunctionNames(t *testing.T) {
	src := `{"functions":[{"name":"f","code":[]},{"name":"f","code":[]}]}`
	if _, err := Load(strings.NewReader(src)); err == nil {
		t.Fatalf("Load with duplicate function names succeeded")
	}
}
