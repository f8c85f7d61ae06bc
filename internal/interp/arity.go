package interp

// arity maps every opcode except `const` to its expected argument count.
// A value of -1 means the count is not fixed — either because the op
// takes a variable number of arguments (print, ret, call, phi) or
// because it takes none that this table checks (phi's own length rule
// is enforced where phi is evaluated, not here). Spec §4.5's preamble
// step 3 only fires the blanket length check for ops with a genuinely
// fixed arity.
var arity = map[string]int{
	"id":  1,
	"add": 2, "mul": 2, "sub": 2, "div": 2,
	"lt": 2, "le": 2, "gt": 2, "ge": 2, "eq": 2,
	"not": 1,
	"and": 2, "or": 2,
	"fadd": 2, "fsub": 2, "fmul": 2, "fdiv": 2,
	"flt": 2, "fle": 2, "fgt": 2, "fge": 2, "feq": 2,
	"print": -1,
	"jmp":   0,
	"br":    1,
	"ret":   -1,
	"nop":   0,
	"call":  -1,
	"alloc": 1,
	"free":  1,
	"store": 2,
	"load":  1,
	"ptradd":   2,
	"phi":      -1,
	"speculate": 0,
	"guard":     1,
	"commit":    0,
}

func lookupArity(op string) (int, bool) {
	n, ok := arity[op]
	return n, ok
}
