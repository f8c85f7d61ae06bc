package interp

import (
	"sort"

	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// DumpTraces renders the `-tr` trace map (spec §4.8) as JSON. The
// document is built incrementally with sjson — one Set call per
// function, each writing that function's whole log array — rather than via a
// struct-and-Marshal round trip, since the value being built (a map of
// function name to instruction-name array, assembled by the tracer one
// append at a time as the evaluator runs) is exactly the
// path-addressed, shape-light document sjson is for. The result is then
// run through tidwall/pretty so the dump reads as stable, indented text
// rather than a single JSON line (the CLI prints it to stdout).
func DumpTraces(traces map[string][]string) (string, error) {
	names := make([]string, 0, len(traces))
	for name := range traces {
		names = append(names, name)
	}
	sort.Strings(names)

	doc := "{}"
	var err error
	for _, name := range names {
		log := traces[name]
		if log == nil {
			log = []string{}
		}
		doc, err = sjson.Set(doc, name, log)
		if err != nil {
			return "", NewMalformedError("failed to serialize trace for %s: %v", name, err)
		}
	}
	return string(pretty.Pretty([]byte(doc))), nil
}
