package cmd

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
)

// captureStdout redirects os.Stdout for the duration of fn and returns
// everything written to it. runProgram writes straight to os.Stdout
// (matching the teacher's plain fmt.Fprintf style, SPEC_FULL §2.5), so
// tests intercept the file descriptor rather than a cobra OutOrStdout.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	orig := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	fn()

	w.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("reading captured stdout: %v", err)
	}
	return string(out)
}

// captureStderr mirrors captureStdout for os.Stderr, used to assert on
// the -p profile line (spec.md §4.8, §6: profile output goes to stderr).
func captureStderr(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	orig := os.Stderr
	os.Stderr = w
	defer func() { os.Stderr = orig }()

	fn()

	w.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("reading captured stderr: %v", err)
	}
	return string(out)
}

func writeProgram(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "program.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

const addOneProgram = `{
	"functions": [
		{
			"name": "main",
			"params": [{"name": "n", "type": "int"}],
			"code": [
				{"op": "const", "dest": "one", "type": "int", "value": 1},
				{"op": "add", "dest": "r", "type": "int", "args": ["n", "one"]},
				{"op": "print", "args": ["r"]},
				{"op": "ret"}
			]
		}
	]
}`

func TestRunCommandPrintsResult(t *testing.T) {
	path := writeProgram(t, addOneProgram)
	out := captureStdout(t, func() {
		rootCmd.SetArgs([]string{"run", path, "41"})
		if err := rootCmd.Execute(); err != nil {
			t.Fatalf("Execute: %v", err)
		}
	})
	snaps.MatchSnapshot(t, out)
}

func TestRunCommandProfileFlag(t *testing.T) {
	path := writeProgram(t, addOneProgram)
	var errOut string
	out := captureStdout(t, func() {
		errOut = captureStderr(t, func() {
			rootCmd.SetArgs([]string{"run", "-p", path, "1"})
			if err := rootCmd.Execute(); err != nil {
				t.Fatalf("Execute: %v", err)
			}
		})
	})
	snaps.MatchSnapshot(t, out)
	if !strings.Contains(errOut, "total_dyn_inst:") {
		t.Fatalf("stderr = %q, want it to contain total_dyn_inst:", errOut)
	}
}
