package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/irvm/brilgo/internal/interp"
)

var (
	// Version information (set by build flags)
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "brilgo",
	Short: "An interpreter for a small typed SSA intermediate representation",
	Long: `brilgo interprets programs written in a small, typed, SSA-capable
intermediate representation: int/bool/float values, heap-backed pointers
with pointer arithmetic, reference-counted memory, phi nodes, and
branch-free speculative execution via speculate/guard/commit/abort.`,
	Version: Version,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose diagnostics on stderr")
}

// exitWithError prints msg and exits with the given status code. Exit
// code 2 is reserved for recognized interpreter errors (*interp.Error);
// everything else (bad flags, I/O failures) exits 1, per spec.md §6.
func exitWithError(code int, msg string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+msg+"\n", args...)
	os.Exit(code)
}

// exitCodeFor implements the two-tier exit-code scheme spec.md §6
// requires: 2 for a recognized interpreter error, 1 for anything else.
func exitCodeFor(err error) int {
	if _, ok := err.(*interp.Error); ok {
		return 2
	}
	return 1
}
