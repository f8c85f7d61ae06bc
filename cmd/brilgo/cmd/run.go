package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/irvm/brilgo/internal/config"
	"github.com/irvm/brilgo/internal/interp"
	"github.com/irvm/brilgo/internal/irjson"
)

var (
	flagProfile      bool
	flagGC           bool
	flagDisableFree  bool
	flagTrace        bool
	flagHotThreshold int
	flagConfigPath   string
)

var runCmd = &cobra.Command{
	Use:   "run [file] [args...]",
	Short: "Run a program encoded as JSON IR",
	Long: `Execute a program against its entry function "main".

The first positional argument names the JSON program file; "-" or an
omitted argument reads the program from stdin. Any further positional
arguments are parsed into main's parameters in declared-type order.

Examples:
  brilgo run program.json 3 5
  cat program.json | brilgo run - 3 5`,
	Args: cobra.ArbitraryArgs,
	RunE: runProgram,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVarP(&flagProfile, "profile", "p", false, "report the dynamic instruction count at program end")
	runCmd.Flags().BoolVar(&flagGC, "gc", false, "enable reference-counted memory management")
	runCmd.Flags().BoolVar(&flagDisableFree, "df", false, "disable-free: make free a no-op")
	runCmd.Flags().BoolVar(&flagTrace, "trace", false, "record hot-function traces")
	runCmd.Flags().BoolVar(&flagTrace, "tr", false, "alias for --trace")
	runCmd.Flags().StringVar(&flagConfigPath, "config", "", "YAML file of execution-option defaults")
	runCmd.Flags().IntVar(&flagHotThreshold, "hot", 5, "tracer hotness threshold H")
}

func runProgram(cmd *cobra.Command, args []string) error {
	filename := "-"
	var entryArgs []string
	if len(args) > 0 {
		filename = args[0]
		entryArgs = args[1:]
	}

	var src io.ReadCloser
	if filename == "-" {
		src = io.NopCloser(os.Stdin)
	} else {
		f, err := os.Open(filename)
		if err != nil {
			exitWithError(1, "cannot open %s: %v", filename, err)
		}
		src = f
	}
	prog, err := irjson.Load(src)
	src.Close()
	if err != nil {
		exitWithError(1, "loading program: %v", err)
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "loaded program from %s (%d function(s))\n", filename, len(prog.Functions))
	}

	flags := cmd.Flags()
	trace := flagTrace || flags.Changed("tr")
	overrides := config.FlagOverrides{
		GC: flagGC, GCSet: flags.Changed("gc"),
		DisableFree: flagDisableFree, DisableFreeSet: flags.Changed("df"),
		Trace: trace, TraceSet: flags.Changed("trace") || flags.Changed("tr"),
		Profile: flagProfile, ProfileSet: flags.Changed("profile"),
		HotThreshold: flagHotThreshold, HotThresholdSet: flags.Changed("hot"),
	}

	var file *config.File
	if flagConfigPath != "" {
		file, err = config.Load(flagConfigPath)
		if err != nil {
			exitWithError(1, "loading config: %v", err)
		}
	}
	opts := config.Merge(file, overrides)

	if verbose {
		fmt.Fprintf(os.Stderr, "options: gc=%v disable_free=%v trace=%v profile=%v hot_threshold=%d\n",
			opts.GC(), opts.DisableFree(), opts.Trace(), opts.Profile(), opts.HotThreshold())
	}

	result, err := interp.Run(prog, entryArgs, opts, os.Stdout)
	if err != nil {
		exitWithError(exitCodeFor(err), "%v", err)
	}

	if opts.Profile() {
		fmt.Fprintln(os.Stderr, interp.ProfileLine(result.ICount))
	}
	if opts.Trace() {
		dump, err := interp.DumpTraces(result.Traces)
		if err != nil {
			exitWithError(1, "rendering trace dump: %v", err)
		}
		fmt.Fprintln(os.Stdout, dump)
	}
	return nil
}
