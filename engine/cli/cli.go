// Package cli provides the command-line interface for the IPL analyzer.
package cli

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/iplang/iplanalyze/engine"
)

const useHelp = "Run 'iplanalyze -help' for more information.\n"

func printHelp(flags *flag.FlagSet, stderr io.Writer) {
	fmt.Fprintln(stderr, `IPL static analyzer and control-flow visualizer.
Usage: iplanalyze [<flag> ...] FILE ...

Each <flag> must be one of the following:`)
	flags.VisitAll(func(f *flag.Flag) {
		fmt.Fprintf(stderr, "    -%-8s %s\n", f.Name, f.Usage)
	})
	fmt.Fprintln(stderr, `
Each FILE is analyzed independently. For every file, an annotated HTML
listing is written to the output directory. If the file has no semantic
errors, a CFG and SDG are also written for every function it declares, as
.gv files, plus .png files when the "dot" program is available.`)
}

// Run runs the IPL analyzer's command-line interface. Typical usage is
//
//	os.Exit(cli.Run(os.Stdin, os.Stdout, os.Stderr, os.Args))
//
// All arguments must be non-nil, and args[0] is required.
//
// Exit codes (spec.md §6): 0 all files analyzed with no semantic errors and
// graphs written; 1 no arguments; 2 at least one file produced semantic
// errors; 3 at least one file failed to parse.
func Run(stdin io.Reader, stdout, stderr io.Writer, args []string) int {
	flags := flag.NewFlagSet("iplanalyze", flag.ContinueOnError)

	outDirFlag := flags.String("out", "out",
		"Directory where HTML listings and graphs are written")

	flags.Usage = func() { fmt.Fprint(stderr, useHelp) }
	if err := flags.Parse(args[1:]); err != nil {
		if err == flag.ErrHelp {
			printHelp(flags, stderr)
			return 1
		}
		return 1
	}

	files := flags.Args()
	if len(files) == 0 {
		printHelp(flags, stderr)
		return 1
	}

	errLog, err := os.OpenFile("err.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %s.\n", err)
		return 1
	}
	defer errLog.Close()

	sawParseFailure := false
	sawSemanticErrors := false

	for _, path := range files {
		fr, err := engine.ProcessFile(path)
		if err != nil {
			fmt.Fprintf(errLog, "%s: %+v\n", path, err)
			sawParseFailure = true
			continue
		}

		if err := engine.WriteOutput(*outDirFlag, fr); err != nil {
			fmt.Fprintf(stderr, "Error: %s.\n", err)
			return 1
		}

		if fr.HasErrors {
			sawSemanticErrors = true
		}
	}

	switch {
	case sawParseFailure:
		return 3
	case sawSemanticErrors:
		return 2
	default:
		return 0
	}
}
