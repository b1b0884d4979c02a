package main

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/automaxprocs/maxprocs"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues safely.
	_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))

	os.Exit(run(os.Args, os.Stdout, os.Stderr))
}

// run dispatches subcommands and maps errors to exit codes.
func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 2 {
		printUsage(stderr)
		return ExitUsage
	}

	cmd := args[1]
	rest := args[2:]

	var err error
	switch cmd {
	case "imgupload", "table2img", "mermaid2img":
		err = runPipeline(cmd, rest, stdout, stderr)
	case "zhihu":
		err = runZhihu(rest, stdout, stderr)
	case "version":
		fmt.Fprintf(stdout, "mdproc %s\n", Version)
		return ExitSuccess
	case "help", "-h", "--help":
		runHelp(rest, stdout)
		return ExitSuccess
	default:
		fmt.Fprintf(stderr, "unknown command: %q\n\n", cmd)
		printUsage(stderr)
		return ExitUsage
	}

	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitCodeFor(err)
	}
	return ExitSuccess
}

// runHelp prints command-specific or general usage.
func runHelp(args []string, w io.Writer) {
	if len(args) == 0 {
		printUsage(w)
		return
	}
	switch args[0] {
	case "imgupload", "table2img", "mermaid2img":
		printPipelineUsage(w, args[0])
	case "zhihu":
		printZhihuUsage(w)
	default:
		printUsage(w)
	}
}
