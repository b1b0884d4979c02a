package main

import (
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"
)

// ErrFlagParse wraps pflag parse failures so they map to the usage exit code.
var ErrFlagParse = errors.New("invalid flags")

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// outputFlags holds output destination flags.
type outputFlags struct {
	output  string
	inPlace bool
}

// mermaidFlags holds mermaid rendering flags.
type mermaidFlags struct {
	backend string
	theme   string
	layout  string
	bundle  string
	mmdc    string
	scale   float64
}

// pipelineFlags holds all flags for the pipeline commands.
type pipelineFlags struct {
	common  commonFlags
	out     outputFlags
	workers int
	timeout string
	mermaid mermaidFlags
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show per-match progress")
}

// addOutputFlags adds output destination flags to a FlagSet.
func addOutputFlags(fs *flag.FlagSet, f *outputFlags) {
	fs.StringVarP(&f.output, "output", "o", "", "output file (single input only)")
	fs.BoolVar(&f.inPlace, "in-place", false, "overwrite the input file")
}

// addMermaidFlags adds mermaid rendering flags to a FlagSet.
func addMermaidFlags(fs *flag.FlagSet, f *mermaidFlags) {
	fs.StringVar(&f.backend, "backend", "", "mermaid backend: browser, cli")
	fs.StringVar(&f.theme, "theme", "", "mermaid theme: default, dark, forest, neutral")
	fs.StringVar(&f.layout, "layout", "", "flowchart layout engine: dagre, elk")
	fs.StringVar(&f.bundle, "bundle", "", "local mermaid bundle path (default: CDN)")
	fs.StringVar(&f.mmdc, "mmdc", "", "mermaid-cli binary path (cli backend)")
	fs.Float64Var(&f.scale, "scale", 0, "device scale factor")
}

// parsePipelineFlags parses flags for a pipeline command and returns the
// positional args (input files).
func parsePipelineFlags(cmd string, args []string, stderr io.Writer) (*pipelineFlags, []string, error) {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	f := &pipelineFlags{}

	addCommonFlags(fs, &f.common)
	addOutputFlags(fs, &f.out)
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers for multiple inputs (0 = auto)")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "per-render timeout (e.g., 30s, 2m)")

	if cmd == "mermaid2img" {
		addMermaidFlags(fs, &f.mermaid)
	}

	fs.SetOutput(stderr)
	fs.Usage = func() { printPipelineUsage(stderr, cmd) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, nil, flag.ErrHelp
		}
		return nil, nil, fmt.Errorf("%w: %v", ErrFlagParse, err)
	}

	return f, fs.Args(), nil
}

// zhihuFlags holds flags for the zhihu command.
type zhihuFlags struct {
	quiet bool
	out   outputFlags
}

// parseZhihuFlags parses flags for the zhihu command.
func parseZhihuFlags(args []string, stderr io.Writer) (*zhihuFlags, []string, error) {
	fs := flag.NewFlagSet("zhihu", flag.ContinueOnError)
	f := &zhihuFlags{}

	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	addOutputFlags(fs, &f.out)

	fs.SetOutput(stderr)
	fs.Usage = func() { printZhihuUsage(stderr) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, nil, flag.ErrHelp
		}
		return nil, nil, fmt.Errorf("%w: %v", ErrFlagParse, err)
	}

	return f, fs.Args(), nil
}
