package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	flag "github.com/spf13/pflag"

	mdproc "github.com/honghe/mdproc"
	"github.com/honghe/mdproc/internal/config"
)

// Sentinel errors for CLI operations.
var (
	ErrNoInput            = errors.New("no input specified")
	ErrReadMarkdown       = errors.New("failed to read markdown file")
	ErrWriteOutput        = errors.New("failed to write output file")
	ErrInvalidExtension   = errors.New("file must have .md or .markdown extension")
	ErrOutputConflict     = errors.New("-o/--output requires exactly one input file")
	ErrInvalidWorkerCount = errors.New("invalid worker count")
	ErrInvalidTimeout     = errors.New("invalid timeout")
	ErrInvalidBackend     = errors.New("invalid mermaid backend")
)

// filePermissions for written markdown output.
const filePermissions = 0o644

// outputSuffix is appended to the input file stem per command, matching
// the names the original scripts produced.
var outputSuffix = map[string]string{
	"imgupload":   "_output",
	"table2img":   "_table2img",
	"mermaid2img": "_mm2img",
	"zhihu":       "_forzhihu",
}

// pipelineFunc runs one pipeline on one document.
type pipelineFunc func(ctx context.Context, svc *mdproc.Service, doc mdproc.Document) (string, error)

// pipelines maps commands to Service methods.
var pipelines = map[string]pipelineFunc{
	"imgupload": func(ctx context.Context, svc *mdproc.Service, doc mdproc.Document) (string, error) {
		return svc.UploadImages(ctx, doc)
	},
	"table2img": func(ctx context.Context, svc *mdproc.Service, doc mdproc.Document) (string, error) {
		return svc.RenderTables(ctx, doc)
	},
	"mermaid2img": func(ctx context.Context, svc *mdproc.Service, doc mdproc.Document) (string, error) {
		return svc.RenderMermaid(ctx, doc)
	},
}

// runPipeline orchestrates one of the three upload pipelines.
// Credentials are validated before any file is read, and output files are
// written only after the whole pipeline for that document succeeds.
func runPipeline(cmd string, args []string, stdout, stderr io.Writer) error {
	flags, inputs, err := parsePipelineFlags(cmd, args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}

	if len(inputs) == 0 {
		return ErrNoInput
	}
	if flags.out.output != "" && len(inputs) != 1 {
		return ErrOutputConflict
	}
	for _, input := range inputs {
		if err := validateMarkdownExtension(input); err != nil {
			return err
		}
	}

	// Fail on missing credentials before touching any input.
	cos, err := config.COSFromEnv()
	if err != nil {
		return err
	}

	cfg := config.DefaultConfig()
	if flags.common.config != "" {
		cfg, err = config.LoadConfig(flags.common.config)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
	}

	opts, err := buildServiceOptions(flags, cfg, cos, stderr)
	if err != nil {
		return err
	}

	process := pipelines[cmd]
	suffix := outputSuffix[cmd]
	ctx := context.Background()

	if len(inputs) == 1 {
		svc := mdproc.New(opts...)
		defer svc.Close()
		return processFile(ctx, svc, process, inputs[0], resolveOutputPath(inputs[0], suffix, flags.out), flags.common.quiet, stdout)
	}

	workers := flags.workers
	if workers == 0 {
		workers = cfg.Workers
	}
	if workers < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidWorkerCount, workers)
	}
	pool := mdproc.NewServicePool(mdproc.ResolvePoolSize(workers), func() *mdproc.Service {
		return mdproc.New(opts...)
	})
	defer pool.Close()

	return processBatch(ctx, pool, process, inputs, suffix, flags, stdout)
}

// buildServiceOptions merges config file and flags (flags win) into
// Service options shared by every worker.
func buildServiceOptions(flags *pipelineFlags, cfg *config.Config, cos config.COS, stderr io.Writer) ([]mdproc.Option, error) {
	uploader, err := mdproc.NewCOSUploader(cos, cfg.Upload.KeyPrefix)
	if err != nil {
		return nil, err
	}

	opts := []mdproc.Option{
		mdproc.WithUploader(uploader),
		mdproc.WithSkipHost(cos.BucketHost()),
	}

	timeout := flags.timeout
	if timeout == "" {
		timeout = cfg.Timeout
	}
	if timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidTimeout, timeout)
		}
		opts = append(opts, mdproc.WithTimeout(d))
	}

	render := mdproc.DefaultRenderSettings()
	if cfg.Mermaid.Theme != "" {
		render.Theme = cfg.Mermaid.Theme
	}
	if cfg.Mermaid.Scale > 0 {
		render.Scale = cfg.Mermaid.Scale
	}
	if cfg.Mermaid.Layout != "" {
		render.Layout = cfg.Mermaid.Layout
	}
	if cfg.Mermaid.Bundle != "" {
		render.Bundle = cfg.Mermaid.Bundle
	}
	if flags.mermaid.theme != "" {
		render.Theme = flags.mermaid.theme
	}
	if flags.mermaid.scale > 0 {
		render.Scale = flags.mermaid.scale
	}
	if flags.mermaid.layout != "" {
		render.Layout = flags.mermaid.layout
	}
	if flags.mermaid.bundle != "" {
		render.Bundle = flags.mermaid.bundle
	}
	opts = append(opts, mdproc.WithRenderSettings(render))

	backend := flags.mermaid.backend
	if backend == "" {
		backend = cfg.Mermaid.Backend
	}
	switch backend {
	case "":
		// browser default
	case mdproc.BackendBrowser, mdproc.BackendCLI:
		opts = append(opts, mdproc.WithMermaidBackend(backend))
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidBackend, backend)
	}
	if flags.mermaid.mmdc != "" {
		opts = append(opts, mdproc.WithMMDCPath(flags.mermaid.mmdc))
	}

	if flags.common.verbose {
		opts = append(opts, mdproc.WithProgress(stderr))
	}

	return opts, nil
}

// processFile runs one pipeline over one document and writes the result.
func processFile(ctx context.Context, svc *mdproc.Service, process pipelineFunc, inputPath, outputPath string, quiet bool, stdout io.Writer) error {
	content, err := readMarkdownFile(inputPath)
	if err != nil {
		return err
	}

	result, err := process(ctx, svc, mdproc.Document{Path: inputPath, Content: content})
	if err != nil {
		return fmt.Errorf("%s: %w", inputPath, err)
	}

	if err := os.WriteFile(outputPath, []byte(result), filePermissions); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrWriteOutput, outputPath, err)
	}

	if !quiet {
		fmt.Fprintf(stdout, "Created %s\n", outputPath)
	}
	return nil
}

// processBatch fans inputs out over the service pool and aggregates errors.
func processBatch(ctx context.Context, pool *mdproc.ServicePool, process pipelineFunc, inputs []string, suffix string, flags *pipelineFlags, stdout io.Writer) error {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)

	for _, input := range inputs {
		wg.Add(1)
		go func(input string) {
			defer wg.Done()

			svc := pool.Acquire()
			defer pool.Release(svc)

			out := resolveOutputPath(input, suffix, flags.out)
			if err := processFile(ctx, svc, process, input, out, flags.common.quiet, stdout); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}(input)
	}

	wg.Wait()
	return errors.Join(errs...)
}

// runZhihu tidies blank lines around image references. Pure text
// transform, no credentials or uploads involved.
func runZhihu(args []string, stdout, stderr io.Writer) error {
	flags, inputs, err := parseZhihuFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		return ErrNoInput
	}
	if flags.out.output != "" && len(inputs) != 1 {
		return ErrOutputConflict
	}

	for _, input := range inputs {
		if err := validateMarkdownExtension(input); err != nil {
			return err
		}

		content, err := readMarkdownFile(input)
		if err != nil {
			return err
		}

		result, images, removed := mdproc.TidyImageSpacing(content)

		outputPath := resolveOutputPath(input, outputSuffix["zhihu"], flags.out)
		if err := os.WriteFile(outputPath, []byte(result), filePermissions); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrWriteOutput, outputPath, err)
		}

		if !flags.quiet {
			fmt.Fprintf(stdout, "Created %s (image tags: %d, removed empty lines: %d)\n", outputPath, images, removed)
		}
	}
	return nil
}

// resolveOutputPath picks the output file: explicit -o, in-place, or the
// default sibling `<stem><suffix>.md`.
func resolveOutputPath(inputPath, suffix string, out outputFlags) string {
	if out.inPlace {
		return inputPath
	}
	if out.output != "" {
		return out.output
	}
	ext := filepath.Ext(inputPath)
	return strings.TrimSuffix(inputPath, ext) + suffix + ".md"
}

// validateMarkdownExtension checks that the file has a .md or .markdown extension.
func validateMarkdownExtension(path string) error {
	ext := filepath.Ext(path)
	if ext != ".md" && ext != ".markdown" {
		return fmt.Errorf("%w: got %q", ErrInvalidExtension, ext)
	}
	return nil
}

// readMarkdownFile reads the content of a markdown file.
func readMarkdownFile(path string) (string, error) {
	content, err := os.ReadFile(path) // #nosec G304 -- input path is user-provided
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrReadMarkdown, err)
	}
	return string(content), nil
}
