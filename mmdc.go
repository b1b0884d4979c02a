package mdproc

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/honghe/mdproc/internal/fileutil"
)

// CommandRunner abstracts command execution to enable testing without
// real subprocesses.
type CommandRunner interface {
	Run(ctx context.Context, stdin string, name string, args ...string) (stdout string, stderr string, err error)
}

// ExecRunner implements CommandRunner using os/exec.
type ExecRunner struct{}

func (r *ExecRunner) Run(ctx context.Context, stdin string, name string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdin = strings.NewReader(stdin)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// mermaidCLIRenderer rasterizes mermaid source by invoking the mermaid-cli
// (mmdc) binary. It is the alternate backend for environments where a
// Node-managed Chrome is preferable to rod's.
type mermaidCLIRenderer struct {
	runner   CommandRunner
	mmdcPath string
	settings RenderSettings
}

// Compile-time interface check.
var _ Renderer = (*mermaidCLIRenderer)(nil)

func newMermaidCLIRenderer(runner CommandRunner, mmdcPath string, settings RenderSettings) *mermaidCLIRenderer {
	return &mermaidCLIRenderer{runner: runner, mmdcPath: mmdcPath, settings: settings}
}

// resolveMMDC locates the mmdc binary: explicit path, MMDC_PATH env, or
// PATH lookup, in that order.
func (r *mermaidCLIRenderer) resolveMMDC() (string, error) {
	if r.mmdcPath != "" {
		return r.mmdcPath, nil
	}
	if p := os.Getenv("MMDC_PATH"); p != "" {
		return p, nil
	}
	p, err := exec.LookPath("mmdc")
	if err != nil {
		return "", ErrMMDCNotFound
	}
	return p, nil
}

// Render pipes the diagram source to mmdc on stdin and reads back the
// PNG it writes to a temporary output file.
func (r *mermaidCLIRenderer) Render(ctx context.Context, source string) ([]byte, error) {
	mmdc, err := r.resolveMMDC()
	if err != nil {
		return nil, err
	}

	// mmdc requires -o; capture through a temp file.
	outPath, cleanup, err := fileutil.WriteTempFile("", "png")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	theme := r.settings.Theme
	if theme == "" {
		theme = ThemeDefault
	}
	scale := r.settings.Scale
	if scale <= 0 {
		scale = 1
	}

	args := []string{
		"-i", "-",
		"-o", outPath,
		"--theme", theme,
		"--scale", strconv.Itoa(int(scale)),
		"--backgroundColor", "white",
	}

	_, stderr, err := r.runner.Run(ctx, source, mmdc, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMermaidCLI, strings.TrimSpace(stderr), err)
	}

	data, err := os.ReadFile(outPath) // #nosec G304 -- path comes from os.CreateTemp
	if err != nil {
		return nil, fmt.Errorf("%w: reading output: %v", ErrMermaidCLI, err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyRender
	}

	return data, nil
}
