package mdproc

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
)

// fakeRunner simulates mmdc: it records the invocation and writes output
// bytes to the file named by the -o flag.
type fakeRunner struct {
	name   string
	args   []string
	stdin  string
	output []byte
	err    error
	stderr string
}

func (f *fakeRunner) Run(_ context.Context, stdin string, name string, args ...string) (string, string, error) {
	f.name = name
	f.args = args
	f.stdin = stdin

	if f.err != nil {
		return "", f.stderr, f.err
	}

	for i, a := range args {
		if a == "-o" && i+1 < len(args) {
			if err := os.WriteFile(args[i+1], f.output, 0o600); err != nil {
				return "", "", err
			}
		}
	}
	return "", "", nil
}

func TestMermaidCLIRenderer_Render(t *testing.T) {
	runner := &fakeRunner{output: []byte("png bytes")}
	r := newMermaidCLIRenderer(runner, "/usr/bin/mmdc", RenderSettings{Theme: ThemeForest, Scale: 2})

	source := "graph TD\n  A --> B"
	data, err := r.Render(context.Background(), source)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if string(data) != "png bytes" {
		t.Errorf("Render() = %q, want %q", data, "png bytes")
	}

	if runner.name != "/usr/bin/mmdc" {
		t.Errorf("binary = %q, want /usr/bin/mmdc", runner.name)
	}
	if runner.stdin != source {
		t.Errorf("stdin = %q, want diagram source", runner.stdin)
	}

	argLine := strings.Join(runner.args, " ")
	for _, want := range []string{"-i - ", "--theme forest", "--scale 2", "--backgroundColor white"} {
		if !strings.Contains(argLine, want) {
			t.Errorf("args %q missing %q", argLine, want)
		}
	}
}

func TestMermaidCLIRenderer_DefaultSettings(t *testing.T) {
	runner := &fakeRunner{output: []byte("x")}
	r := newMermaidCLIRenderer(runner, "mmdc", RenderSettings{})

	if _, err := r.Render(context.Background(), "graph TD"); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	argLine := strings.Join(runner.args, " ")
	if !strings.Contains(argLine, "--theme default") {
		t.Errorf("args %q missing default theme", argLine)
	}
	if !strings.Contains(argLine, "--scale 1") {
		t.Errorf("args %q missing default scale", argLine)
	}
}

func TestMermaidCLIRenderer_CommandError(t *testing.T) {
	runner := &fakeRunner{err: fmt.Errorf("exit status 1"), stderr: "Parse error on line 2"}
	r := newMermaidCLIRenderer(runner, "mmdc", DefaultRenderSettings())

	_, err := r.Render(context.Background(), "graph TD\n  bad")
	if !errors.Is(err, ErrMermaidCLI) {
		t.Fatalf("Render() error = %v, want ErrMermaidCLI", err)
	}
	if !strings.Contains(err.Error(), "Parse error on line 2") {
		t.Errorf("error %q should carry mmdc stderr", err)
	}
}

func TestMermaidCLIRenderer_EmptyOutput(t *testing.T) {
	runner := &fakeRunner{output: nil}
	r := newMermaidCLIRenderer(runner, "mmdc", DefaultRenderSettings())

	_, err := r.Render(context.Background(), "graph TD")
	if !errors.Is(err, ErrEmptyRender) {
		t.Errorf("Render() error = %v, want ErrEmptyRender", err)
	}
}

func TestResolveMMDC(t *testing.T) {
	t.Run("explicit path wins", func(t *testing.T) {
		t.Setenv("MMDC_PATH", "/env/mmdc")
		r := newMermaidCLIRenderer(nil, "/explicit/mmdc", RenderSettings{})

		got, err := r.resolveMMDC()
		if err != nil {
			t.Fatalf("resolveMMDC() error = %v", err)
		}
		if got != "/explicit/mmdc" {
			t.Errorf("resolveMMDC() = %q, want /explicit/mmdc", got)
		}
	})

	t.Run("env fallback", func(t *testing.T) {
		t.Setenv("MMDC_PATH", "/env/mmdc")
		r := newMermaidCLIRenderer(nil, "", RenderSettings{})

		got, err := r.resolveMMDC()
		if err != nil {
			t.Fatalf("resolveMMDC() error = %v", err)
		}
		if got != "/env/mmdc" {
			t.Errorf("resolveMMDC() = %q, want /env/mmdc", got)
		}
	})

	t.Run("not found", func(t *testing.T) {
		t.Setenv("MMDC_PATH", "")
		t.Setenv("PATH", t.TempDir())
		r := newMermaidCLIRenderer(nil, "", RenderSettings{})

		if _, err := r.resolveMMDC(); !errors.Is(err, ErrMMDCNotFound) {
			t.Errorf("resolveMMDC() error = %v, want ErrMMDCNotFound", err)
		}
	})
}
