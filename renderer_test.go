package mdproc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

// fakeCapturer records the capture request and returns canned bytes.
type fakeCapturer struct {
	req  captureRequest
	data []byte
	err  error
}

func (f *fakeCapturer) Capture(_ context.Context, req captureRequest) ([]byte, error) {
	f.req = req
	return f.data, f.err
}

func (f *fakeCapturer) Close() error { return nil }

func TestTableRenderer_Render(t *testing.T) {
	t.Parallel()

	cap := &fakeCapturer{data: []byte("png")}
	r := newTableRenderer(cap)

	source := "| Name | Qty |\n|------|-----|\n| ant  | 3   |\n"
	data, err := r.Render(context.Background(), source)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if string(data) != "png" {
		t.Errorf("Render() = %q, want capturer bytes", data)
	}

	if !strings.Contains(cap.req.HTML, `<table id="table"`) {
		t.Errorf("page must tag the table for the screenshot:\n%s", cap.req.HTML)
	}
	for _, cell := range []string{"<th>Name</th>", "<td>ant</td>"} {
		if !strings.Contains(cap.req.HTML, cell) {
			t.Errorf("page missing %s:\n%s", cell, cap.req.HTML)
		}
	}
	if cap.req.Selector != "#table" {
		t.Errorf("selector = %q, want #table", cap.req.Selector)
	}
	if cap.req.Width != 2000 || cap.req.Height != 800 {
		t.Errorf("viewport = %dx%d, want 2000x800", cap.req.Width, cap.req.Height)
	}
	if cap.req.WaitRender {
		t.Errorf("static table pages must not wait for a render status")
	}
}

func TestTableRenderer_CaptureError(t *testing.T) {
	t.Parallel()

	cap := &fakeCapturer{err: fmt.Errorf("%w: no chrome", ErrBrowserConnect)}
	r := newTableRenderer(cap)

	_, err := r.Render(context.Background(), "| a |\n|---|\n| 1 |\n")
	if !errors.Is(err, ErrBrowserConnect) {
		t.Errorf("Render() error = %v, want ErrBrowserConnect", err)
	}
}

func TestMermaidBrowserRenderer_Render(t *testing.T) {
	t.Parallel()

	cap := &fakeCapturer{data: []byte("png")}
	r := newMermaidBrowserRenderer(cap, RenderSettings{Theme: ThemeDark, Scale: 2})

	data, err := r.Render(context.Background(), "graph TD\n  A --> B")
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if string(data) != "png" {
		t.Errorf("Render() = %q, want capturer bytes", data)
	}
	if cap.req.Selector != "#diagram" {
		t.Errorf("selector = %q, want #diagram", cap.req.Selector)
	}
	if !cap.req.WaitRender {
		t.Errorf("mermaid pages must wait for the render status flag")
	}
	if cap.req.Scale != 2 {
		t.Errorf("scale = %v, want 2", cap.req.Scale)
	}
}

func TestBuildMermaidPage(t *testing.T) {
	t.Parallel()

	t.Run("CDN page", func(t *testing.T) {
		t.Parallel()

		html, err := buildMermaidPage("graph TD\n  A --> B", RenderSettings{Theme: ThemeForest})
		if err != nil {
			t.Fatalf("buildMermaidPage() error = %v", err)
		}

		if !strings.Contains(html, "cdn.jsdelivr.net/npm/mermaid@11") {
			t.Errorf("CDN page must load mermaid from jsDelivr:\n%s", html)
		}
		if !strings.Contains(html, "theme: 'forest'") {
			t.Errorf("page missing theme:\n%s", html)
		}
		if !strings.Contains(html, "A --> B") {
			t.Errorf("diagram source must appear verbatim (no HTML escaping):\n%s", html)
		}
		if !strings.Contains(html, "renderStatus = 'ready'") || !strings.Contains(html, "renderStatus = 'error'") {
			t.Errorf("page must flip the render status flag:\n%s", html)
		}
	})

	t.Run("local bundle page", func(t *testing.T) {
		t.Parallel()

		html, err := buildMermaidPage("graph TD", RenderSettings{Bundle: "/opt/mermaid/mermaid.min.js"})
		if err != nil {
			t.Fatalf("buildMermaidPage() error = %v", err)
		}

		if !strings.Contains(html, `src="file:///opt/mermaid/mermaid.min.js"`) {
			t.Errorf("bundle page must load mermaid from the local file:\n%s", html)
		}
		if strings.Contains(html, "cdn.jsdelivr.net") {
			t.Errorf("bundle page must not reach for the CDN:\n%s", html)
		}
		if !strings.Contains(html, "theme: 'default'") {
			t.Errorf("empty theme must fall back to default:\n%s", html)
		}
	})

	t.Run("elk layout applies to flowcharts only", func(t *testing.T) {
		t.Parallel()

		settings := RenderSettings{Layout: "elk"}

		html, err := buildMermaidPage("flowchart LR\n  A --> B", settings)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(html, "defaultRenderer: 'elk'") {
			t.Errorf("flowchart with elk layout must set the flowchart renderer:\n%s", html)
		}

		html, err = buildMermaidPage("sequenceDiagram\n  A->>B: hi", settings)
		if err != nil {
			t.Fatal(err)
		}
		if strings.Contains(html, "defaultRenderer") {
			t.Errorf("non-flowchart diagrams must not carry flowchart config:\n%s", html)
		}
	})

	t.Run("dagre layout leaves config alone", func(t *testing.T) {
		t.Parallel()

		html, err := buildMermaidPage("flowchart LR\n  A --> B", RenderSettings{Layout: "dagre"})
		if err != nil {
			t.Fatal(err)
		}
		if strings.Contains(html, "defaultRenderer") {
			t.Errorf("dagre is mermaid's built-in layout, no config needed:\n%s", html)
		}
	})
}
