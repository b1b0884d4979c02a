package mdproc

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Renderer turns a markdown fragment (table markup or mermaid source)
// into PNG bytes.
type Renderer interface {
	Render(ctx context.Context, source string) ([]byte, error)
}

// Compile-time interface checks.
var (
	_ Renderer = (*tableRenderer)(nil)
	_ Renderer = (*mermaidBrowserRenderer)(nil)
)

// Table page geometry. A wide, fixed viewport lets tables with many
// columns spread out horizontally; the screenshot crops to the element.
const (
	tableViewportWidth  = 2000
	tableViewportHeight = 800
	tableSelector       = "#table"
)

// tablePageTemplate wraps the rendered table HTML in a minimal page with
// the fixed table styling the original tool used.
const tablePageTemplate = `<html>
<head>
<meta charset="UTF-8">
<style>
table {
border-collapse: collapse;
width: max-content;
table-layout: fixed;
font-size: 14px;
}
td, th {
border: 1px solid #333;
padding: 6px 10px;
word-break: break-word;
}
</style>
</head>
<body>
%s
</body>
</html>
`

// tableRenderer rasterizes a pipe table: goldmark converts the block to
// an HTML table, headless Chrome screenshots it.
type tableRenderer struct {
	capturer elementCapturer
	md       goldmark.Markdown
}

func newTableRenderer(capturer elementCapturer) *tableRenderer {
	return &tableRenderer{
		capturer: capturer,
		md:       goldmark.New(goldmark.WithExtensions(extension.Table)),
	}
}

func (r *tableRenderer) Render(ctx context.Context, source string) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(source), &buf); err != nil {
		return nil, fmt.Errorf("%w: converting table to HTML: %v", ErrRenderFailed, err)
	}

	// Tag the table so the screenshot can target it.
	tableHTML := strings.Replace(buf.String(), "<table", `<table id="table"`, 1)

	return r.capturer.Capture(ctx, captureRequest{
		HTML:     fmt.Sprintf(tablePageTemplate, tableHTML),
		Selector: tableSelector,
		Width:    tableViewportWidth,
		Height:   tableViewportHeight,
		Scale:    1.0,
	})
}

// Mermaid page geometry.
const (
	mermaidViewportWidth  = 800
	mermaidViewportHeight = 800
	mermaidSelector       = "#diagram"
)

// mermaidPageTemplate embeds the diagram source and a rendering script.
// The script flips data-render-status to "ready" or "error" so the
// capturer knows when drawing finished; mermaid parse failures (invalid
// diagram syntax) surface through the "error" path.
//
// text/template on purpose: mermaid reads the element text verbatim and
// HTML-escaping would corrupt arrows like -->.
var mermaidPageTemplate = template.Must(template.New("mermaid").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
{{if .BundleURI -}}
<script src="{{.BundleURI}}"></script>
<script>
mermaid.initialize({ startOnLoad: false, theme: '{{.Theme}}', securityLevel: 'loose'{{.FlowchartConfig}} });
mermaid.run({ querySelector: '#diagram' }).then(() => {
	document.documentElement.dataset.renderStatus = 'ready';
}).catch((err) => {
	document.documentElement.dataset.renderError = String(err);
	document.documentElement.dataset.renderStatus = 'error';
});
</script>
{{- else -}}
<script type="module">
import mermaid from 'https://cdn.jsdelivr.net/npm/mermaid@11/dist/mermaid.esm.min.mjs';
import elkLayouts from 'https://cdn.jsdelivr.net/npm/@mermaid-js/layout-elk@0/dist/mermaid-layout-elk.esm.min.mjs';
mermaid.registerLayoutLoaders(elkLayouts);
mermaid.initialize({ startOnLoad: false, theme: '{{.Theme}}', securityLevel: 'loose'{{.FlowchartConfig}} });
try {
	await mermaid.run({ querySelector: '#diagram' });
	document.documentElement.dataset.renderStatus = 'ready';
} catch (err) {
	document.documentElement.dataset.renderError = String(err);
	document.documentElement.dataset.renderStatus = 'error';
}
</script>
{{- end}}
<style>
body {
	margin: 0;
	padding: 20px;
	background-color: white;
	display: flex;
	justify-content: center;
	align-items: center;
	min-height: 100vh;
}
#diagram {
	max-width: 100%;
}
</style>
</head>
<body>
<pre class="mermaid" id="diagram">
{{.Source}}
</pre>
</body>
</html>
`))

// mermaidPageParams feeds mermaidPageTemplate.
type mermaidPageParams struct {
	Source          string
	Theme           string
	BundleURI       string
	FlowchartConfig string
}

// mermaidBrowserRenderer rasterizes mermaid source in headless Chrome,
// loading mermaid from a local bundle or the jsDelivr CDN.
type mermaidBrowserRenderer struct {
	capturer elementCapturer
	settings RenderSettings
}

func newMermaidBrowserRenderer(capturer elementCapturer, settings RenderSettings) *mermaidBrowserRenderer {
	return &mermaidBrowserRenderer{capturer: capturer, settings: settings}
}

func (r *mermaidBrowserRenderer) Render(ctx context.Context, source string) ([]byte, error) {
	html, err := buildMermaidPage(source, r.settings)
	if err != nil {
		return nil, err
	}

	return r.capturer.Capture(ctx, captureRequest{
		HTML:       html,
		Selector:   mermaidSelector,
		Width:      mermaidViewportWidth,
		Height:     mermaidViewportHeight,
		Scale:      r.settings.Scale,
		WaitRender: true,
	})
}

// buildMermaidPage renders the HTML page for one diagram.
func buildMermaidPage(source string, settings RenderSettings) (string, error) {
	params := mermaidPageParams{
		Source: source,
		Theme:  settings.Theme,
	}
	if params.Theme == "" {
		params.Theme = ThemeDefault
	}

	// The ELK layout engine only applies to flowcharts.
	if settings.Layout != "" && settings.Layout != "dagre" && isFlowchart(source) {
		params.FlowchartConfig = fmt.Sprintf(", flowchart: { defaultRenderer: '%s' }", settings.Layout)
	}

	if settings.Bundle != "" {
		abs, err := filepath.Abs(settings.Bundle)
		if err != nil {
			return "", fmt.Errorf("%w: resolving bundle path: %v", ErrRenderFailed, err)
		}
		u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
		params.BundleURI = u.String()
	}

	var buf bytes.Buffer
	if err := mermaidPageTemplate.Execute(&buf, params); err != nil {
		return "", fmt.Errorf("%w: building mermaid page: %v", ErrRenderFailed, err)
	}
	return buf.String(), nil
}

// isFlowchart reports whether the diagram source declares a flowchart.
func isFlowchart(source string) bool {
	return strings.Contains(strings.ToLower(source), "flowchart")
}
