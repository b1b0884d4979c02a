package mdproc

import (
	"io"
	"time"
)

// Mermaid backend constants.
const (
	BackendBrowser = "browser"
	BackendCLI     = "cli"
)

// Mermaid theme constants (subset of upstream themes in common use).
const (
	ThemeDefault = "default"
	ThemeDark    = "dark"
	ThemeForest  = "forest"
	ThemeNeutral = "neutral"
)

// Document is a markdown file to process: read once, written once.
type Document struct {
	Path    string // Source file path; its directory anchors relative image targets
	Content string // Full markdown text
}

// Match is a located span of markdown text slated for replacement.
// Start and End are byte offsets into the document; Text is the exact
// matched substring, document[Start:End].
type Match struct {
	Start int
	End   int
	Text  string

	Alt    string // Image alt text (image matches only)
	Target string // Image source URL or path (image matches only)
	Body   string // Inner source: table markup or mermaid code (block matches only)
}

// UploadResult is the remote object key and its public URL.
type UploadResult struct {
	Key string
	URL string
}

// RenderSettings tunes the table and mermaid renderers.
type RenderSettings struct {
	Theme  string  // Mermaid theme: default, dark, forest, neutral
	Scale  float64 // Device scale factor (CLI backend: --scale)
	Layout string  // Flowchart layout engine: dagre or elk (browser backend)
	Bundle string  // Local mermaid bundle path ("" = jsDelivr CDN)
}

// DefaultRenderSettings returns the settings the original scripts shipped with.
func DefaultRenderSettings() RenderSettings {
	return RenderSettings{
		Theme:  ThemeDefault,
		Scale:  2.0,
		Layout: "elk",
	}
}

// Option configures a Service.
type Option func(*Service)

// serviceConfig holds internal configuration for Service.
type serviceConfig struct {
	timeout  time.Duration
	render   RenderSettings
	backend  string
	mmdcPath string
	progress io.Writer
}

// defaultTimeout bounds a single render or upload.
const defaultTimeout = 30 * time.Second

// WithTimeout sets the per-render and per-upload timeout.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("mdproc: WithTimeout duration must be positive")
	}
	return func(s *Service) {
		s.cfg.timeout = d
	}
}

// WithRenderSettings overrides the renderer tuning knobs.
func WithRenderSettings(rs RenderSettings) Option {
	return func(s *Service) {
		s.cfg.render = rs
	}
}

// WithMermaidBackend selects the mermaid rendering backend:
// BackendBrowser (default) or BackendCLI.
func WithMermaidBackend(backend string) Option {
	return func(s *Service) {
		s.cfg.backend = backend
	}
}

// WithMMDCPath sets the mermaid-cli binary path for the CLI backend.
// Empty means MMDC_PATH env or PATH lookup.
func WithMMDCPath(path string) Option {
	return func(s *Service) {
		s.cfg.mmdcPath = path
	}
}

// WithUploader injects the uploader (production COS or a test fake).
func WithUploader(u Uploader) Option {
	return func(s *Service) {
		s.uploader = u
	}
}

// WithTableRenderer injects the table renderer (tests).
func WithTableRenderer(r Renderer) Option {
	return func(s *Service) {
		s.tableRenderer = r
	}
}

// WithMermaidRenderer injects the mermaid renderer (tests).
func WithMermaidRenderer(r Renderer) Option {
	return func(s *Service) {
		s.mermaidRenderer = r
	}
}

// WithResolver injects the image resolver (tests).
func WithResolver(r ImageResolver) Option {
	return func(s *Service) {
		s.resolver = r
	}
}

// WithSkipHost marks a host whose image references are left untouched by
// UploadImages. Pass the bucket host so re-running the pipeline on its
// own output makes no changes.
func WithSkipHost(host string) Option {
	return func(s *Service) {
		s.skipHost = host
	}
}

// WithProgress sets the writer for per-match progress and warnings.
// Defaults to io.Discard.
func WithProgress(w io.Writer) Option {
	return func(s *Service) {
		s.cfg.progress = w
	}
}
