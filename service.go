package mdproc

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
)

// Service orchestrates the three markdown pipelines over one Uploader.
// A Service owns at most one headless Chrome instance, launched lazily
// and reused across matches; Close releases it.
type Service struct {
	cfg             serviceConfig
	uploader        Uploader
	resolver        ImageResolver
	tableRenderer   Renderer
	mermaidRenderer Renderer
	capturer        elementCapturer
	skipHost        string
}

// New creates a Service with default configuration.
// Use options to customize behavior and to inject test doubles.
func New(opts ...Option) *Service {
	s := &Service{
		cfg: serviceConfig{
			timeout:  defaultTimeout,
			render:   DefaultRenderSettings(),
			backend:  BackendBrowser,
			progress: io.Discard,
		},
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.resolver == nil {
		s.resolver = newFetchResolver(&http.Client{Timeout: s.cfg.timeout})
	}

	// Create renderers if not injected (e.g., by tests). Both browser
	// renderers share one capturer so the document gets a single warm
	// Chrome instance.
	if s.tableRenderer == nil || (s.mermaidRenderer == nil && s.cfg.backend != BackendCLI) {
		s.capturer = newChromeCapturer(s.cfg.timeout)
	}
	if s.tableRenderer == nil {
		s.tableRenderer = newTableRenderer(s.capturer)
	}
	if s.mermaidRenderer == nil {
		if s.cfg.backend == BackendCLI {
			s.mermaidRenderer = newMermaidCLIRenderer(&ExecRunner{}, s.cfg.mmdcPath, s.cfg.render)
		} else {
			s.mermaidRenderer = newMermaidBrowserRenderer(s.capturer, s.cfg.render)
		}
	}

	return s
}

// Close releases resources (headless Chrome browser).
func (s *Service) Close() error {
	if s.capturer != nil {
		return s.capturer.Close()
	}
	return nil
}

// UploadImages uploads every image the document references to the bucket
// and returns the rewritten text. References already hosted on the skip
// host (the bucket itself) are left untouched, so re-running on the
// pipeline's own output is a no-op. Any fetch, read, or upload failure
// aborts the run; the caller must not write output on error.
func (s *Service) UploadImages(ctx context.Context, doc Document) (string, error) {
	if doc.Content == "" {
		return "", ErrEmptyDocument
	}
	if s.uploader == nil {
		return "", ErrNoUploader
	}

	matches := ScanImages(doc.Content)
	fmt.Fprintf(s.cfg.progress, "Found %d image links\n", len(matches))

	baseDir := filepath.Dir(doc.Path)
	uploaded := make(map[string]UploadResult) // dedupe repeated targets

	var replacements []Replacement
	for _, m := range matches {
		if s.skipHost != "" && targetHost(m.Target) == s.skipHost {
			fmt.Fprintf(s.cfg.progress, "Skipping %s (already on bucket)\n", m.Target)
			continue
		}

		res, seen := uploaded[m.Target]
		if !seen {
			data, err := s.resolveWithTimeout(ctx, baseDir, m.Target)
			if err != nil {
				return "", err
			}

			res, err = s.uploadWithTimeout(ctx, data, targetNameHint(m.Target))
			if err != nil {
				return "", fmt.Errorf("uploading %s: %w", m.Target, err)
			}
			uploaded[m.Target] = res
			fmt.Fprintf(s.cfg.progress, "Uploaded %s -> %s\n", m.Target, res.URL)
		}

		replacements = append(replacements, Replacement{
			Match:   m,
			Snippet: imageSnippet(m.Alt, res.URL),
		})
	}

	return RewriteDocument(doc.Content, replacements)
}

// RenderTables rasterizes every pipe table in the document, uploads the
// screenshots, and returns the text with each table block replaced by an
// image reference. Any render or upload failure aborts the run.
func (s *Service) RenderTables(ctx context.Context, doc Document) (string, error) {
	if doc.Content == "" {
		return "", ErrEmptyDocument
	}
	if s.uploader == nil {
		return "", ErrNoUploader
	}

	matches := ScanTables(doc.Content)
	fmt.Fprintf(s.cfg.progress, "Found %d tables\n", len(matches))

	var replacements []Replacement
	for i, m := range matches {
		data, err := s.renderWithTimeout(ctx, s.tableRenderer, m.Body)
		if err != nil {
			return "", fmt.Errorf("rendering table %d: %w", i+1, err)
		}

		res, err := s.uploadWithTimeout(ctx, data, fmt.Sprintf("table_%d.png", i+1))
		if err != nil {
			return "", fmt.Errorf("uploading table %d: %w", i+1, err)
		}
		fmt.Fprintf(s.cfg.progress, "Converted table %d -> %s\n", i+1, res.URL)

		snippet := imageSnippet(fmt.Sprintf("Table %d", i+1), res.URL)
		if strings.HasSuffix(m.Text, "\n") {
			snippet += "\n"
		}
		replacements = append(replacements, Replacement{Match: m, Snippet: snippet})
	}

	return RewriteDocument(doc.Content, replacements)
}

// RenderMermaid rasterizes every fenced mermaid block, uploads the
// images, and returns the text with each block replaced by an image
// reference. Any render or upload failure aborts the run.
func (s *Service) RenderMermaid(ctx context.Context, doc Document) (string, error) {
	if doc.Content == "" {
		return "", ErrEmptyDocument
	}
	if s.uploader == nil {
		return "", ErrNoUploader
	}

	matches := ScanMermaid(doc.Content)
	fmt.Fprintf(s.cfg.progress, "Found %d mermaid blocks\n", len(matches))

	var replacements []Replacement
	for i, m := range matches {
		data, err := s.renderWithTimeout(ctx, s.mermaidRenderer, m.Body)
		if err != nil {
			return "", fmt.Errorf("rendering mermaid block %d: %w", i+1, err)
		}

		res, err := s.uploadWithTimeout(ctx, data, fmt.Sprintf("mermaid_%d.png", i+1))
		if err != nil {
			return "", fmt.Errorf("uploading mermaid block %d: %w", i+1, err)
		}
		fmt.Fprintf(s.cfg.progress, "Converted mermaid block %d -> %s\n", i+1, res.URL)

		replacements = append(replacements, Replacement{
			Match:   m,
			Snippet: imageSnippet(fmt.Sprintf("mermaid %d", i+1), res.URL),
		})
	}

	return RewriteDocument(doc.Content, replacements)
}

// renderWithTimeout bounds a single render so a stuck browser or
// subprocess cannot hang the run.
func (s *Service) renderWithTimeout(ctx context.Context, r Renderer, source string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.timeout)
	defer cancel()
	return r.Render(ctx, source)
}

// uploadWithTimeout bounds a single upload.
func (s *Service) uploadWithTimeout(ctx context.Context, data []byte, hint string) (UploadResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.timeout)
	defer cancel()
	return s.uploader.Upload(ctx, data, hint)
}

// resolveWithTimeout bounds a single image fetch or read.
func (s *Service) resolveWithTimeout(ctx context.Context, baseDir, target string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.timeout)
	defer cancel()
	return s.resolver.Resolve(ctx, baseDir, target)
}
