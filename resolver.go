package mdproc

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"github.com/honghe/mdproc/internal/fileutil"
)

// maxImageBytes caps a single downloaded image (occasional oversized
// assets should fail loudly rather than exhaust memory).
const maxImageBytes = 50 << 20

// ImageResolver turns an image reference into actual bytes: remote
// targets are fetched, local targets are read relative to baseDir.
type ImageResolver interface {
	Resolve(ctx context.Context, baseDir, target string) ([]byte, error)
}

// Compile-time interface check.
var _ ImageResolver = (*fetchResolver)(nil)

// fetchResolver resolves targets over HTTP(S) or from the local disk.
type fetchResolver struct {
	client *http.Client
}

func newFetchResolver(client *http.Client) *fetchResolver {
	if client == nil {
		client = http.DefaultClient
	}
	return &fetchResolver{client: client}
}

func (r *fetchResolver) Resolve(ctx context.Context, baseDir, target string) ([]byte, error) {
	if fileutil.IsURL(target) {
		return r.fetch(ctx, target)
	}
	return r.read(baseDir, target)
}

// fetch downloads a remote image.
func (r *fetchResolver) fetch(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrImageFetch, target, err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrImageFetch, target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s: status %d", ErrImageFetch, target, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrImageFetch, target, err)
	}
	if len(data) > maxImageBytes {
		return nil, fmt.Errorf("%w: %s: larger than %d bytes", ErrImageFetch, target, maxImageBytes)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s: empty response", ErrImageFetch, target)
	}

	return data, nil
}

// read loads a local image, resolving relative paths against the
// markdown file's directory.
func (r *fetchResolver) read(baseDir, target string) ([]byte, error) {
	p := target
	if !filepath.IsAbs(p) {
		p = filepath.Join(baseDir, p)
	}

	data, err := os.ReadFile(p) // #nosec G304 -- path comes from the user's own document
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrImageRead, target, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s: empty file", ErrImageRead, target)
	}

	return data, nil
}

// targetNameHint derives the upload name hint from the original
// reference: the file name for both URLs and paths.
func targetNameHint(target string) string {
	if fileutil.IsURL(target) {
		if u, err := url.Parse(target); err == nil {
			return path.Base(u.Path)
		}
	}
	return filepath.Base(target)
}

// targetHost returns the host of a remote target, or "" for local paths.
func targetHost(target string) string {
	if !fileutil.IsURL(target) {
		return ""
	}
	u, err := url.Parse(target)
	if err != nil {
		return ""
	}
	return u.Host
}
