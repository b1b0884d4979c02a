package mdproc

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/honghe/mdproc/internal/fileutil"
)

// elementCapturer abstracts element screenshots to enable testing without
// a browser.
type elementCapturer interface {
	Capture(ctx context.Context, req captureRequest) ([]byte, error)
	Close() error
}

// Compile-time interface check.
var _ elementCapturer = (*chromeCapturer)(nil)

// captureRequest describes one page-and-screenshot round trip.
type captureRequest struct {
	HTML       string  // Full HTML document to load
	Selector   string  // CSS selector of the element to screenshot
	Width      int     // Viewport width in px
	Height     int     // Viewport height in px
	Scale      float64 // Device scale factor (0 = 1.0)
	WaitRender bool    // Poll data-render-status before capturing
}

// renderStatusJS reads the readiness flag the page script sets on the
// document element: "ready" once drawing finished, "error" on failure.
const (
	renderStatusJS = `() => document.documentElement.dataset.renderStatus || ""`
	renderErrorJS  = `() => document.documentElement.dataset.renderError || ""`

	statusPollInterval = 100 * time.Millisecond
)

// chromeCapturer screenshots page elements using headless Chrome via
// go-rod. The browser launches lazily on first use and is reused across
// captures (warm start); Close terminates it.
// Rod automatically downloads Chromium on first run if not found.
type chromeCapturer struct {
	browser *rod.Browser
	timeout time.Duration
}

// newChromeCapturer creates a chromeCapturer with the given per-capture timeout.
func newChromeCapturer(timeout time.Duration) *chromeCapturer {
	return &chromeCapturer{timeout: timeout}
}

// ensureBrowser lazily connects to the browser.
func (r *chromeCapturer) ensureBrowser() error {
	if r.browser != nil {
		return nil
	}

	l := launcher.New()

	// Use pre-installed browser if specified (Docker/containerized environments)
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}

	// NoSandbox required for CI and containerized environments
	if os.Getenv("CI") == "true" || os.Getenv("ROD_BROWSER_BIN") != "" {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	r.browser = rod.New().ControlURL(u)
	if err := r.browser.Connect(); err != nil {
		r.browser = nil
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	return nil
}

// Close releases browser resources.
func (r *chromeCapturer) Close() error {
	if r.browser != nil {
		err := r.browser.Close()
		r.browser = nil
		return err
	}
	return nil
}

// Capture loads the HTML document in a fresh page and screenshots the
// requested element as PNG. The page is closed on all paths; the browser
// stays warm for the next capture.
func (r *chromeCapturer) Capture(ctx context.Context, req captureRequest) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := r.ensureBrowser(); err != nil {
		return nil, err
	}

	// file:// keeps local mermaid bundle script tags loadable.
	tmpPath, cleanup, err := fileutil.WriteTempFile(req.HTML, "html")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	page, err := r.browser.Page(proto.TargetCreateTarget{URL: "file://" + tmpPath})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer page.Close()

	scale := req.Scale
	if scale <= 0 {
		scale = 1.0
	}
	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             req.Width,
		Height:            req.Height,
		DeviceScaleFactor: scale,
		Mobile:            false,
	}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}

	timeout := r.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return nil, context.DeadlineExceeded
		}
	}
	deadline := time.Now().Add(timeout)

	if err := page.Timeout(timeout).WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	if req.WaitRender {
		if err := r.waitRenderStatus(ctx, page, deadline); err != nil {
			return nil, err
		}
	}

	remaining := time.Until(deadline)
	if remaining <= 0 {
		return nil, fmt.Errorf("%w: timed out waiting for %q", ErrRenderFailed, req.Selector)
	}

	el, err := page.Timeout(remaining).Element(req.Selector)
	if err != nil {
		return nil, fmt.Errorf("%w: element %q: %v", ErrRenderFailed, req.Selector, err)
	}

	data, err := el.Screenshot(proto.PageCaptureScreenshotFormatPng, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: screenshot: %v", ErrRenderFailed, err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyRender
	}

	return data, nil
}

// waitRenderStatus polls the page's readiness flag until it settles.
// An "error" status surfaces the page script's message (e.g. invalid
// mermaid syntax) as a render failure.
func (r *chromeCapturer) waitRenderStatus(ctx context.Context, page *rod.Page, deadline time.Time) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		var status string
		if obj, err := page.Eval(renderStatusJS); err == nil {
			status = strings.TrimSpace(obj.Value.Str())
		}

		switch status {
		case "ready":
			return nil
		case "error":
			msg := "unknown error"
			if obj, err := page.Eval(renderErrorJS); err == nil && obj.Value.Str() != "" {
				msg = obj.Value.Str()
			}
			return fmt.Errorf("%w: %s", ErrRenderFailed, msg)
		}

		if time.Now().After(deadline) {
			return fmt.Errorf("%w: timed out waiting for render (status=%q)", ErrRenderFailed, status)
		}
		time.Sleep(statusPollInterval)
	}
}
