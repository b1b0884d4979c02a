package mdproc

import "errors"

// Sentinel errors for library operations.
var (
	ErrEmptyDocument = errors.New("document content cannot be empty")
	ErrNoUploader    = errors.New("no uploader configured")

	// Browser/render errors.
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrRenderFailed   = errors.New("render failed")
	ErrEmptyRender    = errors.New("render produced no output")

	// Mermaid CLI backend errors.
	ErrMMDCNotFound = errors.New("mmdc not found: add it to PATH or set MMDC_PATH")
	ErrMermaidCLI   = errors.New("mermaid-cli execution failed")

	// Image resolution errors.
	ErrImageFetch = errors.New("failed to fetch image")
	ErrImageRead  = errors.New("failed to read image file")

	// Upload errors.
	ErrUpload = errors.New("upload failed")

	// Rewrite invariant violations.
	ErrInvalidReplacement = errors.New("replacements must be ordered and non-overlapping")
)
