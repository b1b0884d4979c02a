package main

import (
	"errors"
	"os"

	mdproc "github.com/honghe/mdproc"
	"github.com/honghe/mdproc/internal/config"
)

// Exit codes for the mdproc CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful run
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or credentials
	ExitIO      = 3 // Unreadable input, unwritable output, unreachable image
	ExitRender  = 4 // Browser or mermaid-cli render failure
	ExitUpload  = 5 // Bucket upload failure
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Upload errors (exit 5)
	if errors.Is(err, mdproc.ErrUpload) {
		return ExitUpload
	}

	// Render/browser errors (exit 4)
	if errors.Is(err, mdproc.ErrBrowserConnect) ||
		errors.Is(err, mdproc.ErrPageCreate) ||
		errors.Is(err, mdproc.ErrPageLoad) ||
		errors.Is(err, mdproc.ErrRenderFailed) ||
		errors.Is(err, mdproc.ErrEmptyRender) ||
		errors.Is(err, mdproc.ErrMermaidCLI) ||
		errors.Is(err, mdproc.ErrMMDCNotFound) {
		return ExitRender
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, mdproc.ErrImageFetch) ||
		errors.Is(err, mdproc.ErrImageRead) ||
		errors.Is(err, ErrReadMarkdown) ||
		errors.Is(err, ErrWriteOutput) {
		return ExitIO
	}

	// Usage/config errors (exit 2)
	if errors.Is(err, config.ErrMissingCredential) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrConfigTooLarge) ||
		errors.Is(err, mdproc.ErrEmptyDocument) ||
		errors.Is(err, ErrNoInput) ||
		errors.Is(err, ErrInvalidExtension) ||
		errors.Is(err, ErrOutputConflict) ||
		errors.Is(err, ErrInvalidWorkerCount) ||
		errors.Is(err, ErrInvalidTimeout) ||
		errors.Is(err, ErrInvalidBackend) ||
		errors.Is(err, ErrFlagParse) {
		return ExitUsage
	}

	return ExitGeneral
}
