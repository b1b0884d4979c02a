package main

import (
	"errors"
	"fmt"
	"os"
	"testing"

	mdproc "github.com/honghe/mdproc"
	"github.com/honghe/mdproc/internal/config"
)

func TestExitCodeFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: ExitSuccess},
		{name: "unknown error", err: errors.New("boom"), want: ExitGeneral},
		{name: "upload failure", err: mdproc.ErrUpload, want: ExitUpload},
		{name: "wrapped upload failure", err: fmt.Errorf("doc.md: %w", mdproc.ErrUpload), want: ExitUpload},
		{name: "browser connect", err: mdproc.ErrBrowserConnect, want: ExitRender},
		{name: "render failed", err: mdproc.ErrRenderFailed, want: ExitRender},
		{name: "empty render", err: mdproc.ErrEmptyRender, want: ExitRender},
		{name: "mmdc missing", err: mdproc.ErrMMDCNotFound, want: ExitRender},
		{name: "mermaid cli failure", err: mdproc.ErrMermaidCLI, want: ExitRender},
		{name: "image fetch", err: mdproc.ErrImageFetch, want: ExitIO},
		{name: "image read", err: mdproc.ErrImageRead, want: ExitIO},
		{name: "file not found", err: os.ErrNotExist, want: ExitIO},
		{name: "read markdown", err: ErrReadMarkdown, want: ExitIO},
		{name: "write output", err: ErrWriteOutput, want: ExitIO},
		{name: "missing credential", err: config.ErrMissingCredential, want: ExitUsage},
		{name: "config not found", err: config.ErrConfigNotFound, want: ExitUsage},
		{name: "empty document", err: mdproc.ErrEmptyDocument, want: ExitUsage},
		{name: "no input", err: ErrNoInput, want: ExitUsage},
		{name: "bad extension", err: ErrInvalidExtension, want: ExitUsage},
		{name: "output conflict", err: ErrOutputConflict, want: ExitUsage},
		{name: "bad timeout", err: ErrInvalidTimeout, want: ExitUsage},
		{name: "bad backend", err: ErrInvalidBackend, want: ExitUsage},
		{name: "flag parse", err: ErrFlagParse, want: ExitUsage},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("exitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
