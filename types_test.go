package mdproc

import (
	"testing"
	"time"
)

func TestDefaultRenderSettings(t *testing.T) {
	t.Parallel()

	s := DefaultRenderSettings()
	if s.Theme != ThemeDefault {
		t.Errorf("Theme = %q, want %q", s.Theme, ThemeDefault)
	}
	if s.Scale != 2.0 {
		t.Errorf("Scale = %v, want 2.0", s.Scale)
	}
	if s.Layout != "elk" {
		t.Errorf("Layout = %q, want elk", s.Layout)
	}
}

func TestWithTimeout_PanicsOnNonPositive(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Error("WithTimeout(0) should panic")
		}
	}()
	New(
		WithTableRenderer(&fakeRenderer{}),
		WithMermaidRenderer(&fakeRenderer{}),
		WithTimeout(0),
	)
}

func TestServiceOptions(t *testing.T) {
	t.Parallel()

	up := &fakeUploader{}
	svc := New(
		WithTableRenderer(&fakeRenderer{}),
		WithMermaidRenderer(&fakeRenderer{}),
		WithResolver(&fakeResolver{}),
		WithUploader(up),
		WithTimeout(5*time.Second),
		WithSkipHost("b.cos.r.myqcloud.com"),
	)
	defer svc.Close()

	if svc.uploader != up {
		t.Error("WithUploader not applied")
	}
	if svc.cfg.timeout != 5*time.Second {
		t.Errorf("timeout = %v, want 5s", svc.cfg.timeout)
	}
	if svc.skipHost != "b.cos.r.myqcloud.com" {
		t.Errorf("skipHost = %q", svc.skipHost)
	}
}
