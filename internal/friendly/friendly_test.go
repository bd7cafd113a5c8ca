package friendly

import (
	"context"
	"errors"
	"strings"
	"testing"

	"imgfetch/internal/fetcher"
)

func TestRenderTimeoutSuggestsRetry(t *testing.T) {
	err := &fetcher.Error{Kind: fetcher.KindTimeout, Err: context.DeadlineExceeded}
	msg := Render(err)
	if !strings.Contains(msg, "timed out") || !strings.Contains(msg, "try again") {
		t.Fatalf("message: %q", msg)
	}
}

func TestRenderStatusIncludesCode(t *testing.T) {
	err := &fetcher.Error{Kind: fetcher.KindHTTPStatus, StatusCode: 404, Err: errors.New("unexpected status: 404 Not Found")}
	msg := Render(err)
	if !strings.Contains(msg, "404") {
		t.Fatalf("message: %q", msg)
	}
}

func TestRenderFilesystemShowsDetail(t *testing.T) {
	err := &fetcher.Error{Kind: fetcher.KindFilesystem, Err: errors.New("permission denied")}
	msg := Render(err)
	if !strings.Contains(msg, "permission denied") {
		t.Fatalf("message: %q", msg)
	}
	if strings.Contains(msg, "filesystem:") {
		t.Fatalf("classification prefix leaked: %q", msg)
	}
}

func TestRenderUnclassifiedNeverEmpty(t *testing.T) {
	if msg := Render(errors.New("mystery")); msg == "" || !strings.Contains(msg, "mystery") {
		t.Fatalf("message: %q", msg)
	}
	if Render(nil) != "" {
		t.Fatal("nil error should render empty")
	}
}
