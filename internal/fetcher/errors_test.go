package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"testing"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassifyTransport(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Kind
	}{
		{"deadline", context.DeadlineExceeded, KindTimeout},
		{"net timeout", &url.Error{Op: "Get", URL: "http://x", Err: timeoutErr{}}, KindTimeout},
		{"dns", &url.Error{Op: "Get", URL: "http://x", Err: &net.DNSError{Err: "no such host", Name: "x"}}, KindConnection},
		{"refused", &url.Error{Op: "Get", URL: "http://x", Err: &net.OpError{Op: "dial", Err: errors.New("connection refused")}}, KindConnection},
		{"other url error", &url.Error{Op: "Get", URL: "http://x", Err: errors.New("protocol error")}, KindNetwork},
		{"path error", &fs.PathError{Op: "open", Path: "/nope", Err: errors.New("permission denied")}, KindFilesystem},
		{"unknown", errors.New("mystery"), KindUnclassified},
	}
	for _, c := range cases {
		got := classifyTransport(c.err)
		if got.Kind != c.want {
			t.Fatalf("%s: kind=%v want %v", c.name, got.Kind, c.want)
		}
		if !errors.Is(got, c.err) {
			t.Fatalf("%s: cause not wrapped", c.name)
		}
	}
}

func TestKindOfAndStatusCode(t *testing.T) {
	err := statusError(404, "404 Not Found")
	wrapped := fmt.Errorf("fetch failed: %w", err)
	if KindOf(wrapped) != KindHTTPStatus {
		t.Fatalf("kind: %v", KindOf(wrapped))
	}
	if StatusCodeOf(wrapped) != 404 {
		t.Fatalf("status: %d", StatusCodeOf(wrapped))
	}
	if KindOf(errors.New("plain")) != KindUnclassified {
		t.Fatal("plain error should be unclassified")
	}
	if StatusCodeOf(errors.New("plain")) != 0 {
		t.Fatal("plain error should carry no status")
	}
}

func TestKindStrings(t *testing.T) {
	want := map[Kind]string{
		KindHTTPStatus:   "http_status",
		KindTimeout:      "timeout",
		KindConnection:   "connection",
		KindNetwork:      "network",
		KindFilesystem:   "filesystem",
		KindUnclassified: "unclassified",
	}
	for k, s := range want {
		if k.String() != s {
			t.Fatalf("%d: %s", k, k.String())
		}
	}
}
