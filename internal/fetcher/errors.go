package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
)

// Kind classifies a fetch failure so callers can render it without digging
// through wrapped causes.
type Kind int

const (
	KindUnclassified Kind = iota
	KindHTTPStatus
	KindTimeout
	KindConnection
	KindNetwork
	KindFilesystem
)

func (k Kind) String() string {
	switch k {
	case KindHTTPStatus:
		return "http_status"
	case KindTimeout:
		return "timeout"
	case KindConnection:
		return "connection"
	case KindNetwork:
		return "network"
	case KindFilesystem:
		return "filesystem"
	default:
		return "unclassified"
	}
}

// Error carries the classified kind alongside the underlying cause.
// StatusCode is set only for KindHTTPStatus.
type Error struct {
	Kind       Kind
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.Kind == KindHTTPStatus {
		return fmt.Sprintf("%s (%d): %v", e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf extracts the kind from err, or KindUnclassified when err was never
// classified.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindUnclassified
}

// StatusCodeOf returns the HTTP status carried by err, or 0.
func StatusCodeOf(err error) int {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.StatusCode
	}
	return 0
}

func statusError(code int, status string) *Error {
	return &Error{Kind: KindHTTPStatus, StatusCode: code, Err: fmt.Errorf("unexpected status: %s", status)}
}

func fsError(err error) *Error {
	return &Error{Kind: KindFilesystem, Err: err}
}

// classifyTransport maps a transport-level error onto the taxonomy. Timeouts
// win over everything else since a timed-out dial also looks like an OpError.
func classifyTransport(err error) *Error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &Error{Kind: KindTimeout, Err: err}
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &Error{Kind: KindConnection, Err: err}
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return &Error{Kind: KindConnection, Err: err}
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return &Error{Kind: KindNetwork, Err: err}
	}
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return fsError(err)
	}
	return &Error{Kind: KindUnclassified, Err: err}
}
