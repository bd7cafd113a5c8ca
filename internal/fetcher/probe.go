package fetcher

import (
	"context"
	"net/http"
	"strconv"
	"strings"
)

// Descriptor is the metadata a HEAD probe yields. Either field may be empty
// or zero when the server omits or rejects the probe.
type Descriptor struct {
	MediaType string
	Length    int64
}

// Probe issues a HEAD request with its own shorter timeout and returns
// whatever metadata the server volunteers. Every failure mode, including
// servers that reject HEAD outright, degrades to an empty Descriptor; the
// probe never aborts the overall fetch.
func (f *Fetcher) Probe(ctx context.Context, rawURL string) Descriptor {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return Descriptor{}
	}
	req.Header.Set("User-Agent", userAgent(f.cfg))
	resp, err := f.headClient.Do(req)
	if err != nil {
		f.log.Debugf("HEAD probe failed: %v", err)
		return Descriptor{}
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode/100 != 2 {
		f.log.Debugf("HEAD probe status: %s", resp.Status)
		return Descriptor{}
	}
	var d Descriptor
	d.MediaType = strings.TrimSpace(resp.Header.Get("Content-Type"))
	if cl := resp.Header.Get("Content-Length"); cl != "" {
		if n, err := strconv.ParseInt(strings.TrimSpace(cl), 10, 64); err == nil && n >= 0 {
			d.Length = n
		}
	}
	f.log.Debugf("HEAD: type=%q length=%d", d.MediaType, d.Length)
	return d
}
