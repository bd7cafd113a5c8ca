// Package fetcher performs the HTTP transfer: an optional HEAD probe for
// metadata, filename resolution, and a chunked streaming GET to disk with
// classified failures.
package fetcher

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"imgfetch/internal/config"
	"imgfetch/internal/history"
	"imgfetch/internal/logging"
	"imgfetch/internal/metrics"
	"imgfetch/internal/resolver"
)

type Fetcher struct {
	cfg        *config.Config
	log        *logging.Logger
	client     *http.Client
	headClient *http.Client
	hist       *history.DB
	met        *metrics.Manager
}

// New builds a Fetcher. hist and met may be nil; recording and metrics are
// then skipped.
func New(cfg *config.Config, log *logging.Logger, hist *history.DB, met *metrics.Manager) *Fetcher {
	return &Fetcher{
		cfg:        cfg,
		log:        log,
		client:     newHTTPClient(cfg, time.Duration(cfg.Network.TimeoutSeconds)*time.Second),
		headClient: newHTTPClient(cfg, time.Duration(cfg.Network.HeadTimeoutSeconds)*time.Second),
		hist:       hist,
		met:        met,
	}
}

// Result describes a completed transfer.
type Result struct {
	Path         string
	BytesWritten int64
	MediaType    string
}

// Download GETs rawURL and streams the body to outPath in chunk-size reads.
// Non-2xx responses fail before the file is created. A declared type outside
// image/* is logged as an advisory and the transfer proceeds. On transport
// or write failure a partial file may remain at outPath.
func (f *Fetcher) Download(ctx context.Context, rawURL, outPath string) (Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Result{}, &Error{Kind: KindUnclassified, Err: err}
	}
	req.Header.Set("User-Agent", userAgent(f.cfg))
	resp, err := f.client.Do(req)
	if err != nil {
		return Result{}, classifyTransport(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode/100 != 2 {
		return Result{}, statusError(resp.StatusCode, resp.Status)
	}

	mediaType := strings.TrimSpace(resp.Header.Get("Content-Type"))
	if !strings.HasPrefix(strings.ToLower(mediaType), "image/") {
		f.log.Warnf("retrieved content-type is %q (not an image); saving anyway", mediaType)
	}

	out, err := os.OpenFile(outPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return Result{}, fsError(err)
	}

	buf := make([]byte, f.cfg.Network.ChunkSize)
	var total int64
	for {
		n, rerr := resp.Body.Read(buf)
		if n > 0 {
			if _, werr := out.Write(buf[:n]); werr != nil {
				_ = out.Close()
				return Result{Path: outPath, BytesWritten: total, MediaType: mediaType}, fsError(werr)
			}
			total += int64(n)
			f.met.AddBytes(int64(n))
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			_ = out.Close()
			return Result{Path: outPath, BytesWritten: total, MediaType: mediaType}, classifyTransport(rerr)
		}
	}
	if err := out.Close(); err != nil {
		return Result{Path: outPath, BytesWritten: total, MediaType: mediaType}, fsError(err)
	}
	f.log.Debugf("wrote %d bytes to %s", total, outPath)
	return Result{Path: outPath, BytesWritten: total, MediaType: mediaType}, nil
}

// Plan probes rawURL and resolves the destination path under the configured
// download root without transferring anything. The uniqueness of the
// returned path is advisory until the download opens it.
func (f *Fetcher) Plan(ctx context.Context, rawURL string) (string, error) {
	desc := f.Probe(ctx, rawURL)
	outPath, err := resolver.Resolve(f.cfg.General.DownloadRoot, rawURL, desc.MediaType)
	if err != nil {
		if errors.Is(err, resolver.ErrNoUniqueName) {
			return "", &Error{Kind: KindFilesystem, Err: err}
		}
		return "", fsError(err)
	}
	return outPath, nil
}

// FetchTo downloads rawURL to outPath and records the outcome in history and
// metrics.
func (f *Fetcher) FetchTo(ctx context.Context, rawURL, outPath string) (Result, error) {
	start := time.Now()
	res, err := f.Download(ctx, rawURL, outPath)
	if err != nil {
		f.recordFailure(rawURL, err)
		return res, err
	}
	f.met.IncFetchSuccess()
	f.met.ObserveFetchSeconds(time.Since(start).Seconds())
	if rerr := f.hist.Record(history.Row{
		URL:       rawURL,
		Dest:      res.Path,
		MediaType: res.MediaType,
		Size:      res.BytesWritten,
		Status:    history.StatusComplete,
	}); rerr != nil {
		f.log.Debugf("history record failed: %v", rerr)
	}
	return res, nil
}

// Fetch runs the whole pipeline for one URL: HEAD probe for a media type
// hint, filename resolution under the configured download root, then the
// streaming download. The caller is responsible for the download root
// existing. The outcome is recorded in history either way.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (Result, error) {
	outPath, err := f.Plan(ctx, rawURL)
	if err != nil {
		f.recordFailure(rawURL, err)
		return Result{}, err
	}
	return f.FetchTo(ctx, rawURL, outPath)
}

func (f *Fetcher) recordFailure(rawURL string, err error) {
	f.met.IncFetchFailure()
	if rerr := f.hist.Record(history.Row{
		URL:       rawURL,
		Status:    history.StatusError,
		LastError: err.Error(),
	}); rerr != nil {
		f.log.Debugf("history record failed: %v", rerr)
	}
}
