package fetcher

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"runtime"
	"time"

	"imgfetch/internal/config"
)

func newHTTPClient(cfg *config.Config, timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = config.DefaultTimeoutSeconds * time.Second
	}
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		IdleConnTimeout:       90 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          10,
		TLSClientConfig: &tls.Config{
			MinVersion:         tls.VersionTLS12,
			InsecureSkipVerify: !cfg.TLSVerifyEnabled(),
		},
	}
	client := &http.Client{Transport: tr, Timeout: timeout}
	// Keep the User-Agent across redirects; the default client drops it.
	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) >= 10 {
			return fmt.Errorf("stopped after 10 redirects")
		}
		prev := via[len(via)-1]
		if ua := prev.Header.Get("User-Agent"); ua != "" {
			req.Header.Set("User-Agent", ua)
		}
		return nil
	}
	return client
}

func userAgent(cfg *config.Config) string {
	if cfg != nil && cfg.Network.UserAgent != "" {
		return cfg.Network.UserAgent
	}
	return fmt.Sprintf("imgfetch/%s (%s/%s)", versionString(), runtime.GOOS, runtime.GOARCH)
}

func versionString() string {
	return defaultVersion
}

var defaultVersion = "dev"
