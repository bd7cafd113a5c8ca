package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"imgfetch/internal/config"
)

// Manager accumulates counters and writes them in Prometheus textfile
// format. A nil Manager is valid and does nothing, which is how the tool
// runs when metrics are disabled.
type Manager struct {
	path string
	mu   sync.Mutex
	// counters
	bytesTotal     int64
	fetchesSuccess int64
	fetchesFailed  int64
	lastFetchSec   float64
}

func New(cfg *config.Config) *Manager {
	if cfg == nil || !cfg.Metrics.PrometheusTextfile.Enabled || cfg.Metrics.PrometheusTextfile.Path == "" {
		return nil
	}
	p := cfg.Metrics.PrometheusTextfile.Path
	_ = os.MkdirAll(filepath.Dir(p), 0o755)
	return &Manager{path: p}
}

func (m *Manager) AddBytes(n int64) {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.bytesTotal += n
	m.mu.Unlock()
}

func (m *Manager) IncFetchSuccess() {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.fetchesSuccess++
	m.mu.Unlock()
}

func (m *Manager) IncFetchFailure() {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.fetchesFailed++
	m.mu.Unlock()
}

func (m *Manager) ObserveFetchSeconds(sec float64) {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.lastFetchSec = sec
	m.mu.Unlock()
}

func (m *Manager) Write() error {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	f, err := os.CreateTemp(filepath.Dir(m.path), ".metrics.tmp.*")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())

	fmt.Fprintf(f, "# HELP imgfetch_bytes_fetched_total Total bytes written to disk.\n")
	fmt.Fprintf(f, "# TYPE imgfetch_bytes_fetched_total counter\n")
	fmt.Fprintf(f, "imgfetch_bytes_fetched_total %d\n", m.bytesTotal)

	fmt.Fprintf(f, "# HELP imgfetch_fetches_success_total Total successful fetches.\n")
	fmt.Fprintf(f, "# TYPE imgfetch_fetches_success_total counter\n")
	fmt.Fprintf(f, "imgfetch_fetches_success_total %d\n", m.fetchesSuccess)

	fmt.Fprintf(f, "# HELP imgfetch_fetches_failed_total Total failed fetches.\n")
	fmt.Fprintf(f, "# TYPE imgfetch_fetches_failed_total counter\n")
	fmt.Fprintf(f, "imgfetch_fetches_failed_total %d\n", m.fetchesFailed)

	fmt.Fprintf(f, "# HELP imgfetch_last_fetch_seconds Duration of the last completed fetch in seconds.\n")
	fmt.Fprintf(f, "# TYPE imgfetch_last_fetch_seconds gauge\n")
	fmt.Fprintf(f, "imgfetch_last_fetch_seconds %.6f\n", m.lastFetchSec)

	fmt.Fprintf(f, "# HELP imgfetch_metrics_timestamp_seconds UNIX timestamp when this file was written.\n")
	fmt.Fprintf(f, "# TYPE imgfetch_metrics_timestamp_seconds gauge\n")
	fmt.Fprintf(f, "imgfetch_metrics_timestamp_seconds %d\n", time.Now().Unix())

	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), m.path)
}
