package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config mirrors the YAML schema. Every value has a usable default so the
// tool runs without any config file at all.
type Config struct {
	Version int     `yaml:"version"`
	General General `yaml:"general"`
	Network Network `yaml:"network"`
	History History `yaml:"history"`
	Logging Logging `yaml:"logging"`
	Metrics Metrics `yaml:"metrics"`
}

type General struct {
	// DownloadRoot is where fetched files land. Relative paths are kept
	// relative so the directory appears next to wherever the tool runs.
	DownloadRoot string `yaml:"download_root"`
	// DataRoot holds the history database and other tool state.
	DataRoot string `yaml:"data_root"`
}

type Network struct {
	TimeoutSeconds     int    `yaml:"timeout_seconds"`
	HeadTimeoutSeconds int    `yaml:"head_timeout_seconds"`
	ChunkSize          int    `yaml:"chunk_size"`
	UserAgent          string `yaml:"user_agent"`
	TLSVerify          *bool  `yaml:"tls_verify"`
}

type History struct {
	Enabled *bool `yaml:"enabled"`
}

type Logging struct {
	Level string `yaml:"level"` // debug|info|warn|error
	JSON  bool   `yaml:"json"`
}

type Metrics struct {
	PrometheusTextfile PromTextfile `yaml:"prometheus_textfile"`
}

type PromTextfile struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

const (
	DefaultDownloadRoot   = "Fetched_Images"
	DefaultTimeoutSeconds = 10
	DefaultHeadTimeout    = 8
	DefaultChunkSize      = 8192
)

// Default returns a config usable without any file on disk.
func Default() *Config {
	c := &Config{Version: 1}
	c.applyDefaults()
	return c
}

// Load reads, parses, expands, and validates a YAML config file.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}
	expanded, err := expandTilde(path)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(expanded)
	if err != nil {
		return nil, err
	}
	// Expand ${ENV} placeholders before unmarshalling
	b = []byte(os.ExpandEnv(string(b)))
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	c.applyDefaults()
	if err := c.expandPaths(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	if c.General.DownloadRoot == "" {
		c.General.DownloadRoot = DefaultDownloadRoot
	}
	if c.General.DataRoot == "" {
		if h, err := os.UserHomeDir(); err == nil && h != "" {
			c.General.DataRoot = filepath.Join(h, ".local", "share", "imgfetch")
		} else {
			c.General.DataRoot = ".imgfetch"
		}
	}
	if c.Network.TimeoutSeconds <= 0 {
		c.Network.TimeoutSeconds = DefaultTimeoutSeconds
	}
	if c.Network.HeadTimeoutSeconds <= 0 {
		c.Network.HeadTimeoutSeconds = DefaultHeadTimeout
	}
	if c.Network.ChunkSize <= 0 {
		c.Network.ChunkSize = DefaultChunkSize
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// HistoryEnabled reports whether fetches are recorded; on by default.
func (c *Config) HistoryEnabled() bool {
	return c.History.Enabled == nil || *c.History.Enabled
}

// TLSVerifyEnabled reports whether server certificates are verified; on by default.
func (c *Config) TLSVerifyEnabled() bool {
	return c.Network.TLSVerify == nil || *c.Network.TLSVerify
}

func (c *Config) expandPaths() error {
	var err error
	if c.General.DataRoot, err = expandTilde(c.General.DataRoot); err != nil {
		return err
	}
	if c.General.DownloadRoot, err = expandTilde(c.General.DownloadRoot); err != nil {
		return err
	}
	if c.Metrics.PrometheusTextfile.Path, err = expandTilde(c.Metrics.PrometheusTextfile.Path); err != nil {
		return err
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Version != 1 {
		return fmt.Errorf("unsupported config version: %d", c.Version)
	}
	if c.General.DownloadRoot == "" {
		return errors.New("general.download_root is required")
	}
	if c.Network.ChunkSize <= 0 {
		return errors.New("network.chunk_size must be > 0")
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
		// ok
	default:
		return fmt.Errorf("logging.level invalid: %s", c.Logging.Level)
	}
	if c.Metrics.PrometheusTextfile.Enabled && c.Metrics.PrometheusTextfile.Path == "" {
		return errors.New("metrics.prometheus_textfile.path is required when enabled")
	}
	return nil
}

func expandTilde(p string) (string, error) {
	if p == "" {
		return "", nil
	}
	if p[0] != '~' {
		return p, nil
	}
	h, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	if p == "~" {
		return h, nil
	}
	return filepath.Join(h, p[2:]), nil
}
