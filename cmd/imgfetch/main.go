package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"imgfetch/internal/config"
	"imgfetch/internal/fetcher"
	"imgfetch/internal/friendly"
	"imgfetch/internal/history"
	"imgfetch/internal/logging"
	"imgfetch/internal/metrics"
	"imgfetch/internal/prompt"
)

var version = "dev"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			fmt.Fprintln(os.Stderr, "Operation interrupted. Goodbye.")
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		// Bare invocation drops into the interactive fetch flow.
		return handleFetch(ctx, nil)
	}
	switch args[0] {
	case "fetch":
		return handleFetch(ctx, args[1:])
	case "history":
		return handleHistory(ctx, args[1:])
	case "config":
		return handleConfig(ctx, args[1:])
	case "version":
		fmt.Println(version)
		return nil
	case "help", "-h", "--help":
		usage()
		return nil
	default:
		usage()
		return fmt.Errorf("unknown command: %s", args[0])
	}
}

func usage() {
	fmt.Println(strings.TrimSpace(`imgfetch - fetch a single image over HTTP(S) into a local directory

Usage:
  imgfetch [fetch] [flags]

Commands:
  fetch             Fetch one URL (interactive prompt when --url is omitted)
  history           List previously fetched files
  config validate   Validate a YAML config file
  config print      Print the effective config as JSON
  version           Print version
  help              Show this help

Flags (fetch):
  --url URL         Source URL; omit to be prompted
  --dir PATH        Output directory (default: Fetched_Images)
  --timeout N       Request timeout in seconds (default: 10)
  --yes             Skip the confirmation prompt
  --config PATH     Path to YAML config file (or IMGFETCH_CONFIG env var)
  --log-level L     Log level: debug|info|warn|error
  --json            JSON log output
`))
}

// loadConfig resolves the config path from flag, env, then default location.
// A missing file is not an error; built-in defaults apply.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		path = os.Getenv("IMGFETCH_CONFIG")
	}
	if path == "" {
		if h, err := os.UserHomeDir(); err == nil && h != "" {
			candidate := filepath.Join(h, ".config", "imgfetch", "config.yml")
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
			}
		}
	}
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func handleFetch(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("fetch", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "Path to YAML config file")
	logLevel := fs.String("log-level", "", "log level: debug|info|warn|error")
	jsonOut := fs.Bool("json", false, "json logs")
	url := fs.String("url", "", "source URL")
	dir := fs.String("dir", "", "output directory")
	timeout := fs.Int("timeout", 0, "request timeout in seconds")
	yes := fs.Bool("yes", false, "skip confirmation prompt")
	if err := fs.Parse(args); err != nil {
		return err
	}
	c, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	if *dir != "" {
		c.General.DownloadRoot = *dir
	}
	if *timeout > 0 {
		c.Network.TimeoutSeconds = *timeout
	}
	if *logLevel == "" {
		*logLevel = c.Logging.Level
	}
	log := logging.New(*logLevel, *jsonOut || c.Logging.JSON)

	interactive := *url == ""
	if interactive {
		entered, aborted, err := prompt.AskURL()
		if err != nil {
			return err
		}
		if aborted {
			fmt.Println("Operation interrupted. Goodbye.")
			return nil
		}
		if entered == "" {
			fmt.Println("No URL provided. Exiting.")
			return nil
		}
		*url = entered
	}

	// The fetch core assumes the output directory exists; create it
	// idempotently here.
	if err := os.MkdirAll(c.General.DownloadRoot, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", c.General.DownloadRoot, err)
	}

	var hist *history.DB
	if c.HistoryEnabled() {
		if hist, err = history.Open(c); err != nil {
			log.Warnf("history unavailable: %v", err)
			hist = nil
		} else {
			defer func() { _ = hist.Close() }()
		}
	}
	met := metrics.New(c)
	f := fetcher.New(c, log, hist, met)

	outPath, err := f.Plan(ctx, *url)
	if err != nil {
		return renderedErr(ctx, err)
	}
	if interactive && !*yes {
		ok, perr := prompt.Confirm("Proceed to download?", outPath)
		if perr != nil {
			return perr
		}
		if !ok {
			fmt.Println("Cancelled by user.")
			return nil
		}
	}

	res, err := f.FetchTo(ctx, *url, outPath)
	if werr := met.Write(); werr != nil {
		log.Warnf("metrics write failed: %v", werr)
	}
	if err != nil {
		return renderedErr(ctx, err)
	}
	fmt.Printf("Downloaded successfully: %s (%s)\n", res.Path, humanize.Bytes(uint64(res.BytesWritten)))
	return nil
}

// renderedErr collapses a classified failure into the single line shown to
// the user, keeping interrupts distinguishable for main.
func renderedErr(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return errors.New(friendly.Render(err))
}

func handleHistory(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "Path to YAML config file")
	limit := fs.Int("limit", 20, "max rows to show")
	search := fs.String("search", "", "fuzzy filter on URL and destination")
	if err := fs.Parse(args); err != nil {
		return err
	}
	c, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	hist, err := history.Open(c)
	if err != nil {
		return err
	}
	defer func() { _ = hist.Close() }()

	var rows []history.Row
	if *search != "" {
		rows, err = hist.Search(*search, *limit)
	} else {
		rows, err = hist.List(*limit)
	}
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Println("No fetches recorded.")
		return nil
	}
	for _, r := range rows {
		when := time.Unix(r.CreatedAt, 0).Format("2006-01-02 15:04")
		if r.Status == history.StatusComplete {
			fmt.Printf("%s  %8s  %s  %s\n", when, humanize.Bytes(uint64(r.Size)), r.Dest, r.URL)
		} else {
			fmt.Printf("%s  %8s  %s  (%s)\n", when, "failed", r.URL, r.LastError)
		}
	}
	return nil
}

func handleConfig(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("config subcommand required: validate|print")
	}
	sub := args[0]
	fs := flag.NewFlagSet("config "+sub, flag.ContinueOnError)
	cfgPath := fs.String("config", "", "Path to YAML config file")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	switch sub {
	case "validate":
		if *cfgPath == "" {
			return errors.New("--config is required for validate")
		}
		if _, err := config.Load(*cfgPath); err != nil {
			return err
		}
		fmt.Println("config OK")
		return nil
	case "print":
		c, err := loadConfig(*cfgPath)
		if err != nil {
			return err
		}
		b, err := json.MarshalIndent(c, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(b))
		return nil
	default:
		return fmt.Errorf("unknown config subcommand: %s", sub)
	}
}
