// Package main runs the scan-highlights MCP server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/ironsheep/scan-highlights/internal/config"
	"github.com/ironsheep/scan-highlights/internal/feed"
	"github.com/ironsheep/scan-highlights/internal/highlight"
	"github.com/ironsheep/scan-highlights/internal/hittest"
	"github.com/ironsheep/scan-highlights/internal/logging"
	"github.com/ironsheep/scan-highlights/internal/server"
	"github.com/ironsheep/scan-highlights/internal/session"
	"github.com/ironsheep/scan-highlights/internal/transform"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

const (
	// Flags.
	flagEnvFile       = "env-file"
	flagResizeMode    = "resize-mode"
	flagPlatform      = "platform"
	flagFuzzyDistance = "fuzzy-distance"
	flagFrameRate     = "frame-rate"
	flagAxisTable     = "axis-table"
	flagLogLevel      = "log-level"
	flagFeed          = "feed"
	flagListen        = "listen"
)

func main() {
	app := &cli.App{
		Name:      "scan-highlights-mcp",
		Usage:     "MCP server mapping barcode detections onto the camera preview",
		UsageText: "scan-highlights-mcp [options]\n\nThis server communicates via MCP protocol over stdin/stdout.",
		Version:   Version,
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  flagEnvFile,
				Value: cli.NewStringSlice(".env"),
				Usage: "load environment from `FILE` before reading settings; missing files are skipped",
			},
			&cli.StringFlag{
				Name:  flagResizeMode,
				Usage: "how frames fit the preview: cover, contain or stretch",
			},
			&cli.StringFlag{
				Name:  flagPlatform,
				Usage: "detector axis convention: ios or android",
			},
			&cli.Float64Flag{
				Name:  flagFuzzyDistance,
				Usage: "tap tolerance in display units",
			},
			&cli.Float64Flag{
				Name:  flagFrameRate,
				Usage: "expected camera fps; slower frame builds are logged",
			},
			&cli.StringFlag{
				Name:  flagAxisTable,
				Usage: "JSON file of orientation table overrides",
			},
			&cli.StringFlag{
				Name:  flagLogLevel,
				Usage: "debug, info, warn or error",
			},
			&cli.StringFlag{
				Name:  flagFeed,
				Usage: "websocket `URL` of a detector to read frames from",
			},
			&cli.StringFlag{
				Name:  flagListen,
				Usage: "accept detector websockets on `ADDR`",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "version",
				Usage: "print version information",
				Action: func(c *cli.Context) error {
					fmt.Fprintf(c.App.Writer, "scan-highlights-mcp %s\n", Version)
					fmt.Fprintf(c.App.Writer, "  Build time: %s\n", BuildTime)
					fmt.Fprintf(c.App.Writer, "  Git commit: %s\n", GitCommit)
					return nil
				},
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "scan-highlights-mcp: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig resolves .env files, then the environment, then flags.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.StringSlice(flagEnvFile)...)
	if err != nil {
		return nil, err
	}

	if c.IsSet(flagResizeMode) {
		cfg.ResizeMode = transform.ResizeMode(c.String(flagResizeMode))
	}
	if c.IsSet(flagPlatform) {
		cfg.Platform = transform.Platform(c.String(flagPlatform))
	}
	if c.IsSet(flagFuzzyDistance) {
		cfg.FuzzyDistance = c.Float64(flagFuzzyDistance)
	}
	if c.IsSet(flagFrameRate) {
		cfg.FrameRateHint = c.Float64(flagFrameRate)
	}
	if c.IsSet(flagLogLevel) {
		cfg.LogLevel = c.String(flagLogLevel)
	}
	if c.IsSet(flagFeed) {
		cfg.FeedURL = c.String(flagFeed)
	}
	if c.IsSet(flagListen) {
		cfg.ListenAddr = c.String(flagListen)
	}
	if c.IsSet(flagAxisTable) {
		cfg.AxisTablePath = c.String(flagAxisTable)
		if err := cfg.LoadTables(); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return errors.Wrap(err, "configuration")
	}

	logger, err := logging.New("scan-highlights", cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	logger.Debugw("starting", "version", Version, "built", BuildTime, "commit", GitCommit,
		"resizeMode", cfg.ResizeMode, "platform", cfg.Platform, "fuzzyDistance", cfg.FuzzyDistance)

	pipeline := session.NewPipeline(session.Options{
		Builder: highlight.Builder{
			Platform:    cfg.Platform,
			ResizeMode:  cfg.ResizeMode,
			AxisTable:   cfg.AxisTable,
			LayoutTable: cfg.LayoutTable,
		},
		FuzzyDistance: cfg.FuzzyDistance,
		FrameRateHint: cfg.FrameRateHint,
		OnScanned: func(s *session.Snapshot) {
			logger.Debugw("scanned", "seq", s.Seq, "highlights", len(s.Highlights), "buildTime", s.BuildTime)
		},
		OnTapped: func(h hittest.Hit) {
			logger.Infow("barcode tapped", "value", h.Highlight.DisplayValue(), "inside", h.Inside)
		},
		Logger: logger.Named("session"),
	})

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.FeedURL != "" {
		go readFeed(ctx, cfg.FeedURL, pipeline, logger.Named("feed"))
	}
	if cfg.ListenAddr != "" {
		srv := listen(ctx, cfg.ListenAddr, pipeline, logger.Named("feed"))
		defer srv.Close()
	}

	srv := server.New(cfg, pipeline, logger.Named("mcp"))
	if err := srv.Run(); err != nil {
		return errors.Wrap(err, "server error")
	}
	return nil
}

// readFeed consumes a detector websocket, reconnecting until ctx is done.
func readFeed(ctx context.Context, url string, pipeline *session.Pipeline, logger *zap.SugaredLogger) {
	const retry = 2 * time.Second

	for {
		f, err := feed.Dial(ctx, url, feed.Options{Logger: logger})
		if err != nil {
			logger.Warnw("detector feed unavailable", "url", url, "error", err)
		} else {
			logger.Infow("detector feed connected", "url", url)
			if err := pipeline.Run(ctx, f.Frames()); err != nil {
				f.Close()
				return
			}
			logger.Infow("detector feed closed", "url", url, "error", f.Err(),
				"decoded", f.Decoded(), "dropped", f.Dropped())
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(retry):
		}
	}
}

// listen accepts detector websockets on addr. Each connection feeds the
// shared pipeline.
func listen(ctx context.Context, addr string, pipeline *session.Pipeline, logger *zap.SugaredLogger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/frames", &feed.Handler{
		Options: feed.Options{Logger: logger},
		OnFeed: func(f *feed.Feed) {
			logger.Infow("detector connected")
			if err := pipeline.Run(ctx, f.Frames()); err != nil {
				f.Close()
			}
		},
	})

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.Infow("listening for detectors", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorw("detector listener stopped", "error", err)
		}
	}()
	return srv
}
