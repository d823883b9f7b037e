package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/crimson-sun/timeline/internal/config"
	"github.com/crimson-sun/timeline/internal/logging"
	"github.com/crimson-sun/timeline/internal/metrics"
	"github.com/crimson-sun/timeline/internal/output"
	"github.com/crimson-sun/timeline/internal/output/file"
	"github.com/crimson-sun/timeline/internal/output/multi"
	"github.com/crimson-sun/timeline/internal/output/post"
	"github.com/crimson-sun/timeline/internal/output/serve"
	"github.com/crimson-sun/timeline/internal/output/stdout"
	"github.com/crimson-sun/timeline/internal/output/window"
	"github.com/crimson-sun/timeline/internal/pipeline"
	"github.com/crimson-sun/timeline/internal/source"

	// Register source implementations.
	_ "github.com/crimson-sun/timeline/internal/source/csv"
)

func main() {
	cfg, err := config.Load(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "timeline: %v\n", err)
		os.Exit(2)
	}
	if cfg.ShowVersion {
		fmt.Println("timeline " + config.Version)
		return
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "timeline: invalid configuration:\n%v\n", err)
		os.Exit(2)
	}

	logging.Init(os.Stderr, cfg.Output.JSON, logging.ParseLevel(cfg.LogLevel))

	if err := run(cfg); err != nil {
		slog.Error("timeline failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	src, err := source.ForPath(cfg.Path, cfg.Source)
	if err != nil {
		return err
	}

	m := metrics.New()
	out, err := buildOutput(cfg, m)
	if err != nil {
		return err
	}

	p := pipeline.New(src, cfg.Layout, cfg.Style, out, pipeline.WithMetrics(m))
	defer p.Close()

	// Set up graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Debug("rendering timeline", "path", cfg.Path, "encoding", cfg.Source.Encoding)
	if err := p.Run(ctx, cfg.Path); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// buildOutput assembles the selected outputs. Blocking outputs (the HTTP
// viewer and the window) go last so files and JSON are written first.
func buildOutput(cfg config.Config, m *metrics.Metrics) (output.Output, error) {
	var outs []output.Output
	if cfg.Output.File != "" {
		f, err := file.New(cfg.Output.File, file.WithMetrics(m))
		if err != nil {
			return nil, err
		}
		outs = append(outs, f)
	}
	if cfg.Output.Post != "" {
		outs = append(outs, post.New(cfg.Output.Post,
			post.WithFormat(cfg.Output.PostFormat),
			post.WithMetrics(m)))
	}
	if cfg.Output.JSON {
		outs = append(outs, stdout.New(cfg.Output.Pretty))
	}
	if cfg.Output.Serve != "" {
		outs = append(outs, serve.New(cfg.Output.Serve,
			serve.WithMetrics(m),
			serve.WithTitle(cfg.Style.Title),
			serve.WithShutdownTimeout(cfg.ShutdownTimeout)))
	}
	if cfg.Output.ShowWindow() {
		outs = append(outs, window.New(cfg.Style.Title))
	}
	if len(outs) == 1 {
		return outs[0], nil
	}
	return multi.New(outs...), nil
}
