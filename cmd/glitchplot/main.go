// Command glitchplot serves the GWO glitch plotter.
//
// Usage:
//
//	glitchplot [flags]
//
// The overrides -C, -M, -U and -W unlock settings for hosts with more
// memory than the default deployment target.
//
// Examples:
//
//	glitchplot
//	glitchplot -addr :8080 -log-level debug
//	glitchplot -config glitchplot.yaml -C -W
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/GNiklasch/GWO-glitch-visualization/internal/app"
	"github.com/GNiklasch/GWO-glitch-visualization/internal/config"
	"github.com/GNiklasch/GWO-glitch-visualization/internal/gwosc"
	"github.com/GNiklasch/GWO-glitch-visualization/internal/plot"
	"github.com/GNiklasch/GWO-glitch-visualization/internal/progress"
	"github.com/GNiklasch/GWO-glitch-visualization/internal/server"
	"github.com/GNiklasch/GWO-glitch-visualization/internal/view"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "glitchplot: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	configPath string
	addr       string
	logLevel   string
	overrides  config.Overrides
}

func parseFlags(args []string) (options, error) {
	var o options
	fs := flag.NewFlagSet("glitchplot", flag.ContinueOnError)
	fs.StringVar(&o.configPath, "config", "", "path to a YAML config file")
	fs.StringVar(&o.addr, "addr", "", "listen address (overrides the config file)")
	fs.StringVar(&o.logLevel, "log-level", "", "debug, info, warn or error (overrides the config file)")
	fs.BoolVar(&o.overrides.LargeCaches, "C", false, "use larger-sized strain data caches")
	fs.BoolVar(&o.overrides.MemProfiling, "M", false, "log memory statistics during each run")
	fs.BoolVar(&o.overrides.URLCaching, "U", false, "cache downloaded strain files on disk")
	fs.BoolVar(&o.overrides.WideCacheBlocks, "W", false, "offer extra-wide cache blocks")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: glitchplot [flags]\n\n")
		fmt.Fprintf(fs.Output(), "Serves plots of GWOSC strain data around a chosen time.\n\n")
		fmt.Fprintf(fs.Output(), "Flags:\n")
		fs.PrintDefaults()
	}
	err := fs.Parse(args)
	return o, err
}

// loadConfig reads the config file, applies the command line on top and
// validates the result.
func loadConfig(fsys afero.Fs, o options) (*config.Config, error) {
	cfg, err := config.LoadWithDefaults(fsys, o.configPath)
	if err != nil {
		return nil, err
	}
	cfg.Overrides.Merge(o.overrides)
	if o.addr != "" {
		cfg.Server.Addr = o.addr
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "validate config")
	}
	return cfg, nil
}

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return nil, errors.Wrap(err, "log level")
	}
	zc := zap.NewProductionConfig()
	if cfg.Development || cfg.Level == "debug" {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = level
	return zc.Build()
}

func run(args []string) error {
	o, err := parseFlags(args)
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}
	cfg, err := loadConfig(afero.NewOsFs(), o)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting glitchplot",
		zap.String("addr", cfg.Server.Addr),
		zap.String("gwosc", cfg.GWOSC.BaseURL),
		zap.Bool("large_caches", cfg.Overrides.LargeCaches),
		zap.Bool("mem_profiling", cfg.Overrides.MemProfiling),
		zap.Bool("url_caching", cfg.Overrides.URLCaching),
		zap.Bool("wide_cache_blocks", cfg.Overrides.WideCacheBlocks),
	)

	clientOpts := []gwosc.ClientOption{
		gwosc.WithTimeout(cfg.GWOSC.Timeout),
		gwosc.WithRetries(cfg.GWOSC.MaxRetries, cfg.GWOSC.RetryBackoff),
		gwosc.WithLogger(logger),
	}
	if cfg.Overrides.URLCaching {
		uc, err := gwosc.OpenURLCache(cfg.URLCache.Dir, cfg.URLCache.TTL)
		if err != nil {
			return err
		}
		defer uc.Close()
		clientOpts = append(clientOpts, gwosc.WithURLCache(uc))
	}
	client := gwosc.NewClient(cfg.GWOSC.BaseURL, clientOpts...)
	loader := gwosc.NewLoader(client, cfg.GWOSC.Runs,
		gwosc.WithParallelism(cfg.GWOSC.Parallelism),
		gwosc.WithLoaderLogger(logger),
	)
	strains := gwosc.NewCachedLoader(loader, cfg.Overrides.LargeCaches, logger)

	win, err := cfg.Render.WindowType()
	if err != nil {
		return err
	}
	renderer := view.NewRenderer(
		view.WithRenderLock(plot.NewRenderLock(cfg.Render.Concurrency)),
		view.WithSize(cfg.Render.Width, cfg.Render.RowHeight),
		view.WithLargeCaches(cfg.Overrides.LargeCaches),
		view.WithWindow(win),
		view.WithLogger(logger),
	)
	hub := progress.NewHub(progress.WithLogger(logger))
	svc := app.New(strains, renderer,
		app.WithOverrides(cfg.Overrides),
		app.WithPublisher(hub),
		app.WithLogger(logger),
	)
	srv := server.New(svc, hub, cfg.Server,
		server.WithLogger(logger),
		server.WithWideBlocks(cfg.Overrides.WideCacheBlocks),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown")
	}
	logger.Info("glitchplot stopped")
	return nil
}
