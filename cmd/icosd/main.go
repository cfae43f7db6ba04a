package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"icos-renderer/internal/config"
	"icos-renderer/internal/scheduler"
	"icos-renderer/internal/server"
)

func main() {
	configFile := flag.String("config", "", "Path to config.json or config.yaml")
	listen := flag.String("listen", "", "Listen address (default: localhost:8000)")
	catalog := flag.String("catalog", "", "Directory of shape descriptors")
	url := flag.String("url", "", "Base URL of an upstream descriptor server")
	watch := flag.Bool("watch", false, "Reload sessions when catalog files change")
	logLevel := flag.String("log-level", "", "debug, info, warn or error (default: info)")

	flag.Parse()

	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}
	cfg.Resolve(config.Flags{
		CatalogDir:    *catalog,
		DescriptorURL: *url,
		Listen:        *listen,
		LogLevel:      *logLevel,
	})
	if *watch {
		cfg.Watch = true
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := cfg.Logger(os.Stderr)
	src, cat := cfg.Source(logger)

	axes, err := scheduler.LoadAxes(ctx, src)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading constants: %v\n", err)
		os.Exit(1)
	}

	srv := server.New(cfg.Listen, src, axes, cfg.FrameRate, logger)

	if cfg.Watch {
		if cat == nil {
			fmt.Fprintln(os.Stderr, "Error: -watch needs a catalog directory")
			os.Exit(1)
		}
		go func() {
			err := cat.Watch(ctx, func(shape string) { srv.Reload(ctx, shape) })
			if err != nil {
				logger.Error("catalog watch stopped", "err", err)
			}
		}()
	}

	if err := srv.ListenAndServeWithGracefulShutdown(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
