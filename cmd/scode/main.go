// ABOUTME: Entry point for the scode encoder CLI
// ABOUTME: Parses flags/config and runs the encode pipeline to completion
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jadujoel/scode/internal/config"
	"github.com/jadujoel/scode/internal/discover"
	"github.com/jadujoel/scode/internal/logging"
	"github.com/jadujoel/scode/internal/pipeline"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("scode", flag.ContinueOnError)
	noTUI := fs.Bool("no-tui", false, "disable the bubbletea progress display, stream plain log lines instead")

	f, err := config.ParseFlags(fs, args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	cfg, err := config.Load(f.ConfigPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	cfg = config.Merge(cfg, f)

	logger := logging.New(os.Stderr, config.ResolveLevel(cfg), true)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Warnf("received interrupt, finishing in-flight jobs")
		cancel()
	}()

	total := countSources(cfg)
	reporter, finish := pipeline.NewReporter(total, *noTUI, logger)
	defer finish()

	report, err := pipeline.Run(ctx, cfg, logger, reporter)
	finish()
	if err != nil {
		logger.Errorf("pipeline failed: %v", err)
		return 1
	}

	logger.Successf("produced %d, skipped %d, failed %d, reran discovery %d time(s), in %s",
		report.Produced, report.Skipped, report.Failed, report.Reruns, report.Elapsed)

	if report.Failed > 0 {
		return 1
	}
	return 0
}

// countSources gives the progress reporter a total to render against.
// A discovery error here is not fatal; Run will surface it properly.
func countSources(cfg config.Config) int {
	opts := make(map[string]discover.PackageOptions, len(cfg.Packages))
	for name, pkgCfg := range cfg.Packages {
		opts[name] = discover.PackageOptions{SourceDir: pkgCfg.SourceDir, Languages: pkgCfg.Languages}
	}
	sources, err := discover.Walk(cfg.InDir, config.PackagesOrAll(cfg), opts)
	if err != nil {
		return 0
	}
	return len(sources)
}
