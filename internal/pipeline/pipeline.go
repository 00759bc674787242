// ABOUTME: Orchestrates discovery through atlas emission with a per-CPU worker pool
// ABOUTME: Restarts discovery from scratch whenever a source is rematerialized mid-run
package pipeline

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/jadujoel/scode/internal/config"
	"github.com/jadujoel/scode/internal/discover"
	"github.com/jadujoel/scode/internal/logging"
	"github.com/jadujoel/scode/pkg/atlas"
)

// Report summarizes one completed run for the CLI's exit-code decision
// and final log line.
type Report struct {
	Produced int
	Skipped  int
	Failed   int
	Reruns   int
	Elapsed  time.Duration
}

// Run executes the full encode pipeline: discovery, validation,
// parameter selection, content-addressing, encode, reconciliation, and
// atomic atlas emission. It restarts discovery from the top whenever a
// source was rematerialized, since the tree's conformance has changed
// underneath the in-flight batch.
func Run(ctx context.Context, cfg config.Config, logger *logging.Logger, progress Reporter) (Report, error) {
	start := time.Now()
	report := Report{}

	cachePath := filepath.Join(cfg.OutDir, ".cache", "discovery.json")
	cache := discover.OpenCache(cachePath)

	packages := config.PackagesOrAll(cfg)
	pkgOptions := packageOptions(cfg)

	for {
		discoverStart := time.Now()
		sources, err := discover.Walk(cfg.InDir, packages, pkgOptions)
		if err != nil {
			return report, fmt.Errorf("discovery: %w", err)
		}
		logger.Perff("discovery: found %d sources in %s", len(sources), time.Since(discoverStart))

		if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
			return report, fmt.Errorf("prepare outdir: %w", err)
		}

		encodeStart := time.Now()
		a := atlas.New()
		var produced, skipped, failed int
		rematerialized := false

		confirm := makeConfirmer(cfg)

		results := runPool(ctx, cfg, cache, sources, confirm, progress)
		for _, r := range results {
			if r.err != nil {
				failed++
				logger.Errorf("%v", r.err)
				continue
			}
			a.Add(r.result.Package, r.result.Item)
			if r.result.Skipped {
				skipped++
			} else {
				produced++
			}
			if r.result.Rematerialized {
				rematerialized = true
			}
		}
		logger.Perff("encode phase: %d produced, %d skipped, %d failed in %s", produced, skipped, failed, time.Since(encodeStart))

		if cfg.UseCache {
			if err := cache.Save(); err != nil {
				logger.Warnf("failed to persist discovery cache: %v", err)
			}
		}

		if rematerialized {
			report.Reruns++
			logger.Infof("one or more sources were rematerialized to 48kHz; restarting discovery")
			continue
		}

		if err := writeAtlas(cfg.OutDir, a); err != nil {
			return report, fmt.Errorf("atlas emission: %w", err)
		}

		report.Produced, report.Skipped, report.Failed = produced, skipped, failed
		report.Elapsed = time.Since(start)
		logger.Perff("total elapsed: %s", report.Elapsed)
		return report, nil
	}
}

type jobOutcome struct {
	result Result
	err    error
}

// runPool fans sources out across min(NumCPU, len(sources)) workers,
// preserving no particular completion order; the caller only needs the
// aggregate counts and the accumulated atlas items.
func runPool(ctx context.Context, cfg config.Config, cache *discover.Cache, sources []discover.Source, confirm confirmFunc, progress Reporter) []jobOutcome {
	workers := runtime.NumCPU()
	if workers > len(sources) {
		workers = len(sources)
	}
	if workers < 1 {
		return nil
	}

	jobs := make(chan discover.Source)
	outcomes := make([]jobOutcome, len(sources))

	var wg sync.WaitGroup
	var mu sync.Mutex
	var done int

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for src := range jobs {
				result, err := runJob(ctx, cfg, cache, src, confirm)
				mu.Lock()
				idx := done
				done++
				outcomes[idx] = jobOutcome{result: result, err: err}
				if progress != nil {
					progress.Advance(src.SourceName, err)
				}
				mu.Unlock()
			}
		}()
	}

	for _, src := range sources {
		jobs <- src
	}
	close(jobs)
	wg.Wait()

	return outcomes
}

// packageOptions projects cfg.Packages down to the fields discover.Walk
// needs to honor `sourcedir`/`languages` per package, leaving the
// bitrate/source-override fields to selectParameters, which already
// reads cfg.Packages directly.
func packageOptions(cfg config.Config) map[string]discover.PackageOptions {
	if len(cfg.Packages) == 0 {
		return nil
	}
	opts := make(map[string]discover.PackageOptions, len(cfg.Packages))
	for name, pkgCfg := range cfg.Packages {
		opts[name] = discover.PackageOptions{
			SourceDir: pkgCfg.SourceDir,
			Languages: pkgCfg.Languages,
		}
	}
	return opts
}

// makeConfirmer returns the prompt used for non-conforming sources. It
// is never called when cfg.Yes is set.
func makeConfirmer(cfg config.Config) confirmFunc {
	return func(src discover.Source, info discover.Info) bool {
		fmt.Fprintf(os.Stderr, "%s is %d Hz, not 48kHz. Re-materialize in place? [y/N] ", src.SourceName, info.SampleRate)
		reader := bufio.NewReader(os.Stdin)
		line, _ := reader.ReadString('\n')
		return strings.HasPrefix(strings.ToLower(strings.TrimSpace(line)), "y")
	}
}

func writeAtlas(outDir string, a *atlas.Atlas) error {
	data, err := json.Marshal(a)
	if err != nil {
		return err
	}

	path := filepath.Join(outDir, ".atlas.json")
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
