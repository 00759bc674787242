// ABOUTME: Per-source encode job: validate, select parameters, address, encode, reconcile
package pipeline

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/jadujoel/scode/internal/config"
	"github.com/jadujoel/scode/internal/discover"
	"github.com/jadujoel/scode/pkg/address"
	"github.com/jadujoel/scode/pkg/atlas"
)

// Result is one source's successful outcome: the atlas item it
// produced, plus whether encoding was skipped because a matching
// content-addressed file already existed (the cache hit path).
type Result struct {
	Package        string
	Item           atlas.Item
	Skipped        bool
	Rematerialized bool
}

// confirmFunc is asked whether to re-materialize a non-conforming
// source; it is not called at all when cfg.Yes is set.
type confirmFunc func(source discover.Source, info discover.Info) bool

func runJob(ctx context.Context, cfg config.Config, cache *discover.Cache, src discover.Source, confirm confirmFunc) (Result, error) {
	info, err := discover.ProbeCached(cache, src.Path, cfg.UseCache)
	if err != nil {
		return Result{}, fmt.Errorf("probe %s: %w", src.SourceName, err)
	}

	rematerialized := false
	if !info.Conforms48kHz() {
		if !cfg.Yes && !confirm(src, info) {
			return Result{}, fmt.Errorf("source %s is %d Hz, not 48kHz, and rematerialization was declined", src.SourceName, info.SampleRate)
		}
		if err := rematerializeTo48kHz(ctx, cfg, src.Path); err != nil {
			return Result{}, fmt.Errorf("rematerialize %s: %w", src.SourceName, err)
		}
		rematerialized = true
	}

	bitrate, channels := selectParameters(cfg, src, info)

	pcm, err := readWav(src.Path)
	if err != nil {
		return Result{}, err
	}
	samples := downmix(pcm, channels)
	hash := address.Hash(samples)
	fileName := address.FileName(bitrate, channels, hash)

	webmPath := filepath.Join(cfg.OutDir, fileName+".webm")
	skipped := false
	if _, err := os.Stat(webmPath); err == nil {
		skipped = true
	} else {
		webm, err := encodeOpusContainer(samples, channels, bitrate)
		if err != nil {
			return Result{}, fmt.Errorf("encode %s: %w", src.SourceName, err)
		}
		if err := os.WriteFile(webmPath, webm, 0o644); err != nil {
			return Result{}, fmt.Errorf("write %s: %w", webmPath, err)
		}
		if cfg.IncludeMP4 {
			mp4Path := filepath.Join(cfg.OutDir, fileName+".mp4")
			if err := encode(ctx, cfg, src.Path, mp4Path, bitrate, channels, "aac"); err != nil {
				return Result{}, fmt.Errorf("encode mp4 %s: %w", src.SourceName, err)
			}
		}
	}

	item := atlas.Item{
		SourceName:  src.SourceName,
		FileName:    fileName,
		SampleCount: pcm.Frames,
		LanguageTag: src.LanguageTag,
		Channels:    channels,
	}
	return Result{Package: src.Package, Item: item, Skipped: skipped, Rematerialized: rematerialized}, nil
}

// selectParameters resolves bitrate_kbps and channels with per-source
// override > per-package override > global default, per-source
// defaulting channels to the source's own channel count.
func selectParameters(cfg config.Config, src discover.Source, info discover.Info) (bitrate, channels int) {
	bitrate = cfg.Bitrate
	channels = info.Channels

	pkgCfg, hasPkg := cfg.Packages[src.Package]
	if hasPkg && pkgCfg.Bitrate != 0 {
		bitrate = pkgCfg.Bitrate
	}
	if src.SidecarBitrate != 0 {
		bitrate = src.SidecarBitrate
	}

	if hasPkg {
		if override, ok := pkgCfg.Sources[src.SourceName]; ok {
			if override.Bitrate != 0 {
				bitrate = override.Bitrate
			}
			if override.Channels != 0 {
				channels = override.Channels
			}
		}
	}
	return bitrate, channels
}

func rematerializeTo48kHz(ctx context.Context, cfg config.Config, path string) error {
	tmp := path + ".rematerialized.wav"
	cmd := exec.CommandContext(ctx, cfg.FfmpegPath,
		"-y", "-v", "error",
		"-i", path,
		"-ar", "48000",
		tmp,
	)
	if err := cmd.Run(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func encode(ctx context.Context, cfg config.Config, srcPath, outPath string, bitrate, channels int, codec string) error {
	cmd := exec.CommandContext(ctx, cfg.FfmpegPath,
		"-y", "-v", "error",
		"-i", srcPath,
		"-ac", strconv.Itoa(channels),
		"-b:a", strconv.Itoa(bitrate)+"k",
		"-c:a", codec,
		outPath,
	)
	return cmd.Run()
}
