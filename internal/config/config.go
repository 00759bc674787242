// ABOUTME: scodefig.jsonc loading and CLI flag parsing for the encoder binary
// ABOUTME: JSONC is stripped by hand since no third-party JSONC parser exists upstream
package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/jadujoel/scode/internal/logging"
)

// SourceOverride overrides bitrate/channels for one source name.
type SourceOverride struct {
	Bitrate  int `json:"bitrate,omitempty"`
	Channels int `json:"channels,omitempty"`
}

// PackageConfig overrides defaults for one package.
type PackageConfig struct {
	SourceDir string                    `json:"sourcedir,omitempty"`
	Bitrate   int                       `json:"bitrate,omitempty"`
	Languages map[string]string         `json:"languages,omitempty"`
	Sources   map[string]SourceOverride `json:"sources,omitempty"`
}

// Config is the merged view of scodefig.jsonc and CLI flag overrides.
type Config struct {
	InDir       string                   `json:"indir,omitempty"`
	OutDir      string                   `json:"outdir,omitempty"`
	Bitrate     int                      `json:"bitrate,omitempty"`
	IncludeMP4  bool                     `json:"includeMp4,omitempty"`
	LogLevel    string                   `json:"loglevel,omitempty"`
	Packages    map[string]PackageConfig `json:"packages,omitempty"`
	Yes         bool                     `json:"yes,omitempty"`
	UseCache    bool                     `json:"-"`
	FfmpegPath  string                   `json:"-"`
	PackageList []string                 `json:"-"`
}

// Default returns the baseline configuration used when neither the
// config document nor any flag overrides a field.
func Default() Config {
	return Config{
		InDir:      "./packages",
		OutDir:     "./encoded",
		Bitrate:    64,
		IncludeMP4: false,
		LogLevel:   "info",
		UseCache:   true,
		FfmpegPath: "ffmpeg",
		Packages:   make(map[string]PackageConfig),
	}
}

// Load reads and JSONC-decodes the config document at path. A missing
// file is not an error: Load returns Default() unchanged, since
// scodefig.jsonc is optional and every field also has a CLI flag.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	stripped := StripJSONC(data)
	if err := json.Unmarshal(stripped, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// StripJSONC removes "//" line comments and "/* */" block comments
// from data, leaving valid JSON. Comment markers inside string
// literals (including ones after an escaped quote) are kept as-is.
func StripJSONC(data []byte) []byte {
	out := make([]byte, 0, len(data))
	inString := false
	escaped := false

	for i := 0; i < len(data); i++ {
		c := data[i]

		if inString {
			out = append(out, c)
			if escaped {
				escaped = false
			} else if c == '\\' {
				escaped = true
			} else if c == '"' {
				inString = false
			}
			continue
		}

		switch {
		case c == '"':
			inString = true
			out = append(out, c)
		case c == '/' && i+1 < len(data) && data[i+1] == '/':
			for i < len(data) && data[i] != '\n' {
				i++
			}
			i--
		case c == '/' && i+1 < len(data) && data[i+1] == '*':
			i += 2
			for i+1 < len(data) && !(data[i] == '*' && data[i+1] == '/') {
				i++
			}
			i++
		default:
			out = append(out, c)
		}
	}
	return out
}

// Flags holds the parsed CLI flag set, mirroring every field in Config
// plus the repeatable --packages selector.
type Flags struct {
	ConfigPath string
	InDir      string
	OutDir     string
	Bitrate    int
	Packages   stringList
	IncludeMP4 boolFlag
	Yes        boolFlag
	LogLevel   string
	UseCache   boolFlag
	Ffmpeg     string
}

// ParseFlags registers and parses the encoder's CLI flags against fs.
// Passing a *flag.FlagSet rather than using flag.CommandLine directly
// keeps this testable without mutating global parser state.
func ParseFlags(fs *flag.FlagSet, args []string) (*Flags, error) {
	f := &Flags{}
	fs.StringVar(&f.ConfigPath, "config", "scodefig.jsonc", "path to the encoder configuration document")
	fs.StringVar(&f.InDir, "indir", "", "root of the package tree")
	fs.StringVar(&f.OutDir, "outdir", "", "destination directory for encoded output")
	fs.IntVar(&f.Bitrate, "bitrate", 0, "default per-channel bitrate in kbps (0 = use config/default)")
	fs.Var(&f.Packages, "packages", "package name to encode (repeatable; default: all)")
	fs.Var(&f.IncludeMP4, "include-mp4", "also produce an AAC-in-MP4 secondary output")
	fs.Var(&f.Yes, "yes", "re-materialize non-conforming sources without prompting")
	fs.StringVar(&f.LogLevel, "loglevel", "", "debug, perf, info, success, warn, error, or silent")
	fs.Var(&f.UseCache, "use-cache", "reuse the on-disk discovery cache between runs")
	fs.StringVar(&f.Ffmpeg, "ffmpeg", "", "path to an ffmpeg-compatible media tool binary")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return f, nil
}

// Merge layers flag overrides on top of cfg. Only flags the caller
// actually set (non-zero value, or explicitly toggled bool) take
// effect; everything else keeps the config document's value.
func Merge(cfg Config, f *Flags) Config {
	if f.InDir != "" {
		cfg.InDir = f.InDir
	}
	if f.OutDir != "" {
		cfg.OutDir = f.OutDir
	}
	if f.Bitrate != 0 {
		cfg.Bitrate = f.Bitrate
	}
	if len(f.Packages) > 0 {
		cfg.PackageList = []string(f.Packages)
	}
	if f.IncludeMP4.set {
		cfg.IncludeMP4 = f.IncludeMP4.value
	}
	if f.Yes.set {
		cfg.Yes = f.Yes.value
	}
	if f.LogLevel != "" {
		cfg.LogLevel = f.LogLevel
	}
	if f.UseCache.set {
		cfg.UseCache = f.UseCache.value
	}
	if f.Ffmpeg != "" {
		cfg.FfmpegPath = f.Ffmpeg
	}
	return cfg
}

// ResolveLevel parses cfg.LogLevel, falling back to info on an empty
// or unrecognized value rather than failing the whole run over a typo
// in an ambient concern.
func ResolveLevel(cfg Config) logging.Level {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return logging.LevelInfo
	}
	return level
}

// PackagesOrAll returns cfg.PackageList if non-empty, otherwise every
// package name mentioned in cfg.Packages.
func PackagesOrAll(cfg Config) []string {
	if len(cfg.PackageList) > 0 {
		return cfg.PackageList
	}
	names := make([]string, 0, len(cfg.Packages))
	for name := range cfg.Packages {
		names = append(names, name)
	}
	return names
}

type stringList []string

func (s *stringList) String() string { return fmt.Sprint([]string(*s)) }
func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// boolFlag distinguishes "flag not passed" from "flag passed as
// false", which flag.BoolVar's zero value cannot: Config's own default
// may be true, and an explicit --use-cache=false must be able to
// override it.
type boolFlag struct {
	set   bool
	value bool
}

func (b *boolFlag) String() string {
	if !b.set {
		return ""
	}
	return fmt.Sprint(b.value)
}

func (b *boolFlag) Set(v string) error {
	switch v {
	case "true", "1", "":
		b.set, b.value = true, true
	case "false", "0":
		b.set, b.value = true, false
	default:
		return fmt.Errorf("invalid boolean value %q", v)
	}
	return nil
}

func (b *boolFlag) IsBoolFlag() bool { return true }
