// ABOUTME: Walks the package/sounds tree and groups sources by (package, language)
// ABOUTME: Applies legacy .lang/.bitrates sidecar overrides per spec's restored features
package discover

import (
	"bufio"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/jadujoel/scode/pkg/atlas"
)

// NoLanguage is re-exported from pkg/atlas so callers need not import it
// separately just to compare against an unlocalized source's tag.
const NoLanguage = atlas.NoLanguage

// Source is one discovered `.wav` file plus any override discovered
// alongside it (sidecar files only; configuration-document overrides
// are layered on top by the pipeline, which has the parsed config).
type Source struct {
	Package         string
	SourceName      string
	Path            string
	LanguageTag     string
	SidecarBitrate  int // 0 if no .bitrates override applies
}

// PackageOptions is the subset of a package's scodefig.jsonc entry that
// changes how its tree is walked: which subdirectory holds sources, and
// how subdirectory names under it map to language tags. The zero value
// walks the default "sounds" subdirectory and falls back to sidecar/
// dirname-derived language tags for every subdirectory.
type PackageOptions struct {
	// SourceDir is the subdirectory under the package root holding
	// sources. Empty means "sounds".
	SourceDir string
	// Languages maps a subdirectory name to the language tag it should
	// be recorded under, overriding the subdirectory-name-as-tag
	// default. A .lang sidecar inside the subdirectory still wins over
	// this mapping, matching the sidecar's role as the most specific
	// override.
	Languages map[string]string
}

// Walk discovers every `.wav` source under root/<pkg>/<sourcedir>[/<language>]
// for each pkg in packages (all packages if packages is empty), applying
// per-package options plus .lang and .bitrates sidecar overrides. opts
// may be nil or missing an entry for any package; a missing entry uses
// PackageOptions' zero value.
func Walk(root string, packages []string, opts map[string]PackageOptions) ([]Source, error) {
	pkgNames := packages
	if len(pkgNames) == 0 {
		entries, err := os.ReadDir(root)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if e.IsDir() {
				pkgNames = append(pkgNames, e.Name())
			}
		}
	}
	sort.Strings(pkgNames)

	var out []Source
	for _, pkg := range pkgNames {
		sources, err := walkPackage(root, pkg, opts[pkg])
		if err != nil {
			return nil, err
		}
		out = append(out, sources...)
	}
	return out, nil
}

func walkPackage(root, pkg string, opts PackageOptions) ([]Source, error) {
	sourceDirName := opts.SourceDir
	if sourceDirName == "" {
		sourceDirName = "sounds"
	}
	soundsDir := filepath.Join(root, pkg, sourceDirName)
	if _, err := os.Stat(soundsDir); os.IsNotExist(err) {
		return nil, nil
	}

	bitrates, err := readBitratesSidecar(filepath.Join(root, pkg, ".bitrates"))
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(soundsDir)
	if err != nil {
		return nil, err
	}

	var out []Source
	for _, e := range entries {
		if e.IsDir() {
			sub, err := walkLanguageDir(soundsDir, e.Name(), pkg, bitrates, opts.Languages)
			if err != nil {
				return nil, err
			}
			out = append(out, sub...)
			continue
		}
		if !isWav(e.Name()) {
			continue
		}
		out = append(out, newSource(pkg, soundsDir, e.Name(), NoLanguage, bitrates))
	}
	return out, nil
}

func walkLanguageDir(soundsDir, dirName, pkg string, bitrates map[string]int, languages map[string]string) ([]Source, error) {
	langDir := filepath.Join(soundsDir, dirName)
	tag := dirName
	if dirName == NoLanguage {
		tag = NoLanguage
	}
	if mapped, ok := languages[dirName]; ok {
		tag = mapped
	}

	if override, err := readLangSidecar(filepath.Join(langDir, ".lang")); err != nil {
		return nil, err
	} else if override != "" {
		tag = override
	}

	entries, err := os.ReadDir(langDir)
	if err != nil {
		return nil, err
	}

	var out []Source
	for _, e := range entries {
		if e.IsDir() || !isWav(e.Name()) {
			continue
		}
		out = append(out, newSource(pkg, langDir, e.Name(), tag, bitrates))
	}
	return out, nil
}

func newSource(pkg, dir, fileName, tag string, bitrates map[string]int) Source {
	name := strings.TrimSuffix(fileName, filepath.Ext(fileName))
	return Source{
		Package:        pkg,
		SourceName:     name,
		Path:           filepath.Join(dir, fileName),
		LanguageTag:    tag,
		SidecarBitrate: bitrates[name],
	}
}

func isWav(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".wav")
}

// readLangSidecar returns the trimmed contents of a .lang file, or ""
// if the file does not exist.
func readLangSidecar(path string) (string, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// readBitratesSidecar parses a package-root .bitrates file: whitespace-
// separated "<source-name> <bitrate-kbps>" lines, one override per
// line. A missing file yields an empty map, not an error.
func readBitratesSidecar(path string) (map[string]int, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return map[string]int{}, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	out := make(map[string]int)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			continue
		}
		bitrate, err := strconv.Atoi(fields[1])
		if err != nil {
			continue
		}
		out[fields[0]] = bitrate
	}
	return out, scanner.Err()
}
