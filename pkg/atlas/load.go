// ABOUTME: Atlas loading over HTTP or the local filesystem
// ABOUTME: Fetches the .atlas.json document and decodes it
package atlas

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

// Loader fetches an atlas document from a load path. It has no retry
// policy and uses the host's default HTTP client timeouts, matching the
// rest of this pipeline's fetch behavior.
type Loader struct {
	client *http.Client
}

// NewLoader returns a Loader using a plain *http.Client, the same
// pattern the predecessor's artwork downloader used for one-shot GETs.
func NewLoader() *Loader {
	return &Loader{client: &http.Client{}}
}

// Load fetches and decodes the atlas document at url. An "http://" or
// "https://" URL is fetched over HTTP; a "file://" prefix is stripped and
// anything else is read as a local filesystem path. Fetch failures are
// wrapped in ErrFetch; decode failures, including invalid JSON, are
// wrapped in ErrMalformed.
func (l *Loader) Load(ctx context.Context, url string) (*Atlas, error) {
	data, err := l.fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	out := New()
	if err := json.Unmarshal(data, out); err != nil {
		if errors.Is(err, ErrMalformed) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return out, nil
}

func (l *Loader) fetch(ctx context.Context, url string) ([]byte, error) {
	if path, ok := localPath(url); ok {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFetch, err)
		}
		return data, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP %d", ErrFetch, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	return data, nil
}

func localPath(url string) (string, bool) {
	if p, ok := strings.CutPrefix(url, "file://"); ok {
		return p, true
	}
	if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
		return "", false
	}
	return url, true
}
