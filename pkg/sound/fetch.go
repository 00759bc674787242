// ABOUTME: Encoded-file fetch over HTTP or the local filesystem
// ABOUTME: Grounded on the predecessor's artwork downloader fetch pattern
package sound

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

// Fetcher retrieves the raw encoded bytes for a file name, relative to a
// load path. It mirrors the predecessor's artwork.Downloader: a plain
// *http.Client GET with no retry, falling back to a local filesystem
// read when the load path has no http(s) scheme.
type Fetcher interface {
	Fetch(ctx context.Context, loadPath, fileName, ext string) ([]byte, error)
}

// HTTPFetcher is the default Fetcher. The fetched path is
// "{loadPath}{fileName}{ext}" with no additional normalization, per the
// runtime load path contract.
type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher returns a Fetcher using a plain *http.Client.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{client: &http.Client{}}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, loadPath, fileName, ext string) ([]byte, error) {
	url := loadPath + fileName + ext

	if path, ok := localPath(url); ok {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", url, err)
		}
		return data, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: HTTP %d", url, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
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
