// ABOUTME: Tests for the single-flighted buffer cache
package sound

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/jadujoel/scode/pkg/atlas"
	"github.com/jadujoel/scode/pkg/audio"
)

// countingFetcher always returns the same bytes and counts how many
// times Fetch was actually called, independent of how many callers
// asked for the same file concurrently.
type countingFetcher struct {
	mu    sync.Mutex
	calls int
	order []string
	data  []byte
}

func (f *countingFetcher) Fetch(_ context.Context, _, fileName, _ string) ([]byte, error) {
	f.mu.Lock()
	f.calls++
	f.order = append(f.order, fileName)
	f.mu.Unlock()
	return f.data, nil
}

// failingFetcher always fails Fetch, counting how many times it was
// actually called so tests can assert whether a retry happened.
type failingFetcher struct {
	mu    sync.Mutex
	calls int
}

func (f *failingFetcher) Fetch(_ context.Context, _, _, _ string) ([]byte, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return nil, fmt.Errorf("fetch failed")
}

func fakeMediaTool(t *testing.T, pcm []byte, delay time.Duration) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake media tool script is a POSIX shell script")
	}
	dir := t.TempDir()
	script := filepath.Join(dir, "fake-ffmpeg")
	sleep := ""
	if delay > 0 {
		sleep = fmt.Sprintf("sleep %f\n", delay.Seconds())
	}
	content := "#!/bin/sh\n" + sleep + "cat <<'EOF' | base64 -d\n" + base64.StdEncoding.EncodeToString(pcm) + "\nEOF\n"
	if err := os.WriteFile(script, []byte(content), 0o755); err != nil {
		t.Fatalf("setup: %v", err)
	}
	return script
}

func int16PCM(values ...int16) []byte {
	out := make([]byte, len(values)*2)
	for i, v := range values {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(v))
	}
	return out
}

func TestBufferCacheRequestAsyncSingleFlightsConcurrentDecodes(t *testing.T) {
	script := fakeMediaTool(t, int16PCM(1, 2, 3, 4), 50*time.Millisecond)
	fetcher := &countingFetcher{data: []byte("not-a-known-container")}
	bus := newEventBus()
	cache := NewBufferCache("", ".webm", 8000, fetcher, NewDecoder(script), bus)

	item := atlas.Item{SourceName: "x", FileName: "f1", SampleCount: 4, Channels: 1, LanguageTag: atlas.NoLanguage}

	var wg sync.WaitGroup
	results := make([]*audio.Buffer, 10)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = cache.RequestAsync(context.Background(), item)
		}(i)
	}
	wg.Wait()

	fetcher.mu.Lock()
	calls := fetcher.calls
	fetcher.mu.Unlock()
	if calls != 1 {
		t.Fatalf("expected exactly 1 fetch despite 10 concurrent requests, got %d", calls)
	}
	for i, buf := range results {
		if buf == nil {
			t.Fatalf("result %d: expected a buffer, got nil", i)
		}
		if len(buf.Samples) != 4 {
			t.Fatalf("result %d: expected 4 samples, got %d", i, len(buf.Samples))
		}
	}
}

func TestBufferCacheRequestSyncReturnsPlaceholderThenFillsInPlace(t *testing.T) {
	script := fakeMediaTool(t, int16PCM(10, 20, 30, 40), 150*time.Millisecond)
	fetcher := &countingFetcher{data: []byte("not-a-known-container")}
	bus := newEventBus()
	cache := NewBufferCache("", ".webm", 8000, fetcher, NewDecoder(script), bus)

	item := atlas.Item{SourceName: "x", FileName: "f1", SampleCount: 4, Channels: 1, LanguageTag: atlas.NoLanguage}

	buf := cache.RequestSync(context.Background(), item)
	if buf == nil {
		t.Fatal("expected a placeholder buffer, got nil")
	}
	if buf.SampleCount != 4 || len(buf.Samples) != 4 {
		t.Fatalf("unexpected placeholder shape: %+v", buf)
	}
	for _, s := range buf.Samples {
		if s != 0 {
			t.Fatalf("expected a silent placeholder, got %v", buf.Samples)
		}
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		filled := false
		for _, s := range buf.Samples {
			if s != 0 {
				filled = true
				break
			}
		}
		if filled {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	nonZero := false
	for _, s := range buf.Samples {
		if s != 0 {
			nonZero = true
		}
	}
	if !nonZero {
		t.Fatal("expected the placeholder to be filled in place once the background decode finished")
	}
}

func TestBufferCacheLoadItemsRespectsPriorityOrder(t *testing.T) {
	script := fakeMediaTool(t, int16PCM(1), 0)
	fetcher := &countingFetcher{data: []byte("not-a-known-container")}
	bus := newEventBus()
	cache := NewBufferCache("", ".webm", 8000, fetcher, NewDecoder(script), bus)
	cache.SetPriorities([]string{"third", "first"})

	items := []atlas.Item{
		{SourceName: "first", FileName: "f1", SampleCount: 1, Channels: 1, LanguageTag: atlas.NoLanguage},
		{SourceName: "second", FileName: "f2", SampleCount: 1, Channels: 1, LanguageTag: atlas.NoLanguage},
		{SourceName: "third", FileName: "f3", SampleCount: 1, Channels: 1, LanguageTag: atlas.NoLanguage},
	}
	cache.LoadItems(context.Background(), items)

	fetcher.mu.Lock()
	order := append([]string(nil), fetcher.order...)
	fetcher.mu.Unlock()

	want := []string{"f3", "f1", "f2"}
	if len(order) != len(want) {
		t.Fatalf("expected %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, order)
		}
	}
}

func TestBufferCacheDisposeAwaitsPendingAndClears(t *testing.T) {
	script := fakeMediaTool(t, int16PCM(1, 2), 100*time.Millisecond)
	fetcher := &countingFetcher{data: []byte("not-a-known-container")}
	bus := newEventBus()
	cache := NewBufferCache("", ".webm", 8000, fetcher, NewDecoder(script), bus)

	item := atlas.Item{SourceName: "x", FileName: "f1", SampleCount: 2, Channels: 1, LanguageTag: atlas.NoLanguage}
	go cache.RequestAsync(context.Background(), item)
	time.Sleep(10 * time.Millisecond) // let the decode actually start

	cache.Dispose()

	if cache.Len() != 0 {
		t.Fatalf("expected an empty cache after dispose, got %d entries", cache.Len())
	}
	if buf := cache.RequestSync(context.Background(), item); buf != nil {
		t.Fatalf("expected RequestSync to no-op once disposed, got %+v", buf)
	}
}

func TestBufferCacheRequestAsyncReturnsSamePlaceholderObjectAsRequestSync(t *testing.T) {
	script := fakeMediaTool(t, int16PCM(1, 2, 3, 4), 50*time.Millisecond)
	fetcher := &countingFetcher{data: []byte("not-a-known-container")}
	bus := newEventBus()
	cache := NewBufferCache("", ".webm", 8000, fetcher, NewDecoder(script), bus)

	item := atlas.Item{SourceName: "x", FileName: "f1", SampleCount: 4, Channels: 1, LanguageTag: atlas.NoLanguage}

	placeholder := cache.RequestSync(context.Background(), item)
	if placeholder == nil {
		t.Fatal("expected a placeholder buffer, got nil")
	}

	// The async decode kicked off by RequestSync is already in flight;
	// joining it should single-flight onto the same ticket and resolve
	// to the very object RequestSync installed and returned, per the
	// "same buffer object" identity guarantee.
	got := cache.RequestAsync(context.Background(), item)
	if got == nil {
		t.Fatal("expected a buffer, got nil")
	}
	if got != placeholder {
		t.Fatalf("expected RequestAsync to return the same object RequestSync installed, got a different buffer")
	}
}

func TestBufferCacheCachesDecodeFailureAndDoesNotRetryAutomatically(t *testing.T) {
	fetcher := &failingFetcher{}
	bus := newEventBus()
	cache := NewBufferCache("", ".webm", 8000, fetcher, NewDecoder(""), bus)

	item := atlas.Item{SourceName: "x", FileName: "f1", SampleCount: 4, Channels: 1, LanguageTag: atlas.NoLanguage}

	if buf := cache.RequestAsync(context.Background(), item); buf != nil {
		t.Fatalf("expected nil after a fetch failure, got %+v", buf)
	}
	fetcher.mu.Lock()
	afterFirst := fetcher.calls
	fetcher.mu.Unlock()
	if afterFirst != 1 {
		t.Fatalf("expected exactly 1 fetch attempt, got %d", afterFirst)
	}

	// A second RequestAsync for the same file_name must not re-attempt
	// the fetch: the failure is cached until explicitly invalidated.
	if buf := cache.RequestAsync(context.Background(), item); buf != nil {
		t.Fatalf("expected nil from the cached failure, got %+v", buf)
	}
	if buf := cache.RequestSync(context.Background(), item); buf != nil {
		t.Fatalf("expected RequestSync to return the cached nil too, got %+v", buf)
	}

	fetcher.mu.Lock()
	afterRetries := fetcher.calls
	fetcher.mu.Unlock()
	if afterRetries != 1 {
		t.Fatalf("expected no additional fetch attempts after the cached failure, got %d total calls", afterRetries)
	}
}

func TestBufferCacheInvalidateAllowsRetryAfterFailure(t *testing.T) {
	fetcher := &failingFetcher{}
	bus := newEventBus()
	cache := NewBufferCache("", ".webm", 8000, fetcher, NewDecoder(""), bus)

	item := atlas.Item{SourceName: "x", FileName: "f1", SampleCount: 4, Channels: 1, LanguageTag: atlas.NoLanguage}

	if buf := cache.RequestAsync(context.Background(), item); buf != nil {
		t.Fatalf("expected nil after a fetch failure, got %+v", buf)
	}

	cache.Invalidate(item.FileName)

	if buf := cache.RequestAsync(context.Background(), item); buf != nil {
		t.Fatalf("expected nil after the retried fetch also fails, got %+v", buf)
	}

	fetcher.mu.Lock()
	calls := fetcher.calls
	fetcher.mu.Unlock()
	if calls != 2 {
		t.Fatalf("expected Invalidate to allow exactly one more fetch attempt, got %d total calls", calls)
	}
}

func TestBufferCacheResumeAllowsReuseAfterDispose(t *testing.T) {
	script := fakeMediaTool(t, int16PCM(5), 0)
	fetcher := &countingFetcher{data: []byte("not-a-known-container")}
	bus := newEventBus()
	cache := NewBufferCache("", ".webm", 8000, fetcher, NewDecoder(script), bus)

	cache.Dispose()
	cache.Resume()

	item := atlas.Item{SourceName: "x", FileName: "f1", SampleCount: 1, Channels: 1, LanguageTag: atlas.NoLanguage}
	buf := cache.RequestAsync(context.Background(), item)
	if buf == nil {
		t.Fatal("expected a buffer after resume, got nil")
	}
}
