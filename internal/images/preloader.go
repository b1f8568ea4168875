package images

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/penseeboheme/storefront/internal/models"
	"golang.org/x/sync/errgroup"
)

const (
	// preloadBatchSize caps concurrent image loads per batch, staying
	// under the browser-era concurrent-connection limit the original
	// cache was tuned for.
	preloadBatchSize = 4
	// preloadBatchDelay is the pause between batches.
	preloadBatchDelay = 50 * time.Millisecond
)

// Loader fetches one image URL. Failures are the loader's to report;
// the preloader swallows them so one bad URL cannot derail a batch.
type Loader func(ctx context.Context, url string) error

// HTTPLoader fetches the URL and discards the body, warming whatever
// cache sits in front of the image host.
func HTTPLoader(client *http.Client) Loader {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return func(ctx context.Context, url string) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, resp.Body)
		if resp.StatusCode != http.StatusOK {
			return &loadError{url: url, status: resp.StatusCode}
		}
		return nil
	}
}

type loadError struct {
	url    string
	status int
}

func (e *loadError) Error() string {
	return "image load failed: " + e.url
}

// Preloader tracks which image URLs have been warmed. Two sets: loaded
// (completed successfully) and in-flight (currently loading). A URL in
// either set is never loaded again concurrently.
type Preloader struct {
	loader     Loader
	batchSize  int
	batchDelay time.Duration

	mu       sync.Mutex
	loaded   map[string]struct{}
	inFlight map[string]struct{}
}

func NewPreloader(loader Loader) *Preloader {
	if loader == nil {
		loader = HTTPLoader(nil)
	}
	return &Preloader{
		loader:     loader,
		batchSize:  preloadBatchSize,
		batchDelay: preloadBatchDelay,
		loaded:     make(map[string]struct{}),
		inFlight:   make(map[string]struct{}),
	}
}

// PreloadImage loads one URL. Already-loaded and in-flight URLs are
// no-ops that return immediately. Load failures are logged, never
// surfaced: batch preloading must not stop on one bad URL.
func (p *Preloader) PreloadImage(ctx context.Context, url string) {
	if url == "" {
		return
	}

	p.mu.Lock()
	if _, ok := p.loaded[url]; ok {
		p.mu.Unlock()
		return
	}
	if _, ok := p.inFlight[url]; ok {
		p.mu.Unlock()
		return
	}
	p.inFlight[url] = struct{}{}
	p.mu.Unlock()

	err := p.loader(ctx, url)

	p.mu.Lock()
	delete(p.inFlight, url)
	if err == nil {
		p.loaded[url] = struct{}{}
	}
	p.mu.Unlock()

	if err != nil {
		slog.Warn("image preload failed", "url", url, "error", err)
	}
}

// IsLoaded reports whether the URL completed a successful load.
func (p *Preloader) IsLoaded(url string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.loaded[url]
	return ok
}

// CacheSize returns the number of successfully loaded URLs.
func (p *Preloader) CacheSize() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.loaded)
}

// PreloadGalleries warms every media URL across a gallery listing.
func (p *Preloader) PreloadGalleries(ctx context.Context, galleries *models.Galleries) {
	if galleries == nil {
		return
	}
	var urls []string
	for _, gallery := range galleries.Data {
		for i := range gallery.Media {
			if url := gallery.Media[i].BestURL(); url != "" {
				urls = append(urls, url)
			}
		}
	}
	p.preloadBatches(ctx, urls)
}

// PreloadProductsPage warms every product media URL reachable from a
// page's category tree.
func (p *Preloader) PreloadProductsPage(ctx context.Context, page *models.Page) {
	if page == nil {
		return
	}
	var urls []string
	for _, category := range page.Data.Categories {
		for _, product := range category.Products {
			for i := range product.Media {
				if url := product.Media[i].BestURL(); url != "" {
					urls = append(urls, url)
				}
			}
		}
	}
	p.preloadBatches(ctx, urls)
}

// preloadBatches loads urls in fixed-size concurrent batches with a
// pause between batches. Coarse backpressure, not a scheduler.
func (p *Preloader) preloadBatches(ctx context.Context, urls []string) {
	for i := 0; i < len(urls); i += p.batchSize {
		end := min(i+p.batchSize, len(urls))

		g, gctx := errgroup.WithContext(ctx)
		for _, url := range urls[i:end] {
			g.Go(func() error {
				p.PreloadImage(gctx, url)
				return nil
			})
		}
		_ = g.Wait()

		if end < len(urls) {
			time.Sleep(p.batchDelay)
		}
	}
}
