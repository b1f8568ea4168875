package images

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/penseeboheme/storefront/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// trackingLoader records load order and batch boundaries.
type trackingLoader struct {
	mu     sync.Mutex
	starts map[string]time.Time
	calls  []string
	fail   map[string]bool
	delay  time.Duration
}

func newTrackingLoader() *trackingLoader {
	return &trackingLoader{
		starts: make(map[string]time.Time),
		fail:   make(map[string]bool),
	}
}

func (l *trackingLoader) load(_ context.Context, url string) error {
	l.mu.Lock()
	l.starts[url] = time.Now()
	l.calls = append(l.calls, url)
	l.mu.Unlock()

	if l.delay > 0 {
		time.Sleep(l.delay)
	}
	if l.fail[url] {
		return errors.New("load failed")
	}
	return nil
}

func (l *trackingLoader) callCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.calls)
}

func TestPreloadImageMarksLoaded(t *testing.T) {
	loader := newTrackingLoader()
	p := NewPreloader(loader.load)

	p.PreloadImage(context.Background(), "https://img/a.jpg")

	assert.True(t, p.IsLoaded("https://img/a.jpg"))
	assert.Equal(t, 1, p.CacheSize())
}

func TestPreloadImageAlreadyLoadedIsNoop(t *testing.T) {
	loader := newTrackingLoader()
	p := NewPreloader(loader.load)

	p.PreloadImage(context.Background(), "https://img/a.jpg")
	p.PreloadImage(context.Background(), "https://img/a.jpg")

	assert.Equal(t, 1, loader.callCount(), "second preload must not issue a new load")
}

func TestPreloadImageFailureNotCached(t *testing.T) {
	loader := newTrackingLoader()
	loader.fail["https://img/bad.jpg"] = true
	p := NewPreloader(loader.load)

	p.PreloadImage(context.Background(), "https://img/bad.jpg")

	assert.False(t, p.IsLoaded("https://img/bad.jpg"))
	assert.Equal(t, 0, p.CacheSize())

	// A failed URL may be retried later; it must not stay in-flight.
	p.PreloadImage(context.Background(), "https://img/bad.jpg")
	assert.Equal(t, 2, loader.callCount())
}

func TestPreloadImageEmptyURL(t *testing.T) {
	loader := newTrackingLoader()
	p := NewPreloader(loader.load)

	p.PreloadImage(context.Background(), "")
	assert.Equal(t, 0, loader.callCount())
}

func galleriesWithURLs(urls ...string) *models.Galleries {
	media := make([]models.Media, len(urls))
	for i, u := range urls {
		media[i] = models.Media{ID: int64(i + 1), URL: u}
	}
	return &models.Galleries{Data: []models.Gallery{{ID: 1, Media: media}}}
}

func TestPreloadGalleriesBatches(t *testing.T) {
	loader := newTrackingLoader()
	loader.delay = 10 * time.Millisecond

	p := NewPreloader(loader.load)

	urls := []string{
		"https://img/a.jpg",
		"https://img/b.jpg",
		"https://img/c.jpg",
		"https://img/d.jpg",
		"https://img/e.jpg",
	}
	p.PreloadGalleries(context.Background(), galleriesWithURLs(urls...))

	require.Equal(t, 5, loader.callCount())
	for _, u := range urls {
		assert.True(t, p.IsLoaded(u), u)
	}

	// First four start together; e only starts after the whole first
	// batch finished plus the inter-batch pause.
	loader.mu.Lock()
	defer loader.mu.Unlock()

	var firstBatchLatest time.Time
	for _, u := range urls[:4] {
		if loader.starts[u].After(firstBatchLatest) {
			firstBatchLatest = loader.starts[u]
		}
	}
	gap := loader.starts["https://img/e.jpg"].Sub(firstBatchLatest)
	assert.GreaterOrEqual(t, gap, preloadBatchDelay, "second batch must wait for the inter-batch pause")
}

func TestPreloadProductsPageFlattensTree(t *testing.T) {
	loader := newTrackingLoader()
	p := NewPreloader(loader.load)

	page := &models.Page{Data: models.PageData{
		Slug: "boutique",
		Categories: []models.Category{
			{
				Name: "Bouquets",
				Products: []models.Product{
					{ID: 1, Media: []models.Media{
						{ID: 1, URLs: &models.MediaURLs{Thumb: "t1", Medium: "m1", Large: "l1"}},
					}},
					{ID: 2, Media: []models.Media{{ID: 2, URL: "legacy2"}}},
				},
			},
			{
				Name:     "Plantes",
				Products: []models.Product{{ID: 3, Media: []models.Media{{ID: 3, URL: "u3"}}}},
			},
		},
	}}

	p.PreloadProductsPage(context.Background(), page)

	assert.Equal(t, 3, loader.callCount())
	assert.True(t, p.IsLoaded("l1"), "variant media preloads the large URL")
	assert.True(t, p.IsLoaded("legacy2"))
	assert.True(t, p.IsLoaded("u3"))
}

func TestPreloadGalleriesNil(t *testing.T) {
	loader := newTrackingLoader()
	p := NewPreloader(loader.load)

	p.PreloadGalleries(context.Background(), nil)
	p.PreloadProductsPage(context.Background(), nil)
	assert.Equal(t, 0, loader.callCount())
}
