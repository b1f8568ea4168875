package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/penseeboheme/storefront/internal/api"
	"github.com/penseeboheme/storefront/internal/models"
	"github.com/penseeboheme/storefront/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCatalog(handler http.HandlerFunc) (*Service, *state.State, func()) {
	server := httptest.NewServer(handler)
	s := state.New()
	client := api.NewClient(server.URL, s, nil)
	return NewService(client, s), s, server.Close
}

func TestSetSlugFromPath(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{name: "plain path", path: "/pages/bouquets", want: "bouquets"},
		{name: "trailing slash", path: "/pages/bouquets/", want: "bouquets"},
		{name: "root", path: "/", want: ""},
		{name: "nested", path: "/boutique/fleurs-sechees", want: "fleurs-sechees"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, s, done := newTestCatalog(func(w http.ResponseWriter, r *http.Request) {})
			defer done()

			got := svc.SetSlugFromPath(tt.path)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want, s.CurrentSlug())
		})
	}
}

func TestProducts(t *testing.T) {
	svc, _, done := newTestCatalog(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []models.Product{{ID: 1, Name: "Bouquet champêtre", Price: 45}},
		})
	})
	defer done()

	products, err := svc.Products(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Bouquet champêtre", products[0].Name)
}

func TestGalleryBySlug(t *testing.T) {
	svc, _, done := newTestCatalog(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/galleries/mariages", r.URL.Path)
		_ = json.NewEncoder(w).Encode(models.Gallery{ID: 2, Slug: "mariages"})
	})
	defer done()

	gallery, err := svc.GalleryBySlug(context.Background(), "mariages")
	require.NoError(t, err)
	assert.Equal(t, int64(2), gallery.ID)
}

func TestPageBySlugUsesCurrentSlug(t *testing.T) {
	svc, s, done := newTestCatalog(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pages/boutique", r.URL.Path)
		_ = json.NewEncoder(w).Encode(models.Page{Data: models.PageData{ID: 4, Slug: "boutique"}})
	})
	defer done()

	s.SetCurrentSlug("boutique")

	page, err := svc.PageBySlug(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "boutique", page.Data.Slug)
}

func TestPageBySlugNoSlug(t *testing.T) {
	svc, _, done := newTestCatalog(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})
	defer done()

	_, err := svc.PageBySlug(context.Background(), "")
	assert.Error(t, err)
}

func TestInstagramMedias(t *testing.T) {
	svc, _, done := newTestCatalog(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/instagram", r.URL.Path)
		_ = json.NewEncoder(w).Encode([]models.InstagramMedia{
			{ID: "ig-1", MediaURL: "https://cdn.example.com/a.jpg"},
		})
	})
	defer done()

	medias, err := svc.InstagramMedias(context.Background())
	require.NoError(t, err)
	require.Len(t, medias, 1)
	assert.Equal(t, "ig-1", medias[0].ID)
}
