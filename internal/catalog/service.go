// Package catalog holds the read-only storefront queries: products,
// galleries, content pages and the Instagram feed. Nothing here
// mutates backend state.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/penseeboheme/storefront/internal/api"
	"github.com/penseeboheme/storefront/internal/models"
	"github.com/penseeboheme/storefront/internal/state"
)

type Service struct {
	client *api.Client
	state  *state.State
}

func NewService(client *api.Client, s *state.State) *Service {
	return &Service{client: client, state: s}
}

// SetSlugFromPath derives the current page slug from a route path:
// trailing slash stripped, last segment kept. Writes the shared slug
// container; the page reader and navigation both consume it.
func (s *Service) SetSlugFromPath(path string) string {
	path = strings.TrimSuffix(path, "/")
	parts := strings.Split(path, "/")
	slug := parts[len(parts)-1]
	s.state.SetCurrentSlug(slug)
	return slug
}

// CurrentSlugValid reports whether a non-empty slug is set.
func (s *Service) CurrentSlugValid() bool {
	return s.state.CurrentSlug() != ""
}

func (s *Service) Products(ctx context.Context) ([]models.Product, error) {
	var resp struct {
		Data []models.Product `json:"data"`
	}
	if err := s.client.Get(ctx, "/products", &resp); err != nil {
		slog.Error("failed to fetch products", "error", err)
		return nil, err
	}
	return resp.Data, nil
}

func (s *Service) Galleries(ctx context.Context) (*models.Galleries, error) {
	var resp models.Galleries
	if err := s.client.Get(ctx, "/galleries", &resp); err != nil {
		slog.Error("failed to fetch galleries", "error", err)
		return nil, err
	}
	return &resp, nil
}

func (s *Service) GalleryBySlug(ctx context.Context, slug string) (*models.Gallery, error) {
	var resp models.Gallery
	if err := s.client.Get(ctx, "/galleries/"+slug, &resp); err != nil {
		slog.Error("failed to fetch gallery", "error", err, "slug", slug)
		return nil, err
	}
	return &resp, nil
}

// PageBySlug fetches a content page with its category/product tree.
// An empty slug falls back to the shared slug state.
func (s *Service) PageBySlug(ctx context.Context, slug string) (*models.Page, error) {
	if slug == "" {
		slug = s.state.CurrentSlug()
	}
	if slug == "" {
		return nil, fmt.Errorf("no page slug available")
	}

	var resp models.Page
	if err := s.client.Get(ctx, "/pages/"+slug, &resp); err != nil {
		slog.Error("failed to fetch page", "error", err, "slug", slug)
		return nil, err
	}
	return &resp, nil
}

func (s *Service) InstagramMedias(ctx context.Context) ([]models.InstagramMedia, error) {
	var medias []models.InstagramMedia
	if err := s.client.Get(ctx, "/instagram", &medias); err != nil {
		slog.Error("failed to fetch instagram medias", "error", err)
		return nil, err
	}
	return medias, nil
}
