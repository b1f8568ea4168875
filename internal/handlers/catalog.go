package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
)

func (h *Handler) HandleProducts(c echo.Context) error {
	products, err := h.catalog.Products(c.Request().Context())
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"data": products})
}

func (h *Handler) HandleGalleries(c echo.Context) error {
	galleries, err := h.catalog.Galleries(c.Request().Context())
	if err != nil {
		return h.respondError(c, err)
	}

	// Warm the gallery images in the background; the response does not
	// wait for preloading.
	go h.preloader.PreloadGalleries(context.WithoutCancel(c.Request().Context()), galleries)

	return c.JSON(http.StatusOK, galleries)
}

func (h *Handler) HandleGallery(c echo.Context) error {
	slug := h.catalog.SetSlugFromPath(c.Request().URL.Path)

	gallery, err := h.catalog.GalleryBySlug(c.Request().Context(), slug)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, gallery)
}

func (h *Handler) HandlePage(c echo.Context) error {
	slug := h.catalog.SetSlugFromPath(c.Request().URL.Path)

	page, err := h.catalog.PageBySlug(c.Request().Context(), slug)
	if err != nil {
		return h.respondError(c, err)
	}

	go h.preloader.PreloadProductsPage(context.WithoutCancel(c.Request().Context()), page)

	return c.JSON(http.StatusOK, page)
}

func (h *Handler) HandleInstagram(c echo.Context) error {
	medias, err := h.catalog.InstagramMedias(c.Request().Context())
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, medias)
}
