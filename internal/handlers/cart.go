package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/penseeboheme/storefront/internal/models"
)

func (h *Handler) HandleGetCart(c echo.Context) error {
	cart, err := h.carts.Fetch(c.Request().Context())
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"cart": cart})
}

type updateCartRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

func (h *Handler) HandleUpdateCart(c echo.Context) error {
	var req updateCartRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if req.ProductID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "product_id is required")
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	err := h.carts.Update(c.Request().Context(), models.Product{ID: req.ProductID}, req.Quantity)
	if err != nil {
		return h.respondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{"cart": h.state.Cart()})
}

func (h *Handler) HandleRemoveFromCart(c echo.Context) error {
	var productID int64
	if err := echo.PathParamsBinder(c).Int64("product_id", &productID).BindError(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid product id")
	}

	if err := h.carts.Remove(c.Request().Context(), models.Product{ID: productID}); err != nil {
		return h.respondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{"cart": h.state.Cart()})
}

func (h *Handler) HandleEmptyCart(c echo.Context) error {
	if err := h.carts.Empty(c.Request().Context()); err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"cart": h.state.Cart()})
}
