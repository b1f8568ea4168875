package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// HandleCheckout opens a Stripe hosted-checkout session for the
// current cart and returns the redirect URL.
func (h *Handler) HandleCheckout(c echo.Context) error {
	cart := h.state.Cart()
	if cart.IsEmpty() {
		return echo.NewHTTPError(http.StatusBadRequest, "Cart is empty")
	}

	url, err := h.checkout.CreateSession(cart.Products.Data)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create checkout session")
	}

	return c.JSON(http.StatusOK, map[string]string{"url": url})
}
