// Package handlers is the thin HTTP surface over the storefront
// services. Handlers translate requests into service calls and API
// errors into responses; no business logic lives here.
package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/penseeboheme/storefront/internal/api"
	"github.com/penseeboheme/storefront/internal/auth"
	"github.com/penseeboheme/storefront/internal/cart"
	"github.com/penseeboheme/storefront/internal/catalog"
	"github.com/penseeboheme/storefront/internal/checkout"
	"github.com/penseeboheme/storefront/internal/images"
	"github.com/penseeboheme/storefront/internal/notify"
	"github.com/penseeboheme/storefront/internal/state"
)

// LoginRoute is where expired sessions get redirected.
const LoginRoute = "/login"

type Handler struct {
	auth      *auth.Service
	carts     *cart.Service
	catalog   *catalog.Service
	checkout  *checkout.Initiator
	preloader *images.Preloader
	notices   *notify.Flash
	state     *state.State
}

func New(
	authService *auth.Service,
	cartService *cart.Service,
	catalogService *catalog.Service,
	initiator *checkout.Initiator,
	preloader *images.Preloader,
	notices *notify.Flash,
	s *state.State,
) *Handler {
	if notices == nil {
		notices = notify.NewFlash(nil)
	}
	return &Handler{
		auth:      authService,
		carts:     cartService,
		catalog:   catalogService,
		checkout:  initiator,
		preloader: preloader,
		notices:   notices,
		state:     s,
	}
}

// respondError maps API failures onto the storefront's contract:
// expired sessions redirect to the login route, validation bodies
// pass through for field display, everything else is a gateway error.
// Notices the interceptor queued for the failure flash along with the
// response; 422 bodies stay untouched and never carry notices.
func (h *Handler) respondError(c echo.Context, err error) error {
	if api.IsUnauthorized(err) {
		return c.JSON(http.StatusUnauthorized, map[string]any{
			"error":    "session expired",
			"redirect": LoginRoute,
			"notices":  h.notices.Drain(),
		})
	}
	if api.IsValidation(err) {
		if apiErr, ok := err.(*api.Error); ok && len(apiErr.Body) > 0 {
			return c.JSONBlob(http.StatusUnprocessableEntity, apiErr.Body)
		}
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusBadGateway, map[string]any{
		"error":   "upstream request failed",
		"notices": h.notices.Drain(),
	})
}
