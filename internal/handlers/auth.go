package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/penseeboheme/storefront/internal/auth"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) HandleLogin(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	if err := h.auth.Login(c.Request().Context(), req.Email, req.Password); err != nil {
		return h.respondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"user": h.state.User(),
		"cart": h.state.Cart(),
	})
}

func (h *Handler) HandleRegister(c echo.Context) error {
	var req auth.RegisterParams
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	if err := h.auth.Register(c.Request().Context(), req); err != nil {
		return h.respondError(c, err)
	}

	return c.NoContent(http.StatusCreated)
}

// HandleLogout always succeeds: remote invalidation is best-effort
// and local clearing is unconditional.
func (h *Handler) HandleLogout(c echo.Context) error {
	h.auth.Logout(c.Request().Context())
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) HandleSession(c echo.Context) error {
	if err := h.auth.CheckSession(c.Request().Context()); err != nil {
		return h.respondError(c, err)
	}

	user := h.state.User()
	if user == nil {
		return c.JSON(http.StatusOK, map[string]any{
			"authenticated": false,
			"anonymous_id":  h.state.AnonymousID(),
		})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"authenticated": true,
		"user":          user,
	})
}
