package api

import (
	"net/http"
	"strings"

	"github.com/penseeboheme/storefront/internal/state"
)

// Headers builds the identity headers for a backend request: a bearer
// token when one is held, otherwise the anonymous visitor id when one
// has been generated. Pure read of the shared state.
func Headers(s *state.State) http.Header {
	h := http.Header{}
	h.Set("Accept", "application/json")

	if token := s.Token(); token != "" {
		h.Set("Authorization", bearer(token))
		return h
	}

	if anonymousID := s.AnonymousID(); anonymousID != "" {
		h.Set("X-Anonymous-Id", anonymousID)
	}

	return h
}

func bearer(token string) string {
	if strings.HasPrefix(token, "Bearer ") {
		return token
	}
	return "Bearer " + token
}
