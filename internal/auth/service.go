// Package auth manages the storefront session: login, logout,
// registration, startup session checks and the anonymous visitor
// identity used before authentication.
package auth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/penseeboheme/storefront/internal/api"
	"github.com/penseeboheme/storefront/internal/models"
	"github.com/penseeboheme/storefront/internal/state"
	"github.com/penseeboheme/storefront/internal/store"
)

// CartAdopter decides which cart survives a login. Implemented by the
// cart service; declared here so auth does not import it.
type CartAdopter interface {
	AdoptOnLogin(ctx context.Context) error
}

type Service struct {
	client       *api.Client
	state        *state.State
	store        *store.Store
	carts        CartAdopter
	invalidToken api.InvalidTokenFunc
}

func NewService(client *api.Client, s *state.State, st *store.Store) *Service {
	return &Service{
		client:       client,
		state:        s,
		store:        st,
		invalidToken: api.DefaultInvalidToken,
	}
}

// SetCartAdopter wires the cart service in after construction.
func (s *Service) SetCartAdopter(carts CartAdopter) {
	s.carts = carts
}

// SetInvalidTokenFunc overrides the invalid-token predicate. The two
// backend surfaces report an expired token with different status
// codes, so deployments can pin the one theirs uses.
func (s *Service) SetInvalidTokenFunc(fn api.InvalidTokenFunc) {
	if fn != nil {
		s.invalidToken = fn
	}
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterParams struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// Login authenticates against the backend. On success the token and
// user are persisted and mirrored into shared state, then the cart
// adopter runs (the saved authenticated cart wins over the anonymous
// one). On failure nothing local changes and the error is returned
// untouched for field-level display.
func (s *Service) Login(ctx context.Context, email, password string) error {
	var resp models.LoginResponse
	err := s.client.Post(ctx, "/auth/login", Credentials{Email: email, Password: password}, &resp,
		api.WithoutIntercept(), api.WithoutIdentity())
	if err != nil {
		return err
	}

	s.state.SetToken(resp.Token)
	if err := s.store.Set(ctx, store.KeyAuthToken, resp.Token); err != nil {
		slog.Error("failed to persist auth token", "error", err)
	}

	if resp.User != nil {
		s.setUser(ctx, resp.User)
	} else if err := s.fetchUser(ctx); err != nil {
		slog.Error("failed to fetch user after login", "error", err)
	}

	if s.carts != nil {
		if err := s.carts.AdoptOnLogin(ctx); err != nil {
			slog.Error("failed to adopt cart after login", "error", err)
		}
	}

	return nil
}

// Register creates an account. Validation failures (422) pass through
// untouched.
func (s *Service) Register(ctx context.Context, params RegisterParams) error {
	return s.client.Post(ctx, "/auth/register", params, nil,
		api.WithoutIntercept(), api.WithoutIdentity())
}

// Logout invalidates the session remotely on a best-effort basis; a
// network failure is logged and swallowed. Local state is always
// cleared.
func (s *Service) Logout(ctx context.Context) {
	if s.state.IsAuthenticated() {
		if err := s.client.Post(ctx, "/auth/logout", nil, nil, api.WithoutIntercept()); err != nil {
			slog.Error("logout API error", "error", err)
		}
	}
	s.clearLocal(ctx)
}

// ForceLogout clears local auth without a remote call. Installed as
// the API client's session-expired hook.
func (s *Service) ForceLogout(ctx context.Context) {
	s.clearLocal(ctx)
}

// CheckSession validates a rehydrated token against the backend. An
// invalid-token response clears local auth; any other failure leaves
// it alone. An anonymous visitor id is guaranteed to exist afterwards
// either way.
func (s *Service) CheckSession(ctx context.Context) error {
	defer func() {
		if err := s.EnsureAnonymousID(ctx); err != nil {
			slog.Error("failed to ensure anonymous id", "error", err)
		}
	}()

	if !s.state.IsAuthenticated() {
		return nil
	}

	if err := s.fetchUser(ctx); err != nil {
		if s.invalidToken(api.StatusOf(err)) {
			slog.Info("stored token no longer valid, clearing session")
			s.clearLocal(ctx)
			return nil
		}
		return fmt.Errorf("check session: %w", err)
	}

	return nil
}

// EnsureAnonymousID lazily generates and persists the visitor id used
// to scope the cart before login.
func (s *Service) EnsureAnonymousID(ctx context.Context) error {
	if s.state.AnonymousID() != "" {
		return nil
	}

	existing, err := s.store.Get(ctx, store.KeyAnonymousID)
	if err != nil {
		return fmt.Errorf("read anonymous id: %w", err)
	}
	if existing != "" {
		s.state.SetAnonymousID(existing)
		return nil
	}

	id := uuid.NewString()
	if err := s.store.Set(ctx, store.KeyAnonymousID, id); err != nil {
		return fmt.Errorf("persist anonymous id: %w", err)
	}
	s.state.SetAnonymousID(id)
	slog.Debug("generated anonymous visitor id", "anonymous_id", id)
	return nil
}

func (s *Service) fetchUser(ctx context.Context) error {
	var resp struct {
		User models.User `json:"user"`
	}
	if err := s.client.Get(ctx, "/me/user", &resp, api.WithoutIntercept()); err != nil {
		return err
	}
	s.setUser(ctx, &resp.User)
	return nil
}

func (s *Service) setUser(ctx context.Context, user *models.User) {
	s.state.SetUser(user)
	if err := s.store.SaveUser(ctx, user); err != nil {
		slog.Error("failed to persist user record", "error", err)
	}
}

func (s *Service) clearLocal(ctx context.Context) {
	s.state.ClearAuth()
	if err := s.store.Delete(ctx, store.KeyAuthToken); err != nil {
		slog.Error("failed to clear persisted token", "error", err)
	}
	if err := s.store.Delete(ctx, store.KeyAuthUser); err != nil {
		slog.Error("failed to clear persisted user", "error", err)
	}
}
