// Package cart keeps the single cached cart in sync with the backend.
// The client never merges: every successful mutation replaces the
// local cart with the server's copy, and every failed one leaves it
// untouched.
package cart

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/penseeboheme/storefront/internal/api"
	"github.com/penseeboheme/storefront/internal/models"
	"github.com/penseeboheme/storefront/internal/state"
)

type Service struct {
	client *api.Client
	state  *state.State

	// mu serializes mutating calls. Two rapid add-to-cart clicks would
	// otherwise race on the quantity read and on which response lands
	// last; holding mu across the round trip makes the last request
	// the last write.
	mu sync.Mutex
}

func NewService(client *api.Client, s *state.State) *Service {
	return &Service{client: client, state: s}
}

// cartEnvelope is the GET /me/cart and transfer response shape.
type cartEnvelope struct {
	Cart models.Cart `json:"cart"`
}

// dataEnvelope is the mutation response shape.
type dataEnvelope struct {
	Data models.Cart `json:"data"`
}

// Fetch loads the cart scoped to the current identity (token or
// anonymous id) and caches it.
func (s *Service) Fetch(ctx context.Context) (*models.Cart, error) {
	cart, err := s.fetchRemote(ctx)
	if err != nil {
		slog.Error("failed to fetch cart", "error", err)
		return nil, err
	}
	s.state.SetCart(cart)
	return s.state.Cart(), nil
}

// fetchRemote reads the server cart without touching local state.
func (s *Service) fetchRemote(ctx context.Context) (*models.Cart, error) {
	var resp cartEnvelope
	if err := s.client.Get(ctx, "/me/cart", &resp); err != nil {
		return nil, err
	}
	return &resp.Cart, nil
}

// Update adds delta to the product's quantity. A product not yet in
// the cart gets quantity delta outright. The computed quantity is a
// prediction only: the PUT sends the absolute value and the server's
// returned cart replaces the local one wholesale.
func (s *Service) Update(ctx context.Context, product models.Product, delta int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, err := s.currentCart(ctx)
	if err != nil {
		return err
	}

	quantity := delta
	if line := cart.Find(product.ID); line != nil {
		quantity = line.Quantity + delta
	}

	var resp dataEnvelope
	path := fmt.Sprintf("/carts/%d/products/%d", cart.ID, product.ID)
	if err := s.client.Put(ctx, path, map[string]int64{"quantity": quantity}, &resp); err != nil {
		slog.Error("failed to update cart", "error", err, "product_id", product.ID, "quantity", quantity)
		return err
	}

	s.state.SetCart(&resp.Data)
	return nil
}

// Remove deletes the product's line item.
func (s *Service) Remove(ctx context.Context, product models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, err := s.currentCart(ctx)
	if err != nil {
		return err
	}

	var resp dataEnvelope
	path := fmt.Sprintf("/carts/%d/products/%d", cart.ID, product.ID)
	if err := s.client.Delete(ctx, path, &resp); err != nil {
		slog.Error("failed to remove product from cart", "error", err, "product_id", product.ID)
		return err
	}

	s.state.SetCart(&resp.Data)
	return nil
}

// Empty clears every line item.
func (s *Service) Empty(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, err := s.currentCart(ctx)
	if err != nil {
		return err
	}

	var resp dataEnvelope
	if err := s.client.Patch(ctx, fmt.Sprintf("/carts/%d/empty", cart.ID), nil, &resp); err != nil {
		slog.Error("failed to empty cart", "error", err, "cart_id", cart.ID)
		return err
	}

	s.state.SetCart(&resp.Data)
	return nil
}

// AdoptOnLogin runs after authentication and decides which cart the
// session keeps. The authenticated identity's saved cart is fetched
// first; if it has items it wins and the anonymous cart is discarded.
// Only when it is empty or absent does the anonymous cart get
// transferred to the authenticated identity. Fetching before deciding
// is what keeps a returning customer's saved cart from being wiped by
// an empty anonymous one.
func (s *Service) AdoptOnLogin(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	anonymous := s.state.Cart()

	fetched, err := s.fetchRemote(ctx)
	if err != nil {
		slog.Error("failed to fetch cart after login", "error", err)
		return err
	}

	if !fetched.IsEmpty() {
		s.state.SetCart(fetched)
		return nil
	}

	if anonymous.IsEmpty() {
		// Nothing on either side worth keeping.
		if fetched != nil && fetched.ID != 0 {
			s.state.SetCart(fetched)
		}
		return nil
	}

	var resp cartEnvelope
	if err := s.client.Patch(ctx, fmt.Sprintf("/carts/%d/transfer", anonymous.ID), nil, &resp); err != nil {
		slog.Error("failed to transfer anonymous cart", "error", err, "cart_id", anonymous.ID)
		return err
	}

	s.state.SetCart(&resp.Cart)
	return nil
}

// currentCart returns the cached cart, fetching it when nothing is
// cached yet.
func (s *Service) currentCart(ctx context.Context) (*models.Cart, error) {
	if cart := s.state.Cart(); cart != nil {
		return cart, nil
	}

	cart, err := s.fetchRemote(ctx)
	if err != nil {
		slog.Error("failed to fetch cart", "error", err)
		return nil, err
	}
	s.state.SetCart(cart)
	return cart, nil
}
