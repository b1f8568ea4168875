// Package state holds the shared application state the storefront
// services read and write: the cached cart, the authenticated user,
// the bearer token and the current page slug. Each field has a single
// designated writer (cart: cart service, user/token: auth service,
// slug: catalog service); readers get copies.
package state

import (
	"sync"

	"github.com/penseeboheme/storefront/internal/models"
)

type State struct {
	mu sync.RWMutex

	cart        *models.Cart
	user        *models.User
	token       string
	anonymousID string
	currentSlug string
}

func New() *State {
	return &State{}
}

// Snapshot is the persisted startup state. Defined here rather than
// importing the store package so state stays a leaf dependency.
type Snapshot struct {
	Token       string
	User        *models.User
	AnonymousID string
}

// Rehydrate installs a persisted snapshot. Called once at startup.
func (s *State) Rehydrate(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = snap.Token
	s.user = cloneUser(snap.User)
	s.anonymousID = snap.AnonymousID
}

// Cart returns a copy of the cached cart, or nil when none is cached.
func (s *State) Cart() *models.Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneCart(s.cart)
}

// SetCart replaces the cached cart wholesale with the server's copy.
func (s *State) SetCart(cart *models.Cart) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart = cloneCart(cart)
}

func (s *State) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneUser(s.user)
}

func (s *State) SetUser(user *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = cloneUser(user)
}

func (s *State) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *State) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

func (s *State) AnonymousID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.anonymousID
}

func (s *State) SetAnonymousID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.anonymousID = id
}

func (s *State) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != ""
}

func (s *State) CurrentSlug() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentSlug
}

func (s *State) SetCurrentSlug(slug string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentSlug = slug
}

// ClearAuth drops token and user together. Used by logout and by the
// session-expired interceptor.
func (s *State) ClearAuth() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.user = nil
}

func cloneUser(u *models.User) *models.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

func cloneCart(cart *models.Cart) *models.Cart {
	if cart == nil {
		return nil
	}
	c := *cart
	c.Products.Data = make([]models.CartProduct, len(cart.Products.Data))
	copy(c.Products.Data, cart.Products.Data)
	return &c
}
