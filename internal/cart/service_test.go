package cart

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/penseeboheme/storefront/internal/api"
	"github.com/penseeboheme/storefront/internal/models"
	"github.com/penseeboheme/storefront/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Method string
	Path   string
	Body   map[string]int64
}

// backend is a scripted stand-in for the cart API.
type backend struct {
	mu       sync.Mutex
	requests []recordedRequest

	cartResponse     *models.Cart // GET /me/cart
	mutationResponse *models.Cart // PUT/DELETE/PATCH under /carts
	transferResponse *models.Cart // PATCH /carts/{id}/transfer
	failMutations    bool
}

func (b *backend) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		rec := recordedRequest{Method: r.Method, Path: r.URL.Path}
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&rec.Body)
		}
		b.requests = append(b.requests, rec)
		b.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")

		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/me/cart":
			_ = json.NewEncoder(w).Encode(map[string]any{"cart": b.cartResponse})
		case r.Method == http.MethodPatch && pathIsTransfer(r.URL.Path):
			_ = json.NewEncoder(w).Encode(map[string]any{"cart": b.transferResponse})
		default:
			if b.failMutations {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"message":"server error"}`))
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"data": b.mutationResponse})
		}
	})
}

func pathIsTransfer(path string) bool {
	return len(path) > len("/transfer") && path[len(path)-len("/transfer"):] == "/transfer"
}

func (b *backend) recorded() []recordedRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]recordedRequest, len(b.requests))
	copy(out, b.requests)
	return out
}

func newTestService(t *testing.T, b *backend, initial *models.Cart) (*Service, *state.State, func()) {
	t.Helper()
	server := httptest.NewServer(b.handler())

	s := state.New()
	s.SetAnonymousID("anon-test")
	if initial != nil {
		s.SetCart(initial)
	}

	client := api.NewClient(server.URL, s, nil)
	return NewService(client, s), s, server.Close
}

func sampleCart(id int64, lines ...models.CartProduct) *models.Cart {
	total := 0.0
	for _, l := range lines {
		total += l.Price * float64(l.Quantity)
	}
	return &models.Cart{
		ID:       id,
		Products: models.CartProducts{Data: lines, Total: total},
	}
}

func TestUpdateNewProductSendsDelta(t *testing.T) {
	b := &backend{mutationResponse: sampleCart(1, models.CartProduct{ID: 42, Quantity: 3})}
	svc, _, done := newTestService(t, b, sampleCart(1))
	defer done()

	err := svc.Update(context.Background(), models.Product{ID: 42, Name: "Rose"}, 3)
	require.NoError(t, err)

	reqs := b.recorded()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodPut, reqs[0].Method)
	assert.Equal(t, "/carts/1/products/42", reqs[0].Path)
	assert.Equal(t, int64(3), reqs[0].Body["quantity"])
}

func TestUpdateExistingProductSendsSum(t *testing.T) {
	initial := sampleCart(1, models.CartProduct{ID: 42, Name: "Rose", Quantity: 2})
	b := &backend{mutationResponse: sampleCart(1, models.CartProduct{ID: 42, Quantity: 5})}
	svc, _, done := newTestService(t, b, initial)
	defer done()

	err := svc.Update(context.Background(), models.Product{ID: 42}, 3)
	require.NoError(t, err)

	reqs := b.recorded()
	require.Len(t, reqs, 1)
	assert.Equal(t, int64(5), reqs[0].Body["quantity"], "quantity must be existing q + delta")
}

func TestUpdateReplacesWholeLocalCart(t *testing.T) {
	serverCart := sampleCart(1,
		models.CartProduct{ID: 42, Name: "Rose", Price: 4.5, Quantity: 1},
		models.CartProduct{ID: 7, Name: "Pivoine", Price: 6, Quantity: 2},
	)
	b := &backend{mutationResponse: serverCart}
	svc, s, done := newTestService(t, b, sampleCart(1))
	defer done()

	require.NoError(t, svc.Update(context.Background(), models.Product{ID: 42}, 1))

	got := s.Cart()
	require.NotNil(t, got)
	assert.Equal(t, *serverCart, *got, "local cart must equal the server's returned cart exactly")
}

func TestConcurrentUpdatesSerialize(t *testing.T) {
	var mu sync.Mutex
	var quantities []int64

	// Echoes the requested quantity back as the cart and holds the
	// first mutation open, giving the second call every chance to race
	// on the stale cached quantity if mutations did not serialize.
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]int64
		_ = json.NewDecoder(r.Body).Decode(&body)
		q := body["quantity"]

		mu.Lock()
		quantities = append(quantities, q)
		first := len(quantities) == 1
		mu.Unlock()

		if first {
			time.Sleep(50 * time.Millisecond)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"data": sampleCart(1,
			models.CartProduct{ID: 42, Name: "Rose", Quantity: q})})
	})

	server := httptest.NewServer(handler)
	defer server.Close()

	s := state.New()
	s.SetAnonymousID("anon-test")
	s.SetCart(sampleCart(1))
	svc := NewService(api.NewClient(server.URL, s, nil), s)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, svc.Update(context.Background(), models.Product{ID: 42}, 1))
		}()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, quantities, 2)
	assert.Equal(t, int64(1), quantities[0], "first mutation starts from the empty cart")
	assert.Equal(t, int64(2), quantities[1], "second mutation must see the first response applied")

	require.NotNil(t, s.Cart().Find(42))
	assert.Equal(t, int64(2), s.Cart().Find(42).Quantity)
}

func TestFailedMutationLeavesCartUntouched(t *testing.T) {
	initial := sampleCart(1, models.CartProduct{ID: 42, Name: "Rose", Price: 4.5, Quantity: 2})
	b := &backend{failMutations: true}
	svc, s, done := newTestService(t, b, initial)
	defer done()

	before := s.Cart()

	err := svc.Update(context.Background(), models.Product{ID: 42}, 1)
	require.Error(t, err)
	assert.Equal(t, before, s.Cart())

	err = svc.Remove(context.Background(), models.Product{ID: 42})
	require.Error(t, err)
	assert.Equal(t, before, s.Cart())

	err = svc.Empty(context.Background())
	require.Error(t, err)
	assert.Equal(t, before, s.Cart())
}

func TestRemoveIssuesDelete(t *testing.T) {
	b := &backend{mutationResponse: sampleCart(1)}
	svc, s, done := newTestService(t, b, sampleCart(1, models.CartProduct{ID: 42, Quantity: 1}))
	defer done()

	require.NoError(t, svc.Remove(context.Background(), models.Product{ID: 42}))

	reqs := b.recorded()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodDelete, reqs[0].Method)
	assert.Equal(t, "/carts/1/products/42", reqs[0].Path)
	assert.Empty(t, s.Cart().Products.Data)
}

func TestEmptyIssuesPatch(t *testing.T) {
	b := &backend{mutationResponse: sampleCart(1)}
	svc, _, done := newTestService(t, b, sampleCart(1, models.CartProduct{ID: 42, Quantity: 4}))
	defer done()

	require.NoError(t, svc.Empty(context.Background()))

	reqs := b.recorded()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodPatch, reqs[0].Method)
	assert.Equal(t, "/carts/1/empty", reqs[0].Path)
}

func TestFetchCachesServerCart(t *testing.T) {
	serverCart := sampleCart(9, models.CartProduct{ID: 1, Name: "Eucalyptus", Quantity: 1})
	b := &backend{cartResponse: serverCart}
	svc, s, done := newTestService(t, b, nil)
	defer done()

	got, err := svc.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(9), got.ID)
	assert.Equal(t, *serverCart, *s.Cart())
}

func TestUpdateFetchesCartWhenNoneCached(t *testing.T) {
	b := &backend{
		cartResponse:     sampleCart(5),
		mutationResponse: sampleCart(5, models.CartProduct{ID: 42, Quantity: 1}),
	}
	svc, _, done := newTestService(t, b, nil)
	defer done()

	require.NoError(t, svc.Update(context.Background(), models.Product{ID: 42}, 1))

	reqs := b.recorded()
	require.Len(t, reqs, 2)
	assert.Equal(t, "/me/cart", reqs[0].Path)
	assert.Equal(t, "/carts/5/products/42", reqs[1].Path)
}

func TestAdoptOnLoginSavedCartWins(t *testing.T) {
	anonymous := sampleCart(3, models.CartProduct{ID: 42, Name: "Rose", Quantity: 2})
	saved := sampleCart(8, models.CartProduct{ID: 7, Name: "Pivoine", Quantity: 1})

	b := &backend{cartResponse: saved}
	svc, s, done := newTestService(t, b, anonymous)
	defer done()

	require.NoError(t, svc.AdoptOnLogin(context.Background()))

	// The saved authenticated cart replaces the anonymous one.
	assert.Equal(t, *saved, *s.Cart())

	for _, req := range b.recorded() {
		assert.False(t, pathIsTransfer(req.Path), "no transfer when the saved cart has items")
	}
}

func TestAdoptOnLoginTransfersAnonymousCart(t *testing.T) {
	anonymous := sampleCart(3, models.CartProduct{ID: 42, Name: "Rose", Quantity: 2})
	transferred := sampleCart(3, models.CartProduct{ID: 42, Name: "Rose", Quantity: 2})
	transferred.UserID = 11

	b := &backend{
		cartResponse:     sampleCart(8), // saved cart exists but is empty
		transferResponse: transferred,
	}
	svc, s, done := newTestService(t, b, anonymous)
	defer done()

	require.NoError(t, svc.AdoptOnLogin(context.Background()))

	reqs := b.recorded()
	require.Len(t, reqs, 2)
	assert.Equal(t, "/me/cart", reqs[0].Path)
	assert.Equal(t, "/carts/3/transfer", reqs[1].Path)
	assert.Equal(t, *transferred, *s.Cart())
}

func TestAdoptOnLoginNothingToTransfer(t *testing.T) {
	b := &backend{cartResponse: sampleCart(8)}
	svc, s, done := newTestService(t, b, nil)
	defer done()

	require.NoError(t, svc.AdoptOnLogin(context.Background()))

	for _, req := range b.recorded() {
		assert.False(t, pathIsTransfer(req.Path))
	}
	// The empty saved cart is still adopted as the active cart.
	require.NotNil(t, s.Cart())
	assert.Equal(t, int64(8), s.Cart().ID)
}
