package service

import (
	"context"
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/penseeboheme/storefront/internal/api"
	"github.com/penseeboheme/storefront/internal/auth"
	"github.com/penseeboheme/storefront/internal/cart"
	"github.com/penseeboheme/storefront/internal/catalog"
	"github.com/penseeboheme/storefront/internal/checkout"
	"github.com/penseeboheme/storefront/internal/handlers"
	"github.com/penseeboheme/storefront/internal/images"
	"github.com/penseeboheme/storefront/internal/notify"
	"github.com/penseeboheme/storefront/internal/state"
	"github.com/penseeboheme/storefront/internal/store"
)

type Service struct {
	config  *Config
	store   *store.Store
	state   *state.State
	client  *api.Client
	auth    *auth.Service
	carts   *cart.Service
	catalog *catalog.Service
	handler *handlers.Handler
}

func New(st *store.Store, config *Config) *Service {
	ctx := context.Background()

	appState := state.New()

	// Rehydrate persisted auth/visitor state before anything issues a
	// request; the header builder reads it.
	if snap, err := st.LoadSnapshot(ctx); err != nil {
		slog.Error("failed to load state snapshot", "error", err)
	} else {
		appState.Rehydrate(state.Snapshot{
			Token:       snap.Token,
			User:        snap.User,
			AnonymousID: snap.AnonymousID,
		})
	}

	// Notices flash to the client on the next error response and are
	// mirrored to the logs.
	notices := notify.NewFlash(notify.LogNotifier{})
	client := api.NewClient(config.API.BaseURL, appState, notices)

	authService := auth.NewService(client, appState, st)
	if status := config.Auth.InvalidTokenStatus; status != 0 {
		authService.SetInvalidTokenFunc(func(code int) bool { return code == status })
	}

	cartService := cart.NewService(client, appState)
	authService.SetCartAdopter(cartService)

	client.SetSessionExpiredHook(func() {
		authService.ForceLogout(context.Background())
	})

	catalogService := catalog.NewService(client, appState)
	initiator := checkout.NewInitiator(config.Stripe.SecretKey, config.BaseURL)
	preloader := images.NewPreloader(nil)

	// Validate any rehydrated token and make sure a visitor id exists.
	if err := authService.CheckSession(ctx); err != nil {
		slog.Warn("session check failed at startup", "error", err)
	}

	return &Service{
		config:  config,
		store:   st,
		state:   appState,
		client:  client,
		auth:    authService,
		carts:   cartService,
		catalog: catalogService,
		handler: handlers.New(authService, cartService, catalogService, initiator, preloader, notices, appState),
	}
}

func (s *Service) RegisterRoutes(e *echo.Echo) {
	// Auth
	e.POST("/api/login", s.handler.HandleLogin)
	e.POST("/api/logout", s.handler.HandleLogout)
	e.POST("/api/register", s.handler.HandleRegister)
	e.GET("/api/session", s.handler.HandleSession)

	// Cart
	e.GET("/api/cart", s.handler.HandleGetCart)
	e.PUT("/api/cart/items", s.handler.HandleUpdateCart)
	e.DELETE("/api/cart/items/:product_id", s.handler.HandleRemoveFromCart)
	e.PATCH("/api/cart/empty", s.handler.HandleEmptyCart)

	// Catalog
	e.GET("/api/products", s.handler.HandleProducts)
	e.GET("/api/galleries", s.handler.HandleGalleries)
	e.GET("/api/galleries/:slug", s.handler.HandleGallery)
	e.GET("/api/pages/:slug", s.handler.HandlePage)
	e.GET("/api/instagram", s.handler.HandleInstagram)

	// Checkout
	e.POST("/api/checkout", s.handler.HandleCheckout)
}
