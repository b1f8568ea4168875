// Smoke test for the cart flow against a live backend: fetches the
// cart for a fresh anonymous identity, adds a product, prints the
// resulting totals and empties the cart again.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/penseeboheme/storefront/internal/api"
	"github.com/penseeboheme/storefront/internal/cart"
	"github.com/penseeboheme/storefront/internal/catalog"
	"github.com/penseeboheme/storefront/internal/models"
	"github.com/penseeboheme/storefront/internal/state"

	"github.com/google/uuid"
)

func main() {
	baseURL := os.Getenv("API_BASE_URL")
	if baseURL == "" {
		log.Fatal("API_BASE_URL not set")
	}

	ctx := context.Background()

	s := state.New()
	s.SetAnonymousID(uuid.NewString())
	fmt.Printf("anonymous id: %s\n", s.AnonymousID())

	client := api.NewClient(baseURL, s, nil)
	carts := cart.NewService(client, s)
	products := catalog.NewService(client, s)

	list, err := products.Products(ctx)
	if err != nil {
		log.Fatal("failed to list products:", err)
	}
	if len(list) == 0 {
		log.Fatal("backend has no products")
	}

	var target *models.Product
	for i := range list {
		if list[i].IsActive && list[i].HasPrice {
			target = &list[i]
			break
		}
	}
	if target == nil {
		log.Fatal("no purchasable product found")
	}
	fmt.Printf("adding product %d (%s)\n", target.ID, target.Name)

	if _, err := carts.Fetch(ctx); err != nil {
		log.Fatal("failed to fetch cart:", err)
	}

	if err := carts.Update(ctx, *target, 2); err != nil {
		log.Fatal("failed to add to cart:", err)
	}

	current := s.Cart()
	fmt.Println("===============================")
	fmt.Printf("cart %d: %d line(s), total %.2f\n", current.ID, len(current.Products.Data), current.Products.Total)
	for _, line := range current.Products.Data {
		fmt.Printf("  - %s x%d @ %.2f\n", line.Name, line.Quantity, line.Price)
	}

	if err := carts.Empty(ctx); err != nil {
		log.Fatal("failed to empty cart:", err)
	}
	fmt.Println("cart emptied, done")
}
