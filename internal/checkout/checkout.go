// Package checkout creates Stripe hosted-checkout sessions from the
// local cart. No order state is kept here; Stripe is the system of
// record for the transaction.
package checkout

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/penseeboheme/storefront/internal/models"
	"github.com/stripe/stripe-go/v80"
	checkoutsession "github.com/stripe/stripe-go/v80/checkout/session"
)

const (
	currency = "eur"
	// French VAT tax code for cut flowers and floral arrangements.
	taxCode = "txcd_20030000"

	successPath = "/checkout/success"
	cancelPath  = "/checkout/failed"
)

// shippingCountries the florist delivers to.
var shippingCountries = []string{"FR", "BE", "CH"}

type Initiator struct {
	secretKey string
	baseURL   string
}

func NewInitiator(secretKey, baseURL string) *Initiator {
	return &Initiator{
		secretKey: secretKey,
		baseURL:   strings.TrimSuffix(baseURL, "/"),
	}
}

// CreateSession opens a hosted checkout for the given cart lines and
// returns the redirect URL, or "" with an error when Stripe refuses.
func (i *Initiator) CreateSession(lines []models.CartProduct) (string, error) {
	if len(lines) == 0 {
		return "", fmt.Errorf("cannot check out an empty cart")
	}

	stripe.Key = i.secretKey

	params := buildParams(lines, i.baseURL+successPath, i.baseURL+cancelPath)

	session, err := checkoutsession.New(params)
	if err != nil {
		slog.Error("failed to create stripe checkout session", "error", err)
		return "", fmt.Errorf("create checkout session: %w", err)
	}

	slog.Info("checkout session created", "session_id", session.ID, "line_items", len(lines))
	return session.URL, nil
}

// buildParams maps cart lines to Stripe session parameters. Prices
// arrive in major units (euros) and leave in minor units (cents).
func buildParams(lines []models.CartProduct, successURL, cancelURL string) *stripe.CheckoutSessionParams {
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(lines))
	for _, line := range lines {
		productData := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name:    stripe.String(line.Name),
			TaxCode: stripe.String(taxCode),
		}
		if line.Image != "" {
			productData.Images = []*string{stripe.String(line.Image)}
		}

		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(currency),
				UnitAmount:  stripe.Int64(toCents(line.Price)),
				ProductData: productData,
			},
			Quantity: stripe.Int64(line.Quantity),
		})
	}

	allowedCountries := make([]*string, 0, len(shippingCountries))
	for _, c := range shippingCountries {
		allowedCountries = append(allowedCountries, stripe.String(c))
	}

	return &stripe.CheckoutSessionParams{
		Mode:                     stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:                lineItems,
		SuccessURL:               stripe.String(successURL),
		CancelURL:                stripe.String(cancelURL),
		BillingAddressCollection: stripe.String(string(stripe.CheckoutSessionBillingAddressCollectionRequired)),
		ShippingAddressCollection: &stripe.CheckoutSessionShippingAddressCollectionParams{
			AllowedCountries: allowedCountries,
		},
	}
}

func toCents(price float64) int64 {
	return int64(math.Round(price * 100))
}
