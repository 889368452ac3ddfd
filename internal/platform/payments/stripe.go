package payments

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	"github.com/atlastrek/tours/internal/domain"
)

type StripeCreator struct {
	api      *client.API
	currency string
}

func NewStripeCreator(secretKey, currency string) *StripeCreator {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeCreator{api: api, currency: currency}
}

func (s *StripeCreator) CreateCheckoutSession(ctx context.Context, tour *domain.Tour, user *domain.User, successURL, cancelURL string) (*domain.CheckoutSession, error) {
	price := tour.Price
	if tour.PriceDiscount != nil {
		price = *tour.PriceDiscount
	}

	productData := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
		Name:        stripe.String(tour.Name),
		Description: stripe.String(tour.Summary),
	}
	if tour.ImageCover != "" {
		productData.Images = []*string{stripe.String(tour.ImageCover)}
	}

	params := &stripe.CheckoutSessionParams{
		Params: stripe.Params{
			Context: ctx,
		},
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(successURL),
		CancelURL:         stripe.String(cancelURL),
		CustomerEmail:     stripe.String(user.Email),
		ClientReferenceID: stripe.String(fmt.Sprintf("%d", tour.ID)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Quantity: stripe.Int64(1),
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:    stripe.String(s.currency),
					UnitAmount:  stripe.Int64(price),
					ProductData: productData,
				},
			},
		},
	}

	sess, err := s.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	return &domain.CheckoutSession{
		SessionID: sess.ID,
		URL:       sess.URL,
	}, nil
}
