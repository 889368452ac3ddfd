package payments

import (
	"context"

	"github.com/atlastrek/tours/internal/domain"
)

// SessionCreator starts a hosted checkout for a tour purchase. The booking
// flow treats it as an opaque collaborator; payment capture and webhooks live
// with the provider.
type SessionCreator interface {
	CreateCheckoutSession(ctx context.Context, tour *domain.Tour, user *domain.User, successURL, cancelURL string) (*domain.CheckoutSession, error)
}
