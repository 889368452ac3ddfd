package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/atlastrek/tours/internal/domain"
	"github.com/atlastrek/tours/internal/platform/payments"
	"github.com/atlastrek/tours/internal/repo/postgres"
	"github.com/atlastrek/tours/pkg/events"
	"github.com/atlastrek/tours/pkg/logger"
)

type BookingService interface {
	CreateCheckoutSession(ctx context.Context, tourID int64, user *domain.User) (*domain.CheckoutSession, error)
	ConfirmCheckout(ctx context.Context, tourID, userID, price int64) (*domain.Booking, error)
	MyBookings(ctx context.Context, userID int64) ([]domain.Booking, error)
	HasBooked(ctx context.Context, userID, tourID int64) (bool, error)
	List(ctx context.Context, limit, offset int) ([]domain.Booking, error)
	Get(ctx context.Context, id int64) (*domain.Booking, error)
	Create(ctx context.Context, req *domain.CreateBookingRequest) (*domain.Booking, error)
	Update(ctx context.Context, id int64, req *domain.UpdateBookingRequest) (*domain.Booking, error)
	Delete(ctx context.Context, id int64) error
}

type bookingService struct {
	bookingRepo postgres.BookingRepository
	tourRepo    postgres.TourRepository
	sessions    payments.SessionCreator
	bus         events.Publisher
	baseURL     string
}

func NewBookingService(
	bookingRepo postgres.BookingRepository,
	tourRepo postgres.TourRepository,
	sessions payments.SessionCreator,
	bus events.Publisher,
	baseURL string,
) BookingService {
	return &bookingService{
		bookingRepo: bookingRepo,
		tourRepo:    tourRepo,
		sessions:    sessions,
		bus:         bus,
		baseURL:     baseURL,
	}
}

func (s *bookingService) CreateCheckoutSession(ctx context.Context, tourID int64, user *domain.User) (*domain.CheckoutSession, error) {
	tour, err := s.tourRepo.FindByID(ctx, tourID)
	if err != nil {
		return nil, fmt.Errorf("failed to get tour: %w", err)
	}
	if tour == nil {
		return nil, domain.ErrNotFound
	}

	price := tour.Price
	if tour.PriceDiscount != nil {
		price = *tour.PriceDiscount
	}

	// The success URL carries the booking parameters back to us until a
	// provider webhook replaces this flow.
	// TODO: switch to the checkout.session.completed webhook and drop the
	// query-parameter confirmation.
	successURL := fmt.Sprintf("%s/api/v1/bookings/confirm?tour=%d&user=%d&price=%d", s.baseURL, tour.ID, user.ID, price)
	cancelURL := fmt.Sprintf("%s/api/v1/tours/slug/%s", s.baseURL, tour.Slug)

	session, err := s.sessions.CreateCheckoutSession(ctx, tour, user, successURL, cancelURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}
	return session, nil
}

func (s *bookingService) ConfirmCheckout(ctx context.Context, tourID, userID, price int64) (*domain.Booking, error) {
	booking, err := s.Create(ctx, &domain.CreateBookingRequest{
		TourID: tourID,
		UserID: userID,
		Price:  price,
		Paid:   true,
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

func (s *bookingService) MyBookings(ctx context.Context, userID int64) ([]domain.Booking, error) {
	bookings, err := s.bookingRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

func (s *bookingService) HasBooked(ctx context.Context, userID, tourID int64) (bool, error) {
	return s.bookingRepo.ExistsForUserAndTour(ctx, userID, tourID)
}

func (s *bookingService) List(ctx context.Context, limit, offset int) ([]domain.Booking, error) {
	bookings, err := s.bookingRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

func (s *bookingService) Get(ctx context.Context, id int64) (*domain.Booking, error) {
	booking, err := s.bookingRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	if booking == nil {
		return nil, domain.ErrNotFound
	}
	return booking, nil
}

func (s *bookingService) Create(ctx context.Context, req *domain.CreateBookingRequest) (*domain.Booking, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	booking, err := s.bookingRepo.Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	if err := s.bus.Publish(ctx, events.BookingCreated, events.BookingCreatedEvent{
		BookingID: booking.ID,
		TourID:    booking.TourID,
		UserID:    booking.UserID,
		Price:     booking.Price,
		Paid:      booking.Paid,
		CreatedAt: booking.CreatedAt,
	}); err != nil {
		logger.WarnContext(ctx, "Failed to publish booking event", "error", err, "booking_id", booking.ID)
	}

	return booking, nil
}

func (s *bookingService) Update(ctx context.Context, id int64, req *domain.UpdateBookingRequest) (*domain.Booking, error) {
	booking, err := s.bookingRepo.Update(ctx, id, req)
	if err != nil {
		return nil, fmt.Errorf("failed to update booking: %w", err)
	}
	if booking == nil {
		return nil, domain.ErrNotFound
	}
	return booking, nil
}

func (s *bookingService) Delete(ctx context.Context, id int64) error {
	if err := s.bookingRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("failed to delete booking: %w", err)
	}
	return nil
}
