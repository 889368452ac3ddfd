package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlastrek/tours/internal/domain"
	"github.com/atlastrek/tours/internal/repo/postgres"
	"github.com/atlastrek/tours/internal/service"
)

// ---------- Mocks ----------

type mockTourRepo struct {
	tours map[int64]*domain.Tour
}

func newMockTourRepo(tours ...*domain.Tour) *mockTourRepo {
	m := &mockTourRepo{tours: make(map[int64]*domain.Tour)}
	for _, tour := range tours {
		m.tours[tour.ID] = tour
	}
	return m
}

func (m *mockTourRepo) Create(_ context.Context, req *domain.CreateTourRequest, slug string) (*domain.Tour, error) {
	return nil, nil
}

func (m *mockTourRepo) FindByID(_ context.Context, id int64) (*domain.Tour, error) {
	return m.tours[id], nil
}

func (m *mockTourRepo) FindBySlug(_ context.Context, slug string) (*domain.Tour, error) {
	for _, tour := range m.tours {
		if tour.Slug == slug {
			return tour, nil
		}
	}
	return nil, nil
}

func (m *mockTourRepo) List(context.Context, postgres.TourFilter) ([]domain.Tour, error) {
	return nil, nil
}

func (m *mockTourRepo) Update(context.Context, int64, *domain.UpdateTourRequest) (*domain.Tour, error) {
	return nil, nil
}

func (m *mockTourRepo) Delete(context.Context, int64) error { return nil }

func (m *mockTourRepo) Stats(context.Context) ([]domain.TourStats, error) { return nil, nil }

type mockBookingRepo struct {
	nextID   int64
	bookings map[int64]*domain.Booking
}

func newMockBookingRepo() *mockBookingRepo {
	return &mockBookingRepo{nextID: 1, bookings: make(map[int64]*domain.Booking)}
}

func (m *mockBookingRepo) Create(_ context.Context, req *domain.CreateBookingRequest) (*domain.Booking, error) {
	b := &domain.Booking{
		ID:        m.nextID,
		TourID:    req.TourID,
		UserID:    req.UserID,
		Price:     req.Price,
		Paid:      req.Paid,
		CreatedAt: time.Now(),
	}
	m.nextID++
	m.bookings[b.ID] = b
	return b, nil
}

func (m *mockBookingRepo) FindByID(_ context.Context, id int64) (*domain.Booking, error) {
	return m.bookings[id], nil
}

func (m *mockBookingRepo) List(context.Context, int, int) ([]domain.Booking, error) {
	return nil, nil
}

func (m *mockBookingRepo) ListByUser(_ context.Context, userID int64) ([]domain.Booking, error) {
	var out []domain.Booking
	for _, b := range m.bookings {
		if b.UserID == userID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (m *mockBookingRepo) ExistsForUserAndTour(_ context.Context, userID, tourID int64) (bool, error) {
	for _, b := range m.bookings {
		if b.UserID == userID && b.TourID == tourID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockBookingRepo) Update(context.Context, int64, *domain.UpdateBookingRequest) (*domain.Booking, error) {
	return nil, nil
}

func (m *mockBookingRepo) Delete(context.Context, int64) error { return nil }

type mockSessionCreator struct {
	lastSuccessURL string
	lastCancelURL  string
	err            error
}

func (m *mockSessionCreator) CreateCheckoutSession(_ context.Context, tour *domain.Tour, user *domain.User, successURL, cancelURL string) (*domain.CheckoutSession, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.lastSuccessURL = successURL
	m.lastCancelURL = cancelURL
	return &domain.CheckoutSession{
		SessionID: "cs_test_123",
		URL:       "https://checkout.example.com/cs_test_123",
	}, nil
}

// ---------- Test Setup ----------

func forestHiker() *domain.Tour {
	return &domain.Tour{
		ID:         10,
		Name:       "The Forest Hiker",
		Slug:       "the-forest-hiker",
		Difficulty: domain.DifficultyEasy,
		Price:      39700,
	}
}

func setupBookingService(tours ...*domain.Tour) (service.BookingService, *mockBookingRepo, *mockSessionCreator, *mockBus) {
	bookingRepo := newMockBookingRepo()
	sessions := &mockSessionCreator{}
	bus := &mockBus{}
	svc := service.NewBookingService(bookingRepo, newMockTourRepo(tours...), sessions, bus, testBaseURL)
	return svc, bookingRepo, sessions, bus
}

// ---------- Tests ----------

func TestCreateCheckoutSession(t *testing.T) {
	svc, _, sessions, _ := setupBookingService(forestHiker())
	user := &domain.User{ID: 5, Email: "jonas@example.com"}

	session, err := svc.CreateCheckoutSession(context.Background(), 10, user)
	require.NoError(t, err)
	assert.Equal(t, "cs_test_123", session.SessionID)
	assert.NotEmpty(t, session.URL)

	wantSuccess := fmt.Sprintf("%s/api/v1/bookings/confirm?tour=10&user=5&price=39700", testBaseURL)
	assert.Equal(t, wantSuccess, sessions.lastSuccessURL)
	assert.Equal(t, testBaseURL+"/api/v1/tours/slug/the-forest-hiker", sessions.lastCancelURL)
}

func TestCreateCheckoutSessionUsesDiscount(t *testing.T) {
	tour := forestHiker()
	discount := int64(29700)
	tour.PriceDiscount = &discount

	svc, _, sessions, _ := setupBookingService(tour)

	_, err := svc.CreateCheckoutSession(context.Background(), 10, &domain.User{ID: 5})
	require.NoError(t, err)
	assert.Contains(t, sessions.lastSuccessURL, "price=29700")
}

func TestCreateCheckoutSessionUnknownTour(t *testing.T) {
	svc, _, _, _ := setupBookingService()

	_, err := svc.CreateCheckoutSession(context.Background(), 99, &domain.User{ID: 5})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestConfirmCheckoutRecordsPaidBooking(t *testing.T) {
	svc, repo, _, bus := setupBookingService(forestHiker())

	booking, err := svc.ConfirmCheckout(context.Background(), 10, 5, 39700)
	require.NoError(t, err)
	assert.True(t, booking.Paid)
	assert.Equal(t, int64(10), booking.TourID)
	assert.Equal(t, int64(5), booking.UserID)

	stored, err := repo.FindByID(context.Background(), booking.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)

	booked, err := svc.HasBooked(context.Background(), 5, 10)
	require.NoError(t, err)
	assert.True(t, booked)

	bus.mu.Lock()
	defer bus.mu.Unlock()
	assert.Contains(t, bus.subjects, "booking.created")
}

func TestCreateBookingValidation(t *testing.T) {
	svc, repo, _, _ := setupBookingService(forestHiker())

	_, err := svc.Create(context.Background(), &domain.CreateBookingRequest{
		TourID: 10,
		UserID: 5,
		Price:  0,
	})
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, repo.bookings)
}

func TestGetBookingNotFound(t *testing.T) {
	svc, _, _, _ := setupBookingService(forestHiker())

	_, err := svc.Get(context.Background(), 404)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
