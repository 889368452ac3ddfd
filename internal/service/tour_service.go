package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/atlastrek/tours/internal/domain"
	"github.com/atlastrek/tours/internal/repo/postgres"
)

type TourService interface {
	List(ctx context.Context, filter postgres.TourFilter) ([]domain.Tour, error)
	Get(ctx context.Context, id int64) (*domain.Tour, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Tour, error)
	Create(ctx context.Context, req *domain.CreateTourRequest) (*domain.Tour, error)
	Update(ctx context.Context, id int64, req *domain.UpdateTourRequest) (*domain.Tour, error)
	Delete(ctx context.Context, id int64) error
	Stats(ctx context.Context) ([]domain.TourStats, error)
}

type tourService struct {
	tourRepo postgres.TourRepository
}

func NewTourService(tourRepo postgres.TourRepository) TourService {
	return &tourService{tourRepo: tourRepo}
}

func (s *tourService) List(ctx context.Context, filter postgres.TourFilter) ([]domain.Tour, error) {
	tours, err := s.tourRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tours: %w", err)
	}
	return tours, nil
}

func (s *tourService) Get(ctx context.Context, id int64) (*domain.Tour, error) {
	tour, err := s.tourRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get tour: %w", err)
	}
	if tour == nil {
		return nil, domain.ErrNotFound
	}
	return tour, nil
}

func (s *tourService) GetBySlug(ctx context.Context, slug string) (*domain.Tour, error) {
	tour, err := s.tourRepo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("failed to get tour: %w", err)
	}
	if tour == nil {
		return nil, domain.ErrNotFound
	}
	return tour, nil
}

func (s *tourService) Create(ctx context.Context, req *domain.CreateTourRequest) (*domain.Tour, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	tour, err := s.tourRepo.Create(ctx, req, domain.Slugify(req.Name))
	if err != nil {
		return nil, fmt.Errorf("failed to create tour: %w", err)
	}
	return tour, nil
}

func (s *tourService) Update(ctx context.Context, id int64, req *domain.UpdateTourRequest) (*domain.Tour, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	tour, err := s.tourRepo.Update(ctx, id, req)
	if err != nil {
		return nil, fmt.Errorf("failed to update tour: %w", err)
	}
	if tour == nil {
		return nil, domain.ErrNotFound
	}
	return tour, nil
}

func (s *tourService) Delete(ctx context.Context, id int64) error {
	if err := s.tourRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("failed to delete tour: %w", err)
	}
	return nil
}

func (s *tourService) Stats(ctx context.Context) ([]domain.TourStats, error) {
	stats, err := s.tourRepo.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate tour stats: %w", err)
	}
	return stats, nil
}
