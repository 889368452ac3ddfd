package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atlastrek/tours/internal/domain"
)

type TourFilter struct {
	Difficulty string
	MaxPrice   int64
	SortCheap  bool
	Limit      int
	Offset     int
}

type TourRepository interface {
	Create(ctx context.Context, req *domain.CreateTourRequest, slug string) (*domain.Tour, error)
	FindByID(ctx context.Context, id int64) (*domain.Tour, error)
	FindBySlug(ctx context.Context, slug string) (*domain.Tour, error)
	List(ctx context.Context, filter TourFilter) ([]domain.Tour, error)
	Update(ctx context.Context, id int64, req *domain.UpdateTourRequest) (*domain.Tour, error)
	Delete(ctx context.Context, id int64) error
	Stats(ctx context.Context) ([]domain.TourStats, error)
}

type tourRepository struct {
	pool *pgxpool.Pool
}

func NewTourRepository(pool *pgxpool.Pool) TourRepository {
	return &tourRepository{pool: pool}
}

const tourCols = `id, name, slug, duration, max_group_size, difficulty, ratings_average, ratings_count, price, price_discount, summary, description, image_cover, images, start_dates, secret, created_at, updated_at`

func scanTour(row pgx.Row) (*domain.Tour, error) {
	var t domain.Tour
	err := row.Scan(
		&t.ID, &t.Name, &t.Slug, &t.Duration, &t.MaxGroupSize, &t.Difficulty,
		&t.RatingsAverage, &t.RatingsCount, &t.Price, &t.PriceDiscount,
		&t.Summary, &t.Description, &t.ImageCover, &t.Images, &t.StartDates,
		&t.Secret, &t.CreatedAt, &t.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *tourRepository) Create(ctx context.Context, req *domain.CreateTourRequest, slug string) (*domain.Tour, error) {
	const q = `
		INSERT INTO tours (name, slug, duration, max_group_size, difficulty, price, price_discount, summary, description, image_cover, images, start_dates, secret)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING ` + tourCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanTour(r.pool.QueryRow(ctx, q,
		req.Name, slug, req.Duration, req.MaxGroupSize, req.Difficulty,
		req.Price, req.PriceDiscount, req.Summary, req.Description,
		req.ImageCover, req.Images, req.StartDates, req.Secret,
	))
}

// Reads apply the default scope: secret tours never show up.

func (r *tourRepository) FindByID(ctx context.Context, id int64) (*domain.Tour, error) {
	const q = `SELECT ` + tourCols + ` FROM tours WHERE id = $1 AND NOT secret`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanTour(r.pool.QueryRow(ctx, q, id))
}

func (r *tourRepository) FindBySlug(ctx context.Context, slug string) (*domain.Tour, error) {
	const q = `SELECT ` + tourCols + ` FROM tours WHERE slug = $1 AND NOT secret`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanTour(r.pool.QueryRow(ctx, q, slug))
}

func (r *tourRepository) List(ctx context.Context, filter TourFilter) ([]domain.Tour, error) {
	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	q := `
		SELECT ` + tourCols + `
		FROM tours
		WHERE NOT secret
		  AND ($1 = '' OR difficulty = $1)
		  AND ($2 <= 0 OR price <= $2)`
	if filter.SortCheap {
		q += ` ORDER BY price ASC, ratings_average DESC`
	} else {
		q += ` ORDER BY created_at DESC`
	}
	q += ` LIMIT $3 OFFSET $4`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, filter.Difficulty, filter.MaxPrice, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tours []domain.Tour
	for rows.Next() {
		var t domain.Tour
		if err := rows.Scan(
			&t.ID, &t.Name, &t.Slug, &t.Duration, &t.MaxGroupSize, &t.Difficulty,
			&t.RatingsAverage, &t.RatingsCount, &t.Price, &t.PriceDiscount,
			&t.Summary, &t.Description, &t.ImageCover, &t.Images, &t.StartDates,
			&t.Secret, &t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, err
		}
		tours = append(tours, t)
	}

	return tours, rows.Err()
}

func (r *tourRepository) Update(ctx context.Context, id int64, req *domain.UpdateTourRequest) (*domain.Tour, error) {
	const q = `
		UPDATE tours
		SET
			name = COALESCE($2, name),
			slug = COALESCE($3, slug),
			duration = COALESCE($4, duration),
			max_group_size = COALESCE($5, max_group_size),
			difficulty = COALESCE($6, difficulty),
			price = COALESCE($7, price),
			price_discount = COALESCE($8, price_discount),
			summary = COALESCE($9, summary),
			description = COALESCE($10, description),
			image_cover = COALESCE($11, image_cover),
			updated_at = now()
		WHERE id = $1
		RETURNING ` + tourCols

	var slug *string
	if req.Name != nil {
		s := domain.Slugify(*req.Name)
		slug = &s
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanTour(r.pool.QueryRow(ctx, q, id,
		req.Name, slug, req.Duration, req.MaxGroupSize, req.Difficulty,
		req.Price, req.PriceDiscount, req.Summary, req.Description, req.ImageCover,
	))
}

func (r *tourRepository) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM tours WHERE id = $1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *tourRepository) Stats(ctx context.Context) ([]domain.TourStats, error) {
	const q = `
		SELECT
			difficulty,
			COUNT(*) AS num_tours,
			ROUND(AVG(ratings_average)::numeric, 1) AS avg_rating,
			ROUND(AVG(price)::numeric, 0) AS avg_price,
			MIN(price) AS min_price,
			MAX(price) AS max_price
		FROM tours
		WHERE NOT secret
		GROUP BY difficulty
		ORDER BY avg_price ASC`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []domain.TourStats
	for rows.Next() {
		var s domain.TourStats
		if err := rows.Scan(&s.Difficulty, &s.NumTours, &s.AvgRating, &s.AvgPrice, &s.MinPrice, &s.MaxPrice); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}

	return stats, rows.Err()
}
