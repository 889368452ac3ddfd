package domain

import (
	"fmt"
	"strings"
	"time"
)

type Tour struct {
	ID             int64       `json:"id"`
	Name           string      `json:"name"`
	Slug           string      `json:"slug"`
	Duration       int         `json:"duration"`
	MaxGroupSize   int         `json:"max_group_size"`
	Difficulty     string      `json:"difficulty"`
	RatingsAverage float64     `json:"ratings_average"`
	RatingsCount   int         `json:"ratings_count"`
	Price          int64       `json:"price"` // cents
	PriceDiscount  *int64      `json:"price_discount,omitempty"`
	Summary        string      `json:"summary"`
	Description    string      `json:"description,omitempty"`
	ImageCover     string      `json:"image_cover"`
	Images         []string    `json:"images,omitempty"`
	StartDates     []time.Time `json:"start_dates,omitempty"`
	Secret         bool        `json:"-"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

type CreateTourRequest struct {
	Name          string      `json:"name"`
	Duration      int         `json:"duration"`
	MaxGroupSize  int         `json:"max_group_size"`
	Difficulty    string      `json:"difficulty"`
	Price         int64       `json:"price"`
	PriceDiscount *int64      `json:"price_discount,omitempty"`
	Summary       string      `json:"summary"`
	Description   string      `json:"description"`
	ImageCover    string      `json:"image_cover"`
	Images        []string    `json:"images"`
	StartDates    []time.Time `json:"start_dates"`
	Secret        bool        `json:"secret"`
}

type UpdateTourRequest struct {
	Name          *string `json:"name,omitempty"`
	Duration      *int    `json:"duration,omitempty"`
	MaxGroupSize  *int    `json:"max_group_size,omitempty"`
	Difficulty    *string `json:"difficulty,omitempty"`
	Price         *int64  `json:"price,omitempty"`
	PriceDiscount *int64  `json:"price_discount,omitempty"`
	Summary       *string `json:"summary,omitempty"`
	Description   *string `json:"description,omitempty"`
	ImageCover    *string `json:"image_cover,omitempty"`
}

// TourStats is a per-difficulty aggregate over the non-secret catalog.
type TourStats struct {
	Difficulty string  `json:"difficulty"`
	NumTours   int     `json:"num_tours"`
	AvgRating  float64 `json:"avg_rating"`
	AvgPrice   float64 `json:"avg_price"`
	MinPrice   int64   `json:"min_price"`
	MaxPrice   int64   `json:"max_price"`
}

// Valid tour difficulties
const (
	DifficultyEasy      = "easy"
	DifficultyMedium    = "medium"
	DifficultyDifficult = "difficult"
)

var validDifficulties = map[string]bool{
	DifficultyEasy:      true,
	DifficultyMedium:    true,
	DifficultyDifficult: true,
}

func (r *CreateTourRequest) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("a tour must have a name")
	}
	if len(r.Name) < 10 || len(r.Name) > 40 {
		return fmt.Errorf("a tour name must have between 10 and 40 characters")
	}
	if r.Duration <= 0 {
		return fmt.Errorf("a tour must have a duration")
	}
	if r.MaxGroupSize <= 0 {
		return fmt.Errorf("a tour must have a group size")
	}
	if !validDifficulties[r.Difficulty] {
		return fmt.Errorf("difficulty is either: easy, medium, difficult")
	}
	if r.Price <= 0 {
		return fmt.Errorf("a tour must have a price")
	}
	if r.PriceDiscount != nil && *r.PriceDiscount >= r.Price {
		return fmt.Errorf("discount price should be below the regular price")
	}
	if r.Summary == "" {
		return fmt.Errorf("a tour must have a summary")
	}
	if r.ImageCover == "" {
		return fmt.Errorf("a tour must have a cover image")
	}
	return nil
}

func (r *UpdateTourRequest) Validate() error {
	if r.Difficulty != nil && !validDifficulties[*r.Difficulty] {
		return fmt.Errorf("difficulty is either: easy, medium, difficult")
	}
	if r.Price != nil && *r.Price <= 0 {
		return fmt.Errorf("a tour must have a price")
	}
	return nil
}

// Slugify derives a URL slug from a tour name.
func Slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	prevDash := false
	for _, r := range slug {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			prevDash = false
		default:
			if !prevDash && b.Len() > 0 {
				b.WriteByte('-')
				prevDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
