package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlastrek/tours/internal/domain"
)

func validTourRequest() domain.CreateTourRequest {
	return domain.CreateTourRequest{
		Name:         "The Forest Hiker",
		Duration:     5,
		MaxGroupSize: 25,
		Difficulty:   domain.DifficultyEasy,
		Price:        39700,
		Summary:      "Breathtaking hike through the Canadian Banff National Park",
		ImageCover:   "tour-1-cover.jpg",
	}
}

func TestCreateTourRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*domain.CreateTourRequest)
		wantErr string
	}{
		{"valid", func(r *domain.CreateTourRequest) {}, ""},
		{"name too short", func(r *domain.CreateTourRequest) { r.Name = "Short" }, "between 10 and 40"},
		{"name too long", func(r *domain.CreateTourRequest) {
			r.Name = "This tour name is way too long to be accepted here"
		}, "between 10 and 40"},
		{"bad difficulty", func(r *domain.CreateTourRequest) { r.Difficulty = "extreme" }, "easy, medium, difficult"},
		{"no price", func(r *domain.CreateTourRequest) { r.Price = 0 }, "must have a price"},
		{"discount above price", func(r *domain.CreateTourRequest) {
			d := int64(50000)
			r.PriceDiscount = &d
		}, "below the regular price"},
		{"no summary", func(r *domain.CreateTourRequest) { r.Summary = "" }, "must have a summary"},
		{"no cover image", func(r *domain.CreateTourRequest) { r.ImageCover = "" }, "must have a cover image"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validTourRequest()
			tt.mutate(&req)
			err := req.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"The Forest Hiker", "the-forest-hiker"},
		{"  The Sea Explorer  ", "the-sea-explorer"},
		{"Tour #1: Rocks & Rivers!", "tour-1-rocks-rivers"},
		{"already-slugged", "already-slugged"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, domain.Slugify(tt.in), tt.in)
	}
}
