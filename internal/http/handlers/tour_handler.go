package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/atlastrek/tours/internal/domain"
	"github.com/atlastrek/tours/internal/http/middleware"
	"github.com/atlastrek/tours/internal/http/response"
	"github.com/atlastrek/tours/internal/repo/postgres"
	"github.com/atlastrek/tours/internal/service"
)

type TourHandler struct {
	tourService    service.TourService
	bookingService service.BookingService
}

func NewTourHandler(tourService service.TourService, bookingService service.BookingService) *TourHandler {
	return &TourHandler{tourService: tourService, bookingService: bookingService}
}

func (h *TourHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	filter := postgres.TourFilter{
		Difficulty: r.URL.Query().Get("difficulty"),
		SortCheap:  r.URL.Query().Get("sort") == "price",
		Limit:      limit,
		Offset:     offset,
	}
	if v := r.URL.Query().Get("max_price"); v != "" {
		if p, err := strconv.ParseInt(v, 10, 64); err == nil {
			filter.MaxPrice = p
		}
	}

	tours, err := h.tourService.List(r.Context(), filter)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"results": len(tours),
		"tours":   tours,
	})
}

func (h *TourHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.tourService.Stats(r.Context())
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, map[string]interface{}{"stats": stats})
}

func (h *TourHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		response.WriteError(w, http.StatusBadRequest, "invalid tour id", response.CodeInvalidInput)
		return
	}

	tour, err := h.tourService.Get(r.Context(), id)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, map[string]interface{}{"tour": tour})
}

// GetBySlug serves the tour detail. When a logged-in identity is attached it
// also reports whether that user has already booked this tour.
func (h *TourHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	tour, err := h.tourService.GetBySlug(r.Context(), slug)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	body := map[string]interface{}{"tour": tour}

	if user := middleware.CurrentUser(r); user != nil {
		booked, err := h.bookingService.HasBooked(r.Context(), user.ID, tour.ID)
		if err == nil {
			body["booked"] = booked
		}
	}

	response.WriteJSON(w, http.StatusOK, body)
}

func (h *TourHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateTourRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.WriteError(w, http.StatusBadRequest, "invalid JSON body", response.CodeInvalidInput)
		return
	}

	tour, err := h.tourService.Create(r.Context(), &req)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusCreated, map[string]interface{}{"tour": tour})
}

func (h *TourHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		response.WriteError(w, http.StatusBadRequest, "invalid tour id", response.CodeInvalidInput)
		return
	}

	var req domain.UpdateTourRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.WriteError(w, http.StatusBadRequest, "invalid JSON body", response.CodeInvalidInput)
		return
	}

	tour, err := h.tourService.Update(r.Context(), id, &req)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, map[string]interface{}{"tour": tour})
}

func (h *TourHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		response.WriteError(w, http.StatusBadRequest, "invalid tour id", response.CodeInvalidInput)
		return
	}

	if err := h.tourService.Delete(r.Context(), id); err != nil {
		response.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
