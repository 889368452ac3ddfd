package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/atlastrek/tours/internal/domain"
	"github.com/atlastrek/tours/internal/http/middleware"
	"github.com/atlastrek/tours/internal/http/response"
	"github.com/atlastrek/tours/internal/service"
)

type BookingHandler struct {
	bookingService service.BookingService
}

func NewBookingHandler(bookingService service.BookingService) *BookingHandler {
	return &BookingHandler{bookingService: bookingService}
}

func (h *BookingHandler) CheckoutSession(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r)

	tourID, err := strconv.ParseInt(chi.URLParam(r, "tourID"), 10, 64)
	if err != nil || tourID <= 0 {
		response.WriteError(w, http.StatusBadRequest, "invalid tour id", response.CodeInvalidInput)
		return
	}

	session, err := h.bookingService.CreateCheckoutSession(r.Context(), tourID, user)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, map[string]interface{}{"session": session})
}

// ConfirmCheckout records a paid booking from the checkout success redirect.
// Temporary until the provider webhook lands.
func (h *BookingHandler) ConfirmCheckout(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	tourID, err1 := strconv.ParseInt(q.Get("tour"), 10, 64)
	userID, err2 := strconv.ParseInt(q.Get("user"), 10, 64)
	price, err3 := strconv.ParseInt(q.Get("price"), 10, 64)
	if err1 != nil || err2 != nil || err3 != nil {
		response.WriteError(w, http.StatusBadRequest, "missing checkout parameters", response.CodeInvalidInput)
		return
	}

	// Only the authenticated user may confirm their own checkout.
	if user := middleware.CurrentUser(r); user == nil || user.ID != userID {
		response.Error(w, r, domain.ErrForbidden)
		return
	}

	booking, err := h.bookingService.ConfirmCheckout(r.Context(), tourID, userID, price)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusCreated, map[string]interface{}{"booking": booking})
}

func (h *BookingHandler) MyBookings(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r)

	bookings, err := h.bookingService.MyBookings(r.Context(), user.ID)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"results":  len(bookings),
		"bookings": bookings,
	})
}

// Admin handlers

func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	bookings, err := h.bookingService.List(r.Context(), limit, offset)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"results":  len(bookings),
		"bookings": bookings,
	})
}

func (h *BookingHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		response.WriteError(w, http.StatusBadRequest, "invalid booking id", response.CodeInvalidInput)
		return
	}

	booking, err := h.bookingService.Get(r.Context(), id)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, map[string]interface{}{"booking": booking})
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.WriteError(w, http.StatusBadRequest, "invalid JSON body", response.CodeInvalidInput)
		return
	}

	booking, err := h.bookingService.Create(r.Context(), &req)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusCreated, map[string]interface{}{"booking": booking})
}

func (h *BookingHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		response.WriteError(w, http.StatusBadRequest, "invalid booking id", response.CodeInvalidInput)
		return
	}

	var req domain.UpdateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.WriteError(w, http.StatusBadRequest, "invalid JSON body", response.CodeInvalidInput)
		return
	}

	booking, err := h.bookingService.Update(r.Context(), id, &req)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, map[string]interface{}{"booking": booking})
}

func (h *BookingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		response.WriteError(w, http.StatusBadRequest, "invalid booking id", response.CodeInvalidInput)
		return
	}

	if err := h.bookingService.Delete(r.Context(), id); err != nil {
		response.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
