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

type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func parseID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

func parsePagination(r *http.Request) (limit, offset int) {
	limit = 20
	offset = 0

	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}

	return limit, offset
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r)
	response.WriteJSON(w, http.StatusOK, map[string]interface{}{"user": user.ToUserInfo()})
}

func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r)

	var req domain.UpdateMeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.WriteError(w, http.StatusBadRequest, "invalid JSON body", response.CodeInvalidInput)
		return
	}

	updated, err := h.userService.UpdateMe(r.Context(), user.ID, &req)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, map[string]interface{}{"user": updated.ToUserInfo()})
}

func (h *UserHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r)

	if err := h.userService.DeactivateMe(r.Context(), user.ID); err != nil {
		response.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Admin handlers

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	users, err := h.userService.List(r.Context(), limit, offset)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	infos := make([]*domain.UserInfo, 0, len(users))
	for i := range users {
		infos = append(infos, users[i].ToUserInfo())
	}

	response.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"results": len(infos),
		"users":   infos,
	})
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		response.WriteError(w, http.StatusBadRequest, "invalid user id", response.CodeInvalidInput)
		return
	}

	user, err := h.userService.Get(r.Context(), id)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, map[string]interface{}{"user": user.ToUserInfo()})
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		response.WriteError(w, http.StatusBadRequest, "invalid user id", response.CodeInvalidInput)
		return
	}

	var req domain.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.WriteError(w, http.StatusBadRequest, "invalid JSON body", response.CodeInvalidInput)
		return
	}

	user, err := h.userService.Update(r.Context(), id, &req)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, map[string]interface{}{"user": user.ToUserInfo()})
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		response.WriteError(w, http.StatusBadRequest, "invalid user id", response.CodeInvalidInput)
		return
	}

	if err := h.userService.Delete(r.Context(), id); err != nil {
		response.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
