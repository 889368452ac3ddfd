package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/atlastrek/tours/internal/domain"
	"github.com/atlastrek/tours/internal/http/middleware"
	"github.com/atlastrek/tours/internal/http/response"
	"github.com/atlastrek/tours/internal/service"
)

type AuthHandler struct {
	authService service.AuthService
	cookieName  string
	tokenTTL    time.Duration
}

func NewAuthHandler(authService service.AuthService, cookieName string, tokenTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cookieName:  cookieName,
		tokenTTL:    tokenTTL,
	}
}

func requestIsSecure(r *http.Request) bool {
	return r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https"
}

// sendToken sets the session cookie and writes the token plus the public
// user profile. The cookie is HTTP-only and marked Secure when the request
// arrived over TLS, directly or via the proxy header.
func (h *AuthHandler) sendToken(w http.ResponseWriter, r *http.Request, statusCode int, user *domain.User, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(h.tokenTTL),
		HttpOnly: true,
		Secure:   requestIsSecure(r),
	})

	response.WriteJSON(w, statusCode, domain.AuthResponse{
		Token:     token,
		ExpiresIn: int64(h.tokenTTL.Seconds()),
		User:      user.ToUserInfo(),
	})
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req domain.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.WriteError(w, http.StatusBadRequest, "invalid JSON body", response.CodeInvalidInput)
		return
	}

	user, token, err := h.authService.Signup(r.Context(), &req)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	h.sendToken(w, r, http.StatusCreated, user, token)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.WriteError(w, http.StatusBadRequest, "invalid JSON body", response.CodeInvalidInput)
		return
	}

	user, token, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	h.sendToken(w, r, http.StatusOK, user, token)
}

// Logout cannot delete the HTTP-only cookie from the client side, so it
// overwrites it with a sentinel that expires almost immediately.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    "loggedout",
		Path:     "/",
		Expires:  time.Now().Add(10 * time.Second),
		HttpOnly: true,
		Secure:   requestIsSecure(r),
	})

	response.WriteJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req domain.ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		response.WriteError(w, http.StatusBadRequest, "email is required", response.CodeInvalidInput)
		return
	}

	if err := h.authService.ForgotPassword(r.Context(), req.Email); err != nil {
		response.Error(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "token sent to email",
	})
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		response.WriteError(w, http.StatusBadRequest, "missing reset token", response.CodeInvalidInput)
		return
	}

	var req domain.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.WriteError(w, http.StatusBadRequest, "invalid JSON body", response.CodeInvalidInput)
		return
	}

	user, freshToken, err := h.authService.ResetPassword(r.Context(), token, &req)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	h.sendToken(w, r, http.StatusOK, user, freshToken)
}

func (h *AuthHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r)
	if user == nil {
		response.Error(w, r, domain.ErrUnauthenticated)
		return
	}

	var req domain.UpdatePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.WriteError(w, http.StatusBadRequest, "invalid JSON body", response.CodeInvalidInput)
		return
	}

	updated, freshToken, err := h.authService.UpdatePassword(r.Context(), user.ID, &req)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	h.sendToken(w, r, http.StatusOK, updated, freshToken)
}
