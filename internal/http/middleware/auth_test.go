package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/atlastrek/tours/internal/domain"
	"github.com/atlastrek/tours/internal/http/middleware"
)

// ---------- Mocks ----------

type mockAuthenticator struct {
	user      *domain.User
	err       error
	lastToken string
}

func (m *mockAuthenticator) Authenticate(_ context.Context, token string) (*domain.User, error) {
	m.lastToken = token
	if m.err != nil {
		return nil, m.err
	}
	return m.user, nil
}

const cookieName = "session"

func echoUserHandler(t *testing.T, captured **domain.User) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*captured = middleware.CurrentUser(r)
		w.WriteHeader(http.StatusOK)
	})
}

// ---------- Tests ----------

func TestRequireAuthMissingToken(t *testing.T) {
	authn := &mockAuthenticator{user: &domain.User{ID: 1}}
	var seen *domain.User
	handler := middleware.RequireAuth(authn, cookieName)(echoUserHandler(t, &seen))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if seen != nil {
		t.Fatal("handler must not run without a token")
	}
}

func TestRequireAuthInvalidToken(t *testing.T) {
	authn := &mockAuthenticator{err: domain.ErrUnauthenticated}
	var seen *domain.User
	handler := middleware.RequireAuth(authn, cookieName)(echoUserHandler(t, &seen))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer bad-token")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRequireAuthBearerHeader(t *testing.T) {
	user := &domain.User{ID: 7, Role: domain.RoleUser}
	authn := &mockAuthenticator{user: user}
	var seen *domain.User
	handler := middleware.RequireAuth(authn, cookieName)(echoUserHandler(t, &seen))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer good-token")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if authn.lastToken != "good-token" {
		t.Fatalf("expected token from header, got %q", authn.lastToken)
	}
	if seen == nil || seen.ID != 7 {
		t.Fatalf("expected user 7 in context, got %+v", seen)
	}
}

func TestRequireAuthCookie(t *testing.T) {
	user := &domain.User{ID: 7, Role: domain.RoleUser}
	authn := &mockAuthenticator{user: user}
	var seen *domain.User
	handler := middleware.RequireAuth(authn, cookieName)(echoUserHandler(t, &seen))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: cookieName, Value: "cookie-token"})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if authn.lastToken != "cookie-token" {
		t.Fatalf("expected token from cookie, got %q", authn.lastToken)
	}
}

// The Authorization header wins when both carriers are present.
func TestRequireAuthHeaderBeatsCookie(t *testing.T) {
	authn := &mockAuthenticator{user: &domain.User{ID: 7}}
	var seen *domain.User
	handler := middleware.RequireAuth(authn, cookieName)(echoUserHandler(t, &seen))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer header-token")
	req.AddCookie(&http.Cookie{Name: cookieName, Value: "cookie-token"})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if authn.lastToken != "header-token" {
		t.Fatalf("expected header token to win, got %q", authn.lastToken)
	}
}

func TestOptionalAuthSilentOnFailure(t *testing.T) {
	authn := &mockAuthenticator{err: domain.ErrUnauthenticated}
	var seen *domain.User
	handler := middleware.OptionalAuth(authn, cookieName)(echoUserHandler(t, &seen))

	req := httptest.NewRequest(http.MethodGet, "/tours/slug/the-forest-hiker", nil)
	req.AddCookie(&http.Cookie{Name: cookieName, Value: "loggedout"})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected anonymous pass-through, got %d", rec.Code)
	}
	if seen != nil {
		t.Fatalf("expected no user in context, got %+v", seen)
	}
}

func TestOptionalAuthAttachesUser(t *testing.T) {
	authn := &mockAuthenticator{user: &domain.User{ID: 3}}
	var seen *domain.User
	handler := middleware.OptionalAuth(authn, cookieName)(echoUserHandler(t, &seen))

	req := httptest.NewRequest(http.MethodGet, "/tours/slug/the-forest-hiker", nil)
	req.Header.Set("Authorization", "Bearer good-token")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if seen == nil || seen.ID != 3 {
		t.Fatalf("expected user 3 in context, got %+v", seen)
	}
}

func TestRequireRoles(t *testing.T) {
	adminOnly := middleware.RequireRoles(domain.RoleAdmin)

	run := func(user *domain.User) int {
		authn := &mockAuthenticator{user: user}
		var seen *domain.User
		chain := middleware.RequireAuth(authn, cookieName)(adminOnly(echoUserHandler(t, &seen)))

		req := httptest.NewRequest(http.MethodGet, "/users", nil)
		req.Header.Set("Authorization", "Bearer tok")

		rec := httptest.NewRecorder()
		chain.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := run(&domain.User{ID: 1, Role: domain.RoleUser}); code != http.StatusForbidden {
		t.Fatalf("expected 403 for role user, got %d", code)
	}
	if code := run(&domain.User{ID: 2, Role: domain.RoleLeadGuide}); code != http.StatusForbidden {
		t.Fatalf("expected 403 for role lead-guide, got %d", code)
	}
	if code := run(&domain.User{ID: 3, Role: domain.RoleAdmin}); code != http.StatusOK {
		t.Fatalf("expected 200 for role admin, got %d", code)
	}
}

func TestRequireRolesWithoutIdentity(t *testing.T) {
	handler := middleware.RequireRoles(domain.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
