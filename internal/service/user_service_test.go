package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlastrek/tours/internal/domain"
	"github.com/atlastrek/tours/internal/service"
)

func setupUserService() (service.UserService, *mockUserRepo, *mockBus) {
	repo := newMockUserRepo()
	bus := &mockBus{}
	return service.NewUserService(repo, bus), repo, bus
}

func seedUser(t *testing.T, repo *mockUserRepo) *domain.User {
	t.Helper()
	user, err := repo.Create(context.Background(), &domain.SignupRequest{
		Name:  "Jonas Schmedtmann",
		Email: "jonas@example.com",
	}, "$argon2id$not-a-real-hash")
	require.NoError(t, err)
	return user
}

func TestUpdateMeProfileFields(t *testing.T) {
	svc, repo, _ := setupUserService()
	user := seedUser(t, repo)

	name := "Jonas S."
	photo := "me.jpg"
	updated, err := svc.UpdateMe(context.Background(), user.ID, &domain.UpdateMeRequest{
		Name:  &name,
		Photo: &photo,
	})
	require.NoError(t, err)
	assert.Equal(t, "Jonas S.", updated.Name)
	assert.Equal(t, "me.jpg", updated.Photo)

	stored := repo.get(user.ID)
	assert.Equal(t, "me.jpg", stored.Photo, "photo must be persisted, not dropped")
	assert.Equal(t, "jonas@example.com", stored.Email, "omitted fields stay untouched")
}

func TestUpdateMeRejectsBadEmail(t *testing.T) {
	svc, repo, _ := setupUserService()
	user := seedUser(t, repo)

	bad := "not-an-email"
	_, err := svc.UpdateMe(context.Background(), user.ID, &domain.UpdateMeRequest{Email: &bad})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestDeactivateMe(t *testing.T) {
	svc, repo, bus := setupUserService()
	user := seedUser(t, repo)

	require.NoError(t, svc.DeactivateMe(context.Background(), user.ID))

	found, err := repo.FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Nil(t, found, "deactivated accounts are invisible to reads")

	bus.mu.Lock()
	defer bus.mu.Unlock()
	assert.Contains(t, bus.subjects, "user.deactivated")
}

func TestMeNotFound(t *testing.T) {
	svc, _, _ := setupUserService()

	_, err := svc.Me(context.Background(), 404)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAdminUpdateChangesRole(t *testing.T) {
	svc, repo, _ := setupUserService()
	user := seedUser(t, repo)

	role := domain.RoleLeadGuide
	updated, err := svc.Update(context.Background(), user.ID, &domain.UpdateUserRequest{Role: &role})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleLeadGuide, updated.Role)
	assert.Equal(t, domain.RoleLeadGuide, repo.get(user.ID).Role)
}
