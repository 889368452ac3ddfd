package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atlastrek/tours/internal/domain"
	"github.com/atlastrek/tours/internal/platform/auth"
	"github.com/atlastrek/tours/internal/platform/mailer"
	"github.com/atlastrek/tours/internal/repo/postgres"
	"github.com/atlastrek/tours/pkg/events"
	"github.com/atlastrek/tours/pkg/logger"
)

type AuthService interface {
	Signup(ctx context.Context, req *domain.SignupRequest) (*domain.User, string, error)
	Login(ctx context.Context, req *domain.LoginRequest) (*domain.User, string, error)
	Authenticate(ctx context.Context, token string) (*domain.User, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token string, req *domain.ResetPasswordRequest) (*domain.User, string, error)
	UpdatePassword(ctx context.Context, userID int64, req *domain.UpdatePasswordRequest) (*domain.User, string, error)
}

type authService struct {
	userRepo postgres.UserRepository
	tokens   *auth.TokenManager
	hasher   *auth.PasswordHasher
	mailer   mailer.Service
	bus      events.Publisher
	resetTTL time.Duration
	baseURL  string
}

func NewAuthService(
	userRepo postgres.UserRepository,
	tokens *auth.TokenManager,
	hasher *auth.PasswordHasher,
	mail mailer.Service,
	bus events.Publisher,
	resetTTL time.Duration,
	baseURL string,
) AuthService {
	return &authService{
		userRepo: userRepo,
		tokens:   tokens,
		hasher:   hasher,
		mailer:   mail,
		bus:      bus,
		resetTTL: resetTTL,
		baseURL:  baseURL,
	}
}

func (s *authService) Signup(ctx context.Context, req *domain.SignupRequest) (*domain.User, string, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, "", fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	taken, err := s.userRepo.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to check existing user: %w", err)
	}
	if taken {
		return nil, "", domain.ErrEmailTaken
	}

	// The confirmation field is validation-only and never reaches storage.
	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.userRepo.Create(ctx, req, passwordHash)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	// Welcome email is best effort: a notification failure must not fail
	// the signup.
	accountURL := s.baseURL + "/me"
	go func(email, name string) {
		if err := s.mailer.SendWelcome(email, name, accountURL); err != nil {
			logger.Warn("Failed to send welcome email", "error", err, "email", email)
		}
	}(user.Email, user.Name)

	if err := s.bus.Publish(ctx, events.UserSignedUp, events.UserSignedUpEvent{
		UserID:    user.ID,
		Email:     user.Email,
		Name:      user.Name,
		CreatedAt: user.CreatedAt,
	}); err != nil {
		logger.WarnContext(ctx, "Failed to publish signup event", "error", err, "user_id", user.ID)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	return user, token, nil
}

func (s *authService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.User, string, error) {
	req.Normalize()
	// Missing fields, unknown email, and a wrong password all collapse into
	// one error so the response never reveals which part was wrong.
	if err := req.Validate(); err != nil {
		return nil, "", domain.ErrInvalidCredentials
	}

	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, "", domain.ErrInvalidCredentials
	}

	ok, err := s.hasher.Compare(req.Password, user.PasswordHash)
	if err != nil {
		return nil, "", fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		return nil, "", domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	return user, token, nil
}

// Authenticate resolves a bearer token to a live user. It fails when the
// signature or expiry is bad, when the user no longer exists, or when the
// token predates the user's last password change.
func (s *authService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, domain.ErrUnauthenticated
	}

	user, err := s.userRepo.FindByID(ctx, claims.Sub)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrUnauthenticated
	}

	if claims.IssuedAt == nil || user.PasswordChangedAfter(claims.IssuedAt.Time) {
		return nil, domain.ErrUnauthenticated
	}

	return user, nil
}

func (s *authService) ForgotPassword(ctx context.Context, email string) error {
	// Same normalization as signup and login, so the address matches however
	// the user types it.
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return domain.ErrNotFound
	}

	plaintext, digest, err := auth.NewResetToken()
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}

	if err := s.userRepo.SetResetToken(ctx, user.ID, digest, time.Now().Add(s.resetTTL)); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	resetURL := s.baseURL + "/api/v1/users/reset-password/" + plaintext
	if err := s.mailer.SendPasswordReset(user.Email, user.Name, resetURL); err != nil {
		// Never leave a token redeemable that the user cannot have received.
		if clearErr := s.userRepo.ClearResetToken(ctx, user.ID); clearErr != nil {
			logger.ErrorContext(ctx, "Failed to clear reset token after send failure", "error", clearErr, "user_id", user.ID)
		}
		return fmt.Errorf("%w: %v", domain.ErrEmailDelivery, err)
	}

	return nil
}

func (s *authService) ResetPassword(ctx context.Context, token string, req *domain.ResetPasswordRequest) (*domain.User, string, error) {
	if err := req.Validate(); err != nil {
		return nil, "", fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	user, err := s.userRepo.FindByResetTokenHash(ctx, auth.HashResetToken(token))
	if err != nil {
		return nil, "", fmt.Errorf("failed to look up reset token: %w", err)
	}
	if user == nil {
		return nil, "", domain.ErrInvalidResetToken
	}

	freshToken, err := s.changePassword(ctx, user, req.Password)
	if err != nil {
		return nil, "", err
	}

	if err := s.bus.Publish(ctx, events.UserPasswordReset, events.UserPasswordResetEvent{
		UserID:  user.ID,
		Email:   user.Email,
		ResetAt: time.Now(),
	}); err != nil {
		logger.WarnContext(ctx, "Failed to publish password reset event", "error", err, "user_id", user.ID)
	}

	return user, freshToken, nil
}

func (s *authService) UpdatePassword(ctx context.Context, userID int64, req *domain.UpdatePasswordRequest) (*domain.User, string, error) {
	if err := req.Validate(); err != nil {
		return nil, "", fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, "", domain.ErrUnauthenticated
	}

	ok, err := s.hasher.Compare(req.PasswordCurrent, user.PasswordHash)
	if err != nil {
		return nil, "", fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		return nil, "", domain.ErrInvalidCredentials
	}

	freshToken, err := s.changePassword(ctx, user, req.Password)
	if err != nil {
		return nil, "", err
	}

	return user, freshToken, nil
}

// changePassword hashes and stores the new password, stamps the change time,
// and issues a replacement token. The stamp is backdated one second so the
// token issued here postdates the change and stays valid.
func (s *authService) changePassword(ctx context.Context, user *domain.User, password string) (string, error) {
	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	changedAt := time.Now().Add(-time.Second)
	if err := s.userRepo.UpdatePassword(ctx, user.ID, passwordHash, changedAt); err != nil {
		return "", fmt.Errorf("failed to update password: %w", err)
	}
	user.PasswordHash = passwordHash
	user.PasswordChangedAt = &changedAt
	user.PasswordResetToken = nil
	user.PasswordResetExp = nil

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %w", err)
	}
	return token, nil
}
