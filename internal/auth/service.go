package auth

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/hermes-renovation/hermes/internal/authz"
	"github.com/hermes-renovation/hermes/internal/platform/httpx"
	"github.com/hermes-renovation/hermes/internal/shared"
)

// ActivityRecorder captures account activity entries (login, register).
type ActivityRecorder interface {
	Record(ctx context.Context, userID int64, action, details, ip string) error
}

// Service wraps authentication business rules.
type Service struct {
	repo     Repository
	activity ActivityRecorder
}

// NewService constructs a new Service.
func NewService(repo Repository, activity ActivityRecorder) *Service {
	return &Service{repo: repo, activity: activity}
}

// RegisterInput carries a registration request.
type RegisterInput struct {
	Email           string
	FullName        string
	Phone           string
	Password        string
	PasswordConfirm string
	Role            string
}

// Register creates a new account. A requested ADMIN role is downgraded to
// the default role instead of failing the request.
func (s *Service) Register(ctx context.Context, in RegisterInput, ip string) (*User, error) {
	if in.Password != in.PasswordConfirm {
		return nil, fmt.Errorf("%w: password confirmation does not match", httpx.ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.Create(ctx, &User{
		Email:        in.Email,
		FullName:     in.FullName,
		Phone:        in.Phone,
		Role:         authz.SanitizeRole(in.Role),
		PasswordHash: string(hash),
	})
	if err != nil {
		return nil, err
	}

	if s.activity != nil {
		_ = s.activity.Record(ctx, user.ID, "register", "account created", ip)
	}
	return user, nil
}

// Authenticate validates email/password credentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return user, nil
}

// RecordLogin stores login metadata and an activity entry.
func (s *Service) RecordLogin(ctx context.Context, user *User, ip string) {
	_ = s.repo.RecordLogin(ctx, user.ID, ip, time.Now())
	if s.activity != nil {
		_ = s.activity.Record(ctx, user.ID, "login", "", ip)
	}
}

// CurrentUser loads the account for an authenticated principal.
func (s *Service) CurrentUser(ctx context.Context, userID int64) (*User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, httpx.ErrNotFound
	}
	return user, nil
}

// UpdateCurrentUser patches caller-editable account fields.
func (s *Service) UpdateCurrentUser(ctx context.Context, userID int64, fullName, phone, avatarURL string) (*User, error) {
	return s.repo.UpdateProfileFields(ctx, userID, fullName, phone, avatarURL)
}
