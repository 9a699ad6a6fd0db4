package ports

import (
	"context"
	"time"

	"github.com/taskflow/task-api/internal/core/domain"
)

// RegisterInput carries normalized registration fields.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// UpdateProfileInput carries the optional profile fields. Nil means unchanged.
type UpdateProfileInput struct {
	Name     *string
	Email    *string
	Password *string
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	// Authenticate resolves a raw session token to the calling identity.
	Authenticate(ctx context.Context, token string) (*domain.Identity, error)
	Logout(ctx context.Context, identity domain.Identity) error
	CurrentUser(ctx context.Context, userID string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*domain.User, error)
}
