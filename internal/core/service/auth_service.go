package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskflow/task-api/internal/core/domain"
	"github.com/taskflow/task-api/internal/core/ports"
)

// AuthService implements registration, login, session resolution and
// profile updates.
type AuthService struct {
	repo    ports.UserRepository
	revoker ports.TokenRevoker
	tokens  *TokenManager
	log     zerolog.Logger
}

// NewAuthService wires the user store with a token manager. revoker may be nil,
// in which case logout is a no-op on the server side.
func NewAuthService(repo ports.UserRepository, revoker ports.TokenRevoker, jwtSecret string, tokenTTL time.Duration, log zerolog.Logger) *AuthService {
	return &AuthService{
		repo:    repo,
		revoker: revoker,
		tokens:  NewTokenManager(jwtSecret, tokenTTL),
		log:     log,
	}
}

func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	email := domain.NormalizeEmail(in.Email)

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("register: %w", err)
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	created, err := s.repo.Create(ctx, &domain.User{
		Name:         in.Name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return nil, err
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	s.log.Info().Str("user_id", created.ID).Msg("user registered")
	return s.session(created)
}

// Login checks credentials. Unknown email and wrong password produce the same
// error, and both pay for one bcrypt comparison.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	user, err := s.repo.FindByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(password))
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	s.log.Debug().Str("user_id", user.ID).Msg("user logged in")
	return s.session(user)
}

// Authenticate resolves a raw token to an Identity.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.Identity, error) {
	if token == "" {
		return nil, domain.ErrNotAuthorized
	}

	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}

	if s.revoker != nil && claims.ID != "" {
		revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
		if err != nil {
			s.log.Warn().Err(err).Str("token_id", claims.ID).Msg("revocation check failed, accepting token")
		} else if revoked {
			return nil, domain.ErrTokenInvalid
		}
	}

	user, err := s.repo.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrNoUserForToken
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	identity := &domain.Identity{User: user.Public(), TokenID: claims.ID}
	if claims.ExpiresAt != nil {
		identity.ExpiresAt = claims.ExpiresAt.Time
	}
	return identity, nil
}

// Logout revokes the identity's token for the rest of its lifetime.
func (s *AuthService) Logout(ctx context.Context, identity domain.Identity) error {
	if s.revoker == nil || identity.TokenID == "" {
		return nil
	}
	ttl := time.Until(identity.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := s.revoker.Revoke(ctx, identity.TokenID, ttl); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	s.log.Info().Str("user_id", identity.UserID()).Msg("user logged out")
	return nil
}

func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.Public(), nil
}

// UpdateProfile applies each provided field. Email uniqueness is re-checked
// only when the normalized address actually changes.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, in ports.UpdateProfileInput) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	changed := false
	if in.Name != nil {
		user.Name = *in.Name
		changed = true
	}
	if in.Email != nil {
		email := domain.NormalizeEmail(*in.Email)
		if email != user.Email {
			other, err := s.repo.FindByEmail(ctx, email)
			switch {
			case err == nil && other.ID != user.ID:
				return nil, domain.ErrUserExists
			case err != nil && !errors.Is(err, domain.ErrUserNotFound):
				return nil, fmt.Errorf("update profile: %w", err)
			}
			user.Email = email
			changed = true
		}
	}
	if in.Password != nil {
		hash, err := hashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
		changed = true
	}

	if !changed {
		return user.Public(), nil
	}

	user.UpdatedAt = time.Now().UTC()
	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) || errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}

	s.log.Info().Str("user_id", userID).Msg("profile updated")
	return updated.Public(), nil
}

func (s *AuthService) session(user *domain.User) (*ports.AuthResult, error) {
	token, claims, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &ports.AuthResult{
		User:      user.Public(),
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// hashPassword rejects passwords bcrypt would refuse as a validation error
// rather than letting them surface as a server error.
func hashPassword(password string) (string, error) {
	if len(password) > domain.MaxPasswordBytes {
		return "", domain.NewValidationError("password", "Password cannot exceed 72 bytes", "")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

var (
	dummyOnce sync.Once
	dummy     []byte
)

// dummyHash is compared against when the email is unknown so that both login
// failure paths cost the same.
func dummyHash() []byte {
	dummyOnce.Do(func() {
		dummy, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)
	})
	return dummy
}
