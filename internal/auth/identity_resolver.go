package auth

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	apperrors "coworking/internal/errors"
	"coworking/internal/model"
	"coworking/internal/repository"
)

// IdentityResolver turns a bearer token into the active user it was issued to.
type IdentityResolver struct {
	tokens *TokenService
	users  repository.UserRepository
}

// NewIdentityResolver creates a resolver over the token service and user store.
func NewIdentityResolver(tokens *TokenService, users repository.UserRepository) *IdentityResolver {
	return &IdentityResolver{tokens: tokens, users: users}
}

// Resolve verifies the token and loads its subject. Verification failures and
// unknown subjects are authentication failures; a deactivated account yields
// ErrUserInactive.
func (r *IdentityResolver) Resolve(ctx context.Context, token string) (*model.User, error) {
	identity, err := r.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	user, err := r.users.FindByEmail(ctx, identity.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	if !user.IsActive {
		return nil, apperrors.ErrUserInactive
	}
	return user, nil
}

// Tokens exposes the underlying token service.
func (r *IdentityResolver) Tokens() *TokenService {
	return r.tokens
}
