package auth

import (
	"context"

	"github.com/dangkhoa18052004/hospital-api/internal/model"
	"github.com/dangkhoa18052004/hospital-api/internal/repository"
	"github.com/dangkhoa18052004/hospital-api/pkg/auth"
	"github.com/dangkhoa18052004/hospital-api/pkg/errors"
	"github.com/dangkhoa18052004/hospital-api/pkg/security"
)

type Service struct {
	users  repository.UserRepository
	hasher security.PasswordVerifier
	tokens auth.JWTService
}

func NewService(users repository.UserRepository, hasher security.PasswordVerifier, tokens auth.JWTService) *Service {
	return &Service{users: users, hasher: hasher, tokens: tokens}
}

// Login verifies credentials and issues an access token. Wrong email and
// wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	if user == nil || !user.IsActive {
		return nil, errors.NewUnauthorized(nil)
	}

	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		return nil, errors.NewUnauthorized(err)
	}

	token, expiresAt, err := s.tokens.GenerateAccessToken(user)
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID); err != nil {
		return nil, errors.NewInternal(err)
	}

	return &model.LoginResponse{
		Token:     token,
		UserID:    user.ID,
		Role:      user.Role,
		ExpiresAt: expiresAt,
	}, nil
}
