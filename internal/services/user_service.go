package services

import (
	"context"

	"pack-backend/internal/apperrors"
	"pack-backend/internal/auth"
	"pack-backend/internal/models"
	"pack-backend/internal/repositories"
)

type UserService struct {
	Repo       *repositories.UserRepository
	JWTManager *auth.JWTManager
}

func NewUserService(repo *repositories.UserRepository, jwtManager *auth.JWTManager) *UserService {
	return &UserService{Repo: repo, JWTManager: jwtManager}
}

func (s *UserService) Signup(ctx context.Context, req *models.SignupRequest) (*models.User, error) {
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return nil, apperrors.InvalidState("name, email and password are required")
	}

	role := req.Role
	if role == "" {
		role = "operator"
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.IOFailure(err, "failed to hash password")
	}

	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}

	if err := s.Repo.Create(ctx, user); err != nil {
		return nil, apperrors.IOFailure(err, "failed to create user")
	}
	return user, nil
}

func (s *UserService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	user, err := s.Repo.GetByEmail(ctx, req.Email)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, apperrors.NotFound("invalid email or password")
		}
		return nil, apperrors.IOFailure(err, "failed to load user")
	}

	if !user.IsActive {
		return nil, apperrors.InvalidState("account is suspended")
	}

	if !auth.VerifyPassword(user.PasswordHash, req.Password) {
		return nil, apperrors.NotFound("invalid email or password")
	}

	token, err := s.JWTManager.GenerateToken(user)
	if err != nil {
		return nil, apperrors.IOFailure(err, "failed to issue token")
	}

	return &models.LoginResponse{Token: token, User: user}, nil
}
