package service

import (
	"context"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"rifas-el-negro-backend/internal/common/auth"
	apperrors "rifas-el-negro-backend/internal/common/errors"
	"rifas-el-negro-backend/internal/common/logger"
	"rifas-el-negro-backend/internal/features/user/models"
	"rifas-el-negro-backend/internal/features/user/repository"
)

type UserService interface {
	Register(ctx context.Context, input models.RegisterInput) (*models.UserResponse, error)
	// Login verifies credentials and returns the user plus a signed token.
	Login(ctx context.Context, input models.LoginInput) (*models.UserResponse, string, error)
	Get(ctx context.Context, id int64) (*models.UserResponse, error)
}

type userService struct {
	repo      repository.UserRepository
	jwtSecret string
	tokenTTL  time.Duration
}

func NewUserService(repo repository.UserRepository, jwtSecret string, tokenTTL time.Duration) UserService {
	return &userService{
		repo:      repo,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
	}
}

func (s *userService) Register(ctx context.Context, input models.RegisterInput) (*models.UserResponse, error) {
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))
	if input.Email == "" || input.Password == "" || input.FirstName == "" || input.LastName == "" || input.Cedula == "" {
		return nil, apperrors.NewValidationError("Todos los campos son requeridos")
	}
	if len(input.Password) < 6 {
		return nil, apperrors.NewValidationError("La contraseña debe tener al menos 6 caracteres")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to hash password")
	}

	user := &models.User{
		Email:        input.Email,
		PasswordHash: string(hash),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Phone:        input.Phone,
		Cedula:       input.Cedula,
		Role:         models.RoleUser,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	logger.Info().Int64("user_id", user.ID).Str("email", user.Email).Msg("User registered")

	return user.ToResponse(), nil
}

func (s *userService) Login(ctx context.Context, input models.LoginInput) (*models.UserResponse, string, error) {
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))
	if input.Email == "" || input.Password == "" {
		return nil, "", apperrors.NewValidationError("Correo y contraseña son requeridos")
	}

	user, err := s.repo.GetByEmail(ctx, input.Email)
	if err != nil {
		if apperrors.HasCode(err, apperrors.ErrCodeNotFound) {
			return nil, "", apperrors.NewUnauthorizedError("Credenciales inválidas")
		}
		return nil, "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)) != nil {
		return nil, "", apperrors.NewUnauthorizedError("Credenciales inválidas")
	}

	token, err := auth.CreateToken(s.jwtSecret, user.ID, user.Email, user.Role, s.tokenTTL)
	if err != nil {
		return nil, "", apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to sign token")
	}

	logger.Info().Int64("user_id", user.ID).Msg("User logged in")

	return user.ToResponse(), token, nil
}

func (s *userService) Get(ctx context.Context, id int64) (*models.UserResponse, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return user.ToResponse(), nil
}
