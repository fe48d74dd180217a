package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/koperasi_backend/internal/apperrors"
	"github.com/SscSPs/koperasi_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/koperasi_backend/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/koperasi_backend/internal/core/ports/services"
	"github.com/SscSPs/koperasi_backend/internal/dto"
	"github.com/SscSPs/koperasi_backend/internal/platform/config"
	"github.com/SscSPs/koperasi_backend/internal/utils"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// authService checks credentials against stored bcrypt hashes and issues JWT access tokens.
type authService struct {
	BaseService
	cfg      *config.Config
	userRepo portsrepo.UserRepositoryFacade
	validate *validator.Validate
}

// NewAuthService creates a new instance of authService.
func NewAuthService(cfg *config.Config, userRepo portsrepo.UserRepositoryFacade) portssvc.AuthSvcFacade {
	return &authService{
		cfg:      cfg,
		userRepo: userRepo,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Ensure authService implements the AuthSvcFacade interface
var _ portssvc.AuthSvcFacade = (*authService)(nil)

// Login checks the credentials and issues a JWT carrying the user's roles.
// Unknown email, inactive user and wrong password all yield the same error.
func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.userRepo.FindUserByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, s.sanitize(ctx, err, "Login")
	}
	if !user.IsActive || !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		s.LogInfo(ctx, "Rejected login attempt", slog.String("user_id", user.UserID))
		return nil, domain.ErrInvalidCredentials
	}

	roles := make([]string, len(user.Roles))
	for i, r := range user.Roles {
		roles[i] = string(r)
	}

	expiresAt := s.Now().Add(s.cfg.JWTExpiryDuration)
	token, err := utils.GenerateJWT(user.UserID, roles, s.cfg.JWTSecret, s.cfg.JWTExpiryDuration, s.cfg.JWTIssuer)
	if err != nil {
		return nil, s.sanitize(ctx, err, "Login", slog.String("user_id", user.UserID))
	}

	return &dto.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		UserID:    user.UserID,
		Roles:     roles,
	}, nil
}

// CreateUser stores a user with a bcrypt-hashed password.
func (s *authService) CreateUser(ctx context.Context, req dto.CreateUserRequest, createdBy string) (*domain.User, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, s.sanitize(ctx, err, "CreateUser")
	}

	id := uuid.NewString()
	if createdBy == "" {
		createdBy = id
	}
	user := domain.User{
		UserID:       id,
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Name:         req.Name,
		PasswordHash: hash,
		Roles:        domain.ParseRoles(req.Roles),
		IsActive:     true,
		AuditFields:  domain.NewAuditFields(createdBy, s.Now()),
	}
	if err := s.userRepo.SaveUser(ctx, user); err != nil {
		return nil, s.sanitize(ctx, err, "CreateUser", slog.String("email", user.Email))
	}

	s.LogInfo(ctx, "User created", slog.String("user_id", user.UserID), slog.Any("roles", req.Roles))
	return &user, nil
}
