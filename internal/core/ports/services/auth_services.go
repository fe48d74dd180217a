package services

import (
	"context"

	"github.com/SscSPs/koperasi_backend/internal/core/domain"
	"github.com/SscSPs/koperasi_backend/internal/dto"
)

// AuthSvcFacade authenticates users and provisions new ones.
type AuthSvcFacade interface {
	// Login checks the credentials and issues a JWT carrying the user's roles.
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)

	// CreateUser stores a user with a bcrypt-hashed password.
	CreateUser(ctx context.Context, req dto.CreateUserRequest, createdBy string) (*domain.User, error)
}
