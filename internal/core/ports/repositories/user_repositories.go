package repositories

import (
	"context"

	"github.com/SscSPs/koperasi_backend/internal/core/domain"
)

// UserReader defines read operations for user data
type UserReader interface {
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)
	// FindUsersByRole lists active users holding role.
	FindUsersByRole(ctx context.Context, role domain.Role) ([]domain.User, error)
}

// UserWriter defines write operations for user data
type UserWriter interface {
	SaveUser(ctx context.Context, user domain.User) error
	// AddUserRole grants role to a user; granting a role already held is a no-op.
	AddUserRole(ctx context.Context, userID string, role domain.Role) error
}

// UserRepositoryFacade combines all user-related repository interfaces
type UserRepositoryFacade interface {
	UserReader
	UserWriter
}
