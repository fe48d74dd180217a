package pgsql

import (
	"context"
	"errors"

	"github.com/SscSPs/koperasi_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/koperasi_backend/internal/core/ports/repositories"
	"github.com/SscSPs/koperasi_backend/internal/models"
	"github.com/SscSPs/koperasi_backend/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
)

const userSelect = `SELECT u.user_id, u.email, u.name, u.password_hash, u.is_active,
		COALESCE(array_agg(r.role ORDER BY r.role) FILTER (WHERE r.role IS NOT NULL), '{}') AS roles,
		u.created_at, u.created_by, u.last_updated_at, u.last_updated_by
	FROM users u LEFT JOIN user_roles r ON r.user_id = u.user_id`

const userGroupBy = ` GROUP BY u.user_id`

type PgxUserRepository struct {
	BaseRepository
}

var _ portsrepo.UserRepositoryFacade = (*PgxUserRepository)(nil)

func (r *PgxUserRepository) findOne(ctx context.Context, query string, args ...any) (*domain.User, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapError(err, "user")
	}
	m, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[models.User])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, r.mapError(err, "user")
	}
	user := mapping.ToDomainUser(m)
	return &user, nil
}

func (r *PgxUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	return r.findOne(ctx, userSelect+` WHERE u.user_id = $1`+userGroupBy, userID)
}

// FindUserByEmail matches case-insensitively, like the unique index.
func (r *PgxUserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, userSelect+` WHERE lower(u.email) = lower($1)`+userGroupBy, email)
}

// FindUsersByRole lists active users holding role.
func (r *PgxUserRepository) FindUsersByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	query := userSelect + ` WHERE u.is_active AND EXISTS (
			SELECT 1 FROM user_roles hr WHERE hr.user_id = u.user_id AND hr.role = $1)` + userGroupBy + ` ORDER BY u.email`
	rows, err := r.db.Query(ctx, query, string(role))
	if err != nil {
		return nil, r.mapError(err, "users")
	}
	ms, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.User])
	if err != nil {
		return nil, r.mapError(err, "users")
	}
	return mapping.ToDomainUserSlice(ms), nil
}

// SaveUser inserts the user and its roles.
func (r *PgxUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	m := mapping.ToModelUser(user)
	_, err := r.db.Exec(ctx, `INSERT INTO users
		(user_id, email, name, password_hash, is_active, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		m.UserID, m.Email, m.Name, m.PasswordHash, m.IsActive, m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy)
	if err != nil {
		return r.mapError(err, "user "+m.Email)
	}
	for _, role := range user.Roles {
		if err := r.AddUserRole(ctx, user.UserID, role); err != nil {
			return err
		}
	}
	return nil
}

// AddUserRole grants role; granting a role already held is a no-op.
func (r *PgxUserRepository) AddUserRole(ctx context.Context, userID string, role domain.Role) error {
	_, err := r.db.Exec(ctx, `INSERT INTO user_roles (user_id, role) VALUES ($1, $2) ON CONFLICT DO NOTHING`, userID, string(role))
	return r.mapError(err, "user role")
}
