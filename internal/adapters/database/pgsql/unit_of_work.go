package pgsql

import (
	"context"
	"log/slog"

	"github.com/SscSPs/koperasi_backend/internal/core/ports/repositories"
	"github.com/SscSPs/koperasi_backend/internal/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
)

type unitOfWork struct {
	pool *pgxpool.Pool
}

// NewUnitOfWork returns a UnitOfWork running each call in its own pgx transaction.
func NewUnitOfWork(pool *pgxpool.Pool) repositories.UnitOfWork {
	return &unitOfWork{pool: pool}
}

var _ repositories.UnitOfWork = (*unitOfWork)(nil)

func (u *unitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context, repos repositories.RepositoryProvider) error) (err error) {
	tx, err := begin(ctx, u.pool)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			_ = rollback(ctx, tx)
			panic(p)
		}
		if err != nil {
			if rbErr := rollback(ctx, tx); rbErr != nil {
				middleware.GetLoggerFromCtx(ctx).Error("rollback failed", slog.String("error", rbErr.Error()))
			}
		}
	}()

	if err = fn(ctx, NewRepositoryProvider(tx)); err != nil {
		return err
	}
	return commit(ctx, tx)
}
