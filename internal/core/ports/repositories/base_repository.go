package repositories

import "context"

// UnitOfWork runs a function inside a single database transaction.
// The RepositoryProvider handed to fn is bound to that transaction: everything
// written through it is committed if fn returns nil and rolled back otherwise.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, repos RepositoryProvider) error) error
}
