package repositories

import (
	"context"

	"github.com/SscSPs/koperasi_backend/internal/core/domain"
)

// AccountReader defines read operations for account data
type AccountReader interface {
	// FindAccountByID retrieves a specific account by its unique identifier.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// FindAccountsByOwner retrieves all accounts of a member.
	FindAccountsByOwner(ctx context.Context, ownerID string) ([]domain.Account, error)
}

// AccountWriter defines write operations for account data
type AccountWriter interface {
	// SaveAccount persists a new account.
	SaveAccount(ctx context.Context, account domain.Account) error

	// UpdateAccount updates balance, status and deposit terms of an account.
	UpdateAccount(ctx context.Context, account domain.Account) error
}

// AccountTransactionSupport defines operations that support posting within a transaction
type AccountTransactionSupport interface {
	// FindAccountByIDForUpdate selects an account and locks it for update.
	FindAccountByIDForUpdate(ctx context.Context, accountID string) (*domain.Account, error)

	// FindAccountByOwnerAndTypeForUpdate selects the owner's active account of a type and locks it.
	FindAccountByOwnerAndTypeForUpdate(ctx context.Context, ownerID string, accountType domain.AccountType) (*domain.Account, error)
}

// AccountRepositoryFacade combines all account-related repository interfaces
// This is a facade for clients that need access to all operations
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
	AccountTransactionSupport
}

// TransactionRepository stores the append-only ledger entries.
type TransactionRepository interface {
	// AppendTransaction inserts a ledger entry. Entries are never updated or deleted.
	AppendTransaction(ctx context.Context, txn domain.Transaction) error

	// ListTransactionsByAccountID lists an account's entries, newest first.
	ListTransactionsByAccountID(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.Transaction, *string, error)
}
