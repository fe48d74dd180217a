package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/koperasi_backend/internal/apperrors"
	"github.com/SscSPs/koperasi_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/koperasi_backend/internal/core/ports/repositories"
	"github.com/SscSPs/koperasi_backend/internal/models"
	"github.com/SscSPs/koperasi_backend/internal/utils/mapping"
	"github.com/SscSPs/koperasi_backend/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
)

const accountColumns = `account_id, owner_id, account_type, balance, status, tenor_months, interest_rate,
	start_date, maturity_date, created_at, created_by, last_updated_at, last_updated_by`

type PgxAccountRepository struct {
	BaseRepository
}

// Ensure PgxAccountRepository implements portsrepo.AccountRepositoryFacade
var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

func (r *PgxAccountRepository) findOne(ctx context.Context, query string, args ...any) (*domain.Account, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapError(err, "account")
	}
	m, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[models.Account])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, r.mapError(err, "account")
	}
	acc := mapping.ToDomainAccount(m)
	return &acc, nil
}

// FindAccountByID retrieves an account by its ID.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	return r.findOne(ctx, `SELECT `+accountColumns+` FROM accounts WHERE account_id = $1`, accountID)
}

// FindAccountByIDForUpdate selects an account and locks it for update.
func (r *PgxAccountRepository) FindAccountByIDForUpdate(ctx context.Context, accountID string) (*domain.Account, error) {
	return r.findOne(ctx, `SELECT `+accountColumns+` FROM accounts WHERE account_id = $1 FOR UPDATE`, accountID)
}

// FindAccountByOwnerAndTypeForUpdate locks the owner's active account of accountType.
func (r *PgxAccountRepository) FindAccountByOwnerAndTypeForUpdate(ctx context.Context, ownerID string, accountType domain.AccountType) (*domain.Account, error) {
	return r.findOne(ctx, `SELECT `+accountColumns+` FROM accounts
		WHERE owner_id = $1 AND account_type = $2 AND status = 'ACTIVE'
		ORDER BY created_at LIMIT 1 FOR UPDATE`, ownerID, string(accountType))
}

// FindAccountsByOwner retrieves all accounts of a member.
func (r *PgxAccountRepository) FindAccountsByOwner(ctx context.Context, ownerID string) ([]domain.Account, error) {
	rows, err := r.db.Query(ctx, `SELECT `+accountColumns+` FROM accounts WHERE owner_id = $1 ORDER BY account_type, created_at`, ownerID)
	if err != nil {
		return nil, r.mapError(err, "accounts")
	}
	ms, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Account])
	if err != nil {
		return nil, r.mapError(err, "accounts")
	}
	return mapping.ToDomainAccountSlice(ms), nil
}

// SaveAccount inserts a new account.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	m := mapping.ToModelAccount(account)
	_, err := r.db.Exec(ctx, `INSERT INTO accounts (`+accountColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		m.AccountID, m.OwnerID, m.AccountType, m.Balance, m.Status, m.TenorMonths, m.InterestRate,
		m.StartDate, m.MaturityDate, m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy)
	if err := r.mapError(err, "account "+m.AccountID); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return domain.ErrDuplicateAccount
		}
		return err
	}
	return nil
}

// UpdateAccount writes back balance, status and deposit terms.
func (r *PgxAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	m := mapping.ToModelAccount(account)
	tag, err := r.db.Exec(ctx, `UPDATE accounts SET balance = $2, status = $3, tenor_months = $4, interest_rate = $5,
			start_date = $6, maturity_date = $7, last_updated_at = $8, last_updated_by = $9
		WHERE account_id = $1`,
		m.AccountID, m.Balance, m.Status, m.TenorMonths, m.InterestRate,
		m.StartDate, m.MaturityDate, m.LastUpdatedAt, m.LastUpdatedBy)
	if err != nil {
		return r.mapError(err, "account "+m.AccountID)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

type PgxTransactionRepository struct {
	BaseRepository
}

var _ portsrepo.TransactionRepository = (*PgxTransactionRepository)(nil)

// AppendTransaction inserts a ledger entry.
func (r *PgxTransactionRepository) AppendTransaction(ctx context.Context, txn domain.Transaction) error {
	m := mapping.ToModelTransaction(txn)
	_, err := r.db.Exec(ctx, `INSERT INTO transactions
		(transaction_id, account_id, workflow_instance_id, transaction_type, amount, running_balance, authorized_by, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		m.TransactionID, m.AccountID, m.WorkflowInstanceID, m.TransactionType, m.Amount, m.RunningBalance,
		m.AuthorizedBy, m.Notes, m.CreatedAt)
	return r.mapError(err, "transaction "+m.TransactionID)
}

// ListTransactionsByAccountID lists an account's entries, newest first.
func (r *PgxTransactionRepository) ListTransactionsByAccountID(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	query := `SELECT transaction_id, account_id, workflow_instance_id, transaction_type, amount, running_balance,
			authorized_by, notes, created_at
		FROM transactions WHERE account_id = $1`
	args := []any{accountID}
	if nextToken != nil && *nextToken != "" {
		createdAt, id, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		query += ` AND (created_at, transaction_id) < ($2, $3)`
		args = append(args, createdAt, id)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC, transaction_id DESC LIMIT %d`, limit+1)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, r.mapError(err, "transactions")
	}
	ms, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Transaction])
	if err != nil {
		return nil, nil, r.mapError(err, "transactions")
	}

	txns := mapping.ToDomainTransactionSlice(ms)
	var next *string
	if len(txns) > limit {
		txns = txns[:limit]
		last := txns[limit-1]
		token := pagination.EncodeToken(last.CreatedAt, last.TransactionID)
		next = &token
	}
	return txns, next, nil
}
