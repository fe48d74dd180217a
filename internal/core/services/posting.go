package services

import (
	"context"
	"time"

	"github.com/SscSPs/koperasi_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/koperasi_backend/internal/core/ports/repositories"
	"github.com/SscSPs/koperasi_backend/internal/utils/accounting"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// posting is one balance change and the ledger entry recording it.
type posting struct {
	account    *domain.Account
	txnType    domain.TransactionType
	amount     decimal.Decimal
	instanceID *string
	actorID    string
	notes      string
}

// post applies p to the (already locked) account, writes the account back and appends the
// ledger entry. The account passed in is updated in place.
func post(ctx context.Context, repos portsrepo.RepositoryProvider, p posting, now time.Time) error {
	if !p.account.IsActive() {
		return domain.ErrAccountInactive
	}
	balance, err := accounting.ApplyPosting(*p.account, p.txnType, p.amount)
	if err != nil {
		return err
	}

	p.account.Balance = balance
	p.account.Touch(p.actorID, now)
	if err := repos.AccountRepo.UpdateAccount(ctx, *p.account); err != nil {
		return err
	}

	return repos.TransactionRepo.AppendTransaction(ctx, domain.Transaction{
		TransactionID:      uuid.NewString(),
		AccountID:          p.account.AccountID,
		WorkflowInstanceID: p.instanceID,
		TransactionType:    p.txnType,
		Amount:             p.amount,
		RunningBalance:     balance,
		AuthorizedBy:       p.actorID,
		Notes:              p.notes,
		CreatedAt:          now,
	})
}

// openAccount stores a new account for ownerID and, when opening is positive, credits it.
func openAccount(ctx context.Context, repos portsrepo.RepositoryProvider, acc domain.Account, opening decimal.Decimal, instanceID *string, actorID, notes string, now time.Time) (*domain.Account, error) {
	acc.AccountID = uuid.NewString()
	acc.Balance = decimal.Zero
	acc.Status = domain.AccountActive
	acc.AuditFields = domain.NewAuditFields(actorID, now)
	if err := repos.AccountRepo.SaveAccount(ctx, acc); err != nil {
		return nil, err
	}
	if opening.IsPositive() {
		txnType := domain.Credit
		if acc.AccountType == domain.Pinjaman {
			// A loan's opening balance is the disbursed principal.
			txnType = domain.Debit
		}
		if err := post(ctx, repos, posting{account: &acc, txnType: txnType, amount: opening, instanceID: instanceID, actorID: actorID, notes: notes}, now); err != nil {
			return nil, err
		}
	}
	return &acc, nil
}
