package services

import (
	"context"

	"github.com/SscSPs/koperasi_backend/internal/core/domain"
	"github.com/SscSPs/koperasi_backend/internal/dto"
)

// AccountReaderSvc defines read operations for member accounts
type AccountReaderSvc interface {
	// ListMyAccounts returns every account owned by ownerID.
	ListMyAccounts(ctx context.Context, ownerID string) ([]domain.Account, error)

	// ListAccountTransactions pages through an account's ledger. Allowed for the owner and DIVISI_SIMPAN_PINJAM.
	ListAccountTransactions(ctx context.Context, accountID string, viewer domain.Actor, params dto.ListParams) ([]domain.Transaction, *string, error)
}

// AccountWriterSvc defines write operations for member accounts
type AccountWriterSvc interface {
	// OpenAccount opens a savings or loan account for a member. Allowed for DIVISI_SIMPAN_PINJAM only.
	OpenAccount(ctx context.Context, req dto.OpenAccountRequest, actor domain.Actor) (*domain.Account, error)
}

// AccountSvcFacade combines all account-related service interfaces
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
}
