package services

import (
	"context"
	"log/slog"

	"github.com/SscSPs/koperasi_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/koperasi_backend/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/koperasi_backend/internal/core/ports/services"
	"github.com/SscSPs/koperasi_backend/internal/dto"
	"github.com/SscSPs/koperasi_backend/internal/utils/pagination"
)

// accountService serves member account lookups and manual account opening.
// Principal savings and deposits are only ever opened by their workflows.
type accountService struct {
	BaseService
	uow   portsrepo.UnitOfWork
	repos portsrepo.RepositoryProvider
}

// NewAccountService creates a new account service.
func NewAccountService(uow portsrepo.UnitOfWork, repos portsrepo.RepositoryProvider) portssvc.AccountSvcFacade {
	return &accountService{uow: uow, repos: repos}
}

// Ensure accountService implements the AccountSvcFacade interface
var _ portssvc.AccountSvcFacade = (*accountService)(nil)

func (s *accountService) ListMyAccounts(ctx context.Context, ownerID string) ([]domain.Account, error) {
	accounts, err := s.repos.AccountRepo.FindAccountsByOwner(ctx, ownerID)
	if err != nil {
		return nil, s.sanitize(ctx, err, "ListMyAccounts", slog.String("owner_id", ownerID))
	}
	return accounts, nil
}

func (s *accountService) ListAccountTransactions(ctx context.Context, accountID string, viewer domain.Actor, params dto.ListParams) ([]domain.Transaction, *string, error) {
	acc, err := s.repos.AccountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, nil, s.sanitize(ctx, err, "ListAccountTransactions", slog.String("account_id", accountID))
	}
	if acc.OwnerID != viewer.UserID && !viewer.HasAnyRole(domain.RoleDivisiSimpanPinjam) {
		return nil, nil, domain.ErrAccountAccessForbidden
	}

	limit := pagination.NormalizeLimit(params.Limit, defaultPageSize, maxPageSize)
	txns, next, err := s.repos.TransactionRepo.ListTransactionsByAccountID(ctx, accountID, limit, params.NextToken)
	if err != nil {
		return nil, nil, s.sanitize(ctx, err, "ListAccountTransactions", slog.String("account_id", accountID))
	}
	return txns, next, nil
}

func (s *accountService) OpenAccount(ctx context.Context, req dto.OpenAccountRequest, actor domain.Actor) (*domain.Account, error) {
	if !actor.HasAnyRole(domain.RoleDivisiSimpanPinjam) {
		return nil, domain.ErrAccountOpenForbidden
	}
	if req.OwnerID == "" {
		return nil, domain.ErrAccountOwnerMissing
	}
	switch req.AccountType {
	case domain.SimpananWajib, domain.SimpananSukarela, domain.Pinjaman:
	default:
		return nil, domain.ErrInvalidAccountType
	}
	if req.OpeningBalance.IsNegative() {
		return nil, domain.ErrAmountNotPositive
	}

	now := s.Now()
	var acc *domain.Account
	err := s.uow.WithinTx(ctx, func(ctx context.Context, repos portsrepo.RepositoryProvider) error {
		if _, err := repos.UserRepo.FindUserByID(ctx, req.OwnerID); err != nil {
			return err
		}
		var err error
		acc, err = openAccount(ctx, repos, domain.Account{OwnerID: req.OwnerID, AccountType: req.AccountType},
			req.OpeningBalance, nil, actor.UserID, req.Notes, now)
		return err
	})
	if err != nil {
		return nil, s.sanitize(ctx, err, "OpenAccount",
			slog.String("owner_id", req.OwnerID),
			slog.String("account_type", string(req.AccountType)))
	}

	s.LogInfo(ctx, "Account opened",
		slog.String("account_id", acc.AccountID),
		slog.String("owner_id", acc.OwnerID),
		slog.String("account_type", string(acc.AccountType)),
		slog.String("created_by", actor.UserID))
	return acc, nil
}
