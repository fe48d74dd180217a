package services

import (
	"context"
	"errors"
	"time"

	"github.com/SscSPs/koperasi_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/koperasi_backend/internal/core/ports/repositories"
	"github.com/SscSPs/koperasi_backend/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

// workflowPolicy holds what differs between workflow types: the entity preconditions
// checked when a draft is saved or submitted, and the effect of final approval.
// Both run inside the caller's unit of work with locked accounts.
type workflowPolicy interface {
	// Prepare validates inst against current account state and fills in derived fields.
	Prepare(ctx context.Context, repos portsrepo.RepositoryProvider, inst *domain.WorkflowInstance, now time.Time) error

	// Complete applies the financial effect once the last step has been approved.
	Complete(ctx context.Context, repos portsrepo.RepositoryProvider, inst *domain.WorkflowInstance, actorID string, now time.Time) error
}

func newWorkflowPolicies(penaltyRate decimal.Decimal) map[domain.WorkflowType]workflowPolicy {
	return map[domain.WorkflowType]workflowPolicy{
		domain.DepositApplication: depositApplicationPolicy{},
		domain.DepositChange:      depositChangePolicy{},
		domain.DepositWithdrawal:  depositWithdrawalPolicy{penaltyRate: penaltyRate},
		domain.SavingsWithdrawal:  savingsWithdrawalPolicy{},
		domain.LoanRepayment:      loanRepaymentPolicy{},
		domain.MemberApplication:  memberApplicationPolicy{},
	}
}

func requirePositiveAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return domain.ErrAmountNotPositive
	}
	return nil
}

func requireDepositTerms(inst *domain.WorkflowInstance) error {
	if err := requirePositiveAmount(inst.Amount); err != nil {
		return err
	}
	if inst.TenorMonths <= 0 {
		return domain.ErrTenorNotPositive
	}
	if inst.InterestRate.IsNegative() {
		return domain.ErrInterestRateNegative
	}
	return nil
}

// ownedAccount locks the account referenced by inst.TargetAccountID and checks that it
// belongs to the instance owner, has type want and is active. Another member's account
// is reported as not found.
func ownedAccount(ctx context.Context, repos portsrepo.RepositoryProvider, inst *domain.WorkflowInstance, want domain.AccountType) (*domain.Account, error) {
	if inst.TargetAccountID == nil || *inst.TargetAccountID == "" {
		return nil, domain.ErrTargetAccountMissing
	}
	acc, err := repos.AccountRepo.FindAccountByIDForUpdate(ctx, *inst.TargetAccountID)
	if err != nil {
		return nil, err
	}
	if acc.OwnerID != inst.OwnerID {
		return nil, domain.ErrAccountNotFound
	}
	if acc.AccountType != want {
		return nil, domain.ErrAccountTypeMismatch
	}
	if !acc.IsActive() {
		return nil, domain.ErrAccountInactive
	}
	return acc, nil
}

// resolveAccount is ownedAccount, except that a missing target falls back to the owner's
// single active account of type want and records it on inst.
func resolveAccount(ctx context.Context, repos portsrepo.RepositoryProvider, inst *domain.WorkflowInstance, want domain.AccountType) (*domain.Account, error) {
	if inst.TargetAccountID != nil && *inst.TargetAccountID != "" {
		return ownedAccount(ctx, repos, inst, want)
	}
	acc, err := repos.AccountRepo.FindAccountByOwnerAndTypeForUpdate(ctx, inst.OwnerID, want)
	if err != nil {
		return nil, err
	}
	id := acc.AccountID
	inst.TargetAccountID = &id
	return acc, nil
}

func requireMember(ctx context.Context, repos portsrepo.RepositoryProvider, ownerID string) error {
	user, err := repos.UserRepo.FindUserByID(ctx, ownerID)
	if err != nil {
		return err
	}
	if !user.HasRole(domain.RoleAnggota) {
		return domain.ErrNotMember
	}
	return nil
}

// --- DEPOSIT_APPLICATION ---

// depositApplicationPolicy opens a new time deposit funded with the requested amount.
type depositApplicationPolicy struct{}

func (depositApplicationPolicy) Prepare(ctx context.Context, repos portsrepo.RepositoryProvider, inst *domain.WorkflowInstance, _ time.Time) error {
	if err := requireDepositTerms(inst); err != nil {
		return err
	}
	if err := requireMember(ctx, repos, inst.OwnerID); err != nil {
		return err
	}
	// The deposit does not exist yet; the account is created on approval.
	inst.TargetAccountID = nil
	inst.MaturityDate = nil
	if inst.SubmittedAt != nil {
		m := domain.MaturityDate(*inst.SubmittedAt, inst.TenorMonths)
		inst.MaturityDate = &m
	}
	return nil
}

func (depositApplicationPolicy) Complete(ctx context.Context, repos portsrepo.RepositoryProvider, inst *domain.WorkflowInstance, actorID string, now time.Time) error {
	start := now
	if inst.SubmittedAt != nil {
		start = *inst.SubmittedAt
	}
	maturity := domain.MaturityDate(start, inst.TenorMonths)

	acc, err := openAccount(ctx, repos, domain.Account{
		OwnerID:      inst.OwnerID,
		AccountType:  domain.Deposito,
		TenorMonths:  inst.TenorMonths,
		InterestRate: inst.InterestRate,
		StartDate:    &start,
		MaturityDate: &maturity,
	}, inst.Amount, &inst.InstanceID, actorID, "Penempatan deposito "+inst.HumanNumber, now)
	if err != nil {
		return err
	}
	inst.TargetAccountID = &acc.AccountID
	inst.MaturityDate = &maturity
	return nil
}

// --- DEPOSIT_CHANGE ---

// depositChangePolicy replaces the amount, tenor and rate of an existing deposit.
// Amount is the new principal; the difference is posted to the deposit.
type depositChangePolicy struct{}

func (depositChangePolicy) Prepare(ctx context.Context, repos portsrepo.RepositoryProvider, inst *domain.WorkflowInstance, now time.Time) error {
	if err := requireDepositTerms(inst); err != nil {
		return err
	}
	dep, err := ownedAccount(ctx, repos, inst, domain.Deposito)
	if err != nil {
		return err
	}
	if dep.Balance.Equal(inst.Amount) && dep.TenorMonths == inst.TenorMonths && dep.InterestRate.Equal(inst.InterestRate) {
		return domain.ErrDepositChangeNoop
	}
	m := domain.MaturityDate(depositStart(dep, now), inst.TenorMonths)
	inst.MaturityDate = &m
	return nil
}

func (depositChangePolicy) Complete(ctx context.Context, repos portsrepo.RepositoryProvider, inst *domain.WorkflowInstance, actorID string, now time.Time) error {
	dep, err := ownedAccount(ctx, repos, inst, domain.Deposito)
	if err != nil {
		return err
	}

	start := depositStart(dep, now)
	maturity := domain.MaturityDate(start, inst.TenorMonths)
	dep.StartDate = &start
	dep.TenorMonths = inst.TenorMonths
	dep.InterestRate = inst.InterestRate
	dep.MaturityDate = &maturity
	inst.MaturityDate = &maturity

	delta := inst.Amount.Sub(dep.Balance)
	notes := "Perubahan deposito " + inst.HumanNumber
	switch {
	case delta.IsPositive():
		return post(ctx, repos, posting{account: dep, txnType: domain.Credit, amount: delta, instanceID: &inst.InstanceID, actorID: actorID, notes: notes}, now)
	case delta.IsNegative():
		return post(ctx, repos, posting{account: dep, txnType: domain.Debit, amount: delta.Neg(), instanceID: &inst.InstanceID, actorID: actorID, notes: notes}, now)
	default:
		dep.Touch(actorID, now)
		return repos.AccountRepo.UpdateAccount(ctx, *dep)
	}
}

func depositStart(dep *domain.Account, fallback time.Time) time.Time {
	if dep.StartDate != nil {
		return *dep.StartDate
	}
	return fallback
}

// --- DEPOSIT_WITHDRAWAL ---

// depositWithdrawalPolicy pays out part or all of a deposit. Withdrawing before maturity
// forfeits penaltyRate of the withdrawn amount.
type depositWithdrawalPolicy struct {
	penaltyRate decimal.Decimal
}

func (p depositWithdrawalPolicy) Prepare(ctx context.Context, repos portsrepo.RepositoryProvider, inst *domain.WorkflowInstance, now time.Time) error {
	if err := requirePositiveAmount(inst.Amount); err != nil {
		return err
	}
	dep, err := ownedAccount(ctx, repos, inst, domain.Deposito)
	if err != nil {
		return err
	}
	if inst.Amount.GreaterThan(dep.Balance) {
		return domain.ErrInsufficientBalance
	}
	p.price(inst, dep, now)
	return nil
}

func (p depositWithdrawalPolicy) Complete(ctx context.Context, repos portsrepo.RepositoryProvider, inst *domain.WorkflowInstance, actorID string, now time.Time) error {
	dep, err := ownedAccount(ctx, repos, inst, domain.Deposito)
	if err != nil {
		return err
	}
	// Priced again at payout: the deposit may have matured while the request was in review.
	p.price(inst, dep, now)

	if err := post(ctx, repos, posting{
		account:    dep,
		txnType:    domain.Debit,
		amount:     inst.Amount,
		instanceID: &inst.InstanceID,
		actorID:    actorID,
		notes:      "Pencairan deposito " + inst.HumanNumber + ", penalti " + inst.PenaltyAmount.StringFixed(2),
	}, now); err != nil {
		return err
	}
	if dep.Balance.IsZero() {
		dep.Status = domain.AccountClosed
		return repos.AccountRepo.UpdateAccount(ctx, *dep)
	}
	return nil
}

func (p depositWithdrawalPolicy) price(inst *domain.WorkflowInstance, dep *domain.Account, at time.Time) {
	penalty := accounting.EarlyWithdrawalPenalty(*dep, inst.Amount, p.penaltyRate, at)
	net := inst.Amount.Sub(penalty)
	inst.PenaltyAmount = &penalty
	inst.NetAmount = &net
	inst.MaturityDate = dep.MaturityDate
}

// --- SAVINGS_WITHDRAWAL ---

// savingsWithdrawalPolicy pays out voluntary savings. Principal and mandatory savings
// cannot be withdrawn while the member stays a member.
type savingsWithdrawalPolicy struct{}

func (savingsWithdrawalPolicy) Prepare(ctx context.Context, repos portsrepo.RepositoryProvider, inst *domain.WorkflowInstance, _ time.Time) error {
	if err := requirePositiveAmount(inst.Amount); err != nil {
		return err
	}
	acc, err := resolveAccount(ctx, repos, inst, domain.SimpananSukarela)
	if errors.Is(err, domain.ErrAccountTypeMismatch) {
		return domain.ErrWithdrawalNotPermitted
	}
	if err != nil {
		return err
	}
	if inst.Amount.GreaterThan(acc.Balance) {
		return domain.ErrInsufficientBalance
	}
	net := inst.Amount
	inst.NetAmount = &net
	return nil
}

func (savingsWithdrawalPolicy) Complete(ctx context.Context, repos portsrepo.RepositoryProvider, inst *domain.WorkflowInstance, actorID string, now time.Time) error {
	acc, err := ownedAccount(ctx, repos, inst, domain.SimpananSukarela)
	if err != nil {
		return err
	}
	return post(ctx, repos, posting{
		account:    acc,
		txnType:    domain.Debit,
		amount:     inst.Amount,
		instanceID: &inst.InstanceID,
		actorID:    actorID,
		notes:      "Penarikan simpanan sukarela " + inst.HumanNumber,
	}, now)
}

// --- LOAN_REPAYMENT ---

// loanRepaymentPolicy reduces the outstanding balance of a loan.
type loanRepaymentPolicy struct{}

func (loanRepaymentPolicy) Prepare(ctx context.Context, repos portsrepo.RepositoryProvider, inst *domain.WorkflowInstance, _ time.Time) error {
	if err := requirePositiveAmount(inst.Amount); err != nil {
		return err
	}
	loan, err := resolveAccount(ctx, repos, inst, domain.Pinjaman)
	if err != nil {
		return err
	}
	if inst.Amount.GreaterThan(loan.Balance) {
		return domain.ErrAmountExceedsLoan
	}
	return nil
}

func (loanRepaymentPolicy) Complete(ctx context.Context, repos portsrepo.RepositoryProvider, inst *domain.WorkflowInstance, actorID string, now time.Time) error {
	loan, err := ownedAccount(ctx, repos, inst, domain.Pinjaman)
	if err != nil {
		return err
	}
	if err := post(ctx, repos, posting{
		account:    loan,
		txnType:    domain.Credit,
		amount:     inst.Amount,
		instanceID: &inst.InstanceID,
		actorID:    actorID,
		notes:      "Angsuran pinjaman " + inst.HumanNumber,
	}, now); err != nil {
		return err
	}
	if loan.Balance.IsZero() {
		loan.Status = domain.AccountPaidOff
		return repos.AccountRepo.UpdateAccount(ctx, *loan)
	}
	return nil
}

// --- MEMBER_APPLICATION ---

// memberApplicationPolicy admits a new member. Amount is the principal savings paid on joining.
type memberApplicationPolicy struct{}

func (memberApplicationPolicy) Prepare(ctx context.Context, repos portsrepo.RepositoryProvider, inst *domain.WorkflowInstance, _ time.Time) error {
	if err := requirePositiveAmount(inst.Amount); err != nil {
		return err
	}
	inst.TargetAccountID = nil
	return checkNotMember(ctx, repos, inst.OwnerID)
}

func (memberApplicationPolicy) Complete(ctx context.Context, repos portsrepo.RepositoryProvider, inst *domain.WorkflowInstance, actorID string, now time.Time) error {
	if err := checkNotMember(ctx, repos, inst.OwnerID); err != nil {
		return err
	}

	existing, err := repos.AccountRepo.FindAccountsByOwner(ctx, inst.OwnerID)
	if err != nil {
		return err
	}
	held := make(map[domain.AccountType]bool, len(existing))
	for _, a := range existing {
		if a.IsActive() {
			held[a.AccountType] = true
		}
	}

	pokok, err := openAccount(ctx, repos, domain.Account{OwnerID: inst.OwnerID, AccountType: domain.SimpananPokok},
		inst.Amount, &inst.InstanceID, actorID, "Simpanan pokok "+inst.HumanNumber, now)
	if err != nil {
		return err
	}
	for _, t := range []domain.AccountType{domain.SimpananWajib, domain.SimpananSukarela} {
		if held[t] {
			continue
		}
		if _, err := openAccount(ctx, repos, domain.Account{OwnerID: inst.OwnerID, AccountType: t},
			decimal.Zero, &inst.InstanceID, actorID, "", now); err != nil {
			return err
		}
	}

	inst.TargetAccountID = &pokok.AccountID
	return repos.UserRepo.AddUserRole(ctx, inst.OwnerID, domain.RoleAnggota)
}

func checkNotMember(ctx context.Context, repos portsrepo.RepositoryProvider, ownerID string) error {
	user, err := repos.UserRepo.FindUserByID(ctx, ownerID)
	if err != nil {
		return err
	}
	if user.HasRole(domain.RoleAnggota) {
		return domain.ErrAlreadyMember
	}
	accounts, err := repos.AccountRepo.FindAccountsByOwner(ctx, ownerID)
	if err != nil {
		return err
	}
	for _, a := range accounts {
		if a.AccountType == domain.SimpananPokok && a.IsActive() {
			return domain.ErrMemberAccountsExist
		}
	}
	return nil
}
