package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/koperasi_backend/internal/adapters/database/memory"
	"github.com/SscSPs/koperasi_backend/internal/apperrors"
	"github.com/SscSPs/koperasi_backend/internal/core/domain"
	portssvc "github.com/SscSPs/koperasi_backend/internal/core/ports/services"
	"github.com/SscSPs/koperasi_backend/internal/core/services"
	"github.com/SscSPs/koperasi_backend/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

// recordingPublisher keeps every published event in order.
type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.WorkflowEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...domain.WorkflowEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
}

func (p *recordingPublisher) kinds() []domain.EventKind {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.EventKind, len(p.events))
	for i, e := range p.events {
		out[i] = e.Kind
	}
	return out
}

var wib = time.FixedZone("WIB", 7*60*60)

type WorkflowServiceTestSuite struct {
	suite.Suite
	ctx   context.Context
	store *memory.Store
	svc   portssvc.WorkflowSvcFacade
	pub   *recordingPublisher
	now   time.Time

	member    domain.Actor
	applicant domain.Actor
	dsp       domain.Actor
	ketua     domain.Actor
	shop      domain.Actor
}

func TestWorkflowServiceTestSuite(t *testing.T) {
	suite.Run(t, new(WorkflowServiceTestSuite))
}

func (s *WorkflowServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = memory.NewStore()
	s.pub = &recordingPublisher{}
	// 10:00 WIB on 15 January 2026.
	s.now = time.Date(2026, 1, 15, 3, 0, 0, 0, time.UTC)

	s.member = s.seedUser("member@koperasi.test", domain.RoleAnggota, domain.RoleEmployee)
	s.applicant = s.seedUser("applicant@koperasi.test", domain.RoleEmployee)
	s.dsp = s.seedUser("dsp@koperasi.test", domain.RoleDivisiSimpanPinjam)
	s.ketua = s.seedUser("ketua@koperasi.test", domain.RoleKetua)
	s.shop = s.seedUser("shop@koperasi.test", domain.RoleShopkeeper)

	s.svc = services.NewWorkflowService(s.store, s.store.Repos(),
		services.WithClock(func() time.Time { return s.now }),
		services.WithLocation(wib),
		services.WithEventPublisher(s.pub),
		services.WithBulkLimits(3, 10),
		services.WithEarlyWithdrawalPenalty(decimal.RequireFromString("0.02")),
	)
}

func (s *WorkflowServiceTestSuite) seedUser(email string, roles ...domain.Role) domain.Actor {
	user := domain.User{
		UserID:      uuid.NewString(),
		Email:       email,
		Name:        email,
		Roles:       roles,
		IsActive:    true,
		AuditFields: domain.NewAuditFields("seed", time.Now()),
	}
	s.Require().NoError(s.store.Repos().UserRepo.SaveUser(s.ctx, user))
	return domain.Actor{UserID: user.UserID, Roles: roles}
}

func (s *WorkflowServiceTestSuite) seedAccount(ownerID string, accountType domain.AccountType, balance string, mutate ...func(*domain.Account)) domain.Account {
	acc := domain.Account{
		AccountID:   uuid.NewString(),
		OwnerID:     ownerID,
		AccountType: accountType,
		Balance:     decimal.RequireFromString(balance),
		Status:      domain.AccountActive,
		AuditFields: domain.NewAuditFields("seed", s.now),
	}
	for _, m := range mutate {
		m(&acc)
	}
	s.Require().NoError(s.store.Repos().AccountRepo.SaveAccount(s.ctx, acc))
	return acc
}

func (s *WorkflowServiceTestSuite) account(id string) *domain.Account {
	acc, err := s.store.Repos().AccountRepo.FindAccountByID(s.ctx, id)
	s.Require().NoError(err)
	return acc
}

func (s *WorkflowServiceTestSuite) decEqual(expected string, actual decimal.Decimal) {
	s.Truef(decimal.RequireFromString(expected).Equal(actual), "want %s, got %s", expected, actual)
}

func (s *WorkflowServiceTestSuite) submitted(wfType domain.WorkflowType, owner domain.Actor, req dto.WorkflowDraftRequest) *domain.WorkflowInstance {
	draft, err := s.svc.CreateDraft(s.ctx, wfType, owner.UserID, req)
	s.Require().NoError(err)
	inst, err := s.svc.Submit(s.ctx, wfType, draft.InstanceID, owner.UserID)
	s.Require().NoError(err)
	return inst
}

func (s *WorkflowServiceTestSuite) approve(wfType domain.WorkflowType, id string, approvers ...domain.Actor) *domain.WorkflowInstance {
	var inst *domain.WorkflowInstance
	for _, a := range approvers {
		var err error
		inst, err = s.svc.ProcessApproval(s.ctx, wfType, id, a, domain.DecisionApproved, nil)
		s.Require().NoError(err)
	}
	return inst
}

func depositRequest() dto.WorkflowDraftRequest {
	return dto.WorkflowDraftRequest{
		Amount:       decimal.NewFromInt(10_000_000),
		TenorMonths:  12,
		InterestRate: decimal.RequireFromString("0.055"),
		TermsAgreed:  true,
	}
}

func amountRequest(amount int64, target *string) dto.WorkflowDraftRequest {
	return dto.WorkflowDraftRequest{Amount: decimal.NewFromInt(amount), TargetAccountID: target, TermsAgreed: true}
}

// --- drafts and numbering ---

func (s *WorkflowServiceTestSuite) TestCreateDraft_AssignsDailySequence() {
	first, err := s.svc.CreateDraft(s.ctx, domain.DepositApplication, s.member.UserID, depositRequest())
	s.Require().NoError(err)
	second, err := s.svc.CreateDraft(s.ctx, domain.DepositApplication, s.member.UserID, depositRequest())
	s.Require().NoError(err)

	s.Equal("DEP-20260115-0001", first.HumanNumber)
	s.Equal("DEP-20260115-0002", second.HumanNumber)
	s.Equal(domain.StatusDraft, first.Status)
	s.Nil(first.CurrentStep)
	s.Equal(int64(1), first.Version)

	// 18:00 UTC is already the next day in WIB.
	s.now = time.Date(2026, 1, 15, 18, 0, 0, 0, time.UTC)
	third, err := s.svc.CreateDraft(s.ctx, domain.DepositApplication, s.member.UserID, depositRequest())
	s.Require().NoError(err)
	s.Equal("DEP-20260116-0001", third.HumanNumber)

	// Prefixes count independently.
	repayment := s.seedAccount(s.member.UserID, domain.Pinjaman, "500000")
	rep, err := s.svc.CreateDraft(s.ctx, domain.LoanRepayment, s.member.UserID, amountRequest(100_000, &repayment.AccountID))
	s.Require().NoError(err)
	s.Equal("REP-20260116-0001", rep.HumanNumber)
}

func (s *WorkflowServiceTestSuite) TestCreateDraft_ValidatesTerms() {
	req := depositRequest()
	req.TenorMonths = 0
	_, err := s.svc.CreateDraft(s.ctx, domain.DepositApplication, s.member.UserID, req)
	s.ErrorIs(err, domain.ErrTenorNotPositive)
	s.ErrorIs(err, apperrors.ErrValidation)

	req = depositRequest()
	req.Amount = decimal.Zero
	_, err = s.svc.CreateDraft(s.ctx, domain.DepositApplication, s.member.UserID, req)
	s.ErrorIs(err, domain.ErrAmountNotPositive)
}

func (s *WorkflowServiceTestSuite) TestCreateDraft_DepositRequiresMembership() {
	_, err := s.svc.CreateDraft(s.ctx, domain.DepositApplication, s.applicant.UserID, depositRequest())
	s.ErrorIs(err, domain.ErrNotMember)

	// A failed draft does not consume a number.
	inst, err := s.svc.CreateDraft(s.ctx, domain.DepositApplication, s.member.UserID, depositRequest())
	s.Require().NoError(err)
	s.Equal("DEP-20260115-0001", inst.HumanNumber)
}

func (s *WorkflowServiceTestSuite) TestUpdateAndDeleteDraft() {
	draft, err := s.svc.CreateDraft(s.ctx, domain.DepositApplication, s.member.UserID, depositRequest())
	s.Require().NoError(err)

	req := depositRequest()
	req.TenorMonths = 24
	updated, err := s.svc.UpdateDraft(s.ctx, domain.DepositApplication, draft.InstanceID, s.member.UserID, req)
	s.Require().NoError(err)
	s.Equal(24, updated.TenorMonths)
	s.Equal(int64(2), updated.Version)

	_, err = s.svc.UpdateDraft(s.ctx, domain.DepositApplication, draft.InstanceID, s.applicant.UserID, req)
	s.ErrorIs(err, domain.ErrInstanceNotFound)

	trail, err := s.store.Repos().HistoryRepo.ListHistory(s.ctx, draft.InstanceID)
	s.Require().NoError(err)
	s.Len(trail, 2)

	s.Require().NoError(s.svc.DeleteDraft(s.ctx, domain.DepositApplication, draft.InstanceID, s.member.UserID))
	_, err = s.svc.GetInstance(s.ctx, domain.DepositApplication, draft.InstanceID, s.member)
	s.ErrorIs(err, domain.ErrInstanceNotFound)

	trail, err = s.store.Repos().HistoryRepo.ListHistory(s.ctx, draft.InstanceID)
	s.Require().NoError(err)
	s.Empty(trail)
	ledger, err := s.store.Repos().LedgerRepo.FindLedgerRows(s.ctx, draft.InstanceID)
	s.Require().NoError(err)
	s.Empty(ledger)
}

func (s *WorkflowServiceTestSuite) TestDeleteDraft_RejectsSubmitted() {
	inst := s.submitted(domain.DepositApplication, s.member, depositRequest())

	err := s.svc.DeleteDraft(s.ctx, domain.DepositApplication, inst.InstanceID, s.member.UserID)
	s.ErrorIs(err, domain.ErrNotDraft)
}

// --- submission ---

func (s *WorkflowServiceTestSuite) TestSubmit_RequiresTerms() {
	req := depositRequest()
	req.TermsAgreed = false
	draft, err := s.svc.CreateDraft(s.ctx, domain.DepositApplication, s.member.UserID, req)
	s.Require().NoError(err)

	_, err = s.svc.Submit(s.ctx, domain.DepositApplication, draft.InstanceID, s.member.UserID)
	s.ErrorIs(err, domain.ErrTermsNotAgreed)

	detail, err := s.svc.GetInstance(s.ctx, domain.DepositApplication, draft.InstanceID, s.member)
	s.Require().NoError(err)
	s.Equal(domain.StatusDraft, detail.Instance.Status)
	s.Empty(detail.Approvals)
}

func (s *WorkflowServiceTestSuite) TestSubmit_OwnerAndStatusChecks() {
	draft, err := s.svc.CreateDraft(s.ctx, domain.DepositApplication, s.member.UserID, depositRequest())
	s.Require().NoError(err)

	_, err = s.svc.Submit(s.ctx, domain.DepositApplication, draft.InstanceID, s.applicant.UserID)
	s.ErrorIs(err, domain.ErrInstanceNotFound)

	_, err = s.svc.Submit(s.ctx, domain.DepositChange, draft.InstanceID, s.member.UserID)
	s.ErrorIs(err, domain.ErrInstanceNotFound, "another workflow's endpoint must not reach the instance")

	inst, err := s.svc.Submit(s.ctx, domain.DepositApplication, draft.InstanceID, s.member.UserID)
	s.Require().NoError(err)
	s.Equal(domain.ReviewStatus(domain.StepDivisiSimpanPinjam), inst.Status)
	s.Require().NotNil(inst.CurrentStep)
	s.Equal(domain.StepDivisiSimpanPinjam, *inst.CurrentStep)
	s.Require().NotNil(inst.SubmittedAt)

	_, err = s.svc.Submit(s.ctx, domain.DepositApplication, draft.InstanceID, s.member.UserID)
	s.ErrorIs(err, domain.ErrNotDraft)
	s.ErrorIs(err, apperrors.ErrValidation)
}

// --- approvals ---

func (s *WorkflowServiceTestSuite) TestDepositApplication_FullChain() {
	inst := s.submitted(domain.DepositApplication, s.member, depositRequest())
	submittedAt := *inst.SubmittedAt

	s.now = s.now.Add(2 * time.Hour)
	inst = s.approve(domain.DepositApplication, inst.InstanceID, s.dsp)
	s.Equal(domain.ReviewStatus(domain.StepKetua), inst.Status)

	inst = s.approve(domain.DepositApplication, inst.InstanceID, s.ketua)
	s.Equal(domain.StatusApproved, inst.Status)
	s.Nil(inst.CurrentStep)
	s.Require().NotNil(inst.ApprovedAt)
	s.Nil(inst.CompletedAt)
	s.Require().NotNil(inst.TargetAccountID)
	s.Require().NotNil(inst.MaturityDate)
	s.True(inst.MaturityDate.Equal(time.Date(2027, 1, 15, 3, 0, 0, 0, time.UTC)))

	dep := s.account(*inst.TargetAccountID)
	s.Equal(domain.Deposito, dep.AccountType)
	s.Equal(s.member.UserID, dep.OwnerID)
	s.decEqual("10000000", dep.Balance)
	s.Equal(12, dep.TenorMonths)
	s.Require().NotNil(dep.StartDate)
	s.True(dep.StartDate.Equal(submittedAt))

	txns, _, err := s.store.Repos().TransactionRepo.ListTransactionsByAccountID(s.ctx, dep.AccountID, 10, nil)
	s.Require().NoError(err)
	s.Require().Len(txns, 1)
	s.Equal(domain.Credit, txns[0].TransactionType)
	s.Equal(inst.InstanceID, *txns[0].WorkflowInstanceID)

	detail, err := s.svc.GetInstance(s.ctx, domain.DepositApplication, inst.InstanceID, s.member)
	s.Require().NoError(err)
	s.Require().Len(detail.Approvals, 2)
	for _, row := range detail.Approvals {
		s.Require().NotNil(row.Decision)
		s.Equal(domain.DecisionApproved, *row.Decision)
	}
	actions := make([]domain.HistoryAction, len(detail.History))
	for i, h := range detail.History {
		actions[i] = h.Action
	}
	s.Equal([]domain.HistoryAction{domain.ActionCreated, domain.ActionSubmitted, domain.ActionApproved, domain.ActionCompleted}, actions)

	s.Equal([]domain.EventKind{domain.EventSubmitted, domain.EventStepAdvanced, domain.EventCompleted}, s.pub.kinds())
}

func (s *WorkflowServiceTestSuite) TestProcessApproval_WrongRoleIsForbidden() {
	inst := s.submitted(domain.DepositApplication, s.member, depositRequest())

	_, err := s.svc.ProcessApproval(s.ctx, domain.DepositApplication, inst.InstanceID, s.ketua, domain.DecisionApproved, nil)
	s.ErrorIs(err, domain.ErrStepForbidden)
	s.ErrorIs(err, apperrors.ErrForbidden)

	detail, err := s.svc.GetInstance(s.ctx, domain.DepositApplication, inst.InstanceID, s.member)
	s.Require().NoError(err)
	s.Equal(domain.ReviewStatus(domain.StepDivisiSimpanPinjam), detail.Instance.Status)
	s.True(detail.Approvals[0].IsPending())
}

func (s *WorkflowServiceTestSuite) TestProcessApproval_NotInReview() {
	draft, err := s.svc.CreateDraft(s.ctx, domain.DepositApplication, s.member.UserID, depositRequest())
	s.Require().NoError(err)

	_, err = s.svc.ProcessApproval(s.ctx, domain.DepositApplication, draft.InstanceID, s.dsp, domain.DecisionApproved, nil)
	s.ErrorIs(err, domain.ErrNotInReview)

	inst := s.submitted(domain.DepositApplication, s.member, depositRequest())
	s.approve(domain.DepositApplication, inst.InstanceID, s.dsp, s.ketua)
	_, err = s.svc.ProcessApproval(s.ctx, domain.DepositApplication, inst.InstanceID, s.ketua, domain.DecisionApproved, nil)
	s.ErrorIs(err, domain.ErrNotInReview)
}

func (s *WorkflowServiceTestSuite) TestProcessApproval_StepOutsideTableNeverCompletes() {
	inst := s.submitted(domain.DepositApplication, s.member, depositRequest())
	published := len(s.pub.kinds())

	// A stored step that the two step chain does not contain.
	stray := domain.StepShopkeeper
	tampered := *inst
	tampered.CurrentStep = &stray
	tampered.Status = domain.ReviewStatus(stray)
	tampered.Version = inst.Version + 1
	s.Require().NoError(s.store.Repos().InstanceRepo.UpdateInstance(s.ctx, tampered, inst.Version))

	shopAndKetua := domain.Actor{UserID: s.shop.UserID, Roles: []domain.Role{domain.RoleShopkeeper, domain.RoleKetua}}
	_, err := s.svc.ProcessApproval(s.ctx, domain.DepositApplication, inst.InstanceID, shopAndKetua, domain.DecisionApproved, nil)
	s.ErrorIs(err, domain.ErrNotInReview)

	after, err := s.store.Repos().InstanceRepo.FindInstanceByID(s.ctx, inst.InstanceID)
	s.Require().NoError(err)
	s.Equal(domain.ReviewStatus(stray), after.Status)
	s.Nil(after.ApprovedAt)
	s.Nil(after.CompletedAt)
	s.Len(s.pub.kinds(), published)
}

func (s *WorkflowServiceTestSuite) TestProcessApproval_StepAlreadyProcessed() {
	inst := s.submitted(domain.DepositApplication, s.member, depositRequest())

	// Another approver's decision landed on the row first.
	decision := domain.DecisionApproved
	other := uuid.NewString()
	decidedAt := s.now
	s.Require().NoError(s.store.Repos().LedgerRepo.RecordDecision(s.ctx, domain.ApprovalLedgerRow{
		InstanceID: inst.InstanceID,
		Step:       domain.StepDivisiSimpanPinjam,
		Decision:   &decision,
		ApproverID: &other,
		DecidedAt:  &decidedAt,
	}))

	_, err := s.svc.ProcessApproval(s.ctx, domain.DepositApplication, inst.InstanceID, s.dsp, domain.DecisionApproved, nil)
	s.ErrorIs(err, domain.ErrStepAlreadyProcessed)
	s.Equal("Step ini sudah diproses sebelumnya", apperrors.UserMessage(err, ""))
}

func (s *WorkflowServiceTestSuite) TestProcessApproval_Rejection() {
	inst := s.submitted(domain.DepositApplication, s.member, depositRequest())
	reason := "Dokumen tidak lengkap"

	inst, err := s.svc.ProcessApproval(s.ctx, domain.DepositApplication, inst.InstanceID, s.dsp, domain.DecisionRejected, &reason)
	s.Require().NoError(err)
	s.Equal(domain.StatusRejected, inst.Status)
	s.Nil(inst.CurrentStep)
	s.Require().NotNil(inst.RejectedAt)
	s.Require().NotNil(inst.RejectionReason)
	s.Equal(reason, *inst.RejectionReason)
	s.Nil(inst.TargetAccountID)

	accounts, err := s.store.Repos().AccountRepo.FindAccountsByOwner(s.ctx, s.member.UserID)
	s.Require().NoError(err)
	s.Empty(accounts)
	s.Equal([]domain.EventKind{domain.EventSubmitted, domain.EventRejected}, s.pub.kinds())
}

func (s *WorkflowServiceTestSuite) TestProcessApproval_InvalidDecision() {
	inst := s.submitted(domain.DepositApplication, s.member, depositRequest())

	_, err := s.svc.ProcessApproval(s.ctx, domain.DepositApplication, inst.InstanceID, s.dsp, domain.Decision("MAYBE"), nil)
	s.ErrorIs(err, domain.ErrInvalidDecision)
}

// --- disbursement chain ---

func (s *WorkflowServiceTestSuite) TestSavingsWithdrawal_CompletesAfterFourSteps() {
	acc := s.seedAccount(s.member.UserID, domain.SimpananSukarela, "500000")
	inst := s.submitted(domain.SavingsWithdrawal, s.member, amountRequest(200_000, nil))
	s.Require().NotNil(inst.TargetAccountID)
	s.Equal(acc.AccountID, *inst.TargetAccountID)

	inst = s.approve(domain.SavingsWithdrawal, inst.InstanceID, s.dsp, s.ketua, s.shop)
	s.Equal(domain.ReviewStatus(domain.StepKetuaAuth), inst.Status)
	s.decEqual("500000", s.account(acc.AccountID).Balance)

	inst = s.approve(domain.SavingsWithdrawal, inst.InstanceID, s.ketua)
	s.Equal(domain.StatusCompleted, inst.Status)
	s.NotNil(inst.CompletedAt)
	s.NotNil(inst.ApprovedAt)
	s.decEqual("300000", s.account(acc.AccountID).Balance)
}

func (s *WorkflowServiceTestSuite) TestSavingsWithdrawal_OnlyVoluntarySavings() {
	wajib := s.seedAccount(s.member.UserID, domain.SimpananWajib, "500000")

	_, err := s.svc.CreateDraft(s.ctx, domain.SavingsWithdrawal, s.member.UserID, amountRequest(100_000, &wajib.AccountID))
	s.ErrorIs(err, domain.ErrWithdrawalNotPermitted)
}

func (s *WorkflowServiceTestSuite) TestSavingsWithdrawal_InsufficientBalanceAtDraft() {
	s.seedAccount(s.member.UserID, domain.SimpananSukarela, "50000")

	_, err := s.svc.CreateDraft(s.ctx, domain.SavingsWithdrawal, s.member.UserID, amountRequest(100_000, nil))
	s.ErrorIs(err, domain.ErrInsufficientBalance)
}

func (s *WorkflowServiceTestSuite) TestTerminalFailure_RollsBackEverything() {
	acc := s.seedAccount(s.member.UserID, domain.SimpananSukarela, "500000")
	inst := s.submitted(domain.SavingsWithdrawal, s.member, amountRequest(200_000, nil))
	s.approve(domain.SavingsWithdrawal, inst.InstanceID, s.dsp, s.ketua, s.shop)

	// The balance dropped below the request while it was in review.
	drained := s.account(acc.AccountID)
	drained.Balance = decimal.NewFromInt(100_000)
	s.Require().NoError(s.store.Repos().AccountRepo.UpdateAccount(s.ctx, *drained))

	_, err := s.svc.ProcessApproval(s.ctx, domain.SavingsWithdrawal, inst.InstanceID, s.ketua, domain.DecisionApproved, nil)
	s.ErrorIs(err, domain.ErrInsufficientBalance)

	detail, err := s.svc.GetInstance(s.ctx, domain.SavingsWithdrawal, inst.InstanceID, s.member)
	s.Require().NoError(err)
	s.Equal(domain.ReviewStatus(domain.StepKetuaAuth), detail.Instance.Status)
	s.Require().Len(detail.Approvals, 4)
	s.True(detail.Approvals[3].IsPending(), "the final decision must roll back with the failed posting")
	s.Len(detail.History, 5)

	txns, _, err := s.store.Repos().TransactionRepo.ListTransactionsByAccountID(s.ctx, acc.AccountID, 10, nil)
	s.Require().NoError(err)
	s.Empty(txns)
	s.decEqual("100000", s.account(acc.AccountID).Balance)
}

// --- cancellation ---

func (s *WorkflowServiceTestSuite) TestCancel_BeforeDisbursement() {
	s.seedAccount(s.member.UserID, domain.SimpananSukarela, "500000")
	inst := s.submitted(domain.SavingsWithdrawal, s.member, amountRequest(200_000, nil))

	_, err := s.svc.Cancel(s.ctx, domain.SavingsWithdrawal, inst.InstanceID, s.applicant.UserID)
	s.ErrorIs(err, domain.ErrInstanceNotFound)

	inst, err = s.svc.Cancel(s.ctx, domain.SavingsWithdrawal, inst.InstanceID, s.member.UserID)
	s.Require().NoError(err)
	s.Equal(domain.StatusCancelled, inst.Status)
	s.Nil(inst.CurrentStep)
	s.NotNil(inst.CancelledAt)

	_, err = s.svc.ProcessApproval(s.ctx, domain.SavingsWithdrawal, inst.InstanceID, s.dsp, domain.DecisionApproved, nil)
	s.ErrorIs(err, domain.ErrNotInReview)
}

func (s *WorkflowServiceTestSuite) TestCancel_NotAllowedOnceDisbursementStarted() {
	s.seedAccount(s.member.UserID, domain.SimpananSukarela, "500000")
	inst := s.submitted(domain.SavingsWithdrawal, s.member, amountRequest(200_000, nil))
	s.approve(domain.SavingsWithdrawal, inst.InstanceID, s.dsp, s.ketua)

	_, err := s.svc.Cancel(s.ctx, domain.SavingsWithdrawal, inst.InstanceID, s.member.UserID)
	s.ErrorIs(err, domain.ErrCancelNotAllowed)

	draft, err := s.svc.CreateDraft(s.ctx, domain.SavingsWithdrawal, s.member.UserID, amountRequest(1_000, nil))
	s.Require().NoError(err)
	_, err = s.svc.Cancel(s.ctx, domain.SavingsWithdrawal, draft.InstanceID, s.member.UserID)
	s.ErrorIs(err, domain.ErrCancelNotAllowed)
}

// --- bulk ---

func (s *WorkflowServiceTestSuite) TestBulkProcess_IsolatesFailures() {
	ids := make([]string, 5)
	for i := range ids {
		ids[i] = s.submitted(domain.DepositApplication, s.member, depositRequest()).InstanceID
	}
	// The third instance already moved past the DSP step.
	s.approve(domain.DepositApplication, ids[2], s.dsp)

	request := append([]string{}, ids...)
	request = append(request, ids[0])
	result, err := s.svc.BulkProcess(s.ctx, domain.DepositApplication, request, s.dsp, domain.DecisionApproved, nil)
	s.Require().NoError(err)

	s.Equal([]string{ids[0], ids[1], ids[3], ids[4]}, result.Success)
	s.Require().Len(result.Failed, 1)
	s.Equal(ids[2], result.Failed[0].ID)
	s.Equal("Anda tidak berwenang memproses step ini", result.Failed[0].Reason)

	for _, id := range result.Success {
		detail, err := s.svc.GetInstance(s.ctx, domain.DepositApplication, id, s.dsp)
		s.Require().NoError(err)
		s.Equal(domain.ReviewStatus(domain.StepKetua), detail.Instance.Status)
	}
}

func (s *WorkflowServiceTestSuite) TestBulkProcess_BatchLimits() {
	_, err := s.svc.BulkProcess(s.ctx, domain.DepositApplication, nil, s.dsp, domain.DecisionApproved, nil)
	s.ErrorIs(err, domain.ErrEmptyBatch)

	tooMany := make([]string, 11)
	for i := range tooMany {
		tooMany[i] = uuid.NewString()
	}
	_, err = s.svc.BulkProcess(s.ctx, domain.DepositApplication, tooMany, s.dsp, domain.DecisionApproved, nil)
	s.ErrorIs(err, domain.ErrBatchTooLarge)
}

func (s *WorkflowServiceTestSuite) TestBulkProcess_UnknownIDFails() {
	missing := uuid.NewString()
	result, err := s.svc.BulkProcess(s.ctx, domain.DepositApplication, []string{missing}, s.dsp, domain.DecisionRejected, nil)
	s.Require().NoError(err)
	s.Empty(result.Success)
	s.Require().Len(result.Failed, 1)
	s.Equal("Pengajuan tidak ditemukan", result.Failed[0].Reason)
}

// --- per-type effects ---

func (s *WorkflowServiceTestSuite) TestDepositWithdrawal_EarlyPenaltyAndClose() {
	maturity := s.now.AddDate(0, 6, 0)
	dep := s.seedAccount(s.member.UserID, domain.Deposito, "10000000", func(a *domain.Account) {
		a.TenorMonths = 12
		a.InterestRate = decimal.RequireFromString("0.05")
		a.MaturityDate = &maturity
	})

	inst := s.submitted(domain.DepositWithdrawal, s.member, amountRequest(4_000_000, &dep.AccountID))
	s.Require().NotNil(inst.PenaltyAmount)
	s.decEqual("80000", *inst.PenaltyAmount)
	s.decEqual("3920000", *inst.NetAmount)

	inst = s.approve(domain.DepositWithdrawal, inst.InstanceID, s.dsp, s.ketua, s.shop, s.ketua)
	s.Equal(domain.StatusCompleted, inst.Status)
	after := s.account(dep.AccountID)
	s.decEqual("6000000", after.Balance)
	s.Equal(domain.AccountActive, after.Status)

	// After maturity the rest comes out without penalty and closes the deposit.
	s.now = maturity.Add(time.Hour)
	inst = s.submitted(domain.DepositWithdrawal, s.member, amountRequest(6_000_000, &dep.AccountID))
	s.True(inst.PenaltyAmount.IsZero())
	s.approve(domain.DepositWithdrawal, inst.InstanceID, s.dsp, s.ketua, s.shop, s.ketua)
	closed := s.account(dep.AccountID)
	s.True(closed.Balance.IsZero())
	s.Equal(domain.AccountClosed, closed.Status)
}

func (s *WorkflowServiceTestSuite) TestDepositWithdrawal_OtherMembersDepositIsHidden() {
	dep := s.seedAccount(s.applicant.UserID, domain.Deposito, "1000000")

	_, err := s.svc.CreateDraft(s.ctx, domain.DepositWithdrawal, s.member.UserID, amountRequest(1_000, &dep.AccountID))
	s.ErrorIs(err, domain.ErrAccountNotFound)
}

func (s *WorkflowServiceTestSuite) TestDepositChange_AppliesNewTerms() {
	start := s.now.AddDate(0, -1, 0)
	dep := s.seedAccount(s.member.UserID, domain.Deposito, "5000000", func(a *domain.Account) {
		a.TenorMonths = 6
		a.InterestRate = decimal.RequireFromString("0.05")
		a.StartDate = &start
	})

	noop := dto.WorkflowDraftRequest{Amount: decimal.NewFromInt(5_000_000), TenorMonths: 6, InterestRate: decimal.RequireFromString("0.05"), TargetAccountID: &dep.AccountID, TermsAgreed: true}
	_, err := s.svc.CreateDraft(s.ctx, domain.DepositChange, s.member.UserID, noop)
	s.ErrorIs(err, domain.ErrDepositChangeNoop)

	req := dto.WorkflowDraftRequest{Amount: decimal.NewFromInt(7_000_000), TenorMonths: 12, InterestRate: decimal.RequireFromString("0.06"), TargetAccountID: &dep.AccountID, TermsAgreed: true}
	inst := s.submitted(domain.DepositChange, s.member, req)
	inst = s.approve(domain.DepositChange, inst.InstanceID, s.dsp, s.ketua)
	s.Equal(domain.StatusApproved, inst.Status)

	after := s.account(dep.AccountID)
	s.decEqual("7000000", after.Balance)
	s.Equal(12, after.TenorMonths)
	s.decEqual("0.06", after.InterestRate)
	s.Require().NotNil(after.MaturityDate)
	s.True(after.MaturityDate.Equal(start.AddDate(0, 12, 0)))
}

func (s *WorkflowServiceTestSuite) TestLoanRepayment_PaysOffLoan() {
	loan := s.seedAccount(s.member.UserID, domain.Pinjaman, "1000000")

	_, err := s.svc.CreateDraft(s.ctx, domain.LoanRepayment, s.member.UserID, amountRequest(1_500_000, nil))
	s.ErrorIs(err, domain.ErrAmountExceedsLoan)

	inst := s.submitted(domain.LoanRepayment, s.member, amountRequest(1_000_000, nil))
	inst = s.approve(domain.LoanRepayment, inst.InstanceID, s.dsp, s.ketua)
	s.Equal(domain.StatusApproved, inst.Status)

	after := s.account(loan.AccountID)
	s.True(after.Balance.IsZero())
	s.Equal(domain.AccountPaidOff, after.Status)
}

func (s *WorkflowServiceTestSuite) TestMemberApplication_GrantsMembership() {
	draft, err := s.svc.CreateDraft(s.ctx, domain.MemberApplication, s.applicant.UserID, amountRequest(100_000, nil))
	s.Require().NoError(err)
	s.Equal("MBR-20260115-0001", draft.HumanNumber)

	detail, err := s.svc.GetInstance(s.ctx, domain.MemberApplication, draft.InstanceID, s.applicant)
	s.Require().NoError(err)
	s.Len(detail.Approvals, 2, "member applications get their ledger rows with the draft")

	inst, err := s.svc.Submit(s.ctx, domain.MemberApplication, draft.InstanceID, s.applicant.UserID)
	s.Require().NoError(err)
	inst = s.approve(domain.MemberApplication, inst.InstanceID, s.dsp, s.ketua)
	s.Equal(domain.StatusApproved, inst.Status)

	user, err := s.store.Repos().UserRepo.FindUserByID(s.ctx, s.applicant.UserID)
	s.Require().NoError(err)
	s.True(user.HasRole(domain.RoleAnggota))

	accounts, err := s.store.Repos().AccountRepo.FindAccountsByOwner(s.ctx, s.applicant.UserID)
	s.Require().NoError(err)
	balances := map[domain.AccountType]decimal.Decimal{}
	for _, a := range accounts {
		balances[a.AccountType] = a.Balance
	}
	s.Len(balances, 3)
	s.decEqual("100000", balances[domain.SimpananPokok])
	s.True(balances[domain.SimpananWajib].IsZero())
	s.True(balances[domain.SimpananSukarela].IsZero())

	_, err = s.svc.CreateDraft(s.ctx, domain.MemberApplication, s.applicant.UserID, amountRequest(100_000, nil))
	s.ErrorIs(err, domain.ErrAlreadyMember)
}

// --- reads ---

func (s *WorkflowServiceTestSuite) TestGetInstance_Visibility() {
	inst := s.submitted(domain.DepositApplication, s.member, depositRequest())

	_, err := s.svc.GetInstance(s.ctx, domain.DepositApplication, inst.InstanceID, s.applicant)
	s.ErrorIs(err, domain.ErrInstanceNotFound)

	_, err = s.svc.GetInstance(s.ctx, domain.DepositApplication, inst.InstanceID, s.dsp)
	s.NoError(err)

	_, err = s.svc.GetInstance(s.ctx, domain.LoanRepayment, inst.InstanceID, s.member)
	s.ErrorIs(err, domain.ErrInstanceNotFound)

	_, err = s.svc.GetInstance(s.ctx, domain.WorkflowType("BOGUS"), inst.InstanceID, s.member)
	s.ErrorIs(err, domain.ErrUnknownWorkflow)
}

func (s *WorkflowServiceTestSuite) TestListings() {
	first := s.submitted(domain.DepositApplication, s.member, depositRequest())
	s.now = s.now.Add(time.Minute)
	second := s.submitted(domain.DepositApplication, s.member, depositRequest())
	s.now = s.now.Add(time.Minute)
	_, err := s.svc.CreateDraft(s.ctx, domain.DepositApplication, s.member.UserID, depositRequest())
	s.Require().NoError(err)

	mine, next, err := s.svc.ListMyInstances(s.ctx, domain.DepositApplication, s.member.UserID, dto.ListParams{Limit: 2})
	s.Require().NoError(err)
	s.Len(mine, 2)
	s.Require().NotNil(next)
	rest, next, err := s.svc.ListMyInstances(s.ctx, domain.DepositApplication, s.member.UserID, dto.ListParams{Limit: 2, NextToken: next})
	s.Require().NoError(err)
	s.Len(rest, 1)
	s.Nil(next)

	pending, _, err := s.svc.ListPendingApprovals(s.ctx, domain.DepositApplication, s.dsp, dto.ListParams{})
	s.Require().NoError(err)
	s.Require().Len(pending, 2)
	s.Equal(first.InstanceID, pending[0].InstanceID, "oldest submission first")
	s.Equal(second.InstanceID, pending[1].InstanceID)

	none, _, err := s.svc.ListPendingApprovals(s.ctx, domain.DepositApplication, s.shop, dto.ListParams{})
	s.Require().NoError(err)
	s.Empty(none)
}
