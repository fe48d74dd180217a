package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/SscSPs/koperasi_backend/internal/apperrors"
	"github.com/SscSPs/koperasi_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/koperasi_backend/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/koperasi_backend/internal/core/ports/services"
	"github.com/SscSPs/koperasi_backend/internal/dto"
	"github.com/SscSPs/koperasi_backend/internal/platform/metrics"
	"github.com/SscSPs/koperasi_backend/internal/utils/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// workflowService is the approval state machine shared by every workflow type.
// Every mutating operation runs in one unit of work: the instance row is locked,
// the ledger, history and any account postings are written, and the instance is
// saved with an optimistic version check. Events are published only after commit.
type workflowService struct {
	BaseService
	uow       portsrepo.UnitOfWork
	repos     portsrepo.RepositoryProvider
	sequences *SequenceGenerator
	policies  map[domain.WorkflowType]workflowPolicy
	publisher portssvc.EventPublisher
	metrics   *metrics.Metrics

	bulkConcurrency int
	bulkMaxItems    int
}

// WorkflowOption is a functional option for configuring the workflow service
type WorkflowOption func(*workflowService)

// WithEventPublisher sets where committed transitions are announced.
func WithEventPublisher(p portssvc.EventPublisher) WorkflowOption {
	return func(s *workflowService) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithMetrics records committed transitions and bulk outcomes.
func WithMetrics(m *metrics.Metrics) WorkflowOption {
	return func(s *workflowService) {
		s.metrics = m
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) WorkflowOption {
	return func(s *workflowService) {
		s.now = now
	}
}

// WithLocation sets the business time zone used for human number days.
func WithLocation(loc *time.Location) WorkflowOption {
	return func(s *workflowService) {
		s.sequences = NewSequenceGenerator(loc, nil)
	}
}

// WithBulkLimits bounds bulk approval parallelism and batch size.
func WithBulkLimits(concurrency, maxItems int) WorkflowOption {
	return func(s *workflowService) {
		if concurrency > 0 {
			s.bulkConcurrency = concurrency
		}
		if maxItems > 0 {
			s.bulkMaxItems = maxItems
		}
	}
}

// WithEarlyWithdrawalPenalty sets the share of the amount forfeited by a deposit withdrawn before maturity.
func WithEarlyWithdrawalPenalty(rate decimal.Decimal) WorkflowOption {
	return func(s *workflowService) {
		s.policies = newWorkflowPolicies(rate)
	}
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, ...domain.WorkflowEvent) {}

// NewWorkflowService creates the workflow engine over uow. repos is used for reads outside a unit of work.
func NewWorkflowService(uow portsrepo.UnitOfWork, repos portsrepo.RepositoryProvider, options ...WorkflowOption) portssvc.WorkflowSvcFacade {
	svc := &workflowService{
		uow:             uow,
		repos:           repos,
		sequences:       NewSequenceGenerator(time.UTC, nil),
		policies:        newWorkflowPolicies(decimal.NewFromFloat(0.02)),
		publisher:       noopPublisher{},
		bulkConcurrency: 4,
		bulkMaxItems:    100,
	}

	for _, option := range options {
		option(svc)
	}
	// The generator follows the service clock so tests control the day.
	svc.sequences.now = svc.Now

	return svc
}

// Ensure workflowService implements the WorkflowSvcFacade interface
var _ portssvc.WorkflowSvcFacade = (*workflowService)(nil)

func (s *workflowService) lookup(wfType domain.WorkflowType) (domain.Definition, workflowPolicy, error) {
	def, ok := domain.LookupDefinition(wfType)
	if !ok {
		return domain.Definition{}, nil, domain.ErrUnknownWorkflow
	}
	policy, ok := s.policies[wfType]
	if !ok {
		return domain.Definition{}, nil, domain.ErrUnknownWorkflow
	}
	return def, policy, nil
}

// lockInstance loads and locks an instance of wfType. Instances of another type are
// reported as not found so one workflow's endpoints cannot reach another's data.
func lockInstance(ctx context.Context, repos portsrepo.RepositoryProvider, wfType domain.WorkflowType, instanceID string) (*domain.WorkflowInstance, error) {
	inst, err := repos.InstanceRepo.FindInstanceByIDForUpdate(ctx, instanceID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, domain.ErrInstanceNotFound
		}
		return nil, err
	}
	if inst.Type != wfType {
		return nil, domain.ErrInstanceNotFound
	}
	return inst, nil
}

// lockOwnedInstance is lockInstance restricted to the owner. Other users get not found.
func lockOwnedInstance(ctx context.Context, repos portsrepo.RepositoryProvider, wfType domain.WorkflowType, instanceID, ownerID string) (*domain.WorkflowInstance, error) {
	inst, err := lockInstance(ctx, repos, wfType, instanceID)
	if err != nil {
		return nil, err
	}
	if !inst.IsOwnedBy(ownerID) {
		return nil, domain.ErrInstanceNotFound
	}
	return inst, nil
}

// save writes inst back, bumping its version, and appends the matching history entry.
func save(ctx context.Context, repos portsrepo.RepositoryProvider, inst *domain.WorkflowInstance, entry domain.HistoryEntry) error {
	expected := inst.Version
	inst.Version++
	inst.Touch(entry.ActorID, entry.CreatedAt)
	if err := repos.InstanceRepo.UpdateInstance(ctx, *inst, expected); err != nil {
		return err
	}
	return repos.HistoryRepo.AppendHistory(ctx, entry)
}

func history(inst *domain.WorkflowInstance, action domain.HistoryAction, from domain.WorkflowStatus, step *domain.Step, actorID string, notes *string, now time.Time) domain.HistoryEntry {
	return domain.HistoryEntry{
		HistoryID:  uuid.NewString(),
		InstanceID: inst.InstanceID,
		Action:     action,
		FromStatus: from,
		ToStatus:   inst.Status,
		Step:       step,
		ActorID:    actorID,
		Notes:      notes,
		CreatedAt:  now,
	}
}

func event(inst *domain.WorkflowInstance, kind domain.EventKind, step *domain.Step, actorID string, notes *string, now time.Time) domain.WorkflowEvent {
	return domain.WorkflowEvent{
		Kind:        kind,
		InstanceID:  inst.InstanceID,
		Type:        inst.Type,
		HumanNumber: inst.HumanNumber,
		OwnerID:     inst.OwnerID,
		ActorID:     actorID,
		Step:        step,
		Status:      inst.Status,
		Notes:       notes,
		OccurredAt:  now,
	}
}

func ledgerRows(inst *domain.WorkflowInstance, steps domain.StepTable, now time.Time) []domain.ApprovalLedgerRow {
	rows := make([]domain.ApprovalLedgerRow, len(steps))
	for i, step := range steps {
		rows[i] = domain.ApprovalLedgerRow{
			RowID:      uuid.NewString(),
			InstanceID: inst.InstanceID,
			Step:       step,
			Position:   i + 1,
			CreatedAt:  now,
		}
	}
	return rows
}

func stepRef(step domain.Step) *domain.Step {
	return &step
}

func applyDraftRequest(inst *domain.WorkflowInstance, req dto.WorkflowDraftRequest) {
	inst.Amount = req.Amount
	inst.TenorMonths = req.TenorMonths
	inst.InterestRate = req.InterestRate
	inst.TargetAccountID = req.TargetAccountID
	inst.TermsAgreed = req.TermsAgreed
	inst.PenaltyAmount = nil
	inst.NetAmount = nil
	inst.MaturityDate = nil
	inst.Attributes = make(map[string]string, len(req.Attributes))
	for k, v := range req.Attributes {
		inst.Attributes[k] = v
	}
}

// published records metrics for committed transitions and hands their events to the publisher.
func (s *workflowService) published(ctx context.Context, wfType domain.WorkflowType, action domain.HistoryAction, events ...domain.WorkflowEvent) {
	s.metrics.TransitionCommitted(string(wfType), string(action))
	if len(events) > 0 {
		s.publisher.Publish(ctx, events...)
	}
}

// CreateDraft validates the entity preconditions and stores a new DRAFT with a fresh human number.
func (s *workflowService) CreateDraft(ctx context.Context, wfType domain.WorkflowType, ownerID string, req dto.WorkflowDraftRequest) (*domain.WorkflowInstance, error) {
	def, policy, err := s.lookup(wfType)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	inst := &domain.WorkflowInstance{
		InstanceID:  uuid.NewString(),
		Type:        wfType,
		Status:      domain.StatusDraft,
		OwnerID:     ownerID,
		Version:     1,
		AuditFields: domain.NewAuditFields(ownerID, now),
	}
	applyDraftRequest(inst, req)

	err = s.uow.WithinTx(ctx, func(ctx context.Context, repos portsrepo.RepositoryProvider) error {
		if err := policy.Prepare(ctx, repos, inst, now); err != nil {
			return err
		}
		number, err := s.sequences.Generate(ctx, repos.SequenceRepo, def.Prefix)
		if err != nil {
			return err
		}
		inst.HumanNumber = number

		if err := repos.InstanceRepo.SaveInstance(ctx, *inst); err != nil {
			return err
		}
		if def.LedgerAtDraft {
			if err := repos.LedgerRepo.SaveLedgerRows(ctx, ledgerRows(inst, def.Steps, now)); err != nil {
				return err
			}
		}
		return repos.HistoryRepo.AppendHistory(ctx, history(inst, domain.ActionCreated, "", nil, ownerID, nil, now))
	})
	if err != nil {
		return nil, s.sanitize(ctx, err, "CreateDraft", slog.String("workflow", string(wfType)), slog.String("owner_id", ownerID))
	}

	s.LogInfo(ctx, "Workflow draft created",
		slog.String("workflow", string(wfType)),
		slog.String("instance_id", inst.InstanceID),
		slog.String("human_number", inst.HumanNumber))
	s.published(ctx, wfType, domain.ActionCreated)
	return inst, nil
}

// UpdateDraft replaces the editable fields of the owner's draft.
func (s *workflowService) UpdateDraft(ctx context.Context, wfType domain.WorkflowType, instanceID string, ownerID string, req dto.WorkflowDraftRequest) (*domain.WorkflowInstance, error) {
	_, policy, err := s.lookup(wfType)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	var inst *domain.WorkflowInstance
	err = s.uow.WithinTx(ctx, func(ctx context.Context, repos portsrepo.RepositoryProvider) error {
		inst, err = lockOwnedInstance(ctx, repos, wfType, instanceID, ownerID)
		if err != nil {
			return err
		}
		if inst.Status != domain.StatusDraft {
			return domain.ErrNotDraft
		}
		applyDraftRequest(inst, req)
		if err := policy.Prepare(ctx, repos, inst, now); err != nil {
			return err
		}
		return save(ctx, repos, inst, history(inst, domain.ActionUpdated, domain.StatusDraft, nil, ownerID, nil, now))
	})
	if err != nil {
		return nil, s.sanitize(ctx, err, "UpdateDraft", slog.String("instance_id", instanceID))
	}

	s.published(ctx, wfType, domain.ActionUpdated)
	return inst, nil
}

// DeleteDraft removes the owner's draft together with its ledger rows and history.
func (s *workflowService) DeleteDraft(ctx context.Context, wfType domain.WorkflowType, instanceID string, ownerID string) error {
	if _, _, err := s.lookup(wfType); err != nil {
		return err
	}

	err := s.uow.WithinTx(ctx, func(ctx context.Context, repos portsrepo.RepositoryProvider) error {
		inst, err := lockOwnedInstance(ctx, repos, wfType, instanceID, ownerID)
		if err != nil {
			return err
		}
		if inst.Status != domain.StatusDraft {
			return domain.ErrNotDraft
		}
		if err := repos.LedgerRepo.DeleteLedgerRows(ctx, instanceID); err != nil {
			return err
		}
		if err := repos.HistoryRepo.DeleteHistory(ctx, instanceID); err != nil {
			return err
		}
		return repos.InstanceRepo.DeleteInstance(ctx, instanceID)
	})
	if err != nil {
		return s.sanitize(ctx, err, "DeleteDraft", slog.String("instance_id", instanceID))
	}

	s.LogInfo(ctx, "Workflow draft deleted", slog.String("instance_id", instanceID))
	return nil
}

// Submit moves the owner's draft to the first reviewing status.
func (s *workflowService) Submit(ctx context.Context, wfType domain.WorkflowType, instanceID string, ownerID string) (*domain.WorkflowInstance, error) {
	def, policy, err := s.lookup(wfType)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	var inst *domain.WorkflowInstance
	var evt domain.WorkflowEvent
	err = s.uow.WithinTx(ctx, func(ctx context.Context, repos portsrepo.RepositoryProvider) error {
		inst, err = lockOwnedInstance(ctx, repos, wfType, instanceID, ownerID)
		if err != nil {
			return err
		}
		if inst.Status != domain.StatusDraft {
			return domain.ErrNotDraft
		}
		if def.RequiresTerms && !inst.TermsAgreed {
			return domain.ErrTermsNotAgreed
		}

		inst.SubmittedAt = &now
		// Account state may have moved since the draft was saved.
		if err := policy.Prepare(ctx, repos, inst, now); err != nil {
			return err
		}

		if def.LedgerAtDraft {
			rows, err := repos.LedgerRepo.FindLedgerRows(ctx, inst.InstanceID)
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				if err := repos.LedgerRepo.SaveLedgerRows(ctx, ledgerRows(inst, def.Steps, now)); err != nil {
					return err
				}
			}
		} else if err := repos.LedgerRepo.SaveLedgerRows(ctx, ledgerRows(inst, def.Steps, now)); err != nil {
			return err
		}

		first := def.Steps.First()
		inst.Status = def.Steps.StatusFor(first)
		inst.CurrentStep = stepRef(first)
		evt = event(inst, domain.EventSubmitted, stepRef(first), ownerID, nil, now)
		return save(ctx, repos, inst, history(inst, domain.ActionSubmitted, domain.StatusDraft, stepRef(first), ownerID, nil, now))
	})
	if err != nil {
		return nil, s.sanitize(ctx, err, "Submit", slog.String("instance_id", instanceID))
	}

	s.LogInfo(ctx, "Workflow submitted",
		slog.String("workflow", string(wfType)),
		slog.String("instance_id", inst.InstanceID),
		slog.String("status", string(inst.Status)))
	s.published(ctx, wfType, domain.ActionSubmitted, evt)
	return inst, nil
}

// ProcessApproval records approver's decision on the current step and advances, rejects or completes the instance.
func (s *workflowService) ProcessApproval(ctx context.Context, wfType domain.WorkflowType, instanceID string, approver domain.Actor, decision domain.Decision, notes *string) (*domain.WorkflowInstance, error) {
	def, policy, err := s.lookup(wfType)
	if err != nil {
		return nil, err
	}
	if !decision.IsValid() {
		return nil, domain.ErrInvalidDecision
	}

	now := s.Now()
	var inst *domain.WorkflowInstance
	var evt domain.WorkflowEvent
	var action domain.HistoryAction
	err = s.uow.WithinTx(ctx, func(ctx context.Context, repos portsrepo.RepositoryProvider) error {
		inst, err = lockInstance(ctx, repos, wfType, instanceID)
		if err != nil {
			return err
		}
		if inst.CurrentStep == nil || !inst.Status.IsReviewing() {
			return domain.ErrNotInReview
		}
		step := *inst.CurrentStep
		if !def.Steps.Contains(step) {
			return domain.ErrNotInReview
		}
		if !def.Authorizes(approver.Roles, step) {
			return domain.ErrStepForbidden
		}

		row, err := repos.LedgerRepo.FindLedgerRow(ctx, inst.InstanceID, step)
		if err != nil {
			return err
		}
		if !row.IsPending() {
			return domain.ErrStepAlreadyProcessed
		}
		row.Decision = &decision
		row.ApproverID = &approver.UserID
		row.DecidedAt = &now
		row.Notes = notes
		if err := repos.LedgerRepo.RecordDecision(ctx, *row); err != nil {
			return err
		}

		from := inst.Status
		switch {
		case decision == domain.DecisionRejected:
			action = domain.ActionRejected
			inst.Status = domain.StatusRejected
			inst.CurrentStep = nil
			inst.RejectedAt = &now
			inst.RejectionReason = notes
			evt = event(inst, domain.EventRejected, stepRef(step), approver.UserID, notes, now)
		case !def.Steps.IsLast(step):
			next, _ := def.Steps.Next(step)
			action = domain.ActionApproved
			inst.Status = def.Steps.StatusFor(next)
			inst.CurrentStep = stepRef(next)
			evt = event(inst, domain.EventStepAdvanced, stepRef(next), approver.UserID, notes, now)
		default:
			action = domain.ActionCompleted
			inst.Status = def.TerminalStatus
			inst.CurrentStep = nil
			inst.ApprovedAt = &now
			if def.TerminalStatus == domain.StatusCompleted {
				inst.CompletedAt = &now
			}
			if err := policy.Complete(ctx, repos, inst, approver.UserID, now); err != nil {
				return err
			}
			evt = event(inst, domain.EventCompleted, stepRef(step), approver.UserID, notes, now)
		}

		return save(ctx, repos, inst, history(inst, action, from, stepRef(step), approver.UserID, notes, now))
	})
	if err != nil {
		return nil, s.sanitize(ctx, err, "ProcessApproval",
			slog.String("instance_id", instanceID),
			slog.String("approver_id", approver.UserID))
	}

	s.LogInfo(ctx, "Workflow step processed",
		slog.String("workflow", string(wfType)),
		slog.String("instance_id", inst.InstanceID),
		slog.String("decision", string(decision)),
		slog.String("status", string(inst.Status)))
	s.published(ctx, wfType, action, evt)
	return inst, nil
}

// Cancel withdraws the owner's instance while it is still in a cancellable step.
func (s *workflowService) Cancel(ctx context.Context, wfType domain.WorkflowType, instanceID string, ownerID string) (*domain.WorkflowInstance, error) {
	def, _, err := s.lookup(wfType)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	var inst *domain.WorkflowInstance
	var evt domain.WorkflowEvent
	err = s.uow.WithinTx(ctx, func(ctx context.Context, repos portsrepo.RepositoryProvider) error {
		inst, err = lockOwnedInstance(ctx, repos, wfType, instanceID, ownerID)
		if err != nil {
			return err
		}
		if inst.CurrentStep == nil || !inst.Status.IsReviewing() || !def.CanCancelAt(*inst.CurrentStep) {
			return domain.ErrCancelNotAllowed
		}

		step := *inst.CurrentStep
		from := inst.Status
		inst.Status = domain.StatusCancelled
		inst.CurrentStep = nil
		inst.CancelledAt = &now
		evt = event(inst, domain.EventCancelled, stepRef(step), ownerID, nil, now)
		return save(ctx, repos, inst, history(inst, domain.ActionCancelled, from, stepRef(step), ownerID, nil, now))
	})
	if err != nil {
		return nil, s.sanitize(ctx, err, "Cancel", slog.String("instance_id", instanceID))
	}

	s.LogInfo(ctx, "Workflow cancelled", slog.String("instance_id", inst.InstanceID))
	s.published(ctx, wfType, domain.ActionCancelled, evt)
	return inst, nil
}

// canView reports whether viewer may see inst: its owner, or anyone holding a role
// that acts on or is notified about the workflow.
func canView(def domain.Definition, inst *domain.WorkflowInstance, viewer domain.Actor) bool {
	if inst.IsOwnedBy(viewer.UserID) {
		return true
	}
	for _, role := range def.StepRoles {
		if viewer.HasAnyRole(role) {
			return true
		}
	}
	return viewer.HasAnyRole(def.InterestedRoles...)
}

// GetInstance returns the instance with its approval ledger and history.
func (s *workflowService) GetInstance(ctx context.Context, wfType domain.WorkflowType, instanceID string, viewer domain.Actor) (*dto.WorkflowDetail, error) {
	def, _, err := s.lookup(wfType)
	if err != nil {
		return nil, err
	}

	inst, err := s.repos.InstanceRepo.FindInstanceByID(ctx, instanceID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, domain.ErrInstanceNotFound
		}
		return nil, s.sanitize(ctx, err, "GetInstance", slog.String("instance_id", instanceID))
	}
	if inst.Type != wfType || !canView(def, inst, viewer) {
		return nil, domain.ErrInstanceNotFound
	}

	approvals, err := s.repos.LedgerRepo.FindLedgerRows(ctx, instanceID)
	if err != nil {
		return nil, s.sanitize(ctx, err, "GetInstance", slog.String("instance_id", instanceID))
	}
	entries, err := s.repos.HistoryRepo.ListHistory(ctx, instanceID)
	if err != nil {
		return nil, s.sanitize(ctx, err, "GetInstance", slog.String("instance_id", instanceID))
	}

	return &dto.WorkflowDetail{Instance: *inst, Approvals: approvals, History: entries}, nil
}

// ListMyInstances lists the owner's instances, newest first.
func (s *workflowService) ListMyInstances(ctx context.Context, wfType domain.WorkflowType, ownerID string, params dto.ListParams) ([]domain.WorkflowInstance, *string, error) {
	if _, _, err := s.lookup(wfType); err != nil {
		return nil, nil, err
	}
	limit := pagination.NormalizeLimit(params.Limit, defaultPageSize, maxPageSize)

	items, next, err := s.repos.InstanceRepo.ListInstancesByOwner(ctx, wfType, ownerID, limit, params.NextToken)
	if err != nil {
		return nil, nil, s.sanitize(ctx, err, "ListMyInstances", slog.String("owner_id", ownerID))
	}
	return items, next, nil
}

// ListPendingApprovals lists instances awaiting a step the approver's roles may act on, oldest first.
func (s *workflowService) ListPendingApprovals(ctx context.Context, wfType domain.WorkflowType, approver domain.Actor, params dto.ListParams) ([]domain.WorkflowInstance, *string, error) {
	def, _, err := s.lookup(wfType)
	if err != nil {
		return nil, nil, err
	}
	steps := def.StepsFor(approver.Roles)
	if len(steps) == 0 {
		return []domain.WorkflowInstance{}, nil, nil
	}
	limit := pagination.NormalizeLimit(params.Limit, defaultPageSize, maxPageSize)

	items, next, err := s.repos.InstanceRepo.ListInstancesAwaitingSteps(ctx, wfType, steps, limit, params.NextToken)
	if err != nil {
		return nil, nil, s.sanitize(ctx, err, "ListPendingApprovals", slog.String("approver_id", approver.UserID))
	}
	return items, next, nil
}
