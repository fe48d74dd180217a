package repositories

import (
	"context"

	"github.com/SscSPs/koperasi_backend/internal/core/domain"
)

// WorkflowInstanceReader defines read operations for workflow instances.
type WorkflowInstanceReader interface {
	// FindInstanceByID retrieves an instance by its ID.
	FindInstanceByID(ctx context.Context, instanceID string) (*domain.WorkflowInstance, error)

	// ListInstancesByOwner lists the owner's instances of one workflow type, newest first.
	ListInstancesByOwner(ctx context.Context, wfType domain.WorkflowType, ownerID string, limit int, nextToken *string) ([]domain.WorkflowInstance, *string, error)

	// ListInstancesAwaitingSteps lists instances whose current step is one of steps, oldest first.
	ListInstancesAwaitingSteps(ctx context.Context, wfType domain.WorkflowType, steps []domain.Step, limit int, nextToken *string) ([]domain.WorkflowInstance, *string, error)
}

// WorkflowInstanceWriter defines write operations for workflow instances.
type WorkflowInstanceWriter interface {
	// SaveInstance persists a new instance. A clashing human number yields apperrors.ErrDuplicate.
	SaveInstance(ctx context.Context, instance domain.WorkflowInstance) error

	// UpdateInstance writes instance back only if the stored version still equals
	// expectedVersion; otherwise it returns domain.ErrConcurrentUpdate.
	UpdateInstance(ctx context.Context, instance domain.WorkflowInstance, expectedVersion int64) error

	// DeleteInstance removes an instance.
	DeleteInstance(ctx context.Context, instanceID string) error
}

// WorkflowInstanceLocker supports row locking inside a transaction.
type WorkflowInstanceLocker interface {
	// FindInstanceByIDForUpdate retrieves an instance and locks it until the transaction ends.
	FindInstanceByIDForUpdate(ctx context.Context, instanceID string) (*domain.WorkflowInstance, error)
}

// WorkflowInstanceRepositoryFacade combines all workflow instance repository interfaces.
type WorkflowInstanceRepositoryFacade interface {
	WorkflowInstanceReader
	WorkflowInstanceWriter
	WorkflowInstanceLocker
}

// ApprovalLedgerRepository stores one decision row per (instance, step).
type ApprovalLedgerRepository interface {
	// SaveLedgerRows inserts pending rows. A second row for the same step yields apperrors.ErrDuplicate.
	SaveLedgerRows(ctx context.Context, rows []domain.ApprovalLedgerRow) error

	// FindLedgerRows returns all rows of an instance in step order.
	FindLedgerRows(ctx context.Context, instanceID string) ([]domain.ApprovalLedgerRow, error)

	// FindLedgerRow returns the row for one step.
	FindLedgerRow(ctx context.Context, instanceID string, step domain.Step) (*domain.ApprovalLedgerRow, error)

	// RecordDecision sets the decision fields of a pending row. If the row already
	// carries a decision it is left untouched and domain.ErrStepAlreadyProcessed is returned.
	RecordDecision(ctx context.Context, row domain.ApprovalLedgerRow) error

	// DeleteLedgerRows removes every row of an instance.
	DeleteLedgerRows(ctx context.Context, instanceID string) error
}

// WorkflowHistoryRepository stores the audit trail. Entries are never edited; they
// are only removed together with a deleted draft.
type WorkflowHistoryRepository interface {
	AppendHistory(ctx context.Context, entry domain.HistoryEntry) error
	ListHistory(ctx context.Context, instanceID string) ([]domain.HistoryEntry, error)
	DeleteHistory(ctx context.Context, instanceID string) error
}

// SequenceRepository hands out day-scoped counters atomically.
type SequenceRepository interface {
	// NextSequence increments and returns the counter for (prefix, day); the first call returns 1.
	NextSequence(ctx context.Context, prefix string, day string) (int64, error)
}
