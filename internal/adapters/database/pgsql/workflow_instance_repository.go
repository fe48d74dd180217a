package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/koperasi_backend/internal/apperrors"
	"github.com/SscSPs/koperasi_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/koperasi_backend/internal/core/ports/repositories"
	"github.com/SscSPs/koperasi_backend/internal/models"
	"github.com/SscSPs/koperasi_backend/internal/utils/mapping"
	"github.com/SscSPs/koperasi_backend/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
)

const instanceColumns = `instance_id, workflow_type, human_number, status, current_step, owner_id,
	amount, tenor_months, interest_rate, target_account_id, penalty_amount, net_amount, maturity_date,
	terms_agreed, attributes, submitted_at, approved_at, completed_at, rejected_at, rejection_reason,
	cancelled_at, version, created_at, created_by, last_updated_at, last_updated_by`

type PgxWorkflowInstanceRepository struct {
	BaseRepository
}

var _ portsrepo.WorkflowInstanceRepositoryFacade = (*PgxWorkflowInstanceRepository)(nil)

func (r *PgxWorkflowInstanceRepository) findOne(ctx context.Context, query string, args ...any) (*domain.WorkflowInstance, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapError(err, "workflow instance")
	}
	m, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[models.WorkflowInstance])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInstanceNotFound
		}
		return nil, r.mapError(err, "workflow instance")
	}
	inst := mapping.ToDomainWorkflowInstance(m)
	return &inst, nil
}

// FindInstanceByID retrieves an instance by its ID.
func (r *PgxWorkflowInstanceRepository) FindInstanceByID(ctx context.Context, instanceID string) (*domain.WorkflowInstance, error) {
	return r.findOne(ctx, `SELECT `+instanceColumns+` FROM workflow_instances WHERE instance_id = $1`, instanceID)
}

// FindInstanceByIDForUpdate retrieves an instance and locks the row until the transaction ends.
func (r *PgxWorkflowInstanceRepository) FindInstanceByIDForUpdate(ctx context.Context, instanceID string) (*domain.WorkflowInstance, error) {
	return r.findOne(ctx, `SELECT `+instanceColumns+` FROM workflow_instances WHERE instance_id = $1 FOR UPDATE`, instanceID)
}

func (r *PgxWorkflowInstanceRepository) collectPage(ctx context.Context, limit int, sortKey func(domain.WorkflowInstance) time.Time, query string, args ...any) ([]domain.WorkflowInstance, *string, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, r.mapError(err, "workflow instances")
	}
	ms, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.WorkflowInstance])
	if err != nil {
		return nil, nil, r.mapError(err, "workflow instances")
	}

	instances := mapping.ToDomainWorkflowInstanceSlice(ms)
	var next *string
	if len(instances) > limit {
		instances = instances[:limit]
		last := instances[limit-1]
		token := pagination.EncodeToken(sortKey(last), last.InstanceID)
		next = &token
	}
	return instances, next, nil
}

// ListInstancesByOwner lists the owner's instances of one workflow type, newest first.
func (r *PgxWorkflowInstanceRepository) ListInstancesByOwner(ctx context.Context, wfType domain.WorkflowType, ownerID string, limit int, nextToken *string) ([]domain.WorkflowInstance, *string, error) {
	query := `SELECT ` + instanceColumns + ` FROM workflow_instances WHERE workflow_type = $1 AND owner_id = $2`
	args := []any{string(wfType), ownerID}
	if nextToken != nil && *nextToken != "" {
		createdAt, id, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		query += ` AND (created_at, instance_id) < ($3, $4)`
		args = append(args, createdAt, id)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC, instance_id DESC LIMIT %d`, limit+1)

	return r.collectPage(ctx, limit, func(w domain.WorkflowInstance) time.Time { return w.CreatedAt }, query, args...)
}

// ListInstancesAwaitingSteps lists instances whose current step is one of steps, oldest submission first.
func (r *PgxWorkflowInstanceRepository) ListInstancesAwaitingSteps(ctx context.Context, wfType domain.WorkflowType, steps []domain.Step, limit int, nextToken *string) ([]domain.WorkflowInstance, *string, error) {
	if len(steps) == 0 {
		return []domain.WorkflowInstance{}, nil, nil
	}
	stepNames := make([]string, len(steps))
	for i, s := range steps {
		stepNames[i] = string(s)
	}

	query := `SELECT ` + instanceColumns + ` FROM workflow_instances WHERE workflow_type = $1 AND current_step = ANY($2)`
	args := []any{string(wfType), stepNames}
	if nextToken != nil && *nextToken != "" {
		submittedAt, id, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		query += ` AND (submitted_at, instance_id) > ($3, $4)`
		args = append(args, submittedAt, id)
	}
	query += fmt.Sprintf(` ORDER BY submitted_at ASC, instance_id ASC LIMIT %d`, limit+1)

	return r.collectPage(ctx, limit, func(w domain.WorkflowInstance) time.Time {
		if w.SubmittedAt == nil {
			return w.CreatedAt
		}
		return *w.SubmittedAt
	}, query, args...)
}

// SaveInstance persists a new instance.
func (r *PgxWorkflowInstanceRepository) SaveInstance(ctx context.Context, instance domain.WorkflowInstance) error {
	m := mapping.ToModelWorkflowInstance(instance)
	query := `INSERT INTO workflow_instances (` + instanceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26)`
	_, err := r.db.Exec(ctx, query,
		m.InstanceID, m.WorkflowType, m.HumanNumber, m.Status, m.CurrentStep, m.OwnerID,
		m.Amount, m.TenorMonths, m.InterestRate, m.TargetAccountID, m.PenaltyAmount, m.NetAmount, m.MaturityDate,
		m.TermsAgreed, m.Attributes, m.SubmittedAt, m.ApprovedAt, m.CompletedAt, m.RejectedAt, m.RejectionReason,
		m.CancelledAt, m.Version, m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	return r.mapError(err, "workflow instance "+m.InstanceID)
}

// UpdateInstance writes every mutable column and bumps version, guarded by expectedVersion.
func (r *PgxWorkflowInstanceRepository) UpdateInstance(ctx context.Context, instance domain.WorkflowInstance, expectedVersion int64) error {
	m := mapping.ToModelWorkflowInstance(instance)
	query := `UPDATE workflow_instances SET
			status = $3, current_step = $4, amount = $5, tenor_months = $6, interest_rate = $7,
			target_account_id = $8, penalty_amount = $9, net_amount = $10, maturity_date = $11,
			terms_agreed = $12, attributes = $13, submitted_at = $14, approved_at = $15,
			completed_at = $16, rejected_at = $17, rejection_reason = $18, cancelled_at = $19,
			version = $20, last_updated_at = $21, last_updated_by = $22
		WHERE instance_id = $1 AND version = $2`
	tag, err := r.db.Exec(ctx, query,
		m.InstanceID, expectedVersion,
		m.Status, m.CurrentStep, m.Amount, m.TenorMonths, m.InterestRate,
		m.TargetAccountID, m.PenaltyAmount, m.NetAmount, m.MaturityDate,
		m.TermsAgreed, m.Attributes, m.SubmittedAt, m.ApprovedAt,
		m.CompletedAt, m.RejectedAt, m.RejectionReason, m.CancelledAt,
		m.Version, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return r.mapError(err, "workflow instance "+m.InstanceID)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConcurrentUpdate
	}
	return nil
}

// DeleteInstance removes an instance. Ledger rows go with it through ON DELETE CASCADE.
func (r *PgxWorkflowInstanceRepository) DeleteInstance(ctx context.Context, instanceID string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM workflow_instances WHERE instance_id = $1`, instanceID)
	if err != nil {
		return r.mapError(err, "workflow instance "+instanceID)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInstanceNotFound
	}
	return nil
}
