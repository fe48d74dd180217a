package pgsql

import (
	"context"

	"github.com/SscSPs/koperasi_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/koperasi_backend/internal/core/ports/repositories"
	"github.com/SscSPs/koperasi_backend/internal/models"
	"github.com/SscSPs/koperasi_backend/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
)

const ledgerColumns = `row_id, instance_id, step, position, decision, approver_id, decided_at, notes, created_at`

type PgxApprovalLedgerRepository struct {
	BaseRepository
}

var _ portsrepo.ApprovalLedgerRepository = (*PgxApprovalLedgerRepository)(nil)

// SaveLedgerRows inserts all rows with a single batch round trip.
func (r *PgxApprovalLedgerRepository) SaveLedgerRows(ctx context.Context, rows []domain.ApprovalLedgerRow) error {
	if len(rows) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, row := range rows {
		m := mapping.ToModelLedgerRow(row)
		batch.Queue(`INSERT INTO approval_ledger (`+ledgerColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			m.RowID, m.InstanceID, m.Step, m.Position, m.Decision, m.ApproverID, m.DecidedAt, m.Notes, m.CreatedAt)
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()
	for range rows {
		if _, err := results.Exec(); err != nil {
			return r.mapError(err, "approval ledger row")
		}
	}
	return nil
}

func (r *PgxApprovalLedgerRepository) FindLedgerRows(ctx context.Context, instanceID string) ([]domain.ApprovalLedgerRow, error) {
	rows, err := r.db.Query(ctx, `SELECT `+ledgerColumns+` FROM approval_ledger WHERE instance_id = $1 ORDER BY position`, instanceID)
	if err != nil {
		return nil, r.mapError(err, "approval ledger")
	}
	ms, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.ApprovalLedgerRow])
	if err != nil {
		return nil, r.mapError(err, "approval ledger")
	}
	return mapping.ToDomainLedgerRowSlice(ms), nil
}

func (r *PgxApprovalLedgerRepository) FindLedgerRow(ctx context.Context, instanceID string, step domain.Step) (*domain.ApprovalLedgerRow, error) {
	rows, err := r.db.Query(ctx, `SELECT `+ledgerColumns+` FROM approval_ledger WHERE instance_id = $1 AND step = $2`, instanceID, string(step))
	if err != nil {
		return nil, r.mapError(err, "approval ledger row")
	}
	m, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[models.ApprovalLedgerRow])
	if err != nil {
		return nil, r.mapError(err, "approval ledger row")
	}
	row := mapping.ToDomainLedgerRow(m)
	return &row, nil
}

// RecordDecision only touches a row whose decision is still NULL, so two approvers
// racing on the same step cannot both succeed.
func (r *PgxApprovalLedgerRepository) RecordDecision(ctx context.Context, row domain.ApprovalLedgerRow) error {
	m := mapping.ToModelLedgerRow(row)
	tag, err := r.db.Exec(ctx, `UPDATE approval_ledger
		SET decision = $3, approver_id = $4, decided_at = $5, notes = $6
		WHERE instance_id = $1 AND step = $2 AND decision IS NULL`,
		m.InstanceID, m.Step, m.Decision, m.ApproverID, m.DecidedAt, m.Notes)
	if err != nil {
		return r.mapError(err, "approval ledger row")
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	// Tell a missing row apart from an already decided one.
	if _, err := r.FindLedgerRow(ctx, row.InstanceID, row.Step); err != nil {
		return err
	}
	return domain.ErrStepAlreadyProcessed
}

func (r *PgxApprovalLedgerRepository) DeleteLedgerRows(ctx context.Context, instanceID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM approval_ledger WHERE instance_id = $1`, instanceID)
	return r.mapError(err, "approval ledger")
}
