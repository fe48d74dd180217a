package pgsql

import (
	"context"

	"github.com/SscSPs/koperasi_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/koperasi_backend/internal/core/ports/repositories"
	"github.com/SscSPs/koperasi_backend/internal/models"
	"github.com/SscSPs/koperasi_backend/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
)

type PgxWorkflowHistoryRepository struct {
	BaseRepository
}

var _ portsrepo.WorkflowHistoryRepository = (*PgxWorkflowHistoryRepository)(nil)

func (r *PgxWorkflowHistoryRepository) AppendHistory(ctx context.Context, entry domain.HistoryEntry) error {
	m := mapping.ToModelHistoryEntry(entry)
	_, err := r.db.Exec(ctx, `INSERT INTO workflow_history
		(history_id, instance_id, action, from_status, to_status, step, actor_id, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		m.HistoryID, m.InstanceID, m.Action, m.FromStatus, m.ToStatus, m.Step, m.ActorID, m.Notes, m.CreatedAt)
	return r.mapError(err, "workflow history")
}

func (r *PgxWorkflowHistoryRepository) ListHistory(ctx context.Context, instanceID string) ([]domain.HistoryEntry, error) {
	rows, err := r.db.Query(ctx, `SELECT history_id, instance_id, action, from_status, to_status, step, actor_id, notes, created_at
		FROM workflow_history WHERE instance_id = $1 ORDER BY created_at, history_id`, instanceID)
	if err != nil {
		return nil, r.mapError(err, "workflow history")
	}
	ms, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.HistoryEntry])
	if err != nil {
		return nil, r.mapError(err, "workflow history")
	}
	return mapping.ToDomainHistorySlice(ms), nil
}

func (r *PgxWorkflowHistoryRepository) DeleteHistory(ctx context.Context, instanceID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM workflow_history WHERE instance_id = $1`, instanceID)
	return r.mapError(err, "workflow history")
}
