package pgsql

import (
	"context"

	portsrepo "github.com/SscSPs/koperasi_backend/internal/core/ports/repositories"
)

type PgxSequenceRepository struct {
	BaseRepository
}

var _ portsrepo.SequenceRepository = (*PgxSequenceRepository)(nil)

// NextSequence increments the (prefix, day) counter in one statement. The row lock taken by
// the upsert serializes concurrent creators until their transaction ends.
func (r *PgxSequenceRepository) NextSequence(ctx context.Context, prefix string, day string) (int64, error) {
	var next int64
	err := r.db.QueryRow(ctx, `INSERT INTO workflow_sequences (prefix, day, last_value) VALUES ($1, $2, 1)
		ON CONFLICT (prefix, day) DO UPDATE SET last_value = workflow_sequences.last_value + 1
		RETURNING last_value`, prefix, day).Scan(&next)
	if err != nil {
		return 0, r.mapError(err, "workflow sequence "+prefix)
	}
	return next, nil
}
