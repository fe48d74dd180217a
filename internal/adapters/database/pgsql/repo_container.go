package pgsql

import (
	portsrepo "github.com/SscSPs/koperasi_backend/internal/core/ports/repositories"
)

// NewRepositoryProvider binds every repository to db, which is either the pool or a transaction.
func NewRepositoryProvider(db DBTX) portsrepo.RepositoryProvider {
	base := BaseRepository{db: db}
	return portsrepo.RepositoryProvider{
		InstanceRepo:    &PgxWorkflowInstanceRepository{base},
		LedgerRepo:      &PgxApprovalLedgerRepository{base},
		HistoryRepo:     &PgxWorkflowHistoryRepository{base},
		SequenceRepo:    &PgxSequenceRepository{base},
		AccountRepo:     &PgxAccountRepository{base},
		TransactionRepo: &PgxTransactionRepository{base},
		UserRepo:        &PgxUserRepository{base},
	}
}
