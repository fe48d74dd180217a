package mapping

import (
	"github.com/SscSPs/koperasi_backend/internal/core/domain"
	"github.com/SscSPs/koperasi_backend/internal/models"
)

func ToModelAccount(d domain.Account) models.Account {
	return models.Account{
		AccountID:    d.AccountID,
		OwnerID:      d.OwnerID,
		AccountType:  string(d.AccountType),
		Balance:      d.Balance,
		Status:       string(d.Status),
		TenorMonths:  d.TenorMonths,
		InterestRate: d.InterestRate,
		StartDate:    d.StartDate,
		MaturityDate: d.MaturityDate,
		AuditFields:  ToModelAuditFields(d.AuditFields),
	}
}

func ToDomainAccount(m models.Account) domain.Account {
	return domain.Account{
		AccountID:    m.AccountID,
		OwnerID:      m.OwnerID,
		AccountType:  domain.AccountType(m.AccountType),
		Balance:      m.Balance,
		Status:       domain.AccountStatus(m.Status),
		TenorMonths:  m.TenorMonths,
		InterestRate: m.InterestRate,
		StartDate:    m.StartDate,
		MaturityDate: m.MaturityDate,
		AuditFields:  ToDomainAuditFields(m.AuditFields),
	}
}

func ToDomainAccountSlice(ms []models.Account) []domain.Account {
	ds := make([]domain.Account, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainAccount(m)
	}
	return ds
}

func ToModelTransaction(d domain.Transaction) models.Transaction {
	return models.Transaction{
		TransactionID:      d.TransactionID,
		AccountID:          d.AccountID,
		WorkflowInstanceID: d.WorkflowInstanceID,
		TransactionType:    string(d.TransactionType),
		Amount:             d.Amount,
		RunningBalance:     d.RunningBalance,
		AuthorizedBy:       d.AuthorizedBy,
		Notes:              d.Notes,
		CreatedAt:          d.CreatedAt,
	}
}

func ToDomainTransaction(m models.Transaction) domain.Transaction {
	return domain.Transaction{
		TransactionID:      m.TransactionID,
		AccountID:          m.AccountID,
		WorkflowInstanceID: m.WorkflowInstanceID,
		TransactionType:    domain.TransactionType(m.TransactionType),
		Amount:             m.Amount,
		RunningBalance:     m.RunningBalance,
		AuthorizedBy:       m.AuthorizedBy,
		Notes:              m.Notes,
		CreatedAt:          m.CreatedAt,
	}
}

func ToDomainTransactionSlice(ms []models.Transaction) []domain.Transaction {
	ds := make([]domain.Transaction, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainTransaction(m)
	}
	return ds
}
