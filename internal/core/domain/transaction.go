package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType indicates whether a ledger entry is a Debit or a Credit.
type TransactionType string

const (
	Debit  TransactionType = "DEBIT"
	Credit TransactionType = "CREDIT"
)

// Transaction is an immutable ledger entry against one account. Entries are only ever appended.
type Transaction struct {
	TransactionID      string          `json:"transactionID"`
	AccountID          string          `json:"accountID"`
	WorkflowInstanceID *string         `json:"workflowInstanceID"`
	TransactionType    TransactionType `json:"transactionType"`
	Amount             decimal.Decimal `json:"amount"`         // Positive value
	RunningBalance     decimal.Decimal `json:"runningBalance"` // Account balance after this entry
	AuthorizedBy       string          `json:"authorizedBy"`
	Notes              string          `json:"notes"`
	CreatedAt          time.Time       `json:"createdAt"`
}
