package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a row of the append-only transactions table.
type Transaction struct {
	TransactionID      string          `db:"transaction_id"`
	AccountID          string          `db:"account_id"`
	WorkflowInstanceID *string         `db:"workflow_instance_id"`
	TransactionType    string          `db:"transaction_type"`
	Amount             decimal.Decimal `db:"amount"`
	RunningBalance     decimal.Decimal `db:"running_balance"`
	AuthorizedBy       string          `db:"authorized_by"`
	Notes              string          `db:"notes"`
	CreatedAt          time.Time       `db:"created_at"`
}
