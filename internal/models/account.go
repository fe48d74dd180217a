package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is a row of the accounts table.
type Account struct {
	AccountID    string          `db:"account_id"`
	OwnerID      string          `db:"owner_id"`
	AccountType  string          `db:"account_type"`
	Balance      decimal.Decimal `db:"balance"`
	Status       string          `db:"status"`
	TenorMonths  int             `db:"tenor_months"`
	InterestRate decimal.Decimal `db:"interest_rate"`
	StartDate    *time.Time      `db:"start_date"`
	MaturityDate *time.Time      `db:"maturity_date"`
	AuditFields
}
