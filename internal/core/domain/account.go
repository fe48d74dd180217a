package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType is the kind of member account a balance is held in.
type AccountType string

const (
	SimpananPokok    AccountType = "SIMPANAN_POKOK"    // Principal savings, paid once on joining
	SimpananWajib    AccountType = "SIMPANAN_WAJIB"    // Mandatory monthly savings
	SimpananSukarela AccountType = "SIMPANAN_SUKARELA" // Voluntary savings, withdrawable
	Deposito         AccountType = "DEPOSITO"          // Time deposit
	Pinjaman         AccountType = "PINJAMAN"          // Loan; balance is the outstanding amount
)

// IsValid reports whether t is a known account type.
func (t AccountType) IsValid() bool {
	switch t {
	case SimpananPokok, SimpananWajib, SimpananSukarela, Deposito, Pinjaman:
		return true
	}
	return false
}

// AccountStatus is the lifecycle status of an account.
type AccountStatus string

const (
	AccountActive  AccountStatus = "ACTIVE"
	AccountClosed  AccountStatus = "CLOSED"
	AccountPaidOff AccountStatus = "PAID_OFF"
)

// Account holds a member's balance of one AccountType.
type Account struct {
	AccountID   string          `json:"accountID"`
	OwnerID     string          `json:"ownerID"`
	AccountType AccountType     `json:"accountType"`
	Balance     decimal.Decimal `json:"balance"`
	Status      AccountStatus   `json:"status"`

	// Deposit terms; zero for other account types.
	TenorMonths  int             `json:"tenorMonths"`
	InterestRate decimal.Decimal `json:"interestRate"`
	StartDate    *time.Time      `json:"startDate"`
	MaturityDate *time.Time      `json:"maturityDate"`

	AuditFields
}

// IsActive reports whether the account accepts postings.
func (a *Account) IsActive() bool {
	return a.Status == AccountActive
}
