package accounting

import (
	"fmt"
	"time"

	"github.com/SscSPs/koperasi_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CalculateSignedAmount returns the effect of a ledger entry on an account balance.
//
// Savings and deposit accounts hold money owed to the member: CREDIT increases, DEBIT decreases.
// A loan account holds money owed by the member: DEBIT increases the outstanding amount,
// CREDIT (a repayment) decreases it.
func CalculateSignedAmount(txnType domain.TransactionType, amount decimal.Decimal, accountType domain.AccountType) (decimal.Decimal, error) {
	isDebit := txnType == domain.Debit
	switch accountType {
	case domain.SimpananPokok, domain.SimpananWajib, domain.SimpananSukarela, domain.Deposito:
		if isDebit {
			return amount.Neg(), nil
		}
		return amount, nil
	case domain.Pinjaman:
		if isDebit {
			return amount, nil
		}
		return amount.Neg(), nil
	default:
		return decimal.Zero, fmt.Errorf("unknown account type '%s'", accountType)
	}
}

// ApplyPosting returns the account's balance after posting amount as txnType.
// Amounts must be positive and no balance may go below zero.
func ApplyPosting(account domain.Account, txnType domain.TransactionType, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, domain.ErrAmountNotPositive
	}
	signed, err := CalculateSignedAmount(txnType, amount, account.AccountType)
	if err != nil {
		return decimal.Zero, err
	}
	next := account.Balance.Add(signed)
	if next.IsNegative() {
		if account.AccountType == domain.Pinjaman {
			return decimal.Zero, domain.ErrAmountExceedsLoan
		}
		return decimal.Zero, domain.ErrInsufficientBalance
	}
	return next, nil
}

// EarlyWithdrawalPenalty returns amount*rate, rounded to 2 places, when at is before the
// deposit's maturity date, and zero otherwise.
func EarlyWithdrawalPenalty(deposit domain.Account, amount decimal.Decimal, rate decimal.Decimal, at time.Time) decimal.Decimal {
	if deposit.MaturityDate == nil || !at.Before(*deposit.MaturityDate) {
		return decimal.Zero
	}
	return amount.Mul(rate).Round(2)
}
