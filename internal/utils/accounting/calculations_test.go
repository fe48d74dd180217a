package accounting

import (
	"testing"
	"time"

	"github.com/SscSPs/koperasi_backend/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateSignedAmount(t *testing.T) {
	amount := decimal.NewFromInt(500)

	tests := []struct {
		name        string
		txnType     domain.TransactionType
		accountType domain.AccountType
		want        decimal.Decimal
	}{
		{"credit to savings increases", domain.Credit, domain.SimpananSukarela, amount},
		{"debit from deposit decreases", domain.Debit, domain.Deposito, amount.Neg()},
		{"debit to loan increases outstanding", domain.Debit, domain.Pinjaman, amount},
		{"credit to loan reduces outstanding", domain.Credit, domain.Pinjaman, amount.Neg()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CalculateSignedAmount(tt.txnType, amount, tt.accountType)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %s got %s", tt.want, got)
		})
	}

	_, err := CalculateSignedAmount(domain.Credit, amount, domain.AccountType("BOGUS"))
	assert.Error(t, err)
}

func TestApplyPosting(t *testing.T) {
	savings := domain.Account{AccountType: domain.SimpananSukarela, Balance: decimal.NewFromInt(1000)}

	next, err := ApplyPosting(savings, domain.Debit, decimal.NewFromInt(400))
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(600).Equal(next))

	_, err = ApplyPosting(savings, domain.Debit, decimal.NewFromInt(1001))
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)

	_, err = ApplyPosting(savings, domain.Credit, decimal.Zero)
	assert.ErrorIs(t, err, domain.ErrAmountNotPositive)

	loan := domain.Account{AccountType: domain.Pinjaman, Balance: decimal.NewFromInt(300)}
	next, err = ApplyPosting(loan, domain.Credit, decimal.NewFromInt(300))
	require.NoError(t, err)
	assert.True(t, next.IsZero())

	_, err = ApplyPosting(loan, domain.Credit, decimal.NewFromInt(301))
	assert.ErrorIs(t, err, domain.ErrAmountExceedsLoan)
}

func TestEarlyWithdrawalPenalty(t *testing.T) {
	maturity := time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)
	deposit := domain.Account{AccountType: domain.Deposito, MaturityDate: &maturity}
	rate := decimal.RequireFromString("0.02")
	amount := decimal.NewFromInt(5_000_000)

	penalty := EarlyWithdrawalPenalty(deposit, amount, rate, maturity.AddDate(0, -1, 0))
	assert.True(t, decimal.NewFromInt(100_000).Equal(penalty), "got %s", penalty)

	assert.True(t, EarlyWithdrawalPenalty(deposit, amount, rate, maturity).IsZero())
	assert.True(t, EarlyWithdrawalPenalty(domain.Account{}, amount, rate, maturity).IsZero())
}
