package dto

import (
	"time"

	"github.com/SscSPs/koperasi_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// OpenAccountRequest defines the data needed to open a savings or loan account for a member.
type OpenAccountRequest struct {
	OwnerID        string             `json:"ownerID" binding:"required,uuid"`
	AccountType    domain.AccountType `json:"accountType" binding:"required,oneof=SIMPANAN_WAJIB SIMPANAN_SUKARELA PINJAMAN"`
	OpeningBalance decimal.Decimal    `json:"openingBalance" swaggertype:"string" example:"0"`
	Notes          string             `json:"notes" binding:"omitempty,max=500"`
}

// AccountResponse defines the data returned for an account.
// Mirrors domain.Account.
type AccountResponse struct {
	AccountID    string               `json:"accountID"`
	OwnerID      string               `json:"ownerID"`
	AccountType  domain.AccountType   `json:"accountType"`
	Balance      decimal.Decimal      `json:"balance" swaggertype:"string"`
	Status       domain.AccountStatus `json:"status"`
	TenorMonths  int                  `json:"tenorMonths,omitempty"`
	InterestRate decimal.Decimal      `json:"interestRate" swaggertype:"string"`
	StartDate    *time.Time           `json:"startDate,omitempty"`
	MaturityDate *time.Time           `json:"maturityDate,omitempty"`
	CreatedAt    time.Time            `json:"createdAt"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:    acc.AccountID,
		OwnerID:      acc.OwnerID,
		AccountType:  acc.AccountType,
		Balance:      acc.Balance,
		Status:       acc.Status,
		TenorMonths:  acc.TenorMonths,
		InterestRate: acc.InterestRate,
		StartDate:    acc.StartDate,
		MaturityDate: acc.MaturityDate,
		CreatedAt:    acc.CreatedAt,
	}
}

// ListAccountsResponse wraps the list of accounts.
type ListAccountsResponse struct {
	Accounts []AccountResponse `json:"accounts"`
}

// ToListAccountsResponse converts a slice of domain.Account to the list DTO.
func ToListAccountsResponse(accounts []domain.Account) ListAccountsResponse {
	res := make([]AccountResponse, len(accounts))
	for i := range accounts {
		res[i] = ToAccountResponse(&accounts[i])
	}
	return ListAccountsResponse{Accounts: res}
}

// TransactionResponse mirrors domain.Transaction.
type TransactionResponse struct {
	TransactionID      string                 `json:"transactionID"`
	WorkflowInstanceID *string                `json:"workflowInstanceID"`
	TransactionType    domain.TransactionType `json:"transactionType"`
	Amount             decimal.Decimal        `json:"amount" swaggertype:"string"`
	RunningBalance     decimal.Decimal        `json:"runningBalance" swaggertype:"string"`
	AuthorizedBy       string                 `json:"authorizedBy"`
	Notes              string                 `json:"notes"`
	CreatedAt          time.Time              `json:"createdAt"`
}

// ListTransactionsResponse wraps a page of ledger entries.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	NextToken    *string               `json:"nextToken,omitempty"`
}

// ToListTransactionsResponse converts a page of domain.Transaction.
func ToListTransactionsResponse(txns []domain.Transaction, nextToken *string) ListTransactionsResponse {
	res := make([]TransactionResponse, len(txns))
	for i, t := range txns {
		res[i] = TransactionResponse{
			TransactionID:      t.TransactionID,
			WorkflowInstanceID: t.WorkflowInstanceID,
			TransactionType:    t.TransactionType,
			Amount:             t.Amount,
			RunningBalance:     t.RunningBalance,
			AuthorizedBy:       t.AuthorizedBy,
			Notes:              t.Notes,
			CreatedAt:          t.CreatedAt,
		}
	}
	return ListTransactionsResponse{Transactions: res, NextToken: nextToken}
}
