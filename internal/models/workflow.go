package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// WorkflowInstance is a row of the workflow_instances table.
type WorkflowInstance struct {
	InstanceID      string              `db:"instance_id"`
	WorkflowType    string              `db:"workflow_type"`
	HumanNumber     string              `db:"human_number"`
	Status          string              `db:"status"`
	CurrentStep     *string             `db:"current_step"`
	OwnerID         string              `db:"owner_id"`
	Amount          decimal.Decimal     `db:"amount"`
	TenorMonths     int                 `db:"tenor_months"`
	InterestRate    decimal.Decimal     `db:"interest_rate"`
	TargetAccountID *string             `db:"target_account_id"`
	PenaltyAmount   decimal.NullDecimal `db:"penalty_amount"`
	NetAmount       decimal.NullDecimal `db:"net_amount"`
	MaturityDate    *time.Time          `db:"maturity_date"`
	TermsAgreed     bool                `db:"terms_agreed"`
	Attributes      map[string]string   `db:"attributes"`
	SubmittedAt     *time.Time          `db:"submitted_at"`
	ApprovedAt      *time.Time          `db:"approved_at"`
	CompletedAt     *time.Time          `db:"completed_at"`
	RejectedAt      *time.Time          `db:"rejected_at"`
	RejectionReason *string             `db:"rejection_reason"`
	CancelledAt     *time.Time          `db:"cancelled_at"`
	Version         int64               `db:"version"`
	AuditFields
}

// ApprovalLedgerRow is a row of the approval_ledger table.
type ApprovalLedgerRow struct {
	RowID      string     `db:"row_id"`
	InstanceID string     `db:"instance_id"`
	Step       string     `db:"step"`
	Position   int        `db:"position"`
	Decision   *string    `db:"decision"`
	ApproverID *string    `db:"approver_id"`
	DecidedAt  *time.Time `db:"decided_at"`
	Notes      *string    `db:"notes"`
	CreatedAt  time.Time  `db:"created_at"`
}

// HistoryEntry is a row of the workflow_history table.
type HistoryEntry struct {
	HistoryID  string    `db:"history_id"`
	InstanceID string    `db:"instance_id"`
	Action     string    `db:"action"`
	FromStatus string    `db:"from_status"`
	ToStatus   string    `db:"to_status"`
	Step       *string   `db:"step"`
	ActorID    string    `db:"actor_id"`
	Notes      *string   `db:"notes"`
	CreatedAt  time.Time `db:"created_at"`
}
