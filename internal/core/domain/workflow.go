package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// WorkflowType identifies one of the approval workflows run by the cooperative.
type WorkflowType string

const (
	DepositApplication WorkflowType = "DEPOSIT_APPLICATION"
	DepositChange      WorkflowType = "DEPOSIT_CHANGE"
	DepositWithdrawal  WorkflowType = "DEPOSIT_WITHDRAWAL"
	SavingsWithdrawal  WorkflowType = "SAVINGS_WITHDRAWAL"
	LoanRepayment      WorkflowType = "LOAN_REPAYMENT"
	MemberApplication  WorkflowType = "MEMBER_APPLICATION"
)

// Slug is the kebab-case plural used in URLs, e.g. "deposit-applications".
func (t WorkflowType) Slug() string {
	return strings.ReplaceAll(strings.ToLower(string(t)), "_", "-") + "s"
}

// WorkflowTypeFromSlug resolves a URL slug back to its workflow type.
func WorkflowTypeFromSlug(slug string) (WorkflowType, bool) {
	for _, t := range WorkflowTypes() {
		if t.Slug() == slug {
			return t, true
		}
	}
	return "", false
}

// Step is one stage of an approval chain.
type Step string

const (
	StepDivisiSimpanPinjam Step = "DIVISI_SIMPAN_PINJAM"
	StepKetua              Step = "KETUA"
	StepShopkeeper         Step = "SHOPKEEPER"
	StepKetuaAuth          Step = "KETUA_AUTH"
)

// WorkflowStatus is the lifecycle status of a workflow instance.
type WorkflowStatus string

const (
	StatusDraft     WorkflowStatus = "DRAFT"
	StatusApproved  WorkflowStatus = "APPROVED"
	StatusCompleted WorkflowStatus = "COMPLETED"
	StatusRejected  WorkflowStatus = "REJECTED"
	StatusCancelled WorkflowStatus = "CANCELLED"

	reviewStatusPrefix = "UNDER_REVIEW_"
)

// ReviewStatus returns the status meaning "awaiting a decision at step".
func ReviewStatus(step Step) WorkflowStatus {
	return WorkflowStatus(reviewStatusPrefix + string(step))
}

// IsReviewing reports whether the status is an UNDER_REVIEW_* status.
func (s WorkflowStatus) IsReviewing() bool {
	return strings.HasPrefix(string(s), reviewStatusPrefix)
}

// IsTerminal reports whether no further transition is possible from s.
func (s WorkflowStatus) IsTerminal() bool {
	switch s {
	case StatusApproved, StatusCompleted, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

// Decision is an approver's verdict on a step.
type Decision string

const (
	DecisionApproved Decision = "APPROVED"
	DecisionRejected Decision = "REJECTED"
)

// IsValid reports whether d is a known decision.
func (d Decision) IsValid() bool {
	return d == DecisionApproved || d == DecisionRejected
}

// WorkflowInstance is one deposit application, withdrawal, repayment, etc. moving through
// its approval chain. CurrentStep is non-nil exactly while Status is a reviewing status.
type WorkflowInstance struct {
	InstanceID  string         `json:"instanceID"`
	Type        WorkflowType   `json:"type"`
	HumanNumber string         `json:"humanNumber"`
	Status      WorkflowStatus `json:"status"`
	CurrentStep *Step          `json:"currentStep"`
	OwnerID     string         `json:"ownerID"`

	// Financial fields. Their meaning depends on Type; for DepositChange they hold the
	// requested new values for the deposit referenced by TargetAccountID.
	Amount          decimal.Decimal  `json:"amount"`
	TenorMonths     int              `json:"tenorMonths"`
	InterestRate    decimal.Decimal  `json:"interestRate"`
	TargetAccountID *string          `json:"targetAccountID"`
	PenaltyAmount   *decimal.Decimal `json:"penaltyAmount"`
	NetAmount       *decimal.Decimal `json:"netAmount"`
	MaturityDate    *time.Time       `json:"maturityDate"`

	TermsAgreed bool              `json:"termsAgreed"`
	Attributes  map[string]string `json:"attributes"`

	SubmittedAt     *time.Time `json:"submittedAt"`
	ApprovedAt      *time.Time `json:"approvedAt"`
	CompletedAt     *time.Time `json:"completedAt"`
	RejectedAt      *time.Time `json:"rejectedAt"`
	RejectionReason *string    `json:"rejectionReason"`
	CancelledAt     *time.Time `json:"cancelledAt"`

	Version int64 `json:"version"`
	AuditFields
}

// IsOwnedBy reports whether userID owns the instance.
func (w *WorkflowInstance) IsOwnedBy(userID string) bool {
	return w.OwnerID == userID
}

// ApprovalLedgerRow records the decision for one step of one instance.
// Decision, ApproverID, DecidedAt and Notes are set together, exactly once.
type ApprovalLedgerRow struct {
	RowID      string     `json:"rowID"`
	InstanceID string     `json:"instanceID"`
	Step       Step       `json:"step"`
	Position   int        `json:"position"`
	Decision   *Decision  `json:"decision"`
	ApproverID *string    `json:"approverID"`
	DecidedAt  *time.Time `json:"decidedAt"`
	Notes      *string    `json:"notes"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// IsPending reports whether no decision has been recorded yet.
func (r ApprovalLedgerRow) IsPending() bool {
	return r.Decision == nil
}

// HistoryAction names the transition recorded in a history entry.
type HistoryAction string

const (
	ActionCreated   HistoryAction = "CREATED"
	ActionUpdated   HistoryAction = "UPDATED"
	ActionSubmitted HistoryAction = "SUBMITTED"
	ActionApproved  HistoryAction = "APPROVED"
	ActionRejected  HistoryAction = "REJECTED"
	ActionCompleted HistoryAction = "COMPLETED"
	ActionCancelled HistoryAction = "CANCELLED"
)

// HistoryEntry is an append-only audit snapshot of a transition.
type HistoryEntry struct {
	HistoryID  string         `json:"historyID"`
	InstanceID string         `json:"instanceID"`
	Action     HistoryAction  `json:"action"`
	FromStatus WorkflowStatus `json:"fromStatus"`
	ToStatus   WorkflowStatus `json:"toStatus"`
	Step       *Step          `json:"step"`
	ActorID    string         `json:"actorID"`
	Notes      *string        `json:"notes"`
	CreatedAt  time.Time      `json:"createdAt"`
}

// MaturityDate returns start plus tenorMonths calendar months. The day is capped
// at the end of the target month, so Jan 31 plus one month is the last day of February.
func MaturityDate(start time.Time, tenorMonths int) time.Time {
	year, month, day := start.Date()
	target := time.Date(year, month+time.Month(tenorMonths), 1, 0, 0, 0, 0, start.Location())
	if last := target.AddDate(0, 1, -1).Day(); day > last {
		day = last
	}
	hour, minute, sec := start.Clock()
	return time.Date(target.Year(), target.Month(), day, hour, minute, sec, start.Nanosecond(), start.Location())
}
