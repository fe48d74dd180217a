package dto

import (
	"time"

	"github.com/SscSPs/koperasi_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// WorkflowDraftRequest carries the applicant-editable fields of a draft. Which fields
// matter depends on the workflow type; the rest are ignored.
type WorkflowDraftRequest struct {
	Amount          decimal.Decimal   `json:"amount" swaggertype:"string" example:"10000000"`
	TenorMonths     int               `json:"tenorMonths" binding:"omitempty,min=1,max=120"`
	InterestRate    decimal.Decimal   `json:"interestRate" swaggertype:"string" example:"0.055"`
	TargetAccountID *string           `json:"targetAccountID" binding:"omitempty,uuid"`
	TermsAgreed     bool              `json:"termsAgreed"`
	Attributes      map[string]string `json:"attributes" binding:"omitempty,max=50,dive,keys,max=64,endkeys,max=1024"`
}

// ApprovalRequest is an approver's decision on the current step.
type ApprovalRequest struct {
	Decision domain.Decision `json:"decision" binding:"required,workflow_decision" enums:"APPROVED,REJECTED"`
	Notes    *string         `json:"notes" binding:"omitempty,max=1000"`
}

// BulkApprovalRequest applies one decision to many instances.
type BulkApprovalRequest struct {
	IDs      []string        `json:"ids" binding:"required,min=1,dive,uuid"`
	Decision domain.Decision `json:"decision" binding:"required,workflow_decision" enums:"APPROVED,REJECTED"`
	Notes    *string         `json:"notes" binding:"omitempty,max=1000"`
}

// BulkFailure reports why one item of a bulk request failed.
type BulkFailure struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// BulkApprovalResult lists succeeded and failed IDs, each in request order.
type BulkApprovalResult struct {
	Success []string      `json:"success"`
	Failed  []BulkFailure `json:"failed"`
}

// BulkApprovalResponse is the body returned by the bulk endpoint.
type BulkApprovalResponse struct {
	Message string        `json:"message"`
	Success []string      `json:"success"`
	Failed  []BulkFailure `json:"failed"`
}

// WorkflowInstanceResponse mirrors domain.WorkflowInstance.
type WorkflowInstanceResponse struct {
	InstanceID      string                `json:"instanceID"`
	Type            domain.WorkflowType   `json:"type"`
	HumanNumber     string                `json:"humanNumber"`
	Status          domain.WorkflowStatus `json:"status"`
	CurrentStep     *domain.Step          `json:"currentStep"`
	OwnerID         string                `json:"ownerID"`
	Amount          decimal.Decimal       `json:"amount" swaggertype:"string"`
	TenorMonths     int                   `json:"tenorMonths"`
	InterestRate    decimal.Decimal       `json:"interestRate" swaggertype:"string"`
	TargetAccountID *string               `json:"targetAccountID"`
	PenaltyAmount   *decimal.Decimal      `json:"penaltyAmount" swaggertype:"string"`
	NetAmount       *decimal.Decimal      `json:"netAmount" swaggertype:"string"`
	MaturityDate    *time.Time            `json:"maturityDate"`
	TermsAgreed     bool                  `json:"termsAgreed"`
	Attributes      map[string]string     `json:"attributes"`
	SubmittedAt     *time.Time            `json:"submittedAt"`
	ApprovedAt      *time.Time            `json:"approvedAt"`
	CompletedAt     *time.Time            `json:"completedAt"`
	RejectedAt      *time.Time            `json:"rejectedAt"`
	RejectionReason *string               `json:"rejectionReason"`
	CancelledAt     *time.Time            `json:"cancelledAt"`
	CreatedAt       time.Time             `json:"createdAt"`
	LastUpdatedAt   time.Time             `json:"lastUpdatedAt"`
}

// WorkflowDetailResponse adds the approval ledger and audit trail to an instance.
type WorkflowDetailResponse struct {
	WorkflowInstanceResponse
	Approvals []domain.ApprovalLedgerRow `json:"approvals"`
	History   []domain.HistoryEntry      `json:"history"`
}

// ListWorkflowInstancesResponse wraps a page of instances.
type ListWorkflowInstancesResponse struct {
	Items     []WorkflowInstanceResponse `json:"items"`
	NextToken *string                    `json:"nextToken,omitempty"`
}

// ToWorkflowInstanceResponse converts a domain.WorkflowInstance to its DTO.
func ToWorkflowInstanceResponse(w *domain.WorkflowInstance) WorkflowInstanceResponse {
	return WorkflowInstanceResponse{
		InstanceID:      w.InstanceID,
		Type:            w.Type,
		HumanNumber:     w.HumanNumber,
		Status:          w.Status,
		CurrentStep:     w.CurrentStep,
		OwnerID:         w.OwnerID,
		Amount:          w.Amount,
		TenorMonths:     w.TenorMonths,
		InterestRate:    w.InterestRate,
		TargetAccountID: w.TargetAccountID,
		PenaltyAmount:   w.PenaltyAmount,
		NetAmount:       w.NetAmount,
		MaturityDate:    w.MaturityDate,
		TermsAgreed:     w.TermsAgreed,
		Attributes:      w.Attributes,
		SubmittedAt:     w.SubmittedAt,
		ApprovedAt:      w.ApprovedAt,
		CompletedAt:     w.CompletedAt,
		RejectedAt:      w.RejectedAt,
		RejectionReason: w.RejectionReason,
		CancelledAt:     w.CancelledAt,
		CreatedAt:       w.CreatedAt,
		LastUpdatedAt:   w.LastUpdatedAt,
	}
}

// ToListWorkflowInstancesResponse converts a page of instances.
func ToListWorkflowInstancesResponse(items []domain.WorkflowInstance, nextToken *string) ListWorkflowInstancesResponse {
	res := make([]WorkflowInstanceResponse, len(items))
	for i := range items {
		res[i] = ToWorkflowInstanceResponse(&items[i])
	}
	return ListWorkflowInstancesResponse{Items: res, NextToken: nextToken}
}

// WorkflowDetail is the service-level result of a detail lookup.
type WorkflowDetail struct {
	Instance  domain.WorkflowInstance
	Approvals []domain.ApprovalLedgerRow
	History   []domain.HistoryEntry
}

// ToWorkflowDetailResponse converts a WorkflowDetail to its DTO.
func ToWorkflowDetailResponse(d *WorkflowDetail) WorkflowDetailResponse {
	return WorkflowDetailResponse{
		WorkflowInstanceResponse: ToWorkflowInstanceResponse(&d.Instance),
		Approvals:                d.Approvals,
		History:                  d.History,
	}
}
