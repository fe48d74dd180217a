package services

import (
	"context"

	"github.com/SscSPs/koperasi_backend/internal/core/domain"
	"github.com/SscSPs/koperasi_backend/internal/dto"
)

// WorkflowDraftSvc covers the applicant-owned draft lifecycle.
type WorkflowDraftSvc interface {
	// CreateDraft validates the entity preconditions and stores a new DRAFT with a fresh human number.
	CreateDraft(ctx context.Context, wfType domain.WorkflowType, ownerID string, req dto.WorkflowDraftRequest) (*domain.WorkflowInstance, error)

	// UpdateDraft replaces the editable fields of the owner's draft.
	UpdateDraft(ctx context.Context, wfType domain.WorkflowType, instanceID string, ownerID string, req dto.WorkflowDraftRequest) (*domain.WorkflowInstance, error)

	// DeleteDraft removes the owner's draft together with any ledger rows created for it.
	DeleteDraft(ctx context.Context, wfType domain.WorkflowType, instanceID string, ownerID string) error
}

// WorkflowTransitionSvc drives instances through their approval chain.
type WorkflowTransitionSvc interface {
	// Submit moves the owner's draft to the first reviewing status.
	Submit(ctx context.Context, wfType domain.WorkflowType, instanceID string, ownerID string) (*domain.WorkflowInstance, error)

	// ProcessApproval records approver's decision on the current step and advances, rejects or completes the instance.
	ProcessApproval(ctx context.Context, wfType domain.WorkflowType, instanceID string, approver domain.Actor, decision domain.Decision, notes *string) (*domain.WorkflowInstance, error)

	// BulkProcess applies ProcessApproval to every id independently.
	BulkProcess(ctx context.Context, wfType domain.WorkflowType, ids []string, approver domain.Actor, decision domain.Decision, notes *string) (*dto.BulkApprovalResult, error)

	// Cancel withdraws the owner's instance while it is still in a cancellable step.
	Cancel(ctx context.Context, wfType domain.WorkflowType, instanceID string, ownerID string) (*domain.WorkflowInstance, error)
}

// WorkflowReaderSvc defines read operations for workflow instances.
type WorkflowReaderSvc interface {
	// GetInstance returns the instance with its approval ledger and history. Only the owner and
	// holders of a role involved in the workflow may see it.
	GetInstance(ctx context.Context, wfType domain.WorkflowType, instanceID string, viewer domain.Actor) (*dto.WorkflowDetail, error)

	// ListMyInstances lists the owner's instances, newest first.
	ListMyInstances(ctx context.Context, wfType domain.WorkflowType, ownerID string, params dto.ListParams) ([]domain.WorkflowInstance, *string, error)

	// ListPendingApprovals lists instances awaiting a step the approver's roles may act on.
	ListPendingApprovals(ctx context.Context, wfType domain.WorkflowType, approver domain.Actor, params dto.ListParams) ([]domain.WorkflowInstance, *string, error)
}

// WorkflowSvcFacade combines all workflow service interfaces
type WorkflowSvcFacade interface {
	WorkflowDraftSvc
	WorkflowTransitionSvc
	WorkflowReaderSvc
}

// EventPublisher receives workflow events after the transition that produced them has committed.
// Publish must not block on delivery.
type EventPublisher interface {
	Publish(ctx context.Context, events ...domain.WorkflowEvent)
}
