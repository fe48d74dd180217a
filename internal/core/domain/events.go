package domain

import "time"

// EventKind names a workflow transition that others may need to hear about.
type EventKind string

const (
	EventSubmitted    EventKind = "SUBMITTED"
	EventStepAdvanced EventKind = "STEP_ADVANCED"
	EventRejected     EventKind = "REJECTED"
	EventCompleted    EventKind = "COMPLETED"
	EventCancelled    EventKind = "CANCELLED"
)

// WorkflowEvent is emitted by the state machine after a transition commits.
// Step is the step now awaiting action (submitted/advanced) or the step the instance
// was at when it was rejected or cancelled.
type WorkflowEvent struct {
	Kind        EventKind      `json:"kind"`
	InstanceID  string         `json:"instanceID"`
	Type        WorkflowType   `json:"type"`
	HumanNumber string         `json:"humanNumber"`
	OwnerID     string         `json:"ownerID"`
	ActorID     string         `json:"actorID"`
	Step        *Step          `json:"step"`
	Status      WorkflowStatus `json:"status"`
	Notes       *string        `json:"notes"`
	OccurredAt  time.Time      `json:"occurredAt"`
}
