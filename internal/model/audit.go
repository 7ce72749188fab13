package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	AuditContractCreated        = "CONTRACT_CREATED"
	AuditContractUpdated        = "CONTRACT_UPDATED"
	AuditContractSubmitted      = "CONTRACT_SUBMITTED"
	AuditContractApproved       = "CONTRACT_APPROVED"
	AuditContractRejected       = "CONTRACT_REJECTED"
	AuditWorkflowMappingCreated = "WORKFLOW_MAPPING_CREATED"
	AuditUserCreated            = "USER_CREATED"
)

// AuditEvent is what the workflow emits; persistence is the recorder's
// problem, never the workflow's.
type AuditEvent struct {
	Action  string
	ActorID uuid.UUID
	Detail  string
}

type AuditLog struct {
	ID        uuid.UUID `json:"id"`
	Action    string    `json:"action"`
	ActorID   uuid.UUID `json:"actor_id"`
	Detail    string    `json:"detail"`
	CreatedAt time.Time `json:"created_at"`
}

type Notification struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}
