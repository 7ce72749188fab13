package model

import (
	"time"

	"github.com/google/uuid"
)

type ContractStatus string

const (
	StatusDraft             ContractStatus = "DRAFT"
	StatusPendingFinance    ContractStatus = "PENDING_FINANCE"
	StatusPendingClient     ContractStatus = "PENDING_CLIENT"
	StatusActive            ContractStatus = "ACTIVE"
	StatusRejectedByFinance ContractStatus = "REJECTED_BY_FINANCE"
	StatusRejectedByClient  ContractStatus = "REJECTED_BY_CLIENT"
)

// Editable reports whether the contract's fields may still be changed,
// i.e. the latest version sits with a party that can rework it.
func (s ContractStatus) Editable() bool {
	switch s {
	case StatusDraft, StatusRejectedByFinance, StatusRejectedByClient:
		return true
	}
	return false
}

type Contract struct {
	ID            uuid.UUID
	Name          string
	ClientUserID  uuid.UUID
	EffectiveDate time.Time
	Amount        float64
	CreatedAt     time.Time
}

// ContractVersion is one immutable snapshot in a contract's approval history.
// CreatorID records the party whose action this version awaits; versions are
// never deleted and version numbers per contract are gap-free starting at 1.
type ContractVersion struct {
	ID            uuid.UUID
	ContractID    uuid.UUID
	VersionNumber int
	Status        ContractStatus
	Remarks       string
	CreatorID     uuid.UUID
	UpdatedAt     time.Time
	Active        bool
}

// VersionView is a latest-version row joined with its contract, the shape
// queues and dashboards are built from.
type VersionView struct {
	ContractVersion
	ContractName  string
	ClientUserID  uuid.UUID
	EffectiveDate time.Time
	Amount        float64
}
