package model

import (
	"time"

	"github.com/google/uuid"
)

// ApprovalMapping is one authorized routing chain Legal -> Finance -> Client.
// A legal user may appear in several mappings with different finance/client
// pairs; the exact triple is unique.
type ApprovalMapping struct {
	ID            uuid.UUID
	LegalUserID   uuid.UUID
	FinanceUserID uuid.UUID
	ClientUserID  uuid.UUID
	CreatedAt     time.Time
}
