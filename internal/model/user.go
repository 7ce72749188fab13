package model

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleSuperAdmin      Role = "SUPER_ADMIN"
	RoleLegalUser       Role = "LEGAL_USER"
	RoleFinanceReviewer Role = "FINANCE_REVIEWER"
	RoleClient          Role = "CLIENT"
)

func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleLegalUser, RoleFinanceReviewer, RoleClient:
		return true
	}
	return false
}

type User struct {
	ID        uuid.UUID
	Username  string
	Role      Role
	CreatedAt time.Time
}

// Principal is the authenticated caller extracted from the access token.
type Principal struct {
	UserID   uuid.UUID
	Username string
	Role     Role
}

func (p Principal) IsSuperAdmin() bool { return p.Role == RoleSuperAdmin }
func (p Principal) IsLegal() bool      { return p.Role == RoleLegalUser }
func (p Principal) IsFinance() bool    { return p.Role == RoleFinanceReviewer }
func (p Principal) IsClient() bool     { return p.Role == RoleClient }
