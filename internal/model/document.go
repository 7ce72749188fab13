package model

import (
	"time"

	"github.com/google/uuid"
)

// ContractDocument is everything the PDF generator needs to render one
// contract's approval history.
type ContractDocument struct {
	Contract   Contract
	ClientName string
	Versions   []ContractVersion
	Creators   map[uuid.UUID]string
}

type RegisterRow struct {
	VersionView
	ClientName string
}

// ContractsRegister is the active-contracts workbook input.
type ContractsRegister struct {
	Role        Role
	GeneratedAt time.Time
	Rows        []RegisterRow
}
