package http

import (
	"time"

	"github.com/google/uuid"

	"github.com/nurpe/contract-workflow/internal/model"
)

type userResponse struct {
	ID        uuid.UUID  `json:"id"`
	Username  string     `json:"username"`
	Role      model.Role `json:"role"`
	CreatedAt time.Time  `json:"created_at"`
}

func userResponseFrom(u model.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Username:  u.Username,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

type mappingResponse struct {
	ID            uuid.UUID `json:"id"`
	LegalUserID   uuid.UUID `json:"legal_user_id"`
	FinanceUserID uuid.UUID `json:"finance_user_id"`
	ClientUserID  uuid.UUID `json:"client_user_id"`
	CreatedAt     time.Time `json:"created_at"`
}

func mappingResponseFrom(m model.ApprovalMapping) mappingResponse {
	return mappingResponse{
		ID:            m.ID,
		LegalUserID:   m.LegalUserID,
		FinanceUserID: m.FinanceUserID,
		ClientUserID:  m.ClientUserID,
		CreatedAt:     m.CreatedAt,
	}
}

type contractResponse struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	ClientUserID  uuid.UUID `json:"client_user_id"`
	EffectiveDate time.Time `json:"effective_date"`
	Amount        float64   `json:"amount"`
	CreatedAt     time.Time `json:"created_at"`
}

func contractResponseFrom(c model.Contract) contractResponse {
	return contractResponse{
		ID:            c.ID,
		Name:          c.Name,
		ClientUserID:  c.ClientUserID,
		EffectiveDate: c.EffectiveDate,
		Amount:        c.Amount,
		CreatedAt:     c.CreatedAt,
	}
}

type versionResponse struct {
	ID            uuid.UUID            `json:"id"`
	ContractID    uuid.UUID            `json:"contract_id"`
	VersionNumber int                  `json:"version_number"`
	Status        model.ContractStatus `json:"status"`
	Remarks       string               `json:"remarks"`
	CreatorID     uuid.UUID            `json:"creator_id"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

func versionResponseFrom(v model.ContractVersion) versionResponse {
	return versionResponse{
		ID:            v.ID,
		ContractID:    v.ContractID,
		VersionNumber: v.VersionNumber,
		Status:        v.Status,
		Remarks:       v.Remarks,
		CreatorID:     v.CreatorID,
		UpdatedAt:     v.UpdatedAt,
	}
}

type viewResponse struct {
	versionResponse
	ContractName  string    `json:"contract_name"`
	ClientUserID  uuid.UUID `json:"client_user_id"`
	EffectiveDate time.Time `json:"effective_date"`
	Amount        float64   `json:"amount"`
}

func viewsResponse(views []model.VersionView) []viewResponse {
	out := make([]viewResponse, 0, len(views))
	for _, v := range views {
		out = append(out, viewResponse{
			versionResponse: versionResponseFrom(v.ContractVersion),
			ContractName:    v.ContractName,
			ClientUserID:    v.ClientUserID,
			EffectiveDate:   v.EffectiveDate,
			Amount:          v.Amount,
		})
	}
	return out
}
