package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/contract-workflow/internal/model"
)

// QueryService derives role-specific views from the latest-per-contract set.
// Dashboards are advisory snapshots; nothing here participates in
// authorization decisions for workflow transitions.
type QueryService struct {
	contracts     ContractStore
	mappings      MappingStore
	users         UserStore
	audit         AuditStore
	notifications NotificationStore

	stats map[model.Role]statsFunc
}

type statsFunc func(ctx context.Context, s *QueryService, user *model.User, latest []model.VersionView) (map[string]int64, error)

func NewQueryService(
	contracts ContractStore,
	mappings MappingStore,
	users UserStore,
	audit AuditStore,
	notifications NotificationStore,
) *QueryService {
	s := &QueryService{
		contracts:     contracts,
		mappings:      mappings,
		users:         users,
		audit:         audit,
		notifications: notifications,
	}
	s.stats = map[model.Role]statsFunc{
		model.RoleSuperAdmin:      adminStats,
		model.RoleLegalUser:       legalStats,
		model.RoleFinanceReviewer: financeStats,
		model.RoleClient:          clientStats,
	}
	return s
}

// MyQueue lists the latest versions currently waiting on the viewer's rework:
// drafts and finance rejections for legal users, client rejections for
// finance reviewers.
func (s *QueryService) MyQueue(ctx context.Context, actorID uuid.UUID) ([]model.VersionView, error) {
	user, err := s.viewer(ctx, actorID)
	if err != nil {
		return nil, err
	}

	var wanted []model.ContractStatus
	switch user.Role {
	case model.RoleLegalUser:
		wanted = []model.ContractStatus{model.StatusDraft, model.StatusRejectedByFinance}
	case model.RoleFinanceReviewer:
		wanted = []model.ContractStatus{model.StatusRejectedByClient}
	default:
		return []model.VersionView{}, nil
	}

	latest, err := s.contracts.ListLatest(ctx)
	if err != nil {
		return nil, err
	}

	queue := make([]model.VersionView, 0)
	for _, v := range latest {
		if v.CreatorID != actorID {
			continue
		}
		for _, status := range wanted {
			if v.Status == status {
				queue = append(queue, v)
				break
			}
		}
	}
	return queue, nil
}

// ApprovalQueue lists pending versions the viewer is the next approver for:
// PENDING_FINANCE versions routed to the viewer through a mapping, and
// PENDING_CLIENT versions on the viewer's own contracts.
func (s *QueryService) ApprovalQueue(ctx context.Context, actorID uuid.UUID) ([]model.VersionView, error) {
	pending, err := s.contracts.ListLatestByStatus(ctx, model.StatusPendingFinance, model.StatusPendingClient)
	if err != nil {
		return nil, err
	}

	chains, err := s.mappings.ListByFinanceUser(ctx, actorID)
	if err != nil {
		return nil, err
	}
	routed := make(map[[2]uuid.UUID]struct{}, len(chains))
	for _, m := range chains {
		routed[[2]uuid.UUID{m.LegalUserID, m.ClientUserID}] = struct{}{}
	}

	queue := make([]model.VersionView, 0)
	for _, v := range pending {
		switch v.Status {
		case model.StatusPendingFinance:
			if _, ok := routed[[2]uuid.UUID{v.CreatorID, v.ClientUserID}]; ok {
				queue = append(queue, v)
			}
		case model.StatusPendingClient:
			if v.ClientUserID == actorID {
				queue = append(queue, v)
			}
		}
	}
	return queue, nil
}

// ActiveContracts lists approved contracts: all of them for super admins, the
// viewer's own for clients, nothing for other roles.
func (s *QueryService) ActiveContracts(ctx context.Context, actorID uuid.UUID) ([]model.VersionView, error) {
	user, err := s.viewer(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if user.Role != model.RoleSuperAdmin && user.Role != model.RoleClient {
		return []model.VersionView{}, nil
	}

	active, err := s.contracts.ListLatestByStatus(ctx, model.StatusActive)
	if err != nil {
		return nil, err
	}
	if user.Role == model.RoleSuperAdmin {
		return active, nil
	}

	own := make([]model.VersionView, 0, len(active))
	for _, v := range active {
		if v.ClientUserID == actorID {
			own = append(own, v)
		}
	}
	return own, nil
}

func (s *QueryService) DashboardStats(ctx context.Context, actorID uuid.UUID) (*model.DashboardStats, error) {
	user, err := s.viewer(ctx, actorID)
	if err != nil {
		return nil, err
	}

	project, ok := s.stats[user.Role]
	if !ok {
		return &model.DashboardStats{Role: user.Role, Counters: map[string]int64{}}, nil
	}

	latest, err := s.contracts.ListLatest(ctx)
	if err != nil {
		return nil, err
	}
	counters, err := project(ctx, s, user, latest)
	if err != nil {
		return nil, err
	}
	return &model.DashboardStats{Role: user.Role, Counters: counters}, nil
}

func (s *QueryService) AuditTrail(ctx context.Context, limit int) ([]model.AuditLog, error) {
	if limit <= 0 {
		limit = 100
	}
	return s.audit.ListAudit(ctx, limit)
}

func (s *QueryService) Notifications(ctx context.Context, userID uuid.UUID) ([]model.Notification, error) {
	return s.notifications.ListNotifications(ctx, userID)
}

func (s *QueryService) viewer(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.users.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %s", ErrNotFound, id)
		}
		return nil, err
	}
	return user, nil
}

func adminStats(ctx context.Context, s *QueryService, _ *model.User, latest []model.VersionView) (map[string]int64, error) {
	counters := map[string]int64{}

	total, err := s.contracts.CountContracts(ctx)
	if err != nil {
		return nil, err
	}
	counters["Total Contracts"] = total

	var approved, waiting int64
	for _, v := range latest {
		switch v.Status {
		case model.StatusActive:
			approved++
		case model.StatusPendingFinance, model.StatusPendingClient:
			waiting++
		}
	}
	counters["Approved Contracts"] = approved
	counters["Waiting List"] = waiting

	byRole, err := s.users.CountUsersByRole(ctx)
	if err != nil {
		return nil, err
	}
	for role, count := range byRole {
		counters["Users: "+string(role)] = count
	}
	return counters, nil
}

func legalStats(ctx context.Context, s *QueryService, user *model.User, latest []model.VersionView) (map[string]int64, error) {
	originators, err := s.contracts.Originators(ctx)
	if err != nil {
		return nil, err
	}

	counters := map[string]int64{
		"Contracts Created":   0,
		"Sent to Finance":     0,
		"Approved":            0,
		"Rejected by Finance": 0,
	}
	for _, v := range latest {
		if originators[v.ContractID] != user.ID {
			continue
		}
		counters["Contracts Created"]++
		switch v.Status {
		case model.StatusPendingFinance:
			counters["Sent to Finance"]++
		case model.StatusActive:
			counters["Approved"]++
		case model.StatusRejectedByFinance:
			counters["Rejected by Finance"]++
		}
	}
	return counters, nil
}

func financeStats(ctx context.Context, s *QueryService, user *model.User, latest []model.VersionView) (map[string]int64, error) {
	originators, err := s.contracts.Originators(ctx)
	if err != nil {
		return nil, err
	}
	chains, err := s.mappings.ListByFinanceUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	routed := make(map[[2]uuid.UUID]struct{}, len(chains))
	for _, m := range chains {
		routed[[2]uuid.UUID{m.LegalUserID, m.ClientUserID}] = struct{}{}
	}

	counters := map[string]int64{
		"Pending My Review":                 0,
		"Approved by Me":                    0,
		"Rejected by Me (to Legal)":         0,
		"Rejected by Client (Fix required)": 0,
	}
	for _, v := range latest {
		if _, ok := routed[[2]uuid.UUID{originators[v.ContractID], v.ClientUserID}]; !ok {
			continue
		}
		switch v.Status {
		case model.StatusPendingFinance:
			counters["Pending My Review"]++
		case model.StatusPendingClient, model.StatusActive:
			counters["Approved by Me"]++
		case model.StatusRejectedByFinance:
			counters["Rejected by Me (to Legal)"]++
		case model.StatusRejectedByClient:
			if v.CreatorID == user.ID {
				counters["Rejected by Client (Fix required)"]++
			}
		}
	}
	return counters, nil
}

func clientStats(_ context.Context, _ *QueryService, user *model.User, latest []model.VersionView) (map[string]int64, error) {
	counters := map[string]int64{
		"Pending My Review": 0,
		"Approved by Me":    0,
		"Rejected by Me":    0,
	}
	for _, v := range latest {
		if v.ClientUserID != user.ID {
			continue
		}
		switch v.Status {
		case model.StatusPendingClient:
			counters["Pending My Review"]++
		case model.StatusActive:
			counters["Approved by Me"]++
		case model.StatusRejectedByClient:
			counters["Rejected by Me"]++
		}
	}
	return counters, nil
}
