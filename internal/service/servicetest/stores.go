// Package servicetest provides in-memory store implementations for exercising
// the services without a database.
package servicetest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/contract-workflow/internal/model"
)

type Stores struct {
	mu sync.Mutex

	Users     map[uuid.UUID]model.User
	Mappings  []model.ApprovalMapping
	Contracts map[uuid.UUID]model.Contract
	Versions  []model.ContractVersion

	AuditEntries  []model.AuditLog
	Notifications []model.Notification
}

func New() *Stores {
	return &Stores{
		Users:     make(map[uuid.UUID]model.User),
		Contracts: make(map[uuid.UUID]model.Contract),
	}
}

// AddUser seeds a user and returns its id.
func (s *Stores) AddUser(username string, role model.Role) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	s.Users[id] = model.User{ID: id, Username: username, Role: role, CreatedAt: time.Now()}
	return id
}

// AddMapping seeds an approval chain.
func (s *Stores) AddMapping(legalID, financeID, clientID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Mappings = append(s.Mappings, model.ApprovalMapping{
		ID:            uuid.New(),
		LegalUserID:   legalID,
		FinanceUserID: financeID,
		ClientUserID:  clientID,
		CreatedAt:     time.Now(),
	})
}

// ── UserStore ──

func (s *Stores) CreateUser(_ context.Context, user model.User) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	s.Users[user.ID] = user
	return &user, nil
}

func (s *Stores) GetUser(_ context.Context, id uuid.UUID) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.Users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &user, nil
}

func (s *Stores) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.Users {
		if user.Username == username {
			copied := user
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *Stores) ListUsers(_ context.Context, role *model.Role) ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := make([]model.User, 0, len(s.Users))
	for _, user := range s.Users {
		if role != nil && user.Role != *role {
			continue
		}
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return users, nil
}

func (s *Stores) CountUsersByRole(_ context.Context) (map[model.Role]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make(map[model.Role]int64)
	for _, user := range s.Users {
		counts[user.Role]++
	}
	return counts, nil
}

// ── MappingStore ──

func (s *Stores) CreateMapping(_ context.Context, m model.ApprovalMapping) (*model.ApprovalMapping, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m.ID = uuid.New()
	m.CreatedAt = time.Now()
	s.Mappings = append(s.Mappings, m)
	return &m, nil
}

func (s *Stores) FindExact(_ context.Context, legalID, financeID, clientID uuid.UUID) (*model.ApprovalMapping, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.Mappings {
		if m.LegalUserID == legalID && m.FinanceUserID == financeID && m.ClientUserID == clientID {
			copied := m
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *Stores) ListByLegalUser(_ context.Context, legalID uuid.UUID) ([]model.ApprovalMapping, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var mappings []model.ApprovalMapping
	for _, m := range s.Mappings {
		if m.LegalUserID == legalID {
			mappings = append(mappings, m)
		}
	}
	return mappings, nil
}

func (s *Stores) ListByFinanceUser(_ context.Context, financeID uuid.UUID) ([]model.ApprovalMapping, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var mappings []model.ApprovalMapping
	for _, m := range s.Mappings {
		if m.FinanceUserID == financeID {
			mappings = append(mappings, m)
		}
	}
	return mappings, nil
}

func (s *Stores) ListMappings(_ context.Context) ([]model.ApprovalMapping, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.ApprovalMapping(nil), s.Mappings...), nil
}

// ── ContractStore ──

func (s *Stores) CreateContract(_ context.Context, c model.Contract, initial model.ContractVersion) (*model.Contract, *model.ContractVersion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = uuid.New()
	s.Contracts[c.ID] = c
	initial.ID = uuid.New()
	initial.ContractID = c.ID
	s.Versions = append(s.Versions, initial)
	return &c, &initial, nil
}

func (s *Stores) GetContract(_ context.Context, id uuid.UUID) (*model.Contract, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	contract, ok := s.Contracts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &contract, nil
}

func (s *Stores) UpdateContract(_ context.Context, c model.Contract) (*model.Contract, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.Contracts[c.ID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	stored.Name = c.Name
	stored.EffectiveDate = c.EffectiveDate
	stored.Amount = c.Amount
	s.Contracts[c.ID] = stored
	return &stored, nil
}

func (s *Stores) CountContracts(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.Contracts)), nil
}

func (s *Stores) LatestVersion(_ context.Context, contractID uuid.UUID) (*model.ContractVersion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latestLocked(contractID)
}

func (s *Stores) latestLocked(contractID uuid.UUID) (*model.ContractVersion, error) {
	var latest *model.ContractVersion
	for i := range s.Versions {
		v := s.Versions[i]
		if v.ContractID != contractID {
			continue
		}
		if latest == nil || v.VersionNumber > latest.VersionNumber {
			copied := v
			latest = &copied
		}
	}
	if latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return latest, nil
}

func (s *Stores) GetVersion(_ context.Context, contractID uuid.UUID, versionNumber int) (*model.ContractVersion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range s.Versions {
		if v.ContractID == contractID && v.VersionNumber == versionNumber {
			copied := v
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *Stores) UpdateVersion(_ context.Context, v model.ContractVersion) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.Versions {
		if s.Versions[i].ID == v.ID {
			s.Versions[i].Status = v.Status
			s.Versions[i].Remarks = v.Remarks
			s.Versions[i].UpdatedAt = v.UpdatedAt
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (s *Stores) RejectAndReissue(ctx context.Context, current model.ContractVersion, next model.ContractVersion) (*model.ContractVersion, error) {
	if err := s.UpdateVersion(ctx, current); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	next.ID = uuid.New()
	s.Versions = append(s.Versions, next)
	return &next, nil
}

func (s *Stores) ListVersions(_ context.Context, contractID uuid.UUID) ([]model.ContractVersion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var versions []model.ContractVersion
	for _, v := range s.Versions {
		if v.ContractID == contractID {
			versions = append(versions, v)
		}
	}
	sort.Slice(versions, func(i, j int) bool { return versions[i].VersionNumber < versions[j].VersionNumber })
	return versions, nil
}

func (s *Stores) ListLatest(_ context.Context) ([]model.VersionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	views := make([]model.VersionView, 0, len(s.Contracts))
	for id := range s.Contracts {
		latest, err := s.latestLocked(id)
		if err != nil {
			continue
		}
		views = append(views, s.viewLocked(*latest))
	}
	return views, nil
}

func (s *Stores) ListLatestByStatus(ctx context.Context, statuses ...model.ContractStatus) ([]model.VersionView, error) {
	all, err := s.ListLatest(ctx)
	if err != nil {
		return nil, err
	}
	filtered := make([]model.VersionView, 0, len(all))
	for _, v := range all {
		for _, status := range statuses {
			if v.Status == status {
				filtered = append(filtered, v)
				break
			}
		}
	}
	return filtered, nil
}

func (s *Stores) Originators(_ context.Context) (map[uuid.UUID]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	originators := make(map[uuid.UUID]uuid.UUID)
	for _, v := range s.Versions {
		if v.VersionNumber == 1 {
			originators[v.ContractID] = v.CreatorID
		}
	}
	return originators, nil
}

func (s *Stores) viewLocked(v model.ContractVersion) model.VersionView {
	contract := s.Contracts[v.ContractID]
	return model.VersionView{
		ContractVersion: v,
		ContractName:    contract.Name,
		ClientUserID:    contract.ClientUserID,
		EffectiveDate:   contract.EffectiveDate,
		Amount:          contract.Amount,
	}
}

// ── AuditStore ──

func (s *Stores) InsertAudit(_ context.Context, entry model.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry.ID = uuid.New()
	entry.CreatedAt = time.Now()
	s.AuditEntries = append(s.AuditEntries, entry)
	return nil
}

func (s *Stores) ListAudit(_ context.Context, limit int) ([]model.AuditLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := append([]model.AuditLog(nil), s.AuditEntries...)
	sort.Slice(entries, func(i, j int) bool { return entries[i].CreatedAt.After(entries[j].CreatedAt) })
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// ── NotificationStore ──

func (s *Stores) InsertNotification(_ context.Context, n model.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n.ID = uuid.New()
	n.CreatedAt = time.Now()
	s.Notifications = append(s.Notifications, n)
	return nil
}

func (s *Stores) ListNotifications(_ context.Context, userID uuid.UUID) ([]model.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var notifications []model.Notification
	for _, n := range s.Notifications {
		if n.UserID == userID {
			notifications = append(notifications, n)
		}
	}
	return notifications, nil
}

// AuditRecorder is a synchronous AuditSink capturing emitted events.
type AuditRecorder struct {
	mu     sync.Mutex
	Events []model.AuditEvent
}

func (r *AuditRecorder) Record(event model.AuditEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, event)
}

func (r *AuditRecorder) Actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	actions := make([]string, 0, len(r.Events))
	for _, e := range r.Events {
		actions = append(actions, e.Action)
	}
	return actions
}

// Notify is a Notifier capturing sent messages.
type Notify struct {
	mu   sync.Mutex
	Sent []SentNotification
}

type SentNotification struct {
	UserID  uuid.UUID
	Message string
}

func (n *Notify) Send(_ context.Context, userID uuid.UUID, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Sent = append(n.Sent, SentNotification{UserID: userID, Message: message})
}
