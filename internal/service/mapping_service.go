package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/contract-workflow/internal/model"
)

// MappingService owns the approval-mapping directory: the set of authorized
// Legal -> Finance -> Client routing chains the workflow consults on every
// submit and reject decision.
type MappingService struct {
	mappings MappingStore
	users    UserStore
	audit    AuditSink
}

func NewMappingService(mappings MappingStore, users UserStore, audit AuditSink) *MappingService {
	return &MappingService{mappings: mappings, users: users, audit: audit}
}

func (s *MappingService) CreateMapping(ctx context.Context, actorID, legalID, financeID, clientID uuid.UUID) (*model.ApprovalMapping, error) {
	legal, err := s.resolveParty(ctx, legalID, model.RoleLegalUser)
	if err != nil {
		return nil, err
	}
	finance, err := s.resolveParty(ctx, financeID, model.RoleFinanceReviewer)
	if err != nil {
		return nil, err
	}
	client, err := s.resolveParty(ctx, clientID, model.RoleClient)
	if err != nil {
		return nil, err
	}

	existing, err := s.mappings.FindExact(ctx, legalID, financeID, clientID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: this exact approval mapping already exists", ErrConflict)
	}

	saved, err := s.mappings.CreateMapping(ctx, model.ApprovalMapping{
		LegalUserID:   legalID,
		FinanceUserID: financeID,
		ClientUserID:  clientID,
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(model.AuditEvent{
		Action:  model.AuditWorkflowMappingCreated,
		ActorID: actorID,
		Detail: fmt.Sprintf("Created approval chain: Legal(%s) -> Finance(%s) -> Client(%s)",
			legal.Username, finance.Username, client.Username),
	})
	return saved, nil
}

func (s *MappingService) ListMappings(ctx context.Context) ([]model.ApprovalMapping, error) {
	return s.mappings.ListMappings(ctx)
}

// MappingsFor returns every chain originating at the given legal user. An
// empty result is not an error; callers decide whether that is fatal.
func (s *MappingService) MappingsFor(ctx context.Context, legalUserID uuid.UUID) ([]model.ApprovalMapping, error) {
	return s.mappings.ListByLegalUser(ctx, legalUserID)
}

func (s *MappingService) IsAuthorizedFinance(ctx context.Context, legalUserID, financeUserID uuid.UUID) (bool, error) {
	chains, err := s.mappings.ListByLegalUser(ctx, legalUserID)
	if err != nil {
		return false, err
	}
	for _, m := range chains {
		if m.FinanceUserID == financeUserID {
			return true, nil
		}
	}
	return false, nil
}

func (s *MappingService) IsAuthorizedClient(ctx context.Context, legalUserID, clientUserID uuid.UUID) (bool, error) {
	chains, err := s.mappings.ListByLegalUser(ctx, legalUserID)
	if err != nil {
		return false, err
	}
	for _, m := range chains {
		if m.ClientUserID == clientUserID {
			return true, nil
		}
	}
	return false, nil
}

// FinanceFor resolves the finance reviewer mapped to a (legal, client) pair.
// The second result reports whether such a chain exists.
func (s *MappingService) FinanceFor(ctx context.Context, legalUserID, clientUserID uuid.UUID) (uuid.UUID, bool, error) {
	chains, err := s.mappings.ListByLegalUser(ctx, legalUserID)
	if err != nil {
		return uuid.Nil, false, err
	}
	for _, m := range chains {
		if m.ClientUserID == clientUserID {
			return m.FinanceUserID, true, nil
		}
	}
	return uuid.Nil, false, nil
}

// MappedClients lists the distinct clients a legal user may create contracts
// for.
func (s *MappingService) MappedClients(ctx context.Context, legalUserID uuid.UUID) ([]model.User, error) {
	chains, err := s.mappings.ListByLegalUser(ctx, legalUserID)
	if err != nil {
		return nil, err
	}
	seen := make(map[uuid.UUID]struct{}, len(chains))
	clients := make([]model.User, 0, len(chains))
	for _, m := range chains {
		if _, ok := seen[m.ClientUserID]; ok {
			continue
		}
		seen[m.ClientUserID] = struct{}{}
		client, err := s.users.GetUser(ctx, m.ClientUserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, err
		}
		clients = append(clients, *client)
	}
	return clients, nil
}

func (s *MappingService) resolveParty(ctx context.Context, id uuid.UUID, want model.Role) (*model.User, error) {
	user, err := s.users.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %s", ErrNotFound, id)
		}
		return nil, err
	}
	if user.Role != want {
		return nil, fmt.Errorf("%w: user %s is not a %s", ErrInvalidInput, user.Username, want)
	}
	return user, nil
}
