package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/nurpe/contract-workflow/internal/model"
)

// WorkflowService drives the contract approval state machine. Every mutating
// operation is one read-validate-write unit serialized per contract, so two
// concurrent actions can never both observe and advance the same latest
// version.
type WorkflowService struct {
	contracts ContractStore
	mappings  *MappingService
	users     UserStore
	audit     AuditSink
	notify    Notifier
	log       zerolog.Logger

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func NewWorkflowService(
	contracts ContractStore,
	mappings *MappingService,
	users UserStore,
	audit AuditSink,
	notify Notifier,
	log zerolog.Logger,
) *WorkflowService {
	return &WorkflowService{
		contracts: contracts,
		mappings:  mappings,
		users:     users,
		audit:     audit,
		notify:    notify,
		log:       log,
		locks:     make(map[uuid.UUID]*sync.Mutex),
	}
}

func (s *WorkflowService) lockContract(id uuid.UUID) func() {
	s.mu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	s.mu.Unlock()
	l.Lock()
	return l.Unlock
}

type CreateContractInput struct {
	Name          string
	ClientUserID  uuid.UUID
	EffectiveDate time.Time
	Amount        float64
	ActorID       uuid.UUID
}

type UpdateContractInput struct {
	Name          string
	EffectiveDate time.Time
	Amount        float64
	ActorID       uuid.UUID
}

func (s *WorkflowService) CreateContract(ctx context.Context, in CreateContractInput) (*model.Contract, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("%w: contract name is required", ErrInvalidInput)
	}
	if in.Amount < 0 {
		return nil, fmt.Errorf("%w: amount must not be negative", ErrInvalidInput)
	}

	chains, err := s.mappings.MappingsFor(ctx, in.ActorID)
	if err != nil {
		return nil, err
	}
	if len(chains) == 0 {
		return nil, fmt.Errorf("%w: no approval mapping found for you, contact admin to set up your workflow mapping", ErrPermissionDenied)
	}

	client, err := s.users.GetUser(ctx, in.ClientUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: client %s", ErrNotFound, in.ClientUserID)
		}
		return nil, err
	}

	mapped := false
	for _, m := range chains {
		if m.ClientUserID == client.ID {
			mapped = true
			break
		}
	}
	if !mapped {
		return nil, fmt.Errorf("%w: no approval mapping for this client", ErrPermissionDenied)
	}

	now := time.Now().UTC()
	contract := model.Contract{
		Name:          in.Name,
		ClientUserID:  client.ID,
		EffectiveDate: in.EffectiveDate,
		Amount:        in.Amount,
		CreatedAt:     now,
	}
	initial := model.ContractVersion{
		VersionNumber: 1,
		Status:        model.StatusDraft,
		Remarks:       "Initial version",
		CreatorID:     in.ActorID,
		UpdatedAt:     now,
		Active:        true,
	}

	saved, _, err := s.contracts.CreateContract(ctx, contract, initial)
	if err != nil {
		return nil, err
	}

	s.audit.Record(model.AuditEvent{
		Action:  model.AuditContractCreated,
		ActorID: in.ActorID,
		Detail:  fmt.Sprintf("Contract created: %s", saved.Name),
	})
	return saved, nil
}

func (s *WorkflowService) UpdateContract(ctx context.Context, contractID uuid.UUID, in UpdateContractInput) (*model.Contract, error) {
	unlock := s.lockContract(contractID)
	defer unlock()

	contract, err := s.getContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	latest, err := s.latestVersion(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if !latest.Status.Editable() {
		return nil, fmt.Errorf("%w: contract can only be updated in DRAFT or rejected state, current status %s", ErrInvalidState, latest.Status)
	}
	if in.Amount < 0 {
		return nil, fmt.Errorf("%w: amount must not be negative", ErrInvalidInput)
	}

	contract.Name = in.Name
	contract.EffectiveDate = in.EffectiveDate
	contract.Amount = in.Amount

	saved, err := s.contracts.UpdateContract(ctx, *contract)
	if err != nil {
		return nil, err
	}

	s.audit.Record(model.AuditEvent{
		Action:  model.AuditContractUpdated,
		ActorID: in.ActorID,
		Detail:  fmt.Sprintf("Contract updated (ID: %s) in %s state", contractID, latest.Status),
	})
	return saved, nil
}

// Submit hands the latest version to the next review stage. Legal users send
// to finance, finance reviewers send a reworked version back to the client.
func (s *WorkflowService) Submit(ctx context.Context, contractID, actorID uuid.UUID) (*model.ContractVersion, error) {
	unlock := s.lockContract(contractID)
	defer unlock()

	contract, err := s.getContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	latest, err := s.latestVersion(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if !latest.Status.Editable() {
		return nil, fmt.Errorf("%w: contract cannot be submitted from %s", ErrInvalidState, latest.Status)
	}

	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	var notifyUserID uuid.UUID
	switch actor.Role {
	case model.RoleLegalUser:
		originator, err := s.originator(ctx, contractID, latest)
		if err != nil {
			return nil, err
		}
		if originator != actorID {
			return nil, fmt.Errorf("%w: only the contract's legal originator may submit it", ErrPermissionDenied)
		}
		chains, err := s.mappings.MappingsFor(ctx, actorID)
		if err != nil {
			return nil, err
		}
		if len(chains) == 0 {
			return nil, fmt.Errorf("%w: no approval mapping found for you, contact admin to map your workflow", ErrPermissionDenied)
		}
		latest.Status = model.StatusPendingFinance
		if financeID, ok, err := s.mappings.FinanceFor(ctx, actorID, contract.ClientUserID); err != nil {
			return nil, err
		} else if ok {
			notifyUserID = financeID
		}
	case model.RoleFinanceReviewer:
		latest.Status = model.StatusPendingClient
		notifyUserID = contract.ClientUserID
	default:
		return nil, fmt.Errorf("%w: only legal users or finance reviewers can submit contracts", ErrPermissionDenied)
	}

	latest.UpdatedAt = time.Now().UTC()
	if err := s.contracts.UpdateVersion(ctx, *latest); err != nil {
		return nil, err
	}

	s.audit.Record(model.AuditEvent{
		Action:  model.AuditContractSubmitted,
		ActorID: actorID,
		Detail:  fmt.Sprintf("Contract submitted (ID: %s) to next stage: %s", contractID, latest.Status),
	})
	if notifyUserID != uuid.Nil {
		s.notify.Send(ctx, notifyUserID, fmt.Sprintf("Contract %q awaits your review", contract.Name))
	}
	return latest, nil
}

// Approve advances PENDING_FINANCE to PENDING_CLIENT and PENDING_CLIENT to
// ACTIVE, in place on the latest version.
func (s *WorkflowService) Approve(ctx context.Context, contractID uuid.UUID, remarks string, actorID uuid.UUID) (*model.ContractVersion, error) {
	unlock := s.lockContract(contractID)
	defer unlock()

	contract, err := s.getContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	latest, err := s.latestVersion(ctx, contractID)
	if err != nil {
		return nil, err
	}

	var notifyUserID uuid.UUID
	var notifyMsg string
	switch latest.Status {
	case model.StatusPendingFinance:
		if err := s.requireMappedFinance(ctx, contractID, contract, latest, actorID); err != nil {
			return nil, err
		}
		latest.Status = model.StatusPendingClient
		notifyUserID = contract.ClientUserID
		notifyMsg = fmt.Sprintf("Contract %q awaits your review", contract.Name)
	case model.StatusPendingClient:
		if contract.ClientUserID != actorID {
			return nil, fmt.Errorf("%w: only the contract's client may approve at this stage", ErrPermissionDenied)
		}
		latest.Status = model.StatusActive
		if originator, err := s.originator(ctx, contractID, latest); err == nil {
			notifyUserID = originator
			notifyMsg = fmt.Sprintf("Contract %q is now active", contract.Name)
		}
	default:
		return nil, fmt.Errorf("%w: contract not in a state to be approved, current status %s", ErrInvalidState, latest.Status)
	}

	latest.Remarks = remarks
	latest.UpdatedAt = time.Now().UTC()
	if err := s.contracts.UpdateVersion(ctx, *latest); err != nil {
		return nil, err
	}

	s.audit.Record(model.AuditEvent{
		Action:  model.AuditContractApproved,
		ActorID: actorID,
		Detail:  fmt.Sprintf("Contract approved (ID: %s). Status: %s. Remarks: %s", contractID, latest.Status, remarks),
	})
	if notifyUserID != uuid.Nil {
		s.notify.Send(ctx, notifyUserID, notifyMsg)
	}
	return latest, nil
}

// Reject closes the latest version with the rejected status and mints the
// next version owned by whoever must act next: the legal originator after a
// finance rejection, the mapped finance reviewer after a client rejection.
func (s *WorkflowService) Reject(ctx context.Context, contractID uuid.UUID, remarks string, actorID uuid.UUID) (*model.ContractVersion, error) {
	unlock := s.lockContract(contractID)
	defer unlock()

	contract, err := s.getContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	latest, err := s.latestVersion(ctx, contractID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	var next model.ContractVersion
	switch latest.Status {
	case model.StatusPendingFinance:
		if err := s.requireMappedFinance(ctx, contractID, contract, latest, actorID); err != nil {
			return nil, err
		}
		originator, err := s.originator(ctx, contractID, latest)
		if err != nil {
			return nil, err
		}
		latest.Status = model.StatusRejectedByFinance
		next = model.ContractVersion{
			ContractID:    contractID,
			VersionNumber: latest.VersionNumber + 1,
			Status:        model.StatusRejectedByFinance,
			Remarks:       "Finance Rejected: " + remarks,
			CreatorID:     originator,
			UpdatedAt:     now,
			Active:        true,
		}
	case model.StatusPendingClient:
		if contract.ClientUserID != actorID {
			return nil, fmt.Errorf("%w: only the contract's client may reject at this stage", ErrPermissionDenied)
		}
		originator, err := s.originator(ctx, contractID, latest)
		if err != nil {
			return nil, err
		}
		// The mapping was checked at submit time; its absence here means the
		// directory was mutated underneath an in-flight contract.
		financeID, ok, err := s.mappings.FinanceFor(ctx, originator, contract.ClientUserID)
		if err != nil {
			return nil, err
		}
		if !ok {
			s.log.Error().
				Str("contract_id", contractID.String()).
				Str("legal_user_id", originator.String()).
				Str("client_user_id", contract.ClientUserID.String()).
				Msg("no finance mapping for in-flight contract")
			return nil, fmt.Errorf("%w: no finance reviewer mapped to this contract's creator and client", ErrInternalInconsistency)
		}
		latest.Status = model.StatusRejectedByClient
		next = model.ContractVersion{
			ContractID:    contractID,
			VersionNumber: latest.VersionNumber + 1,
			Status:        model.StatusRejectedByClient,
			Remarks:       "Client Rejected: " + remarks,
			CreatorID:     financeID,
			UpdatedAt:     now,
			Active:        true,
		}
	default:
		return nil, fmt.Errorf("%w: contract not in a state to be rejected, current status %s", ErrInvalidState, latest.Status)
	}

	latest.Remarks = remarks
	latest.UpdatedAt = now

	saved, err := s.contracts.RejectAndReissue(ctx, *latest, next)
	if err != nil {
		return nil, err
	}

	s.audit.Record(model.AuditEvent{
		Action:  model.AuditContractRejected,
		ActorID: actorID,
		Detail:  fmt.Sprintf("Contract rejected (ID: %s). Status: %s. Remarks: %s", contractID, latest.Status, remarks),
	})
	s.notify.Send(ctx, saved.CreatorID, fmt.Sprintf("Contract %q was rejected and needs rework", contract.Name))
	return saved, nil
}

// ContractHistory returns the contract with its full version chain, oldest
// first. Visible only to the contract's parties and super admins.
func (s *WorkflowService) ContractHistory(ctx context.Context, contractID, actorID uuid.UUID) (*model.Contract, []model.ContractVersion, error) {
	contract, err := s.getContract(ctx, contractID)
	if err != nil {
		return nil, nil, err
	}
	versions, err := s.contracts.ListVersions(ctx, contractID)
	if err != nil {
		return nil, nil, err
	}
	if len(versions) == 0 {
		return nil, nil, fmt.Errorf("%w: contract %s has no versions", ErrInternalInconsistency, contractID)
	}

	allowed, err := s.isParty(ctx, contract, versions, actorID)
	if err != nil {
		return nil, nil, err
	}
	if !allowed {
		return nil, nil, fmt.Errorf("%w: not a party to this contract", ErrPermissionDenied)
	}
	return contract, versions, nil
}

func (s *WorkflowService) isParty(ctx context.Context, contract *model.Contract, versions []model.ContractVersion, actorID uuid.UUID) (bool, error) {
	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return false, err
	}
	if actor.Role == model.RoleSuperAdmin {
		return true, nil
	}
	if contract.ClientUserID == actorID {
		return true, nil
	}
	for _, v := range versions {
		if v.CreatorID == actorID {
			return true, nil
		}
	}
	ok, err := s.mappings.IsAuthorizedFinance(ctx, versions[0].CreatorID, actorID)
	if err != nil {
		return false, err
	}
	return ok, nil
}

func (s *WorkflowService) requireMappedFinance(ctx context.Context, contractID uuid.UUID, contract *model.Contract, latest *model.ContractVersion, actorID uuid.UUID) error {
	originator, err := s.originator(ctx, contractID, latest)
	if err != nil {
		return err
	}
	financeID, ok, err := s.mappings.FinanceFor(ctx, originator, contract.ClientUserID)
	if err != nil {
		return err
	}
	if !ok || financeID != actorID {
		return fmt.Errorf("%w: you are not the mapped finance reviewer for this contract", ErrPermissionDenied)
	}
	return nil
}

// originator resolves the legal user who created version 1. Intermediate
// rejections set creator_id to a finance reviewer, so the latest version's
// creator is not authoritative.
func (s *WorkflowService) originator(ctx context.Context, contractID uuid.UUID, latest *model.ContractVersion) (uuid.UUID, error) {
	if latest.VersionNumber == 1 {
		return latest.CreatorID, nil
	}
	v1, err := s.contracts.GetVersion(ctx, contractID, 1)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, fmt.Errorf("%w: contract %s has no version 1", ErrInternalInconsistency, contractID)
		}
		return uuid.Nil, err
	}
	return v1.CreatorID, nil
}

func (s *WorkflowService) getContract(ctx context.Context, id uuid.UUID) (*model.Contract, error) {
	contract, err := s.contracts.GetContract(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: contract %s", ErrNotFound, id)
		}
		return nil, err
	}
	return contract, nil
}

func (s *WorkflowService) latestVersion(ctx context.Context, contractID uuid.UUID) (*model.ContractVersion, error) {
	latest, err := s.contracts.LatestVersion(ctx, contractID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Contracts are only ever created together with version 1.
			return nil, fmt.Errorf("%w: contract %s has no versions", ErrInternalInconsistency, contractID)
		}
		return nil, err
	}
	return latest, nil
}

func (s *WorkflowService) actor(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.users.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %s", ErrNotFound, id)
		}
		return nil, err
	}
	return user, nil
}
