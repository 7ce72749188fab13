package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/nurpe/contract-workflow/internal/model"
)

// Store interfaces are satisfied by the gorm repositories in
// internal/repository. Not-found conditions surface as gorm.ErrRecordNotFound,
// which the services translate into their own sentinels.

type UserStore interface {
	CreateUser(ctx context.Context, user model.User) (*model.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	ListUsers(ctx context.Context, role *model.Role) ([]model.User, error)
	CountUsersByRole(ctx context.Context) (map[model.Role]int64, error)
}

type MappingStore interface {
	CreateMapping(ctx context.Context, m model.ApprovalMapping) (*model.ApprovalMapping, error)
	FindExact(ctx context.Context, legalID, financeID, clientID uuid.UUID) (*model.ApprovalMapping, error)
	ListByLegalUser(ctx context.Context, legalID uuid.UUID) ([]model.ApprovalMapping, error)
	ListByFinanceUser(ctx context.Context, financeID uuid.UUID) ([]model.ApprovalMapping, error)
	ListMappings(ctx context.Context) ([]model.ApprovalMapping, error)
}

type ContractStore interface {
	// CreateContract persists the contract together with its initial version
	// in one transaction.
	CreateContract(ctx context.Context, c model.Contract, initial model.ContractVersion) (*model.Contract, *model.ContractVersion, error)
	GetContract(ctx context.Context, id uuid.UUID) (*model.Contract, error)
	UpdateContract(ctx context.Context, c model.Contract) (*model.Contract, error)
	CountContracts(ctx context.Context) (int64, error)

	LatestVersion(ctx context.Context, contractID uuid.UUID) (*model.ContractVersion, error)
	GetVersion(ctx context.Context, contractID uuid.UUID, versionNumber int) (*model.ContractVersion, error)
	// UpdateVersion writes status, remarks and updated_at of an existing
	// version; all other fields are immutable.
	UpdateVersion(ctx context.Context, v model.ContractVersion) error
	// RejectAndReissue closes the current version and mints the next one in a
	// single transaction.
	RejectAndReissue(ctx context.Context, current model.ContractVersion, next model.ContractVersion) (*model.ContractVersion, error)
	ListVersions(ctx context.Context, contractID uuid.UUID) ([]model.ContractVersion, error)

	// ListLatest returns the latest version of every contract joined with the
	// contract fields.
	ListLatest(ctx context.Context) ([]model.VersionView, error)
	ListLatestByStatus(ctx context.Context, statuses ...model.ContractStatus) ([]model.VersionView, error)
	// Originators maps contract id to the creator of version 1.
	Originators(ctx context.Context) (map[uuid.UUID]uuid.UUID, error)
}

type AuditStore interface {
	InsertAudit(ctx context.Context, entry model.AuditLog) error
	ListAudit(ctx context.Context, limit int) ([]model.AuditLog, error)
}

type NotificationStore interface {
	InsertNotification(ctx context.Context, n model.Notification) error
	ListNotifications(ctx context.Context, userID uuid.UUID) ([]model.Notification, error)
}

// AuditSink receives workflow events. Implementations must never block the
// caller or return errors into the workflow.
type AuditSink interface {
	Record(event model.AuditEvent)
}

// Notifier delivers best-effort user notifications.
type Notifier interface {
	Send(ctx context.Context, userID uuid.UUID, message string)
}
