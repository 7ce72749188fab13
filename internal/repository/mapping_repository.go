package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/contract-workflow/internal/model"
)

type MappingRepository struct {
	db *gorm.DB
}

func NewMappingRepository(db *gorm.DB) *MappingRepository {
	return &MappingRepository{db: db}
}

func (r *MappingRepository) CreateMapping(ctx context.Context, m model.ApprovalMapping) (*model.ApprovalMapping, error) {
	var saved model.ApprovalMapping
	if err := r.db.WithContext(ctx).Raw(`
		INSERT INTO approval_mappings (legal_user_id, finance_user_id, client_user_id)
		VALUES (?, ?, ?)
		RETURNING id, legal_user_id, finance_user_id, client_user_id, created_at
	`, m.LegalUserID, m.FinanceUserID, m.ClientUserID).Scan(&saved).Error; err != nil {
		return nil, err
	}
	return &saved, nil
}

func (r *MappingRepository) FindExact(ctx context.Context, legalID, financeID, clientID uuid.UUID) (*model.ApprovalMapping, error) {
	var mapping model.ApprovalMapping
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, legal_user_id, finance_user_id, client_user_id, created_at
		FROM approval_mappings
		WHERE legal_user_id = ? AND finance_user_id = ? AND client_user_id = ?
		LIMIT 1
	`, legalID, financeID, clientID).Scan(&mapping).Error; err != nil {
		return nil, err
	}
	if mapping.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &mapping, nil
}

func (r *MappingRepository) ListByLegalUser(ctx context.Context, legalID uuid.UUID) ([]model.ApprovalMapping, error) {
	var mappings []model.ApprovalMapping
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, legal_user_id, finance_user_id, client_user_id, created_at
		FROM approval_mappings
		WHERE legal_user_id = ?
		ORDER BY created_at ASC
	`, legalID).Scan(&mappings).Error; err != nil {
		return nil, err
	}
	return mappings, nil
}

func (r *MappingRepository) ListByFinanceUser(ctx context.Context, financeID uuid.UUID) ([]model.ApprovalMapping, error) {
	var mappings []model.ApprovalMapping
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, legal_user_id, finance_user_id, client_user_id, created_at
		FROM approval_mappings
		WHERE finance_user_id = ?
		ORDER BY created_at ASC
	`, financeID).Scan(&mappings).Error; err != nil {
		return nil, err
	}
	return mappings, nil
}

func (r *MappingRepository) ListMappings(ctx context.Context) ([]model.ApprovalMapping, error) {
	var mappings []model.ApprovalMapping
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, legal_user_id, finance_user_id, client_user_id, created_at
		FROM approval_mappings
		ORDER BY created_at ASC
	`).Scan(&mappings).Error; err != nil {
		return nil, err
	}
	return mappings, nil
}
