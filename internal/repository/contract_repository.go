package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/contract-workflow/internal/model"
)

type ContractRepository struct {
	db *gorm.DB
}

func NewContractRepository(db *gorm.DB) *ContractRepository {
	return &ContractRepository{db: db}
}

func (r *ContractRepository) CreateContract(ctx context.Context, c model.Contract, initial model.ContractVersion) (*model.Contract, *model.ContractVersion, error) {
	var savedContract model.Contract
	var savedVersion model.ContractVersion

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Raw(`
			INSERT INTO contracts (name, client_user_id, effective_date, amount, created_at)
			VALUES (?, ?, ?, ?, ?)
			RETURNING id, name, client_user_id, effective_date, amount, created_at
		`, c.Name, c.ClientUserID, c.EffectiveDate, c.Amount, c.CreatedAt).Scan(&savedContract).Error; err != nil {
			return err
		}

		return tx.Raw(`
			INSERT INTO contract_versions (contract_id, version_number, status, remarks, creator_id, updated_at, active)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			RETURNING id, contract_id, version_number, status, remarks, creator_id, updated_at, active
		`, savedContract.ID, initial.VersionNumber, initial.Status, initial.Remarks,
			initial.CreatorID, initial.UpdatedAt, initial.Active).Scan(&savedVersion).Error
	})
	if err != nil {
		return nil, nil, err
	}
	return &savedContract, &savedVersion, nil
}

func (r *ContractRepository) GetContract(ctx context.Context, id uuid.UUID) (*model.Contract, error) {
	var contract model.Contract
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, name, client_user_id, effective_date, amount, created_at
		FROM contracts
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&contract).Error; err != nil {
		return nil, err
	}
	if contract.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &contract, nil
}

func (r *ContractRepository) UpdateContract(ctx context.Context, c model.Contract) (*model.Contract, error) {
	var saved model.Contract
	if err := r.db.WithContext(ctx).Raw(`
		UPDATE contracts
		SET name = ?, effective_date = ?, amount = ?
		WHERE id = ?
		RETURNING id, name, client_user_id, effective_date, amount, created_at
	`, c.Name, c.EffectiveDate, c.Amount, c.ID).Scan(&saved).Error; err != nil {
		return nil, err
	}
	if saved.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &saved, nil
}

func (r *ContractRepository) CountContracts(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Raw(`
		SELECT COUNT(*) FROM contracts
	`).Scan(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ContractRepository) LatestVersion(ctx context.Context, contractID uuid.UUID) (*model.ContractVersion, error) {
	var version model.ContractVersion
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, contract_id, version_number, status, remarks, creator_id, updated_at, active
		FROM contract_versions
		WHERE contract_id = ?
		ORDER BY version_number DESC
		LIMIT 1
	`, contractID).Scan(&version).Error; err != nil {
		return nil, err
	}
	if version.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &version, nil
}

func (r *ContractRepository) GetVersion(ctx context.Context, contractID uuid.UUID, versionNumber int) (*model.ContractVersion, error) {
	var version model.ContractVersion
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, contract_id, version_number, status, remarks, creator_id, updated_at, active
		FROM contract_versions
		WHERE contract_id = ? AND version_number = ?
		LIMIT 1
	`, contractID, versionNumber).Scan(&version).Error; err != nil {
		return nil, err
	}
	if version.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &version, nil
}

func (r *ContractRepository) UpdateVersion(ctx context.Context, v model.ContractVersion) error {
	return r.db.WithContext(ctx).Exec(`
		UPDATE contract_versions
		SET status = ?, remarks = ?, updated_at = ?
		WHERE id = ?
	`, v.Status, v.Remarks, v.UpdatedAt, v.ID).Error
}

func (r *ContractRepository) RejectAndReissue(ctx context.Context, current model.ContractVersion, next model.ContractVersion) (*model.ContractVersion, error) {
	var saved model.ContractVersion
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`
			UPDATE contract_versions
			SET status = ?, remarks = ?, updated_at = ?
			WHERE id = ?
		`, current.Status, current.Remarks, current.UpdatedAt, current.ID).Error; err != nil {
			return err
		}

		return tx.Raw(`
			INSERT INTO contract_versions (contract_id, version_number, status, remarks, creator_id, updated_at, active)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			RETURNING id, contract_id, version_number, status, remarks, creator_id, updated_at, active
		`, next.ContractID, next.VersionNumber, next.Status, next.Remarks,
			next.CreatorID, next.UpdatedAt, next.Active).Scan(&saved).Error
	})
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func (r *ContractRepository) ListVersions(ctx context.Context, contractID uuid.UUID) ([]model.ContractVersion, error) {
	var versions []model.ContractVersion
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, contract_id, version_number, status, remarks, creator_id, updated_at, active
		FROM contract_versions
		WHERE contract_id = ?
		ORDER BY version_number ASC
	`, contractID).Scan(&versions).Error; err != nil {
		return nil, err
	}
	return versions, nil
}

const latestViewColumns = `
	DISTINCT ON (v.contract_id)
	v.id,
	v.contract_id,
	v.version_number,
	v.status,
	v.remarks,
	v.creator_id,
	v.updated_at,
	v.active,
	c.name AS contract_name,
	c.client_user_id,
	c.effective_date,
	c.amount
`

func (r *ContractRepository) ListLatest(ctx context.Context) ([]model.VersionView, error) {
	var views []model.VersionView
	if err := r.db.WithContext(ctx).Raw(`
		SELECT `+latestViewColumns+`
		FROM contract_versions v
		JOIN contracts c ON c.id = v.contract_id
		ORDER BY v.contract_id, v.version_number DESC
	`).Scan(&views).Error; err != nil {
		return nil, err
	}
	return views, nil
}

func (r *ContractRepository) ListLatestByStatus(ctx context.Context, statuses ...model.ContractStatus) ([]model.VersionView, error) {
	if len(statuses) == 0 {
		return []model.VersionView{}, nil
	}

	placeholders := make([]string, len(statuses))
	args := make([]interface{}, 0, len(statuses))
	for i, status := range statuses {
		placeholders[i] = "?"
		args = append(args, status)
	}

	query := fmt.Sprintf(`
		SELECT * FROM (
			SELECT `+latestViewColumns+`
			FROM contract_versions v
			JOIN contracts c ON c.id = v.contract_id
			ORDER BY v.contract_id, v.version_number DESC
		) latest
		WHERE latest.status IN (%s)
	`, strings.Join(placeholders, ","))

	var views []model.VersionView
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&views).Error; err != nil {
		return nil, err
	}
	return views, nil
}

func (r *ContractRepository) Originators(ctx context.Context) (map[uuid.UUID]uuid.UUID, error) {
	var rows []struct {
		ContractID uuid.UUID
		CreatorID  uuid.UUID
	}
	if err := r.db.WithContext(ctx).Raw(`
		SELECT contract_id, creator_id
		FROM contract_versions
		WHERE version_number = 1
	`).Scan(&rows).Error; err != nil {
		return nil, err
	}

	originators := make(map[uuid.UUID]uuid.UUID, len(rows))
	for _, row := range rows {
		originators[row.ContractID] = row.CreatorID
	}
	return originators, nil
}
