package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/contract-workflow/internal/model"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) CreateUser(ctx context.Context, user model.User) (*model.User, error) {
	var saved model.User
	if err := r.db.WithContext(ctx).Raw(`
		INSERT INTO users (username, role)
		VALUES (?, ?)
		RETURNING id, username, role, created_at
	`, user.Username, user.Role).Scan(&saved).Error; err != nil {
		return nil, err
	}
	return &saved, nil
}

func (r *UserRepository) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, username, role, created_at
		FROM users
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&user).Error; err != nil {
		return nil, err
	}
	if user.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &user, nil
}

func (r *UserRepository) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, username, role, created_at
		FROM users
		WHERE username = ?
		LIMIT 1
	`, username).Scan(&user).Error; err != nil {
		return nil, err
	}
	if user.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &user, nil
}

func (r *UserRepository) ListUsers(ctx context.Context, role *model.Role) ([]model.User, error) {
	var users []model.User
	query := `
		SELECT id, username, role, created_at
		FROM users
		ORDER BY username ASC
	`
	if role != nil {
		query = `
			SELECT id, username, role, created_at
			FROM users
			WHERE role = ?
			ORDER BY username ASC
		`
		if err := r.db.WithContext(ctx).Raw(query, *role).Scan(&users).Error; err != nil {
			return nil, err
		}
		return users, nil
	}
	if err := r.db.WithContext(ctx).Raw(query).Scan(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepository) CountUsersByRole(ctx context.Context) (map[model.Role]int64, error) {
	var rows []struct {
		Role  model.Role
		Total int64
	}
	if err := r.db.WithContext(ctx).Raw(`
		SELECT role, COUNT(*) AS total
		FROM users
		GROUP BY role
	`).Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[model.Role]int64, len(rows))
	for _, row := range rows {
		counts[row.Role] = row.Total
	}
	return counts, nil
}
