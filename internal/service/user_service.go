package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/contract-workflow/internal/model"
)

// UserService is the in-process identity directory. Credentials and token
// issuance live in a separate system; this service only owns the user/role
// records the workflow resolves parties against.
type UserService struct {
	users UserStore
	audit AuditSink
}

func NewUserService(users UserStore, audit AuditSink) *UserService {
	return &UserService{users: users, audit: audit}
}

func (s *UserService) CreateUser(ctx context.Context, actorID uuid.UUID, username string, role model.Role) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrInvalidInput)
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role)
	}

	existing, err := s.users.GetUserByUsername(ctx, username)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: username %q already taken", ErrConflict, username)
	}

	saved, err := s.users.CreateUser(ctx, model.User{Username: username, Role: role})
	if err != nil {
		return nil, err
	}

	s.audit.Record(model.AuditEvent{
		Action:  model.AuditUserCreated,
		ActorID: actorID,
		Detail:  fmt.Sprintf("User created: %s (%s)", saved.Username, saved.Role),
	})
	return saved, nil
}

func (s *UserService) ListUsers(ctx context.Context, role *model.Role) ([]model.User, error) {
	if role != nil && !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, *role)
	}
	return s.users.ListUsers(ctx, role)
}

func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.users.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %s", ErrNotFound, id)
		}
		return nil, err
	}
	return user, nil
}
