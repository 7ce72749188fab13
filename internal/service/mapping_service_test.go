package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/nurpe/contract-workflow/internal/model"
	"github.com/nurpe/contract-workflow/internal/service"
	"github.com/nurpe/contract-workflow/internal/service/servicetest"
)

func TestCreateMapping(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	secondClient := f.stores.AddUser("beta.client", model.RoleClient)

	saved, err := f.mappings.CreateMapping(ctx, f.admin, f.legal, f.finance, secondClient)
	if err != nil {
		t.Fatalf("CreateMapping: %v", err)
	}
	if saved.LegalUserID != f.legal || saved.FinanceUserID != f.finance || saved.ClientUserID != secondClient {
		t.Errorf("saved mapping = %+v", saved)
	}

	actions := f.audit.Actions()
	if len(actions) == 0 || actions[len(actions)-1] != model.AuditWorkflowMappingCreated {
		t.Errorf("audit actions = %v, want last %s", actions, model.AuditWorkflowMappingCreated)
	}
}

func TestCreateMappingRejectsExactDuplicate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// The fixture already holds (legal, finance, client).
	_, err := f.mappings.CreateMapping(ctx, f.admin, f.legal, f.finance, f.client)
	if !errors.Is(err, service.ErrConflict) {
		t.Errorf("duplicate triple err = %v, want %v", err, service.ErrConflict)
	}

	// Sharing two of the three parties is a different chain and allowed.
	otherFinance := f.stores.AddUser("saltanat.finance", model.RoleFinanceReviewer)
	if _, err := f.mappings.CreateMapping(ctx, f.admin, f.legal, otherFinance, f.client); err != nil {
		t.Errorf("same legal and client with different finance: %v", err)
	}
}

func TestCreateMappingValidatesParties(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.mappings.CreateMapping(ctx, f.admin, uuid.New(), f.finance, f.client); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("unknown legal user err = %v, want %v", err, service.ErrNotFound)
	}
	// Role mismatch: a client in the legal slot.
	if _, err := f.mappings.CreateMapping(ctx, f.admin, f.client, f.finance, f.client); !errors.Is(err, service.ErrInvalidInput) {
		t.Errorf("wrong role err = %v, want %v", err, service.ErrInvalidInput)
	}
	if _, err := f.mappings.CreateMapping(ctx, f.admin, f.legal, f.legal, f.client); !errors.Is(err, service.ErrInvalidInput) {
		t.Errorf("legal in finance slot err = %v, want %v", err, service.ErrInvalidInput)
	}
}

func TestFinanceFor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	financeID, ok, err := f.mappings.FinanceFor(ctx, f.legal, f.client)
	if err != nil {
		t.Fatalf("FinanceFor: %v", err)
	}
	if !ok || financeID != f.finance {
		t.Errorf("FinanceFor = (%s, %t), want (%s, true)", financeID, ok, f.finance)
	}

	_, ok, err = f.mappings.FinanceFor(ctx, f.legal, uuid.New())
	if err != nil {
		t.Fatalf("FinanceFor: %v", err)
	}
	if ok {
		t.Error("FinanceFor reported a chain for an unmapped client")
	}
}

func TestMappedClientsDeduplicates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	otherFinance := f.stores.AddUser("saltanat.finance", model.RoleFinanceReviewer)
	f.stores.AddMapping(f.legal, otherFinance, f.client)

	clients, err := f.mappings.MappedClients(ctx, f.legal)
	if err != nil {
		t.Fatalf("MappedClients: %v", err)
	}
	if len(clients) != 1 || clients[0].ID != f.client {
		t.Errorf("clients = %+v, want just %s once", clients, f.client)
	}
}

func TestIsAuthorizedFinance(t *testing.T) {
	stores := servicetest.New()
	audit := &servicetest.AuditRecorder{}
	mappings := service.NewMappingService(stores, stores, audit)

	legal := stores.AddUser("legal", model.RoleLegalUser)
	finance := stores.AddUser("finance", model.RoleFinanceReviewer)
	client := stores.AddUser("client", model.RoleClient)
	stores.AddMapping(legal, finance, client)

	ok, err := mappings.IsAuthorizedFinance(context.Background(), legal, finance)
	if err != nil || !ok {
		t.Errorf("IsAuthorizedFinance = (%t, %v), want (true, nil)", ok, err)
	}
	ok, err = mappings.IsAuthorizedFinance(context.Background(), legal, uuid.New())
	if err != nil || ok {
		t.Errorf("IsAuthorizedFinance for stranger = (%t, %v), want (false, nil)", ok, err)
	}
}
