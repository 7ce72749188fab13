package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nurpe/contract-workflow/internal/auth"
	"github.com/nurpe/contract-workflow/internal/excel"
	"github.com/nurpe/contract-workflow/internal/http/middleware"
	"github.com/nurpe/contract-workflow/internal/model"
	"github.com/nurpe/contract-workflow/internal/pdf"
	"github.com/nurpe/contract-workflow/internal/service"
	"github.com/nurpe/contract-workflow/internal/service/servicetest"
)

const testSecret = "handler-test-secret"

type testServer struct {
	router *gin.Engine
	stores *servicetest.Stores

	admin   uuid.UUID
	legal   uuid.UUID
	finance uuid.UUID
	client  uuid.UUID
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	stores := servicetest.New()
	audit := &servicetest.AuditRecorder{}
	notify := &servicetest.Notify{}

	mappings := service.NewMappingService(stores, stores, audit)
	workflow := service.NewWorkflowService(stores, mappings, stores, audit, notify, zerolog.Nop())
	queries := service.NewQueryService(stores, stores, stores, stores, stores)
	users := service.NewUserService(stores, audit)
	exports := service.NewExportService(queries, workflow, stores, excel.NewGenerator(), pdf.NewGenerator())

	handler := NewHandler(workflow, mappings, queries, users, exports, zerolog.Nop())
	parser := auth.NewParser(testSecret)
	router := NewRouter(handler, middleware.Auth(parser), "test", []string{"*"})

	s := &testServer{
		router:  router,
		stores:  stores,
		admin:   stores.AddUser("root.admin", model.RoleSuperAdmin),
		legal:   stores.AddUser("aigerim.legal", model.RoleLegalUser),
		finance: stores.AddUser("bolat.finance", model.RoleFinanceReviewer),
		client:  stores.AddUser("acme.client", model.RoleClient),
	}
	stores.AddMapping(s.legal, s.finance, s.client)
	return s
}

func (s *testServer) token(t *testing.T, userID uuid.UUID, username string, role model.Role) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":      userID.String(),
		"username": username,
		"role":     string(role),
		"exp":      time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/contracts/my-queue", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no token status = %d, want 401", rec.Code)
	}

	rec = s.do(t, http.MethodGet, "/contracts/my-queue", "not-a-token", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad token status = %d, want 401", rec.Code)
	}
}

func TestRoleGates(t *testing.T) {
	s := newTestServer(t)
	legalToken := s.token(t, s.legal, "aigerim.legal", model.RoleLegalUser)
	clientToken := s.token(t, s.client, "acme.client", model.RoleClient)

	// Admin routes reject non-admins.
	rec := s.do(t, http.MethodGet, "/mappings", legalToken, nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("legal on /mappings status = %d, want 403", rec.Code)
	}

	// Contract creation is legal-only.
	rec = s.do(t, http.MethodPost, "/contracts", clientToken, map[string]interface{}{
		"name":           "X",
		"client_user_id": s.client.String(),
		"effective_date": "2026-09-01",
		"amount":         10,
	})
	if rec.Code != http.StatusForbidden {
		t.Errorf("client on POST /contracts status = %d, want 403", rec.Code)
	}
}

func TestContractLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t)
	legalToken := s.token(t, s.legal, "aigerim.legal", model.RoleLegalUser)
	financeToken := s.token(t, s.finance, "bolat.finance", model.RoleFinanceReviewer)
	clientToken := s.token(t, s.client, "acme.client", model.RoleClient)

	rec := s.do(t, http.MethodPost, "/contracts", legalToken, map[string]interface{}{
		"name":           "Snow Removal 2026",
		"client_user_id": s.client.String(),
		"effective_date": "2026-11-01",
		"amount":         250000.50,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}
	var created contractResponse
	decodeJSON(t, rec, &created)
	if created.Name != "Snow Removal 2026" || created.Amount != 250000.50 {
		t.Errorf("created = %+v", created)
	}

	contractPath := "/contracts/" + created.ID.String()

	rec = s.do(t, http.MethodPost, contractPath+"/submit", legalToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("submit status = %d, body %s", rec.Code, rec.Body.String())
	}
	var version versionResponse
	decodeJSON(t, rec, &version)
	if version.Status != model.StatusPendingFinance {
		t.Errorf("after submit status = %s", version.Status)
	}

	// Client cannot approve at the finance stage.
	rec = s.do(t, http.MethodPost, contractPath+"/approve", clientToken, map[string]string{"remarks": "nope"})
	if rec.Code != http.StatusForbidden {
		t.Errorf("client approve at finance stage status = %d, want 403", rec.Code)
	}

	rec = s.do(t, http.MethodPost, contractPath+"/approve", financeToken, map[string]string{"remarks": "budget ok"})
	if rec.Code != http.StatusOK {
		t.Fatalf("finance approve status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = s.do(t, http.MethodPost, contractPath+"/reject", clientToken, map[string]string{"remarks": "wrong term"})
	if rec.Code != http.StatusOK {
		t.Fatalf("client reject status = %d, body %s", rec.Code, rec.Body.String())
	}
	decodeJSON(t, rec, &version)
	if version.VersionNumber != 2 || version.Status != model.StatusRejectedByClient {
		t.Errorf("after client reject = v%d %s", version.VersionNumber, version.Status)
	}

	// Rework lands in the finance reviewer's queue.
	rec = s.do(t, http.MethodGet, "/contracts/my-queue", financeToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("my-queue status = %d", rec.Code)
	}
	var queue []viewResponse
	decodeJSON(t, rec, &queue)
	if len(queue) != 1 || queue[0].ContractID != created.ID {
		t.Errorf("finance queue = %+v", queue)
	}

	rec = s.do(t, http.MethodPost, contractPath+"/submit", financeToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("finance resubmit status = %d, body %s", rec.Code, rec.Body.String())
	}
	rec = s.do(t, http.MethodPost, contractPath+"/approve", clientToken, map[string]string{"remarks": "signed"})
	if rec.Code != http.StatusOK {
		t.Fatalf("client approve status = %d, body %s", rec.Code, rec.Body.String())
	}
	decodeJSON(t, rec, &version)
	if version.Status != model.StatusActive {
		t.Errorf("final status = %s, want %s", version.Status, model.StatusActive)
	}

	// Double approve conflicts.
	rec = s.do(t, http.MethodPost, contractPath+"/approve", clientToken, map[string]string{"remarks": "again"})
	if rec.Code != http.StatusConflict {
		t.Errorf("approve on ACTIVE status = %d, want 409", rec.Code)
	}

	rec = s.do(t, http.MethodGet, "/contracts/active", clientToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("active status = %d", rec.Code)
	}
	decodeJSON(t, rec, &queue)
	if len(queue) != 1 || queue[0].Status != model.StatusActive {
		t.Errorf("active contracts = %+v", queue)
	}
}

func TestCreateMappingEndpoint(t *testing.T) {
	s := newTestServer(t)
	adminToken := s.token(t, s.admin, "root.admin", model.RoleSuperAdmin)

	otherClient := s.stores.AddUser("beta.client", model.RoleClient)
	body := map[string]string{
		"legal_user_id":   s.legal.String(),
		"finance_user_id": s.finance.String(),
		"client_user_id":  otherClient.String(),
	}

	rec := s.do(t, http.MethodPost, "/mappings", adminToken, body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create mapping status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = s.do(t, http.MethodPost, "/mappings", adminToken, body)
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate mapping status = %d, want 409", rec.Code)
	}

	rec = s.do(t, http.MethodPost, "/mappings", adminToken, map[string]string{
		"legal_user_id":   "garbage",
		"finance_user_id": s.finance.String(),
		"client_user_id":  otherClient.String(),
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad uuid status = %d, want 400", rec.Code)
	}
}

func TestDashboardStatsEndpoint(t *testing.T) {
	s := newTestServer(t)
	legalToken := s.token(t, s.legal, "aigerim.legal", model.RoleLegalUser)

	rec := s.do(t, http.MethodGet, "/dashboard/stats", legalToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("stats status = %d, body %s", rec.Code, rec.Body.String())
	}
	var stats model.DashboardStats
	decodeJSON(t, rec, &stats)
	if stats.Role != model.RoleLegalUser {
		t.Errorf("stats role = %s", stats.Role)
	}
	if _, ok := stats.Counters["Contracts Created"]; !ok {
		t.Errorf("counters = %v, want a Contracts Created entry", stats.Counters)
	}
}

func TestExportEndpoints(t *testing.T) {
	s := newTestServer(t)
	legalToken := s.token(t, s.legal, "aigerim.legal", model.RoleLegalUser)
	adminToken := s.token(t, s.admin, "root.admin", model.RoleSuperAdmin)

	rec := s.do(t, http.MethodPost, "/contracts", legalToken, map[string]interface{}{
		"name":           "Export Me",
		"client_user_id": s.client.String(),
		"effective_date": "2026-09-01",
		"amount":         100,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d", rec.Code)
	}
	var created contractResponse
	decodeJSON(t, rec, &created)

	// Active-contracts export is admin/client only.
	rec = s.do(t, http.MethodGet, "/contracts/active/export", legalToken, nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("legal export status = %d, want 403", rec.Code)
	}
	rec = s.do(t, http.MethodGet, "/contracts/active/export", adminToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin export status = %d, body %s", rec.Code, rec.Body.String())
	}
	if rec.Body.Len() == 0 {
		t.Error("export body is empty")
	}

	rec = s.do(t, http.MethodGet, "/contracts/"+created.ID.String()+"/document", legalToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("document status = %d, body %s", rec.Code, rec.Body.String())
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Error("document body is not a PDF")
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		raw     string
		wantErr bool
	}{
		{"2026-09-01", false},
		{"2026-09-01T10:30:00", false},
		{"2026-09-01T10:30:00Z", false},
		{"", true},
		{"01.09.2026", true},
	}
	for _, tt := range tests {
		_, err := parseDate(tt.raw)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseDate(%q) err = %v, wantErr %t", tt.raw, err, tt.wantErr)
		}
	}
}
