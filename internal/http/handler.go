package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nurpe/contract-workflow/internal/http/middleware"
	"github.com/nurpe/contract-workflow/internal/model"
	"github.com/nurpe/contract-workflow/internal/service"
)

type Handler struct {
	workflow *service.WorkflowService
	mappings *service.MappingService
	queries  *service.QueryService
	users    *service.UserService
	exports  *service.ExportService
	log      zerolog.Logger
}

func NewHandler(
	workflow *service.WorkflowService,
	mappings *service.MappingService,
	queries *service.QueryService,
	users *service.UserService,
	exports *service.ExportService,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		workflow: workflow,
		mappings: mappings,
		queries:  queries,
		users:    users,
		exports:  exports,
		log:      log,
	}
}

func (h *Handler) Register(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	protected := router.Group("/")
	protected.Use(authMiddleware)

	admin := protected.Group("/")
	admin.Use(middleware.RequireRole(model.RoleSuperAdmin))
	admin.POST("/mappings", h.createMapping)
	admin.GET("/mappings", h.listMappings)
	admin.POST("/users", h.createUser)
	admin.GET("/users", h.listUsers)
	admin.GET("/audit", h.listAudit)

	legal := protected.Group("/")
	legal.Use(middleware.RequireRole(model.RoleLegalUser))
	legal.POST("/contracts", h.createContract)
	legal.PUT("/contracts/:id", h.updateContract)
	legal.GET("/contracts/clients", h.mappedClients)

	protected.POST("/contracts/:id/submit", h.submit)
	protected.POST("/contracts/:id/approve", h.approve)
	protected.POST("/contracts/:id/reject", h.reject)
	protected.GET("/contracts/my-queue", h.myQueue)
	protected.GET("/contracts/approval-queue", h.approvalQueue)
	protected.GET("/contracts/active", h.activeContracts)
	protected.GET("/contracts/active/export", h.exportActiveContracts)
	protected.GET("/contracts/:id/document", h.contractDocument)
	protected.GET("/dashboard/stats", h.dashboardStats)
	protected.GET("/notifications", h.listNotifications)
}

type createMappingRequest struct {
	LegalUserID   string `json:"legal_user_id" binding:"required"`
	FinanceUserID string `json:"finance_user_id" binding:"required"`
	ClientUserID  string `json:"client_user_id" binding:"required"`
}

func (h *Handler) createMapping(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	var req createMappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	legalID, err := parseID(req.LegalUserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid legal_user_id"})
		return
	}
	financeID, err := parseID(req.FinanceUserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid finance_user_id"})
		return
	}
	clientID, err := parseID(req.ClientUserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client_user_id"})
		return
	}

	mapping, err := h.mappings.CreateMapping(c.Request.Context(), principal.UserID, legalID, financeID, clientID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, mappingResponseFrom(*mapping))
}

func (h *Handler) listMappings(c *gin.Context) {
	mappings, err := h.mappings.ListMappings(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	out := make([]mappingResponse, 0, len(mappings))
	for _, m := range mappings {
		out = append(out, mappingResponseFrom(m))
	}
	c.JSON(http.StatusOK, out)
}

type createUserRequest struct {
	Username string `json:"username" binding:"required"`
	Role     string `json:"role" binding:"required"`
}

func (h *Handler) createUser(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.CreateUser(c.Request.Context(), principal.UserID, req.Username, model.Role(strings.ToUpper(strings.TrimSpace(req.Role))))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, userResponseFrom(*user))
}

func (h *Handler) listUsers(c *gin.Context) {
	var role *model.Role
	if raw := strings.TrimSpace(c.Query("role")); raw != "" {
		parsed := model.Role(strings.ToUpper(raw))
		role = &parsed
	}

	users, err := h.users.ListUsers(c.Request.Context(), role)
	if err != nil {
		h.handleError(c, err)
		return
	}
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, userResponseFrom(u))
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) listAudit(c *gin.Context) {
	limit := 100
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	entries, err := h.queries.AuditTrail(c.Request.Context(), limit)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

type contractRequest struct {
	Name          string  `json:"name" binding:"required"`
	ClientUserID  string  `json:"client_user_id"`
	EffectiveDate string  `json:"effective_date" binding:"required"`
	Amount        float64 `json:"amount"`
}

func (h *Handler) createContract(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	var req contractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	clientID, err := parseID(req.ClientUserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client_user_id"})
		return
	}
	effectiveDate, err := parseDate(req.EffectiveDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid effective_date"})
		return
	}

	contract, err := h.workflow.CreateContract(c.Request.Context(), service.CreateContractInput{
		Name:          req.Name,
		ClientUserID:  clientID,
		EffectiveDate: effectiveDate,
		Amount:        req.Amount,
		ActorID:       principal.UserID,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, contractResponseFrom(*contract))
}

func (h *Handler) updateContract(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	contractID, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract id"})
		return
	}

	var req contractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	effectiveDate, err := parseDate(req.EffectiveDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid effective_date"})
		return
	}

	contract, err := h.workflow.UpdateContract(c.Request.Context(), contractID, service.UpdateContractInput{
		Name:          req.Name,
		EffectiveDate: effectiveDate,
		Amount:        req.Amount,
		ActorID:       principal.UserID,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, contractResponseFrom(*contract))
}

func (h *Handler) mappedClients(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	clients, err := h.mappings.MappedClients(c.Request.Context(), principal.UserID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	out := make([]userResponse, 0, len(clients))
	for _, u := range clients {
		out = append(out, userResponseFrom(u))
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) submit(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	contractID, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract id"})
		return
	}

	version, err := h.workflow.Submit(c.Request.Context(), contractID, principal.UserID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, versionResponseFrom(*version))
}

type decisionRequest struct {
	Remarks string `json:"remarks"`
}

func (h *Handler) approve(c *gin.Context) {
	h.decide(c, h.workflow.Approve)
}

func (h *Handler) reject(c *gin.Context) {
	h.decide(c, h.workflow.Reject)
}

func (h *Handler) decide(c *gin.Context, action func(ctx context.Context, contractID uuid.UUID, remarks string, actorID uuid.UUID) (*model.ContractVersion, error)) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	contractID, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract id"})
		return
	}

	var req decisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	version, err := action(c.Request.Context(), contractID, req.Remarks, principal.UserID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, versionResponseFrom(*version))
}

func (h *Handler) myQueue(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	queue, err := h.queries.MyQueue(c.Request.Context(), principal.UserID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, viewsResponse(queue))
}

func (h *Handler) approvalQueue(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	queue, err := h.queries.ApprovalQueue(c.Request.Context(), principal.UserID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, viewsResponse(queue))
}

func (h *Handler) activeContracts(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	active, err := h.queries.ActiveContracts(c.Request.Context(), principal.UserID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, viewsResponse(active))
}

func (h *Handler) exportActiveContracts(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	result, err := h.exports.ActiveContractsRegister(c.Request.Context(), principal.UserID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", result.Content)
}

func (h *Handler) contractDocument(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	contractID, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract id"})
		return
	}

	result, err := h.exports.ContractDocument(c.Request.Context(), contractID, principal.UserID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, "application/pdf", result.Content)
}

func (h *Handler) dashboardStats(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	stats, err := h.queries.DashboardStats(c.Request.Context(), principal.UserID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) listNotifications(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	notifications, err := h.queries.Notifications(c.Request.Context(), principal.UserID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, notifications)
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrConflict), errors.Is(err, service.ErrInvalidState):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInternalInconsistency):
		h.log.Error().Err(err).Msg("workflow consistency violation")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	default:
		h.log.Error().Err(err).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func parseID(raw string) (uuid.UUID, error) {
	return uuid.Parse(strings.TrimSpace(raw))
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, service.ErrInvalidInput
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02",
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, service.ErrInvalidInput
}
