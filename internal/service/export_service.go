package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/contract-workflow/internal/model"
)

type ExcelGenerator interface {
	Generate(register model.ContractsRegister) ([]byte, error)
}

type PDFGenerator interface {
	Generate(doc model.ContractDocument) ([]byte, error)
}

// ExportService produces downloadable documents: the active-contracts
// register workbook and per-contract approval-history sheets.
type ExportService struct {
	queries  *QueryService
	workflow *WorkflowService
	users    UserStore
	excel    ExcelGenerator
	pdf      PDFGenerator
}

type ExportResult struct {
	FileName string
	Content  []byte
}

func NewExportService(queries *QueryService, workflow *WorkflowService, users UserStore, excel ExcelGenerator, pdf PDFGenerator) *ExportService {
	return &ExportService{
		queries:  queries,
		workflow: workflow,
		users:    users,
		excel:    excel,
		pdf:      pdf,
	}
}

// ActiveContractsRegister exports the viewer's active-contracts projection as
// an xlsx workbook. Visibility follows the projection itself: admins see all
// active contracts, clients their own.
func (s *ExportService) ActiveContractsRegister(ctx context.Context, actorID uuid.UUID) (*ExportResult, error) {
	viewer, err := s.users.GetUser(ctx, actorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %s", ErrNotFound, actorID)
		}
		return nil, err
	}
	if viewer.Role != model.RoleSuperAdmin && viewer.Role != model.RoleClient {
		return nil, fmt.Errorf("%w: active contracts export is limited to admins and clients", ErrPermissionDenied)
	}

	active, err := s.queries.ActiveContracts(ctx, actorID)
	if err != nil {
		return nil, err
	}

	rows := make([]model.RegisterRow, 0, len(active))
	for _, v := range active {
		rows = append(rows, model.RegisterRow{
			VersionView: v,
			ClientName:  s.username(ctx, v.ClientUserID),
		})
	}

	now := time.Now().UTC()
	content, err := s.excel.Generate(model.ContractsRegister{
		Role:        viewer.Role,
		GeneratedAt: now,
		Rows:        rows,
	})
	if err != nil {
		return nil, err
	}

	fileName := fmt.Sprintf("active-contracts-%s.xlsx", now.Format("20060102-150405"))
	return &ExportResult{FileName: fileName, Content: content}, nil
}

// ContractDocument renders one contract's approval history as a PDF. Access
// control is the workflow's party check.
func (s *ExportService) ContractDocument(ctx context.Context, contractID, actorID uuid.UUID) (*ExportResult, error) {
	contract, versions, err := s.workflow.ContractHistory(ctx, contractID, actorID)
	if err != nil {
		return nil, err
	}

	creators := make(map[uuid.UUID]string, len(versions))
	for _, v := range versions {
		if _, ok := creators[v.CreatorID]; !ok {
			creators[v.CreatorID] = s.username(ctx, v.CreatorID)
		}
	}

	content, err := s.pdf.Generate(model.ContractDocument{
		Contract:   *contract,
		ClientName: s.username(ctx, contract.ClientUserID),
		Versions:   versions,
		Creators:   creators,
	})
	if err != nil {
		return nil, err
	}

	fileName := fmt.Sprintf("contract-%s.pdf", sanitizeFileName(contract.Name))
	return &ExportResult{FileName: fileName, Content: content}, nil
}

func (s *ExportService) username(ctx context.Context, id uuid.UUID) string {
	user, err := s.users.GetUser(ctx, id)
	if err != nil {
		return id.String()
	}
	return user.Username
}

func sanitizeFileName(input string) string {
	result := make([]rune, 0, len(input))
	for _, r := range input {
		switch {
		case r >= 'a' && r <= 'z':
			result = append(result, r)
		case r >= 'A' && r <= 'Z':
			result = append(result, r)
		case r >= '0' && r <= '9':
			result = append(result, r)
		case r == '-', r == '_':
			result = append(result, r)
		default:
			result = append(result, '-')
		}
	}
	cleaned := strings.Trim(string(result), "-")
	if cleaned == "" {
		return "contract"
	}
	return cleaned
}
