package excel

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/nurpe/contract-workflow/internal/model"
)

func TestGenerate(t *testing.T) {
	generator := NewGenerator()
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

	content, err := generator.Generate(model.ContractsRegister{
		Role:        model.RoleSuperAdmin,
		GeneratedAt: now,
		Rows: []model.RegisterRow{
			{
				VersionView: model.VersionView{
					ContractVersion: model.ContractVersion{
						ContractID:    uuid.New(),
						VersionNumber: 2,
						Status:        model.StatusActive,
						UpdatedAt:     now,
					},
					ContractName:  "Snow Removal 2026",
					EffectiveDate: time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC),
					Amount:        250000.50,
				},
				ClientName: "acme.client",
			},
		},
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	file, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer file.Close()

	sheet := "Active Contracts"
	checks := map[string]string{
		"A1": "Report",
		"B3": "SUPER_ADMIN",
		"B4": "1",
		"A6": "Contract",
		"A7": "Snow Removal 2026",
		"B7": "acme.client",
		"C7": "2026-11-01",
		"E7": "2",
	}
	for cell, want := range checks {
		got, err := file.GetCellValue(sheet, cell)
		if err != nil {
			t.Fatalf("GetCellValue(%s): %v", cell, err)
		}
		if got != want {
			t.Errorf("%s = %q, want %q", cell, got, want)
		}
	}
}

func TestGenerateEmptyRegister(t *testing.T) {
	content, err := NewGenerator().Generate(model.ContractsRegister{
		Role:        model.RoleClient,
		GeneratedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(content) == 0 {
		t.Error("empty workbook content")
	}
}
