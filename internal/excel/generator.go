package excel

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/nurpe/contract-workflow/internal/model"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Generate builds the active-contracts register workbook: a summary block
// followed by one row per contract.
func (g *Generator) Generate(register model.ContractsRegister) ([]byte, error) {
	file := excelize.NewFile()

	sheet := "Active Contracts"
	file.SetSheetName("Sheet1", sheet)

	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Report")
	set("B1", "Active contracts register")
	set("A2", "Generated at")
	set("B2", formatDateTime(register.GeneratedAt))
	set("A3", "Viewer role")
	set("B3", string(register.Role))
	set("A4", "Contracts")
	set("B4", len(register.Rows))

	headerRow := 6
	headers := []string{"Contract", "Client", "Effective date", "Amount", "Version", "Approved at"}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, headerRow)
		if err != nil {
			return nil, err
		}
		set(cell, header)
	}

	for i, row := range register.Rows {
		rowNum := headerRow + 1 + i
		set(fmt.Sprintf("A%d", rowNum), row.ContractName)
		set(fmt.Sprintf("B%d", rowNum), row.ClientName)
		set(fmt.Sprintf("C%d", rowNum), formatDate(row.EffectiveDate))
		set(fmt.Sprintf("D%d", rowNum), row.Amount)
		set(fmt.Sprintf("E%d", rowNum), row.VersionNumber)
		set(fmt.Sprintf("F%d", rowNum), formatDateTime(row.UpdatedAt))
	}

	_ = file.SetColWidth(sheet, "A", "A", 40)
	_ = file.SetColWidth(sheet, "B", "B", 24)
	_ = file.SetColWidth(sheet, "C", "C", 16)
	_ = file.SetColWidth(sheet, "D", "D", 14)
	_ = file.SetColWidth(sheet, "E", "E", 10)
	_ = file.SetColWidth(sheet, "F", "F", 20)

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04")
}
