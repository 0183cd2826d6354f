package excel

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/innotechjsc-company/hanotexapp-sub006/internal/model"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Generate builds the contract register workbook: one summary sheet plus the
// full contract list.
func (g *Generator) Generate(register model.ContractRegister) ([]byte, error) {
	file := excelize.NewFile()

	sheet := "Contracts"
	file.SetSheetName("Sheet1", sheet)

	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Owner")
	set("B1", register.Owner.FullName)
	set("A2", "Email")
	set("B2", register.Owner.Email)
	set("A3", "Generated at")
	set("B3", formatDateTime(register.GeneratedAt))
	set("A4", "Contracts")
	set("B4", len(register.Contracts))

	tableRow := 6
	headers := []string{
		"Contract ID",
		"Deal kind",
		"Status",
		"Price",
		"Technologies",
		"Documents",
		"Created at",
	}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, tableRow)
		set(cell, header)
	}

	for i, contract := range register.Contracts {
		row := tableRow + 1 + i
		set(fmt.Sprintf("A%d", row), contract.ID.String())
		set(fmt.Sprintf("B%d", row), string(contract.ProposalKind))
		set(fmt.Sprintf("C%d", row), string(contract.Status))
		set(fmt.Sprintf("D%d", row), contract.Price)
		set(fmt.Sprintf("E%d", row), len(contract.TechnologyIDs))
		set(fmt.Sprintf("F%d", row), len(contract.Documents))
		set(fmt.Sprintf("G%d", row), formatDateTime(contract.CreatedAt))
	}

	_ = file.SetColWidth(sheet, "A", "A", 38)
	_ = file.SetColWidth(sheet, "B", "C", 20)
	_ = file.SetColWidth(sheet, "D", "D", 16)
	_ = file.SetColWidth(sheet, "E", "F", 14)
	_ = file.SetColWidth(sheet, "G", "G", 20)

	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04")
}
