package export

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"gastos/internal/core"
)

func TestLedgerXLSX(t *testing.T) {
	snapshot := []core.Expense{
		{
			ID:            1,
			Category:      "Food",
			Description:   "groceries",
			PaymentMethod: "cash",
			Amount:        decimal.RequireFromString("12.5"),
			Date:          core.NewDate(2024, 1, 1),
		},
		{
			ID:            2,
			Category:      "Home",
			Description:   "lightbulbs",
			PaymentMethod: "Bank A",
			Amount:        decimal.RequireFromString("7.2"),
			Date:          core.NewDate(2024, 1, 2),
		},
	}

	data, err := LedgerXLSX(snapshot)
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Expenses")
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	if len(rows) != 3 { // header + 2 records
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0][0] != "ID" || rows[0][2] != "Category" {
		t.Fatalf("unexpected header row: %v", rows[0])
	}
	if rows[1][1] != "2024-01-01" || rows[1][3] != "groceries" {
		t.Fatalf("unexpected first record row: %v", rows[1])
	}
	if rows[2][4] != "Bank A" {
		t.Fatalf("unexpected payment method cell: %v", rows[2])
	}
}

func TestLedgerXLSXEmptySnapshot(t *testing.T) {
	data, err := LedgerXLSX(nil)
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Expenses")
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected header only, got %d rows", len(rows))
	}
}
