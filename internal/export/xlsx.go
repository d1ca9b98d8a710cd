// Package export renders ledger snapshots as downloadable workbooks.
package export

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"gastos/internal/core"
)

const sheetName = "Expenses"

// LedgerXLSX returns an XLSX workbook (as bytes) containing the full ledger
// snapshot, one row per record, in the order given.
func LedgerXLSX(expenses []core.Expense) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, fmt.Errorf("name sheet: %w", err)
	}

	headers := []string{
		"ID",
		"Date",
		"Category",
		"Description",
		"Payment Method",
		"Amount (" + core.CanonicalCurrency + ")",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetName, cell, h)
	}

	for i, e := range expenses {
		row := i + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheetName, cell, v)
		}

		write(1, e.ID)
		write(2, e.Date.String())
		write(3, e.Category)
		write(4, e.Description)
		write(5, e.PaymentMethod)
		write(6, e.Amount.InexactFloat64())
	}

	// Widen a few columns
	_ = f.SetColWidth(sheetName, "B", "B", 12) // date
	_ = f.SetColWidth(sheetName, "C", "C", 22) // category
	_ = f.SetColWidth(sheetName, "D", "D", 40) // description
	_ = f.SetColWidth(sheetName, "E", "E", 20) // payment method
	_ = f.SetColWidth(sheetName, "F", "F", 14) // amount

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	slog.Info("export.xlsx.ok",
		"rows", len(expenses),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}
