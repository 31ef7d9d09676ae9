package ledger

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const (
	summarySheet      = "Resumen"
	denominationSheet = "Denominaciones"
	dateLayout        = "2006-01-02 15:04"
)

// Export writes the summary as an .xlsx workbook with one sheet of totals
// and one per-denomination sheet.
func Export(sum *Summary, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(denominationSheet); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	totals := [][]any{
		{"Desde", sum.From.Format(dateLayout)},
		{"Hasta", sum.To.Format(dateLayout)},
		{"Pagos", sum.Payments},
		{"Total a pagar", sum.TotalDue.InexactFloat64()},
		{"Total recibido", sum.TotalReceived.InexactFloat64()},
		{"Total cambio", int64(sum.TotalChange)},
		{"Efectivo neto", sum.NetCash.InexactFloat64()},
	}
	for i, row := range totals {
		if err := setRow(f, summarySheet, i+1, row); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(summarySheet, "A1", fmt.Sprintf("A%d", len(totals)), bold); err != nil {
		return err
	}

	if err := setRow(f, denominationSheet, 1, []any{"Denominación", "Recibidas", "Entregadas", "Neto", "Valor neto"}); err != nil {
		return err
	}
	if err := f.SetCellStyle(denominationSheet, "A1", "E1", bold); err != nil {
		return err
	}
	for i, d := range sum.Denominations {
		row := []any{int64(d.Value), d.Received, d.Returned, d.Net, int64(d.Value) * d.Net}
		if err := setRow(f, denominationSheet, i+2, row); err != nil {
			return err
		}
	}

	return f.Write(w)
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}
