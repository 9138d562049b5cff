package pipeline

import (
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"orderledger/internal/ledger"
)

const (
	reportProcessedSheet = "Processados"
	reportSkippedSheet   = "Ignorados"
)

// ExportRunReport writes the rows a run assembled and the rows it skipped to an xlsx file.
func ExportRunReport(res RunResult, outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), reportProcessedSheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(reportSkippedSheet); err != nil {
		return err
	}

	for i, h := range ledger.ProcessedHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(reportProcessedSheet, cell, h)
	}
	for i, row := range res.Rows {
		for col, value := range row.LedgerRow() {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			_ = f.SetCellValue(reportProcessedSheet, cell, value)
		}
	}

	for i, h := range []string{"Linha", "ID do Pedido Yampi", "Motivo"} {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(reportSkippedSheet, cell, h)
	}
	for i, skip := range res.Skipped {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(reportSkippedSheet, cell, value)
		}
		set(1, skip.RowNo)
		set(2, skip.OrderID)
		set(3, skip.Reason)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}
