package pipeline

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"orderledger/internal"
)

func TestExportRunReport(t *testing.T) {
	res := RunResult{
		Rows: []internal.ProcessedOrder{{
			RawOrder:    internal.RawOrder{OrderID: "55", Product: "Fortisol - AB", Total: "R$ 10,00"},
			Manager:     "AB",
			SaleType:    internal.SaleNormal,
			ProductName: "Fortisol",
			ResolvedQty: 1,
		}},
		Skipped: []internal.SkippedOrder{{RowNo: 9, OrderID: "56", Reason: "product unresolved"}},
	}

	out := filepath.Join(t.TempDir(), "reports", "run.xlsx")
	require.NoError(t, ExportRunReport(res, out))

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()

	processed, err := f.GetRows(reportProcessedSheet)
	require.NoError(t, err)
	require.Len(t, processed, 2)
	assert.Equal(t, "55", processed[1][2])
	assert.Equal(t, "Fortisol", processed[1][10])

	skipped, err := f.GetRows(reportSkippedSheet)
	require.NoError(t, err)
	require.Len(t, skipped, 2)
	assert.Equal(t, []string{"9", "56", "product unresolved"}, skipped[1])
}
