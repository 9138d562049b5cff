package ledger

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderledger/internal"
)

var header = []string{ColCreatedAt, ColPaidAt, ColOrderID, ColProduct, ColQuantity, ColCustomer, ColEmail, ColTotal, ColStatus, ColPaymentMethod}

func TestParseTable(t *testing.T) {
	table := [][]string{
		header,
		{"2024-01-01", "2024-01-02", " 1001 ", "Produto A - AB", "1", "Ana", "ana@example.com", "R$ 197,00", "pago", "pix"},
		{"", "", "", "", ""},
		{"2024-01-03", "", "1002", "Produto B", "2"},
	}

	orders, err := ParseTable(table)
	require.NoError(t, err)
	require.Len(t, orders, 2)

	assert.Equal(t, internal.RawOrder{
		RowNo: 2, CreatedAt: "2024-01-01", PaidAt: "2024-01-02", OrderID: "1001",
		Product: "Produto A - AB", Quantity: "1", Customer: "Ana", Email: "ana@example.com",
		Total: "R$ 197,00", Status: "pago", PaymentMethod: "pix",
	}, orders[0])
	assert.Equal(t, 4, orders[1].RowNo)
	assert.Equal(t, "", orders[1].PaymentMethod)
}

func TestParseTableMissingColumn(t *testing.T) {
	_, err := ParseTable([][]string{{ColCreatedAt, ColProduct, ColQuantity}})
	assert.ErrorIs(t, err, ErrMissingColumn)

	_, err = ParseTable(nil)
	assert.ErrorIs(t, err, ErrEmptyTable)
}

func TestParseTableOptionalColumns(t *testing.T) {
	orders, err := ParseTable([][]string{
		{ColOrderID, ColProduct, ColQuantity},
		{"7", "Fortisol", "1"},
	})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "", orders[0].Status)
}

func TestDiff(t *testing.T) {
	orders := []internal.RawOrder{
		{RowNo: 2, OrderID: "1", Product: "first"},
		{RowNo: 3, OrderID: "2", Product: "already"},
		{RowNo: 4, OrderID: "3", Product: "keep"},
		{RowNo: 5, OrderID: "1", Product: "dup"},
		{RowNo: 6, OrderID: "  ", Product: "blank"},
		{RowNo: 7, OrderID: "3", Product: "dup again"},
		{RowNo: 8, OrderID: "4", Product: "last"},
	}
	processed := ProcessedIDs([]string{ColOrderID, "2", " ", "99"})

	res := Diff(orders, processed)

	var gotIDs []string
	for _, o := range res.New {
		gotIDs = append(gotIDs, o.OrderID+":"+o.Product)
	}
	if diff := cmp.Diff([]string{"1:first", "3:keep", "4:last"}, gotIDs); diff != "" {
		t.Fatalf("new orders mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 7, res.Read)
	assert.Equal(t, 1, res.AlreadyProcessed)
	assert.Equal(t, 2, res.Duplicates)
	assert.Equal(t, 1, res.BlankIDs)
}

func TestProcessedIDsHeaderOnly(t *testing.T) {
	assert.Empty(t, ProcessedIDs(nil))
	assert.Empty(t, ProcessedIDs([]string{ColOrderID}))
	// the header cell is never treated as an id
	assert.NotContains(t, ProcessedIDs([]string{ColOrderID, "5"}), ColOrderID)
}
