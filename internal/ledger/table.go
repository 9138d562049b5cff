package ledger

import (
	"errors"
	"fmt"
	"strings"

	"orderledger/internal"
)

var (
	ErrMissingColumn = errors.New("missing required column")
	ErrEmptyTable    = errors.New("raw table has no header row")
)

// ParseTable maps the raw worksheet onto RawOrders using its header row.
func ParseTable(table [][]string) ([]internal.RawOrder, error) {
	if len(table) == 0 {
		return nil, ErrEmptyTable
	}

	index := map[string]int{}
	for i, h := range table[0] {
		key := strings.TrimSpace(h)
		if _, dup := index[key]; !dup {
			index[key] = i
		}
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingColumn, col)
		}
	}

	out := make([]internal.RawOrder, 0, len(table)-1)
	for i, row := range table[1:] {
		if isBlankRow(row) {
			continue
		}
		cell := func(col string) string {
			idx, ok := index[col]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}
		out = append(out, internal.RawOrder{
			RowNo:         i + 2,
			CreatedAt:     cell(ColCreatedAt),
			PaidAt:        cell(ColPaidAt),
			OrderID:       cell(ColOrderID),
			Product:       cell(ColProduct),
			Quantity:      cell(ColQuantity),
			Customer:      cell(ColCustomer),
			Email:         cell(ColEmail),
			Total:         cell(ColTotal),
			Status:        cell(ColStatus),
			PaymentMethod: cell(ColPaymentMethod),
		})
	}
	return out, nil
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
