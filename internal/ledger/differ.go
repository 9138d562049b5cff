package ledger

import (
	"strings"

	"orderledger/internal"
)

type DiffResult struct {
	New              []internal.RawOrder
	Read             int
	AlreadyProcessed int
	Duplicates       int
	BlankIDs         int
}

// ProcessedIDs turns a destination id column into a lookup set, skipping the header cell.
func ProcessedIDs(column []string) map[string]struct{} {
	out := map[string]struct{}{}
	if len(column) <= 1 {
		return out
	}
	for _, id := range column[1:] {
		id = strings.TrimSpace(id)
		if id != "" {
			out[id] = struct{}{}
		}
	}
	return out
}

// Diff keeps the orders absent from processed, dropping repeated ids after the first.
func Diff(orders []internal.RawOrder, processed map[string]struct{}) DiffResult {
	res := DiffResult{Read: len(orders), New: make([]internal.RawOrder, 0, len(orders))}
	seen := map[string]struct{}{}
	for _, o := range orders {
		id := strings.TrimSpace(o.OrderID)
		if id == "" {
			res.BlankIDs++
			continue
		}
		if _, ok := processed[id]; ok {
			res.AlreadyProcessed++
			continue
		}
		if _, ok := seen[id]; ok {
			res.Duplicates++
			continue
		}
		seen[id] = struct{}{}
		res.New = append(res.New, o)
	}
	return res
}
