package ledger

import "context"

// Source reads a whole worksheet, header row first.
type Source interface {
	ReadAll(ctx context.Context, sheet string) ([][]string, error)
}

// Destination is the append-only processed ledger.
type Destination interface {
	// ReadColumn returns every cell of the 1-based column, header included.
	ReadColumn(ctx context.Context, sheet string, index int) ([]string, error)
	Append(ctx context.Context, sheet string, rows [][]any) error
}

type Store interface {
	Source
	Destination
	Close() error
}
