package sheets

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"orderledger/internal/config"
)

// Store reads and appends worksheet values of one spreadsheet.
type Store struct {
	service       *gsheets.Service
	spreadsheetID string
}

func Open(ctx context.Context, cfg config.Config) (*Store, error) {
	if err := cfg.Require("GOOGLE_SHEETS_CREDENTIALS", cfg.GoogleCredentialsPath); err != nil {
		return nil, err
	}
	if err := cfg.Require("SHEET_ID", cfg.SheetID); err != nil {
		return nil, err
	}

	blob, err := os.ReadFile(cfg.GoogleCredentialsPath)
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	creds, err := google.CredentialsFromJSON(ctx, blob, gsheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	svc, err := gsheets.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, err
	}
	return NewStore(svc, cfg.SheetID), nil
}

func NewStore(service *gsheets.Service, spreadsheetID string) *Store {
	return &Store{service: service, spreadsheetID: spreadsheetID}
}

func (s *Store) ReadAll(ctx context.Context, sheet string) ([][]string, error) {
	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, quoteSheet(sheet)).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	out := make([][]string, 0, len(resp.Values))
	for _, row := range resp.Values {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = cellString(v)
		}
		out = append(out, cells)
	}
	return out, nil
}

func (s *Store) ReadColumn(ctx context.Context, sheet string, index int) ([]string, error) {
	col, err := excelize.ColumnNumberToName(index)
	if err != nil {
		return nil, err
	}
	rng := fmt.Sprintf("%s!%s:%s", quoteSheet(sheet), col, col)
	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, rng).
		MajorDimension("ROWS").
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(resp.Values))
	for _, row := range resp.Values {
		if len(row) == 0 {
			out = append(out, "")
			continue
		}
		out = append(out, cellString(row[0]))
	}
	return out, nil
}

// Append writes rows below the last row of the sheet's table. Values are stored RAW so
// order ids keep leading zeros.
func (s *Store) Append(ctx context.Context, sheet string, rows [][]any) error {
	values := make([][]interface{}, len(rows))
	for i, r := range rows {
		values[i] = r
	}
	_, err := s.service.Spreadsheets.Values.Append(s.spreadsheetID, quoteSheet(sheet)+"!A1", &gsheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	return err
}

func (s *Store) Close() error { return nil }

func quoteSheet(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

func cellString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
