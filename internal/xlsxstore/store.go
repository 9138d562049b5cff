// Package xlsxstore keeps both worksheets in a local workbook, for offline runs and exports.
package xlsxstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/xuri/excelize/v2"
)

type Store struct {
	mu   sync.Mutex
	path string
	file *excelize.File
}

// Open loads the workbook at path, starting an empty one if it does not exist yet.
func Open(path string) (*Store, error) {
	f, err := excelize.OpenFile(path)
	if errors.Is(err, os.ErrNotExist) {
		f = excelize.NewFile()
		err = nil
	}
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	return &Store{path: path, file: f}, nil
}

func (s *Store) ReadAll(_ context.Context, sheet string) ([][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.GetRows(sheet)
}

func (s *Store) ReadColumn(_ context.Context, sheet string, index int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasSheet(sheet) {
		return nil, nil
	}
	rows, err := s.file.GetRows(sheet)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		if index-1 < len(r) {
			out = append(out, r[index-1])
		} else {
			out = append(out, "")
		}
	}
	return out, nil
}

// Append writes rows after the last used row and saves the workbook.
func (s *Store) Append(_ context.Context, sheet string, rows [][]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasSheet(sheet) {
		if _, err := s.file.NewSheet(sheet); err != nil {
			return err
		}
	}
	existing, err := s.file.GetRows(sheet)
	if err != nil {
		return err
	}
	next := len(existing) + 1
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, next+i)
		if err != nil {
			return err
		}
		if err := s.file.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return err
		}
	}
	return s.save()
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}

func (s *Store) hasSheet(sheet string) bool {
	idx, err := s.file.GetSheetIndex(sheet)
	return err == nil && idx >= 0
}

func (s *Store) save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	// excelize picks the content type from the extension, so the temp name keeps it.
	ext := filepath.Ext(s.path)
	tmp := strings.TrimSuffix(s.path, ext) + ".tmp" + ext
	if err := s.file.SaveAs(tmp); err != nil {
		return err
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return err
	}
	// SaveAs re-points the file at tmp; keep later saves targeting the real path.
	s.file.Path = s.path
	return nil
}
