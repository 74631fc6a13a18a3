package service

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	domain "github.com/corvusHold/outreach/internal/companyusers/domain"
)

const (
	formatCSV  = "csv"
	formatXLSX = "xlsx"
)

func detectFormat(filename string) (string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return formatCSV, nil
	case ".xlsx":
		return formatXLSX, nil
	default:
		return "", domain.ErrUnsupportedFile
	}
}

// readRows returns every row of the upload, header first.
func readRows(format string, r io.Reader) ([][]string, error) {
	switch format {
	case formatCSV:
		cr := csv.NewReader(r)
		cr.FieldsPerRecord = -1
		rows, err := cr.ReadAll()
		if err != nil {
			return nil, domain.ErrUnsupportedFile.Wrap(err)
		}
		return rows, nil
	case formatXLSX:
		f, err := excelize.OpenReader(r)
		if err != nil {
			return nil, domain.ErrUnsupportedFile.Wrap(err)
		}
		defer func() { _ = f.Close() }()
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, domain.ErrEmptyImport
		}
		rows, err := f.GetRows(sheets[0])
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
		}
		return rows, nil
	}
	return nil, errors.New("unknown import format " + format)
}

// header cleans the first row. Reserved and blank column names come back empty
// so their cells are skipped.
func header(row []string) ([]string, error) {
	out := make([]string, len(row))
	named := 0
	for i, h := range row {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		h = strings.TrimSpace(h)
		if _, reserved := domain.Reserved[h]; reserved {
			h = ""
		}
		if h != "" {
			named++
		}
		out[i] = h
	}
	if named == 0 {
		return nil, domain.ErrMissingHeader
	}
	return out, nil
}
