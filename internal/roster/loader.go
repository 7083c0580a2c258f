// Package roster reads the list of securities to evaluate.
package roster

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/wonny/stockpick/internal/contracts"
)

// Required column headers
const (
	ColumnSymbol    = "Symbol"
	ColumnShortname = "Shortname"
)

// ErrMissingColumn is returned when a required header is absent
var ErrMissingColumn = errors.New("missing required column")

// Load reads a roster file. Files ending in .html or .htm are parsed as an
// HTML table, everything else as CSV. Any failure is fatal for the run.
// ⭐ SSOT: 종목 리스트 로딩은 이 함수에서만
func Load(path string) ([]contracts.SecurityReference, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open roster: %w", err)
	}
	defer f.Close()

	var refs []contracts.SecurityReference
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		refs, err = ReadHTML(f)
	default:
		refs, err = ReadCSV(f)
	}
	if err != nil {
		return nil, fmt.Errorf("read roster %s: %w", path, err)
	}

	return refs, nil
}

// ReadCSV parses a CSV roster with a header row
func ReadCSV(r io.Reader) ([]contracts.SecurityReference, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	symbolIdx, nameIdx, err := columnIndexes(header)
	if err != nil {
		return nil, err
	}

	var refs []contracts.SecurityReference
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		ref, err := buildReference(record, symbolIdx, nameIdx)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		refs = append(refs, ref)
	}

	return refs, nil
}

// ReadHTML parses the first table whose header row contains both required columns
func ReadHTML(r io.Reader) ([]contracts.SecurityReference, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var (
		refs   []contracts.SecurityReference
		found  bool
		rowErr error
	)

	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		rows := table.Find("tr")
		if rows.Length() == 0 {
			return true
		}

		header := cellTexts(rows.First())
		symbolIdx, nameIdx, err := columnIndexes(header)
		if err != nil {
			return true // 다음 테이블 확인
		}
		found = true

		rows.Slice(1, rows.Length()).EachWithBreak(func(i int, row *goquery.Selection) bool {
			cells := cellTexts(row)
			if len(cells) == 0 {
				return true
			}
			ref, err := buildReference(cells, symbolIdx, nameIdx)
			if err != nil {
				rowErr = fmt.Errorf("row %d: %w", i+1, err)
				return false
			}
			refs = append(refs, ref)
			return true
		})
		return false
	})

	if !found {
		return nil, fmt.Errorf("%w: no table with %q and %q headers", ErrMissingColumn, ColumnSymbol, ColumnShortname)
	}
	if rowErr != nil {
		return nil, rowErr
	}

	return refs, nil
}

func cellTexts(row *goquery.Selection) []string {
	var cells []string
	row.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
		cells = append(cells, strings.TrimSpace(cell.Text()))
	})
	return cells
}

func columnIndexes(header []string) (symbolIdx, nameIdx int, err error) {
	symbolIdx, nameIdx = -1, -1
	for i, col := range header {
		switch strings.TrimSpace(strings.TrimPrefix(col, "\ufeff")) {
		case ColumnSymbol:
			symbolIdx = i
		case ColumnShortname:
			nameIdx = i
		}
	}

	if symbolIdx < 0 {
		return 0, 0, fmt.Errorf("%w: %s", ErrMissingColumn, ColumnSymbol)
	}
	if nameIdx < 0 {
		return 0, 0, fmt.Errorf("%w: %s", ErrMissingColumn, ColumnShortname)
	}
	return symbolIdx, nameIdx, nil
}

func buildReference(record []string, symbolIdx, nameIdx int) (contracts.SecurityReference, error) {
	if symbolIdx >= len(record) || nameIdx >= len(record) {
		return contracts.SecurityReference{}, fmt.Errorf("expected at least %d fields, got %d", max(symbolIdx, nameIdx)+1, len(record))
	}

	return contracts.SecurityReference{
		Name:   strings.TrimSpace(record[nameIdx]),
		Symbol: strings.TrimSpace(record[symbolIdx]),
	}, nil
}
