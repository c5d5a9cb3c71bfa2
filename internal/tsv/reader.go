// Package tsv reads tab-separated bank statement exports into raw
// rows. Column order follows the header line, so reordered exports
// still parse.
package tsv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"bankpoke/internal/core"
)

// Statement column headers as the bank exports them.
const (
	HeaderDate        = "날짜"
	HeaderTime        = "시간"
	HeaderType        = "타입"
	HeaderMajorCat    = "대분류"
	HeaderMinorCat    = "소분류"
	HeaderDescription = "내용"
	HeaderAmount      = "금액"
	HeaderCurrency    = "화폐"
	HeaderMethod      = "결제수단"
	HeaderMemo        = "메모"
)

var ErrMissingHeader = errors.New("missing header column")

// requiredHeaders must be present; the remaining columns are optional.
var requiredHeaders = []string{HeaderDate, HeaderType, HeaderDescription, HeaderAmount}

// ReadRows parses an entire statement export. The first non-empty line
// is the header; subsequent lines become RawRows in file order.
func ReadRows(r io.Reader) ([]core.RawRow, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.New("empty input")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		// Exports from Windows tools may carry a UTF-8 BOM.
		columns[strings.TrimSpace(strings.TrimPrefix(name, "\uFEFF"))] = i
	}
	var missing []string
	for _, required := range requiredHeaders {
		if _, ok := columns[required]; !ok {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingHeader, strings.Join(missing, ", "))
	}

	field := func(record []string, name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return record[idx]
	}

	var rows []core.RawRow
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(rows)+2, err)
		}
		if isBlank(record) {
			continue
		}
		rows = append(rows, core.RawRow{
			Date:        field(record, HeaderDate),
			Time:        field(record, HeaderTime),
			Type:        field(record, HeaderType),
			MajorCat:    field(record, HeaderMajorCat),
			MinorCat:    field(record, HeaderMinorCat),
			Description: field(record, HeaderDescription),
			AmountText:  field(record, HeaderAmount),
			Currency:    field(record, HeaderCurrency),
			Method:      field(record, HeaderMethod),
			Memo:        field(record, HeaderMemo),
		})
	}
	return rows, nil
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
