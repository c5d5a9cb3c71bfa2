package tsv

import (
	"errors"
	"strings"
	"testing"
)

const sampleExport = "날짜\t시간\t타입\t대분류\t소분류\t내용\t금액\t화폐\t결제수단\t메모\n" +
	"2024-02-13\t12:01\t지출\t쇼핑\t온라인\t쿠팡\t-7,990\tKRW\t체크카드\t\n" +
	"2024-02-13\t\t이체\t\t\t세이프박스\t-120,000\t\t\t비상금\n"

func TestReadRows(t *testing.T) {
	rows, err := ReadRows(strings.NewReader(sampleExport))
	if err != nil {
		t.Fatalf("ReadRows() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}

	first := rows[0]
	if first.Date != "2024-02-13" || first.Type != "지출" || first.Description != "쿠팡" {
		t.Errorf("first row = %+v", first)
	}
	if first.AmountText != "-7,990" || first.Currency != "KRW" || first.Method != "체크카드" {
		t.Errorf("first row amount fields = %+v", first)
	}

	second := rows[1]
	if second.Time != "" || second.Currency != "" {
		t.Errorf("second row should keep blank optional fields: %+v", second)
	}
	if second.Memo != "비상금" {
		t.Errorf("Memo = %q, want 비상금", second.Memo)
	}
}

func TestReadRows_ReorderedColumns(t *testing.T) {
	input := "금액\t내용\t타입\t날짜\n" +
		"-4,500\t스타벅스\t지출\t2024-02-13\n"

	rows, err := ReadRows(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadRows() error = %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	if rows[0].Date != "2024-02-13" || rows[0].AmountText != "-4,500" {
		t.Errorf("row = %+v", rows[0])
	}
}

func TestReadRows_MissingRequiredHeader(t *testing.T) {
	input := "날짜\t타입\t내용\n2024-02-13\t지출\t커피\n"
	_, err := ReadRows(strings.NewReader(input))
	if !errors.Is(err, ErrMissingHeader) {
		t.Errorf("error = %v, want ErrMissingHeader", err)
	}
}

func TestReadRows_SkipsBlankLines(t *testing.T) {
	input := "날짜\t타입\t내용\t금액\n" +
		"2024-02-13\t지출\t커피\t-4500\n" +
		"\t\t\t\n" +
		"2024-02-14\t수입\t급여\t2500000\n"

	rows, err := ReadRows(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Errorf("rows = %d, want 2 with blank line skipped", len(rows))
	}
}

func TestReadRows_BOMHeader(t *testing.T) {
	input := "\uFEFF날짜\t타입\t내용\t금액\n2024-02-13\t지출\t커피\t-4500\n"
	rows, err := ReadRows(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadRows() error = %v", err)
	}
	if rows[0].Date != "2024-02-13" {
		t.Errorf("Date = %q", rows[0].Date)
	}
}

func TestReadRows_EmptyInput(t *testing.T) {
	if _, err := ReadRows(strings.NewReader("")); err == nil {
		t.Error("expected error for empty input")
	}
}
