// Package google appends review rows to a Google spreadsheet using a
// service account.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"bankpoke/internal/core"
	ports "bankpoke/internal/sheets"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	reviewSheet   string
}

var _ ports.ReviewWriter = (*Client)(nil)

// NewFromEnv creates a Sheets client using environment variables.
// Required: GOOGLE_SPREADSHEET_ID plus service account credentials via
// GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS.
// Optional: GOOGLE_SHEET_NAME (default "Review").
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	reviewSheet := strings.TrimSpace(os.Getenv("GOOGLE_SHEET_NAME"))
	if reviewSheet == "" {
		reviewSheet = "Review"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		reviewSheet:   reviewSheet,
	}, nil
}

func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// AppendReviewRows appends one spreadsheet row per flagged record.
func (c *Client) AppendReviewRows(ctx context.Context, batchID string, rows []core.Transaction) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	values := make([][]interface{}, 0, len(rows))
	for _, tx := range rows {
		values = append(values, reviewRow(batchID, tx))
	}

	rangeRef := fmt.Sprintf("%s!A:J", c.reviewSheet)
	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rangeRef, &gsheet.ValueRange{
		Values: values,
	}).ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("append review rows: %w", err)
	}

	slog.InfoContext(ctx, "Review rows appended to Google Sheets",
		"batch_id", batchID,
		"rows", len(rows),
		"sheet", c.reviewSheet)
	return len(rows), nil
}

func reviewRow(batchID string, tx core.Transaction) []interface{} {
	return []interface{}{
		tx.OccurredAt.Format(time.RFC3339),
		string(tx.Type),
		strconv.FormatInt(tx.SignedAmount, 10),
		tx.Currency,
		tx.Merchant,
		tx.Method,
		tx.ExpenseKind,
		tx.Category,
		strconv.FormatFloat(tx.Confidence, 'f', 2, 64),
		batchID,
	}
}
