// Package normalize turns raw statement rows into canonical
// transaction records. Normalization is a pure transformation; per-row
// failures are reported to the caller and never abort a batch.
package normalize

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/width"

	"bankpoke/internal/core"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"

	// Unit separator keeps hash fields from colliding with field
	// content, which a printable join character could not guarantee.
	hashSep = "\x1f"
)

// Raw statement types map onto canonical types; anything unrecognized
// is treated as a transfer so it lands in the review queue instead of
// skewing income/expense totals.
var typeMap = map[string]core.TxType{
	"수입": core.TypeIncome,
	"지출": core.TypeExpense,
	"이체": core.TypeTransfer,
}

// Normalizer converts RawRows interpreted in a fixed timezone. The
// zone is an explicit parameter so results do not depend on the host
// environment.
type Normalizer struct {
	Location        *time.Location
	DefaultCurrency string
}

func New(loc *time.Location, defaultCurrency string) *Normalizer {
	return &Normalizer{Location: loc, DefaultCurrency: defaultCurrency}
}

// Normalize produces a canonical transaction from one raw row.
func (n *Normalizer) Normalize(row core.RawRow) (core.Transaction, error) {
	dateText := CleanText(row.Date)
	timeText := CleanText(row.Time)
	if timeText == "" {
		timeText = "00:00"
	}

	occurred, err := time.ParseInLocation(dateLayout+" "+timeLayout, dateText+" "+timeText, n.Location)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("%w: %q %q", core.ErrMalformedTimestamp, row.Date, row.Time)
	}

	signed, err := parseAmount(row.AmountText)
	if err != nil {
		return core.Transaction{}, err
	}
	amount := signed
	if amount < 0 {
		amount = -amount
	}

	rawType := CleanText(row.Type)
	txType, ok := typeMap[rawType]
	if !ok {
		txType = core.TypeTransfer
	}

	currency := CleanText(row.Currency)
	if currency == "" {
		currency = n.DefaultCurrency
	}

	description := CleanText(row.Description)
	method := CleanText(row.Method)

	tx := core.Transaction{
		OccurredAt:   occurred,
		Type:         txType,
		Amount:       amount,
		SignedAmount: signed,
		Currency:     currency,
		Merchant:     description,
		Method:       method,
		MajorCat:     CleanText(row.MajorCat),
		MinorCat:     CleanText(row.MinorCat),
		Note:         CleanText(row.Memo),
		RowHash:      RowHash(dateText, timeText, rawType, signed, currency, method, description),
		Status:       core.StatusActive,
	}
	return tx, nil
}

// RowHash is the dedup key over the fixed key-field tuple. It is
// stable across batches for identical input and is not a security
// hash.
func RowHash(date, timeOfDay, rawType string, signedAmount int64, currency, method, description string) string {
	input := strings.Join([]string{
		date,
		timeOfDay,
		rawType,
		strconv.FormatInt(signedAmount, 10),
		currency,
		method,
		description,
	}, hashSep)
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}

// CleanText strips control runes, folds full-width variants to their
// half-width forms and trims surrounding whitespace. Blank input
// normalizes to the empty string so downstream stages treat "no text"
// uniformly.
func CleanText(s string) string {
	if s == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsControl(r) {
			continue
		}
		b.WriteRune(r)
	}
	folded := width.Narrow.String(b.String())
	return strings.TrimSpace(folded)
}

func parseAmount(text string) (int64, error) {
	cleaned := strings.ReplaceAll(CleanText(text), ",", "")
	if cleaned == "" {
		return 0, fmt.Errorf("%w: empty", core.ErrMalformedAmount)
	}
	v, err := strconv.ParseInt(cleaned, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", core.ErrMalformedAmount, text)
	}
	return v, nil
}
