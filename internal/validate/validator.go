// Package validate checks type/sign consistency on canonical records.
// Validation annotates; it never rejects a record.
package validate

import (
	"bankpoke/internal/core"
)

// Validator applies sign/type rules against a domain default currency.
type Validator struct {
	DefaultCurrency string
}

func New(defaultCurrency string) *Validator {
	return &Validator{DefaultCurrency: defaultCurrency}
}

// Check evaluates every rule independently and returns the warnings
// that fired plus the resulting review flag. Transfers always start
// flagged; the pairer clears the flag when it finds a partner.
// UNSUPPORTED_CURRENCY is informational and does not force review on
// its own.
func (v *Validator) Check(tx core.Transaction) ([]core.Warning, bool) {
	var warnings []core.Warning
	review := false

	if tx.Type == core.TypeExpense && tx.SignedAmount > 0 {
		warnings = append(warnings, core.WarnSignMismatchExpensePositive)
		review = true
	}
	if tx.Type == core.TypeIncome && tx.SignedAmount < 0 {
		warnings = append(warnings, core.WarnSignMismatchIncomeNegative)
		review = true
	}
	if tx.Type == core.TypeTransfer {
		review = true
	}
	if tx.Currency != v.DefaultCurrency {
		warnings = append(warnings, core.WarnUnsupportedCurrency)
	}

	return warnings, review
}
