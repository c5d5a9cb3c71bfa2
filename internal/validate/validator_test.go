package validate

import (
	"testing"

	"bankpoke/internal/core"
)

func TestCheck(t *testing.T) {
	v := New("KRW")

	tests := []struct {
		name         string
		tx           core.Transaction
		wantWarnings []core.Warning
		wantReview   bool
	}{
		{
			name:         "positive expense flags sign mismatch",
			tx:           core.Transaction{Type: core.TypeExpense, SignedAmount: 500, Amount: 500, Currency: "KRW"},
			wantWarnings: []core.Warning{core.WarnSignMismatchExpensePositive},
			wantReview:   true,
		},
		{
			name:         "negative income flags sign mismatch",
			tx:           core.Transaction{Type: core.TypeIncome, SignedAmount: -500, Amount: 500, Currency: "KRW"},
			wantWarnings: []core.Warning{core.WarnSignMismatchIncomeNegative},
			wantReview:   true,
		},
		{
			name:       "well formed expense passes clean",
			tx:         core.Transaction{Type: core.TypeExpense, SignedAmount: -500, Amount: 500, Currency: "KRW"},
			wantReview: false,
		},
		{
			name:       "transfer always starts in review",
			tx:         core.Transaction{Type: core.TypeTransfer, SignedAmount: 1000, Amount: 1000, Currency: "KRW"},
			wantReview: true,
		},
		{
			name:         "foreign currency warns without forcing review",
			tx:           core.Transaction{Type: core.TypeExpense, SignedAmount: -500, Amount: 500, Currency: "USD"},
			wantWarnings: []core.Warning{core.WarnUnsupportedCurrency},
			wantReview:   false,
		},
		{
			name: "independent rules can both fire",
			tx:   core.Transaction{Type: core.TypeExpense, SignedAmount: 500, Amount: 500, Currency: "USD"},
			wantWarnings: []core.Warning{
				core.WarnSignMismatchExpensePositive,
				core.WarnUnsupportedCurrency,
			},
			wantReview: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warnings, review := v.Check(tt.tx)
			if review != tt.wantReview {
				t.Errorf("review = %v, want %v", review, tt.wantReview)
			}
			if len(warnings) != len(tt.wantWarnings) {
				t.Fatalf("warnings = %v, want %v", warnings, tt.wantWarnings)
			}
			for i := range warnings {
				if warnings[i] != tt.wantWarnings[i] {
					t.Errorf("warnings[%d] = %q, want %q", i, warnings[i], tt.wantWarnings[i])
				}
			}
		})
	}
}
