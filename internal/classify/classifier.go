package classify

import (
	"strings"

	"bankpoke/internal/core"
)

// Sentinel rule names recorded when no rule matched.
const (
	fallbackExpenseRule = "default_expense_real"
	fallbackIncomeRule  = "default_income_other"
	fallbackCategory    = "etc"
	fallbackConfidence  = 0.5
)

// Result is the classification decision for one record. RulesFired
// lists every rule whose pattern matched, in declaration order; at
// most one of them was applied.
type Result struct {
	Direction   string
	ExpenseKind string
	Category    string
	Confidence  float64
	RulesFired  []string
}

// Classify evaluates the rule set against one record's text fields.
// Among matching rules the highest priority wins; ties break by
// earliest declaration. Category is carried only for real spend.
func Classify(tx core.Transaction, rules *RuleSet) Result {
	direction := DirectionExpense
	if tx.SignedAmount > 0 {
		direction = DirectionIncome
	}

	text := haystack(tx)

	var (
		fired   []string
		applied *Rule
	)
	for i := range rules.rules {
		r := &rules.rules[i]
		if !r.re.MatchString(text) {
			continue
		}
		fired = append(fired, r.Name)
		if applied == nil || r.Priority > applied.Priority {
			applied = r
		}
	}

	if applied == nil {
		return fallback(direction)
	}

	if applied.Direction != "" {
		direction = applied.Direction
	}
	category := ""
	if applied.ExpenseKind == KindReal {
		category = applied.Category
	}
	return Result{
		Direction:   direction,
		ExpenseKind: applied.ExpenseKind,
		Category:    category,
		Confidence:  applied.Confidence,
		RulesFired:  fired,
	}
}

func fallback(direction string) Result {
	if direction == DirectionExpense {
		return Result{
			Direction:   DirectionExpense,
			ExpenseKind: KindReal,
			Category:    fallbackCategory,
			Confidence:  fallbackConfidence,
			RulesFired:  []string{fallbackExpenseRule},
		}
	}
	return Result{
		Direction:   DirectionIncome,
		ExpenseKind: KindOther,
		Confidence:  fallbackConfidence,
		RulesFired:  []string{fallbackIncomeRule},
	}
}

// haystack concatenates the record's text fields; absent fields
// contribute nothing.
func haystack(tx core.Transaction) string {
	parts := make([]string, 0, 5)
	for _, s := range []string{tx.Merchant, tx.Method, tx.MajorCat, tx.MinorCat, tx.Note} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.ToLower(strings.Join(parts, " "))
}
