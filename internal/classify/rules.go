// Package classify assigns a direction, expense kind and category to
// canonical transactions by evaluating an ordered, prioritized rule
// set. Classification is pure: the same record and rule set always
// produce the same result.
package classify

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
)

// Expense kinds. Only KindReal counts toward spend reporting; the
// four exclusion kinds (transfer, repayment, saving_invest, refund)
// must never carry a category.
const (
	KindReal           = "real"
	KindTransfer       = "transfer"
	KindRepayment      = "repayment"
	KindSavingInvest   = "saving_invest"
	KindRefund         = "refund"
	KindCashWithdrawal = "cash_withdrawal"
	KindOther          = "other"
)

const (
	DirectionIncome  = "income"
	DirectionExpense = "expense"
)

// Rule is one pattern-to-classification mapping. Pattern is matched
// case-insensitively against the record's concatenated text fields.
// Direction, when set, overrides the sign-derived direction.
type Rule struct {
	Name        string  `json:"name"`
	Priority    int     `json:"priority"`
	Pattern     string  `json:"pattern"`
	ExpenseKind string  `json:"expense_kind"`
	Category    string  `json:"category,omitempty"`
	Direction   string  `json:"direction,omitempty"`
	Confidence  float64 `json:"confidence"`

	re *regexp.Regexp
}

// RuleSet is an ordered rule collection; declaration order is the tie
// break when priorities collide.
type RuleSet struct {
	rules []Rule
}

type ruleFile struct {
	Rules []Rule `json:"rules"`
}

// Compile builds a RuleSet, compiling every pattern case-insensitively.
// Declaration order is preserved.
func Compile(rules []Rule) (*RuleSet, error) {
	compiled := make([]Rule, len(rules))
	for i, r := range rules {
		re, err := regexp.Compile("(?i)" + r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("compile rule %q: %w", r.Name, err)
		}
		if r.Confidence == 0 {
			r.Confidence = 0.8
		}
		r.re = re
		compiled[i] = r
	}
	return &RuleSet{rules: compiled}, nil
}

// Load reads a JSON rule file ({"rules": [...]}) and compiles it.
func Load(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rule file: %w", err)
	}
	var f ruleFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse rule file: %w", err)
	}
	return Compile(f.Rules)
}

// Len returns the number of rules in the set.
func (rs *RuleSet) Len() int {
	return len(rs.rules)
}

// IsExclusionKind reports whether kind is one of the four exclusion
// categories that must never be counted as real spend.
func IsExclusionKind(kind string) bool {
	switch kind {
	case KindTransfer, KindRepayment, KindSavingInvest, KindRefund:
		return true
	}
	return false
}
