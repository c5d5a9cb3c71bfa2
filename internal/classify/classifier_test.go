package classify

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"bankpoke/internal/core"
)

func expenseTx(description string) core.Transaction {
	return core.Transaction{
		Type:         core.TypeExpense,
		SignedAmount: -10000,
		Amount:       10000,
		Currency:     "KRW",
		Merchant:     description,
		Method:       "카드",
	}
}

func TestClassify_DefaultRules(t *testing.T) {
	rules := DefaultRules()

	tests := []struct {
		name          string
		description   string
		wantKind      string
		wantCategory  string
		wantDirection string
	}{
		{"internal transfer", "내 계좌 이체", KindTransfer, "", DirectionExpense},
		{"card repayment", "카드대금 납부", KindRepayment, "", DirectionExpense},
		{"saving", "적금 자동이체", KindSavingInvest, "", DirectionExpense},
		{"refund forces income", "주문 취소 환불", KindRefund, "", DirectionIncome},
		{"cash withdrawal", "ATM 출금", KindCashWithdrawal, "", DirectionExpense},
		{"cafe", "스타벅스", KindReal, "cafe", DirectionExpense},
		{"food", "점심 식당", KindReal, "food", DirectionExpense},
		{"transport", "지하철", KindReal, "transport", DirectionExpense},
		{"shopping", "쿠팡 주문", KindReal, "shopping", DirectionExpense},
		{"living", "관리비", KindReal, "living", DirectionExpense},
		{"subscription", "넷플릭스", KindReal, "subscription", DirectionExpense},
		{"medical", "병원 진료", KindReal, "medical", DirectionExpense},
		{"education", "학원 수강료", KindReal, "education", DirectionExpense},
		{"leisure", "영화 관람", KindReal, "leisure", DirectionExpense},
		{"gift", "생일 선물", KindReal, "gift", DirectionExpense},
		{"travel", "항공권 예약", KindReal, "travel", DirectionExpense},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(expenseTx(tt.description), rules)
			if got.ExpenseKind != tt.wantKind {
				t.Errorf("ExpenseKind = %q, want %q", got.ExpenseKind, tt.wantKind)
			}
			if got.Category != tt.wantCategory {
				t.Errorf("Category = %q, want %q", got.Category, tt.wantCategory)
			}
			if got.Direction != tt.wantDirection {
				t.Errorf("Direction = %q, want %q", got.Direction, tt.wantDirection)
			}
		})
	}
}

func TestClassify_ExclusionKindsNeverCarryCategory(t *testing.T) {
	rules := DefaultRules()
	for _, desc := range []string{"내 계좌 이체", "카드대금", "적금 납입", "환불 입금"} {
		got := Classify(expenseTx(desc), rules)
		if !IsExclusionKind(got.ExpenseKind) {
			t.Errorf("%q: kind %q should be an exclusion kind", desc, got.ExpenseKind)
		}
		if got.ExpenseKind == KindReal {
			t.Errorf("%q: exclusion transaction classified as real spend", desc)
		}
		if got.Category != "" {
			t.Errorf("%q: exclusion kind carries category %q", desc, got.Category)
		}
	}
}

func TestClassify_PriorityNonRealWinsOverCategory(t *testing.T) {
	// Matches both repayment (priority 95) and cafe (priority 50).
	got := Classify(expenseTx("카드대금 스타벅스"), DefaultRules())
	if got.ExpenseKind != KindRepayment {
		t.Errorf("ExpenseKind = %q, want repayment", got.ExpenseKind)
	}
	if got.Category != "" {
		t.Errorf("Category = %q, want empty", got.Category)
	}
	if len(got.RulesFired) != 2 {
		t.Errorf("RulesFired = %v, want both matching rules recorded", got.RulesFired)
	}
}

func TestClassify_EqualPriorityBreaksByDeclarationOrder(t *testing.T) {
	rules, err := Compile([]Rule{
		{Name: "first", Priority: 10, Pattern: "coffee", ExpenseKind: KindReal, Category: "cafe", Confidence: 0.7},
		{Name: "second", Priority: 10, Pattern: "coffee", ExpenseKind: KindReal, Category: "food", Confidence: 0.7},
	})
	if err != nil {
		t.Fatal(err)
	}
	got := Classify(expenseTx("coffee shop"), rules)
	if got.Category != "cafe" {
		t.Errorf("Category = %q, want cafe from earliest declared rule", got.Category)
	}
	want := []string{"first", "second"}
	if !reflect.DeepEqual(got.RulesFired, want) {
		t.Errorf("RulesFired = %v, want %v", got.RulesFired, want)
	}
}

func TestClassify_Fallbacks(t *testing.T) {
	rules := DefaultRules()

	expense := Classify(expenseTx("정체불명 지출"), rules)
	if expense.ExpenseKind != KindReal || expense.Category != "etc" || expense.Direction != DirectionExpense {
		t.Errorf("expense fallback = %+v", expense)
	}
	if !reflect.DeepEqual(expense.RulesFired, []string{"default_expense_real"}) {
		t.Errorf("RulesFired = %v", expense.RulesFired)
	}

	income := Classify(core.Transaction{
		Type:         core.TypeIncome,
		SignedAmount: 500000,
		Amount:       500000,
		Merchant:     "급여",
	}, rules)
	if income.ExpenseKind != KindOther || income.Direction != DirectionIncome || income.Category != "" {
		t.Errorf("income fallback = %+v", income)
	}
}

func TestClassify_Deterministic(t *testing.T) {
	rules := DefaultRules()
	tx := expenseTx("스타벅스 강남점")
	first := Classify(tx, rules)
	for i := 0; i < 10; i++ {
		if got := Classify(tx, rules); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d diverged: %+v vs %+v", i, got, first)
		}
	}
}

func TestLoad_RuleFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.json")
	content, err := json.Marshal(map[string]any{
		"rules": []Rule{
			{Name: "groceries", Priority: 40, Pattern: "마트", ExpenseKind: KindReal, Category: "grocery", Confidence: 0.75},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatal(err)
	}

	rules, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if rules.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", rules.Len())
	}
	got := Classify(expenseTx("이마트"), rules)
	if got.Category != "grocery" {
		t.Errorf("Category = %q, want grocery", got.Category)
	}
}

func TestCompile_BadPattern(t *testing.T) {
	_, err := Compile([]Rule{{Name: "broken", Pattern: "([unclosed", ExpenseKind: KindReal}})
	if err == nil {
		t.Error("expected error for invalid pattern")
	}
}
