package classify

// DefaultRules returns the built-in rulebook. Exclusion rules carry
// higher priority than category rules so a repayment that mentions a
// merchant never counts as real spend.
func DefaultRules() *RuleSet {
	rs, err := Compile(defaultRules())
	if err != nil {
		// Patterns below are constants; a compile failure is a
		// programming error.
		panic(err)
	}
	return rs
}

func defaultRules() []Rule {
	return []Rule{
		{Name: "transfer_internal", Priority: 100, Pattern: "내\\s*계좌|세이프박스|저금통|동전 모으기|잔액 자동충전", ExpenseKind: KindTransfer, Confidence: 0.95},
		{Name: "repayment_card_or_loan", Priority: 95, Pattern: "카드대금|카드 대금|대출.?상환|할부금", ExpenseKind: KindRepayment, Confidence: 0.95},
		{Name: "saving_or_invest", Priority: 90, Pattern: "적금|예금|청약|투자|증권|주식 매수", ExpenseKind: KindSavingInvest, Confidence: 0.9},
		{Name: "refund_or_cancel", Priority: 85, Pattern: "환불|취소|refund", ExpenseKind: KindRefund, Direction: DirectionIncome, Confidence: 0.9},
		{Name: "cash_withdrawal", Priority: 80, Pattern: "atm|출금|현금 인출", ExpenseKind: KindCashWithdrawal, Confidence: 0.9},

		{Name: "category_cafe", Priority: 50, Pattern: "스타벅스|카페|커피|이디야|투썸", ExpenseKind: KindReal, Category: "cafe", Confidence: 0.85},
		{Name: "category_food", Priority: 50, Pattern: "식당|점심|저녁|배달|식사|맥도날드|김밥|백반", ExpenseKind: KindReal, Category: "food", Confidence: 0.8},
		{Name: "category_transport", Priority: 50, Pattern: "지하철|버스|택시|교통카드|기차|ktx", ExpenseKind: KindReal, Category: "transport", Confidence: 0.85},
		{Name: "category_shopping", Priority: 50, Pattern: "쿠팡|11번가|지마켓|네이버쇼핑|옷|백화점", ExpenseKind: KindReal, Category: "shopping", Confidence: 0.8},
		{Name: "category_living", Priority: 50, Pattern: "관리비|전기|가스|수도|통신비|월세", ExpenseKind: KindReal, Category: "living", Confidence: 0.85},
		{Name: "category_subscription", Priority: 50, Pattern: "넷플릭스|netflix|유튜브|스포티파이|멜론|구독", ExpenseKind: KindReal, Category: "subscription", Confidence: 0.85},
		{Name: "category_medical", Priority: 50, Pattern: "병원|약국|의원|진료|치과", ExpenseKind: KindReal, Category: "medical", Confidence: 0.85},
		{Name: "category_education", Priority: 50, Pattern: "학원|수강|강의|교재|인강", ExpenseKind: KindReal, Category: "education", Confidence: 0.8},
		{Name: "category_leisure", Priority: 50, Pattern: "영화|공연|게임|노래방|전시", ExpenseKind: KindReal, Category: "leisure", Confidence: 0.8},
		{Name: "category_gift", Priority: 50, Pattern: "선물|축의금|조의금|경조사", ExpenseKind: KindReal, Category: "gift", Confidence: 0.8},
		{Name: "category_travel", Priority: 50, Pattern: "항공|호텔|숙소|여행|펜션", ExpenseKind: KindReal, Category: "travel", Confidence: 0.8},
	}
}
