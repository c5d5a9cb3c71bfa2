package core

import (
	"testing"
	"time"
)

func validTx() Transaction {
	return Transaction{
		OccurredAt:   time.Date(2026, 2, 10, 20, 48, 0, 0, time.UTC),
		Type:         TypeExpense,
		Amount:       7990,
		SignedAmount: -7990,
		Currency:     "KRW",
		RowHash:      "abc",
		Status:       StatusActive,
	}
}

func TestTransaction_CheckInvariants(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Transaction)
		wantErr bool
	}{
		{
			name:   "valid negative expense",
			mutate: func(*Transaction) {},
		},
		{
			name: "valid positive income",
			mutate: func(tx *Transaction) {
				tx.Type = TypeIncome
				tx.SignedAmount = 5006
				tx.Amount = 5006
			},
		},
		{
			name: "amount not abs of signed amount",
			mutate: func(tx *Transaction) {
				tx.Amount = 100
			},
			wantErr: true,
		},
		{
			name: "unknown type",
			mutate: func(tx *Transaction) {
				tx.Type = "loan"
			},
			wantErr: true,
		},
		{
			name: "missing row hash",
			mutate: func(tx *Transaction) {
				tx.RowHash = ""
			},
			wantErr: true,
		},
		{
			name: "zero amount transfer is structurally valid",
			mutate: func(tx *Transaction) {
				tx.Type = TypeTransfer
				tx.Amount = 0
				tx.SignedAmount = 0
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := validTx()
			tt.mutate(&tx)
			err := tx.CheckInvariants()
			if (err != nil) != tt.wantErr {
				t.Errorf("CheckInvariants() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestTransaction_IsPaired(t *testing.T) {
	tx := validTx()
	if tx.IsPaired() {
		t.Error("transaction without group id should not be paired")
	}
	tx.TransferGroupID = "g1"
	if !tx.IsPaired() {
		t.Error("transaction with group id should be paired")
	}
}
