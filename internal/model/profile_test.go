package model

import "testing"

func TestEffectiveExpenses(t *testing.T) {
	tests := []struct {
		name   string
		direct float64
		b      ExpenseBreakdown
		want   float64
	}{
		{"no breakdown", 1800, ExpenseBreakdown{}, 1800},
		{"breakdown larger", 1000, ExpenseBreakdown{Rent: 900, Groceries: 300, Entertainment: 100, Other: 50}, 1350},
		{"direct larger", 2000, ExpenseBreakdown{Rent: 900}, 2000},
		{"direct zero", 0, ExpenseBreakdown{Other: 75}, 75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EffectiveExpenses(tt.direct, tt.b); got != tt.want {
				t.Fatalf("EffectiveExpenses = %.2f, want %.2f", got, tt.want)
			}
		})
	}
}

func TestAssembleDoesNotMutateReceiver(t *testing.T) {
	p := FinancialProfile{Expenses: 100, Breakdown: ExpenseBreakdown{Rent: 400}}
	got := p.Assemble()

	if got.Expenses != 400 {
		t.Fatalf("Assemble().Expenses = %.2f, want 400", got.Expenses)
	}
	if p.Expenses != 100 {
		t.Fatalf("receiver Expenses changed to %.2f", p.Expenses)
	}
	if !got.HasBreakdown() {
		t.Fatal("HasBreakdown() = false, want true")
	}
}
