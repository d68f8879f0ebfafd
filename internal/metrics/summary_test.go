package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"tally/internal/core"
)

func tx(date core.Date, category string, amount int64, kind core.TxKind) core.Transaction {
	return core.Transaction{
		Date:     date,
		Category: category,
		Amount:   decimal.NewFromInt(amount),
		Kind:     kind,
	}
}

func TestSummarizeEmptyInput(t *testing.T) {
	s := Summarize(nil, MonthOf(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)))
	if !s.Income.IsZero() || !s.Expenses.IsZero() || !s.Balance.IsZero() {
		t.Fatalf("expected zero totals, got %+v", s)
	}
	if len(s.ByCategory) != 0 {
		t.Fatalf("expected empty breakdown, got %d entries", len(s.ByCategory))
	}
}

func TestSummarizeMonth(t *testing.T) {
	txs := []core.Transaction{
		tx(core.NewDate(2024, 5, 1), "food", 1000, core.Expense),
		tx(core.NewDate(2024, 5, 2), "salary", 5000, core.Income),
	}
	s := Summarize(txs, MonthOf(time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)))
	if s.Income.String() != "5000" || s.Expenses.String() != "1000" || s.Balance.String() != "4000" {
		t.Fatalf("unexpected totals: income=%v expenses=%v balance=%v", s.Income, s.Expenses, s.Balance)
	}
	if len(s.ByCategory) != 1 {
		t.Fatalf("expected 1 category, got %d", len(s.ByCategory))
	}
	c := s.ByCategory[0]
	if c.Category != "food" || c.Amount.String() != "1000" || c.Percentage != 100 {
		t.Fatalf("unexpected breakdown: %+v", c)
	}
}

func TestSummarizeExcludesOtherPeriods(t *testing.T) {
	txs := []core.Transaction{
		tx(core.NewDate(2024, 4, 30), "food", 100, core.Expense),
		tx(core.NewDate(2024, 5, 1), "food", 200, core.Expense),
		tx(core.NewDate(2024, 5, 31), "food", 300, core.Expense),
		tx(core.NewDate(2024, 6, 1), "food", 400, core.Expense),
	}
	s := Summarize(txs, MonthOf(time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC)))
	if s.Expenses.String() != "500" {
		t.Fatalf("expected 500 (month bounds inclusive), got %v", s.Expenses)
	}
}

func TestSummarizeBalanceInvariant(t *testing.T) {
	// balance = income - expenses, regardless of transaction order.
	txs := []core.Transaction{
		tx(core.NewDate(2024, 5, 3), "rent", 1200, core.Expense),
		tx(core.NewDate(2024, 5, 1), "salary", 3000, core.Income),
		tx(core.NewDate(2024, 5, 20), "food", 340, core.Expense),
		tx(core.NewDate(2024, 5, 25), "bonus", 500, core.Income),
	}
	for i := 0; i < len(txs); i++ {
		rotated := append(append([]core.Transaction{}, txs[i:]...), txs[:i]...)
		s := Summarize(rotated, MonthOf(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)))
		if !s.Balance.Equal(s.Income.Sub(s.Expenses)) {
			t.Fatalf("rotation %d: balance invariant broken: %+v", i, s)
		}
		if s.Balance.String() != "1960" {
			t.Fatalf("rotation %d: expected 1960, got %v", i, s.Balance)
		}
	}
}

func TestSummarizeTopCategoriesTruncated(t *testing.T) {
	var txs []core.Transaction
	for i := 0; i < 10; i++ {
		txs = append(txs, tx(core.NewDate(2024, 5, 1), fmt.Sprintf("cat-%d", i), int64(100*(i+1)), core.Expense))
	}
	s := Summarize(txs, MonthOf(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)))
	if len(s.ByCategory) != topCategoryCount {
		t.Fatalf("expected %d categories, got %d", topCategoryCount, len(s.ByCategory))
	}
	// Sorted descending: the biggest spender comes first.
	if s.ByCategory[0].Category != "cat-9" {
		t.Fatalf("expected cat-9 first, got %s", s.ByCategory[0].Category)
	}
	for i := 1; i < len(s.ByCategory); i++ {
		if s.ByCategory[i].Amount.GreaterThan(s.ByCategory[i-1].Amount) {
			t.Fatalf("breakdown not sorted descending at %d", i)
		}
	}
}

func TestSummarizeIncomeDoesNotEnterBreakdown(t *testing.T) {
	txs := []core.Transaction{
		tx(core.NewDate(2024, 5, 1), "salary", 5000, core.Income),
	}
	s := Summarize(txs, MonthOf(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)))
	if len(s.ByCategory) != 0 {
		t.Fatalf("income must not appear in the expense breakdown: %+v", s.ByCategory)
	}
}
