package metrics

import (
	"testing"

	"github.com/shopspring/decimal"

	"tally/internal/core"
)

func budget(category string, limit int64, start, end core.Date) core.Budget {
	return core.Budget{
		Category:  category,
		Limit:     decimal.NewFromInt(limit),
		Period:    core.Monthly,
		StartDate: start,
		EndDate:   end,
	}
}

func TestUtilizeOverBudget(t *testing.T) {
	b := budget("food", 800, core.NewDate(2024, 5, 1), core.NewDate(2024, 5, 31))
	txs := []core.Transaction{
		tx(core.NewDate(2024, 5, 1), "food", 1000, core.Expense),
		tx(core.NewDate(2024, 5, 2), "salary", 5000, core.Income),
	}
	u := Utilize(b, txs)
	if u.Spent.String() != "1000" || u.Remaining.String() != "-200" {
		t.Fatalf("unexpected spent/remaining: %v / %v", u.Spent, u.Remaining)
	}
	if u.Percentage != 125 {
		t.Fatalf("expected 125%%, got %v", u.Percentage)
	}
	if !u.OverBudget || u.NearLimit {
		t.Fatalf("expected over-budget without near-limit, got over=%v near=%v", u.OverBudget, u.NearLimit)
	}
}

func TestUtilizeNearLimit(t *testing.T) {
	b := budget("food", 1000, core.NewDate(2024, 5, 1), core.NewDate(2024, 5, 31))
	txs := []core.Transaction{tx(core.NewDate(2024, 5, 10), "food", 850, core.Expense)}
	u := Utilize(b, txs)
	if u.OverBudget || !u.NearLimit {
		t.Fatalf("expected near-limit only, got over=%v near=%v", u.OverBudget, u.NearLimit)
	}
}

func TestUtilizeFlagsNeverBothSet(t *testing.T) {
	b := budget("food", 100, core.NewDate(2024, 5, 1), core.NewDate(2024, 5, 31))
	for _, spent := range []int64{0, 50, 80, 81, 99, 100, 101, 500} {
		txs := []core.Transaction{tx(core.NewDate(2024, 5, 5), "food", spent, core.Expense)}
		u := Utilize(b, txs)
		if u.OverBudget && u.NearLimit {
			t.Fatalf("spent=%d: both flags set", spent)
		}
		if !u.Remaining.Equal(b.Limit.Sub(u.Spent)) {
			t.Fatalf("spent=%d: remaining invariant broken", spent)
		}
		if u.OverBudget != u.Spent.GreaterThan(b.Limit) {
			t.Fatalf("spent=%d: over-budget flag inconsistent", spent)
		}
	}
}

func TestUtilizeExactLimitIsNotOver(t *testing.T) {
	b := budget("food", 100, core.NewDate(2024, 5, 1), core.NewDate(2024, 5, 31))
	txs := []core.Transaction{tx(core.NewDate(2024, 5, 5), "food", 100, core.Expense)}
	u := Utilize(b, txs)
	if u.OverBudget {
		t.Fatalf("spending exactly the limit is not over budget")
	}
	if !u.NearLimit {
		t.Fatalf("at exactly 100%% the near-limit flag applies")
	}
}

func TestUtilizeScopesByCategoryAndRange(t *testing.T) {
	b := budget("food", 500, core.NewDate(2024, 5, 1), core.NewDate(2024, 5, 31))
	txs := []core.Transaction{
		tx(core.NewDate(2024, 5, 10), "food", 100, core.Expense),
		tx(core.NewDate(2024, 5, 10), "transport", 100, core.Expense), // other category
		tx(core.NewDate(2024, 4, 30), "food", 100, core.Expense),      // before range
		tx(core.NewDate(2024, 6, 1), "food", 100, core.Expense),       // after range
		tx(core.NewDate(2024, 5, 10), "food", 100, core.Income),       // income ignored
	}
	u := Utilize(b, txs)
	if u.Spent.String() != "100" {
		t.Fatalf("expected 100, got %v", u.Spent)
	}
}

func TestUtilizeZeroLimitReportsZeroPercentage(t *testing.T) {
	b := core.Budget{Category: "food", Limit: decimal.Zero, StartDate: core.NewDate(2024, 5, 1), EndDate: core.NewDate(2024, 5, 31)}
	txs := []core.Transaction{tx(core.NewDate(2024, 5, 5), "food", 10, core.Expense)}
	u := Utilize(b, txs)
	if u.Percentage != 0 {
		t.Fatalf("zero limit must not divide: got %v", u.Percentage)
	}
	if !u.OverBudget {
		t.Fatalf("any spend against a zero limit is over budget")
	}
}

func TestUtilizeIsIdempotent(t *testing.T) {
	b := budget("food", 800, core.NewDate(2024, 5, 1), core.NewDate(2024, 5, 31))
	txs := []core.Transaction{tx(core.NewDate(2024, 5, 1), "food", 650, core.Expense)}
	first := Utilize(b, txs)
	second := Utilize(b, txs)
	if !first.Spent.Equal(second.Spent) || first.Percentage != second.Percentage ||
		first.OverBudget != second.OverBudget || first.NearLimit != second.NearLimit {
		t.Fatalf("repeated calls diverged: %+v vs %+v", first, second)
	}
}
