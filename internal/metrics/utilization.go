package metrics

import (
	"github.com/shopspring/decimal"

	"tally/internal/core"
)

// nearLimitThreshold is the spent-to-limit percentage above which a budget is
// flagged as approaching its limit.
const nearLimitThreshold = 80.0

// BudgetUtilization is the spent-to-limit picture for one budget.
type BudgetUtilization struct {
	BudgetID   string
	Category   string
	Limit      decimal.Decimal
	Spent      decimal.Decimal
	Remaining  decimal.Decimal // negative when overspent
	Percentage float64
	OverBudget bool
	NearLimit  bool
}

// Utilize sums the expenses matching the budget's category inside its frozen
// date range and derives the remaining amount and warning flags. Everything is
// recomputed from the snapshot on every call; nothing is cached.
//
// A non-positive limit violates a store invariant; rather than dividing by
// zero the percentage is reported as 0.
func Utilize(b core.Budget, txs []core.Transaction) BudgetUtilization {
	spent := decimal.Zero
	for _, t := range txs {
		if t.Kind != core.Expense || t.Category != b.Category {
			continue
		}
		if !t.Date.In(b.StartDate, b.EndDate) {
			continue
		}
		spent = spent.Add(t.Amount)
	}

	u := BudgetUtilization{
		BudgetID:  b.ID.String(),
		Category:  b.Category,
		Limit:     b.Limit,
		Spent:     spent,
		Remaining: b.Limit.Sub(spent),
	}
	if b.Limit.IsPositive() {
		u.Percentage, _ = spent.Div(b.Limit).Mul(decimal.NewFromInt(100)).Float64()
	}
	u.OverBudget = spent.GreaterThan(b.Limit)
	u.NearLimit = u.Percentage > nearLimitThreshold && !u.OverBudget
	return u
}
