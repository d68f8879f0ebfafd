package metrics

import (
	"sort"

	"github.com/shopspring/decimal"

	"tally/internal/core"
)

// topCategoryCount caps the category breakdown at the largest spenders.
const topCategoryCount = 6

type (
	// CategoryShare is one category's expense total within a period, with its
	// share of the period's total expenses.
	CategoryShare struct {
		Category   string
		Amount     decimal.Decimal
		Percentage float64
	}

	// PeriodSummary aggregates one period's transactions.
	PeriodSummary struct {
		Income     decimal.Decimal
		Expenses   decimal.Decimal
		Balance    decimal.Decimal
		ByCategory []CategoryShare
	}
)

// Summarize computes income, expense and balance totals for the transactions
// falling inside r, plus the per-category expense breakdown sorted descending
// by amount and truncated to the top categories. An empty snapshot yields zero
// totals and an empty breakdown.
func Summarize(txs []core.Transaction, r Range) PeriodSummary {
	income := decimal.Zero
	expenses := decimal.Zero
	byCategory := make(map[string]decimal.Decimal)

	for _, t := range txs {
		if !r.Contains(t.Date) {
			continue
		}
		switch t.Kind {
		case core.Income:
			income = income.Add(t.Amount)
		case core.Expense:
			expenses = expenses.Add(t.Amount)
			byCategory[t.Category] = byCategory[t.Category].Add(t.Amount)
		}
	}

	shares := make([]CategoryShare, 0, len(byCategory))
	for cat, amount := range byCategory {
		share := CategoryShare{Category: cat, Amount: amount}
		if expenses.IsPositive() {
			share.Percentage, _ = amount.Div(expenses).Mul(decimal.NewFromInt(100)).Float64()
		}
		shares = append(shares, share)
	}
	sort.Slice(shares, func(i, j int) bool {
		if !shares[i].Amount.Equal(shares[j].Amount) {
			return shares[i].Amount.GreaterThan(shares[j].Amount)
		}
		return shares[i].Category < shares[j].Category
	})
	if len(shares) > topCategoryCount {
		shares = shares[:topCategoryCount]
	}

	return PeriodSummary{
		Income:     income,
		Expenses:   expenses,
		Balance:    income.Sub(expenses),
		ByCategory: shares,
	}
}
