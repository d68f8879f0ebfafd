package metrics

import (
	"time"

	"github.com/shopspring/decimal"

	"tally/internal/core"
)

// SeriesDays is the default length of the daily trend window.
const SeriesDays = 30

// DayBucket is one day's aggregated income, expenses and balance.
type DayBucket struct {
	Date     core.Date
	Income   decimal.Decimal
	Expenses decimal.Decimal
	Balance  decimal.Decimal
}

// DailySeries buckets the transactions of the n most recent calendar days
// ending on now's day. It always returns exactly n buckets in chronological
// order; days without transactions carry zero values.
func DailySeries(txs []core.Transaction, now time.Time, n int) []DayBucket {
	if n <= 0 {
		return nil
	}
	window := LastNDays(now, n)

	buckets := make([]DayBucket, n)
	index := make(map[core.Date]int, n)
	for i := range buckets {
		d := window.Start.AddDays(i)
		buckets[i] = DayBucket{
			Date:     d,
			Income:   decimal.Zero,
			Expenses: decimal.Zero,
			Balance:  decimal.Zero,
		}
		index[d] = i
	}

	for _, t := range txs {
		i, ok := index[t.Date]
		if !ok {
			continue
		}
		switch t.Kind {
		case core.Income:
			buckets[i].Income = buckets[i].Income.Add(t.Amount)
		case core.Expense:
			buckets[i].Expenses = buckets[i].Expenses.Add(t.Amount)
		}
		buckets[i].Balance = buckets[i].Income.Sub(buckets[i].Expenses)
	}
	return buckets
}
