package core

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	Monthly BudgetPeriod = "monthly"
	Weekly  BudgetPeriod = "weekly"
)

type (
	// BudgetPeriod selects how a budget's date range is derived at creation.
	BudgetPeriod string

	// Budget caps expense spending for one category over a frozen date range.
	// StartDate/EndDate are computed once from Period and the creation moment
	// and never roll forward to the next period.
	Budget struct {
		ID        uuid.UUID
		UserID    uuid.UUID
		Category  string
		Limit     decimal.Decimal
		Period    BudgetPeriod
		StartDate Date
		EndDate   Date
		CreatedAt time.Time
	}
)

var (
	ErrInvalidPeriod = errors.New("invalid budget period")
	ErrInvalidRange  = errors.New("start date must not be after end date")
)

func (p BudgetPeriod) Validate() error {
	switch p {
	case Monthly, Weekly:
		return nil
	default:
		return ErrInvalidPeriod
	}
}

// MonthBounds returns the first and last day of t's calendar month.
func MonthBounds(t time.Time) (Date, Date) {
	first := NewDate(t.Year(), int(t.Month()), 1)
	last := Date{Time: first.AddDate(0, 1, -1)}
	return first, last
}

// WeekBounds returns the Monday and Sunday of t's week.
func WeekBounds(t time.Time) (Date, Date) {
	day := DateOf(t)
	offset := (int(day.Weekday()) + 6) % 7 // Monday = 0
	monday := day.AddDays(-offset)
	return monday, monday.AddDays(6)
}

// PeriodBounds derives the frozen date range for a budget created at t.
func (p BudgetPeriod) Bounds(t time.Time) (Date, Date, error) {
	switch p {
	case Monthly:
		start, end := MonthBounds(t)
		return start, end, nil
	case Weekly:
		start, end := WeekBounds(t)
		return start, end, nil
	default:
		return Date{}, Date{}, ErrInvalidPeriod
	}
}

// NewBudget creates a budget whose date range is frozen from period and the
// creation moment.
func NewBudget(userID uuid.UUID, category string, limit decimal.Decimal, period BudgetPeriod, at time.Time) (Budget, error) {
	start, end, err := period.Bounds(at)
	if err != nil {
		return Budget{}, err
	}
	b := Budget{
		ID:        uuid.New(),
		UserID:    userID,
		Category:  strings.TrimSpace(category),
		Limit:     limit,
		Period:    period,
		StartDate: start,
		EndDate:   end,
		CreatedAt: at,
	}
	if err := b.Validate(); err != nil {
		return Budget{}, err
	}
	return b, nil
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.Category) == "" {
		return ErrEmptyCategory
	}
	if !b.Limit.IsPositive() {
		return ErrInvalidAmount
	}
	if err := b.Period.Validate(); err != nil {
		return err
	}
	if err := b.StartDate.Validate(); err != nil {
		return err
	}
	if err := b.EndDate.Validate(); err != nil {
		return err
	}
	if b.StartDate.After(b.EndDate.Time) {
		return ErrInvalidRange
	}
	return nil
}
