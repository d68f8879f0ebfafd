package core

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Goal is a savings target. Current moves only through ApplyDelta, which keeps
// Completed consistent with Current at all times.
type Goal struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Title     string
	Target    decimal.Decimal
	Current   decimal.Decimal
	Deadline  Date // zero value means no deadline
	Category  string
	Completed bool
	CreatedAt time.Time
}

var ErrEmptyTitle = errors.New("empty goal title")

// NewGoal creates a goal starting at zero progress. Deadline and category are
// optional; pass the zero Date / empty string to omit them.
func NewGoal(userID uuid.UUID, title string, target decimal.Decimal, deadline Date, category string, at time.Time) (Goal, error) {
	g := Goal{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     strings.TrimSpace(title),
		Target:    target,
		Current:   decimal.Zero,
		Deadline:  deadline,
		Category:  strings.TrimSpace(category),
		CreatedAt: at,
	}
	if err := g.Validate(); err != nil {
		return Goal{}, err
	}
	return g, nil
}

func (g Goal) Validate() error {
	if g.Title == "" {
		return ErrEmptyTitle
	}
	if !g.Target.IsPositive() {
		return ErrInvalidAmount
	}
	if g.Current.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}

// ApplyDelta adjusts Current by delta, clamping at zero, and recomputes
// Completed in the same step so the two fields never disagree.
func (g Goal) ApplyDelta(delta decimal.Decimal) Goal {
	next := g.Current.Add(delta)
	if next.IsNegative() {
		next = decimal.Zero
	}
	g.Current = next
	g.Completed = next.GreaterThanOrEqual(g.Target)
	return g
}
