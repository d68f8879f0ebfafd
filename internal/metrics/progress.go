package metrics

import (
	"time"

	"github.com/shopspring/decimal"

	"tally/internal/core"
)

const (
	DeadlineNone     DeadlineStatus = "none"
	DeadlineOverdue  DeadlineStatus = "overdue"
	DeadlineDueToday DeadlineStatus = "due_today"
	DeadlineUrgent   DeadlineStatus = "urgent"
	DeadlineUpcoming DeadlineStatus = "upcoming"
)

// urgentWindowDays is the deadline distance below which an upcoming goal is
// flagged urgent.
const urgentWindowDays = 30

type (
	// DeadlineStatus classifies how close a goal's deadline is.
	DeadlineStatus string

	// GoalProgress is the derived progress view for one goal.
	GoalProgress struct {
		GoalID        string
		Percentage    float64 // always within [0, 100]
		DaysRemaining int     // negative when overdue; 0 when no deadline
		Status        DeadlineStatus
	}
)

// Progress derives the completion percentage and deadline classification for a
// goal relative to now. The percentage is clamped to 100 even when the saved
// amount exceeds the target, and reported as 0 when the target is non-positive
// rather than dividing by zero.
func Progress(g core.Goal, now time.Time) GoalProgress {
	p := GoalProgress{GoalID: g.ID.String(), Status: DeadlineNone}

	if g.Target.IsPositive() {
		p.Percentage, _ = g.Current.Div(g.Target).Mul(decimal.NewFromInt(100)).Float64()
		if p.Percentage > 100 {
			p.Percentage = 100
		}
	}

	if g.Deadline.IsZero() {
		return p
	}
	days := core.DateOf(now).DaysUntil(g.Deadline)
	p.DaysRemaining = days
	switch {
	case days < 0:
		p.Status = DeadlineOverdue
	case days == 0:
		p.Status = DeadlineDueToday
	case days < urgentWindowDays:
		p.Status = DeadlineUrgent
	default:
		p.Status = DeadlineUpcoming
	}
	return p
}
