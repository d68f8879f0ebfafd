package core

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestNewGoalStartsAtZero(t *testing.T) {
	g, err := NewGoal(uuid.New(), "vacation", decimal.NewFromInt(10000), Date{}, "", time.Now())
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if !g.Current.IsZero() || g.Completed {
		t.Fatalf("expected fresh goal at zero, got current=%v completed=%v", g.Current, g.Completed)
	}
}

func TestApplyDeltaCompletesGoal(t *testing.T) {
	g := Goal{Target: decimal.NewFromInt(10000), Current: decimal.NewFromInt(9500)}
	g = g.ApplyDelta(decimal.NewFromInt(1000))
	if !g.Current.Equal(decimal.NewFromInt(10500)) {
		t.Fatalf("expected 10500, got %v", g.Current)
	}
	if !g.Completed {
		t.Fatalf("expected completed")
	}
}

func TestApplyDeltaClampsAtZero(t *testing.T) {
	g := Goal{Target: decimal.NewFromInt(100), Current: decimal.NewFromInt(30)}
	g = g.ApplyDelta(decimal.NewFromInt(-50))
	if !g.Current.IsZero() {
		t.Fatalf("expected clamp to zero, got %v", g.Current)
	}
	if g.Completed {
		t.Fatalf("completed must be false at zero")
	}
}

func TestApplyDeltaRoundTrip(t *testing.T) {
	// Applying delta then -delta returns to max(0, original).
	for _, start := range []int64{0, 25, 400} {
		g := Goal{Target: decimal.NewFromInt(500), Current: decimal.NewFromInt(start)}
		delta := decimal.NewFromInt(120)
		back := g.ApplyDelta(delta).ApplyDelta(delta.Neg())
		if !back.Current.Equal(decimal.NewFromInt(start)) {
			t.Fatalf("start=%d: expected round trip, got %v", start, back.Current)
		}
	}
}

func TestApplyDeltaUncompletesWhenFallingBelowTarget(t *testing.T) {
	g := Goal{Target: decimal.NewFromInt(100), Current: decimal.NewFromInt(120), Completed: true}
	g = g.ApplyDelta(decimal.NewFromInt(-40))
	if g.Completed {
		t.Fatalf("expected completed to track current")
	}
}
