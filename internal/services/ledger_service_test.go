package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tally/internal/amqp"
	"tally/internal/core"
	"tally/internal/store/memory"
)

type capturePublisher struct {
	msgs []*amqp.BudgetAlertMessage
}

func (p *capturePublisher) PublishBudgetAlert(_ context.Context, msg *amqp.BudgetAlertMessage) error {
	p.msgs = append(p.msgs, msg)
	return nil
}

var testNow = time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)

func newTestService() (*LedgerService, *capturePublisher) {
	pub := &capturePublisher{}
	svc := NewLedgerService(memory.New(), pub, WithClock(func() time.Time { return testNow }))
	return svc, pub
}

func TestCreateTransactionRejectsInvalid(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.CreateTransaction(context.Background(), uuid.New(),
		core.NewDate(2024, 5, 1), "", decimal.NewFromInt(10), core.Expense, "")
	if err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestOverBudgetAlertPublishedOnCrossing(t *testing.T) {
	ctx := context.Background()
	svc, pub := newTestService()
	user := uuid.New()

	if _, err := svc.CreateBudget(ctx, user, "food", decimal.NewFromInt(100), core.Monthly); err != nil {
		t.Fatalf("create budget: %v", err)
	}

	// First expense stays below the threshold: no alert.
	if _, err := svc.CreateTransaction(ctx, user, core.NewDate(2024, 5, 10), "food", decimal.NewFromInt(50), core.Expense, ""); err != nil {
		t.Fatalf("create tx: %v", err)
	}
	if len(pub.msgs) != 0 {
		t.Fatalf("no alert expected below threshold, got %d", len(pub.msgs))
	}

	// Second expense crosses the near-limit threshold.
	if _, err := svc.CreateTransaction(ctx, user, core.NewDate(2024, 5, 11), "food", decimal.NewFromInt(40), core.Expense, ""); err != nil {
		t.Fatalf("create tx: %v", err)
	}
	if len(pub.msgs) != 1 || pub.msgs[0].Level != amqp.LevelNearLimit {
		t.Fatalf("expected one near-limit alert, got %+v", pub.msgs)
	}

	// Third expense crosses the limit itself.
	if _, err := svc.CreateTransaction(ctx, user, core.NewDate(2024, 5, 12), "food", decimal.NewFromInt(30), core.Expense, ""); err != nil {
		t.Fatalf("create tx: %v", err)
	}
	if len(pub.msgs) != 2 || pub.msgs[1].Level != amqp.LevelOverBudget {
		t.Fatalf("expected over-budget alert, got %+v", pub.msgs)
	}

	// Already over budget: further spending does not re-alert.
	if _, err := svc.CreateTransaction(ctx, user, core.NewDate(2024, 5, 13), "food", decimal.NewFromInt(10), core.Expense, ""); err != nil {
		t.Fatalf("create tx: %v", err)
	}
	if len(pub.msgs) != 2 {
		t.Fatalf("expected no repeat alert, got %d", len(pub.msgs))
	}
}

func TestIncomeNeverTriggersAlerts(t *testing.T) {
	ctx := context.Background()
	svc, pub := newTestService()
	user := uuid.New()

	if _, err := svc.CreateBudget(ctx, user, "food", decimal.NewFromInt(10), core.Monthly); err != nil {
		t.Fatalf("create budget: %v", err)
	}
	if _, err := svc.CreateTransaction(ctx, user, core.NewDate(2024, 5, 10), "food", decimal.NewFromInt(5000), core.Income, ""); err != nil {
		t.Fatalf("create tx: %v", err)
	}
	if len(pub.msgs) != 0 {
		t.Fatalf("income must not alert, got %d", len(pub.msgs))
	}
}

func TestBudgetUtilizations(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	user := uuid.New()

	if _, err := svc.CreateBudget(ctx, user, "food", decimal.NewFromInt(800), core.Monthly); err != nil {
		t.Fatalf("create budget: %v", err)
	}
	if _, err := svc.CreateTransaction(ctx, user, core.NewDate(2024, 5, 10), "food", decimal.NewFromInt(1000), core.Expense, ""); err != nil {
		t.Fatalf("create tx: %v", err)
	}

	utils, err := svc.BudgetUtilizations(ctx, user)
	if err != nil {
		t.Fatalf("utilizations: %v", err)
	}
	if len(utils) != 1 {
		t.Fatalf("expected 1 utilization, got %d", len(utils))
	}
	u := utils[0]
	if u.Spent.String() != "1000" || u.Remaining.String() != "-200" || u.Percentage != 125 || !u.OverBudget {
		t.Fatalf("unexpected utilization: %+v", u)
	}
}

func TestAdjustGoalPersistsAtomically(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	user := uuid.New()

	g, err := svc.CreateGoal(ctx, user, "vacation", decimal.NewFromInt(10000), core.Date{}, "")
	if err != nil {
		t.Fatalf("create goal: %v", err)
	}
	if _, err := svc.AdjustGoal(ctx, user, g.ID, decimal.NewFromInt(9500)); err != nil {
		t.Fatalf("adjust: %v", err)
	}
	next, err := svc.AdjustGoal(ctx, user, g.ID, decimal.NewFromInt(1000))
	if err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if next.Current.String() != "10500" || !next.Completed {
		t.Fatalf("unexpected goal state: %+v", next)
	}

	goals, _ := svc.ListGoals(ctx, user)
	if len(goals) != 1 || !goals[0].Completed {
		t.Fatalf("completion flag not persisted with amount: %+v", goals)
	}
}

func TestDeleteAllTransactions(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	user := uuid.New()

	for day := 1; day <= 3; day++ {
		if _, err := svc.CreateTransaction(ctx, user, core.NewDate(2024, 5, day), "food", decimal.NewFromInt(10), core.Expense, ""); err != nil {
			t.Fatalf("create tx: %v", err)
		}
	}
	if err := svc.DeleteAllTransactions(ctx, user); err != nil {
		t.Fatalf("delete all: %v", err)
	}
	txs, _ := svc.ListTransactions(ctx, user)
	if len(txs) != 0 {
		t.Fatalf("expected empty history, got %d", len(txs))
	}
}
